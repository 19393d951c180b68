package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/idlecoins/internal/model"
	"github.com/mcoot/idlecoins/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
// Each player is a JSON string; a sorted set indexes ids by negated money so
// ascending order is money descending with ties broken by id ascending, the
// same order as the other stores.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	if cfg.ScanBatch <= 0 {
		cfg.ScanBatch = DefaultConfig().ScanBatch
	}
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

func (s *Storage) LoadPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	data, err := s.client.Get(ctx, playerKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var player model.Player
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	// Use pipeline for save + index update
	pipe := s.client.Pipeline()
	pipe.Set(ctx, playerKey(player.ID), data, 0)
	pipe.ZAdd(ctx, moneyIndexKey(), redis.Z{Score: indexScore(player.Money), Member: string(player.ID)})
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) TopPlayers(ctx context.Context, n int, since time.Time) ([]*model.Player, error) {
	players := make([]*model.Player, 0, max(n, 0))
	if n <= 0 {
		return players, nil
	}

	// Unfiltered queries need exactly n ids; filtered ones page through the
	// ranking until enough players pass the filter
	batch := n
	if !since.IsZero() {
		batch = max(n, s.cfg.ScanBatch)
	}

	for start := int64(0); ; start += int64(batch) {
		ids, err := s.client.ZRange(ctx, moneyIndexKey(), start, start+int64(batch)-1).Result()
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return players, nil
		}

		page, err := s.getPlayers(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, p := range page {
			if p.CreatedAt.Before(since) {
				continue
			}
			players = append(players, p)
			if len(players) == n {
				return players, nil
			}
		}

		if len(ids) < batch {
			return players, nil
		}
	}
}

func (s *Storage) Rank(ctx context.Context, id model.PlayerID) (int, int, error) {
	total, err := s.client.ZCard(ctx, moneyIndexKey()).Result()
	if err != nil {
		return 0, 0, err
	}

	pos, err := s.client.ZRank(ctx, moneyIndexKey(), string(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, int(total), nil
		}
		return 0, 0, err
	}
	return int(pos) + 1, int(total), nil
}

func (s *Storage) DeleteStale(ctx context.Context, criteria storage.StaleCriteria) (int, error) {
	// Only players below the money threshold can match, so use the index
	// to narrow candidates before reading records
	ids, err := s.client.ZRangeByScore(ctx, moneyIndexKey(), &redis.ZRangeBy{
		Min: "(" + strconv.FormatFloat(indexScore(criteria.MoneyBelow), 'f', -1, 64),
		Max: "+inf",
	}).Result()
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = playerKey(model.PlayerID(id))
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return 0, err
	}

	pipe := s.client.Pipeline()
	deleted := 0
	for i, val := range values {
		if val == nil {
			// Index entry without a record
			pipe.ZRem(ctx, moneyIndexKey(), ids[i])
			continue
		}
		str, ok := val.(string)
		if !ok {
			continue
		}
		var p model.Player
		if err := json.Unmarshal([]byte(str), &p); err != nil {
			continue // Skip invalid data
		}
		if !criteria.Matches(&p) {
			continue
		}
		pipe.Del(ctx, keys[i])
		pipe.ZRem(ctx, moneyIndexKey(), ids[i])
		deleted++
	}

	if pipe.Len() == 0 {
		return 0, nil
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return deleted, nil
}

// indexScore maps money to its index score
func indexScore(money float64) float64 {
	return -money
}

// getPlayers fetches records for ids in order, skipping missing or invalid ones
func (s *Storage) getPlayers(ctx context.Context, ids []string) ([]*model.Player, error) {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = playerKey(model.PlayerID(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	players := make([]*model.Player, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue
		}
		str, ok := val.(string)
		if !ok {
			continue
		}
		var p model.Player
		if err := json.Unmarshal([]byte(str), &p); err != nil {
			continue // Skip invalid data
		}
		players = append(players, &p)
	}
	return players, nil
}
