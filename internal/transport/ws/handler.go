// Package ws serves the player event channel over websockets.
package ws

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/idlecoins/internal/model"
	"github.com/mcoot/idlecoins/internal/realtime"
	"github.com/mcoot/idlecoins/internal/services/leaderboard"
	"github.com/mcoot/idlecoins/internal/services/session"
)

// Sessions is the session surface the transport drives
type Sessions interface {
	Connect(ctx context.Context, requestedID string) (*session.ConnectResult, error)
	Disconnect(ctx context.Context, id model.PlayerID) error
	Click(ctx context.Context, id model.PlayerID) (*session.ClickResult, error)
	Buy(ctx context.Context, id model.PlayerID, upgradeID string) (*session.BuyResult, error)
	AvailableUpgrades(ctx context.Context, id model.PlayerID) ([]model.UpgradeDef, error)
}

// Leaderboard answers getLeaderboard requests
type Leaderboard interface {
	Top(ctx context.Context, n int, filter model.TimeFilter) ([]model.LeaderboardEntry, error)
	Rank(ctx context.Context, id model.PlayerID) (*model.RankInfo, error)
}

// Config holds connection tuning
type Config struct {
	LeaderboardSize int
	WriteWait       time.Duration
	PongWait        time.Duration
	PingPeriod      time.Duration
	MaxMessageSize  int64
}

// DefaultConfig returns the standard connection settings
func DefaultConfig() Config {
	return Config{
		LeaderboardSize: leaderboard.DefaultSize,
		WriteWait:       10 * time.Second,
		PongWait:        60 * time.Second,
		PingPeriod:      54 * time.Second,
		MaxMessageSize:  4096,
	}
}

// Handler upgrades requests to websockets and runs one session per connection
type Handler struct {
	sessions Sessions
	board    Leaderboard
	hub      *realtime.Hub
	cfg      Config
	upgrader websocket.Upgrader
	logger   *slog.Logger

	active sync.WaitGroup
}

// NewHandler creates a websocket Handler
func NewHandler(sessions Sessions, board Leaderboard, hub *realtime.Hub, cfg Config, logger *slog.Logger) *Handler {
	def := DefaultConfig()
	if cfg.LeaderboardSize <= 0 {
		cfg.LeaderboardSize = def.LeaderboardSize
	}
	if cfg.WriteWait <= 0 {
		cfg.WriteWait = def.WriteWait
	}
	if cfg.PongWait <= 0 {
		cfg.PongWait = def.PongWait
	}
	if cfg.PingPeriod <= 0 || cfg.PingPeriod >= cfg.PongWait {
		cfg.PingPeriod = cfg.PongWait * 9 / 10
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = def.MaxMessageSize
	}

	return &Handler{
		sessions: sessions,
		board:    board,
		hub:      hub,
		cfg:      cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  2048,
			WriteBufferSize: 2048,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger.With(slog.String("component", "ws")),
	}
}

// ServeHTTP handles GET /ws?id=<player id>
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	h.active.Add(1)
	defer h.active.Done()

	client := realtime.NewClient()
	h.hub.Register(client)

	writerDone := make(chan struct{})
	go h.writer(conn, client, writerDone)

	defer func() {
		h.hub.Unregister(client)
		<-writerDone
	}()

	// Cleanup must finish even once the request is gone
	ctx := context.WithoutCancel(r.Context())

	res, err := h.sessions.Connect(ctx, r.URL.Query().Get("id"))
	if err != nil {
		h.logger.Error("failed to connect player", slog.String("error", err.Error()))
		h.hub.Send(client, model.EventError, "Failed to load player data")
		return
	}
	id := res.PlayerID
	client.Bind(id)

	defer func() {
		if err := h.sessions.Disconnect(ctx, id); err != nil {
			h.logger.Error("failed to disconnect player",
				slog.String("player_id", string(id)),
				slog.String("error", err.Error()))
		}
	}()

	if res.Assigned {
		h.hub.Send(client, model.EventAssignID, string(id))
	}
	if res.Offline != nil {
		h.hub.Send(client, model.EventOfflineEarnings, res.Offline)
	}
	h.hub.Send(client, model.EventInit, res.Init)

	h.reader(ctx, conn, client, id)
}

// Drain waits for every open connection to finish its disconnect. Close the
// hub first so the connections end.
func (h *Handler) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.active.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Handler) reader(ctx context.Context, conn *websocket.Conn, client *realtime.Client, id model.PlayerID) {
	conn.SetReadLimit(h.cfg.MaxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
	})

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read error",
					slog.String("player_id", string(id)),
					slog.String("error", err.Error()))
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
		h.dispatch(ctx, client, id, msg)
	}
}

func (h *Handler) writer(conn *websocket.Conn, client *realtime.Client, done chan<- struct{}) {
	ticker := time.NewTicker(h.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
		close(done)
	}()

	for {
		select {
		case msg, ok := <-client.Outbound():
			_ = conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteWait))
			if !ok {
				// Hub closed the channel
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
