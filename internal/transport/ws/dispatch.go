package ws

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mcoot/idlecoins/internal/model"
	"github.com/mcoot/idlecoins/internal/realtime"
)

// dispatch handles one inbound frame. Errors go to the sending connection only.
func (h *Handler) dispatch(ctx context.Context, client *realtime.Client, id model.PlayerID, msg []byte) {
	env, err := realtime.Decode(msg)
	if err != nil {
		text := realtime.ErrorMessage(err)
		if env.Type == model.EventBuyUpgrade {
			text = "Invalid upgrade ID"
		}
		h.hub.Send(client, model.EventError, text)
		return
	}

	switch env.Type {
	case model.EventClick:
		h.click(ctx, client, id)
	case model.EventBuyUpgrade:
		h.buy(ctx, client, id, env)
	case model.EventGetUpgrades:
		h.upgrades(ctx, client, id)
	case model.EventGetLeaderboard:
		h.leaderboard(ctx, client, id, env.TimeFilter())
	}
}

func (h *Handler) click(ctx context.Context, client *realtime.Client, id model.PlayerID) {
	res, err := h.sessions.Click(ctx, id)
	if err != nil {
		h.fail(client, err)
		return
	}
	if res.Golden {
		h.hub.Send(client, model.EventSpecialEffect, model.SpecialEffectPayload{
			Type:  model.SpecialEffectGoldenClick,
			Value: res.Value,
		})
	}
	h.hub.Send(client, model.EventClickFeedback, model.ClickFeedbackPayload{Value: res.Value})
	h.announce(id, res.Achievements)
}

func (h *Handler) buy(ctx context.Context, client *realtime.Client, id model.PlayerID, env realtime.Envelope) {
	upgradeID, err := env.UpgradeID()
	if err != nil {
		h.hub.Send(client, model.EventError, "Invalid upgrade ID")
		return
	}

	res, err := h.sessions.Buy(ctx, id, upgradeID)
	if err != nil {
		h.fail(client, err)
		return
	}
	h.hub.Send(client, model.EventUpgradeBought, res.Bought)
	h.announce(id, res.Achievements)
}

func (h *Handler) upgrades(ctx context.Context, client *realtime.Client, id model.PlayerID) {
	available, err := h.sessions.AvailableUpgrades(ctx, id)
	if err != nil {
		if !errors.Is(err, model.ErrPlayerNotFound) {
			h.fail(client, err)
		}
		return
	}
	h.hub.Send(client, model.EventUpgradesList, available)
}

func (h *Handler) leaderboard(ctx context.Context, client *realtime.Client, id model.PlayerID, filter model.TimeFilter) {
	entries, err := h.board.Top(ctx, h.cfg.LeaderboardSize, filter)
	if err != nil {
		h.logger.Error("failed to load leaderboard", slog.String("error", err.Error()))
		h.hub.Send(client, model.EventError, "Failed to load leaderboard")
		return
	}
	h.hub.Send(client, model.EventLeaderboardUpdate, entries)

	rank, err := h.board.Rank(ctx, id)
	if err != nil {
		h.logger.Error("failed to compute rank",
			slog.String("player_id", string(id)),
			slog.String("error", err.Error()))
		h.hub.Send(client, model.EventError, "Failed to load leaderboard")
		return
	}
	h.hub.Send(client, model.EventMyRank, rank)
}

func (h *Handler) announce(id model.PlayerID, earned []model.AchievementPayload) {
	for _, a := range earned {
		h.hub.SendToPlayer(id, model.EventAchievement, a)
	}
}

func (h *Handler) fail(client *realtime.Client, err error) {
	h.hub.Send(client, model.EventError, realtime.ErrorMessage(err))
}
