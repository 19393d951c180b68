package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/idlecoins/internal/api/response"
	"github.com/mcoot/idlecoins/internal/model"
	"github.com/mcoot/idlecoins/internal/services/session"
)

// MaxLeaderboardLimit caps the limit query parameter
const MaxLeaderboardLimit = 100

// Leaderboard ranks players
type Leaderboard interface {
	Top(ctx context.Context, n int, filter model.TimeFilter) ([]model.LeaderboardEntry, error)
	Rank(ctx context.Context, id model.PlayerID) (*model.RankInfo, error)
}

// LeaderboardHandler handles leaderboard and rank endpoints
type LeaderboardHandler struct {
	board        Leaderboard
	defaultLimit int
	maxIDLength  int
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(board Leaderboard, defaultLimit, maxIDLength int) *LeaderboardHandler {
	return &LeaderboardHandler{
		board:        board,
		defaultLimit: defaultLimit,
		maxIDLength:  maxIDLength,
	}
}

// Top handles GET /api/v1/leaderboard
func (h *LeaderboardHandler) Top(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := h.defaultLimit
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > MaxLeaderboardLimit {
			WriteError(w, NewInvalidRequestError("limit must be between 1 and "+strconv.Itoa(MaxLeaderboardLimit)))
			return
		}
		limit = n
	}

	filter := model.ParseTimeFilter(q.Get("time"))
	entries, err := h.board.Top(r.Context(), limit, filter)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Leaderboard{Time: filter, Entries: entries})
}

// Rank handles GET /api/v1/players/{id}/rank
func (h *LeaderboardHandler) Rank(w http.ResponseWriter, r *http.Request) {
	raw := mux.Vars(r)["id"]
	if !session.ValidID(raw, h.maxIDLength) {
		WriteError(w, NewInvalidRequestError("invalid player id"))
		return
	}

	id := model.PlayerID(raw)
	info, err := h.board.Rank(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RankFromModel(id, info))
}
