package handler

import (
	"context"
	"net/http"

	"github.com/mcoot/idlecoins/internal/api/response"
	"github.com/mcoot/idlecoins/internal/services/session"
)

// SessionStats reports the live player set
type SessionStats interface {
	Stats(ctx context.Context) (session.Stats, error)
}

// ClientCounter reports attached realtime clients
type ClientCounter interface {
	ClientCount() int
}

// StatsHandler handles the stats endpoint
type StatsHandler struct {
	sessions SessionStats
	clients  ClientCounter
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(sessions SessionStats, clients ClientCounter) *StatsHandler {
	return &StatsHandler{sessions: sessions, clients: clients}
}

// Get handles GET /api/v1/stats
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Stats(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Stats{
		Online:  s.Online,
		Cached:  s.Cached,
		Clients: h.clients.ClientCount(),
	})
}
