package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/klauspost/compress/gzhttp"

	"github.com/mcoot/idlecoins/internal/api/apierr"
	"github.com/mcoot/idlecoins/internal/api/handler"
	"github.com/mcoot/idlecoins/internal/api/middleware"
	"github.com/mcoot/idlecoins/internal/api/response"
	httpmw "github.com/mcoot/idlecoins/internal/middleware"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger          *slog.Logger
	Leaderboard     handler.Leaderboard
	Sessions        handler.SessionStats
	Clients         handler.ClientCounter
	Realtime        http.Handler
	LeaderboardSize int
	MaxIDLength     int
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	leaderboardHandler := handler.NewLeaderboardHandler(cfg.Leaderboard, cfg.LeaderboardSize, cfg.MaxIDLength)
	statsHandler := handler.NewStatsHandler(cfg.Sessions, cfg.Clients)

	loggingMiddleware := httpmw.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// Realtime channel; logged once the connection closes
	if cfg.Realtime != nil {
		r.Handle("/ws", loggingMiddleware(cfg.Realtime)).Methods(http.MethodGet)
	}

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)
	api.Use(compress)

	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	api.HandleFunc("/leaderboard", leaderboardHandler.Top).Methods(http.MethodGet)
	api.HandleFunc("/players/{id}/rank", leaderboardHandler.Rank).Methods(http.MethodGet)
	api.HandleFunc("/stats", statsHandler.Get).Methods(http.MethodGet)

	api.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		handler.WriteError(w, apierr.NewNotFoundError())
	})

	return r
}

// compress gzips responses for clients that accept it
func compress(next http.Handler) http.Handler {
	return gzhttp.GzipHandler(next)
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}
