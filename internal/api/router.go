package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/backgammon/internal/api/handler"
	"github.com/mcoot/backgammon/internal/api/middleware"
	"github.com/mcoot/backgammon/internal/dependencies/clock"
	"github.com/mcoot/backgammon/internal/services/auth"
	"github.com/mcoot/backgammon/internal/services/invite"
	"github.com/mcoot/backgammon/internal/services/play"
	"github.com/mcoot/backgammon/internal/services/social"
	"github.com/mcoot/backgammon/internal/services/stats"
	"github.com/mcoot/backgammon/internal/ws"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger        *slog.Logger
	Clock         clock.Clock
	AuthService   *auth.Service
	StatsService  *stats.Service
	InviteService *invite.Service
	PlayService   *play.Service
	WSServer      *ws.Server
	SocialService *social.Service
	HomeServer    *ws.HomeServer
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	playerHandler := handler.NewPlayerHandler(cfg.AuthService, cfg.StatsService, cfg.PlayService, cfg.SocialService, cfg.Clock)
	socialHandler := handler.NewSocialHandler(cfg.SocialService, cfg.HomeServer)
	inviteHandler := handler.NewInviteHandler(cfg.InviteService, cfg.Clock)
	gameHandler := handler.NewGameHandler(cfg.PlayService, cfg.WSServer, cfg.Clock)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService)
	optionalAuthMiddleware := middleware.OptionalAuth(cfg.AuthService)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	// Player routes (no auth required for creating players/logging in)
	api.HandleFunc("/players/guest", playerHandler.CreateGuest).Methods(http.MethodPost)
	api.HandleFunc("/players/register", playerHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/players/login", playerHandler.Login).Methods(http.MethodPost)

	// Public profiles; a signed-in viewer also sees whether they are friends
	profiles := api.PathPrefix("/profiles").Subrouter()
	profiles.Use(optionalAuthMiddleware)
	profiles.HandleFunc("/{id}", playerHandler.PublicProfile).Methods(http.MethodGet)

	// Protected player routes; fixed paths must be registered before /{id}
	players := api.PathPrefix("/players").Subrouter()
	players.Use(authMiddleware)
	players.HandleFunc("/logout", playerHandler.Logout).Methods(http.MethodPost)
	players.HandleFunc("/me", playerHandler.GetMe).Methods(http.MethodGet)
	players.HandleFunc("/me/game", playerHandler.GetMyGame).Methods(http.MethodGet)
	players.HandleFunc("/search", socialHandler.Search).Methods(http.MethodGet)
	players.HandleFunc("/online", socialHandler.Online).Methods(http.MethodGet)
	players.HandleFunc("/{id}", playerHandler.Get).Methods(http.MethodGet)
	players.HandleFunc("/{id}/history", playerHandler.History).Methods(http.MethodGet)

	// Invite routes (all require auth)
	invites := api.PathPrefix("/invites").Subrouter()
	invites.Use(authMiddleware)
	invites.HandleFunc("", inviteHandler.Send).Methods(http.MethodPost)
	invites.HandleFunc("", inviteHandler.List).Methods(http.MethodGet)
	invites.HandleFunc("/{id}/accept", inviteHandler.Accept).Methods(http.MethodPost)
	invites.HandleFunc("/{id}/decline", inviteHandler.Decline).Methods(http.MethodPost)

	// Friend routes (all require auth)
	friends := api.PathPrefix("/friends").Subrouter()
	friends.Use(authMiddleware)
	friends.HandleFunc("", socialHandler.Friends).Methods(http.MethodGet)
	friends.HandleFunc("/requests", socialHandler.Requests).Methods(http.MethodGet)
	friends.HandleFunc("/requests", socialHandler.SendRequest).Methods(http.MethodPost)
	friends.HandleFunc("/requests/{from}/accept", socialHandler.AcceptRequest).Methods(http.MethodPost)
	friends.HandleFunc("/requests/{from}/decline", socialHandler.DeclineRequest).Methods(http.MethodPost)

	// Chat routes (all require auth)
	chat := api.PathPrefix("/chat").Subrouter()
	chat.Use(authMiddleware)
	chat.HandleFunc("/{friend}/messages", socialHandler.Messages).Methods(http.MethodGet)
	chat.HandleFunc("/{friend}/messages", socialHandler.SendMessage).Methods(http.MethodPost)
	chat.HandleFunc("/{friend}/read", socialHandler.MarkRead).Methods(http.MethodPost)

	// Home feed websocket
	home := api.PathPrefix("/home").Subrouter()
	home.Use(authMiddleware)
	home.HandleFunc("/ws", socialHandler.HomeWebSocket).Methods(http.MethodGet)

	// Game routes (all require auth)
	games := api.PathPrefix("/games").Subrouter()
	games.Use(authMiddleware)
	games.HandleFunc("", gameHandler.Create).Methods(http.MethodPost)
	games.HandleFunc("/bot", gameHandler.CreateBot).Methods(http.MethodPost)
	games.HandleFunc("/{id}", gameHandler.Get).Methods(http.MethodGet)
	games.HandleFunc("/{id}/join", gameHandler.Join).Methods(http.MethodPost)
	games.HandleFunc("/{id}/roll", gameHandler.Roll).Methods(http.MethodPost)
	games.HandleFunc("/{id}/move", gameHandler.Move).Methods(http.MethodPost)
	games.HandleFunc("/{id}/moves", gameHandler.Moves).Methods(http.MethodGet)
	games.HandleFunc("/{id}/end-turn", gameHandler.EndTurn).Methods(http.MethodPost)
	games.HandleFunc("/{id}/timeout", gameHandler.Timeout).Methods(http.MethodPost)
	games.HandleFunc("/{id}/ws", gameHandler.WebSocket).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
