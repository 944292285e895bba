package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"communityhub/internal/delivery/http/controllers"
	"communityhub/internal/delivery/http/middleware"
	"communityhub/internal/domain"
)

// RouterConfig carries the controllers and the auth dependencies for NewRouter.
type RouterConfig struct {
	Auth   *controllers.AuthController
	Users  *controllers.UserController
	Events *controllers.EventController
	Wallet *controllers.WalletController

	Verifier domain.TokenVerifier
	Session  middleware.SessionSource
	Logger   *slog.Logger
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(cfg RouterConfig) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(cfg.Verifier, cfg.Session, cfg.Logger)

	// Auth
	mux.HandleFunc("POST /auth/register", cfg.Auth.Register)
	mux.HandleFunc("POST /auth/login", cfg.Auth.Login)
	mux.HandleFunc("POST /auth/logout", auth(cfg.Auth.Logout))

	// Users
	mux.HandleFunc("GET /users", cfg.Users.ListUsers)
	mux.HandleFunc("GET /users/me", auth(cfg.Users.GetMe))
	mux.HandleFunc("PATCH /users/me", auth(cfg.Users.UpdateMe))
	mux.HandleFunc("GET /users/{userID}", cfg.Users.GetUser)
	mux.HandleFunc("GET /users/{userID}/events", cfg.Users.ListUserEvents)
	mux.HandleFunc("GET /me/events", auth(cfg.Users.MyEvents))

	// Events
	mux.HandleFunc("GET /events", cfg.Events.ListEvents)
	mux.HandleFunc("GET /events/filters", cfg.Events.FilterOptions)
	mux.HandleFunc("GET /events/featured", cfg.Events.Featured)
	mux.HandleFunc("POST /events", auth(cfg.Events.CreateEvent))
	mux.HandleFunc("GET /events/{eventID}", cfg.Events.GetEvent)
	mux.HandleFunc("PATCH /events/{eventID}", auth(cfg.Events.UpdateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", auth(cfg.Events.DeleteEvent))
	mux.HandleFunc("PUT /events/{eventID}/attendance", auth(cfg.Events.SetAttendance))

	// Wallet
	mux.HandleFunc("GET /wallet", cfg.Wallet.GetSession)
	mux.HandleFunc("POST /wallet/connect", cfg.Wallet.Connect)
	mux.HandleFunc("POST /wallet/disconnect", cfg.Wallet.Disconnect)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
