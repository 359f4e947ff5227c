package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type RouterConfig struct {
	Auth       *AuthHandler
	Accounts   *AccountHandler
	Records    *RecordHandler
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	for _, mw := range cfg.Middleware {
		if mw != nil {
			r.Use(mw)
		}
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}` + "\n"))
	})

	r.Route("/api", func(r chi.Router) {
		if cfg.Auth != nil {
			r.Post("/auth/login", cfg.Auth.Login)
			r.Post("/auth/logout", cfg.Auth.Logout)
			r.Get("/auth/me", cfg.Auth.Me)
		}

		if cfg.Accounts != nil {
			r.Route("/users", func(r chi.Router) {
				r.Get("/", cfg.Accounts.List)
				r.Post("/", cfg.Accounts.Create)
				r.Put("/{id}", cfg.Accounts.Update)
				r.Delete("/{id}", cfg.Accounts.Delete)
			})
		}

		if cfg.Records != nil {
			r.Route("/employees", func(r chi.Router) {
				r.Get("/", cfg.Records.List)
				r.Post("/", cfg.Records.Create)
				r.Put("/{id}", cfg.Records.Update)
				r.Delete("/{id}", cfg.Records.Delete)
			})
		}
	})

	return r
}
