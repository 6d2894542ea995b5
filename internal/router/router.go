package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/talx-hub/gopher-assist/internal/api/middlewares"
	"github.com/talx-hub/gopher-assist/internal/model"
)

type MetricsProvider interface {
	middlewares.RequestObserver
	Handler() http.Handler
}

type CustomRouter struct {
	router  *chi.Mux
	logger  *slog.Logger
	metrics MetricsProvider
}

// New builds an empty router. metrics may be nil, then /metrics is not served.
func New(log *slog.Logger, metrics MetricsProvider) *CustomRouter {
	if log == nil {
		log = slog.Default()
	}
	router := &CustomRouter{
		router:  chi.NewRouter(),
		logger:  log,
		metrics: metrics,
	}

	return router
}

type AuthHandler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
}

type ChatHandler interface {
	Chat(w http.ResponseWriter, r *http.Request)
}

type HealthHandler interface {
	Ping(w http.ResponseWriter, r *http.Request)
}

type Handler interface {
	AuthHandler
	ChatHandler
	HealthHandler
}

func (cr *CustomRouter) SetRouter(h Handler) {
	cr.router.Use(middleware.RequestID)
	cr.router.Use(middleware.Recoverer)
	cr.router.Use(middlewares.RequestLogger(cr.logger))
	if cr.metrics != nil {
		cr.router.Use(middlewares.Metrics(cr.metrics))
	}

	cr.router.Group(func(r chi.Router) {
		r.Use(middleware.AllowContentType(model.ContentTypeJSON))
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/chat", h.Chat)
	})
	cr.router.Get("/ping", h.Ping)
	if cr.metrics != nil {
		cr.router.Method(http.MethodGet, "/metrics", cr.metrics.Handler())
	}

	cr.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w,
			http.StatusText(http.StatusMethodNotAllowed),
			http.StatusMethodNotAllowed)
	})
}

func (cr *CustomRouter) GetRouter() *chi.Mux {
	return cr.router
}
