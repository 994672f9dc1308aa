package handlers

import (
	"net/http"

	"coinmate/internal/config"
	"coinmate/internal/logger"
	"coinmate/internal/middleware"
	"coinmate/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Services struct {
	Users        UserService
	Spaces       SpaceService
	Categories   CategoryService
	Transactions TransactionService
	Audit        AuditService
	Rates        RateService
}

type Handler struct {
	cfg          config.Config
	users        UserService
	spaces       SpaceService
	categories   CategoryService
	transactions TransactionService
	audit        AuditService
	rates        RateService
	hub          *websocket.Hub
}

func New(cfg config.Config, svc Services, hub *websocket.Hub) *Handler {
	return &Handler{
		cfg:          cfg,
		users:        svc.Users,
		spaces:       svc.Spaces,
		categories:   svc.Categories,
		transactions: svc.Transactions,
		audit:        svc.Audit,
		rates:        svc.Rates,
		hub:          hub,
	}
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.RequestLogger(&chimiddleware.DefaultLogFormatter{Logger: logger.StdLogger(), NoColor: true}))
	router.Use(chimiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Use(middleware.Scope(h.cfg.JWTSecret))

	router.Route("/auth", func(r chi.Router) {
		r.Post("/signup", h.SignUp)
		r.Post("/signin", h.SignIn)
		r.Get("/me", h.Me)
	})
	router.Route("/spaces", func(r chi.Router) {
		r.Get("/", h.ListSpaces)
		r.Post("/", h.CreateSpace)
		r.Delete("/{id}", h.DeleteSpace)
	})
	router.Route("/categories", func(r chi.Router) {
		r.Get("/", h.ListCategories)
		r.Post("/", h.CreateCategory)
		r.Get("/{id}", h.GetCategory)
		r.Patch("/{id}", h.UpdateCategory)
		r.Delete("/{id}", h.DeleteCategory)
		r.Get("/{id}/report", h.CategoryReport)
	})
	router.Route("/transactions", func(r chi.Router) {
		r.Get("/", h.ListTransactions)
		r.Post("/", h.CreateTransaction)
		r.Get("/{id}", h.GetTransaction)
		r.Patch("/{id}", h.UpdateTransaction)
		r.Delete("/{id}", h.DeleteTransaction)
	})
	router.With(middleware.RequireUser).Get("/audit/{object}/{id}", h.History)
	router.With(middleware.RequireUser).Get("/exchange-rates/{pair}", h.ExchangeRate)
	router.With(middleware.RequireUser).Get("/ws/changes", h.WSChanges)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return router
}
