package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/hrms-portal/internal"
	"github.com/frahmantamala/hrms-portal/internal/auth"
	"github.com/frahmantamala/hrms-portal/internal/dashboard"
	"github.com/frahmantamala/hrms-portal/internal/employee"
	"github.com/frahmantamala/hrms-portal/internal/engagement"
	"github.com/frahmantamala/hrms-portal/internal/grievance"
	"github.com/frahmantamala/hrms-portal/internal/leave"
	"github.com/frahmantamala/hrms-portal/internal/offer"
	"github.com/frahmantamala/hrms-portal/internal/transport"
	"github.com/frahmantamala/hrms-portal/internal/transport/middleware"
	"github.com/frahmantamala/hrms-portal/internal/transport/swagger"
	"github.com/frahmantamala/hrms-portal/internal/web"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// Handlers groups everything the router mounts. Nil page handlers are skipped.
type Handlers struct {
	Base       *transport.BaseHandler
	Auth       *auth.Handler
	Dashboard  *dashboard.Handler
	Employees  *employee.Handler
	Engagement *engagement.Handler
	Grievances *grievance.Handler
	Leaves     *leave.Handler
	Offer      *offer.Handler
	Health     *HealthHandler
	OfferLimit *middleware.IPRateLimiter
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, logger *slog.Logger) {
	router.Use(middleware.PeerAddr)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	router.Handle("/static/*", http.StripPrefix("/static/", web.StaticHandler()))

	router.Get("/openapi.yml", swagger.SpecHandler)
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		if h.Health != nil {
			r.Get("/health", h.Health.healthCheckHandler)
			r.Get("/ping", h.Health.pingHandler)
		}
		r.With(h.Auth.RequireSession).Get("/me", h.Auth.Me)
	})

	router.Get("/login", h.Auth.LoginPage)
	router.Post("/login", h.Auth.Login)
	router.Post("/logout", h.Auth.Logout)

	if h.Offer != nil {
		router.Route("/offer", func(r chi.Router) {
			if h.OfferLimit != nil {
				r.Use(middleware.RateLimit(h.OfferLimit))
			}
			h.Offer.Routes(r)
		})
	}

	router.Group(func(pr chi.Router) {
		pr.Use(h.Auth.RequireSession)

		if h.Dashboard != nil {
			pr.Get("/", h.Dashboard.GetDashboard)
			pr.Route("/dashboard", h.Dashboard.Routes)
		}
		if h.Employees != nil {
			pr.Route("/employees", func(er chi.Router) {
				er.Use(middleware.RequireRoles(internal.RoleManager, internal.RoleHR, internal.RoleAdmin))
				h.Employees.Routes(er)
			})
		}
		if h.Engagement != nil {
			pr.Route("/engagement", h.Engagement.Routes)
		}
		if h.Grievances != nil {
			pr.Route("/grievances", h.Grievances.Routes)
		}
		if h.Leaves != nil {
			pr.Route("/leaves", h.Leaves.Routes)
		}
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if h.Base == nil {
			http.NotFound(w, r)
			return
		}
		if transport.WantsJSON(r) {
			h.Base.WriteAppError(w, internal.NewNotFoundError("Page not found", internal.ErrCodeNotFound))
			return
		}
		h.Base.Render(w, r, http.StatusNotFound, "error", web.Page{
			Title: "Not found",
			View:  web.ErrorView{Status: http.StatusNotFound, Message: "The page you are looking for does not exist."},
		})
	})
}
