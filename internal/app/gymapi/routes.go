package gymapi

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/magabrotheeeer/gym-management/docs"
	"github.com/magabrotheeeer/gym-management/internal/http/handlers/attendance/active"
	"github.com/magabrotheeeer/gym-management/internal/http/handlers/attendance/checkin"
	"github.com/magabrotheeeer/gym-management/internal/http/handlers/attendance/checkout"
	"github.com/magabrotheeeer/gym-management/internal/http/handlers/attendance/history"
	"github.com/magabrotheeeer/gym-management/internal/http/handlers/attendance/stats"
	"github.com/magabrotheeeer/gym-management/internal/http/handlers/attendance/status"
	"github.com/magabrotheeeer/gym-management/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/gym-management/internal/http/handlers/auth/register"
	classcreate "github.com/magabrotheeeer/gym-management/internal/http/handlers/class/create"
	classlist "github.com/magabrotheeeer/gym-management/internal/http/handlers/class/list"
	classread "github.com/magabrotheeeer/gym-management/internal/http/handlers/class/read"
	classremove "github.com/magabrotheeeer/gym-management/internal/http/handlers/class/remove"
	"github.com/magabrotheeeer/gym-management/internal/http/handlers/health"
	membershipcreate "github.com/magabrotheeeer/gym-management/internal/http/handlers/membership/create"
	membershiplist "github.com/magabrotheeeer/gym-management/internal/http/handlers/membership/list"
	membershipread "github.com/magabrotheeeer/gym-management/internal/http/handlers/membership/read"
	membershipremove "github.com/magabrotheeeer/gym-management/internal/http/handlers/membership/remove"
	membershipupdate "github.com/magabrotheeeer/gym-management/internal/http/handlers/membership/update"
	"github.com/magabrotheeeer/gym-management/internal/http/handlers/subscription/itemstatus"
	"github.com/magabrotheeeer/gym-management/internal/http/handlers/subscription/purchase"
	"github.com/magabrotheeeer/gym-management/internal/http/handlers/subscription/read"
	"github.com/magabrotheeeer/gym-management/internal/http/handlers/user/me"
	"github.com/magabrotheeeer/gym-management/internal/http/middlewarectx"
	"github.com/magabrotheeeer/gym-management/internal/metrics"
	"github.com/magabrotheeeer/gym-management/internal/models"
	attendanceservice "github.com/magabrotheeeer/gym-management/internal/services/attendance"
	authservice "github.com/magabrotheeeer/gym-management/internal/services/auth"
	classservice "github.com/magabrotheeeer/gym-management/internal/services/class"
	membershipservice "github.com/magabrotheeeer/gym-management/internal/services/membership"
	subscriptionservice "github.com/magabrotheeeer/gym-management/internal/services/subscription"
)

// Services сервисы, которые обслуживают маршруты API.
type Services struct {
	Auth         *authservice.Service
	Membership   *membershipservice.Service
	Subscription *subscriptionservice.Service
	Attendance   *attendanceservice.Service
	Class        *classservice.Service
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, s Services, db health.Pinger, limiter *middlewarectx.IPLimiter) {
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		metrics.HTTPMiddleware,
	)

	r.Get("/health", health.New(logger, db).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middlewarectx.RateLimitMiddleware(logger, limiter))

		// Открытые конечные точки
		r.Post("/auth/register", register.New(logger, s.Auth).ServeHTTP)
		r.Post("/auth/login", login.New(logger, s.Auth).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(s.Auth, logger))

			r.Get("/users/me", me.New(logger, s.Auth).ServeHTTP)
			r.Get("/memberships", membershiplist.New(logger, s.Membership).ServeHTTP)
			r.Get("/memberships/{id}", membershipread.New(logger, s.Membership).ServeHTTP)
			r.Get("/classes", classlist.New(logger, s.Class).ServeHTTP)
			r.Get("/classes/{id}", classread.New(logger, s.Class).ServeHTTP)

			// Доступ к себе или персоналу проверяют обработчики
			r.Get("/users/{userID}/subscription", read.New(logger, s.Subscription).ServeHTTP)
			r.Post("/users/{userID}/subscription/items", purchase.New(logger, s.Subscription).ServeHTTP)
			r.Get("/users/{userID}/attendances", history.New(logger, s.Attendance).ServeHTTP)
			r.Get("/users/{userID}/attendances/stats", stats.New(logger, s.Attendance).ServeHTTP)
			r.Post("/attendances/check-in", checkin.New(logger, s.Attendance).ServeHTTP)
			r.Post("/attendances/check-out", checkout.New(logger, s.Attendance).ServeHTTP)
			r.Get("/attendances/status", status.New(logger, s.Attendance).ServeHTTP)

			r.With(middlewarectx.RequireRoles(logger, models.StaffRoles...)).
				Get("/attendances/active", active.New(logger, s.Attendance).ServeHTTP)
			r.With(middlewarectx.RequireRoles(logger, models.RoleAdmin, models.RoleTrainer)).
				Post("/classes", classcreate.New(logger, s.Class).ServeHTTP)

			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireRoles(logger, models.RoleAdmin))
				r.Post("/memberships", membershipcreate.New(logger, s.Membership).ServeHTTP)
				r.Put("/memberships/{id}", membershipupdate.New(logger, s.Membership).ServeHTTP)
				r.Delete("/memberships/{id}", membershipremove.New(logger, s.Membership).ServeHTTP)
				r.Patch("/subscription-items/{itemID}/status", itemstatus.New(logger, s.Subscription).ServeHTTP)
				r.Delete("/classes/{id}", classremove.New(logger, s.Class).ServeHTTP)
			})
		})
	})
}
