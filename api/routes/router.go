package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/licensepro/alvara-backend/api/controllers"
	"github.com/licensepro/alvara-backend/api/middleware"
	"github.com/licensepro/alvara-backend/internal/advisory"
	"github.com/licensepro/alvara-backend/internal/attachments"
	"github.com/licensepro/alvara-backend/internal/auth"
	"github.com/licensepro/alvara-backend/internal/companies"
	"github.com/licensepro/alvara-backend/internal/licenses"
	"github.com/licensepro/alvara-backend/internal/users"
	"github.com/licensepro/alvara-backend/pkg/auth/session"
	"github.com/licensepro/alvara-backend/pkg/config"
	"github.com/licensepro/alvara-backend/pkg/db"
	"github.com/licensepro/alvara-backend/pkg/logger"
	"github.com/licensepro/alvara-backend/pkg/redis"
	"github.com/licensepro/alvara-backend/pkg/storage/gcs"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	gcsClient gcs.Pinger,
	sessionManager session.AccessSessionChecker,
	authService auth.Service,
	themeService *auth.ThemeService,
	companyService companies.Service,
	licenseService licenses.Service,
	userService users.Service,
	attachmentService attachments.Service,
	advisoryScheduler *advisory.Scheduler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewRateLimitPolicy(
		"login",
		cfg.RateLimit.LoginWindow,
		cfg.RateLimit.LoginIPLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient, gcsClient))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.RateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(authService, logg))
		r.Post("/refresh", controllers.AuthRefresh(authService, logg))
		r.Post("/logout", controllers.AuthLogout(authService, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionManager, logg))

		adminOnly := middleware.RequireRole("admin", logg)

		r.Route("/companies", func(r chi.Router) {
			r.Get("/", controllers.CompanyList(companyService, logg))
			r.Post("/", refreshAfter(advisoryScheduler, controllers.CompanyCreate(companyService, logg)))
			r.Get("/{companyId}", controllers.CompanyGet(companyService, logg))
			r.Patch("/{companyId}", refreshAfter(advisoryScheduler, controllers.CompanyUpdate(companyService, logg)))
			r.With(adminOnly).Delete("/{companyId}", refreshAfter(advisoryScheduler, controllers.CompanyDelete(companyService, logg)))
		})

		r.Route("/licenses", func(r chi.Router) {
			r.Get("/", controllers.LicenseList(licenseService, logg))
			r.Post("/", refreshAfter(advisoryScheduler, controllers.LicenseCreate(licenseService, logg)))
			r.Get("/{licenseId}", controllers.LicenseGet(licenseService, logg))
			r.Patch("/{licenseId}", refreshAfter(advisoryScheduler, controllers.LicenseUpdate(licenseService, logg)))
			r.With(adminOnly).Delete("/{licenseId}", refreshAfter(advisoryScheduler, controllers.LicenseDelete(licenseService, logg)))
			r.Post("/{licenseId}/attachments", controllers.AttachmentUpload(attachmentService, cfg.Upload.MaxUploadBytes, logg))
		})

		r.Route("/attachments", func(r chi.Router) {
			r.Get("/{fileId}/download", controllers.AttachmentDownload(attachmentService, logg))
			r.Delete("/{fileId}", controllers.AttachmentDelete(attachmentService, logg))
		})

		r.Get("/dashboard/stats", controllers.DashboardStats(licenseService, logg))

		r.Route("/advisory", func(r chi.Router) {
			r.Get("/", controllers.AdvisoryGet(advisoryScheduler, logg))
			r.Post("/refresh", controllers.AdvisoryRefresh(advisoryScheduler, logg))
		})

		r.Route("/preferences/theme", func(r chi.Router) {
			r.Get("/", controllers.ThemeGet(themeService, logg))
			r.Put("/", controllers.ThemePut(themeService, logg))
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(adminOnly)
			r.Get("/", controllers.UserList(userService, logg))
			r.Post("/", controllers.UserCreate(userService, logg))
			r.Get("/{userId}", controllers.UserGet(userService, logg))
			r.Patch("/{userId}", controllers.UserUpdate(userService, logg))
			r.Delete("/{userId}", controllers.UserDelete(userService, logg))
		})
	})

	return r
}

type statusCapture struct {
	http.ResponseWriter
	status int
}

func (s *statusCapture) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// refreshAfter schedules a debounced advisory regeneration once a mutating
// handler has completed successfully.
func refreshAfter(scheduler *advisory.Scheduler, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &statusCapture{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		if scheduler != nil && rec.status < http.StatusBadRequest {
			scheduler.Refresh()
		}
	}
}
