package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/releaseboard/pkg/usecase"
	"github.com/secmon-lab/releaseboard/pkg/utils/logging"
)

type Server struct {
	router         *chi.Mux
	authUC         AuthUseCase
	metricsHandler http.Handler
}

type Options func(*Server)

// WithAuth overrides the authentication carried by the use cases
func WithAuth(authUC AuthUseCase) Options {
	return func(s *Server) {
		s.authUC = authUC
	}
}

// WithMetricsHandler exposes h on /metrics without authentication
func WithMetricsHandler(h http.Handler) Options {
	return func(s *Server) {
		s.metricsHandler = h
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		authUC: uc.Auth,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	if s.metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", s.metricsHandler)
	}
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		// Opened from email clients, so no credentials
		r.Get("/notifications/{id}/pixel.gif", trackingPixelHandler(uc.Notification))

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware(s.authUC))

			r.Get("/auth/me", authMeHandler(s.authUC))

			r.Route("/products", func(r chi.Router) {
				r.Post("/", createProductHandler(uc.Product))
				r.Get("/", listProductsHandler(uc.Product))
				r.Get("/{code}", getProductHandler(uc.Product))
				r.With(requireAdmin).Delete("/{code}", deleteProductHandler(uc.Product))
			})

			r.Route("/releases", func(r chi.Router) {
				r.Post("/", createReleaseHandler(uc.Release))
				r.Get("/", listReleasesHandler(uc.Release))
				r.Get("/{code}", getReleaseHandler(uc.Release))
				r.Put("/{code}", updateReleaseHandler(uc.Release))
				r.Delete("/{code}", deleteReleaseHandler(uc.Release))
				r.Get("/{code}/dashboard", releaseDashboardHandler(uc.Analytics))
				r.Get("/{code}/metrics", releaseMetricsHandler(uc.Analytics))
			})

			r.Route("/features", func(r chi.Router) {
				r.Post("/", createFeatureHandler(uc.Feature))
				r.Get("/", listFeaturesHandler(uc.Feature))
				r.Get("/{code}", getFeatureHandler(uc.Feature))
				r.Put("/{code}", updateFeatureHandler(uc.Feature))
				r.Delete("/{code}", deleteFeatureHandler(uc.Feature))
				r.Post("/{code}/dependencies", addDependencyHandler(uc.Feature))
				r.Get("/{code}/dependencies", listDependenciesHandler(uc.Feature))
				r.Put("/{code}/dependencies/{dependsOn}", updateDependencyHandler(uc.Feature))
				r.Delete("/{code}/dependencies/{dependsOn}", removeDependencyHandler(uc.Feature))
			})

			r.Post("/usage", ingestUsageHandler(uc.Usage))
			r.Get("/usage/segments", segmentAnalyticsHandler(uc.Analytics))

			r.Get("/notifications", listNotificationsHandler(uc.Notification))
			r.Put("/notifications/{id}/read", markNotificationReadHandler(uc.Notification))

			r.Route("/admin", func(r chi.Router) {
				r.Use(requireAdmin)
				r.Get("/health", healthMetricsHandler(uc.Analytics))
				r.Get("/errors", listErrorLogsHandler(uc.Admin))
				r.Post("/errors/reprocess", reprocessHandler(uc.Reprocess))
				r.Get("/errors/{id}", getErrorLogHandler(uc.Admin))
				r.Get("/email-failures", listDeliveryFailuresHandler(uc.Admin))
			})
		})
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
