package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/app"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/audit"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/device"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/hotel"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/maintenance"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/report"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/staff"
	"github.com/ovaphlow/pitchfork/console-hotel-assets-go/internal/user"
)

// Prefix is where the console routes are mounted.
const Prefix = "/console"

// loggingResponseWriter wraps http.ResponseWriter to capture status and size.
type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.status = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	if lrw.status == 0 {
		lrw.status = http.StatusOK
	}
	n, err := lrw.ResponseWriter.Write(b)
	lrw.size += n
	return n, err
}

// LoggingMiddleware logs each request at debug level.
func LoggingMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lrw := &loggingResponseWriter{ResponseWriter: w}
			next.ServeHTTP(lrw, r)
			status := lrw.status
			if status == 0 {
				status = http.StatusOK
			}
			logger.Debugw("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"status", status,
				"duration_ms", float64(time.Since(start).Microseconds())/1000.0,
				"size", lrw.size,
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

// SecurityHeadersMiddleware sets common HTTP security headers. The gateway
// only serves JSON, so the CSP forbids everything.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "no-referrer")
			w.Header().Set("Cache-Control", "no-store")
			if w.Header().Get("Content-Security-Policy") == "" {
				w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			}
			if r.TLS != nil {
				w.Header().Set("Strict-Transport-Security", "max-age=2592000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RegisterRoutes mounts the console gateway on a.
func RegisterRoutes(a *app.App, logger *zap.SugaredLogger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer, LoggingMiddleware(logger), SecurityHeadersMiddleware())

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	sh := newSessionHandler(a, logger)
	r.Route(Prefix, func(r chi.Router) {
		r.Post("/session/login", sh.login)
		r.Get("/session", sh.status)

		r.Group(func(r chi.Router) {
			r.Use(requireSession(a.Store))

			r.Post("/session/logout", sh.logout)
			r.Put("/session/scope", sh.changeScope)
			r.Get("/session/tenants", sh.tenants)
			r.Get("/alerts", sh.alerts)
			r.Get("/reports/summary", report.NewHandler(a.Reports, logger).Summary)

			r.Route(device.Path, device.NewHandler(a.Devices, logger).Register)
			r.Route(maintenance.Path, maintenance.NewHandler(a.Maintenances, logger).Register)
			r.Route(user.Path, user.NewHandler(a.Users, logger).Register)
			r.Route(staff.Path, staff.NewHandler(a.Staff, logger).Register)
			r.Route(audit.Path, audit.NewHandler(a.Audit, logger).Register)
			r.Route(hotel.Path, hotel.NewHandler(a.Hotels, logger).Register)
		})
	})
	return r
}
