package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"audio-track-subscription/internal/infra/logging"
	"audio-track-subscription/internal/infra/redis"
	"audio-track-subscription/internal/usecase"
)

// orderRateLimit caps order-creation attempts per user per window.
const (
	orderRateLimit  = 5
	orderRateWindow = time.Minute
)

type Server struct {
	userUC       usecase.UserUseCase
	catalogUC    usecase.CatalogUseCase
	orderUC      usecase.OrderUseCase
	settlementUC usecase.SettlementUseCase
	statusUC     usecase.StatusUseCase
	statsUC      usecase.StatsUseCase
	adminUC      usecase.AdminUseCase

	auth    *AuthManager
	limiter *redis.RateLimiter
	apiKey  string
	log     *zerolog.Logger
}

func NewServer(
	userUC usecase.UserUseCase,
	catalogUC usecase.CatalogUseCase,
	orderUC usecase.OrderUseCase,
	settlementUC usecase.SettlementUseCase,
	statusUC usecase.StatusUseCase,
	statsUC usecase.StatsUseCase,
	adminUC usecase.AdminUseCase,
	auth *AuthManager,
	limiter *redis.RateLimiter,
	apiKey string,
	logger *zerolog.Logger,
) *Server {
	srvLog := logger.With().Str("component", "WebServer").Logger()
	return &Server{
		userUC:       userUC,
		catalogUC:    catalogUC,
		orderUC:      orderUC,
		settlementUC: settlementUC,
		statusUC:     statusUC,
		statsUC:      statsUC,
		adminUC:      adminUC,
		auth:         auth,
		limiter:      limiter,
		apiKey:       apiKey,
		log:          &srvLog,
	}
}

// Router assembles the full route table.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(s.requestLogger)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)

		r.Get("/categories", s.handleListCategories)
		r.Get("/categories/{id}/tracks", s.handleCategoryTracks)
		r.With(s.optionalUser).Get("/tracks/{id}", s.handleGetTrack)

		// The gateway redirect carries no session; the verified signature is
		// the authentication on this endpoint.
		r.Get("/payment/razorpay-success", s.handlePaymentSuccess)

		r.Group(func(r chi.Router) {
			r.Use(s.requireUser)
			r.Get("/subscription/status", s.handleSubscriptionStatus)
			r.Get("/me/active-tracks", s.handleActiveTracks)
			r.Post("/payments/generate-order", s.handleGenerateOrder)
		})
	})

	r.Post("/webhooks/razorpay", s.handleRazorpayWebhook)

	r.Route("/admin/api", func(r chi.Router) {
		r.Use(s.requireAdmin)
		r.Get("/stats", s.handleAdminStats)
		r.Get("/stats/monthly", s.handleAdminMonthlyStats)
		r.Get("/users", s.handleAdminListUsers)
		r.Get("/subscriptions", s.handleAdminListSubscriptions)
		r.Get("/subscriptions/export", s.handleAdminExportSubscriptions)
		r.Post("/subscriptions", s.handleAdminSaveSubscription)
		r.Put("/subscriptions/{id}", s.handleAdminSaveSubscription)
		r.Delete("/subscriptions/{id}", s.handleAdminDeleteSubscription)
		r.Get("/transactions", s.handleAdminListTransactions)
		r.Get("/transactions/export", s.handleAdminExportTransactions)
	})

	return r
}

// requestLogger stamps each request with a trace id and logs the outcome.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := uuid.NewString()
		ctx := logging.WithTraceID(r.Context(), traceID)
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r.WithContext(ctx))

		s.log.Info().
			Str("trace_id", traceID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", sw.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
