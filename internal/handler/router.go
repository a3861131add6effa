package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/gorilla/mux"

	"github.com/riteshkumar/account-ledger/internal/metrics"
)

type RouterConfig struct {
	Accounts       *AccountHandler
	Transactions   *TransactionHandler
	Statements     *StatementHandler
	Resolver       *AccountResolver
	AllowedOrigins []string
	KeyHeader      string
	Logger         *slog.Logger
}

// NewRouter wires every route. Creation, health and metrics are public; the
// rest of the routes sit behind the account resolver. CORS wraps the whole
// router so preflight requests are answered before route matching.
func NewRouter(cfg RouterConfig) http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)
	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	cfg.Accounts.RegisterRoutes(router)

	resolved := router.NewRoute().Subrouter()
	resolved.Use(cfg.Resolver.Middleware)

	cfg.Accounts.RegisterResolvedRoutes(resolved)
	cfg.Transactions.RegisterRoutes(resolved)
	cfg.Statements.RegisterRoutes(resolved)

	router.Use(metrics.Middleware)
	router.Use(loggingMiddleware(cfg.Logger))

	return cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", cfg.KeyHeader},
		AllowCredentials: false,
		MaxAge:           300,
	})(router)
}

// loggingMiddleware logs incoming HTTP requests
func loggingMiddleware(logger *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			logger.Info("incoming request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrapped.statusCode,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
