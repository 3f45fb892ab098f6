// Package httpapi exposes the assistant over a JSON HTTP API.
//
// Routes:
//
//	GET    /health                  liveness probe
//	GET    /v1/stats                corpus summary
//	POST   /v1/retrieve             ranked chunks and rendered context
//	POST   /v1/ask                  answer a question within a session
//	GET    /v1/history?session_id=  turns of a session
//	DELETE /v1/sessions/{id}        end a session
package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/custodia-labs/sercha-voice/internal/logger"
)

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs request details and latency.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Debug("%s %s %d - %v", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

// corsMiddleware allows browser clients such as a voice front end.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// NewRouter creates and configures the HTTP router.
func NewRouter(handler *Handler) *mux.Router {
	r := mux.NewRouter()

	r.Use(loggingMiddleware)
	r.Use(corsMiddleware)

	r.HandleFunc("/health", handler.HandleHealth).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/stats", handler.HandleStats).Methods(http.MethodGet)
	v1.HandleFunc("/retrieve", handler.HandleRetrieve).Methods(http.MethodPost, http.MethodOptions)
	v1.HandleFunc("/ask", handler.HandleAsk).Methods(http.MethodPost, http.MethodOptions)
	v1.HandleFunc("/history", handler.HandleHistory).Methods(http.MethodGet)
	v1.HandleFunc("/sessions/{id}", handler.HandleEndSession).Methods(http.MethodDelete, http.MethodOptions)

	return r
}
