package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"ledger-api/internal/metrics"
)

type RouterOptions struct {
	AllowedOrigin string
	// Metrics is optional; without it /metrics is not served.
	Metrics *metrics.Metrics
}

// NewRouter wires every handler and middleware onto one router.
func NewRouter(
	accountHandler *AccountHandler,
	orderHandler *OrderHandler,
	opts RouterOptions,
	logger *logrus.Logger,
) *mux.Router {
	router := mux.NewRouter()

	accountHandler.RegisterRoutes(router)
	orderHandler.RegisterRoutes(router)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	if opts.Metrics != nil {
		router.Handle("/metrics", opts.Metrics.Handler()).Methods(http.MethodGet)
		router.Use(opts.Metrics.Middleware)
	}
	router.Use(LoggingMiddleware(logger))
	router.Use(mux.CORSMethodMiddleware(router))
	router.Use(CORSMiddleware(opts.AllowedOrigin))

	return router
}
