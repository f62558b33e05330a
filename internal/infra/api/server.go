package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"trip-itinerary-ai/internal/infra/api/apiv1"
	"trip-itinerary-ai/internal/usecase"
)

type RouterOptions struct {
	Async          bool
	RequestTimeout time.Duration
}

// NewRouter builds the public HTTP surface: the authenticated v1 API plus
// unauthenticated /health and /metrics.
func NewRouter(genUC usecase.GenerationUseCase, auth *AuthManager, opts RouterOptions, logger *zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	var authMW func(http.Handler) http.Handler
	if auth != nil {
		authMW = auth.Auth()
	}
	apiv1.RegisterAPIV1(r, apiv1.NewServer(genUC, opts.Async, logger), authMW)

	return Chain(r,
		TraceID(),
		RequestLog(logger),
		Recover(logger),
		Timeout(opts.RequestTimeout),
	)
}
