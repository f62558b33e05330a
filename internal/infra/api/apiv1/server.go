package apiv1

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"trip-itinerary-ai/internal/usecase"
)

type Server struct {
	genUC    usecase.GenerationUseCase
	async    bool
	validate *validator.Validate
	log      *zerolog.Logger
}

func NewServer(genUC usecase.GenerationUseCase, async bool, logger *zerolog.Logger) *Server {
	l := logger.With().Str("component", "apiv1").Logger()
	return &Server{
		genUC:    genUC,
		async:    async,
		validate: validator.New(),
		log:      &l,
	}
}

// RegisterAPIV1 mounts the generation routes on r. Every route sits behind auth.
func RegisterAPIV1(r chi.Router, s *Server, auth func(http.Handler) http.Handler) {
	r.Route("/api/v1", func(r chi.Router) {
		if auth != nil {
			r.Use(auth)
		}
		r.Post("/drafts/{draftID}/generation-jobs", s.enqueue)
		r.Get("/generation-jobs/{jobID}", s.status)
		r.Get("/generation-jobs/{jobID}/audits", s.audits)
	})
}
