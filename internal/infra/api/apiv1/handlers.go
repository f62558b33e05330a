package apiv1

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"trip-itinerary-ai/internal/domain"
	"trip-itinerary-ai/internal/infra/logging"
	"trip-itinerary-ai/internal/usecase"
)

func (s *Server) enqueue(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.caller(w, r)
	if !ok {
		return
	}
	draftID := chi.URLParam(r, "draftID")
	if err := s.validate.Var(draftID, "required,max=64"); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", "invalid draft id")
		return
	}

	var req EnqueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid_argument", "invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
		return
	}

	res, err := s.genUC.Enqueue(r.Context(), userID, usecase.EnqueueRequest{
		DraftID:     draftID,
		ItineraryID: req.ItineraryID,
		TargetDays:  req.TargetDays,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	code := http.StatusOK
	if s.async {
		code = http.StatusAccepted
	}
	writeJSON(w, code, toEnqueueResponse(res))
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.caller(w, r)
	if !ok {
		return
	}
	st, err := s.genUC.Status(r.Context(), userID, chi.URLParam(r, "jobID"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toJobStatusResponse(st))
}

func (s *Server) audits(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.caller(w, r)
	if !ok {
		return
	}
	rows, err := s.genUC.Audits(r.Context(), userID, chi.URLParam(r, "jobID"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	items := make([]Audit, 0, len(rows))
	for _, a := range rows {
		items = append(items, toAudit(a))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) caller(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := logging.UserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing caller identity")
		return "", false
	}
	return userID, true
}

func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, domain.ErrJobAlreadyRunning):
		writeError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, domain.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
	default:
		l := logging.With(r.Context(), s.log)
		l.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, kind, msg string) {
	writeJSON(w, code, ErrorResponse{Error: kind, Message: msg})
}
