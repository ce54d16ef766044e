// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"review_radar/internal/app"
	"review_radar/internal/domain"
)

type Handlers struct {
	A *app.AnalysisService
	Q *app.QueryService
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Post("/v1/analyses", h.runAnalysis)
	s.mux.Get("/v1/analyses/{id}", h.getAnalysis)
	s.mux.Get("/v1/analyses/{id}/reviews", h.listReviews)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// analysisResponse is what one run returns: the stored analysis plus the
// reviews that went into it, per entity in target-first order.
type analysisResponse struct {
	Analysis domain.Analysis `json:"analysis"`
	Entities []entityResult  `json:"entities"`
}

type entityResult struct {
	Label   string                `json:"label"`
	Status  domain.FetchStatus    `json:"status"`
	Pages   int                   `json:"pages"`
	Reviews []domain.ReviewRecord `json:"reviews"`
}

func (h *Handlers) runAnalysis(w http.ResponseWriter, r *http.Request) {
	var req app.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "request body must be JSON")
		return
	}

	a, set, err := h.A.Analyze(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidRequest):
			writeProblem(w, http.StatusBadRequest, "Invalid request", err.Error())
		case errors.Is(err, domain.ErrNoMatch):
			writeProblem(w, http.StatusNotFound, "Business not found", err.Error())
		case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrForbidden):
			writeProblem(w, http.StatusBadGateway, "Upstream rejected credentials", err.Error())
		default:
			writeProblem(w, http.StatusInternalServerError, "Analysis failed", err.Error())
		}
		return
	}

	resp := analysisResponse{Analysis: a}
	for _, label := range set.Labels() {
		res, _ := set.Get(label)
		resp.Entities = append(resp.Entities, entityResult{
			Label:   label,
			Status:  res.Status,
			Pages:   res.Pages,
			Reviews: res.Records,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error().Err(err).Msg("failed to write runAnalysis body")
	}
}

func (h *Handlers) getAnalysis(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	resp, err := h.Q.GetAnalysis(r.Context(), id)
	if err != nil {
		writeProblem(w, http.StatusNotFound, "Not Found", "analysis not found")
		return
	}

	etag, body := calcETagAndBody(resp)
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write getAnalysis body")
	}
}

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}

	out, err := h.Q.ListAnalysisReviews(r.Context(), id)
	if err != nil {
		writeProblem(w, http.StatusNotFound, "Not Found", "reviews not found")
		return
	}

	etag, body := calcETagAndBody(out)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write listReviews body")
	}
}
