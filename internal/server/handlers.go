package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/framefit/framefit/pkg/canvas"
	apperrors "github.com/framefit/framefit/pkg/errors"
	"github.com/framefit/framefit/pkg/experiment"
	"github.com/framefit/framefit/pkg/resize"
	"github.com/framefit/framefit/pkg/store"
)

// =============================================================================
// Request / Response Bodies
// =============================================================================

type resizeRequest struct {
	Elements       []canvas.Element `json:"elements"`
	Current        canvas.Size      `json:"current"`
	Target         canvas.Size      `json:"target"`
	UserID         string           `json:"user_id,omitempty"`
	ApplyOptimizer bool             `json:"apply_optimizer,omitempty"`
	SkipCache      bool             `json:"skip_cache,omitempty"`
}

type feedbackRequest struct {
	Rating       int                `json:"rating"`
	Helpful      *bool              `json:"helpful,omitempty"`
	FeedbackText string             `json:"feedback_text,omitempty"`
	Corrections  []canvas.Placement `json:"corrections,omitempty"`
}

type retrainRequest struct {
	DaysBack  int `json:"days_back,omitempty"`
	MinRating int `json:"min_rating,omitempty"`
}

type errorResponse struct {
	Code  apperrors.Code `json:"code"`
	Error string         `json:"error"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	var req resizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "decode request"))
		return
	}

	result, err := s.engine.Resize(r.Context(), resize.Options{
		Elements:       req.Elements,
		Current:        req.Current,
		Target:         req.Target,
		UserID:         req.UserID,
		ApplyOptimizer: req.ApplyOptimizer,
		SkipCache:      req.SkipCache,
		Logger:         s.logger,
	})
	if err != nil {
		// Resize only fails on invalid input; dependency failures degrade
		// to the fallback planner inside the engine.
		writeError(w, http.StatusBadRequest, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "resize"))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "decode request"))
		return
	}

	session, err := s.engine.SubmitFeedback(r.Context(), chi.URLParam(r, "id"), store.FeedbackUpdate{
		Rating:       req.Rating,
		Helpful:      req.Helpful,
		FeedbackText: req.FeedbackText,
		Corrections:  req.Corrections,
	})
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, apperrors.Wrap(apperrors.ErrCodeSessionNotFound, err, "session"))
	case errors.Is(err, store.ErrInvalidRating):
		writeError(w, http.StatusBadRequest, apperrors.Wrap(apperrors.ErrCodeInvalidRating, err, "feedback"))
	case err != nil:
		writeError(w, http.StatusInternalServerError, apperrors.Wrap(apperrors.ErrCodeStore, err, "feedback"))
	default:
		writeJSON(w, http.StatusOK, session)
	}
}

func (s *Server) handleRetrain(w http.ResponseWriter, r *http.Request) {
	var req retrainRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "decode request"))
			return
		}
	}

	report, err := s.engine.Retrain(r.Context(), req.DaysBack, req.MinRating)
	if err != nil {
		writeError(w, http.StatusInternalServerError, apperrors.Wrap(apperrors.ErrCodeStore, err, "retrain"))
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleListVariants(w http.ResponseWriter, r *http.Request) {
	selector := s.engine.Selector
	if selector == nil {
		writeJSON(w, http.StatusOK, []experiment.Variant{})
		return
	}
	writeJSON(w, http.StatusOK, selector.Variants())
}

func (s *Server) handleOptimizeVariants(w http.ResponseWriter, r *http.Request) {
	selector := s.engine.Selector
	if selector == nil {
		writeError(w, http.StatusConflict, apperrors.New(apperrors.ErrCodeInternal, "no variant selector configured"))
		return
	}
	selector.AutoOptimizeWeights()
	writeJSON(w, http.StatusOK, selector.Variants())
}

func (s *Server) handleSignificance(w http.ResponseWriter, r *http.Request) {
	selector := s.engine.Selector
	if selector == nil {
		writeError(w, http.StatusConflict, apperrors.New(apperrors.ErrCodeInternal, "no variant selector configured"))
		return
	}

	a, b := r.URL.Query().Get("a"), r.URL.Query().Get("b")
	sig, err := selector.CalculateSignificance(a, b)
	switch {
	case errors.Is(err, experiment.ErrUnknownVariant):
		writeError(w, http.StatusNotFound, apperrors.Wrap(apperrors.ErrCodeVariantNotFound, err, "significance"))
	case errors.Is(err, experiment.ErrInsufficientData):
		writeError(w, http.StatusUnprocessableEntity, apperrors.Wrap(apperrors.ErrCodeInsufficientData, err, "significance"))
	case err != nil:
		writeError(w, http.StatusInternalServerError, apperrors.Wrap(apperrors.ErrCodeInternal, err, "significance"))
	default:
		writeJSON(w, http.StatusOK, sig)
	}
}

// =============================================================================
// Response Helpers
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Code: apperrors.GetCode(err), Error: apperrors.UserMessage(err)})
}
