package handlers

import (
	"context"
	"net/http"
	"strconv"

	"prepflow/internal/logging"
	"prepflow/internal/middleware"
	"prepflow/internal/models"
	"prepflow/internal/services"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxLatestLimit = 100

// InterviewService is implemented by *services.InterviewService.
type InterviewService interface {
	GetInterviewsByUserID(ctx context.Context, userID string) ([]models.Interview, error)
	GetLatestInterviews(ctx context.Context, params services.LatestInterviewsParams) ([]models.Interview, error)
	GetInterviewByID(ctx context.Context, id string) (*models.Interview, error)
	CreateFeedback(ctx context.Context, params services.CreateFeedbackParams) services.CreateFeedbackResult
	GetFeedbackByInterviewID(ctx context.Context, q services.FeedbackQuery) (*models.Feedback, error)
	GetCurrentUser(ctx context.Context, userID string) (*models.User, error)
}

type InterviewHandler struct {
	svc InterviewService
}

func NewInterviewHandler(svc InterviewService) *InterviewHandler {
	return &InterviewHandler{svc: svc}
}

// --- GET /api/interviews ---

func (h *InterviewHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	interviews, err := h.svc.GetInterviewsByUserID(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		logging.FromContext(r.Context()).Error("error listing interviews", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, interviews)
}

// --- GET /api/interviews/latest?limit= ---

func (h *InterviewHandler) ListLatest(w http.ResponseWriter, r *http.Request) {
	params := services.LatestInterviewsParams{UserID: middleware.GetUserID(r.Context())}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxLatestLimit {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		params.Limit = limit
	}

	interviews, err := h.svc.GetLatestInterviews(r.Context(), params)
	if err != nil {
		logging.FromContext(r.Context()).Error("error listing latest interviews", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, interviews)
}

// --- GET /api/interviews/{id} ---

func (h *InterviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	interview, err := h.svc.GetInterviewByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		logging.FromContext(r.Context()).Error("error finding interview", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if interview == nil {
		writeError(w, http.StatusNotFound, "interview not found")
		return
	}
	writeJSON(w, http.StatusOK, interview)
}

// --- GET /api/interviews/{id}/feedback ---

func (h *InterviewHandler) GetFeedback(w http.ResponseWriter, r *http.Request) {
	feedback, err := h.svc.GetFeedbackByInterviewID(r.Context(), services.FeedbackQuery{
		InterviewID: chi.URLParam(r, "id"),
		UserID:      middleware.GetUserID(r.Context()),
	})
	if err != nil {
		logging.FromContext(r.Context()).Error("error finding feedback", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if feedback == nil {
		writeError(w, http.StatusNotFound, "feedback not found")
		return
	}
	writeJSON(w, http.StatusOK, feedback)
}
