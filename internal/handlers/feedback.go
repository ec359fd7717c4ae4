package handlers

import (
	"encoding/json"
	"net/http"

	"prepflow/internal/middleware"
	"prepflow/internal/models"
	"prepflow/internal/services"

	"github.com/go-playground/validator/v10"
)

type FeedbackHandler struct {
	svc      InterviewService
	validate *validator.Validate
}

func NewFeedbackHandler(svc InterviewService) *FeedbackHandler {
	return &FeedbackHandler{
		svc:      svc,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

type CreateFeedbackRequest struct {
	InterviewID string                     `json:"interviewId" validate:"required,mongodb"`
	Transcript  []models.TranscriptMessage `json:"transcript" validate:"required,min=1,dive"`
	FeedbackID  string                     `json:"feedbackId,omitempty" validate:"omitempty,mongodb"`
}

// --- POST /api/feedback ---

func (h *FeedbackHandler) CreateFeedback(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "error": "invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "error": err.Error()})
		return
	}

	result := h.svc.CreateFeedback(r.Context(), services.CreateFeedbackParams{
		InterviewID: req.InterviewID,
		UserID:      userID,
		Transcript:  req.Transcript,
		FeedbackID:  req.FeedbackID,
	})
	if !result.Success {
		writeJSON(w, http.StatusInternalServerError, result)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}
