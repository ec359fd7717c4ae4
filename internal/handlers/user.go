package handlers

import (
	"net/http"

	"prepflow/internal/logging"
	"prepflow/internal/middleware"

	"go.uber.org/zap"
)

// --- GET /api/me ---

func (h *InterviewHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.svc.GetCurrentUser(r.Context(), userID)
	if err != nil {
		logging.FromContext(r.Context()).Error("error finding user", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}
