package handlers

import (
	"net/http"

	"prepflow/internal/logging"
	"prepflow/internal/middleware"
	"prepflow/internal/models"
	"prepflow/internal/services"
	"prepflow/internal/views"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type PageHandler struct {
	svc      InterviewService
	renderer *views.Renderer
}

func NewPageHandler(svc InterviewService, renderer *views.Renderer) *PageHandler {
	return &PageHandler{svc: svc, renderer: renderer}
}

// --- GET /interview/{id}/feedback ---

func (h *PageHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lg := logging.FromContext(ctx)
	id := chi.URLParam(r, "id")

	interview, err := h.svc.GetInterviewByID(ctx, id)
	if err != nil {
		lg.Error("error fetching interview", zap.Error(err))
		pageError(w, r)
		return
	}
	if interview == nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	// Signed-in visitors only see their own feedback.
	q := services.FeedbackQuery{
		InterviewID: id,
		UserID:      middleware.GetUserID(ctx),
	}
	feedback, err := h.svc.GetFeedbackByInterviewID(ctx, q)
	if err != nil {
		lg.Error("error fetching feedback", zap.Error(err))
	}

	h.render(w, r, "feedback", views.NewFeedbackPage(interview, feedback))
}

// --- GET / ---

func (h *PageHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lg := logging.FromContext(ctx)
	userID := middleware.GetUserID(ctx)

	var (
		user   *models.User
		mine   []models.Interview
		latest []models.Interview
	)

	// Each section degrades to empty on error, so the goroutines never fail
	// the group.
	var g errgroup.Group
	if userID != "" {
		g.Go(func() error {
			u, err := h.svc.GetCurrentUser(ctx, userID)
			if err != nil {
				lg.Warn("error fetching current user", zap.Error(err))
			}
			user = u
			return nil
		})
		g.Go(func() error {
			list, err := h.svc.GetInterviewsByUserID(ctx, userID)
			if err != nil {
				lg.Error("error listing interviews", zap.Error(err))
			}
			mine = list
			return nil
		})
	}
	g.Go(func() error {
		list, err := h.svc.GetLatestInterviews(ctx, services.LatestInterviewsParams{UserID: userID})
		if err != nil {
			lg.Error("error listing latest interviews", zap.Error(err))
		}
		latest = list
		return nil
	})
	_ = g.Wait()

	h.render(w, r, "dashboard", views.NewDashboardPage(user, mine, latest))
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, page string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.renderer.Render(w, page, data); err != nil {
		logging.FromContext(r.Context()).Error("error rendering page", zap.String("page", page), zap.Error(err))
		pageError(w, r)
	}
}

// pageError quotes the request id so a user report can be matched to the logs.
func pageError(w http.ResponseWriter, r *http.Request) {
	msg := "internal server error"
	if id := logging.RequestIDFromContext(r.Context()); id != "" {
		msg += " (request " + id + ")"
	}
	http.Error(w, msg, http.StatusInternalServerError)
}
