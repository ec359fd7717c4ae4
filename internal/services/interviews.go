// Package services holds the interview and feedback operations shared by the
// JSON API and the server-rendered pages.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"prepflow/internal/ai"
	"prepflow/internal/logging"
	"prepflow/internal/metrics"
	"prepflow/internal/models"
	"prepflow/internal/notify"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"
)

const DefaultLatestLimit = 20

type InterviewStore interface {
	FindByUserID(ctx context.Context, userID bson.ObjectID) ([]models.Interview, error)
	FindLatest(ctx context.Context, excludeUser bson.ObjectID, limit int64) ([]models.Interview, error)
	FindByID(ctx context.Context, id bson.ObjectID) (*models.Interview, error)
}

type FeedbackStore interface {
	Create(ctx context.Context, feedback *models.Feedback) error
	Replace(ctx context.Context, feedback *models.Feedback) error
	FindByInterview(ctx context.Context, interviewID, userID bson.ObjectID) (*models.Feedback, error)
}

type UserStore interface {
	FindByID(ctx context.Context, id bson.ObjectID) (*models.User, error)
}

type Options struct {
	// DefaultLimit applies to GetLatestInterviews when the caller gives none.
	DefaultLimit int
	// BaseURL prefixes links in notification emails.
	BaseURL string
}

type InterviewService struct {
	interviews InterviewStore
	feedback   FeedbackStore
	users      UserStore
	generator  ai.FeedbackGenerator
	notifier   notify.Notifier
	validate   *validator.Validate

	defaultLimit int
	baseURL      string
	now          func() time.Time

	wg sync.WaitGroup
}

func NewInterviewService(
	interviews InterviewStore,
	feedback FeedbackStore,
	users UserStore,
	generator ai.FeedbackGenerator,
	notifier notify.Notifier,
	opts Options,
) *InterviewService {
	limit := opts.DefaultLimit
	if limit <= 0 {
		limit = DefaultLatestLimit
	}
	return &InterviewService{
		interviews:   interviews,
		feedback:     feedback,
		users:        users,
		generator:    generator,
		notifier:     notifier,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
		defaultLimit: limit,
		baseURL:      opts.BaseURL,
		now:          time.Now,
	}
}

// Wait blocks until background notifications have finished.
func (s *InterviewService) Wait() {
	s.wg.Wait()
}

// GetInterviewsByUserID lists the user's interviews, newest first. A malformed
// id matches nothing.
func (s *InterviewService) GetInterviewsByUserID(ctx context.Context, userID string) ([]models.Interview, error) {
	oid, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return []models.Interview{}, nil
	}
	interviews, err := s.interviews.FindByUserID(ctx, oid)
	if err != nil {
		return nil, fmt.Errorf("interviews for user %s: %w", userID, err)
	}
	return interviews, nil
}

type LatestInterviewsParams struct {
	UserID string
	Limit  int
}

// GetLatestInterviews lists finalized interviews by other users, newest first.
func (s *InterviewService) GetLatestInterviews(ctx context.Context, params LatestInterviewsParams) ([]models.Interview, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = s.defaultLimit
	}

	// A malformed id owns no interviews, so there is nothing to exclude.
	exclude, _ := bson.ObjectIDFromHex(params.UserID)

	interviews, err := s.interviews.FindLatest(ctx, exclude, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("latest interviews: %w", err)
	}
	return interviews, nil
}

// GetInterviewByID returns nil when the interview does not exist.
func (s *InterviewService) GetInterviewByID(ctx context.Context, id string) (*models.Interview, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	interview, err := s.interviews.FindByID(ctx, oid)
	if err != nil {
		return nil, fmt.Errorf("interview %s: %w", id, err)
	}
	return interview, nil
}

type CreateFeedbackParams struct {
	InterviewID string                     `validate:"required,mongodb"`
	UserID      string                     `validate:"required,mongodb"`
	Transcript  []models.TranscriptMessage `validate:"required,min=1,dive"`
	// FeedbackID, when set, replaces that feedback document instead of
	// adding a new one.
	FeedbackID string `validate:"omitempty,mongodb"`
}

type CreateFeedbackResult struct {
	Success    bool   `json:"success"`
	FeedbackID string `json:"feedbackId,omitempty"`
}

// CreateFeedback scores the transcript and stores the result. Every failure
// is logged and reported only as Success == false.
func (s *InterviewService) CreateFeedback(ctx context.Context, params CreateFeedbackParams) CreateFeedbackResult {
	lg := logging.FromContext(ctx).With(
		zap.String("interview_id", params.InterviewID),
		zap.String("user_id", params.UserID),
	)

	feedback, err := s.createFeedback(ctx, params)
	metrics.FeedbackCreated(err == nil)
	if err != nil {
		lg.Error("error saving feedback", zap.Error(err))
		return CreateFeedbackResult{Success: false}
	}

	lg.Info("feedback saved",
		zap.String("feedback_id", feedback.ID.Hex()),
		zap.Int("total_score", feedback.TotalScore),
	)
	s.notifyFeedbackReady(ctx, feedback)
	return CreateFeedbackResult{Success: true, FeedbackID: feedback.ID.Hex()}
}

func (s *InterviewService) createFeedback(ctx context.Context, params CreateFeedbackParams) (*models.Feedback, error) {
	if err := s.validate.Struct(params); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	interviewID, _ := bson.ObjectIDFromHex(params.InterviewID)
	userID, _ := bson.ObjectIDFromHex(params.UserID)

	assessment, err := s.generator.Generate(ctx, params.Transcript)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	feedback := &models.Feedback{
		InterviewID:         interviewID,
		UserID:              userID,
		TotalScore:          assessment.TotalScore,
		CategoryScores:      assessment.CategoryScores,
		Strengths:           assessment.Strengths,
		AreasForImprovement: assessment.AreasForImprovement,
		FinalAssessment:     assessment.FinalAssessment,
		CreatedAt:           s.now(),
	}

	if params.FeedbackID != "" {
		feedback.ID, _ = bson.ObjectIDFromHex(params.FeedbackID)
		if err := s.feedback.Replace(ctx, feedback); err != nil {
			return nil, err
		}
		return feedback, nil
	}
	if err := s.feedback.Create(ctx, feedback); err != nil {
		return nil, err
	}
	return feedback, nil
}

func (s *InterviewService) notifyFeedbackReady(ctx context.Context, feedback *models.Feedback) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		lg := logging.FromContext(ctx)

		user, err := s.users.FindByID(ctx, feedback.UserID)
		if err != nil || user == nil {
			lg.Warn("feedback email skipped: user lookup failed",
				zap.String("user_id", feedback.UserID.Hex()), zap.Error(err))
			return
		}

		role := "mock"
		if interview, err := s.interviews.FindByID(ctx, feedback.InterviewID); err == nil && interview != nil {
			role = interview.Role
		}

		link := fmt.Sprintf("%s/interview/%s/feedback", s.baseURL, feedback.InterviewID.Hex())
		msg, err := notify.FeedbackReady(user.Email, role, feedback.TotalScore, link)
		if err != nil {
			lg.Error("render feedback email", zap.Error(err))
			return
		}
		if err := s.notifier.Publish(ctx, msg); err != nil {
			lg.Error("error sending feedback email", zap.Error(err))
		}
	}()
}

type FeedbackQuery struct {
	InterviewID string
	// UserID optionally narrows the lookup to one user's feedback.
	UserID string
}

var errMissingInterviewID = errors.New("interviewId is required")

// GetFeedbackByInterviewID returns the newest matching feedback, or nil.
func (s *InterviewService) GetFeedbackByInterviewID(ctx context.Context, q FeedbackQuery) (*models.Feedback, error) {
	if q.InterviewID == "" {
		logging.FromContext(ctx).Error("error fetching feedback", zap.Error(errMissingInterviewID))
		return nil, nil
	}
	interviewID, err := bson.ObjectIDFromHex(q.InterviewID)
	if err != nil {
		return nil, nil
	}

	var userID bson.ObjectID
	if q.UserID != "" {
		if userID, err = bson.ObjectIDFromHex(q.UserID); err != nil {
			return nil, nil
		}
	}

	feedback, err := s.feedback.FindByInterview(ctx, interviewID, userID)
	if err != nil {
		return nil, fmt.Errorf("feedback for interview %s: %w", q.InterviewID, err)
	}
	return feedback, nil
}

// GetCurrentUser resolves the signed-in user; nil when the account is gone.
func (s *InterviewService) GetCurrentUser(ctx context.Context, userID string) (*models.User, error) {
	oid, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, nil
	}
	user, err := s.users.FindByID(ctx, oid)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", userID, err)
	}
	return user, nil
}
