package repository

import (
	"context"
	"errors"
	"fmt"

	"prepflow/internal/database"
	"prepflow/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.opentelemetry.io/otel"
)

type FeedbackRepo struct {
	collection *mongo.Collection
}

func NewFeedbackRepo() *FeedbackRepo {
	return &FeedbackRepo{
		collection: database.GetCollection(database.FeedbackCollection),
	}
}

// Create inserts feedback and fills in its generated ID.
func (r *FeedbackRepo) Create(ctx context.Context, feedback *models.Feedback) error {
	ctx, span := otel.Tracer("repository.feedback").Start(ctx, "feedback.Create")
	defer span.End()

	result, err := r.collection.InsertOne(ctx, feedback)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("insert feedback: %w", err)
	}
	feedback.ID = result.InsertedID.(bson.ObjectID)
	return nil
}

// Replace writes feedback under its existing ID, inserting it if absent. The
// match includes the owner, so another user's document is never overwritten:
// the upsert then collides on _id and fails.
func (r *FeedbackRepo) Replace(ctx context.Context, feedback *models.Feedback) error {
	ctx, span := otel.Tracer("repository.feedback").Start(ctx, "feedback.Replace")
	defer span.End()

	if feedback.ID.IsZero() {
		return errors.New("replace feedback: missing id")
	}
	_, err := r.collection.ReplaceOne(ctx, replaceFilter(feedback), feedback, options.Replace().SetUpsert(true))
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("replace feedback %s: %w", feedback.ID.Hex(), err)
	}
	return nil
}

// FindByInterview returns the newest feedback for the interview, narrowed to
// userID when it is non-zero. Returns nil when nothing matches.
func (r *FeedbackRepo) FindByInterview(ctx context.Context, interviewID, userID bson.ObjectID) (*models.Feedback, error) {
	ctx, span := otel.Tracer("repository.feedback").Start(ctx, "feedback.FindByInterview")
	defer span.End()

	var feedback models.Feedback
	opts := options.FindOne().SetSort(newestFirst)
	err := r.collection.FindOne(ctx, feedbackFilter(interviewID, userID), opts).Decode(&feedback)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("find feedback for interview %s: %w", interviewID.Hex(), err)
	}
	return &feedback, nil
}

// EnsureIndexes creates the lookup index. It is deliberately not unique:
// duplicate feedback rows are tolerated and the newest one is read.
func (r *FeedbackRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "interview_id", Value: 1},
			{Key: "user_id", Value: 1},
			{Key: "created_at", Value: -1},
		},
	})
	return err
}

func feedbackFilter(interviewID, userID bson.ObjectID) bson.M {
	filter := bson.M{"interview_id": interviewID}
	if !userID.IsZero() {
		filter["user_id"] = userID
	}
	return filter
}

func replaceFilter(feedback *models.Feedback) bson.M {
	return bson.M{"_id": feedback.ID, "user_id": feedback.UserID}
}
