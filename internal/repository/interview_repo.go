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

type InterviewRepo struct {
	collection *mongo.Collection
}

func NewInterviewRepo() *InterviewRepo {
	return &InterviewRepo{
		collection: database.GetCollection(database.InterviewsCollection),
	}
}

var newestFirst = bson.D{{Key: "created_at", Value: -1}}

// FindByUserID returns every interview owned by userID, newest first.
func (r *InterviewRepo) FindByUserID(ctx context.Context, userID bson.ObjectID) ([]models.Interview, error) {
	ctx, span := otel.Tracer("repository.interviews").Start(ctx, "interviews.FindByUserID")
	defer span.End()

	cur, err := r.collection.Find(ctx, byUserFilter(userID), options.Find().SetSort(newestFirst))
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("find interviews by user: %w", err)
	}
	return decodeInterviews(ctx, cur)
}

// FindLatest returns finalized interviews not owned by excludeUser, newest
// first. A zero excludeUser disables the ownership filter.
func (r *InterviewRepo) FindLatest(ctx context.Context, excludeUser bson.ObjectID, limit int64) ([]models.Interview, error) {
	ctx, span := otel.Tracer("repository.interviews").Start(ctx, "interviews.FindLatest")
	defer span.End()

	opts := options.Find().SetSort(newestFirst).SetLimit(limit)
	cur, err := r.collection.Find(ctx, latestFilter(excludeUser), opts)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("find latest interviews: %w", err)
	}
	return decodeInterviews(ctx, cur)
}

func (r *InterviewRepo) FindByID(ctx context.Context, id bson.ObjectID) (*models.Interview, error) {
	ctx, span := otel.Tracer("repository.interviews").Start(ctx, "interviews.FindByID")
	defer span.End()

	var interview models.Interview
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&interview)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("find interview %s: %w", id.Hex(), err)
	}
	return &interview, nil
}

// EnsureIndexes creates the indexes backing the listing queries.
func (r *InterviewRepo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "finalized", Value: 1}, {Key: "created_at", Value: -1}},
		},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

func byUserFilter(userID bson.ObjectID) bson.M {
	return bson.M{"user_id": userID}
}

func latestFilter(excludeUser bson.ObjectID) bson.M {
	filter := bson.M{"finalized": true}
	if !excludeUser.IsZero() {
		filter["user_id"] = bson.M{"$ne": excludeUser}
	}
	return filter
}

func decodeInterviews(ctx context.Context, cur *mongo.Cursor) ([]models.Interview, error) {
	interviews := []models.Interview{}
	if err := cur.All(ctx, &interviews); err != nil {
		return nil, fmt.Errorf("decode interviews: %w", err)
	}
	return interviews, nil
}
