//go:build integration

package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"prepflow/internal/database"
	"prepflow/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Run with: MONGODB_TEST_URI=mongodb://localhost:27017 go test -tags integration ./internal/repository/
func connectTestDB(t *testing.T) context.Context {
	t.Helper()
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set")
	}
	ctx := context.Background()
	db, err := database.Connect(ctx, uri, "prepflow_test_"+bson.NewObjectID().Hex())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Drop(ctx)
		_ = database.Disconnect(ctx)
	})
	return ctx
}

func TestFeedbackRepo_ReplaceKeepsOtherUsersFeedback(t *testing.T) {
	ctx := connectTestDB(t)
	repo := NewFeedbackRepo()

	owner, intruder := bson.NewObjectID(), bson.NewObjectID()
	original := &models.Feedback{InterviewID: bson.NewObjectID(), UserID: owner, TotalScore: 70, CreatedAt: time.Now()}
	require.NoError(t, repo.Create(ctx, original))

	forged := *original
	forged.UserID = intruder
	forged.TotalScore = 5
	assert.Error(t, repo.Replace(ctx, &forged))

	got, err := repo.FindByInterview(ctx, original.InterviewID, owner)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 70, got.TotalScore)

	retake := *original
	retake.TotalScore = 88
	require.NoError(t, repo.Replace(ctx, &retake))
	got, err = repo.FindByInterview(ctx, original.InterviewID, owner)
	require.NoError(t, err)
	assert.Equal(t, 88, got.TotalScore)
}

func TestFeedbackRepo_FindByInterviewReturnsNewest(t *testing.T) {
	ctx := connectTestDB(t)
	repo := NewFeedbackRepo()
	require.NoError(t, repo.EnsureIndexes(ctx))

	interviewID, userID := bson.NewObjectID(), bson.NewObjectID()
	base := time.Now().Truncate(time.Millisecond)
	rows := []struct {
		score int
		age   time.Duration
	}{{40, 2 * time.Minute}, {90, 0}, {60, time.Minute}}
	for _, row := range rows {
		require.NoError(t, repo.Create(ctx, &models.Feedback{
			InterviewID: interviewID,
			UserID:      userID,
			TotalScore:  row.score,
			CreatedAt:   base.Add(-row.age),
		}))
	}

	got, err := repo.FindByInterview(ctx, interviewID, userID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 90, got.TotalScore)

	got, err = repo.FindByInterview(ctx, interviewID, bson.NewObjectID())
	require.NoError(t, err)
	assert.Nil(t, got)
}
