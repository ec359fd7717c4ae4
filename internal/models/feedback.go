package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type CategoryScore struct {
	Name    string `bson:"name" json:"name"`
	Score   int    `bson:"score" json:"score"`
	Comment string `bson:"comment" json:"comment"`
}

// Feedback is the AI assessment of one interview. Several documents may exist
// for the same (interview, user) pair; readers take the newest.
type Feedback struct {
	ID                  bson.ObjectID   `bson:"_id,omitempty" json:"id"`
	InterviewID         bson.ObjectID   `bson:"interview_id" json:"interviewId"`
	UserID              bson.ObjectID   `bson:"user_id" json:"userId"`
	TotalScore          int             `bson:"total_score" json:"totalScore"`
	CategoryScores      []CategoryScore `bson:"category_scores" json:"categoryScores"`
	Strengths           []string        `bson:"strengths" json:"strengths"`
	AreasForImprovement []string        `bson:"areas_for_improvement" json:"areasForImprovement"`
	FinalAssessment     string          `bson:"final_assessment" json:"finalAssessment"`
	CreatedAt           time.Time       `bson:"created_at" json:"createdAt"`
}
