package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Interview is created by the interview flow and read-only here.
type Interview struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    bson.ObjectID `bson:"user_id" json:"userId"`
	Role      string        `bson:"role" json:"role"`
	Level     string        `bson:"level" json:"level"`
	Type      string        `bson:"type" json:"type"`
	Techstack []string      `bson:"techstack" json:"techstack"`
	Questions []string      `bson:"questions" json:"questions"`
	Finalized bool          `bson:"finalized" json:"finalized"`
	CreatedAt time.Time     `bson:"created_at" json:"createdAt"`
}

// TranscriptMessage is one turn of the interview conversation.
type TranscriptMessage struct {
	Role    string `json:"role" validate:"required"`
	Content string `json:"content" validate:"required"`
}
