package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// AuthToken is a single-use magic-link login token.
type AuthToken struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Email     string        `bson:"email" json:"email"`
	Token     string        `bson:"token" json:"-"`
	ExpiresAt time.Time     `bson:"expires_at" json:"expiresAt"`
	IsUsed    bool          `bson:"is_used" json:"isUsed"`
	CreatedAt time.Time     `bson:"created_at" json:"createdAt"`
}

func (t *AuthToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}
