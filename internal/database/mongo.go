// Package database owns the process-wide MongoDB client.
package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	InterviewsCollection = "interviews"
	FeedbackCollection   = "feedback"
	UsersCollection      = "users"
	AuthTokensCollection = "auth_tokens"
)

var ErrNotConnected = errors.New("database: not connected")

var (
	mu     sync.Mutex
	client *mongo.Client
	db     *mongo.Database
)

// Connect builds the client on first use and returns the same database handle
// on every later call, whatever the arguments.
func Connect(ctx context.Context, uri, dbName string) (*mongo.Database, error) {
	mu.Lock()
	defer mu.Unlock()

	if db != nil {
		return db, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	c, err := mongo.Connect(options.Client().ApplyURI(uri).SetAppName("prepflow"))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	if err := c.Ping(ctx, nil); err != nil {
		_ = c.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	client = c
	db = c.Database(dbName)
	return db, nil
}

// DB returns the connected database or nil before Connect succeeds.
func DB() *mongo.Database {
	mu.Lock()
	defer mu.Unlock()
	return db
}

// GetCollection panics when called before Connect.
func GetCollection(name string) *mongo.Collection {
	d := DB()
	if d == nil {
		panic(ErrNotConnected)
	}
	return d.Collection(name)
}

// Ping checks the live connection; used by the health endpoint.
func Ping(ctx context.Context) error {
	mu.Lock()
	c := client
	mu.Unlock()
	if c == nil {
		return ErrNotConnected
	}
	return c.Ping(ctx, nil)
}

// Disconnect closes the client and allows a later Connect to start over.
func Disconnect(ctx context.Context) error {
	mu.Lock()
	defer mu.Unlock()

	if client == nil {
		return nil
	}
	err := client.Disconnect(ctx)
	client, db = nil, nil
	return err
}
