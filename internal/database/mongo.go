package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"quilog/internal/middleware"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// Collection names shared by every backend.
const (
	CollectionUsers    = "users"
	CollectionBlogs    = "blogs"
	CollectionComments = "comments"
)

// ConnectMongo opens a client for uri and verifies it with a ping.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	middleware.Logger.Info("MongoDB connected successfully")
	return client, nil
}

// DisconnectMongo closes the client, waiting at most five seconds.
func DisconnectMongo(client *mongo.Client) error {
	if client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return client.Disconnect(ctx)
}

// EnsureMongoIndexes creates the secondary indexes the queries rely on.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	blogs := []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}
	if _, err := db.Collection(CollectionBlogs).Indexes().CreateMany(ctx, blogs); err != nil {
		return fmt.Errorf("create blogs indexes: %w", err)
	}

	comments := []mongo.IndexModel{{Keys: bson.D{{Key: "userId", Value: 1}}}}
	if _, err := db.Collection(CollectionComments).Indexes().CreateMany(ctx, comments); err != nil {
		return fmt.Errorf("create comments indexes: %w", err)
	}

	middleware.Logger.Info("MongoDB indexes ensured", slog.String("database", db.Name()))
	return nil
}
