package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/framefit/framefit/pkg/observability"
	"github.com/framefit/framefit/pkg/training"
)

// Collection names.
const (
	sessionsCollection = "resize_sessions"
	examplesCollection = "training_examples"
)

// MongoStore persists sessions and training examples in MongoDB.
type MongoStore struct {
	client   *mongo.Client
	sessions *mongo.Collection
	examples *mongo.Collection
}

// MongoConfig configures a MongoDB connection.
type MongoConfig struct {
	URI      string
	Database string
}

// NewMongoStore connects to MongoDB and verifies the connection with a ping.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	db := client.Database(cfg.Database)
	return &MongoStore{
		client:   client,
		sessions: db.Collection(sessionsCollection),
		examples: db.Collection(examplesCollection),
	}, nil
}

// CreateSession stores a new session record.
func (m *MongoStore) CreateSession(ctx context.Context, s *Session) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	s.UpdatedAt = s.CreatedAt
	_, err := m.sessions.InsertOne(ctx, s)
	observability.Store().OnWrite(ctx, sessionsCollection, err)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetSession returns a session by ID, or ErrNotFound.
func (m *MongoStore) GetSession(ctx context.Context, id string) (*Session, error) {
	var s Session
	err := m.sessions.FindOne(ctx, bson.M{"_id": id}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		observability.Store().OnRead(ctx, sessionsCollection, 0, nil)
		return nil, ErrNotFound
	}
	observability.Store().OnRead(ctx, sessionsCollection, 1, err)
	if err != nil {
		return nil, fmt.Errorf("find session %s: %w", id, err)
	}
	return &s, nil
}

// UpdateFeedback attaches feedback to a session and returns the updated
// record.
func (m *MongoStore) UpdateFeedback(ctx context.Context, id string, u FeedbackUpdate) (*Session, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}

	update := bson.M{
		"rating":        u.Rating,
		"feedback_text": u.FeedbackText,
		"updated_at":    time.Now(),
	}
	if u.Helpful != nil {
		update["helpful"] = *u.Helpful
	}
	if len(u.Corrections) > 0 {
		update["corrections"] = u.Corrections
	}

	var s Session
	err := m.sessions.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": update},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&s)
	observability.Store().OnWrite(ctx, sessionsCollection, err)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update session %s: %w", id, err)
	}
	return &s, nil
}

// ListSessions returns sessions matching the filter, newest first.
func (m *MongoStore) ListSessions(ctx context.Context, f SessionFilter) ([]*Session, error) {
	query := bson.M{}
	if f.MinRating > 0 {
		query["rating"] = bson.M{"$gte": f.MinRating}
	}
	if !f.Since.IsZero() {
		query["created_at"] = bson.M{"$gte": f.Since}
	}

	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetLimit(int64(f.limit())).
		SetSkip(int64(f.Offset))

	cur, err := m.sessions.Find(ctx, query, opts)
	if err != nil {
		observability.Store().OnRead(ctx, sessionsCollection, 0, err)
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer cur.Close(ctx)

	var out []*Session
	if err := cur.All(ctx, &out); err != nil {
		observability.Store().OnRead(ctx, sessionsCollection, 0, err)
		return nil, fmt.Errorf("decode sessions: %w", err)
	}
	observability.Store().OnRead(ctx, sessionsCollection, len(out), nil)
	return out, nil
}

// CreateExample stores an immutable training example.
func (m *MongoStore) CreateExample(ctx context.Context, ex *training.Example) error {
	if ex.CreatedAt.IsZero() {
		ex.CreatedAt = time.Now()
	}
	_, err := m.examples.InsertOne(ctx, ex)
	observability.Store().OnWrite(ctx, examplesCollection, err)
	if err != nil {
		return fmt.Errorf("insert training example: %w", err)
	}
	return nil
}

// ListExamples returns examples created at or after since, newest first.
func (m *MongoStore) ListExamples(ctx context.Context, since time.Time, limit int) ([]*training.Example, error) {
	query := bson.M{}
	if !since.IsZero() {
		query["created_at"] = bson.M{"$gte": since}
	}
	if limit <= 0 {
		limit = DefaultPageLimit
	}

	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetLimit(int64(limit))

	cur, err := m.examples.Find(ctx, query, opts)
	if err != nil {
		observability.Store().OnRead(ctx, examplesCollection, 0, err)
		return nil, fmt.Errorf("list training examples: %w", err)
	}
	defer cur.Close(ctx)

	var out []*training.Example
	if err := cur.All(ctx, &out); err != nil {
		observability.Store().OnRead(ctx, examplesCollection, 0, err)
		return nil, fmt.Errorf("decode training examples: %w", err)
	}
	observability.Store().OnRead(ctx, examplesCollection, len(out), nil)
	return out, nil
}

// Close disconnects from MongoDB.
func (m *MongoStore) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
