package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hackeddesign/claire/pkg/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultCollection holds one document per conversation.
const DefaultCollection = "conversations"

// Config describes how to reach the database.
type Config struct {
	URI        string
	Database   string
	Collection string
	User       string
	Password   string
}

// Store implements ports.StateStore on a MongoDB collection keyed by conversation_id.
type Store struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// Open connects and ensures the unique index on conversation_id.
func Open(ctx context.Context, conf Config) (*Store, error) {
	if conf.URI == "" || conf.Database == "" {
		return nil, fmt.Errorf("mongodb uri and database are required")
	}
	if conf.Collection == "" {
		conf.Collection = DefaultCollection
	}

	clientOptions := options.Client().ApplyURI(conf.URI)
	if conf.User != "" {
		clientOptions.SetAuth(options.Credential{
			Username:   conf.User,
			Password:   conf.Password,
			AuthSource: conf.Database,
		})
	}
	// Embedded documents in Slots decode as maps, which the slot accessors understand.
	clientOptions.SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("mongodb connect error: %w", err)
	}

	store := &Store{
		client:     client,
		collection: client.Database(conf.Database).Collection(conf.Collection),
	}

	_, err = store.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "conversation_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongodb index error: %w", err)
	}
	return store, nil
}

// Save upserts the conversation document.
func (s *Store) Save(ctx context.Context, conversationID string, state *domain.State) error {
	doc := *state
	doc.ConversationID = conversationID
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = time.Now()
	}

	filter := bson.D{{Key: "conversation_id", Value: conversationID}}
	update := bson.D{{Key: "$set", Value: doc}}
	opts := options.Update().SetUpsert(true)

	if _, err := s.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("mongodb upsert error: %w", err)
	}
	return nil
}

// Load finds the conversation document.
func (s *Store) Load(ctx context.Context, conversationID string) (*domain.State, error) {
	filter := bson.D{{Key: "conversation_id", Value: conversationID}}

	var state domain.State
	if err := s.collection.FindOne(ctx, filter).Decode(&state); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrConversationNotFound
		}
		return nil, fmt.Errorf("mongodb find error: %w", err)
	}
	if state.Slots == nil {
		state.Slots = make(map[string]any)
	}
	if state.Stack == nil {
		state.Stack = domain.Stack{}
	}
	return &state, nil
}

// Delete removes the conversation document.
func (s *Store) Delete(ctx context.Context, conversationID string) error {
	filter := bson.D{{Key: "conversation_id", Value: conversationID}}
	if _, err := s.collection.DeleteOne(ctx, filter); err != nil {
		return fmt.Errorf("mongodb delete error: %w", err)
	}
	return nil
}

// List returns every stored conversation id.
func (s *Store) List(ctx context.Context) ([]string, error) {
	opts := options.Find().SetProjection(bson.D{{Key: "conversation_id", Value: 1}})
	cursor, err := s.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb find error: %w", err)
	}
	defer cursor.Close(ctx)

	ids := []string{}
	for cursor.Next(ctx) {
		var row struct {
			ConversationID string `bson:"conversation_id"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("mongodb decode error: %w", err)
		}
		ids = append(ids, row.ConversationID)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("mongodb cursor error: %w", err)
	}
	return ids, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
