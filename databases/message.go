package databases

// go generate: mockery --name MessageDatabase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/eduviz/eduviz-chat-api/models"
)

const messageName = "messages"

// ErrPersistence is matched with errors.Is for any failure talking to the message store
var ErrPersistence = errors.New("message store unavailable")

// MessageDatabase contains the methods to use with the message database.
// The collection is append-only: there is no update or delete.
type MessageDatabase interface {
	Append(ctx context.Context, msg models.NewMessage) (*models.Message, error)
	FindByConversation(ctx context.Context, conversationID string) ([]models.Message, error)
	FindRecent(ctx context.Context, limit int64) ([]models.Message, error)
	Conversations(ctx context.Context) ([]models.ConversationSummary, error)
	EnsureIndexes(ctx context.Context) error
}

type messageDatabase struct {
	db  DatabaseHelper
	now func() time.Time
}

// NewMessageDatabase initializes a new instance of message database with the provided db connection
func NewMessageDatabase(db DatabaseHelper) MessageDatabase {
	return &messageDatabase{
		db:  db,
		now: time.Now,
	}
}

// Append stamps msg with a fresh id and the current time and inserts it.
// Timestamps are cut to milliseconds so the returned record matches what mongo keeps.
func (m *messageDatabase) Append(ctx context.Context, msg models.NewMessage) (*models.Message, error) {
	stored := &models.Message{
		ID:             primitive.NewObjectID(),
		ConversationID: msg.ConversationID,
		Sender:         msg.Sender,
		SenderUserID:   msg.SenderUserID,
		Text:           msg.Text,
		Image:          msg.Image,
		Timestamp:      m.now().UTC().Truncate(time.Millisecond),
		Read:           false,
	}
	if _, err := m.db.Collection(messageName).InsertOne(ctx, stored); err != nil {
		return nil, fmt.Errorf("%w: insert message: %w", ErrPersistence, err)
	}
	return stored, nil
}

// FindByConversation returns every message of a conversation, oldest first.
// There is no page size: a very long conversation is returned whole.
func (m *messageDatabase) FindByConversation(ctx context.Context, conversationID string) ([]models.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}})
	messages, err := m.find(ctx, bson.M{"courseId": conversationID}, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: find conversation %s: %w", ErrPersistence, conversationID, err)
	}
	return messages, nil
}

// FindRecent keeps the newest limit messages across all conversations and returns
// them oldest first.
func (m *messageDatabase) FindRecent(ctx context.Context, limit int64) ([]models.Message, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit)
	messages, err := m.find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: find recent: %w", ErrPersistence, err)
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// Conversations groups the whole collection by conversation id. Nothing is cached,
// each call scans every message.
func (m *messageDatabase) Conversations(ctx context.Context) ([]models.ConversationSummary, error) {
	cur, err := m.db.Collection(messageName).Aggregate(ctx, conversationsPipeline(), options.Aggregate().SetAllowDiskUse(true))
	if err != nil {
		return nil, fmt.Errorf("%w: aggregate conversations: %w", ErrPersistence, err)
	}
	defer cur.Close(ctx)

	var summaries []models.ConversationSummary
	if err := cur.All(ctx, &summaries); err != nil {
		return nil, fmt.Errorf("%w: decode conversations: %w", ErrPersistence, err)
	}
	if summaries == nil {
		summaries = []models.ConversationSummary{}
	}
	return summaries, nil
}

// EnsureIndexes creates the indexes the read paths rely on
func (m *messageDatabase) EnsureIndexes(ctx context.Context) error {
	err := m.db.Collection(messageName).CreateIndexes(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "timestamp", Value: 1}}},
		{Keys: bson.D{{Key: "courseId", Value: 1}, {Key: "timestamp", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("%w: create indexes: %w", ErrPersistence, err)
	}
	return nil
}

func (m *messageDatabase) find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]models.Message, error) {
	cur, err := m.db.Collection(messageName).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var messages []models.Message
	if err := cur.All(ctx, &messages); err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []models.Message{}
	}
	return messages, nil
}

// conversationsPipeline sorts before grouping so $last picks the newest message
func conversationsPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$courseId"},
			{Key: "messages", Value: bson.D{{Key: "$push", Value: "$$ROOT"}}},
			{Key: "lastMessage", Value: bson.D{{Key: "$last", Value: "$text"}}},
			{Key: "timestamp", Value: bson.D{{Key: "$last", Value: "$timestamp"}}},
			{Key: "unread", Value: bson.D{{Key: "$sum", Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$eq", Value: bson.A{"$read", false}}}, 1, 0,
			}}}}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "courseId", Value: "$_id"},
			{Key: "messages", Value: 1},
			{Key: "lastMessage", Value: 1},
			{Key: "timestamp", Value: 1},
			{Key: "unread", Value: 1},
		}}},
	}
}
