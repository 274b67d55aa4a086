package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DirectMessagingConversation is the conversation id used when a message is sent
// without naming a course
const DirectMessagingConversation = "direct-messaging"

// Sender roles accepted on a message or a join
const (
	SenderStudent    = "student"
	SenderInstructor = "instructor"
)

// Message holds the structure for the messages collection in mongo.
// The bson keys match the documents already written by the Node service.
type Message struct {
	ID             primitive.ObjectID `json:"_id" bson:"_id"`
	ConversationID string             `json:"conversationId" bson:"courseId"`
	Sender         string             `json:"sender" bson:"sender"`
	SenderUserID   string             `json:"senderUserId,omitempty" bson:"userId,omitempty"`
	Text           string             `json:"text" bson:"text"`
	Image          *string            `json:"image" bson:"image"`
	Timestamp      time.Time          `json:"timestamp" bson:"timestamp"`
	Read           bool               `json:"read" bson:"read"`
}

// NewMessage is what the write path hands to the message store. The store assigns
// the id and timestamp.
type NewMessage struct {
	ConversationID string
	Sender         string
	Text           string
	Image          *string
	SenderUserID   string
}

// SendMessageRequest is the body accepted when sending a message
type SendMessageRequest struct {
	ConversationID string  `json:"conversationId"`
	Sender         string  `json:"sender"`
	Text           string  `json:"text"`
	Image          *string `json:"image"`
	SenderUserID   string  `json:"senderUserId"`
}

// Validate checks the required fields of a send request
func (r SendMessageRequest) Validate() error {
	if r.Sender == "" {
		return NewValidationError("sender", "is required")
	}
	if !IsSenderRole(r.Sender) {
		return NewValidationError("sender", "must be one of student, instructor")
	}
	return nil
}

// ToNewMessage resolves the conversation id and builds the store input. A non-empty
// pathConversationID wins over the body.
func (r SendMessageRequest) ToNewMessage(pathConversationID string) NewMessage {
	conversationID := pathConversationID
	if conversationID == "" {
		conversationID = r.ConversationID
	}
	if conversationID == "" {
		conversationID = DirectMessagingConversation
	}
	image := r.Image
	if image != nil && *image == "" {
		image = nil
	}
	return NewMessage{
		ConversationID: conversationID,
		Sender:         r.Sender,
		Text:           r.Text,
		Image:          image,
		SenderUserID:   r.SenderUserID,
	}
}

// IsSenderRole reports whether role is a known sender role
func IsSenderRole(role string) bool {
	return role == SenderStudent || role == SenderInstructor
}

// ConversationSummary is the per-conversation rollup built from the messages collection.
// It is never stored.
type ConversationSummary struct {
	ConversationID string    `json:"conversationId" bson:"courseId"`
	Messages       []Message `json:"messages" bson:"messages"`
	LastMessage    string    `json:"lastMessage" bson:"lastMessage"`
	Timestamp      time.Time `json:"timestamp" bson:"timestamp"`
	Unread         int       `json:"unread" bson:"unread"`
}

// UploadResponse is returned after an image is stored
type UploadResponse struct {
	URL string `json:"url"`
}
