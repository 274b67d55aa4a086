package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/eduviz/eduviz-chat-api/api"
	"github.com/eduviz/eduviz-chat-api/config"
	"github.com/eduviz/eduviz-chat-api/databases"
	"github.com/eduviz/eduviz-chat-api/models"
)

const (
	defaultRecentLimit = 100
	maxRecentLimit     = 1000
)

// Publisher fans a stored message out to live channel clients
type Publisher interface {
	PublishMessage(msg *models.Message) bool
}

// MessageRecorder counts stored messages
type MessageRecorder interface {
	MessageAppended(sender string)
}

// Message exported for testing purposes
type Message struct {
	DB       databases.MessageDatabase
	Live     Publisher
	Recorder MessageRecorder
}

// SendMessageHandler stores a message and then broadcasts it as new-message.
// The conversation id comes from the path, then the body, then direct-messaging.
func (m Message) SendMessageHandler(w http.ResponseWriter, r *http.Request) {
	var req models.SendMessageRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request", http.StatusBadRequest, w, err)
		return
	}
	if err := req.Validate(); err != nil {
		config.ErrorStatus("invalid message", http.StatusBadRequest, w, err)
		return
	}

	nm := req.ToNewMessage(mux.Vars(r)["conversation_id"])
	// an authenticated caller always sends as the token subject
	if userID := api.UserIDFromContext(r.Context()); userID != "" {
		if nm.SenderUserID != "" && nm.SenderUserID != userID {
			config.ErrorStatus("invalid message", http.StatusBadRequest, w,
				models.NewValidationError("senderUserId", "does not match the authenticated user"))
			return
		}
		nm.SenderUserID = userID
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	msg, err := m.DB.Append(ctx, nm)
	if err != nil {
		config.ErrorStatus("failed to save message", http.StatusInternalServerError, w, err)
		return
	}
	if m.Recorder != nil {
		m.Recorder.MessageAppended(msg.Sender)
	}
	if m.Live != nil && !m.Live.PublishMessage(msg) {
		zap.S().Warnw("live channel stopped, message not broadcast", "messageId", msg.ID.Hex())
	}

	zap.S().Debugw("message stored",
		"messageId", msg.ID.Hex(),
		"conversationId", msg.ConversationID,
		"sender", msg.Sender)

	b, err := json.Marshal(msg)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// MessagesByConversationHandler returns one conversation's messages oldest first
func (m Message) MessagesByConversationHandler(w http.ResponseWriter, r *http.Request) {
	conversationID := mux.Vars(r)["conversation_id"]

	zap.S().Debugf("conversation_id: %v", conversationID)

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	dbResp, err := m.DB.FindByConversation(ctx, conversationID)
	if err != nil {
		config.ErrorStatus("failed to get messages", http.StatusInternalServerError, w, err)
		return
	}
	writeJSON(w, dbResp)
}

// RecentMessagesHandler returns the newest messages across every conversation, oldest first
func (m Message) RecentMessagesHandler(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		config.ErrorStatus("invalid limit", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	dbResp, err := m.DB.FindRecent(ctx, limit)
	if err != nil {
		config.ErrorStatus("failed to get messages", http.StatusInternalServerError, w, err)
		return
	}
	writeJSON(w, dbResp)
}

// ConversationsHandler returns a summary of every conversation
func (m Message) ConversationsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()
	dbResp, err := m.DB.Conversations(ctx)
	if err != nil {
		config.ErrorStatus("failed to get conversations", http.StatusInternalServerError, w, err)
		return
	}
	writeJSON(w, dbResp)
}

// parseLimit defaults an empty limit and clamps large ones
func parseLimit(raw string) (int64, error) {
	if raw == "" {
		return defaultRecentLimit, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.Join(models.NewValidationError("limit", "must be a number"), err)
	}
	if n < 1 {
		return 0, models.NewValidationError("limit", "must be positive")
	}
	if n > maxRecentLimit {
		n = maxRecentLimit
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
