package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/eduviz/eduviz-chat-api/api"
	"github.com/eduviz/eduviz-chat-api/api/handlers"
	"github.com/eduviz/eduviz-chat-api/databases"
	mocksdb "github.com/eduviz/eduviz-chat-api/databases/mocks"
	"github.com/eduviz/eduviz-chat-api/models"
)

type fakePublisher struct {
	mu        sync.Mutex
	published []*models.Message
}

func (f *fakePublisher) PublishMessage(msg *models.Message) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, msg)
	return true
}

type fakeRecorder struct {
	senders []string
}

func (f *fakeRecorder) MessageAppended(sender string) {
	f.senders = append(f.senders, sender)
}

func storedFrom(nm models.NewMessage) *models.Message {
	return &models.Message{
		ID:             primitive.NewObjectID(),
		ConversationID: nm.ConversationID,
		Sender:         nm.Sender,
		SenderUserID:   nm.SenderUserID,
		Text:           nm.Text,
		Image:          nm.Image,
		Timestamp:      time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC),
	}
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) models.ErrorMessageResponse {
	t.Helper()
	var resp models.ErrorMessageResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func TestMessage_SendMessageHandler(t *testing.T) {
	body := `{"sender":"student","text":"hi","senderUserId":"stu-1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/messages/course-42", strings.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"conversation_id": "course-42"})

	db := &mocksdb.MessageDatabase{}
	db.On("Append", mock.Anything, models.NewMessage{
		ConversationID: "course-42",
		Sender:         models.SenderStudent,
		Text:           "hi",
		SenderUserID:   "stu-1",
	}).Return(func(_ context.Context, nm models.NewMessage) *models.Message {
		return storedFrom(nm)
	}, nil)
	pub := &fakePublisher{}
	rec := &fakeRecorder{}

	rr := httptest.NewRecorder()
	handlers.Message{DB: db, Live: pub, Recorder: rec}.SendMessageHandler(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	var got models.Message
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "course-42", got.ConversationID)
	assert.Equal(t, "hi", got.Text)
	assert.Nil(t, got.Image)
	assert.False(t, got.Read)
	assert.Contains(t, rr.Body.String(), `"image":null`)

	require.Len(t, pub.published, 1)
	assert.Equal(t, got.ID, pub.published[0].ID)
	assert.Equal(t, []string{models.SenderStudent}, rec.senders)
	db.AssertExpectations(t)
}

func TestMessage_SendMessageHandlerConversationResolution(t *testing.T) {
	tests := []struct {
		name     string
		pathID   string
		body     string
		expected string
	}{
		{"path wins over body", "course-1", `{"sender":"instructor","conversationId":"course-2"}`, "course-1"},
		{"body used without path", "", `{"sender":"instructor","conversationId":"course-2"}`, "course-2"},
		{"defaults to direct messaging", "", `{"sender":"instructor","text":"x"}`, models.DirectMessagingConversation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/messages", strings.NewReader(tt.body))
			if tt.pathID != "" {
				req = mux.SetURLVars(req, map[string]string{"conversation_id": tt.pathID})
			}
			db := &mocksdb.MessageDatabase{}
			db.On("Append", mock.Anything, mock.MatchedBy(func(nm models.NewMessage) bool {
				return nm.ConversationID == tt.expected
			})).Return(func(_ context.Context, nm models.NewMessage) *models.Message {
				return storedFrom(nm)
			}, nil)

			rr := httptest.NewRecorder()
			handlers.Message{DB: db, Live: &fakePublisher{}}.SendMessageHandler(rr, req)

			assert.Equal(t, http.StatusCreated, rr.Code)
			db.AssertExpectations(t)
		})
	}
}

func TestMessage_SendMessageHandlerUsesTokenSubject(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/messages", strings.NewReader(`{"sender":"student"}`))
	req = req.WithContext(api.WithUserID(req.Context(), "from-token"))

	db := &mocksdb.MessageDatabase{}
	db.On("Append", mock.Anything, mock.MatchedBy(func(nm models.NewMessage) bool {
		return nm.SenderUserID == "from-token"
	})).Return(func(_ context.Context, nm models.NewMessage) *models.Message {
		return storedFrom(nm)
	}, nil)

	rr := httptest.NewRecorder()
	handlers.Message{DB: db}.SendMessageHandler(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	db.AssertExpectations(t)
}

func TestMessage_SendMessageHandlerRejectsForeignSenderUserID(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/messages", strings.NewReader(`{"sender":"student","senderUserId":"bob"}`))
	req = req.WithContext(api.WithUserID(req.Context(), "alice"))
	db := &mocksdb.MessageDatabase{}
	pub := &fakePublisher{}

	rr := httptest.NewRecorder()
	handlers.Message{DB: db, Live: pub}.SendMessageHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	resp := decodeError(t, rr)
	assert.Equal(t, "invalid message", resp.Response.Message)
	assert.Contains(t, resp.Response.Error, "senderUserId")
	db.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	assert.Empty(t, pub.published)
}

func TestMessage_SendMessageHandlerAcceptsMatchingSenderUserID(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/messages", strings.NewReader(`{"sender":"student","senderUserId":"alice"}`))
	req = req.WithContext(api.WithUserID(req.Context(), "alice"))

	db := &mocksdb.MessageDatabase{}
	db.On("Append", mock.Anything, mock.MatchedBy(func(nm models.NewMessage) bool {
		return nm.SenderUserID == "alice"
	})).Return(func(_ context.Context, nm models.NewMessage) *models.Message {
		return storedFrom(nm)
	}, nil)

	rr := httptest.NewRecorder()
	handlers.Message{DB: db}.SendMessageHandler(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	db.AssertExpectations(t)
}

func TestMessage_SendMessageHandlerRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"missing sender", `{"text":"hello"}`, "invalid message"},
		{"unknown sender", `{"sender":"admin","text":"hello"}`, "invalid message"},
		{"unknown field", `{"sender":"student","mood":"happy"}`, "failed to decode request"},
		{"not json", `hello`, "failed to decode request"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/messages", strings.NewReader(tt.body))
			db := &mocksdb.MessageDatabase{}
			pub := &fakePublisher{}

			rr := httptest.NewRecorder()
			handlers.Message{DB: db, Live: pub}.SendMessageHandler(rr, req)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, tt.message, decodeError(t, rr).Response.Message)
			db.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
			assert.Empty(t, pub.published)
		})
	}
}

func TestMessage_SendMessageHandlerPersistenceFailureDoesNotBroadcast(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/messages", strings.NewReader(`{"sender":"student","text":"x"}`))
	db := &mocksdb.MessageDatabase{}
	db.On("Append", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("%w: insert message: %w", databases.ErrPersistence, errors.New("mocked-error")))
	pub := &fakePublisher{}

	rr := httptest.NewRecorder()
	handlers.Message{DB: db, Live: pub}.SendMessageHandler(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "failed to save message", decodeError(t, rr).Response.Message)
	assert.Empty(t, pub.published)
}

func TestMessage_MessagesByConversationHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/messages/course-42", nil)
	req = mux.SetURLVars(req, map[string]string{"conversation_id": "course-42"})

	first := storedFrom(models.NewMessage{ConversationID: "course-42", Sender: models.SenderStudent, Text: "one"})
	second := storedFrom(models.NewMessage{ConversationID: "course-42", Sender: models.SenderInstructor, Text: "two"})
	db := &mocksdb.MessageDatabase{}
	db.On("FindByConversation", mock.Anything, "course-42").Return([]models.Message{*first, *second}, nil)

	rr := httptest.NewRecorder()
	handlers.Message{DB: db}.MessagesByConversationHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var got []models.Message
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "one", got[0].Text)
	assert.Equal(t, "two", got[1].Text)
}

func TestMessage_MessagesByConversationHandlerEmpty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/messages/nobody", nil)
	req = mux.SetURLVars(req, map[string]string{"conversation_id": "nobody"})
	db := &mocksdb.MessageDatabase{}
	db.On("FindByConversation", mock.Anything, "nobody").Return([]models.Message{}, nil)

	rr := httptest.NewRecorder()
	handlers.Message{DB: db}.MessagesByConversationHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", rr.Body.String())
}

func TestMessage_MessagesByConversationHandlerError(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/messages/c", nil)
	req = mux.SetURLVars(req, map[string]string{"conversation_id": "c"})
	db := &mocksdb.MessageDatabase{}
	db.On("FindByConversation", mock.Anything, "c").Return(nil, databases.ErrPersistence)

	rr := httptest.NewRecorder()
	handlers.Message{DB: db}.MessagesByConversationHandler(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "failed to get messages", decodeError(t, rr).Response.Message)
}

func TestMessage_RecentMessagesHandlerLimit(t *testing.T) {
	tests := []struct {
		query    string
		expected int64
	}{
		{"", 100},
		{"?limit=5", 5},
		{"?limit=5000", 1000},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/messages"+tt.query, nil)
			db := &mocksdb.MessageDatabase{}
			db.On("FindRecent", mock.Anything, tt.expected).Return([]models.Message{}, nil)

			rr := httptest.NewRecorder()
			handlers.Message{DB: db}.RecentMessagesHandler(rr, req)

			assert.Equal(t, http.StatusOK, rr.Code)
			db.AssertExpectations(t)
		})
	}
}

func TestMessage_RecentMessagesHandlerBadLimit(t *testing.T) {
	for _, q := range []string{"?limit=abc", "?limit=0", "?limit=-3"} {
		t.Run(q, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/messages"+q, nil)
			db := &mocksdb.MessageDatabase{}

			rr := httptest.NewRecorder()
			handlers.Message{DB: db}.RecentMessagesHandler(rr, req)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, "invalid limit", decodeError(t, rr).Response.Message)
			db.AssertNotCalled(t, "FindRecent", mock.Anything, mock.Anything)
		})
	}
}

func TestMessage_ConversationsHandler(t *testing.T) {
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	db := &mocksdb.MessageDatabase{}
	db.On("Conversations", mock.Anything).Return([]models.ConversationSummary{
		{ConversationID: "course-1", Messages: []models.Message{}, LastMessage: "bye", Timestamp: ts, Unread: 3},
	}, nil)

	rr := httptest.NewRecorder()
	handlers.Message{DB: db}.ConversationsHandler(rr, httptest.NewRequest(http.MethodGet, "/api/v1/messages/conversations/all", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[{"conversationId":"course-1","messages":[],"lastMessage":"bye","timestamp":"2024-05-01T10:00:00Z","unread":3}]`, rr.Body.String())
}

func TestMessage_ConversationsHandlerError(t *testing.T) {
	db := &mocksdb.MessageDatabase{}
	db.On("Conversations", mock.Anything).Return(nil, databases.ErrPersistence)

	rr := httptest.NewRecorder()
	handlers.Message{DB: db}.ConversationsHandler(rr, httptest.NewRequest(http.MethodGet, "/api/v1/messages/conversations/all", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "failed to get conversations", decodeError(t, rr).Response.Message)
}
