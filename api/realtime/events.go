package realtime

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/eduviz/eduviz-chat-api/models"
)

// Event names carried in the "event" field of a frame
const (
	EventJoin              = "join"
	EventTyping            = "typing"
	EventInstructorMessage = "instructor-message"
	EventStudentMessage    = "student-message"
	EventNewMessage        = "new-message"
	EventUserStatus        = "user-status"
)

// ErrBadFrame is returned for any inbound frame the hub will not act on
var ErrBadFrame = errors.New("bad frame")

// frame is the envelope used in both directions
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type outFrame struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// JoinPayload announces who is behind a connection
type JoinPayload struct {
	UserType string `json:"userType"`
	UserID   string `json:"userId"`
}

// TypingPayload is what a client sends while composing
type TypingPayload struct {
	ConversationID string `json:"conversationId,omitempty"`
	Sender         string `json:"sender,omitempty"`
	IsTyping       bool   `json:"isTyping"`
}

// TypingEvent is the typing payload as relayed, stamped with the emitter's user id
type TypingEvent struct {
	TypingPayload
	UserID string `json:"userId"`
}

// LegacyMessage is a client-built message relayed without being stored
type LegacyMessage struct {
	ConversationID string     `json:"conversationId,omitempty"`
	Sender         string     `json:"sender"`
	Text           string     `json:"text"`
	Image          *string    `json:"image,omitempty"`
	SenderUserID   string     `json:"senderUserId,omitempty"`
	Timestamp      *time.Time `json:"timestamp,omitempty"`
}

// command is a decoded inbound frame
type command interface {
	isCommand()
}

type joinCommand struct{ JoinPayload }

type typingCommand struct{ TypingPayload }

type legacyCommand struct{ LegacyMessage }

func (joinCommand) isCommand()   {}
func (typingCommand) isCommand() {}
func (legacyCommand) isCommand() {}

// parseFrame decodes and validates one inbound frame. Unknown events, unknown
// fields and missing required fields are all rejected.
func parseFrame(raw []byte) (command, error) {
	var f frame
	if err := decodeStrict(raw, &f); err != nil {
		return nil, err
	}

	switch f.Event {
	case EventJoin:
		var p JoinPayload
		if err := decodeStrict(f.Data, &p); err != nil {
			return nil, err
		}
		if !models.IsSenderRole(p.UserType) {
			return nil, fmt.Errorf("%w: join userType %q", ErrBadFrame, p.UserType)
		}
		return joinCommand{p}, nil

	case EventTyping:
		var p TypingPayload
		if len(f.Data) > 0 {
			if err := decodeStrict(f.Data, &p); err != nil {
				return nil, err
			}
		}
		if p.Sender != "" && !models.IsSenderRole(p.Sender) {
			return nil, fmt.Errorf("%w: typing sender %q", ErrBadFrame, p.Sender)
		}
		return typingCommand{p}, nil

	case EventInstructorMessage, EventStudentMessage:
		var m LegacyMessage
		if err := decodeStrict(f.Data, &m); err != nil {
			return nil, err
		}
		if m.Sender == "" {
			m.Sender = senderForEvent(f.Event)
		}
		if !models.IsSenderRole(m.Sender) {
			return nil, fmt.Errorf("%w: %s sender %q", ErrBadFrame, f.Event, m.Sender)
		}
		return legacyCommand{m}, nil
	}

	return nil, fmt.Errorf("%w: unknown event %q", ErrBadFrame, f.Event)
}

func senderForEvent(event string) string {
	if event == EventInstructorMessage {
		return models.SenderInstructor
	}
	return models.SenderStudent
}

func decodeStrict(data []byte, v interface{}) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("%w: empty payload", ErrBadFrame)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadFrame, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data", ErrBadFrame)
	}
	return nil
}
