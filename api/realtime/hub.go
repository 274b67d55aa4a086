package realtime

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/eduviz/eduviz-chat-api/models"
)

const (
	// sendBuffer is how many frames may queue for one client before it is dropped
	sendBuffer = 64
	// publishBuffer absorbs bursts of persisted messages from the HTTP side
	publishBuffer = 256
)

// Observer is told about fan-out activity. api.Metrics implements it.
type Observer interface {
	EventPublished(event string)
	DeliveryDropped()
	ClientsConnected(n int)
	PresenceSize(n int)
}

type noopObserver struct{}

func (noopObserver) EventPublished(string) {}
func (noopObserver) DeliveryDropped()      {}
func (noopObserver) ClientsConnected(int)  {}
func (noopObserver) PresenceSize(int)      {}

type inbound struct {
	client *Client
	cmd    command
}

// Hub is the live channel. Only the goroutine running Run touches the client set
// and the presence registry, so a registry change and the user-status broadcast it
// causes are never interleaved with other events.
type Hub struct {
	clients  map[*Client]struct{}
	presence *Presence
	observer Observer

	register   chan *Client
	unregister chan *Client
	inbound    chan inbound
	publish    chan *models.Message
	done       chan struct{}
}

// NewHub builds a hub. A nil observer is allowed.
func NewHub(observer Observer) *Hub {
	if observer == nil {
		observer = noopObserver{}
	}
	return &Hub{
		clients:    make(map[*Client]struct{}),
		presence:   NewPresence(),
		observer:   observer,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan inbound),
		publish:    make(chan *models.Message, publishBuffer),
		done:       make(chan struct{}),
	}
}

// Run dispatches hub events until ctx is cancelled, then closes every client
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.observer.ClientsConnected(len(h.clients))
			zap.S().Debugw("live channel client connected", "connectionId", c.id)

		case c := <-h.unregister:
			h.remove(c)

		case in := <-h.inbound:
			h.handle(in.client, in.cmd)

		case msg := <-h.publish:
			h.broadcast(EventNewMessage, msg, nil)

		case <-ctx.Done():
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.observer.ClientsConnected(0)
			return
		}
	}
}

// PublishMessage queues a stored message for every connected client, the sender
// included. It only blocks if the publish queue is full and returns false once the
// hub has stopped.
func (h *Hub) PublishMessage(msg *models.Message) bool {
	select {
	case <-h.done:
		return false
	default:
	}
	select {
	case h.publish <- msg:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) enqueue(in inbound) {
	select {
	case h.inbound <- in:
	case <-h.done:
	}
}

func (h *Hub) attach(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) detach(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) handle(c *Client, cmd command) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	switch cmd := cmd.(type) {
	case joinCommand:
		h.presence.Join(c.id, cmd.UserType, cmd.UserID)
		zap.S().Infow("user joined live channel",
			"connectionId", c.id,
			"userType", cmd.UserType,
			"userId", cmd.UserID,
		)
		h.broadcastStatus()

	case typingCommand:
		entry, ok := h.presence.Get(c.id)
		if !ok {
			return
		}
		h.broadcast(EventTyping, TypingEvent{TypingPayload: cmd.TypingPayload, UserID: entry.UserID}, c)

	case legacyCommand:
		msg := cmd.LegacyMessage
		h.broadcast(EventNewMessage, &msg, nil)
	}
}

func (h *Hub) broadcastStatus() {
	h.observer.PresenceSize(h.presence.Len())
	h.broadcast(EventUserStatus, h.presence.Entries(), nil)
}

// broadcast delivers to every client except skip. A client whose queue is full is
// dropped rather than waited on.
func (h *Hub) broadcast(event string, data interface{}, skip *Client) {
	b, err := json.Marshal(outFrame{Event: event, Data: data})
	if err != nil {
		zap.S().Errorw("failed to encode live channel frame", "event", event, "error", err)
		return
	}
	h.observer.EventPublished(event)

	var slow []*Client
	for c := range h.clients {
		if c == skip {
			continue
		}
		select {
		case c.send <- b:
		default:
			slow = append(slow, c)
		}
	}
	for _, c := range slow {
		h.observer.DeliveryDropped()
		zap.S().Warnw("dropping slow live channel client", "connectionId", c.id, "event", event)
		h.remove(c)
	}
}

func (h *Hub) remove(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.observer.ClientsConnected(len(h.clients))

	if h.presence.Leave(c.id) {
		zap.S().Infow("user left live channel", "connectionId", c.id)
		h.broadcastStatus()
	}
}
