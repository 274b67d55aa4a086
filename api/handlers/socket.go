package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/eduviz/eduviz-chat-api/api/realtime"
)

// Socket upgrades requests into live channel connections
type Socket struct {
	Hub      *realtime.Hub
	upgrader websocket.Upgrader
}

// NewSocket only accepts browser origins in allowed. Requests without an Origin
// header come from non-browser clients and are accepted.
func NewSocket(hub *realtime.Hub, allowed []string) Socket {
	origins := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		origins[o] = struct{}{}
	}
	return Socket{
		Hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := origins[origin]
				return ok
			},
		},
	}
}

// ServeHandler upgrades the connection and hands it to the hub
func (s Socket) ServeHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already written the error response
		zap.S().Warnw("websocket upgrade failed",
			"origin", r.Header.Get("Origin"),
			"error", err)
		return
	}
	if c := s.Hub.Attach(conn); c != nil {
		zap.S().Debugw("websocket connection attached", "connectionId", c.ID())
	}
}
