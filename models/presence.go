package models

// PresenceEntry is a connection that has joined the live channel. It only ever lives
// in process memory.
type PresenceEntry struct {
	ConnectionID string `json:"connectionId"`
	UserType     string `json:"userType"`
	UserID       string `json:"userId"`
}
