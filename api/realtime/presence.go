package realtime

import (
	"sort"

	"github.com/eduviz/eduviz-chat-api/models"
)

// Presence maps connection ids to the identity they joined with.
// It is not safe for concurrent use: only the hub goroutine touches it.
type Presence struct {
	entries map[string]models.PresenceEntry
}

// NewPresence returns an empty registry
func NewPresence() *Presence {
	return &Presence{entries: make(map[string]models.PresenceEntry)}
}

// Join records connID, replacing any earlier join of the same connection
func (p *Presence) Join(connID, userType, userID string) models.PresenceEntry {
	e := models.PresenceEntry{ConnectionID: connID, UserType: userType, UserID: userID}
	p.entries[connID] = e
	return e
}

// Leave removes connID and reports whether it had joined
func (p *Presence) Leave(connID string) bool {
	if _, ok := p.entries[connID]; !ok {
		return false
	}
	delete(p.entries, connID)
	return true
}

// Get returns the entry for connID
func (p *Presence) Get(connID string) (models.PresenceEntry, bool) {
	e, ok := p.entries[connID]
	return e, ok
}

// Len is the number of joined connections
func (p *Presence) Len() int {
	return len(p.entries)
}

// Entries lists every joined connection ordered by connection id
func (p *Presence) Entries() []models.PresenceEntry {
	out := make([]models.PresenceEntry, 0, len(p.entries))
	for _, e := range p.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ConnectionID < out[j].ConnectionID })
	return out
}
