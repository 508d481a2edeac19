package store

import (
	"linkin/internal/models"
)

// UnreadTracker maps room keys to unread counts. Entries are created
// lazily on the first relevant event and reset to zero rather than
// deleted, so known rooms persist for the session.
type UnreadTracker struct {
	counts map[models.RoomKey]int
}

func NewUnreadTracker() *UnreadTracker {
	return &UnreadTracker{counts: make(map[models.RoomKey]int)}
}

func (t *UnreadTracker) Increment(room models.RoomKey) {
	t.counts[room]++
}

func (t *UnreadTracker) Reset(room models.RoomKey) {
	t.counts[room] = 0
}

func (t *UnreadTracker) Count(room models.RoomKey) int {
	return t.counts[room]
}

// Counts returns a snapshot of all counters.
func (t *UnreadTracker) Counts() map[models.RoomKey]int {
	out := make(map[models.RoomKey]int, len(t.counts))
	for room, n := range t.counts {
		out[room] = n
	}
	return out
}

// LoadSummary applies a server unread summary: listed rooms take the
// reported count, previously known rooms missing from the summary drop
// to zero (the server only reports rooms with unread > 0).
func (t *UnreadTracker) LoadSummary(entries []models.UnreadSummaryEntry) {
	listed := make(map[models.RoomKey]struct{}, len(entries))
	for _, e := range entries {
		room := e.Room()
		t.counts[room] = e.Unread
		listed[room] = struct{}{}
	}
	for room := range t.counts {
		if _, ok := listed[room]; !ok {
			t.counts[room] = 0
		}
	}
}

// Clear drops every counter. Used on logout.
func (t *UnreadTracker) Clear() {
	t.counts = make(map[models.RoomKey]int)
}
