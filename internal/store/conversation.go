// Package store holds the in-memory conversation state: per-chat message
// windows, unread counters and the derived chat list. Everything here is
// plain data manipulation; callers own synchronization.
package store

import (
	"linkin/internal/models"
)

// ConversationStore keeps the loaded message window of each conversation,
// keyed by room. Within a window messages are unique by id and ordered by
// created_at ascending.
type ConversationStore struct {
	windows map[models.RoomKey][]models.Message
	seen    map[models.RoomKey]map[int64]struct{}
}

func NewConversationStore() *ConversationStore {
	return &ConversationStore{
		windows: make(map[models.RoomKey][]models.Message),
		seen:    make(map[models.RoomKey]map[int64]struct{}),
	}
}

// Ingest inserts msg into room's window unless a message with the same id
// is already present. This single rule absorbs both optimistic-send
// echoes and reconnect replays. Returns false on a duplicate.
//
// Append is the fast path; a message arriving out of timestamp order is
// walked back to its slot so the window stays sorted.
func (s *ConversationStore) Ingest(room models.RoomKey, msg models.Message) bool {
	ids := s.seen[room]
	if ids == nil {
		ids = make(map[int64]struct{})
		s.seen[room] = ids
	}
	if _, dup := ids[msg.ID]; dup {
		return false
	}
	ids[msg.ID] = struct{}{}

	window := s.windows[room]
	i := len(window)
	for i > 0 && window[i-1].CreatedAt.After(msg.CreatedAt) {
		i--
	}
	window = append(window, models.Message{})
	copy(window[i+1:], window[i:])
	window[i] = msg
	s.windows[room] = window
	return true
}

// ReplaceWindow swaps room's entire loaded window, deduplicating by id
// and keeping created_at order. This is the only mutation allowed to
// shrink a window; it is used when a chat is (re)opened.
func (s *ConversationStore) ReplaceWindow(room models.RoomKey, msgs []models.Message) {
	delete(s.windows, room)
	delete(s.seen, room)
	for _, m := range msgs {
		s.Ingest(room, m)
	}
}

// Window returns a copy of room's loaded window.
func (s *ConversationStore) Window(room models.RoomKey) []models.Message {
	window := s.windows[room]
	out := make([]models.Message, len(window))
	copy(out, window)
	return out
}

// Len returns the number of messages loaded for room.
func (s *ConversationStore) Len(room models.RoomKey) int {
	return len(s.windows[room])
}

// PatchSender rewrites the denormalized sender copy embedded in stored
// messages after a profile update. Message identity is untouched.
func (s *ConversationStore) PatchSender(user models.User) {
	for room, window := range s.windows {
		for i := range window {
			if window[i].SenderID == user.ID && window[i].Sender != nil {
				sender := *window[i].Sender
				sender.Nickname = user.Nickname
				sender.Avatar = user.Avatar
				window[i].Sender = &sender
			}
		}
		s.windows[room] = window
	}
}

// Clear drops every window. Used on logout.
func (s *ConversationStore) Clear() {
	s.windows = make(map[models.RoomKey][]models.Message)
	s.seen = make(map[models.RoomKey]map[int64]struct{})
}

// BelongsToActiveChat resolves whether msg is part of chat for the local
// user: a direct message belongs to a direct chat iff its sender/receiver
// pair is exactly {localID, chat.ID}; a group message belongs to a group
// chat iff its group id matches.
func BelongsToActiveChat(msg *models.Message, chat *models.Chat, localID int64) bool {
	if chat == nil {
		return false
	}
	if msg.Direct() {
		if chat.Kind != models.KindDirect {
			return false
		}
		return (msg.SenderID == localID && *msg.ReceiverID == chat.ID) ||
			(msg.SenderID == chat.ID && *msg.ReceiverID == localID)
	}
	return chat.Kind == models.KindGroup && *msg.GroupID == chat.ID
}
