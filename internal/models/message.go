package models

import "time"

// Message is a server-created chat message. The id is the sole
// de-duplication key. Exactly one of ReceiverID and GroupID is set on
// the wire: receiver_id present means a direct message, group_id present
// means a group message, never both.
type Message struct {
	ID          int64     `json:"id"`
	SenderID    int64     `json:"sender_id"`
	ReceiverID  *int64    `json:"receiver_id,omitempty"`
	GroupID     *int64    `json:"group_id,omitempty"`
	MessageType string    `json:"message_type"`
	Content     string    `json:"content,omitempty"`
	FilePath    string    `json:"file_path,omitempty"`
	FileName    string    `json:"file_name,omitempty"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
	Sender      *User     `json:"sender,omitempty"`
}

// Direct reports whether the message is a one-to-one message, inferred
// from receiver_id presence per the wire invariant above.
func (m *Message) Direct() bool {
	return m.ReceiverID != nil
}

// ReceivedBy reports whether localID is on the receiving side of the
// message: the addressee of a direct message, or any group member other
// than the sender. Unread accounting only ever counts received messages.
func (m *Message) ReceivedBy(localID int64) bool {
	if m.Direct() {
		return *m.ReceiverID == localID
	}
	return m.SenderID != localID
}

// RoomFor resolves the room the message belongs to from localID's point
// of view. A direct message lives in the room of the peer, whichever
// side of the exchange localID is on.
func (m *Message) RoomFor(localID int64) RoomKey {
	if !m.Direct() {
		return GroupRoom(*m.GroupID)
	}
	if m.SenderID == localID {
		return DirectRoom(*m.ReceiverID)
	}
	return DirectRoom(m.SenderID)
}
