package models

import "strconv"

// ChatKind distinguishes direct (one-to-one) chats from group chats.
type ChatKind string

const (
	KindDirect ChatKind = "direct"
	KindGroup  ChatKind = "group"
)

// WireType maps the kind onto the REST chat_type values, which predate
// the direct/group naming.
func (k ChatKind) WireType() string {
	if k == KindGroup {
		return "group"
	}
	return "user"
}

// RoomKey is a composite "kind:id" identifier scoping event-channel
// subscription and unread accounting to one conversation.
type RoomKey string

func DirectRoom(userID int64) RoomKey {
	return RoomKey(string(KindDirect) + ":" + strconv.FormatInt(userID, 10))
}

func GroupRoom(groupID int64) RoomKey {
	return RoomKey(string(KindGroup) + ":" + strconv.FormatInt(groupID, 10))
}

// Chat is the identity and display metadata of one conversation. At most
// one chat is active at a time; its room key scopes the channel
// subscription.
type Chat struct {
	Kind    ChatKind
	ID      int64
	Name    string
	Avatar  string
	OwnerID int64
}

func (c *Chat) Room() RoomKey {
	if c.Kind == KindGroup {
		return GroupRoom(c.ID)
	}
	return DirectRoom(c.ID)
}

// ChatListEntry is a derived row of the chat list. It is never mutated
// independently; the whole list is recomputed from friends, groups and
// unread state.
type ChatListEntry struct {
	Kind    ChatKind
	ID      int64
	Name    string
	Avatar  string
	OwnerID int64
	Room    RoomKey
	Unread  int
}
