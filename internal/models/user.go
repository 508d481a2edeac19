package models

// User is a profile as the server denormalizes it into friends lists and
// message sender copies.
type User struct {
	ID       int64  `json:"id"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
	LinkID   string `json:"link_id"`
}

// Group carries group chat metadata.
type Group struct {
	ID      int64  `json:"id"`
	Name    string `json:"group_name"`
	Avatar  string `json:"group_avatar"`
	OwnerID int64  `json:"owner_id"`
}

// GroupMember is one row of a group's member list.
type GroupMember struct {
	UserID   int64  `json:"user_id"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
	Role     string `json:"role"`
}

// UnreadSummaryEntry is one row of GET /messages/unread-summary.
type UnreadSummaryEntry struct {
	ChatType string `json:"chat_type"`
	ChatID   int64  `json:"chat_id"`
	Unread   int    `json:"unread"`
}

// Room resolves the room key the summary entry counts for.
func (e *UnreadSummaryEntry) Room() RoomKey {
	if e.ChatType == "group" {
		return GroupRoom(e.ChatID)
	}
	return DirectRoom(e.ChatID)
}
