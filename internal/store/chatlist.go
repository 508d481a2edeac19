package store

import (
	"linkin/internal/models"
)

// BuildChatList derives the ordered chat list from friends, groups and
// unread counts: direct chats first in friend order, then group chats.
// It is a pure projection; callers recompute it wholesale whenever any
// input changes instead of patching entries in place.
func BuildChatList(friends []models.User, groups []models.Group, unread map[models.RoomKey]int) []models.ChatListEntry {
	list := make([]models.ChatListEntry, 0, len(friends)+len(groups))
	for _, f := range friends {
		room := models.DirectRoom(f.ID)
		list = append(list, models.ChatListEntry{
			Kind:   models.KindDirect,
			ID:     f.ID,
			Name:   f.Nickname,
			Avatar: f.Avatar,
			Room:   room,
			Unread: unread[room],
		})
	}
	for _, g := range groups {
		room := models.GroupRoom(g.ID)
		list = append(list, models.ChatListEntry{
			Kind:    models.KindGroup,
			ID:      g.ID,
			Name:    g.Name,
			Avatar:  g.Avatar,
			OwnerID: g.OwnerID,
			Room:    room,
			Unread:  unread[room],
		})
	}
	return list
}
