package session

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"linkin/internal/models"
	"linkin/internal/socket"
	"linkin/internal/store"
)

// dispatch routes one inbound event. It runs on the single Run goroutine,
// so handlers execute to completion in arrival order and never overlap.
func (s *Session) dispatch(ctx context.Context, ev socket.Event) {
	switch ev.Type {
	case socket.EventNewMessage:
		var msg models.Message
		if err := json.Unmarshal(ev.Data, &msg); err != nil {
			s.log.Warn("bad new_message payload", zap.Error(err))
			return
		}
		s.handleNewMessage(ctx, msg)

	case socket.EventFriendAdded:
		var payload socket.FriendAddedPayload
		_ = json.Unmarshal(ev.Data, &payload)
		if payload.Message != "" {
			s.notifier.Success(payload.Message)
		}
		if err := s.RefreshFriends(ctx); err != nil {
			s.log.Warn("friend refresh failed", zap.Error(err))
		}

	case socket.EventFriendRemoved:
		var payload socket.FriendRemovedPayload
		_ = json.Unmarshal(ev.Data, &payload)
		s.handleFriendRemoved(ctx, payload)

	case socket.EventProfileUpdated:
		var payload socket.ProfileUpdatedPayload
		if err := json.Unmarshal(ev.Data, &payload); err != nil || payload.User.ID == 0 {
			return
		}
		s.applyProfileUpdate(payload.User)

	case socket.EventGroupAdded:
		var payload socket.GroupAddedPayload
		_ = json.Unmarshal(ev.Data, &payload)
		if payload.Message != "" {
			s.notifier.Success(payload.Message)
		}
		if err := s.RefreshGroups(ctx); err != nil {
			s.log.Warn("group refresh failed", zap.Error(err))
		}

	case socket.EventGroupRemoved:
		var payload socket.GroupRemovedPayload
		_ = json.Unmarshal(ev.Data, &payload)
		s.handleGroupRemoved(ctx, payload)

	default:
		// unknown kinds are ignored for forward compatibility
		s.log.Debug("ignoring event", zap.String("type", ev.Type))
	}
}

// handleNewMessage reconciles a pushed message: into the active window
// (read-acknowledged when the local user is the recipient), or into
// unread accounting. Only messages the local user received ever count.
func (s *Session) handleNewMessage(ctx context.Context, msg models.Message) {
	s.mu.Lock()
	local := s.me.ID
	isReceiver := msg.ReceivedBy(local)

	if store.BelongsToActiveChat(&msg, s.active, local) {
		active := *s.active
		s.convs.Ingest(active.Room(), msg)
		s.mu.Unlock()
		if isReceiver {
			s.acknowledgeRead(ctx, active)
		}
		return
	}

	// a message a user sends never inflates their own unread count
	if isReceiver {
		s.unread.Increment(msg.RoomFor(local))
		s.recomputeChatList()
	}
	s.mu.Unlock()
}

func (s *Session) handleFriendRemoved(ctx context.Context, payload socket.FriendRemovedPayload) {
	if err := s.RefreshFriends(ctx); err != nil {
		s.log.Warn("friend refresh failed", zap.Error(err))
	}

	s.mu.Lock()
	closing := s.active != nil && s.active.Kind == models.KindDirect && s.active.ID == payload.FriendID
	s.mu.Unlock()
	if closing {
		s.CloseChat()
		s.notifier.Error("friend removed")
	}
}

func (s *Session) handleGroupRemoved(ctx context.Context, payload socket.GroupRemovedPayload) {
	if payload.Message != "" {
		s.notifier.Error(payload.Message)
	}
	if err := s.RefreshGroups(ctx); err != nil {
		s.log.Warn("group refresh failed", zap.Error(err))
	}

	s.mu.Lock()
	closing := s.active != nil && s.active.Kind == models.KindGroup && s.active.ID == payload.GroupID
	s.mu.Unlock()
	if closing {
		s.CloseChat()
	}
}

// applyProfileUpdate patches the denormalized copies of a user embedded
// in the friends list, stored messages and the active chat's display
// metadata. Nothing is re-fetched.
func (s *Session) applyProfileUpdate(user models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.me.ID == user.ID {
		s.me.Nickname = user.Nickname
		s.me.Avatar = user.Avatar
	}
	for i := range s.friends {
		if s.friends[i].ID == user.ID {
			s.friends[i].Nickname = user.Nickname
			s.friends[i].Avatar = user.Avatar
			if user.LinkID != "" {
				s.friends[i].LinkID = user.LinkID
			}
		}
	}
	s.convs.PatchSender(user)
	if s.active != nil && s.active.Kind == models.KindDirect && s.active.ID == user.ID {
		name := user.Nickname
		if user.LinkID != "" {
			name += "(" + user.LinkID + ")"
		}
		s.active.Name = name
		s.active.Avatar = user.Avatar
	}
	s.recomputeChatList()
}

// acknowledgeRead round-trips POST /messages/read for chat and resets
// its counter. The active chat is re-checked after the call returns; if
// the user switched away meanwhile the reset is dropped.
func (s *Session) acknowledgeRead(ctx context.Context, chat models.Chat) {
	err := s.api.MarkRead(ctx, chat.Kind, chat.ID)
	if err != nil {
		s.log.Warn("read acknowledgement failed",
			zap.String("room", string(chat.Room())),
			zap.Error(err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil || s.active.Room() != chat.Room() {
		return
	}
	s.unread.Reset(chat.Room())
	s.recomputeChatList()
}
