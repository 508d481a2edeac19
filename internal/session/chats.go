package session

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"linkin/internal/api"
	"linkin/internal/models"
	linkin_errors "linkin/pkg/errors"
)

// OpenChat makes chat the active conversation: suppresses its unread
// count, scopes the channel subscription to its room, loads the full
// history window and acknowledges it as read. A history response that
// lands after the user has already switched away is discarded.
func (s *Session) OpenChat(ctx context.Context, chat models.Chat) error {
	s.mu.Lock()
	prev := s.active
	copied := chat
	s.active = &copied
	s.unread.Reset(chat.Room())
	s.recomputeChatList()
	s.epoch++
	epoch := s.epoch
	s.mu.Unlock()

	if prev != nil && prev.Room() != chat.Room() {
		if err := s.channel.LeaveChat(string(prev.Room())); err != nil {
			s.log.Debug("leave_chat failed", zap.Error(err))
		}
	}
	if err := s.channel.JoinChat(string(chat.Room())); err != nil {
		s.log.Debug("join_chat failed", zap.Error(err))
	}

	var msgs []models.Message
	var err error
	if chat.Kind == models.KindGroup {
		msgs, err = s.api.GroupHistory(ctx, chat.ID)
	} else {
		msgs, err = s.api.PrivateHistory(ctx, chat.ID)
	}
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		s.log.Debug("stale history discarded", zap.String("room", string(chat.Room())))
		return nil
	}
	s.convs.ReplaceWindow(chat.Room(), msgs)
	s.mu.Unlock()

	s.acknowledgeRead(ctx, chat)
	if err := s.refreshUnreadSummary(ctx); err != nil {
		s.log.Warn("unread summary refresh failed", zap.Error(err))
	}
	return nil
}

// CloseChat leaves the active conversation and drops its loaded window.
// Idempotent.
func (s *Session) CloseChat() {
	s.mu.Lock()
	active := s.active
	if active == nil {
		s.mu.Unlock()
		return
	}
	room := active.Room()
	s.active = nil
	s.convs.ReplaceWindow(room, nil)
	s.epoch++
	s.mu.Unlock()

	if err := s.channel.LeaveChat(string(room)); err != nil {
		s.log.Debug("leave_chat failed", zap.Error(err))
	}
}

// SendText sends a text message to the active chat. The local window is
// only touched once the server confirms; the later channel echo is then
// absorbed by ingest de-duplication.
func (s *Session) SendText(ctx context.Context, content string) (models.Message, error) {
	return s.send(ctx, api.Draft{Content: content})
}

// SendFile sends an attachment reference the upload collaborator
// produced.
func (s *Session) SendFile(ctx context.Context, filePath, fileName string) (models.Message, error) {
	return s.send(ctx, api.Draft{FilePath: filePath, FileName: fileName})
}

func (s *Session) send(ctx context.Context, draft api.Draft) (models.Message, error) {
	s.mu.Lock()
	if s.active == nil {
		s.mu.Unlock()
		return models.Message{}, linkin_errors.ErrNoActiveChat
	}
	active := *s.active
	epoch := s.epoch
	s.mu.Unlock()

	var msg models.Message
	var err error
	if active.Kind == models.KindGroup {
		msg, err = s.api.SendGroup(ctx, active.ID, draft)
	} else {
		msg, err = s.api.SendPrivate(ctx, active.ID, draft)
	}
	if err != nil {
		return models.Message{}, fmt.Errorf("send message: %w", err)
	}

	s.mu.Lock()
	if s.epoch == epoch {
		s.convs.Ingest(active.Room(), msg)
	}
	s.mu.Unlock()
	return msg, nil
}

// Search runs a cross-chat text search; results are not stored.
func (s *Session) Search(ctx context.Context, query string) ([]models.Message, error) {
	return s.api.SearchMessages(ctx, query)
}

// AddFriend adds a friend and refreshes the collection on success.
func (s *Session) AddFriend(ctx context.Context, friendID int64) error {
	if err := s.api.AddFriend(ctx, friendID); err != nil {
		return err
	}
	return s.RefreshFriends(ctx)
}

// DeleteFriend removes a friend, refreshes the collection and closes the
// chat if it was the one being deleted.
func (s *Session) DeleteFriend(ctx context.Context, friendID int64, clearHistory bool) error {
	if err := s.api.DeleteFriend(ctx, friendID, clearHistory); err != nil {
		return err
	}

	s.mu.Lock()
	closing := s.active != nil && s.active.Kind == models.KindDirect && s.active.ID == friendID
	s.mu.Unlock()
	if closing {
		s.CloseChat()
	}
	return s.RefreshFriends(ctx)
}

// CreateGroup creates a group and refreshes the collection.
func (s *Session) CreateGroup(ctx context.Context, name string, memberIDs []int64) (models.Group, error) {
	group, err := s.api.CreateGroup(ctx, name, memberIDs)
	if err != nil {
		return models.Group{}, err
	}
	return group, s.RefreshGroups(ctx)
}

// InviteToGroup invites a user into a group.
func (s *Session) InviteToGroup(ctx context.Context, groupID, userID int64) error {
	return s.api.InviteToGroup(ctx, groupID, userID)
}

// KickFromGroup removes a user from a group.
func (s *Session) KickFromGroup(ctx context.Context, groupID, userID int64) error {
	return s.api.KickFromGroup(ctx, groupID, userID)
}

// DissolveGroup dissolves the active group chat and closes it.
func (s *Session) DissolveGroup(ctx context.Context) error {
	s.mu.Lock()
	if s.active == nil || s.active.Kind != models.KindGroup {
		s.mu.Unlock()
		return linkin_errors.ErrNoActiveChat
	}
	groupID := s.active.ID
	s.mu.Unlock()

	if err := s.api.DissolveGroup(ctx, groupID); err != nil {
		return err
	}
	s.CloseChat()
	if err := s.RefreshGroups(ctx); err != nil {
		return err
	}
	return s.refreshUnreadSummary(ctx)
}
