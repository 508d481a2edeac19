// Package session owns the live client state: friends, groups, message
// windows, unread counters and the derived chat list. All mutation goes
// through the session's entry points; the state is created on login and
// torn down on logout.
package session

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"linkin/internal/api"
	"linkin/internal/models"
	"linkin/internal/socket"
	"linkin/internal/store"
)

// API is the REST surface the session consumes.
type API interface {
	Me(ctx context.Context) (models.User, error)
	Friends(ctx context.Context) ([]models.User, error)
	Groups(ctx context.Context) ([]models.Group, error)
	UnreadSummary(ctx context.Context) ([]models.UnreadSummaryEntry, error)
	MarkRead(ctx context.Context, kind models.ChatKind, chatID int64) error
	SendPrivate(ctx context.Context, toUser int64, draft api.Draft) (models.Message, error)
	SendGroup(ctx context.Context, groupID int64, draft api.Draft) (models.Message, error)
	PrivateHistory(ctx context.Context, userID int64) ([]models.Message, error)
	GroupHistory(ctx context.Context, groupID int64) ([]models.Message, error)
	SearchMessages(ctx context.Context, query string) ([]models.Message, error)
	AddFriend(ctx context.Context, friendID int64) error
	DeleteFriend(ctx context.Context, friendID int64, clearHistory bool) error
	CreateGroup(ctx context.Context, name string, memberIDs []int64) (models.Group, error)
	InviteToGroup(ctx context.Context, groupID, userID int64) error
	KickFromGroup(ctx context.Context, groupID, userID int64) error
	DissolveGroup(ctx context.Context, groupID int64) error
}

// Channel is the event-channel surface. Only the connection manager
// behind it may open or close the transport; the session just joins and
// leaves rooms and drains events.
type Channel interface {
	Connect(token string) error
	Disconnect()
	JoinChat(room string) error
	LeaveChat(room string) error
	Events() <-chan socket.Event
}

// Notifier owns user-facing notification; the session only hands it
// displayable messages.
type Notifier interface {
	Success(message string)
	Error(message string)
}

type Session struct {
	api      API
	channel  Channel
	notifier Notifier
	log      *zap.Logger

	mu       sync.Mutex
	me       models.User
	friends  []models.User
	groups   []models.Group
	convs    *store.ConversationStore
	unread   *store.UnreadTracker
	chatList []models.ChatListEntry
	active   *models.Chat
	// epoch guards in-flight loads: bumped on every open/close/logout,
	// captured before a REST call and compared at apply time so stale
	// responses are discarded instead of applied.
	epoch uint64
}

func New(apiClient API, channel Channel, notifier Notifier) *Session {
	return &Session{
		api:      apiClient,
		channel:  channel,
		notifier: notifier,
		log:      zap.L().With(zap.String("component", "session")),
		convs:    store.NewConversationStore(),
		unread:   store.NewUnreadTracker(),
	}
}

// Bootstrap loads the baseline state (profile, friends, groups, unread
// summary) and brings the event channel up.
func (s *Session) Bootstrap(ctx context.Context, token string) error {
	me, err := s.api.Me(ctx)
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	s.mu.Lock()
	s.me = me
	s.mu.Unlock()

	if err := s.RefreshFriends(ctx); err != nil {
		return err
	}
	if err := s.RefreshGroups(ctx); err != nil {
		return err
	}
	if err := s.refreshUnreadSummary(ctx); err != nil {
		return err
	}
	if err := s.channel.Connect(token); err != nil {
		return fmt.Errorf("connect event channel: %w", err)
	}
	return nil
}

// Run drains the event channel and dispatches every event in arrival
// order until ctx is done.
func (s *Session) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-s.channel.Events():
			s.dispatch(ctx, ev)
		}
	}
}

// Logout tears the session down: closes the connection and clears every
// piece of held state.
func (s *Session) Logout() {
	s.channel.Disconnect()
	s.mu.Lock()
	s.me = models.User{}
	s.friends = nil
	s.groups = nil
	s.convs.Clear()
	s.unread.Clear()
	s.chatList = nil
	s.active = nil
	s.epoch++
	s.mu.Unlock()
}

// Me returns the logged-in user's profile.
func (s *Session) Me() models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.me
}

// ActiveChat returns a copy of the active chat, nil when none is open.
func (s *Session) ActiveChat() *models.Chat {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return nil
	}
	chat := *s.active
	return &chat
}

// ChatList returns the current derived chat list.
func (s *Session) ChatList() []models.ChatListEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ChatListEntry, len(s.chatList))
	copy(out, s.chatList)
	return out
}

// Messages returns the active chat's loaded window, empty when no chat
// is open.
func (s *Session) Messages() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return nil
	}
	return s.convs.Window(s.active.Room())
}

// Unread returns the unread count for one room.
func (s *Session) Unread(room models.RoomKey) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unread.Count(room)
}

// RefreshFriends re-fetches the friends collection and recomputes the
// chat list.
func (s *Session) RefreshFriends(ctx context.Context) error {
	friends, err := s.api.Friends(ctx)
	if err != nil {
		return fmt.Errorf("load friends: %w", err)
	}
	s.mu.Lock()
	s.friends = friends
	s.recomputeChatList()
	s.mu.Unlock()
	return nil
}

// RefreshGroups re-fetches the groups collection and recomputes the chat
// list.
func (s *Session) RefreshGroups(ctx context.Context) error {
	groups, err := s.api.Groups(ctx)
	if err != nil {
		return fmt.Errorf("load groups: %w", err)
	}
	s.mu.Lock()
	s.groups = groups
	s.recomputeChatList()
	s.mu.Unlock()
	return nil
}

func (s *Session) refreshUnreadSummary(ctx context.Context) error {
	entries, err := s.api.UnreadSummary(ctx)
	if err != nil {
		return fmt.Errorf("load unread summary: %w", err)
	}
	s.mu.Lock()
	s.unread.LoadSummary(entries)
	if s.active != nil {
		// the active chat stays unread-suppressed whatever the summary says
		s.unread.Reset(s.active.Room())
	}
	s.recomputeChatList()
	s.mu.Unlock()
	return nil
}

// recomputeChatList rebuilds the projection from scratch. Callers hold
// s.mu; every mutation of friends, groups or unread state ends here.
func (s *Session) recomputeChatList() {
	s.chatList = store.BuildChatList(s.friends, s.groups, s.unread.Counts())
}
