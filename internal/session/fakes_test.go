package session

import (
	"context"
	"sync"
	"time"

	"linkin/internal/api"
	"linkin/internal/models"
	"linkin/internal/socket"
)

type fakeAPI struct {
	mu sync.Mutex

	me      models.User
	friends []models.User
	groups  []models.Group
	summary []models.UnreadSummaryEntry

	privateHistory map[int64][]models.Message
	groupHistory   map[int64][]models.Message

	// gate blocks PrivateHistory for gateFor until released, so tests can
	// overlap an in-flight load with a chat switch
	gateFor     int64
	gate        chan struct{}
	gateEntered chan struct{}

	sendErr       error
	nextMessageID int64

	markReadCalls []models.RoomKey
	dissolved     []int64
	deleted       []int64
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		me:             models.User{ID: 1, Nickname: "alice", LinkID: "11111111"},
		privateHistory: make(map[int64][]models.Message),
		groupHistory:   make(map[int64][]models.Message),
		nextMessageID:  1000,
	}
}

func (f *fakeAPI) Me(context.Context) (models.User, error) { return f.me, nil }

func (f *fakeAPI) Friends(context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.User(nil), f.friends...), nil
}

func (f *fakeAPI) Groups(context.Context) ([]models.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Group(nil), f.groups...), nil
}

func (f *fakeAPI) UnreadSummary(context.Context) ([]models.UnreadSummaryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.UnreadSummaryEntry(nil), f.summary...), nil
}

func (f *fakeAPI) MarkRead(_ context.Context, kind models.ChatKind, chatID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	chat := models.Chat{Kind: kind, ID: chatID}
	f.markReadCalls = append(f.markReadCalls, chat.Room())
	return nil
}

func (f *fakeAPI) readCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.markReadCalls)
}

func (f *fakeAPI) send(sender int64, receiver, group *int64, draft api.Draft) (models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return models.Message{}, f.sendErr
	}
	f.nextMessageID++
	return models.Message{
		ID:          f.nextMessageID,
		SenderID:    sender,
		ReceiverID:  receiver,
		GroupID:     group,
		MessageType: "text",
		Content:     draft.Content,
		FilePath:    draft.FilePath,
		FileName:    draft.FileName,
		CreatedAt:   time.Now(),
	}, nil
}

func (f *fakeAPI) SendPrivate(_ context.Context, toUser int64, draft api.Draft) (models.Message, error) {
	return f.send(f.me.ID, &toUser, nil, draft)
}

func (f *fakeAPI) SendGroup(_ context.Context, groupID int64, draft api.Draft) (models.Message, error) {
	return f.send(f.me.ID, nil, &groupID, draft)
}

func (f *fakeAPI) PrivateHistory(_ context.Context, userID int64) ([]models.Message, error) {
	f.mu.Lock()
	gated := f.gateFor == userID && f.gate != nil
	entered := f.gateEntered
	gate := f.gate
	msgs := append([]models.Message(nil), f.privateHistory[userID]...)
	f.mu.Unlock()
	if gated {
		entered <- struct{}{}
		<-gate
	}
	return msgs, nil
}

func (f *fakeAPI) GroupHistory(_ context.Context, groupID int64) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Message(nil), f.groupHistory[groupID]...), nil
}

func (f *fakeAPI) SearchMessages(context.Context, string) ([]models.Message, error) {
	return nil, nil
}

func (f *fakeAPI) AddFriend(context.Context, int64) error { return nil }

func (f *fakeAPI) DeleteFriend(_ context.Context, friendID int64, _ bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, friendID)
	kept := f.friends[:0]
	for _, fr := range f.friends {
		if fr.ID != friendID {
			kept = append(kept, fr)
		}
	}
	f.friends = kept
	return nil
}

func (f *fakeAPI) CreateGroup(_ context.Context, name string, _ []int64) (models.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	group := models.Group{ID: int64(100 + len(f.groups)), Name: name, OwnerID: f.me.ID}
	f.groups = append(f.groups, group)
	return group, nil
}

func (f *fakeAPI) InviteToGroup(context.Context, int64, int64) error { return nil }
func (f *fakeAPI) KickFromGroup(context.Context, int64, int64) error { return nil }

func (f *fakeAPI) DissolveGroup(_ context.Context, groupID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dissolved = append(f.dissolved, groupID)
	kept := f.groups[:0]
	for _, g := range f.groups {
		if g.ID != groupID {
			kept = append(kept, g)
		}
	}
	f.groups = kept
	return nil
}

type fakeChannel struct {
	mu        sync.Mutex
	events    chan socket.Event
	joined    []string
	left      []string
	connected bool
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{events: make(chan socket.Event, 16)}
}

func (c *fakeChannel) Connect(string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = true
	return nil
}

func (c *fakeChannel) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
}

func (c *fakeChannel) JoinChat(room string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.joined = append(c.joined, room)
	return nil
}

func (c *fakeChannel) LeaveChat(room string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.left = append(c.left, room)
	return nil
}

func (c *fakeChannel) Events() <-chan socket.Event { return c.events }

type fakeNotifier struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (n *fakeNotifier) Success(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, message)
}

func (n *fakeNotifier) Error(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, message)
}
