// Package socket owns the event-channel connection: dialing, the
// authenticate handshake, bounded reconnection and decoding of inbound
// frames. No other component opens or closes the connection.
package socket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	linkin_errors "linkin/pkg/errors"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	handshakeWait  = 10 * time.Second
	maxMessageSize = 512 * 1024
)

// State is the connection lifecycle phase.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateAuthenticating
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "disconnected"
	}
}

// DownHandler is invoked exactly once when automatic recovery gives up:
// either the retry cap was reached or the server rejected the token
// during a reconnect. User-facing notification is the handler's job.
type DownHandler func(err error)

// Manager maintains at most one live event-channel connection. Connect
// runs the dial + authenticate handshake (retrying transport failures up
// to the attempt cap); after a transport loss it redials in the
// background with the same policy.
type Manager struct {
	url         string
	dialer      *websocket.Dialer
	retryDelay  time.Duration
	maxAttempts int
	onDown      DownHandler
	log         *zap.Logger

	events chan Event

	mu       sync.Mutex
	state    State
	conn     *websocket.Conn
	token    string
	clientID string
	closing  bool
	cancel   context.CancelFunc

	writeMu sync.Mutex
}

func NewManager(url string, retryDelay time.Duration, maxAttempts int, onDown DownHandler) *Manager {
	return &Manager{
		url:         url,
		dialer:      &websocket.Dialer{HandshakeTimeout: handshakeWait},
		retryDelay:  retryDelay,
		maxAttempts: maxAttempts,
		onDown:      onDown,
		log:         zap.L().With(zap.String("component", "socket")),
		events:      make(chan Event, 64),
	}
}

// Events delivers decoded push events in channel-arrival order. The
// channel stays open across reconnects.
func (m *Manager) Events() <-chan Event {
	return m.events
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Connect establishes the connection and authenticates with token. It is
// a no-op if a connection attempt or session is already live. Transport
// failures are retried with a fixed delay up to the attempt cap;
// explicit authentication rejection is terminal and returned as
// ErrAuthRejected without retrying.
func (m *Manager) Connect(token string) error {
	m.mu.Lock()
	if m.state != StateDisconnected {
		m.mu.Unlock()
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.state = StateConnecting
	m.token = token
	m.clientID = uuid.New().String()
	m.closing = false
	m.cancel = cancel
	m.mu.Unlock()

	if err := m.establish(ctx); err != nil {
		cancel()
		m.mu.Lock()
		m.state = StateDisconnected
		m.mu.Unlock()
		return err
	}
	return nil
}

// Disconnect tears the connection down and cancels any pending
// reconnection attempt. Idempotent.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	m.closing = true
	if m.cancel != nil {
		m.cancel()
	}
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
	m.state = StateDisconnected
	m.mu.Unlock()
}

// JoinChat subscribes the connection to a conversation room.
func (m *Manager) JoinChat(room string) error {
	return m.writeEvent(eventJoinChat, roomPayload{Room: room})
}

// LeaveChat unsubscribes the connection from a conversation room.
func (m *Manager) LeaveChat(room string) error {
	return m.writeEvent(eventLeaveChat, roomPayload{Room: room})
}

func (m *Manager) writeEvent(event string, payload interface{}) error {
	m.mu.Lock()
	conn := m.conn
	state := m.state
	m.mu.Unlock()
	if conn == nil || state != StateAuthenticated {
		return linkin_errors.ErrNotConnected
	}
	return m.writeJSON(conn, event, payload)
}

func (m *Manager) writeJSON(conn *websocket.Conn, event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s: %w", event, err)
	}
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(Envelope{Event: event, Data: data})
}

// establish runs the dial + handshake loop: constant delay between
// attempts, capped attempt count, auth rejection marked permanent so it
// is never retried.
func (m *Manager) establish(ctx context.Context) error {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(m.retryDelay), uint64(m.maxAttempts-1)),
		ctx,
	)
	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		if err := m.attempt(ctx); err != nil {
			m.log.Warn("connection attempt failed",
				zap.Int("attempt", attempt),
				zap.String("client_id", m.clientID),
				zap.Error(err))
			return err
		}
		return nil
	}, policy)
	if err != nil {
		// backoff unwraps Permanent errors, so terminal failures come back
		// as-is; anything else means the attempt cap was hit.
		if errors.Is(err, linkin_errors.ErrAuthRejected) || errors.Is(err, linkin_errors.ErrNotConnected) {
			return err
		}
		return fmt.Errorf("%w: %v", linkin_errors.ErrRetriesExhausted, err)
	}
	return nil
}

// attempt dials once and runs the authenticate handshake. The manager is
// not authenticated until the server acknowledges the token.
func (m *Manager) attempt(ctx context.Context) error {
	conn, _, err := m.dialer.DialContext(ctx, m.url, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}

	m.mu.Lock()
	m.state = StateAuthenticating
	token := m.token
	m.mu.Unlock()

	if err := m.writeJSON(conn, eventAuthenticate, authPayload{Token: token, ClientID: m.clientID}); err != nil {
		_ = conn.Close()
		return fmt.Errorf("send authenticate: %w", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(handshakeWait))
	var ack Envelope
	if err := conn.ReadJSON(&ack); err != nil {
		_ = conn.Close()
		return fmt.Errorf("read auth ack: %w", err)
	}

	switch ack.Event {
	case EventAuthenticated:
	case EventAuthFail:
		_ = conn.Close()
		var fail authFailPayload
		_ = json.Unmarshal(ack.Data, &fail)
		m.log.Warn("authentication rejected",
			zap.String("client_id", m.clientID),
			zap.String("reason", fail.Message))
		return backoff.Permanent(linkin_errors.ErrAuthRejected)
	default:
		_ = conn.Close()
		return fmt.Errorf("unexpected handshake event %q", ack.Event)
	}

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPingHandler(func(appData string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(writeWait))
	})

	m.mu.Lock()
	// Disconnect may have landed while the handshake was in flight; the
	// dial context stops mattering once the TCP connection is up, so the
	// closing flag has to be re-checked before the conn is kept.
	if m.closing || ctx.Err() != nil {
		m.mu.Unlock()
		_ = conn.Close()
		return backoff.Permanent(linkin_errors.ErrNotConnected)
	}
	m.conn = conn
	m.state = StateAuthenticated
	m.mu.Unlock()

	m.log.Info("connected", zap.String("client_id", m.clientID))
	go m.readPump(conn)
	return nil
}

func (m *Manager) readPump(conn *websocket.Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				m.log.Warn("connection lost", zap.String("client_id", m.clientID), zap.Error(err))
			}
			m.handleDrop(conn)
			return
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			m.log.Warn("undecodable frame dropped", zap.Error(err))
			continue
		}
		m.events <- Event{Type: env.Event, Data: env.Data}
	}
}

// handleDrop reacts to a transport-level loss: unless Disconnect caused
// it, redial in the background with the standard policy and report
// through onDown if recovery gives up.
func (m *Manager) handleDrop(conn *websocket.Conn) {
	_ = conn.Close()

	m.mu.Lock()
	if m.conn == conn {
		m.conn = nil
	}
	if m.closing {
		m.mu.Unlock()
		return
	}
	m.state = StateConnecting
	m.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	m.mu.Lock()
	if m.cancel != nil {
		m.cancel()
	}
	m.cancel = cancel
	m.mu.Unlock()

	go func() {
		if err := m.establish(ctx); err != nil {
			cancel()
			m.mu.Lock()
			m.state = StateDisconnected
			closing := m.closing
			m.mu.Unlock()
			if !closing && m.onDown != nil {
				m.onDown(err)
			}
		}
	}()
}
