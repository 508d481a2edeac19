package socket

import (
	"encoding/json"

	"linkin/internal/models"
)

// Inbound event kinds pushed by the server.
const (
	EventAuthenticated  = "authenticated"
	EventAuthFail       = "auth_fail"
	EventNewMessage     = "new_message"
	EventFriendAdded    = "friend_added"
	EventFriendRemoved  = "friend_removed"
	EventProfileUpdated = "profile_updated"
	EventGroupAdded     = "group_added"
	EventGroupRemoved   = "group_removed"
)

// Outbound event kinds emitted by the client.
const (
	eventAuthenticate = "authenticate"
	eventJoinChat     = "join_chat"
	eventLeaveChat    = "leave_chat"
)

// Envelope frames every message on the channel. The payload stays raw
// until a handler picks the type to decode into.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Event is a decoded inbound push event, delivered in arrival order.
type Event struct {
	Type string
	Data json.RawMessage
}

type authPayload struct {
	Token    string `json:"token"`
	ClientID string `json:"client_id,omitempty"`
}

type roomPayload struct {
	Room string `json:"room"`
}

type authFailPayload struct {
	Message string `json:"message"`
}

// Payloads of the push events the router consumes. new_message carries a
// bare message dict, the rest wrap their fields.

type FriendAddedPayload struct {
	Message string `json:"message"`
}

type FriendRemovedPayload struct {
	FriendID int64  `json:"friend_id"`
	Message  string `json:"message"`
}

type ProfileUpdatedPayload struct {
	User models.User `json:"user"`
}

type GroupAddedPayload struct {
	Message string `json:"message"`
}

type GroupRemovedPayload struct {
	GroupID int64  `json:"group_id"`
	Message string `json:"message"`
}
