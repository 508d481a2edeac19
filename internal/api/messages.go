package api

import (
	"context"
	"fmt"
	"net/url"

	"linkin/internal/models"
)

// Draft is the sendable part of a message: text content or an attachment
// reference the upload collaborator already produced.
type Draft struct {
	Content  string `json:"content,omitempty"`
	FilePath string `json:"file_path,omitempty"`
	FileName string `json:"file_name,omitempty"`
}

type privateSendRequest struct {
	ToUser int64 `json:"to_user"`
	Draft
}

type groupSendRequest struct {
	GroupID int64 `json:"group_id"`
	Draft
}

type readRequest struct {
	ChatType string `json:"chat_type"`
	ChatID   int64  `json:"chat_id"`
}

// SendPrivate posts a direct message and returns the server-created
// message, id and timestamp assigned.
func (c *Client) SendPrivate(ctx context.Context, toUser int64, draft Draft) (models.Message, error) {
	var msg models.Message
	err := c.post(ctx, "/messages/private", privateSendRequest{ToUser: toUser, Draft: draft}, &msg)
	return msg, err
}

// SendGroup posts a group message and returns the server-created message.
func (c *Client) SendGroup(ctx context.Context, groupID int64, draft Draft) (models.Message, error) {
	var msg models.Message
	err := c.post(ctx, "/messages/group", groupSendRequest{GroupID: groupID, Draft: draft}, &msg)
	return msg, err
}

// PrivateHistory loads the full direct-message history with userID.
func (c *Client) PrivateHistory(ctx context.Context, userID int64) ([]models.Message, error) {
	var msgs []models.Message
	err := c.get(ctx, fmt.Sprintf("/messages/private/%d", userID), &msgs)
	return msgs, err
}

// GroupHistory loads the full history of a group chat.
func (c *Client) GroupHistory(ctx context.Context, groupID int64) ([]models.Message, error) {
	var msgs []models.Message
	err := c.get(ctx, fmt.Sprintf("/messages/group/%d", groupID), &msgs)
	return msgs, err
}

// MarkRead acknowledges everything in a chat as read.
func (c *Client) MarkRead(ctx context.Context, kind models.ChatKind, chatID int64) error {
	return c.post(ctx, "/messages/read", readRequest{ChatType: kind.WireType(), ChatID: chatID}, nil)
}

// UnreadSummary fetches per-chat unread counts; the server only lists
// chats with unread > 0.
func (c *Client) UnreadSummary(ctx context.Context) ([]models.UnreadSummaryEntry, error) {
	var entries []models.UnreadSummaryEntry
	err := c.get(ctx, "/messages/unread-summary", &entries)
	return entries, err
}

// SearchMessages runs a cross-chat text search.
func (c *Client) SearchMessages(ctx context.Context, query string) ([]models.Message, error) {
	var msgs []models.Message
	err := c.get(ctx, "/messages/search?q="+url.QueryEscape(query), &msgs)
	return msgs, err
}
