package api

import (
	"context"
	"fmt"
	"regexp"

	"linkin/internal/models"
)

// Credentials is what login/register hand back.
type Credentials struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

type loginRequest struct {
	LinkID   string `json:"link_id"`
	Password string `json:"password"`
}

type registerRequest struct {
	Nickname string `json:"nickname"`
	LinkID   string `json:"link_id"`
	Password string `json:"password"`
}

type profileRequest struct {
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
}

type userSearchRequest struct {
	LinkID   string `json:"link_id,omitempty"`
	Nickname string `json:"nickname,omitempty"`
}

type friendRequest struct {
	FriendID     int64 `json:"friend_id"`
	ClearHistory bool  `json:"clear_history,omitempty"`
}

type createGroupRequest struct {
	GroupName string  `json:"group_name"`
	MemberIDs []int64 `json:"member_ids"`
}

type groupMemberRequest struct {
	UserID int64 `json:"user_id"`
}

var linkIDPattern = regexp.MustCompile(`^\d{8}$`)

func (c *Client) Login(ctx context.Context, linkID, password string) (Credentials, error) {
	var creds Credentials
	err := c.post(ctx, "/login", loginRequest{LinkID: linkID, Password: password}, &creds)
	return creds, err
}

func (c *Client) Register(ctx context.Context, nickname, linkID, password string) (Credentials, error) {
	var creds Credentials
	err := c.post(ctx, "/register", registerRequest{Nickname: nickname, LinkID: linkID, Password: password}, &creds)
	return creds, err
}

func (c *Client) Me(ctx context.Context) (models.User, error) {
	var me models.User
	err := c.get(ctx, "/me", &me)
	return me, err
}

func (c *Client) UpdateProfile(ctx context.Context, nickname, avatar string) error {
	return c.put(ctx, "/profile", profileRequest{Nickname: nickname, Avatar: avatar}, nil)
}

func (c *Client) Friends(ctx context.Context) ([]models.User, error) {
	var friends []models.User
	err := c.get(ctx, "/friends", &friends)
	return friends, err
}

// SearchUsers looks a user up by keyword: an 8-digit keyword is treated
// as a link id, anything else as a nickname.
func (c *Client) SearchUsers(ctx context.Context, keyword string) ([]models.User, error) {
	req := userSearchRequest{Nickname: keyword}
	if linkIDPattern.MatchString(keyword) {
		req = userSearchRequest{LinkID: keyword}
	}
	var users []models.User
	err := c.post(ctx, "/friends/search", req, &users)
	return users, err
}

func (c *Client) AddFriend(ctx context.Context, friendID int64) error {
	return c.post(ctx, "/friends/add", friendRequest{FriendID: friendID}, nil)
}

func (c *Client) DeleteFriend(ctx context.Context, friendID int64, clearHistory bool) error {
	return c.post(ctx, "/friends/delete", friendRequest{FriendID: friendID, ClearHistory: clearHistory}, nil)
}

func (c *Client) Groups(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	err := c.get(ctx, "/groups", &groups)
	return groups, err
}

func (c *Client) CreateGroup(ctx context.Context, name string, memberIDs []int64) (models.Group, error) {
	var group models.Group
	err := c.post(ctx, "/groups", createGroupRequest{GroupName: name, MemberIDs: memberIDs}, &group)
	return group, err
}

func (c *Client) GroupMembers(ctx context.Context, groupID int64) ([]models.GroupMember, error) {
	var members []models.GroupMember
	err := c.get(ctx, fmt.Sprintf("/groups/%d/members", groupID), &members)
	return members, err
}

func (c *Client) InviteToGroup(ctx context.Context, groupID, userID int64) error {
	return c.post(ctx, fmt.Sprintf("/groups/%d/invite", groupID), groupMemberRequest{UserID: userID}, nil)
}

func (c *Client) KickFromGroup(ctx context.Context, groupID, userID int64) error {
	return c.post(ctx, fmt.Sprintf("/groups/%d/kick", groupID), groupMemberRequest{UserID: userID}, nil)
}

func (c *Client) DissolveGroup(ctx context.Context, groupID int64) error {
	return c.post(ctx, fmt.Sprintf("/groups/%d/dissolve", groupID), nil, nil)
}
