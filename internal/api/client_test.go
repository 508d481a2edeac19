package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"linkin/internal/models"
	linkin_errors "linkin/pkg/errors"
)

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 2*time.Second, func() string { return "test-token" })
}

func writeEnvelope(t *testing.T, w http.ResponseWriter, code int, message string, data interface{}) {
	t.Helper()
	body := map[string]interface{}{"code": code, "message": message}
	if data != nil {
		body["data"] = data
	}
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

func TestRequestsCarryAuthAndRequestID(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		require.NotEmpty(t, r.Header.Get("X-Request-ID"))
		writeEnvelope(t, w, 0, "", models.User{ID: 1, Nickname: "alice", LinkID: "11111111"})
	})

	c := newTestClient(t, mux)
	me, err := c.Me(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), me.ID)
	require.Equal(t, "alice", me.Nickname)
}

func TestNonZeroCodeBecomesAPIError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/friends/add", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(t, w, 1001, "already friends", nil)
	})

	c := newTestClient(t, mux)
	err := c.AddFriend(context.Background(), 2)
	require.Error(t, err)
	apiErr, ok := linkin_errors.AsAPIError(err)
	require.True(t, ok)
	require.Equal(t, 1001, apiErr.Code)
	require.Equal(t, "already friends", apiErr.Message)
}

func TestSendPrivateEncodesDraft(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/messages/private", func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &req))
		require.Equal(t, float64(2), req["to_user"])
		require.Equal(t, "hello", req["content"])

		receiver := int64(2)
		writeEnvelope(t, w, 0, "", models.Message{
			ID: 500, SenderID: 1, ReceiverID: &receiver,
			MessageType: "text", Content: "hello", CreatedAt: time.Now().UTC(),
		})
	})

	c := newTestClient(t, mux)
	msg, err := c.SendPrivate(context.Background(), 2, Draft{Content: "hello"})
	require.NoError(t, err)
	require.Equal(t, int64(500), msg.ID)
	require.True(t, msg.Direct())
}

func TestMarkReadUsesWireChatType(t *testing.T) {
	mux := http.NewServeMux()
	var got map[string]interface{}
	mux.HandleFunc("/messages/read", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeEnvelope(t, w, 0, "", nil)
	})

	c := newTestClient(t, mux)
	require.NoError(t, c.MarkRead(context.Background(), models.KindDirect, 2))
	require.Equal(t, "user", got["chat_type"])
	require.Equal(t, float64(2), got["chat_id"])

	require.NoError(t, c.MarkRead(context.Background(), models.KindGroup, 7))
	require.Equal(t, "group", got["chat_type"])
}

func TestSearchMessagesEscapesQuery(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/messages/search", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "hello world", r.URL.Query().Get("q"))
		writeEnvelope(t, w, 0, "", []models.Message{})
	})

	c := newTestClient(t, mux)
	_, err := c.SearchMessages(context.Background(), "hello world")
	require.NoError(t, err)
}

func TestUnreadSummaryDecodes(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/messages/unread-summary", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(t, w, 0, "", []models.UnreadSummaryEntry{
			{ChatType: "user", ChatID: 2, Unread: 3},
			{ChatType: "group", ChatID: 7, Unread: 1},
		})
	})

	c := newTestClient(t, mux)
	entries, err := c.UnreadSummary(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, models.DirectRoom(2), entries[0].Room())
	require.Equal(t, models.GroupRoom(7), entries[1].Room())
}

func TestNullDataLeavesZeroValue(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/friends", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":0,"message":"","data":null}`))
	})

	c := newTestClient(t, mux)
	friends, err := c.Friends(context.Background())
	require.NoError(t, err)
	require.Empty(t, friends)
}

func TestSearchUsersPicksFieldByKeywordShape(t *testing.T) {
	mux := http.NewServeMux()
	var got map[string]interface{}
	mux.HandleFunc("/friends/search", func(w http.ResponseWriter, r *http.Request) {
		got = map[string]interface{}{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeEnvelope(t, w, 0, "", []models.User{})
	})

	c := newTestClient(t, mux)
	_, err := c.SearchUsers(context.Background(), "22222222")
	require.NoError(t, err)
	require.Equal(t, "22222222", got["link_id"])
	require.NotContains(t, got, "nickname")

	_, err = c.SearchUsers(context.Background(), "bob")
	require.NoError(t, err)
	require.Equal(t, "bob", got["nickname"])
	require.NotContains(t, got, "link_id")
}
