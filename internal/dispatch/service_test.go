package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsaavisos/gateway/internal/assets"
	"github.com/itsaavisos/gateway/internal/graph"
)

func TestBuildAttachmentMessage(t *testing.T) {
	t.Parallel()

	asset := assets.Asset{
		ID:           "file-9",
		Name:         "plan.pdf",
		WebURL:       "https://drive.example.com/plan.pdf",
		ThumbnailURL: "https://thumbs.example.com/plan",
	}
	msg, err := buildAttachmentMessage("hello everyone", asset)
	require.NoError(t, err)

	assert.Equal(t, "html", msg.Body.ContentType)
	assert.Equal(t, `hello everyone<br><attachment id="file-9"></attachment>`, msg.Body.Content)

	require.Len(t, msg.Attachments, 1)
	att := msg.Attachments[0]
	assert.Equal(t, "file-9", att.ID)
	assert.Equal(t, graph.AdaptiveCardContentType, att.ContentType)

	var card adaptiveCard
	require.NoError(t, json.Unmarshal([]byte(att.Content), &card))
	assert.Equal(t, "AdaptiveCard", card.Type)
	assert.Equal(t, adaptiveCardVersion, card.Version)
	require.Len(t, card.Body, 3)
	assert.Contains(t, card.Body[0].Text, "plan.pdf")
	assert.Equal(t, "Image", card.Body[2].Type)
	assert.Equal(t, asset.ThumbnailURL, card.Body[2].URL)
	require.Len(t, card.Actions, 1)
	assert.Equal(t, "Action.OpenUrl", card.Actions[0].Type)
	assert.Equal(t, asset.WebURL, card.Actions[0].URL)
}

func TestBuildFileCardWithoutThumbnail(t *testing.T) {
	t.Parallel()

	card := buildFileCard(assets.Asset{ID: "f", Name: "raw.bin", WebURL: "https://drive.example.com/raw"})
	require.Len(t, card.Body, 2)
	for _, element := range card.Body {
		assert.NotEqual(t, "Image", element.Type)
	}
}

// fakeGraph serves the chat endpoints with per-recipient failure control.
type fakeGraph struct {
	srv         *httptest.Server
	chatSeq     atomic.Int64
	failForUser string
}

func newFakeGraph(t *testing.T, failForUser string) *fakeGraph {
	t.Helper()
	f := &fakeGraph{failForUser: failForUser}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/me":
			_, _ = w.Write([]byte(`{"id":"caller-1","displayName":"Caller"}`))
		case r.URL.Path == "/chats":
			var req struct {
				Members []struct {
					UserBind string `json:"user@odata.bind"`
				} `json:"members"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)
			if f.failForUser != "" && len(req.Members) == 2 && strings.HasSuffix(req.Members[1].UserBind, "/users/"+f.failForUser) {
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte("recipient not allowed"))
				return
			}
			w.WriteHeader(http.StatusCreated)
			fmt.Fprintf(w, `{"id":"chat-%d"}`, f.chatSeq.Add(1))
		case strings.HasSuffix(r.URL.Path, "/messages"):
			chatID := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/chats/"), "/messages")
			w.WriteHeader(http.StatusCreated)
			fmt.Fprintf(w, `{"id":"msg-%s"}`, chatID)
		case strings.Contains(r.URL.Path, "createUploadSession"):
			_ = json.NewEncoder(w).Encode(map[string]string{"uploadUrl": f.srv.URL + "/upload-session"})
		case r.URL.Path == "/upload-session":
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":"file-1","name":"notes.pdf","webUrl":"https://drive.example.com/file-1"}`))
		case strings.Contains(r.URL.Path, "/thumbnails"):
			_, _ = w.Write([]byte(`{"value":[]}`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	return f
}

func newTestService(srvURL string) *Service {
	client := graph.NewClient(nil, srvURL, time.Second)
	return NewService(nil, client, assets.NewService(nil, client, 0))
}

func TestSendText(t *testing.T) {
	t.Parallel()

	fake := newFakeGraph(t, "")
	defer fake.srv.Close()

	svc := newTestService(fake.srv.URL)
	msg, err := svc.SendText(context.Background(), graph.Token("tok"), "user-1", "hi there")
	require.NoError(t, err)
	assert.Equal(t, "msg-chat-1", msg.ID)
}

func TestSendTextPropagatesChatFailure(t *testing.T) {
	t.Parallel()

	fake := newFakeGraph(t, "user-1")
	defer fake.srv.Close()

	svc := newTestService(fake.srv.URL)
	_, err := svc.SendText(context.Background(), graph.Token("tok"), "user-1", "hi")
	statusErr, ok := graph.AsStatusError(err)
	require.True(t, ok, "err = %v", err)
	assert.Equal(t, http.StatusForbidden, statusErr.Status)
	assert.Contains(t, statusErr.Body, "recipient not allowed")
}

func TestSendFileToRecipientsAllSucceed(t *testing.T) {
	t.Parallel()

	fake := newFakeGraph(t, "")
	defer fake.srv.Close()

	svc := newTestService(fake.srv.URL)
	outcomes, err := svc.SendFileToRecipients(context.Background(), graph.Token("tok"), []string{"u1", "u2"}, "note", []byte("data"), "notes.pdf")
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	assert.Equal(t, "u1", outcomes[0].RecipientID)
	assert.Equal(t, "u2", outcomes[1].RecipientID)
	for _, outcome := range outcomes {
		assert.Equal(t, StatusSuccess, outcome.Status)
		assert.NotEmpty(t, outcome.ChatID)
		assert.NotEmpty(t, outcome.MessageID)
		assert.Empty(t, outcome.Error)
	}
}

func TestSendFileToRecipientsIsolatesFailures(t *testing.T) {
	t.Parallel()

	fake := newFakeGraph(t, "u1")
	defer fake.srv.Close()

	svc := newTestService(fake.srv.URL)
	outcomes, err := svc.SendFileToRecipients(context.Background(), graph.Token("tok"), []string{"u1", "u2"}, "note", []byte("data"), "notes.pdf")
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	assert.Equal(t, StatusFailure, outcomes[0].Status)
	assert.Equal(t, "u1", outcomes[0].RecipientID)
	assert.Contains(t, outcomes[0].Error, "recipient not allowed")

	assert.Equal(t, StatusSuccess, outcomes[1].Status)
	assert.Equal(t, "u2", outcomes[1].RecipientID)
	assert.NotEmpty(t, outcomes[1].MessageID)
}

func TestSendFileToRecipientsFailsWholeBatchOnUploadError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/me" {
			_, _ = w.Write([]byte(`{"id":"caller-1"}`))
			return
		}
		w.WriteHeader(http.StatusInsufficientStorage)
		_, _ = w.Write([]byte("quota exceeded"))
	}))
	defer srv.Close()

	svc := newTestService(srv.URL)
	outcomes, err := svc.SendFileToRecipients(context.Background(), graph.Token("tok"), []string{"u1"}, "note", []byte("data"), "notes.pdf")
	require.Error(t, err)
	assert.Nil(t, outcomes)
}
