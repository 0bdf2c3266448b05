package history

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestNormalizeReasoning(t *testing.T) {
	assert.Nil(t, NormalizeReasoning(""))

	got := NormalizeReasoning("step by step")
	require.NotNil(t, got)
	assert.Equal(t, "step by step", *got)
}

func TestMessage_MarshalOmitsAbsentReasoning(t *testing.T) {
	msg := Message{
		SessionID: uuid.New(),
		Role:      RoleAssistant,
		Content:   "hello",
		Reasoning: NormalizeReasoning(""),
	}

	data, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.False(t, gjson.GetBytes(data, "reasoning").Exists())
}

func TestMemStore_AppendAndThread(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()
	session := uuid.New()

	require.NoError(t, store.Append(ctx, Message{SessionID: session, Role: RoleUser, Content: "hi"}))
	require.NoError(t, store.Append(ctx, Message{SessionID: session, Role: RoleAssistant, Content: "hello"}))
	require.NoError(t, store.Append(ctx, Message{SessionID: uuid.New(), Role: RoleUser, Content: "other session"}))

	thread, err := store.Thread(ctx, session)
	require.NoError(t, err)
	require.Len(t, thread, 2)
	assert.Equal(t, "hi", thread[0].Content)
	assert.Equal(t, "hello", thread[1].Content)
}

func TestMemStore_UnknownSession(t *testing.T) {
	thread, err := NewMemStore().Thread(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, thread)
}

func TestRestStore_Append(t *testing.T) {
	session := uuid.New()
	var got Message

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/messages", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	store := NewRestStore(srv.URL, "test-key", nil)
	err := store.Append(context.Background(), Message{
		SessionID: session,
		Role:      RoleAssistant,
		Content:   "done",
		Model:     "openai/gpt-4o",
	})
	require.NoError(t, err)
	assert.Equal(t, session, got.SessionID)
	assert.Equal(t, "done", got.Content)
}

func TestRestStore_AppendFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewRestStore(srv.URL, "", nil).Append(context.Background(), Message{SessionID: uuid.New()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestRestStore_Thread(t *testing.T) {
	session := uuid.New()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, session.String(), r.URL.Query().Get("session_id"))
		_ = json.NewEncoder(w).Encode([]Message{
			{SessionID: session, Role: RoleUser, Content: "question"},
		})
	}))
	defer srv.Close()

	thread, err := NewRestStore(srv.URL, "", nil).Thread(context.Background(), session)
	require.NoError(t, err)
	require.Len(t, thread, 1)
	assert.Equal(t, "question", thread[0].Content)
}
