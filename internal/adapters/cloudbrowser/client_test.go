package cloudbrowser

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/relaycrm/outreach-api/internal/errors"

	"github.com/relaycrm/outreach-api/internal/core"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{BaseURL: srv.URL, APIKey: "test-key"})
	require.NoError(t, err)
	return client, srv
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)
}

func TestClient_CreateSession(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/sessions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body createSessionBody
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "linkedin", body.Platform)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"prov-sess-1","metadata":{"region":"us"}}`))
	})

	sess, err := client.CreateSession(context.Background(), core.CreateProviderSessionParams{
		Platform:     "linkedin",
		ConnectorIDs: []string{"conn-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "prov-sess-1", sess.ID)
	assert.JSONEq(t, `{"region":"us"}`, string(sess.Metadata))
}

func TestClient_CreateSession_MissingID(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := client.CreateSession(context.Background(), core.CreateProviderSessionParams{Platform: "linkedin"})
	assert.True(t, apperrors.IsProvider(err))
}

func TestClient_RevokeSession_NotFoundIsSettled(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNotFound)
	})

	assert.NoError(t, client.RevokeSession(context.Background(), "prov-sess-1"))
}

func TestClient_GetTask(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/tasks/prov-task-1", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":"prov-task-1","status":"in_progress"}`))
	})

	task, err := client.GetTask(context.Background(), "prov-task-1")
	require.NoError(t, err)
	// raw provider vocabulary passes through untouched
	assert.Equal(t, "in_progress", task.Status)
}

func TestClient_FetchResult(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/tasks/prov-task-1/result", r.URL.Path)
		_, _ = w.Write([]byte(`{"cost":0.05,"output":{"headline":"Engineering Lead"}}`))
	})

	result, err := client.FetchResult(context.Background(), "prov-task-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"cost":0.05,"output":{"headline":"Engineering Lead"}}`, string(result))
}

func TestClient_ServerErrorSurfacesAsProvider(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	})

	_, err := client.GetTask(context.Background(), "prov-task-1")
	require.Error(t, err)
	assert.True(t, apperrors.IsProvider(err))
	assert.Contains(t, err.Error(), "502")
}
