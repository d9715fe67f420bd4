package keep

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	logx "github.com/lokhor/cleaning-scheduler/pkg/logx"
)

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func client(srv *httptest.Server, cfg HTTPConfig) *HTTPClient {
	cfg.BaseURL = srv.URL
	if cfg.RatePerSec == 0 {
		cfg.RatePerSec = 1000 // keep tests fast
	}
	return NewHTTPClient(cfg, logx.Nop())
}

func TestAuthenticateExchangesCredentials(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/auth", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "a@b.c", body["email"])
		require.Equal(t, "hunter2", body["password"])

		_ = json.NewEncoder(w).Encode(map[string]string{"token": "tok-123"})
	})

	c := client(srv, HTTPConfig{Email: "a@b.c", Password: "hunter2"})
	require.NoError(t, c.Authenticate(context.Background()))
}

func TestAuthenticateRejection(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	c := client(srv, HTTPConfig{Email: "a@b.c", Password: "wrong"})
	err := c.Authenticate(context.Background())
	require.ErrorIs(t, err, ErrAuth)
}

func TestAuthenticateWithoutCredentials(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {})

	c := client(srv, HTTPConfig{})
	require.ErrorIs(t, c.Authenticate(context.Background()), ErrAuth)
}

func TestAuthenticateTokenSkipsExchange(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected when a token is configured")
	})

	c := client(srv, HTTPConfig{Token: "tok-123"})
	require.NoError(t, c.Authenticate(context.Background()))
}

func TestRequestsCarryBearerToken(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]any{"lists": []any{}})
	})

	c := client(srv, HTTPConfig{Token: "tok-123"})
	_, ok, err := c.FindList(context.Background(), "Alice's Chores")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFindListMatchesExactTitle(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Alice's Chores", r.URL.Query().Get("title"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"lists": []map[string]string{
				{"id": "l1", "title": "Alice's Chores (old)"},
				{"id": "l2", "title": "Alice's Chores"},
			},
		})
	})

	c := client(srv, HTTPConfig{Token: "tok"})
	id, ok, err := c.FindList(context.Background(), "Alice's Chores")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, ListID("l2"), id)
}

func TestItemLifecycle(t *testing.T) {
	var deleted, patched, synced bool
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/lists/l1/items":
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, "Wipe counters", body["text"])
			require.Equal(t, false, body["checked"])
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "i1"})
		case r.Method == http.MethodDelete && r.URL.Path == "/v1/lists/l1/items/i1":
			deleted = true
		case r.Method == http.MethodPatch && r.URL.Path == "/v1/lists/l1/items/i1":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, "h1", body["parent_id"])
			patched = true
		case r.Method == http.MethodPost && r.URL.Path == "/v1/sync":
			synced = true
		default:
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	})

	c := client(srv, HTTPConfig{Token: "tok"})
	ctx := context.Background()

	id, err := c.AddItem(ctx, "l1", "Wipe counters", false)
	require.NoError(t, err)
	require.Equal(t, ItemID("i1"), id)

	require.NoError(t, c.SetParent(ctx, "l1", "i1", "h1"))
	require.NoError(t, c.DeleteItem(ctx, "l1", "i1"))
	require.NoError(t, c.Commit(ctx))

	require.True(t, deleted)
	require.True(t, patched)
	require.True(t, synced)
}

func TestServerErrorSurfaced(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})

	c := client(srv, HTTPConfig{Token: "tok"})
	_, err := c.CreateList(context.Background(), "Alice's Chores")
	require.Error(t, err)
	require.Contains(t, err.Error(), "quota exceeded")
}
