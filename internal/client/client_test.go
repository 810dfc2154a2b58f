package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	return &Client{
		config:     &Config{ServerURL: serverURL},
		configPath: filepath.Join(t.TempDir(), "client.json"),
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func newAuthServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/login", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"token": "tok-1", "user_id": "u1"})
	})
	mux.HandleFunc("GET /api/v1/me", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]string{
			"id":       "u1",
			"username": "ann",
			"email":    "ann@example.com",
			"timezone": "Asia/Tokyo",
		})
	})
	mux.HandleFunc("PUT /api/v1/me/timezone", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"timezone": "Europe/Paris"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestLoginCachesTimezone(t *testing.T) {
	srv := newAuthServer(t)
	c := newTestClient(t, srv.URL)

	require.NoError(t, c.Login("ann", "secret"))
	assert.True(t, c.IsLoggedIn())
	assert.Equal(t, "u1", c.UserID())
	assert.Equal(t, "Asia/Tokyo", c.Timezone())

	// The zone survives a restart via the saved config file.
	data, err := os.ReadFile(c.configPath)
	require.NoError(t, err)
	var saved Config
	require.NoError(t, json.Unmarshal(data, &saved))
	assert.Equal(t, "Asia/Tokyo", saved.Timezone)
}

func TestSetTimezoneUpdatesCache(t *testing.T) {
	srv := newAuthServer(t)
	c := newTestClient(t, srv.URL)
	c.config.Token = "tok-1"

	require.NoError(t, c.SetTimezone("Europe/Paris"))
	assert.Equal(t, "Europe/Paris", c.Timezone())
}

func TestLogoutClearsCachedProfile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/logout", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"message": "logged out"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := newTestClient(t, srv.URL)
	c.config.Token = "tok-1"
	c.config.UserID = "u1"
	c.config.Timezone = "Asia/Tokyo"

	require.NoError(t, c.Logout())
	assert.False(t, c.IsLoggedIn())
	assert.Empty(t, c.Timezone())
}
