// Package client is the HTTP client the CLI uses to talk to the Daily
// Reset API server. Credentials live in ~/.dailyreset/client.json.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/dailyflow/dailyreset/internal/model"
	"github.com/dailyflow/dailyreset/internal/rollover"
)

// Config holds the client's server and session state. Timezone mirrors
// the server-side user setting so day boundaries can be computed without
// a round trip.
type Config struct {
	ServerURL string `json:"server_url"`
	Token     string `json:"token"`
	UserID    string `json:"user_id"`
	Timezone  string `json:"timezone"`
}

// Client talks to the API server
type Client struct {
	config     *Config
	configPath string
	httpClient *http.Client
}

// New creates a client, loading any saved session
func New(serverURL string) (*Client, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	c := &Client{
		configPath: filepath.Join(home, ".dailyreset", "client.json"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}

	c.loadConfig()
	if serverURL != "" {
		c.config.ServerURL = serverURL
	}

	return c, nil
}

func (c *Client) loadConfig() {
	data, err := os.ReadFile(c.configPath)
	if err != nil {
		c.config = &Config{ServerURL: "http://localhost:8080"}
		return
	}

	c.config = &Config{}
	json.Unmarshal(data, c.config)
	if c.config.ServerURL == "" {
		c.config.ServerURL = "http://localhost:8080"
	}
}

func (c *Client) saveConfig() error {
	dir := filepath.Dir(c.configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c.config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(c.configPath, data, 0600)
}

// IsLoggedIn returns true if a session token is saved
func (c *Client) IsLoggedIn() bool {
	return c.config.Token != ""
}

// UserID returns the logged-in user's id
func (c *Client) UserID() string {
	return c.config.UserID
}

// Timezone returns the user's IANA zone as cached at login. Empty when
// the profile has never been fetched.
func (c *Client) Timezone() string {
	return c.config.Timezone
}

// do performs one API request, decoding a JSON response into out when
// out is non-nil
func (c *Client) do(method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.config.ServerURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		respBody, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s", method, path, apiErr.Error)
		}
		return fmt.Errorf("%s %s: %s", method, path, string(respBody))
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// --- auth ---

type authResult struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

// Register creates a new account and stores the session
func (c *Client) Register(username, email, password, timezone string) error {
	var result authResult
	err := c.do(http.MethodPost, "/api/v1/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
		"timezone": timezone,
	}, &result)
	if err != nil {
		return err
	}

	c.config.Token = result.Token
	c.config.UserID = result.UserID
	c.refreshProfile()
	return c.saveConfig()
}

// refreshProfile caches the server-side timezone alongside the session.
// Best effort; the session is usable without it.
func (c *Client) refreshProfile() {
	if user, err := c.Me(); err == nil {
		c.config.Timezone = user.Timezone
	}
}

// Login authenticates with username and password
func (c *Client) Login(username, password string) error {
	var result authResult
	err := c.do(http.MethodPost, "/api/v1/login", map[string]string{
		"username": username,
		"password": password,
	}, &result)
	if err != nil {
		return err
	}

	c.config.Token = result.Token
	c.config.UserID = result.UserID
	c.refreshProfile()
	return c.saveConfig()
}

// RequestMagicLink asks the server for a passwordless login token.
// The returned token is only present on dev servers.
func (c *Client) RequestMagicLink(email string) (string, error) {
	var result struct {
		Token string `json:"token"`
	}
	err := c.do(http.MethodPost, "/api/v1/magic-link", map[string]string{"email": email}, &result)
	return result.Token, err
}

// VerifyMagicLink exchanges a magic link token for a session
func (c *Client) VerifyMagicLink(token string) error {
	var result authResult
	if err := c.do(http.MethodGet, "/api/v1/magic-link/"+token, nil, &result); err != nil {
		return err
	}

	c.config.Token = result.Token
	c.config.UserID = result.UserID
	c.refreshProfile()
	return c.saveConfig()
}

// Logout revokes the session server-side and clears saved credentials
func (c *Client) Logout() error {
	if c.config.Token != "" {
		c.do(http.MethodPost, "/api/v1/logout", nil, nil)
	}
	c.config.Token = ""
	c.config.UserID = ""
	c.config.Timezone = ""
	return c.saveConfig()
}

// Me returns the logged-in user's profile
func (c *Client) Me() (model.User, error) {
	var user model.User
	err := c.do(http.MethodGet, "/api/v1/me", nil, &user)
	return user, err
}

// SetTimezone updates the user's fixed IANA zone
func (c *Client) SetTimezone(timezone string) error {
	if err := c.do(http.MethodPut, "/api/v1/me/timezone", map[string]string{"timezone": timezone}, nil); err != nil {
		return err
	}
	c.config.Timezone = timezone
	return c.saveConfig()
}

// --- tasks ---

// TaskList is today's task list as the server sees it
type TaskList struct {
	Day   model.Day    `json:"day"`
	Tasks []model.Task `json:"tasks"`
}

// TodayTasks fetches today's tasks in display order
func (c *Client) TodayTasks() (TaskList, error) {
	var list TaskList
	err := c.do(http.MethodGet, "/api/v1/tasks", nil, &list)
	return list, err
}

// AddTask appends a task to today's list
func (c *Client) AddTask(text string) (model.Task, error) {
	var task model.Task
	err := c.do(http.MethodPost, "/api/v1/tasks", map[string]string{"text": text}, &task)
	return task, err
}

// SetDone sets a task's completion flag
func (c *Client) SetDone(taskID string, done bool) (model.Task, error) {
	var task model.Task
	err := c.do(http.MethodPatch, "/api/v1/tasks/"+taskID, map[string]bool{"done": done}, &task)
	return task, err
}

// DeleteTask removes one task
func (c *Client) DeleteTask(taskID string) error {
	return c.do(http.MethodDelete, "/api/v1/tasks/"+taskID, nil, nil)
}

// TaskOrder pairs a task with its new position
type TaskOrder struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
}

// Reorder applies a full reorder of today's list in one call
func (c *Client) Reorder(orders []TaskOrder) error {
	return c.do(http.MethodPut, "/api/v1/tasks/order", map[string]interface{}{"orders": orders}, nil)
}

// --- history ---

// History is an archived range plus its aggregates
type History struct {
	Days              []model.DayHistory `json:"days"`
	DaysWithTasks     int                `json:"days_with_tasks"`
	TotalTasks        int                `json:"total_tasks"`
	CompletedTasks    int                `json:"completed_tasks"`
	OverallPercentage int                `json:"overall_percentage"`
}

// HistoryRange fetches archived summaries for an inclusive date range
func (c *Client) HistoryRange(from, to model.Day) (History, error) {
	var h History
	path := fmt.Sprintf("/api/v1/history?from=%s&to=%s", from, to)
	err := c.do(http.MethodGet, path, nil, &h)
	return h, err
}

// --- rollover ---

// Rollover asks the server to run the daily rollover check now
func (c *Client) Rollover() (rollover.Outcome, error) {
	var outcome rollover.Outcome
	err := c.do(http.MethodPost, "/api/v1/rollover", nil, &outcome)
	return outcome, err
}
