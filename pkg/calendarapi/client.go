package calendarapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// TokenHeader is the header the backend reads the session token from.
const TokenHeader = "x-token"

// TokenSource returns the stored session token, or "" when there is none.
type TokenSource func() string

// APIError is a non-2xx answer of the backend. Message is the backend's error text and may be empty.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("calendar api returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("calendar api returned status %d: %s", e.StatusCode, e.Message)
}

type AuthResponse struct {
	Ok    bool   `json:"ok"`
	Uid   string `json:"uid"`
	Name  string `json:"name"`
	Token string `json:"token"`
}

type Owner struct {
	Uid  string `json:"uid"`
	Name string `json:"name"`
}

type Event struct {
	UID       string    `json:"uid,omitempty"`
	Title     string    `json:"title"`
	Notes     string    `json:"notes"`
	StartTime time.Time `json:"start"`
	EndTime   time.Time `json:"end"`
	Owner     *Owner    `json:"user,omitempty"`
}

type AuthAPI interface {
	Login(ctx context.Context, email, password string) (AuthResponse, error)
	Register(ctx context.Context, name, email, password string) (AuthResponse, error)
	Renew(ctx context.Context) (AuthResponse, error)
}

type EventsAPI interface {
	ListEvents(ctx context.Context, from, to time.Time) ([]Event, error)
	CreateEvent(ctx context.Context, event Event) (Event, error)
	UpdateEvent(ctx context.Context, event Event) (Event, error)
	DeleteEvent(ctx context.Context, eventUid string) error
	ExportICS(ctx context.Context, from, to time.Time) (string, error)
}

type Client struct {
	baseURL string
	http    *http.Client
	token   TokenSource
}

// NewClient creates a client for the API rooted at baseURL, e.g. http://localhost:8181/api.
// Every request carries the token returned by token, when there is one.
func NewClient(baseURL string, token TokenSource, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		token:   token,
	}
}

func (c *Client) Login(ctx context.Context, email, password string) (AuthResponse, error) {
	var resp AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	return resp, err
}

func (c *Client) Register(ctx context.Context, name, email, password string) (AuthResponse, error) {
	var resp AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/new", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}, &resp)
	return resp, err
}

// Renew exchanges the stored token for a fresh one.
func (c *Client) Renew(ctx context.Context) (AuthResponse, error) {
	var resp AuthResponse
	err := c.do(ctx, http.MethodGet, "/auth/renew", nil, &resp)
	return resp, err
}

func (c *Client) ListEvents(ctx context.Context, from, to time.Time) ([]Event, error) {
	var events []Event
	err := c.do(ctx, http.MethodGet, "/calendar/event?"+period(from, to), nil, &events)
	return events, err
}

func (c *Client) CreateEvent(ctx context.Context, event Event) (Event, error) {
	var created Event
	err := c.do(ctx, http.MethodPost, "/calendar/event", event, &created)
	return created, err
}

func (c *Client) UpdateEvent(ctx context.Context, event Event) (Event, error) {
	var updated Event
	err := c.do(ctx, http.MethodPut, "/calendar/event/"+url.PathEscape(event.UID), event, &updated)
	return updated, err
}

func (c *Client) DeleteEvent(ctx context.Context, eventUid string) error {
	return c.do(ctx, http.MethodDelete, "/calendar/event/"+url.PathEscape(eventUid), nil, nil)
}

func (c *Client) ExportICS(ctx context.Context, from, to time.Time) (string, error) {
	resp, err := c.send(ctx, http.MethodGet, "/calendar/export.ics?"+period(from, to), nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read calendar export: %w", err)
	}
	return string(body), nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.Errorf("Failed to decode response of %s %s: %v", method, path, err)
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// send performs the request and turns non-2xx answers into *APIError. The caller closes the body.
func (c *Client) send(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		if token := c.token(); token != "" {
			req.Header.Set(TokenHeader, token)
		}
	}

	log.Tracef("%s %s", method, req.URL.Path)
	resp, err := c.http.Do(req)
	if err != nil {
		log.Debugf("request %s %s failed: %v", method, path, err)
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		var errResp struct {
			Error string `json:"error"`
		}
		// a body that is not JSON leaves Message empty
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		return nil, &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
	}
	return resp, nil
}

func period(from, to time.Time) string {
	q := url.Values{}
	q.Set("from", from.Format(time.RFC3339))
	q.Set("to", to.Format(time.RFC3339))
	return q.Encode()
}
