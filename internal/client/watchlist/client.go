package client_watchlist

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/humanbelnik/cinematheque/internal/model"
)

const apiPrefix = "/api/v1"

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server answered %d: %s", e.StatusCode, e.Message)
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type moviesResponse struct {
	Movies []model.Movie `json:"movies"`
	Total  int           `json:"total"`
}

type refreshResponse struct {
	Updated bool         `json:"updated"`
	Movie   *model.Movie `json:"movie"`
}

// Event is one message from the live stream. Exactly one of Snapshot
// and Notice is set for known types.
type Event struct {
	Type     string
	Snapshot *model.Snapshot
	Notice   *model.Notice
}

// Client talks to a running cinematheque server.
type Client struct {
	baseURL string
	http    *resty.Client
}

func New(baseURL string) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	return &Client{
		baseURL: baseURL,
		http: resty.New().
			SetBaseURL(baseURL+apiPrefix).
			SetHeader("Content-Type", "application/json"),
	}
}

func (c *Client) List(ctx context.Context) ([]model.Movie, error) {
	var out moviesResponse
	if err := c.do(ctx, http.MethodGet, "/movies", nil, &out); err != nil {
		return nil, err
	}
	return out.Movies, nil
}

func (c *Client) Add(ctx context.Context, title string) (model.Movie, error) {
	var out model.Movie
	err := c.do(ctx, http.MethodPost, "/movies", map[string]string{"title": title}, &out)
	return out, err
}

func (c *Client) Delete(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/movies/"+id.String(), nil, nil)
}

// RefreshPoster returns the updated movie, or nil when nothing changed.
func (c *Client) RefreshPoster(ctx context.Context, id uuid.UUID) (*model.Movie, error) {
	var out refreshResponse
	if err := c.do(ctx, http.MethodPost, "/movies/"+id.String()+"/poster", nil, &out); err != nil {
		return nil, err
	}
	if !out.Updated {
		return nil, nil
	}
	return out.Movie, nil
}

func (c *Client) FindSimilar(ctx context.Context, title string) (model.Suggestion, error) {
	var out model.Suggestion
	err := c.do(ctx, http.MethodPost, "/suggestions", map[string]string{"title": title}, &out)
	return out, err
}

func (c *Client) DismissSuggestion(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/suggestions", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		apiErr := &APIError{StatusCode: resp.StatusCode(), Message: resp.Status()}
		var e errorResponse
		if json.Unmarshal(resp.Body(), &e) == nil {
			if e.Message != "" {
				apiErr.Message = e.Message
			} else if e.Error != "" {
				apiErr.Message = e.Error
			}
		}
		return apiErr
	}
	if result == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), result); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// Subscribe streams live events to handle until ctx is cancelled or the
// server goes away. The first event is always the current state.
func (c *Client) Subscribe(ctx context.Context, handle func(Event)) error {
	u, err := url.Parse(c.baseURL + apiPrefix + "/ws")
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("websocket connection failed: %w", err)
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		var raw struct {
			Type    string          `json:"type"`
			Payload json.RawMessage `json:"payload"`
		}
		if err := conn.ReadJSON(&raw); err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return err
		}

		ev := Event{Type: raw.Type}
		switch raw.Type {
		case "STATE":
			var s model.Snapshot
			if err := json.Unmarshal(raw.Payload, &s); err != nil {
				return fmt.Errorf("decode state: %w", err)
			}
			ev.Snapshot = &s
		case "NOTICE":
			var n model.Notice
			if err := json.Unmarshal(raw.Payload, &n); err != nil {
				return fmt.Errorf("decode notice: %w", err)
			}
			ev.Notice = &n
		}
		handle(ev)
	}
}
