// Package remote implements the server side of the sync contract over
// HTTP. Failures map onto the error taxonomy: transport problems become
// network errors, 404 becomes not-found, 400 keeps the server's validation
// message, and remaining failure statuses become server errors.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"todosync/internal/domain/todo"
	"todosync/pkg/api"
	appErrors "todosync/pkg/errors"
)

const defaultTimeout = 10 * time.Second

// Client talks to the todo REST API. All calls route through a circuit
// breaker; an open breaker fails fast with a network error instead of
// waiting out another timeout.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// NewClient creates a client for the API at baseURL.
func NewClient(baseURL string, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  logger,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.breaker = newBreaker("todosync-remote", logger)
	return c
}

// List fetches all todos. Records without a resolvable identifier are
// dropped during normalization.
func (c *Client) List(ctx context.Context) ([]todo.Item, error) {
	var docs []api.TodoDocument
	if err := c.do(ctx, http.MethodGet, "/api/todos", nil, &docs); err != nil {
		return nil, err
	}
	return todo.FromDocuments(docs), nil
}

// Get fetches a single todo by id.
func (c *Client) Get(ctx context.Context, id string) (todo.Item, error) {
	var doc api.TodoDocument
	if err := c.do(ctx, http.MethodGet, "/api/todos/"+url.PathEscape(id), nil, &doc); err != nil {
		return todo.Item{}, err
	}
	return itemFromDocument(doc), nil
}

// Create stores a new todo with the given text.
func (c *Client) Create(ctx context.Context, text string) (todo.Item, error) {
	var doc api.TodoDocument
	req := api.CreateTodoRequest{Text: text}
	if err := c.do(ctx, http.MethodPost, "/api/todos", req, &doc); err != nil {
		return todo.Item{}, err
	}
	return itemFromDocument(doc), nil
}

// Update applies a partial update to a todo.
func (c *Client) Update(ctx context.Context, id string, patch todo.Patch) (todo.Item, error) {
	var doc api.TodoDocument
	if err := c.do(ctx, http.MethodPut, "/api/todos/"+url.PathEscape(id), patch, &doc); err != nil {
		return todo.Item{}, err
	}
	return itemFromDocument(doc), nil
}

// Toggle asks the server to flip a todo's completion state.
func (c *Client) Toggle(ctx context.Context, id string) (todo.Item, error) {
	var doc api.TodoDocument
	if err := c.do(ctx, http.MethodPatch, "/api/todos/"+url.PathEscape(id)+"/toggle", nil, &doc); err != nil {
		return todo.Item{}, err
	}
	return itemFromDocument(doc), nil
}

// Delete removes a todo by id.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/todos/"+url.PathEscape(id), nil, nil)
}

// DeleteCompleted removes all completed todos and returns the count.
func (c *Client) DeleteCompleted(ctx context.Context) (int, error) {
	var resp api.DeleteCompletedResponse
	if err := c.do(ctx, http.MethodDelete, "/api/todos/completed", nil, &resp); err != nil {
		return 0, err
	}
	return resp.DeletedCount, nil
}

// Stats fetches the server-side item counts.
func (c *Client) Stats(ctx context.Context) (todo.Stats, error) {
	var resp api.StatsResponse
	if err := c.do(ctx, http.MethodGet, "/api/todos/stats", nil, &resp); err != nil {
		return todo.Stats{}, err
	}
	return todo.Stats{Total: resp.Total, Completed: resp.Completed, Pending: resp.Pending}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.roundTrip(ctx, method, path, body, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return appErrors.NewNetwork("server requests suspended after repeated failures", err)
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return appErrors.Wrap(err, "failed to encode request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return appErrors.Wrap(err, "failed to build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return appErrors.NewNetwork("server unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return c.statusError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return appErrors.NewServer("malformed response from server")
		}
	}
	return nil
}

func (c *Client) statusError(resp *http.Response) error {
	message := readErrorMessage(resp.Body)

	switch resp.StatusCode {
	case http.StatusNotFound:
		if message == "" {
			message = "not found"
		}
		return appErrors.NewNotFound(message)
	case http.StatusBadRequest:
		if message == "" {
			message = "invalid request"
		}
		return appErrors.NewValidation(message)
	default:
		if message == "" {
			message = resp.Status
		}
		return appErrors.NewServer(fmt.Sprintf("server replied %d: %s", resp.StatusCode, message))
	}
}

// readErrorMessage pulls the message out of an {"error": ...} body, empty
// when the body is not in that shape.
func readErrorMessage(body io.Reader) string {
	var errResp api.ErrorResponse
	if err := json.NewDecoder(body).Decode(&errResp); err != nil {
		return ""
	}
	return errResp.Error
}

// itemFromDocument normalizes a single-record response. When neither
// identifier field resolves the record is handed back as-is so the core
// can treat it as an invariant violation.
func itemFromDocument(doc api.TodoDocument) todo.Item {
	if item, ok := todo.FromDocument(doc); ok {
		return item
	}
	return todo.Item{
		ID:        doc.ID,
		Text:      doc.Text,
		Completed: doc.Completed,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}
