//go:generate go run go.uber.org/mock/mockgen -source=client.go -destination=../mocks/mock_backend_gateway.go -package=mocks
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"task-bot/domain"
)

// FailureKind classifies a backend call failure so callers can branch
// deterministically instead of inspecting transport errors.
type FailureKind string

const (
	FailureTimeout     FailureKind = "timeout"
	FailureUnreachable FailureKind = "unreachable"
	FailureClient      FailureKind = "client_error"
	FailureServer      FailureKind = "server_error"
)

// GatewayError is the only error type that crosses the gateway boundary.
type GatewayError struct {
	Kind   FailureKind
	Status int // HTTP status for Client/Server kinds, zero otherwise
	cause  error
}

func (e *GatewayError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("backend %s (status %d)", e.Kind, e.Status)
	}
	return fmt.Sprintf("backend %s: %v", e.Kind, e.cause)
}

func (e *GatewayError) Unwrap() error { return e.cause }

// AsGatewayError extracts the classified failure, if err is one.
func AsGatewayError(err error) (*GatewayError, bool) {
	var ge *GatewayError
	ok := errors.As(err, &ge)
	return ge, ok
}

// IBackendGateway wraps the todo backend's HTTP API. Calls never retry;
// retry policy, if any, belongs to the caller.
type IBackendGateway interface {
	CreateUserFromChat(ctx context.Context, username, password string, chatID domain.ChatID) (domain.User, error)
	ListTasks(ctx context.Context, chatID domain.ChatID, filter domain.TaskFilter) ([]domain.Task, error)
}

type Client struct {
	baseURL string
	http    *http.Client
	log     *slog.Logger
}

// NewClient builds a gateway over the backend at baseURL. Every call is
// bounded by timeout so a slow backend cannot block a user's event stream.
func NewClient(baseURL string, timeout time.Duration, log *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

type createUserRequest struct {
	TelegramID int64  `json:"telegram_id"`
	Username   string `json:"username"`
	Password   string `json:"password"`
}

// CreateUserFromChat registers a chat user against POST /user/add_tlg/.
func (c *Client) CreateUserFromChat(ctx context.Context, username, password string, chatID domain.ChatID) (domain.User, error) {
	payload := createUserRequest{
		TelegramID: int64(chatID),
		Username:   username,
		Password:   password,
	}

	var user domain.User
	if err := c.call(ctx, http.MethodPost, "/user/add_tlg/", payload, &user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// ListTasks fetches a user's tasks, filtered backend-side.
// All three filter paths are keyed by the chat identity.
func (c *Client) ListTasks(ctx context.Context, chatID domain.ChatID, filter domain.TaskFilter) ([]domain.Task, error) {
	var path string
	switch filter {
	case domain.FilterActive:
		path = fmt.Sprintf("/task/showactive/%d", chatID)
	case domain.FilterClosed:
		path = fmt.Sprintf("/task/showclosed/%d", chatID)
	default:
		path = fmt.Sprintf("/task/show/%d", chatID)
	}

	var tasks []domain.Task
	if err := c.call(ctx, http.MethodGet, path, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// call performs one HTTP exchange and maps every failure onto GatewayError.
// No raw transport error ever escapes this method.
func (c *Client) call(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return &GatewayError{Kind: FailureUnreachable, cause: err}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &GatewayError{Kind: FailureUnreachable, cause: err}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		kind := FailureUnreachable
		var ue *url.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ue) && ue.Timeout()) {
			kind = FailureTimeout
		}
		c.log.Warn("backend call failed", "method", method, "path", path, "kind", kind, "err", err)
		return &GatewayError{Kind: kind, cause: err}
	}
	defer resp.Body.Close()

	c.log.Debug("backend call", "method", method, "path", path,
		"status", resp.StatusCode, "duration", time.Since(start))

	switch {
	case resp.StatusCode >= 500:
		return &GatewayError{Kind: FailureServer, Status: resp.StatusCode}
	case resp.StatusCode >= 400:
		return &GatewayError{Kind: FailureClient, Status: resp.StatusCode}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		// A 2xx with an unreadable body is a backend fault, not a caller one.
		return &GatewayError{Kind: FailureServer, Status: resp.StatusCode, cause: err}
	}
	return nil
}
