// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

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
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jeranaias/rigrun-chat/internal/config"
	"github.com/jeranaias/rigrun-chat/internal/logging"
	"github.com/jeranaias/rigrun-chat/internal/model"
)

// maxErrorBody caps how much of a failed response is kept in StatusError.
const maxErrorBody = 4096

// maxResponseBody caps a decoded response body.
const maxResponseBody = 8 << 20

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the chat server's HTTP API. It is safe for concurrent
// use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a client for baseURL (for example http://localhost:8000).
// A zero timeout means no client-side limit beyond the request context.
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logging.OrDiscard(logger),
	}
}

// NewFromConfig creates a client from the application config.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) *Client {
	return New(cfg.Server.APIURL, cfg.RequestTimeout(), logger)
}

// ListSessions returns the server's sessions for the sidebar. The server
// may answer with a bare array or with {"sessions": [...]}.
func (c *Client) ListSessions(ctx context.Context) ([]model.Session, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/sessions", nil, &raw); err != nil {
		return nil, err
	}

	var list sessionsResponse
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var env sessionsEnvelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		list = env.Sessions
	} else if err := json.Unmarshal(trimmed, &list); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	sessions := make([]model.Session, 0, len(list))
	for _, p := range list {
		if err := checkPayload(p); err != nil {
			return nil, err
		}
		sessions = append(sessions, p.toModel())
	}
	return sessions, nil
}

// History fetches the finalized messages of one session.
func (c *Client) History(ctx context.Context, sessionID string) ([]model.Message, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: empty session id", ErrInvalidRequest)
	}

	var resp historyResponse
	path := "/api/sessions/" + url.PathEscape(sessionID) + "/history"
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	if err := checkPayload(resp); err != nil {
		return nil, err
	}

	msgs := make([]model.Message, 0, len(resp.Messages))
	for _, p := range resp.Messages {
		role, _ := model.ParseRole(p.Role)
		m := model.NewMessage(role, p.Content)
		if !p.Timestamp.IsZero() {
			m.Timestamp = p.Timestamp
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

// Compare requests a comparison of two sessions.
func (c *Client) Compare(ctx context.Context, req CompareRequest) (*model.ComparisonResult, error) {
	if err := validatorInstance().Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, describe(err))
	}

	var resp compareResponse
	if err := c.do(ctx, http.MethodPost, "/api/compare", req, &resp); err != nil {
		return nil, err
	}
	if err := checkPayload(resp); err != nil {
		return nil, err
	}

	region := resp.Region
	if region == "" {
		region = req.Region
	}
	a, b := resp.SessionA.toModel(), resp.SessionB.toModel()
	if a.Title == "" {
		a.Title = req.TitleA
	}
	if b.Title == "" {
		b.Title = req.TitleB
	}
	return &model.ComparisonResult{A: a, B: b, Region: region, Text: resp.Comparison}, nil
}

// =============================================================================
// TRANSPORT HELPERS
// =============================================================================

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("api.request.failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("api.request", "method", method, "path", path,
		"status", resp.StatusCode, "latency_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Method: method,
			Path:   path,
			Code:   resp.StatusCode,
			Body:   strings.TrimSpace(string(snippet)),
		}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBody)).Decode(out); err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrMalformedResponse, method, path, err)
	}
	return nil
}

func checkPayload(v any) error {
	if err := validatorInstance().Struct(v); err != nil {
		return fmt.Errorf("%w: %s", ErrMalformedResponse, describe(err))
	}
	return nil
}

// describe flattens validator errors into one line.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		msgs[i] = fmt.Sprintf("field '%s' failed on the '%s' tag", fe.Namespace(), fe.Tag())
	}
	return strings.Join(msgs, "; ")
}
