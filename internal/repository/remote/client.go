// Package remote implements the transaction repository over the
// authenticated REST API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"buckaroo/internal/core"
	"buckaroo/internal/repository"
)

// DefaultTimeout bounds every remote call.
const DefaultTimeout = 10 * time.Second

// Client talks to the remote transaction API with a bearer token attached to
// every request. All transport and server failures are normalized into
// repository errors carrying a user-facing message alongside the cause.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: DefaultTimeout},
	}
}

// List implements repository.TransactionRepository.
func (c *Client) List(ctx context.Context) ([]core.Transaction, error) {
	var records []repository.Record
	if err := c.do(ctx, http.MethodGet, "/transactions", nil, &records); err != nil {
		return nil, err
	}
	txs, err := repository.Transactions(records)
	if err != nil {
		return nil, repository.NewError(repository.KindServer, "the server returned malformed transactions", err)
	}
	return txs, nil
}

// Create implements repository.TransactionRepository.
func (c *Client) Create(ctx context.Context, draft core.Draft) (core.Transaction, error) {
	var created repository.Record
	if err := c.do(ctx, http.MethodPost, "/transactions", repository.FromDraft(draft), &created); err != nil {
		return core.Transaction{}, err
	}
	tx, err := created.Transaction()
	if err != nil {
		return core.Transaction{}, repository.NewError(repository.KindServer, "the server returned a malformed transaction", err)
	}
	return tx, nil
}

// Update implements repository.TransactionRepository.
func (c *Client) Update(ctx context.Context, id string, draft core.Draft) (core.Transaction, error) {
	var updated repository.Record
	if err := c.do(ctx, http.MethodPut, "/transactions/"+id, repository.FromDraft(draft), &updated); err != nil {
		return core.Transaction{}, c.asNotFound(err, id)
	}
	tx, err := updated.Transaction()
	if err != nil {
		return core.Transaction{}, repository.NewError(repository.KindServer, "the server returned a malformed transaction", err)
	}
	return tx, nil
}

// Delete implements repository.TransactionRepository.
func (c *Client) Delete(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/transactions/"+id, nil, nil); err != nil {
		return c.asNotFound(err, id)
	}
	return nil
}

// do performs one API call and decodes the response into out when non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return c.wrapTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.wrapServerError(ctx, method, path, resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return repository.NewError(repository.KindServer, "the server returned an unreadable response", err)
		}
	}
	return nil
}

// wrapTransportError classifies failures that never produced a response.
func (c *Client) wrapTransportError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() || errors.Is(err, context.DeadlineExceeded) {
		return repository.NewError(repository.KindTimeout,
			"request timed out, check your connection and try again", err)
	}
	return repository.NewError(repository.KindConnectivity,
		"cannot reach the server, check your connection", err)
}

// wrapServerError derives the message from the response body when the server
// sent one, otherwise from the status code.
func (c *Client) wrapServerError(ctx context.Context, method, path string, resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	// Best effort: the body may not be JSON at all.
	_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&payload)

	slog.ErrorContext(ctx, "Remote API call failed",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"server_message", payload.Error)

	return repository.ServerError(resp.StatusCode, payload.Error, nil)
}

// asNotFound downgrades a 404 server error to a distinct not-found failure so
// callers never conflate a missing record with a connectivity problem.
func (c *Client) asNotFound(err error, id string) error {
	if err == nil {
		return nil
	}
	var re *repository.Error
	if errors.As(err, &re) && re.Kind == repository.KindServer && re.Status == http.StatusNotFound {
		return repository.NotFound(id)
	}
	return err
}
