// Package sdk provides the client-side library for the cadastro validator.
// It supports both a remote daemon over HTTP and local embedded mode.
package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/celerix-dev/cadastro/pkg/schema"
)

// Client is a remote client for the cadastro daemon.
// It implements the Checker interface.
type Client struct {
	baseURL string
	http    *http.Client
}

// Connect checks that a daemon answers at addr and returns a client for it.
// addr may be "host:port" or a full URL.
func Connect(addr string) (*Client, error) {
	base := strings.TrimRight(addr, "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	c := &Client{
		baseURL: base,
		http:    &http.Client{Timeout: 30 * time.Second},
	}

	var err error
	// Try up to 3 times with a growing pause.
	for i := 0; i < 3; i++ {
		if err = c.ping(context.Background()); err == nil {
			return c, nil
		}
		fmt.Fprintf(os.Stderr, "[cadastro SDK] Attempt %d failed: %v\n", i+1, err)
		time.Sleep(time.Duration((i+1)*200) * time.Millisecond)
	}
	return nil, fmt.Errorf("failed after 3 attempts. last error: %w", err)
}

func (c *Client) ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil)
}

func (c *Client) Validate(ctx context.Context, rec schema.RawRecord) (schema.ValidatedRecord, error) {
	var out schema.ValidatedRecord
	err := c.do(ctx, http.MethodPost, "/api/validate", rec, &out)
	return out, err
}

func (c *Client) ValidateBatch(ctx context.Context, recs []schema.RawRecord) (schema.Batch, error) {
	if recs == nil {
		recs = []schema.RawRecord{}
	}
	var out schema.Batch
	err := c.do(ctx, http.MethodPost, "/api/batches", recs, &out)
	return out, err
}

// GetBatch fetches a batch previously stored by the daemon.
func (c *Client) GetBatch(ctx context.Context, id string) (schema.Batch, error) {
	var out schema.Batch
	err := c.do(ctx, http.MethodGet, "/api/batches/"+id, nil, &out)
	return out, err
}

// APIError is a non-2xx answer from the daemon.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("cadastro: %s (status %d)", e.Message, e.Status)
}

// ErrNotFound matches an APIError with status 404.
var ErrNotFound = errors.New("not found")

func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
