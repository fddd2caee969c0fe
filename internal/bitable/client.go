// Package bitable is the adapter for the remote tabular record store. It is
// the only component that performs network I/O: it acquires and refreshes the
// short-lived tenant token, retries transient faults with bounded exponential
// backoff, and surfaces permanent rejections immediately.
package bitable

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
	"strconv"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const (
	defaultTimeout       = 10 * time.Second
	defaultMaxTries      = 4
	defaultPageSize      = 500
	defaultRetryInterval = 250 * time.Millisecond

	// tokenSafetyMargin renews the tenant token this long before the
	// lifetime reported by the token endpoint runs out.
	tokenSafetyMargin = 60 * time.Second
)

// Config holds connection settings for the record store.
type Config struct {
	BaseURL   string
	AppID     string
	AppSecret string
	AppToken  string

	// Timeout bounds each individual attempt.
	Timeout time.Duration
	// MaxTries caps attempts per call, including the first.
	MaxTries int
	// PageSize is the page size used for listing.
	PageSize int
	// RetryInterval is the initial backoff interval.
	RetryInterval time.Duration
}

func (cfg Config) withDefaults() Config {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxTries <= 0 {
		cfg.MaxTries = defaultMaxTries
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = defaultRetryInterval
	}
	return cfg
}

// Client talks to the record store.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger

	tokenMu     sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewClient creates a record store client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type tokenResponse struct {
	Code              int    `json:"code"`
	Msg               string `json:"msg"`
	TenantAccessToken string `json:"tenant_access_token"`
	Expire            int64  `json:"expire"`
}

// acquireToken returns a tenant token, fetching a fresh one when the cached
// token is missing or close to expiry.
func (c *Client) acquireToken(ctx context.Context) (string, error) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry.Add(-tokenSafetyMargin)) {
		return c.token, nil
	}

	body, err := json.Marshal(map[string]string{
		"app_id":     c.cfg.AppID,
		"app_secret": c.cfg.AppSecret,
	})
	if err != nil {
		return "", backoff.Permanent(fmt.Errorf("encoding token request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/auth/v3/tenant_access_token/internal", bytes.NewReader(body))
	if err != nil {
		return "", backoff.Permanent(fmt.Errorf("building token request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return "", fmt.Errorf("token endpoint returned %d", resp.StatusCode)
	}
	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("decoding token response: %w", err)
	}
	if tok.Code != codeOK {
		return "", backoff.Permanent(fmt.Errorf("%w: token endpoint: %s", ErrRejected, tok.Msg))
	}

	c.token = tok.TenantAccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tok.Expire) * time.Second)
	c.logger.Debug("tenant token refreshed", "expires_in", tok.Expire)
	return c.token, nil
}

func (c *Client) invalidateToken() {
	c.tokenMu.Lock()
	c.token = ""
	c.tokenExpiry = time.Time{}
	c.tokenMu.Unlock()
}

// call performs one store API call with retries. Transient faults (network
// errors, timeouts, 5xx, expired tokens) are retried with backoff up to the
// attempt cap; everything else is a permanent rejection.
func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	attempt := func() (struct{}, error) {
		return struct{}{}, c.attempt(ctx, method, path, body, out)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.cfg.RetryInterval

	_, err := backoff.Retry(ctx, attempt,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(uint(c.cfg.MaxTries)))
	if err != nil {
		if errors.Is(err, ErrRejected) {
			return err
		}
		return fmt.Errorf("%w: %s %s: %w", ErrUnavailable, method, path, err)
	}
	return nil
}

func (c *Client) attempt(ctx context.Context, method, path string, body, out any) error {
	token, err := c.acquireToken(ctx)
	if err != nil {
		return err
	}

	actx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("encoding request: %w", err))
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(actx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("building request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%s %s returned %d", method, path, resp.StatusCode)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		c.invalidateToken()
		return fmt.Errorf("%s %s returned 401", method, path)
	}
	if resp.StatusCode >= 400 {
		return backoff.Permanent(fmt.Errorf("%w: %s %s returned %d", ErrRejected, method, path, resp.StatusCode))
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	if env.Code != codeOK {
		apiErr := &APIError{Code: env.Code, Msg: env.Msg}
		if apiErr.authExpired() {
			c.invalidateToken()
			return apiErr
		}
		return backoff.Permanent(fmt.Errorf("%w: %s", ErrRejected, apiErr))
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return backoff.Permanent(fmt.Errorf("decoding response data: %w", err))
		}
	}
	return nil
}

func (c *Client) recordsPath(tableID string) string {
	return fmt.Sprintf("/bitable/v1/apps/%s/tables/%s/records", c.cfg.AppToken, tableID)
}

type recordPayload struct {
	RecordID string         `json:"record_id"`
	Fields   map[string]any `json:"fields"`
}

// CreateRecord inserts a record and returns the store-assigned identifier.
func (c *Client) CreateRecord(ctx context.Context, tableID string, fields map[string]any) (string, error) {
	var data struct {
		Record recordPayload `json:"record"`
	}
	err := c.call(ctx, http.MethodPost, c.recordsPath(tableID), map[string]any{"fields": fields}, &data)
	if err != nil {
		return "", err
	}
	return data.Record.RecordID, nil
}

// GetRecord fetches a single record by identifier.
func (c *Client) GetRecord(ctx context.Context, tableID, recordID string) (Record, error) {
	var data struct {
		Record recordPayload `json:"record"`
	}
	err := c.call(ctx, http.MethodGet, c.recordsPath(tableID)+"/"+recordID, nil, &data)
	if err != nil {
		return Record{}, err
	}
	return Record{ID: data.Record.RecordID, Fields: data.Record.Fields}, nil
}

// ListRecords walks every page of a table and returns all records.
func (c *Client) ListRecords(ctx context.Context, tableID string) ([]Record, error) {
	var (
		all       []Record
		pageToken string
	)
	for {
		q := url.Values{}
		q.Set("page_size", strconv.Itoa(c.cfg.PageSize))
		if pageToken != "" {
			q.Set("page_token", pageToken)
		}

		var data struct {
			Items     []recordPayload `json:"items"`
			HasMore   bool            `json:"has_more"`
			PageToken string          `json:"page_token"`
		}
		if err := c.call(ctx, http.MethodGet, c.recordsPath(tableID)+"?"+q.Encode(), nil, &data); err != nil {
			return nil, err
		}
		for _, item := range data.Items {
			all = append(all, Record{ID: item.RecordID, Fields: item.Fields})
		}
		if !data.HasMore || data.PageToken == "" {
			break
		}
		pageToken = data.PageToken
	}
	return all, nil
}

// UpdateRecord overwrites fields on an existing record.
func (c *Client) UpdateRecord(ctx context.Context, tableID, recordID string, fields map[string]any) error {
	return c.call(ctx, http.MethodPut, c.recordsPath(tableID)+"/"+recordID, map[string]any{"fields": fields}, nil)
}

// DeleteRecord removes a record.
func (c *Client) DeleteRecord(ctx context.Context, tableID, recordID string) error {
	return c.call(ctx, http.MethodDelete, c.recordsPath(tableID)+"/"+recordID, nil, nil)
}
