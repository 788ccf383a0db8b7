// Package api is the HTTP client for the posts REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/debemdeboas/notedesk/internal/config"
	"github.com/debemdeboas/notedesk/internal/model"
	"github.com/debemdeboas/notedesk/internal/util/compression"
)

var apiLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	apiLogger = l
}

const (
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "notedesk"

	maxResponseSize = 32 << 20
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		cl.httpClient.Timeout = d
	}
}

func WithUserAgent(ua string) Option {
	return func(cl *Client) {
		if ua != "" {
			cl.userAgent = ua
		}
	}
}

func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid API base URL %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL:    u.String(),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		userAgent:  DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type listResponse struct {
	Posts []model.Post `json:"posts"`
}

type postResponse struct {
	Post model.Post `json:"post"`
}

type validationResponse struct {
	Errors []string `json:"errors"`
}

// ListPosts fetches the full collection in server order.
func (c *Client) ListPosts(ctx context.Context, includeDeleted bool) ([]model.Post, error) {
	u, err := c.endpoint(config.APIPostsPath)
	if err != nil {
		return nil, fmt.Errorf("invalid posts URL: %w", err)
	}
	q := url.Values{}
	q.Set(config.QueryIncludeDeleted, strconv.FormatBool(includeDeleted))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	status, body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, &StatusError{StatusCode: status}
	}

	var resp listResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode posts: %w", err)
	}
	if resp.Posts == nil {
		resp.Posts = []model.Post{}
	}
	return resp.Posts, nil
}

// UpdatePost sends a partial update and returns the server's copy of the post.
// A 422 response yields a *ValidationError, any other non-2xx a *StatusError.
func (c *Client) UpdatePost(ctx context.Context, id model.PostID, patch model.PostPatch) (model.Post, error) {
	payload, err := json.Marshal(patch)
	if err != nil {
		return model.Post{}, fmt.Errorf("failed to encode patch: %w", err)
	}

	u, err := c.endpoint(config.APIPostPath + url.PathEscape(string(id)))
	if err != nil {
		return model.Post{}, fmt.Errorf("invalid post URL: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, u.String(), bytes.NewReader(payload))
	if err != nil {
		return model.Post{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(config.HCType, config.CTypeJSON)

	status, body, err := c.do(req)
	if err != nil {
		return model.Post{}, err
	}

	if status == http.StatusUnprocessableEntity {
		var resp validationResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return model.Post{}, fmt.Errorf("failed to decode validation errors: %w", err)
		}
		return model.Post{}, &ValidationError{Messages: resp.Errors}
	}
	if status < 200 || status > 299 {
		return model.Post{}, &StatusError{StatusCode: status}
	}

	var resp postResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return model.Post{}, fmt.Errorf("failed to decode post: %w", err)
	}
	return resp.Post, nil
}

// endpoint joins an already escaped path onto the base URL.
func (c *Client) endpoint(escapedPath string) (*url.URL, error) {
	return url.Parse(c.baseURL + escapedPath)
}

// do sends req and returns the status and the decoded body.
func (c *Client) do(req *http.Request) (int, []byte, error) {
	requestID := uuid.NewString()
	req.Header.Set(config.HAccept, config.CTypeJSON)
	req.Header.Set(config.HAcceptEncoding, compression.AcceptEncoding)
	req.Header.Set(config.HUserAgent, c.userAgent)
	req.Header.Set(config.HRequestID, requestID)

	start := time.Now()
	res, err := c.httpClient.Do(req)
	if err != nil {
		apiLogger.Error().Err(err).Str("request_id", requestID).Str("method", req.Method).Str("url", req.URL.String()).Msg("Request failed")
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxResponseSize))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}

	apiLogger.Debug().
		Str("request_id", requestID).
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Int("status", res.StatusCode).
		Str("encoding", res.Header.Get(config.HContentEncoding)).
		Dur("elapsed", time.Since(start)).
		Msg("Request completed")

	decoder, err := compression.ForEncoding(res.Header.Get(config.HContentEncoding))
	if err != nil {
		return 0, nil, err
	}
	if decoder == nil || len(raw) == 0 {
		return res.StatusCode, raw, nil
	}

	body, err := decoder.Decompress(raw)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to decompress response: %w", err)
	}
	return res.StatusCode, body, nil
}
