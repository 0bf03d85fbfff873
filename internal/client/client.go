package client

import (
	"context"
	"encoding/json"
	"fmt"
	"lexi-leaderboard/internal/domain"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/valyala/fasthttp"
)

// Client talks to the leaderboard API. It remembers the last Retry-After
// the server advertised so callers can back off.
type Client struct {
	baseURL string
	origin  string
	client  *fasthttp.Client

	retryMu    sync.RWMutex
	retryAfter time.Duration
}

type Options struct {
	BaseURL string
	// Origin is sent on every request when the server enforces an allow-list.
	Origin  string
	Timeout time.Duration
}

func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		origin:  opts.Origin,
		client: &fasthttp.Client{
			MaxConnsPerHost:     16,
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status     int
	Code       domain.ErrorCode
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("API error: %d", e.Status)
	}
	return fmt.Sprintf("API error: %d %s", e.Status, e.Code)
}

type TopEntry struct {
	Name      string `json:"name"`
	Score     int    `json:"score"`
	Timestamp *int64 `json:"timestamp"`
	Rank      int    `json:"rank"`
}

type TopResponse struct {
	Results []TopEntry `json:"results"`
}

type Submission struct {
	Game  string `json:"game"`
	Mode  string `json:"mode"`
	Level string `json:"level"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

type SubmitResponse struct {
	OK    bool `json:"ok"`
	Rank  *int `json:"rank"`
	Entry struct {
		Name      string `json:"name"`
		Score     int    `json:"score"`
		Timestamp int64  `json:"timestamp"`
	} `json:"entry"`
}

func (c *Client) RetryAfter() time.Duration {
	c.retryMu.RLock()
	defer c.retryMu.RUnlock()
	return c.retryAfter
}

func (c *Client) updateRetryAfter(resp *fasthttp.Response) {
	raw := string(resp.Header.Peek("Retry-After"))
	if raw == "" {
		return
	}
	secs, err := strconv.Atoi(raw)
	if err != nil {
		return
	}
	c.retryMu.Lock()
	defer c.retryMu.Unlock()
	c.retryAfter = time.Duration(secs) * time.Second
}

func (c *Client) Top(ctx context.Context, game, mode, level string, limit int) (*TopResponse, error) {
	q := url.Values{}
	q.Set("game", game)
	q.Set("mode", mode)
	q.Set("level", level)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return doRequest[TopResponse](ctx, c, fasthttp.MethodGet, c.baseURL+"/top?"+q.Encode(), nil)
}

func (c *Client) Submit(ctx context.Context, sub Submission) (*SubmitResponse, error) {
	body, err := json.Marshal(sub)
	if err != nil {
		return nil, fmt.Errorf("failed to encode submission: %w", err)
	}
	return doRequest[SubmitResponse](ctx, c, fasthttp.MethodPost, c.baseURL+"/score", body)
}

func doRequest[T any](ctx context.Context, client *Client, method, uri string, body []byte) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(uri)
	req.Header.SetMethod(method)
	if client.origin != "" {
		req.Header.Set("Origin", client.origin)
	}
	if body != nil {
		req.Header.SetContentType("application/json")
		req.SetBody(body)
	}

	deadline, ok := ctx.Deadline()
	if ok {
		if err := client.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, err
		}
	} else {
		if err := client.client.Do(req, resp); err != nil {
			return nil, err
		}
	}

	client.updateRetryAfter(resp)

	if resp.StatusCode() != fasthttp.StatusOK {
		apiErr := &APIError{Status: resp.StatusCode(), RetryAfter: client.RetryAfter()}
		var errBody struct {
			Error domain.ErrorCode `json:"error"`
		}
		if json.Unmarshal(resp.Body(), &errBody) == nil {
			apiErr.Code = errBody.Error
		}
		if resp.StatusCode() != fasthttp.StatusTooManyRequests {
			apiErr.RetryAfter = 0
		}
		return nil, apiErr
	}

	var result T
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}
