package fchat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
)

// Client talks to the F-List HTTP API. Its only job here is fetching the
// short-lived API ticket used by the IDN handshake.
type Client struct {
	baseURL string
	http    *fasthttp.Client

	defaultTimeout time.Duration
	retryMax       int
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.defaultTimeout = d }
}

func WithRetry(max int) Option {
	return func(c *Client) { c.retryMax = max }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &fasthttp.Client{ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 4},
		defaultTimeout: 10 * time.Second,
		retryMax:       3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type ticketResponse struct {
	Ticket string `json:"ticket"`
	Error  string `json:"error"`
}

// Ticket fetches an API ticket for the account. Tickets expire server-side
// after roughly half an hour; callers fetch a fresh one per connect.
func (c *Client) Ticket(ctx context.Context, account, password string) (string, error) {
	url := c.baseURL + "/json/getApiTicket.php"

	attempts := c.retryMax
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		req := fasthttp.AcquireRequest()
		resp := fasthttp.AcquireResponse()

		req.Header.SetMethod(fasthttp.MethodPost)
		req.SetRequestURI(url)
		req.Header.SetContentType("application/x-www-form-urlencoded")
		args := fasthttp.AcquireArgs()
		args.Set("account", account)
		args.Set("password", password)
		args.Set("no_characters", "true")
		args.Set("no_friends", "true")
		args.Set("no_bookmarks", "true")
		req.SetBody(args.QueryString())
		fasthttp.ReleaseArgs(args)

		err := c.http.DoDeadline(req, resp, c.computeDeadline(ctx))
		if err == nil {
			status := resp.StatusCode()
			if status < 200 || status >= 300 {
				err = fmt.Errorf("ticket endpoint status=%d body=%s", status, truncate(string(resp.Body()), 256))
				if !shouldRetryStatus(status) {
					fasthttp.ReleaseRequest(req)
					fasthttp.ReleaseResponse(resp)
					return "", err
				}
			} else {
				var tr ticketResponse
				decErr := json.Unmarshal(resp.Body(), &tr)
				fasthttp.ReleaseRequest(req)
				fasthttp.ReleaseResponse(resp)
				if decErr != nil {
					return "", fmt.Errorf("decode ticket response: %w", decErr)
				}
				if strings.TrimSpace(tr.Error) != "" {
					// Bad credentials never get better on retry.
					return "", fmt.Errorf("ticket rejected: %s", tr.Error)
				}
				if tr.Ticket == "" {
					return "", errors.New("ticket response missing ticket")
				}
				return tr.Ticket, nil
			}
		}
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)

		lastErr = err
		if attempt == attempts {
			break
		}
		if sleepErr := sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
			return "", lastErr
		}
	}
	if lastErr == nil {
		lastErr = errors.New("unknown error")
	}
	return "", fmt.Errorf("fetch ticket: %w", lastErr)
}

func (c *Client) computeDeadline(ctx context.Context) time.Time {
	clientDL := time.Now().Add(c.defaultTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(clientDL) {
		return dl
	}
	return clientDL
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func backoffDuration(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	base := 100 * time.Millisecond
	return time.Duration(1<<uint(attempt-1)) * base // 100ms, 200ms ...
}

func shouldRetryStatus(code int) bool {
	switch code {
	case 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
