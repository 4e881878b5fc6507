// Package adservice implements the HTTP clients for the keyword-ideation and
// traffic-estimation services, plus the seed generators and the alternatives
// finder built on top of them.
package adservice

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"

	"github.com/adlabtools/kwopt/internal/utils"
	"github.com/adlabtools/kwopt/pkg/ratelimit"
)

const userAgent = "kwopt/1.0"

// ClientConfig carries everything needed to talk to the remote services.
type ClientConfig struct {
	BaseURL   string
	Token     string
	AccountID int64
	Proxy     string
	RetryMax  int
}

// Client wraps a retryablehttp client with authentication, throttle
// detection and the shared rate-limiter registry. Transport-level retries
// cover network flakes and 5xx; throttling responses are never retried by
// the transport, they belong to the rate limiter.
type Client struct {
	http      *retryablehttp.Client
	baseURL   string
	token     string
	accountID int64
	limiters  *ratelimit.Registry
}

func NewClient(cfg ClientConfig, limiters *ratelimit.Registry) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("ad service base URL is required")
	}

	retryClient := retryablehttp.NewClient()
	retryClient.Logger = log.New(io.Discard, "", 0)
	retryClient.RetryMax = cfg.RetryMax
	if retryClient.RetryMax == 0 {
		retryClient.RetryMax = 3
	}
	// 429 is the limiter's job, the transport must hand it straight back.
	retryClient.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if resp != nil && resp.StatusCode == http.StatusTooManyRequests {
			return false, nil
		}
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}

	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL: %v", err)
		}
		retryClient.HTTPClient.Transport = &http.Transport{
			Proxy:           http.ProxyURL(proxyURL),
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	return &Client{
		http:      retryClient,
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		token:     cfg.Token,
		accountID: cfg.AccountID,
		limiters:  limiters,
	}, nil
}

// post sends one JSON request through the named rate-limit bucket and returns
// the response body. Throttling responses surface as RateExceededError so the
// limiter can schedule the retry.
func (c *Client) post(bucket ratelimit.Bucket, path, body string) (string, error) {
	var responseBody string
	err := c.limiters.Bucket(bucket).Do(c.accountID, func() error {
		var err error
		responseBody, err = c.postOnce(path, body)
		return err
	})
	return responseBody, err
}

func (c *Client) postOnce(path, body string) (string, error) {
	req, err := retryablehttp.NewRequest("POST", c.baseURL+path, strings.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	bodyString := string(raw)

	if throttle := parseThrottle(resp, bodyString, c.accountID); throttle != nil {
		utils.Log.Debugf("Throttled on %s: %v", path, throttle)
		return "", throttle
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s returned status %d: %s", path, resp.StatusCode, snippet(bodyString))
	}
	return bodyString, nil
}

// parseThrottle recognizes the service's throttling signal: HTTP 429 or an
// error body with code RATE_EXCEEDED. Scope and retry-after come from the
// body; a missing retry-after falls back to a conservative default.
func parseThrottle(resp *http.Response, body string, accountID int64) *ratelimit.RateExceededError {
	code := gjson.Get(body, "error.code").String()
	if resp.StatusCode != http.StatusTooManyRequests && code != "RATE_EXCEEDED" {
		return nil
	}

	scope := ratelimit.Scope(gjson.Get(body, "error.scope").String())
	if scope == "" {
		scope = ratelimit.ScopeDeveloper
	}
	retryAfter := time.Duration(gjson.Get(body, "error.retryAfterSeconds").Float() * float64(time.Second))
	if retryAfter == 0 {
		retryAfter = 5 * time.Second
	}
	return &ratelimit.RateExceededError{Scope: scope, AccountID: accountID, RetryAfter: retryAfter}
}

func snippet(body string) string {
	body = strings.TrimSpace(body)
	if len(body) > 200 {
		return body[:200] + "..."
	}
	return body
}
