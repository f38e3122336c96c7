package codeforces_service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/anvaygupta1940/Student-Progress-Management/internal/metrics"
	"github.com/anvaygupta1940/Student-Progress-Management/internal/spm_errors"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

const breakerName = "codeforces-api"

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

func NewClient(cfg Config) (*Client, error) {
	parsedUrl, err := url.Parse(cfg.BaseURL)
	if err != nil || parsedUrl.Scheme == "" || parsedUrl.Host == "" {
		return nil, fmt.Errorf(
			"%w, cannot parse codeforces base url %q",
			spm_errors.ErrInvalidRequest,
			cfg.BaseURL,
		)
	}

	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	limit := rate.Inf
	if cfg.MinRequestInterval > 0 {
		limit = rate.Every(cfg.MinRequestInterval)
	}

	c := &Client{
		baseURL:        parsedUrl,
		maxAttempts:    cfg.MaxAttempts,
		retryBaseDelay: cfg.RetryBaseDelay,
		requestTimeout: cfg.RequestTimeout,
		httpClient:     http.DefaultClient,
		limiter:        rate.NewLimiter(limit, 1),
		logger: logrus.WithFields(
			logrus.Fields{
				"from": "codeforces_client",
			},
		),
	}
	c.cb = gobreaker.NewCircuitBreaker[[]byte](c.breakerSettings(cfg))

	return c, nil
}

func (c *Client) breakerSettings(cfg Config) gobreaker.Settings {
	threshold := uint32(max(cfg.BreakerFailures, 0))
	return gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if threshold == 0 {
				return false
			}
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker changed state")
		},
		// a cancelled caller says nothing about codeforces health
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	}
}

// Fetch issues a GET to rawUrl and returns the response body. Transport
// failures, timeouts, 429 and 5xx responses are retried up to maxAttempts
// with a linear backoff of retryBaseDelay * attempt. Other responses are
// returned as is, the caller interprets the payload.
func (c *Client) Fetch(ctx context.Context, rawUrl string) ([]byte, error) {
	endpoint := path.Base(rawUrl)
	if u, err := url.Parse(rawUrl); err == nil {
		endpoint = path.Base(u.Path)
	}

	body, err := c.cb.Execute(func() ([]byte, error) {
		return c.fetchWithRetry(ctx, rawUrl, endpoint)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.RemoteRequests.WithLabelValues(endpoint, "rejected").Inc()
			err = fmt.Errorf(
				"%w, %w, request to %s rejected: %w",
				spm_errors.ErrCircuitOpen,
				spm_errors.ErrTransport,
				endpoint,
				err,
			)
			c.logger.Warn(err)
			return nil, err
		}
		metrics.RemoteRequests.WithLabelValues(endpoint, "failure").Inc()
		return nil, err
	}

	metrics.RemoteRequests.WithLabelValues(endpoint, "success").Inc()
	return body, nil
}

func (c *Client) fetchWithRetry(ctx context.Context, rawUrl string, endpoint string) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		body, err := c.get(ctx, rawUrl)
		if err == nil {
			return body, nil
		}
		lastErr = err

		attemptLogger := c.logger.WithFields(logrus.Fields{
			"endpoint": endpoint,
			"attempt":  attempt,
		})
		attemptLogger.Warnf("request failed: %v", err)

		if attempt == c.maxAttempts {
			break
		}
		metrics.RemoteRequests.WithLabelValues(endpoint, "retry").Inc()

		delay := c.retryBaseDelay * time.Duration(attempt)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, spm_errors.WrapTransportError(ctx.Err())
		}
	}

	err := fmt.Errorf(
		"%w, %s failed after %d attempts, last error: %w",
		spm_errors.ErrTransport,
		endpoint,
		c.maxAttempts,
		lastErr,
	)
	c.logger.Error(err)
	return nil, err
}

// single attempt, bounded by requestTimeout
func (c *Client) get(ctx context.Context, rawUrl string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	reqCtx := ctx
	if c.requestTimeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, c.requestTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawUrl, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w, failed to create http request: %w", spm_errors.ErrInternal, err)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		// timeout from the context or a network issue
		return nil, spm_errors.WrapTransportError(err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, spm_errors.WrapTransportError(err)
	}

	if res.StatusCode == http.StatusTooManyRequests || res.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf(
			"%w, codeforces responded with status %d",
			spm_errors.ErrTransport,
			res.StatusCode,
		)
	}

	return body, nil
}
