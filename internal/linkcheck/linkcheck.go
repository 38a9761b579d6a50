// Package linkcheck validates the liveness of external URLs referenced
// by concept records (related notes and typed references). It is a
// validation concern separate from the similarity engine: findings are
// warnings, never scoring inputs.
package linkcheck

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Status classifies one checked URL.
type Status string

const (
	StatusOK      Status = "ok"      // 2xx/3xx
	StatusBroken  Status = "broken"  // 4xx/5xx after method fallback
	StatusUnknown Status = "unknown" // network error or timeout
)

// Result is the outcome of checking a single URL.
type Result struct {
	URL    string
	Status Status
	Code   int
	Detail string
}

const (
	requestTimeout = 10 * time.Second
	// One request every half second keeps the checker polite toward the
	// mostly small personal sites concepts link to.
	requestInterval = 500 * time.Millisecond
)

// Checker performs sequential, rate-limited liveness checks.
type Checker struct {
	client  *http.Client
	limiter *rate.Limiter
}

// New creates a checker with the default timeout and request rate.
func New() *Checker {
	return &Checker{
		client:  &http.Client{Timeout: requestTimeout},
		limiter: rate.NewLimiter(rate.Every(requestInterval), 1),
	}
}

// Check probes one URL. HEAD is tried first; servers answering 405 are
// retried once with GET before being classified. A timeout or transport
// error classifies as unknown rather than blocking or failing the run.
func (c *Checker) Check(ctx context.Context, url string) Result {
	if err := c.limiter.Wait(ctx); err != nil {
		return Result{URL: url, Status: StatusUnknown, Detail: err.Error()}
	}

	code, err := c.probe(ctx, http.MethodHead, url)
	if err == nil && code == http.StatusMethodNotAllowed {
		code, err = c.probe(ctx, http.MethodGet, url)
	}
	if err != nil {
		return Result{URL: url, Status: StatusUnknown, Detail: err.Error()}
	}

	result := Result{URL: url, Code: code}
	switch {
	case code >= 200 && code < 400:
		result.Status = StatusOK
	default:
		result.Status = StatusBroken
		result.Detail = fmt.Sprintf("HTTP %d", code)
	}
	return result
}

// CheckAll probes every URL in order and returns per-URL results.
func (c *Checker) CheckAll(ctx context.Context, urls []string) []Result {
	results := make([]Result, 0, len(urls))
	for _, url := range urls {
		results = append(results, c.Check(ctx, url))
	}
	return results
}

func (c *Checker) probe(ctx context.Context, method, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}
