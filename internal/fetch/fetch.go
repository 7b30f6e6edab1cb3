// Package fetch implements the Fetcher and Hasher components (spec.md
// §4.A, §4.B): a bounded-concurrency HTTP downloader with a single bounded
// retry, progress events, and SHA-1 verification.
package fetch

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/urixen-org/mclaunch/internal/events"
)

// RetryPolicy composes with the Client instead of a bare bool flag (Design
// Notes: "a first-class Retry policy ... composed with the Fetcher").
// MaxAttempts counts the initial attempt, so MaxAttempts=2 matches spec.md's
// "retry depth is bounded to one".
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

// DefaultRetryPolicy is one retry, no backoff — the contract spec.md §4.A
// describes.
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 2}

// Client is the Fetcher: a global semaphore of maxSockets permits gates
// every outbound request, matching spec.md §5's single shared pool.
type Client struct {
	http   *http.Client
	sem    chan struct{}
	sink   events.Sink
	policy RetryPolicy
}

// New creates a Client with the given global concurrency cap (spec.md
// default 2) and event sink. A nil sink is replaced with events.Discard.
func New(maxSockets int, sink events.Sink) *Client {
	if maxSockets <= 0 {
		maxSockets = 2
	}
	if sink == nil {
		sink = events.Discard{}
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 0 // domain-level retry is handled explicitly below
	retryClient.Logger = nil
	retryClient.HTTPClient.Timeout = 5 * time.Minute
	retryClient.HTTPClient.Transport = &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Client{
		http:   retryClient.StandardClient(),
		sem:    make(chan struct{}, maxSockets),
		sink:   sink,
		policy: DefaultRetryPolicy,
	}
}

// WithRetryPolicy overrides the default single-retry policy.
func (c *Client) WithRetryPolicy(p RetryPolicy) *Client {
	c.policy = p
	return c
}

// Result is the outcome of one Fetch call.
type Result struct {
	OK              bool
	SkippedNotFound bool
	Err             error
}

// Fetch downloads url into destDir/filename, creating destDir recursively.
// With retry false one attempt is made; with retry true the policy's
// MaxAttempts are made (at least two, so at least one retry after a
// transport or partial-write failure). eventTag labels DownloadStatus/Download events
// with the caller's phase ("classes", "natives", "assets", ...).
func (c *Client) Fetch(ctx context.Context, url, destDir, filename string, retry bool, eventTag string) Result {
	c.sem <- struct{}{}
	defer func() { <-c.sem }()

	attempts := 1
	if retry {
		attempts = c.policy.MaxAttempts
		if attempts < 2 {
			attempts = 2
		}
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 && c.policy.Backoff > 0 {
			select {
			case <-ctx.Done():
				return Result{Err: ctx.Err()}
			case <-time.After(c.policy.Backoff):
			}
		}

		res := c.fetchOnce(ctx, url, destDir, filename, eventTag)
		if res.OK || res.SkippedNotFound {
			return res
		}
		lastErr = res.Err
	}

	return Result{Err: lastErr}
}

func (c *Client) fetchOnce(ctx context.Context, url, destDir, filename, eventTag string) Result {
	name := filepath.Join(destDir, filename)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Result{Err: fmt.Errorf("building request for %s: %w", url, err)}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{Err: fmt.Errorf("fetching %s: %w", url, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Result{SkippedNotFound: true}
	}
	if resp.StatusCode != http.StatusOK {
		return Result{Err: fmt.Errorf("fetching %s: unexpected status %s", url, resp.Status)}
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return Result{Err: fmt.Errorf("creating %s: %w", destDir, err)}
	}

	total := resp.ContentLength

	out, err := os.Create(name)
	if err != nil {
		return Result{Err: fmt.Errorf("creating %s: %w", name, err)}
	}

	var current int64
	buf := make([]byte, 32*1024)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, writeErr := out.Write(buf[:n]); writeErr != nil {
				out.Close()
				os.Remove(name)
				return Result{Err: fmt.Errorf("writing %s: %w", name, writeErr)}
			}
			current += int64(n)
			c.sink.DownloadStatus(events.DownloadStatus{
				Name: filename, Type: eventTag, Current: current, Total: total,
			})
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			out.Close()
			os.Remove(name)
			return Result{Err: fmt.Errorf("reading body for %s: %w", url, readErr)}
		}
	}

	if err := out.Close(); err != nil {
		os.Remove(name)
		return Result{Err: fmt.Errorf("closing %s: %w", name, err)}
	}

	c.sink.Download(filename)
	return Result{OK: true}
}

// SHA1 computes the hex SHA-1 digest of a file.
func SHA1(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha1.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// MatchesSHA1 reports whether the file at path has the expected digest.
// A missing file or read error is treated as a mismatch, not an error,
// matching spec.md §4.B ("returns mismatch as boolean false rather than
// raising"). An empty expected digest matches any file that exists.
func MatchesSHA1(path, expected string) bool {
	if expected == "" {
		_, err := os.Stat(path)
		return err == nil
	}
	got, err := SHA1(path)
	if err != nil {
		return false
	}
	return got == expected
}

// FormatBytes renders a byte count for human display, as the teacher's
// download.FormatSpeed does via go-humanize.
func FormatBytes(n int64) string {
	return humanize.Bytes(uint64(n))
}
