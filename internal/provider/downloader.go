package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net"
	"net/http"
	"time"

	"github.com/kawainime/TelegramGemini/internal/domain"
)

const (
	maxRetries       = 3
	maxDownloadBytes = 20 << 20 // Telegram bots cannot fetch files above 20 MB
)

// retryableError indicates a transient failure that can be retried.
type retryableError struct {
	statusCode int
	body       string
}

func (e *retryableError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.statusCode, e.body)
}

// SharedHTTPClient returns an HTTP client with connection pooling.
func SharedHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	transport := &http.Transport{
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// Downloader fetches attachment bytes, retrying transient failures.
type Downloader struct {
	client  *http.Client
	logger  *slog.Logger
	backoff func(attempt int) time.Duration
}

func NewDownloader(client *http.Client, logger *slog.Logger) *Downloader {
	if client == nil {
		client = SharedHTTPClient(0)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Downloader{client: client, logger: logger, backoff: jitteredBackoff}
}

// Download returns the body of url along with its Content-Type. Telegram file
// URLs carry the bot token, so errors never include the raw URL.
func (d *Downloader) Download(ctx context.Context, url string) ([]byte, string, error) {
	resp, err := d.doWithRetry(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	})
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, "", fmt.Errorf("download: HTTP %d: %s", resp.StatusCode, body)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("download: read body: %w", err)
	}
	if len(data) > maxDownloadBytes {
		return nil, "", fmt.Errorf("download: file exceeds %d bytes", maxDownloadBytes)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

func jitteredBackoff(attempt int) time.Duration {
	base := time.Duration(attempt*attempt) * time.Second
	return base + time.Duration(rand.Int64N(int64(base/2+1)))
}

// doWithRetry executes a request with backoff for network errors, 5xx and 429.
func (d *Downloader) doWithRetry(ctx context.Context, buildReq func() (*http.Request, error)) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := d.backoff(attempt)
			d.logger.Warn("retrying download", "attempt", attempt+1, "backoff", backoff)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		req, err := buildReq()
		if err != nil {
			return nil, fmt.Errorf("build request: %w", domain.RedactError(err))
		}

		resp, err := d.client.Do(req)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, domain.RedactError(err)
			}
			lastErr = domain.RedactError(err)
			d.logger.Warn("download failed", "err", lastErr)
			continue
		}

		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			resp.Body.Close()
			lastErr = &retryableError{statusCode: resp.StatusCode, body: string(body)}
			d.logger.Warn("download server error", "status", resp.StatusCode)
			continue
		}

		return resp, nil
	}

	return nil, fmt.Errorf("download failed after %d retries: %w", maxRetries, lastErr)
}
