package snapshot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/alejandrodnm/agentdash/internal/domain"
)

const (
	defaultRequestsPerSec = 2
	defaultTimeout        = 10 * time.Second

	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond
)

// HTTPSource descarga el snapshot de un endpoint HTTP con rate limiting y retries.
type HTTPSource struct {
	http      *http.Client
	url       string
	limiter   *rate.Limiter
	retryWait time.Duration
}

// HTTPOptions configura una HTTPSource. Los ceros usan los valores por defecto.
type HTTPOptions struct {
	RequestsPerSecond float64
	Timeout           time.Duration
	RetryWait         time.Duration // base del backoff exponencial
}

// NewHTTPSource crea una HTTPSource contra url.
func NewHTTPSource(url string, opts HTTPOptions) *HTTPSource {
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = defaultRequestsPerSec
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.RetryWait <= 0 {
		opts.RetryWait = baseRetryWait
	}
	return &HTTPSource{
		http:      &http.Client{Timeout: opts.Timeout},
		url:       url,
		limiter:   rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
		retryWait: opts.RetryWait,
	}
}

// Load implementa ports.SnapshotSource.
func (s *HTTPSource) Load(ctx context.Context) (domain.Snapshot, error) {
	var snap domain.Snapshot
	err := s.doWithRetry(ctx, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Cache-Control", "no-store")
		return s.http.Do(req)
	}, func(body io.Reader) error {
		var err error
		snap, err = Decode(body)
		return err
	})
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("snapshot.HTTPSource.Load: %w", err)
	}
	return snap, nil
}

// doWithRetry ejecuta la request con backoff exponencial. 429 y 5xx se reintentan,
// el resto de 4xx falla directamente.
func (s *HTTPSource) doWithRetry(ctx context.Context, fn func() (*http.Response, error), decode func(io.Reader) error) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		resp, err := fn()
		if err != nil {
			if attempt == maxRetries || ctx.Err() != nil {
				return fmt.Errorf("request failed after %d retries: %w", attempt, err)
			}
			s.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt == maxRetries {
				return fmt.Errorf("server error %d after %d retries", resp.StatusCode, maxRetries)
			}
			slog.Warn("snapshot endpoint unavailable, retrying", "status", resp.StatusCode, "attempt", attempt+1)
			s.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			resp.Body.Close()
			return fmt.Errorf("client error %d: %s", resp.StatusCode, string(body))
		}

		defer resp.Body.Close()
		return decode(resp.Body)
	}
	return fmt.Errorf("exhausted %d retries", maxRetries)
}

// sleep espera con backoff exponencial, respetando el contexto.
func (s *HTTPSource) sleep(ctx context.Context, attempt int) {
	wait := time.Duration(math.Pow(2, float64(attempt))) * s.retryWait
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}
