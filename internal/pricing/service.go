// Package pricing provides a SOL/USD price lookup with a TTL cache.
package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"solanajackbot/internal/observability"
)

// Default configuration values.
const (
	DefaultEndpoint = "https://api.coingecko.com/api/v3/simple/price?ids=solana&vs_currencies=usd"
	DefaultTTL      = 1 * time.Minute
	DefaultFallback = 100.0
	DefaultTimeout  = 5 * time.Second
)

// Service caches the SOL price in USD. It is an explicit dependency,
// not a process-wide singleton: the clock is injected so TTL behavior
// is fully testable.
type Service struct {
	endpoint string
	client   *http.Client
	ttl      time.Duration
	now      func() time.Time
	logger   *log.Logger

	mu         sync.Mutex
	price      float64
	lastUpdate time.Time
}

// Option configures Service.
type Option func(*Service)

// WithEndpoint overrides the price API endpoint.
func WithEndpoint(url string) Option {
	return func(s *Service) { s.endpoint = url }
}

// WithTTL overrides the cache time-to-live.
func WithTTL(d time.Duration) Option {
	return func(s *Service) { s.ttl = d }
}

// WithClock injects a clock for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Service) { s.client = c }
}

// NewService creates a price service seeded with the fallback price.
func NewService(logger *log.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = log.New(log.Writer(), "[pricing] ", log.LstdFlags|log.Lshortfile)
	}
	s := &Service{
		endpoint: DefaultEndpoint,
		client:   &http.Client{Timeout: DefaultTimeout},
		ttl:      DefaultTTL,
		now:      time.Now,
		logger:   logger,
		price:    DefaultFallback,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetPrice returns the cached SOL price, refreshing it when the TTL
// has elapsed. A failed refresh keeps the previous price.
func (s *Service) GetPrice(ctx context.Context) float64 {
	s.mu.Lock()
	fresh := s.now().Sub(s.lastUpdate) < s.ttl
	price := s.price
	s.mu.Unlock()

	if fresh {
		return price
	}
	return s.refresh(ctx)
}

// ForceRefresh bypasses the cache and fetches the price immediately.
func (s *Service) ForceRefresh(ctx context.Context) float64 {
	return s.refresh(ctx)
}

func (s *Service) refresh(ctx context.Context) float64 {
	price, err := s.fetch(ctx)
	observability.RecordPriceRefresh(err)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.logger.Printf("price refresh failed, keeping $%.2f: %v", s.price, err)
		return s.price
	}

	s.price = price
	s.lastUpdate = s.now()
	return s.price
}

func (s *Service) fetch(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("read response: %w", err)
	}

	var parsed struct {
		Solana struct {
			USD float64 `json:"usd"`
		} `json:"solana"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return 0, fmt.Errorf("unmarshal response: %w", err)
	}
	if parsed.Solana.USD <= 0 {
		return 0, fmt.Errorf("missing solana.usd in response")
	}
	return parsed.Solana.USD, nil
}
