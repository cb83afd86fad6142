package pricing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestGetPrice_CachesWithinTTL(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"solana":{"usd":150.25}}`))
	}))
	defer server.Close()

	now := time.Now()
	clock := func() time.Time { return now }

	s := NewService(nil,
		WithEndpoint(server.URL),
		WithTTL(time.Minute),
		WithClock(clock),
	)

	// First call refreshes (cache starts stale)
	if price := s.GetPrice(context.Background()); price != 150.25 {
		t.Errorf("price = %v, want 150.25", price)
	}
	// Within TTL: served from cache
	for i := 0; i < 5; i++ {
		s.GetPrice(context.Background())
	}
	if calls.Load() != 1 {
		t.Errorf("API called %d times, want 1", calls.Load())
	}

	// Advance past TTL: refresh again
	now = now.Add(2 * time.Minute)
	s.GetPrice(context.Background())
	if calls.Load() != 2 {
		t.Errorf("API called %d times after TTL, want 2", calls.Load())
	}
}

func TestGetPrice_KeepsOldPriceOnFailure(t *testing.T) {
	var fail atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"solana":{"usd":200}}`))
	}))
	defer server.Close()

	now := time.Now()
	s := NewService(nil,
		WithEndpoint(server.URL),
		WithTTL(time.Minute),
		WithClock(func() time.Time { return now }),
	)

	if price := s.GetPrice(context.Background()); price != 200 {
		t.Fatalf("price = %v, want 200", price)
	}

	fail.Store(true)
	now = now.Add(2 * time.Minute)

	// Refresh fails: last known price survives
	if price := s.GetPrice(context.Background()); price != 200 {
		t.Errorf("price after failed refresh = %v, want 200", price)
	}
}

func TestGetPrice_FallbackBeforeFirstFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	s := NewService(nil, WithEndpoint(server.URL))

	// Endpoint down from the start: the seeded fallback is returned
	if price := s.GetPrice(context.Background()); price != DefaultFallback {
		t.Errorf("price = %v, want fallback %v", price, DefaultFallback)
	}
}

func TestGetPrice_RejectsBadPayloads(t *testing.T) {
	payloads := []string{
		`not json`,
		`{}`,
		`{"solana":{"usd":0}}`,
		`{"solana":{"usd":-3}}`,
	}

	for _, payload := range payloads {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(payload))
		}))

		s := NewService(nil, WithEndpoint(server.URL))
		if price := s.ForceRefresh(context.Background()); price != DefaultFallback {
			t.Errorf("payload %q: price = %v, want fallback", payload, price)
		}
		server.Close()
	}
}
