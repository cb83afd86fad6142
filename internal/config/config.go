// Package config holds the runtime configuration for the jackpot bot.
package config

import (
	"fmt"
	"strings"
)

// Defaults for optional settings.
const (
	DefaultMinBuyUSD           = 100.0
	DefaultHolderChancePercent = 1
	DefaultTradePoolFraction   = 0.5
	DefaultHolderPoolFraction  = 0.25
	DefaultDedupCapacity       = 8192
	DefaultHolderMinRawBalance = 1
)

// Config is the full runtime configuration. Fields map 1:1 to flags in
// cmd/bot with environment variables as defaults.
type Config struct {
	// Endpoints
	RPCEndpoint  string
	WSEndpoint   string
	PriceAPIBase string

	// Token under watch
	TokenMint string

	// Pool custody. Secrets are base58 or JSON-array 64-byte keys.
	TradePoolSecret  string
	HolderPoolSecret string

	// Lottery tuning
	MinBuyUSD           float64
	HolderChancePercent int
	HolderMinRawBalance uint64
	TradePoolFraction   float64
	HolderPoolFraction  float64

	// Addresses never eligible to win holder draws, comma-separated.
	ExcludedAddresses []string

	// Dedup cache capacity (trade signatures remembered).
	DedupCapacity int

	// Storage
	PostgresDSN   string
	ClickhouseDSN string
	UseMemory     bool
}

// Validate checks required fields and value ranges. It returns the
// first problem found.
func (c *Config) Validate() error {
	if c.RPCEndpoint == "" {
		return fmt.Errorf("rpc endpoint is required")
	}
	if c.WSEndpoint == "" {
		return fmt.Errorf("ws endpoint is required")
	}
	if c.TokenMint == "" {
		return fmt.Errorf("token mint is required")
	}
	if c.TradePoolSecret == "" {
		return fmt.Errorf("trade pool secret is required")
	}
	if c.HolderPoolSecret == "" {
		return fmt.Errorf("holder pool secret is required")
	}
	if c.MinBuyUSD < 0 {
		return fmt.Errorf("min buy usd must be non-negative, got %v", c.MinBuyUSD)
	}
	if c.HolderChancePercent < 0 || c.HolderChancePercent > 100 {
		return fmt.Errorf("holder chance percent must be in [0,100], got %d", c.HolderChancePercent)
	}
	if c.TradePoolFraction <= 0 || c.TradePoolFraction > 1 {
		return fmt.Errorf("trade pool fraction must be in (0,1], got %v", c.TradePoolFraction)
	}
	if c.HolderPoolFraction <= 0 || c.HolderPoolFraction > 1 {
		return fmt.Errorf("holder pool fraction must be in (0,1], got %v", c.HolderPoolFraction)
	}
	if c.DedupCapacity <= 0 {
		return fmt.Errorf("dedup capacity must be positive, got %d", c.DedupCapacity)
	}
	if !c.UseMemory && (c.PostgresDSN == "" || c.ClickhouseDSN == "") {
		return fmt.Errorf("postgres and clickhouse DSNs are required unless use-memory is set")
	}
	return nil
}

// ParseExcluded splits a comma-separated address list, dropping blanks.
func ParseExcluded(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		addr := strings.TrimSpace(part)
		if addr != "" {
			out = append(out, addr)
		}
	}
	return out
}
