package config

import (
	"reflect"
	"testing"
)

func validConfig() *Config {
	return &Config{
		RPCEndpoint:         "https://rpc.example.com",
		WSEndpoint:          "wss://feed.example.com",
		TokenMint:           "Mint111",
		TradePoolSecret:     "secret1",
		HolderPoolSecret:    "secret2",
		MinBuyUSD:           DefaultMinBuyUSD,
		HolderChancePercent: DefaultHolderChancePercent,
		TradePoolFraction:   DefaultTradePoolFraction,
		HolderPoolFraction:  DefaultHolderPoolFraction,
		DedupCapacity:       DefaultDedupCapacity,
		UseMemory:           true,
	}
}

func TestValidate_OK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}

func TestValidate_RequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing rpc", func(c *Config) { c.RPCEndpoint = "" }},
		{"missing ws", func(c *Config) { c.WSEndpoint = "" }},
		{"missing mint", func(c *Config) { c.TokenMint = "" }},
		{"missing trade secret", func(c *Config) { c.TradePoolSecret = "" }},
		{"missing holder secret", func(c *Config) { c.HolderPoolSecret = "" }},
		{"negative min buy", func(c *Config) { c.MinBuyUSD = -1 }},
		{"chance over 100", func(c *Config) { c.HolderChancePercent = 101 }},
		{"zero trade fraction", func(c *Config) { c.TradePoolFraction = 0 }},
		{"fraction over 1", func(c *Config) { c.HolderPoolFraction = 1.5 }},
		{"zero dedup capacity", func(c *Config) { c.DedupCapacity = 0 }},
		{"no storage", func(c *Config) { c.UseMemory = false }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("invalid config accepted")
			}
		})
	}
}

func TestParseExcluded(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b ,, c ", []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		if got := ParseExcluded(tt.raw); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseExcluded(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}
