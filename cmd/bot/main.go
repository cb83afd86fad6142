// Package main runs the jackpot bot: it subscribes to the trade
// datastream for one token and drives the buyer lottery and the
// holder jackpot, paying winners from custodial SOL pools.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"solanajackbot/internal/config"
	"solanajackbot/internal/coordinator"
	"solanajackbot/internal/domain"
	"solanajackbot/internal/feed"
	"solanajackbot/internal/holders"
	"solanajackbot/internal/lottery"
	"solanajackbot/internal/notify"
	"solanajackbot/internal/observability"
	"solanajackbot/internal/pool"
	"solanajackbot/internal/pricing"
	"solanajackbot/internal/solana"
	"solanajackbot/internal/storage"
	chstore "solanajackbot/internal/storage/clickhouse"
	"solanajackbot/internal/storage/memory"
	"solanajackbot/internal/storage/migrations"
	pgstore "solanajackbot/internal/storage/postgres"
)

// botStores holds the optional persistence layer.
type botStores struct {
	payoutStore storage.PayoutStore
	drawStore   storage.DrawStore
}

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	rpcEndpoint := flag.String("rpc-endpoint", os.Getenv("SOLANA_RPC_ENDPOINT"), "Solana RPC HTTP endpoint")
	wsEndpoint := flag.String("ws-endpoint", os.Getenv("TRADE_WS_ENDPOINT"), "Trade datastream WebSocket endpoint")
	priceAPI := flag.String("price-api", os.Getenv("PRICE_API_URL"), "SOL/USD price API endpoint (default CoinGecko)")
	tokenMint := flag.String("token-mint", os.Getenv("TOKEN_MINT"), "Token mint under watch")
	tradeSecret := flag.String("trade-pool-secret", os.Getenv("TRADE_POOL_SECRET"), "Trade pool secret key (base58 or JSON array)")
	holderSecret := flag.String("holder-pool-secret", os.Getenv("HOLDER_POOL_SECRET"), "Holder pool secret key (base58 or JSON array)")
	minBuyUSD := flag.Float64("min-buy-usd", envFloat("MIN_BUY_USD", config.DefaultMinBuyUSD), "Minimum buy size in USD to enter the lottery")
	holderChance := flag.Int("holder-chance-percent", envInt("HOLDER_CHANCE_PERCENT", config.DefaultHolderChancePercent), "Holder jackpot win percent per qualifying buy")
	holderMinBalance := flag.Uint64("holder-min-balance", envUint("HOLDER_MIN_RAW_BALANCE", config.DefaultHolderMinRawBalance), "Minimum raw token balance for holder eligibility")
	tradeFraction := flag.Float64("trade-pool-fraction", envFloat("TRADE_POOL_FRACTION", config.DefaultTradePoolFraction), "Fraction of trade pool paid per win")
	holderFraction := flag.Float64("holder-pool-fraction", envFloat("HOLDER_POOL_FRACTION", config.DefaultHolderPoolFraction), "Fraction of holder pool paid per win")
	excluded := flag.String("excluded-addresses", os.Getenv("EXCLUDED_ADDRESSES"), "Comma-separated addresses ineligible for holder draws")
	dedupCapacity := flag.Int("dedup-capacity", envInt("DEDUP_CAPACITY", config.DefaultDedupCapacity), "Trade signature dedup cache capacity")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lshortfile)

	cfg := &config.Config{
		RPCEndpoint:         *rpcEndpoint,
		WSEndpoint:          *wsEndpoint,
		PriceAPIBase:        *priceAPI,
		TokenMint:           *tokenMint,
		TradePoolSecret:     *tradeSecret,
		HolderPoolSecret:    *holderSecret,
		MinBuyUSD:           *minBuyUSD,
		HolderChancePercent: *holderChance,
		HolderMinRawBalance: *holderMinBalance,
		TradePoolFraction:   *tradeFraction,
		HolderPoolFraction:  *holderFraction,
		ExcludedAddresses:   config.ParseExcluded(*excluded),
		DedupCapacity:       *dedupCapacity,
		PostgresDSN:         *postgresDSN,
		ClickhouseDSN:       *clickhouseDSN,
		UseMemory:           *useMemory,
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())

	// Parse custodial keys before touching the network
	tradeKeypair, err := solana.ParseKeypair(cfg.TradePoolSecret)
	if err != nil {
		logger.Fatalf("Invalid trade pool secret: %v", err)
	}
	holderKeypair, err := solana.ParseKeypair(cfg.HolderPoolSecret)
	if err != nil {
		logger.Fatalf("Invalid holder pool secret: %v", err)
	}
	logger.Printf("Trade pool: %s", tradeKeypair.Address())
	logger.Printf("Holder pool: %s", holderKeypair.Address())

	// Create stores
	stores, cleanup, err := createStores(ctx, cfg)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	// RPC client, verified against the node before starting
	rpc := solana.NewHTTPClient(cfg.RPCEndpoint)
	version, err := rpc.GetVersion(ctx)
	if err != nil {
		logger.Fatalf("RPC endpoint unreachable: %v", err)
	}
	logger.Printf("Connected to Solana node %s", version)

	// Pools
	tradePool := pool.New("trade", tradeKeypair, rpc,
		log.New(os.Stdout, "[pool:trade] ", log.LstdFlags|log.Lshortfile))
	holderPool := pool.New("holder", holderKeypair, rpc,
		log.New(os.Stdout, "[pool:holder] ", log.LstdFlags|log.Lshortfile))

	// Pricing
	var priceOpts []pricing.Option
	if cfg.PriceAPIBase != "" {
		priceOpts = append(priceOpts, pricing.WithEndpoint(cfg.PriceAPIBase))
	}
	priceService := pricing.NewService(nil, priceOpts...)

	// Trade datastream
	feedClient, err := feed.NewClient(ctx, cfg.WSEndpoint, nil,
		log.New(os.Stdout, "[feed] ", log.LstdFlags|log.Lshortfile))
	if err != nil {
		logger.Fatalf("Failed to connect trade datastream: %v", err)
	}
	defer feedClient.Close()

	events, err := feedClient.SubscribeTokenTrades(ctx, cfg.TokenMint)
	if err != nil {
		logger.Fatalf("Failed to subscribe to trades: %v", err)
	}
	logger.Printf("Subscribed to trades for %s", cfg.TokenMint)

	// Coordinator with independent random sources per pipeline
	coord, err := coordinator.New(coordinator.Options{
		TradePool:           tradePool,
		HolderPool:          holderPool,
		TradeChances:        lottery.DefaultChances(),
		TradeDraw:           lottery.NewDraw(domain.PipelineTrade, newRandSource()),
		HolderDraw:          lottery.NewDraw(domain.PipelineHolder, newRandSource()),
		Lister:              holders.NewLister(rpc),
		Selector:            holders.NewSelector(newRandSource()),
		Pricing:             priceService,
		Notifier:            notify.NewLogNotifier(log.New(os.Stdout, "[notify] ", log.LstdFlags)),
		PayoutStore:         stores.payoutStore,
		DrawStore:           stores.drawStore,
		TokenMint:           cfg.TokenMint,
		MinBuyUSD:           cfg.MinBuyUSD,
		HolderChancePercent: cfg.HolderChancePercent,
		HolderMinRawBalance: cfg.HolderMinRawBalance,
		TradePoolFraction:   cfg.TradePoolFraction,
		HolderPoolFraction:  cfg.HolderPoolFraction,
		ExcludedAddresses:   cfg.ExcludedAddresses,
		DedupCapacity:       cfg.DedupCapacity,
		Logger:              log.New(os.Stdout, "[coordinator] ", log.LstdFlags|log.Lshortfile),
	})
	if err != nil {
		logger.Fatalf("Failed to create coordinator: %v", err)
	}

	// Channel to signal completion
	done := make(chan error, 1)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	// Start HTTP server for health/metrics/status
	status := newStatusTracker(tradePool, holderPool)
	go startHTTPServer(*metricsAddr, logger, status)

	logger.Println("Jackpot bot running")
	err = coord.Run(ctx, events)
	done <- err
	cancel()

	if err != nil && err != context.Canceled {
		logger.Fatalf("Coordinator error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// newRandSource seeds an independent ChaCha8 source from crypto-grade
// entropy via the top-level generator.
func newRandSource() rand.Source {
	var seed [32]byte
	for i := 0; i < len(seed); i += 8 {
		v := rand.Uint64()
		for j := 0; j < 8; j++ {
			seed[i+j] = byte(v >> (8 * j))
		}
	}
	return rand.NewChaCha8(seed)
}

// createStores creates the persistence layer and runs migrations.
func createStores(ctx context.Context, cfg *config.Config) (*botStores, func(), error) {
	if cfg.UseMemory {
		stores := &botStores{
			payoutStore: memory.NewPayoutStore(),
			drawStore:   memory.NewDrawStore(),
		}
		return stores, func() {}, nil
	}

	// PostgreSQL
	pgPool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pgPool); err != nil {
		pgPool.Close()
		return nil, nil, fmt.Errorf("run postgres migrations: %w", err)
	}

	// ClickHouse
	chConn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
	if err != nil {
		pgPool.Close()
		return nil, nil, fmt.Errorf("run clickhouse migrations: %w", err)
	}

	stores := &botStores{
		payoutStore: pgstore.NewPayoutStore(pgPool),
		drawStore:   chstore.NewDrawStore(chConn),
	}

	cleanup := func() {
		chConn.Close()
		pgPool.Close()
	}

	return stores, cleanup, nil
}

// statusTracker exposes live pool state for the /status endpoint.
type statusTracker struct {
	tradePool  *pool.Pool
	holderPool *pool.Pool
	started    time.Time

	mu sync.Mutex
}

func newStatusTracker(trade, holder *pool.Pool) *statusTracker {
	return &statusTracker{
		tradePool:  trade,
		holderPool: holder,
		started:    time.Now(),
	}
}

// StatusResponse is the JSON response for /status endpoint.
type StatusResponse struct {
	Status            string  `json:"status"`
	Uptime            string  `json:"uptime"`
	TradePoolAddress  string  `json:"trade_pool_address"`
	TradePoolBalance  float64 `json:"trade_pool_balance_sol"`
	HolderPoolAddress string  `json:"holder_pool_address"`
	HolderPoolBalance float64 `json:"holder_pool_balance_sol"`
}

// handleStatus returns bot status as JSON. Balance reads hit the
// ledger live; failures report zero rather than an error page.
func (s *statusTracker) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	tradeBalance, _ := s.tradePool.Balance(ctx)
	holderBalance, _ := s.holderPool.Balance(ctx)

	resp := StatusResponse{
		Status:            "running",
		Uptime:            time.Since(s.started).String(),
		TradePoolAddress:  s.tradePool.Address(),
		TradePoolBalance:  tradeBalance,
		HolderPoolAddress: s.holderPool.Address(),
		HolderPoolBalance: holderBalance,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// startHTTPServer starts the HTTP server for health/metrics/status.
func startHTTPServer(addr string, logger *log.Logger, status *statusTracker) {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Prometheus metrics
	mux.Handle("/metrics", observability.Handler())

	// Status endpoint
	mux.HandleFunc("/status", status.handleStatus)

	logger.Printf("Starting HTTP server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		logger.Printf("HTTP server error: %v", err)
	}
}

// envFloat reads a float env var, falling back on absence or parse
// failure.
func envFloat(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envUint(key string, fallback uint64) uint64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return v
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
