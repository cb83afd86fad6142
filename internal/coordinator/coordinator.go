// Package coordinator runs the per-trade lottery flow: dedup, skip
// filters, the buyer draw and the holder draw, payouts and
// notifications.
package coordinator

import (
	"context"
	"encoding/json"
	"log"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"solanajackbot/internal/domain"
	"solanajackbot/internal/feed"
	"solanajackbot/internal/holders"
	"solanajackbot/internal/lottery"
	"solanajackbot/internal/notify"
	"solanajackbot/internal/observability"
	"solanajackbot/internal/pool"
	"solanajackbot/internal/pricing"
	"solanajackbot/internal/storage"
)

// Skip reasons recorded on the trades_skipped metric.
const (
	SkipDuplicate = "duplicate"
	SkipNotBuy    = "not_buy"
	SkipBelowMin  = "below_min"
)

// Options configures the Coordinator. Stores are optional: a nil store
// disables that persistence concern without affecting the lottery.
type Options struct {
	TradePool  *pool.Pool
	HolderPool *pool.Pool

	TradeChances lottery.Chances
	TradeDraw    *lottery.Draw
	HolderDraw   *lottery.Draw

	Lister   *holders.Lister
	Selector *holders.Selector
	Pricing  *pricing.Service
	Notifier notify.Notifier

	PayoutStore storage.PayoutStore
	DrawStore   storage.DrawStore

	TokenMint           string
	MinBuyUSD           float64
	HolderChancePercent int
	HolderMinRawBalance uint64
	TradePoolFraction   float64
	HolderPoolFraction  float64
	ExcludedAddresses   []string
	DedupCapacity       int

	Logger *log.Logger
}

// Coordinator consumes trade events and drives both lottery pipelines.
// HandleTrade is safe for sequential use from Run; the pools carry
// their own locking, so concurrent callers are also safe but payouts
// still serialize per pool.
type Coordinator struct {
	opts     Options
	logger   *log.Logger
	seen     *lru.Cache[string, struct{}]
	excluded map[string]struct{}
}

// Addresses that can never receive a holder payout regardless of
// configuration. The burn addresses hold large balances on most mints.
var alwaysExcluded = []string{
	"11111111111111111111111111111111",
	"1nc1nerator11111111111111111111111111111111",
}

// New creates a Coordinator.
func New(opts Options) (*Coordinator, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.Writer(), "[coordinator] ", log.LstdFlags|log.Lshortfile)
	}

	capacity := opts.DedupCapacity
	if capacity <= 0 {
		capacity = 8192
	}
	seen, err := lru.New[string, struct{}](capacity)
	if err != nil {
		return nil, err
	}

	excluded := make(map[string]struct{})
	for _, addr := range alwaysExcluded {
		excluded[addr] = struct{}{}
	}
	excluded[opts.TokenMint] = struct{}{}
	if opts.TradePool != nil {
		excluded[opts.TradePool.Address()] = struct{}{}
	}
	if opts.HolderPool != nil {
		excluded[opts.HolderPool.Address()] = struct{}{}
	}
	for _, addr := range opts.ExcludedAddresses {
		excluded[addr] = struct{}{}
	}

	return &Coordinator{
		opts:     opts,
		logger:   logger,
		seen:     seen,
		excluded: excluded,
	}, nil
}

// Run consumes raw trade payloads until the channel closes or the
// context is cancelled. Parse rejects are counted, not fatal.
func (c *Coordinator) Run(ctx context.Context, events <-chan json.RawMessage) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case raw, ok := <-events:
			if !ok {
				return nil
			}
			trade, rej := feed.ParseTrade(raw)
			if rej != nil {
				observability.RecordParseReject(rej.Reason)
				c.logger.Printf("dropping payload: %s", rej)
				continue
			}
			c.HandleTrade(ctx, trade)
		}
	}
}

// HandleTrade runs the full flow for one parsed trade event. The two
// pipelines draw independently: a buyer win and a holder win can both
// happen on the same trade.
func (c *Coordinator) HandleTrade(ctx context.Context, trade domain.TradeEvent) {
	observability.RecordTradeReceived()

	// Unsigned events can't be told apart, so only signed trades dedup.
	if trade.Signature != "" {
		if _, dup := c.seen.Get(trade.Signature); dup {
			observability.RecordTradeSkipped(SkipDuplicate)
			c.logger.Printf("duplicate trade %s, skipping", trade.Signature)
			return
		}
		c.seen.Add(trade.Signature, struct{}{})
	}

	if !trade.IsBuy() {
		observability.RecordTradeSkipped(SkipNotBuy)
		return
	}
	if trade.USDVolume < c.opts.MinBuyUSD {
		observability.RecordTradeSkipped(SkipBelowMin)
		c.logger.Printf("buy of $%.2f below $%.2f minimum, skipping %s",
			trade.USDVolume, c.opts.MinBuyUSD, trade.Signature)
		return
	}

	c.runTradePipeline(ctx, trade)
	c.runHolderPipeline(ctx, trade)
}

// runTradePipeline draws for the buyer and pays them from the trade
// pool on a win.
func (c *Coordinator) runTradePipeline(ctx context.Context, trade domain.TradeEvent) {
	percent := c.opts.TradeChances.ChanceFor(trade.USDVolume)
	outcome := c.opts.TradeDraw.Draw(percent)
	observability.RecordDraw(outcome.Pipeline.String(), outcome.IsWinner)
	c.recordDraw(ctx, trade, outcome)

	c.logger.Printf("trade draw for %s: $%.2f -> %d%%, number %d, win=%v",
		trade.Signature, trade.USDVolume, percent, outcome.WinningNumber, outcome.IsWinner)

	var payout *domain.PayoutResult
	if outcome.IsWinner {
		payout = c.opts.TradePool.TransferFraction(
			ctx, c.opts.TradePoolFraction, trade.Buyer, domain.PipelineTrade, trade.Signature)
		c.recordPayout(ctx, payout)
	}

	c.notifyTrade(ctx, trade, outcome, payout)
}

// runHolderPipeline draws at the fixed holder chance and, on a win,
// picks a random eligible holder and pays them from the holder pool.
func (c *Coordinator) runHolderPipeline(ctx context.Context, trade domain.TradeEvent) {
	outcome := c.opts.HolderDraw.Draw(c.opts.HolderChancePercent)
	observability.RecordDraw(outcome.Pipeline.String(), outcome.IsWinner)
	c.recordDraw(ctx, trade, outcome)

	if !outcome.IsWinner {
		c.notifyHolder(ctx, trade, outcome, nil, nil)
		return
	}

	c.logger.Printf("holder draw won on trade %s, selecting winner", trade.Signature)

	list, err := c.opts.Lister.List(ctx, c.opts.TokenMint)
	if err != nil {
		observability.RecordHolderSelection("list_error")
		c.logger.Printf("holder listing failed: %v", err)
		c.notifyHolder(ctx, trade, outcome, nil, nil)
		return
	}

	winner, ok := c.opts.Selector.SelectWinner(list, c.opts.HolderMinRawBalance, c.excluded)
	if !ok {
		observability.RecordHolderSelection("no_eligible")
		c.logger.Printf("no eligible holder among %d records", len(list))
		c.notifyHolder(ctx, trade, outcome, nil, nil)
		return
	}
	observability.RecordHolderSelection("selected")

	payout := c.opts.HolderPool.TransferFraction(
		ctx, c.opts.HolderPoolFraction, winner.Owner, domain.PipelineHolder, trade.Signature)
	c.recordPayout(ctx, payout)

	c.notifyHolder(ctx, trade, outcome, &winner, payout)
}

// recordDraw persists a draw outcome when a DrawStore is configured.
func (c *Coordinator) recordDraw(ctx context.Context, trade domain.TradeEvent, outcome domain.LotteryOutcome) {
	if c.opts.DrawStore == nil {
		return
	}
	rec := &storage.DrawRecord{
		TradeSig:      trade.Signature,
		Pipeline:      outcome.Pipeline.String(),
		WinPercent:    outcome.WinPercent,
		WinningNumber: outcome.WinningNumber,
		IsWinner:      outcome.IsWinner,
		USDVolume:     trade.USDVolume,
		TimestampMs:   time.Now().UnixMilli(),
	}
	if err := c.opts.DrawStore.InsertBulk(ctx, []*storage.DrawRecord{rec}); err != nil {
		c.logger.Printf("persist draw failed: %v", err)
	}
}

// recordPayout persists a payout result when a PayoutStore is
// configured. Duplicate inserts are logged and ignored; the payout
// itself already happened.
func (c *Coordinator) recordPayout(ctx context.Context, payout *domain.PayoutResult) {
	if c.opts.PayoutStore == nil || payout == nil {
		return
	}
	if err := c.opts.PayoutStore.Insert(ctx, payout); err != nil {
		c.logger.Printf("persist payout for %s failed: %v", payout.TradeSig, err)
	}
}

// jackpotSnapshot reads a pool's live balance and derives the jackpot
// figures shown in notifications. Balance read failures degrade to a
// zeroed snapshot.
func (c *Coordinator) jackpotSnapshot(ctx context.Context, p *pool.Pool) notify.JackpotSnapshot {
	balance, err := p.Balance(ctx)
	if err != nil {
		c.logger.Printf("balance read for %s snapshot failed: %v", p.Name(), err)
		return notify.JackpotSnapshot{}
	}
	observability.SetPoolBalance(p.Name(), balance)

	price := c.opts.Pricing.GetPrice(ctx)
	valueSOL := balance / 2
	nextSOL := balance / 4
	return notify.JackpotSnapshot{
		PoolBalanceSOL: balance,
		ValueSOL:       valueSOL,
		ValueUSD:       valueSOL * price,
		NextSOL:        nextSOL,
		NextUSD:        nextSOL * price,
	}
}

func (c *Coordinator) notifyTrade(ctx context.Context, trade domain.TradeEvent, outcome domain.LotteryOutcome, payout *domain.PayoutResult) {
	if c.opts.Notifier == nil {
		return
	}
	n := notify.TradeNotification{
		Trade:   trade,
		Outcome: outcome,
		Payout:  payout,
		Jackpot: c.jackpotSnapshot(ctx, c.opts.TradePool),
	}
	if err := c.opts.Notifier.TradeOutcome(ctx, n); err != nil {
		c.logger.Printf("trade notification failed: %v", err)
	}
}

func (c *Coordinator) notifyHolder(ctx context.Context, trade domain.TradeEvent, outcome domain.LotteryOutcome, winner *domain.HolderRecord, payout *domain.PayoutResult) {
	if c.opts.Notifier == nil {
		return
	}
	n := notify.HolderNotification{
		Trade:   trade,
		Outcome: outcome,
		Winner:  winner,
		Payout:  payout,
		Jackpot: c.jackpotSnapshot(ctx, c.opts.HolderPool),
	}
	if err := c.opts.Notifier.HolderOutcome(ctx, n); err != nil {
		c.logger.Printf("holder notification failed: %v", err)
	}
}
