// Package notify defines the structured outcome bundles handed to the
// notification channel. Rendering and delivery (templates, keyboards,
// chat formatting) belong to the external channel, not to this core.
package notify

import (
	"context"

	"solanajackbot/internal/domain"
)

// JackpotSnapshot is the pool state rendered alongside an outcome.
// Current jackpot is half the pool balance, next jackpot a quarter.
type JackpotSnapshot struct {
	PoolBalanceSOL float64
	ValueSOL       float64
	ValueUSD       float64
	NextSOL        float64
	NextUSD        float64
}

// TradeNotification bundles everything the channel needs to announce
// the buyer-lottery outcome of one trade event.
type TradeNotification struct {
	Trade   domain.TradeEvent
	Outcome domain.LotteryOutcome
	Payout  *domain.PayoutResult // nil when the draw lost
	Jackpot JackpotSnapshot
}

// HolderNotification bundles the holder-jackpot outcome of one trade
// event. Winner is nil when no eligible holder was found.
type HolderNotification struct {
	Trade   domain.TradeEvent
	Outcome domain.LotteryOutcome
	Winner  *domain.HolderRecord
	Payout  *domain.PayoutResult // nil when the draw lost or no holder was eligible
	Jackpot JackpotSnapshot
}

// Notifier is the outbound notification channel. Implementations must
// not block trade processing indefinitely and must tolerate being
// called concurrently.
type Notifier interface {
	TradeOutcome(ctx context.Context, n TradeNotification) error
	HolderOutcome(ctx context.Context, n HolderNotification) error
}
