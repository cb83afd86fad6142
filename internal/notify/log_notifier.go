package notify

import (
	"context"
	"log"
)

// LogNotifier writes outcome bundles to a logger. Used standalone in
// development and as a fallback when no channel is configured.
type LogNotifier struct {
	logger *log.Logger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(logger *log.Logger) *LogNotifier {
	if logger == nil {
		logger = log.New(log.Writer(), "[notify] ", log.LstdFlags)
	}
	return &LogNotifier{logger: logger}
}

// Compile-time interface check.
var _ Notifier = (*LogNotifier)(nil)

// TradeOutcome logs a buyer-lottery outcome.
func (n *LogNotifier) TradeOutcome(_ context.Context, b TradeNotification) error {
	if b.Outcome.IsWinner {
		tx := ""
		if b.Payout != nil {
			tx = b.Payout.TxSignature
		}
		n.logger.Printf("trade WIN buyer=%s usd=%.2f chance=%d%% winning=%d pot=%v tx=%s",
			b.Trade.Buyer, b.Trade.USDVolume, b.Outcome.WinPercent,
			b.Outcome.WinningNumber, b.Outcome.SampleSet, tx)
		return nil
	}
	n.logger.Printf("trade lose buyer=%s usd=%.2f chance=%d%% winning=%d pot=%v",
		b.Trade.Buyer, b.Trade.USDVolume, b.Outcome.WinPercent,
		b.Outcome.WinningNumber, b.Outcome.SampleSet)
	return nil
}

// HolderOutcome logs a holder-jackpot outcome.
func (n *LogNotifier) HolderOutcome(_ context.Context, b HolderNotification) error {
	switch {
	case !b.Outcome.IsWinner:
		n.logger.Printf("holder draw lose trade=%s chance=%d%% winning=%d",
			b.Trade.Signature, b.Outcome.WinPercent, b.Outcome.WinningNumber)
	case b.Winner == nil:
		n.logger.Printf("holder draw won but no eligible holder found, payout skipped")
	default:
		tx := ""
		if b.Payout != nil {
			tx = b.Payout.TxSignature
		}
		n.logger.Printf("holder WIN winner=%s balance=%s tx=%s",
			b.Winner.Owner, b.Winner.RawAmount, tx)
	}
	return nil
}
