package storage

import (
	"context"

	"solanajackbot/internal/domain"
)

// PayoutStore provides access to payout history. Records are terminal
// and append-only: a payout result never changes once written.
type PayoutStore interface {
	// Insert adds a payout result. Returns ErrDuplicateKey if a result
	// for the same (trade signature, pipeline) already exists.
	Insert(ctx context.Context, p *domain.PayoutResult) error

	// GetByTradeSig retrieves all payout results for a trade event.
	GetByTradeSig(ctx context.Context, tradeSig string) ([]*domain.PayoutResult, error)

	// GetRecent retrieves the most recent payout results, newest first.
	GetRecent(ctx context.Context, limit int) ([]*domain.PayoutResult, error)
}

// DrawStore provides access to draw outcome analytics.
type DrawStore interface {
	// InsertBulk adds draw records.
	InsertBulk(ctx context.Context, draws []*DrawRecord) error

	// CountByResult returns win and lose counts for a pipeline.
	CountByResult(ctx context.Context, pipeline domain.Pipeline) (wins, losses uint64, err error)
}

// DrawRecord is one persisted draw outcome, flattened for analytics.
type DrawRecord struct {
	TradeSig      string
	Pipeline      string
	WinPercent    int
	WinningNumber int
	IsWinner      bool
	USDVolume     float64
	TimestampMs   int64
}
