package postgres

import (
	"context"
	"fmt"

	"solanajackbot/internal/domain"
	"solanajackbot/internal/storage"
)

// PayoutStore implements storage.PayoutStore using PostgreSQL.
type PayoutStore struct {
	pool *Pool
}

// NewPayoutStore creates a new PayoutStore.
func NewPayoutStore(pool *Pool) *PayoutStore {
	return &PayoutStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PayoutStore = (*PayoutStore)(nil)

// Insert adds a payout result. Returns ErrDuplicateKey if a result for
// the same (trade signature, pipeline) already exists.
func (s *PayoutStore) Insert(ctx context.Context, p *domain.PayoutResult) error {
	if p == nil || p.TradeSig == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO payouts (
			trade_sig, pipeline, pool, recipient, amount_sol,
			succeeded, tx_signature, fail_reason, created_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9
		)
	`

	_, err := s.pool.Exec(ctx, query,
		p.TradeSig, p.Pipeline.String(), p.Pool, p.Recipient, p.AmountSOL,
		p.Succeeded, p.TxSignature, p.FailReason, p.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert payout: %w", err)
	}
	return nil
}

// GetByTradeSig retrieves all payout results for a trade event.
func (s *PayoutStore) GetByTradeSig(ctx context.Context, tradeSig string) ([]*domain.PayoutResult, error) {
	query := `
		SELECT trade_sig, pipeline, pool, recipient, amount_sol,
		       succeeded, tx_signature, fail_reason, created_at
		FROM payouts
		WHERE trade_sig = $1
		ORDER BY pipeline ASC
	`

	rows, err := s.pool.Query(ctx, query, tradeSig)
	if err != nil {
		return nil, fmt.Errorf("query payouts by trade sig: %w", err)
	}
	defer rows.Close()

	return scanPayouts(rows)
}

// GetRecent retrieves the most recent payout results, newest first.
func (s *PayoutStore) GetRecent(ctx context.Context, limit int) ([]*domain.PayoutResult, error) {
	query := `
		SELECT trade_sig, pipeline, pool, recipient, amount_sol,
		       succeeded, tx_signature, fail_reason, created_at
		FROM payouts
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent payouts: %w", err)
	}
	defer rows.Close()

	return scanPayouts(rows)
}

// rowScanner abstracts pgx.Rows for scanning.
type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanPayouts(rows rowScanner) ([]*domain.PayoutResult, error) {
	var results []*domain.PayoutResult
	for rows.Next() {
		var p domain.PayoutResult
		var pipeline string
		if err := rows.Scan(
			&p.TradeSig, &pipeline, &p.Pool, &p.Recipient, &p.AmountSOL,
			&p.Succeeded, &p.TxSignature, &p.FailReason, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan payout: %w", err)
		}
		p.Pipeline = domain.Pipeline(pipeline)
		results = append(results, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payouts: %w", err)
	}
	return results, nil
}
