package clickhouse

import (
	"context"
	"fmt"

	"solanajackbot/internal/domain"
	"solanajackbot/internal/storage"
)

// DrawStore implements storage.DrawStore using ClickHouse. Draw
// outcomes are analytics data: high-volume appends, aggregate reads.
type DrawStore struct {
	conn *Conn
}

// NewDrawStore creates a new DrawStore.
func NewDrawStore(conn *Conn) *DrawStore {
	return &DrawStore{conn: conn}
}

// Compile-time interface check.
var _ storage.DrawStore = (*DrawStore)(nil)

// InsertBulk adds draw records via a prepared batch.
func (s *DrawStore) InsertBulk(ctx context.Context, draws []*storage.DrawRecord) error {
	if len(draws) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO draws (
			trade_sig, pipeline, win_percent, winning_number, is_winner,
			usd_volume, timestamp_ms
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, d := range draws {
		err = batch.Append(
			d.TradeSig, d.Pipeline, uint8(d.WinPercent), uint8(d.WinningNumber),
			d.IsWinner, d.USDVolume, uint64(d.TimestampMs),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// CountByResult returns win and lose counts for a pipeline.
func (s *DrawStore) CountByResult(ctx context.Context, pipeline domain.Pipeline) (uint64, uint64, error) {
	query := `
		SELECT
			countIf(is_winner) AS wins,
			countIf(NOT is_winner) AS losses
		FROM draws
		WHERE pipeline = ?
	`

	row := s.conn.QueryRow(ctx, query, pipeline.String())

	var wins, losses uint64
	if err := row.Scan(&wins, &losses); err != nil {
		return 0, 0, fmt.Errorf("scan draw counts: %w", err)
	}
	return wins, losses, nil
}
