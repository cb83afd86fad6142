package memory

import (
	"context"
	"errors"
	"testing"

	"solanajackbot/internal/domain"
	"solanajackbot/internal/storage"
)

func TestPayoutStore_InsertAndGet(t *testing.T) {
	store := NewPayoutStore()
	ctx := context.Background()

	payout := &domain.PayoutResult{
		TradeSig:  "sig1",
		Pipeline:  domain.PipelineTrade,
		Pool:      "trade",
		Recipient: "wallet",
		AmountSOL: 2.5,
		Succeeded: true,
		CreatedAt: 1000,
	}

	if err := store.Insert(ctx, payout); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	results, err := store.GetByTradeSig(ctx, "sig1")
	if err != nil {
		t.Fatalf("GetByTradeSig failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].AmountSOL != 2.5 || results[0].Recipient != "wallet" {
		t.Errorf("stored payout = %+v", results[0])
	}

	// Stored copy is independent of the caller's struct
	payout.AmountSOL = 99
	results, _ = store.GetByTradeSig(ctx, "sig1")
	if results[0].AmountSOL != 2.5 {
		t.Error("store leaked a reference to caller memory")
	}
}

func TestPayoutStore_DuplicateByTradeSigAndPipeline(t *testing.T) {
	store := NewPayoutStore()
	ctx := context.Background()

	first := &domain.PayoutResult{TradeSig: "sig1", Pipeline: domain.PipelineTrade}
	if err := store.Insert(ctx, first); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	// Same signature, same pipeline: duplicate
	if err := store.Insert(ctx, first); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("duplicate insert returned %v, want ErrDuplicateKey", err)
	}

	// Same signature, other pipeline: allowed
	second := &domain.PayoutResult{TradeSig: "sig1", Pipeline: domain.PipelineHolder}
	if err := store.Insert(ctx, second); err != nil {
		t.Errorf("cross-pipeline insert failed: %v", err)
	}
}

func TestPayoutStore_InsertInvalid(t *testing.T) {
	store := NewPayoutStore()
	ctx := context.Background()

	if err := store.Insert(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("nil insert returned %v, want ErrInvalidInput", err)
	}
	if err := store.Insert(ctx, &domain.PayoutResult{}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("empty insert returned %v, want ErrInvalidInput", err)
	}
}

func TestPayoutStore_GetRecent(t *testing.T) {
	store := NewPayoutStore()
	ctx := context.Background()

	for i := int64(0); i < 5; i++ {
		err := store.Insert(ctx, &domain.PayoutResult{
			TradeSig:  string(rune('a' + i)),
			Pipeline:  domain.PipelineTrade,
			CreatedAt: i,
		})
		if err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	recent, err := store.GetRecent(ctx, 2)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("got %d results, want 2", len(recent))
	}
	if recent[0].CreatedAt != 4 || recent[1].CreatedAt != 3 {
		t.Errorf("order wrong: %d, %d", recent[0].CreatedAt, recent[1].CreatedAt)
	}
}
