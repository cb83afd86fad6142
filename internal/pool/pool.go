// Package pool implements custodial reward pools with balance-checked
// SOL transfers.
package pool

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"solanajackbot/internal/domain"
	"solanajackbot/internal/observability"
	"solanajackbot/internal/solana"
)

// Pool owns one custodial signing identity and moves SOL out of it.
// Balance is always read live from the ledger; the pool holds no
// cached balance state.
//
// The mutex serializes the whole check-balance-then-transfer sequence:
// at most one in-flight transfer per pool at a time, so two concurrent
// payouts can never both pass the balance check against the same funds.
type Pool struct {
	name    string
	keypair *solana.Keypair
	client  solana.LedgerClient
	logger  *log.Logger

	mu sync.Mutex
}

// New creates a reward pool around a custodial keypair.
func New(name string, keypair *solana.Keypair, client solana.LedgerClient, logger *log.Logger) *Pool {
	if logger == nil {
		logger = log.New(log.Writer(), "[pool:"+name+"] ", log.LstdFlags|log.Lshortfile)
	}
	return &Pool{
		name:    name,
		keypair: keypair,
		client:  client,
		logger:  logger,
	}
}

// Name returns the pool name.
func (p *Pool) Name() string {
	return p.name
}

// Address returns the pool's custodial wallet address.
func (p *Pool) Address() string {
	return p.keypair.Address()
}

// Balance reads the live pool balance in SOL from the ledger.
func (p *Pool) Balance(ctx context.Context) (float64, error) {
	lamports, err := p.client.GetBalance(ctx, p.keypair.Address())
	if err != nil {
		return 0, err
	}
	return solana.LamportsToSOL(lamports), nil
}

// Transfer attempts to move amountSOL to recipient. It never returns
// an error: every failure is logged, categorized, and folded into a
// terminal PayoutResult with Succeeded=false, meaning no funds moved.
// Callers must not treat a failed result as retryable.
func (p *Pool) Transfer(ctx context.Context, amountSOL float64, recipient string, pipeline domain.Pipeline, tradeSig string) *domain.PayoutResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.transferLocked(ctx, amountSOL, recipient, pipeline, tradeSig)
}

// TransferFraction sizes the payout as a fraction of the live pool
// balance and transfers it. Sizing and the balance check happen under
// the same lock, so the amount can never exceed the balance it was
// derived from.
func (p *Pool) TransferFraction(ctx context.Context, fraction float64, recipient string, pipeline domain.Pipeline, tradeSig string) *domain.PayoutResult {
	p.mu.Lock()
	defer p.mu.Unlock()

	result := &domain.PayoutResult{
		Pool:      p.name,
		Pipeline:  pipeline,
		Recipient: recipient,
		TradeSig:  tradeSig,
		CreatedAt: time.Now().UnixMilli(),
	}

	if !solana.ValidateAddress(recipient) {
		p.logger.Printf("invalid recipient address: %s", recipient)
		result.FailReason = domain.PayoutFailInvalidRecipient
		observability.RecordPayout(p.name, "invalid_recipient")
		return result
	}

	lamports, err := p.client.GetBalance(ctx, p.keypair.Address())
	if err != nil {
		p.logger.Printf("balance read failed: %v", err)
		result.FailReason = domain.PayoutFailSubmission
		observability.RecordPayout(p.name, "balance_error")
		return result
	}

	amount := solana.LamportsToSOL(lamports) * fraction
	if amount <= 0 {
		p.logger.Printf("pool empty, nothing to pay out")
		result.FailReason = domain.PayoutFailInsufficientBalance
		observability.RecordPayout(p.name, "insufficient_balance")
		return result
	}

	return p.submitLocked(ctx, amount, lamports, recipient, result)
}

// transferLocked runs the precondition chain for a fixed amount.
// Preconditions short-circuit in order: recipient validity, then live
// balance, then submission.
func (p *Pool) transferLocked(ctx context.Context, amountSOL float64, recipient string, pipeline domain.Pipeline, tradeSig string) *domain.PayoutResult {
	result := &domain.PayoutResult{
		Pool:      p.name,
		Pipeline:  pipeline,
		Recipient: recipient,
		AmountSOL: amountSOL,
		TradeSig:  tradeSig,
		CreatedAt: time.Now().UnixMilli(),
	}

	if !solana.ValidateAddress(recipient) {
		p.logger.Printf("invalid recipient address: %s", recipient)
		result.FailReason = domain.PayoutFailInvalidRecipient
		observability.RecordPayout(p.name, "invalid_recipient")
		return result
	}

	lamports, err := p.client.GetBalance(ctx, p.keypair.Address())
	if err != nil {
		p.logger.Printf("balance read failed: %v", err)
		result.FailReason = domain.PayoutFailSubmission
		observability.RecordPayout(p.name, "balance_error")
		return result
	}

	if solana.LamportsToSOL(lamports) < amountSOL {
		p.logger.Printf("insufficient balance: have %.5f SOL, need %.5f SOL",
			solana.LamportsToSOL(lamports), amountSOL)
		result.FailReason = domain.PayoutFailInsufficientBalance
		observability.RecordPayout(p.name, "insufficient_balance")
		return result
	}

	return p.submitLocked(ctx, amountSOL, lamports, recipient, result)
}

// submitLocked builds, signs, submits and awaits confirmation of the
// transfer. Caller holds p.mu and has already checked the balance.
func (p *Pool) submitLocked(ctx context.Context, amountSOL float64, balanceLamports uint64, recipient string, result *domain.PayoutResult) *domain.PayoutResult {
	result.AmountSOL = amountSOL

	start := time.Now()

	blockhash, err := p.client.GetLatestBlockhash(ctx)
	if err != nil {
		p.logger.Printf("fetch blockhash failed: %v", err)
		result.FailReason = domain.PayoutFailSubmission
		observability.RecordPayout(p.name, "submission_error")
		return result
	}

	lamports := solana.SOLToLamports(amountSOL)
	txBase64, err := solana.BuildTransferTransaction(p.keypair, recipient, lamports, blockhash)
	if err != nil {
		p.logger.Printf("build transaction failed: %v", err)
		result.FailReason = domain.PayoutFailSubmission
		observability.RecordPayout(p.name, "submission_error")
		return result
	}

	signature, err := p.client.SendTransaction(ctx, txBase64)
	if err != nil {
		p.logSubmissionHint(err)
		result.FailReason = domain.PayoutFailSubmission
		observability.RecordPayout(p.name, "submission_error")
		return result
	}

	// Once submitted we wait for a terminal outcome; cancellation is
	// not supported mid-payout.
	if err := p.client.ConfirmTransaction(ctx, signature); err != nil {
		p.logger.Printf("confirmation failed for %s: %v", signature, err)
		result.FailReason = domain.PayoutFailSubmission
		observability.RecordPayout(p.name, "confirmation_error")
		return result
	}

	p.logger.Printf("transfer confirmed: %s (%.5f SOL to %s)", signature, amountSOL, recipient)
	result.Succeeded = true
	result.TxSignature = signature
	observability.RecordPayout(p.name, "success")
	observability.ObservePayoutDuration(p.name, time.Since(start).Seconds())
	observability.SetPoolBalance(p.name, solana.LamportsToSOL(balanceLamports)-amountSOL)
	return result
}

// logSubmissionHint logs a categorized hint for common Solana
// submission failures.
func (p *Pool) logSubmissionHint(err error) {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "insufficient funds"):
		p.logger.Printf("submission failed: %v (hint: pool lacks SOL for transfer + fee)", err)
	case strings.Contains(msg, "Transaction simulation failed"):
		p.logger.Printf("submission failed: %v (hint: simulation rejected, check network or recipient)", err)
	default:
		p.logger.Printf("submission failed: %v", err)
	}
}
