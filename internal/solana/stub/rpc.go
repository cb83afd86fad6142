package stub

import (
	"context"
	"fmt"
	"sync"

	"solanajackbot/internal/solana"
)

// Ledger implements solana.LedgerClient and solana.HolderClient for
// testing. Submitted transactions are recorded so tests can assert on
// what was (or was not) sent.
type Ledger struct {
	mu sync.Mutex

	Balances      map[string]uint64                // pubkey -> lamports
	TokenAccounts map[string][]solana.TokenAccount // mint -> accounts
	SentTxs       []string                         // base64 transactions in submission order
	NextSignature string                           // signature returned by the next SendTransaction
	SendErr       error                            // forced SendTransaction error
	ConfirmErr    error                            // forced ConfirmTransaction error
	BalanceErr    error                            // forced GetBalance error
	sendCount     int
}

// NewLedger creates an empty stub ledger.
func NewLedger() *Ledger {
	return &Ledger{
		Balances:      make(map[string]uint64),
		TokenAccounts: make(map[string][]solana.TokenAccount),
		NextSignature: "stub-signature",
	}
}

// GetBalance returns the stubbed lamport balance.
func (l *Ledger) GetBalance(_ context.Context, pubkey string) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.BalanceErr != nil {
		return 0, l.BalanceErr
	}
	return l.Balances[pubkey], nil
}

// GetLatestBlockhash returns a fixed valid blockhash.
func (l *Ledger) GetLatestBlockhash(_ context.Context) (string, error) {
	// Any 32-byte base58 value works for message building.
	return "J7rBdM6AecPDEZp8aPq5iPSNKVkU5Q76F3Rgf15CVHPt", nil
}

// SendTransaction records the transaction and returns the configured
// signature.
func (l *Ledger) SendTransaction(_ context.Context, txBase64 string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.SendErr != nil {
		return "", l.SendErr
	}
	l.SentTxs = append(l.SentTxs, txBase64)
	l.sendCount++
	if l.NextSignature == "" {
		return fmt.Sprintf("stub-signature-%d", l.sendCount), nil
	}
	return l.NextSignature, nil
}

// ConfirmTransaction succeeds unless ConfirmErr is set.
func (l *Ledger) ConfirmTransaction(_ context.Context, _ string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ConfirmErr
}

// GetTokenAccounts pages through the stubbed holder list.
func (l *Ledger) GetTokenAccounts(_ context.Context, mint string, page, limit int) ([]solana.TokenAccount, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	accounts := l.TokenAccounts[mint]
	start := (page - 1) * limit
	if start >= len(accounts) {
		return nil, nil
	}
	end := start + limit
	if end > len(accounts) {
		end = len(accounts)
	}
	return accounts[start:end], nil
}

// SendCount returns how many transactions were submitted.
func (l *Ledger) SendCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sendCount
}
