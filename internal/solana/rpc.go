package solana

import "context"

// LamportsPerSOL is the number of lamports in one SOL.
const LamportsPerSOL = 1_000_000_000

// LedgerClient defines the Solana RPC surface the payout engine needs.
type LedgerClient interface {
	// GetBalance returns the lamport balance of an account.
	GetBalance(ctx context.Context, pubkey string) (uint64, error)

	// GetLatestBlockhash returns a recent blockhash for transaction building.
	GetLatestBlockhash(ctx context.Context) (string, error)

	// SendTransaction submits a base64-encoded signed transaction and
	// returns its signature.
	SendTransaction(ctx context.Context, txBase64 string) (string, error)

	// ConfirmTransaction blocks until the signature reaches confirmed
	// commitment or fails on chain.
	ConfirmTransaction(ctx context.Context, signature string) error
}

// HolderClient lists token accounts for a mint, one page at a time.
type HolderClient interface {
	// GetTokenAccounts returns one page of token accounts for a mint.
	// An empty page means pagination is exhausted.
	GetTokenAccounts(ctx context.Context, mint string, page, limit int) ([]TokenAccount, error)
}

// TokenAccount is one row from getTokenAccounts.
type TokenAccount struct {
	Address string // token account address
	Owner   string // owning wallet
	Amount  string // raw amount in minor units, decimal string
}

// SignatureStatus describes the confirmation state of a transaction.
type SignatureStatus struct {
	Slot               int64
	Confirmations      *int
	ConfirmationStatus string // "processed" | "confirmed" | "finalized"
	Err                interface{}
}
