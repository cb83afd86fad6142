package domain

// Payout failure reasons. A PayoutResult carries at most one.
const (
	PayoutFailInvalidRecipient    = "INVALID_RECIPIENT"
	PayoutFailInsufficientBalance = "INSUFFICIENT_BALANCE"
	PayoutFailSubmission          = "SUBMISSION_FAILED"
)

// PayoutResult is the terminal record of one transfer attempt.
// Succeeded=true corresponds to exactly one confirmed ledger
// transaction; Succeeded=false means no funds left the pool and the
// result is terminal for that trade event (no retries).
type PayoutResult struct {
	Pool        string   // pool name ("trade" | "holder")
	Pipeline    Pipeline // which draw pipeline authorized the payout
	Recipient   string
	AmountSOL   float64
	Succeeded   bool
	TxSignature string // empty unless Succeeded
	FailReason  string // one of the PayoutFail* constants, empty on success
	TradeSig    string // originating trade event signature
	CreatedAt   int64  // Unix timestamp in milliseconds
}
