package domain

// TradeType classifies a DEX transaction delivered by the trade feed.
type TradeType string

const (
	TradeTypeBuy  TradeType = "buy"
	TradeTypeSell TradeType = "sell"
)

// String returns the string representation of TradeType.
func (t TradeType) String() string {
	return string(t)
}

// TradeEvent is a normalized record of a single on-chain trade of the
// tracked token. Immutable once produced by the feed boundary.
type TradeEvent struct {
	Type        TradeType // "buy" | "sell"
	Signature   string    // transaction signature, used for de-duplication
	Buyer       string    // wallet that initiated the trade
	TokenAmount float64   // token units bought
	SolVolume   float64   // trade size in SOL
	USDVolume   float64   // trade size in USD, drives win probability
	PriceUSD    float64   // token price at trade time (0 if feed omits it)
	BlockTime   int64     // Unix timestamp (seconds), 0 if unknown
}

// IsBuy reports whether the event is a token purchase.
func (e *TradeEvent) IsBuy() bool {
	return e.Type == TradeTypeBuy
}
