package feed

import (
	"encoding/json"

	"solanajackbot/internal/domain"
)

// Rejection reasons produced by ParseTrade.
const (
	RejectNotJSON       = "not-json"
	RejectMissingType   = "missing-type"
	RejectMissingWallet = "missing-wallet"
	RejectMissingVolume = "missing-volume"
	RejectBadVolume     = "non-positive-volume"
)

// Rejection explains why a feed payload was not accepted as a trade.
type Rejection struct {
	Reason string
}

func (r *Rejection) String() string {
	return r.Reason
}

// rawTrade mirrors the datastream trade payload. Pointers distinguish
// an absent numeric field from a zero value; unknown fields are
// ignored.
type rawTrade struct {
	Type      string   `json:"type"`
	Wallet    string   `json:"wallet"`
	Signature string   `json:"signature"`
	Amount    *float64 `json:"amount"`    // token units
	SolVolume *float64 `json:"solVolume"` // trade size in SOL
	Volume    *float64 `json:"volume"`    // trade size in USD
	PriceUSD  *float64 `json:"priceUsd"`
	Time      *int64   `json:"time"` // Unix seconds
}

// ParseTrade validates a raw feed payload at the boundary and produces
// either a TradeEvent or a rejection reason. It never trusts the
// payload shape: malformed or incomplete messages are rejected, not
// coerced into zero-valued events.
func ParseTrade(raw []byte) (domain.TradeEvent, *Rejection) {
	var rt rawTrade
	if err := json.Unmarshal(raw, &rt); err != nil {
		return domain.TradeEvent{}, &Rejection{Reason: RejectNotJSON}
	}

	if rt.Type == "" {
		return domain.TradeEvent{}, &Rejection{Reason: RejectMissingType}
	}
	if rt.Wallet == "" {
		return domain.TradeEvent{}, &Rejection{Reason: RejectMissingWallet}
	}
	if rt.Volume == nil {
		return domain.TradeEvent{}, &Rejection{Reason: RejectMissingVolume}
	}
	if *rt.Volume <= 0 {
		return domain.TradeEvent{}, &Rejection{Reason: RejectBadVolume}
	}

	ev := domain.TradeEvent{
		Type:      domain.TradeType(rt.Type),
		Signature: rt.Signature,
		Buyer:     rt.Wallet,
		USDVolume: *rt.Volume,
	}
	if rt.Amount != nil {
		ev.TokenAmount = *rt.Amount
	}
	if rt.SolVolume != nil {
		ev.SolVolume = *rt.SolVolume
	}
	if rt.PriceUSD != nil {
		ev.PriceUSD = *rt.PriceUSD
	}
	if rt.Time != nil {
		ev.BlockTime = *rt.Time
	}
	return ev, nil
}
