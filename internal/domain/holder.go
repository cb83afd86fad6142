package domain

import "math/big"

// HolderRecord is one token holder as reported by the listing service.
// Supplied fresh per holder draw; not persisted.
type HolderRecord struct {
	Owner     string // wallet address owning the token account
	RawAmount string // raw token amount in minor units, decimal string
}

// RawBalance parses RawAmount into an integer. Returns zero for
// unparseable amounts so malformed listings never qualify.
func (h *HolderRecord) RawBalance() *big.Int {
	n, ok := new(big.Int).SetString(h.RawAmount, 10)
	if !ok || n.Sign() < 0 {
		return big.NewInt(0)
	}
	return n
}
