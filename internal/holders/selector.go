package holders

import (
	"math/big"
	"math/rand/v2"

	"solanajackbot/internal/domain"
)

// Selector picks one eligible holder uniformly at random. It never
// fetches or mutates holder data; the list is supplied per draw.
type Selector struct {
	rng *rand.Rand
}

// NewSelector creates a selector with its own random source.
func NewSelector(src rand.Source) *Selector {
	return &Selector{rng: rand.New(src)}
}

// SelectWinner filters holders to those with raw balance >=
// minRawBalance whose address is not excluded, then picks uniformly.
// The second return is false when no holder is eligible; the caller
// must treat that as a skip signal, not an error.
func (s *Selector) SelectWinner(holders []domain.HolderRecord, minRawBalance uint64, excluded map[string]struct{}) (domain.HolderRecord, bool) {
	minBal := new(big.Int).SetUint64(minRawBalance)

	eligible := make([]domain.HolderRecord, 0, len(holders))
	for _, h := range holders {
		if _, skip := excluded[h.Owner]; skip {
			continue
		}
		if h.RawBalance().Cmp(minBal) < 0 {
			continue
		}
		eligible = append(eligible, h)
	}

	if len(eligible) == 0 {
		return domain.HolderRecord{}, false
	}
	return eligible[s.rng.IntN(len(eligible))], true
}
