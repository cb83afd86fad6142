// Package holders lists token holders and selects holder-jackpot winners.
package holders

import (
	"context"
	"fmt"

	"solanajackbot/internal/domain"
	"solanajackbot/internal/solana"
)

// DefaultPageLimit is the getTokenAccounts page size.
const DefaultPageLimit = 1000

// maxPages bounds pagination so a misbehaving endpoint that never
// returns an empty page cannot spin forever.
const maxPages = 1000

// Lister materializes the full holder list for a mint by paging
// through getTokenAccounts until an empty page.
type Lister struct {
	client solana.HolderClient
	limit  int
}

// NewLister creates a holder lister.
func NewLister(client solana.HolderClient) *Lister {
	return &Lister{client: client, limit: DefaultPageLimit}
}

// List returns all holders of the mint. One wallet may appear more
// than once if it owns multiple token accounts; the selector treats
// each record independently, matching the listing service's view.
func (l *Lister) List(ctx context.Context, mint string) ([]domain.HolderRecord, error) {
	var holders []domain.HolderRecord

	for page := 1; page <= maxPages; page++ {
		accounts, err := l.client.GetTokenAccounts(ctx, mint, page, l.limit)
		if err != nil {
			return nil, fmt.Errorf("list token accounts page %d: %w", page, err)
		}
		if len(accounts) == 0 {
			return holders, nil
		}
		for _, a := range accounts {
			holders = append(holders, domain.HolderRecord{
				Owner:     a.Owner,
				RawAmount: a.Amount,
			})
		}
	}

	return holders, fmt.Errorf("holder listing exceeded %d pages for mint %s", maxPages, mint)
}
