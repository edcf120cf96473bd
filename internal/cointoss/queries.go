// queries.go - Read-only accessors for off-chain state reconstruction.
//
// These are unauthenticated and not proof-gated: their results are not
// cryptographically trusted by the contract. Pagination is best-effort;
// ordering across pages under concurrent insertions is not guaranteed.

package cointoss

import (
	"math/big"

	"github.com/defi-wonderland/aztec-coin-toss/internal/zknotes"
)

// PageSize is the maximum number of records returned per query page.
const PageSize = 10

// GetConfigUnconstrained returns a copy of the config singleton, or nil if
// the contract is not initialized.
func (c *Contract) GetConfigUnconstrained() *ConfigNote {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cfg == nil {
		return nil
	}
	cp := *c.cfg
	cp.BetAmount = new(big.Int).Set(c.cfg.BetAmount)
	return &cp
}

// GetUserBetsUnconstrained returns up to PageSize open bets visible to the
// viewer, skipping offset matches. A bet is visible to its owner and to the
// house (both receive the broadcast copy).
func (c *Contract) GetUserBetsUnconstrained(viewer zknotes.Address, offset int) []*BetNote {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cfg == nil {
		return nil
	}
	var out []*BetNote
	skipped := 0
	for _, e := range c.bets {
		if e.nullified {
			continue
		}
		if e.note.Owner != viewer && viewer != c.cfg.House {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		cp := *e.note
		cp.BetID = new(big.Int).Set(e.note.BetID)
		cp.EscrowRand = new(big.Int).Set(e.note.EscrowRand)
		out = append(out, &cp)
		if len(out) == PageSize {
			break
		}
	}
	return out
}

// GetResultsUnconstrained returns up to PageSize result notes owned by the
// given address, skipping offset matches. Untrusted results are included;
// filtering by sender is the reader's concern, as it is settlement's.
func (c *Contract) GetResultsUnconstrained(owner zknotes.Address, offset int) []*ResultNote {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*ResultNote
	skipped := 0
	for _, r := range c.results {
		if r.Owner != owner {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		cp := *r
		cp.BetID = new(big.Int).Set(r.BetID)
		out = append(out, &cp)
		if len(out) == PageSize {
			break
		}
	}
	return out
}

// IsIDNullified recomputes the registry tag for a bet id and checks the
// nullifier log.
func (c *Contract) IsIDNullified(betID *big.Int) bool {
	return c.log.HasNullifier(RegistryTag(betID))
}
