// note.go - The three private record kinds of the betting contract.

package cointoss

import (
	"math/big"

	"github.com/defi-wonderland/aztec-coin-toss/internal/zknotes"
)

// ConfigNote is the one-time-initialized immutable configuration record.
type ConfigNote struct {
	Divinity      zknotes.Address // authority producing bet outcomes
	PrivateOracle zknotes.Address // oracle contract address
	House         zknotes.Address // counterparty to every bet
	Token         zknotes.Address // staking token contract address
	BetAmount     *big.Int        // fixed stake size, identical for every bet
}

// BetNote records one open bet. It is broadcast to both the owner and the
// house so both hold an identical view; it is nullified at settlement.
type BetNote struct {
	Owner      zknotes.Address // the user who placed the bet
	BetID      *big.Int        // caller-supplied unique id, doubles as oracle question id
	Bet        bool            // outcome guess: false = heads, true = tails
	EscrowRand *big.Int        // randomness handle of the combined escrow
}

// ResultNote is a durable receipt of an oracle callback. Two copies are
// created per callback, one per recipient; they are never nullified.
type ResultNote struct {
	Owner  zknotes.Address // recipient of this copy
	Sender zknotes.Address // address that invoked the callback
	BetID  *big.Int        // originating bet
	Result bool            // outcome reported by the divinity
}
