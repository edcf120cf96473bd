// Package token emulates the fungible private-token collaborator consumed by
// the Coin Toss contract. It exposes exactly the cross-contract surface the
// betting state machine needs: transfer, escrow creation, escrow settlement,
// escrow-note broadcast, and escrow amount lookup.
//
// Balances are private records; only the escrow randomness handle crosses
// the contract boundary. Acting on another party's funds requires consuming
// a matching authorization witness.
package token

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/defi-wonderland/aztec-coin-toss/internal/authwit"
	"github.com/defi-wonderland/aztec-coin-toss/internal/zknotes"
)

var (
	// ErrInsufficientBalance is returned when a debit exceeds the balance.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrUnknownEscrow is returned for a handle that resolves to no escrow.
	ErrUnknownEscrow = errors.New("unknown escrow")
)

var escrowNoteDomain = zknotes.ReduceToField([]byte("token.escrow_note"))

type escrowEntry struct {
	owner      zknotes.Address
	amount     *big.Int
	randomness *big.Int
}

// Contract is one deployed private-token instance.
type Contract struct {
	mu       sync.Mutex
	address  zknotes.Address
	log      *zknotes.NoteLog
	authwits *authwit.Registry
	balances map[zknotes.Address]*big.Int
	escrows  map[zknotes.Address]*escrowEntry
}

// NewContract deploys a token instance onto the given note log.
func NewContract(log *zknotes.NoteLog) *Contract {
	return &Contract{
		address:  zknotes.AddressFromBig(zknotes.RandomField()),
		log:      log,
		authwits: authwit.NewRegistry(),
		balances: make(map[zknotes.Address]*big.Int),
		escrows:  make(map[zknotes.Address]*escrowEntry),
	}
}

// Address returns the contract's address.
func (c *Contract) Address() zknotes.Address { return c.address }

// AddAuthWitness pre-approves an authorization witness.
func (c *Contract) AddAuthWitness(w authwit.Witness) { c.authwits.Approve(w) }

// Mint credits freshly issued tokens to an address. Sandbox bootstrap only.
func (c *Contract) Mint(to zknotes.Address, amount *big.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.creditLocked(to, amount)
}

// BalanceOf returns the private balance of an address. Read-only; not
// cryptographically gated, intended for the holder and tests.
func (c *Contract) BalanceOf(addr zknotes.Address) *big.Int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if b, ok := c.balances[addr]; ok {
		return new(big.Int).Set(b)
	}
	return new(big.Int)
}

// Transfer moves amount from one address to another. A caller other than
// the sender must hold an authwit over (from, to, amount, nonce).
func (c *Contract) Transfer(from, to zknotes.Address, amount, nonce *big.Int, caller zknotes.Address) error {
	if caller != from {
		w := authwit.Compute(from, caller, "transfer", from.Big(), to.Big(), amount, nonce)
		if err := c.authwits.Consume(w); err != nil {
			return fmt.Errorf("transfer: %w", err)
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.debitLocked(from, amount); err != nil {
		return fmt.Errorf("transfer: %w", err)
	}
	c.creditLocked(to, amount)
	return nil
}

// EscrowFunds debits amount from `from` and parks it in an escrow owned by
// `owner`, identified by a fresh randomness handle.
func (c *Contract) EscrowFunds(from, owner zknotes.Address, amount, nonce *big.Int, caller zknotes.Address) (*big.Int, error) {
	if caller != from {
		w := authwit.Compute(from, caller, "escrow", from.Big(), owner.Big(), amount, nonce)
		if err := c.authwits.Consume(w); err != nil {
			return nil, fmt.Errorf("escrow: %w", err)
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.debitLocked(from, amount); err != nil {
		return nil, fmt.Errorf("escrow: %w", err)
	}
	randomness := zknotes.RandomField()
	c.escrows[zknotes.AddressFromBig(randomness)] = &escrowEntry{
		owner:      owner,
		amount:     new(big.Int).Set(amount),
		randomness: randomness,
	}
	return randomness, nil
}

// SettleEscrow releases the full escrow to the recipient and consumes it.
// A caller other than the escrow owner must hold an authwit over
// (handle, recipient, nonce).
func (c *Contract) SettleEscrow(owner, recipient zknotes.Address, handle, nonce *big.Int, caller zknotes.Address) error {
	if caller != owner {
		w := authwit.Compute(owner, caller, "settle_escrow", handle, recipient.Big(), nonce)
		if err := c.authwits.Consume(w); err != nil {
			return fmt.Errorf("settle_escrow: %w", err)
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	key := zknotes.AddressFromBig(handle)
	entry, ok := c.escrows[key]
	if !ok {
		return fmt.Errorf("settle_escrow: %w", ErrUnknownEscrow)
	}
	if entry.owner != owner {
		return fmt.Errorf("settle_escrow: %w", authwit.ErrUnauthorized)
	}
	delete(c.escrows, key)
	c.creditLocked(recipient, entry.amount)
	return nil
}

// BroadcastEscrowNoteFor discloses an escrow note (owner, amount,
// randomness) to up to four recipients. Zero addresses are skipped.
func (c *Contract) BroadcastEscrowNoteFor(recipients [4]zknotes.Address, handle *big.Int) error {
	c.mu.Lock()
	entry, ok := c.escrows[zknotes.AddressFromBig(handle)]
	c.mu.Unlock()
	if !ok {
		return fmt.Errorf("broadcast_escrow_note: %w", ErrUnknownEscrow)
	}
	fields := []*big.Int{entry.owner.Big(), new(big.Int).Set(entry.amount), entry.randomness}
	cm := zknotes.HashFields(append([]*big.Int{escrowNoteDomain}, fields...)...)
	for _, r := range recipients {
		if r.IsZero() {
			continue
		}
		if err := c.log.EmitNoteTo(r, fields, cm); err != nil {
			return fmt.Errorf("broadcast_escrow_note: %w", err)
		}
	}
	return nil
}

// GetEscrow returns the amount held under a handle.
func (c *Contract) GetEscrow(handle *big.Int) (*big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.escrows[zknotes.AddressFromBig(handle)]
	if !ok {
		return nil, ErrUnknownEscrow
	}
	return new(big.Int).Set(entry.amount), nil
}

func (c *Contract) debitLocked(from zknotes.Address, amount *big.Int) error {
	b, ok := c.balances[from]
	if !ok || b.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	b.Sub(b, amount)
	return nil
}

func (c *Contract) creditLocked(to zknotes.Address, amount *big.Int) {
	b, ok := c.balances[to]
	if !ok {
		b = new(big.Int)
		c.balances[to] = b
	}
	b.Add(b, amount)
}
