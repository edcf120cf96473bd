// contract.go - The betting state machine and its escrow choreography.

package cointoss

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/defi-wonderland/aztec-coin-toss/internal/oracle"
	"github.com/defi-wonderland/aztec-coin-toss/internal/token"
	"github.com/defi-wonderland/aztec-coin-toss/internal/zknotes"
)

// Fixed diagnostics carried by aborted transactions.
var (
	ErrInvalidEscrowAmount = errors.New("Invalid escrow amount")
	ErrBetNotFound         = errors.New("Bet not found")
	ErrInvalidBetResult    = errors.New("Invalid bet result (not settled yet or wrong oracle)")
	ErrBetIDRegistered     = errors.New("Bet id already registered")
	ErrNotInitialized      = errors.New("config not initialized")
	ErrAlreadyInitialized  = errors.New("config already initialized")
)

type betEntry struct {
	note      *BetNote
	nullified bool
}

// Contract is one deployed Coin Toss instance. Every invocation executes to
// completion under the contract mutex, mirroring the host platform's
// one-transaction-at-a-time execution model.
type Contract struct {
	mu      sync.Mutex
	address zknotes.Address
	log     *zknotes.NoteLog
	token   *token.Contract
	oracle  *oracle.Contract

	cfg     *ConfigNote
	bets    []*betEntry
	results []*ResultNote
}

// NewContract deploys a Coin Toss instance wired to its collaborators and
// registers its oracle callback. Call Constructor before placing bets.
func NewContract(log *zknotes.NoteLog, tok *token.Contract, orc *oracle.Contract) *Contract {
	c := &Contract{
		address: zknotes.AddressFromBig(zknotes.RandomField()),
		log:     log,
		token:   tok,
		oracle:  orc,
	}
	orc.RegisterCallback(c.address, c)
	return c
}

// Address returns the contract's address.
func (c *Contract) Address() zknotes.Address { return c.address }

// Constructor initializes the immutable config singleton. It can succeed
// exactly once; the fields never change afterwards.
func (c *Contract) Constructor(divinity, privateOracle, house, tokenAddr zknotes.Address, betAmount *big.Int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cfg != nil {
		return ErrAlreadyInitialized
	}
	if betAmount == nil || betAmount.Sign() <= 0 {
		return fmt.Errorf("constructor: bet amount must be positive")
	}
	c.cfg = &ConfigNote{
		Divinity:      divinity,
		PrivateOracle: privateOracle,
		House:         house,
		Token:         tokenAddr,
		BetAmount:     new(big.Int).Set(betAmount),
	}
	c.log.EmitCommitment(c.cfg.Commitment())
	return nil
}

// CreateBet places a bet: it pulls the caller's stake, consolidates it with
// the house's pre-shared escrow into one combined escrow, submits the
// outcome question to the oracle, registers the bet id, and broadcasts an
// identical bet note to the caller and the house.
//
// Any sub-call failure aborts the whole call. On the host platform the
// surrounding transaction rolls back atomically; the id registry is the one
// place where a partial failure can burn state (a registered id whose
// transaction later fails is never recoverable).
func (c *Contract) CreateBet(caller zknotes.Address, bet bool, transferNonce, houseEscrow, settleNonce, betID *big.Int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cfg == nil {
		return ErrNotInitialized
	}
	if c.log.HasNullifier(RegistryTag(betID)) {
		return ErrBetIDRegistered
	}

	// The house escrow must hold exactly the configured stake. Checked
	// before the orchestrator runs so both too-low and too-high escrows
	// fail with the same diagnostic.
	amount, err := c.token.GetEscrow(houseEscrow)
	if err != nil {
		return fmt.Errorf("create_bet: %w", err)
	}
	if amount.Cmp(c.cfg.BetAmount) != 0 {
		return ErrInvalidEscrowAmount
	}

	// Pull the caller's stake into the contract, authorized by the
	// caller's pre-approved transfer witness.
	if err := c.token.Transfer(caller, c.address, c.cfg.BetAmount, transferNonce, c.address); err != nil {
		return fmt.Errorf("create_bet: %w", err)
	}

	combined, err := c.createBetEscrow(caller, houseEscrow, settleNonce)
	if err != nil {
		return fmt.Errorf("create_bet: %w", err)
	}

	// The bet id doubles as question id and answer id; the trailing zeros
	// mirror the oracle's fixed-width callback format.
	callback := [6]*big.Int{
		c.address.Big(),
		caller.Big(),
		new(big.Int).Set(betID),
		c.cfg.House.Big(),
		new(big.Int),
		new(big.Int),
	}
	if err := c.oracle.SubmitQuestion(c.address, betID, c.cfg.Divinity, betID, callback); err != nil {
		return fmt.Errorf("create_bet: %w", err)
	}

	if err := c.registerBetID(betID); err != nil {
		return err
	}

	note := &BetNote{
		Owner:      caller,
		BetID:      new(big.Int).Set(betID),
		Bet:        bet,
		EscrowRand: combined,
	}
	cm := note.Commitment()
	fields := note.Serialize()
	for _, recipient := range [2]zknotes.Address{caller, c.cfg.House} {
		if err := c.log.EmitNoteTo(recipient, fields[:], cm); err != nil {
			return fmt.Errorf("create_bet: %w", err)
		}
	}
	c.bets = append(c.bets, &betEntry{note: note})
	return nil
}

// createBetEscrow consolidates the caller's stake and the house's escrow
// into a single combined escrow of twice the bet amount, owned by the
// contract itself, and discloses its handle to both parties. Internal:
// callable only from the contract's own entrypoints.
func (c *Contract) createBetEscrow(bettor zknotes.Address, houseEscrow, settleNonce *big.Int) (*big.Int, error) {
	// Redeem the house escrow into the contract's control, authorized by
	// the house's pre-shared settlement witness.
	if err := c.token.SettleEscrow(c.cfg.House, c.address, houseEscrow, settleNonce, c.address); err != nil {
		return nil, fmt.Errorf("consolidate escrow: %w", err)
	}

	double := new(big.Int).Lsh(c.cfg.BetAmount, 1)
	combined, err := c.token.EscrowFunds(c.address, c.address, double, new(big.Int), c.address)
	if err != nil {
		return nil, fmt.Errorf("consolidate escrow: %w", err)
	}

	recipients := [4]zknotes.Address{bettor, c.cfg.House, zknotes.ZeroAddress, zknotes.ZeroAddress}
	if err := c.token.BroadcastEscrowNoteFor(recipients, combined); err != nil {
		return nil, fmt.Errorf("consolidate escrow: %w", err)
	}
	return combined, nil
}

// registerBetID publishes the id-derived registry tag. Once published the
// same id can never be registered again, independent of whether the bet
// note itself is later nullified.
func (c *Contract) registerBetID(betID *big.Int) error {
	if err := c.log.EmitNullifier(RegistryTag(betID)); err != nil {
		return ErrBetIDRegistered
	}
	return nil
}

// OracleCallback records an answer as two result notes, one per party.
// Deliberately unauthenticated: trust is established at settlement time by
// filtering on the recorded sender, not here. Spurious callbacks produce
// result notes that settlement never honors.
func (c *Contract) OracleCallback(sender zknotes.Address, answer *big.Int, data [5]*big.Int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cfg == nil {
		return ErrNotInitialized
	}
	result := answer.Sign() != 0
	for _, ownerField := range [2]*big.Int{data[0], data[2]} {
		note := &ResultNote{
			Owner:  zknotes.AddressFromBig(ownerField),
			Sender: sender,
			BetID:  new(big.Int).Set(data[1]),
			Result: result,
		}
		fields := note.Serialize()
		if err := c.log.EmitNoteTo(note.Owner, fields[:], note.Commitment()); err != nil {
			return fmt.Errorf("oracle_callback: %w", err)
		}
		c.results = append(c.results, note)
	}
	return nil
}

// SettleBet resolves an open bet: it requires a live bet note and a result
// note from the configured oracle, pays the full combined escrow to the
// winner, and nullifies the bet note. Result notes are left untouched.
func (c *Contract) SettleBet(betID *big.Int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cfg == nil {
		return ErrNotInitialized
	}
	entry := c.findOpenBetLocked(betID)
	if entry == nil {
		return ErrBetNotFound
	}
	res := c.findTrustedResultLocked(betID)
	if res == nil {
		return ErrInvalidBetResult
	}

	winner := c.cfg.House
	if res.Result == entry.note.Bet {
		winner = entry.note.Owner
	}
	if err := c.token.SettleEscrow(c.address, winner, entry.note.EscrowRand, new(big.Int), c.address); err != nil {
		return fmt.Errorf("settle_bet: %w", err)
	}
	if err := c.log.EmitNullifier(entry.note.Nullifier()); err != nil {
		return fmt.Errorf("settle_bet: %w", err)
	}
	entry.nullified = true
	return nil
}

func (c *Contract) findOpenBetLocked(betID *big.Int) *betEntry {
	for _, e := range c.bets {
		if !e.nullified && e.note.BetID.Cmp(betID) == 0 {
			return e
		}
	}
	return nil
}

// findTrustedResultLocked returns the first result note matching the bet id
// whose sender is the configured oracle address. With duplicate honest
// callbacks the first recorded answer wins; query order is insertion order.
func (c *Contract) findTrustedResultLocked(betID *big.Int) *ResultNote {
	for _, r := range c.results {
		if r.BetID.Cmp(betID) == 0 && r.Sender == c.cfg.PrivateOracle {
			return r
		}
	}
	return nil
}
