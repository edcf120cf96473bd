// codec.go - Fixed-layout serialization of notes to field-element tuples,
// plus commitment and nullifier derivation.
//
// Serialize/Deserialize are exact inverses for every valid note. Commitments
// are MiMC over a per-kind domain tag followed by the serialized fields, so
// they match the in-circuit recomputation in BetReceiptCircuit.

package cointoss

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/defi-wonderland/aztec-coin-toss/internal/zknotes"
)

// Serialized tuple arities.
const (
	ConfigNoteLen = 5
	BetNoteLen    = 4
	ResultNoteLen = 4
)

var (
	configNoteDomain = zknotes.ReduceToField([]byte("cointoss.config_note"))
	betNoteDomain    = zknotes.ReduceToField([]byte("cointoss.bet_note"))
	resultNoteDomain = zknotes.ReduceToField([]byte("cointoss.result_note"))
	betNullifierDom  = zknotes.ReduceToField([]byte("cointoss.bet_nullifier"))
	registryDomain   = zknotes.ReduceToField([]byte("cointoss.bet_id_tag"))
)

// ZeroNullifier is the sentinel for note kinds that have no nullifier
// derivation: ConfigNote is immutable and never removed, ResultNote is a
// durable receipt.
var ZeroNullifier = new(big.Int)

// ErrInvalidBool is returned when a boolean slot decodes to neither 0 nor 1.
var ErrInvalidBool = errors.New("boolean field is not 0 or 1")

func boolToField(b bool) *big.Int {
	if b {
		return big.NewInt(1)
	}
	return new(big.Int)
}

func fieldToBool(f *big.Int) (bool, error) {
	switch {
	case f.Sign() == 0:
		return false, nil
	case f.Cmp(big.NewInt(1)) == 0:
		return true, nil
	default:
		return false, ErrInvalidBool
	}
}

// Serialize returns the config note as an ordered field tuple.
func (n *ConfigNote) Serialize() [ConfigNoteLen]*big.Int {
	return [ConfigNoteLen]*big.Int{
		n.Divinity.Big(),
		n.PrivateOracle.Big(),
		n.House.Big(),
		n.Token.Big(),
		new(big.Int).Set(n.BetAmount),
	}
}

// DeserializeConfig rebuilds a config note from its field tuple.
func DeserializeConfig(fields [ConfigNoteLen]*big.Int) *ConfigNote {
	return &ConfigNote{
		Divinity:      zknotes.AddressFromBig(fields[0]),
		PrivateOracle: zknotes.AddressFromBig(fields[1]),
		House:         zknotes.AddressFromBig(fields[2]),
		Token:         zknotes.AddressFromBig(fields[3]),
		BetAmount:     new(big.Int).Set(fields[4]),
	}
}

// Commitment is the content-addressed hash of the config note.
func (n *ConfigNote) Commitment() *big.Int {
	f := n.Serialize()
	return zknotes.HashFields(configNoteDomain, f[0], f[1], f[2], f[3], f[4])
}

// Nullifier returns the sentinel: config notes are never removed.
func (n *ConfigNote) Nullifier() *big.Int { return ZeroNullifier }

// Serialize returns the bet note as an ordered field tuple.
func (n *BetNote) Serialize() [BetNoteLen]*big.Int {
	return [BetNoteLen]*big.Int{
		n.Owner.Big(),
		new(big.Int).Set(n.BetID),
		boolToField(n.Bet),
		new(big.Int).Set(n.EscrowRand),
	}
}

// DeserializeBet rebuilds a bet note from its field tuple.
func DeserializeBet(fields [BetNoteLen]*big.Int) (*BetNote, error) {
	bet, err := fieldToBool(fields[2])
	if err != nil {
		return nil, fmt.Errorf("bet note: %w", err)
	}
	return &BetNote{
		Owner:      zknotes.AddressFromBig(fields[0]),
		BetID:      new(big.Int).Set(fields[1]),
		Bet:        bet,
		EscrowRand: new(big.Int).Set(fields[3]),
	}, nil
}

// Commitment is the content-addressed hash of the bet note.
func (n *BetNote) Commitment() *big.Int {
	f := n.Serialize()
	return zknotes.HashFields(betNoteDomain, f[0], f[1], f[2], f[3])
}

// Nullifier is derived from the bet id and the note's commitment, binding
// consumption of the note to its existence proof.
func (n *BetNote) Nullifier() *big.Int {
	return zknotes.HashFields(betNullifierDom, n.BetID, n.Commitment())
}

// Serialize returns the result note as an ordered field tuple.
func (n *ResultNote) Serialize() [ResultNoteLen]*big.Int {
	return [ResultNoteLen]*big.Int{
		n.Owner.Big(),
		n.Sender.Big(),
		new(big.Int).Set(n.BetID),
		boolToField(n.Result),
	}
}

// DeserializeResult rebuilds a result note from its field tuple.
func DeserializeResult(fields [ResultNoteLen]*big.Int) (*ResultNote, error) {
	result, err := fieldToBool(fields[3])
	if err != nil {
		return nil, fmt.Errorf("result note: %w", err)
	}
	return &ResultNote{
		Owner:  zknotes.AddressFromBig(fields[0]),
		Sender: zknotes.AddressFromBig(fields[1]),
		BetID:  new(big.Int).Set(fields[2]),
		Result: result,
	}, nil
}

// Commitment is the content-addressed hash of the result note.
func (n *ResultNote) Commitment() *big.Int {
	f := n.Serialize()
	return zknotes.HashFields(resultNoteDomain, f[0], f[1], f[2], f[3])
}

// Nullifier returns the sentinel: result notes are durable receipts.
func (n *ResultNote) Nullifier() *big.Int { return ZeroNullifier }

// RegistryTag derives the bet-id registry nullifier from the id alone,
// independent of any note field.
func RegistryTag(betID *big.Int) *big.Int {
	return zknotes.HashFields(registryDomain, betID)
}
