package cointoss

import (
	"errors"
	"math/big"
	"testing"

	"github.com/defi-wonderland/aztec-coin-toss/internal/zknotes"
)

func randomAddress() zknotes.Address {
	return zknotes.AddressFromBig(zknotes.RandomField())
}

func TestConfigNoteRoundTrip(t *testing.T) {
	note := &ConfigNote{
		Divinity:      randomAddress(),
		PrivateOracle: randomAddress(),
		House:         randomAddress(),
		Token:         randomAddress(),
		BetAmount:     big.NewInt(100),
	}
	got := DeserializeConfig(note.Serialize())
	if got.Divinity != note.Divinity ||
		got.PrivateOracle != note.PrivateOracle || got.House != note.House ||
		got.Token != note.Token || got.BetAmount.Cmp(note.BetAmount) != 0 {
		t.Errorf("config round trip mismatch: got %+v, want %+v", got, note)
	}
	if note.Nullifier().Cmp(ZeroNullifier) != 0 {
		t.Error("config note nullifier should be the zero sentinel")
	}
}

func TestBetNoteRoundTrip(t *testing.T) {
	for _, bet := range []bool{false, true} {
		note := &BetNote{
			Owner:      randomAddress(),
			BetID:      zknotes.RandomField(),
			Bet:        bet,
			EscrowRand: zknotes.RandomField(),
		}
		got, err := DeserializeBet(note.Serialize())
		if err != nil {
			t.Fatalf("DeserializeBet failed: %v", err)
		}
		if got.Owner != note.Owner || got.BetID.Cmp(note.BetID) != 0 ||
			got.Bet != note.Bet || got.EscrowRand.Cmp(note.EscrowRand) != 0 {
			t.Errorf("bet round trip mismatch (bet=%v)", bet)
		}
	}
}

func TestBetNoteInvalidBool(t *testing.T) {
	note := &BetNote{Owner: randomAddress(), BetID: big.NewInt(1), EscrowRand: big.NewInt(2)}
	fields := note.Serialize()
	fields[2] = big.NewInt(2)
	if _, err := DeserializeBet(fields); !errors.Is(err, ErrInvalidBool) {
		t.Errorf("expected ErrInvalidBool, got %v", err)
	}
}

func TestResultNoteRoundTrip(t *testing.T) {
	note := &ResultNote{
		Owner:  randomAddress(),
		Sender: randomAddress(),
		BetID:  zknotes.RandomField(),
		Result: true,
	}
	got, err := DeserializeResult(note.Serialize())
	if err != nil {
		t.Fatalf("DeserializeResult failed: %v", err)
	}
	if got.Owner != note.Owner || got.Sender != note.Sender ||
		got.BetID.Cmp(note.BetID) != 0 || got.Result != note.Result {
		t.Error("result round trip mismatch")
	}
	if note.Nullifier().Cmp(ZeroNullifier) != 0 {
		t.Error("result note nullifier should be the zero sentinel")
	}
}

func TestCommitments(t *testing.T) {
	note := &BetNote{
		Owner:      randomAddress(),
		BetID:      big.NewInt(7),
		Bet:        true,
		EscrowRand: big.NewInt(99),
	}
	if note.Commitment().Cmp(note.Commitment()) != 0 {
		t.Error("commitment is not deterministic")
	}
	other := &BetNote{Owner: note.Owner, BetID: note.BetID, Bet: false, EscrowRand: note.EscrowRand}
	if note.Commitment().Cmp(other.Commitment()) == 0 {
		t.Error("flipping the guess must change the commitment")
	}

	// Result notes with the same payload commit differently from bet notes
	// thanks to the domain tag.
	res := &ResultNote{Owner: note.Owner, Sender: note.Owner, BetID: note.BetID, Result: true}
	if res.Commitment().Cmp(note.Commitment()) == 0 {
		t.Error("note kinds must commit under distinct domains")
	}
}

func TestBetNullifier(t *testing.T) {
	note := &BetNote{
		Owner:      randomAddress(),
		BetID:      big.NewInt(12),
		Bet:        false,
		EscrowRand: big.NewInt(34),
	}
	n := note.Nullifier()
	if n.Sign() == 0 {
		t.Error("bet note nullifier should not be the sentinel")
	}
	if n.Cmp(note.Nullifier()) != 0 {
		t.Error("bet note nullifier is not deterministic")
	}
	if n.Cmp(RegistryTag(note.BetID)) == 0 {
		t.Error("note nullifier and registry tag must differ")
	}
}

func TestRegistryTagDependsOnlyOnID(t *testing.T) {
	id := zknotes.RandomField()
	if RegistryTag(id).Cmp(RegistryTag(new(big.Int).Set(id))) != 0 {
		t.Error("registry tag should depend only on the id value")
	}
	if RegistryTag(id).Cmp(RegistryTag(big.NewInt(1))) == 0 {
		t.Error("distinct ids should produce distinct tags")
	}
}
