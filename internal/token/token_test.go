package token

import (
	"errors"
	"math/big"
	"testing"

	"github.com/defi-wonderland/aztec-coin-toss/internal/authwit"
	"github.com/defi-wonderland/aztec-coin-toss/internal/zknotes"
)

func newTestToken(t *testing.T) (*Contract, *zknotes.NoteLog, *zknotes.Account, *zknotes.Account) {
	t.Helper()
	log := zknotes.NewNoteLog()
	alice, err := zknotes.NewAccount("alice")
	if err != nil {
		t.Fatalf("NewAccount failed: %v", err)
	}
	bob, err := zknotes.NewAccount("bob")
	if err != nil {
		t.Fatalf("NewAccount failed: %v", err)
	}
	log.RegisterAccount(alice)
	log.RegisterAccount(bob)
	return NewContract(log), log, alice, bob
}

func TestTransfer(t *testing.T) {
	tok, _, alice, bob := newTestToken(t)
	tok.Mint(alice.Address, big.NewInt(100))

	t.Run("self transfer", func(t *testing.T) {
		if err := tok.Transfer(alice.Address, bob.Address, big.NewInt(30), big.NewInt(1), alice.Address); err != nil {
			t.Fatalf("Transfer failed: %v", err)
		}
		if got := tok.BalanceOf(bob.Address); got.Cmp(big.NewInt(30)) != 0 {
			t.Errorf("bob balance = %s, want 30", got)
		}
	})

	t.Run("insufficient balance", func(t *testing.T) {
		err := tok.Transfer(alice.Address, bob.Address, big.NewInt(1000), big.NewInt(2), alice.Address)
		if !errors.Is(err, ErrInsufficientBalance) {
			t.Errorf("expected ErrInsufficientBalance, got %v", err)
		}
	})

	t.Run("delegated transfer requires authwit", func(t *testing.T) {
		consumer := zknotes.AddressFromBig(zknotes.RandomField())
		nonce := big.NewInt(3)
		err := tok.Transfer(alice.Address, bob.Address, big.NewInt(10), nonce, consumer)
		if !errors.Is(err, authwit.ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}

		w := authwit.Compute(alice.Address, consumer, "transfer",
			alice.Address.Big(), bob.Address.Big(), big.NewInt(10), nonce)
		tok.AddAuthWitness(w)
		if err := tok.Transfer(alice.Address, bob.Address, big.NewInt(10), nonce, consumer); err != nil {
			t.Fatalf("authorized transfer failed: %v", err)
		}
		// The witness is one-shot.
		err = tok.Transfer(alice.Address, bob.Address, big.NewInt(10), nonce, consumer)
		if !errors.Is(err, authwit.ErrUnauthorized) {
			t.Errorf("witness replay should fail, got %v", err)
		}
	})
}

func TestEscrowLifecycle(t *testing.T) {
	tok, log, alice, bob := newTestToken(t)
	tok.Mint(alice.Address, big.NewInt(100))

	handle, err := tok.EscrowFunds(alice.Address, alice.Address, big.NewInt(40), big.NewInt(1), alice.Address)
	if err != nil {
		t.Fatalf("EscrowFunds failed: %v", err)
	}
	if got := tok.BalanceOf(alice.Address); got.Cmp(big.NewInt(60)) != 0 {
		t.Errorf("alice balance = %s, want 60 after escrow", got)
	}
	amount, err := tok.GetEscrow(handle)
	if err != nil {
		t.Fatalf("GetEscrow failed: %v", err)
	}
	if amount.Cmp(big.NewInt(40)) != 0 {
		t.Errorf("escrow amount = %s, want 40", amount)
	}

	t.Run("broadcast escrow note", func(t *testing.T) {
		recipients := [4]zknotes.Address{alice.Address, bob.Address, zknotes.ZeroAddress, zknotes.ZeroAddress}
		if err := tok.BroadcastEscrowNoteFor(recipients, handle); err != nil {
			t.Fatalf("BroadcastEscrowNoteFor failed: %v", err)
		}
		for _, acct := range []*zknotes.Account{alice, bob} {
			notes := log.ScanFor(acct)
			if len(notes) != 1 {
				t.Fatalf("%s should recognize 1 escrow note, got %d", acct.Name, len(notes))
			}
			if notes[0].Fields[1].Cmp(big.NewInt(40)) != 0 {
				t.Errorf("%s sees escrow amount %s, want 40", acct.Name, notes[0].Fields[1])
			}
			if notes[0].Fields[2].Cmp(handle) != 0 {
				t.Errorf("%s sees wrong escrow randomness", acct.Name)
			}
		}
	})

	t.Run("settle pays recipient and consumes escrow", func(t *testing.T) {
		if err := tok.SettleEscrow(alice.Address, bob.Address, handle, big.NewInt(2), alice.Address); err != nil {
			t.Fatalf("SettleEscrow failed: %v", err)
		}
		if got := tok.BalanceOf(bob.Address); got.Cmp(big.NewInt(40)) != 0 {
			t.Errorf("bob balance = %s, want 40", got)
		}
		if _, err := tok.GetEscrow(handle); !errors.Is(err, ErrUnknownEscrow) {
			t.Errorf("escrow should be consumed, got %v", err)
		}
	})

	t.Run("settle unknown escrow", func(t *testing.T) {
		err := tok.SettleEscrow(alice.Address, bob.Address, zknotes.RandomField(), big.NewInt(3), alice.Address)
		if !errors.Is(err, ErrUnknownEscrow) {
			t.Errorf("expected ErrUnknownEscrow, got %v", err)
		}
	})
}

func TestSettleEscrowDelegated(t *testing.T) {
	tok, _, alice, bob := newTestToken(t)
	tok.Mint(alice.Address, big.NewInt(50))

	handle, err := tok.EscrowFunds(alice.Address, alice.Address, big.NewInt(50), big.NewInt(1), alice.Address)
	if err != nil {
		t.Fatalf("EscrowFunds failed: %v", err)
	}

	consumer := zknotes.AddressFromBig(zknotes.RandomField())
	nonce := big.NewInt(9)
	err = tok.SettleEscrow(alice.Address, bob.Address, handle, nonce, consumer)
	if !errors.Is(err, authwit.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	w := authwit.Compute(alice.Address, consumer, "settle_escrow", handle, bob.Address.Big(), nonce)
	tok.AddAuthWitness(w)
	if err := tok.SettleEscrow(alice.Address, bob.Address, handle, nonce, consumer); err != nil {
		t.Fatalf("authorized settle failed: %v", err)
	}
	if got := tok.BalanceOf(bob.Address); got.Cmp(big.NewInt(50)) != 0 {
		t.Errorf("bob balance = %s, want 50", got)
	}
}
