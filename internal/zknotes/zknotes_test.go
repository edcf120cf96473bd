package zknotes

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"
)

func TestHashFields(t *testing.T) {
	a := big.NewInt(1234)
	b := big.NewInt(5678)

	h1 := HashFields(a, b)
	h2 := HashFields(a, b)
	if h1.Cmp(h2) != 0 {
		t.Error("HashFields is not deterministic")
	}
	if HashFields(a, b).Cmp(HashFields(b, a)) == 0 {
		t.Error("HashFields should be order-sensitive")
	}
	if h1.Cmp(Modulus()) >= 0 {
		t.Error("HashFields output not reduced into the field")
	}
}

func TestDHSharedSecret(t *testing.T) {
	kp1, err := GenerateDHKeyPair()
	if err != nil {
		t.Fatalf("DH key generation failed: %v", err)
	}
	kp2, err := GenerateDHKeyPair()
	if err != nil {
		t.Fatalf("DH key generation failed: %v", err)
	}
	s1 := ComputeDHShared(kp1.Sk, kp2.Pk)
	s2 := ComputeDHShared(kp2.Sk, kp1.Pk)
	if !s1.Equal(s2) {
		t.Error("DH shared secrets do not match")
	}
}

func TestEncryptDecryptFields(t *testing.T) {
	kp1, _ := GenerateDHKeyPair()
	kp2, _ := GenerateDHKeyPair()
	shared := ComputeDHShared(kp1.Sk, kp2.Pk)

	fields := []*big.Int{big.NewInt(7), RandomField(), new(big.Int), RandomField()}
	ct := EncryptFields(fields, shared)
	pt := DecryptFields(ct, shared)
	for i := range fields {
		if fields[i].Cmp(pt[i]) != 0 {
			t.Errorf("field %d: got %s, want %s", i, pt[i], fields[i])
		}
	}

	// A different shared key must not decrypt to the plaintext.
	other := ComputeDHShared(kp2.Sk, kp2.Pk)
	garbled := DecryptFields(ct, other)
	if garbled[1].Cmp(fields[1]) == 0 {
		t.Error("decryption under wrong key should not recover plaintext")
	}
}

func TestAddressRoundTrip(t *testing.T) {
	addr := AddressFromBig(RandomField())
	parsed, err := ParseAddress(addr.String())
	if err != nil {
		t.Fatalf("ParseAddress failed: %v", err)
	}
	if parsed != addr {
		t.Error("base58 address round trip mismatch")
	}
	if _, err := ParseAddress("not-base58-!!"); err == nil {
		t.Error("expected error for invalid base58")
	}
}

func TestNoteLogNullifiers(t *testing.T) {
	log := NewNoteLog()
	n := RandomField()

	if log.HasNullifier(n) {
		t.Error("fresh log should not contain nullifier")
	}
	if err := log.EmitNullifier(n); err != nil {
		t.Fatalf("EmitNullifier failed: %v", err)
	}
	if !log.HasNullifier(n) {
		t.Error("nullifier should be present after emit")
	}
	if err := log.EmitNullifier(n); err != ErrNullifierExists {
		t.Errorf("expected ErrNullifierExists, got %v", err)
	}
}

func TestNoteLogScan(t *testing.T) {
	log := NewNoteLog()
	alice, err := NewAccount("alice")
	if err != nil {
		t.Fatalf("NewAccount failed: %v", err)
	}
	bob, err := NewAccount("bob")
	if err != nil {
		t.Fatalf("NewAccount failed: %v", err)
	}
	log.RegisterAccount(alice)
	log.RegisterAccount(bob)

	fields := []*big.Int{big.NewInt(42), RandomField()}
	cm := HashFields(fields...)
	if err := log.EmitNoteTo(alice.Address, fields, cm); err != nil {
		t.Fatalf("EmitNoteTo failed: %v", err)
	}

	got := log.ScanFor(alice)
	if len(got) != 1 {
		t.Fatalf("alice should recognize 1 note, got %d", len(got))
	}
	if got[0].Commitment.Cmp(cm) != 0 {
		t.Error("recognized commitment mismatch")
	}
	for i := range fields {
		if got[0].Fields[i].Cmp(fields[i]) != 0 {
			t.Errorf("field %d mismatch after scan", i)
		}
	}
	if notes := log.ScanFor(bob); len(notes) != 0 {
		t.Errorf("bob should recognize 0 notes, got %d", len(notes))
	}

	if err := log.EmitNoteTo(AddressFromBig(RandomField()), fields, cm); err == nil {
		t.Error("expected error emitting to unregistered address")
	}
}

func TestNoteLogSaveLoad(t *testing.T) {
	log := NewNoteLog()
	alice, _ := NewAccount("alice")
	log.RegisterAccount(alice)

	fields := []*big.Int{big.NewInt(9)}
	cm := HashFields(fields...)
	if err := log.EmitNoteTo(alice.Address, fields, cm); err != nil {
		t.Fatalf("EmitNoteTo failed: %v", err)
	}
	n := RandomField()
	if err := log.EmitNullifier(n); err != nil {
		t.Fatalf("EmitNullifier failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "notelog.json")
	if err := log.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}
	loaded, err := LoadNoteLogFromFile(path)
	if err != nil {
		t.Fatalf("LoadNoteLogFromFile failed: %v", err)
	}
	if !loaded.HasNullifier(n) {
		t.Error("loaded log lost nullifier")
	}
	if !loaded.HasCommitment(cm) {
		t.Error("loaded log lost commitment")
	}
	if got := loaded.ScanFor(alice); len(got) != 1 {
		t.Errorf("alice should recognize 1 note in loaded log, got %d", len(got))
	}

	if _, err := LoadNoteLogFromFile(filepath.Join(os.TempDir(), "does-not-exist.json")); err == nil {
		t.Error("expected error loading missing file")
	}
}
