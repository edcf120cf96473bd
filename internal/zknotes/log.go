// log.go - Append-only note log, commitment list, and nullifier set.
//
// The log is the only shared state between parties: contracts append
// encrypted notes, commitments, and nullifiers; parties scan for notes they
// can decrypt. Nothing is ever removed.

package zknotes

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"os"
	"sync"

	bls12377 "github.com/consensys/gnark-crypto/ecc/bls12-377"
)

// ErrNullifierExists is returned when a nullifier is published twice. The
// host platform rejects the offending transaction on inclusion; callers
// treat this as a fatal abort.
var ErrNullifierExists = errors.New("nullifier already published")

// EncryptedNote is one entry of the note log: an ephemeral DH public key and
// the masked note fields. The final ciphertext slot carries the note's
// commitment so the intended recipient can recognize a successful decryption.
type EncryptedNote struct {
	EphemeralPub G1AffineJSON `json:"ephemeral_pub"`
	Ciphertext   []*big.Int   `json:"ciphertext"`
}

// DecryptedNote is a note recovered by scanning the log.
type DecryptedNote struct {
	Fields     []*big.Int
	Commitment *big.Int
}

// NoteLog is the canonical append-only log.
type NoteLog struct {
	mu sync.Mutex

	Commitments []*big.Int       `json:"commitments"`
	Nullifiers  []*big.Int       `json:"nullifiers"`
	Notes       []*EncryptedNote `json:"notes"`

	nullifierSet  map[Address]struct{}
	commitmentSet map[Address]struct{}
	directory     map[Address]*bls12377.G1Affine
}

// NewNoteLog creates an empty log.
func NewNoteLog() *NoteLog {
	return &NoteLog{
		nullifierSet:  make(map[Address]struct{}),
		commitmentSet: make(map[Address]struct{}),
		directory:     make(map[Address]*bls12377.G1Affine),
	}
}

// RegisterAccount records an account's public key so contracts can encrypt
// notes to its address.
func (l *NoteLog) RegisterAccount(acct *Account) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.directory[acct.Address] = acct.Keys.Pk
}

// PubKeyOf resolves an address to its registered public key.
func (l *NoteLog) PubKeyOf(addr Address) (*bls12377.G1Affine, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	pk, ok := l.directory[addr]
	if !ok {
		return nil, fmt.Errorf("no public key registered for %s", addr)
	}
	return pk, nil
}

// EmitNoteTo encrypts fields (plus the commitment as trailing slot) to the
// recipient under a fresh ephemeral key, and appends both the ciphertext and
// the commitment to the log.
func (l *NoteLog) EmitNoteTo(recipient Address, fields []*big.Int, cm *big.Int) error {
	pk, err := l.PubKeyOf(recipient)
	if err != nil {
		return err
	}
	eph, err := GenerateDHKeyPair()
	if err != nil {
		return err
	}
	shared := ComputeDHShared(eph.Sk, pk)
	plain := make([]*big.Int, 0, len(fields)+1)
	plain = append(plain, fields...)
	plain = append(plain, cm)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.Notes = append(l.Notes, &EncryptedNote{
		EphemeralPub: G1AffineJSON{*eph.Pk},
		Ciphertext:   EncryptFields(plain, shared),
	})
	l.appendCommitmentLocked(cm)
	return nil
}

// EmitCommitment appends a commitment without an accompanying note.
func (l *NoteLog) EmitCommitment(cm *big.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.appendCommitmentLocked(cm)
}

func (l *NoteLog) appendCommitmentLocked(cm *big.Int) {
	key := AddressFromBig(cm)
	if _, ok := l.commitmentSet[key]; ok {
		return
	}
	l.commitmentSet[key] = struct{}{}
	l.Commitments = append(l.Commitments, new(big.Int).Set(cm))
}

// HasCommitment reports whether a commitment is in the log.
func (l *NoteLog) HasCommitment(cm *big.Int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.commitmentSet[AddressFromBig(cm)]
	return ok
}

// EmitNullifier publishes a nullifier. Publishing the same nullifier twice
// fails with ErrNullifierExists; this is the platform's sole replay guard.
func (l *NoteLog) EmitNullifier(n *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := AddressFromBig(n)
	if _, ok := l.nullifierSet[key]; ok {
		return ErrNullifierExists
	}
	l.nullifierSet[key] = struct{}{}
	l.Nullifiers = append(l.Nullifiers, new(big.Int).Set(n))
	return nil
}

// HasNullifier reports whether a nullifier has been published.
func (l *NoteLog) HasNullifier(n *big.Int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.nullifierSet[AddressFromBig(n)]
	return ok
}

// ScanFor trial-decrypts every note in the log with the account's key and
// returns the ones addressed to it. A decryption counts as recognized when
// its trailing slot matches a commitment present in the log.
func (l *NoteLog) ScanFor(acct *Account) []*DecryptedNote {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []*DecryptedNote
	for _, note := range l.Notes {
		shared := ComputeDHShared(acct.Keys.Sk, &note.EphemeralPub.G1Affine)
		plain := DecryptFields(note.Ciphertext, shared)
		if len(plain) < 2 {
			continue
		}
		cm := plain[len(plain)-1]
		if _, ok := l.commitmentSet[AddressFromBig(cm)]; !ok {
			continue
		}
		out = append(out, &DecryptedNote{
			Fields:     plain[:len(plain)-1],
			Commitment: cm,
		})
	}
	return out
}

// SaveToFile persists the log as JSON, overwriting any existing file.
func (l *NoteLog) SaveToFile(path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(l)
}

// LoadNoteLogFromFile loads a persisted log and rebuilds its indexes.
// The account directory is not persisted; re-register accounts after loading.
func LoadNoteLogFromFile(path string) (*NoteLog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	l := NewNoteLog()
	dec := json.NewDecoder(f)
	if err := dec.Decode(l); err != nil {
		return nil, err
	}
	for _, cm := range l.Commitments {
		l.commitmentSet[AddressFromBig(cm)] = struct{}{}
	}
	for _, n := range l.Nullifiers {
		l.nullifierSet[AddressFromBig(n)] = struct{}{}
	}
	return l, nil
}
