// Package authwit implements authorization witnesses: one-shot, caller-signed
// permissions allowing a contract to act on a party's behalf for a single
// specific call. A witness commits to who authorizes, who may consume it,
// the action selector, and the action's arguments (including a nonce), so it
// cannot be replayed or redirected.
package authwit

import (
	"errors"
	"math/big"
	"sync"

	"golang.org/x/crypto/sha3"

	"github.com/defi-wonderland/aztec-coin-toss/internal/zknotes"
)

// ErrUnauthorized is returned when no matching witness has been approved.
var ErrUnauthorized = errors.New("unauthorized: missing authorization witness")

// Witness is the digest a party pre-approves.
type Witness [32]byte

// Compute derives the witness digest for one specific call.
func Compute(onBehalfOf, consumer zknotes.Address, selector string, args ...*big.Int) Witness {
	h := sha3.New256()
	h.Write([]byte("authwit.v1"))
	h.Write(onBehalfOf[:])
	h.Write(consumer[:])
	h.Write([]byte(selector))
	for _, a := range args {
		addr := zknotes.AddressFromBig(a)
		h.Write(addr[:])
	}
	var w Witness
	copy(w[:], h.Sum(nil))
	return w
}

// Registry holds approved, not-yet-consumed witnesses.
type Registry struct {
	mu       sync.Mutex
	approved map[Witness]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{approved: make(map[Witness]struct{})}
}

// Approve records a witness. Approving twice is a no-op.
func (r *Registry) Approve(w Witness) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.approved[w] = struct{}{}
}

// Consume spends a witness. It fails with ErrUnauthorized if the witness was
// never approved or was already consumed.
func (r *Registry) Consume(w Witness) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.approved[w]; !ok {
		return ErrUnauthorized
	}
	delete(r.approved, w)
	return nil
}
