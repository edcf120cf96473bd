// crypto.go - Cryptographic primitives for the private note platform.
//
// Implements MiMC-based field hashing, BLS12-377 DH key exchange, and the
// additive MiMC mask-chain encryption used to deliver notes to recipients.

package zknotes

import (
	"crypto/rand"
	"math/big"

	bls12377 "github.com/consensys/gnark-crypto/ecc/bls12-377"
	bls12377_fr "github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	fr "github.com/consensys/gnark-crypto/ecc/bw6-761/fr"
	mimcNative "github.com/consensys/gnark-crypto/ecc/bw6-761/fr/mimc"
)

// FieldBytes is the canonical encoding size of one field element.
const FieldBytes = fr.Bytes

// Modulus returns the field modulus all note fields live in
// (the BW6-761 scalar field, which equals the BLS12-377 base field).
func Modulus() *big.Int {
	return fr.Modulus()
}

// ReduceToField interprets data as a big-endian integer reduced into the field.
func ReduceToField(data []byte) *big.Int {
	v := new(big.Int).SetBytes(data)
	return v.Mod(v, fr.Modulus())
}

// RandomField returns a uniformly random field element.
func RandomField() *big.Int {
	return ReduceToField(randomBytes(FieldBytes + 16))
}

// HashFields computes the MiMC hash of the given field elements.
// Each element is written as its canonical fixed-width encoding, so the
// result matches the in-circuit MiMC over the same sequence of variables.
func HashFields(fields ...*big.Int) *big.Int {
	h := mimcNative.NewMiMC()
	for _, f := range fields {
		var e fr.Element
		e.SetBigInt(f)
		b := e.Bytes()
		h.Write(b[:])
	}
	return new(big.Int).SetBytes(h.Sum(nil))
}

// randomBytes generates random bytes using crypto/rand.
func randomBytes(n int) []byte {
	b := make([]byte, n)
	rand.Read(b)
	return b
}

// DHKeyPair represents a BLS12-377 keypair for Diffie-Hellman key exchange.
type DHKeyPair struct {
	Sk *bls12377_fr.Element // Private scalar
	Pk *bls12377.G1Affine   // Public key (G1 point)
}

// GenerateDHKeyPair generates a random BLS12-377 keypair.
func GenerateDHKeyPair() (*DHKeyPair, error) {
	var sk bls12377_fr.Element
	if _, err := sk.SetRandom(); err != nil {
		return nil, err
	}
	g1Jac, _, _, _ := bls12377.Generators()
	var pk bls12377.G1Affine
	pk.FromJacobian(&g1Jac)
	pk.ScalarMultiplication(&pk, sk.BigInt(new(big.Int)))
	return &DHKeyPair{Sk: &sk, Pk: &pk}, nil
}

// ComputeDHShared computes the shared secret given our sk and their pk.
func ComputeDHShared(sk *bls12377_fr.Element, pk *bls12377.G1Affine) *bls12377.G1Affine {
	var shared bls12377.G1Affine
	shared.ScalarMultiplication(pk, sk.BigInt(new(big.Int)))
	return &shared
}

// maskChain derives n encryption masks from a DH shared point by iterating
// MiMC over its coordinates. Mask i is only computable with the shared key.
func maskChain(shared *bls12377.G1Affine, n int) []*big.Int {
	h := mimcNative.NewMiMC()
	x := shared.X.Bytes()
	y := shared.Y.Bytes()
	h.Write(x[:])
	h.Write(y[:])
	masks := make([]*big.Int, n)
	prev := h.Sum(nil)
	masks[0] = new(big.Int).SetBytes(prev)
	for i := 1; i < n; i++ {
		h.Write(prev)
		prev = h.Sum(nil)
		masks[i] = new(big.Int).SetBytes(prev)
	}
	return masks
}

// EncryptFields encrypts field elements under a DH shared key by adding the
// mask chain element-wise in the field.
func EncryptFields(fields []*big.Int, shared *bls12377.G1Affine) []*big.Int {
	masks := maskChain(shared, len(fields))
	out := make([]*big.Int, len(fields))
	for i, f := range fields {
		var e, m fr.Element
		e.SetBigInt(f)
		m.SetBigInt(masks[i])
		e.Add(&e, &m)
		out[i] = e.BigInt(new(big.Int))
	}
	return out
}

// DecryptFields inverts EncryptFields under the same shared key.
func DecryptFields(ciphertext []*big.Int, shared *bls12377.G1Affine) []*big.Int {
	masks := maskChain(shared, len(ciphertext))
	out := make([]*big.Int, len(ciphertext))
	for i, c := range ciphertext {
		var e, m fr.Element
		e.SetBigInt(c)
		m.SetBigInt(masks[i])
		e.Sub(&e, &m)
		out[i] = e.BigInt(new(big.Int))
	}
	return out
}
