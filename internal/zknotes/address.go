// address.go - Field-encoded addresses for contracts and accounts.

package zknotes

import (
	"fmt"
	"math/big"

	bls12377 "github.com/consensys/gnark-crypto/ecc/bls12-377"
	fr "github.com/consensys/gnark-crypto/ecc/bw6-761/fr"
	"github.com/mr-tron/base58"
)

// Address identifies a party or contract. It is a single field element in
// canonical fixed-width encoding, usable as a map key.
type Address [FieldBytes]byte

// ZeroAddress is the empty address, used for unused recipient slots.
var ZeroAddress Address

// AddressFromBig encodes a field element as an address.
func AddressFromBig(v *big.Int) Address {
	var e fr.Element
	e.SetBigInt(v)
	return Address(e.Bytes())
}

// AddressOfPubKey derives the address of a DH public key: MiMC(pk.X, pk.Y).
func AddressOfPubKey(pk *bls12377.G1Affine) Address {
	x := pk.X.Bytes()
	y := pk.Y.Bytes()
	return AddressFromBig(HashFields(ReduceToField(x[:]), ReduceToField(y[:])))
}

// Big returns the address as a field element.
func (a Address) Big() *big.Int {
	return new(big.Int).SetBytes(a[:])
}

// IsZero reports whether the address is the zero sentinel.
func (a Address) IsZero() bool {
	return a == ZeroAddress
}

// String renders the address in base58 for logs and API responses.
func (a Address) String() string {
	return base58.Encode(a[:])
}

// ParseAddress decodes a base58 address string.
func ParseAddress(s string) (Address, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return ZeroAddress, fmt.Errorf("invalid address: %w", err)
	}
	if len(b) != FieldBytes {
		return ZeroAddress, fmt.Errorf("invalid address length: %d", len(b))
	}
	var a Address
	copy(a[:], b)
	return a, nil
}
