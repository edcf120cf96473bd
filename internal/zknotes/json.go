// json.go - JSON marshaling for gnark-crypto curve points.

package zknotes

import (
	"encoding/base64"
	"fmt"

	bls12377 "github.com/consensys/gnark-crypto/ecc/bls12-377"
)

// G1AffineJSON wraps bls12377.G1Affine with base64 JSON marshaling so
// encrypted notes can be persisted alongside their ephemeral keys.
type G1AffineJSON struct {
	bls12377.G1Affine
}

// MarshalJSON implements the json.Marshaler interface.
func (p G1AffineJSON) MarshalJSON() ([]byte, error) {
	b := p.G1Affine.Marshal()
	return []byte(`"` + base64.StdEncoding.EncodeToString(b) + `"`), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (p *G1AffineJSON) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("invalid JSON string for G1AffineJSON")
	}
	b, err := base64.StdEncoding.DecodeString(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	return p.G1Affine.Unmarshal(b)
}
