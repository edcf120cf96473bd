// account.go - Party key material and addressing.

package zknotes

// Account holds a party's DH keypair and derived address. The wallet and key
// management layer proper lives off-chain; this is the minimal key material
// the platform needs to deliver and scan encrypted notes.
type Account struct {
	Name    string
	Keys    *DHKeyPair
	Address Address
}

// NewAccount creates an account with a fresh keypair.
func NewAccount(name string) (*Account, error) {
	kp, err := GenerateDHKeyPair()
	if err != nil {
		return nil, err
	}
	return &Account{
		Name:    name,
		Keys:    kp,
		Address: AddressOfPubKey(kp.Pk),
	}, nil
}
