package wallet

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"errors"
)

// LocalProvisioner generates ed25519 keypairs in process and discards the
// private key. Suitable for development and tests only; production wiring
// substitutes the custody backend.
type LocalProvisioner struct{}

// NewLocalProvisioner creates an in-process key generator.
func NewLocalProvisioner() *LocalProvisioner {
	return &LocalProvisioner{}
}

// Provision returns the hex-encoded public key of a freshly generated
// keypair.
func (p *LocalProvisioner) Provision(ctx context.Context) (string, error) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return "", errors.Join(ErrProvisionerFailed, err)
	}
	return hex.EncodeToString(pub), nil
}
