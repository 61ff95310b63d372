package crypto

import (
	"fmt"

	"github.com/cloudflare/circl/sign/mldsa/mldsa65"
)

// SigningKey is an ML-DSA-65 keypair used to authenticate envelopes.
type SigningKey struct {
	// PublicKey is the raw ML-DSA-65 public key bytes.
	PublicKey []byte

	private *mldsa65.PrivateKey
}

// GenerateSigningKey creates a new ML-DSA-65 keypair.
func GenerateSigningKey() (*SigningKey, error) {
	pub, priv, err := mldsa65.GenerateKey(random())
	if err != nil {
		return nil, err
	}

	pubBytes, err := pub.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshal public key: %w", err)
	}

	return &SigningKey{PublicKey: pubBytes, private: priv}, nil
}

// Sign returns the ML-DSA-65 signature of message.
func (k *SigningKey) Sign(message []byte) []byte {
	sig := make([]byte, mldsa65.SignatureSize)
	mldsa65.SignTo(k.private, message, nil, false, sig)
	return sig
}

// Verify verifies an ML-DSA-65 signature (low-level function).
func Verify(publicKey, message, signature []byte) error {
	pk := &mldsa65.PublicKey{}
	if err := pk.UnmarshalBinary(publicKey); err != nil {
		return fmt.Errorf("%w: parse public key: %v", ErrSignatureVerificationFailed, err)
	}

	if !mldsa65.Verify(pk, message, nil, signature) {
		return ErrSignatureVerificationFailed
	}

	return nil
}
