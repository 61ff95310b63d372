package crypto

import (
	"bytes"
	"fmt"
	"io"
)

// Envelope is a signed, encrypted payload addressed to one ML-KEM-768 key.
// All fields are raw bytes so an envelope can be handed between goroutines
// without re-encoding.
type Envelope struct {
	// V is the envelope layout version.
	V int
	// CtKem is the ML-KEM-768 ciphertext.
	CtKem []byte
	// Nonce is the AES-GCM nonce.
	Nonce []byte
	// AAD is the additional authenticated data.
	AAD []byte
	// Ciphertext is the AES-GCM ciphertext including its tag.
	Ciphertext []byte
	// Sig is the ML-DSA-65 signature over the transcript.
	Sig []byte
	// SignerPk is the signer's ML-DSA-65 public key.
	SignerPk []byte
}

// Seal encrypts plaintext to recipient and signs the result with signer.
//
// The process:
//  1. ML-KEM-768 encapsulation against the recipient public key
//  2. HKDF-SHA-512 key derivation using the shared secret, AAD, and KEM ciphertext
//  3. AES-256-GCM encryption under a fresh random nonce
//  4. ML-DSA-65 signature over the transcript
func Seal(recipient []byte, signer *SigningKey, plaintext, aad []byte) (*Envelope, error) {
	if signer == nil {
		return nil, fmt.Errorf("%w: missing signing key", ErrInvalidEnvelope)
	}

	ctKem, sharedSecret, err := Encapsulate(recipient)
	if err != nil {
		return nil, fmt.Errorf("encapsulate: %w", err)
	}

	aesKey, err := deriveKey(sharedSecret, aad, ctKem)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}

	nonce := make([]byte, AESNonceSize)
	if _, err := io.ReadFull(random(), nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	ciphertext, err := encryptAESGCM(aesKey, nonce, aad, plaintext)
	if err != nil {
		return nil, fmt.Errorf("encrypt: %w", err)
	}

	env := &Envelope{
		V:          EnvelopeVersion,
		CtKem:      ctKem,
		Nonce:      nonce,
		AAD:        aad,
		Ciphertext: ciphertext,
		SignerPk:   signer.PublicKey,
	}
	env.Sig = signer.Sign(env.transcript())
	return env, nil
}

// VerifySignature verifies the ML-DSA-65 signature on the envelope. When
// pinned is non-nil the envelope must also have been signed by that key.
// CRITICAL: This MUST be called BEFORE Open.
func VerifySignature(env *Envelope, pinned []byte) error {
	if env == nil || env.V != EnvelopeVersion {
		return ErrInvalidEnvelope
	}
	if pinned != nil && !bytes.Equal(env.SignerPk, pinned) {
		return ErrSignerKeyMismatch
	}
	return Verify(env.SignerPk, env.transcript(), env.Sig)
}

// Open decrypts an envelope with the recipient keypair.
//
// Security: This function does NOT verify signatures. Callers MUST call
// [VerifySignature] before opening.
func Open(env *Envelope, keypair *Keypair) ([]byte, error) {
	if env == nil || env.V != EnvelopeVersion || keypair == nil {
		return nil, ErrInvalidEnvelope
	}

	sharedSecret, err := keypair.Decapsulate(env.CtKem)
	if err != nil {
		return nil, fmt.Errorf("decapsulate: %w", err)
	}

	aesKey, err := deriveKey(sharedSecret, env.AAD, env.CtKem)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}

	plaintext, err := decryptAESGCM(aesKey, env.Nonce, env.AAD, env.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}

	return plaintext, nil
}

func (e *Envelope) transcript() []byte {
	return buildTranscript(e.V, e.CtKem, e.Nonce, e.AAD, e.Ciphertext, e.SignerPk)
}

// buildTranscript constructs the signature transcript.
func buildTranscript(version int, ctKem, nonce, aad, ciphertext, signerPk []byte) []byte {
	size := 1 + len(AlgsCiphersuite) + len(HKDFContext) +
		len(ctKem) + len(nonce) + len(aad) + len(ciphertext) + len(signerPk)
	transcript := make([]byte, 0, size)

	transcript = append(transcript, byte(version))
	transcript = append(transcript, AlgsCiphersuite...)
	transcript = append(transcript, HKDFContext...)

	transcript = append(transcript, ctKem...)
	transcript = append(transcript, nonce...)
	transcript = append(transcript, aad...)
	transcript = append(transcript, ciphertext...)
	transcript = append(transcript, signerPk...)

	return transcript
}
