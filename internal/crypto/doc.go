// Package crypto provides the cryptographic primitives behind message
// encryption and signing. It implements post-quantum key encapsulation,
// authenticated encryption, and digital signatures using modern,
// standardized algorithms.
//
// # Algorithm Suite
//
//   - ML-KEM-768 (NIST FIPS 203): Post-quantum key encapsulation mechanism
//     for establishing per-message shared secrets.
//
//   - ML-DSA-65 (NIST FIPS 204): Post-quantum digital signature algorithm
//     for authenticating envelopes.
//
//   - AES-256-GCM: Authenticated encryption with associated data (AEAD)
//     for message content.
//
//   - HKDF-SHA-512 (RFC 5869): Key derivation function for deriving AES keys
//     from KEM shared secrets with domain separation.
//
// # Critical Security Notes
//
// Signature verification MUST be performed BEFORE decryption. Always use
// [VerifySignature] before [Open]:
//
//	if err := crypto.VerifySignature(env, signerPk); err != nil {
//	    return nil, fmt.Errorf("signature verification failed: %w", err)
//	}
//	plaintext, err := crypto.Open(env, keypair)
//
// AES-GCM nonces MUST be unique for each encryption with the same key. [Seal]
// derives a fresh key per envelope and draws a fresh random nonce.
//
// # Key Management
//
// Use [GenerateKeypair] to create a new ML-KEM-768 keypair and
// [GenerateSigningKey] for an ML-DSA-65 signing key. [ValidateKeypair] checks
// the sizes and encoding of a keypair before it is used.
package crypto
