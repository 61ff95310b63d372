package openpgp

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"time"

	"github.com/vaultsandbox/openpgp-go/internal/crypto"
	"github.com/vaultsandbox/openpgp-go/util"
)

// Key holds an ML-KEM-768 encryption keypair and an ML-DSA-65 signing key
// bound to one or more user IDs. A Key is safe for concurrent use; nothing
// mutates it after GenerateKey returns.
type Key struct {
	userIDs    []string
	encryption *crypto.Keypair
	signing    *crypto.SigningKey
	created    time.Time
}

// GenerateKey creates a new key for the given user IDs. Each user ID must be
// either "Name <email>" or a bare email address, and at least one is required.
// The first user ID is the primary one.
func GenerateKey(userIDs ...string) (*Key, error) {
	if len(userIDs) == 0 {
		return nil, &InvalidArgumentError{Param: "userIDs", Message: "at least one user ID is required", Err: ErrInvalidUserID}
	}
	for _, id := range userIDs {
		if !util.IsUserID(id) && !util.IsEmailAddress(id) {
			return nil, &InvalidArgumentError{
				Param:   "userIDs",
				Message: fmt.Sprintf("%q is not a user ID or email address", id),
				Err:     ErrInvalidUserID,
			}
		}
	}

	encryption, err := crypto.GenerateKeypair()
	if err != nil {
		return nil, fmt.Errorf("generate encryption key: %w", err)
	}
	signing, err := crypto.GenerateSigningKey()
	if err != nil {
		return nil, fmt.Errorf("generate signing key: %w", err)
	}

	return &Key{
		userIDs:    slices.Clone(userIDs),
		encryption: encryption,
		signing:    signing,
		created:    time.Now().UTC(),
	}, nil
}

// UserIDs returns the user IDs in the order they were given.
func (k *Key) UserIDs() []string {
	return slices.Clone(k.userIDs)
}

// PrimaryUserID returns the first user ID split into name and email. A bare
// email address yields an empty name.
func (k *Key) PrimaryUserID() util.UserID {
	// Validated by GenerateKey.
	id, _ := util.ParseUserID(k.userIDs[0])
	return id
}

// CreatedAt returns when the key was generated.
func (k *Key) CreatedAt() time.Time {
	return k.created
}

// Fingerprint returns the lowercase hex SHA-256 of the encryption public key
// followed by the signing public key.
func (k *Key) Fingerprint() string {
	h := sha256.New()
	h.Write(k.encryption.PublicKey)
	h.Write(k.signing.PublicKey)
	return hex.EncodeToString(h.Sum(nil))
}

// EncryptionKey returns the URL-safe base64 ML-KEM-768 public key.
func (k *Key) EncryptionKey() string {
	return k.encryption.PublicKeyB64
}

// SigningKey returns the URL-safe base64 ML-DSA-65 public key.
func (k *Key) SigningKey() string {
	return crypto.ToBase64URL(k.signing.PublicKey)
}

func (k *Key) validate(param string) error {
	if k == nil || k.encryption == nil || k.signing == nil {
		return &InvalidArgumentError{Param: param, Message: "key is required"}
	}
	if !crypto.ValidateKeypair(k.encryption) {
		return &InvalidArgumentError{Param: param, Message: "malformed encryption keypair"}
	}
	return nil
}
