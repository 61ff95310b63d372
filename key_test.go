package openpgp

import (
	"errors"
	"testing"

	"github.com/vaultsandbox/openpgp-go/internal/crypto"
)

func testKey(t testing.TB, userIDs ...string) *Key {
	t.Helper()
	if len(userIDs) == 0 {
		userIDs = []string{"Test User <test@example.com>"}
	}
	key, err := GenerateKey(userIDs...)
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}
	return key
}

func TestGenerateKey(t *testing.T) {
	key := testKey(t, "Test User <test@example.com>", "other@example.com")

	ids := key.UserIDs()
	if len(ids) != 2 || ids[0] != "Test User <test@example.com>" || ids[1] != "other@example.com" {
		t.Errorf("UserIDs() = %v", ids)
	}
	ids[0] = "mutated"
	if key.UserIDs()[0] == "mutated" {
		t.Error("UserIDs() should return a copy")
	}

	primary := key.PrimaryUserID()
	if primary.Name != "Test User" || primary.Email != "test@example.com" {
		t.Errorf("PrimaryUserID() = %+v", primary)
	}
	if key.CreatedAt().IsZero() {
		t.Error("CreatedAt() is zero")
	}
	if len(key.Fingerprint()) != 64 {
		t.Errorf("Fingerprint() length = %d, want 64", len(key.Fingerprint()))
	}

	encKey, err := crypto.FromBase64URL(key.EncryptionKey())
	if err != nil || len(encKey) != crypto.MLKEMPublicKeySize {
		t.Errorf("EncryptionKey() decodes to %d bytes, err = %v", len(encKey), err)
	}
	sigKey, err := crypto.FromBase64URL(key.SigningKey())
	if err != nil || len(sigKey) != crypto.MLDSAPublicKeySize {
		t.Errorf("SigningKey() decodes to %d bytes, err = %v", len(sigKey), err)
	}
}

func TestGenerateKey_BareEmail(t *testing.T) {
	key := testKey(t, "solo@example.com")
	primary := key.PrimaryUserID()
	if primary.Name != "" || primary.Email != "solo@example.com" {
		t.Errorf("PrimaryUserID() = %+v", primary)
	}
	if primary.String() != "solo@example.com" {
		t.Errorf("PrimaryUserID().String() = %q", primary.String())
	}
}

func TestGenerateKey_InvalidUserIDs(t *testing.T) {
	tests := []struct {
		name    string
		userIDs []string
	}{
		{"none", nil},
		{"missing brackets", []string{"Test User test@example.com"}},
		{"missing name", []string{"<test@example.com>"}},
		{"bad email", []string{"Test User <test@example>"}},
		{"second invalid", []string{"ok@example.com", "not an id"}},
		{"empty", []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GenerateKey(tt.userIDs...)
			if !errors.Is(err, ErrInvalidUserID) {
				t.Errorf("expected ErrInvalidUserID, got %v", err)
			}
			if !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestKey_FingerprintDistinct(t *testing.T) {
	a := testKey(t)
	b := testKey(t)
	if a.Fingerprint() == b.Fingerprint() {
		t.Error("two generated keys share a fingerprint")
	}
	if a.Fingerprint() != a.Fingerprint() {
		t.Error("Fingerprint() is not stable")
	}
}

func TestKey_Validate(t *testing.T) {
	var nilKey *Key
	if err := nilKey.validate("recipient"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("nil key: expected ErrInvalidArgument, got %v", err)
	}

	key := testKey(t)
	if err := key.validate("recipient"); err != nil {
		t.Errorf("validate() error = %v", err)
	}

	broken := *key
	broken.encryption = &crypto.Keypair{PublicKey: []byte{1}, SecretKey: []byte{2}}
	err := broken.validate("recipient")
	var argErr *InvalidArgumentError
	if !errors.As(err, &argErr) || argErr.Param != "recipient" {
		t.Errorf("expected InvalidArgumentError for recipient, got %v", err)
	}
}
