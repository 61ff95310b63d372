package crypto

import (
	"bytes"
	"crypto/rand"
	"errors"
	"testing"
)

func randomBytes(t testing.TB, n int) []byte {
	t.Helper()
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		t.Fatal(err)
	}
	return b
}

func TestAESGCM_RoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		plaintext []byte
		aad       []byte
	}{
		{"empty", []byte{}, nil},
		{"simple", []byte("hello world"), nil},
		{"with aad", []byte("hello world"), []byte("header")},
		{"binary", []byte{0x00, 0xff, 0x7f, 0x80}, []byte{0x01}},
		{"large", make([]byte, 10000), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := randomBytes(t, AESKeySize)
			nonce := randomBytes(t, AESNonceSize)

			ciphertext, err := encryptAESGCM(key, nonce, tt.aad, tt.plaintext)
			if err != nil {
				t.Fatalf("encryptAESGCM() error = %v", err)
			}

			if want := len(tt.plaintext) + AESTagSize; len(ciphertext) != want {
				t.Errorf("ciphertext length = %d, want %d", len(ciphertext), want)
			}

			decrypted, err := decryptAESGCM(key, nonce, tt.aad, ciphertext)
			if err != nil {
				t.Fatalf("decryptAESGCM() error = %v", err)
			}

			if !bytes.Equal(decrypted, tt.plaintext) {
				t.Errorf("decrypted = %v, want %v", decrypted, tt.plaintext)
			}
		})
	}
}

func TestAESGCM_InvalidSizes(t *testing.T) {
	tests := []struct {
		name    string
		key     []byte
		nonce   []byte
		wantErr error
	}{
		{"short key", make([]byte, 16), make([]byte, AESNonceSize), ErrInvalidKeySize},
		{"long key", make([]byte, 64), make([]byte, AESNonceSize), ErrInvalidKeySize},
		{"short nonce", make([]byte, AESKeySize), make([]byte, 8), ErrInvalidNonceSize},
		{"long nonce", make([]byte, AESKeySize), make([]byte, 16), ErrInvalidNonceSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := encryptAESGCM(tt.key, tt.nonce, nil, []byte("x"))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("encryptAESGCM() error = %v, want %v", err, tt.wantErr)
			}
			_, err = decryptAESGCM(tt.key, tt.nonce, nil, make([]byte, 32))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("decryptAESGCM() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAESGCM_Tampering(t *testing.T) {
	key := randomBytes(t, AESKeySize)
	nonce := randomBytes(t, AESNonceSize)
	aad := []byte("aad")

	ciphertext, err := encryptAESGCM(key, nonce, aad, []byte("secret message"))
	if err != nil {
		t.Fatal(err)
	}

	t.Run("flipped bit", func(t *testing.T) {
		tampered := bytes.Clone(ciphertext)
		tampered[0] ^= 0x01
		if _, err := decryptAESGCM(key, nonce, aad, tampered); !errors.Is(err, ErrDecryptionFailed) {
			t.Errorf("expected ErrDecryptionFailed, got %v", err)
		}
	})

	t.Run("wrong aad", func(t *testing.T) {
		if _, err := decryptAESGCM(key, nonce, []byte("other"), ciphertext); !errors.Is(err, ErrDecryptionFailed) {
			t.Errorf("expected ErrDecryptionFailed, got %v", err)
		}
	})

	t.Run("wrong key", func(t *testing.T) {
		if _, err := decryptAESGCM(randomBytes(t, AESKeySize), nonce, aad, ciphertext); !errors.Is(err, ErrDecryptionFailed) {
			t.Errorf("expected ErrDecryptionFailed, got %v", err)
		}
	})
}

func TestDeriveKey(t *testing.T) {
	secret := bytes.Repeat([]byte{0x01}, MLKEMSharedKeySize)
	ct := bytes.Repeat([]byte{0x02}, MLKEMCiphertextSize)

	k1, err := deriveKey(secret, []byte("aad"), ct)
	if err != nil {
		t.Fatalf("deriveKey() error = %v", err)
	}
	if len(k1) != AESKeySize {
		t.Errorf("key length = %d, want %d", len(k1), AESKeySize)
	}

	k2, _ := deriveKey(secret, []byte("aad"), ct)
	if !bytes.Equal(k1, k2) {
		t.Error("deriveKey() is not deterministic")
	}

	k3, _ := deriveKey(secret, []byte("other"), ct)
	if bytes.Equal(k1, k3) {
		t.Error("deriveKey() ignores the AAD")
	}
}

func BenchmarkEncryptAESGCM(b *testing.B) {
	key := randomBytes(b, AESKeySize)
	nonce := randomBytes(b, AESNonceSize)
	plaintext := make([]byte, 1024)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = encryptAESGCM(key, nonce, nil, plaintext)
	}
}
