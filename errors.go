package openpgp

import (
	"errors"
	"fmt"

	"github.com/vaultsandbox/openpgp-go/internal/crypto"
	"github.com/vaultsandbox/openpgp-go/util"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrInvalidArgument is returned when a parameter has the wrong type or shape.
	// It is the same value as util.ErrInvalidArgument.
	ErrInvalidArgument = util.ErrInvalidArgument

	// ErrInvalidUserID is returned when a user ID is neither "Name <email>" nor a bare email.
	ErrInvalidUserID = errors.New("invalid user ID")

	// ErrInvalidConfig is returned when configuration values cannot be parsed.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidMessage is returned when an encrypted message is malformed.
	ErrInvalidMessage = errors.New("invalid message")

	// ErrDecryptionFailed is returned when message decryption fails.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrSignatureInvalid is returned when signature verification fails.
	ErrSignatureInvalid = errors.New("signature verification failed")

	// ErrWorkerClosed is returned when requests are sent to a closed worker.
	ErrWorkerClosed = errors.New("worker has been closed")
)

// OpenPGPError is implemented by all typed errors of this package.
type OpenPGPError interface {
	error
	OpenPGPError() // marker method
}

// InvalidArgumentError reports a rejected parameter.
type InvalidArgumentError struct {
	Param   string
	Message string
	Err     error
}

func (e *InvalidArgumentError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("invalid argument %s: %s", e.Param, e.Message)
	}
	return fmt.Sprintf("invalid argument %s", e.Param)
}

// Unwrap returns the underlying error.
func (e *InvalidArgumentError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// OpenPGPError implements the OpenPGPError interface.
func (e *InvalidArgumentError) OpenPGPError() {}

// ConfigError reports a configuration value that could not be used.
type ConfigError struct {
	Key   string
	Value string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("invalid configuration: %v", e.Err)
	}
	return fmt.Sprintf("invalid configuration %s=%q: %v", e.Key, e.Value, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// OpenPGPError implements the OpenPGPError interface.
func (e *ConfigError) OpenPGPError() {}

// DecryptionError represents a failure to decrypt message content.
type DecryptionError struct {
	Stage string // "kem", "aes", "literal"
	Err   error
}

func (e *DecryptionError) Error() string {
	return fmt.Sprintf("decryption failed at %s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *DecryptionError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *DecryptionError) Is(target error) bool {
	return target == ErrDecryptionFailed
}

// OpenPGPError implements the OpenPGPError interface.
func (e *DecryptionError) OpenPGPError() {}

// SignatureVerificationError indicates potential tampering.
type SignatureVerificationError struct {
	Message string
	// IsKeyMismatch is set when the message was signed by a key other than
	// the one the caller expected.
	IsKeyMismatch bool
}

func (e *SignatureVerificationError) Error() string {
	return fmt.Sprintf("signature verification failed: %s", e.Message)
}

// Is implements errors.Is for sentinel error matching.
func (e *SignatureVerificationError) Is(target error) bool {
	return target == ErrSignatureInvalid
}

// OpenPGPError implements the OpenPGPError interface.
func (e *SignatureVerificationError) OpenPGPError() {}

// wrapError converts util and internal crypto errors to public errors.
// This ensures that errors.Is() checks work with public sentinel errors.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var argErr *util.ArgumentError
	if errors.As(err, &argErr) {
		return &InvalidArgumentError{Param: argErr.Param, Message: argErr.Error(), Err: err}
	}

	switch {
	case errors.Is(err, crypto.ErrSignerKeyMismatch):
		return &SignatureVerificationError{Message: err.Error(), IsKeyMismatch: true}
	case errors.Is(err, crypto.ErrSignatureVerificationFailed):
		return &SignatureVerificationError{Message: err.Error()}
	case errors.Is(err, crypto.ErrInvalidEnvelope):
		return fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	case errors.Is(err, crypto.ErrDecryptionFailed):
		return &DecryptionError{Stage: "aes", Err: err}
	case errors.Is(err, crypto.ErrInvalidCiphertextSize), errors.Is(err, crypto.ErrInvalidSecretKeySize):
		return &DecryptionError{Stage: "kem", Err: err}
	}

	return err
}
