package openpgp

import (
	"bytes"
	"fmt"

	"github.com/vaultsandbox/openpgp-go/internal/codec"
	"github.com/vaultsandbox/openpgp-go/internal/crypto"
	"github.com/vaultsandbox/openpgp-go/util"
)

// Format is the literal data format of a message.
type Format byte

// Literal data formats.
const (
	FormatBinary Format = 'b'
	FormatText   Format = 't'
	FormatUTF8   Format = 'u'
)

func (f Format) isText() bool {
	return f == FormatText || f == FormatUTF8
}

// Message is plaintext literal data. Text messages carry UTF-8 with native
// line endings in Data; they are canonicalized to CRLF only inside the
// encrypted envelope.
type Message struct {
	Format   Format
	Filename string
	Data     []byte
}

// NewTextMessage creates a UTF-8 text message. Invalid UTF-8 in text is
// replaced with U+FFFD.
func NewTextMessage(text string) *Message {
	return &Message{Format: FormatUTF8, Data: util.EncodeUTF8(text)}
}

// NewBinaryMessage creates a binary message. data is not copied.
func NewBinaryMessage(data []byte) *Message {
	return &Message{Format: FormatBinary, Data: data}
}

// Text decodes Data as UTF-8.
func (m *Message) Text() (string, error) {
	text, err := util.DecodeUTF8(m.Data)
	return text, wrapError(err)
}

func (m *Message) clone() *Message {
	return &Message{Format: m.Format, Filename: m.Filename, Data: bytes.Clone(m.Data)}
}

// EncryptedMessage is a signed, encrypted message as produced by Encrypt.
type EncryptedMessage struct {
	Version       int    `cbor:"1,keyasint"`
	KEMCiphertext []byte `cbor:"2,keyasint"`
	Nonce         []byte `cbor:"3,keyasint"`
	AAD           []byte `cbor:"4,keyasint"`
	Ciphertext    []byte `cbor:"5,keyasint"`
	Signature     []byte `cbor:"6,keyasint"`
	SignerKey     []byte `cbor:"7,keyasint"`
}

// encryptedMessage has the fields of EncryptedMessage without its methods, so
// the CBOR codec does not call back into MarshalBinary.
type encryptedMessage EncryptedMessage

// MarshalBinary encodes the message as deterministic CBOR.
func (em *EncryptedMessage) MarshalBinary() ([]byte, error) {
	return codec.Marshal((*encryptedMessage)(em))
}

// UnmarshalBinary decodes a message produced by MarshalBinary.
func (em *EncryptedMessage) UnmarshalBinary(data []byte) error {
	var decoded EncryptedMessage
	if err := codec.Unmarshal(data, (*encryptedMessage)(&decoded)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if decoded.Version != crypto.EnvelopeVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrInvalidMessage, decoded.Version)
	}
	*em = decoded
	return nil
}

func (em *EncryptedMessage) clone() *EncryptedMessage {
	return &EncryptedMessage{
		Version:       em.Version,
		KEMCiphertext: bytes.Clone(em.KEMCiphertext),
		Nonce:         bytes.Clone(em.Nonce),
		AAD:           bytes.Clone(em.AAD),
		Ciphertext:    bytes.Clone(em.Ciphertext),
		Signature:     bytes.Clone(em.Signature),
		SignerKey:     bytes.Clone(em.SignerKey),
	}
}

func (em *EncryptedMessage) envelope() *crypto.Envelope {
	return &crypto.Envelope{
		V:          em.Version,
		CtKem:      em.KEMCiphertext,
		Nonce:      em.Nonce,
		AAD:        em.AAD,
		Ciphertext: em.Ciphertext,
		Sig:        em.Signature,
		SignerPk:   em.SignerKey,
	}
}

// literal is the plaintext sealed inside an envelope.
type literal struct {
	Format   byte   `cbor:"1,keyasint"`
	Filename string `cbor:"2,keyasint"`
	Data     []byte `cbor:"3,keyasint"`
}

// Encrypt encrypts msg to recipient and signs it with signer. Text messages
// have their line endings canonicalized to CRLF before encryption.
func Encrypt(msg *Message, recipient, signer *Key) (*EncryptedMessage, error) {
	if msg == nil {
		return nil, &InvalidArgumentError{Param: "message", Message: "message is required"}
	}
	if err := recipient.validate("recipient"); err != nil {
		return nil, err
	}
	if err := signer.validate("signer"); err != nil {
		return nil, err
	}

	data := msg.Data
	switch {
	case msg.Format.isText():
		data = util.CanonicalizeEOL(data)
	case msg.Format != FormatBinary:
		return nil, &InvalidArgumentError{Param: "message", Message: fmt.Sprintf("unknown format %q", byte(msg.Format))}
	}

	plaintext, err := codec.Marshal(literal{Format: byte(msg.Format), Filename: msg.Filename, Data: data})
	if err != nil {
		return nil, fmt.Errorf("encode literal: %w", err)
	}

	// AAD is the recipient fingerprint and is covered by the signature.
	aad := util.EncodeUTF8(recipient.Fingerprint())
	env, err := crypto.Seal(recipient.encryption.PublicKey, signer.signing, plaintext, aad)
	if err != nil {
		return nil, wrapError(err)
	}

	return &EncryptedMessage{
		Version:       env.V,
		KEMCiphertext: env.CtKem,
		Nonce:         env.Nonce,
		AAD:           env.AAD,
		Ciphertext:    env.Ciphertext,
		Signature:     env.Sig,
		SignerKey:     env.SignerPk,
	}, nil
}

// Decrypt verifies and decrypts em with recipient. When signer is non-nil the
// message must have been signed by that key. Text messages are returned with
// LF line endings.
//
// The signature is always verified before any decryption is attempted.
func Decrypt(em *EncryptedMessage, recipient, signer *Key) (*Message, error) {
	if em == nil {
		return nil, &InvalidArgumentError{Param: "message", Message: "message is required"}
	}
	if err := recipient.validate("recipient"); err != nil {
		return nil, err
	}

	var pinned []byte
	if signer != nil {
		if err := signer.validate("signer"); err != nil {
			return nil, err
		}
		pinned = signer.signing.PublicKey
	}

	env := em.envelope()
	if err := crypto.VerifySignature(env, pinned); err != nil {
		return nil, wrapError(err)
	}

	// Signed for a different recipient.
	if want := util.EncodeUTF8(recipient.Fingerprint()); !bytes.Equal(em.AAD, want) {
		return nil, &DecryptionError{Stage: "kem", Err: fmt.Errorf("message is not addressed to this key")}
	}

	plaintext, err := crypto.Open(env, recipient.encryption)
	if err != nil {
		return nil, wrapError(err)
	}

	var lit literal
	if err := codec.Unmarshal(plaintext, &lit); err != nil {
		return nil, &DecryptionError{Stage: "literal", Err: err}
	}

	msg := &Message{Format: Format(lit.Format), Filename: lit.Filename, Data: lit.Data}
	if msg.Format.isText() {
		msg.Data = util.NativeEOL(msg.Data)
	}
	return msg, nil
}
