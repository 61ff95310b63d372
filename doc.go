// Package openpgp provides post-quantum message encryption with OpenPGP-style
// keys, user IDs and literal data.
//
// Keys pair ML-KEM-768 for key encapsulation with ML-DSA-65 for signatures.
// Messages are sealed with AES-256-GCM under an HKDF-SHA-512 derived key and
// signed over the whole envelope.
//
// Basic usage:
//
//	key, err := openpgp.GenerateKey("Alice <alice@example.com>")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	encrypted, err := openpgp.Encrypt(openpgp.NewTextMessage("hello"), key, key)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	msg, err := openpgp.Decrypt(encrypted, key, key)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Work can be moved off the calling goroutine with a Worker. With
// WithZeroCopy(true) the request buffers are handed over instead of copied:
//
//	cfg := openpgp.NewConfig(openpgp.WithZeroCopy(true))
//	w := openpgp.NewWorker(cfg)
//	defer w.Close()
//
//	encrypted, err := w.Encrypt(ctx, msg, key, key)
//
// The type checks, user ID validation and UTF-8 helpers used throughout
// live in the util package.
package openpgp
