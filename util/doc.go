// Package util holds the stateless helpers the key, packet and message code
// branches on: value classification, user ID validation, zero-copy transfer
// lists, and UTF-8 text conversion.
//
// # Classification
//
// [IsString], [IsArray] and [IsUint8Array] are total: they never panic and
// return false for nil or anything that does not match. A value is classified
// by its ancestry (pointer and interface targets, and the first embedded
// field of a struct) compared by reflect kind, so types declared in other
// packages classify the same as the built-in ones:
//
//	util.IsUint8Array(net.IP{127, 0, 0, 1}) // true
//	util.IsArray(struct{ Length int }{3})   // false
//
// # Identities
//
// [IsEmailAddress] accepts "local@domain" and [IsUserID] accepts exactly
// "Display Name <local@domain>". Neither trims nor folds case.
//
// # Transfer lists
//
// [GetTransferables] walks a value graph and returns the distinct byte
// buffers in it, or nil when zero-copy is off or nothing was found. The
// configuration is passed in through [ZeroCopySource]; this package keeps no
// global state.
//
// # Text
//
// [DecodeUTF8] fails only when the input is neither bytes nor text:
//
//	_, err := util.DecodeUTF8(map[string]bool{"chameleon": true})
//	errors.Is(err, util.ErrInvalidArgument) // true
//	err.Error() // Parameter "utf8" is not of type string
package util
