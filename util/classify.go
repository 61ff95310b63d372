package util

import "reflect"

// Kind is the logical category a value belongs to.
type Kind int

const (
	// KindUnknown is any value that is not text, a sequence, or binary.
	KindUnknown Kind = iota
	// KindString is text: a Go string or any type derived from one.
	KindString
	// KindArray is an ordered sequence of non-byte elements.
	KindArray
	// KindBinary is a fixed 8-bit element buffer view ([]byte and friends).
	KindBinary
)

// maxAncestry bounds the embedding chain walked for a single value.
const maxAncestry = 64

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindBinary:
		return "binary"
	default:
		return "unknown"
	}
}

// Classifier reports the logical kind of an arbitrary value.
type Classifier interface {
	Classify(v any) Kind
}

// StructuralClassifier walks a value's ancestry by reflect kind tags.
//
// The ancestry of a value is the chain formed by dereferencing pointers and
// interfaces and by descending into the first embedded field of a struct.
// Each level is compared by its reflect.Kind, never by the identity of a
// particular reflect.Type, so a named byte slice declared in another package
// (json.RawMessage, net.IP) is as binary as []byte itself.
//
// The zero value is ready to use.
type StructuralClassifier struct{}

// Classify implements Classifier. It never panics.
func (StructuralClassifier) Classify(v any) Kind {
	if v == nil {
		return KindUnknown
	}
	_, kind := resolve(reflect.ValueOf(v))
	return kind
}

var defaultClassifier Classifier = StructuralClassifier{}

// Classify reports the kind of v using the structural classifier.
func Classify(v any) Kind {
	return defaultClassifier.Classify(v)
}

// IsString reports whether v is text or derives from a text type.
func IsString(v any) bool {
	return Classify(v) == KindString
}

// IsArray reports whether v is an ordered sequence of non-byte elements.
// Structs exposing a Len method or a Length field do not qualify.
func IsArray(v any) bool {
	return Classify(v) == KindArray
}

// IsUint8Array reports whether v is a byte buffer view, including named
// byte slice types from any package and structs embedding one.
func IsUint8Array(v any) bool {
	return Classify(v) == KindBinary
}

// resolve walks the ancestry of rv and returns the level that decided its
// kind along with the kind itself.
func resolve(rv reflect.Value) (reflect.Value, Kind) {
	for range maxAncestry {
		if !rv.IsValid() {
			return rv, KindUnknown
		}
		switch rv.Kind() {
		case reflect.Pointer, reflect.Interface:
			if rv.IsNil() {
				return rv, KindUnknown
			}
			rv = rv.Elem()
		case reflect.String:
			return rv, KindString
		case reflect.Slice, reflect.Array:
			if rv.Type().Elem().Kind() == reflect.Uint8 {
				return rv, KindBinary
			}
			return rv, KindArray
		case reflect.Struct:
			base, ok := embeddedBase(rv)
			if !ok {
				return rv, KindUnknown
			}
			rv = base
		default:
			return rv, KindUnknown
		}
	}
	return rv, KindUnknown
}

// embeddedBase returns the first embedded field of a struct value.
func embeddedBase(rv reflect.Value) (reflect.Value, bool) {
	t := rv.Type()
	for i := range t.NumField() {
		if t.Field(i).Anonymous {
			return rv.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// textOf extracts the text held by a string-kind value.
func textOf(v any) (string, bool) {
	if s, ok := v.(string); ok {
		return s, true
	}
	if v == nil {
		return "", false
	}
	rv, kind := resolve(reflect.ValueOf(v))
	if kind != KindString {
		return "", false
	}
	return rv.String(), true
}

// bytesOf extracts the bytes held by a binary-kind value. Slices are returned
// without copying; arrays are copied.
func bytesOf(v any) ([]byte, bool) {
	if b, ok := v.([]byte); ok {
		return b, true
	}
	if v == nil {
		return nil, false
	}
	rv, kind := resolve(reflect.ValueOf(v))
	if kind != KindBinary {
		return nil, false
	}
	if rv.Kind() == reflect.Slice {
		return rv.Bytes(), true
	}
	b := make([]byte, rv.Len())
	for i := range b {
		b[i] = byte(rv.Index(i).Uint())
	}
	return b, true
}
