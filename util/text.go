package util

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// DecodeUTF8 converts UTF-8 bytes to text. Byte slices and byte arrays of any
// named type are accepted, as are binary strings whose bytes are taken as-is.
// Any other input fails with an *ArgumentError matching ErrInvalidArgument.
//
// Malformed sequences are replaced with U+FFFD by the UTF-8 decoder.
func DecodeUTF8(input any) (string, error) {
	b, ok := bytesOf(input)
	if !ok {
		s, isText := textOf(input)
		if !isText {
			return "", &ArgumentError{Param: "utf8", Expected: "string"}
		}
		b = []byte(s)
	}
	if utf8.Valid(b) {
		return string(b), nil
	}
	out, err := unicode.UTF8.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("decode utf8: %w", err)
	}
	return string(out), nil
}

// EncodeUTF8 converts text to its UTF-8 bytes. Invalid sequences in text are
// replaced with U+FFFD so the result is always well-formed.
func EncodeUTF8(text string) []byte {
	if utf8.ValidString(text) {
		return []byte(text)
	}
	out, err := unicode.UTF8.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return []byte(strings.ToValidUTF8(text, string(utf8.RuneError)))
	}
	return out
}

// CanonicalizeEOL rewrites every line ending (LF, CR, or CRLF) as CRLF.
func CanonicalizeEOL(text []byte) []byte {
	out := make([]byte, 0, len(text)+bytes.Count(text, []byte{'\n'}))
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\r':
			out = append(out, '\r', '\n')
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
		case '\n':
			out = append(out, '\r', '\n')
		default:
			out = append(out, text[i])
		}
	}
	return out
}

// NativeEOL rewrites CRLF line endings as LF.
func NativeEOL(text []byte) []byte {
	return bytes.ReplaceAll(text, []byte("\r\n"), []byte("\n"))
}

// RemoveTrailingSpaces strips spaces and tabs from the end of every line.
func RemoveTrailingSpaces(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}
