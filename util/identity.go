package util

import (
	"regexp"
	"strings"
)

// emailPattern accepts dot-separated atoms or a quoted local part, and either
// a bracketed IPv4 literal or a dotted host name ending in a 2+ letter label.
// Atoms exclude all Unicode white space, not only RE2's ASCII \s.
const emailPattern = `(?:[^<>()\[\]\\.,;:\s\v\x{FEFF}\p{Z}@"]+(?:\.[^<>()\[\]\\.,;:\s\v\x{FEFF}\p{Z}@"]+)*|".+")` +
	`@(?:\[[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\]|(?:[a-zA-Z\-0-9]+\.)+[a-zA-Z]{2,})`

var (
	emailRe = regexp.MustCompile(`^` + emailPattern + `$`)

	// Display name, exactly one space, then the bracketed address.
	userIDRe = regexp.MustCompile(`^([^<>]*[^<>\s]) <([^<>]+)>$`)
)

// UserID is the parsed form of a key certificate identity.
type UserID struct {
	Name  string
	Email string
}

// String renders the identity in its certificate form.
func (u UserID) String() string {
	if u.Name == "" {
		return u.Email
	}
	return u.Name + " <" + u.Email + ">"
}

// IsEmailAddress reports whether v is a bare email address such as
// "test@example.com". Display-name forms are rejected.
func IsEmailAddress(v any) bool {
	s, ok := textOf(v)
	if !ok || s == "" {
		return false
	}
	return isEmail(s)
}

// IsUserID reports whether v is exactly "Display Name <local@domain>".
func IsUserID(v any) bool {
	s, ok := textOf(v)
	if !ok || s == "" {
		return false
	}
	_, ok = splitUserID(s)
	return ok
}

// ParseUserID splits an identity string into name and address. A bare email
// address yields a UserID with an empty Name.
func ParseUserID(s string) (UserID, error) {
	if uid, ok := splitUserID(s); ok {
		return uid, nil
	}
	if isEmail(s) {
		return UserID{Email: s}, nil
	}
	return UserID{}, &ArgumentError{Param: "userID", Reason: "expected \"Name <email>\" or a bare email address"}
}

// FormatUserID builds the "Name <email>" form from its parts.
func FormatUserID(name, email string) (string, error) {
	if !isEmail(email) {
		return "", &ArgumentError{Param: "email", Reason: "not a valid email address"}
	}
	uid := UserID{Name: name, Email: email}.String()
	if _, ok := splitUserID(uid); !ok {
		return "", &ArgumentError{Param: "name", Reason: "must be non-empty and free of angle brackets"}
	}
	return uid, nil
}

func isEmail(s string) bool {
	if strings.ContainsAny(s, "<>") {
		return false
	}
	return emailRe.MatchString(s)
}

func splitUserID(s string) (UserID, bool) {
	m := userIDRe.FindStringSubmatch(s)
	if m == nil || !isEmail(m[2]) {
		return UserID{}, false
	}
	return UserID{Name: m[1], Email: m[2]}, true
}
