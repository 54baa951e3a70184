package domain

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

// FieldError describes one invalid field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationErrors collects every invalid field of a submission.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fe.Field+": "+fe.Reason)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (v ValidationErrors) add(field, reason string) ValidationErrors {
	return append(v, FieldError{Field: field, Reason: reason})
}

func (v ValidationErrors) err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// IsEmail reports whether s is a bare address with a dotted domain.
func IsEmail(s string) bool {
	if s == "" || strings.ContainsAny(s, " \t\r\n<>") {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	domain := s[at+1:]
	return at > 0 && strings.Contains(domain, ".") &&
		!strings.HasPrefix(domain, ".") && !strings.HasSuffix(domain, ".")
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func checkLen(errs *ValidationErrors, field, v string, maxLen int) {
	if utf8.RuneCountInString(v) > maxLen {
		*errs = errs.add(field, "too long")
	}
}

func checkEnum(errs *ValidationErrors, field, v string, set []string) {
	if v != "" && !contains(set, v) {
		*errs = errs.add(field, "unexpected value "+v)
	}
}

// union appends the members of extra missing from base, keeping order.
func union(base, extra []string) []string {
	out := append([]string(nil), base...)
	for _, s := range extra {
		if s != "" && !contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}
