package service

import (
	"errors"

	"github.com/aussiebroadwan/hackreg/internal/registration/store"
)

// Kind classifies a service failure. Transports map kinds to status codes.
type Kind uint8

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindConflict
	KindDeadlineExceeded
	KindToken
	KindNotFound
)

var kindNames = [...]string{
	KindInternal:         "internal",
	KindValidation:       "validation",
	KindAuthentication:   "authentication",
	KindAuthorization:    "authorization",
	KindConflict:         "conflict",
	KindDeadlineExceeded: "deadline_exceeded",
	KindToken:            "token",
	KindNotFound:         "not_found",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Error is the only error type service operations return for expected
// failures. Msg is safe to show to the caller.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes the kind sentinels below match any *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

var (
	ErrValidation       = &Error{Kind: KindValidation}
	ErrAuthentication   = &Error{Kind: KindAuthentication}
	ErrAuthorization    = &Error{Kind: KindAuthorization}
	ErrConflict         = &Error{Kind: KindConflict}
	ErrDeadlineExceeded = &Error{Kind: KindDeadlineExceeded}
	ErrToken            = &Error{Kind: KindToken}
	ErrNotFound         = &Error{Kind: KindNotFound}
)

// KindOf returns the kind of err, or KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func wrapError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

const (
	msgUserNotFound  = "User not found."
	msgEmailTaken    = "An account for this email already exists."
	msgNotVerified   = "This account is not verified."
	msgShortPassword = "Password must be 6 or more characters."
)

// MinPasswordLength is the shortest password accepted anywhere.
const MinPasswordLength = 6

// storeError maps repository sentinels that need no further context.
func storeError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return wrapError(KindNotFound, msgUserNotFound, err)
	case errors.Is(err, store.ErrAlreadyExists):
		return wrapError(KindConflict, msgEmailTaken, err)
	}
	return err
}
