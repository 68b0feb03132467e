// Package status defines the directory-service result codes returned
// by the operation layer, and the mapping from filesystem-level errors
// onto them.
package status

import (
	"errors"
	"io/fs"

	pkgerrors "github.com/pkg/errors"
)

// Code is a directory-service result code, per spec.md §6.
type Code int

const (
	Success Code = iota
	NoSuchObject
	AlreadyExists
	InvalidCredentials
	InappropriateAuth
	InsufficientAccess
	UnwillingToPerform
	NotAllowedOnNonLeaf
	TypeOrValueExists
	NoSuchAttribute
	Busy
	Referral
	Other
)

func (c Code) String() string {
	switch c {
	case Success:
		return "Success"
	case NoSuchObject:
		return "NoSuchObject"
	case AlreadyExists:
		return "AlreadyExists"
	case InvalidCredentials:
		return "InvalidCredentials"
	case InappropriateAuth:
		return "InappropriateAuth"
	case InsufficientAccess:
		return "InsufficientAccess"
	case UnwillingToPerform:
		return "UnwillingToPerform"
	case NotAllowedOnNonLeaf:
		return "NotAllowedOnNonLeaf"
	case TypeOrValueExists:
		return "TypeOrValueExists"
	case NoSuchAttribute:
		return "NoSuchAttribute"
	case Busy:
		return "Busy"
	case Referral:
		return "Referral"
	default:
		return "Other"
	}
}

// Error pairs a Code with its underlying cause. It implements error,
// Unwrap (so errors.Is/As see through it) and Cause (the pkg/errors
// convention used throughout the corpus's error-chain helpers).
type Error struct {
	Code Code
	Msg  string
	err  error
}

func New(code Code, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}

func Wrap(code Code, err error, msg string) *Error {
	if err == nil {
		return New(code, msg)
	}
	return &Error{Code: code, Msg: msg, err: pkgerrors.Wrap(err, msg)}
}

func (e *Error) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	if e.Msg != "" {
		return e.Code.String() + ": " + e.Msg
	}
	return e.Code.String()
}

func (e *Error) Unwrap() error { return e.err }
func (e *Error) Cause() error  { return e.err }

// Is reports whether err carries the given Code.
func Is(err error, code Code) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}

// CodeOf extracts the Code from err, defaulting to Other for any
// error that did not originate from this package.
func CodeOf(err error) Code {
	if err == nil {
		return Success
	}
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return Other
}

// FromPathError maps a filesystem error to the directory-service code
// it represents for the given operation context, per spec.md §7.1.
//
//   - missing file/dir on a read or directory-creation failure -> NoSuchObject
//   - directory-not-empty on a delete -> NotAllowedOnNonLeaf
//   - anything else -> Other
func FromPathError(err error, onNotEmpty Code) *Error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return Wrap(NoSuchObject, err, "no such object")
	case isNotEmpty(err):
		return Wrap(onNotEmpty, err, "not allowed on non-leaf")
	default:
		return Wrap(Other, err, "i/o error")
	}
}

func isNotEmpty(err error) bool {
	var perr *fs.PathError
	if errors.As(err, &perr) {
		// syscall.ENOTEMPTY surfaces through fs.PathError on both POSIX
		// and Windows; comparing by string avoids an OS-specific import.
		return perr.Err.Error() == "directory not empty" ||
			perr.Err.Error() == "The directory is not empty."
	}
	return false
}
