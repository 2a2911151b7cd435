// Package zerr defines the error kinds surfaced by the archive core.
package zerr

import (
	"errors"
	"fmt"
)

// Kind classifies an error raised anywhere in the archive core.
type Kind int

const (
	// IoError is an underlying byte-stream failure (local or SFTP).
	IoError Kind = iota
	// FormatError is a bad magic, truncated trailer, malformed index or
	// non-UTF-8 path.
	FormatError
	// CryptoError is a decryption refusal, missing identity or tag
	// mismatch.
	CryptoError
	// CompressError is a decoder/encoder stream failure.
	CompressError
	// IntegrityError is a post-decompression digest mismatch.
	IntegrityError
	// NotFound is a path missing from the index, or an empty result set
	// where at least one entry was required.
	NotFound
	// Exists is a write-open against an already-existing archive.
	Exists
	// NotADirectory is a Subindex/ls call against a file path.
	NotADirectory
)

func (k Kind) String() string {
	switch k {
	case IoError:
		return "IoError"
	case FormatError:
		return "FormatError"
	case CryptoError:
		return "CryptoError"
	case CompressError:
		return "CompressError"
	case IntegrityError:
		return "IntegrityError"
	case NotFound:
		return "NotFound"
	case Exists:
		return "Exists"
	case NotADirectory:
		return "NotADirectory"
	default:
		return "UnknownError"
	}
}

// Error is a typed archive error. Use errors.As to recover the Kind.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds a *Error with no wrapped cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap builds a *Error wrapping an underlying cause.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Is reports whether err is, or wraps, a *Error of the given Kind.
func Is(err error, kind Kind) bool {
	var zerr *Error
	if errors.As(err, &zerr) {
		return zerr.Kind == kind
	}
	return false
}
