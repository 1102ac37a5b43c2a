// Package ferrors defines the fixed error-kind taxonomy shared by every
// package in this module, plus the wrap/cause plumbing used to attach
// call-site context without losing the underlying Kind.
package ferrors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind is a fixed-width error classification. New kinds are never added at
// runtime; the full set is defined below, grouped as in the taxonomy.
type Kind int

const (
	// System
	KindSys Kind = iota + 1
	KindInter
	KindAgain

	// Resource
	KindResource
	KindFull
	KindEmpty

	// Path/name
	KindInvalPath
	KindAccess
	KindPathLen
	KindNameLen
	KindPathOverflow

	// Socket
	KindGetAddrInfo
	KindLANHostUnreach
	KindConnectionAbort
	KindConnectionReset
	KindConnectionClose
	KindPipe
	KindNSBadAddr
	KindNSBadAccept

	// Walker
	KindFWSkip
	KindFWState
	KindFWUnsupported
	KindFWUnknown

	// Messaging
	KindTMNotShutdown

	// Configuration
	KindBadConf
	KindArg
	KindBadFD
)

var kindNames = map[Kind]string{
	KindSys:             "SYS",
	KindInter:           "INTER",
	KindAgain:           "AGAIN",
	KindResource:        "RESOURCE",
	KindFull:            "FULL",
	KindEmpty:           "EMPTY",
	KindInvalPath:       "INVAL_PATH",
	KindAccess:          "ACCESS",
	KindPathLen:         "PATH_LEN",
	KindNameLen:         "NAME_LEN",
	KindPathOverflow:    "PATH_OVERFLOW",
	KindGetAddrInfo:     "GETADDRINFO",
	KindLANHostUnreach:  "LAN_HOST_UNREACH",
	KindConnectionAbort: "CONNECTION_ABORT",
	KindConnectionReset: "CONNECTION_RESET",
	KindConnectionClose: "CONNECTION_CLOSE",
	KindPipe:            "PIPE",
	KindNSBadAddr:       "NS_BAD_ADDR",
	KindNSBadAccept:     "NS_BAD_ACCEPT",
	KindFWSkip:          "FW_SKIP",
	KindFWState:         "FW_STATE",
	KindFWUnsupported:   "FW_UNSUPPORTED",
	KindFWUnknown:       "FW_UNKNOWN",
	KindTMNotShutdown:   "TM_NOT_SHUTDOWN",
	KindBadConf:         "BAD_CONF",
	KindArg:             "ARG",
	KindBadFD:           "BAD_FD",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is a Kind carrying an optional underlying cause.
type Error struct {
	Kind  Kind
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.cause)
	}
	return e.Kind.String()
}

// Cause implements the github.com/pkg/errors Causer interface.
func (e *Error) Cause() error { return e.cause }

// Unwrap supports errors.Is/errors.As from the standard library too.
func (e *Error) Unwrap() error { return e.cause }

// New returns a bare Error of the given Kind with no wrapped cause.
func New(kind Kind) error {
	return &Error{Kind: kind}
}

// Wrap attaches kind and call-site context to an existing error. If err is
// nil, Wrap returns nil.
func Wrap(err error, kind Kind, context string) error {
	if err == nil {
		return nil
	}
	return errors.WithMessage(&Error{Kind: kind, cause: err}, context)
}

// Is reports whether err (or anything in its cause chain) is a *Error
// carrying the given Kind.
func Is(err error, kind Kind) bool {
	for err != nil {
		if fe, ok := err.(*Error); ok {
			if fe.Kind == kind {
				return true
			}
			err = fe.cause
			continue
		}
		cause, ok := err.(interface{ Cause() error })
		if !ok {
			return false
		}
		err = cause.Cause()
	}
	return false
}

// KindOf extracts the Kind carried by err, or 0 if err does not wrap a
// *Error anywhere in its cause chain.
func KindOf(err error) Kind {
	for err != nil {
		if fe, ok := err.(*Error); ok {
			return fe.Kind
		}
		cause, ok := err.(interface{ Cause() error })
		if !ok {
			return 0
		}
		err = cause.Cause()
	}
	return 0
}
