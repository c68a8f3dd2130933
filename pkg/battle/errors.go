package battle

import (
	"errors"
	"fmt"
)

// ErrorKind enumerates the error taxonomy from spec.md §7. ParseError,
// TypeError, UndefinedAccess, and ArithmeticError are local: they abort
// only the offending program and the dispatcher treats that callback as
// transparent. InvalidChoice and ProtocolError surface to the host without
// mutating battle state. Internal ends the battle.
type ErrorKind int

const (
	ErrParse ErrorKind = iota
	ErrType
	ErrUndefinedAccess
	ErrArithmetic
	ErrPrecondition
	ErrInvalidChoice
	ErrProtocol
	ErrInternal
)

func (k ErrorKind) String() string {
	switch k {
	case ErrParse:
		return "ParseError"
	case ErrType:
		return "TypeError"
	case ErrUndefinedAccess:
		return "UndefinedAccess"
	case ErrArithmetic:
		return "ArithmeticError"
	case ErrPrecondition:
		return "PreconditionFailure"
	case ErrInvalidChoice:
		return "InvalidChoice"
	case ErrProtocol:
		return "ProtocolError"
	case ErrInternal:
		return "Internal"
	default:
		return "Unknown"
	}
}

// Error is battle's typed, wrapped error, following the same
// errors.Is/errors.As-friendly layering as the teacher's pkg/resilience
// and pkg/retry packages.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error // wrapped cause, if any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("battle: %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("battle: %s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is supports errors.Is(err, battle.ErrFaintedTarget) style sentinel checks
// by comparing Kind whenever the target is also a *Error; Msg and the
// wrapped cause are not compared.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func wrapError(kind ErrorKind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: cause}
}

func typeErrorf(format string, args ...any) error {
	return newError(ErrType, format, args...)
}

// ErrFaintedTarget is a PreconditionFailure sentinel for errors.Is checks.
// No built-in returns it: `damage`, `direct_damage` and `heal` report a
// fainted target by returning 0.
var ErrFaintedTarget = &Error{Kind: ErrPrecondition, Msg: "target has fainted"}

// ErrInvalidChoiceDetail is returned by the control surface (pkg/server)
// when a host response names an invalid choice; the struct form carries
// enough detail for the structured host-visible error response spec.md
// §7 requires ("a structured error describing which choice and why").
type ErrInvalidChoiceDetail struct {
	*Error
	PlayerID string
	Reason   string
}

// NewInvalidChoiceError builds the structured InvalidChoice error surfaced
// to the host; it never mutates battle state (spec.md §7).
func NewInvalidChoiceError(playerID, reason string) *ErrInvalidChoiceDetail {
	return &ErrInvalidChoiceDetail{
		Error:    newError(ErrInvalidChoice, "player %s: %s", playerID, reason),
		PlayerID: playerID,
		Reason:   reason,
	}
}
