package ledger

import (
	"errors"
	"fmt"
)

// Kind classifies a ledger failure. Every kind except KindCommitFailed
// is a deterministic input-validation failure: retrying with corrected
// input is the only recovery, and no partial state is ever committed.
type Kind int

const (
	// KindUnknown is the zero value; it never classifies a ledger error.
	KindUnknown Kind = iota

	// KindNotFound means a group, member or debt does not exist.
	KindNotFound

	// KindUnauthorized means the caller is not a member of the group.
	KindUnauthorized

	// KindInvalidAmount means a non-positive or malformed amount.
	KindInvalidAmount

	// KindInvalidSplitType means an unrecognized split policy.
	KindInvalidSplitType

	// KindInvalidSplit means split values fail policy validation:
	// wrong count, wrong sum, or an unknown member target.
	KindInvalidSplit

	// KindInvalidSettlement means no matching debt exists or the
	// settlement amount exceeds the debt.
	KindInvalidSettlement

	// KindProtectedMember means an attempt to remove the founder.
	KindProtectedMember

	// KindInvalidArgument means a malformed non-amount input, such as
	// a blank or duplicate username.
	KindInvalidArgument

	// KindCommitFailed means the store failed to commit after
	// validation succeeded; state is unchanged.
	KindCommitFailed
)

// String returns the kind's name.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindInvalidAmount:
		return "invalid_amount"
	case KindInvalidSplitType:
		return "invalid_split_type"
	case KindInvalidSplit:
		return "invalid_split"
	case KindInvalidSettlement:
		return "invalid_settlement"
	case KindProtectedMember:
		return "protected_member"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindCommitFailed:
		return "commit_failed"
	default:
		return "unknown"
	}
}

// Error is a classified ledger failure.
type Error struct {
	Kind Kind
	msg  string
	err  error
}

// Errorf builds a classified error.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...)}
}

// WrapCommit classifies a store commit failure, preserving the cause.
func WrapCommit(err error) *Error {
	return &Error{Kind: KindCommitFailed, msg: "commit failed", err: err}
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.msg, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.msg)
}

func (e *Error) Unwrap() error { return e.err }

// KindOf returns the kind of err, or KindUnknown if err is not a
// ledger error.
func KindOf(err error) Kind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return KindUnknown
}
