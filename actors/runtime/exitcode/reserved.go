package exitcode

import (
	"errors"
	"fmt"
	"strconv"
)

type ExitCode int64

func (x ExitCode) IsSuccess() bool {
	return x == Ok
}

func (x ExitCode) IsError() bool {
	return !x.IsSuccess()
}

// Whether an exit code indicates a message send failure.
// A send failure means that the caller's CallSeqNum is not incremented and the caller has not paid
// gas fees for the message (because the caller doesn't exist or can't afford it).
// A receipt with send failure does not indicate that the message (or another one carrying the same CallSeqNum)
// could not apply in the future, against a different state.
func (x ExitCode) IsSendFailure() bool {
	return x == SysErrSenderInvalid || x == SysErrSenderStateInvalid
}

// A non-canonical string representation for human inspection.
func (x ExitCode) String() string {
	name, ok := names[x]
	if ok {
		return fmt.Sprintf("%s(%d)", name, x)
	}
	return strconv.FormatInt(int64(x), 10)
}

// Implement error to trigger Go compiler checking of exit code return values.
func (x ExitCode) Error() string {
	return x.String()
}

// Wrapf attaches an error code to an error message.
// The returned error does not expose the formatted cause to errors.Is, so an outer code shadows
// any code carried by its arguments.
func (x ExitCode) Wrapf(msg string, args ...interface{}) error {
	return &wrapped{code: x, cause: fmt.Errorf(msg, args...)}
}

// Unwrap extracts an error code from an error, returning the default if none is found.
func Unwrap(err error, defaultExitCode ExitCode) (code ExitCode) {
	if errors.As(err, &code) {
		return code
	}
	return defaultExitCode
}

type wrapped struct {
	code  ExitCode
	cause error
}

func (w *wrapped) Error() string {
	return fmt.Sprintf("%s (%s)", w.cause, w.code)
}

func (w *wrapped) Is(target error) bool {
	if ec, ok := target.(ExitCode); ok {
		return ec == w.code
	}
	return false
}

func (w *wrapped) As(target interface{}) bool {
	if ec, ok := target.(*ExitCode); ok {
		*ec = w.code
		return true
	}
	return false
}

const (
	Ok = ExitCode(0)

	// Indicates that the actor identified as the sender of a message is not valid as a message sender:
	// - not present in the state tree
	// - not an account actor (for top-level messages)
	// - code CID is not found or invalid
	// (not found in the state tree, not an account, has no code).
	SysErrSenderInvalid = ExitCode(1)

	// Indicates that the sender of a message is not in a state to send the message:
	// - invocation out of sequence (mismatched CallSeqNum)
	// - insufficient funds to cover execution
	SysErrSenderStateInvalid = ExitCode(2)

	// Indicates failure to find a method in an actor.
	SysErrInvalidMethod = ExitCode(3)

	// Reserved exit code, do not use.
	SysErrReserved1 = ExitCode(4)

	// Indicates that the receiver of a message is not valid (and cannot be implicitly created).
	SysErrInvalidReceiver = ExitCode(5)

	// Indicates that a message sender has insufficient balance for the value being sent.
	// Note that this is distinct from SysErrSenderStateInvalid when a top-level sender can't cover
	// value transfer + gas. This code is only expected to come from inter-actor sends.
	SysErrInsufficientFunds = ExitCode(6)

	// Indicates message execution (including subcalls) used more gas than the specified limit.
	SysErrOutOfGas = ExitCode(7)

	// Indicates message execution is forbidden for the caller by runtime caller validation.
	SysErrForbidden = ExitCode(8)

	// Indicates actor code performed a disallowed operation. Disallowed operations include:
	// - mutating state outside of a state acquisition block
	// - failing to invoke caller validation
	// - aborting with a reserved exit code (including success or a system error).
	SysErrIllegalActor = ExitCode(9)

	// Indicates an invalid argument passed to a runtime method.
	SysErrIllegalArgument = ExitCode(10)

	// Reserved exit codes, do not use.
	SysErrReserved2 = ExitCode(11)
	SysErrReserved3 = ExitCode(12)
	SysErrReserved4 = ExitCode(13)
	SysErrReserved5 = ExitCode(14)
	SysErrReserved6 = ExitCode(15)
)

// The initial range of exit codes is reserved for system errors.
// Actors may define codes starting with this one.
const FirstActorErrorCode = ExitCode(16)

var names = map[ExitCode]string{
	Ok:                       "Ok",
	SysErrSenderInvalid:      "SysErrSenderInvalid",
	SysErrSenderStateInvalid: "SysErrSenderStateInvalid",
	SysErrInvalidMethod:      "SysErrInvalidMethod",
	SysErrReserved1:          "SysErrReserved1",
	SysErrInvalidReceiver:    "SysErrInvalidReceiver",
	SysErrInsufficientFunds:  "SysErrInsufficientFunds",
	SysErrOutOfGas:           "SysErrOutOfGas",
	SysErrForbidden:          "SysErrForbidden",
	SysErrIllegalActor:       "SysErrIllegalActor",
	SysErrIllegalArgument:    "SysErrIllegalArgument",
	SysErrReserved2:          "SysErrReserved2",
	SysErrReserved3:          "SysErrReserved3",
	SysErrReserved4:          "SysErrReserved4",
	SysErrReserved5:          "SysErrReserved5",
	SysErrReserved6:          "SysErrReserved6",

	ErrIllegalArgument:   "ErrIllegalArgument",
	ErrNotFound:          "ErrNotFound",
	ErrForbidden:         "ErrForbidden",
	ErrInsufficientFunds: "ErrInsufficientFunds",
	ErrIllegalState:      "ErrIllegalState",
	ErrSerialization:     "ErrSerialization",
	ErrUnhandledMessage:  "ErrUnhandledMessage",
	ErrUnspecified:       "ErrUnspecified",
	ErrAssertionFailed:   "ErrAssertionFailed",
}
