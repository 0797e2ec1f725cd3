package builtin

import (
	"io"

	addr "github.com/filecoin-project/go-address"

	"github.com/filecoin-project/vesting-actors/actors/runtime"
	"github.com/filecoin-project/vesting-actors/actors/runtime/exitcode"
)

///// Code shared by multiple built-in actors. /////

// Default log2 of branching factor for HAMTs.
// This value has been empirically chosen, but the optimal value for maps with different mutation profiles may differ.
const DefaultHamtBitwidth = 5

// Default log2 of node width for the release journal AMT.
const DefaultAmtBitwidth = 5

// Aborts with an ErrIllegalArgument if predicate is not true.
func RequireParam(rt runtime.Runtime, predicate bool, msg string, args ...interface{}) {
	if !predicate {
		rt.Abortf(exitcode.ErrIllegalArgument, msg, args...)
	}
}

// Propagates a failed send by aborting the current method with the same exit code.
func RequireSuccess(rt runtime.Runtime, e exitcode.ExitCode, msg string, args ...interface{}) {
	if !e.IsSuccess() {
		rt.Abortf(e, msg, args...)
	}
}

// Aborts with a formatted message if err is not nil.
// The provided message will be suffixed by ": %s" and the provided args suffixed by the err.
func RequireNoErr(rt runtime.Runtime, err error, defaultExitCode exitcode.ExitCode, msg string, args ...interface{}) {
	if err != nil {
		newMsg := msg + ": %s"
		newArgs := append(args, err)
		code := exitcode.Unwrap(err, defaultExitCode)
		rt.Abortf(code, newMsg, newArgs...)
	}
}

// Aborts with ErrIllegalState if predicate is not true. A failed state requirement is a defect in the actor,
// never a consequence of the parameters.
func RequireState(rt runtime.Runtime, predicate bool, msg string, args ...interface{}) {
	if !predicate {
		rt.Abortf(exitcode.ErrIllegalState, msg, args...)
	}
}

// ResolveToIDAddr resolves an address to its ID form, failing with ErrIllegalArgument if the
// address does not name an existing actor.
func ResolveToIDAddr(rt runtime.Runtime, address addr.Address) (addr.Address, error) {
	idAddr, found := rt.ResolveAddress(address)
	if !found {
		return address, exitcode.ErrIllegalArgument.Wrapf("failed to resolve address %v", address)
	}
	return idAddr, nil
}

// Validates that the immediate caller is one of the signable actor types.
func ValidateCallerIsSignable(rt runtime.Runtime) {
	rt.ValidateImmediateCallerType(CallerTypesSignable...)
}

// Discard is a helper
type Discard struct{}

func (d *Discard) MarshalCBOR(_ io.Writer) error {
	// serialization is a noop
	return nil
}

func (d *Discard) UnmarshalCBOR(_ io.Reader) error {
	// deserialization is a noop
	return nil
}
