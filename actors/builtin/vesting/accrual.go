package vesting

import (
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/filecoin-project/go-state-types/big"

	"github.com/filecoin-project/vesting-actors/actors/runtime/exitcode"
)

// VestedAmount returns the quantity unlocked by the schedule at epoch now, ignoring releases.
// Nothing vests before the cliff and everything has vested once TotalDuration epochs have
// passed since StartEpoch. In between, the vested quantity grows linearly from StartEpoch,
// so the cliff unlocks the whole cliff period at once.
//
// The multiplication happens before the division in arbitrary precision, so the result is the
// exact floor of TotalAmount * elapsed / TotalDuration.
func (r *VestingRecord) VestedAmount(now abi.ChainEpoch) abi.TokenAmount {
	total := r.TotalAmount
	if total.Nil() {
		total = big.Zero()
	}

	if now < r.CliffEpoch {
		return big.Zero()
	}
	elapsed := now - r.StartEpoch
	if elapsed >= r.TotalDuration || r.TotalDuration <= 0 {
		return total
	}
	return big.Div(big.Mul(total, big.NewInt(int64(elapsed))), big.NewInt(int64(r.TotalDuration)))
}

// ReleasableAmount returns vested minus released at epoch now.
// Releasing more than has vested is unreachable through the actor's methods, so it is reported as
// ErrIllegalState rather than clamped.
func (r *VestingRecord) ReleasableAmount(now abi.ChainEpoch) (abi.TokenAmount, error) {
	vested := r.VestedAmount(now)
	released := r.ReleasedAmount
	if released.Nil() {
		released = big.Zero()
	}
	if vested.LessThan(released) {
		return big.Zero(), exitcode.ErrIllegalState.Wrapf("released %v exceeds vested %v at epoch %d", released, vested, now)
	}
	return big.Sub(vested, released), nil
}

// Returns the epoch at which the whole amount has vested.
func (r *VestingRecord) EndEpoch() abi.ChainEpoch {
	return r.StartEpoch + r.TotalDuration
}

// Returns the amount still held for the receiver.
func (r *VestingRecord) LockedAmount() abi.TokenAmount {
	if r.TotalAmount.Nil() {
		return big.Zero()
	}
	if r.ReleasedAmount.Nil() {
		return r.TotalAmount
	}
	return big.Sub(r.TotalAmount, r.ReleasedAmount)
}
