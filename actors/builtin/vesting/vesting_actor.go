package vesting

import (
	addr "github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/filecoin-project/go-state-types/big"
	cid "github.com/ipfs/go-cid"

	"github.com/filecoin-project/vesting-actors/actors/builtin"
	"github.com/filecoin-project/vesting-actors/actors/builtin/token"
	"github.com/filecoin-project/vesting-actors/actors/runtime"
	"github.com/filecoin-project/vesting-actors/actors/runtime/exitcode"
	"github.com/filecoin-project/vesting-actors/actors/util/adt"
)

// Vesting actor exit codes.
const (
	ErrAlreadyDeposited = exitcode.FirstActorSpecificExitCode + iota
	ErrStartInPast
	ErrInvalidCliffDuration
	ErrInvalidVestingDuration
	ErrZeroReceiver
	ErrZeroReleaser
	ErrNotReleaser
	ErrNothingToRelease
	ErrOverflow
	ErrReentrantRelease
)

// Event names.
const (
	EventDeposited = "Deposited"
	EventReleased  = "Released"
)

type Actor struct{}

func (a Actor) Exports() []interface{} {
	return []interface{}{
		builtin.MethodConstructor: a.Constructor,
		2:                         a.Deposit,
		3:                         a.Release,
		4:                         a.ReleasableAmount,
	}
}

func (a Actor) Code() cid.Cid {
	return builtin.VestingActorCodeID
}

func (a Actor) IsSingleton() bool {
	return true
}

func (a Actor) State() runtime.CBORer {
	return new(State)
}

var _ runtime.VMActor = Actor{}

func (a Actor) Constructor(rt runtime.Runtime, _ *abi.EmptyValue) *abi.EmptyValue {
	rt.ValidateImmediateCallerIs(builtin.SystemActorAddr)

	st, err := ConstructState(adt.AsStore(rt))
	builtin.RequireNoErr(rt, err, exitcode.ErrIllegalState, "failed to construct state")
	rt.StateCreate(st)
	return nil
}

type DepositParams struct {
	Receiver        addr.Address
	Asset           addr.Address
	Amount          abi.TokenAmount
	Releaser        addr.Address
	StartEpoch      abi.ChainEpoch
	CliffDuration   abi.ChainEpoch
	VestingDuration abi.ChainEpoch
}

// Deposit locks Amount of Asset, pulled from the caller, for Receiver.
// The caller must have approved the vesting actor to spend Amount on the asset beforehand.
func (a Actor) Deposit(rt runtime.Runtime, params *DepositParams) *abi.EmptyValue {
	rt.ValidateImmediateCallerAcceptAny()
	payer := rt.Caller()

	if params.Receiver == addr.Undef {
		rt.Abortf(ErrZeroReceiver, "receiver must be set")
	}
	if params.Releaser == addr.Undef {
		rt.Abortf(ErrZeroReleaser, "releaser must be set")
	}
	builtin.RequireParam(rt, params.Asset != addr.Undef, "asset must be set")
	builtin.RequireParam(rt, !params.Amount.Nil() && params.Amount.Sign() >= 0, "deposit amount %v must be non-negative", params.Amount)
	if params.StartEpoch < rt.CurrEpoch() {
		rt.Abortf(ErrStartInPast, "start epoch %d before current epoch %d", params.StartEpoch, rt.CurrEpoch())
	}
	if params.CliffDuration <= 0 {
		rt.Abortf(ErrInvalidCliffDuration, "cliff duration %d must be positive", params.CliffDuration)
	}
	if params.VestingDuration <= 0 {
		rt.Abortf(ErrInvalidVestingDuration, "vesting duration %d must be positive", params.VestingDuration)
	}
	cliffEpoch, ok := addEpochs(params.StartEpoch, params.CliffDuration)
	if !ok {
		rt.Abortf(ErrOverflow, "cliff epoch overflows: %d + %d", params.StartEpoch, params.CliffDuration)
	}
	totalDuration, ok := addEpochs(params.CliffDuration, params.VestingDuration)
	if !ok {
		rt.Abortf(ErrOverflow, "total duration overflows: %d + %d", params.CliffDuration, params.VestingDuration)
	}
	if _, ok := addEpochs(params.StartEpoch, totalDuration); !ok {
		rt.Abortf(ErrOverflow, "end epoch overflows: %d + %d", params.StartEpoch, totalDuration)
	}

	receiver, err := builtin.ResolveToIDAddr(rt, params.Receiver)
	builtin.RequireNoErr(rt, err, exitcode.ErrIllegalArgument, "failed to resolve receiver %v", params.Receiver)
	releaser, err := builtin.ResolveToIDAddr(rt, params.Releaser)
	builtin.RequireNoErr(rt, err, exitcode.ErrIllegalArgument, "failed to resolve releaser %v", params.Releaser)
	asset, err := builtin.ResolveToIDAddr(rt, params.Asset)
	builtin.RequireNoErr(rt, err, exitcode.ErrIllegalArgument, "failed to resolve asset %v", params.Asset)

	key := relationKey(rt, payer, receiver)
	store := adt.AsStore(rt)

	var st State
	rt.StateReadonly(&st)
	exists, err := st.HasVesting(store, key)
	builtin.RequireNoErr(rt, err, exitcode.ErrIllegalState, "failed to look up vesting %v", key)
	if exists {
		rt.Abortf(ErrAlreadyDeposited, "vesting from %v to %v already exists", payer, receiver)
	}

	code := rt.Send(asset, builtin.MethodsToken.TransferFrom, &token.TransferFromParams{
		From:   payer,
		To:     rt.Receiver(),
		Amount: params.Amount,
	}, big.Zero(), &builtin.Discard{})
	builtin.RequireSuccess(rt, code, "failed to pull %v of %v from %v", params.Amount, asset, payer)

	rec := &VestingRecord{
		TotalAmount:    params.Amount,
		ReleasedAmount: big.Zero(),
		Asset:          asset,
		StartEpoch:     params.StartEpoch,
		CliffEpoch:     cliffEpoch,
		TotalDuration:  totalDuration,
		Releaser:       releaser,
	}
	rt.StateTransaction(&st, func() {
		// The pull may have re-entered this actor.
		exists, err := st.HasVesting(store, key)
		builtin.RequireNoErr(rt, err, exitcode.ErrIllegalState, "failed to look up vesting %v", key)
		if exists {
			rt.Abortf(ErrAlreadyDeposited, "vesting from %v to %v created during deposit", payer, receiver)
		}

		err = st.PutVesting(store, key, rec)
		builtin.RequireNoErr(rt, err, exitcode.ErrIllegalState, "failed to put vesting %v", key)
	})

	rt.EmitEvent(EventDeposited, &DepositedEvent{
		Payer:         payer,
		Receiver:      receiver,
		Releaser:      releaser,
		Asset:         asset,
		Amount:        params.Amount,
		StartEpoch:    params.StartEpoch,
		CliffEpoch:    cliffEpoch,
		TotalDuration: totalDuration,
	})
	rt.Log(builtin.GetActorLogLevel(a, runtime.DEBUG), "deposited %v of %v from %v to %v, key %v", params.Amount, asset, payer, receiver, key)
	return nil
}

type RelationParams struct {
	Payer    addr.Address
	Receiver addr.Address
}

// Release transfers everything vested and not yet released to the receiver.
// Only the record's releaser may call it.
func (a Actor) Release(rt runtime.Runtime, params *RelationParams) *abi.EmptyValue {
	rt.ValidateImmediateCallerAcceptAny()

	// Parties that don't resolve can't have a record, which fails the releaser check below.
	payer, payerOK := rt.ResolveAddress(params.Payer)
	receiver, receiverOK := rt.ResolveAddress(params.Receiver)
	var key RelationKey
	if payerOK && receiverOK {
		key = relationKey(rt, payer, receiver)
	}
	store := adt.AsStore(rt)

	var st State
	var amount abi.TokenAmount
	var asset addr.Address
	rt.StateTransaction(&st, func() {
		if st.Releasing {
			rt.Abortf(ErrReentrantRelease, "release already in progress")
		}

		rec := &VestingRecord{}
		if payerOK && receiverOK {
			stored, found, err := st.GetVesting(store, key)
			builtin.RequireNoErr(rt, err, exitcode.ErrIllegalState, "failed to load vesting %v", key)
			if found {
				rec = stored
			}
		}
		if rec.Releaser != rt.Caller() {
			rt.Abortf(ErrNotReleaser, "caller %v is not the releaser of vesting from %v to %v", rt.Caller(), params.Payer, params.Receiver)
		}

		releasable, err := rec.ReleasableAmount(rt.CurrEpoch())
		builtin.RequireNoErr(rt, err, exitcode.ErrIllegalState, "vesting from %v to %v", payer, receiver)
		if releasable.IsZero() {
			rt.Abortf(ErrNothingToRelease, "nothing to release from %v to %v at epoch %d", payer, receiver, rt.CurrEpoch())
		}

		rec.ReleasedAmount = big.Add(rec.ReleasedAmount, releasable)
		err = st.PutVesting(store, key, rec)
		builtin.RequireNoErr(rt, err, exitcode.ErrIllegalState, "failed to put vesting %v", key)

		err = st.AppendRelease(store, &ReleaseEntry{
			Payer:    payer,
			Receiver: receiver,
			Epoch:    rt.CurrEpoch(),
			Amount:   releasable,
		})
		builtin.RequireNoErr(rt, err, exitcode.ErrIllegalState, "failed to record release")

		st.Releasing = true
		amount = releasable
		asset = rec.Asset
	})

	code := rt.Send(asset, builtin.MethodsToken.Transfer, &token.TransferParams{
		To:     receiver,
		Amount: amount,
	}, big.Zero(), &builtin.Discard{})
	builtin.RequireSuccess(rt, code, "failed to transfer %v of %v to %v", amount, asset, receiver)

	rt.StateTransaction(&st, func() {
		st.Releasing = false
	})

	rt.EmitEvent(EventReleased, &ReleasedEvent{
		Receiver: receiver,
		Amount:   amount,
	})
	rt.Log(builtin.GetActorLogLevel(a, runtime.DEBUG), "released %v of %v from %v to %v", amount, asset, payer, receiver)
	return nil
}

// ReleasableAmount returns what a release would transfer at the current epoch.
func (a Actor) ReleasableAmount(rt runtime.Runtime, params *RelationParams) *abi.TokenAmount {
	rt.ValidateImmediateCallerAcceptAny()

	zero := big.Zero()
	payer, ok := rt.ResolveAddress(params.Payer)
	if !ok {
		return &zero
	}
	receiver, ok := rt.ResolveAddress(params.Receiver)
	if !ok {
		return &zero
	}

	var st State
	rt.StateReadonly(&st)
	key := relationKey(rt, payer, receiver)
	amount, err := st.ReleasableAmount(adt.AsStore(rt), key, rt.CurrEpoch())
	builtin.RequireNoErr(rt, err, exitcode.ErrIllegalState, "failed to compute releasable amount for %v", key)
	return &amount
}

type DepositedEvent struct {
	Payer         addr.Address
	Receiver      addr.Address
	Releaser      addr.Address
	Asset         addr.Address
	Amount        abi.TokenAmount
	StartEpoch    abi.ChainEpoch
	CliffEpoch    abi.ChainEpoch
	TotalDuration abi.ChainEpoch
}

type ReleasedEvent struct {
	Receiver addr.Address
	Amount   abi.TokenAmount
}

func relationKey(rt runtime.Runtime, payer, receiver addr.Address) RelationKey {
	key, err := RelationKeyFor(payer, receiver, rt.HashBlake2b)
	builtin.RequireNoErr(rt, err, exitcode.ErrSerialization, "failed to compute relation key")
	return key
}

func addEpochs(a, b abi.ChainEpoch) (abi.ChainEpoch, bool) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, false
	}
	return sum, true
}
