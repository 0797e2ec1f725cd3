package token

import (
	addr "github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/filecoin-project/go-state-types/big"
	cid "github.com/ipfs/go-cid"

	"github.com/filecoin-project/vesting-actors/actors/builtin"
	"github.com/filecoin-project/vesting-actors/actors/runtime"
	"github.com/filecoin-project/vesting-actors/actors/runtime/exitcode"
	"github.com/filecoin-project/vesting-actors/actors/util/adt"
)

const (
	EventTransferred = "Transferred"
	EventApproved    = "Approved"
)

// A fungible token with balances, issuer minting and spender allowances.
type Actor struct{}

func (a Actor) Exports() []interface{} {
	return []interface{}{
		builtin.MethodConstructor: a.Constructor,
		2:                         a.Mint,
		3:                         a.Transfer,
		4:                         a.TransferFrom,
		5:                         a.Approve,
		6:                         a.BalanceOf,
		7:                         a.Allowance,
	}
}

func (a Actor) Code() cid.Cid {
	return builtin.TokenActorCodeID
}

func (a Actor) IsSingleton() bool {
	return false
}

func (a Actor) State() runtime.CBORer {
	return new(State)
}

var _ runtime.VMActor = Actor{}

type ConstructorParams struct {
	Issuer addr.Address
}

func (a Actor) Constructor(rt runtime.Runtime, params *ConstructorParams) *abi.EmptyValue {
	rt.ValidateImmediateCallerIs(builtin.SystemActorAddr)

	issuer, err := builtin.ResolveToIDAddr(rt, params.Issuer)
	builtin.RequireNoErr(rt, err, exitcode.ErrIllegalArgument, "failed to resolve issuer %v", params.Issuer)

	st, err := ConstructState(adt.AsStore(rt), issuer)
	builtin.RequireNoErr(rt, err, exitcode.ErrIllegalState, "failed to construct state")
	rt.StateCreate(st)
	return nil
}

type MintParams struct {
	To     addr.Address
	Amount abi.TokenAmount
}

func (a Actor) Mint(rt runtime.Runtime, params *MintParams) *abi.EmptyValue {
	var st State
	rt.StateReadonly(&st)
	rt.ValidateImmediateCallerIs(st.Issuer)

	requireNonNegative(rt, params.Amount)
	to, err := builtin.ResolveToIDAddr(rt, params.To)
	builtin.RequireNoErr(rt, err, exitcode.ErrIllegalArgument, "failed to resolve recipient %v", params.To)

	rt.StateTransaction(&st, func() {
		err := st.Mint(adt.AsStore(rt), to, params.Amount)
		builtin.RequireNoErr(rt, err, exitcode.ErrIllegalState, "failed to mint")
	})
	rt.EmitEvent(EventTransferred, &TransferredEvent{From: builtin.SystemActorAddr, To: to, Amount: params.Amount})
	return nil
}

type TransferParams struct {
	To     addr.Address
	Amount abi.TokenAmount
}

// Transfer moves Amount from the caller's balance to To.
func (a Actor) Transfer(rt runtime.Runtime, params *TransferParams) *abi.EmptyValue {
	rt.ValidateImmediateCallerAcceptAny()

	requireNonNegative(rt, params.Amount)
	to, err := builtin.ResolveToIDAddr(rt, params.To)
	builtin.RequireNoErr(rt, err, exitcode.ErrIllegalArgument, "failed to resolve recipient %v", params.To)

	a.move(rt, rt.Caller(), to, params.Amount)
	return nil
}

type TransferFromParams struct {
	From   addr.Address
	To     addr.Address
	Amount abi.TokenAmount
}

// TransferFrom moves Amount from From to To, consuming the caller's allowance from From.
func (a Actor) TransferFrom(rt runtime.Runtime, params *TransferFromParams) *abi.EmptyValue {
	rt.ValidateImmediateCallerAcceptAny()
	spender := rt.Caller()

	requireNonNegative(rt, params.Amount)
	from, err := builtin.ResolveToIDAddr(rt, params.From)
	builtin.RequireNoErr(rt, err, exitcode.ErrIllegalArgument, "failed to resolve owner %v", params.From)
	to, err := builtin.ResolveToIDAddr(rt, params.To)
	builtin.RequireNoErr(rt, err, exitcode.ErrIllegalArgument, "failed to resolve recipient %v", params.To)

	key, err := AllowanceKey(from, spender, rt.HashBlake2b)
	builtin.RequireNoErr(rt, err, exitcode.ErrSerialization, "failed to compute allowance key")

	var st State
	rt.StateTransaction(&st, func() {
		store := adt.AsStore(rt)
		allowance, err := st.GetAllowance(store, key)
		builtin.RequireNoErr(rt, err, exitcode.ErrIllegalState, "failed to load allowance")
		if allowance.LessThan(params.Amount) {
			rt.Abortf(exitcode.ErrForbidden, "allowance %v of %v for %v is less than %v", allowance, spender, from, params.Amount)
		}
		err = st.SetAllowance(store, key, big.Sub(allowance, params.Amount))
		builtin.RequireNoErr(rt, err, exitcode.ErrIllegalState, "failed to update allowance")
	})

	a.move(rt, from, to, params.Amount)
	return nil
}

type ApproveParams struct {
	Spender addr.Address
	Amount  abi.TokenAmount
}

// Approve sets the amount Spender may move out of the caller's balance, replacing any prior allowance.
func (a Actor) Approve(rt runtime.Runtime, params *ApproveParams) *abi.EmptyValue {
	rt.ValidateImmediateCallerAcceptAny()
	owner := rt.Caller()

	requireNonNegative(rt, params.Amount)
	spender, err := builtin.ResolveToIDAddr(rt, params.Spender)
	builtin.RequireNoErr(rt, err, exitcode.ErrIllegalArgument, "failed to resolve spender %v", params.Spender)

	key, err := AllowanceKey(owner, spender, rt.HashBlake2b)
	builtin.RequireNoErr(rt, err, exitcode.ErrSerialization, "failed to compute allowance key")

	var st State
	rt.StateTransaction(&st, func() {
		err := st.SetAllowance(adt.AsStore(rt), key, params.Amount)
		builtin.RequireNoErr(rt, err, exitcode.ErrIllegalState, "failed to set allowance")
	})
	rt.EmitEvent(EventApproved, &ApprovedEvent{Owner: owner, Spender: spender, Amount: params.Amount})
	return nil
}

func (a Actor) BalanceOf(rt runtime.Runtime, owner *addr.Address) *abi.TokenAmount {
	rt.ValidateImmediateCallerAcceptAny()

	zero := big.Zero()
	resolved, ok := rt.ResolveAddress(*owner)
	if !ok {
		return &zero
	}

	var st State
	rt.StateReadonly(&st)
	balance, err := st.BalanceOf(adt.AsStore(rt), resolved)
	builtin.RequireNoErr(rt, err, exitcode.ErrIllegalState, "failed to load balance of %v", resolved)
	return &balance
}

type AllowanceParams struct {
	Owner   addr.Address
	Spender addr.Address
}

func (a Actor) Allowance(rt runtime.Runtime, params *AllowanceParams) *abi.TokenAmount {
	rt.ValidateImmediateCallerAcceptAny()

	zero := big.Zero()
	owner, ok := rt.ResolveAddress(params.Owner)
	if !ok {
		return &zero
	}
	spender, ok := rt.ResolveAddress(params.Spender)
	if !ok {
		return &zero
	}
	key, err := AllowanceKey(owner, spender, rt.HashBlake2b)
	builtin.RequireNoErr(rt, err, exitcode.ErrSerialization, "failed to compute allowance key")

	var st State
	rt.StateReadonly(&st)
	allowance, err := st.GetAllowance(adt.AsStore(rt), key)
	builtin.RequireNoErr(rt, err, exitcode.ErrIllegalState, "failed to load allowance")
	return &allowance
}

type TransferredEvent struct {
	From   addr.Address
	To     addr.Address
	Amount abi.TokenAmount
}

type ApprovedEvent struct {
	Owner   addr.Address
	Spender addr.Address
	Amount  abi.TokenAmount
}

func (a Actor) move(rt runtime.Runtime, from, to addr.Address, amount abi.TokenAmount) {
	var st State
	rt.StateTransaction(&st, func() {
		ok, err := st.Transfer(adt.AsStore(rt), from, to, amount)
		builtin.RequireNoErr(rt, err, exitcode.ErrIllegalState, "failed to transfer")
		if !ok {
			rt.Abortf(exitcode.ErrInsufficientFunds, "%v has insufficient balance for transfer of %v", from, amount)
		}
	})
	rt.EmitEvent(EventTransferred, &TransferredEvent{From: from, To: to, Amount: amount})
	rt.Log(builtin.GetActorLogLevel(a, runtime.DEBUG), "transferred %v from %v to %v", amount, from, to)
}

func requireNonNegative(rt runtime.Runtime, amount abi.TokenAmount) {
	builtin.RequireParam(rt, !amount.Nil() && amount.Sign() >= 0, "amount %v must be non-negative", amount)
}
