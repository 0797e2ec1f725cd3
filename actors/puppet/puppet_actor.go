package puppet

import (
	addr "github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/abi"
	cid "github.com/ipfs/go-cid"
	mh "github.com/multiformats/go-multihash"

	"github.com/filecoin-project/vesting-actors/actors/builtin"
	"github.com/filecoin-project/vesting-actors/actors/builtin/token"
	"github.com/filecoin-project/vesting-actors/actors/runtime"
	"github.com/filecoin-project/vesting-actors/actors/runtime/exitcode"
)

// The puppet is a scriptable test actor. It forwards arbitrary messages and can impersonate a token,
// running a stored callback whenever a transfer reaches it.
type Actor struct{}

var PuppetActorCodeID = func() cid.Cid {
	builder := cid.V1Builder{Codec: cid.Raw, MhType: mh.IDENTITY}
	c, err := builder.Sum([]byte("vesting/1/puppet"))
	if err != nil {
		panic(err)
	}
	return c
}()

var MethodsPuppet = struct {
	Constructor   abi.MethodNum
	Send          abi.MethodNum
	Transfer      abi.MethodNum
	TransferFrom  abi.MethodNum
	SetCallback   abi.MethodNum
	ClearCallback abi.MethodNum
}{builtin.MethodConstructor, 2, builtin.MethodsToken.Transfer, builtin.MethodsToken.TransferFrom, 5, 6}

func (a Actor) Exports() []interface{} {
	return []interface{}{
		builtin.MethodConstructor: a.Constructor,
		2:                         a.Send,
		3:                         a.Transfer,
		4:                         a.TransferFrom,
		5:                         a.SetCallback,
		6:                         a.ClearCallback,
	}
}

func (a Actor) Code() cid.Cid {
	return PuppetActorCodeID
}

func (a Actor) IsSingleton() bool {
	return false
}

func (a Actor) State() runtime.CBORer {
	return new(State)
}

var _ runtime.VMActor = Actor{}

type State struct {
	// Sent on every transfer, if set.
	Callback *SendParams
	// Exit code of the most recent callback.
	LastCode exitcode.ExitCode
	// Number of transfers received.
	Calls uint64
}

type SendParams struct {
	To     addr.Address
	Method abi.MethodNum
	Params []byte
	Value  abi.TokenAmount
}

type SendReturn struct {
	Return []byte
	Code   exitcode.ExitCode
}

func (a Actor) Constructor(rt runtime.Runtime, _ *abi.EmptyValue) *abi.EmptyValue {
	rt.ValidateImmediateCallerIs(builtin.SystemActorAddr)

	rt.StateCreate(&State{})
	return nil
}

// Send forwards a message and reports its outcome instead of aborting.
func (a Actor) Send(rt runtime.Runtime, params *SendParams) *SendReturn {
	rt.ValidateImmediateCallerAcceptAny()
	return a.send(rt, params)
}

// Transfer accepts any token transfer without moving funds, then runs the callback.
func (a Actor) Transfer(rt runtime.Runtime, _ *token.TransferParams) *abi.EmptyValue {
	rt.ValidateImmediateCallerAcceptAny()
	a.runCallback(rt)
	return nil
}

func (a Actor) TransferFrom(rt runtime.Runtime, _ *token.TransferFromParams) *abi.EmptyValue {
	rt.ValidateImmediateCallerAcceptAny()
	a.runCallback(rt)
	return nil
}

func (a Actor) SetCallback(rt runtime.Runtime, params *SendParams) *abi.EmptyValue {
	rt.ValidateImmediateCallerAcceptAny()
	var st State
	rt.StateTransaction(&st, func() {
		st.Callback = params
	})
	return nil
}

func (a Actor) ClearCallback(rt runtime.Runtime, _ *abi.EmptyValue) *abi.EmptyValue {
	rt.ValidateImmediateCallerAcceptAny()
	var st State
	rt.StateTransaction(&st, func() {
		st.Callback = nil
	})
	return nil
}

func (a Actor) runCallback(rt runtime.Runtime) {
	var st State
	rt.StateReadonly(&st)
	code := exitcode.Ok
	if st.Callback != nil {
		code = a.send(rt, st.Callback).Code
	}
	rt.StateTransaction(&st, func() {
		st.LastCode = code
		st.Calls++
	})
}

func (a Actor) send(rt runtime.Runtime, params *SendParams) *SendReturn {
	var out runtime.CBORBytes
	code := rt.Send(params.To, params.Method, runtime.CBORBytes(params.Params), params.Value, &out)
	return &SendReturn{Return: out, Code: code}
}
