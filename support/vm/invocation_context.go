package vm

import (
	"bytes"
	"context"
	"fmt"
	"reflect"

	"github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/filecoin-project/go-state-types/big"
	"github.com/ipfs/go-cid"
	format "github.com/ipfs/go-ipld-format"
	"github.com/minio/blake2b-simd"
	"github.com/pkg/errors"

	"github.com/filecoin-project/vesting-actors/actors/builtin"
	"github.com/filecoin-project/vesting-actors/actors/runtime"
	"github.com/filecoin-project/vesting-actors/actors/runtime/exitcode"
	"github.com/filecoin-project/vesting-actors/actors/serde"
)

// Deepest chain of nested sends a message may make.
const MaxCallDepth = 4096

var _ runtime.Runtime = (*invocationContext)(nil)

// Context for an individual message invocation, including inter-actor sends.
type invocationContext struct {
	rt              *VM
	msg             internalMessage
	depth           int
	callerValidated bool
	inTransaction   bool
	invocation      *Invocation
}

type returnWrapper struct {
	inner runtime.CBORMarshaler
}

func newInvocationContext(rt *VM, msg internalMessage, depth int) *invocationContext {
	return &invocationContext{
		rt:         rt,
		msg:        msg,
		depth:      depth,
		invocation: &Invocation{Msg: msg},
	}
}

func (ic *invocationContext) invoke() (ret returnWrapper, errcode exitcode.ExitCode) {
	// Effects of an aborted invocation are rolled back, while those of its caller survive.
	priorRoot, err := ic.rt.checkpoint()
	if err != nil {
		panic(err)
	}
	priorEvents := len(ic.rt.events)

	defer func() {
		if r := recover(); r != nil {
			a, ok := r.(abort)
			if !ok {
				panic(r)
			}
			log.Debugw("invocation aborted", "to", ic.msg.to, "method", ic.msg.method, "code", a.code, "msg", a.msg)
			if err := ic.rt.rollback(priorRoot); err != nil {
				panic(err)
			}
			ic.rt.events = ic.rt.events[:priorEvents]
			ret = returnWrapper{}
			errcode = a.code
		}
		ic.invocation.Exitcode = errcode
		ic.invocation.Ret = ret.inner
	}()

	if ic.depth > MaxCallDepth {
		ic.Abortf(exitcode.SysErrForbidden, "message execution exceeds call depth")
	}

	// resolve the recipient
	to, ok := ic.rt.NormalizeAddress(ic.msg.to)
	if !ok {
		ic.Abortf(exitcode.SysErrInvalidReceiver, "no actor at %v", ic.msg.to)
	}
	ic.msg.to = to
	ic.invocation.Msg.to = to
	toActor := ic.loadActor(to)

	// transfer value
	if !ic.msg.value.Nil() && ic.msg.value.GreaterThan(big.Zero()) {
		fromActor := ic.loadActor(ic.msg.from)
		if fromActor.Balance.LessThan(ic.msg.value) {
			ic.Abortf(exitcode.SysErrInsufficientFunds, "sender %v insufficient balance %v to transfer %v",
				ic.msg.from, fromActor.Balance, ic.msg.value)
		}
		ic.rt.transfer(ic.msg.from, to, ic.msg.value)
	}

	// a plain send carries only value
	if ic.msg.method == builtin.MethodSend {
		return returnWrapper{}, exitcode.Ok
	}

	exports := ic.rt.getActorImpl(toActor.Code).Exports()
	if uint64(len(exports)) <= uint64(ic.msg.method) || exports[ic.msg.method] == nil {
		ic.Abortf(exitcode.SysErrInvalidMethod, "actor %v has no method %d", to, ic.msg.method)
	}

	m := reflect.ValueOf(exports[ic.msg.method])
	arg := ic.decodeParams(m.Type().In(1))
	out := m.Call([]reflect.Value{reflect.ValueOf(ic), arg})

	if !ic.callerValidated {
		ic.Abortf(exitcode.SysErrIllegalActor, "method %d of %v returned without validating its caller", ic.msg.method, to)
	}

	if out[0].IsNil() {
		return returnWrapper{}, exitcode.Ok
	}
	return returnWrapper{out[0].Interface().(runtime.CBORMarshaler)}, exitcode.Ok
}

// decodeParams passes parameters to the method through their serialized form, so callers and callees never
// share memory.
func (ic *invocationContext) decodeParams(paramType reflect.Type) reflect.Value {
	if isNil(ic.msg.params) {
		return reflect.Zero(paramType)
	}
	marshaler, ok := ic.msg.params.(runtime.CBORMarshaler)
	if !ok {
		ic.Abortf(exitcode.ErrSerialization, "params of type %T are not serializable", ic.msg.params)
	}
	buf := new(bytes.Buffer)
	if err := marshaler.MarshalCBOR(buf); err != nil {
		ic.Abortf(exitcode.ErrSerialization, "failed to serialize params: %s", err)
	}
	if buf.Len() == 0 {
		return reflect.Zero(paramType)
	}

	arg := reflect.New(paramType.Elem())
	if err := arg.Interface().(runtime.CBORUnmarshaler).UnmarshalCBOR(buf); err != nil {
		ic.Abortf(exitcode.ErrSerialization, "failed to decode params as %v: %s", paramType, err)
	}
	return arg
}

func (ic *invocationContext) loadActor(a address.Address) *TestActor {
	act, found, err := ic.rt.GetActor(a)
	if err != nil {
		panic(err)
	}
	if !found {
		ic.Abortf(exitcode.SysErrInvalidReceiver, "actor %v not found", a)
	}
	return act
}

func (ic *invocationContext) validateCallerOnce() {
	if ic.callerValidated {
		ic.Abortf(exitcode.SysErrIllegalActor, "method must validate caller identity exactly once")
	}
	ic.callerValidated = true
}

func (ic *invocationContext) storeState(obj runtime.CBORMarshaler) {
	head, err := ic.rt.store.Put(ic.rt.ctx, obj)
	if err != nil {
		ic.Abortf(exitcode.ErrSerialization, "failed to store state: %s", err)
	}
	act := ic.loadActor(ic.msg.to)
	act.Head = head
	if err := ic.rt.setActor(ic.rt.ctx, ic.msg.to, act); err != nil {
		panic(err)
	}
}

//
// implement runtime.Runtime
//

func (ic *invocationContext) Caller() address.Address {
	return ic.msg.from
}

func (ic *invocationContext) Receiver() address.Address {
	return ic.msg.to
}

func (ic *invocationContext) ValueReceived() abi.TokenAmount {
	return ic.msg.value
}

func (ic *invocationContext) CurrEpoch() abi.ChainEpoch {
	return ic.rt.currentEpoch
}

func (ic *invocationContext) ValidateImmediateCallerAcceptAny() {
	ic.validateCallerOnce()
}

func (ic *invocationContext) ValidateImmediateCallerIs(addrs ...address.Address) {
	ic.validateCallerOnce()
	for _, a := range addrs {
		if a == ic.msg.from {
			return
		}
	}
	ic.Abortf(exitcode.SysErrForbidden, "caller %v is not one of %v", ic.msg.from, addrs)
}

func (ic *invocationContext) ValidateImmediateCallerType(types ...cid.Cid) {
	ic.validateCallerOnce()
	caller := ic.loadActor(ic.msg.from)
	for _, t := range types {
		if t.Equals(caller.Code) {
			return
		}
	}
	ic.Abortf(exitcode.SysErrForbidden, "caller type %v is not one of %v", caller.Code, types)
}

func (ic *invocationContext) CurrentBalance() abi.TokenAmount {
	return ic.loadActor(ic.msg.to).Balance
}

func (ic *invocationContext) ResolveAddress(a address.Address) (address.Address, bool) {
	return ic.rt.NormalizeAddress(a)
}

func (ic *invocationContext) GetActorCodeCID(a address.Address) (cid.Cid, bool) {
	act, found, err := ic.rt.GetActor(a)
	if err != nil {
		panic(err)
	}
	if !found {
		return cid.Undef, false
	}
	return act.Code, true
}

func (ic *invocationContext) StoreGet(c cid.Cid, o runtime.CBORUnmarshaler) bool {
	err := ic.rt.store.Get(ic.rt.ctx, c, o)
	if errors.Is(err, format.ErrNotFound) {
		return false
	}
	if err != nil {
		ic.Abortf(exitcode.ErrSerialization, "failed to load %v: %s", c, err)
	}
	return true
}

func (ic *invocationContext) StorePut(x runtime.CBORMarshaler) cid.Cid {
	c, err := ic.rt.store.Put(ic.rt.ctx, x)
	if err != nil {
		ic.Abortf(exitcode.ErrSerialization, "failed to store object: %s", err)
	}
	return c
}

func (ic *invocationContext) StateCreate(obj runtime.CBORMarshaler) {
	act := ic.loadActor(ic.msg.to)
	if !act.Head.Equals(ic.rt.emptyObject) {
		ic.Abortf(exitcode.SysErrIllegalActor, "state already initialized for %v", ic.msg.to)
	}
	ic.storeState(obj)
}

func (ic *invocationContext) StateReadonly(obj runtime.CBORUnmarshaler) {
	act := ic.loadActor(ic.msg.to)
	if !ic.StoreGet(act.Head, obj) {
		ic.Abortf(exitcode.ErrIllegalState, "state %v of %v not found", act.Head, ic.msg.to)
	}
}

func (ic *invocationContext) StateTransaction(obj runtime.CBORer, f func()) {
	if ic.inTransaction {
		ic.Abortf(exitcode.SysErrIllegalActor, "nested state transaction")
	}
	ic.StateReadonly(obj)
	ic.inTransaction = true
	defer func() { ic.inTransaction = false }()
	f()
	ic.storeState(obj)
}

func (ic *invocationContext) Send(to address.Address, method abi.MethodNum, params runtime.CBORMarshaler, value abi.TokenAmount, out runtime.CBORUnmarshaler) exitcode.ExitCode {
	if ic.inTransaction {
		ic.Abortf(exitcode.SysErrIllegalActor, "side-effect within transaction")
	}

	var p interface{}
	if !isNil(params) {
		p = params
	}
	newMsg := internalMessage{
		from:   ic.msg.to,
		to:     to,
		value:  value,
		method: method,
		params: p,
	}

	sub := newInvocationContext(ic.rt, newMsg, ic.depth+1)
	ret, code := sub.invoke()
	ic.invocation.SubInvocations = append(ic.invocation.SubInvocations, sub.invocation)
	if !code.IsSuccess() || ret.inner == nil || out == nil {
		return code
	}

	buf := new(bytes.Buffer)
	if err := ret.inner.MarshalCBOR(buf); err != nil {
		ic.Abortf(exitcode.ErrSerialization, "failed to serialize return value: %s", err)
	}
	if buf.Len() > 0 {
		if err := out.UnmarshalCBOR(buf); err != nil {
			ic.Abortf(exitcode.ErrSerialization, "failed to decode return value: %s", err)
		}
	}
	return code
}

func (ic *invocationContext) Abortf(errExitCode exitcode.ExitCode, msg string, args ...interface{}) {
	ic.rt.Abortf(errExitCode, msg, args...)
}

func (ic *invocationContext) EmitEvent(name string, payload runtime.CBORMarshaler) {
	b, err := serde.Serialize(payload)
	if err != nil {
		ic.Abortf(exitcode.ErrSerialization, "failed to serialize %s event: %s", name, err)
	}
	ic.rt.events = append(ic.rt.events, Event{Emitter: ic.msg.to, Name: name, Payload: b})
}

func (ic *invocationContext) HashBlake2b(data []byte) [32]byte {
	return blake2b.Sum256(data)
}

func (ic *invocationContext) Context() context.Context {
	return ic.rt.ctx
}

func (ic *invocationContext) Log(level runtime.LogLevel, msg string, args ...interface{}) {
	ic.rt.Log(level, "[%v:%d] %s", ic.msg.to, ic.msg.method, fmt.Sprintf(msg, args...))
}

func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Map, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
