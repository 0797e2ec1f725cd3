package vm

import (
	"context"
	"fmt"

	"github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/filecoin-project/go-state-types/big"
	"github.com/ipfs/go-cid"
	logging "github.com/ipfs/go-log/v2"
	"github.com/pkg/errors"
	cbg "github.com/whyrusleeping/cbor-gen"

	"github.com/filecoin-project/vesting-actors/actors/builtin"
	"github.com/filecoin-project/vesting-actors/actors/runtime"
	"github.com/filecoin-project/vesting-actors/actors/runtime/exitcode"
	"github.com/filecoin-project/vesting-actors/actors/util/adt"
)

var log = logging.Logger("vm")

// VM holds the state and executes messages over the state.
type VM struct {
	ctx   context.Context
	store adt.Store

	currentEpoch abi.ChainEpoch

	actorImpls  ActorImplLookup
	actorRoot   cid.Cid  // The last committed root.
	actors      *adt.Map // The current (not necessarily committed) root node.
	actorsDirty bool

	// Public key and actor addresses to actor IDs. Only mutated during setup.
	addresses *adt.Map
	nextID    abi.ActorID

	emptyObject cid.Cid

	events      []Event
	invocations []*Invocation
	logs        []string

	vectors *vectorGen
}

// VM types

type TestActor struct {
	Head    cid.Cid
	Code    cid.Cid
	Balance abi.TokenAmount
}

type ActorImplLookup map[cid.Cid]runtime.VMActor

type internalMessage struct {
	from   address.Address
	to     address.Address
	value  abi.TokenAmount
	method abi.MethodNum
	params interface{}
}

// Event is a notification emitted by an actor during a message that was not rolled back.
type Event struct {
	Emitter address.Address
	Name    string
	Payload []byte
}

// Invocation is the trace of a single message or internal send and all of its sub-sends.
type Invocation struct {
	Msg            internalMessage
	Exitcode       exitcode.ExitCode
	Ret            runtime.CBORMarshaler
	SubInvocations []*Invocation
}

// MessageResult is the outcome of a top level message.
type MessageResult struct {
	Ret    runtime.CBORMarshaler
	Code   exitcode.ExitCode
	Events []Event
}

// NewVM creates a new runtime for executing messages.
func NewVM(ctx context.Context, actorImpls ActorImplLookup, store adt.Store) *VM {
	actors, err := adt.MakeEmptyMap(store, builtin.DefaultHamtBitwidth)
	if err != nil {
		panic(err)
	}
	actorRoot, err := actors.Root()
	if err != nil {
		panic(err)
	}
	addresses, err := adt.MakeEmptyMap(store, builtin.DefaultHamtBitwidth)
	if err != nil {
		panic(err)
	}

	// An empty CBOR list.
	emptyObject, err := store.Put(ctx, runtime.CBORBytes{0x80})
	if err != nil {
		panic(err)
	}

	return &VM{
		ctx:         ctx,
		actorImpls:  actorImpls,
		store:       store,
		actors:      actors,
		actorRoot:   actorRoot,
		actorsDirty: false,
		addresses:   addresses,
		nextID:      abi.ActorID(builtin.FirstNonSingletonActorId),
		emptyObject: emptyObject,
		vectors:     newVectorGen(),
	}
}

func (vm *VM) rollback(root cid.Cid) error {
	var err error
	vm.actors, err = adt.AsMap(vm.store, root, builtin.DefaultHamtBitwidth)
	if err != nil {
		return errors.Wrapf(err, "failed to load node for %s", root)
	}

	// reset the root node
	vm.actorRoot = root
	vm.actorsDirty = false
	return nil
}

func (vm *VM) GetActor(a address.Address) (*TestActor, bool, error) {
	na, found := vm.NormalizeAddress(a)
	if !found {
		return nil, false, nil
	}
	var act TestActor
	found, err := vm.actors.Get(adt.AddrKey(na), &act)
	return &act, found, err
}

// SetActor sets the the actor to the given value whether it previously existed or not.
//
// This method will not check if the actor previously existed, it will blindly overwrite it.
func (vm *VM) setActor(_ context.Context, key address.Address, a *TestActor) error {
	if err := vm.actors.Put(adt.AddrKey(key), a); err != nil {
		return errors.Wrap(err, "setting actor in state tree failed")
	}
	vm.actorsDirty = true
	return nil
}

// setActorState stores the state and updates the addressed actor's head.
func (vm *VM) setActorState(ctx context.Context, key address.Address, state runtime.CBORMarshaler) error {
	stateCid, err := vm.store.Put(ctx, state)
	if err != nil {
		return err
	}
	a, found, err := vm.GetActor(key)
	if err != nil {
		return err
	}
	if !found {
		return errors.Errorf("actor %v not found", key)
	}
	a.Head = stateCid
	return vm.setActor(ctx, key, a)
}

func (vm *VM) checkpoint() (cid.Cid, error) {
	return vm.commit()
}

func (vm *VM) commit() (cid.Cid, error) {
	// commit the vm state
	root, err := vm.actors.Root()
	if err != nil {
		return cid.Undef, err
	}
	vm.actorRoot = root
	vm.actorsDirty = false

	return root, nil
}

// StateRoot returns the root of the actors table, committing pending changes.
func (vm *VM) StateRoot() cid.Cid {
	root, err := vm.commit()
	if err != nil {
		panic(err)
	}
	return root
}

// mapAddress assigns the next free actor ID to a non-ID address.
func (vm *VM) mapAddress(a address.Address) (address.Address, error) {
	if a.Protocol() == address.ID {
		return address.Undef, errors.Errorf("can't map ID address %v", a)
	}
	idAddr, err := address.NewIDAddress(uint64(vm.nextID))
	if err != nil {
		return address.Undef, err
	}
	id := cbg.CborInt(vm.nextID)
	if err := vm.addresses.Put(adt.AddrKey(a), &id); err != nil {
		return address.Undef, errors.Wrapf(err, "failed to map address %v", a)
	}
	vm.nextID++
	return idAddr, nil
}

// NormalizeAddress resolves an address to its ID form.
func (vm *VM) NormalizeAddress(addr address.Address) (address.Address, bool) {
	// short-circuit if the address is already an ID address
	if addr.Protocol() == address.ID {
		return addr, true
	}

	var id cbg.CborInt
	found, err := vm.addresses.Get(adt.AddrKey(addr), &id)
	if err != nil {
		panic(errors.Wrapf(err, "failed to resolve %v", addr))
	}
	if !found {
		return address.Undef, false
	}
	idAddr, err := address.NewIDAddress(uint64(id))
	if err != nil {
		panic(err)
	}
	return idAddr, true
}

// ApplyMessage applies the message to the current state.
func (vm *VM) ApplyMessage(from, to address.Address, value abi.TokenAmount, method abi.MethodNum, params interface{}) MessageResult {
	// This method does not actually execute the message itself,
	// but rather deals with the pre/post processing of a message.
	// (see: `invocationContext.invoke()` for the dispatch and execution)

	// load actor from global state
	var ok bool
	if from, ok = vm.NormalizeAddress(from); !ok {
		return MessageResult{Code: exitcode.SysErrSenderInvalid}
	}

	fromActor, found, err := vm.GetActor(from)
	if err != nil {
		panic(err)
	}
	if !found {
		// Execution error; sender does not exist at time of message execution.
		return MessageResult{Code: exitcode.SysErrSenderInvalid}
	}

	if !fromActor.Code.Equals(builtin.AccountActorCodeID) {
		// Execution error; sender is not an account.
		return MessageResult{Code: exitcode.SysErrSenderInvalid}
	}

	vm.vectors.before(vm)
	result := vm.apply(internalMessage{
		from:   from,
		to:     to,
		value:  value,
		method: method,
		params: params,
	})
	if err := vm.vectors.after(vm, from, to, method, params, result); err != nil {
		log.Warnw("failed to write message vector", "error", err)
	}
	return result
}

// applyImplicit applies a message from the system actor, as the VM does for actor construction.
func (vm *VM) applyImplicit(to address.Address, method abi.MethodNum, params interface{}) MessageResult {
	return vm.apply(internalMessage{
		from:   builtin.SystemActorAddr,
		to:     to,
		value:  big.Zero(),
		method: method,
		params: params,
	})
}

func (vm *VM) apply(imsg internalMessage) MessageResult {
	// checkpoint state
	priorRoot, err := vm.checkpoint()
	if err != nil {
		panic(err)
	}
	priorEvents := len(vm.events)

	// build invocation context
	ctx := newInvocationContext(vm, imsg, 0)

	// invoke
	ret, exitCode := ctx.invoke()
	vm.invocations = append(vm.invocations, ctx.invocation)

	// Roll back all state if the receipt's exit code is not ok.
	// This is required in addition to rollback within the invocation context since top level messages can fail for
	// more reasons than internal ones. Invocation context still needs its own rollback so actors can recover and
	// proceed from a nested call failure.
	if exitCode != exitcode.Ok {
		if err := vm.rollback(priorRoot); err != nil {
			panic(err)
		}
		vm.events = vm.events[:priorEvents]
		log.Debugw("message failed", "to", imsg.to, "method", imsg.method, "code", exitCode)
	}

	emitted := make([]Event, len(vm.events)-priorEvents)
	copy(emitted, vm.events[priorEvents:])
	return MessageResult{Ret: ret.inner, Code: exitCode, Events: emitted}
}

func (vm *VM) GetState(addr address.Address, out runtime.CBORUnmarshaler) error {
	act, found, err := vm.GetActor(addr)
	if err != nil {
		return err
	}
	if !found {
		return errors.Errorf("actor %v not found", addr)
	}
	return vm.store.Get(vm.ctx, act.Head, out)
}

func (vm *VM) Store() adt.Store {
	return vm.store
}

func (vm *VM) GetEpoch() abi.ChainEpoch {
	return vm.currentEpoch
}

// SetEpoch moves the chain to the given epoch. Epochs never go backwards.
func (vm *VM) SetEpoch(epoch abi.ChainEpoch) {
	if epoch < vm.currentEpoch {
		panic(fmt.Sprintf("epoch %d before current epoch %d", epoch, vm.currentEpoch))
	}
	vm.currentEpoch = epoch
}

// Invocations returns the traces of all messages applied so far.
func (vm *VM) Invocations() []*Invocation {
	return vm.invocations
}

// LastInvocation returns the trace of the most recent message.
func (vm *VM) LastInvocation() *Invocation {
	if len(vm.invocations) == 0 {
		return nil
	}
	return vm.invocations[len(vm.invocations)-1]
}

// Events returns every event emitted by messages that succeeded.
func (vm *VM) Events() []Event {
	return vm.events
}

func (vm *VM) Logs() []string {
	return vm.logs
}

// transfer debits money from one account and credits it to another.
// avoid calling this method with a zero amount else it will perform unnecessary actor loading.
//
// WARNING: this method will panic if the the amount is negative, accounts dont exist, or have inssuficient funds.
func (vm *VM) transfer(debitFrom address.Address, creditTo address.Address, amount abi.TokenAmount) (*TestActor, *TestActor) {
	// allow only for positive amounts
	if amount.LessThan(abi.NewTokenAmount(0)) {
		panic("unreachable: negative funds transfer not allowed")
	}

	ctx := context.Background()

	// retrieve debit account
	fromActor, found, err := vm.GetActor(debitFrom)
	if err != nil {
		panic(err)
	}
	if !found {
		panic(fmt.Errorf("unreachable: debit account not found. %s", err))
	}

	// check that account has enough balance for transfer
	if fromActor.Balance.LessThan(amount) {
		panic("unreachable: insufficient balance on debit account")
	}

	// debit funds
	fromActor.Balance = big.Sub(fromActor.Balance, amount)
	if err := vm.setActor(ctx, debitFrom, fromActor); err != nil {
		panic(err)
	}

	// retrieve credit account
	toActor, found, err := vm.GetActor(creditTo)
	if err != nil {
		panic(err)
	}
	if !found {
		panic(fmt.Errorf("unreachable: credit account not found. %s", err))
	}

	// credit funds
	toActor.Balance = big.Add(toActor.Balance, amount)
	if err := vm.setActor(ctx, creditTo, toActor); err != nil {
		panic(err)
	}
	return toActor, fromActor
}

func (vm *VM) getActorImpl(code cid.Cid) runtime.VMActor {
	actorImpl, ok := vm.actorImpls[code]
	if !ok {
		vm.Abortf(exitcode.SysErrInvalidReceiver, "actor implementation not found for code %v", code)
	}
	return actorImpl
}

//
// implement runtime.Runtime for VM
//

func (vm *VM) Log(level runtime.LogLevel, msg string, args ...interface{}) {
	line := fmt.Sprintf(msg, args...)
	vm.logs = append(vm.logs, line)
	switch level {
	case runtime.DEBUG:
		log.Debug(line)
	case runtime.INFO:
		log.Info(line)
	case runtime.WARN:
		log.Warn(line)
	default:
		log.Error(line)
	}
}

type abort struct {
	code exitcode.ExitCode
	msg  string
}

func (vm *VM) Abortf(errExitCode exitcode.ExitCode, msg string, args ...interface{}) {
	panic(abort{errExitCode, fmt.Sprintf(msg, args...)})
}

//
// implement runtime.Message for internalMessage
//

var _ runtime.Message = (*internalMessage)(nil)

// ValueReceived implements runtime.Message.
func (msg internalMessage) ValueReceived() abi.TokenAmount {
	return msg.value
}

// Caller implements runtime.Message.
func (msg internalMessage) Caller() address.Address {
	return msg.from
}

// Receiver implements runtime.Message.
func (msg internalMessage) Receiver() address.Address {
	return msg.to
}
