package puppet_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/filecoin-project/go-state-types/abi"
	"github.com/filecoin-project/go-state-types/big"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filecoin-project/vesting-actors/actors/builtin"
	"github.com/filecoin-project/vesting-actors/actors/builtin/token"
	"github.com/filecoin-project/vesting-actors/actors/puppet"
	"github.com/filecoin-project/vesting-actors/actors/runtime"
	"github.com/filecoin-project/vesting-actors/actors/runtime/exitcode"
	"github.com/filecoin-project/vesting-actors/support/mock"
	tutil "github.com/filecoin-project/vesting-actors/support/testing"
)

func TestExports(t *testing.T) {
	mock.CheckActorExports(t, puppet.Actor{})
}

func TestSend(t *testing.T) {
	receiver := tutil.NewIDAddr(t, 100)
	target := tutil.NewIDAddr(t, 101)
	actor := puppet.Actor{}

	rt := mock.NewBuilder(context.Background(), receiver).
		WithCaller(builtin.SystemActorAddr, builtin.SystemActorCodeID).
		WithBalance(abi.NewTokenAmount(100), big.Zero()).
		Build(t)
	constructAndVerify(t, rt)

	owner := tutil.NewIDAddr(t, 102)
	params := mustSerialize(t, &owner)
	ret := abi.NewTokenAmount(42)

	rt.ExpectValidateCallerAny()
	rt.ExpectSend(target, builtin.MethodsToken.BalanceOf, runtime.CBORBytes(params), abi.NewTokenAmount(10), &ret, exitcode.Ok)
	out := rt.Call(actor.Send, &puppet.SendParams{
		To:     target,
		Method: builtin.MethodsToken.BalanceOf,
		Params: params,
		Value:  abi.NewTokenAmount(10),
	}).(*puppet.SendReturn)
	rt.Verify()

	assert.Equal(t, exitcode.Ok, out.Code)
	assert.Equal(t, mustSerialize(t, &ret), out.Return)
	assert.Equal(t, abi.NewTokenAmount(90), rt.GetBalance())

	t.Run("reports failure without aborting", func(t *testing.T) {
		rt.ExpectValidateCallerAny()
		rt.ExpectSend(target, builtin.MethodSend, runtime.CBORBytes(nil), big.Zero(), nil, exitcode.ErrForbidden)
		out := rt.Call(actor.Send, &puppet.SendParams{To: target, Method: builtin.MethodSend, Value: big.Zero()}).(*puppet.SendReturn)
		rt.Verify()
		assert.Equal(t, exitcode.ErrForbidden, out.Code)
	})
}

func TestTransferCallback(t *testing.T) {
	receiver := tutil.NewIDAddr(t, 100)
	target := tutil.NewIDAddr(t, 101)
	actor := puppet.Actor{}

	rt := mock.NewBuilder(context.Background(), receiver).
		WithCaller(builtin.SystemActorAddr, builtin.SystemActorCodeID).
		Build(t)
	constructAndVerify(t, rt)
	rt.SetCaller(tutil.NewIDAddr(t, 7), builtin.VestingActorCodeID)

	transfer := &token.TransferParams{To: target, Amount: abi.NewTokenAmount(5)}

	// Without a callback a transfer is only counted.
	rt.ExpectValidateCallerAny()
	rt.Call(actor.Transfer, transfer)
	rt.Verify()
	st := getState(rt)
	assert.Equal(t, uint64(1), st.Calls)
	assert.Equal(t, exitcode.Ok, st.LastCode)

	callback := &puppet.SendParams{
		To:     target,
		Method: 9,
		Params: []byte{0x80},
		Value:  big.Zero(),
	}
	rt.ExpectValidateCallerAny()
	rt.Call(actor.SetCallback, callback)
	rt.Verify()

	rt.ExpectValidateCallerAny()
	rt.ExpectSend(target, 9, runtime.CBORBytes{0x80}, big.Zero(), nil, exitcode.ErrIllegalState)
	rt.Call(actor.TransferFrom, &token.TransferFromParams{From: target, To: receiver, Amount: big.Zero()})
	rt.Verify()

	st = getState(rt)
	require.NotNil(t, st.Callback)
	assert.Equal(t, *callback, *st.Callback)
	assert.Equal(t, uint64(2), st.Calls)
	assert.Equal(t, exitcode.ErrIllegalState, st.LastCode)

	rt.ExpectValidateCallerAny()
	rt.Call(actor.ClearCallback, nil)
	rt.Verify()

	rt.ExpectValidateCallerAny()
	rt.Call(actor.Transfer, transfer)
	rt.Verify()
	st = getState(rt)
	assert.Nil(t, st.Callback)
	assert.Equal(t, uint64(3), st.Calls)
	assert.Equal(t, exitcode.Ok, st.LastCode)
}

func constructAndVerify(t *testing.T, rt *mock.Runtime) {
	rt.ExpectValidateCallerAddr(builtin.SystemActorAddr)
	ret := rt.Call(puppet.Actor{}.Constructor, nil)
	assert.Nil(t, ret)
	rt.Verify()
}

func getState(rt *mock.Runtime) *puppet.State {
	var st puppet.State
	rt.GetState(&st)
	return &st
}

func mustSerialize(t *testing.T, o runtime.CBORMarshaler) []byte {
	buf := bytes.Buffer{}
	require.NoError(t, o.MarshalCBOR(&buf))
	return buf.Bytes()
}
