package token_test

import (
	"context"
	"testing"

	addr "github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/filecoin-project/go-state-types/big"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filecoin-project/vesting-actors/actors/builtin"
	"github.com/filecoin-project/vesting-actors/actors/builtin/token"
	"github.com/filecoin-project/vesting-actors/actors/runtime/exitcode"
	"github.com/filecoin-project/vesting-actors/actors/util/adt"
	"github.com/filecoin-project/vesting-actors/support/mock"
	tutil "github.com/filecoin-project/vesting-actors/support/testing"
)

func TestExports(t *testing.T) {
	mock.CheckActorExports(t, token.Actor{})
}

func TestConstruction(t *testing.T) {
	h := newHarness(t)
	issuerKey := tutil.NewSECP256K1Addr(t, "issuer")
	rt := h.builder().WithIDAddress(issuerKey, h.issuer).Build(t)

	rt.ExpectValidateCallerAddr(builtin.SystemActorAddr)
	rt.Call(h.a.Constructor, &token.ConstructorParams{Issuer: issuerKey})
	rt.Verify()

	st := getState(rt)
	assert.Equal(t, h.issuer, st.Issuer)
	assert.True(t, st.Supply.Equals(big.Zero()))
	h.checkState(rt)

	t.Run("unresolvable issuer", func(t *testing.T) {
		rt := h.builder().Build(t)
		rt.ExpectValidateCallerAddr(builtin.SystemActorAddr)
		rt.ExpectAbort(exitcode.ErrIllegalArgument, func() {
			rt.Call(h.a.Constructor, &token.ConstructorParams{Issuer: issuerKey})
		})
		rt.Verify()
	})
}

func TestMint(t *testing.T) {
	t.Run("issuer mints to an account", func(t *testing.T) {
		h := newHarness(t)
		rt := h.builder().Build(t)
		h.constructAndVerify(rt)

		h.mint(rt, h.alice, abi.NewTokenAmount(100))
		h.mint(rt, h.alice, abi.NewTokenAmount(50))
		h.mint(rt, h.bob, abi.NewTokenAmount(1))

		assert.Equal(t, abi.NewTokenAmount(150), h.balanceOf(rt, h.alice))
		assert.Equal(t, abi.NewTokenAmount(1), h.balanceOf(rt, h.bob))
		summary := h.checkState(rt)
		assert.Equal(t, abi.NewTokenAmount(151), summary.Supply)
	})

	t.Run("only the issuer may mint", func(t *testing.T) {
		h := newHarness(t)
		rt := h.builder().Build(t)
		h.constructAndVerify(rt)

		rt.SetCaller(h.alice, builtin.AccountActorCodeID)
		rt.ExpectValidateCallerAddr(h.issuer)
		rt.ExpectAbort(exitcode.SysErrForbidden, func() {
			rt.Call(h.a.Mint, &token.MintParams{To: h.alice, Amount: abi.NewTokenAmount(1)})
		})
		rt.Verify()
		assert.True(t, h.balanceOf(rt, h.alice).Equals(big.Zero()))
	})

	t.Run("negative amount", func(t *testing.T) {
		h := newHarness(t)
		rt := h.builder().Build(t)
		h.constructAndVerify(rt)

		rt.SetCaller(h.issuer, builtin.AccountActorCodeID)
		rt.ExpectValidateCallerAddr(h.issuer)
		rt.ExpectAbort(exitcode.ErrIllegalArgument, func() {
			rt.Call(h.a.Mint, &token.MintParams{To: h.alice, Amount: abi.NewTokenAmount(-1)})
		})
		rt.Verify()
	})
}

func TestTransfer(t *testing.T) {
	setup := func(t *testing.T) (*mock.Runtime, *harness) {
		h := newHarness(t)
		rt := h.builder().Build(t)
		h.constructAndVerify(rt)
		h.mint(rt, h.alice, abi.NewTokenAmount(100))
		return rt, h
	}

	t.Run("moves balance", func(t *testing.T) {
		rt, h := setup(t)
		h.transfer(rt, h.alice, h.bob, abi.NewTokenAmount(40))

		assert.Equal(t, abi.NewTokenAmount(60), h.balanceOf(rt, h.alice))
		assert.Equal(t, abi.NewTokenAmount(40), h.balanceOf(rt, h.bob))
		summary := h.checkState(rt)
		assert.Equal(t, abi.NewTokenAmount(100), summary.Supply)
	})

	t.Run("transfer to self keeps the balance", func(t *testing.T) {
		rt, h := setup(t)
		h.transfer(rt, h.alice, h.alice, abi.NewTokenAmount(100))
		assert.Equal(t, abi.NewTokenAmount(100), h.balanceOf(rt, h.alice))
		h.checkState(rt)
	})

	t.Run("resolves the recipient", func(t *testing.T) {
		h := newHarness(t)
		bobKey := tutil.NewBLSAddr(t, 7)
		rt := h.builder().WithIDAddress(bobKey, h.bob).Build(t)
		h.constructAndVerify(rt)
		h.mint(rt, h.alice, abi.NewTokenAmount(100))

		rt.SetCaller(h.alice, builtin.AccountActorCodeID)
		rt.ExpectValidateCallerAny()
		rt.ExpectEmitEvent(token.EventTransferred, &token.TransferredEvent{From: h.alice, To: h.bob, Amount: abi.NewTokenAmount(3)})
		rt.Call(h.a.Transfer, &token.TransferParams{To: bobKey, Amount: abi.NewTokenAmount(3)})
		rt.Verify()

		assert.Equal(t, abi.NewTokenAmount(3), h.balanceOf(rt, bobKey))
	})

	t.Run("insufficient balance", func(t *testing.T) {
		rt, h := setup(t)
		rt.SetCaller(h.alice, builtin.AccountActorCodeID)
		rt.ExpectValidateCallerAny()
		rt.ExpectAbort(exitcode.ErrInsufficientFunds, func() {
			rt.Call(h.a.Transfer, &token.TransferParams{To: h.bob, Amount: abi.NewTokenAmount(101)})
		})
		rt.Verify()
		assert.Equal(t, abi.NewTokenAmount(100), h.balanceOf(rt, h.alice))
	})

	t.Run("invalid parameters", func(t *testing.T) {
		rt, h := setup(t)
		for _, params := range []*token.TransferParams{
			{To: h.bob, Amount: abi.NewTokenAmount(-1)},
			{To: tutil.NewSECP256K1Addr(t, "nobody"), Amount: abi.NewTokenAmount(1)},
		} {
			rt.SetCaller(h.alice, builtin.AccountActorCodeID)
			rt.ExpectValidateCallerAny()
			rt.ExpectAbort(exitcode.ErrIllegalArgument, func() {
				rt.Call(h.a.Transfer, params)
			})
			rt.Verify()
		}
	})
}

func TestAllowance(t *testing.T) {
	setup := func(t *testing.T) (*mock.Runtime, *harness) {
		h := newHarness(t)
		rt := h.builder().Build(t)
		h.constructAndVerify(rt)
		h.mint(rt, h.alice, abi.NewTokenAmount(100))
		return rt, h
	}

	t.Run("spender moves approved funds", func(t *testing.T) {
		rt, h := setup(t)
		h.approve(rt, h.alice, h.spender, abi.NewTokenAmount(30))
		assert.Equal(t, abi.NewTokenAmount(30), h.allowance(rt, h.alice, h.spender))

		h.transferFrom(rt, h.spender, h.alice, h.bob, abi.NewTokenAmount(20))
		assert.Equal(t, abi.NewTokenAmount(10), h.allowance(rt, h.alice, h.spender))
		assert.Equal(t, abi.NewTokenAmount(80), h.balanceOf(rt, h.alice))
		assert.Equal(t, abi.NewTokenAmount(20), h.balanceOf(rt, h.bob))

		h.transferFrom(rt, h.spender, h.alice, h.spender, abi.NewTokenAmount(10))
		assert.True(t, h.allowance(rt, h.alice, h.spender).Equals(big.Zero()))
		h.checkState(rt)
	})

	t.Run("approve replaces the previous allowance", func(t *testing.T) {
		rt, h := setup(t)
		h.approve(rt, h.alice, h.spender, abi.NewTokenAmount(30))
		h.approve(rt, h.alice, h.spender, abi.NewTokenAmount(5))
		assert.Equal(t, abi.NewTokenAmount(5), h.allowance(rt, h.alice, h.spender))
		// Allowances are directional.
		assert.True(t, h.allowance(rt, h.spender, h.alice).Equals(big.Zero()))
	})

	t.Run("exceeding the allowance is forbidden", func(t *testing.T) {
		rt, h := setup(t)
		h.approve(rt, h.alice, h.spender, abi.NewTokenAmount(30))

		rt.SetCaller(h.spender, builtin.AccountActorCodeID)
		rt.ExpectValidateCallerAny()
		rt.ExpectAbort(exitcode.ErrForbidden, func() {
			rt.Call(h.a.TransferFrom, &token.TransferFromParams{From: h.alice, To: h.bob, Amount: abi.NewTokenAmount(31)})
		})
		rt.Verify()
		assert.Equal(t, abi.NewTokenAmount(30), h.allowance(rt, h.alice, h.spender))
	})

	t.Run("insufficient balance leaves the allowance", func(t *testing.T) {
		rt, h := setup(t)
		h.approve(rt, h.alice, h.spender, abi.NewTokenAmount(500))

		rt.SetCaller(h.spender, builtin.AccountActorCodeID)
		rt.ExpectValidateCallerAny()
		rt.ExpectAbort(exitcode.ErrInsufficientFunds, func() {
			rt.Call(h.a.TransferFrom, &token.TransferFromParams{From: h.alice, To: h.bob, Amount: abi.NewTokenAmount(101)})
		})
		rt.Verify()
		assert.Equal(t, abi.NewTokenAmount(500), h.allowance(rt, h.alice, h.spender))
		assert.Equal(t, abi.NewTokenAmount(100), h.balanceOf(rt, h.alice))
	})

	t.Run("unknown parties have no allowance", func(t *testing.T) {
		rt, h := setup(t)
		assert.True(t, h.allowance(rt, tutil.NewSECP256K1Addr(t, "x"), h.spender).Equals(big.Zero()))
		assert.True(t, h.allowance(rt, h.alice, tutil.NewSECP256K1Addr(t, "y")).Equals(big.Zero()))
		assert.True(t, h.balanceOf(rt, tutil.NewSECP256K1Addr(t, "z")).Equals(big.Zero()))
	})
}

type harness struct {
	a token.Actor
	t testing.TB

	receiver addr.Address
	issuer   addr.Address
	alice    addr.Address
	bob      addr.Address
	spender  addr.Address
}

func newHarness(t testing.TB) *harness {
	return &harness{
		a:        token.Actor{},
		t:        t,
		receiver: tutil.NewIDAddr(t, 200),
		issuer:   tutil.NewIDAddr(t, 100),
		alice:    tutil.NewIDAddr(t, 101),
		bob:      tutil.NewIDAddr(t, 102),
		spender:  tutil.NewIDAddr(t, 103),
	}
}

func (h *harness) builder() *mock.RuntimeBuilder {
	return mock.NewBuilder(context.Background(), h.receiver).
		WithCaller(builtin.SystemActorAddr, builtin.SystemActorCodeID)
}

func (h *harness) constructAndVerify(rt *mock.Runtime) {
	rt.SetCaller(builtin.SystemActorAddr, builtin.SystemActorCodeID)
	rt.ExpectValidateCallerAddr(builtin.SystemActorAddr)
	ret := rt.Call(h.a.Constructor, &token.ConstructorParams{Issuer: h.issuer})
	assert.Nil(h.t, ret)
	rt.Verify()
}

func (h *harness) mint(rt *mock.Runtime, to addr.Address, amount abi.TokenAmount) {
	rt.SetCaller(h.issuer, builtin.AccountActorCodeID)
	rt.ExpectValidateCallerAddr(h.issuer)
	rt.ExpectEmitEvent(token.EventTransferred, &token.TransferredEvent{From: builtin.SystemActorAddr, To: to, Amount: amount})
	rt.Call(h.a.Mint, &token.MintParams{To: to, Amount: amount})
	rt.Verify()
}

func (h *harness) transfer(rt *mock.Runtime, from, to addr.Address, amount abi.TokenAmount) {
	rt.SetCaller(from, builtin.AccountActorCodeID)
	rt.ExpectValidateCallerAny()
	rt.ExpectEmitEvent(token.EventTransferred, &token.TransferredEvent{From: from, To: to, Amount: amount})
	rt.ExpectLogsContain("transferred")
	rt.Call(h.a.Transfer, &token.TransferParams{To: to, Amount: amount})
	rt.Verify()
}

func (h *harness) approve(rt *mock.Runtime, owner, spender addr.Address, amount abi.TokenAmount) {
	rt.SetCaller(owner, builtin.AccountActorCodeID)
	rt.ExpectValidateCallerAny()
	rt.ExpectEmitEvent(token.EventApproved, &token.ApprovedEvent{Owner: owner, Spender: spender, Amount: amount})
	rt.Call(h.a.Approve, &token.ApproveParams{Spender: spender, Amount: amount})
	rt.Verify()
}

func (h *harness) transferFrom(rt *mock.Runtime, spender, from, to addr.Address, amount abi.TokenAmount) {
	rt.SetCaller(spender, builtin.AccountActorCodeID)
	rt.ExpectValidateCallerAny()
	rt.ExpectEmitEvent(token.EventTransferred, &token.TransferredEvent{From: from, To: to, Amount: amount})
	rt.Call(h.a.TransferFrom, &token.TransferFromParams{From: from, To: to, Amount: amount})
	rt.Verify()
}

func (h *harness) balanceOf(rt *mock.Runtime, owner addr.Address) abi.TokenAmount {
	rt.ExpectValidateCallerAny()
	ret := rt.Call(h.a.BalanceOf, &owner).(*abi.TokenAmount)
	rt.Verify()
	return *ret
}

func (h *harness) allowance(rt *mock.Runtime, owner, spender addr.Address) abi.TokenAmount {
	rt.ExpectValidateCallerAny()
	ret := rt.Call(h.a.Allowance, &token.AllowanceParams{Owner: owner, Spender: spender}).(*abi.TokenAmount)
	rt.Verify()
	return *ret
}

func (h *harness) checkState(rt *mock.Runtime) *token.StateSummary {
	st := getState(rt)
	summary, msgs := token.CheckStateInvariants(st, adt.AsStore(rt))
	require.True(h.t, msgs.IsEmpty(), msgs.Messages())
	return summary
}

func getState(rt *mock.Runtime) *token.State {
	var st token.State
	rt.GetState(&st)
	return &st
}
