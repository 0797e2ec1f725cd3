package test

import (
	"context"
	"testing"

	"github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/filecoin-project/go-state-types/big"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filecoin-project/vesting-actors/actors/builtin"
	"github.com/filecoin-project/vesting-actors/actors/builtin/token"
	"github.com/filecoin-project/vesting-actors/actors/builtin/vesting"
	"github.com/filecoin-project/vesting-actors/actors/puppet"
	"github.com/filecoin-project/vesting-actors/actors/runtime/exitcode"
	"github.com/filecoin-project/vesting-actors/actors/serde"
	"github.com/filecoin-project/vesting-actors/actors/states"
	"github.com/filecoin-project/vesting-actors/support/vm"
)

var zero = big.Zero()

type parties struct {
	issuer   address.Address
	payer    address.Address
	receiver address.Address
	releaser address.Address
}

func setup(t *testing.T) (*vm.VM, parties) {
	ctx := context.Background()
	v, _ := vm.NewVMWithSingletons(ctx, t)
	addrs := vm.CreateAccounts(ctx, t, v, 4, big.Zero(), 93837778)
	return v, parties{issuer: addrs[0], payer: addrs[1], receiver: addrs[2], releaser: addrs[3]}
}

// Creates a token and funds the payer, approving the vesting actor to spend all of it.
func fundedToken(t *testing.T, v *vm.VM, p parties, amount int64) address.Address {
	tok := vm.CreateActor(t, v, builtin.TokenActorCodeID, &token.ConstructorParams{Issuer: p.issuer})
	vm.ApplyOk(t, v, p.issuer, tok, zero, builtin.MethodsToken.Mint, &token.MintParams{To: p.payer, Amount: abi.NewTokenAmount(amount)})
	vm.ApplyOk(t, v, p.payer, tok, zero, builtin.MethodsToken.Approve, &token.ApproveParams{
		Spender: builtin.VestingActorAddr,
		Amount:  abi.NewTokenAmount(amount),
	})
	return tok
}

func TestVestingLifecycle(t *testing.T) {
	v, p := setup(t)
	tok := fundedToken(t, v, p, 1000)
	v.SetEpoch(10)

	// Cliff at 200, fully vested at 500.
	params := vesting.DepositParams{
		Receiver:        p.receiver,
		Asset:           tok,
		Amount:          abi.NewTokenAmount(1000),
		Releaser:        p.releaser,
		StartEpoch:      100,
		CliffDuration:   100,
		VestingDuration: 300,
	}
	res := vm.ApplyOk(t, v, p.payer, builtin.VestingActorAddr, zero, builtin.MethodsVesting.Deposit, &params)
	assert.Equal(t, []string{token.EventTransferred, vesting.EventDeposited}, vm.EventNames(res.Events))

	vm.ExpectInvocation{
		To:     builtin.VestingActorAddr,
		Method: builtin.MethodsVesting.Deposit,
		SubInvocations: []vm.ExpectInvocation{{
			To:     tok,
			Method: builtin.MethodsToken.TransferFrom,
			From:   vm.ExpectAddress(builtin.VestingActorAddr),
			Params: vm.ExpectObject(&token.TransferFromParams{
				From:   p.payer,
				To:     builtin.VestingActorAddr,
				Amount: abi.NewTokenAmount(1000),
			}),
		}},
	}.Matches(t, v.LastInvocation())

	assert.True(t, balanceOf(t, v, tok, p.payer).Equals(big.Zero()))
	assert.Equal(t, abi.NewTokenAmount(1000), balanceOf(t, v, tok, builtin.VestingActorAddr))
	checkConservation(t, v)

	relation := &vesting.RelationParams{Payer: p.payer, Receiver: p.receiver}

	t.Run("nothing before the cliff", func(t *testing.T) {
		v.SetEpoch(150)
		assert.True(t, releasable(t, v, p.receiver, relation).Equals(big.Zero()))
		vm.ApplyCode(t, v, vesting.ErrNothingToRelease, p.releaser, builtin.VestingActorAddr, zero, builtin.MethodsVesting.Release, relation)
	})

	t.Run("only the releaser may release", func(t *testing.T) {
		v.SetEpoch(300)
		vm.ApplyCode(t, v, vesting.ErrNotReleaser, p.payer, builtin.VestingActorAddr, zero, builtin.MethodsVesting.Release, relation)
		vm.ApplyCode(t, v, vesting.ErrNotReleaser, p.receiver, builtin.VestingActorAddr, zero, builtin.MethodsVesting.Release, relation)
	})

	t.Run("partial release", func(t *testing.T) {
		v.SetEpoch(300)
		assert.Equal(t, abi.NewTokenAmount(500), releasable(t, v, p.receiver, relation))

		res := vm.ApplyOk(t, v, p.releaser, builtin.VestingActorAddr, zero, builtin.MethodsVesting.Release, relation)
		assert.Equal(t, []string{token.EventTransferred, vesting.EventReleased}, vm.EventNames(res.Events))
		vm.ExpectInvocation{
			To:     builtin.VestingActorAddr,
			Method: builtin.MethodsVesting.Release,
			SubInvocations: []vm.ExpectInvocation{{
				To:     tok,
				Method: builtin.MethodsToken.Transfer,
				Params: vm.ExpectObject(&token.TransferParams{To: p.receiver, Amount: abi.NewTokenAmount(500)}),
			}},
		}.Matches(t, v.LastInvocation())

		assert.Equal(t, abi.NewTokenAmount(500), balanceOf(t, v, tok, p.receiver))
		assert.Equal(t, abi.NewTokenAmount(500), balanceOf(t, v, tok, builtin.VestingActorAddr))
		assert.True(t, releasable(t, v, p.receiver, relation).Equals(big.Zero()))
		checkConservation(t, v)
	})

	t.Run("full release after the end", func(t *testing.T) {
		v.SetEpoch(600)
		assert.Equal(t, abi.NewTokenAmount(500), releasable(t, v, p.receiver, relation))
		vm.ApplyOk(t, v, p.releaser, builtin.VestingActorAddr, zero, builtin.MethodsVesting.Release, relation)

		assert.Equal(t, abi.NewTokenAmount(1000), balanceOf(t, v, tok, p.receiver))
		assert.True(t, balanceOf(t, v, tok, builtin.VestingActorAddr).Equals(big.Zero()))
		vm.ApplyCode(t, v, vesting.ErrNothingToRelease, p.releaser, builtin.VestingActorAddr, zero, builtin.MethodsVesting.Release, relation)

		summary := checkConservation(t, v)
		assert.Equal(t, uint64(1), summary.VestingCount)
		assert.Equal(t, uint64(2), summary.ReleaseCount)
		assert.True(t, summary.TotalLocked.Equals(big.Zero()))
		assert.Equal(t, abi.NewTokenAmount(1000), summary.TotalReleased)
	})
}

func TestDepositFailures(t *testing.T) {
	t.Run("without an allowance the pull fails and nothing is recorded", func(t *testing.T) {
		v, p := setup(t)
		tok := vm.CreateActor(t, v, builtin.TokenActorCodeID, &token.ConstructorParams{Issuer: p.issuer})
		vm.ApplyOk(t, v, p.issuer, tok, zero, builtin.MethodsToken.Mint, &token.MintParams{To: p.payer, Amount: abi.NewTokenAmount(1000)})

		root := v.StateRoot()
		res := vm.ApplyCode(t, v, exitcode.ErrForbidden, p.payer, builtin.VestingActorAddr, zero, builtin.MethodsVesting.Deposit, &vesting.DepositParams{
			Receiver:        p.receiver,
			Asset:           tok,
			Amount:          abi.NewTokenAmount(1000),
			Releaser:        p.releaser,
			StartEpoch:      0,
			CliffDuration:   10,
			VestingDuration: 10,
		})
		assert.Empty(t, res.Events)
		assert.Equal(t, root, v.StateRoot())

		vm.ExpectInvocation{
			To:       builtin.VestingActorAddr,
			Method:   builtin.MethodsVesting.Deposit,
			Exitcode: exitcode.ErrForbidden,
			SubInvocations: []vm.ExpectInvocation{{
				To:       tok,
				Method:   builtin.MethodsToken.TransferFrom,
				Exitcode: exitcode.ErrForbidden,
			}},
		}.Matches(t, v.LastInvocation())

		assert.Equal(t, abi.NewTokenAmount(1000), balanceOf(t, v, tok, p.payer))
		checkConservation(t, v)
	})

	t.Run("second deposit for the same pair pulls nothing", func(t *testing.T) {
		v, p := setup(t)
		tok := fundedToken(t, v, p, 2000)
		params := &vesting.DepositParams{
			Receiver:        p.receiver,
			Asset:           tok,
			Amount:          abi.NewTokenAmount(1000),
			Releaser:        p.releaser,
			StartEpoch:      0,
			CliffDuration:   10,
			VestingDuration: 10,
		}
		vm.ApplyOk(t, v, p.payer, builtin.VestingActorAddr, zero, builtin.MethodsVesting.Deposit, params)
		vm.ApplyCode(t, v, vesting.ErrAlreadyDeposited, p.payer, builtin.VestingActorAddr, zero, builtin.MethodsVesting.Deposit, params)

		assert.Empty(t, v.LastInvocation().SubInvocations)
		assert.Equal(t, abi.NewTokenAmount(1000), balanceOf(t, v, tok, p.payer))
		checkConservation(t, v)
	})

	t.Run("unknown asset", func(t *testing.T) {
		v, p := setup(t)
		unknown, err := address.NewActorAddress([]byte("no such token"))
		require.NoError(t, err)
		vm.ApplyCode(t, v, exitcode.ErrIllegalArgument, p.payer, builtin.VestingActorAddr, zero, builtin.MethodsVesting.Deposit, &vesting.DepositParams{
			Receiver:        p.receiver,
			Asset:           unknown,
			Amount:          abi.NewTokenAmount(1),
			Releaser:        p.releaser,
			StartEpoch:      0,
			CliffDuration:   10,
			VestingDuration: 10,
		})
	})
}

func TestReentrantReleaseThroughAsset(t *testing.T) {
	v, p := setup(t)
	pup := vm.CreateActor(t, v, puppet.PuppetActorCodeID, nil)

	// The puppet accepts the pull without holding any balance.
	vm.ApplyOk(t, v, p.payer, builtin.VestingActorAddr, zero, builtin.MethodsVesting.Deposit, &vesting.DepositParams{
		Receiver:        p.receiver,
		Asset:           pup,
		Amount:          abi.NewTokenAmount(1000),
		Releaser:        p.releaser,
		StartEpoch:      0,
		CliffDuration:   10,
		VestingDuration: 10,
	})

	relation := &vesting.RelationParams{Payer: p.payer, Receiver: p.receiver}
	vm.ApplyOk(t, v, p.payer, pup, zero, puppet.MethodsPuppet.SetCallback, &puppet.SendParams{
		To:     builtin.VestingActorAddr,
		Method: builtin.MethodsVesting.Release,
		Params: serde.MustSerialize(relation),
		Value:  big.Zero(),
	})

	v.SetEpoch(20)
	res := vm.ApplyOk(t, v, p.releaser, builtin.VestingActorAddr, zero, builtin.MethodsVesting.Release, relation)
	assert.Equal(t, []string{vesting.EventReleased}, vm.EventNames(res.Events))

	vm.ExpectInvocation{
		To:     builtin.VestingActorAddr,
		Method: builtin.MethodsVesting.Release,
		SubInvocations: []vm.ExpectInvocation{{
			To:     pup,
			Method: puppet.MethodsPuppet.Transfer,
			SubInvocations: []vm.ExpectInvocation{{
				To:       builtin.VestingActorAddr,
				Method:   builtin.MethodsVesting.Release,
				From:     vm.ExpectAddress(pup),
				Exitcode: vesting.ErrReentrantRelease,
			}},
		}},
	}.Matches(t, v.LastInvocation())

	var pst puppet.State
	require.NoError(t, v.GetState(pup, &pst))
	assert.Equal(t, vesting.ErrReentrantRelease, pst.LastCode)
	assert.Equal(t, uint64(2), pst.Calls)

	var st vesting.State
	require.NoError(t, v.GetState(builtin.VestingActorAddr, &st))
	assert.False(t, st.Releasing)
	summary := checkConservation(t, v)
	assert.Equal(t, abi.NewTokenAmount(1000), summary.TotalReleased)
	assert.Equal(t, uint64(1), summary.ReleaseCount)
}

func balanceOf(t *testing.T, v *vm.VM, tok, owner address.Address) abi.TokenAmount {
	var st token.State
	require.NoError(t, v.GetState(tok, &st))
	balance, err := st.BalanceOf(v.Store(), owner)
	require.NoError(t, err)
	return balance
}

func releasable(t *testing.T, v *vm.VM, from address.Address, params *vesting.RelationParams) abi.TokenAmount {
	res := vm.ApplyOk(t, v, from, builtin.VestingActorAddr, zero, builtin.MethodsVesting.ReleasableAmount, params)
	amount, ok := res.Ret.(*abi.TokenAmount)
	require.True(t, ok)
	return *amount
}

// Checks each actor's invariants and that the vesting actor holds exactly what it has locked of each token.
func checkConservation(t *testing.T, v *vm.VM) *vesting.StateSummary {
	tree, err := states.LoadTree(v.Store(), v.StateRoot())
	require.NoError(t, err)
	msgs, err := states.CheckStateInvariants(tree)
	require.NoError(t, err)
	assert.True(t, msgs.IsEmpty(), msgs.Messages())

	var st vesting.State
	require.NoError(t, v.GetState(builtin.VestingActorAddr, &st))
	summary, _ := vesting.CheckStateInvariants(&st, v.Store())
	return summary
}
