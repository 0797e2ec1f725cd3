package vm

import (
	"context"
	"fmt"
	"testing"

	"github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/filecoin-project/go-state-types/big"
	"github.com/ipfs/go-cid"
	"github.com/stretchr/testify/require"

	"github.com/filecoin-project/vesting-actors/actors/builtin"
	"github.com/filecoin-project/vesting-actors/actors/builtin/account"
	"github.com/filecoin-project/vesting-actors/actors/builtin/exported"
	"github.com/filecoin-project/vesting-actors/actors/builtin/system"
	"github.com/filecoin-project/vesting-actors/actors/builtin/vesting"
	"github.com/filecoin-project/vesting-actors/actors/puppet"
	"github.com/filecoin-project/vesting-actors/actors/runtime"
	"github.com/filecoin-project/vesting-actors/actors/runtime/exitcode"
	"github.com/filecoin-project/vesting-actors/actors/util/adt"
	"github.com/filecoin-project/vesting-actors/support/ipld"
	actor_testing "github.com/filecoin-project/vesting-actors/support/testing"
)

//
// Genesis like setup
//

// Creates a new VM over a metered in-memory block store and initializes all singleton actors.
// The puppet actor is registered alongside the builtin actors.
func NewVMWithSingletons(ctx context.Context, t testing.TB) (*VM, *ipld.MetricsBlockStore) {
	bs := ipld.NewMetricsBlockStore(ipld.NewBlockStoreInMemory())
	store := adt.WrapBlockStore(ctx, bs)

	lookup := ActorImplLookup{}
	for _, ba := range exported.BuiltinActors() {
		lookup[ba.Code()] = ba
	}
	lookup[puppet.PuppetActorCodeID] = puppet.Actor{}

	vm := NewVM(ctx, lookup, store)

	initializeActor(ctx, t, vm, &system.State{}, builtin.SystemActorCodeID, builtin.SystemActorAddr, big.Zero())

	vestingState, err := vesting.ConstructState(store)
	require.NoError(t, err)
	initializeActor(ctx, t, vm, vestingState, builtin.VestingActorCodeID, builtin.VestingActorAddr, big.Zero())

	// burnt funds
	initializeActor(ctx, t, vm, &account.State{Address: builtin.BurntFundsActorAddr}, builtin.AccountActorCodeID, builtin.BurntFundsActorAddr, big.Zero())

	_, err = vm.checkpoint()
	require.NoError(t, err)

	return vm, bs
}

// Creates n account actors in the VM with the given balance, returning their ID addresses.
// Each account's BLS key is derived from seed, so distinct seeds give distinct accounts.
func CreateAccounts(ctx context.Context, t testing.TB, vm *VM, n int, balance abi.TokenAmount, seed int64) []address.Address {
	idAddrs := make([]address.Address, n)
	for i := range idAddrs {
		pubAddr := actor_testing.NewBLSAddr(t, seed+int64(i))
		idAddr, err := vm.mapAddress(pubAddr)
		require.NoError(t, err)

		initializeActor(ctx, t, vm, runtime.CBORBytes{0x80}, builtin.AccountActorCodeID, idAddr, balance)
		res := vm.applyImplicit(idAddr, builtin.MethodsAccount.Constructor, &pubAddr)
		require.Equal(t, exitcode.Ok, res.Code, "failed to construct account %v", pubAddr)

		idAddrs[i] = idAddr
	}
	return idAddrs
}

// Creates an actor with the given code at a fresh actor address and runs its constructor from the system actor.
// Returns the new actor's ID address.
func CreateActor(t testing.TB, vm *VM, code cid.Cid, ctorParams runtime.CBORMarshaler) address.Address {
	actorAddr := actor_testing.NewActorAddr(t, fmt.Sprintf("%s/%d", code, vm.nextID))
	idAddr, err := vm.mapAddress(actorAddr)
	require.NoError(t, err)

	initializeActor(vm.ctx, t, vm, runtime.CBORBytes{0x80}, code, idAddr, big.Zero())
	res := vm.applyImplicit(idAddr, builtin.MethodConstructor, ctorParams)
	require.Equal(t, exitcode.Ok, res.Code, "failed to construct %v actor", code)
	return idAddr
}

//
//  internal stuff
//

func initializeActor(ctx context.Context, t testing.TB, vm *VM, state runtime.CBORMarshaler, code cid.Cid, a address.Address, balance abi.TokenAmount) {
	stateCID, err := vm.store.Put(ctx, state)
	require.NoError(t, err)
	actor := &TestActor{
		Head:    stateCID,
		Code:    code,
		Balance: balance,
	}
	err = vm.setActor(ctx, a, actor)
	require.NoError(t, err)
}
