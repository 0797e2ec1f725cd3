package states_test

import (
	"context"
	"testing"

	addr "github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/filecoin-project/go-state-types/big"
	"github.com/ipfs/go-cid"
	"github.com/minio/blake2b-simd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filecoin-project/vesting-actors/actors/builtin"
	"github.com/filecoin-project/vesting-actors/actors/builtin/account"
	"github.com/filecoin-project/vesting-actors/actors/builtin/token"
	"github.com/filecoin-project/vesting-actors/actors/builtin/vesting"
	"github.com/filecoin-project/vesting-actors/actors/runtime"
	"github.com/filecoin-project/vesting-actors/actors/states"
	"github.com/filecoin-project/vesting-actors/actors/util/adt"
	"github.com/filecoin-project/vesting-actors/support/ipld"
	tutil "github.com/filecoin-project/vesting-actors/support/testing"
)

type treeBuilder struct {
	t      *testing.T
	store  adt.Store
	actors *adt.Map
}

func newTreeBuilder(t *testing.T) *treeBuilder {
	store := ipld.NewADTStore(context.Background())
	actors, err := adt.MakeEmptyMap(store, builtin.DefaultHamtBitwidth)
	require.NoError(t, err)
	return &treeBuilder{t: t, store: store, actors: actors}
}

func (b *treeBuilder) put(a addr.Address, code cid.Cid, state runtime.CBORMarshaler) {
	head, err := b.store.Put(context.Background(), state)
	require.NoError(b.t, err)
	require.NoError(b.t, b.actors.Put(adt.AddrKey(a), &states.Actor{Head: head, Code: code, Balance: big.Zero()}))
}

func (b *treeBuilder) tree() *states.Tree {
	root, err := b.actors.Root()
	require.NoError(b.t, err)
	tree, err := states.LoadTree(b.store, root)
	require.NoError(b.t, err)
	return tree
}

// Builds a tree with one token and a vesting record locking `locked` of it while the vesting actor holds `held`.
func (b *treeBuilder) vestingOfToken(tokenAddr addr.Address, locked, held int64) {
	issuer := tutil.NewIDAddr(b.t, 100)
	payer := tutil.NewIDAddr(b.t, 101)
	receiver := tutil.NewIDAddr(b.t, 102)

	tst, err := token.ConstructState(b.store, issuer)
	require.NoError(b.t, err)
	require.NoError(b.t, tst.Mint(b.store, builtin.VestingActorAddr, abi.NewTokenAmount(held)))
	b.put(tokenAddr, builtin.TokenActorCodeID, tst)

	vst, err := vesting.ConstructState(b.store)
	require.NoError(b.t, err)
	key, err := vesting.RelationKeyFor(payer, receiver, blake2b.Sum256)
	require.NoError(b.t, err)
	require.NoError(b.t, vst.PutVesting(b.store, key, &vesting.VestingRecord{
		TotalAmount:    abi.NewTokenAmount(locked),
		ReleasedAmount: big.Zero(),
		Asset:          tokenAddr,
		StartEpoch:     0,
		CliffEpoch:     10,
		TotalDuration:  20,
		Releaser:       receiver,
	}))
	b.put(builtin.VestingActorAddr, builtin.VestingActorCodeID, vst)
}

func TestCheckStateInvariants(t *testing.T) {
	tokenAddr := tutil.NewIDAddr(t, 200)

	t.Run("consistent tree", func(t *testing.T) {
		b := newTreeBuilder(t)
		b.vestingOfToken(tokenAddr, 500, 500)
		b.put(tutil.NewIDAddr(t, 101), builtin.AccountActorCodeID, &account.State{Address: tutil.NewBLSAddr(t, 1)})
		b.put(builtin.BurntFundsActorAddr, builtin.AccountActorCodeID, &account.State{Address: builtin.BurntFundsActorAddr})

		msgs, err := states.CheckStateInvariants(b.tree())
		require.NoError(t, err)
		assert.True(t, msgs.IsEmpty(), msgs.Messages())
	})

	t.Run("vesting actor holds less than it locked", func(t *testing.T) {
		b := newTreeBuilder(t)
		b.vestingOfToken(tokenAddr, 500, 499)

		msgs, err := states.CheckStateInvariants(b.tree())
		require.NoError(t, err)
		require.Len(t, msgs.Messages(), 1)
		assert.Contains(t, msgs.Messages()[0], "vesting actor holds 499")
	})

	t.Run("account without a key address", func(t *testing.T) {
		b := newTreeBuilder(t)
		b.vestingOfToken(tokenAddr, 0, 0)
		b.put(tutil.NewIDAddr(t, 101), builtin.AccountActorCodeID, &account.State{Address: tutil.NewIDAddr(t, 101)})

		msgs, err := states.CheckStateInvariants(b.tree())
		require.NoError(t, err)
		require.Len(t, msgs.Messages(), 1)
		assert.Contains(t, msgs.Messages()[0], "must be BLS or SECP256K1")
	})

	t.Run("missing vesting actor", func(t *testing.T) {
		b := newTreeBuilder(t)
		b.put(tutil.NewIDAddr(t, 101), builtin.AccountActorCodeID, &account.State{Address: tutil.NewBLSAddr(t, 1)})

		msgs, err := states.CheckStateInvariants(b.tree())
		require.NoError(t, err)
		assert.Equal(t, []string{"no vesting actor"}, msgs.Messages())
	})

	t.Run("unknown code is an error", func(t *testing.T) {
		b := newTreeBuilder(t)
		b.vestingOfToken(tokenAddr, 0, 0)
		b.put(tutil.NewIDAddr(t, 300), tutil.NewCidForTestGetter()(), &account.State{Address: tutil.NewBLSAddr(t, 1)})

		_, err := states.CheckStateInvariants(b.tree())
		require.Error(t, err)
	})
}

func TestTreeGetActor(t *testing.T) {
	b := newTreeBuilder(t)
	b.vestingOfToken(tutil.NewIDAddr(t, 200), 1, 1)
	tree := b.tree()

	act, err := tree.GetActor(builtin.VestingActorAddr)
	require.NoError(t, err)
	assert.Equal(t, builtin.VestingActorCodeID, act.Code)

	_, err = tree.GetActor(tutil.NewIDAddr(t, 999))
	assert.ErrorIs(t, err, states.ErrActorNotFound)

	_, err = tree.GetActor(tutil.NewBLSAddr(t, 1))
	assert.Error(t, err)
}
