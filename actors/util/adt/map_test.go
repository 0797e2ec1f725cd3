package adt_test

import (
	"context"
	"sort"
	"testing"

	"github.com/filecoin-project/go-state-types/abi"
	"github.com/filecoin-project/go-state-types/big"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filecoin-project/vesting-actors/actors/builtin"
	"github.com/filecoin-project/vesting-actors/actors/util/adt"
	"github.com/filecoin-project/vesting-actors/support/ipld"
	tutil "github.com/filecoin-project/vesting-actors/support/testing"
)

func TestMap(t *testing.T) {
	store := ipld.NewADTStore(context.Background())

	t.Run("put get and reload", func(t *testing.T) {
		m, err := adt.MakeEmptyMap(store, builtin.DefaultHamtBitwidth)
		require.NoError(t, err)

		a1, a2 := tutil.NewIDAddr(t, 101), tutil.NewIDAddr(t, 102)
		v1 := abi.NewTokenAmount(10)
		require.NoError(t, m.Put(adt.AddrKey(a1), &v1))

		var out abi.TokenAmount
		found, err := m.Get(adt.AddrKey(a1), &out)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, v1, out)

		found, err = m.Get(adt.AddrKey(a2), &out)
		require.NoError(t, err)
		assert.False(t, found)

		root, err := m.Root()
		require.NoError(t, err)

		reloaded, err := adt.AsMap(store, root, builtin.DefaultHamtBitwidth)
		require.NoError(t, err)
		has, err := reloaded.Has(adt.AddrKey(a1))
		require.NoError(t, err)
		assert.True(t, has)
	})

	t.Run("empty map roots are stable", func(t *testing.T) {
		r1, err := adt.StoreEmptyMap(store, builtin.DefaultHamtBitwidth)
		require.NoError(t, err)
		r2, err := adt.StoreEmptyMap(store, builtin.DefaultHamtBitwidth)
		require.NoError(t, err)
		assert.Equal(t, r1, r2)
	})

	t.Run("for each visits every key", func(t *testing.T) {
		m, err := adt.MakeEmptyMap(store, builtin.DefaultHamtBitwidth)
		require.NoError(t, err)

		keys := []string{"a", "b", "c"}
		for i, k := range keys {
			v := big.NewInt(int64(i))
			require.NoError(t, m.Put(adt.BytesKey(k), &v))
		}

		sum := big.Zero()
		var v abi.TokenAmount
		require.NoError(t, m.ForEach(&v, func(key string) error {
			sum = big.Add(sum, v)
			return nil
		}))
		assert.Equal(t, big.NewInt(3), sum)

		collected, err := m.CollectKeys()
		require.NoError(t, err)
		sort.Strings(collected)
		assert.Equal(t, keys, collected)
	})
}
