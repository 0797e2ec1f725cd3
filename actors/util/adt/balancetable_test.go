package adt_test

import (
	"context"
	"testing"

	addr "github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/filecoin-project/go-state-types/big"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filecoin-project/vesting-actors/actors/util/adt"
	"github.com/filecoin-project/vesting-actors/support/ipld"
	tutil "github.com/filecoin-project/vesting-actors/support/testing"
)

func newBalanceTable(t *testing.T) *adt.BalanceTable {
	store := ipld.NewADTStore(context.Background())
	root, err := adt.StoreEmptyMap(store, adt.BalanceTableBitwidth)
	require.NoError(t, err)
	bt, err := adt.AsBalanceTable(store, root)
	require.NoError(t, err)
	return bt
}

func TestBalanceTable(t *testing.T) {
	t.Run("Add adds or creates", func(t *testing.T) {
		a := tutil.NewIDAddr(t, 100)
		bt := newBalanceTable(t)

		prev, err := bt.Get(a)
		assert.NoError(t, err)
		assert.Equal(t, big.Zero(), prev)

		require.NoError(t, bt.Add(a, abi.NewTokenAmount(10)))
		amount, err := bt.Get(a)
		assert.NoError(t, err)
		assert.Equal(t, abi.NewTokenAmount(10), amount)

		require.NoError(t, bt.Add(a, abi.NewTokenAmount(20)))
		amount, err = bt.Get(a)
		assert.NoError(t, err)
		assert.Equal(t, abi.NewTokenAmount(30), amount)

		assert.Error(t, bt.Add(a, abi.NewTokenAmount(-31)))
	})

	t.Run("MustSubtract fails when too large", func(t *testing.T) {
		a := tutil.NewIDAddr(t, 100)
		bt := newBalanceTable(t)

		require.NoError(t, bt.Add(a, abi.NewTokenAmount(80)))
		assert.Error(t, bt.MustSubtract(a, abi.NewTokenAmount(81)))
		require.NoError(t, bt.MustSubtract(a, abi.NewTokenAmount(80)))

		amount, err := bt.Get(a)
		require.NoError(t, err)
		assert.True(t, amount.Equals(big.Zero()))
	})

	t.Run("SubtractWithMinimum keeps floor", func(t *testing.T) {
		a := tutil.NewIDAddr(t, 100)
		bt := newBalanceTable(t)

		require.NoError(t, bt.Add(a, abi.NewTokenAmount(80)))
		sub, err := bt.SubtractWithMinimum(a, abi.NewTokenAmount(100), abi.NewTokenAmount(30))
		require.NoError(t, err)
		assert.Equal(t, abi.NewTokenAmount(50), sub)

		amount, err := bt.Get(a)
		require.NoError(t, err)
		assert.Equal(t, abi.NewTokenAmount(30), amount)
	})

	t.Run("Total and ForEach", func(t *testing.T) {
		bt := newBalanceTable(t)
		addrs := []addr.Address{tutil.NewIDAddr(t, 100), tutil.NewIDAddr(t, 101), tutil.NewIDAddr(t, 102)}
		for i, a := range addrs {
			require.NoError(t, bt.Add(a, abi.NewTokenAmount(int64(i+1)*10)))
		}

		total, err := bt.Total()
		require.NoError(t, err)
		assert.Equal(t, abi.NewTokenAmount(60), total)

		seen := map[addr.Address]abi.TokenAmount{}
		require.NoError(t, bt.ForEach(func(key addr.Address, amount abi.TokenAmount) error {
			seen[key] = amount
			return nil
		}))
		assert.Len(t, seen, 3)
		assert.Equal(t, abi.NewTokenAmount(20), seen[addrs[1]])
	})
}
