package adt_test

import (
	"context"
	"testing"

	"github.com/filecoin-project/go-state-types/abi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filecoin-project/vesting-actors/actors/builtin"
	"github.com/filecoin-project/vesting-actors/actors/util/adt"
	"github.com/filecoin-project/vesting-actors/support/ipld"
)

func TestArrayNotFound(t *testing.T) {
	store := ipld.NewADTStore(context.Background())
	arr, err := adt.MakeEmptyArray(store, builtin.DefaultAmtBitwidth)
	require.NoError(t, err)

	found, err := arr.Get(7, nil)
	require.NoError(t, err)
	require.False(t, found)
}

func TestArrayAppendContinuous(t *testing.T) {
	store := ipld.NewADTStore(context.Background())
	arr, err := adt.MakeEmptyArray(store, builtin.DefaultAmtBitwidth)
	require.NoError(t, err)

	for i := int64(0); i < 40; i++ {
		v := abi.NewTokenAmount(i)
		require.NoError(t, arr.AppendContinuous(&v))
	}
	assert.EqualValues(t, 40, arr.Length())

	root, err := arr.Root()
	require.NoError(t, err)
	reloaded, err := adt.AsArray(store, root, builtin.DefaultAmtBitwidth)
	require.NoError(t, err)
	assert.EqualValues(t, 40, reloaded.Length())

	var out abi.TokenAmount
	found, err := reloaded.Get(33, &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, abi.NewTokenAmount(33), out)

	var visited []int64
	require.NoError(t, reloaded.ForEach(&out, func(i int64) error {
		assert.Equal(t, abi.NewTokenAmount(i), out)
		visited = append(visited, i)
		return nil
	}))
	assert.Len(t, visited, 40)
}
