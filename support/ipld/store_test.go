package ipld_test

import (
	"context"
	"testing"

	block "github.com/ipfs/go-block-format"
	format "github.com/ipfs/go-ipld-format"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"

	"github.com/filecoin-project/vesting-actors/support/ipld"
)

func TestBlockStoreInMemory(t *testing.T) {
	bs := ipld.NewBlockStoreInMemory()
	metrics := ipld.NewMetricsBlockStore(bs)

	blk := block.NewBlock([]byte("vesting"))
	require.NoError(t, metrics.Put(blk))
	assert.Equal(t, 1, bs.Len())
	assert.EqualValues(t, 1, metrics.WriteCount())
	assert.EqualValues(t, len("vesting"), metrics.WriteBytes)

	got, err := metrics.Get(blk.Cid())
	require.NoError(t, err)
	assert.Equal(t, blk.RawData(), got.RawData())
	assert.EqualValues(t, 1, metrics.ReadCount())

	_, err = metrics.Get(block.NewBlock([]byte("missing")).Cid())
	require.Error(t, err)
	assert.True(t, xerrors.Is(err, format.ErrNotFound))
	assert.EqualValues(t, 2, metrics.ReadCount())
}

func TestADTStoreRoundTrip(t *testing.T) {
	store := ipld.NewADTStore(context.Background())
	assert.Equal(t, context.Background(), store.Context())
}
