package vesting_test

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"math"
	"testing"

	"github.com/filecoin-project/go-state-types/abi"
	"github.com/filecoin-project/go-state-types/big"
	"github.com/minio/blake2b-simd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xorcare/golden"

	"github.com/filecoin-project/vesting-actors/actors/builtin"
	"github.com/filecoin-project/vesting-actors/actors/builtin/vesting"
	"github.com/filecoin-project/vesting-actors/actors/runtime/exitcode"
	tutil "github.com/filecoin-project/vesting-actors/support/testing"
)

func TestVestedAmount(t *testing.T) {
	// Start 100, cliff at 300, fully vested at 1100.
	rec := &vesting.VestingRecord{
		TotalAmount:    abi.NewTokenAmount(1_000_000),
		ReleasedAmount: big.Zero(),
		StartEpoch:     100,
		CliffEpoch:     300,
		TotalDuration:  1000,
	}

	t.Run("nothing before the cliff", func(t *testing.T) {
		for _, e := range []abi.ChainEpoch{0, 99, 100, 101, 299} {
			assert.Equal(t, big.Zero(), rec.VestedAmount(e), "epoch %d", e)
		}
	})

	t.Run("cliff unlocks the time since start", func(t *testing.T) {
		assert.Equal(t, abi.NewTokenAmount(200_000), rec.VestedAmount(300))
	})

	t.Run("linear between cliff and end", func(t *testing.T) {
		assert.Equal(t, abi.NewTokenAmount(500_000), rec.VestedAmount(600))
		assert.Equal(t, abi.NewTokenAmount(999_000), rec.VestedAmount(1099))
	})

	t.Run("everything at and after the end", func(t *testing.T) {
		assert.Equal(t, rec.TotalAmount, rec.VestedAmount(1100))
		assert.Equal(t, rec.TotalAmount, rec.VestedAmount(math.MaxInt64))
	})

	t.Run("rounds down", func(t *testing.T) {
		odd := &vesting.VestingRecord{
			TotalAmount:   abi.NewTokenAmount(10),
			StartEpoch:    0,
			CliffEpoch:    1,
			TotalDuration: 3,
		}
		assert.Equal(t, abi.NewTokenAmount(3), odd.VestedAmount(1))
		assert.Equal(t, abi.NewTokenAmount(6), odd.VestedAmount(2))
		assert.Equal(t, abi.NewTokenAmount(10), odd.VestedAmount(3))
	})

	t.Run("no overflow for large amounts", func(t *testing.T) {
		huge := big.Mul(big.NewInt(math.MaxInt64), big.NewInt(math.MaxInt64))
		large := &vesting.VestingRecord{
			TotalAmount:   huge,
			StartEpoch:    0,
			CliffEpoch:    1,
			TotalDuration: 4,
		}
		assert.Equal(t, big.Div(huge, big.NewInt(2)), large.VestedAmount(2))
	})

	t.Run("monotone in epoch", func(t *testing.T) {
		prev := big.Zero()
		for e := abi.ChainEpoch(0); e <= 1200; e++ {
			v := rec.VestedAmount(e)
			require.True(t, v.GreaterThanEqual(prev), "vested decreased at epoch %d", e)
			require.True(t, v.LessThanEqual(rec.TotalAmount))
			prev = v
		}
	})
}

func TestYearlySchedule(t *testing.T) {
	// Four years with a one year cliff.
	rec := &vesting.VestingRecord{
		TotalAmount:    abi.NewTokenAmount(48_000),
		ReleasedAmount: big.Zero(),
		StartEpoch:     0,
		CliffEpoch:     builtin.EpochsInYear,
		TotalDuration:  4 * builtin.EpochsInYear,
	}

	assert.True(t, rec.VestedAmount(builtin.EpochsInYear-builtin.EpochsInDay).Equals(big.Zero()))
	assert.Equal(t, abi.NewTokenAmount(12_000), rec.VestedAmount(builtin.EpochsInYear))
	assert.Equal(t, abi.NewTokenAmount(24_000), rec.VestedAmount(2*builtin.EpochsInYear))
	assert.Equal(t, rec.TotalAmount, rec.VestedAmount(4*builtin.EpochsInYear))
}

func TestReleasableAmountOfRecord(t *testing.T) {
	rec := &vesting.VestingRecord{
		TotalAmount:    abi.NewTokenAmount(1000),
		ReleasedAmount: abi.NewTokenAmount(250),
		StartEpoch:     100,
		CliffEpoch:     200,
		TotalDuration:  400,
	}

	amt, err := rec.ReleasableAmount(300)
	require.NoError(t, err)
	assert.Equal(t, abi.NewTokenAmount(250), amt)

	amt, err = rec.ReleasableAmount(200)
	require.NoError(t, err)
	assert.True(t, amt.Equals(big.Zero()))

	assert.Equal(t, abi.NewTokenAmount(750), rec.LockedAmount())
	assert.Equal(t, abi.ChainEpoch(500), rec.EndEpoch())

	t.Run("released beyond vested is an illegal state", func(t *testing.T) {
		_, err := rec.ReleasableAmount(150)
		require.Error(t, err)
		assert.Equal(t, exitcode.ErrIllegalState, exitcode.Unwrap(err, exitcode.Ok))
	})
}

func TestVestingCurve(t *testing.T) {
	rec := &vesting.VestingRecord{
		TotalAmount:    abi.NewTokenAmount(1_000_000),
		ReleasedAmount: big.Zero(),
		StartEpoch:     100,
		CliffEpoch:     300,
		TotalDuration:  1000,
	}

	b := &bytes.Buffer{}
	b.WriteString("epoch,vested\n")
	for e := abi.ChainEpoch(0); e <= 1300; e += 25 {
		fmt.Fprintf(b, "%d,%s\n", e, rec.VestedAmount(e))
	}

	golden.Assert(t, b.Bytes())
}

func TestRecordEncoding(t *testing.T) {
	rec := &vesting.VestingRecord{
		TotalAmount:    abi.NewTokenAmount(1_000_000),
		ReleasedAmount: abi.NewTokenAmount(250_000),
		Asset:          tutil.NewIDAddr(t, 200),
		StartEpoch:     100,
		CliffEpoch:     300,
		TotalDuration:  1000,
		Releaser:       tutil.NewIDAddr(t, 103),
	}
	buf := bytes.Buffer{}
	require.NoError(t, rec.MarshalCBOR(&buf))
	assert.Equal(t, "8744000f4240440003d0904300c801186419012c1903e8420067", hex.EncodeToString(buf.Bytes()))

	var decoded vesting.VestingRecord
	require.NoError(t, decoded.UnmarshalCBOR(&buf))
	assert.Equal(t, *rec, decoded)
}

func TestRelationKey(t *testing.T) {
	payer := tutil.NewIDAddr(t, 101)
	receiver := tutil.NewIDAddr(t, 102)

	key, err := vesting.RelationKeyFor(payer, receiver, blake2b.Sum256)
	require.NoError(t, err)
	assert.Equal(t, "0538dd76f6758eb38abc1e1bdcde2ff9f388bb68b0d101df2802e8174e6104fd", hex.EncodeToString(key[:]))
	assert.Equal(t, "bau4n25xwowhlhcv4dyn5zxrp7hzyro3iwdiqdxzialubottbat6q", key.String())

	reversed, err := vesting.RelationKeyFor(receiver, payer, blake2b.Sum256)
	require.NoError(t, err)
	assert.NotEqual(t, key, reversed)
}
