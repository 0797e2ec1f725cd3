package vesting

import (
	addr "github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/filecoin-project/go-state-types/big"
	"github.com/minio/blake2b-simd"

	"github.com/filecoin-project/vesting-actors/actors/builtin"
	"github.com/filecoin-project/vesting-actors/actors/util/adt"
)

type StateSummary struct {
	VestingCount  uint64
	ReleaseCount  uint64
	TotalLocked   abi.TokenAmount
	TotalReleased abi.TokenAmount
	// Locked amounts per asset, for reconciling against token balances.
	LockedByAsset map[addr.Address]abi.TokenAmount
}

// Checks internal invariants of vesting state.
func CheckStateInvariants(st *State, store adt.Store) (*StateSummary, *builtin.MessageAccumulator) {
	acc := &builtin.MessageAccumulator{}
	summary := &StateSummary{
		TotalLocked:   big.Zero(),
		TotalReleased: big.Zero(),
		LockedByAsset: make(map[addr.Address]abi.TokenAmount),
	}

	acc.Require(!st.Releasing, "release flag left set")

	releasedByKey := make(map[RelationKey]abi.TokenAmount)
	err := st.ForEachVesting(store, func(key RelationKey, rec *VestingRecord) error {
		vacc := acc.WithPrefix("vesting %v: ", key)
		summary.VestingCount++

		vacc.Require(rec.Releaser != addr.Undef, "releaser undefined")
		vacc.Require(rec.Asset != addr.Undef, "asset undefined")
		vacc.Require(rec.Releaser.Protocol() == addr.ID, "releaser %v is not an ID address", rec.Releaser)
		vacc.Require(rec.Asset.Protocol() == addr.ID, "asset %v is not an ID address", rec.Asset)
		vacc.Require(rec.TotalAmount.GreaterThanEqual(big.Zero()), "negative total %v", rec.TotalAmount)
		vacc.Require(rec.ReleasedAmount.GreaterThanEqual(big.Zero()), "negative released %v", rec.ReleasedAmount)
		vacc.Require(rec.ReleasedAmount.LessThanEqual(rec.TotalAmount), "released %v exceeds total %v", rec.ReleasedAmount, rec.TotalAmount)
		vacc.Require(rec.CliffEpoch > rec.StartEpoch, "cliff epoch %d not after start %d", rec.CliffEpoch, rec.StartEpoch)
		vacc.Require(rec.TotalDuration > rec.CliffEpoch-rec.StartEpoch, "total duration %d not longer than cliff %d",
			rec.TotalDuration, rec.CliffEpoch-rec.StartEpoch)

		locked := rec.LockedAmount()
		summary.TotalLocked = big.Add(summary.TotalLocked, locked)
		summary.TotalReleased = big.Add(summary.TotalReleased, rec.ReleasedAmount)
		prev, ok := summary.LockedByAsset[rec.Asset]
		if !ok {
			prev = big.Zero()
		}
		summary.LockedByAsset[rec.Asset] = big.Add(prev, locked)
		releasedByKey[key] = rec.ReleasedAmount
		return nil
	})
	acc.RequireNoError(err, "error iterating vestings")

	journalByKey := make(map[RelationKey]abi.TokenAmount)
	err = st.ForEachRelease(store, func(idx int64, entry *ReleaseEntry) error {
		summary.ReleaseCount++
		racc := acc.WithPrefix("release %d: ", idx)

		racc.Require(entry.Amount.GreaterThan(big.Zero()), "non-positive amount %v", entry.Amount)
		key, err := RelationKeyFor(entry.Payer, entry.Receiver, blake2b.Sum256)
		if err != nil {
			racc.Addf("invalid parties %v, %v: %v", entry.Payer, entry.Receiver, err)
			return nil
		}
		if _, ok := releasedByKey[key]; !ok {
			racc.Addf("no vesting from %v to %v", entry.Payer, entry.Receiver)
			return nil
		}
		prev, ok := journalByKey[key]
		if !ok {
			prev = big.Zero()
		}
		journalByKey[key] = big.Add(prev, entry.Amount)
		return nil
	})
	acc.RequireNoError(err, "error iterating releases")

	for key, released := range releasedByKey { // nolint:nomaprange
		journaled, ok := journalByKey[key]
		if !ok {
			journaled = big.Zero()
		}
		acc.Require(journaled.Equals(released), "vesting %v: journal sums to %v but record released %v", key, journaled, released)
	}

	return summary, acc
}
