package vesting

import (
	"bytes"

	addr "github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/filecoin-project/go-state-types/big"
	cid "github.com/ipfs/go-cid"
	"github.com/multiformats/go-multibase"
	"golang.org/x/xerrors"

	"github.com/filecoin-project/vesting-actors/actors/builtin"
	"github.com/filecoin-project/vesting-actors/actors/util/adt"
)

type State struct {
	// HAMT[RelationKey]VestingRecord
	Vestings cid.Cid
	// AMT[uint64]ReleaseEntry, append-only journal of every release.
	Releases cid.Cid
	// Set while a release's outbound transfer is in flight, clear between messages.
	Releasing bool
}

// VestingRecord tracks a single payer's lock for a single receiver.
// Only ReleasedAmount changes after creation.
type VestingRecord struct {
	TotalAmount    abi.TokenAmount
	ReleasedAmount abi.TokenAmount
	// The token actor holding the locked funds.
	Asset      addr.Address
	StartEpoch abi.ChainEpoch
	// StartEpoch + cliff duration.
	CliffEpoch abi.ChainEpoch
	// Cliff duration + vesting duration, measured from StartEpoch.
	TotalDuration abi.ChainEpoch
	// The only party that may trigger a release.
	Releaser addr.Address
}

type ReleaseEntry struct {
	Payer    addr.Address
	Receiver addr.Address
	Epoch    abi.ChainEpoch
	Amount   abi.TokenAmount
}

// RelationKey identifies the record for a (payer, receiver) pair.
type RelationKey [32]byte

func (k RelationKey) Key() string {
	return string(k[:])
}

func (k RelationKey) String() string {
	s, err := multibase.Encode(multibase.Base32, k[:])
	if err != nil {
		return "<invalid>"
	}
	return s
}

func relationKeyFromString(s string) (RelationKey, error) {
	var k RelationKey
	if len(s) != len(k) {
		return k, xerrors.Errorf("relation key has length %d, expected %d", len(s), len(k))
	}
	copy(k[:], s)
	return k, nil
}

// Hasher computes a 32 byte digest, e.g. runtime.HashBlake2b or blake2b.Sum256.
type Hasher func(data []byte) [32]byte

// RelationKeyFor derives the key for a pair as the hash of the CBOR tuple [payer, receiver].
// Both addresses must be ID addresses for the key to be canonical.
func RelationKeyFor(payer, receiver addr.Address, hash Hasher) (RelationKey, error) {
	params := RelationParams{Payer: payer, Receiver: receiver}
	buf := bytes.Buffer{}
	if err := params.MarshalCBOR(&buf); err != nil {
		return RelationKey{}, xerrors.Errorf("failed to marshal relation (%v, %v): %w", payer, receiver, err)
	}
	return hash(buf.Bytes()), nil
}

func ConstructState(store adt.Store) (*State, error) {
	emptyMapCid, err := adt.StoreEmptyMap(store, builtin.DefaultHamtBitwidth)
	if err != nil {
		return nil, xerrors.Errorf("failed to create empty map: %w", err)
	}
	emptyArrayCid, err := adt.StoreEmptyArray(store, builtin.DefaultAmtBitwidth)
	if err != nil {
		return nil, xerrors.Errorf("failed to create empty array: %w", err)
	}

	return &State{
		Vestings:  emptyMapCid,
		Releases:  emptyArrayCid,
		Releasing: false,
	}, nil
}

// Loads the record for a key. A missing record is reported with found == false.
func (st *State) GetVesting(store adt.Store, key RelationKey) (*VestingRecord, bool, error) {
	vestings, err := adt.AsMap(store, st.Vestings, builtin.DefaultHamtBitwidth)
	if err != nil {
		return nil, false, xerrors.Errorf("failed to load vestings: %w", err)
	}

	var out VestingRecord
	found, err := vestings.Get(key, &out)
	if err != nil {
		return nil, false, xerrors.Errorf("failed to load vesting %v: %w", key, err)
	}
	if !found {
		return nil, false, nil
	}
	return &out, true, nil
}

func (st *State) HasVesting(store adt.Store, key RelationKey) (bool, error) {
	vestings, err := adt.AsMap(store, st.Vestings, builtin.DefaultHamtBitwidth)
	if err != nil {
		return false, xerrors.Errorf("failed to load vestings: %w", err)
	}
	return vestings.Has(key)
}

func (st *State) PutVesting(store adt.Store, key RelationKey, rec *VestingRecord) error {
	vestings, err := adt.AsMap(store, st.Vestings, builtin.DefaultHamtBitwidth)
	if err != nil {
		return xerrors.Errorf("failed to load vestings: %w", err)
	}
	if err := vestings.Put(key, rec); err != nil {
		return xerrors.Errorf("failed to put vesting %v: %w", key, err)
	}
	if st.Vestings, err = vestings.Root(); err != nil {
		return xerrors.Errorf("failed to flush vestings: %w", err)
	}
	return nil
}

// Appends an entry to the release journal.
func (st *State) AppendRelease(store adt.Store, entry *ReleaseEntry) error {
	releases, err := adt.AsArray(store, st.Releases, builtin.DefaultAmtBitwidth)
	if err != nil {
		return xerrors.Errorf("failed to load releases: %w", err)
	}
	if err := releases.AppendContinuous(entry); err != nil {
		return xerrors.Errorf("failed to append release: %w", err)
	}
	if st.Releases, err = releases.Root(); err != nil {
		return xerrors.Errorf("failed to flush releases: %w", err)
	}
	return nil
}

func (st *State) ReleaseCount(store adt.Store) (uint64, error) {
	releases, err := adt.AsArray(store, st.Releases, builtin.DefaultAmtBitwidth)
	if err != nil {
		return 0, xerrors.Errorf("failed to load releases: %w", err)
	}
	return releases.Length(), nil
}

// ReleasableAmount computes vested minus released for a key at an epoch.
// A missing record has nothing to release.
func (st *State) ReleasableAmount(store adt.Store, key RelationKey, now abi.ChainEpoch) (abi.TokenAmount, error) {
	rec, found, err := st.GetVesting(store, key)
	if err != nil {
		return big.Zero(), err
	}
	if !found {
		return big.Zero(), nil
	}
	return rec.ReleasableAmount(now)
}

func (st *State) ForEachVesting(store adt.Store, f func(key RelationKey, rec *VestingRecord) error) error {
	vestings, err := adt.AsMap(store, st.Vestings, builtin.DefaultHamtBitwidth)
	if err != nil {
		return xerrors.Errorf("failed to load vestings: %w", err)
	}
	var rec VestingRecord
	return vestings.ForEach(&rec, func(k string) error {
		key, err := relationKeyFromString(k)
		if err != nil {
			return err
		}
		cpy := rec
		return f(key, &cpy)
	})
}

// Visits the release journal in order.
func (st *State) ForEachRelease(store adt.Store, f func(idx int64, entry *ReleaseEntry) error) error {
	releases, err := adt.AsArray(store, st.Releases, builtin.DefaultAmtBitwidth)
	if err != nil {
		return xerrors.Errorf("failed to load releases: %w", err)
	}
	var entry ReleaseEntry
	return releases.ForEach(&entry, func(i int64) error {
		cpy := entry
		return f(i, &cpy)
	})
}
