package token

import (
	"bytes"

	addr "github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/filecoin-project/go-state-types/big"
	cid "github.com/ipfs/go-cid"
	"golang.org/x/xerrors"

	"github.com/filecoin-project/vesting-actors/actors/builtin"
	"github.com/filecoin-project/vesting-actors/actors/util/adt"
)

type State struct {
	// The only address allowed to mint.
	Issuer addr.Address
	// Sum of all balances.
	Supply abi.TokenAmount
	// BalanceTable: owner -> amount
	Balances cid.Cid
	// HAMT[hash(owner, spender)]TokenAmount
	Allowances cid.Cid
}

func ConstructState(store adt.Store, issuer addr.Address) (*State, error) {
	emptyBalances, err := adt.StoreEmptyMap(store, adt.BalanceTableBitwidth)
	if err != nil {
		return nil, xerrors.Errorf("failed to create empty balance table: %w", err)
	}
	emptyAllowances, err := adt.StoreEmptyMap(store, builtin.DefaultHamtBitwidth)
	if err != nil {
		return nil, xerrors.Errorf("failed to create empty allowances: %w", err)
	}
	return &State{
		Issuer:     issuer,
		Supply:     big.Zero(),
		Balances:   emptyBalances,
		Allowances: emptyAllowances,
	}, nil
}

// AllowanceKey derives the allowance map key for an (owner, spender) pair.
func AllowanceKey(owner, spender addr.Address, hash func([]byte) [32]byte) (adt.BytesKey, error) {
	params := AllowanceParams{Owner: owner, Spender: spender}
	buf := bytes.Buffer{}
	if err := params.MarshalCBOR(&buf); err != nil {
		return nil, xerrors.Errorf("failed to marshal allowance key (%v, %v): %w", owner, spender, err)
	}
	digest := hash(buf.Bytes())
	return adt.BytesKey(digest[:]), nil
}

func (st *State) BalanceOf(store adt.Store, owner addr.Address) (abi.TokenAmount, error) {
	balances, err := adt.AsBalanceTable(store, st.Balances)
	if err != nil {
		return big.Zero(), xerrors.Errorf("failed to load balances: %w", err)
	}
	return balances.Get(owner)
}

func (st *State) Mint(store adt.Store, to addr.Address, amount abi.TokenAmount) error {
	balances, err := adt.AsBalanceTable(store, st.Balances)
	if err != nil {
		return xerrors.Errorf("failed to load balances: %w", err)
	}
	if err := balances.Add(to, amount); err != nil {
		return xerrors.Errorf("failed to credit %v: %w", to, err)
	}
	if st.Balances, err = balances.Root(); err != nil {
		return xerrors.Errorf("failed to flush balances: %w", err)
	}
	st.Supply = big.Add(st.Supply, amount)
	return nil
}

// Moves amount between balances. Returns false, leaving state untouched, if from holds less than amount.
func (st *State) Transfer(store adt.Store, from, to addr.Address, amount abi.TokenAmount) (bool, error) {
	balances, err := adt.AsBalanceTable(store, st.Balances)
	if err != nil {
		return false, xerrors.Errorf("failed to load balances: %w", err)
	}
	fromBalance, err := balances.Get(from)
	if err != nil {
		return false, xerrors.Errorf("failed to load balance of %v: %w", from, err)
	}
	if fromBalance.LessThan(amount) {
		return false, nil
	}
	if err := balances.MustSubtract(from, amount); err != nil {
		return false, xerrors.Errorf("failed to debit %v: %w", from, err)
	}
	if err := balances.Add(to, amount); err != nil {
		return false, xerrors.Errorf("failed to credit %v: %w", to, err)
	}
	if st.Balances, err = balances.Root(); err != nil {
		return false, xerrors.Errorf("failed to flush balances: %w", err)
	}
	return true, nil
}

func (st *State) GetAllowance(store adt.Store, key adt.BytesKey) (abi.TokenAmount, error) {
	allowances, err := adt.AsMap(store, st.Allowances, builtin.DefaultHamtBitwidth)
	if err != nil {
		return big.Zero(), xerrors.Errorf("failed to load allowances: %w", err)
	}
	var out abi.TokenAmount
	found, err := allowances.Get(key, &out)
	if err != nil {
		return big.Zero(), xerrors.Errorf("failed to load allowance: %w", err)
	}
	if !found {
		return big.Zero(), nil
	}
	return out, nil
}

func (st *State) SetAllowance(store adt.Store, key adt.BytesKey, amount abi.TokenAmount) error {
	allowances, err := adt.AsMap(store, st.Allowances, builtin.DefaultHamtBitwidth)
	if err != nil {
		return xerrors.Errorf("failed to load allowances: %w", err)
	}
	if err := allowances.Put(key, &amount); err != nil {
		return xerrors.Errorf("failed to put allowance: %w", err)
	}
	if st.Allowances, err = allowances.Root(); err != nil {
		return xerrors.Errorf("failed to flush allowances: %w", err)
	}
	return nil
}
