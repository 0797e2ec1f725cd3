package token

import (
	addr "github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/filecoin-project/go-state-types/big"

	"github.com/filecoin-project/vesting-actors/actors/builtin"
	"github.com/filecoin-project/vesting-actors/actors/util/adt"
)

type StateSummary struct {
	Supply   abi.TokenAmount
	Balances map[addr.Address]abi.TokenAmount
}

// Checks internal invariants of token state.
func CheckStateInvariants(st *State, store adt.Store) (*StateSummary, *builtin.MessageAccumulator) {
	acc := &builtin.MessageAccumulator{}
	summary := &StateSummary{
		Supply:   st.Supply,
		Balances: make(map[addr.Address]abi.TokenAmount),
	}

	acc.Require(st.Issuer.Protocol() == addr.ID, "issuer %v is not an ID address", st.Issuer)

	balances, err := adt.AsBalanceTable(store, st.Balances)
	if err != nil {
		acc.Addf("error loading balances: %v", err)
		return summary, acc
	}
	total := big.Zero()
	err = balances.ForEach(func(key addr.Address, amount abi.TokenAmount) error {
		acc.Require(key.Protocol() == addr.ID, "balance key %v is not an ID address", key)
		acc.Require(amount.GreaterThanEqual(big.Zero()), "negative balance %v for %v", amount, key)
		summary.Balances[key] = amount
		total = big.Add(total, amount)
		return nil
	})
	acc.RequireNoError(err, "error iterating balances")
	acc.Require(total.Equals(st.Supply), "balances sum to %v, supply is %v", total, st.Supply)

	return summary, acc
}
