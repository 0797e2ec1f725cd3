package account

import (
	"github.com/filecoin-project/go-address"

	"github.com/filecoin-project/vesting-actors/actors/builtin"
)

type StateSummary struct {
	PubKeyAddr address.Address
}

// Checks internal invariants of account state.
func CheckStateInvariants(st *State, idAddr address.Address) (*StateSummary, *builtin.MessageAccumulator) {
	acc := &builtin.MessageAccumulator{}
	accountAddress := st.Address

	// The burnt funds account has no key.
	if idAddr == builtin.BurntFundsActorAddr {
		acc.Require(accountAddress.Protocol() == address.ID, "burnt actor state address %v must be an ID address", accountAddress)
	} else {
		acc.Require(
			accountAddress.Protocol() == address.BLS || accountAddress.Protocol() == address.SECP256K1,
			"actor address %v must be BLS or SECP256K1 protocol", accountAddress)
	}

	return &StateSummary{
		PubKeyAddr: accountAddress,
	}, acc
}
