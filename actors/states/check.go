package states

import (
	addr "github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/big"
	"golang.org/x/xerrors"

	"github.com/filecoin-project/vesting-actors/actors/builtin"
	"github.com/filecoin-project/vesting-actors/actors/builtin/account"
	"github.com/filecoin-project/vesting-actors/actors/builtin/token"
	"github.com/filecoin-project/vesting-actors/actors/builtin/vesting"
	"github.com/filecoin-project/vesting-actors/actors/puppet"
)

// Within this code, Go errors are not expected, but are often converted to messages so that execution
// can continue to find more errors rather than fail with no insight.
// Only errors that are particularly troublesome to recover from should propagate as Go errors.
func CheckStateInvariants(tree *Tree) (*builtin.MessageAccumulator, error) {
	acc := &builtin.MessageAccumulator{}
	var vestingSummary *vesting.StateSummary
	tokenSummaries := make(map[addr.Address]*token.StateSummary)

	if err := tree.ForEach(func(key addr.Address, actor *Actor) error {
		acc := acc.WithPrefix("%v ", key) // Intentional shadow
		if key.Protocol() != addr.ID {
			acc.Addf("unexpected address protocol in state tree root: %v", key)
		}
		if actor.Balance.LessThan(big.Zero()) {
			acc.Addf("negative balance %v", actor.Balance)
		}

		switch actor.Code {
		case builtin.SystemActorCodeID:

		case builtin.AccountActorCodeID:
			var st account.State
			if err := tree.Store.Get(tree.Store.Context(), actor.Head, &st); err != nil {
				return err
			}
			_, msgs := account.CheckStateInvariants(&st, key)
			acc.WithPrefix("account: ").AddAll(msgs)

		case builtin.TokenActorCodeID:
			var st token.State
			if err := tree.Store.Get(tree.Store.Context(), actor.Head, &st); err != nil {
				return err
			}
			summary, msgs := token.CheckStateInvariants(&st, tree.Store)
			acc.WithPrefix("token: ").AddAll(msgs)
			tokenSummaries[key] = summary

		case builtin.VestingActorCodeID:
			if key != builtin.VestingActorAddr {
				acc.Addf("vesting actor at non-singleton address")
			}
			var st vesting.State
			if err := tree.Store.Get(tree.Store.Context(), actor.Head, &st); err != nil {
				return err
			}
			summary, msgs := vesting.CheckStateInvariants(&st, tree.Store)
			acc.WithPrefix("vesting: ").AddAll(msgs)
			vestingSummary = summary

		case puppet.PuppetActorCodeID:

		default:
			return xerrors.Errorf("unexpected actor code CID %v for address %v", actor.Code, key)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	//
	// Perform cross-actor checks from state summaries here.
	//

	if vestingSummary == nil {
		acc.Addf("no vesting actor")
	} else {
		CheckVestingAgainstTokens(acc, vestingSummary, tokenSummaries)
	}

	return acc, nil
}

// The vesting actor's balance of each token must equal what it has locked of that token.
// Assets that aren't token actors are not checked.
func CheckVestingAgainstTokens(acc *builtin.MessageAccumulator, vestingSummary *vesting.StateSummary, tokenSummaries map[addr.Address]*token.StateSummary) {
	for tokenAddr, tokenSummary := range tokenSummaries { // nolint:nomaprange
		held, ok := tokenSummary.Balances[builtin.VestingActorAddr]
		if !ok {
			held = big.Zero()
		}
		locked, ok := vestingSummary.LockedByAsset[tokenAddr]
		if !ok {
			locked = big.Zero()
		}
		acc.Require(held.Equals(locked), "vesting actor holds %v of token %v but has locked %v", held, tokenAddr, locked)
	}
}
