package main

import (
	gen "github.com/whyrusleeping/cbor-gen"

	"github.com/filecoin-project/vesting-actors/actors/builtin/account"
	"github.com/filecoin-project/vesting-actors/actors/builtin/system"
	"github.com/filecoin-project/vesting-actors/actors/builtin/token"
	"github.com/filecoin-project/vesting-actors/actors/builtin/vesting"
	"github.com/filecoin-project/vesting-actors/actors/puppet"
	"github.com/filecoin-project/vesting-actors/support/vm"
)

func main() {
	// Actors
	if err := gen.WriteTupleEncodersToFile("./actors/builtin/system/cbor_gen.go", "system",
		// actor state
		system.State{},
	); err != nil {
		panic(err)
	}

	if err := gen.WriteTupleEncodersToFile("./actors/builtin/account/cbor_gen.go", "account",
		// actor state
		account.State{},
	); err != nil {
		panic(err)
	}

	if err := gen.WriteTupleEncodersToFile("./actors/builtin/token/cbor_gen.go", "token",
		// actor state
		token.State{},
		// method params
		token.ConstructorParams{},
		token.MintParams{},
		token.TransferParams{},
		token.TransferFromParams{},
		token.ApproveParams{},
		token.AllowanceParams{},
		// events
		token.TransferredEvent{},
		token.ApprovedEvent{},
	); err != nil {
		panic(err)
	}

	if err := gen.WriteTupleEncodersToFile("./actors/builtin/vesting/cbor_gen.go", "vesting",
		// actor state
		vesting.State{},
		vesting.VestingRecord{},
		vesting.ReleaseEntry{},
		// method params
		vesting.DepositParams{},
		vesting.RelationParams{},
		// events
		vesting.DepositedEvent{},
		vesting.ReleasedEvent{},
	); err != nil {
		panic(err)
	}

	if err := gen.WriteTupleEncodersToFile("./actors/puppet/cbor_gen.go", "puppet",
		// actor state
		puppet.State{},
		// method params
		puppet.SendParams{},
		puppet.SendReturn{},
	); err != nil {
		panic(err)
	}

	// Test VM
	if err := gen.WriteTupleEncodersToFile("./support/vm/cbor_gen.go", "vm",
		vm.TestActor{},
	); err != nil {
		panic(err)
	}
}
