package builtin

import (
	"github.com/filecoin-project/go-state-types/abi"
)

const (
	MethodSend        = abi.MethodNum(0)
	MethodConstructor = abi.MethodNum(1)
)

var MethodsAccount = struct {
	Constructor   abi.MethodNum
	PubkeyAddress abi.MethodNum
}{MethodConstructor, 2}

var MethodsToken = struct {
	Constructor  abi.MethodNum
	Mint         abi.MethodNum
	Transfer     abi.MethodNum
	TransferFrom abi.MethodNum
	Approve      abi.MethodNum
	BalanceOf    abi.MethodNum
	Allowance    abi.MethodNum
}{MethodConstructor, 2, 3, 4, 5, 6, 7}

var MethodsVesting = struct {
	Constructor      abi.MethodNum
	Deposit          abi.MethodNum
	Release          abi.MethodNum
	ReleasableAmount abi.MethodNum
}{MethodConstructor, 2, 3, 4}
