package vm

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/pkg/errors"

	"github.com/filecoin-project/vesting-actors/actors/runtime"
	"github.com/filecoin-project/vesting-actors/actors/runtime/exitcode"
	"github.com/filecoin-project/vesting-actors/actors/serde"
)

// Environment variable naming the directory message vectors are written to. Generation is off when unset.
const VectorDirEnv = "VESTING_ACTORS_VECTORS"

//
// Message vector generation utilities
//

// A message vector records one top level message with the state roots around it, so a run can be
// replayed or diffed against another implementation.
type messageVector struct {
	Epoch    abi.ChainEpoch    `json:"epoch"`
	From     string            `json:"from"`
	To       string            `json:"to"`
	Method   abi.MethodNum     `json:"method"`
	Params   string            `json:"params"`
	PreRoot  string            `json:"pre_root"`
	PostRoot string            `json:"post_root"`
	Code     exitcode.ExitCode `json:"exit_code"`
	Return   string            `json:"return"`
	Events   []string          `json:"events"`
}

type vectorGen struct {
	dir     string
	preRoot string
}

func newVectorGen() *vectorGen {
	return &vectorGen{dir: os.Getenv(VectorDirEnv)}
}

func (g *vectorGen) enabled() bool {
	return g.dir != ""
}

func (g *vectorGen) before(v *VM) {
	if g.enabled() {
		g.preRoot = v.StateRoot().String()
	}
}

func (g *vectorGen) after(v *VM, from, to address.Address, method abi.MethodNum, params interface{}, result MessageResult) error {
	if !g.enabled() {
		return nil
	}
	paramBytes, err := encodeHex(params)
	if err != nil {
		return errors.Wrap(err, "failed to encode params")
	}
	var ret interface{}
	if result.Ret != nil {
		ret = result.Ret
	}
	retBytes, err := encodeHex(ret)
	if err != nil {
		return errors.Wrap(err, "failed to encode return")
	}

	vector := messageVector{
		Epoch:    v.currentEpoch,
		From:     from.String(),
		To:       to.String(),
		Method:   method,
		Params:   paramBytes,
		PreRoot:  g.preRoot,
		PostRoot: v.StateRoot().String(),
		Code:     result.Code,
		Return:   retBytes,
		Events:   EventNames(result.Events),
	}
	vectorBytes, err := json.MarshalIndent(vector, "", "  ")
	if err != nil {
		return err
	}

	h := sha256.Sum256(vectorBytes)
	fname := fmt.Sprintf("%x-%s-%s-%d.json", h[:8], from, to, method)
	return writeVector(g.dir, fname, vectorBytes)
}

func encodeHex(obj interface{}) (string, error) {
	if isNil(obj) {
		return "", nil
	}
	m, ok := obj.(runtime.CBORMarshaler)
	if !ok {
		return "", errors.Errorf("%T is not serializable", obj)
	}
	b, err := serde.Serialize(m)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// dir is the directory containing all vectors
// fname is the name of this file
// vectorBytes is the data to write to file
func writeVector(dir, fname string, vectorBytes []byte) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, fname), vectorBytes, 0644)
}
