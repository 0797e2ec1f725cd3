package runtime

import (
	"io"

	cid "github.com/ipfs/go-cid"

	"github.com/filecoin-project/go-state-types/rt"
	cbg "github.com/whyrusleeping/cbor-gen"
)

// Concrete types associated with the runtime interface.

// These interfaces are intended to match those from whyrusleeping/cbor-gen, such that code generated from that
// system is automatically usable here (but not mandatory).
type CBORMarshaler = cbg.CBORMarshaler
type CBORUnmarshaler = cbg.CBORUnmarshaler

type CBORer interface {
	CBORMarshaler
	CBORUnmarshaler
}

// Wraps already-serialized bytes as CBOR-marshalable.
type CBORBytes []byte

func (b CBORBytes) MarshalCBOR(w io.Writer) error {
	_, err := w.Write(b)
	return err
}

func (b *CBORBytes) UnmarshalCBOR(r io.Reader) error {
	var c cbg.Deferred
	if err := c.UnmarshalCBOR(r); err != nil {
		return err
	}
	*b = c.Raw
	return nil
}

type LogLevel = rt.LogLevel

const (
	DEBUG = rt.DEBUG
	INFO  = rt.INFO
	WARN  = rt.WARN
	ERROR = rt.ERROR
)

// VMActor is the interface that all actor code types satisfy so the VM can dispatch to them.
type VMActor interface {
	// Exports returns a slice of methods exported by the actor, indexed by method number.
	// Skipped/deprecated method numbers are represented by nil.
	Exports() []interface{}

	// Code returns the code ID for this actor.
	Code() cid.Cid

	// IsSingleton returns true if only one instance of this actor should ever be created.
	IsSingleton() bool

	// State returns a new State object for this actor. This can be used to
	// decode the actor's state.
	State() CBORer
}
