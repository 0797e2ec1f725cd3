package serde

import (
	"bytes"

	"golang.org/x/xerrors"

	"github.com/filecoin-project/vesting-actors/actors/runtime"
)

// Serializes a structure or value to CBOR.
func Serialize(o runtime.CBORMarshaler) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := o.MarshalCBOR(buf); err != nil {
		return nil, xerrors.Errorf("failed to serialize %T: %w", o, err)
	}
	return buf.Bytes(), nil
}

func MustSerialize(o runtime.CBORMarshaler) []byte {
	s, err := Serialize(o)
	if err != nil {
		panic(err)
	}
	return s
}
