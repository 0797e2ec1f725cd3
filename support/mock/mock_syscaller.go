package mock

import (
	"github.com/minio/blake2b-simd"

	"github.com/filecoin-project/vesting-actors/actors/runtime"
)

type HasherFunc func(data []byte) [32]byte

type syscaller struct {
	Hasher HasherFunc
}

// Hashes with blake2b-256 unless a test installs its own hasher.
func (s *syscaller) HashBlake2b(data []byte) [32]byte {
	if s.Hasher == nil {
		return blake2b.Sum256(data)
	}
	return s.Hasher(data)
}

var _ runtime.Syscalls = &syscaller{}
