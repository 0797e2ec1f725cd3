package states

import (
	address "github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/big"
	cid "github.com/ipfs/go-cid"
	xerrors "golang.org/x/xerrors"

	"github.com/filecoin-project/vesting-actors/actors/builtin"
	"github.com/filecoin-project/vesting-actors/actors/util/adt"
)

var ErrActorNotFound = xerrors.New("actor not found")

type Actor struct {
	Head    cid.Cid
	Code    cid.Cid
	Balance big.Int
}

// A specialization of a map of ID addresses to actors.
type Tree struct {
	m     *adt.Map
	Store adt.Store
}

func LoadTree(s adt.Store, r cid.Cid) (*Tree, error) {
	m, err := adt.AsMap(s, r, builtin.DefaultHamtBitwidth)
	if err != nil {
		return nil, err
	}
	return &Tree{
		m:     m,
		Store: s,
	}, nil
}

func (t *Tree) Root() (cid.Cid, error) {
	return t.m.Root()
}

func (t *Tree) GetActor(addr address.Address) (*Actor, error) {
	if addr.Protocol() != address.ID {
		return nil, xerrors.Errorf("non-ID address %v invalid as actor key", addr)
	}
	var actor Actor
	found, err := t.m.Get(adt.AddrKey(addr), &actor)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, xerrors.Errorf("%v: %w", addr, ErrActorNotFound)
	}
	return &actor, nil
}

func (t *Tree) ForEach(fn func(addr address.Address, actor *Actor) error) error {
	var val Actor
	return t.m.ForEach(&val, func(key string) error {
		addr, err := address.NewFromBytes([]byte(key))
		if err != nil {
			return err
		}
		return fn(addr, &val)
	})
}
