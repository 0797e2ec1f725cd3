package exported_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/filecoin-project/vesting-actors/actors/builtin"
	"github.com/filecoin-project/vesting-actors/actors/builtin/exported"
	"github.com/filecoin-project/vesting-actors/support/mock"
)

func TestKnownActors(t *testing.T) {
	seen := map[string]bool{}
	for _, actor := range exported.BuiltinActors() {
		code := actor.Code()
		assert.True(t, builtin.IsBuiltinActor(code), "%v is not a builtin actor", code)
		name := builtin.ActorNameByCode(code)
		assert.False(t, seen[name], "duplicate actor %s", name)
		seen[name] = true

		t.Run(name, func(t *testing.T) {
			mock.CheckActorExports(t, actor)
		})
	}
	assert.Len(t, seen, 4)
}
