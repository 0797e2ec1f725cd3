package builtin

import (
	"sync"

	"github.com/ipfs/go-cid"

	"github.com/filecoin-project/vesting-actors/actors/runtime"
)

// Per-code log level overrides. Actors ask for their level with a default, so
// diagnostics for one actor can be raised without touching the others.
type ActorLog struct {
	sync.RWMutex
	Actors map[cid.Cid]runtime.LogLevel
}

var actorLogSingle *ActorLog

func init() {
	actorLogSingle = &ActorLog{Actors: make(map[cid.Cid]runtime.LogLevel)}
}

func SetActorsLogLevel(logLevel runtime.LogLevel, actors ...runtime.VMActor) {
	actorLogSingle.Lock()
	defer actorLogSingle.Unlock()

	for _, actor := range actors {
		actorLogSingle.Actors[actor.Code()] = logLevel
	}
}

// ResetActorsLogLevel drops the overrides for the given actors.
func ResetActorsLogLevel(actors ...runtime.VMActor) {
	actorLogSingle.Lock()
	defer actorLogSingle.Unlock()

	for _, actor := range actors {
		delete(actorLogSingle.Actors, actor.Code())
	}
}

func GetActorLogLevel(actor runtime.VMActor, defValue runtime.LogLevel) runtime.LogLevel {
	actorLogSingle.RLock()
	defer actorLogSingle.RUnlock()

	actorLogLevel, ok := actorLogSingle.Actors[actor.Code()]
	if ok {
		return actorLogLevel
	}

	return defValue
}
