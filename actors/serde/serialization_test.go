package serde_test

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filecoin-project/vesting-actors/actors/builtin/vesting"
	"github.com/filecoin-project/vesting-actors/actors/serde"
	tutil "github.com/filecoin-project/vesting-actors/support/testing"
)

func TestSerialize(t *testing.T) {
	params := &vesting.RelationParams{Payer: tutil.NewIDAddr(t, 101), Receiver: tutil.NewIDAddr(t, 102)}
	b, err := serde.Serialize(params)
	require.NoError(t, err)
	assert.Equal(t, "82420065420066", hex.EncodeToString(b))
	assert.Equal(t, b, serde.MustSerialize(params))
}
