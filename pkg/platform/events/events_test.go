package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEventWireFormat(t *testing.T) {
	event := New(KindCredentialDecayed, "0x00000000000000000000000000000000000a11ce")
	event.Reputation = 0

	payload, err := json.Marshal(event)
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(payload, &wire))

	// A reputation reset to zero must stay visible on the wire.
	rep, ok := wire["reputation"]
	require.True(t, ok)
	require.EqualValues(t, 0, rep)

	// Unset per-kind fields stay off the wire.
	_, ok = wire["seed"]
	require.False(t, ok)
	_, ok = wire["outcome"]
	require.False(t, ok)
	_, ok = wire["reason"]
	require.False(t, ok)
}

func TestEventStampsIdentity(t *testing.T) {
	event := New(KindChallengeIssued, "0x00000000000000000000000000000000000a11ce")
	require.NotEmpty(t, event.ID)
	require.Equal(t, KindChallengeIssued, event.Kind)
	require.False(t, event.At.IsZero())
}
