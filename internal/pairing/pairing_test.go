package pairing

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newParticipants(n int) []uuid.UUID {
	ids := make([]uuid.UUID, n)
	for i := range ids {
		ids[i] = uuid.New()
	}
	return ids
}

// checkDerangement asserts the three assignment invariants: one pair per
// participant, receiver set == gifter set == participant set, no self-pair.
func checkDerangement(t *testing.T, participants []uuid.UUID, out []Assignment) {
	t.Helper()
	require.Len(t, out, len(participants))

	want := make(map[uuid.UUID]struct{}, len(participants))
	for _, id := range participants {
		want[id] = struct{}{}
	}

	gifters := make(map[uuid.UUID]struct{}, len(out))
	receivers := make(map[uuid.UUID]struct{}, len(out))
	for _, a := range out {
		require.NotEqual(t, a.GifterID, a.ReceiverID, "self-pair in assignment")
		_, ok := want[a.GifterID]
		require.True(t, ok, "gifter %s not a participant", a.GifterID)
		_, ok = want[a.ReceiverID]
		require.True(t, ok, "receiver %s not a participant", a.ReceiverID)
		gifters[a.GifterID] = struct{}{}
		receivers[a.ReceiverID] = struct{}{}
	}
	require.Len(t, gifters, len(participants), "a participant gifts more than once")
	require.Len(t, receivers, len(participants), "a participant receives more than once")
}

func TestAssignTooFewParticipants(t *testing.T) {
	for n := 0; n < MinParticipants; n++ {
		_, err := Assign(nil, newParticipants(n))
		assert.ErrorIs(t, err, ErrInsufficientParticipants, "n=%d", n)
	}
}

func TestAssignDuplicatesCollapse(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	// 4 entries but only 2 distinct participants
	_, err := Assign(nil, []uuid.UUID{a, b, a, b})
	assert.ErrorIs(t, err, ErrInsufficientParticipants)

	c := uuid.New()
	out, err := Assign(nil, []uuid.UUID{a, b, c, a})
	require.NoError(t, err)
	checkDerangement(t, []uuid.UUID{a, b, c}, out)
}

func TestAssignSmallestGroup(t *testing.T) {
	participants := newParticipants(3)
	out, err := Assign(nil, participants)
	require.NoError(t, err)
	checkDerangement(t, participants, out)
}

// Every run is randomized, so the invariants are asserted over many
// independent trials rather than against a fixed expected output.
func TestAssignInvariantsManyTrials(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, n := range []int{4, 5} {
		participants := newParticipants(n)
		for trial := 0; trial < 1000; trial++ {
			out, err := Assign(rng, participants)
			require.NoError(t, err, "n=%d trial=%d", n, trial)
			checkDerangement(t, participants, out)
		}
	}
}

func TestAssignLargeGroup(t *testing.T) {
	participants := newParticipants(200)
	out, err := Assign(rand.New(rand.NewSource(7)), participants)
	require.NoError(t, err)
	checkDerangement(t, participants, out)
}
