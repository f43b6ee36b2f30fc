// Package pairing produces the gifter->receiver assignment for a game.
//
// The assignment is a uniformly-random derangement of the participant
// set: every participant gifts exactly once, receives exactly once, and
// nobody is assigned to themself.
package pairing

import (
	"errors"
	"math/rand"

	"github.com/google/uuid"
)

// MinParticipants is the smallest group that can be paired. Below three
// a self-free assignment is either impossible (n=1) or forces a mutual
// pair (n=2), which the product disallows.
const MinParticipants = 3

// maxAttempts bounds the rejection-sampling loop. The acceptance rate of
// a random permutation having no fixed point tends to 1/e, so hitting
// this bound means the random source is broken, not unlucky.
const maxAttempts = 64

var (
	// ErrInsufficientParticipants is returned when fewer than
	// MinParticipants distinct participants are supplied.
	ErrInsufficientParticipants = errors.New("pairing: need at least 3 distinct participants")

	// ErrPairingFailed is returned if no derangement was found within
	// the attempt bound.
	ErrPairingFailed = errors.New("pairing: failed to generate a valid assignment")
)

// Assignment maps one gifter to their receiver.
type Assignment struct {
	GifterID   uuid.UUID
	ReceiverID uuid.UUID
}

// Assign returns one Assignment per distinct participant such that the
// receiver set equals the gifter set and no participant is paired with
// themself. Duplicate IDs in the input are collapsed.
//
// Assign is pure; persisting the result (and making sure a game is only
// assigned once) is the caller's job. Pass a nil rng to use the shared
// math/rand source.
func Assign(rng *rand.Rand, participants []uuid.UUID) ([]Assignment, error) {
	ids := dedupe(participants)
	n := len(ids)
	if n < MinParticipants {
		return nil, ErrInsufficientParticipants
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		perm := permutation(rng, n)
		if hasFixedPoint(perm) {
			continue
		}
		out := make([]Assignment, n)
		for i, j := range perm {
			out[i] = Assignment{GifterID: ids[i], ReceiverID: ids[j]}
		}
		return out, nil
	}
	return nil, ErrPairingFailed
}

func permutation(rng *rand.Rand, n int) []int {
	if rng != nil {
		return rng.Perm(n)
	}
	return rand.Perm(n)
}

func hasFixedPoint(perm []int) bool {
	for i, j := range perm {
		if i == j {
			return true
		}
	}
	return false
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
