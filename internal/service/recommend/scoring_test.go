package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreBaseline(t *testing.T) {
	score, reason := Score(Profile{}, Profile{})
	assert.Equal(t, 50, score)
	assert.Equal(t, "baseline match", reason)
}

func TestScoreLocationComponent(t *testing.T) {
	requester := Profile{Location: "Shanghai"}

	score, reason := Score(requester, Profile{Location: "  shanghai "})
	assert.Equal(t, 70, score)
	assert.Contains(t, reason, "same city")

	score, _ = Score(requester, Profile{Location: "Beijing"})
	assert.Equal(t, 50, score)

	// An empty requester location never matches anything.
	score, _ = Score(Profile{}, Profile{Location: ""})
	assert.Equal(t, 50, score)
}

func TestScoreInterestComponent(t *testing.T) {
	requester := Profile{Interests: []string{"hiking", "jazz", "cooking", "film", "tennis"}}

	score, reason := Score(requester, Profile{Interests: []string{"Jazz", "hiking"}})
	assert.Equal(t, 60, score)
	assert.Contains(t, reason, "2 shared interests")

	// Five shared interests would contribute 25; capped at 20.
	score, _ = Score(requester, Profile{Interests: requester.Interests})
	assert.Equal(t, 70, score)

	// Duplicate candidate tags count once.
	score, _ = Score(requester, Profile{Interests: []string{"jazz", "jazz", "jazz"}})
	assert.Equal(t, 55, score)
}

func TestScoreAgeComponent(t *testing.T) {
	cases := []struct {
		requesterAge, candidateAge, want int
	}{
		{30, 30, 60}, // diff 0 -> +10
		{30, 33, 57}, // diff 3 -> +7
		{30, 40, 50}, // diff 10 -> 0
		{30, 45, 50}, // beyond the window
		{0, 30, 50},  // unknown age contributes nothing
	}
	for _, tc := range cases {
		score, _ := Score(Profile{Age: tc.requesterAge}, Profile{Age: tc.candidateAge})
		assert.Equal(t, tc.want, score, "ages %d/%d", tc.requesterAge, tc.candidateAge)
	}
}

func TestScoreClampedToCeiling(t *testing.T) {
	p := Profile{Age: 30, Location: "Shanghai", Interests: []string{"a", "b", "c", "d", "e"}}
	score, _ := Score(p, p)
	assert.Equal(t, 100, score)
}

func TestScoreIsDeterministic(t *testing.T) {
	requester := Profile{Age: 28, Location: "Shanghai", Interests: []string{"hiking", "jazz"}}
	candidate := Profile{Age: 31, Location: "shanghai", Interests: []string{"jazz", "film"}}

	firstScore, firstReason := Score(requester, candidate)
	for i := 0; i < 10; i++ {
		score, reason := Score(requester, candidate)
		assert.Equal(t, firstScore, score)
		assert.Equal(t, firstReason, reason)
	}
}
