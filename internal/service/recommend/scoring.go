package recommend

import (
	"fmt"
	"strings"
)

// Profile is the attribute set the scorer consumes for either side.
type Profile struct {
	Age       int
	Location  string
	Interests []string
}

// Scoring weights. Base floor plus three scaled components, clamped to
// [0,100].
const (
	scoreBase       = 50
	locationBonus   = 20
	interestWeight  = 5
	interestCap     = 20
	ageProximityCap = 10
	scoreCeiling    = 100
)

// Score computes a deterministic match score and reason for a candidate
// against the requester. Pure function: identical inputs always yield
// the identical score, which is what keeps paginated recommendation
// pages stable across repeated requests.
func Score(requester, candidate Profile) (int, string) {
	score := scoreBase
	var reasons []string

	if requester.Location != "" && normalizeLocation(requester.Location) == normalizeLocation(candidate.Location) {
		score += locationBonus
		reasons = append(reasons, "same city")
	}

	if shared := sharedInterests(requester.Interests, candidate.Interests); shared > 0 {
		contribution := shared * interestWeight
		if contribution > interestCap {
			contribution = interestCap
		}
		score += contribution
		reasons = append(reasons, fmt.Sprintf("%d shared interests", shared))
	}

	if requester.Age > 0 && candidate.Age > 0 {
		diff := requester.Age - candidate.Age
		if diff < 0 {
			diff = -diff
		}
		if contribution := ageProximityCap - diff; contribution > 0 {
			score += contribution
			reasons = append(reasons, "close in age")
		}
	}

	if score > scoreCeiling {
		score = scoreCeiling
	}
	if score < 0 {
		score = 0
	}

	reason := "baseline match"
	if len(reasons) > 0 {
		reason = strings.Join(reasons, ", ")
	}
	return score, reason
}

func normalizeLocation(loc string) string {
	return strings.ToLower(strings.TrimSpace(loc))
}

func sharedInterests(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(a))
	for _, tag := range a {
		set[normalizeLocation(tag)] = struct{}{}
	}
	count := 0
	seen := make(map[string]struct{}, len(b))
	for _, tag := range b {
		key := normalizeLocation(tag)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if _, ok := set[key]; ok {
			count++
		}
	}
	return count
}
