package db

// ActionType is the closed set of stances an actor can take on a card.
type ActionType string

const (
	ActionLike                ActionType = "like"
	ActionDislike             ActionType = "dislike"
	ActionSuperLike           ActionType = "super_like"
	ActionPass                ActionType = "pass"
	ActionCollection          ActionType = "collection"
	ActionAIRecommendSystem   ActionType = "ai_recommend_by_system"
	ActionAIRecommendPostChat ActionType = "ai_recommend_after_chat"
)

// Valid reports whether t is one of the known action types.
func (t ActionType) Valid() bool {
	switch t {
	case ActionLike, ActionDislike, ActionSuperLike, ActionPass,
		ActionCollection, ActionAIRecommendSystem, ActionAIRecommendPostChat:
		return true
	}
	return false
}

// Positive reports whether t expresses interest strong enough to
// participate in mutual matching. Dislikes, passes and collections
// never trigger a reciprocity check.
func (t ActionType) Positive() bool {
	return t == ActionLike || t == ActionSuperLike
}

// AIRecommendation reports whether t is an externally pre-computed
// recommendation rather than a user gesture.
func (t ActionType) AIRecommendation() bool {
	return t == ActionAIRecommendSystem || t == ActionAIRecommendPostChat
}

// SceneType scopes actions, matches and candidate pools to a named
// matching context.
type SceneType string

const (
	SceneDating   SceneType = "dating"
	SceneHousing  SceneType = "housing"
	SceneActivity SceneType = "activity"
)

func (s SceneType) Valid() bool {
	switch s {
	case SceneDating, SceneHousing, SceneActivity:
		return true
	}
	return false
}

// ActionSource records who produced an action row.
type ActionSource string

const (
	SourceUser   ActionSource = "user"
	SourceSystem ActionSource = "system"
	SourceAI     ActionSource = "ai"
)

func (s ActionSource) Valid() bool {
	switch s {
	case SourceUser, SourceSystem, SourceAI:
		return true
	}
	return false
}

// MatchStatus is the lifecycle state of a MatchRecord. Only the
// absent→matched transition is owned by this service; unmatch, expiry
// and blocking are driven externally.
type MatchStatus string

const (
	MatchStatusMatched   MatchStatus = "matched"
	MatchStatusUnmatched MatchStatus = "unmatched"
	MatchStatusExpired   MatchStatus = "expired"
	MatchStatusBlocked   MatchStatus = "blocked"
)
