package db

import (
	"time"
)

// User table. Profile attributes feed the heuristic scorer.
type User struct {
	ID           string     `gorm:"primaryKey;size:36"`
	Username     string     `gorm:"uniqueIndex;size:64;not null"`
	Email        string     `gorm:"uniqueIndex;size:128;not null"`
	PasswordHash string     `gorm:"size:255;not null"`
	Active       bool       `gorm:"default:true"`
	Gender       string     `gorm:"size:16;not null"`
	Age          int        `gorm:"not null;default:0"`
	Location     string     `gorm:"size:64"`
	Occupation   string     `gorm:"size:64"`
	Bio          string     `gorm:"size:512"`
	Interests    StringList `gorm:"type:text"`
	AvatarURL    string     `gorm:"size:255"`
	LastLoginAt  time.Time
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// UserCard is a user's published profile card within one scene. Cards,
// not users, are what actors swipe on; resolving a card to its owner is
// the CardLookup contract.
type UserCard struct {
	ID          string    `gorm:"primaryKey;size:36"`
	UserID      string    `gorm:"size:36;not null;index:idx_card_owner_scene,priority:1"`
	SceneType   SceneType `gorm:"size:32;not null;index:idx_card_owner_scene,priority:2;index:idx_card_scene_role,priority:1"`
	RoleType    string    `gorm:"size:32;not null;index:idx_card_scene_role,priority:2"`
	DisplayName string    `gorm:"size:64"`
	Bio         string    `gorm:"size:512"`
	AvatarURL   string    `gorm:"size:255"`
	Visibility  string    `gorm:"size:16;not null;default:public"`
	IsActive    bool      `gorm:"not null;default:true"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

// MatchAction is one user's stance toward another user's card in a scene.
//
// Unique index uk_actor_target_card_scene enforces the natural key:
// at most one row per (actor, target user, target card, scene). A second
// submission for the same key is answered from the existing row, and a
// concurrent second writer loses the insert and refetches.
//
// Supporting indexes:
//   - idx_actor_scene_created(actor_id, scene_type, created_at)
//     drives "my actions" listings and statistics windows.
//   - idx_target_scene(target_user_id, scene_type)
//     drives the reverse lookup in the reciprocity check.
type MatchAction struct {
	ID           string       `gorm:"primaryKey;size:36"`
	ActorID      string       `gorm:"size:36;not null;uniqueIndex:uk_actor_target_card_scene,priority:1;index:idx_actor_scene_created,priority:1"`
	TargetUserID string       `gorm:"size:36;not null;uniqueIndex:uk_actor_target_card_scene,priority:2;index:idx_target_scene,priority:1"`
	TargetCardID string       `gorm:"size:36;not null;uniqueIndex:uk_actor_target_card_scene,priority:3"`
	ActionType   ActionType   `gorm:"size:32;not null"`
	SceneType    SceneType    `gorm:"size:32;not null;uniqueIndex:uk_actor_target_card_scene,priority:4;index:idx_actor_scene_created,priority:2;index:idx_target_scene,priority:2"`
	SceneContext string       `gorm:"type:text"`
	Source       ActionSource `gorm:"size:16;not null;default:user"`
	IsProcessed  bool         `gorm:"not null;default:false"`
	ProcessedAt  *time.Time
	CreatedAt    time.Time `gorm:"autoCreateTime;index:idx_actor_scene_created,priority:3"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// MatchRecord is the durable artifact of reciprocity. UserAID/UserBID
// are canonically ordered (UserAID < UserBID) so a pair maps to exactly
// one row per scene regardless of who acted first; the unique index
// uk_pair_scene is what resolves the two-writer race.
type MatchRecord struct {
	ID             string      `gorm:"primaryKey;size:36"`
	UserAID        string      `gorm:"size:36;not null;uniqueIndex:uk_pair_scene,priority:1"`
	UserBID        string      `gorm:"size:36;not null;uniqueIndex:uk_pair_scene,priority:2"`
	UserACardID    string      `gorm:"size:36;not null"`
	UserBCardID    string      `gorm:"size:36;not null"`
	SceneType      SceneType   `gorm:"size:32;not null;uniqueIndex:uk_pair_scene,priority:3"`
	Status         MatchStatus `gorm:"size:16;not null;default:matched;index:idx_status_active,priority:1"`
	UserAActionID  string      `gorm:"size:36;not null"`
	UserBActionID  string      `gorm:"size:36;not null"`
	MatchedAt      time.Time   `gorm:"not null"`
	LastActivityAt time.Time   `gorm:"not null"`
	IsActive       bool        `gorm:"not null;default:true;index:idx_status_active,priority:2"`
	ExpiryDate     *time.Time
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}
