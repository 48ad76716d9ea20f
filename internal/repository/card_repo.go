package repository

import (
	"context"
	"errors"

	"github.com/minglehq/matchsvc/internal/db"

	"gorm.io/gorm"
)

// CardRef is the typed result of resolving a card id: who owns it and
// which scene it belongs to.
type CardRef struct {
	CardID      string
	OwnerUserID string
	SceneType   db.SceneType
	RoleType    string
}

// Candidate is one profile pulled for recommendation: the card plus the
// owner attributes the scorer consumes.
type Candidate struct {
	UserID      string
	CardID      string
	DisplayName string
	AvatarURL   string
	Bio         string
	Age         int
	Gender      string
	Location    string
	Occupation  string
	Interests   db.StringList
}

// CardRepository resolves cards to owners and supplies candidate pools.
// It is the storage-backed implementation of the CardLookup and
// CandidateProvider contracts the match core depends on.
type CardRepository struct {
	db *gorm.DB
}

// NewCardRepository creates a new repository bound to the given DB connection.
func NewCardRepository(database *gorm.DB) *CardRepository {
	return &CardRepository{db: database}
}

// Resolve maps a card id to its owning user and scene. Returns nil when
// the card does not exist or is inactive.
func (r *CardRepository) Resolve(ctx context.Context, cardID string) (*CardRef, error) {
	var card db.UserCard
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", cardID, true).
		First(&card).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &CardRef{
		CardID:      card.ID,
		OwnerUserID: card.UserID,
		SceneType:   card.SceneType,
		RoleType:    card.RoleType,
	}, nil
}

// ListCandidates returns up to limit public, active cards for the scene
// and role, excluding the requesting user's own cards, joined with the
// owner's profile attributes. Ordered by card creation descending for a
// stable pool.
func (r *CardRepository) ListCandidates(
	ctx context.Context,
	scene db.SceneType,
	roleType string,
	excludeUserID string,
	limit int,
) ([]Candidate, error) {
	query := r.db.WithContext(ctx).
		Table("user_cards c").
		Select(`c.user_id, c.id AS card_id, c.display_name, c.avatar_url, c.bio,
			u.age, u.gender, u.location, u.occupation, u.interests`).
		Joins("JOIN users u ON u.id = c.user_id").
		Where("c.scene_type = ? AND c.user_id <> ?", scene, excludeUserID).
		Where("c.is_active = ? AND c.visibility = ?", true, "public").
		Where("u.active = ?", true)
	if roleType != "" {
		query = query.Where("c.role_type = ?", roleType)
	}

	type row struct {
		UserID      string
		CardID      string
		DisplayName string
		AvatarURL   string
		Bio         string
		Age         int
		Gender      string
		Location    string
		Occupation  string
		Interests   db.StringList
	}
	var rows []row
	err := query.
		Order("c.created_at DESC, c.id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(rows))
	for _, rw := range rows {
		candidates = append(candidates, Candidate{
			UserID:      rw.UserID,
			CardID:      rw.CardID,
			DisplayName: rw.DisplayName,
			AvatarURL:   rw.AvatarURL,
			Bio:         rw.Bio,
			Age:         rw.Age,
			Gender:      rw.Gender,
			Location:    rw.Location,
			Occupation:  rw.Occupation,
			Interests:   rw.Interests,
		})
	}
	return candidates, nil
}

// FindUser returns a user row, or nil when absent.
func (r *CardRepository) FindUser(ctx context.Context, userID string) (*db.User, error) {
	var user db.User
	err := r.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindUsersByIDs returns the users for the given ids, keyed by id.
func (r *CardRepository) FindUsersByIDs(ctx context.Context, ids []string) (map[string]db.User, error) {
	if len(ids) == 0 {
		return map[string]db.User{}, nil
	}
	var users []db.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	byID := make(map[string]db.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return byID, nil
}
