package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var seedLocations = []string{"Beijing", "Shanghai", "Shenzhen", "Hangzhou", "Chengdu"}

var seedInterests = []string{
	"travel", "music", "movies", "reading", "fitness",
	"photography", "food", "gaming", "hiking", "pets",
}

// SeedTestData resets the database and populates it with demo users,
// cards and actions.
//
// Behavior:
//  1. Clears users, user_cards, match_actions and match_records.
//  2. Creates 20 users with hashed passwords and dating-scene cards.
//  3. Generates likes/dislikes with reciprocal pairs sprinkled in so the
//     mutual-match path has data to chew on.
func SeedTestData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	for _, table := range []string{"match_records", "match_actions", "user_cards", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	log.Println("Cleared existing data")

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	userIDs := make([]string, 0, 20)
	cardsByUser := make(map[string]string, 20)
	for i := 1; i <= 20; i++ {
		gender := "male"
		if i > 10 {
			gender = "female"
		}
		user := User{
			ID:           fmt.Sprintf("u%03d", i),
			Username:     fmt.Sprintf("user%d", i),
			Email:        fmt.Sprintf("user%d@example.com", i),
			PasswordHash: string(hash),
			Active:       true,
			Gender:       gender,
			Age:          22 + r.Intn(15),
			Location:     seedLocations[r.Intn(len(seedLocations))],
			Interests:    pickInterests(r),
			LastLoginAt:  time.Now().Add(-time.Duration(r.Intn(500)) * time.Hour),
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}
		userIDs = append(userIDs, user.ID)

		card := UserCard{
			ID:          uuid.NewString(),
			UserID:      user.ID,
			SceneType:   SceneDating,
			RoleType:    "seeker",
			DisplayName: user.Username,
			Visibility:  "public",
			IsActive:    true,
		}
		if err := db.Create(&card).Error; err != nil {
			return fmt.Errorf("failed to seed card: %w", err)
		}
		cardsByUser[user.ID] = card.ID
	}
	log.Println("Seeded 20 users with dating cards.")

	counter := 0
	for _, actorID := range userIDs {
		for j := 0; j < 8; j++ {
			targetID := userIDs[r.Intn(len(userIDs))]
			if targetID == actorID {
				continue
			}

			actionType := ActionLike
			if r.Intn(100) >= 70 {
				actionType = ActionDislike
			}

			// Guarantee reciprocal likes every 3rd pair.
			if counter%3 == 0 {
				actionType = ActionLike
				reverse := MatchAction{
					ID:           uuid.NewString(),
					ActorID:      targetID,
					TargetUserID: actorID,
					TargetCardID: cardsByUser[actorID],
					ActionType:   ActionLike,
					SceneType:    SceneDating,
					Source:       SourceUser,
				}
				_ = db.Create(&reverse).Error // duplicate keys are expected here
			}

			action := MatchAction{
				ID:           uuid.NewString(),
				ActorID:      actorID,
				TargetUserID: targetID,
				TargetCardID: cardsByUser[targetID],
				ActionType:   actionType,
				SceneType:    SceneDating,
				Source:       SourceUser,
			}
			_ = db.Create(&action).Error

			counter++
		}
	}
	log.Println("Seeded match actions.")

	return nil
}

func pickInterests(r *rand.Rand) StringList {
	n := 2 + r.Intn(4)
	picked := make(StringList, 0, n)
	seen := map[string]struct{}{}
	for len(picked) < n {
		tag := seedInterests[r.Intn(len(seedInterests))]
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		picked = append(picked, tag)
	}
	return picked
}
