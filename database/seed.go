// database/seed.go - Default achievement catalog
package database

import (
	"encoding/json"
	"log"

	"gametrack/models"

	"gorm.io/gorm"
)

// DefaultAchievements is the catalog installed on a fresh database.
// Admin tooling can add or edit entries afterwards; the engine only
// ever reads them.
func DefaultAchievements() []models.Achievement {
	return []models.Achievement{
		{
			Name:        "First Steps",
			Description: "Create your account",
			Category:    models.CategorySpecialEvent,
			Icon:        "footsteps",
			Points:      5,
			Criterion: models.Criterion{
				Kind:          models.CriterionUserRegistered,
				Params:        params(map[string]interface{}{"registered": true}),
				HumanReadable: "Register an account",
			},
		},
		{
			Name:        "Trusted Member",
			Description: "Verify your email address",
			Category:    models.CategorySpecialEvent,
			Icon:        "shield-check",
			Points:      10,
			Criterion: models.Criterion{
				Kind:          models.CriterionAccountVerified,
				Params:        params(map[string]interface{}{}),
				HumanReadable: "Verify your email",
			},
		},
		{
			Name:        "All Dressed Up",
			Description: "Complete your profile with an avatar, banner and bio",
			Category:    models.CategoryInteraction,
			Icon:        "id-card",
			Points:      15,
			Criterion: models.Criterion{
				Kind:          models.CriterionProfileComplete,
				Params:        params(map[string]interface{}{"fields": []string{"avatar", "banner", "bio"}}),
				HumanReadable: "Fill in avatar, banner and bio",
			},
		},
		{
			Name:        "Collector",
			Description: "Track 10 games across your lists",
			Category:    models.CategoryDiscovery,
			Icon:        "bookshelf",
			Points:      10,
			Criterion: models.Criterion{
				Kind:          models.CriterionTotalGamesInLists,
				Params:        params(map[string]interface{}{"count": 10}),
				HumanReadable: "Add 10 games to your lists",
			},
		},
		{
			Name:        "Finisher",
			Description: "Complete 5 games",
			Category:    models.CategoryCompletion,
			Icon:        "trophy",
			Points:      20,
			Criterion: models.Criterion{
				Kind:          models.CriterionTotalGamesCompleted,
				Params:        params(map[string]interface{}{"count": 5}),
				HumanReadable: "Complete 5 games",
			},
		},
		{
			Name:        "Completionist",
			Description: "Complete 25 games",
			Category:    models.CategoryCompletion,
			Icon:        "crown",
			Points:      50,
			Criterion: models.Criterion{
				Kind:          models.CriterionTotalGamesCompleted,
				Params:        params(map[string]interface{}{"count": 25}),
				HumanReadable: "Complete 25 games",
			},
		},
		{
			Name:        "Dungeon Crawler",
			Description: "Complete 5 RPGs",
			Category:    models.CategoryCompletion,
			Icon:        "sword",
			Points:      25,
			Criterion: models.Criterion{
				Kind:          models.CriterionGamesCompletedByGenre,
				Params:        params(map[string]interface{}{"genre_slug": "role-playing-games-rpg", "count": 5}),
				HumanReadable: "Complete 5 role-playing games",
			},
		},
		{
			Name:        "Social Butterfly",
			Description: "Make 5 friends",
			Category:    models.CategorySocial,
			Icon:        "butterfly",
			Points:      15,
			Criterion: models.Criterion{
				Kind:          models.CriterionTotalFriends,
				Params:        params(map[string]interface{}{"count": 5}),
				HumanReadable: "Have 5 accepted friends",
			},
		},
		{
			Name:        "Joiner",
			Description: "Become a member of 3 groups",
			Category:    models.CategorySocial,
			Icon:        "people",
			Points:      10,
			Criterion: models.Criterion{
				Kind:          models.CriterionTotalGroupsJoined,
				Params:        params(map[string]interface{}{"count": 3}),
				HumanReadable: "Join 3 groups",
			},
		},
		{
			Name:        "Founder",
			Description: "Create your own group",
			Category:    models.CategorySocial,
			Icon:        "flag",
			Points:      15,
			Secret:      true,
			Criterion: models.Criterion{
				Kind:          models.CriterionTotalGroupsCreated,
				Params:        params(map[string]interface{}{"count": 1}),
				HumanReadable: "Create a group",
			},
		},
	}
}

// SeedAchievements inserts any catalog entry that does not exist yet.
// Matching is by unique name so existing rows are never overwritten.
func SeedAchievements() {
	SeedAchievementsInto(GetDB())
}

// SeedAchievementsInto seeds the default catalog into the given
// database. Split out so tests can seed fixture databases.
func SeedAchievementsInto(db *gorm.DB) {
	seeded := 0
	for _, a := range DefaultAchievements() {
		var count int64
		db.Model(&models.Achievement{}).Where("name = ?", a.Name).Count(&count)
		if count > 0 {
			continue
		}
		if err := db.Create(&a).Error; err != nil {
			log.Printf("Failed to seed achievement %q: %v", a.Name, err)
			continue
		}
		seeded++
	}
	if seeded > 0 {
		log.Printf("✅ Seeded %d achievements", seeded)
	}
}

func params(v map[string]interface{}) models.CriterionParams {
	data, err := json.Marshal(v)
	if err != nil {
		// Catalog literals are static; a marshal failure is a programming error.
		panic(err)
	}
	return models.CriterionParams(data)
}
