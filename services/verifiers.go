// services/verifiers.go - Criterion verifiers, registry and action router
package services

import (
	"fmt"
	"strings"

	"gametrack/models"

	"gorm.io/gorm"
)

// VerifierFunc answers whether one user currently satisfies one
// criterion. Verifiers are read-only: they query aggregate state and
// never mutate anything. "Criterion not met" is (false, nil); an error
// is reserved for infrastructure failures and malformed params.
type VerifierFunc func(db *gorm.DB, userID uint, params models.CriterionParams, event ActionEvent) (bool, error)

// Kind-specific parameter shapes decoded from the criterion's JSONB
// params column.

type CountParams struct {
	Count int `json:"count"`
}

type GenreCountParams struct {
	GenreSlug string `json:"genre_slug"`
	Count     int    `json:"count"`
}

type ProfileFieldsParams struct {
	Fields []string `json:"fields"`
}

type RegisteredParams struct {
	Registered bool `json:"registered"`
}

// DefaultVerifiers returns the registry mapping every criterion kind to
// its verifier.
func DefaultVerifiers() map[models.CriterionKind]VerifierFunc {
	return map[models.CriterionKind]VerifierFunc{
		models.CriterionTotalGamesCompleted:   verifyTotalGamesCompleted,
		models.CriterionTotalGamesInLists:     verifyTotalGamesInLists,
		models.CriterionGamesCompletedByGenre: verifyGamesCompletedByGenre,
		models.CriterionProfileComplete:       verifyProfileComplete,
		models.CriterionTotalFriends:          verifyTotalFriends,
		models.CriterionTotalGroupsJoined:     verifyTotalGroupsJoined,
		models.CriterionAccountVerified:       verifyAccountVerified,
		models.CriterionTotalGroupsCreated:    verifyTotalGroupsCreated,
		models.CriterionUserRegistered:        verifyUserRegistered,
	}
}

// DefaultActionRouter returns the table of criterion kinds worth
// re-checking per action type. It is an optimization, not a correctness
// mechanism: an action type missing here simply re-checks nothing.
func DefaultActionRouter() map[models.ActionType][]models.CriterionKind {
	return map[models.ActionType][]models.CriterionKind{
		models.ActionGameStatusUpdated: {
			models.CriterionTotalGamesCompleted,
			models.CriterionGamesCompletedByGenre,
		},
		// A game can enter a list already marked Completed, so the
		// completion criteria ride along with the plain count.
		models.ActionGameAddedToList: {
			models.CriterionTotalGamesInLists,
			models.CriterionTotalGamesCompleted,
			models.CriterionGamesCompletedByGenre,
		},
		models.ActionProfileUpdated: {
			models.CriterionProfileComplete,
		},
		models.ActionFriendRequestAccepted: {
			models.CriterionTotalFriends,
		},
		models.ActionGroupJoined: {
			models.CriterionTotalGroupsJoined,
		},
		// Creating a group also makes the creator a member.
		models.ActionGroupCreated: {
			models.CriterionTotalGroupsCreated,
			models.CriterionTotalGroupsJoined,
		},
		models.ActionUserRegistered: {
			models.CriterionUserRegistered,
		},
		models.ActionEmailVerified: {
			models.CriterionAccountVerified,
		},
	}
}

func decodeCount(params models.CriterionParams) (int, error) {
	var p CountParams
	if err := params.Decode(&p); err != nil {
		return 0, fmt.Errorf("decode count params: %w", err)
	}
	if p.Count < 1 {
		return 0, fmt.Errorf("count threshold must be >= 1, got %d", p.Count)
	}
	return p.Count, nil
}

func verifyTotalGamesCompleted(db *gorm.DB, userID uint, params models.CriterionParams, _ ActionEvent) (bool, error) {
	threshold, err := decodeCount(params)
	if err != nil {
		return false, err
	}

	var count int64
	err = db.Model(&models.GameEntry{}).
		Joins("JOIN game_lists ON game_lists.id = game_entries.list_id").
		Where("game_lists.user_id = ? AND game_entries.status = ?", userID, models.StatusCompleted).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count >= int64(threshold), nil
}

func verifyTotalGamesInLists(db *gorm.DB, userID uint, params models.CriterionParams, _ ActionEvent) (bool, error) {
	threshold, err := decodeCount(params)
	if err != nil {
		return false, err
	}

	var count int64
	err = db.Model(&models.GameEntry{}).
		Joins("JOIN game_lists ON game_lists.id = game_entries.list_id").
		Where("game_lists.user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count >= int64(threshold), nil
}

func verifyGamesCompletedByGenre(db *gorm.DB, userID uint, params models.CriterionParams, _ ActionEvent) (bool, error) {
	var p GenreCountParams
	if err := params.Decode(&p); err != nil {
		return false, fmt.Errorf("decode genre params: %w", err)
	}
	if p.GenreSlug == "" {
		return false, fmt.Errorf("genre criterion missing genre_slug")
	}
	if p.Count < 1 {
		return false, fmt.Errorf("count threshold must be >= 1, got %d", p.Count)
	}

	// Genre slugs are stored comma-separated, so the match happens in
	// Go rather than with a LIKE that could hit substring slugs.
	var genres []string
	err := db.Model(&models.GameEntry{}).
		Joins("JOIN game_lists ON game_lists.id = game_entries.list_id").
		Where("game_lists.user_id = ? AND game_entries.status = ?", userID, models.StatusCompleted).
		Pluck("game_entries.genres", &genres).Error
	if err != nil {
		return false, err
	}

	matched := 0
	for _, list := range genres {
		for _, slug := range strings.Split(list, ",") {
			if strings.TrimSpace(slug) == p.GenreSlug {
				matched++
				break
			}
		}
	}

	return matched >= p.Count, nil
}

func verifyProfileComplete(db *gorm.DB, userID uint, params models.CriterionParams, _ ActionEvent) (bool, error) {
	var p ProfileFieldsParams
	if err := params.Decode(&p); err != nil {
		return false, fmt.Errorf("decode profile params: %w", err)
	}
	if len(p.Fields) == 0 {
		return false, fmt.Errorf("profile criterion lists no fields")
	}

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return false, err
	}

	for _, field := range p.Fields {
		ok, err := profileFieldSet(&user, field)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}

	return true, nil
}

// profileFieldSet reports whether a profile field counts as filled in.
// The banner is special: whichever banner type is selected must have
// its value set, so an image banner with an empty URL does not count.
func profileFieldSet(user *models.User, field string) (bool, error) {
	switch field {
	case "avatar":
		return user.Avatar != "", nil
	case "bio":
		return user.Bio != "", nil
	case "display_name":
		return user.DisplayName != "", nil
	case "banner":
		if user.BannerType == models.BannerTypeImage {
			return user.BannerImageURL != "", nil
		}
		return user.BannerColor != "", nil
	default:
		return false, fmt.Errorf("unknown profile field %q", field)
	}
}

func verifyTotalFriends(db *gorm.DB, userID uint, params models.CriterionParams, _ ActionEvent) (bool, error) {
	threshold, err := decodeCount(params)
	if err != nil {
		return false, err
	}

	var count int64
	err = db.Model(&models.Friend{}).
		Where("user_id = ? OR friend_id = ?", userID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count >= int64(threshold), nil
}

func verifyTotalGroupsJoined(db *gorm.DB, userID uint, params models.CriterionParams, _ ActionEvent) (bool, error) {
	threshold, err := decodeCount(params)
	if err != nil {
		return false, err
	}

	var count int64
	err = db.Model(&models.GroupMember{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count >= int64(threshold), nil
}

func verifyAccountVerified(db *gorm.DB, userID uint, _ models.CriterionParams, _ ActionEvent) (bool, error) {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return false, err
	}
	return user.Verified, nil
}

func verifyTotalGroupsCreated(db *gorm.DB, userID uint, params models.CriterionParams, _ ActionEvent) (bool, error) {
	threshold, err := decodeCount(params)
	if err != nil {
		return false, err
	}

	var count int64
	err = db.Model(&models.Group{}).
		Where("creator_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count >= int64(threshold), nil
}

// verifyUserRegistered is trivially true once the registration action
// fired, as long as the user row actually exists.
func verifyUserRegistered(db *gorm.DB, userID uint, _ models.CriterionParams, _ ActionEvent) (bool, error) {
	var count int64
	if err := db.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
