// handlers/users.go
package handlers

import (
	"gametrack/database"
	"gametrack/middleware"
	"gametrack/models"
	"gametrack/services"

	"github.com/gofiber/fiber/v2"
)

type UpdateProfileRequest struct {
	DisplayName    *string `json:"display_name"`
	Avatar         *string `json:"avatar"`
	BannerType     *string `json:"banner_type"`
	BannerColor    *string `json:"banner_color"`
	BannerImageURL *string `json:"banner_image_url"`
	Bio            *string `json:"bio"`
}

// GetCurrentUser returns the authenticated user's profile
func GetCurrentUser(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	db := database.GetDB()
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "User not found"})
	}

	return c.JSON(fiber.Map{"success": true, "user": user})
}

// UpdateProfile applies partial profile updates and re-checks the
// profile-gated achievements
func UpdateProfile(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	updates := map[string]interface{}{}
	if req.DisplayName != nil {
		updates["display_name"] = *req.DisplayName
	}
	if req.Avatar != nil {
		updates["avatar"] = *req.Avatar
	}
	if req.BannerType != nil {
		if *req.BannerType != models.BannerTypeColor && *req.BannerType != models.BannerTypeImage {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid banner type"})
		}
		updates["banner_type"] = *req.BannerType
	}
	if req.BannerColor != nil {
		updates["banner_color"] = *req.BannerColor
	}
	if req.BannerImageURL != nil {
		updates["banner_image_url"] = *req.BannerImageURL
	}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}

	if len(updates) == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Nothing to update"})
	}

	db := database.GetDB()
	if err := db.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update profile"})
	}

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to load profile"})
	}

	go services.GetAchievementService().CheckAndAward(userID, models.ActionProfileUpdated, fiber.Map{
		"profile": user,
	})

	return c.JSON(fiber.Map{"success": true, "user": user})
}

// GetUserProfile returns another user's public profile with unlock
// summary. Secret achievements stay hidden until unlocked.
func GetUserProfile(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user id"})
	}

	db := database.GetDB()
	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "User not found"})
	}

	var unlocked []models.UserAchievement
	db.Preload("Achievement").
		Where("user_id = ?", user.ID).
		Order("unlocked_at DESC").
		Find(&unlocked)

	return c.JSON(fiber.Map{
		"success": true,
		"user": fiber.Map{
			"id":           user.ID,
			"username":     user.Username,
			"display_name": user.DisplayName,
			"avatar":       user.Avatar,
			"bio":          user.Bio,
			"score":        user.Score,
		},
		"achievements": unlocked,
	})
}
