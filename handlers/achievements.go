// handlers/achievements.go
package handlers

import (
	"gametrack/database"
	"gametrack/middleware"
	"gametrack/models"
	"gametrack/services"

	"github.com/gofiber/fiber/v2"
)

// GetAchievementCatalog returns the public catalog. Secret achievements
// are listed masked so their count is known but not their conditions.
func GetAchievementCatalog(c *fiber.Ctx) error {
	db := database.GetDB()

	var catalog []models.Achievement
	if err := db.Order("category ASC, points ASC").Find(&catalog).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch catalog"})
	}

	achievements := make([]fiber.Map, 0, len(catalog))
	for _, achievement := range catalog {
		entry := fiber.Map{
			"id":       achievement.ID,
			"category": achievement.Category,
			"points":   achievement.Points,
			"secret":   achievement.Secret,
		}
		if achievement.Secret {
			entry["name"] = "???"
			entry["description"] = "Hidden achievement"
		} else {
			entry["name"] = achievement.Name
			entry["description"] = achievement.Description
			entry["icon"] = achievement.Icon
			entry["criterion"] = achievement.Criterion.HumanReadable
		}
		achievements = append(achievements, entry)
	}

	return c.JSON(fiber.Map{"success": true, "achievements": achievements})
}

// GetUserAchievements returns the full catalog annotated with the
// caller's unlock state. Secret achievements that are still locked are
// shown without their criterion text.
func GetUserAchievements(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	db := database.GetDB()

	var unlocked []models.UserAchievement
	if err := db.Preload("Achievement").
		Where("user_id = ?", userID).
		Order("unlocked_at DESC").
		Find(&unlocked).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch achievements"})
	}

	var catalog []models.Achievement
	if err := db.Find(&catalog).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch catalog"})
	}

	unlockedMap := make(map[uint]models.UserAchievement)
	for _, ua := range unlocked {
		unlockedMap[ua.AchievementID] = ua
	}

	achievements := make([]fiber.Map, 0, len(catalog))
	for _, achievement := range catalog {
		ua, isUnlocked := unlockedMap[achievement.ID]

		entry := fiber.Map{
			"id":          achievement.ID,
			"name":        achievement.Name,
			"description": achievement.Description,
			"category":    achievement.Category,
			"icon":        achievement.Icon,
			"points":      achievement.Points,
			"secret":      achievement.Secret,
			"unlocked":    isUnlocked,
		}

		if isUnlocked {
			entry["unlocked_at"] = ua.UnlockedAt
			entry["criterion"] = achievement.Criterion.HumanReadable
		} else if achievement.Secret {
			// Locked secrets keep their unlock condition hidden.
			entry["name"] = "???"
			entry["description"] = "Hidden achievement"
		} else {
			entry["criterion"] = achievement.Criterion.HumanReadable
		}

		achievements = append(achievements, entry)
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"achievements": achievements,
		"total":        len(catalog),
		"unlocked":     len(unlocked),
	})
}

// GetNotifications returns the caller's notification inbox
func GetNotifications(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	limit := c.QueryInt("limit", 50)
	notifications, err := services.NewNotificationService(database.GetDB()).GetInbox(userID, limit)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch notifications"})
	}

	return c.JSON(fiber.Map{"success": true, "notifications": notifications})
}

// MarkNotificationRead marks one inbox entry as read
func MarkNotificationRead(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid notification id"})
	}

	if err := services.NewNotificationService(database.GetDB()).MarkRead(userID, uint(id)); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update notification"})
	}

	return c.JSON(fiber.Map{"success": true})
}
