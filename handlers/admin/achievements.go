// handlers/admin/achievements.go - Catalog management
package admin

import (
	"gametrack/database"
	"gametrack/models"
	"gametrack/services"

	"github.com/gofiber/fiber/v2"
)

// GetAchievements returns the full catalog including secret entries
func GetAchievements(c *fiber.Ctx) error {
	db := database.GetDB()

	var achievements []models.Achievement
	if err := db.Find(&achievements).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch achievements"})
	}

	return c.JSON(achievements)
}

// CreateAchievement adds a catalog entry. The criterion must pass the
// same validation the engine applies at startup.
func CreateAchievement(c *fiber.Ctx) error {
	db := database.GetDB()

	var achievement models.Achievement
	if err := c.BodyParser(&achievement); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if achievement.Name == "" || achievement.Points < 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Name required and points must be >= 0"})
	}
	if _, ok := services.DefaultVerifiers()[achievement.Criterion.Kind]; !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Unknown criterion kind"})
	}

	if err := db.Create(&achievement).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create achievement"})
	}

	return c.Status(201).JSON(achievement)
}

// UpdateAchievement edits an existing catalog entry
func UpdateAchievement(c *fiber.Ctx) error {
	db := database.GetDB()

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid achievement id"})
	}

	var achievement models.Achievement
	if err := db.First(&achievement, id).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Achievement not found"})
	}

	if err := c.BodyParser(&achievement); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if _, ok := services.DefaultVerifiers()[achievement.Criterion.Kind]; !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Unknown criterion kind"})
	}

	if err := db.Save(&achievement).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update achievement"})
	}

	return c.JSON(achievement)
}

// DeleteAchievement removes a catalog entry. Existing unlock records
// are an account-level concern and stay untouched.
func DeleteAchievement(c *fiber.Ctx) error {
	db := database.GetDB()

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid achievement id"})
	}

	if err := db.Delete(&models.Achievement{}, id).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to delete achievement"})
	}

	return c.JSON(fiber.Map{"message": "Achievement deleted successfully"})
}
