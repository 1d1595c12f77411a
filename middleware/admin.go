// middleware/admin.go
package middleware

import (
	"gametrack/database"
	"gametrack/models"

	"github.com/gofiber/fiber/v2"
)

// AdminAuthMiddleware must run after AuthMiddleware; it rejects
// non-admin accounts.
func AdminAuthMiddleware(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var user models.User
	if err := database.GetDB().First(&user, userID).Error; err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "User not found"})
	}

	if !user.IsAdmin {
		return c.Status(403).JSON(fiber.Map{"error": "Admin access required"})
	}

	return c.Next()
}
