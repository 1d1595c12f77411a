// handlers/friends.go
package handlers

import (
	"time"

	"gametrack/database"
	"gametrack/middleware"
	"gametrack/models"
	"gametrack/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type FriendRequestBody struct {
	UserID uint `json:"user_id"`
}

type FriendAcceptBody struct {
	RequestID uint `json:"request_id"`
}

// GetFriends lists the user's accepted friends
func GetFriends(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	db := database.GetDB()
	var friendships []models.Friend
	if err := db.Preload("User").Preload("Friend").
		Where("user_id = ? OR friend_id = ?", userID, userID).
		Find(&friendships).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch friends"})
	}

	return c.JSON(fiber.Map{"success": true, "friends": friendships})
}

// SendFriendRequest creates a pending request to another user
func SendFriendRequest(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req FriendRequestBody
	if err := c.BodyParser(&req); err != nil || req.UserID == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Target user required"})
	}
	if req.UserID == userID {
		return c.Status(400).JSON(fiber.Map{"error": "Cannot befriend yourself"})
	}

	db := database.GetDB()

	var target models.User
	if err := db.First(&target, req.UserID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "User not found"})
	}

	var existing int64
	db.Model(&models.Friend{}).
		Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)",
			userID, req.UserID, req.UserID, userID).
		Count(&existing)
	if existing > 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Already friends"})
	}

	var pending int64
	db.Model(&models.FriendRequest{}).
		Where("from_user_id = ? AND to_user_id = ? AND status = ?", userID, req.UserID, "pending").
		Count(&pending)
	if pending > 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Request already sent"})
	}

	request := models.FriendRequest{
		FromUserID: userID,
		ToUserID:   req.UserID,
		Status:     "pending",
		CreatedAt:  time.Now(),
	}
	if err := db.Create(&request).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to send request"})
	}

	return c.JSON(fiber.Map{"success": true, "request": request})
}

// AcceptFriendRequest accepts a pending request and re-checks the
// friend-count achievements for both users
func AcceptFriendRequest(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req FriendAcceptBody
	if err := c.BodyParser(&req); err != nil || req.RequestID == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Request id required"})
	}

	db := database.GetDB()

	var request models.FriendRequest
	if err := db.Where("id = ? AND to_user_id = ? AND status = ?",
		req.RequestID, userID, "pending").First(&request).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Request not found"})
	}

	friendship := models.Friend{
		UserID:    request.FromUserID,
		FriendID:  request.ToUserID,
		CreatedAt: time.Now(),
	}

	if err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&friendship).Error; err != nil {
			return err
		}
		return tx.Model(&request).Update("status", "accepted").Error
	}); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to accept request"})
	}

	// Both sides of the friendship may have crossed a threshold.
	go services.GetAchievementService().CheckAndAward(request.ToUserID, models.ActionFriendRequestAccepted, fiber.Map{
		"friend_id": request.FromUserID,
	})
	go services.GetAchievementService().CheckAndAward(request.FromUserID, models.ActionFriendRequestAccepted, fiber.Map{
		"friend_id": request.ToUserID,
	})

	return c.JSON(fiber.Map{"success": true, "friendship": friendship})
}

// GetFriendRequests lists pending requests addressed to the user
func GetFriendRequests(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	db := database.GetDB()
	var requests []models.FriendRequest
	if err := db.Preload("FromUser").
		Where("to_user_id = ? AND status = ?", userID, "pending").
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch requests"})
	}

	return c.JSON(fiber.Map{"success": true, "requests": requests})
}
