// handlers/groups.go
package handlers

import (
	"strings"
	"time"

	"gametrack/database"
	"gametrack/middleware"
	"gametrack/models"
	"gametrack/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPublic    bool   `json:"is_public"`
}

type JoinGroupRequest struct {
	JoinCode string `json:"join_code"`
}

// CreateGroup creates a group with the caller as owner
func CreateGroup(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req CreateGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Name == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Group name is required"})
	}

	db := database.GetDB()

	group := models.Group{
		Name:        req.Name,
		Description: req.Description,
		JoinCode:    generateJoinCode(),
		IsPublic:    req.IsPublic,
		CreatorID:   userID,
		CreatedAt:   time.Now(),
	}

	if err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&group).Error; err != nil {
			return err
		}
		member := models.GroupMember{
			GroupID:  group.ID,
			UserID:   userID,
			Role:     models.GroupRoleOwner,
			JoinedAt: time.Now(),
		}
		return tx.Create(&member).Error
	}); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create group"})
	}

	go services.GetAchievementService().CheckAndAward(userID, models.ActionGroupCreated, fiber.Map{
		"group_id": group.ID,
	})

	return c.Status(201).JSON(fiber.Map{"success": true, "group": group})
}

// JoinGroup adds the caller to a group via its join code
func JoinGroup(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req JoinGroupRequest
	if err := c.BodyParser(&req); err != nil || req.JoinCode == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Join code required"})
	}

	db := database.GetDB()

	var group models.Group
	if err := db.Where("join_code = ?", req.JoinCode).First(&group).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Group not found"})
	}

	var existing int64
	db.Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", group.ID, userID).
		Count(&existing)
	if existing > 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Already a member of this group"})
	}

	member := models.GroupMember{
		GroupID:  group.ID,
		UserID:   userID,
		Role:     models.GroupRoleMember,
		JoinedAt: time.Now(),
	}
	if err := db.Create(&member).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to join group"})
	}

	go services.GetAchievementService().CheckAndAward(userID, models.ActionGroupJoined, fiber.Map{
		"group_id": group.ID,
	})

	return c.JSON(fiber.Map{"success": true, "group": group})
}

// GetUserGroups lists the groups the caller belongs to
func GetUserGroups(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	db := database.GetDB()
	var groups []models.Group
	if err := db.Joins("JOIN group_members ON group_members.group_id = groups.id").
		Where("group_members.user_id = ?", userID).
		Preload("Members").
		Find(&groups).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch groups"})
	}

	return c.JSON(fiber.Map{"success": true, "groups": groups})
}

// GetGroupMembers lists the members of one group
func GetGroupMembers(c *fiber.Ctx) error {
	if _, err := middleware.GetUserID(c); err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	groupID, err := c.ParamsInt("id")
	if err != nil || groupID < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid group id"})
	}

	db := database.GetDB()
	var members []models.GroupMember
	if err := db.Preload("User").
		Where("group_id = ?", groupID).
		Order("role ASC, joined_at ASC").
		Find(&members).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch members"})
	}

	return c.JSON(fiber.Map{"success": true, "members": members})
}

// LeaveGroup removes the caller from a group
func LeaveGroup(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	groupID, err := c.ParamsInt("id")
	if err != nil || groupID < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid group id"})
	}

	db := database.GetDB()
	var member models.GroupMember
	if err := db.Where("group_id = ? AND user_id = ?", groupID, userID).
		First(&member).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Not a member of this group"})
	}

	if member.Role == models.GroupRoleOwner {
		return c.Status(400).JSON(fiber.Map{"error": "Group owner cannot leave"})
	}

	if err := db.Delete(&member).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to leave group"})
	}

	return c.JSON(fiber.Map{"success": true})
}

// generateJoinCode returns a short shareable group code
func generateJoinCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
}
