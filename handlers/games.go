// handlers/games.go - Game list management
package handlers

import (
	"time"

	"gametrack/database"
	"gametrack/middleware"
	"gametrack/models"
	"gametrack/services"

	"github.com/gofiber/fiber/v2"
)

type CreateListRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPublic    bool   `json:"is_public"`
}

type AddGameRequest struct {
	RawgID   int    `json:"rawg_id"`
	Title    string `json:"title"`
	CoverURL string `json:"cover_url"`
	Genres   string `json:"genres"`
	Status   string `json:"status"`
}

type UpdateGameRequest struct {
	Status *string `json:"status"`
	Rating *int    `json:"rating"`
	Notes  *string `json:"notes"`
}

func validStatus(status string) bool {
	switch status {
	case models.StatusPlaying, models.StatusCompleted, models.StatusOnHold,
		models.StatusDropped, models.StatusPlanned:
		return true
	}
	return false
}

// CreateList creates a new game list for the caller
func CreateList(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req CreateListRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Name == "" {
		return c.Status(400).JSON(fiber.Map{"error": "List name is required"})
	}

	list := models.GameList{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		IsPublic:    req.IsPublic,
		CreatedAt:   time.Now(),
	}

	db := database.GetDB()
	if err := db.Create(&list).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create list"})
	}

	return c.Status(201).JSON(fiber.Map{"success": true, "list": list})
}

// GetLists returns the caller's lists with entries
func GetLists(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	db := database.GetDB()
	var lists []models.GameList
	if err := db.Preload("Entries").
		Where("user_id = ?", userID).
		Find(&lists).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch lists"})
	}

	return c.JSON(fiber.Map{"success": true, "lists": lists})
}

// AddGame adds a game entry to one of the caller's lists
func AddGame(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	listID, err := c.ParamsInt("id")
	if err != nil || listID < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid list id"})
	}

	var req AddGameRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Title == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Game title is required"})
	}
	if req.Status == "" {
		req.Status = models.StatusPlanned
	}
	if !validStatus(req.Status) {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid status"})
	}

	db := database.GetDB()

	var list models.GameList
	if err := db.Where("id = ? AND user_id = ?", listID, userID).First(&list).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "List not found"})
	}

	entry := models.GameEntry{
		ListID:    list.ID,
		RawgID:    req.RawgID,
		Title:     req.Title,
		CoverURL:  req.CoverURL,
		Genres:    req.Genres,
		Status:    req.Status,
		CreatedAt: time.Now(),
	}
	if entry.Status == models.StatusCompleted {
		now := time.Now()
		entry.FinishedAt = &now
	}

	if err := db.Create(&entry).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to add game"})
	}

	go services.GetAchievementService().CheckAndAward(userID, models.ActionGameAddedToList, fiber.Map{
		"entry": entry,
	})

	return c.Status(201).JSON(fiber.Map{"success": true, "entry": entry})
}

// UpdateGame updates a game entry; a status change re-checks the
// completion achievements
func UpdateGame(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	listID, err := c.ParamsInt("id")
	if err != nil || listID < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid list id"})
	}
	entryID, err := c.ParamsInt("gameId")
	if err != nil || entryID < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid game id"})
	}

	var req UpdateGameRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	db := database.GetDB()

	var entry models.GameEntry
	if err := db.Joins("JOIN game_lists ON game_lists.id = game_entries.list_id").
		Where("game_entries.id = ? AND game_entries.list_id = ? AND game_lists.user_id = ?",
			entryID, listID, userID).
		First(&entry).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Game entry not found"})
	}

	statusChanged := false
	updates := map[string]interface{}{}
	if req.Status != nil {
		if !validStatus(*req.Status) {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid status"})
		}
		if *req.Status != entry.Status {
			statusChanged = true
			updates["status"] = *req.Status
			if *req.Status == models.StatusCompleted {
				updates["finished_at"] = time.Now()
			}
		}
	}
	if req.Rating != nil {
		if *req.Rating < 0 || *req.Rating > 10 {
			return c.Status(400).JSON(fiber.Map{"error": "Rating must be 0-10"})
		}
		updates["rating"] = *req.Rating
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}

	if len(updates) == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Nothing to update"})
	}

	if err := db.Model(&entry).Updates(updates).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update game"})
	}

	if statusChanged {
		go services.GetAchievementService().CheckAndAward(userID, models.ActionGameStatusUpdated, fiber.Map{
			"entry": entry,
		})
	}

	return c.JSON(fiber.Map{"success": true, "entry": entry})
}

// DeleteGame removes an entry from a list
func DeleteGame(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	listID, err := c.ParamsInt("id")
	if err != nil || listID < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid list id"})
	}
	entryID, err := c.ParamsInt("gameId")
	if err != nil || entryID < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid game id"})
	}

	db := database.GetDB()

	var entry models.GameEntry
	if err := db.Joins("JOIN game_lists ON game_lists.id = game_entries.list_id").
		Where("game_entries.id = ? AND game_entries.list_id = ? AND game_lists.user_id = ?",
			entryID, listID, userID).
		First(&entry).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Game entry not found"})
	}

	if err := db.Delete(&entry).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to delete game"})
	}

	return c.JSON(fiber.Map{"success": true})
}
