// handlers/rawg.go - RAWG API proxy endpoints
package handlers

import (
	"gametrack/services"

	"github.com/gofiber/fiber/v2"
)

// SearchGames proxies a game search to RAWG
func SearchGames(c *fiber.Ctx) error {
	query := c.Query("search")
	if query == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Search query required"})
	}

	result, err := services.GetRawgService().SearchGames(query, c.QueryInt("page", 1))
	if err != nil {
		return c.Status(502).JSON(fiber.Map{"error": "Game search unavailable"})
	}

	c.Set("Content-Type", "application/json")
	return c.Send(result)
}

// GetGameDetails proxies a game detail lookup to RAWG
func GetGameDetails(c *fiber.Ctx) error {
	rawgID, err := c.ParamsInt("id")
	if err != nil || rawgID < 1 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid game id"})
	}

	result, err := services.GetRawgService().GameDetails(rawgID)
	if err != nil {
		return c.Status(502).JSON(fiber.Map{"error": "Game lookup unavailable"})
	}

	c.Set("Content-Type", "application/json")
	return c.Send(result)
}

// GetGenres proxies the RAWG genre catalog
func GetGenres(c *fiber.Ctx) error {
	result, err := services.GetRawgService().Genres()
	if err != nil {
		return c.Status(502).JSON(fiber.Map{"error": "Genre list unavailable"})
	}

	c.Set("Content-Type", "application/json")
	return c.Send(result)
}
