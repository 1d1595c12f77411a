// services/rawg.go - Thin client for the RAWG games API
package services

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"
)

const rawgBaseURL = "https://api.rawg.io/api"

// RawgService proxies game search and detail requests so the API key
// never reaches clients. Genre slugs in game entries come from here.
type RawgService struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

var rawgService *RawgService

// InitRawgService reads the API key from the environment and prepares
// the shared client.
func InitRawgService() {
	rawgService = &RawgService{
		apiKey:  os.Getenv("RAWG_API_KEY"),
		baseURL: rawgBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// GetRawgService returns the initialized RAWG client.
func GetRawgService() *RawgService {
	return rawgService
}

// SearchGames searches games by name.
func (s *RawgService) SearchGames(query string, page int) (json.RawMessage, error) {
	if page < 1 {
		page = 1
	}
	params := url.Values{}
	params.Set("search", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("page_size", "20")
	return s.get("/games", params)
}

// GameDetails fetches one game by its RAWG id.
func (s *RawgService) GameDetails(rawgID int) (json.RawMessage, error) {
	return s.get(fmt.Sprintf("/games/%d", rawgID), url.Values{})
}

// Genres lists the RAWG genre catalog, the source of genre slugs used
// by genre-gated achievements.
func (s *RawgService) Genres() (json.RawMessage, error) {
	return s.get("/genres", url.Values{})
}

func (s *RawgService) get(path string, params url.Values) (json.RawMessage, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("RAWG_API_KEY not configured")
	}
	params.Set("key", s.apiKey)

	resp, err := s.client.Get(s.baseURL + path + "?" + params.Encode())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rawg responded %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}
