// models/user.go
package models

import (
	"time"
)

// Banner type selection for the profile header.
const (
	BannerTypeColor = "color"
	BannerTypeImage = "image"
)

type User struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	Username string  `gorm:"uniqueIndex;not null" json:"username"`
	Email    *string `gorm:"uniqueIndex" json:"email,omitempty"`
	Password string  `gorm:"not null" json:"-"`

	// Profile
	DisplayName    string `json:"display_name"`
	Avatar         string `json:"avatar"`
	BannerType     string `gorm:"default:'color'" json:"banner_type"`
	BannerColor    string `json:"banner_color"`
	BannerImageURL string `json:"banner_image_url"`
	Bio            string `json:"bio"`

	// Account state
	Verified    bool   `gorm:"default:false" json:"verified"`
	VerifyToken string `gorm:"index" json:"-"`
	IsAdmin     bool   `gorm:"default:false" json:"is_admin"`
	IsBanned    bool   `gorm:"default:false" json:"is_banned"`

	// Cumulative achievement points. Mutated only through an atomic
	// score = score + n update, never read-modify-write.
	Score int `gorm:"default:0" json:"score"`

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	LastLogin time.Time `json:"last_login"`

	// Relationships
	Achievements []UserAchievement `gorm:"foreignKey:UserID" json:"achievements,omitempty"`
	GameLists    []GameList        `gorm:"foreignKey:UserID" json:"game_lists,omitempty"`
}
