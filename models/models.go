// models/models.go - Social graph and game list models
package models

import (
	"time"
)

// Game entry statuses.
const (
	StatusPlaying   = "Playing"
	StatusCompleted = "Completed"
	StatusOnHold    = "OnHold"
	StatusDropped   = "Dropped"
	StatusPlanned   = "Planned"
)

// GameList is a user-owned collection of game entries.
type GameList struct {
	ID          uint        `json:"id" gorm:"primaryKey"`
	UserID      uint        `json:"user_id" gorm:"not null;index"`
	User        *User       `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Name        string      `json:"name" gorm:"not null;size:100"`
	Description string      `json:"description" gorm:"type:text"`
	IsPublic    bool        `json:"is_public" gorm:"default:true"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	Entries     []GameEntry `json:"entries,omitempty" gorm:"foreignKey:ListID"`
}

// GameEntry is one game tracked inside a list. Genres holds the
// comma-separated genre slugs as returned by the RAWG API.
type GameEntry struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	ListID     uint      `json:"list_id" gorm:"not null;index"`
	List       *GameList `json:"list,omitempty" gorm:"foreignKey:ListID"`
	RawgID     int       `json:"rawg_id" gorm:"index"`
	Title      string    `json:"title" gorm:"not null;size:200"`
	CoverURL   string    `json:"cover_url" gorm:"type:text"`
	Genres     string    `json:"genres" gorm:"size:500"`
	Status     string    `json:"status" gorm:"default:'Planned';size:20;index"`
	Rating     int       `json:"rating" gorm:"default:0"` // 0 = unrated, 1-10
	Notes      string    `json:"notes" gorm:"type:text"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Friend represents an accepted friendship between two users. A single
// row covers both directions.
type Friend struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	User      *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	FriendID  uint      `json:"friend_id" gorm:"not null;index"`
	Friend    *User     `json:"friend,omitempty" gorm:"foreignKey:FriendID"`
	CreatedAt time.Time `json:"created_at"`
}

// FriendRequest represents a pending friend request.
type FriendRequest struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	FromUserID uint      `json:"from_user_id" gorm:"not null;index"`
	FromUser   *User     `json:"from_user,omitempty" gorm:"foreignKey:FromUserID"`
	ToUserID   uint      `json:"to_user_id" gorm:"not null;index"`
	ToUser     *User     `json:"to_user,omitempty" gorm:"foreignKey:ToUserID"`
	Status     string    `json:"status" gorm:"default:'pending';size:20"` // pending, accepted, rejected
	CreatedAt  time.Time `json:"created_at"`
}

// Group is a user-created community with a join code.
type Group struct {
	ID          uint          `json:"id" gorm:"primaryKey"`
	Name        string        `json:"name" gorm:"not null;size:100"`
	Description string        `json:"description" gorm:"type:text"`
	JoinCode    string        `json:"join_code" gorm:"unique;size:12"`
	IsPublic    bool          `json:"is_public" gorm:"default:true"`
	CreatorID   uint          `json:"creator_id" gorm:"not null;index"`
	Creator     *User         `json:"creator,omitempty" gorm:"foreignKey:CreatorID"`
	Members     []GroupMember `json:"members,omitempty" gorm:"foreignKey:GroupID"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// GroupMember roles.
const (
	GroupRoleOwner  = "owner"
	GroupRoleMember = "member"
)

type GroupMember struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	GroupID  uint      `json:"group_id" gorm:"not null;index"`
	Group    *Group    `json:"group,omitempty" gorm:"foreignKey:GroupID"`
	UserID   uint      `json:"user_id" gorm:"not null;index"`
	User     *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Role     string    `json:"role" gorm:"default:'member';size:20"`
	JoinedAt time.Time `json:"joined_at"`
}

// Notification is an inbox record produced as an award side effect.
type Notification struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	User      *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Sender    string    `json:"sender" gorm:"size:50"`
	Subject   string    `json:"subject" gorm:"size:200"`
	Body      string    `json:"body" gorm:"type:text"`
	Read      bool      `json:"read" gorm:"default:false;index"`
	CreatedAt time.Time `json:"created_at"`
}

func (GameList) TableName() string {
	return "game_lists"
}

func (GameEntry) TableName() string {
	return "game_entries"
}

func (Friend) TableName() string {
	return "friends"
}

func (FriendRequest) TableName() string {
	return "friend_requests"
}

func (Group) TableName() string {
	return "groups"
}

func (GroupMember) TableName() string {
	return "group_members"
}

func (Notification) TableName() string {
	return "notifications"
}
