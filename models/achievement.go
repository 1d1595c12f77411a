// models/achievement.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// CriterionKind is the closed set of machine-checkable rules an
// achievement can be gated on. Every kind must have a verifier
// registered in the services package; ValidateCatalog enforces that
// at startup.
type CriterionKind string

const (
	CriterionTotalGamesCompleted   CriterionKind = "TOTAL_GAMES_COMPLETED"
	CriterionTotalGamesInLists     CriterionKind = "TOTAL_GAMES_IN_LISTS"
	CriterionGamesCompletedByGenre CriterionKind = "GAMES_COMPLETED_BY_GENRE"
	CriterionProfileComplete       CriterionKind = "PROFILE_COMPLETE"
	CriterionTotalFriends          CriterionKind = "TOTAL_FRIENDS"
	CriterionTotalGroupsJoined     CriterionKind = "TOTAL_GROUPS_JOINED"
	CriterionAccountVerified       CriterionKind = "ACCOUNT_VERIFIED"
	CriterionTotalGroupsCreated    CriterionKind = "TOTAL_GROUPS_CREATED"
	CriterionUserRegistered        CriterionKind = "USER_REGISTERED"
)

// ActionType identifies the user action that triggered a re-evaluation.
type ActionType string

const (
	ActionGameStatusUpdated     ActionType = "GAME_STATUS_UPDATED"
	ActionGameAddedToList       ActionType = "GAME_ADDED_TO_LIST"
	ActionProfileUpdated        ActionType = "PROFILE_UPDATED"
	ActionFriendRequestAccepted ActionType = "FRIEND_REQUEST_ACCEPTED"
	ActionGroupJoined           ActionType = "GROUP_JOINED"
	ActionGroupCreated          ActionType = "GROUP_CREATED"
	ActionUserRegistered        ActionType = "USER_REGISTERED"
	ActionEmailVerified         ActionType = "EMAIL_VERIFIED"
)

// Achievement categories.
const (
	CategoryCompletion   = "Completion"
	CategoryInteraction  = "Interaction"
	CategorySocial       = "Social"
	CategoryDiscovery    = "Discovery"
	CategorySpecialEvent = "SpecialEvent"
)

// CriterionParams is the kind-specific parameter payload, stored as
// JSONB. Each verifier decodes the fields it needs into its own typed
// struct; unknown fields are ignored.
type CriterionParams json.RawMessage

func (p CriterionParams) Value() (driver.Value, error) {
	if len(p) == 0 {
		return "{}", nil
	}
	return string(p), nil
}

func (p *CriterionParams) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*p = CriterionParams("{}")
		return nil
	case []byte:
		*p = CriterionParams(append([]byte(nil), v...))
		return nil
	case string:
		*p = CriterionParams(v)
		return nil
	default:
		return errors.New("unsupported criterion params column type")
	}
}

func (p CriterionParams) MarshalJSON() ([]byte, error) {
	if len(p) == 0 {
		return []byte("{}"), nil
	}
	return []byte(p), nil
}

func (p *CriterionParams) UnmarshalJSON(data []byte) error {
	*p = CriterionParams(append([]byte(nil), data...))
	return nil
}

// Decode unmarshals the params into a kind-specific struct.
func (p CriterionParams) Decode(out interface{}) error {
	if len(p) == 0 {
		return nil
	}
	return json.Unmarshal([]byte(p), out)
}

// Criterion is the rule attached to an achievement: a kind plus the
// kind's parameters.
type Criterion struct {
	Kind          CriterionKind   `gorm:"column:criterion_kind;not null;index;size:50" json:"kind"`
	Params        CriterionParams `gorm:"column:criterion_params;type:jsonb" json:"params"`
	HumanReadable string          `gorm:"column:criterion_text" json:"human_readable,omitempty"`
}

// Achievement is a catalog entry. Definitions are created by admin
// tooling and are read-only to the evaluation engine.
type Achievement struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"not null;uniqueIndex" json:"name"`
	Description string `gorm:"not null" json:"description"`
	Category    string `gorm:"not null;index" json:"category"` // Completion, Interaction, Social, Discovery, SpecialEvent
	Icon        string `json:"icon"`
	Points      int    `gorm:"default:0" json:"points"`
	Secret      bool   `gorm:"default:false" json:"secret"`

	Criterion Criterion `gorm:"embedded" json:"criterion"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Achievement) TableName() string {
	return "achievements"
}

// UserAchievement records a single unlock. The composite unique index
// on (user_id, achievement_id) is the invariant that makes awarding
// idempotent under concurrent triggers.
type UserAchievement struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;uniqueIndex:idx_user_achievement" json:"user_id"`
	AchievementID uint      `gorm:"not null;uniqueIndex:idx_user_achievement" json:"achievement_id"`
	UnlockedAt    time.Time `json:"unlocked_at"`

	User        User        `gorm:"foreignKey:UserID" json:"-"`
	Achievement Achievement `gorm:"foreignKey:AchievementID" json:"achievement,omitempty"`
}

func (UserAchievement) TableName() string {
	return "user_achievements"
}
