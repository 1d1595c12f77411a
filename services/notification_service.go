// services/notification_service.go - Unlock notification side effect
package services

import (
	"fmt"
	"html"
	"time"

	"gametrack/models"

	"gorm.io/gorm"
)

// Fixed identity and subject for engine-produced notifications.
const (
	NotificationSender = "system"
	AchievementSubject = "Achievement unlocked"
)

// Notifier is the outbound side-effect contract of the award engine.
// Delivery (inbox, email, push) belongs to the implementation; the
// engine only cares that failures come back as errors it can swallow.
type Notifier interface {
	AchievementUnlocked(userID uint, achievement models.Achievement) error
}

// NotificationService stores unlock notifications in the user's inbox
// and pushes them to any connected websocket client.
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// AchievementUnlocked writes the inbox record and fires a best-effort
// realtime push.
func (n *NotificationService) AchievementUnlocked(userID uint, achievement models.Achievement) error {
	notif := models.Notification{
		UserID:    userID,
		Sender:    NotificationSender,
		Subject:   AchievementSubject,
		Body:      fmt.Sprintf("<p>You unlocked the achievement <strong>%s</strong>!</p>", html.EscapeString(achievement.Name)),
		CreatedAt: time.Now(),
	}

	if err := n.db.Create(&notif).Error; err != nil {
		return err
	}

	// Realtime delivery is best-effort on top of the durable inbox row.
	PushToUser(userID, notif)
	return nil
}

// GetInbox returns a user's notifications, newest first.
func (n *NotificationService) GetInbox(userID uint, limit int) ([]models.Notification, error) {
	if limit < 1 || limit > 100 {
		limit = 50
	}

	var notifications []models.Notification
	err := n.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

// MarkRead marks a single notification as read.
func (n *NotificationService) MarkRead(userID, notificationID uint) error {
	return n.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read", true).Error
}
