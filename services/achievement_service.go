// services/achievement_service.go - Achievement evaluation engine
//
// The engine consumes "action happened for user U" events and produces
// durable unlock records plus score credit. Its contract towards
// callers is fire-and-forget: nothing in here ever propagates an error
// back to the request that triggered the check.
package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gametrack/models"

	"gorm.io/gorm"
)

// ActionEvent is the transient trigger tuple. Payload carries
// action-specific context (the updated game entry, the new profile...)
// and has no lifecycle beyond one CheckAndAward call.
type ActionEvent struct {
	UserID  uint
	Type    models.ActionType
	Payload map[string]interface{}
}

// AchievementService evaluates the catalog against a user's aggregate
// state and performs exactly-once awards. It is stateless per call; the
// unique index on user_achievements is the only concurrency control.
type AchievementService struct {
	db        *gorm.DB
	verifiers map[models.CriterionKind]VerifierFunc
	router    map[models.ActionType][]models.CriterionKind
	notifier  Notifier
}

// NewAchievementService creates an engine with the default verifier
// registry and action router.
func NewAchievementService(db *gorm.DB, notifier Notifier) *AchievementService {
	return NewAchievementServiceWith(db, notifier, DefaultVerifiers(), DefaultActionRouter())
}

// NewAchievementServiceWith creates an engine with a custom registry
// and router. Tests use this to inject spy verifiers.
func NewAchievementServiceWith(
	db *gorm.DB,
	notifier Notifier,
	verifiers map[models.CriterionKind]VerifierFunc,
	router map[models.ActionType][]models.CriterionKind,
) *AchievementService {
	return &AchievementService{
		db:        db,
		verifiers: verifiers,
		router:    router,
		notifier:  notifier,
	}
}

var achievementService *AchievementService

// InitAchievementService wires the singleton engine used by handlers.
func InitAchievementService(db *gorm.DB) {
	achievementService = NewAchievementService(db, NewNotificationService(db))

	if err := achievementService.ValidateCatalog(); err != nil {
		log.Fatalf("❌ Achievement catalog validation failed: %v", err)
	}
	log.Println("✅ Achievement engine ready")
}

// GetAchievementService returns the initialized engine.
func GetAchievementService() *AchievementService {
	return achievementService
}

// CheckAndAward is the engine's sole entry point. Collaborator flows
// call it (usually via `go ...`) after their primary mutation commits.
// It returns the newly unlocked achievements for optional display and
// never an error: every failure is logged and contained.
func (s *AchievementService) CheckAndAward(userID uint, action models.ActionType, payload map[string]interface{}) []models.Achievement {
	if userID == 0 || action == "" {
		log.Printf("Achievement check skipped: missing user (%d) or action (%q)", userID, action)
		return nil
	}

	relevant := s.router[action]
	if len(relevant) == 0 {
		// Unrouted action types legitimately trigger nothing.
		return nil
	}
	relevantKinds := make(map[models.CriterionKind]bool, len(relevant))
	for _, kind := range relevant {
		relevantKinds[kind] = true
	}

	var unlockedIDs []uint
	if err := s.db.Model(&models.UserAchievement{}).
		Where("user_id = ?", userID).
		Pluck("achievement_id", &unlockedIDs).Error; err != nil {
		log.Printf("Achievement check aborted for user %d: %v", userID, err)
		return nil
	}

	query := s.db.Model(&models.Achievement{})
	if len(unlockedIDs) > 0 {
		query = query.Where("id NOT IN ?", unlockedIDs)
	}
	var candidates []models.Achievement
	if err := query.Find(&candidates).Error; err != nil {
		log.Printf("Achievement check aborted for user %d: %v", userID, err)
		return nil
	}

	event := ActionEvent{UserID: userID, Type: action, Payload: payload}

	var newlyUnlocked []models.Achievement
	for _, achievement := range candidates {
		kind := achievement.Criterion.Kind
		if !relevantKinds[kind] {
			continue
		}

		verifier, ok := s.verifiers[kind]
		if !ok {
			log.Printf("No verifier registered for criterion kind %q (achievement %q), skipping", kind, achievement.Name)
			continue
		}

		met, err := verifier(s.db, userID, achievement.Criterion.Params, event)
		if err != nil {
			// One broken criterion must never block the rest of the batch.
			log.Printf("Verifier %q failed for user %d: %v", kind, userID, err)
			continue
		}

		if met && s.award(userID, achievement) {
			newlyUnlocked = append(newlyUnlocked, achievement)
		}
	}

	return newlyUnlocked
}

// award records the unlock exactly once, credits the score, and emits
// the notification. Returns true only when this call created the
// record.
func (s *AchievementService) award(userID uint, achievement models.Achievement) bool {
	var count int64
	if err := s.db.Model(&models.UserAchievement{}).
		Where("user_id = ? AND achievement_id = ?", userID, achievement.ID).
		Count(&count).Error; err != nil {
		log.Printf("Award existence check failed for user %d: %v", userID, err)
		return false
	}
	if count > 0 {
		return false
	}

	unlock := models.UserAchievement{
		UserID:        userID,
		AchievementID: achievement.ID,
		UnlockedAt:    time.Now(),
	}
	if err := s.db.Create(&unlock).Error; err != nil {
		if isDuplicateErr(err) {
			// A concurrent trigger won the race; the achievement is
			// awarded either way.
			log.Printf("⚠️ Duplicate unlock for user %d achievement %q, already awarded concurrently", userID, achievement.Name)
			return false
		}
		log.Printf("Failed to record unlock for user %d achievement %q: %v", userID, achievement.Name, err)
		return false
	}

	if achievement.Points > 0 {
		if err := s.db.Model(&models.User{}).
			Where("id = ?", userID).
			UpdateColumn("score", gorm.Expr("score + ?", achievement.Points)).Error; err != nil {
			log.Printf("Failed to credit %d points to user %d: %v", achievement.Points, userID, err)
		}
	}

	s.notify(userID, achievement)

	log.Printf("🏆 Achievement unlocked: %q → user %d (+%d points)", achievement.Name, userID, achievement.Points)
	return true
}

// notify emits the unlock notification. The unlock already happened;
// nothing the notifier does can undo it, so every failure (including a
// panic) stops here.
func (s *AchievementService) notify(userID uint, achievement models.Achievement) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Notification panic for user %d achievement %q: %v", userID, achievement.Name, r)
		}
	}()

	if s.notifier == nil {
		return
	}
	if err := s.notifier.AchievementUnlocked(userID, achievement); err != nil {
		log.Printf("Notification failed for user %d achievement %q: %v", userID, achievement.Name, err)
	}
}

// ValidateCatalog checks at startup that every criterion kind present
// in the catalog has a registered verifier and at least one router
// entry. A manually curated router drifts; this turns silent dead
// achievements into a boot failure.
func (s *AchievementService) ValidateCatalog() error {
	var achievements []models.Achievement
	if err := s.db.Find(&achievements).Error; err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	routedKinds := make(map[models.CriterionKind]bool)
	for _, kinds := range s.router {
		for _, kind := range kinds {
			routedKinds[kind] = true
		}
	}

	var problems []string
	seen := make(map[models.CriterionKind]bool)
	for _, a := range achievements {
		kind := a.Criterion.Kind
		if seen[kind] {
			continue
		}
		seen[kind] = true

		if _, ok := s.verifiers[kind]; !ok {
			problems = append(problems, fmt.Sprintf("criterion kind %q (achievement %q) has no verifier", kind, a.Name))
		}
		if !routedKinds[kind] {
			problems = append(problems, fmt.Sprintf("criterion kind %q (achievement %q) is not routed by any action type", kind, a.Name))
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// isDuplicateErr recognizes a uniqueness violation across the drivers
// we run against (postgres in production, sqlite in tests).
func isDuplicateErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}
