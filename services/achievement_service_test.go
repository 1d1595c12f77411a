package services_test

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"gametrack/database"
	"gametrack/models"
	"gametrack/services"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testDB creates a temporary sqlite database with the full schema.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=10000&_journal_mode=WAL"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Achievement{},
		&models.UserAchievement{},
		&models.GameList{},
		&models.GameEntry{},
		&models.Friend{},
		&models.FriendRequest{},
		&models.Group{},
		&models.GroupMember{},
		&models.Notification{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	user := models.User{Username: username, Password: "x", CreatedAt: time.Now()}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func createAchievement(t *testing.T, db *gorm.DB, name string, points int, kind models.CriterionKind, params interface{}) models.Achievement {
	t.Helper()
	data, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("marshal params: %v", err)
	}
	achievement := models.Achievement{
		Name:        name,
		Description: name,
		Category:    models.CategoryCompletion,
		Points:      points,
		Criterion: models.Criterion{
			Kind:   kind,
			Params: models.CriterionParams(data),
		},
	}
	if err := db.Create(&achievement).Error; err != nil {
		t.Fatalf("create achievement: %v", err)
	}
	return achievement
}

// addCompletedGames gives the user a list containing n completed games.
func addCompletedGames(t *testing.T, db *gorm.DB, userID uint, n int, genres string) {
	t.Helper()
	list := models.GameList{UserID: userID, Name: "Backlog"}
	if err := db.Create(&list).Error; err != nil {
		t.Fatalf("create list: %v", err)
	}
	for i := 0; i < n; i++ {
		entry := models.GameEntry{
			ListID: list.ID,
			Title:  "Game",
			Genres: genres,
			Status: models.StatusCompleted,
		}
		if err := db.Create(&entry).Error; err != nil {
			t.Fatalf("create entry: %v", err)
		}
	}
}

func userScore(t *testing.T, db *gorm.DB, userID uint) int {
	t.Helper()
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	return user.Score
}

func unlockCount(t *testing.T, db *gorm.DB, userID, achievementID uint) int64 {
	t.Helper()
	var count int64
	db.Model(&models.UserAchievement{}).
		Where("user_id = ? AND achievement_id = ?", userID, achievementID).
		Count(&count)
	return count
}

// stubNotifier records calls and optionally fails or panics.
type stubNotifier struct {
	mu       sync.Mutex
	calls    []string
	err      error
	panicMsg string
}

func (s *stubNotifier) AchievementUnlocked(userID uint, achievement models.Achievement) error {
	s.mu.Lock()
	s.calls = append(s.calls, achievement.Name)
	s.mu.Unlock()
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	return s.err
}

func (s *stubNotifier) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// ═══════════════════════════════════════════════════════════════════════════
// Orchestrator Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestCheckAndAward_ScenarioA_FifthGameCompletes(t *testing.T) {
	db := testDB(t)
	user := createUser(t, db, "alice")
	achievement := createAchievement(t, db, "Complete 5 games", 20,
		models.CriterionTotalGamesCompleted, map[string]int{"count": 5})

	notifier := &stubNotifier{}
	svc := services.NewAchievementService(db, notifier)

	// Four completed games: threshold not met yet.
	addCompletedGames(t, db, user.ID, 4, "")
	unlocked := svc.CheckAndAward(user.ID, models.ActionGameStatusUpdated, nil)
	if len(unlocked) != 0 {
		t.Fatalf("expected no unlock at 4 games, got %d", len(unlocked))
	}

	// The fifth completion crosses the threshold.
	addCompletedGames(t, db, user.ID, 1, "")
	unlocked = svc.CheckAndAward(user.ID, models.ActionGameStatusUpdated, nil)
	if len(unlocked) != 1 || unlocked[0].Name != "Complete 5 games" {
		t.Fatalf("expected 1 unlock, got %v", unlocked)
	}

	if n := unlockCount(t, db, user.ID, achievement.ID); n != 1 {
		t.Errorf("expected exactly 1 unlock record, got %d", n)
	}
	if score := userScore(t, db, user.ID); score != 20 {
		t.Errorf("expected score 20, got %d", score)
	}
	if notifier.callCount() != 1 {
		t.Errorf("expected 1 notification, got %d", notifier.callCount())
	}
}

func TestCheckAndAward_Idempotent(t *testing.T) {
	db := testDB(t)
	user := createUser(t, db, "bob")
	achievement := createAchievement(t, db, "Finisher", 20,
		models.CriterionTotalGamesCompleted, map[string]int{"count": 1})
	addCompletedGames(t, db, user.ID, 1, "")

	svc := services.NewAchievementService(db, &stubNotifier{})

	for i := 0; i < 5; i++ {
		svc.CheckAndAward(user.ID, models.ActionGameStatusUpdated, nil)
	}

	if n := unlockCount(t, db, user.ID, achievement.ID); n != 1 {
		t.Errorf("expected 1 unlock record after 5 calls, got %d", n)
	}
	if score := userScore(t, db, user.ID); score != 20 {
		t.Errorf("expected score credited once (20), got %d", score)
	}
}

func TestCheckAndAward_ConcurrentCallsAwardOnce(t *testing.T) {
	db := testDB(t)
	user := createUser(t, db, "carol")
	achievement := createAchievement(t, db, "Finisher", 20,
		models.CriterionTotalGamesCompleted, map[string]int{"count": 1})
	addCompletedGames(t, db, user.ID, 1, "")

	svc := services.NewAchievementService(db, &stubNotifier{})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.CheckAndAward(user.ID, models.ActionGameStatusUpdated, nil)
		}()
	}
	wg.Wait()

	if n := unlockCount(t, db, user.ID, achievement.ID); n != 1 {
		t.Errorf("expected exactly 1 unlock record under concurrency, got %d", n)
	}
	if score := userScore(t, db, user.ID); score != 20 {
		t.Errorf("expected exactly one score increment (20), got %d", score)
	}
}

func TestCheckAndAward_AlreadyUnlockedNotReEvaluated(t *testing.T) {
	db := testDB(t)
	user := createUser(t, db, "dave")
	createAchievement(t, db, "Finisher", 20,
		models.CriterionTotalGamesCompleted, map[string]int{"count": 5})
	addCompletedGames(t, db, user.ID, 5, "")

	var mu sync.Mutex
	invocations := 0
	spied := services.DefaultVerifiers()
	inner := spied[models.CriterionTotalGamesCompleted]
	spied[models.CriterionTotalGamesCompleted] = func(db *gorm.DB, userID uint, params models.CriterionParams, event services.ActionEvent) (bool, error) {
		mu.Lock()
		invocations++
		mu.Unlock()
		return inner(db, userID, params, event)
	}

	svc := services.NewAchievementServiceWith(db, &stubNotifier{}, spied, services.DefaultActionRouter())

	svc.CheckAndAward(user.ID, models.ActionGameStatusUpdated, nil)
	if invocations != 1 {
		t.Fatalf("expected 1 verifier invocation, got %d", invocations)
	}

	// Scenario B: a sixth completion after the unlock must not even
	// reach the verifier.
	addCompletedGames(t, db, user.ID, 1, "")
	svc.CheckAndAward(user.ID, models.ActionGameStatusUpdated, nil)
	if invocations != 1 {
		t.Errorf("verifier re-invoked for already-unlocked achievement (%d calls)", invocations)
	}
	if score := userScore(t, db, user.ID); score != 20 {
		t.Errorf("expected no duplicate score increment, got %d", score)
	}
}

func TestCheckAndAward_IrrelevantActionFiltered(t *testing.T) {
	db := testDB(t)
	user := createUser(t, db, "erin")
	createAchievement(t, db, "Social Butterfly", 15,
		models.CriterionTotalFriends, map[string]int{"count": 1})

	invocations := 0
	spied := services.DefaultVerifiers()
	spied[models.CriterionTotalFriends] = func(*gorm.DB, uint, models.CriterionParams, services.ActionEvent) (bool, error) {
		invocations++
		return true, nil
	}

	svc := services.NewAchievementServiceWith(db, &stubNotifier{}, spied, services.DefaultActionRouter())

	// A game status change must never query the friend criterion.
	svc.CheckAndAward(user.ID, models.ActionGameStatusUpdated, nil)
	if invocations != 0 {
		t.Errorf("friend verifier invoked %d times for a game action", invocations)
	}

	svc.CheckAndAward(user.ID, models.ActionFriendRequestAccepted, nil)
	if invocations != 1 {
		t.Errorf("expected friend verifier invoked once for friend action, got %d", invocations)
	}
}

func TestCheckAndAward_UnroutedActionIsNoop(t *testing.T) {
	db := testDB(t)
	user := createUser(t, db, "frank")
	createAchievement(t, db, "Finisher", 20,
		models.CriterionTotalGamesCompleted, map[string]int{"count": 1})
	addCompletedGames(t, db, user.ID, 1, "")

	svc := services.NewAchievementService(db, &stubNotifier{})

	unlocked := svc.CheckAndAward(user.ID, models.ActionType("SOMETHING_ELSE"), nil)
	if unlocked != nil {
		t.Errorf("unrouted action should award nothing, got %v", unlocked)
	}
}

func TestCheckAndAward_MissingInput(t *testing.T) {
	db := testDB(t)
	svc := services.NewAchievementService(db, &stubNotifier{})

	if got := svc.CheckAndAward(0, models.ActionUserRegistered, nil); got != nil {
		t.Errorf("missing user id should be a no-op, got %v", got)
	}
	if got := svc.CheckAndAward(1, "", nil); got != nil {
		t.Errorf("missing action should be a no-op, got %v", got)
	}
}

func TestCheckAndAward_VerifierErrorIsolatedPerCandidate(t *testing.T) {
	db := testDB(t)
	user := createUser(t, db, "grace")
	// Malformed criterion: no count in params.
	broken := createAchievement(t, db, "Broken", 5,
		models.CriterionTotalGamesCompleted, map[string]int{})
	healthy := createAchievement(t, db, "Finisher", 20,
		models.CriterionTotalGamesCompleted, map[string]int{"count": 1})
	addCompletedGames(t, db, user.ID, 1, "")

	svc := services.NewAchievementService(db, &stubNotifier{})
	unlocked := svc.CheckAndAward(user.ID, models.ActionGameStatusUpdated, nil)

	if len(unlocked) != 1 || unlocked[0].ID != healthy.ID {
		t.Fatalf("healthy achievement should unlock despite broken sibling, got %v", unlocked)
	}
	if n := unlockCount(t, db, user.ID, broken.ID); n != 0 {
		t.Errorf("broken criterion must not award, got %d records", n)
	}
}

func TestCheckAndAward_UnregisteredKindSkipped(t *testing.T) {
	db := testDB(t)
	user := createUser(t, db, "heidi")
	createAchievement(t, db, "Finisher", 20,
		models.CriterionTotalGamesCompleted, map[string]int{"count": 1})
	addCompletedGames(t, db, user.ID, 1, "")

	// Registry without the completion verifier: lookup fails, engine
	// skips without awarding or panicking.
	verifiers := services.DefaultVerifiers()
	delete(verifiers, models.CriterionTotalGamesCompleted)

	svc := services.NewAchievementServiceWith(db, &stubNotifier{}, verifiers, services.DefaultActionRouter())
	unlocked := svc.CheckAndAward(user.ID, models.ActionGameStatusUpdated, nil)
	if len(unlocked) != 0 {
		t.Errorf("unverifiable criterion must not award, got %v", unlocked)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Award Engine Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestAward_ScenarioD_NotifierFailureSwallowed(t *testing.T) {
	db := testDB(t)
	user := createUser(t, db, "ivan")
	achievement := createAchievement(t, db, "Finisher", 20,
		models.CriterionTotalGamesCompleted, map[string]int{"count": 1})
	addCompletedGames(t, db, user.ID, 1, "")

	notifier := &stubNotifier{err: errors.New("smtp down")}
	svc := services.NewAchievementService(db, notifier)

	unlocked := svc.CheckAndAward(user.ID, models.ActionGameStatusUpdated, nil)
	if len(unlocked) != 1 {
		t.Fatalf("unlock must survive notifier failure, got %v", unlocked)
	}
	if n := unlockCount(t, db, user.ID, achievement.ID); n != 1 {
		t.Errorf("expected unlock record to persist, got %d", n)
	}
	if score := userScore(t, db, user.ID); score != 20 {
		t.Errorf("expected score to persist, got %d", score)
	}
}

func TestAward_NotifierPanicSwallowed(t *testing.T) {
	db := testDB(t)
	user := createUser(t, db, "judy")
	achievement := createAchievement(t, db, "Finisher", 20,
		models.CriterionTotalGamesCompleted, map[string]int{"count": 1})
	addCompletedGames(t, db, user.ID, 1, "")

	notifier := &stubNotifier{panicMsg: "channel closed"}
	svc := services.NewAchievementService(db, notifier)

	unlocked := svc.CheckAndAward(user.ID, models.ActionGameStatusUpdated, nil)
	if len(unlocked) != 1 {
		t.Fatalf("unlock must survive notifier panic, got %v", unlocked)
	}
	if n := unlockCount(t, db, user.ID, achievement.ID); n != 1 {
		t.Errorf("expected unlock record to persist, got %d", n)
	}
}

func TestAward_ZeroPointAchievementDoesNotTouchScore(t *testing.T) {
	db := testDB(t)
	user := createUser(t, db, "karl")
	createAchievement(t, db, "Badge Only", 0,
		models.CriterionTotalGamesCompleted, map[string]int{"count": 1})
	addCompletedGames(t, db, user.ID, 1, "")

	svc := services.NewAchievementService(db, &stubNotifier{})
	unlocked := svc.CheckAndAward(user.ID, models.ActionGameStatusUpdated, nil)
	if len(unlocked) != 1 {
		t.Fatalf("expected unlock, got %v", unlocked)
	}
	if score := userScore(t, db, user.ID); score != 0 {
		t.Errorf("zero-point achievement must not change score, got %d", score)
	}
}

func TestNotification_InboxRecordShape(t *testing.T) {
	db := testDB(t)
	user := createUser(t, db, "lena")
	createAchievement(t, db, "Finisher", 20,
		models.CriterionTotalGamesCompleted, map[string]int{"count": 1})
	addCompletedGames(t, db, user.ID, 1, "")

	svc := services.NewAchievementService(db, services.NewNotificationService(db))
	svc.CheckAndAward(user.ID, models.ActionGameStatusUpdated, nil)

	var notif models.Notification
	if err := db.Where("user_id = ?", user.ID).First(&notif).Error; err != nil {
		t.Fatalf("expected inbox record: %v", err)
	}
	if notif.Sender != services.NotificationSender {
		t.Errorf("expected sender %q, got %q", services.NotificationSender, notif.Sender)
	}
	if notif.Subject != services.AchievementSubject {
		t.Errorf("expected subject %q, got %q", services.AchievementSubject, notif.Subject)
	}
	if want := "<strong>Finisher</strong>"; !strings.Contains(notif.Body, want) {
		t.Errorf("expected body to contain %q, got %q", want, notif.Body)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Catalog Validation Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestValidateCatalog_DefaultCatalogPasses(t *testing.T) {
	db := testDB(t)
	database.SeedAchievementsInto(db)

	svc := services.NewAchievementService(db, &stubNotifier{})
	if err := svc.ValidateCatalog(); err != nil {
		t.Errorf("default catalog should validate, got: %v", err)
	}
}

func TestValidateCatalog_UnknownKindFails(t *testing.T) {
	db := testDB(t)
	createAchievement(t, db, "Mystery", 5,
		models.CriterionKind("SOMETHING_NEW"), map[string]int{"count": 1})

	svc := services.NewAchievementService(db, &stubNotifier{})
	if err := svc.ValidateCatalog(); err == nil {
		t.Error("expected validation failure for unregistered criterion kind")
	}
}

func TestValidateCatalog_UnroutedKindFails(t *testing.T) {
	db := testDB(t)
	createAchievement(t, db, "Finisher", 20,
		models.CriterionTotalGamesCompleted, map[string]int{"count": 1})

	// Router with the completion kind removed: the verifier exists but
	// nothing would ever trigger it.
	router := services.DefaultActionRouter()
	delete(router, models.ActionGameStatusUpdated)
	delete(router, models.ActionGameAddedToList)

	svc := services.NewAchievementServiceWith(db, &stubNotifier{}, services.DefaultVerifiers(), router)
	if err := svc.ValidateCatalog(); err == nil {
		t.Error("expected validation failure for unrouted criterion kind")
	}
}
