// database/migrate.go - Database Migration Runner
package database

import (
	"log"

	"gametrack/models"
)

// RunMigrations runs all database migrations
func RunMigrations() {
	db := GetDB()
	log.Println("🔄 Running database migrations...")

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
		log.Fatalf("❌ Failed to run migrations: %v", err)
	}

	createIndexes()

	log.Println("✅ All migrations completed successfully")
}

// createIndexes creates indexes AutoMigrate does not cover
func createIndexes() {
	db := GetDB()

	// User indexes
	db.Exec("CREATE INDEX IF NOT EXISTS idx_users_score ON users(score DESC)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_users_verified ON users(verified)")

	// Game list indexes
	db.Exec("CREATE INDEX IF NOT EXISTS idx_game_entries_list_status ON game_entries(list_id, status)")

	// Achievement indexes
	db.Exec("CREATE INDEX IF NOT EXISTS idx_achievements_kind ON achievements(criterion_kind)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_user_achievements_user ON user_achievements(user_id)")

	// Social indexes
	db.Exec("CREATE INDEX IF NOT EXISTS idx_friends_pair ON friends(user_id, friend_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_group_members_pair ON group_members(group_id, user_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_notifications_user_read ON notifications(user_id, read)")
}
