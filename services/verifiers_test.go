package services_test

import (
	"encoding/json"
	"testing"

	"gametrack/models"
	"gametrack/services"

	"gorm.io/gorm"
)

func mustParams(t *testing.T, v interface{}) models.CriterionParams {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal params: %v", err)
	}
	return models.CriterionParams(data)
}

func runVerifier(t *testing.T, db *gorm.DB, kind models.CriterionKind, userID uint, params models.CriterionParams) (bool, error) {
	t.Helper()
	verify, ok := services.DefaultVerifiers()[kind]
	if !ok {
		t.Fatalf("no verifier registered for %s", kind)
	}
	return verify(db, userID, params, services.ActionEvent{UserID: userID})
}

// ═══════════════════════════════════════════════════════════════════════════
// Game Count Verifiers
// ═══════════════════════════════════════════════════════════════════════════

func TestVerifyTotalGamesCompleted_MonotonicThreshold(t *testing.T) {
	db := testDB(t)
	user := createUser(t, db, "alice")
	params := mustParams(t, map[string]int{"count": 3})

	// Once the threshold is crossed it stays crossed: verify at every
	// count from 0 to 5 and check met == (count >= 3).
	for count := 0; count <= 5; count++ {
		if count > 0 {
			addCompletedGames(t, db, user.ID, 1, "")
		}
		met, err := runVerifier(t, db, models.CriterionTotalGamesCompleted, user.ID, params)
		if err != nil {
			t.Fatalf("count=%d: %v", count, err)
		}
		if want := count >= 3; met != want {
			t.Errorf("count=%d: met=%v, want %v", count, met, want)
		}
	}
}

func TestVerifyTotalGamesCompleted_IgnoresOtherStatuses(t *testing.T) {
	db := testDB(t)
	user := createUser(t, db, "bob")
	list := models.GameList{UserID: user.ID, Name: "Backlog"}
	if err := db.Create(&list).Error; err != nil {
		t.Fatalf("create list: %v", err)
	}
	for _, status := range []string{models.StatusPlaying, models.StatusOnHold, models.StatusDropped, models.StatusPlanned} {
		entry := models.GameEntry{ListID: list.ID, Title: "Game", Status: status}
		if err := db.Create(&entry).Error; err != nil {
			t.Fatalf("create entry: %v", err)
		}
	}

	met, err := runVerifier(t, db, models.CriterionTotalGamesCompleted, user.ID,
		mustParams(t, map[string]int{"count": 1}))
	if err != nil {
		t.Fatal(err)
	}
	if met {
		t.Error("non-completed entries must not count as completions")
	}
}

func TestVerifyTotalGamesCompleted_OnlyOwnGames(t *testing.T) {
	db := testDB(t)
	alice := createUser(t, db, "alice")
	mallory := createUser(t, db, "mallory")
	addCompletedGames(t, db, mallory.ID, 3, "")

	met, err := runVerifier(t, db, models.CriterionTotalGamesCompleted, alice.ID,
		mustParams(t, map[string]int{"count": 1}))
	if err != nil {
		t.Fatal(err)
	}
	if met {
		t.Error("another user's completions must not count")
	}
}

func TestVerifyTotalGamesInLists(t *testing.T) {
	db := testDB(t)
	user := createUser(t, db, "carol")
	list := models.GameList{UserID: user.ID, Name: "Backlog"}
	if err := db.Create(&list).Error; err != nil {
		t.Fatalf("create list: %v", err)
	}
	// Any status counts toward the list total.
	for _, status := range []string{models.StatusPlanned, models.StatusPlaying, models.StatusCompleted} {
		entry := models.GameEntry{ListID: list.ID, Title: "Game", Status: status}
		if err := db.Create(&entry).Error; err != nil {
			t.Fatalf("create entry: %v", err)
		}
	}

	met, err := runVerifier(t, db, models.CriterionTotalGamesInLists, user.ID,
		mustParams(t, map[string]int{"count": 3}))
	if err != nil {
		t.Fatal(err)
	}
	if !met {
		t.Error("expected 3 entries to meet count=3")
	}
}

func TestVerifyGamesCompletedByGenre(t *testing.T) {
	db := testDB(t)
	user := createUser(t, db, "dave")
	addCompletedGames(t, db, user.ID, 2, "action,role-playing-games-rpg")
	addCompletedGames(t, db, user.ID, 1, "role-playing-games-rpg")
	addCompletedGames(t, db, user.ID, 4, "action-adventure")

	met, err := runVerifier(t, db, models.CriterionGamesCompletedByGenre, user.ID,
		mustParams(t, map[string]interface{}{"genre_slug": "role-playing-games-rpg", "count": 3}))
	if err != nil {
		t.Fatal(err)
	}
	if !met {
		t.Error("expected 3 RPG completions to meet count=3")
	}

	// "action" must not match "action-adventure" entries.
	met, err = runVerifier(t, db, models.CriterionGamesCompletedByGenre, user.ID,
		mustParams(t, map[string]interface{}{"genre_slug": "action", "count": 3}))
	if err != nil {
		t.Fatal(err)
	}
	if met {
		t.Error("genre slug matched a different genre by substring")
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Profile Verifier
// ═══════════════════════════════════════════════════════════════════════════

func TestVerifyProfileComplete_ScenarioC_BannerRules(t *testing.T) {
	db := testDB(t)
	user := createUser(t, db, "erin")
	params := mustParams(t, map[string][]string{"fields": {"avatar", "banner", "bio"}})

	update := func(changes map[string]interface{}) {
		if err := db.Model(&models.User{}).Where("id = ?", user.ID).Updates(changes).Error; err != nil {
			t.Fatalf("update user: %v", err)
		}
	}

	update(map[string]interface{}{"avatar": "https://cdn.example/a.png", "bio": "hi"})

	// Banner of type image with no image URL is incomplete.
	update(map[string]interface{}{"banner_type": models.BannerTypeImage, "banner_image_url": ""})
	met, err := runVerifier(t, db, models.CriterionProfileComplete, user.ID, params)
	if err != nil {
		t.Fatal(err)
	}
	if met {
		t.Error("image banner without URL should not count as set")
	}

	update(map[string]interface{}{"banner_image_url": "https://cdn.example/b.png"})
	met, err = runVerifier(t, db, models.CriterionProfileComplete, user.ID, params)
	if err != nil {
		t.Fatal(err)
	}
	if !met {
		t.Error("expected profile complete once banner image URL is set")
	}

	// Color banners only need the color.
	update(map[string]interface{}{"banner_type": models.BannerTypeColor, "banner_image_url": "", "banner_color": "#112233"})
	met, err = runVerifier(t, db, models.CriterionProfileComplete, user.ID, params)
	if err != nil {
		t.Fatal(err)
	}
	if !met {
		t.Error("color banner with a color set should count")
	}
}

func TestVerifyProfileComplete_UnknownFieldIsError(t *testing.T) {
	db := testDB(t)
	user := createUser(t, db, "frank")

	_, err := runVerifier(t, db, models.CriterionProfileComplete, user.ID,
		mustParams(t, map[string][]string{"fields": {"shoe_size"}}))
	if err == nil {
		t.Error("expected error for unknown profile field")
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Social Verifiers
// ═══════════════════════════════════════════════════════════════════════════

func TestVerifyTotalFriends_CountsBothDirections(t *testing.T) {
	db := testDB(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	carol := createUser(t, db, "carol")

	// One row per friendship, alice on either side.
	for _, f := range []models.Friend{
		{UserID: alice.ID, FriendID: bob.ID},
		{UserID: carol.ID, FriendID: alice.ID},
	} {
		if err := db.Create(&f).Error; err != nil {
			t.Fatalf("create friend: %v", err)
		}
	}

	met, err := runVerifier(t, db, models.CriterionTotalFriends, alice.ID,
		mustParams(t, map[string]int{"count": 2}))
	if err != nil {
		t.Fatal(err)
	}
	if !met {
		t.Error("expected friendships on both sides of the row to count")
	}
}

func TestVerifyGroupCriteria(t *testing.T) {
	db := testDB(t)
	user := createUser(t, db, "grace")

	group := models.Group{Name: "Raiders", JoinCode: "ABCD1234", CreatorID: user.ID}
	if err := db.Create(&group).Error; err != nil {
		t.Fatalf("create group: %v", err)
	}
	member := models.GroupMember{GroupID: group.ID, UserID: user.ID, Role: models.GroupRoleOwner}
	if err := db.Create(&member).Error; err != nil {
		t.Fatalf("create member: %v", err)
	}

	met, err := runVerifier(t, db, models.CriterionTotalGroupsJoined, user.ID,
		mustParams(t, map[string]int{"count": 1}))
	if err != nil {
		t.Fatal(err)
	}
	if !met {
		t.Error("group membership should count toward joined total")
	}

	met, err = runVerifier(t, db, models.CriterionTotalGroupsCreated, user.ID,
		mustParams(t, map[string]int{"count": 1}))
	if err != nil {
		t.Fatal(err)
	}
	if !met {
		t.Error("created group should count toward created total")
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Account Verifiers
// ═══════════════════════════════════════════════════════════════════════════

func TestVerifyAccountVerified(t *testing.T) {
	db := testDB(t)
	user := createUser(t, db, "heidi")
	params := mustParams(t, map[string]bool{"verified": true})

	met, err := runVerifier(t, db, models.CriterionAccountVerified, user.ID, params)
	if err != nil {
		t.Fatal(err)
	}
	if met {
		t.Error("unverified account should not satisfy the criterion")
	}

	if err := db.Model(&models.User{}).Where("id = ?", user.ID).Update("verified", true).Error; err != nil {
		t.Fatalf("update user: %v", err)
	}
	met, err = runVerifier(t, db, models.CriterionAccountVerified, user.ID, params)
	if err != nil {
		t.Fatal(err)
	}
	if !met {
		t.Error("verified account should satisfy the criterion")
	}
}

func TestVerifyUserRegistered(t *testing.T) {
	db := testDB(t)
	user := createUser(t, db, "ivan")

	met, err := runVerifier(t, db, models.CriterionUserRegistered, user.ID,
		mustParams(t, map[string]bool{"registered": true}))
	if err != nil {
		t.Fatal(err)
	}
	if !met {
		t.Error("existing user should satisfy the registration criterion")
	}

	met, err = runVerifier(t, db, models.CriterionUserRegistered, user.ID+999,
		mustParams(t, map[string]bool{"registered": true}))
	if err != nil {
		t.Fatal(err)
	}
	if met {
		t.Error("unknown user id should not satisfy the registration criterion")
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Params Decoding
// ═══════════════════════════════════════════════════════════════════════════

func TestCountParams_Rejected(t *testing.T) {
	db := testDB(t)
	user := createUser(t, db, "judy")

	cases := []interface{}{
		map[string]int{},           // missing count
		map[string]int{"count": 0}, // below minimum
		map[string]int{"count": -3},
	}
	for _, params := range cases {
		if _, err := runVerifier(t, db, models.CriterionTotalGamesCompleted, user.ID, mustParams(t, params)); err == nil {
			t.Errorf("params %v: expected decode error", params)
		}
	}
}

func TestDefaultRouter_EveryKindReachable(t *testing.T) {
	router := services.DefaultActionRouter()
	verifiers := services.DefaultVerifiers()

	routed := make(map[models.CriterionKind]bool)
	for _, kinds := range router {
		for _, kind := range kinds {
			routed[kind] = true
		}
	}
	for kind := range verifiers {
		if !routed[kind] {
			t.Errorf("criterion kind %s has a verifier but no routing action", kind)
		}
	}
}
