package services

import (
	"errors"
	"testing"

	"github.com/dmolenda/achievehub/internal/dto"
	"github.com/dmolenda/achievehub/internal/models"
	"github.com/google/uuid"
)

func TestCreateOrFetchIsIdempotent(t *testing.T) {
	db := testDB(t)
	appID, _ := seedList(t, db)
	svc := NewPlayerService(db)

	first, err := svc.CreateOrFetch(appID, "alice")
	if err != nil {
		t.Fatalf("CreateOrFetch: %v", err)
	}
	second, err := svc.CreateOrFetch(appID, "alice")
	if err != nil {
		t.Fatalf("CreateOrFetch again: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("second call created a new player: %s != %s", first.ID, second.ID)
	}

	var count int64
	if err := db.Model(&models.Player{}).Count(&count).Error; err != nil {
		t.Fatalf("count players: %v", err)
	}
	if count != 1 {
		t.Fatalf("player rows = %d, want 1", count)
	}
}

func TestCreateOrFetchRequiresPlayerID(t *testing.T) {
	db := testDB(t)
	appID, _ := seedList(t, db)
	svc := NewPlayerService(db)

	if _, err := svc.CreateOrFetch(appID, ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("got %v, want ErrValidation", err)
	}
}

func TestUpdateProgressAccumulatesAndUnlocksOnce(t *testing.T) {
	db := testDB(t)
	appID, listID := seedList(t, db)
	achievements := NewAchievementService(db)
	players := NewPlayerService(db)

	ach, err := achievements.Create(listID, &dto.CreateAchievementRequest{
		Title: "collector", Type: models.AchievementTypeProgress, ProgressGoal: 5,
	})
	if err != nil {
		t.Fatalf("Create achievement: %v", err)
	}
	if _, err := players.CreateOrFetch(appID, "alice"); err != nil {
		t.Fatalf("CreateOrFetch: %v", err)
	}

	player, err := players.UpdateProgress(appID, "alice", ach.ID, 2)
	if err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}
	if got := player.Progress[0].Progress; got != 2 {
		t.Fatalf("progress after first delta = %d, want 2", got)
	}
	if player.Progress[0].DateUnlocked != nil {
		t.Fatalf("unlocked before reaching goal")
	}

	player, err = players.UpdateProgress(appID, "alice", ach.ID, 3)
	if err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}
	if got := player.Progress[0].Progress; got != 5 {
		t.Fatalf("progress after second delta = %d, want 5", got)
	}
	if player.Progress[0].DateUnlocked == nil {
		t.Fatalf("not unlocked at goal")
	}
	unlockedAt := *player.Progress[0].DateUnlocked

	// Further deltas accumulate but keep the original unlock timestamp.
	player, err = players.UpdateProgress(appID, "alice", ach.ID, 1)
	if err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}
	if got := player.Progress[0].Progress; got != 6 {
		t.Fatalf("progress after third delta = %d, want 6", got)
	}
	if !player.Progress[0].DateUnlocked.Equal(unlockedAt) {
		t.Fatalf("unlock timestamp moved: %v -> %v", unlockedAt, player.Progress[0].DateUnlocked)
	}
}

func TestUpdateProgressUnknownPlayer(t *testing.T) {
	db := testDB(t)
	appID, listID := seedList(t, db)
	achievements := NewAchievementService(db)
	players := NewPlayerService(db)

	ach, err := achievements.Create(listID, &dto.CreateAchievementRequest{
		Title: "x", Type: models.AchievementTypeMilestone,
	})
	if err != nil {
		t.Fatalf("Create achievement: %v", err)
	}

	if _, err := players.UpdateProgress(appID, "ghost", ach.ID, 1); !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("got %v, want ErrPlayerNotFound", err)
	}
}

func TestUpdateProgressUnknownAchievement(t *testing.T) {
	db := testDB(t)
	appID, _ := seedList(t, db)
	players := NewPlayerService(db)

	if _, err := players.CreateOrFetch(appID, "alice"); err != nil {
		t.Fatalf("CreateOrFetch: %v", err)
	}
	if _, err := players.UpdateProgress(appID, "alice", uuid.New(), 1); !errors.Is(err, ErrAchievementNotFound) {
		t.Fatalf("got %v, want ErrAchievementNotFound", err)
	}
}

func TestDeletePlayerRemovesProgress(t *testing.T) {
	db := testDB(t)
	appID, listID := seedList(t, db)
	achievements := NewAchievementService(db)
	players := NewPlayerService(db)

	ach, err := achievements.Create(listID, &dto.CreateAchievementRequest{
		Title: "x", Type: models.AchievementTypeMilestone,
	})
	if err != nil {
		t.Fatalf("Create achievement: %v", err)
	}
	if _, err := players.CreateOrFetch(appID, "alice"); err != nil {
		t.Fatalf("CreateOrFetch: %v", err)
	}
	if _, err := players.UpdateProgress(appID, "alice", ach.ID, 1); err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}

	if err := players.Delete(appID, "alice"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	var count int64
	if err := db.Model(&models.PlayerProgress{}).Count(&count).Error; err != nil {
		t.Fatalf("count progress: %v", err)
	}
	if count != 0 {
		t.Fatalf("progress rows after player delete = %d, want 0", count)
	}
	if _, err := players.Get(appID, "alice"); !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("got %v, want ErrPlayerNotFound", err)
	}
}
