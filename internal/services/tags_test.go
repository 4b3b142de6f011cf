package services

import (
	"errors"
	"testing"

	"github.com/ekinyalgin/curiora/internal/models"
)

func TestToggleFollowTracksCounter(t *testing.T) {
	conn := openTestDB(t)
	tags := NewTagService(conn)
	user := seedUser(t, conn, models.RoleUser)
	other := seedUser(t, conn, models.RoleUser)

	tag := models.Tag{Name: "golang"}
	if err := conn.Create(&tag).Error; err != nil {
		t.Fatalf("Failed to create tag: %v", err)
	}

	following, count, err := tags.ToggleFollow(user.ID, tag.ID)
	if err != nil {
		t.Fatalf("ToggleFollow failed: %v", err)
	}
	if !following || count != 1 {
		t.Errorf("Expected following with count 1, got %v/%d", following, count)
	}

	following, count, err = tags.ToggleFollow(other.ID, tag.ID)
	if err != nil {
		t.Fatalf("ToggleFollow failed: %v", err)
	}
	if !following || count != 2 {
		t.Errorf("Expected following with count 2, got %v/%d", following, count)
	}

	// Toggling again unfollows and decrements.
	following, count, err = tags.ToggleFollow(user.ID, tag.ID)
	if err != nil {
		t.Fatalf("ToggleFollow failed: %v", err)
	}
	if following || count != 1 {
		t.Errorf("Expected unfollowed with count 1, got %v/%d", following, count)
	}

	followed, err := tags.Following(other.ID)
	if err != nil {
		t.Fatalf("Following failed: %v", err)
	}
	if len(followed) != 1 || followed[0].ID != tag.ID {
		t.Errorf("Expected other user to follow exactly the tag, got %v", followed)
	}
	if none, _ := tags.Following(user.ID); len(none) != 0 {
		t.Errorf("Expected user to follow nothing after toggle off, got %v", none)
	}
}

func TestToggleFollowMissingTag(t *testing.T) {
	conn := openTestDB(t)
	tags := NewTagService(conn)
	user := seedUser(t, conn, models.RoleUser)

	if _, _, err := tags.ToggleFollow(user.ID, 99999); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
