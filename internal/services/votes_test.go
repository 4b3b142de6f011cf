package services

import (
	"errors"
	"testing"

	"github.com/ekinyalgin/curiora/internal/models"
)

func TestCastVoteToggleSequence(t *testing.T) {
	conn := openTestDB(t)
	votes := NewVoteService(conn)
	comments := NewCommentService(conn)
	user := seedUser(t, conn, models.RoleUser)
	voter := seedUser(t, conn, models.RoleUser)
	post := seedPost(t, conn, user)
	comment, _ := comments.Create(user, CreateCommentInput{PostID: post.ID, Body: "c"})

	// upvote: 0/0 -> 1/0
	count, err := votes.Cast(models.ItemTypeComment, comment.ID, voter.ID, 1)
	if err != nil {
		t.Fatalf("Cast failed: %v", err)
	}
	if count.UpVotes != 1 || count.DownVotes != 0 {
		t.Errorf("Expected 1/0, got %d/%d", count.UpVotes, count.DownVotes)
	}

	// same vote again toggles it off: 0/0
	count, err = votes.Cast(models.ItemTypeComment, comment.ID, voter.ID, 1)
	if err != nil {
		t.Fatalf("Cast failed: %v", err)
	}
	if count.UpVotes != 0 || count.DownVotes != 0 {
		t.Errorf("Expected 0/0 after toggle, got %d/%d", count.UpVotes, count.DownVotes)
	}

	// downvote: 0/1
	count, err = votes.Cast(models.ItemTypeComment, comment.ID, voter.ID, -1)
	if err != nil {
		t.Fatalf("Cast failed: %v", err)
	}
	if count.UpVotes != 0 || count.DownVotes != 1 {
		t.Errorf("Expected 0/1, got %d/%d", count.UpVotes, count.DownVotes)
	}
}

func TestCastVoteSwitchKeepsSingleRow(t *testing.T) {
	conn := openTestDB(t)
	votes := NewVoteService(conn)
	comments := NewCommentService(conn)
	user := seedUser(t, conn, models.RoleUser)
	voter := seedUser(t, conn, models.RoleUser)
	post := seedPost(t, conn, user)
	comment, _ := comments.Create(user, CreateCommentInput{PostID: post.ID, Body: "c"})

	votes.Cast(models.ItemTypeComment, comment.ID, voter.ID, 1)
	count, err := votes.Cast(models.ItemTypeComment, comment.ID, voter.ID, -1)
	if err != nil {
		t.Fatalf("Cast failed: %v", err)
	}
	if count.UpVotes != 0 || count.DownVotes != 1 {
		t.Errorf("Expected 0/1 after switch, got %d/%d", count.UpVotes, count.DownVotes)
	}

	var rows int64
	conn.Model(&models.Vote{}).Where("comment_id = ? AND user_id = ?", comment.ID, voter.ID).Count(&rows)
	if rows != 1 {
		t.Errorf("Expected exactly one vote row per (comment, voter), got %d", rows)
	}
}

func TestCastVoteZeroRetracts(t *testing.T) {
	conn := openTestDB(t)
	votes := NewVoteService(conn)
	user := seedUser(t, conn, models.RoleUser)
	voter := seedUser(t, conn, models.RoleUser)
	post := seedPost(t, conn, user)

	votes.Cast(models.ItemTypePost, post.ID, voter.ID, 1)
	count, err := votes.Cast(models.ItemTypePost, post.ID, voter.ID, 0)
	if err != nil {
		t.Fatalf("Cast failed: %v", err)
	}
	if count.UpVotes != 0 || count.DownVotes != 0 {
		t.Errorf("Expected 0/0 after retract, got %d/%d", count.UpVotes, count.DownVotes)
	}

	var rows int64
	conn.Model(&models.Vote{}).Where("post_id = ?", post.ID).Count(&rows)
	if rows != 0 {
		t.Errorf("Expected vote row removed, got %d", rows)
	}
}

func TestAggregateAlwaysMatchesRows(t *testing.T) {
	conn := openTestDB(t)
	votes := NewVoteService(conn)
	comments := NewCommentService(conn)
	user := seedUser(t, conn, models.RoleUser)
	post := seedPost(t, conn, user)
	comment, _ := comments.Create(user, CreateCommentInput{PostID: post.ID, Body: "c"})

	voters := []*models.User{
		seedUser(t, conn, models.RoleUser),
		seedUser(t, conn, models.RoleUser),
		seedUser(t, conn, models.RoleUser),
	}
	values := []int{1, 1, -1}
	for i, v := range voters {
		if _, err := votes.Cast(models.ItemTypeComment, comment.ID, v.ID, values[i]); err != nil {
			t.Fatalf("Cast failed: %v", err)
		}
	}

	var up, down int64
	conn.Model(&models.Vote{}).Where("comment_id = ? AND value = 1", comment.ID).Count(&up)
	conn.Model(&models.Vote{}).Where("comment_id = ? AND value = -1", comment.ID).Count(&down)

	count, err := votes.Counts(models.ItemTypeComment, comment.ID)
	if err != nil {
		t.Fatalf("Counts failed: %v", err)
	}
	if count.UpVotes != int(up) || count.DownVotes != int(down) {
		t.Errorf("Aggregate %d/%d drifted from rows %d/%d", count.UpVotes, count.DownVotes, up, down)
	}
	if count.Score() != 1 {
		t.Errorf("Expected score 1, got %d", count.Score())
	}
}

func TestCastVoteValidation(t *testing.T) {
	conn := openTestDB(t)
	votes := NewVoteService(conn)
	voter := seedUser(t, conn, models.RoleUser)

	if _, err := votes.Cast("story", 1, voter.ID, 1); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation for bad item type, got %v", err)
	}
	if _, err := votes.Cast(models.ItemTypePost, 1, voter.ID, 7); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation for bad value, got %v", err)
	}
	if _, err := votes.Cast(models.ItemTypePost, 99999, voter.ID, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing target, got %v", err)
	}
}
