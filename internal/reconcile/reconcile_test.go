package reconcile

import (
	"errors"
	"testing"
	"time"
)

func baseSnapshot() Snapshot {
	return Snapshot{Comments: []CommentView{
		{ID: 1, Body: "first", Status: "approved", UpVotes: 3, DownVotes: 1},
		{ID: 2, Body: "second", Status: "pending", ReportCount: 2},
	}}
}

func find(t *testing.T, snap Snapshot, id uint) CommentView {
	t.Helper()
	for _, c := range snap.Comments {
		if c.ID == id {
			return c
		}
	}
	t.Fatalf("Comment %d not found in snapshot", id)
	return CommentView{}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	snap := baseSnapshot()
	Apply(snap, TextEdited{ID: 1, Body: "edited"})
	if snap.Comments[0].Body != "first" {
		t.Errorf("Apply mutated the input snapshot")
	}
}

func TestApplyStatusChangedManagesArchivedAt(t *testing.T) {
	snap := baseSnapshot()

	ts := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	out := Apply(snap, StatusChanged{ID: 2, Status: "archived", ArchivedAt: &ts})
	c := find(t, out, 2)
	if c.Status != "archived" || c.ArchivedAt == nil || !c.ArchivedAt.Equal(ts) {
		t.Errorf("Expected archived at %v, got %s/%v", ts, c.Status, c.ArchivedAt)
	}

	// Archiving without a timestamp stamps one.
	out = Apply(snap, StatusChanged{ID: 2, Status: "archived"})
	if c = find(t, out, 2); c.ArchivedAt == nil {
		t.Errorf("Expected an archived_at timestamp to be stamped")
	}

	// Leaving archived clears the timestamp.
	out = Apply(out, StatusChanged{ID: 2, Status: "approved"})
	c = find(t, out, 2)
	if c.Status != "approved" || c.ArchivedAt != nil {
		t.Errorf("Expected approved with nil archived_at, got %s/%v", c.Status, c.ArchivedAt)
	}
}

func TestApplySoftDeleteAndRestore(t *testing.T) {
	snap := baseSnapshot()

	out := Apply(snap, SoftDeleted{ID: 1})
	if !find(t, out, 1).IsDeleted {
		t.Errorf("Expected comment marked deleted")
	}

	out = Apply(out, Restored{ID: 1})
	c := find(t, out, 1)
	if c.IsDeleted {
		t.Errorf("Expected comment restored")
	}
	if c.Status != "approved" {
		t.Errorf("Restore must not touch status, got %s", c.Status)
	}
}

func TestApplyHardDeleteRemovesComment(t *testing.T) {
	out := Apply(baseSnapshot(), HardDeleted{ID: 1})
	if len(out.Comments) != 1 || out.Comments[0].ID != 2 {
		t.Errorf("Expected only comment 2 to remain, got %v", out.Comments)
	}
}

func TestApplyVoteCastToggle(t *testing.T) {
	snap := baseSnapshot()

	out := Apply(snap, VoteCast{ID: 1, Value: 1})
	c := find(t, out, 1)
	if c.UpVotes != 4 || c.MyVote != 1 {
		t.Errorf("Expected up 4 with my vote 1, got %d/%d", c.UpVotes, c.MyVote)
	}

	// Same vote again toggles it off.
	out = Apply(out, VoteCast{ID: 1, Value: 1})
	c = find(t, out, 1)
	if c.UpVotes != 3 || c.MyVote != 0 {
		t.Errorf("Expected up 3 with no vote, got %d/%d", c.UpVotes, c.MyVote)
	}

	// Switching moves the contribution across.
	out = Apply(out, VoteCast{ID: 1, Value: 1})
	out = Apply(out, VoteCast{ID: 1, Value: -1})
	c = find(t, out, 1)
	if c.UpVotes != 3 || c.DownVotes != 2 || c.MyVote != -1 {
		t.Errorf("Expected 3/2 with my vote -1, got %d/%d/%d", c.UpVotes, c.DownVotes, c.MyVote)
	}

	// Zero retracts.
	out = Apply(out, VoteCast{ID: 1, Value: 0})
	c = find(t, out, 1)
	if c.DownVotes != 1 || c.MyVote != 0 {
		t.Errorf("Expected retraction, got down %d my vote %d", c.DownVotes, c.MyVote)
	}
}

func TestApplyReportsCleared(t *testing.T) {
	out := Apply(baseSnapshot(), ReportsCleared{ID: 2})
	if find(t, out, 2).ReportCount != 0 {
		t.Errorf("Expected report count cleared")
	}
}

func TestApplyUnknownTargetIsNoop(t *testing.T) {
	snap := baseSnapshot()
	out := Apply(snap, SoftDeleted{ID: 99})
	if len(out.Comments) != len(snap.Comments) {
		t.Errorf("Unknown target must leave the snapshot unchanged")
	}
	for i := range out.Comments {
		if out.Comments[i] != snap.Comments[i] {
			t.Errorf("Comment %d changed on unrelated event", out.Comments[i].ID)
		}
	}
}

func TestReconcileSuccessKeepsOptimisticState(t *testing.T) {
	optimistic := Apply(baseSnapshot(), TextEdited{ID: 1, Body: "edited"})

	refetched := false
	out, notice := Reconcile(optimistic, nil, func() (Snapshot, error) {
		refetched = true
		return Snapshot{}, nil
	})
	if refetched {
		t.Errorf("Success must not refetch")
	}
	if notice.Kind != "success" {
		t.Errorf("Expected success notice, got %q", notice.Kind)
	}
	if find(t, out, 1).Body != "edited" {
		t.Errorf("Expected optimistic state kept")
	}
}

func TestReconcileFailureUsesRefetchedState(t *testing.T) {
	optimistic := Apply(baseSnapshot(), SoftDeleted{ID: 1})
	authoritative := baseSnapshot()

	calls := 0
	out, notice := Reconcile(optimistic, errors.New("forbidden"), func() (Snapshot, error) {
		calls++
		return authoritative, nil
	})
	if calls != 1 {
		t.Errorf("Expected exactly one refetch, got %d", calls)
	}
	if notice.Kind != "error" || notice.Message != "forbidden" {
		t.Errorf("Expected error notice carrying the failure, got %+v", notice)
	}
	if find(t, out, 1).IsDeleted {
		t.Errorf("Expected authoritative state to replace the optimistic one")
	}
}

func TestReconcileFailedRefetchKeepsLocalState(t *testing.T) {
	optimistic := Apply(baseSnapshot(), SoftDeleted{ID: 1})

	out, notice := Reconcile(optimistic, errors.New("forbidden"), func() (Snapshot, error) {
		return Snapshot{}, errors.New("network down")
	})
	if notice.Kind != "error" {
		t.Errorf("Expected error notice, got %q", notice.Kind)
	}
	if !find(t, out, 1).IsDeleted {
		t.Errorf("Expected local state kept when the refetch also fails")
	}
}
