// Package reconcile is the client-orchestration contract for
// moderation actions: apply the expected outcome to a local snapshot
// immediately, issue the mutation, and on failure discard the
// optimistic state in favor of an authoritative refetch. It is a pure
// reducer so the whole apply/rollback cycle is testable without a
// server.
package reconcile

import (
	"time"
)

// CommentView is the slice of comment state the reducer operates on.
type CommentView struct {
	ID          uint
	Body        string
	Status      string
	IsDeleted   bool
	ArchivedAt  *time.Time
	ReportCount int
	UpVotes     int
	DownVotes   int
	MyVote      int // -1, 0 or 1
}

// Snapshot is an immutable view of a comment list. Apply never mutates
// the receiver; it returns a fresh copy.
type Snapshot struct {
	Comments []CommentView
}

// Event is one optimistic mutation. Concrete types below.
type Event interface {
	apply(c *CommentView) (keep bool)
	target() uint
}

type StatusChanged struct {
	ID         uint
	Status     string
	ArchivedAt *time.Time
}

type TextEdited struct {
	ID   uint
	Body string
}

type SoftDeleted struct{ ID uint }

type Restored struct{ ID uint }

type HardDeleted struct{ ID uint }

// VoteCast mirrors the server toggle semantics: casting the value the
// user already holds retracts it, 0 retracts unconditionally.
type VoteCast struct {
	ID    uint
	Value int
}

// ReportsCleared models a moderator dismissing reports on a comment.
type ReportsCleared struct{ ID uint }

func (e StatusChanged) target() uint  { return e.ID }
func (e TextEdited) target() uint     { return e.ID }
func (e SoftDeleted) target() uint    { return e.ID }
func (e Restored) target() uint       { return e.ID }
func (e HardDeleted) target() uint    { return e.ID }
func (e VoteCast) target() uint       { return e.ID }
func (e ReportsCleared) target() uint { return e.ID }

func (e StatusChanged) apply(c *CommentView) bool {
	c.Status = e.Status
	if e.Status == "archived" {
		ts := time.Now()
		if e.ArchivedAt != nil {
			ts = *e.ArchivedAt
		}
		c.ArchivedAt = &ts
	} else {
		c.ArchivedAt = nil
	}
	return true
}

func (e TextEdited) apply(c *CommentView) bool {
	c.Body = e.Body
	return true
}

func (e SoftDeleted) apply(c *CommentView) bool {
	c.IsDeleted = true
	return true
}

func (e Restored) apply(c *CommentView) bool {
	c.IsDeleted = false
	return true
}

func (e HardDeleted) apply(c *CommentView) bool {
	return false
}

func (e VoteCast) apply(c *CommentView) bool {
	// Undo the current vote's contribution first.
	switch c.MyVote {
	case 1:
		c.UpVotes--
	case -1:
		c.DownVotes--
	}

	if e.Value == 0 || e.Value == c.MyVote {
		c.MyVote = 0
		return true
	}

	c.MyVote = e.Value
	switch e.Value {
	case 1:
		c.UpVotes++
	case -1:
		c.DownVotes++
	}
	return true
}

func (e ReportsCleared) apply(c *CommentView) bool {
	c.ReportCount = 0
	return true
}

// Apply produces the optimistic snapshot for an event. Unknown targets
// leave the snapshot unchanged.
func Apply(snap Snapshot, ev Event) Snapshot {
	out := Snapshot{Comments: make([]CommentView, 0, len(snap.Comments))}
	for _, c := range snap.Comments {
		if c.ID != ev.target() {
			out.Comments = append(out.Comments, c)
			continue
		}
		cp := c
		if ev.apply(&cp) {
			out.Comments = append(out.Comments, cp)
		}
	}
	return out
}

// Notice is what the presentation layer shows transiently after a
// mutation settles.
type Notice struct {
	Message string
	Kind    string // "success" or "error"
}

// Reconcile settles an optimistic snapshot against the mutation
// outcome. On success the optimistic state is already correct. On
// failure the refetch is mandatory: without it the local state could
// permanently diverge from the server. A single refetch, no retries.
func Reconcile(optimistic Snapshot, mutationErr error, refetch func() (Snapshot, error)) (Snapshot, Notice) {
	if mutationErr == nil {
		return optimistic, Notice{Message: "saved", Kind: "success"}
	}

	notice := Notice{Message: mutationErr.Error(), Kind: "error"}
	authoritative, err := refetch()
	if err != nil {
		// Refetch failed too; keep the pre-refetch state and report
		// the original failure. The next successful fetch reconciles.
		return optimistic, notice
	}
	return authoritative, notice
}
