package engine

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestSnapshotRestoreMidSession(t *testing.T) {
	e, _ := New(choiceItems(3))
	e.Submit("q0", "a")
	e.Advance()
	e.Submit("q1", "b")

	raw, err := json.Marshal(e.Snapshot())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	r, err := Restore(st)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if r.Phase() != Answered || r.Index() != 1 || r.Score() != 1 {
		t.Fatalf("restored phase=%v index=%d score=%d", r.Phase(), r.Index(), r.Score())
	}
	if _, err := r.Submit("q1", "a"); !errors.Is(err, ErrIgnoredDuplicateSubmission) {
		t.Fatalf("restored engine accepted duplicate: %v", err)
	}
	r.Advance()
	r.Submit("q2", "a")
	r.Advance()
	s, _ := r.Summary()
	if s.Score != 2 || s.Total != 3 {
		t.Fatalf("summary = %d/%d", s.Score, s.Total)
	}
}

func TestSnapshotIsIndependent(t *testing.T) {
	e, _ := New(choiceItems(2))
	st := e.Snapshot()
	st.Items[0].Options[0].IsCorrect = false
	if res, _ := e.Submit("q0", "a"); !res.Correct {
		t.Fatal("snapshot shares memory with engine")
	}
}

func TestRestoreRejectsInconsistentState(t *testing.T) {
	e, _ := New(choiceItems(2))
	e.Submit("q0", "a")
	good := e.Snapshot()

	badScore := e.Snapshot()
	badScore.Score = 2

	missing := e.Snapshot()
	missing.Responses = nil

	wrongItem := e.Snapshot()
	wrongItem.Responses[0].ItemID = "q1"

	outOfRange := e.Snapshot()
	outOfRange.CurrentIndex = 5

	for name, st := range map[string]State{
		"score":        badScore,
		"missing":      missing,
		"wrong item":   wrongItem,
		"out of range": outOfRange,
	} {
		if _, err := Restore(st); !errors.Is(err, ErrInvalidState) {
			t.Fatalf("%s: err = %v, want invalid state", name, err)
		}
	}
	if _, err := Restore(good); err != nil {
		t.Fatalf("good state: %v", err)
	}
	if _, err := Restore(State{}); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("empty state err = %v", err)
	}
}
