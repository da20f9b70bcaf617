package engine

import (
	"errors"
	"fmt"
	"testing"
)

func choiceItems(n int) []Item {
	items := make([]Item, n)
	for i := range items {
		items[i] = Item{
			ID:     fmt.Sprintf("q%d", i),
			Kind:   KindChoice,
			Prompt: fmt.Sprintf("question %d", i),
			Options: []Option{
				{ID: "a", Label: "right", IsCorrect: true},
				{ID: "b", Label: "wrong"},
				{ID: "c", Label: "also wrong"},
			},
		}
	}
	return items
}

// play answers every item, choosing "a" where correct[i] is true and "b" otherwise
func play(t *testing.T, e *Engine, correct []bool) Summary {
	t.Helper()
	for i, ok := range correct {
		cur, has := e.Current()
		if !has {
			t.Fatalf("item %d: no current item", i)
		}
		opt := "b"
		if ok {
			opt = "a"
		}
		if _, err := e.Submit(cur.ID, opt); err != nil {
			t.Fatalf("submit %s: %v", cur.ID, err)
		}
		if _, err := e.Advance(); err != nil {
			t.Fatalf("advance after %s: %v", cur.ID, err)
		}
	}
	s, err := e.Summary()
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	return s
}

func TestAllCorrectSession(t *testing.T) {
	e, err := New(choiceItems(5))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	s := play(t, e, []bool{true, true, true, true, true})
	if s.Score != 5 || s.Total != 5 {
		t.Fatalf("summary = %d/%d, want 5/5", s.Score, s.Total)
	}
	if e.Phase() != Complete {
		t.Fatalf("phase = %v, want complete", e.Phase())
	}
}

func TestInterleavedSession(t *testing.T) {
	e, _ := New(choiceItems(5))
	s := play(t, e, []bool{false, true, false, true, false})
	if s.Score != 2 {
		t.Fatalf("score = %d, want 2", s.Score)
	}
	for i, r := range s.Responses {
		want := i == 1 || i == 3
		if r.Correct != want {
			t.Fatalf("response %d correct = %v, want %v", i, r.Correct, want)
		}
		if r.ItemID != fmt.Sprintf("q%d", i) {
			t.Fatalf("response %d item = %q, responses out of play order", i, r.ItemID)
		}
	}
}

func TestScoreIsMonotonic(t *testing.T) {
	e, _ := New(choiceItems(6))
	pattern := []bool{true, false, false, true, true, false}
	prev := 0
	for _, ok := range pattern {
		cur, _ := e.Current()
		opt := "b"
		if ok {
			opt = "a"
		}
		res, err := e.Submit(cur.ID, opt)
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		want := prev
		if ok {
			want++
		}
		if res.Score != want || res.Correct != ok {
			t.Fatalf("after %s: score=%d correct=%v, want %d %v", cur.ID, res.Score, res.Correct, want, ok)
		}
		prev = res.Score
		e.Advance()
	}
}

func TestDuplicateSubmitIsIgnored(t *testing.T) {
	e, _ := New(choiceItems(2))

	res, err := e.Submit("q0", "a")
	if err != nil || !res.Correct {
		t.Fatalf("first submit = %+v, %v", res, err)
	}
	res, err = e.Submit("q0", "b")
	if !errors.Is(err, ErrIgnoredDuplicateSubmission) {
		t.Fatalf("second submit err = %v, want ignored", err)
	}
	if res.Score != 1 {
		t.Fatalf("score after ignored submit = %d, want 1", res.Score)
	}

	e.Advance()
	e.Advance() // rechazado: q1 sin responder
	e.Submit("q1", "b")
	e.Advance()

	s, _ := e.Summary()
	if len(s.Responses) != 2 {
		t.Fatalf("responses = %d, want 2", len(s.Responses))
	}
	if s.Responses[0].OptionID != "a" || !s.Responses[0].Correct {
		t.Fatalf("q0 response = %+v, want option a correct", s.Responses[0])
	}
}

func TestStaleItemSubmitIsIgnored(t *testing.T) {
	e, _ := New(choiceItems(3))
	e.Submit("q0", "a")
	e.Advance()

	if _, err := e.Submit("q0", "a"); !errors.Is(err, ErrIgnoredDuplicateSubmission) {
		t.Fatalf("stale submit err = %v, want ignored", err)
	}
	if e.Score() != 1 || e.Index() != 1 {
		t.Fatalf("state changed: score=%d index=%d", e.Score(), e.Index())
	}
}

func TestSubmitUnknownOption(t *testing.T) {
	e, _ := New(choiceItems(1))
	if _, err := e.Submit("q0", "zzz"); !errors.Is(err, ErrUnknownOption) {
		t.Fatalf("err = %v, want unknown option", err)
	}
	if e.Phase() != Presenting {
		t.Fatalf("phase = %v, want presenting", e.Phase())
	}
}

func TestStartRejectsInvalidItems(t *testing.T) {
	oneOption := choiceItems(1)
	oneOption[0].Options = oneOption[0].Options[:1]

	twoCorrect := choiceItems(1)
	twoCorrect[0].Options[1].IsCorrect = true

	dupItems := choiceItems(2)
	dupItems[1].ID = dupItems[0].ID

	dupOptions := choiceItems(1)
	dupOptions[0].Options[2].ID = "a"

	cases := map[string][]Item{
		"empty":            nil,
		"one option":       oneOption,
		"two correct":      twoCorrect,
		"duplicate items":  dupItems,
		"duplicate option": dupOptions,
		"unknown kind":     {{ID: "x", Kind: "poll", Options: []Option{{ID: "a"}, {ID: "b"}}}},
		"classification without accept": {{
			ID: "m", Kind: KindClassification,
			Options: []Option{{ID: "i", Ignore: true}, {ID: "j", Ignore: true}},
		}},
		"reflection with options": {{
			ID: "r", Kind: KindReflection,
			Options: []Option{{ID: "a"}, {ID: "b"}},
		}},
	}
	for name, items := range cases {
		t.Run(name, func(t *testing.T) {
			var e Engine
			if _, err := e.Start(items); !errors.Is(err, ErrInvalidConfiguration) {
				t.Fatalf("err = %v, want invalid configuration", err)
			}
			if e.Phase() != NotStarted {
				t.Fatalf("phase = %v, want not started", e.Phase())
			}
		})
	}
}

func TestAdvanceBeforeAnswer(t *testing.T) {
	e, _ := New(choiceItems(2))
	if _, err := e.Advance(); !errors.Is(err, ErrOutOfSequenceAdvance) {
		t.Fatalf("err = %v, want out of sequence", err)
	}
	if e.Index() != 0 {
		t.Fatalf("index = %d, want 0", e.Index())
	}

	var zero Engine
	if _, err := zero.Advance(); !errors.Is(err, ErrNotStarted) {
		t.Fatalf("zero engine advance err = %v", err)
	}
}

func TestAdvanceReturnsNextItemThenSummary(t *testing.T) {
	e, _ := New(choiceItems(2))
	e.Submit("q0", "a")
	step, err := e.Advance()
	if err != nil || step.Done() || step.Item == nil || step.Item.ID != "q1" {
		t.Fatalf("first advance = %+v, %v", step, err)
	}
	e.Submit("q1", "a")
	step, err = e.Advance()
	if err != nil || !step.Done() || step.Summary.Score != 2 {
		t.Fatalf("last advance = %+v, %v", step, err)
	}
}

func TestCompleteIsStable(t *testing.T) {
	e, _ := New(choiceItems(3))
	play(t, e, []bool{true, false, true})

	for i := 0; i < 3; i++ {
		step, err := e.Advance()
		if err != nil {
			t.Fatalf("advance on complete: %v", err)
		}
		if !step.Done() || step.Summary.Score != 2 {
			t.Fatalf("advance on complete = %+v", step)
		}
	}
	if e.Index() != 3 || e.Score() != 2 {
		t.Fatalf("index=%d score=%d after extra advances", e.Index(), e.Score())
	}
	if _, err := e.Submit("q2", "a"); !errors.Is(err, ErrIgnoredDuplicateSubmission) {
		t.Fatalf("submit on complete err = %v", err)
	}
}

func TestSummaryBeforeComplete(t *testing.T) {
	e, _ := New(choiceItems(2))
	if _, err := e.Summary(); !errors.Is(err, ErrSessionIncomplete) {
		t.Fatalf("err = %v, want incomplete", err)
	}
}

func TestSummaryScoreMatchesResponses(t *testing.T) {
	patterns := [][]bool{
		{false, false, false},
		{true, false, true, false},
		{true},
		{false, true, true, true, false, true},
	}
	for _, p := range patterns {
		e, _ := New(choiceItems(len(p)))
		s := play(t, e, p)
		count := 0
		for _, r := range s.Responses {
			if r.Correct {
				count++
			}
		}
		if s.Score != count || s.Total != len(p) {
			t.Fatalf("pattern %v: summary %d/%d, counted %d", p, s.Score, s.Total, count)
		}
	}
}

func TestResetReplaysIdentically(t *testing.T) {
	e, _ := New(choiceItems(4))
	pattern := []bool{true, false, false, true}
	first := play(t, e, pattern)

	item, err := e.Reset()
	if err != nil || item.ID != "q0" {
		t.Fatalf("reset = %+v, %v", item, err)
	}
	if e.Score() != 0 || e.Phase() != Presenting {
		t.Fatalf("after reset score=%d phase=%v", e.Score(), e.Phase())
	}
	second := play(t, e, pattern)
	if fmt.Sprint(first) != fmt.Sprint(second) {
		t.Fatalf("replay differs:\n%v\n%v", first, second)
	}
}

func TestResetAfterCompletionIsIndependent(t *testing.T) {
	e, _ := New(choiceItems(3))
	if s := play(t, e, []bool{false, true, false}); s.Score != 1 {
		t.Fatalf("first run score = %d", s.Score)
	}
	e.Reset()
	if s := play(t, e, []bool{true, true, true}); s.Score != 3 || len(s.Responses) != 3 {
		t.Fatalf("second run = %+v", s)
	}
}

func TestStartCopiesItems(t *testing.T) {
	items := choiceItems(1)
	e, _ := New(items)
	items[0].Options[0].IsCorrect = false
	items[0].Options[1].IsCorrect = true

	res, _ := e.Submit("q0", "a")
	if !res.Correct {
		t.Fatal("engine observed caller mutation of items")
	}
}

func TestClassificationItems(t *testing.T) {
	items := []Item{
		{ID: "scam", Kind: KindClassification, ShouldIgnore: true,
			Options: []Option{{ID: "ignore", Ignore: true}, {ID: "safe"}}},
		{ID: "friend", Kind: KindClassification, ShouldIgnore: false,
			Options: []Option{{ID: "ignore", Ignore: true}, {ID: "safe"}}},
	}
	e, err := New(items)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if res, _ := e.Submit("scam", "ignore"); !res.Correct {
		t.Fatal("ignoring a scam should be correct")
	}
	e.Advance()
	if res, _ := e.Submit("friend", "ignore"); res.Correct {
		t.Fatal("ignoring a safe message should be incorrect")
	}
	e.Advance()
	s, _ := e.Summary()
	if s.Score != 1 || s.Total != 2 {
		t.Fatalf("summary = %d/%d", s.Score, s.Total)
	}
}

func TestReflectionItems(t *testing.T) {
	items := []Item{
		{ID: "q", Kind: KindChoice, Options: []Option{{ID: "a", IsCorrect: true}, {ID: "b"}}},
		{ID: "journal", Kind: KindReflection, MinLength: 10},
	}
	e, _ := New(items)
	e.Submit("q", "b")
	e.Advance()

	if _, err := e.Submit("journal", "a"); !errors.Is(err, ErrWrongItemKind) {
		t.Fatalf("option submit on reflection err = %v", err)
	}
	if _, err := e.SubmitText("journal", "   too short  "); !errors.Is(err, ErrReflectionTooShort) {
		t.Fatalf("short text err = %v", err)
	}
	if e.Phase() != Presenting {
		t.Fatalf("phase after short text = %v", e.Phase())
	}

	res, err := e.SubmitText("journal", "I will check who sent it before clicking")
	if err != nil || !res.Correct || res.Score != 1 {
		t.Fatalf("reflection = %+v, %v", res, err)
	}
	e.Advance()
	s, _ := e.Summary()
	if s.Responses[1].Text == "" {
		t.Fatal("reflection text not recorded")
	}
}

func TestReflectionLengthCountsRunes(t *testing.T) {
	e, _ := New([]Item{{ID: "j", Kind: KindReflection, MinLength: 6}})
	// 5 runas, 7 bytes
	if _, err := e.SubmitText("j", "ñandú"); !errors.Is(err, ErrReflectionTooShort) {
		t.Fatalf("err = %v, want too short", err)
	}
	if _, err := e.SubmitText("j", "ñandúes"); err != nil {
		t.Fatalf("7 runes: %v", err)
	}
}

func TestSubmitTextOnChoiceItem(t *testing.T) {
	e, _ := New(choiceItems(1))
	if _, err := e.SubmitText("q0", "hello there"); !errors.Is(err, ErrWrongItemKind) {
		t.Fatalf("err = %v, want wrong kind", err)
	}
}
