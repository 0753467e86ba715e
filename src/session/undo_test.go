package session

import (
	"fmt"
	"testing"
)

func sessionWithTrace(t *testing.T) *Session {
	t.Helper()
	s := NewSession(nil)
	pg := s.CurrentPage()
	_, err := pg.AddTrace([]float64{0, 1, 2}, []float64{1, 2, 3}, "V", "u", "a.csv", "V", "index", "Index (Time)", 0, nil)
	if err != nil {
		t.Fatalf("add trace: %v", err)
	}
	return s
}

func TestUndo_RestoresPriorState(t *testing.T) {
	s := sessionWithTrace(t)

	s.History.Push("Rename Page to After")
	s.CurrentPage().Title = "After"

	s.History.Undo()
	if got := s.CurrentPage().Title; got == "After" {
		t.Fatalf("undo did not restore the page title, still %q", got)
	}
	if !s.History.CanRedo() {
		t.Fatalf("undo must arm redo")
	}

	s.History.Redo()
	if got := s.CurrentPage().Title; got != "After" {
		t.Fatalf("redo got title %q want %q", got, "After")
	}
}

func TestUndo_EmptyStackIsNoop(t *testing.T) {
	s := NewSession(nil)
	s.History.Undo()
	s.History.Redo()
	if len(s.Pages) != 1 {
		t.Fatalf("no-op undo/redo must leave the session untouched")
	}
}

func TestUndo_PushClearsRedo(t *testing.T) {
	s := sessionWithTrace(t)
	s.History.Push("Step 1")
	s.CurrentPage().Title = "one"
	s.History.Undo()
	if !s.History.CanRedo() {
		t.Fatalf("expected redo after undo")
	}
	s.History.Push("Step 2")
	if s.History.CanRedo() {
		t.Fatalf("a new push must clear the redo stack")
	}
}

func TestUndo_BoundedAtLimit(t *testing.T) {
	s := NewSession(nil)
	for i := 0; i < HistoryLimit+10; i++ {
		s.History.Push(fmt.Sprintf("Step %d", i))
	}
	entries := s.History.Entries()
	if len(entries) != HistoryLimit {
		t.Fatalf("history holds %d entries, want %d", len(entries), HistoryLimit)
	}
	// Oldest entries are evicted first.
	if entries[0].Desc != "Step 10" {
		t.Fatalf("oldest surviving entry is %q, want %q", entries[0].Desc, "Step 10")
	}
}

func TestUndo_SnapshotIsolation(t *testing.T) {
	s := sessionWithTrace(t)
	pg := s.CurrentPage()
	var id string
	for k := range pg.Traces {
		id = k
	}

	s.History.Push("Edit Trace")
	pg.Traces[id].RawY[0] = 999

	s.History.Undo()
	if got := s.CurrentPage().Traces[id].RawY[0]; got != 1 {
		t.Fatalf("snapshot aliased live data: raw_y[0] = %v want 1", got)
	}

	// Mutating after the restore must not leak into the retained redo entry.
	s.CurrentPage().Traces[id].RawY[0] = -5
	s.History.Redo()
	if got := s.CurrentPage().Traces[id].RawY[0]; got != 999 {
		t.Fatalf("redo entry polluted: raw_y[0] = %v want 999", got)
	}
}

func TestUndo_JumpDoesNotTouchStacks(t *testing.T) {
	s := NewSession(nil)
	s.History.Push("A")
	s.CurrentPage().Title = "a"
	s.History.Push("B")
	s.CurrentPage().Title = "b"

	before := len(s.History.Entries())
	s.History.Jump(0)
	if len(s.History.Entries()) != before {
		t.Fatalf("jump must not grow or shrink the undo stack")
	}
	if s.History.CanRedo() {
		t.Fatalf("jump must not arm redo")
	}
	if got := s.CurrentPage().Title; got != "Page 1" {
		t.Fatalf("jump(0) restored title %q want %q", got, "Page 1")
	}
}

func TestUndo_RestoredPagesStayWired(t *testing.T) {
	s := NewSession(nil)
	s.History.Push("Link")
	pg := s.CurrentPage()
	id := pg.CreateXLinkGroup([]int{0}, "")
	if id == "" {
		t.Fatalf("expected a generated link id")
	}
	s.History.Undo()
	s.History.Redo()

	// The restored page must still reach the session broadcast without
	// panicking and with its link groups intact.
	pg = s.CurrentPage()
	if got := pg.Links.Members(id); len(got) != 1 || got[0] != 0 {
		t.Fatalf("link group lost across restore: %v", got)
	}
	pg.SetXRange(0, 1, 2)
}
