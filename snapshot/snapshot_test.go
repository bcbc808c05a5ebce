package snapshot

import (
	"errors"
	"testing"

	undo "github.com/dshills/undo"
)

type add struct{ ch rune }

func (a *add) Apply(target *string) error {
	*target += string(a.ch)
	return nil
}

func (a *add) Undo(target *string) error {
	r := []rune(*target)
	if len(r) == 0 {
		return errors.New("target is empty")
	}
	a.ch = r[len(r)-1]
	*target = string(r[:len(r)-1])
	return nil
}

func TestRecordSnapshotFields(t *testing.T) {
	r := undo.NewRecord("", undo.WithLimit[string](5))
	for _, ch := range "abc" {
		r.Apply(&add{ch: ch})
	}
	r.SetSaved(true)
	r.Undo()

	doc, err := Record(r)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}

	if got := Cursor(doc); got != 2 {
		t.Fatalf("Cursor = %d, want 2", got)
	}
	if got := EntryCount(doc); got != 3 {
		t.Fatalf("EntryCount = %d, want 3", got)
	}
	if limit, ok := Limit(doc); !ok || limit != 5 {
		t.Fatalf("Limit = %d, %v, want 5, true", limit, ok)
	}
	// SetSaved(true) parked the marker at entry 3; undoing past it moves
	// the cursor but does not discard anything, so the marker itself is
	// untouched - it just no longer coincides with the cursor.
	if saved, ok := Saved(doc); !ok || saved != 3 {
		t.Fatalf("Saved = %d, %v, want 3, true", saved, ok)
	}
	if r.IsSaved() {
		t.Fatalf("IsSaved should be false once the cursor has moved off the saved entry")
	}
	if got := string(TargetRaw(doc)); got != `"ab"` {
		t.Fatalf("TargetRaw = %s, want \"ab\"", got)
	}
}

func TestRecordSnapshotUnboundedAndUnsaved(t *testing.T) {
	r := undo.NewRecord("", undo.WithSaved[string](false))
	r.Apply(&add{ch: 'x'})

	doc, err := Record(r)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if _, ok := Limit(doc); ok {
		t.Fatalf("expected limit to be null for an unbounded Record")
	}
	if _, ok := Saved(doc); ok {
		t.Fatalf("expected saved to be null for a Record created unsaved")
	}
}

func TestSetCursorPatchesInPlace(t *testing.T) {
	r := undo.NewRecord("")
	r.Apply(&add{ch: 'a'})
	r.Apply(&add{ch: 'b'})

	doc, err := Record(r)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	patched, err := SetCursor(doc, 1)
	if err != nil {
		t.Fatalf("SetCursor: %v", err)
	}
	if got := Cursor(patched); got != 1 {
		t.Fatalf("Cursor after patch = %d, want 1", got)
	}
	if got := Cursor(doc); got != 2 {
		t.Fatalf("original doc mutated, Cursor = %d, want 2", got)
	}
}

func TestHistorySnapshotBranches(t *testing.T) {
	h := undo.NewHistory("")
	h.Apply(&add{ch: 'a'})
	h.Apply(&add{ch: 'b'})
	h.Apply(&add{ch: 'c'})

	root := h.Root()
	h.GoTo(root, 1)
	forkedFrom, _, err := h.Apply(&add{ch: 'x'})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	doc, err := History(h)
	if err != nil {
		t.Fatalf("History: %v", err)
	}

	if got := Root(doc); got != h.Root() {
		t.Fatalf("Root = %d, want %d", got, h.Root())
	}
	ids := BranchIDs(doc)
	if len(ids) != 1 || ids[0] != forkedFrom {
		t.Fatalf("BranchIDs = %v, want [%d]", ids, forkedFrom)
	}

	nested := RecordRaw(doc)
	if got := Cursor(nested); got != h.Cursor() {
		t.Fatalf("nested Cursor = %d, want %d", got, h.Cursor())
	}
	if got := string(TargetRaw(nested)); got != `"ax"` {
		t.Fatalf("nested TargetRaw = %s, want \"ax\"", got)
	}
}
