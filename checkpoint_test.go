package undo

import (
	"errors"
	"testing"
)

// poisonUndo applies cleanly but always fails to undo, counting how many
// times Undo was actually invoked so a test can tell whether a caller kept
// retrying past the failure instead of giving up on the first one.
type poisonUndo struct{ calls int }

func (p *poisonUndo) Apply(target *string) error {
	*target += "P"
	return nil
}

func (p *poisonUndo) Undo(target *string) error {
	p.calls++
	return errors.New("boom")
}

func TestRecordCheckpointCommit(t *testing.T) {
	r := NewRecord("")
	cp1 := r.Checkpoint()
	cp1.Apply(&add{ch: 'a'})
	cp1.Apply(&add{ch: 'b'})
	cp1.Apply(&add{ch: 'c'})
	cp2 := cp1.Checkpoint()
	cp2.Apply(&add{ch: 'd'})
	cp2.Apply(&add{ch: 'e'})
	cp2.Apply(&add{ch: 'f'})
	cp3 := cp2.Checkpoint()
	cp3.Apply(&add{ch: 'g'})
	cp3.Apply(&add{ch: 'h'})
	cp3.Apply(&add{ch: 'i'})
	if got := *r.Target(); got != "abcdefghi" {
		t.Fatalf("target = %q, want abcdefghi", got)
	}
	cp3.Commit()
	cp2.Commit()
	cp1.Commit()
	if got := *r.Target(); got != "abcdefghi" {
		t.Fatalf("target after commit = %q, want abcdefghi", got)
	}
}

func TestRecordCheckpointCancel(t *testing.T) {
	r := NewRecord("")
	cp1 := r.Checkpoint()
	cp1.Apply(&add{ch: 'a'})
	cp1.Apply(&add{ch: 'b'})
	cp1.Apply(&add{ch: 'c'})
	cp2 := cp1.Checkpoint()
	cp2.Apply(&add{ch: 'd'})
	cp2.Apply(&add{ch: 'e'})
	cp2.Apply(&add{ch: 'f'})
	cp3 := cp2.Checkpoint()
	cp3.Apply(&add{ch: 'g'})
	cp3.Apply(&add{ch: 'h'})
	cp3.Apply(&add{ch: 'i'})
	if got := *r.Target(); got != "abcdefghi" {
		t.Fatalf("target = %q, want abcdefghi", got)
	}

	if err := cp3.Cancel(); err != nil {
		t.Fatalf("cp3 cancel: %v", err)
	}
	if got := *r.Target(); got != "abcdef" {
		t.Fatalf("target after cp3 cancel = %q, want abcdef", got)
	}
	if err := cp2.Cancel(); err != nil {
		t.Fatalf("cp2 cancel: %v", err)
	}
	if got := *r.Target(); got != "abc" {
		t.Fatalf("target after cp2 cancel = %q, want abc", got)
	}
	if err := cp1.Cancel(); err != nil {
		t.Fatalf("cp1 cancel: %v", err)
	}
	if got := *r.Target(); got != "" {
		t.Fatalf("target after cp1 cancel = %q, want empty", got)
	}
}

func TestRecordCheckpointCancelRestoresDiscardedTail(t *testing.T) {
	r := NewRecord("")
	for _, ch := range "abcde" {
		r.Apply(&add{ch: ch})
	}
	r.GoTo(2)

	cp := r.Checkpoint()
	cp.Apply(&add{ch: 'x'})
	if got := *r.Target(); got != "abx" {
		t.Fatalf("target = %q, want abx", got)
	}
	if err := cp.Cancel(); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got := *r.Target(); got != "ab" {
		t.Fatalf("target after cancel = %q, want ab", got)
	}
	if ok, err := r.Redo(); !ok || err != nil {
		t.Fatalf("expected the original tail to be redoable again: %v %v", ok, err)
	}
	if got := *r.Target(); got != "abc" {
		t.Fatalf("target after redo = %q, want abc (original tail restored)", got)
	}
}

func TestRecordCheckpointCancelContinuesPastError(t *testing.T) {
	r := NewRecord("")
	cp := r.Checkpoint()
	cp.Apply(&add{ch: 'a'})
	poison := &poisonUndo{}
	cp.Apply(poison)
	cp.Apply(&add{ch: 'b'})
	if got := *r.Target(); got != "aPb" {
		t.Fatalf("target = %q, want aPb", got)
	}

	err := cp.Cancel()
	if err == nil {
		t.Fatalf("expected Cancel to return poison's error")
	}

	// 'b' rolls back cleanly before the poisoned entry is reached; the
	// cursor is then stuck on the poisoned entry (Record.Undo can't step
	// past a failing command), so the second attempt to reach under it
	// retries the same entry rather than silently giving up on it.
	if poison.calls != 2 {
		t.Fatalf("poison.Undo called %d times, want 2 (retried after the first failure)", poison.calls)
	}
	if got := *r.Target(); got != "aP" {
		t.Fatalf("target after cancel = %q, want aP ('b' rolled back, poison did not)", got)
	}

	// Cancel must clear the stack even though it returned an error, so a
	// second call never replays already-attempted steps.
	if !cp.IsEmpty() {
		t.Fatalf("expected the checkpoint stack to be cleared after Cancel")
	}
}

func TestHistoryCheckpointCancel(t *testing.T) {
	h := NewHistory("")
	cp := h.Checkpoint()
	cp.Apply(&add{ch: 'a'})
	cp.Apply(&add{ch: 'b'})
	cp.Apply(&add{ch: 'c'})
	if got := *h.Target(); got != "abc" {
		t.Fatalf("target = %q, want abc", got)
	}
	if err := cp.Cancel(); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got := *h.Target(); got != "" {
		t.Fatalf("target after cancel = %q, want empty", got)
	}
}

func TestHistoryCheckpointCancelContinuesPastError(t *testing.T) {
	h := NewHistory("")
	cp := h.Checkpoint()
	cp.Apply(&add{ch: 'a'})
	poison := &poisonUndo{}
	cp.Apply(poison)
	cp.Apply(&add{ch: 'b'})
	if got := *h.Target(); got != "aPb" {
		t.Fatalf("target = %q, want aPb", got)
	}

	err := cp.Cancel()
	if err == nil {
		t.Fatalf("expected Cancel to return poison's error")
	}
	if poison.calls < 2 {
		t.Fatalf("poison.Undo called %d times, want at least 2 (retried after the first failure)", poison.calls)
	}
	if got := *h.Target(); got != "aP" {
		t.Fatalf("target after cancel = %q, want aP ('b' rolled back, poison did not)", got)
	}
	if !cp.IsEmpty() {
		t.Fatalf("expected the checkpoint stack to be cleared after Cancel")
	}
}
