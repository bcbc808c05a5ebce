package undo

import "testing"

func TestRecordQueueCommit(t *testing.T) {
	r := NewRecord("")
	q := r.Queue()
	q.Apply(&add{ch: 'a'})
	q.Apply(&add{ch: 'b'})
	q.Apply(&add{ch: 'c'})
	if got := *r.Target(); got != "" {
		t.Fatalf("target before commit = %q, want empty", got)
	}
	if err := q.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if got := *r.Target(); got != "abc" {
		t.Fatalf("target after commit = %q, want abc", got)
	}
}

func TestRecordQueueCancel(t *testing.T) {
	r := NewRecord("")
	r.Apply(&add{ch: 'a'})
	q := r.Queue()
	q.Apply(&add{ch: 'b'})
	q.Undo()
	q.Cancel()
	if got := *r.Target(); got != "a" {
		t.Fatalf("target after cancel = %q, want a (unchanged)", got)
	}
}

func TestRecordQueueNested(t *testing.T) {
	r := NewRecord("")
	outer := r.Queue()
	outer.Redo()
	outer.Redo()
	outer.Redo()
	inner := outer.Queue()
	inner.Undo()
	inner.Undo()
	inner.Undo()
	innermost := inner.Queue()
	innermost.Apply(&add{ch: 'a'})
	innermost.Apply(&add{ch: 'b'})
	innermost.Apply(&add{ch: 'c'})
	if err := innermost.Commit(); err != nil {
		t.Fatalf("innermost commit: %v", err)
	}
	if got := *r.Target(); got != "abc" {
		t.Fatalf("target = %q, want abc", got)
	}
	if err := inner.Commit(); err != nil {
		t.Fatalf("inner commit: %v", err)
	}
	if got := *r.Target(); got != "" {
		t.Fatalf("target after undo x3 = %q, want empty", got)
	}
	if err := outer.Commit(); err != nil {
		t.Fatalf("outer commit: %v", err)
	}
	if got := *r.Target(); got != "abc" {
		t.Fatalf("target after redo x3 = %q, want abc", got)
	}
}

func TestRecordQueueCommitStopsOnError(t *testing.T) {
	r := NewRecord("")
	r.Apply(&add{ch: 'a'})
	q := r.Queue()
	q.Apply(failingApply{})
	q.Apply(&add{ch: 'z'})
	if err := q.Commit(); err == nil {
		t.Fatalf("expected an error")
	}
	if got := *r.Target(); got != "a" {
		t.Fatalf("target = %q, want a (z must not have applied)", got)
	}
}

func TestHistoryQueueCommit(t *testing.T) {
	h := NewHistory("")
	q := h.Queue()
	q.Apply(&add{ch: 'a'})
	q.Apply(&add{ch: 'b'})
	if err := q.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if got := *h.Target(); got != "ab" {
		t.Fatalf("target = %q, want ab", got)
	}
}
