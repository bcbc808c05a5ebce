package undo

import "testing"

func TestHistoryApplyForksBranch(t *testing.T) {
	h := NewHistory("")
	h.Apply(&add{ch: 'a'})
	h.Apply(&add{ch: 'b'})
	h.Apply(&add{ch: 'c'})
	if got := *h.Target(); got != "abc" {
		t.Fatalf("target = %q, want abc", got)
	}

	root := h.Root()
	h.GoTo(root, 1)
	if got := *h.Target(); got != "a" {
		t.Fatalf("target after goto = %q, want a", got)
	}

	old, forked, err := h.Apply(&add{ch: 'f'})
	if err != nil || !forked {
		t.Fatalf("apply: forked=%v err=%v", forked, err)
	}
	if old != root {
		t.Fatalf("forked branch id = %d, want original root %d", old, root)
	}
	h.Apply(&add{ch: 'g'})
	if got := *h.Target(); got != "afg" {
		t.Fatalf("target = %q, want afg", got)
	}

	prev, err := h.GoTo(old, 3)
	if err != nil {
		t.Fatalf("goto back: %v", err)
	}
	if got := *h.Target(); got != "abc" {
		t.Fatalf("target after returning to original branch = %q, want abc, came from %d", got, prev)
	}
}

// buildFigureEight reproduces the branch forest from the reference
// undo-tree fixture:
//
//	          m
//	          |
//	    j  k  l
//	     \ | /
//	       i
//	       |
//	 e  g  h
//	 |  | /
//	 d  f  p - q *
//	 | /  /
//	 c  n - o
//	 | /
//	 b
//	 |
//	 a
func buildFigureEight(t *testing.T, h *History[string]) map[string]int {
	t.Helper()
	ids := map[string]int{}
	apply := func(ch rune) {
		t.Helper()
		if _, _, err := h.Apply(&jumpAdd{ch: ch}); err != nil {
			t.Fatalf("apply %q: %v", ch, err)
		}
	}
	fork := func(ch rune) int {
		t.Helper()
		old, _, err := h.Apply(&jumpAdd{ch: ch})
		if err != nil {
			t.Fatalf("apply %q: %v", ch, err)
		}
		return old
	}
	undo := func() {
		t.Helper()
		if _, err := h.Undo(); err != nil {
			t.Fatalf("undo: %v", err)
		}
	}

	apply('a')
	apply('b')
	apply('c')
	apply('d')
	apply('e')
	undo()
	undo()
	ids["abcde"] = fork('f')
	apply('g')
	undo()
	ids["abcfg"] = fork('h')
	apply('i')
	apply('j')
	undo()
	ids["abcfhij"] = fork('k')
	undo()
	ids["abcfhik"] = fork('l')
	apply('m')
	ids["abcfhilm"] = func() int {
		prev, err := h.GoTo(ids["abcde"], 2)
		if err != nil {
			t.Fatalf("goto abcde,2: %v", err)
		}
		return prev
	}()
	if _, _, err := h.Apply(&jumpAdd{ch: 'n'}); err != nil {
		t.Fatalf("apply n: %v", err)
	}
	apply('o')
	undo()
	ids["abno"] = fork('p')
	apply('q')
	return ids
}

func TestHistoryGoToFigureEight(t *testing.T) {
	h := NewHistory("")
	ids := buildFigureEight(t, h)
	if got := *h.Target(); got != "abnpq" {
		t.Fatalf("target = %q, want abnpq", got)
	}

	abnpq, err := h.GoTo(ids["abcde"], 5)
	if err != nil {
		t.Fatalf("goto: %v", err)
	}
	if got := *h.Target(); got != "abcde" {
		t.Fatalf("target = %q, want abcde", got)
	}

	prev, err := h.GoTo(ids["abcfg"], 5)
	if err != nil || prev != ids["abcde"] {
		t.Fatalf("goto abcfg: prev=%d err=%v", prev, err)
	}
	if got := *h.Target(); got != "abcfg" {
		t.Fatalf("target = %q, want abcfg", got)
	}

	prev, err = h.GoTo(ids["abcfhij"], 7)
	if err != nil || prev != ids["abcfg"] {
		t.Fatalf("goto abcfhij: prev=%d err=%v", prev, err)
	}
	if got := *h.Target(); got != "abcfhij" {
		t.Fatalf("target = %q, want abcfhij", got)
	}

	prev, err = h.GoTo(ids["abcfhik"], 7)
	if err != nil || prev != ids["abcfhij"] {
		t.Fatalf("goto abcfhik: prev=%d err=%v", prev, err)
	}
	if got := *h.Target(); got != "abcfhik" {
		t.Fatalf("target = %q, want abcfhik", got)
	}

	prev, err = h.GoTo(ids["abcfhilm"], 8)
	if err != nil || prev != ids["abcfhik"] {
		t.Fatalf("goto abcfhilm: prev=%d err=%v", prev, err)
	}
	if got := *h.Target(); got != "abcfhilm" {
		t.Fatalf("target = %q, want abcfhilm", got)
	}

	prev, err = h.GoTo(ids["abno"], 4)
	if err != nil || prev != ids["abcfhilm"] {
		t.Fatalf("goto abno: prev=%d err=%v", prev, err)
	}
	if got := *h.Target(); got != "abno" {
		t.Fatalf("target = %q, want abno", got)
	}

	prev, err = h.GoTo(abnpq, 5)
	if err != nil || prev != ids["abno"] {
		t.Fatalf("goto abnpq: prev=%d err=%v", prev, err)
	}
	if got := *h.Target(); got != "abnpq" {
		t.Fatalf("target = %q, want abnpq", got)
	}
}

func TestHistoryJumpToFigureEight(t *testing.T) {
	h := NewHistory("")
	ids := buildFigureEight(t, h)
	if got := *h.Target(); got != "abnpq" {
		t.Fatalf("target = %q, want abnpq", got)
	}

	abnpq, err := h.JumpTo(ids["abcde"], 5)
	if err != nil {
		t.Fatalf("jumpto: %v", err)
	}
	if got := *h.Target(); got != "abcde" {
		t.Fatalf("target = %q, want abcde", got)
	}

	prev, err := h.JumpTo(ids["abcfg"], 5)
	if err != nil || prev != ids["abcde"] {
		t.Fatalf("jumpto abcfg: prev=%d err=%v", prev, err)
	}
	if got := *h.Target(); got != "abcfg" {
		t.Fatalf("target = %q, want abcfg", got)
	}

	prev, err = h.JumpTo(ids["abno"], 4)
	if err != nil {
		t.Fatalf("jumpto abno: %v", err)
	}
	_ = prev
	if got := *h.Target(); got != "abno" {
		t.Fatalf("target = %q, want abno", got)
	}

	prev, err = h.JumpTo(abnpq, 5)
	if err != nil || prev != ids["abno"] {
		t.Fatalf("jumpto abnpq: prev=%d err=%v", prev, err)
	}
	if got := *h.Target(); got != "abnpq" {
		t.Fatalf("target = %q, want abnpq", got)
	}
}

func TestHistoryClear(t *testing.T) {
	h := NewHistory("")
	h.Apply(&add{ch: 'a'})
	root := h.Root()
	h.GoTo(root, 0)
	h.Apply(&add{ch: 'b'})
	if len(h.branches) == 0 {
		t.Fatalf("expected a forked branch before Clear")
	}
	h.Clear()
	if h.Len() != 0 || h.Root() != 0 || len(h.branches) != 0 {
		t.Fatalf("Clear did not reset history state")
	}
	if *h.Target() != "b" {
		t.Fatalf("Clear must not touch the target, got %q", *h.Target())
	}
}

func TestHistoryApplyUpToLimitAfterFork(t *testing.T) {
	h := NewHistory("", WithLimit[string](3))
	h.Apply(&add{ch: 'a'})
	h.Apply(&add{ch: 'b'})
	h.Apply(&add{ch: 'c'})
	root := h.Root()
	h.GoTo(root, 1)
	h.Apply(&add{ch: 'x'})

	h.Apply(&add{ch: 'd'}) // fills the active branch up to the limit of 3; nothing is evicted yet

	if got := *h.Target(); got != "axd" {
		t.Fatalf("target = %q, want axd", got)
	}
}
