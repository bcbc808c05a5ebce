// Command undodemo walks a History[string] through the figure-eight branch
// sequence used to exercise fork/go-to behavior, printing the receiver
// string after each step and, at the end, how many Signals the engine
// emitted.
package main

import (
	"flag"
	"fmt"
	"os"

	undo "github.com/dshills/undo"
	"github.com/dshills/undo/snapshot"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	var signals []undo.Signal
	h := undo.NewHistory("", undo.WithObserver[string](func(s undo.Signal) {
		signals = append(signals, s)
	}))

	step := func(label string, fn func() error) int {
		if err := fn(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", label, err)
			return 1
		}
		if !opts.Quiet {
			fmt.Printf("%-28s -> %q\n", label, *h.Target())
		}
		return 0
	}

	var forkedID int
	apply := func(ch rune) func() error {
		return func() error {
			_, _, err := h.Apply(&addChar{ch: ch})
			return err
		}
	}
	fork := func(ch rune) func() error {
		return func() error {
			old, _, err := h.Apply(&addChar{ch: ch})
			forkedID = old
			return err
		}
	}
	undoOne := func() error {
		_, err := h.Undo()
		return err
	}

	for _, ch := range "abcde" {
		if rc := step(fmt.Sprintf("Apply('%c')", ch), apply(ch)); rc != 0 {
			return rc
		}
	}
	if rc := step("Undo", undoOne); rc != 0 {
		return rc
	}
	if rc := step("Undo", undoOne); rc != 0 {
		return rc
	}

	if rc := step("Apply('f') [forks abcde]", fork('f')); rc != 0 {
		return rc
	}
	abcdeBranch := forkedID
	if rc := step("Apply('g')", apply('g')); rc != 0 {
		return rc
	}
	if rc := step("Undo", undoOne); rc != 0 {
		return rc
	}

	if rc := step("Apply('h') [forks abcfg]", fork('h')); rc != 0 {
		return rc
	}
	abcfgBranch := forkedID
	for _, ch := range "ij" {
		if rc := step(fmt.Sprintf("Apply('%c')", ch), apply(ch)); rc != 0 {
			return rc
		}
	}
	if rc := step("Undo", undoOne); rc != 0 {
		return rc
	}

	if rc := step("Apply('k') [forks abcfhij]", fork('k')); rc != 0 {
		return rc
	}
	abcfhijBranch := forkedID
	if rc := step("Undo", undoOne); rc != 0 {
		return rc
	}

	if rc := step("Apply('l') [forks abcfhik]", fork('l')); rc != 0 {
		return rc
	}
	abcfhikBranch := forkedID
	if rc := step("Apply('m')", apply('m')); rc != 0 {
		return rc
	}

	prev, err := h.GoTo(abcdeBranch, 2)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: GoTo(abcde, 2): %v\n", err)
		return 1
	}
	if !opts.Quiet {
		fmt.Printf("%-28s -> %q\n", "GoTo(abcde, 2)", *h.Target())
	}
	abcfhilmBranch := prev

	if rc := step("Apply('n') [forks abcfhilm]", fork('n')); rc != 0 {
		return rc
	}
	if rc := step("Apply('o')", apply('o')); rc != 0 {
		return rc
	}
	if rc := step("Undo", undoOne); rc != 0 {
		return rc
	}

	if rc := step("Apply('p') [forks abno]", fork('p')); rc != 0 {
		return rc
	}
	abnoBranch := forkedID
	if rc := step("Apply('q')", apply('q')); rc != 0 {
		return rc
	}

	goTo := func(label string, branch, cursor int) (int, int) {
		prev, err := h.GoTo(branch, cursor)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", label, err)
			return 0, 1
		}
		if !opts.Quiet {
			fmt.Printf("%-28s -> %q\n", label, *h.Target())
		}
		return prev, 0
	}

	abnpqBranch, rc := goTo("GoTo(abcde, 5) [forks abnpq]", abcdeBranch, 5)
	if rc != 0 {
		return rc
	}
	if _, rc := goTo("GoTo(abcfg, 5)", abcfgBranch, 5); rc != 0 {
		return rc
	}
	if _, rc := goTo("GoTo(abcfhij, 7)", abcfhijBranch, 7); rc != 0 {
		return rc
	}
	if _, rc := goTo("GoTo(abcfhik, 7)", abcfhikBranch, 7); rc != 0 {
		return rc
	}
	if _, rc := goTo("GoTo(abcfhilm, 8)", abcfhilmBranch, 8); rc != 0 {
		return rc
	}
	if _, rc := goTo("GoTo(abno, 4)", abnoBranch, 4); rc != 0 {
		return rc
	}
	if _, rc := goTo("GoTo(abnpq, 5)", abnpqBranch, 5); rc != 0 {
		return rc
	}

	h.SetSaved(true)
	if !opts.Quiet {
		fmt.Printf("final receiver: %q (saved=%v)\n", *h.Target(), h.IsSaved())
		fmt.Printf("%d branches recorded, %d signals emitted\n", len(h.Branches()), len(signals))
	}

	if opts.JSON {
		doc, err := snapshot.History(h)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: snapshot: %v\n", err)
			return 1
		}
		fmt.Println(string(doc))
	}

	return 0
}

type options struct {
	Quiet bool
	JSON  bool
}

func parseFlags() options {
	var opts options
	var showHelp bool

	flag.BoolVar(&opts.Quiet, "quiet", false, "Suppress the per-step receiver trace")
	flag.BoolVar(&opts.Quiet, "q", false, "Suppress the per-step receiver trace (shorthand)")
	flag.BoolVar(&opts.JSON, "json", false, "Print the final History as a JSON snapshot")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "undodemo - walks undo.History[string] through a branching apply/undo/go-to sequence\n\n")
		fmt.Fprintf(os.Stderr, "Usage: undodemo [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	return opts
}

// addChar appends a single rune to the receiver and knows how to pop it
// back off on undo, mirroring the Add command from the original crate's
// branch-forking example.
type addChar struct{ ch rune }

func (a *addChar) Apply(target *string) error {
	*target += string(a.ch)
	return nil
}

func (a *addChar) Undo(target *string) error {
	r := []rune(*target)
	if len(r) == 0 {
		return fmt.Errorf("receiver is empty")
	}
	a.ch = r[len(r)-1]
	*target = string(r[:len(r)-1])
	return nil
}
