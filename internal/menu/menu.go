package menu

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/KaramelBytes/atmscope/internal/store"
)

// ErrNotNumber is returned for input that is neither a number nor the quit sentinel.
var ErrNotNumber = errors.New("please enter a valid number or 'q' to quit")

// RangeError is returned for a numeric choice outside 1..Max.
type RangeError struct {
	Choice int
	Max    int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("please enter a number between 1 and %d", e.Max)
}

// Choice is a parsed selection. Index is 0-based.
type Choice struct {
	Index int
	Quit  bool
}

// ParseChoice interprets one line of input against a list of n entries.
func ParseChoice(input string, n int) (Choice, error) {
	s := strings.TrimSpace(input)
	if strings.EqualFold(s, "q") {
		return Choice{Quit: true}, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return Choice{}, ErrNotNumber
	}
	if v < 1 || v > n {
		return Choice{}, &RangeError{Choice: v, Max: n}
	}
	return Choice{Index: v - 1}, nil
}

// Handler runs the analysis for a selected name.
type Handler func(ctx context.Context, name string) error

// Menu is the interactive name selector.
type Menu struct {
	names []store.NameCount
	in    *bufio.Scanner
	out   io.Writer
}

// New builds a Menu reading from in and writing prompts to out.
func New(names []store.NameCount, in io.Reader, out io.Writer) *Menu {
	return &Menu{names: names, in: bufio.NewScanner(in), out: out}
}

// List prints the numbered menu entries.
func (m *Menu) List() { List(m.out, m.names) }

// List prints names numbered from 1 with their location counts.
func List(w io.Writer, names []store.NameCount) {
	fmt.Fprintln(w, "Available ATM Names:")
	fmt.Fprintln(w, strings.Repeat("-", 50))
	for i, nc := range names {
		fmt.Fprintf(w, "%2d. %s (%d locations)\n", i+1, nc.Name, nc.Count)
	}
}

// Run loops until the user quits, declines to continue, input ends, or
// the handler fails. Malformed input reprompts.
func (m *Menu) Run(ctx context.Context, handle Handler) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, ok := m.prompt("\nEnter the number of the ATM you want to map (or 'q' to quit): ")
		if !ok {
			fmt.Fprintln(m.out, "\nGoodbye!")
			return m.in.Err()
		}
		choice, err := ParseChoice(line, len(m.names))
		if err != nil {
			fmt.Fprintln(m.out, capitalize(err.Error()))
			continue
		}
		if choice.Quit {
			fmt.Fprintln(m.out, "Goodbye!")
			return nil
		}
		selected := m.names[choice.Index].Name
		fmt.Fprintf(m.out, "\nYou selected: %s\n", selected)
		if err := handle(ctx, selected); err != nil {
			return err
		}
		again, ok := m.prompt("\nDo you want to map another ATM? (y/n): ")
		if !ok || !strings.EqualFold(strings.TrimSpace(again), "y") {
			fmt.Fprintln(m.out, "Goodbye!")
			return m.in.Err()
		}
	}
}

func (m *Menu) prompt(text string) (string, bool) {
	fmt.Fprint(m.out, text)
	if !m.in.Scan() {
		return "", false
	}
	return m.in.Text(), true
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
