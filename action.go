package tick

import (
	"fmt"
	"io"
	"os"
)

// Action is a zero-argument unit of deferred work.
// Implementations capture the data they need at creation time.
type Action interface {
	Run() error
}

// ActionFunc adapts an ordinary function to the Action interface.
type ActionFunc func() error

func (f ActionFunc) Run() error { return f() }

// Do wraps a function that can't fail.
func Do(fn func()) Action {
	return ActionFunc(func() error {
		fn()
		return nil
	})
}

// Pair is an immutable tuple of two independently typed values.
type Pair[A, B any] struct {
	first  A
	second B
}

// NewPair creates a new pair.
func NewPair[A, B any](first A, second B) Pair[A, B] {
	return Pair[A, B]{first: first, second: second}
}

func (p Pair[A, B]) First() A  { return p.first }
func (p Pair[A, B]) Second() B { return p.second }

// String renders the pair as "(first, second)".
func (p Pair[A, B]) String() string {
	return fmt.Sprintf("(%v, %v)", p.first, p.second)
}

// DefaultMessage is the line PrintPair writes after the pair.
const DefaultMessage = "Halo1"

// PrintPair is an action that writes the rendered pair
// followed by a message line.
type PrintPair[A, B any] struct {
	pair    Pair[A, B]
	message string
	out     io.Writer
}

// NewPrintPair creates a PrintPair action writing to out.
// If out == nil then os.Stdout is used.
// If message is empty then DefaultMessage is used.
func NewPrintPair[A, B any](
	p Pair[A, B],
	message string,
	out io.Writer,
) PrintPair[A, B] {
	if out == nil {
		out = os.Stdout
	}
	if message == "" {
		message = DefaultMessage
	}
	return PrintPair[A, B]{pair: p, message: message, out: out}
}

func (a PrintPair[A, B]) Pair() Pair[A, B] { return a.pair }

func (a PrintPair[A, B]) Run() error {
	if _, err := fmt.Fprintf(a.out, "%s\n%s\n", a.pair, a.message); err != nil {
		return fmt.Errorf("writing pair %s: %w", a.pair, err)
	}
	return nil
}
