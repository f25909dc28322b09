package stack

import (
	"errors"

	"github.com/LuisCarretero/grammar-vae/internal/grammar"
)

// ErrEmptyStack is returned by Pop on an empty stack.
var ErrEmptyStack = errors.New("pop from empty derivation stack")

// #region stack
// Stack holds the nonterminals still awaiting expansion in a leftmost
// derivation. The top of the stack is the leftmost pending nonterminal.
type Stack struct {
	items []string
}

// New returns a stack seeded with the start symbol.
func New(start string) *Stack {
	return &Stack{items: []string{start}}
}

// Push appends nt to the top of the stack.
func (s *Stack) Push(nt string) {
	s.items = append(s.items, nt)
}

// Pop removes and returns the most recently pushed nonterminal.
func (s *Stack) Pop() (string, error) {
	if len(s.items) == 0 {
		return "", ErrEmptyStack
	}
	top := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return top, nil
}

// Empty reports whether no nonterminals are pending.
func (s *Stack) Empty() bool { return len(s.items) == 0 }

// Len returns the number of pending nonterminals.
func (s *Stack) Len() int { return len(s.items) }

// Pending returns a copy of the stack contents in leftmost-first order.
func (s *Stack) Pending() []string {
	out := make([]string, len(s.items))
	for i, nt := range s.items {
		out[len(s.items)-1-i] = nt
	}
	return out
}

// PushRHS pushes the right-hand-side nonterminals of r in reverse order, so
// the next Pop yields the leftmost one.
func (s *Stack) PushRHS(r grammar.Rule) {
	for i := len(r.RHS) - 1; i >= 0; i-- {
		if r.RHS[i].IsNonterminal() {
			s.Push(r.RHS[i].Name)
		}
	}
}

// #endregion stack
