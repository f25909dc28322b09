package stack

import (
	"errors"
	"testing"

	"github.com/LuisCarretero/grammar-vae/internal/grammar"
)

func TestNew_SeededWithStart(t *testing.T) {
	s := New("S")
	if s.Empty() || s.Len() != 1 {
		t.Fatalf("expected one element, got %d", s.Len())
	}
	nt, err := s.Pop()
	if err != nil {
		t.Fatalf("Pop: %v", err)
	}
	if nt != "S" {
		t.Fatalf("expected S, got %s", nt)
	}
	if !s.Empty() {
		t.Fatal("expected empty stack")
	}
}

func TestPop_Empty(t *testing.T) {
	s := New("S")
	s.Pop()
	if _, err := s.Pop(); !errors.Is(err, ErrEmptyStack) {
		t.Fatalf("expected ErrEmptyStack, got %v", err)
	}
}

func TestPush_LIFO(t *testing.T) {
	s := New("S")
	s.Push("A")
	s.Push("B")
	for _, want := range []string{"B", "A", "S"} {
		got, err := s.Pop()
		if err != nil {
			t.Fatalf("Pop: %v", err)
		}
		if got != want {
			t.Fatalf("expected %s, got %s", want, got)
		}
	}
}

func TestPushRHS_LeftmostFirst(t *testing.T) {
	s := New("S")
	s.Pop()
	// S -> A 'x' B C
	s.PushRHS(grammar.NewRule("S", grammar.N("A"), grammar.T("x"), grammar.N("B"), grammar.N("C")))
	if s.Len() != 3 {
		t.Fatalf("expected 3 pending, got %d", s.Len())
	}
	pending := s.Pending()
	if pending[0] != "A" || pending[1] != "B" || pending[2] != "C" {
		t.Fatalf("unexpected pending order %v", pending)
	}
	for _, want := range []string{"A", "B", "C"} {
		got, _ := s.Pop()
		if got != want {
			t.Fatalf("expected %s, got %s", want, got)
		}
	}
}

func TestPushRHS_TerminalsOnly(t *testing.T) {
	s := New("S")
	s.Pop()
	s.PushRHS(grammar.NewRule("S", grammar.T("a"), grammar.T("b")))
	if !s.Empty() {
		t.Fatal("terminals must not be pushed")
	}
}
