package shutdown

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
)

func TestRegistry_Order(t *testing.T) {
	r := NewRegistry()
	var order []string
	add := func(name string, prio int) {
		r.Register(name, prio, func(context.Context) error {
			order = append(order, name)
			return nil
		})
	}
	add("logs", 30)
	add("http", 0)
	add("library", 20)
	add("db", 20)

	want := []string{"http", "library", "db", "logs"}
	if got := r.Names(); !slices.Equal(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
	if err := r.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(order, want) {
		t.Errorf("ran %v, want %v", order, want)
	}
}

func TestRegistry_RunOnce(t *testing.T) {
	r := NewRegistry()
	calls := 0
	r.Register("x", 0, func(context.Context) error { calls++; return nil })
	r.Run(context.Background())
	r.Run(context.Background())
	if calls != 1 {
		t.Errorf("calls = %d", calls)
	}
	r.Register("late", 0, func(context.Context) error { return nil })
	if r.Len() != 1 {
		t.Error("registration after Run should be ignored")
	}
}

func TestRegistry_JoinsErrors(t *testing.T) {
	r := NewRegistry()
	errA := errors.New("a failed")
	ran := false
	r.Register("a", 0, func(context.Context) error { return errA })
	r.Register("b", 1, func(context.Context) error { ran = true; return nil })
	r.Register("c", 2, func(context.Context) error { return errors.New("c failed") })

	err := r.Run(context.Background())
	if !errors.Is(err, errA) {
		t.Errorf("Run = %v, want it to wrap errA", err)
	}
	if !ran {
		t.Error("a failure must not stop later handlers")
	}
	if !strings.Contains(err.Error(), "c: c failed") {
		t.Errorf("error should name the handler: %v", err)
	}
}
