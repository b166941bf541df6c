package tools

import (
	"context"
	"sync"
	"testing"
)

func TestTurn_AccumulatesInOrder(t *testing.T) {
	t.Parallel()

	turn := NewTurn()
	turn.AddSource(Source{Text: "Course A - Lesson 1"})
	turn.AddSource(Source{Text: "Course B"})

	got := turn.Sources()
	if len(got) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(got))
	}
	if got[0].Text != "Course A - Lesson 1" || got[1].Text != "Course B" {
		t.Errorf("sources out of order: %+v", got)
	}
}

func TestTurn_SourcesReturnsCopy(t *testing.T) {
	t.Parallel()

	turn := NewTurn()
	turn.AddSource(Source{Text: "original"})

	got := turn.Sources()
	got[0].Text = "mutated"

	if turn.Sources()[0].Text != "original" {
		t.Error("mutating the returned slice changed the turn's state")
	}
}

func TestTurn_NilSafe(t *testing.T) {
	t.Parallel()

	var turn *Turn
	turn.AddSource(Source{Text: "dropped"})
	if got := turn.Sources(); got != nil {
		t.Errorf("nil turn Sources() = %v, want nil", got)
	}
}

func TestTurn_ConcurrentAdds(t *testing.T) {
	t.Parallel()

	turn := NewTurn()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			turn.AddSource(Source{Text: "s"})
		}()
	}
	wg.Wait()

	if got := len(turn.Sources()); got != 16 {
		t.Errorf("expected 16 sources after concurrent adds, got %d", got)
	}
}

func TestTurnFromContext(t *testing.T) {
	t.Parallel()

	if got := TurnFromContext(context.Background()); got != nil {
		t.Errorf("TurnFromContext on a bare context = %v, want nil", got)
	}

	turn := NewTurn()
	ctx := WithTurn(context.Background(), turn)
	if got := TurnFromContext(ctx); got != turn {
		t.Error("TurnFromContext did not return the installed turn")
	}
}
