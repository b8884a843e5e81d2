package aggregates

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorHelpers(t *testing.T) {
	base := errors.New("boom")
	err := fmt.Errorf("outer: %w", Wrap(CodeInternal, "application.amend", base))
	if !IsCode(err, CodeInternal) {
		t.Fatalf("expected internal code, got %q", CodeOf(err))
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected cause to unwrap")
	}
	if Wrap(CodeInternal, "x", nil) != nil {
		t.Fatalf("Wrap(nil) must be nil")
	}

	conflict := ConflictWithRef("application.submit", "Application already exists.", "17")
	if !IsCode(conflict, CodeConflict) || RefOf(conflict) != "17" {
		t.Fatalf("unexpected conflict error: %v ref=%q", conflict, RefOf(conflict))
	}
	if got := conflict.Error(); got != "application.submit: Application already exists. (conflict)" {
		t.Fatalf("unexpected message %q", got)
	}
	if CodeOf(base) != "" || RefOf(base) != "" {
		t.Fatalf("plain errors carry no code or ref")
	}
}

func TestApplicationContract(t *testing.T) {
	if !ApplicationAggregateContract.RequiresAggregateOwnedTx() {
		t.Fatalf("application aggregate must own its write transactions")
	}
}
