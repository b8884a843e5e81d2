package aggregates

import (
	"context"
	"testing"
	"time"

	domainagg "github.com/thuee/info-system-backend/internal/domain/aggregates"
	"github.com/thuee/info-system-backend/internal/platform/dbctx"
)

func TestExecuteWriteObservesStatus(t *testing.T) {
	cases := []struct {
		name      string
		fnErr     error
		want      string
		conflicts int
		retries   int
	}{
		{"success", nil, "success", 0, 0},
		{"validation", ValidationError("bad"), string(domainagg.CodeValidation), 0, 0},
		{"conflict", ConflictError("dup"), string(domainagg.CodeConflict), 1, 0},
		{"retryable", RetryableError("temporary lock timeout"), string(domainagg.CodeRetryable), 0, 1},
		{"not found", domainagg.NewError(domainagg.CodeNotFound, "op", "gone", nil), string(domainagg.CodeNotFound), 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hooks := &spyHooks{}
			err := executeWrite(context.Background(), BaseDeps{
				Runner: spyTxRunner{},
				Hooks:  hooks,
			}, "aggregate.test", func(_ dbctx.Context) error { return tc.fnErr })
			if (err == nil) != (tc.fnErr == nil) {
				t.Fatalf("unexpected err %v", err)
			}
			if len(hooks.Operations) != 1 || hooks.Operations[0].Status != tc.want {
				t.Fatalf("operations: %+v", hooks.Operations)
			}
			if len(hooks.Conflicts) != tc.conflicts || len(hooks.Retries) != tc.retries {
				t.Fatalf("conflicts=%v retries=%v", hooks.Conflicts, hooks.Retries)
			}
		})
	}
}

func TestAggregateErrorStatus(t *testing.T) {
	if got := aggregateErrorStatus(nil); got != "success" {
		t.Fatalf("nil status: want=success got=%s", got)
	}
	if got := aggregateErrorStatus(ConflictError("x")); got != string(domainagg.CodeConflict) {
		t.Fatalf("conflict status: got=%s", got)
	}
	if got := aggregateErrorStatus(context.DeadlineExceeded); got != string(domainagg.CodeRetryable) {
		t.Fatalf("deadline status: got=%s", got)
	}
}

type spyTxRunner struct{}

func (spyTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(dbctx.Context{Ctx: ctx})
}

type spyHooks struct {
	Operations []spyOperation
	Conflicts  []string
	Retries    []string
}

type spyOperation struct {
	Name   string
	Status string
}

func (h *spyHooks) ObserveOperation(name, status string, _ time.Duration) {
	h.Operations = append(h.Operations, spyOperation{Name: name, Status: status})
}

func (h *spyHooks) IncConflict(name string) {
	h.Conflicts = append(h.Conflicts, name)
}

func (h *spyHooks) IncRetry(name string) {
	h.Retries = append(h.Retries, name)
}
