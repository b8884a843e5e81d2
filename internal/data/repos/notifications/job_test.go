package notifications

import (
	"context"
	"testing"

	"github.com/thuee/info-system-backend/internal/data/repos/testutil"
	domain "github.com/thuee/info-system-backend/internal/domain/notifications"
	"github.com/thuee/info-system-backend/internal/platform/dbctx"
	"gorm.io/datatypes"
)

func TestJobRepoLifecycle(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.From(ctx)
	repo := NewJobRepo(db, testutil.Logger(t))

	if job, err := repo.ClaimNext(dbc); err != nil || job != nil {
		t.Fatalf("empty queue: job=%v err=%v", job, err)
	}

	a := &domain.Job{Kind: string(domain.KindCreated), ApplicationID: 1, Payload: datatypes.JSON(`{}`)}
	b := &domain.Job{Kind: string(domain.KindAmended), ApplicationID: 2, Payload: datatypes.JSON(`{}`)}
	for _, j := range []*domain.Job{a, b} {
		if err := repo.Enqueue(dbc, j); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}
	if n, _ := repo.CountByStatus(dbc, domain.StatusQueued); n != 2 {
		t.Fatalf("expected 2 queued, got %d", n)
	}

	first, err := repo.ClaimNext(dbc)
	if err != nil || first == nil || first.ID != a.ID {
		t.Fatalf("ClaimNext: job=%v err=%v", first, err)
	}
	if first.Status != domain.StatusRunning || first.Attempts != 1 {
		t.Fatalf("claimed job not running: %+v", first)
	}
	second, err := repo.ClaimNext(dbc)
	if err != nil || second == nil || second.ID != b.ID {
		t.Fatalf("ClaimNext second: job=%v err=%v", second, err)
	}
	if none, _ := repo.ClaimNext(dbc); none != nil {
		t.Fatalf("running jobs must not be claimed again")
	}

	if err := repo.MarkSucceeded(dbc, first.ID); err != nil {
		t.Fatalf("MarkSucceeded: %v", err)
	}
	if err := repo.MarkFailed(dbc, second.ID, " smtp down "); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}
	done, _ := repo.GetByID(dbc, first.ID)
	failed, _ := repo.GetByID(dbc, second.ID)
	if done.Status != domain.StatusSucceeded || failed.Status != domain.StatusFailed || failed.Error != "smtp down" {
		t.Fatalf("unexpected final states: %+v %+v", done, failed)
	}
}
