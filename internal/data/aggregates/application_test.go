package aggregates_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/thuee/info-system-backend/internal/data/aggregates"
	aggtest "github.com/thuee/info-system-backend/internal/data/aggregates/testutil"
	"github.com/thuee/info-system-backend/internal/data/repos"
	"github.com/thuee/info-system-backend/internal/data/repos/testutil"
	domainagg "github.com/thuee/info-system-backend/internal/domain/aggregates"
	"github.com/thuee/info-system-backend/internal/domain/application"
	"github.com/thuee/info-system-backend/internal/domain/notifications"
	"github.com/thuee/info-system-backend/internal/domain/people"
	"github.com/thuee/info-system-backend/internal/platform/dbctx"
)

type fixture struct {
	db    *gorm.DB
	agg   domainagg.ApplicationAggregate
	apps  repos.ApplicationRepo
	jobs  repos.NotificationJobRepo
	hooks *aggtest.HooksRecorder
}

func newFixture(t *testing.T, runner aggregates.TxRunner) *fixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	f := &fixture{
		db:    db,
		apps:  repos.NewApplicationRepo(db, log),
		jobs:  repos.NewNotificationJobRepo(db, log),
		hooks: &aggtest.HooksRecorder{},
	}
	f.agg = aggregates.NewApplicationAggregate(aggregates.ApplicationAggregateDeps{
		Base:         aggregates.BaseDeps{DB: db, Log: log, Runner: runner, Hooks: f.hooks},
		Applications: f.apps,
		Teachers:     repos.NewTeacherRepo(db, log),
		Jobs:         f.jobs,
	})
	return f
}

func (f *fixture) teacher(t *testing.T, id int64) *people.Teacher {
	t.Helper()
	var out people.Teacher
	if err := f.db.Where("external_id = ?", id).First(&out).Error; err != nil {
		t.Fatalf("load teacher: %v", err)
	}
	return &out
}

func (f *fixture) queued(t *testing.T) int64 {
	t.Helper()
	n, err := f.jobs.CountByStatus(dbctx.From(context.Background()), notifications.StatusQueued)
	if err != nil {
		t.Fatalf("count jobs: %v", err)
	}
	return n
}

const mentorSubmission = `{
	"applicantId": 2016011001, "applicantName": "张三", "year": 2020,
	"mentor": {"status": {"王老师": "待审核"}, "contents": {"statement": "希望跟随王老师"}}
}`

func TestSubmitCreatesAndCountsMentor(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	testutil.SeedTeacher(t, ctx, f.db, 1001, "王老师", "wang@example.com")

	at := time.Date(2020, 9, 1, 8, 0, 0, 0, time.UTC)
	res, err := f.agg.Submit(ctx, domainagg.SubmitInput{
		Body:   testutil.MustBody(t, mentorSubmission),
		Caller: "2016011001",
		At:     at,
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Application.ID == 0 || res.Application.CreatedBy != "2016011001" || !res.Application.CreatedAt.Equal(at) {
		t.Fatalf("unexpected record %+v", res.Application)
	}
	if res.Job == nil || f.queued(t) != 1 {
		t.Fatalf("expected one queued notification job")
	}
	if got := f.teacher(t, 1001).TotalApplications; got != 1 {
		t.Fatalf("expected mentor counter 1, got %d", got)
	}

	// An unrelated honor amendment leaves the counter alone.
	_, err = f.agg.Amend(ctx, domainagg.AmendInput{
		ID:     res.Application.ID,
		Body:   testutil.MustBody(t, `{"honor": {"status": {"学业优秀奖": "通过"}}}`),
		Caller: "2001",
	})
	if err != nil {
		t.Fatalf("Amend: %v", err)
	}
	if got := f.teacher(t, 1001).TotalApplications; got != 1 {
		t.Fatalf("expected mentor counter to stay 1, got %d", got)
	}
}

func TestSubmitConflictReportsExisting(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	first, err := f.agg.Submit(ctx, domainagg.SubmitInput{Body: testutil.MustBody(t, mentorSubmission), Caller: "x"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	_, err = f.agg.Submit(ctx, domainagg.SubmitInput{Body: testutil.MustBody(t, mentorSubmission), Caller: "x"})
	if !domainagg.IsCode(err, domainagg.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if ref := domainagg.RefOf(err); ref != first.Application.Ref() {
		t.Fatalf("conflict ref %q, want %q", ref, first.Application.Ref())
	}
	rows, _ := f.apps.Find(dbctx.From(ctx), repos.ApplicationFilter{}, 0, 0)
	if len(rows) != 1 {
		t.Fatalf("duplicate stored: %d rows", len(rows))
	}
	if len(f.hooks.Conflicts) != 1 {
		t.Fatalf("expected conflict hook, got %v", f.hooks.Conflicts)
	}
}

func TestSubmitUnknownMentorStillCreates(t *testing.T) {
	f := newFixture(t, nil)
	res, err := f.agg.Submit(context.Background(), domainagg.SubmitInput{Body: testutil.MustBody(t, mentorSubmission)})
	if err != nil || res.Application == nil {
		t.Fatalf("Submit: %v", err)
	}
}

func TestSubmitValidation(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.agg.Submit(context.Background(), domainagg.SubmitInput{Body: testutil.MustBody(t, `{"applicantName": "x"}`)})
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	owner := int64(42)
	_, err = f.agg.Submit(context.Background(), domainagg.SubmitInput{Body: testutil.MustBody(t, mentorSubmission), Owner: &owner})
	if !domainagg.IsCode(err, domainagg.CodeUnauthorized) {
		t.Fatalf("expected unauthorized for foreign applicant, got %v", err)
	}
}

func TestAmendReplacesStatusAndQueues(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	app := testutil.SeedApplication(t, ctx, f.db, `{
		"applicantId": 1, "applicantName": "张三", "year": 2020,
		"scholarship": {"status": {"drA": "pending", "drB": "approved"}, "contents": {"titleY": {"content": "y"}}}
	}`)

	res, err := f.agg.Amend(ctx, domainagg.AmendInput{
		ID:     app.ID,
		Body:   testutil.MustBody(t, `{"scholarship": {"status": {"drA": "approved"}, "contents": {"titleX": {"content": "x"}}}}`),
		Caller: "9",
	})
	if err != nil {
		t.Fatalf("Amend: %v", err)
	}
	if res.Created || res.Job == nil {
		t.Fatalf("unexpected result %+v", res)
	}
	stored, _ := f.apps.FindByID(dbctx.From(ctx), app.ID)
	if keys := stored.Scholarship.Status.Keys(); len(keys) != 1 || keys[0] != "drA" {
		t.Fatalf("status not replaced: %v", keys)
	}
	if _, ok := stored.Scholarship.Contents["titleY"]; !ok {
		t.Fatalf("titleY lost")
	}
	if stored.UpdatedBy != "9" {
		t.Fatalf("updatedBy not stamped: %q", stored.UpdatedBy)
	}
}

func TestAmendMissingPolicy(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	body := `{"applicantId": 5, "applicantName": "王五", "year": 2021, "honor": {"status": {"a": "b"}}}`

	_, err := f.agg.Amend(ctx, domainagg.AmendInput{ID: 77, Body: testutil.MustBody(t, body)})
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("strict amend: expected not found, got %v", err)
	}

	res, err := f.agg.Amend(ctx, domainagg.AmendInput{ID: 77, Body: testutil.MustBody(t, body), CreateIfMissing: true})
	if err != nil || !res.Created || res.Application.ID == 0 {
		t.Fatalf("upsert amend: res=%+v err=%v", res, err)
	}
	if res.Job != nil || f.queued(t) != 0 {
		t.Fatalf("upsert create must not notify")
	}

	_, err = f.agg.Amend(ctx, domainagg.AmendInput{ID: 78, Body: testutil.MustBody(t, body), CreateIfMissing: true})
	if !domainagg.IsCode(err, domainagg.CodeConflict) {
		t.Fatalf("upsert onto an existing pair: expected conflict, got %v", err)
	}
}

func TestAmendAndDeleteRespectOwner(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	app := testutil.SeedApplication(t, ctx, f.db, `{"applicantId": 1, "year": 2020, "honor": {"status": {"a": "b"}}}`)
	other := int64(2)

	_, err := f.agg.Amend(ctx, domainagg.AmendInput{ID: app.ID, Body: testutil.MustBody(t, `{"honor": {"status": {"a": "c"}}}`), Owner: &other})
	if !domainagg.IsCode(err, domainagg.CodeUnauthorized) {
		t.Fatalf("expected unauthorized amend, got %v", err)
	}
	if err := f.agg.Delete(ctx, domainagg.DeleteInput{ID: app.ID, Owner: &other}); !domainagg.IsCode(err, domainagg.CodeUnauthorized) {
		t.Fatalf("expected unauthorized delete, got %v", err)
	}
	if err := f.agg.Delete(ctx, domainagg.DeleteInput{ID: app.ID}); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := f.agg.Delete(ctx, domainagg.DeleteInput{ID: app.ID}); !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestSubmitCommitFailureIsInternal(t *testing.T) {
	runner := &aggtest.InjectedTxRunner{FailCommit: errors.New("connection reset")}
	f := newFixture(t, runner)
	_, err := f.agg.Submit(context.Background(), domainagg.SubmitInput{Body: testutil.MustBody(t, mentorSubmission)})
	if !domainagg.IsCode(err, domainagg.CodeInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
	if runner.RollbackCalls != 1 {
		t.Fatalf("expected rollback, got %d", runner.RollbackCalls)
	}
}

// staleLookupRepo misses the first (applicant, year) lookup, as a submit
// racing another one would.
type staleLookupRepo struct {
	repos.ApplicationRepo
	missed bool
}

func (r *staleLookupRepo) FindByApplicantYear(dbc dbctx.Context, applicantID int64, year int) (*application.Application, error) {
	if !r.missed {
		r.missed = true
		return nil, nil
	}
	return r.ApplicationRepo.FindByApplicantYear(dbc, applicantID, year)
}

func TestSubmitUniqueViolationReportsExisting(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	existing := testutil.SeedApplication(t, ctx, f.db, `{"applicantId": 2016011001, "applicantName": "张三", "year": 2020}`)

	log := testutil.Logger(t)
	agg := aggregates.NewApplicationAggregate(aggregates.ApplicationAggregateDeps{
		Base:         aggregates.BaseDeps{DB: f.db, Log: log},
		Applications: &staleLookupRepo{ApplicationRepo: f.apps},
		Teachers:     repos.NewTeacherRepo(f.db, log),
		Jobs:         f.jobs,
	})

	_, err := agg.Submit(ctx, domainagg.SubmitInput{Body: testutil.MustBody(t, mentorSubmission)})
	if !domainagg.IsCode(err, domainagg.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if got := domainagg.RefOf(err); got != existing.Ref() {
		t.Fatalf("conflict ref = %q, want %q", got, existing.Ref())
	}
	if f.queued(t) != 0 {
		t.Fatalf("failed submit must not queue notifications")
	}
}

func TestAmendOwnerCannotDecide(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	app := testutil.SeedApplication(t, ctx, f.db, `{
		"applicantId": 1, "applicantName": "张三", "year": 2020,
		"scholarship": {"status": {"一等奖学金": "待审核"}, "contents": {"一等奖学金": {"content": "陈述"}}}
	}`)
	owner := int64(1)

	tests := []struct {
		name string
		body string
		want domainagg.ErrorCode
	}{
		{"decide own award", `{"scholarship": {"status": {"一等奖学金": "通过"}}}`, domainagg.CodeUnauthorized},
		{"open track with status", `{"honor": {"status": {"综合优秀奖": "通过"}}}`, domainagg.CodeUnauthorized},
		{"edit contents", `{"scholarship": {"contents": {"一等奖学金": {"content": "新陈述"}}}}`, ""},
		{"name a mentor", `{"mentor": {"status": {"王老师": "待审核"}, "contents": {"statement": "申请"}}}`, ""},
		{"change mentor decision", `{"mentor": {"status": {"王老师": "通过"}}}`, domainagg.CodeUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.agg.Amend(ctx, domainagg.AmendInput{ID: app.ID, Body: testutil.MustBody(t, tt.body), Owner: &owner})
			if tt.want == "" {
				if err != nil {
					t.Fatalf("Amend: %v", err)
				}
				return
			}
			if !domainagg.IsCode(err, tt.want) {
				t.Fatalf("got %v, want %s", err, tt.want)
			}
		})
	}

	stored, _ := f.apps.FindByID(dbctx.From(ctx), app.ID)
	if got, _ := stored.Scholarship.Status.Get("一等奖学金"); got != "待审核" {
		t.Fatalf("applicant changed own decision: %q", got)
	}
	if stored.Honor != nil {
		t.Fatalf("rejected patch was stored: %+v", stored.Honor)
	}

	if _, err := f.agg.Amend(ctx, domainagg.AmendInput{ID: app.ID, Body: testutil.MustBody(t, `{"scholarship": {"status": {"一等奖学金": "通过"}}}`), Caller: "3001"}); err != nil {
		t.Fatalf("reviewer decision: %v", err)
	}
}
