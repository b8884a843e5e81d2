package aggregates

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/thuee/info-system-backend/internal/data/repos"
	domainagg "github.com/thuee/info-system-backend/internal/domain/aggregates"
	"github.com/thuee/info-system-backend/internal/domain/application"
	"github.com/thuee/info-system-backend/internal/domain/notifications"
	"github.com/thuee/info-system-backend/internal/platform/dbctx"
)

type ApplicationAggregateDeps struct {
	Base BaseDeps

	Applications repos.ApplicationRepo
	Teachers     repos.TeacherRepo
	Jobs         repos.NotificationJobRepo
}

type applicationAggregate struct {
	deps ApplicationAggregateDeps
}

func NewApplicationAggregate(deps ApplicationAggregateDeps) domainagg.ApplicationAggregate {
	deps.Base = deps.Base.withDefaults()
	return &applicationAggregate{deps: deps}
}

func (a *applicationAggregate) Contract() domainagg.Contract {
	return domainagg.ApplicationAggregateContract
}

func (a *applicationAggregate) configured() bool {
	return a.deps.Applications != nil && a.deps.Teachers != nil && a.deps.Jobs != nil
}

func (a *applicationAggregate) Submit(ctx context.Context, in domainagg.SubmitInput) (domainagg.SubmitResult, error) {
	const op = "Benefits.Application.Submit"
	var out domainagg.SubmitResult
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "application aggregate repos not configured", nil)
	}
	if err := requireIdentity(op, in.Body, in.Owner); err != nil {
		return out, err
	}
	stamp := stampOf(in.Caller, in.At)

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		app, err := a.create(dbc, op, in.Body, stamp)
		if err != nil {
			return err
		}
		if err := a.countMentorApplication(dbc, app); err != nil {
			return err
		}
		job, err := a.enqueue(dbc, notifications.KindCreated, in.Body, app)
		if err != nil {
			return err
		}
		out.Application = app
		out.Job = job
		return nil
	})
	if err != nil {
		return domainagg.SubmitResult{}, a.withExistingRef(ctx, err, in.Body)
	}
	return out, nil
}

func (a *applicationAggregate) Amend(ctx context.Context, in domainagg.AmendInput) (domainagg.AmendResult, error) {
	const op = "Benefits.Application.Amend"
	var out domainagg.AmendResult
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "application aggregate repos not configured", nil)
	}
	if in.Body == nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing body", nil)
	}
	stamp := stampOf(in.Caller, in.At)

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		app, err := a.deps.Applications.FindByID(dbc, in.ID)
		if err != nil {
			return err
		}
		if app == nil {
			if !in.CreateIfMissing {
				return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("application not found: %d", in.ID), nil)
			}
			// The body becomes the whole record. Counters and
			// notifications belong to submissions only.
			if err := requireIdentity(op, in.Body, in.Owner); err != nil {
				return err
			}
			created, err := a.create(dbc, op, in.Body, stamp)
			if err != nil {
				return err
			}
			a.deps.Base.Log.Info("Amend target missing, stored body as new application",
				"requested_id", in.ID,
				"application_id", created.ID,
			)
			out.Application = created
			out.Created = true
			return nil
		}
		if in.Owner != nil && app.ApplicantID != *in.Owner {
			return domainagg.NewError(domainagg.CodeUnauthorized, op, "application belongs to another applicant", nil)
		}
		if in.Owner != nil {
			if err := ownerMayPatch(op, app, in.Body); err != nil {
				return err
			}
		}

		application.Merge(app, in.Body)
		if in.Owner != nil && app.ApplicantID != *in.Owner {
			return domainagg.NewError(domainagg.CodeUnauthorized, op, "cannot move application to another applicant", nil)
		}
		app.UpdatedAt = stamp.At
		app.UpdatedBy = stamp.By
		if err := a.deps.Applications.Save(dbc, app); err != nil {
			return err
		}
		job, err := a.enqueue(dbc, notifications.KindAmended, in.Body, app)
		if err != nil {
			return err
		}
		out.Application = app
		out.Job = job
		return nil
	})
	if err != nil {
		return domainagg.AmendResult{}, a.withExistingRef(ctx, err, in.Body)
	}
	return out, nil
}

func (a *applicationAggregate) Delete(ctx context.Context, in domainagg.DeleteInput) error {
	const op = "Benefits.Application.Delete"
	if !a.configured() {
		return domainagg.NewError(domainagg.CodeInternal, op, "application aggregate repos not configured", nil)
	}
	return executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		app, err := a.deps.Applications.FindByID(dbc, in.ID)
		if err != nil {
			return err
		}
		if app == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("application not found: %d", in.ID), nil)
		}
		if in.Owner != nil && app.ApplicantID != *in.Owner {
			return domainagg.NewError(domainagg.CodeUnauthorized, op, "application belongs to another applicant", nil)
		}
		deleted, err := a.deps.Applications.DeleteByID(dbc, in.ID)
		if err != nil {
			return err
		}
		if !deleted {
			return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("application not found: %d", in.ID), nil)
		}
		return nil
	})
}

// create stores body as a new record after checking (applicant, year)
// uniqueness. A clash reports the existing record.
func (a *applicationAggregate) create(dbc dbctx.Context, op string, body *application.Body, stamp application.Stamp) (*application.Application, error) {
	existing, err := a.deps.Applications.FindByApplicantYear(dbc, *body.ApplicantID, *body.Year)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domainagg.ConflictWithRef(op, "application already exists", existing.Ref())
	}
	app := application.New(body, stamp)
	if err := a.deps.Applications.Create(dbc, app); err != nil {
		return nil, err
	}
	return app, nil
}

// withExistingRef points a conflict raised by the unique index at the record
// that won the race. The lookup runs outside the failed transaction.
func (a *applicationAggregate) withExistingRef(ctx context.Context, err error, body *application.Body) error {
	var aggErr *domainagg.Error
	if !errors.As(err, &aggErr) || aggErr.Code != domainagg.CodeConflict || aggErr.Ref != "" {
		return err
	}
	if body == nil || body.ApplicantID == nil || body.Year == nil {
		return err
	}
	existing, lookupErr := a.deps.Applications.FindByApplicantYear(dbctx.From(ctx), *body.ApplicantID, *body.Year)
	if lookupErr != nil || existing == nil {
		a.deps.Base.Log.Warn("Conflicting application not found after unique violation",
			"applicant_id", *body.ApplicantID,
			"year", *body.Year,
			"error", lookupErr,
		)
		return err
	}
	withRef := *aggErr
	withRef.Ref = existing.Ref()
	return &withRef
}

// ownerMayPatch keeps decisions with reviewers and teachers. An applicant
// may only name a mentor in the status of a mentor track not yet on file.
func ownerMayPatch(op string, app *application.Application, body *application.Body) error {
	for _, c := range body.Present() {
		if body.Category(c).Status == nil {
			continue
		}
		if c == application.CategoryMentor && app.Mentor == nil {
			continue
		}
		return domainagg.NewError(domainagg.CodeUnauthorized, op, fmt.Sprintf("%s status is set by reviewers", c), nil)
	}
	return nil
}

// countMentorApplication credits the named mentor once per created mentor
// application. An unknown mentor is logged and skipped.
func (a *applicationAggregate) countMentorApplication(dbc dbctx.Context, app *application.Application) error {
	name := app.Mentor.MentorName()
	if name == "" {
		return nil
	}
	teacher, err := a.deps.Teachers.FindByName(dbc, name)
	if err != nil {
		return err
	}
	if teacher == nil {
		a.deps.Base.Log.Warn("Mentor not found, counter unchanged",
			"application_id", app.ID,
			"mentor", name,
		)
		return nil
	}
	return a.deps.Teachers.IncrementTotalApplications(dbc, teacher.ID)
}

func (a *applicationAggregate) enqueue(dbc dbctx.Context, kind notifications.Kind, body *application.Body, app *application.Application) (*notifications.Job, error) {
	job, err := notifications.NewJob(kind, body, app)
	if err != nil || job == nil {
		return nil, err
	}
	if err := a.deps.Jobs.Enqueue(dbc, job); err != nil {
		return nil, err
	}
	return job, nil
}

func requireIdentity(op string, body *application.Body, owner *int64) error {
	if body == nil {
		return domainagg.NewError(domainagg.CodeValidation, op, "missing body", nil)
	}
	if body.ApplicantID == nil || body.Year == nil {
		return domainagg.NewError(domainagg.CodeValidation, op, "applicantId and year are required", nil)
	}
	if owner != nil && *body.ApplicantID != *owner {
		return domainagg.NewError(domainagg.CodeUnauthorized, op, "cannot submit for another applicant", nil)
	}
	return nil
}

func stampOf(caller string, at time.Time) application.Stamp {
	if at.IsZero() {
		at = time.Now()
	}
	return application.Stamp{By: caller, At: at.UTC()}
}
