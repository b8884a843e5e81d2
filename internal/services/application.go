package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/thuee/info-system-backend/internal/data/repos"
	domainagg "github.com/thuee/info-system-backend/internal/domain/aggregates"
	"github.com/thuee/info-system-backend/internal/domain/application"
	"github.com/thuee/info-system-backend/internal/platform/ctxutil"
	"github.com/thuee/info-system-backend/internal/platform/dbctx"
	"github.com/thuee/info-system-backend/internal/platform/logger"
)

// AmendMissingPolicy decides what an amendment of an unknown id does.
type AmendMissingPolicy string

const (
	// AmendMissingUpsert stores the patch as a new record.
	AmendMissingUpsert AmendMissingPolicy = "upsert"
	// AmendMissingStrict reports the record as not found.
	AmendMissingStrict AmendMissingPolicy = "strict"
)

func ParseAmendMissingPolicy(s string) (AmendMissingPolicy, bool) {
	switch AmendMissingPolicy(s) {
	case AmendMissingUpsert, AmendMissingStrict:
		return AmendMissingPolicy(s), true
	}
	return "", false
}

// Kicker wakes the notification worker after a job was queued.
type Kicker interface {
	Kick()
}

// ListQuery holds the listing filters. Begin is 1-based, End inclusive;
// End <= 0 means unbounded.
type ListQuery struct {
	ApplicantID     *int64
	ApplicantName   string
	Year            *int
	Begin           int
	End             int
	ApplicationType application.Category
	TeacherName     string
	ApplicantGrade  string
}

type ApplicationService interface {
	Submit(ctx context.Context, body *application.Body) (*application.Application, error)
	// Amend returns created=true when the policy stored the patch as a new record.
	Amend(ctx context.Context, id uint, body *application.Body) (app *application.Application, created bool, err error)
	Get(ctx context.Context, id uint, filter application.Category) (*application.View, error)
	List(ctx context.Context, q ListQuery) ([]application.ListItem, error)
	Delete(ctx context.Context, id uint) error
}

type applicationService struct {
	db           *gorm.DB
	log          *logger.Logger
	aggregate    domainagg.ApplicationAggregate
	applications repos.ApplicationRepo
	students     repos.StudentRepo
	kicker       Kicker
	policy       AmendMissingPolicy
	now          func() time.Time
}

func NewApplicationService(
	db *gorm.DB,
	log *logger.Logger,
	aggregate domainagg.ApplicationAggregate,
	applications repos.ApplicationRepo,
	students repos.StudentRepo,
	kicker Kicker,
	policy AmendMissingPolicy,
) ApplicationService {
	if policy == "" {
		policy = AmendMissingUpsert
	}
	return &applicationService{
		db:           db,
		log:          log.With("service", "ApplicationService"),
		aggregate:    aggregate,
		applications: applications,
		students:     students,
		kicker:       kicker,
		policy:       policy,
		now:          time.Now,
	}
}

func (s *applicationService) Submit(ctx context.Context, body *application.Body) (*application.Application, error) {
	owner, err := ownerOf(ctx, "Benefits.Application.Submit")
	if err != nil {
		return nil, err
	}
	res, err := s.aggregate.Submit(ctx, domainagg.SubmitInput{
		Body:   body,
		Caller: ctxutil.CallerID(ctx),
		At:     s.now(),
		Owner:  owner,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Application submitted",
		"application_id", res.Application.ID,
		"applicant_id", res.Application.ApplicantID,
		"caller_id", ctxutil.CallerID(ctx),
	)
	if res.Job != nil {
		s.kick()
	}
	return res.Application, nil
}

func (s *applicationService) Amend(ctx context.Context, id uint, body *application.Body) (*application.Application, bool, error) {
	owner, err := ownerOf(ctx, "Benefits.Application.Amend")
	if err != nil {
		return nil, false, err
	}
	res, err := s.aggregate.Amend(ctx, domainagg.AmendInput{
		ID:              id,
		Body:            body,
		Caller:          ctxutil.CallerID(ctx),
		At:              s.now(),
		Owner:           owner,
		CreateIfMissing: s.policy == AmendMissingUpsert,
	})
	if err != nil {
		return nil, false, err
	}
	s.log.Info("Application amended",
		"application_id", res.Application.ID,
		"created", res.Created,
		"caller_id", ctxutil.CallerID(ctx),
	)
	if res.Job != nil {
		s.kick()
	}
	return res.Application, res.Created, nil
}

func (s *applicationService) Get(ctx context.Context, id uint, filter application.Category) (*application.View, error) {
	const op = "Benefits.Application.Get"
	owner, err := ownerOf(ctx, op)
	if err != nil {
		return nil, err
	}
	app, err := s.applications.FindByID(dbctx.From(ctx), id)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	if app == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("application not found: %d", id), nil)
	}
	if owner != nil && app.ApplicantID != *owner {
		return nil, domainagg.NewError(domainagg.CodeUnauthorized, op, "application belongs to another applicant", nil)
	}
	view := application.Project(app, filter)
	return &view, nil
}

func (s *applicationService) List(ctx context.Context, q ListQuery) ([]application.ListItem, error) {
	const op = "Benefits.Application.List"
	owner, err := ownerOf(ctx, op)
	if err != nil {
		return nil, err
	}
	filter := repos.ApplicationFilter{
		ApplicantID:   q.ApplicantID,
		ApplicantName: q.ApplicantName,
		Year:          q.Year,
	}
	if owner != nil {
		filter.ApplicantID = owner
	}

	begin := q.Begin
	if begin < 1 {
		begin = 1
	}
	limit := 0
	if q.End > 0 {
		limit = q.End - begin + 1
		if limit <= 0 {
			return []application.ListItem{}, nil
		}
	}

	dbc := dbctx.From(ctx)
	apps, err := s.applications.Find(dbc, filter, begin-1, limit)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	ids := make([]int64, 0, len(apps))
	for _, app := range apps {
		ids = append(ids, app.ApplicantID)
	}
	students, err := s.students.FindByExternalIDs(dbc, ids)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}

	out := make([]application.ListItem, 0, len(apps))
	for _, app := range apps {
		if q.ApplicationType != "" && app.Category(q.ApplicationType) == nil {
			continue
		}
		if q.TeacherName != "" && app.Mentor.MentorName() != q.TeacherName {
			continue
		}
		item := application.ListItem{View: application.Project(app, q.ApplicationType), Year: app.Year}
		if st := students[app.ApplicantID]; st != nil {
			item.Class = st.Class
		}
		if q.ApplicantGrade != "" && !application.MatchesGrade(item.Class, q.ApplicantGrade) {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *applicationService) Delete(ctx context.Context, id uint) error {
	owner, err := ownerOf(ctx, "Benefits.Application.Delete")
	if err != nil {
		return err
	}
	if err := s.aggregate.Delete(ctx, domainagg.DeleteInput{ID: id, Owner: owner}); err != nil {
		return err
	}
	s.log.Info("Application deleted", "application_id", id, "caller_id", ctxutil.CallerID(ctx))
	return nil
}

func (s *applicationService) kick() {
	if s.kicker != nil {
		s.kicker.Kick()
	}
}

func ownerOf(ctx context.Context, op string) (*int64, error) {
	owner, err := SelfAccessOwner(ctx)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeUnauthorized, op, err)
	}
	return owner, nil
}
