package services

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/thuee/info-system-backend/internal/data/repos"
	"github.com/thuee/info-system-backend/internal/domain/people"
	"github.com/thuee/info-system-backend/internal/platform/ctxutil"
	"github.com/thuee/info-system-backend/internal/platform/dbctx"
	"github.com/thuee/info-system-backend/internal/platform/logger"
)

var (
	ErrAccessIDMismatch        = errors.New("access id does not match caller")
	ErrUnknownIdentity         = errors.New("caller is neither reviewer nor teacher")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
)

// AccessService decides whether the caller may run an operation.
type AccessService interface {
	// Authorize returns a context marked for self access when accessID
	// names the caller, or checks the caller's role capabilities otherwise.
	Authorize(ctx context.Context, accessID string, required ...people.Capability) (context.Context, error)
}

type accessService struct {
	log       *logger.Logger
	reviewers repos.ReviewerRepo
	teachers  repos.TeacherRepo
}

func NewAccessService(log *logger.Logger, reviewers repos.ReviewerRepo, teachers repos.TeacherRepo) AccessService {
	return &accessService{
		log:       log.With("service", "AccessService"),
		reviewers: reviewers,
		teachers:  teachers,
	}
}

func (s *accessService) Authorize(ctx context.Context, accessID string, required ...people.Capability) (context.Context, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.CallerID == "" {
		return ctx, ErrTokenRequired
	}
	if accessID = strings.TrimSpace(accessID); accessID != "" {
		if accessID != rd.CallerID {
			return ctx, ErrAccessIDMismatch
		}
		return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{CallerID: rd.CallerID, SelfAccess: true}), nil
	}

	id, err := strconv.ParseInt(rd.CallerID, 10, 64)
	if err != nil {
		return ctx, ErrUnknownIdentity
	}
	dbc := dbctx.From(ctx)
	reviewer, err := s.reviewers.FindByExternalID(dbc, id)
	if err != nil {
		return ctx, err
	}
	teacher, err := s.teachers.FindByExternalID(dbc, id)
	if err != nil {
		return ctx, err
	}
	var allowed bool
	switch {
	case teacher != nil:
		allowed = teacher.Can(required...)
	case reviewer != nil:
		allowed = reviewer.Can(required...)
	default:
		return ctx, ErrUnknownIdentity
	}
	if !allowed {
		s.log.Info("Capability check failed", "caller_id", rd.CallerID, "required", required)
		return ctx, ErrInsufficientPermissions
	}
	return ctx, nil
}

// SelfAccessOwner returns the applicant id a self-access caller is bound to,
// or nil for role-based callers.
func SelfAccessOwner(ctx context.Context) (*int64, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || !rd.SelfAccess {
		return nil, nil
	}
	id, err := strconv.ParseInt(rd.CallerID, 10, 64)
	if err != nil {
		return nil, ErrAccessIDMismatch
	}
	return &id, nil
}
