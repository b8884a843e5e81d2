package aggregates

import (
	"context"
	"time"

	"github.com/thuee/info-system-backend/internal/domain/application"
	"github.com/thuee/info-system-backend/internal/domain/notifications"
)

// SubmitInput creates a record for the (applicant, year) pair carried by Body.
type SubmitInput struct {
	Body   *application.Body
	Caller string
	At     time.Time
	// Owner, when set, restricts the write to that applicant's own record.
	Owner *int64
}

type SubmitResult struct {
	Application *application.Application
	// Job is the queued notification, nil when nothing is owed.
	Job *notifications.Job
}

// AmendInput patches the record with ID. When the record does not exist
// and CreateIfMissing is set, Body is stored as a new record instead.
type AmendInput struct {
	ID              uint
	Body            *application.Body
	Caller          string
	At              time.Time
	Owner           *int64
	CreateIfMissing bool
}

type AmendResult struct {
	Application *application.Application
	Created     bool
	Job         *notifications.Job
}

type DeleteInput struct {
	ID    uint
	Owner *int64
}

// ApplicationAggregate owns every write to an application record.
type ApplicationAggregate interface {
	Aggregate
	Submit(ctx context.Context, in SubmitInput) (SubmitResult, error)
	Amend(ctx context.Context, in AmendInput) (AmendResult, error)
	Delete(ctx context.Context, in DeleteInput) error
}
