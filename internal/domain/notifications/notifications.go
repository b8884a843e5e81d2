package notifications

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/thuee/info-system-backend/internal/domain/application"
)

// Kind is the mutation that produced a job.
type Kind string

const (
	KindCreated Kind = "created"
	KindAmended Kind = "amended"
)

const (
	StatusQueued    = "queued"
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Job is an outbox row written in the same transaction as the record it
// describes. The worker claims queued rows and dispatches them once.
type Job struct {
	ID            uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Kind          string         `gorm:"column:kind;not null" json:"kind"`
	ApplicationID uint           `gorm:"column:application_id;not null;index" json:"applicationId"`
	Status        string         `gorm:"column:status;not null;index" json:"status"`
	Attempts      int            `gorm:"column:attempts;not null;default:0" json:"attempts"`
	Payload       datatypes.JSON `gorm:"column:payload;type:json" json:"payload"`
	Error         string         `gorm:"column:error" json:"error,omitempty"`
	LockedAt      *time.Time     `gorm:"column:locked_at" json:"lockedAt,omitempty"`
	CreatedAt     time.Time      `gorm:"index" json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

func (Job) TableName() string { return "notification_jobs" }

// Event is one category notification. Status is a snapshot of the map
// stored after the mutation.
type Event struct {
	Category   application.Category   `json:"category"`
	Status     *application.StatusMap `json:"status,omitempty"`
	MentorName string                 `json:"mentorName,omitempty"`
	Statement  string                 `json:"statement,omitempty"`
}

// Payload is the job body.
type Payload struct {
	Kind          Kind    `json:"kind"`
	ApplicationID uint    `json:"applicationId"`
	ApplicantID   int64   `json:"applicantId"`
	ApplicantName string  `json:"applicantName"`
	Events        []Event `json:"events"`
}

// EventsFor lists, in canonical category order, the notifications owed for
// a mutation of rec carrying body. Only categories whose body included a
// status produce an event, except a created mentor application, which
// always addresses the mentor named in the stored status.
func EventsFor(kind Kind, body *application.Body, rec *application.Application) []Event {
	var out []Event
	for _, c := range body.Present() {
		in := body.Category(c)
		stored := rec.Category(c)
		if stored == nil || stored.Status.Len() == 0 {
			continue
		}
		if c == application.CategoryMentor {
			if kind == KindAmended && in.Status == nil {
				continue
			}
			out = append(out, Event{
				Category:   c,
				Status:     stored.Status.Clone(),
				MentorName: stored.MentorName(),
				Statement:  stored.Statement(),
			})
			continue
		}
		if in.Status == nil {
			continue
		}
		out = append(out, Event{Category: c, Status: stored.Status.Clone()})
	}
	return out
}

// NewJob builds a queued outbox row. It returns nil when no event is owed.
func NewJob(kind Kind, body *application.Body, rec *application.Application) (*Job, error) {
	events := EventsFor(kind, body, rec)
	if len(events) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(Payload{
		Kind:          kind,
		ApplicationID: rec.ID,
		ApplicantID:   rec.ApplicantID,
		ApplicantName: rec.ApplicantName,
		Events:        events,
	})
	if err != nil {
		return nil, err
	}
	return &Job{
		Kind:          string(kind),
		ApplicationID: rec.ID,
		Status:        StatusQueued,
		Payload:       datatypes.JSON(raw),
	}, nil
}

// DecodePayload reads a job body.
func (j *Job) DecodePayload() (*Payload, error) {
	var p Payload
	if err := json.Unmarshal(j.Payload, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
