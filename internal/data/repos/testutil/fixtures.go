package testutil

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/thuee/info-system-backend/internal/domain/application"
	"github.com/thuee/info-system-backend/internal/domain/people"
)

func SeedStudent(tb testing.TB, ctx context.Context, db *gorm.DB, id int64, name, email, class string) *people.Student {
	tb.Helper()
	s := &people.Student{
		ExternalID: id,
		Name:       name,
		Email:      email,
		Phone:      "13800000000",
		Class:      class,
	}
	if err := db.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed student: %v", err)
	}
	return s
}

func SeedTeacher(tb testing.TB, ctx context.Context, db *gorm.DB, id int64, name, email string, caps ...people.Capability) *people.Teacher {
	tb.Helper()
	t := &people.Teacher{
		ExternalID:     id,
		Name:           name,
		Email:          email,
		Authorizations: people.Authorizations(caps...),
	}
	if err := db.WithContext(ctx).Create(t).Error; err != nil {
		tb.Fatalf("seed teacher: %v", err)
	}
	return t
}

func SeedReviewer(tb testing.TB, ctx context.Context, db *gorm.DB, id int64, name string, caps ...people.Capability) *people.Reviewer {
	tb.Helper()
	r := &people.Reviewer{
		ExternalID:     id,
		Name:           name,
		Authorizations: people.Authorizations(caps...),
	}
	if err := db.WithContext(ctx).Create(r).Error; err != nil {
		tb.Fatalf("seed reviewer: %v", err)
	}
	return r
}

// SeedApplication stores a record built from a JSON body.
func SeedApplication(tb testing.TB, ctx context.Context, db *gorm.DB, raw string) *application.Application {
	tb.Helper()
	body := MustBody(tb, raw)
	app := application.New(body, application.Stamp{By: "seed", At: time.Now().UTC()})
	if err := db.WithContext(ctx).Create(app).Error; err != nil {
		tb.Fatalf("seed application: %v", err)
	}
	return app
}

func MustBody(tb testing.TB, raw string) *application.Body {
	tb.Helper()
	var body application.Body
	if err := json.Unmarshal([]byte(raw), &body); err != nil {
		tb.Fatalf("decode body: %v", err)
	}
	return &body
}
