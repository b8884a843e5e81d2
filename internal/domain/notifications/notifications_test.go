package notifications

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/thuee/info-system-backend/internal/domain/application"
)

func body(t *testing.T, raw string) *application.Body {
	t.Helper()
	var b application.Body
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return &b
}

func TestEventsForCreate(t *testing.T) {
	b := body(t, `{
		"applicantId": 1, "applicantName": "张三", "year": 2020,
		"mentor": {"status": {"李老师": "待审核"}, "contents": {"statement": "想跟随李老师"}},
		"honor": {"status": {"学业优秀": "申请中"}},
		"scholarship": {"contents": {"t": {"content": "c"}}}
	}`)
	rec := application.New(b, application.Stamp{By: "1", At: time.Now()})

	events := EventsFor(KindCreated, b, rec)
	if len(events) != 2 {
		t.Fatalf("expected honor and mentor events, got %+v", events)
	}
	if events[0].Category != application.CategoryHonor || events[1].Category != application.CategoryMentor {
		t.Fatalf("events out of canonical order: %+v", events)
	}
	if events[1].MentorName != "李老师" || events[1].Statement != "想跟随李老师" {
		t.Fatalf("unexpected mentor event %+v", events[1])
	}
}

func TestEventsForAmend(t *testing.T) {
	rec := application.New(body(t, `{
		"applicantId": 1, "year": 2020,
		"mentor": {"status": {"李老师": "待审核"}},
		"financialAid": {"status": {"助学金A": "待定", "助学金B": "待定"}}
	}`), application.Stamp{At: time.Now()})

	patch := body(t, `{"mentor": {"contents": {"statement": "补充"}}, "financialAid": {"status": {"助学金A": "通过"}}}`)
	application.Merge(rec, patch)

	events := EventsFor(KindAmended, patch, rec)
	if len(events) != 1 || events[0].Category != application.CategoryFinancialAid {
		t.Fatalf("expected a single financialAid event, got %+v", events)
	}
	if events[0].Status.Lines() != "助学金A：通过\n" {
		t.Fatalf("unexpected status snapshot %q", events[0].Status.Lines())
	}

	job, err := NewJob(KindAmended, patch, rec)
	if err != nil || job == nil {
		t.Fatalf("NewJob: job=%v err=%v", job, err)
	}
	p, err := job.DecodePayload()
	if err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	if p.Kind != KindAmended || len(p.Events) != 1 || p.Events[0].Status.Len() != 1 {
		t.Fatalf("unexpected payload %+v", p)
	}

	if job, _ := NewJob(KindAmended, body(t, `{"honor": {"contents": {"x": "y"}}}`), rec); job != nil {
		t.Fatalf("expected no job for a contents-only patch")
	}
}
