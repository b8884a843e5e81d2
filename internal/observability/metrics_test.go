package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestWritePrometheus(t *testing.T) {
	m := NewMetrics()
	m.ObserveAPI("POST", "/applications", "201", 30*time.Millisecond)
	m.IncNotification("scholarship", "sent")
	m.IncNotification("scholarship", "sent")
	m.IncNotification("mentor", "skipped")
	m.IncDocumentRender("docx", "ok")
	m.ObserveArchive("letters", 3)

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()
	want := []string{
		`info_api_requests_total{method="POST",route="/applications",status="201"} 1.000000`,
		`info_notifications_total{category="scholarship",outcome="sent"} 2.000000`,
		`info_notifications_total{category="mentor",outcome="skipped"} 1.000000`,
		`info_document_renders_total{format="docx",outcome="ok"} 1.000000`,
		`info_document_archive_entries_bucket{kind="letters",le="5"} 1`,
		"# TYPE info_api_request_duration_seconds histogram",
	}
	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Fatalf("missing %q in output:\n%s", w, out)
		}
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/", "200", time.Millisecond)
	m.IncNotification("honor", "failed")
	m.IncWorkerJob("failed")
	m.ApiInflightInc()
	if err := m.WritePrometheus(&bytes.Buffer{}); err != nil {
		t.Fatalf("nil WritePrometheus: %v", err)
	}
}

func TestLabelEscaping(t *testing.T) {
	got := labelString([]string{"title"}, []string{"a\"b\\c\nd"})
	if got != `{title="a\"b\\c\nd"}` {
		t.Fatalf("unexpected label string %s", got)
	}
	if withLe("", "1") != `{le="1"}` {
		t.Fatalf("unexpected withLe for empty labels")
	}
}
