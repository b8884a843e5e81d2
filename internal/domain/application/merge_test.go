package application

import (
	"encoding/json"
	"testing"
	"time"
)

func decodeBody(t *testing.T, raw string) *Body {
	t.Helper()
	var b Body
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return &b
}

func seedApplication(t *testing.T) *Application {
	t.Helper()
	return New(decodeBody(t, `{
		"applicantId": 2016011000,
		"applicantName": "张三",
		"year": 2019,
		"scholarship": {
			"status": {"drA": "pending", "drB": "approved"},
			"contents": {
				"titleX": {"content": "old x", "salutation": "尊敬的X"},
				"titleY": {"content": "keep y"}
			},
			"attachments": {"titleX": ["x1.pdf"], "titleY": ["y1.pdf"]}
		},
		"honor": {"status": {"学业优秀奖": "申请中"}}
	}`), Stamp{By: "2016011000", At: time.Unix(100, 0)})
}

func TestMergeReplacesStatus(t *testing.T) {
	app := seedApplication(t)
	Merge(app, decodeBody(t, `{"scholarship": {"status": {"drA": "approved"}}}`))

	keys := app.Scholarship.Status.Keys()
	if len(keys) != 1 || keys[0] != "drA" {
		t.Fatalf("expected status replaced by {drA}, got %v", keys)
	}
	if v, _ := app.Scholarship.Status.Get("drA"); v != "approved" {
		t.Fatalf("unexpected drA value %q", v)
	}
	if app.Scholarship.Contents["titleY"] == nil {
		t.Fatalf("contents must survive a status-only patch")
	}
	if app.Honor.Status.Len() != 1 {
		t.Fatalf("untouched category changed")
	}
}

func TestMergeKeepsStatusWhenPatchOmitsIt(t *testing.T) {
	app := seedApplication(t)
	Merge(app, decodeBody(t, `{"scholarship": {"contents": {"titleZ": {"content": "z"}}}}`))
	if app.Scholarship.Status.Len() != 2 {
		t.Fatalf("status without a replacement must be kept, got %v", app.Scholarship.Status.Keys())
	}
}

func TestMergeDeepMergesContents(t *testing.T) {
	app := seedApplication(t)
	Merge(app, decodeBody(t, `{
		"scholarship": {
			"contents": {"titleX": {"content": "new x"}},
			"attachments": {"titleX": ["x2.pdf", "x3.pdf"]}
		}
	}`))

	y, ok := SubmissionOf(app.Scholarship.Contents["titleY"])
	if !ok || y.Content != "keep y" {
		t.Fatalf("titleY not preserved: %+v", app.Scholarship.Contents["titleY"])
	}
	x, _ := SubmissionOf(app.Scholarship.Contents["titleX"])
	if x.Content != "new x" || x.Salutation != "尊敬的X" {
		t.Fatalf("titleX not merged field-wise: %+v", x)
	}
	if got := app.Scholarship.Attachments["titleX"]; len(got) != 2 || got[0] != "x2.pdf" {
		t.Fatalf("attachment list not replaced: %v", got)
	}
	if got := app.Scholarship.Attachments["titleY"]; len(got) != 1 {
		t.Fatalf("titleY attachments not preserved: %v", got)
	}
}

func TestMergePrunesEmptyValues(t *testing.T) {
	app := seedApplication(t)
	Merge(app, decodeBody(t, `{
		"scholarship": {
			"contents": {"titleX": {"content": "", "salutation": ""}, "titleY": {"content": "keep y", "extra": {}}},
			"attachments": {"titleY": []}
		},
		"honor": {"status": {}}
	}`))

	if _, ok := app.Scholarship.Contents["titleX"]; ok {
		t.Fatalf("titleX emptied by patch must be pruned")
	}
	y := app.Scholarship.Contents["titleY"].(map[string]any)
	if _, ok := y["extra"]; ok {
		t.Fatalf("empty object must be pruned")
	}
	if _, ok := app.Scholarship.Attachments["titleY"]; ok {
		t.Fatalf("empty attachment list must be pruned")
	}
	if app.Honor != nil {
		t.Fatalf("category left empty must be dropped, got %+v", app.Honor)
	}
}

func TestMergeNullRemovesKey(t *testing.T) {
	app := seedApplication(t)
	Merge(app, decodeBody(t, `{"scholarship": {"contents": {"titleY": null}}}`))
	if _, ok := app.Scholarship.Contents["titleY"]; ok {
		t.Fatalf("null value must remove the key")
	}
}

func TestMergeTopLevelFields(t *testing.T) {
	app := seedApplication(t)
	Merge(app, decodeBody(t, `{"applicantName": "张三丰", "mentor": {"status": {"李老师": "待审核"}, "contents": {"statement": "hi"}}}`))
	if app.ApplicantName != "张三丰" || app.ApplicantID != 2016011000 || app.Year != 2019 {
		t.Fatalf("unexpected identity fields %+v", app)
	}
	if app.Mentor.MentorName() != "李老师" || app.Mentor.MentorState() != "待审核" || app.Mentor.Statement() != "hi" {
		t.Fatalf("unexpected mentor %+v", app.Mentor)
	}
}

func TestNewDropsNullsAndStamps(t *testing.T) {
	at := time.Unix(200, 0)
	app := New(decodeBody(t, `{"applicantId": 1, "year": 2020, "honor": null, "mentor": {"status": null}}`), Stamp{By: "9", At: at})
	if app.Honor != nil || app.Mentor != nil {
		t.Fatalf("null and empty categories must be absent")
	}
	if app.CreatedBy != "9" || !app.CreatedAt.Equal(at) || !app.UpdatedAt.Equal(at) {
		t.Fatalf("unexpected stamps %+v", app)
	}
}

func TestMergeDoesNotAliasPatch(t *testing.T) {
	app := seedApplication(t)
	patch := decodeBody(t, `{"scholarship": {"status": {"drC": "ok"}, "contents": {"titleW": {"content": "w"}}}}`)
	Merge(app, patch)
	patch.Scholarship.Status.Set("drD", "late")
	patch.Scholarship.Contents["titleW"].(map[string]any)["content"] = "mutated"
	if app.Scholarship.Status.Len() != 1 {
		t.Fatalf("stored status aliased the patch")
	}
	w, _ := SubmissionOf(app.Scholarship.Contents["titleW"])
	if w.Content != "w" {
		t.Fatalf("stored contents aliased the patch")
	}
}
