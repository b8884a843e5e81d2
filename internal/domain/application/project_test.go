package application

import "testing"

func TestProject(t *testing.T) {
	app := &Application{
		ID:            7,
		ApplicantID:   2016011000,
		ApplicantName: "张三",
		Honor:         &SubApplication{Status: NewStatusMap("a", "b")},
		Mentor:        &SubApplication{Status: NewStatusMap("李老师", "待审核")},
	}

	all := Project(app, "")
	if all.Honor == nil || all.Mentor == nil || all.Scholarship != nil {
		t.Fatalf("unexpected full projection %+v", all)
	}

	only := Project(app, CategoryMentor)
	if only.Mentor == nil || only.Honor != nil {
		t.Fatalf("unexpected filtered projection %+v", only)
	}

	missing := Project(app, CategoryScholarship)
	if missing.Scholarship != nil || missing.Honor != nil || missing.Mentor != nil {
		t.Fatalf("absent filtered category must be omitted %+v", missing)
	}
	if missing.ID != 7 || missing.ApplicantID != 2016011000 || missing.ApplicantName != "张三" {
		t.Fatalf("identity fields missing %+v", missing)
	}
}

func TestGrade(t *testing.T) {
	cases := []struct {
		class, grade string
		want         bool
	}{
		{"无61", "6", true},
		{"无51", "6", false},
		{"无6", "6", true},
		{"无", "6", false},
		{"", "", false},
		{"e61", "6", true},
	}
	for _, tc := range cases {
		if got := MatchesGrade(tc.class, tc.grade); got != tc.want {
			t.Fatalf("MatchesGrade(%q,%q)=%v want %v", tc.class, tc.grade, got, tc.want)
		}
	}
}

func TestSubmission(t *testing.T) {
	s, ok := SubmissionOf(map[string]any{"content": " 第一段 \n第二段", "salutation": "尊敬的老师"})
	if !ok || s.Salutation != "尊敬的老师" {
		t.Fatalf("unexpected submission %+v", s)
	}
	p := s.Paragraphs()
	if len(p) != 2 || p[0] != "第一段" || p[1] != "第二段" {
		t.Fatalf("unexpected paragraphs %q", p)
	}
	if _, ok := SubmissionOf(42.0); ok {
		t.Fatalf("numbers are not submissions")
	}
	if c, ok := ParseCategory("financialAid"); !ok || !c.Documentable() {
		t.Fatalf("financialAid should parse and be documentable")
	}
	if _, ok := ParseCategory("notice"); ok {
		t.Fatalf("unexpected category")
	}
}
