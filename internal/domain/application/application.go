package application

import (
	"strconv"
	"time"
)

// SubApplication is one category track of an application.
type SubApplication struct {
	Status      *StatusMap          `json:"status,omitempty"`
	Contents    map[string]any      `json:"contents,omitempty"`
	Attachments map[string][]string `json:"attachments,omitempty"`
}

func (s *SubApplication) empty() bool {
	return s == nil || (s.Status.Len() == 0 && len(s.Contents) == 0 && len(s.Attachments) == 0)
}

// Application is one applicant's record for one year across all categories.
type Application struct {
	ID            uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	ApplicantID   int64           `gorm:"column:applicant_id;not null;uniqueIndex:idx_applications_applicant_year" json:"applicantId"`
	ApplicantName string          `gorm:"column:applicant_name;index" json:"applicantName"`
	Year          int             `gorm:"column:year;not null;uniqueIndex:idx_applications_applicant_year" json:"year"`
	Honor         *SubApplication `gorm:"column:honor;type:json;serializer:json" json:"honor,omitempty"`
	Scholarship   *SubApplication `gorm:"column:scholarship;type:json;serializer:json" json:"scholarship,omitempty"`
	FinancialAid  *SubApplication `gorm:"column:financial_aid;type:json;serializer:json" json:"financialAid,omitempty"`
	Mentor        *SubApplication `gorm:"column:mentor;type:json;serializer:json" json:"mentor,omitempty"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime:false" json:"createdAt"`
	CreatedBy     string          `gorm:"column:created_by" json:"createdBy"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime:false" json:"updatedAt"`
	UpdatedBy     string          `gorm:"column:updated_by" json:"updatedBy"`
}

func (Application) TableName() string { return "applications" }

// Ref is the identifier used in Location headers.
func (a *Application) Ref() string {
	return strconv.FormatUint(uint64(a.ID), 10)
}

func (a *Application) Category(c Category) *SubApplication {
	switch c {
	case CategoryHonor:
		return a.Honor
	case CategoryScholarship:
		return a.Scholarship
	case CategoryFinancialAid:
		return a.FinancialAid
	case CategoryMentor:
		return a.Mentor
	}
	return nil
}

func (a *Application) SetCategory(c Category, sub *SubApplication) {
	switch c {
	case CategoryHonor:
		a.Honor = sub
	case CategoryScholarship:
		a.Scholarship = sub
	case CategoryFinancialAid:
		a.FinancialAid = sub
	case CategoryMentor:
		a.Mentor = sub
	}
}

// Body is a submitted document or a partial patch. Absent and null fields
// decode to nil.
type Body struct {
	ApplicantID   *int64          `json:"applicantId,omitempty"`
	ApplicantName *string         `json:"applicantName,omitempty"`
	Year          *int            `json:"year,omitempty"`
	Honor         *SubApplication `json:"honor,omitempty"`
	Scholarship   *SubApplication `json:"scholarship,omitempty"`
	FinancialAid  *SubApplication `json:"financialAid,omitempty"`
	Mentor        *SubApplication `json:"mentor,omitempty"`
}

func (b *Body) Category(c Category) *SubApplication {
	if b == nil {
		return nil
	}
	switch c {
	case CategoryHonor:
		return b.Honor
	case CategoryScholarship:
		return b.Scholarship
	case CategoryFinancialAid:
		return b.FinancialAid
	case CategoryMentor:
		return b.Mentor
	}
	return nil
}

// Present lists the categories carried by the body in canonical order.
func (b *Body) Present() []Category {
	var out []Category
	for _, c := range Categories {
		if b.Category(c) != nil {
			out = append(out, c)
		}
	}
	return out
}

// MentorName is the single key of the mentor status map.
func (s *SubApplication) MentorName() string {
	if s == nil {
		return ""
	}
	first, _ := s.Status.First()
	return first.Key
}

// MentorState is the value paired with the mentor's name.
func (s *SubApplication) MentorState() string {
	if s == nil {
		return ""
	}
	first, _ := s.Status.First()
	return first.Value
}

// Statement is the mentor application narrative.
func (s *SubApplication) Statement() string {
	if s == nil {
		return ""
	}
	v, _ := s.Contents["statement"].(string)
	return v
}
