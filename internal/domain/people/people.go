package people

import (
	"encoding/json"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Capability names an authorization granted to a reviewer or teacher.
type Capability string

const (
	CapRead  Capability = "read"
	CapWrite Capability = "write"
	CapAll   Capability = "*"
)

// Student is read for contact details, class and display name.
type Student struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	ExternalID int64     `gorm:"column:external_id;not null;uniqueIndex" json:"id"`
	Name       string    `gorm:"column:name;index" json:"name"`
	Email      string    `gorm:"column:email" json:"email,omitempty"`
	Phone      string    `gorm:"column:phone" json:"phone,omitempty"`
	Class      string    `gorm:"column:class;index" json:"class,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (Student) TableName() string { return "students" }

// Teacher is a mentor. TotalApplications counts mentor applications
// addressed to them.
type Teacher struct {
	ID                uint           `gorm:"primaryKey;autoIncrement" json:"-"`
	ExternalID        int64          `gorm:"column:external_id;not null;uniqueIndex" json:"id"`
	Name              string         `gorm:"column:name;index" json:"name"`
	Email             string         `gorm:"column:email" json:"email,omitempty"`
	TotalApplications int            `gorm:"column:total_applications;not null;default:0" json:"totalApplications"`
	Authorizations    datatypes.JSON `gorm:"column:authorizations;type:json" json:"authorizations,omitempty"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
}

func (Teacher) TableName() string { return "teachers" }

func (t *Teacher) Can(caps ...Capability) bool {
	if t == nil {
		return false
	}
	return hasAll(t.Authorizations, caps)
}

// Reviewer is a department administrator.
type Reviewer struct {
	ID             uint           `gorm:"primaryKey;autoIncrement" json:"-"`
	ExternalID     int64          `gorm:"column:external_id;not null;uniqueIndex" json:"id"`
	Name           string         `gorm:"column:name" json:"name"`
	Authorizations datatypes.JSON `gorm:"column:authorizations;type:json" json:"authorizations,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

func (Reviewer) TableName() string { return "reviewers" }

func (r *Reviewer) Can(caps ...Capability) bool {
	if r == nil {
		return false
	}
	return hasAll(r.Authorizations, caps)
}

// Authorizations encodes a capability list for storage.
func Authorizations(caps ...Capability) datatypes.JSON {
	b, _ := json.Marshal(caps)
	return datatypes.JSON(b)
}

// ParseCapabilities reads a stored list. Entries may be capability names or
// objects mapping capability names to booleans.
func ParseCapabilities(raw datatypes.JSON) map[Capability]bool {
	out := map[Capability]bool{}
	if len(raw) == 0 {
		return out
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		for _, c := range list {
			if c = strings.TrimSpace(strings.ToLower(c)); c != "" {
				out[Capability(c)] = true
			}
		}
		return out
	}
	var flags map[string]bool
	if err := json.Unmarshal(raw, &flags); err == nil {
		for k, v := range flags {
			if v {
				out[Capability(strings.TrimSpace(strings.ToLower(k)))] = true
			}
		}
	}
	return out
}

func hasAll(raw datatypes.JSON, caps []Capability) bool {
	granted := ParseCapabilities(raw)
	if granted[CapAll] {
		return true
	}
	for _, c := range caps {
		if !granted[c] {
			return false
		}
	}
	return true
}
