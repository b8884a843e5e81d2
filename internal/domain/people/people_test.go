package people

import (
	"testing"

	"gorm.io/datatypes"
)

func TestCapabilities(t *testing.T) {
	cases := []struct {
		name string
		raw  datatypes.JSON
		need []Capability
		want bool
	}{
		{"list grants", Authorizations(CapRead, CapWrite), []Capability{CapRead}, true},
		{"list missing", Authorizations(CapRead), []Capability{CapRead, CapWrite}, false},
		{"object flags", datatypes.JSON(`{"read":true,"write":false}`), []Capability{CapWrite}, false},
		{"object grants", datatypes.JSON(`{"Write":true}`), []Capability{CapWrite}, true},
		{"wildcard", Authorizations(CapAll), []Capability{CapRead, CapWrite}, true},
		{"empty", nil, []Capability{CapRead}, false},
		{"garbage", datatypes.JSON(`42`), []Capability{CapRead}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := &Reviewer{Authorizations: tc.raw}
			if got := r.Can(tc.need...); got != tc.want {
				t.Fatalf("Can(%v)=%v want %v", tc.need, got, tc.want)
			}
		})
	}

	var nilTeacher *Teacher
	if nilTeacher.Can() {
		t.Fatalf("nil teacher must not be authorized")
	}
}
