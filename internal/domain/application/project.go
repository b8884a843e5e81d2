package application

// View is the reduced read model handed to callers.
type View struct {
	ID            uint            `json:"id"`
	ApplicantID   int64           `json:"applicantId"`
	ApplicantName string          `json:"applicantName"`
	Honor         *SubApplication `json:"honor,omitempty"`
	Scholarship   *SubApplication `json:"scholarship,omitempty"`
	FinancialAid  *SubApplication `json:"financialAid,omitempty"`
	Mentor        *SubApplication `json:"mentor,omitempty"`
}

// Project returns the identity fields plus every category, or only filter
// when it is set. A filtered category the record lacks is simply omitted.
func Project(app *Application, filter Category) View {
	v := View{
		ID:            app.ID,
		ApplicantID:   app.ApplicantID,
		ApplicantName: app.ApplicantName,
	}
	for _, c := range Categories {
		if filter != "" && c != filter {
			continue
		}
		v.set(c, app.Category(c))
	}
	return v
}

func (v *View) set(c Category, sub *SubApplication) {
	switch c {
	case CategoryHonor:
		v.Honor = sub
	case CategoryScholarship:
		v.Scholarship = sub
	case CategoryFinancialAid:
		v.FinancialAid = sub
	case CategoryMentor:
		v.Mentor = sub
	}
}

// ListItem is a projected record enriched for listings.
type ListItem struct {
	View
	Year  int    `json:"year"`
	Class string `json:"class,omitempty"`
}
