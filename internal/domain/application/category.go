package application

// Category names one of the four independent benefit/mentor tracks.
type Category string

const (
	CategoryHonor        Category = "honor"
	CategoryScholarship  Category = "scholarship"
	CategoryFinancialAid Category = "financialAid"
	CategoryMentor       Category = "mentor"
)

// Categories lists every category in canonical order.
var Categories = []Category{CategoryHonor, CategoryScholarship, CategoryFinancialAid, CategoryMentor}

func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Documentable reports whether letters and e-forms can be produced for c.
func (c Category) Documentable() bool {
	return c == CategoryScholarship || c == CategoryFinancialAid
}

func (c Category) String() string { return string(c) }
