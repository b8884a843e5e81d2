package application

// GradeOf extracts the grade digit from a class label such as "无61",
// where the second character encodes the entry year.
func GradeOf(class string) string {
	r := []rune(class)
	if len(r) < 2 {
		return ""
	}
	return string(r[1])
}

// MatchesGrade reports whether class belongs to grade.
func MatchesGrade(class, grade string) bool {
	g := GradeOf(class)
	return g != "" && g == grade
}
