package documents

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/thuee/info-system-backend/internal/domain/application"
)

// Letter is the data laid out on one thank-you letter.
type Letter struct {
	Title      string
	Salutation string
	Paragraphs []string
	Department string
	Class      string
	Date       string
}

func newLetter(title string, sub application.Submission, class, department string, now time.Time) Letter {
	return Letter{
		Title:      title + "感谢信",
		Salutation: sub.Salutation,
		Paragraphs: sub.Paragraphs(),
		Department: department,
		Class:      class,
		Date:       formatDate(now),
	}
}

func formatDate(t time.Time) string {
	return fmt.Sprintf("%d年%d月%d日", t.Year(), int(t.Month()), t.Day())
}

// fileName builds "name-id-title[-index].ext".
func fileName(app *application.Application, title string, index int, ext string) string {
	parts := []string{
		sanitize(app.ApplicantName),
		fmt.Sprint(app.ApplicantID),
		sanitize(title),
	}
	if index >= 0 {
		parts = append(parts, fmt.Sprint(index))
	}
	name := strings.Join(parts, "-")
	if ext != "" {
		name += "." + ext
	}
	return name
}

// extOf returns the extension of a stored attachment name without the dot.
func extOf(name string) string {
	return strings.TrimPrefix(path.Ext(name), ".")
}

var unsafeNameChars = strings.NewReplacer(
	"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
	"\"", "_", "<", "_", ">", "_", "|", "_", "\x00", "",
)

func sanitize(s string) string {
	s = strings.TrimSpace(unsafeNameChars.Replace(s))
	if s == "" || s == "." || s == ".." {
		return "_"
	}
	return s
}

// uniqueNames tracks archive entry names and suffixes duplicates.
type uniqueNames map[string]int

func (u uniqueNames) claim(name string) string {
	n := u[name]
	u[name] = n + 1
	if n == 0 {
		return name
	}
	ext := path.Ext(name)
	return fmt.Sprintf("%s(%d)%s", strings.TrimSuffix(name, ext), n+1, ext)
}
