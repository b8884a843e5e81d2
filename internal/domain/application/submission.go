package application

import (
	"sort"
	"strings"
)

// Submission is the record stored under a contents title.
type Submission struct {
	Content    string
	Salutation string
}

// SubmissionOf reads a contents value. Plain strings are taken as content.
func SubmissionOf(v any) (Submission, bool) {
	switch t := v.(type) {
	case string:
		return Submission{Content: t}, true
	case map[string]any:
		content, _ := t["content"].(string)
		salutation, _ := t["salutation"].(string)
		return Submission{Content: content, Salutation: salutation}, true
	default:
		return Submission{}, false
	}
}

// Paragraphs splits the narrative on newlines and trims each line.
func (s Submission) Paragraphs() []string {
	if s.Content == "" {
		return nil
	}
	lines := strings.Split(s.Content, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return lines
}

// Titles lists content titles in a stable order.
func (s *SubApplication) Titles() []string {
	if s == nil {
		return nil
	}
	titles := make([]string, 0, len(s.Contents))
	for t := range s.Contents {
		titles = append(titles, t)
	}
	sort.Strings(titles)
	return titles
}

// AttachmentTitles lists attachment titles in a stable order.
func (s *SubApplication) AttachmentTitles() []string {
	if s == nil {
		return nil
	}
	titles := make([]string, 0, len(s.Attachments))
	for t := range s.Attachments {
		titles = append(titles, t)
	}
	sort.Strings(titles)
	return titles
}
