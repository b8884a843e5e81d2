package services

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/thuee/info-system-backend/internal/data/repos"
	"github.com/thuee/info-system-backend/internal/domain/application"
	"github.com/thuee/info-system-backend/internal/domain/notifications"
	"github.com/thuee/info-system-backend/internal/observability"
	"github.com/thuee/info-system-backend/internal/platform/dbctx"
	"github.com/thuee/info-system-backend/internal/platform/logger"
	"github.com/thuee/info-system-backend/internal/platform/mailer"
)

const notificationTemplatesEnv = "NOTIFY_TEMPLATES_PATH"

//go:embed templates/notifications.yaml templates/email.html
var notificationTemplateFS embed.FS

const (
	templateMentorCreated = "mentor_created"
	templateMentorAmended = "mentor_amended"
)

type yamlNotificationFile struct {
	Version   int                             `yaml:"version"`
	Templates map[string]yamlNotificationCopy `yaml:"templates"`
}

type yamlNotificationCopy struct {
	Subject  string `yaml:"subject"`
	Title    string `yaml:"title"`
	Heading  string `yaml:"heading"`
	Body     string `yaml:"body"`
	Footnote string `yaml:"footnote"`
	Button   string `yaml:"button"`
	Text     string `yaml:"text"`
}

type notificationCopy struct {
	subject, title, heading, body, footnote, button, text *template.Template
}

// mailData feeds both the copy templates and the HTML layout.
type mailData struct {
	Name          string
	ApplicantName string
	Statement     string
	Email         string
	Phone         string
	State         string
	StatusLines   string
	URL           string
}

type emailLayout struct {
	Name      string
	Title     string
	Heading   string
	Preheader string
	BodyLines []string
	Footnote  string
	URL       string
	Button    string
}

// NotificationDispatcher turns an outbox payload into mail. Each event is
// handled independently; a recipient without an email is skipped.
type NotificationDispatcher interface {
	Dispatch(ctx context.Context, p *notifications.Payload) error
}

type notificationDispatcher struct {
	db       *gorm.DB
	log      *logger.Logger
	students repos.StudentRepo
	teachers repos.TeacherRepo
	mail     mailer.Mailer
	metrics  *observability.Metrics
	siteURL  string
	copies   map[string]notificationCopy
	layout   *htmltemplate.Template
}

func NewNotificationDispatcher(
	db *gorm.DB,
	log *logger.Logger,
	students repos.StudentRepo,
	teachers repos.TeacherRepo,
	mail mailer.Mailer,
	metrics *observability.Metrics,
	siteURL string,
) (NotificationDispatcher, error) {
	serviceLog := log.With("service", "NotificationDispatcher")
	copies, layout, err := loadNotificationTemplates()
	if err != nil {
		return nil, fmt.Errorf("load notification templates: %w", err)
	}
	return &notificationDispatcher{
		db:       db,
		log:      serviceLog,
		students: students,
		teachers: teachers,
		mail:     mail,
		metrics:  metrics,
		siteURL:  strings.TrimRight(strings.TrimSpace(siteURL), "/"),
		copies:   copies,
		layout:   layout,
	}, nil
}

func (d *notificationDispatcher) Dispatch(ctx context.Context, p *notifications.Payload) error {
	if p == nil {
		return nil
	}
	var errs []error
	for _, ev := range p.Events {
		outcome, err := d.dispatchEvent(ctx, p, ev)
		d.metrics.IncNotification(string(ev.Category), outcome)
		if err != nil {
			d.log.Warn("Notification failed",
				"application_id", p.ApplicationID,
				"category", ev.Category,
				"error", err,
			)
			errs = append(errs, fmt.Errorf("%s: %w", ev.Category, err))
		}
	}
	return errors.Join(errs...)
}

func (d *notificationDispatcher) dispatchEvent(ctx context.Context, p *notifications.Payload, ev notifications.Event) (string, error) {
	dbc := dbctx.From(ctx)
	student, err := d.students.FindByExternalID(dbc, p.ApplicantID)
	if err != nil {
		return "failed", err
	}

	data := mailData{ApplicantName: p.ApplicantName, URL: d.siteURL}
	if student != nil {
		data.Email = student.Email
		data.Phone = student.Phone
	}

	var (
		key       string
		recipient string
	)
	switch {
	case ev.Category == application.CategoryMentor && p.Kind == notifications.KindCreated:
		teacher, err := d.teachers.FindByName(dbc, ev.MentorName)
		if err != nil {
			return "failed", err
		}
		if teacher == nil || strings.TrimSpace(teacher.Email) == "" {
			d.log.Info("Mentor has no email, notification skipped",
				"application_id", p.ApplicationID,
				"mentor", ev.MentorName,
			)
			return "skipped", nil
		}
		key = templateMentorCreated
		recipient = teacher.Email
		data.Name = teacher.Name
		data.Statement = ev.Statement
	case ev.Category == application.CategoryMentor:
		key = templateMentorAmended
		first, _ := ev.Status.First()
		data.State = first.Value
	default:
		key = string(ev.Category)
		data.StatusLines = "\n" + ev.Status.Lines()
	}

	if key != templateMentorCreated {
		if student == nil || strings.TrimSpace(student.Email) == "" {
			d.log.Info("Applicant has no email, notification skipped",
				"application_id", p.ApplicationID,
				"category", ev.Category,
			)
			return "skipped", nil
		}
		recipient = student.Email
		data.Name = student.Name
	}

	msg, err := d.compose(key, data)
	if err != nil {
		return "failed", err
	}
	msg.To = recipient
	msg.ToName = data.Name
	msg.Category = string(ev.Category)
	if err := d.mail.Send(ctx, msg); err != nil {
		return "failed", err
	}
	d.log.Info("Notification sent",
		"application_id", p.ApplicationID,
		"category", ev.Category,
		"recipient_email", recipient,
	)
	return "sent", nil
}

func (d *notificationDispatcher) compose(key string, data mailData) (mailer.Message, error) {
	c, ok := d.copies[key]
	if !ok {
		return mailer.Message{}, fmt.Errorf("no notification template %q", key)
	}
	var renderErr error
	render := func(t *template.Template) string {
		if t == nil || renderErr != nil {
			return ""
		}
		var buf bytes.Buffer
		if err := t.Execute(&buf, data); err != nil {
			renderErr = err
			return ""
		}
		return buf.String()
	}

	heading := render(c.heading)
	layout := emailLayout{
		Name:      data.Name,
		Title:     render(c.title),
		Heading:   heading,
		Preheader: heading,
		BodyLines: strings.Split(strings.Trim(render(c.body), "\n"), "\n"),
		Footnote:  render(c.footnote),
		URL:       data.URL,
		Button:    render(c.button),
	}
	msg := mailer.Message{
		Subject: render(c.subject),
		Text:    render(c.text),
	}
	if renderErr != nil {
		return mailer.Message{}, renderErr
	}
	var html bytes.Buffer
	if err := d.layout.Execute(&html, layout); err != nil {
		return mailer.Message{}, err
	}
	msg.HTML = html.String()
	return msg, nil
}

func loadNotificationTemplates() (map[string]notificationCopy, *htmltemplate.Template, error) {
	raw, err := readNotificationTemplates()
	if err != nil {
		return nil, nil, err
	}
	var file yamlNotificationFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, nil, err
	}
	required := []string{templateMentorCreated, templateMentorAmended}
	for _, c := range application.Categories {
		if c != application.CategoryMentor {
			required = append(required, string(c))
		}
	}
	copies := make(map[string]notificationCopy, len(file.Templates))
	for _, name := range required {
		y, ok := file.Templates[name]
		if !ok {
			return nil, nil, fmt.Errorf("template %q missing", name)
		}
		c, err := parseNotificationCopy(name, y)
		if err != nil {
			return nil, nil, err
		}
		copies[name] = c
	}

	layoutRaw, err := notificationTemplateFS.ReadFile("templates/email.html")
	if err != nil {
		return nil, nil, err
	}
	layout, err := htmltemplate.New("email").Parse(string(layoutRaw))
	if err != nil {
		return nil, nil, err
	}
	return copies, layout, nil
}

func parseNotificationCopy(name string, y yamlNotificationCopy) (notificationCopy, error) {
	var c notificationCopy
	fields := []struct {
		dst  **template.Template
		part string
		src  string
	}{
		{&c.subject, "subject", y.Subject},
		{&c.title, "title", y.Title},
		{&c.heading, "heading", y.Heading},
		{&c.body, "body", y.Body},
		{&c.footnote, "footnote", y.Footnote},
		{&c.button, "button", y.Button},
		{&c.text, "text", y.Text},
	}
	for _, f := range fields {
		t, err := template.New(name + "." + f.part).Option("missingkey=zero").Parse(f.src)
		if err != nil {
			return c, fmt.Errorf("%s %s template parse: %w", name, f.part, err)
		}
		*f.dst = t
	}
	return c, nil
}

func readNotificationTemplates() ([]byte, error) {
	if path := strings.TrimSpace(os.Getenv(notificationTemplatesEnv)); path != "" {
		return os.ReadFile(path)
	}
	return notificationTemplateFS.ReadFile("templates/notifications.yaml")
}
