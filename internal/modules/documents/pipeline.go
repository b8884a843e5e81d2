// Package documents produces thank-you letters and attachment exports for
// application categories, one file or a zip archive per grade.
package documents

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/thuee/info-system-backend/internal/data/repos"
	domainagg "github.com/thuee/info-system-backend/internal/domain/aggregates"
	"github.com/thuee/info-system-backend/internal/domain/application"
	"github.com/thuee/info-system-backend/internal/observability"
	"github.com/thuee/info-system-backend/internal/platform/dbctx"
	"github.com/thuee/info-system-backend/internal/platform/filestore"
	"github.com/thuee/info-system-backend/internal/platform/logger"
)

const zipContentType = "application/zip"

// File is a generated download.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

type PipelineDeps struct {
	Log          *logger.Logger
	Applications repos.ApplicationRepo
	Students     repos.StudentRepo
	Files        filestore.Store
	// Renderers are keyed by Format(); Config.Format picks the default.
	Renderers []Renderer
	Metrics   *observability.Metrics
	Config    Config
	// Now defaults to time.Now.
	Now func() time.Time
}

type Pipeline struct {
	log          *logger.Logger
	applications repos.ApplicationRepo
	students     repos.StudentRepo
	files        filestore.Store
	renderers    map[string]Renderer
	metrics      *observability.Metrics
	cfg          Config
	now          func() time.Time
}

func NewPipeline(deps PipelineDeps) *Pipeline {
	p := &Pipeline{
		log:          deps.Log.With("component", "LetterPipeline"),
		applications: deps.Applications,
		students:     deps.Students,
		files:        deps.Files,
		renderers:    make(map[string]Renderer, len(deps.Renderers)),
		metrics:      deps.Metrics,
		cfg:          deps.Config.withDefaults(),
		now:          deps.Now,
	}
	if p.now == nil {
		p.now = time.Now
	}
	for _, r := range deps.Renderers {
		p.renderers[r.Format()] = r
	}
	return p
}

func (p *Pipeline) rendererFor(op, format string) (Renderer, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = p.cfg.Format
	}
	r, ok := p.renderers[format]
	if !ok {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("unsupported letter format %q", format), nil)
	}
	return r, nil
}

// Letter renders the letter stored under contents[title] of one application.
// An empty format selects the configured default.
func (p *Pipeline) Letter(ctx context.Context, id uint, category application.Category, title, format string) (*File, error) {
	const op = "Documents.Letter"
	if err := documentable(op, category); err != nil {
		return nil, err
	}
	renderer, err := p.rendererFor(op, format)
	if err != nil {
		return nil, err
	}
	app, class, err := p.loadOne(ctx, op, id)
	if err != nil {
		return nil, err
	}
	sub := app.Category(category)
	if sub == nil {
		return nil, notFound(op, "category %s missing on application %d", category, id)
	}
	raw, ok := sub.Contents[title]
	if !ok {
		return nil, notFound(op, "content %q missing on application %d", title, id)
	}
	submission, ok := application.SubmissionOf(raw)
	if !ok {
		return nil, notFound(op, "content %q on application %d is not a letter", title, id)
	}

	data, err := p.render(renderer, newLetter(title, submission, class, p.cfg.Department, p.now()))
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	return &File{
		Name:        fileName(app, title, -1, renderer.Ext()),
		ContentType: renderer.ContentType(),
		Data:        data,
	}, nil
}

// LetterArchive renders every letter of category for applicants in grade and
// zips them. Each run works in its own temporary directory, removed on return.
// A letter that fails to render is logged and left out.
func (p *Pipeline) LetterArchive(ctx context.Context, category application.Category, grade, format string) (*File, error) {
	const op = "Documents.LetterArchive"
	if err := documentable(op, category); err != nil {
		return nil, err
	}
	renderer, err := p.rendererFor(op, format)
	if err != nil {
		return nil, err
	}
	kept, err := p.loadGrade(ctx, op, grade)
	if err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp(p.cfg.WorkDir, fmt.Sprintf("letters-%s-%s-*", sanitize(grade), uuid.NewString()))
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			p.log.Warn("Failed to remove letter workdir", "dir", dir, "error", err)
		}
	}()

	type job struct {
		name   string
		letter Letter
	}
	var jobs []job
	names := uniqueNames{}
	now := p.now()
	for _, g := range kept {
		sub := g.app.Category(category)
		for _, title := range sub.Titles() {
			submission, ok := application.SubmissionOf(sub.Contents[title])
			if !ok {
				p.log.Warn("Skipping non-letter content", "application_id", g.app.ID, "title", title)
				continue
			}
			jobs = append(jobs, job{
				name:   names.claim(fileName(g.app, title, -1, renderer.Ext())),
				letter: newLetter(title, submission, g.class, p.cfg.Department, now),
			})
		}
	}

	eg, _ := errgroup.WithContext(ctx)
	eg.SetLimit(p.cfg.Concurrency)
	for _, j := range jobs {
		j := j
		eg.Go(func() error {
			data, err := p.render(renderer, j.letter)
			if err != nil {
				p.log.Warn("Letter render failed, dropped from archive", "file", j.name, "error", err)
				return nil
			}
			if err := os.WriteFile(filepath.Join(dir, j.name), data, 0o600); err != nil {
				p.log.Warn("Letter write failed, dropped from archive", "file", j.name, "error", err)
			}
			return nil
		})
	}
	_ = eg.Wait()

	archive, entries, err := zipDir(dir)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	p.metrics.ObserveArchive("letters", entries)
	p.log.Info("Letter archive built", "category", category, "grade", grade, "letters", entries, "planned", len(jobs))
	return &File{
		Name:        fmt.Sprintf("感谢信-无%s年级.zip", sanitize(grade)),
		ContentType: zipContentType,
		Data:        archive,
	}, nil
}

// Attachment returns the first file uploaded under attachments[title].
func (p *Pipeline) Attachment(ctx context.Context, id uint, category application.Category, title string) (*File, error) {
	const op = "Documents.Attachment"
	if err := documentable(op, category); err != nil {
		return nil, err
	}
	app, _, err := p.loadOne(ctx, op, id)
	if err != nil {
		return nil, err
	}
	sub := app.Category(category)
	if sub == nil || len(sub.Attachments[title]) == 0 {
		return nil, notFound(op, "attachment %q missing on application %d", title, id)
	}
	stored := sub.Attachments[title][0]
	data, err := filestore.ReadAll(ctx, p.files, stored)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	return &File{
		Name:        fileName(app, title, -1, extOf(stored)),
		ContentType: "application/octet-stream",
		Data:        data,
	}, nil
}

// AttachmentArchive zips every attachment of category for applicants in
// grade. Unreadable files are logged and left out.
func (p *Pipeline) AttachmentArchive(ctx context.Context, category application.Category, grade string) (*File, error) {
	const op = "Documents.AttachmentArchive"
	if err := documentable(op, category); err != nil {
		return nil, err
	}
	kept, err := p.loadGrade(ctx, op, grade)
	if err != nil {
		return nil, err
	}

	type entry struct {
		name   string
		stored string
		data   []byte
	}
	var entries []*entry
	names := uniqueNames{}
	for _, g := range kept {
		sub := g.app.Category(category)
		for _, title := range sub.AttachmentTitles() {
			for i, stored := range sub.Attachments[title] {
				entries = append(entries, &entry{
					name:   names.claim(fileName(g.app, title, i, extOf(stored))),
					stored: stored,
				})
			}
		}
	}

	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(p.cfg.Concurrency)
	for _, e := range entries {
		e := e
		eg.Go(func() error {
			data, err := filestore.ReadAll(egctx, p.files, e.stored)
			if err != nil {
				p.log.Warn("Attachment unreadable, dropped from archive", "file", e.stored, "error", err)
				return nil
			}
			e.data = data
			return nil
		})
	}
	_ = eg.Wait()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	written := 0
	for _, e := range entries {
		if e.data == nil {
			continue
		}
		w, err := zw.Create(e.name)
		if err != nil {
			return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
		}
		if _, err := w.Write(e.data); err != nil {
			return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
		}
		written++
	}
	if err := zw.Close(); err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	p.metrics.ObserveArchive("attachments", written)
	p.log.Info("Attachment archive built", "category", category, "grade", grade, "files", written, "planned", len(entries))
	return &File{
		Name:        fmt.Sprintf("电子表格-无%s年级.zip", sanitize(grade)),
		ContentType: zipContentType,
		Data:        buf.Bytes(),
	}, nil
}

func (p *Pipeline) render(r Renderer, l Letter) ([]byte, error) {
	data, err := r.Render(l)
	outcome := "success"
	if err != nil {
		outcome = "failed"
	}
	p.metrics.IncDocumentRender(r.Format(), outcome)
	return data, err
}

type graded struct {
	app   *application.Application
	class string
}

func (p *Pipeline) loadOne(ctx context.Context, op string, id uint) (*application.Application, string, error) {
	dbc := dbctx.From(ctx)
	app, err := p.applications.FindByID(dbc, id)
	if err != nil {
		return nil, "", domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	if app == nil {
		return nil, "", notFound(op, "application not found: %d", id)
	}
	student, err := p.students.FindByExternalID(dbc, app.ApplicantID)
	if err != nil {
		return nil, "", domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	class := ""
	if student != nil {
		class = student.Class
	}
	return app, class, nil
}

// loadGrade returns every application whose applicant's class is in grade,
// ordered by id. Applicants without a student record are excluded.
func (p *Pipeline) loadGrade(ctx context.Context, op string, grade string) ([]graded, error) {
	dbc := dbctx.From(ctx)
	apps, err := p.applications.Find(dbc, repos.ApplicationFilter{}, 0, 0)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	ids := make([]int64, 0, len(apps))
	for _, app := range apps {
		ids = append(ids, app.ApplicantID)
	}
	students, err := p.students.FindByExternalIDs(dbc, ids)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
	var out []graded
	for _, app := range apps {
		st := students[app.ApplicantID]
		if st == nil || !application.MatchesGrade(st.Class, grade) {
			continue
		}
		out = append(out, graded{app: app, class: st.Class})
	}
	return out, nil
}

// zipDir archives the regular files of dir in name order.
func zipDir(dir string) ([]byte, int, error) {
	items, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0, err
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name() < items[j].Name() })

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	n := 0
	for _, it := range items {
		if !it.Type().IsRegular() {
			continue
		}
		if err := copyInto(zw, filepath.Join(dir, it.Name()), it.Name()); err != nil {
			return nil, 0, err
		}
		n++
	}
	if err := zw.Close(); err != nil {
		return nil, 0, err
	}
	return buf.Bytes(), n, nil
}

func copyInto(zw *zip.Writer, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, f)
	return err
}

func documentable(op string, c application.Category) error {
	if !c.Documentable() {
		return domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("category %q has no documents", c), nil)
	}
	return nil
}

func notFound(op, format string, args ...any) error {
	return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf(format, args...), nil)
}
