package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	domainagg "github.com/thuee/info-system-backend/internal/domain/aggregates"
	"github.com/thuee/info-system-backend/internal/domain/application"
	"github.com/thuee/info-system-backend/internal/http/response"
	"github.com/thuee/info-system-backend/internal/modules/documents"
)

// DocumentHandler serves thank-you letters and attachment exports. Both
// take type plus either grade for an archive or title and id for one file.
type DocumentHandler struct {
	docs *documents.Pipeline
}

func NewDocumentHandler(docs *documents.Pipeline) *DocumentHandler {
	return &DocumentHandler{docs: docs}
}

type documentQuery struct {
	category application.Category
	grade    string
	title    string
	id       uint
}

func parseDocumentQuery(c *gin.Context) (documentQuery, bool) {
	var q documentQuery
	category, ok := application.ParseCategory(strings.TrimSpace(c.Query("type")))
	if !ok || !category.Documentable() {
		return q, false
	}
	q.category = category
	if q.grade = strings.TrimSpace(c.Query("grade")); q.grade != "" {
		return q, true
	}
	q.title = strings.TrimSpace(c.Query("title"))
	id, err := strconv.ParseUint(strings.TrimSpace(c.Query("id")), 10, 64)
	if q.title == "" || err != nil || id == 0 {
		return q, false
	}
	q.id = uint(id)
	return q, true
}

// GET /thank-letters
func (h *DocumentHandler) ThankLetters(c *gin.Context) {
	format := c.Query("format")
	h.serve(c,
		func(ctx context.Context, q documentQuery) (*documents.File, error) {
			return h.docs.LetterArchive(ctx, q.category, q.grade, format)
		},
		func(ctx context.Context, q documentQuery) (*documents.File, error) {
			return h.docs.Letter(ctx, q.id, q.category, q.title, format)
		},
	)
}

// GET /e-forms
func (h *DocumentHandler) EForms(c *gin.Context) {
	h.serve(c,
		func(ctx context.Context, q documentQuery) (*documents.File, error) {
			return h.docs.AttachmentArchive(ctx, q.category, q.grade)
		},
		func(ctx context.Context, q documentQuery) (*documents.File, error) {
			return h.docs.Attachment(ctx, q.id, q.category, q.title)
		},
	)
}

type documentFunc func(ctx context.Context, q documentQuery) (*documents.File, error)

func (h *DocumentHandler) serve(c *gin.Context, batch, single documentFunc) {
	q, ok := parseDocumentQuery(c)
	if !ok {
		response.Text(c, http.StatusUnprocessableEntity, response.TextMissingQueries)
		return
	}
	run := single
	if q.grade != "" {
		run = batch
	}
	file, err := run(c.Request.Context(), q)
	if domainagg.IsCode(err, domainagg.CodeValidation) {
		response.Text(c, http.StatusUnprocessableEntity, response.TextMissingQueries)
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, file.Name, file.ContentType, file.Data)
}
