package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/thuee/info-system-backend/internal/domain/application"
	"github.com/thuee/info-system-backend/internal/http/response"
	"github.com/thuee/info-system-backend/internal/services"
)

const applicationsPath = "/applications"

type ApplicationHandler struct {
	apps services.ApplicationService
}

func NewApplicationHandler(apps services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{apps: apps}
}

// POST /applications
func (h *ApplicationHandler) Create(c *gin.Context) {
	var body application.Body
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Text(c, http.StatusUnprocessableEntity, response.TextUnprocessable)
		return
	}
	app, err := h.apps.Submit(c.Request.Context(), &body)
	if err != nil {
		response.ErrorAt(c, err, applicationsPath)
		return
	}
	response.Created(c, applicationsPath+"/"+app.Ref())
}

// GET /applications
func (h *ApplicationHandler) List(c *gin.Context) {
	q, ok := parseListQuery(c)
	if !ok {
		response.Text(c, http.StatusUnprocessableEntity, response.TextMissingQueries)
		return
	}
	items, err := h.apps.List(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// GET /applications/:id
func (h *ApplicationHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		response.Text(c, http.StatusNotFound, response.TextNotFound)
		return
	}
	filter, ok := parseCategory(c.Query("applicationType"))
	if !ok {
		response.Text(c, http.StatusUnprocessableEntity, response.TextMissingQueries)
		return
	}
	view, err := h.apps.Get(c.Request.Context(), id, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, view)
}

// PUT /applications/:id
func (h *ApplicationHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		response.Text(c, http.StatusNotFound, response.TextNotFound)
		return
	}
	var body application.Body
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Text(c, http.StatusUnprocessableEntity, response.TextUnprocessable)
		return
	}
	app, created, err := h.apps.Amend(c.Request.Context(), id, &body)
	if err != nil {
		response.ErrorAt(c, err, applicationsPath)
		return
	}
	if created {
		response.Created(c, applicationsPath+"/"+app.Ref())
		return
	}
	response.NoContent(c)
}

// DELETE /applications/:id
func (h *ApplicationHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		response.Text(c, http.StatusNotFound, response.TextNotFound)
		return
	}
	if err := h.apps.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func parseCategory(s string) (application.Category, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", true
	}
	return application.ParseCategory(s)
}

func parseListQuery(c *gin.Context) (services.ListQuery, bool) {
	var q services.ListQuery
	if v := strings.TrimSpace(c.Query("applicantId")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return q, false
		}
		q.ApplicantID = &id
	}
	if v := strings.TrimSpace(c.Query("year")); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return q, false
		}
		q.Year = &year
	}
	for _, p := range []struct {
		key string
		dst *int
	}{{"begin", &q.Begin}, {"end", &q.End}} {
		v := strings.TrimSpace(c.Query(p.key))
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return q, false
		}
		*p.dst = n
	}
	category, ok := parseCategory(c.Query("applicationType"))
	if !ok {
		return q, false
	}
	q.ApplicationType = category
	q.ApplicantName = strings.TrimSpace(c.Query("applicantName"))
	q.TeacherName = strings.TrimSpace(c.Query("teacherName"))
	q.ApplicantGrade = strings.TrimSpace(c.Query("applicantGrade"))
	return q, true
}
