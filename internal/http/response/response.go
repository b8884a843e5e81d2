package response

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	TextCreated           = "201 Created."
	TextConflict          = "409 Conflict: Application already exists."
	TextNotFound          = "404 Not Found: Application does not exist."
	TextMissingQueries    = "422 Unprocessable Entity: Missing queries."
	TextUnprocessable     = "422 Unprocessable Entity: Invalid application."
	TextInsufficient      = "401 Unauthorized: Insufficient permissions."
	TextInternal          = "500 Internal server error."
	TextTooManyRequests   = "429 Too Many Requests."
	TextTokenRequired     = "401 Unauthorized: Token required."
	TextTokenExpired      = "401 Unauthorized: Token expired."
	TextAccessIDMismatch  = "401 Unauthorized: Provide valid x-access-id or re-request with authorized identity."
	TextUnknownIdentity   = "401 Unauthorized: Please re-request with authorized identity."
	headerLocation        = "Location"
	headerContentDisposal = "Content-Disposition"
)

// Text writes a plain-text body. Error paths never carry JSON.
func Text(c *gin.Context, status int, text string) {
	c.String(status, text)
}

// AbortText writes a plain-text body and stops the handler chain.
func AbortText(c *gin.Context, status int, text string) {
	c.Abort()
	c.String(status, text)
}

func OK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// Created answers 201 with a Location header.
func Created(c *gin.Context, location string) {
	c.Header(headerLocation, location)
	c.String(http.StatusCreated, TextCreated)
}

func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// File sends a download named name.
func File(c *gin.Context, name, contentType string, data []byte) {
	c.Header(headerContentDisposal, contentDisposition(name))
	c.Data(http.StatusOK, contentType, data)
}

// contentDisposition carries an ASCII fallback plus the RFC 5987 UTF-8 name,
// since file names are usually Chinese.
func contentDisposition(name string) string {
	fallback := strings.Map(func(r rune) rune {
		if r < 0x20 || r > 0x7e || r == '"' || r == '\\' {
			return '_'
		}
		return r
	}, name)
	return fmt.Sprintf("attachment; filename=\"%s\"; filename*=UTF-8''%s", fallback, url.PathEscape(name))
}
