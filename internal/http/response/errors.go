package response

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	domainagg "github.com/thuee/info-system-backend/internal/domain/aggregates"
)

// Error maps an aggregate error code onto a status and its fixed text.
func Error(c *gin.Context, err error) {
	ErrorAt(c, err, "")
}

// ErrorAt is Error for a resource collection. A conflict carrying the
// existing record's ref answers with Location base/ref.
func ErrorAt(c *gin.Context, err error, base string) {
	status, text := StatusOf(err)
	if status == http.StatusConflict && base != "" {
		if ref := domainagg.RefOf(err); ref != "" {
			c.Header(headerLocation, strings.TrimRight(base, "/")+"/"+ref)
		}
	}
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.String(status, text)
}

func StatusOf(err error) (int, string) {
	switch domainagg.CodeOf(err) {
	case domainagg.CodeConflict:
		return http.StatusConflict, TextConflict
	case domainagg.CodeNotFound:
		return http.StatusNotFound, TextNotFound
	case domainagg.CodeValidation:
		return http.StatusUnprocessableEntity, TextUnprocessable
	case domainagg.CodeUnauthorized:
		return http.StatusUnauthorized, TextInsufficient
	default:
		return http.StatusInternalServerError, TextInternal
	}
}
