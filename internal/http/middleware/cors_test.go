package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestCORSAllowsConfiguredOrigins(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		origins []string
		origin  string
		allowed bool
	}{
		{"default dev origin", nil, "http://localhost:3000", true},
		{"configured origin", []string{"https://info.example.com"}, "https://info.example.com", true},
		{"unlisted origin", []string{"https://info.example.com"}, "https://evil.example.com", false},
		{"wildcard", []string{"*"}, "https://any.example.com", true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := gin.New()
			r.Use(CORS(tt.origins))
			r.OPTIONS("/applications", func(c *gin.Context) {
				c.Status(http.StatusNoContent)
			})

			req := httptest.NewRequest(http.MethodOptions, "/applications", nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodPut)
			req.Header.Set("Access-Control-Request-Headers", "x-access-token,x-access-id")

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			got := rec.Header().Get("Access-Control-Allow-Origin")
			if tt.allowed && got == "" {
				t.Fatalf("expected origin %q to be allowed (status %d)", tt.origin, rec.Code)
			}
			if !tt.allowed && got != "" {
				t.Fatalf("expected origin %q to be rejected, got allow-origin %q", tt.origin, got)
			}
		})
	}
}
