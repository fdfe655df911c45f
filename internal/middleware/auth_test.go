package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rubric_backend/internal/config"
	"rubric_backend/internal/model"
	"rubric_backend/internal/util"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(cfg *config.Config, min model.UserRole) *gin.Engine {
	r := gin.New()
	r.GET("/protected", AuthMiddleware(cfg), RequireRole(min), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

func TestAuthAndRoleChecks(t *testing.T) {
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "test-secret"}}
	token := func(role model.UserRole) string {
		tok, err := util.GenerateJWT(util.TokenSubject{UserID: 1, Role: string(role)}, cfg.JWT.Secret, time.Hour)
		if err != nil {
			t.Fatalf("token: %v", err)
		}
		return "Bearer " + tok
	}

	cases := []struct {
		name   string
		header string
		min    model.UserRole
		want   int
	}{
		{"missing header", "", model.TeachingAssistant, http.StatusUnauthorized},
		{"garbage token", "Bearer nope", model.TeachingAssistant, http.StatusUnauthorized},
		{"student blocked", token(model.Student), model.TeachingAssistant, http.StatusForbidden},
		{"assistant blocked from instructor route", token(model.TeachingAssistant), model.Instructor, http.StatusForbidden},
		{"instructor allowed", token(model.Instructor), model.Instructor, http.StatusOK},
		{"admin allowed", token(model.Admin), model.Instructor, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			newRouter(cfg, tc.min).ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d", w.Code, tc.want)
			}
		})
	}
}
