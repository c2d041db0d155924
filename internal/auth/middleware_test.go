package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/mrlokans/readlater/internal/config"
	"github.com/mrlokans/readlater/internal/entities"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeUsers map[string]*entities.User

func (f fakeUsers) GetUserByToken(token string) (*entities.User, error) {
	if user, ok := f[token]; ok {
		return user, nil
	}
	return nil, errors.New("not found")
}

func newTestRouter(mode config.AuthMode) *gin.Engine {
	users := fakeUsers{"secret": {ID: 42, Username: "alice"}}
	middleware := NewMiddleware(users, config.Auth{Mode: mode})

	router := gin.New()
	router.Use(middleware.Handler())
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c)})
	})
	router.GET("/api/whoami", func(c *gin.Context) {
		body := gin.H{"user_id": GetUserID(c), "username": GetUsername(c)}
		if creds := GetCredentials(c); creds != nil {
			body["basic_user"] = creds.Username
		}
		c.JSON(http.StatusOK, body)
	})
	return router
}

func TestMiddleware_NoAuthMode(t *testing.T) {
	router := newTestRouter(config.AuthModeNone)

	req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":0,"username":""}`, w.Body.String())
}

func TestMiddleware_CapturesBasicAuth(t *testing.T) {
	router := newTestRouter(config.AuthModeNone)

	req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
	req.SetBasicAuth("htuser", "htpass")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"basic_user":"htuser"`)
}

func TestMiddleware_TokenMode(t *testing.T) {
	router := newTestRouter(config.AuthModeToken)

	tests := []struct {
		name       string
		path       string
		header     string
		value      string
		wantStatus int
		wantUserID string
	}{
		{"bearer token", "/api/whoami", "Authorization", "Bearer secret", http.StatusOK, `"user_id":42`},
		{"api token header", "/api/whoami", "X-Api-Token", "secret", http.StatusOK, `"user_id":42`},
		{"wrong token", "/api/whoami", "Authorization", "Bearer nope", http.StatusUnauthorized, ""},
		{"no token", "/api/whoami", "", "", http.StatusUnauthorized, ""},
		{"public path", "/health", "", "", http.StatusOK, `"user_id":0`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantUserID != "" {
				assert.Contains(t, w.Body.String(), tt.wantUserID)
			}
		})
	}
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(SecurityHeadersMiddleware())
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "default-src 'none'")
}
