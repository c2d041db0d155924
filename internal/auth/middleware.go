package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readlater/internal/config"
	"github.com/mrlokans/readlater/internal/entities"
	"github.com/mrlokans/readlater/internal/fetcher"
)

// Context keys for request data
const (
	ContextKeyUserID      = "auth_user_id"
	ContextKeyUsername    = "auth_username"
	ContextKeyCredentials = "auth_passthrough_credentials"
)

const tokenHeader = "X-Api-Token"

// DefaultUserID is used when authentication is disabled
const DefaultUserID = uint(0)

// UserLookup resolves API tokens.
type UserLookup interface {
	GetUserByToken(token string) (*entities.User, error)
}

// Middleware handles authentication for HTTP requests.
type Middleware struct {
	users       UserLookup
	config      config.Auth
	publicPaths map[string]bool
}

// NewMiddleware creates a new authentication middleware.
func NewMiddleware(users UserLookup, cfg config.Auth) *Middleware {
	return &Middleware{
		users:  users,
		config: cfg,
		publicPaths: map[string]bool{
			"/health": true,
			"/ping":   true,
		},
	}
}

// Handler returns a Gin middleware handler that authenticates requests.
func (m *Middleware) Handler() gin.HandlerFunc {
	if m.config.Mode == config.AuthModeToken {
		return m.tokenHandler()
	}
	return m.noAuthHandler()
}

func (m *Middleware) noAuthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKeyUserID, DefaultUserID)
		captureCredentials(c)
		c.Next()
	}
}

func (m *Middleware) tokenHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.isPublicPath(c.Request.URL.Path) {
			c.Set(ContextKeyUserID, DefaultUserID)
			c.Next()
			return
		}

		user := m.tryTokenAuth(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
				"code":  http.StatusUnauthorized,
			})
			return
		}

		c.Set(ContextKeyUserID, user.ID)
		c.Set(ContextKeyUsername, user.Username)
		captureCredentials(c)
		c.Next()
	}
}

// tryTokenAuth accepts "Authorization: Bearer <token>" or the X-Api-Token header.
func (m *Middleware) tryTokenAuth(c *gin.Context) *entities.User {
	token := c.GetHeader(tokenHeader)
	if token == "" {
		parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			token = strings.TrimSpace(parts[1])
		}
	}
	if token == "" || m.users == nil {
		return nil
	}

	user, err := m.users.GetUserByToken(token)
	if err != nil {
		return nil
	}
	return user
}

func (m *Middleware) isPublicPath(path string) bool {
	return m.publicPaths[path]
}

func captureCredentials(c *gin.Context) {
	if username, password, ok := c.Request.BasicAuth(); ok {
		c.Set(ContextKeyCredentials, &fetcher.Credentials{Username: username, Password: password})
	}
}

// GetUserID retrieves the authenticated user's ID from the context.
// Returns DefaultUserID (0) if not authenticated or auth is disabled.
func GetUserID(c *gin.Context) uint {
	if id, exists := c.Get(ContextKeyUserID); exists {
		if userID, ok := id.(uint); ok {
			return userID
		}
	}
	return DefaultUserID
}

// GetUsername retrieves the authenticated user's username from the context.
func GetUsername(c *gin.Context) string {
	return c.GetString(ContextKeyUsername)
}

// GetCredentials returns the basic-auth values sent with the request, or nil.
func GetCredentials(c *gin.Context) *fetcher.Credentials {
	if v, exists := c.Get(ContextKeyCredentials); exists {
		if creds, ok := v.(*fetcher.Credentials); ok {
			return creds
		}
	}
	return nil
}
