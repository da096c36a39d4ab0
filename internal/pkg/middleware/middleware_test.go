package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"newsroom_api/pkg/security"
	"newsroom_api/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type stubResolver map[string]security.Identity

func (s stubResolver) Resolve(ctx context.Context, userID string) (security.Identity, error) {
	identity, ok := s[userID]
	if !ok {
		return security.Identity{}, errors.New("not found")
	}
	return identity, nil
}

func newAuthRouter(tokens *utils.TokenIssuer, resolver security.IdentityResolver, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{AuthMiddleware(tokens, resolver)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		identity, _ := CurrentIdentity(c)
		c.String(http.StatusOK, string(identity.Role))
	})
	r.GET("/private", handlers...)
	return r
}

func TestAuthMiddleware(t *testing.T) {
	tokens := utils.NewTokenIssuer(testSecret, time.Hour)
	resolver := stubResolver{
		"active":   {ID: "active", Role: security.RoleModerator, IsActive: true},
		"inactive": {ID: "inactive", Role: security.RoleAdmin, IsActive: false},
	}
	r := newAuthRouter(tokens, resolver)

	call := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	t.Run("missing header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, call("").Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, call("Token abc").Code)
	})

	t.Run("role comes from resolver", func(t *testing.T) {
		// token 仍写着 reader，但数据库中已是 moderator
		token, _, err := tokens.GenerateToken("active", "reader", "a@news.test")
		require.NoError(t, err)

		w := call("Bearer " + token)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "moderator", w.Body.String())
	})

	t.Run("inactive account fails closed", func(t *testing.T) {
		token, _, err := tokens.GenerateToken("inactive", "admin", "i@news.test")
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, call("Bearer "+token).Code)
	})

	t.Run("unknown user fails closed", func(t *testing.T) {
		token, _, err := tokens.GenerateToken("ghost", "admin", "g@news.test")
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, call("Bearer "+token).Code)
	})
}

func TestRequireOperation(t *testing.T) {
	tokens := utils.NewTokenIssuer(testSecret, time.Hour)
	resolver := stubResolver{
		"mod":    {ID: "mod", Role: security.RoleModerator, IsActive: true},
		"reader": {ID: "reader", Role: security.RoleReader, IsActive: true},
	}
	r := newAuthRouter(tokens, resolver, RequireOperation(security.OpNewsQueue))

	for user, want := range map[string]int{"mod": http.StatusOK, "reader": http.StatusForbidden} {
		token, _, err := tokens.GenerateToken(user, "", "")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, user)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimitMiddleware(NewIPRateLimiter(1, 2)))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestTraceMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(TraceMiddleware())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, TraceID(c)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Trace-ID", "trace-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "trace-1", w.Body.String())
	assert.Equal(t, "trace-1", w.Header().Get("X-Trace-ID"))
}
