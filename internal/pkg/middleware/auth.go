package middleware

import (
	"net/http"
	"strings"

	"newsroom_api/pkg/response"
	"newsroom_api/pkg/security"
	"newsroom_api/pkg/utils"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// AuthMiddleware JWT认证中间件。
// token 中的角色只作参考，每次请求都通过 resolver 取当前角色和激活状态。
func AuthMiddleware(tokens *utils.TokenIssuer, resolver security.IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Error(c, http.StatusUnauthorized, response.ErrAuthFailed, "Authorization header is required")
			c.Abort()
			return
		}

		// 检查格式 "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Error(c, http.StatusUnauthorized, response.ErrAuthFailed, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := tokens.ParseToken(parts[1])
		if err != nil {
			response.Error(c, http.StatusUnauthorized, response.ErrTokenInvalid, "Invalid or expired token")
			c.Abort()
			return
		}

		identity, err := resolver.Resolve(c.Request.Context(), claims.UserID)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, response.ErrTokenInvalid, "User not found")
			c.Abort()
			return
		}
		if !identity.IsActive {
			response.Error(c, http.StatusUnauthorized, response.ErrUserInactive, "Account is deactivated")
			c.Abort()
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// RequireOperation 仅按角色判断的操作（队列、用户管理、上传等）
func RequireOperation(op security.Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			response.Error(c, http.StatusUnauthorized, response.ErrAuthFailed, "Unauthorized")
			c.Abort()
			return
		}
		if err := security.Authorize(identity, op, false); err != nil {
			response.FromError(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentIdentity 获取当前请求的身份
func CurrentIdentity(c *gin.Context) (security.Identity, bool) {
	v, exists := c.Get(identityKey)
	if !exists {
		return security.Identity{}, false
	}
	identity, ok := v.(security.Identity)
	return identity, ok
}

// SetIdentity 写入身份，供测试和内部调用使用
func SetIdentity(c *gin.Context, identity security.Identity) {
	c.Set(identityKey, identity)
}
