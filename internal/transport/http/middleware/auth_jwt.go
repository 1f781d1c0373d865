package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"hungrypanda/internal/core/auth"
	resp "hungrypanda/internal/transport/http/response"
)

const (
	KeyUserID = "userId"
	KeyRole   = "role"
	KeyClaims = "claims"
)

// RevocationChecker token 黑名单（logout / 注销账号后写入）
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

func bearer(c *gin.Context) string {
	ah := c.GetHeader("Authorization")
	if !strings.HasPrefix(ah, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(ah, "Bearer "))
}

func parse(c *gin.Context, j *auth.JWTer, rc RevocationChecker) (*auth.Claims, bool) {
	tok := bearer(c)
	if tok == "" {
		return nil, false
	}
	claims, err := j.Parse(tok)
	if err != nil {
		return nil, false
	}
	if rc != nil {
		revoked, err := rc.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			// redis 不可用时放行，错误进访问日志
			_ = c.Error(err)
		} else if revoked {
			return nil, false
		}
	}
	return claims, true
}

func setIdentity(c *gin.Context, claims *auth.Claims) {
	c.Set(KeyClaims, claims)
	c.Set(KeyUserID, claims.UID)
	c.Set(KeyRole, claims.Role)
}

// AuthJWT 校验 Bearer token；requireRole 为空表示任意角色
func AuthJWT(j *auth.JWTer, rc RevocationChecker, requireRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parse(c, j, rc)
		if !ok {
			resp.Abort(c, resp.CodeUnauthorized, "")
			return
		}
		if requireRole != "" && claims.Role != requireRole {
			resp.Abort(c, resp.CodeForbidden, "")
			return
		}
		setIdentity(c, claims)
		c.Next()
	}
}

// OptionalAuthJWT 有合法 token 就写入身份，没有也放行（logout 用）
func OptionalAuthJWT(j *auth.JWTer, rc RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := parse(c, j, rc); ok {
			setIdentity(c, claims)
		}
		c.Next()
	}
}

func ClaimsFrom(c *gin.Context) *auth.Claims {
	v, ok := c.Get(KeyClaims)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}
