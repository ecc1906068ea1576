package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"legacy-migrator/config"
)

const HeaderAdminToken = "X-Admin-Token"

// AdminToken 은 X-Admin-Token 헤더를 설정된 토큰과 비교한다.
// 토큰이 설정되지 않았으면 모든 요청을 통과시킨다.
func AdminToken(token string) gin.HandlerFunc {
	if token == "" {
		return func(c *gin.Context) { c.Next() }
	}
	want := []byte(token)
	return func(c *gin.Context) {
		got := []byte(c.GetHeader(HeaderAdminToken))
		if subtle.ConstantTimeCompare(got, want) != 1 {
			config.WarnWithFields("admin token rejected", config.Fields{
				"method": c.Request.Method,
				"path":   c.Request.URL.Path,
			})
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
