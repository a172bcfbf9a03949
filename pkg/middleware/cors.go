package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// corsAllowMethods はダッシュボードが使用するHTTPメソッド。
const corsAllowMethods = "GET, POST, PUT, DELETE, OPTIONS"

// corsAllowHeaders はダッシュボードからのリクエストで許可するヘッダー。
const corsAllowHeaders = "Authorization, Content-Type"

// CORS はserver.frontend_originsに列挙されたオリジンからの
// クロスオリジンリクエストを許可するGinミドルウェアを返す。
// オリジンをそのまま応答に反映するため、常にVary: Originを付与する。
func CORS(allowedOrigins []string) gin.HandlerFunc {
	originsSet := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		originsSet[strings.TrimRight(o, "/")] = struct{}{}
	}

	return func(c *gin.Context) {
		c.Header("Vary", "Origin")

		origin := c.GetHeader("Origin")
		if _, ok := originsSet[strings.TrimRight(origin, "/")]; ok && origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", corsAllowMethods)
			c.Header("Access-Control-Allow-Headers", corsAllowHeaders)
			c.Header("Access-Control-Max-Age", "86400")
		}

		// プリフライトはここで完結させ、後続のJWT検証に流さない
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
