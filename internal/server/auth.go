package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nao1215/newshub/pkg/middleware"
)

// handleDevToken は開発用JWTトークンを発行するハンドラを返す。
// 本番環境では無効化すべき。
func (s *Server) handleDevToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		operatorID := uuid.New().String()

		token, err := middleware.GenerateJWT(s.cfg.Server.JWTSecret, operatorID, "dev@newshub.local")
		if err != nil {
			s.logger.Error().Err(err).Msg("JWTトークンの発行に失敗した")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "トークンの発行に失敗しました"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"token":       token,
			"operator_id": operatorID,
		})
	}
}

// handleHealth はヘルスチェックのハンドラを返す。
// Supabaseへの疎通に失敗した場合は503を返す。
func (s *Server) handleHealth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.news.Ping(c.Request.Context()); err != nil {
			s.logger.Warn().Err(err).Msg("Supabaseへの疎通確認に失敗した")
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"service": "newshub",
				"table":   s.news.Table(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "newshub",
			"table":   s.news.Table(),
		})
	}
}
