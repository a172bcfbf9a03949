package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/newshub/internal/token"
)

// managedPlatforms はトークン台帳が管理するプラットフォーム名。
var managedPlatforms = map[string]bool{
	token.PlatformFacebook:  true,
	token.PlatformThreads:   true,
	token.PlatformInstagram: true,
}

// handleTokenStatus は長期トークンの状態一覧を返すハンドラを返す。
// アクセストークンそのものはレスポンスに含めない。
func (s *Server) handleTokenStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		statuses, err := s.tokens.Status(c.Request.Context())
		if err != nil {
			s.logger.Error().Err(err).Msg("トークン状態の取得に失敗した")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "トークン状態の取得に失敗しました"})
			return
		}
		if statuses == nil {
			statuses = []token.Status{}
		}
		c.JSON(http.StatusOK, statuses)
	}
}

// handleTokenRefresh は指定されたプラットフォームのトークンを即座に更新するハンドラを返す。
func (s *Server) handleTokenRefresh() gin.HandlerFunc {
	return func(c *gin.Context) {
		platform := c.Param("platform")
		if !managedPlatforms[platform] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "トークン管理対象外のプラットフォームです"})
			return
		}

		tok, err := s.tokens.Refresh(c.Request.Context(), platform)
		if err != nil {
			s.logger.Error().Err(err).Str("platform", platform).Msg("トークンの更新に失敗した")
			c.JSON(http.StatusBadGateway, gin.H{"error": "トークンの更新に失敗しました"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"platform":   tok.Platform,
			"issued_at":  tok.IssuedAt,
			"expires_at": tok.ExpiresAt(),
		})
	}
}
