package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims はJWTトークンのクレーム（ペイロード）を表す。
// ダッシュボードを操作するオペレーターの識別情報を保持する。
type JWTClaims struct {
	jwt.RegisteredClaims
	// OperatorID は認証済みオペレーターの一意識別子。
	OperatorID string `json:"operator_id"`
	// Email はオペレーターのメールアドレス。
	Email string `json:"email"`
}

// contextKeyOperatorID はGinコンテキストにオペレーターIDを格納するためのキー。
const contextKeyOperatorID = "operator_id"

// GenerateJWT はオペレーター情報からJWTトークンを生成する。
// 開発用トークン発行エンドポイントが呼び出す。
func GenerateJWT(secret, operatorID, email string) (string, error) {
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "newshub-api",
		},
		OperatorID: operatorID,
		Email:      email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("JWTトークンの署名に失敗: %w", err)
	}
	return signed, nil
}

// JWTAuth はJWTトークンを検証するGinミドルウェアを返す。
// 検証に成功した場合、コンテキストに "operator_id" と "email" を設定する。
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorizationヘッダーが必要です",
			})
			return
		}

		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Bearer トークン形式が不正です",
			})
			return
		}

		claims := &JWTClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(_ *jwt.Token) (any, error) {
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "トークンが無効です",
			})
			return
		}

		c.Set(contextKeyOperatorID, claims.OperatorID)
		c.Set("email", claims.Email)
		c.Next()
	}
}

// GetOperatorID はGinコンテキストからオペレーターIDを取得する。
// JWTAuthミドルウェアが事前に適用されている必要がある。
func GetOperatorID(c *gin.Context) string {
	operatorID, _ := c.Get(contextKeyOperatorID)
	if id, ok := operatorID.(string); ok {
		return id
	}
	return ""
}
