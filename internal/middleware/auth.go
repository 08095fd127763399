package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"todo_api/internal/identity"
)

// TokenVerifier 檢查 Bearer token 並回傳其中的身分
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*identity.Claims, error)
}

// AccessTokenParam 是 WebSocket 升級請求帶 token 的查詢參數
const AccessTokenParam = "access_token"

// AuthMiddleware 是一個 Gin 中間件，用於驗證請求的身分 token
func AuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 從請求頭中獲取 Authorization 字段
		authHeader := c.GetHeader("Authorization")
		// 瀏覽器的 WebSocket 無法自訂標頭，升級請求可改用 access_token 參數
		if authHeader == "" && c.IsWebsocket() {
			if token := c.Query(AccessTokenParam); token != "" {
				authHeader = "Bearer " + token
			}
		}
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		// 檢查 Authorization 頭的格式
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
			return
		}

		claims, err := verifier.VerifyToken(c.Request.Context(), parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		// 將用戶信息設置到上下文中
		c.Set("userID", claims.Subject)
		c.Set("username", claims.Username)
		c.Next()
	}
}
