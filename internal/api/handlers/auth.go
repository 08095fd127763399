package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"todo_api/internal/service"
)

// AuthHandler 處理與認證相關的請求
type AuthHandler struct {
	authService *service.AuthService
	logger      *zap.Logger
}

// NewAuthHandler 創建一個新的 AuthHandler 實例
func NewAuthHandler(authService *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

// LoginInput 定義登入請求的結構
type LoginInput struct {
	Username    string `json:"username" binding:"required"`
	Password    string `json:"password" binding:"required"`
	NewPassword string `json:"newPassword"` // 帳號被要求更換密碼時才需要
}

// Login 處理用戶登入，成功時 body 直接是身分 token 字串
func (h *AuthHandler) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	token, err := h.authService.Login(c.Request.Context(), service.LoginRequest{
		Username:    input.Username,
		Password:    input.Password,
		NewPassword: input.NewPassword,
	})
	if err != nil {
		switch service.KindOf(err) {
		case service.KindInvalidInput:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		case service.KindChallengeRequired:
			h.logger.Info("login requires a new password", zap.String("username", input.Username))
			c.String(http.StatusUnauthorized, "New password required")
		default:
			// 不區分帳號不存在、密碼錯誤或網路錯誤
			h.logger.Warn("login failed", zap.String("username", input.Username), zap.Error(err))
			c.String(http.StatusUnauthorized, "Incorrect credentials")
		}
		return
	}

	c.String(http.StatusOK, token)
}
