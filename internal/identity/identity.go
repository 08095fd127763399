// Package identity 封裝外部身分提供者：以帳號密碼換取身分 token，
// 以及處理強制更換密碼的 challenge。
package identity

import (
	"context"
	"errors"
)

// ChallengeNewPasswordRequired 是 Cognito 的強制改密碼 challenge 名稱
const ChallengeNewPasswordRequired = "NEW_PASSWORD_REQUIRED"

// ErrInvalidCredentials 表示帳號或密碼錯誤
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthResult 是一次驗證的結果：IDToken 與 ChallengeName 只會有一個有值
type AuthResult struct {
	IDToken       string
	ChallengeName string
	Session       string
}

// Claims 是驗證過的 token 內容
type Claims struct {
	Subject  string
	Username string
}

type Provider interface {
	// InitiateAuth 以帳號密碼直接登入（不含 MFA 與 refresh token 流程）
	InitiateAuth(ctx context.Context, username, password string) (*AuthResult, error)
	// RespondNewPassword 回應 NEW_PASSWORD_REQUIRED challenge
	RespondNewPassword(ctx context.Context, username, newPassword, session string) (*AuthResult, error)
	// VerifyToken 檢查 InitiateAuth 發出的身分 token
	VerifyToken(ctx context.Context, token string) (*Claims, error)
}
