package service

import (
	"context"
	"errors"

	"todo_api/internal/identity"
)

// LoginRequest 是登入所需的輸入，NewPassword 只在需要回應改密碼 challenge 時使用
type LoginRequest struct {
	Username    string
	Password    string
	NewPassword string
}

type AuthService struct {
	provider identity.Provider
}

func NewAuthService(provider identity.Provider) *AuthService {
	return &AuthService{provider: provider}
}

// Login 以帳號密碼換取身分 token。
// 遇到 NEW_PASSWORD_REQUIRED 時必須由呼叫端提供不同的新密碼，否則回傳 KindChallengeRequired。
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (string, error) {
	const op = "login"
	if req.Username == "" || req.Password == "" {
		return "", newError(KindInvalidInput, op, nil)
	}
	if req.NewPassword != "" && req.NewPassword == req.Password {
		return "", newError(KindInvalidInput, op, errors.New("new password must differ from the current one"))
	}

	result, err := s.provider.InitiateAuth(ctx, req.Username, req.Password)
	if err != nil {
		return "", newError(KindUnauthorized, op, err)
	}

	switch result.ChallengeName {
	case "":
		return result.IDToken, nil
	case identity.ChallengeNewPasswordRequired:
		if req.NewPassword == "" {
			return "", newError(KindChallengeRequired, op, nil)
		}
		resolved, err := s.provider.RespondNewPassword(ctx, req.Username, req.NewPassword, result.Session)
		if err != nil {
			return "", newError(KindUnauthorized, op, err)
		}
		return resolved.IDToken, nil
	default:
		return "", newError(KindUnauthorized, op, errors.New("unsupported challenge "+result.ChallengeName))
	}
}

// VerifyToken 交給目前的身分提供者檢查 token
func (s *AuthService) VerifyToken(ctx context.Context, token string) (*identity.Claims, error) {
	claims, err := s.provider.VerifyToken(ctx, token)
	if err != nil {
		return nil, newError(KindUnauthorized, "verify token", err)
	}
	return claims, nil
}
