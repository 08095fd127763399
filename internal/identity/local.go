package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"todo_api/internal/models"
	"todo_api/internal/repository"
	"todo_api/internal/utils"
)

// challenge session 的有效時間，與 Cognito 預設一致
const challengeTTL = 3 * time.Minute

// LocalProvider 使用資料庫中的帳號與 HS256 token，供本地開發取代 Cognito
type LocalProvider struct {
	users    repository.UserRepository
	secret   []byte
	tokenTTL time.Duration
}

func NewLocalProvider(users repository.UserRepository, secret string, tokenTTL time.Duration) *LocalProvider {
	return &LocalProvider{
		users:    users,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
	}
}

// Register 新增帳號，mustChangePassword 為 true 時第一次登入會收到 challenge
func (p *LocalProvider) Register(ctx context.Context, username, password string, mustChangePassword bool) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return p.users.Create(ctx, &models.User{
		Username:            username,
		Password:            string(hashedPassword),
		NewPasswordRequired: mustChangePassword,
	})
}

func (p *LocalProvider) InitiateAuth(ctx context.Context, username, password string) (*AuthResult, error) {
	user, err := p.users.FindByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if user.NewPasswordRequired {
		session, err := utils.GenerateToken(p.secret, username, utils.TokenUseChallenge, challengeTTL)
		if err != nil {
			return nil, err
		}
		return &AuthResult{ChallengeName: ChallengeNewPasswordRequired, Session: session}, nil
	}

	return p.issue(username)
}

func (p *LocalProvider) RespondNewPassword(ctx context.Context, username, newPassword, session string) (*AuthResult, error) {
	claims, err := utils.ParseToken(p.secret, session, utils.TokenUseChallenge)
	if err != nil {
		return nil, fmt.Errorf("invalid challenge session: %w", err)
	}
	if claims.Username != username {
		return nil, errors.New("challenge session belongs to another user")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	if err := p.users.UpdatePassword(ctx, username, string(hashedPassword)); err != nil {
		return nil, err
	}

	return p.issue(username)
}

func (p *LocalProvider) VerifyToken(ctx context.Context, token string) (*Claims, error) {
	claims, err := utils.ParseToken(p.secret, token, utils.TokenUseID)
	if err != nil {
		return nil, err
	}
	return &Claims{Subject: claims.Subject, Username: claims.Username}, nil
}

func (p *LocalProvider) issue(username string) (*AuthResult, error) {
	token, err := utils.GenerateToken(p.secret, username, utils.TokenUseID, p.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &AuthResult{IDToken: token}, nil
}
