package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
)

const (
	TokenUseID        = "id"        // 回傳給呼叫端的身分 token
	TokenUseChallenge = "challenge" // 改密碼流程用的 session
)

type Claims struct {
	Username string `json:"username"`
	TokenUse string `json:"token_use"`
	jwt.StandardClaims
}

// GenerateToken 生成一個新的 HS256 JWT token
func GenerateToken(secret []byte, username, tokenUse string, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("jwt secret is empty")
	}

	nowTime := time.Now()
	claims := Claims{
		Username: username,
		TokenUse: tokenUse,
		StandardClaims: jwt.StandardClaims{
			Subject:   username,
			ExpiresAt: nowTime.Add(ttl).Unix(),
			IssuedAt:  nowTime.Unix(),
		},
	}

	tokenClaims := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tokenClaims.SignedString(secret)
}

// ParseToken 解析和驗證 JWT token，並確認用途相符
func ParseToken(secret []byte, token, tokenUse string) (*Claims, error) {
	tokenClaims, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := tokenClaims.Claims.(*Claims)
	if !ok || !tokenClaims.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.TokenUse != tokenUse {
		return nil, fmt.Errorf("token use %q, want %q", claims.TokenUse, tokenUse)
	}
	return claims, nil
}
