package identity

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
)

// CognitoAPI 是用到的 Cognito user pool 操作，*cognitoidentityprovider.Client 滿足此介面
type CognitoAPI interface {
	InitiateAuth(ctx context.Context, params *cip.InitiateAuthInput, optFns ...func(*cip.Options)) (*cip.InitiateAuthOutput, error)
	RespondToAuthChallenge(ctx context.Context, params *cip.RespondToAuthChallengeInput, optFns ...func(*cip.Options)) (*cip.RespondToAuthChallengeOutput, error)
}

// TokenValidator 驗證 JWT 的簽章與標準 claims，*validator.Validator 滿足此介面
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (interface{}, error)
}

// CognitoProvider 透過 Cognito user pool client 登入。
// client 在第一次使用時建立，之後所有請求共用。
type CognitoProvider struct {
	clientID string
	tokens   TokenValidator

	newClient func(ctx context.Context) (CognitoAPI, error)
	mu        sync.Mutex
	client    CognitoAPI
}

// NewCognitoProvider 建立 provider，newClient 會被延遲到第一次登入才呼叫。
// tokens 為 nil 時 VerifyToken 一律失敗。
func NewCognitoProvider(clientID string, tokens TokenValidator, newClient func(ctx context.Context) (CognitoAPI, error)) *CognitoProvider {
	return &CognitoProvider{
		clientID:  clientID,
		tokens:    tokens,
		newClient: newClient,
	}
}

// CognitoIssuer 回傳 user pool 的 issuer URL
func CognitoIssuer(region, userPoolID string) string {
	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", region, userPoolID)
}

// NewCognitoValidator 以 user pool 的 JWKS 驗證 RS256 簽章，公鑰快取五分鐘
func NewCognitoValidator(region, userPoolID, clientID string) (*validator.Validator, error) {
	issuer := CognitoIssuer(region, userPoolID)
	issuerURL, err := url.Parse(issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to parse issuer URL: %w", err)
	}

	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)
	return newIDTokenValidator(provider.KeyFunc, issuer, clientID)
}

func newIDTokenValidator(keyFunc func(context.Context) (interface{}, error), issuer, clientID string) (*validator.Validator, error) {
	return validator.New(
		keyFunc,
		validator.RS256,
		issuer,
		[]string{clientID},
		validator.WithAllowedClockSkew(30*time.Second),
		validator.WithCustomClaims(func() validator.CustomClaims {
			return &idTokenClaims{}
		}),
	)
}

// idTokenClaims 是 Cognito ID token 額外帶的 claims
type idTokenClaims struct {
	TokenUse string `json:"token_use"`
	Username string `json:"cognito:username"`
}

func (c *idTokenClaims) Validate(ctx context.Context) error {
	if c.TokenUse != "id" {
		return fmt.Errorf("token use %q is not id", c.TokenUse)
	}
	return nil
}

// NewCognitoClientFactory 從已載入的 aws.Config 建立 client
func NewCognitoClientFactory(load func(ctx context.Context) (aws.Config, error)) func(ctx context.Context) (CognitoAPI, error) {
	return func(ctx context.Context) (CognitoAPI, error) {
		cfg, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return cip.NewFromConfig(cfg), nil
	}
}

// api 只保留成功建立的 client，失敗時下一次請求會重試。
// 建立時不沿用請求的取消訊號，避免單一請求中斷影響共用 client。
func (p *CognitoProvider) api(ctx context.Context) (CognitoAPI, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		return p.client, nil
	}
	client, err := p.newClient(context.WithoutCancel(ctx))
	if err != nil {
		return nil, err
	}
	p.client = client
	return client, nil
}

func (p *CognitoProvider) InitiateAuth(ctx context.Context, username, password string) (*AuthResult, error) {
	client, err := p.api(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create cognito client: %w", err)
	}

	out, err := client.InitiateAuth(ctx, &cip.InitiateAuthInput{
		AuthFlow: types.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(p.clientID),
		AuthParameters: map[string]string{
			"USERNAME": username,
			"PASSWORD": password,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("initiate auth: %w", err)
	}

	if out.ChallengeName == types.ChallengeNameTypeNewPasswordRequired {
		return &AuthResult{
			ChallengeName: ChallengeNewPasswordRequired,
			Session:       aws.ToString(out.Session),
		}, nil
	}
	if out.AuthenticationResult == nil {
		return nil, fmt.Errorf("unsupported auth challenge %q", out.ChallengeName)
	}

	return &AuthResult{IDToken: aws.ToString(out.AuthenticationResult.IdToken)}, nil
}

func (p *CognitoProvider) RespondNewPassword(ctx context.Context, username, newPassword, session string) (*AuthResult, error) {
	if username == "" || newPassword == "" || session == "" {
		return nil, errors.New("missing required parameters")
	}

	client, err := p.api(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create cognito client: %w", err)
	}

	out, err := client.RespondToAuthChallenge(ctx, &cip.RespondToAuthChallengeInput{
		ChallengeName: types.ChallengeNameTypeNewPasswordRequired,
		ClientId:      aws.String(p.clientID),
		ChallengeResponses: map[string]string{
			"USERNAME":     username,
			"NEW_PASSWORD": newPassword,
		},
		Session: aws.String(session),
	})
	if err != nil {
		return nil, fmt.Errorf("respond to auth challenge: %w", err)
	}
	if out.AuthenticationResult == nil {
		return nil, fmt.Errorf("unsupported auth challenge %q", out.ChallengeName)
	}

	return &AuthResult{IDToken: aws.ToString(out.AuthenticationResult.IdToken)}, nil
}

// VerifyToken 以 JWKS 驗證 ID token 的簽章、issuer、audience、期限與 token_use
func (p *CognitoProvider) VerifyToken(ctx context.Context, token string) (*Claims, error) {
	if p.tokens == nil {
		return nil, errors.New("token verification is not configured")
	}

	validated, err := p.tokens.ValidateToken(ctx, token)
	if err != nil {
		return nil, err
	}
	claims, ok := validated.(*validator.ValidatedClaims)
	if !ok {
		return nil, errors.New("unexpected claims type")
	}
	custom, ok := claims.CustomClaims.(*idTokenClaims)
	if !ok {
		return nil, errors.New("missing id token claims")
	}

	return &Claims{Subject: claims.RegisteredClaims.Subject, Username: custom.Username}, nil
}
