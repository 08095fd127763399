// Package app 依設定組裝 store、身分提供者與 HTTP router，
// HTTP server 與 Lambda 入口共用。
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"todo_api/internal/api"
	"todo_api/internal/identity"
	"todo_api/internal/models"
	"todo_api/internal/repository"
	"todo_api/internal/service"
	"todo_api/internal/storage"
	"todo_api/pkg/config"
)

type App struct {
	Router   *gin.Engine
	Services *service.Services

	closers []func() error
	logger  *zap.Logger
}

// New 建立所有外部 client，每個行程只呼叫一次
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{logger: logger}
	b := &builder{cfg: cfg, logger: logger, app: a}

	todoRepo, err := b.todoRepository(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	provider, users, err := b.identityProvider(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	repos := &repository.Repositories{Todo: todoRepo, User: users}
	a.Services = service.NewServices(repos, provider, logger)
	a.Router = api.NewRouter(a.Services, api.Options{
		BasePath:     cfg.Server.BasePath,
		RequireAuth:  cfg.Auth.Required,
		AllowOrigins: cfg.Server.AllowOrigins,
	}, logger)

	return a, nil
}

// Close 釋放資料庫與 redis 連線
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close failed", zap.Error(err))
		}
	}
	a.closers = nil
}

type builder struct {
	cfg    *config.Config
	logger *zap.Logger
	app    *App

	awsMu     sync.Mutex
	awsCfg    aws.Config
	awsLoaded bool

	sqlDB *storage.SQLDB
}

// awsConfig 在第一次需要 AWS 時載入，失敗不快取
func (b *builder) awsConfig(ctx context.Context) (aws.Config, error) {
	b.awsMu.Lock()
	defer b.awsMu.Unlock()

	if b.awsLoaded {
		return b.awsCfg, nil
	}
	cfg, err := storage.LoadAWSConfig(context.WithoutCancel(ctx), b.cfg.AWS.Region, b.cfg.AWS.Endpoint)
	if err != nil {
		return aws.Config{}, err
	}
	b.awsCfg, b.awsLoaded = cfg, true
	return cfg, nil
}

func (b *builder) sql() (*storage.SQLDB, error) {
	if b.sqlDB != nil {
		return b.sqlDB, nil
	}
	db, err := storage.NewSQLDB(b.cfg.DB.Driver, b.cfg.DB.DSN)
	if err != nil {
		return nil, err
	}
	b.app.closers = append(b.app.closers, db.Close)
	b.sqlDB = db
	return db, nil
}

func (b *builder) todoRepository(ctx context.Context) (repository.TodoRepository, error) {
	switch b.cfg.Store.Driver {
	case "dynamodb":
		awsCfg, err := b.awsConfig(ctx)
		if err != nil {
			return nil, err
		}
		client := storage.NewDynamoDB(awsCfg, b.logger)
		return repository.NewDynamoTodoRepository(client, b.cfg.Store.Table), nil

	case "sql":
		db, err := b.sql()
		if err != nil {
			return nil, err
		}
		if err := db.AutoMigrate(&models.Todo{}); err != nil {
			return nil, fmt.Errorf("failed to auto migrate todos: %w", err)
		}
		b.logger.Info("SQL todo store initialized", zap.String("driver", b.cfg.DB.Driver))
		return repository.NewSQLTodoRepository(db), nil

	case "redis":
		client, err := storage.NewRedis(ctx, b.cfg.Redis.Address, b.cfg.Redis.Password, b.cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		b.app.closers = append(b.app.closers, client.Close)
		b.logger.Info("redis todo store initialized", zap.String("address", b.cfg.Redis.Address))
		return repository.NewRedisTodoRepository(client, b.cfg.Store.Table), nil

	default:
		return nil, fmt.Errorf("unsupported store driver %q", b.cfg.Store.Driver)
	}
}

func (b *builder) identityProvider(ctx context.Context) (identity.Provider, repository.UserRepository, error) {
	idCfg := b.cfg.Identity
	switch idCfg.Driver {
	case "cognito":
		var tokens identity.TokenValidator
		if idCfg.UserPoolID != "" && idCfg.ClientID != "" {
			v, err := identity.NewCognitoValidator(b.cfg.AWS.Region, idCfg.UserPoolID, idCfg.ClientID)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to build cognito token validator: %w", err)
			}
			tokens = v
		} else if b.cfg.Auth.Required {
			return nil, nil, errors.New("auth.required with the cognito identity driver needs identity.user_pool_id and identity.client_id")
		}
		factory := identity.NewCognitoClientFactory(b.awsConfig)
		return identity.NewCognitoProvider(idCfg.ClientID, tokens, factory), nil, nil

	case "local":
		if b.cfg.Auth.JWTSecret == "" {
			return nil, nil, errors.New("auth.jwt_secret is required for the local identity provider")
		}
		db, err := b.sql()
		if err != nil {
			return nil, nil, err
		}
		if err := db.AutoMigrate(&models.User{}); err != nil {
			return nil, nil, fmt.Errorf("failed to auto migrate users: %w", err)
		}

		users := repository.NewUserRepository(db)
		provider := identity.NewLocalProvider(users, b.cfg.Auth.JWTSecret, b.cfg.Auth.TokenTTL)
		if err := b.seedUsers(ctx, users, provider); err != nil {
			return nil, nil, err
		}
		return provider, users, nil

	default:
		return nil, nil, fmt.Errorf("unsupported identity driver %q", idCfg.Driver)
	}
}

// seedUsers 建立設定中尚不存在的本地帳號
func (b *builder) seedUsers(ctx context.Context, users repository.UserRepository, provider *identity.LocalProvider) error {
	for _, u := range b.cfg.Identity.LocalUsers {
		_, err := users.FindByUsername(ctx, u.Username)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if err := provider.Register(ctx, u.Username, u.Password, u.MustChangePassword); err != nil {
			return fmt.Errorf("failed to seed user %s: %w", u.Username, err)
		}
		b.logger.Info("seeded local user", zap.String("username", u.Username))
	}
	return nil
}
