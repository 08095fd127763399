package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Store    StoreConfig
	AWS      AWSConfig
	DB       DBConfig
	Redis    RedisConfig
	Identity IdentityConfig
	Auth     AuthConfig
}

type ServerConfig struct {
	Address      string
	BasePath     string   `mapstructure:"base_path"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

type LogConfig struct {
	Level string
}

// StoreConfig 決定 todo 記錄存放在哪個後端
type StoreConfig struct {
	Driver string // dynamodb | sql | redis
	Table  string // DynamoDB 資料表名稱，redis 下作為 key 前綴
}

type AWSConfig struct {
	Region   string
	Endpoint string // 留空使用 AWS 預設端點，本地開發可指向 localstack
}

type DBConfig struct {
	Driver string // postgres | sqlite
	DSN    string
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

type IdentityConfig struct {
	Driver     string      // cognito | local
	ClientID   string      `mapstructure:"client_id"`
	UserPoolID string      `mapstructure:"user_pool_id"`
	LocalUsers []LocalUser `mapstructure:"local_users"`
}

// LocalUser 是本地身分提供者啟動時建立的帳號
type LocalUser struct {
	Username           string
	Password           string
	MustChangePassword bool `mapstructure:"must_change_password"`
}

type AuthConfig struct {
	Required  bool
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

// 沿用部署環境既有的變數名稱
var legacyEnv = map[string]string{
	"store.table":           "DYNAMODB_TABLE",
	"identity.client_id":    "COGNITO_USER_POOL_CLIENT_ID",
	"identity.user_pool_id": "COGNITO_USER_POOL_ID",
	"aws.region":            "AWS_REGION",
	"aws.endpoint":          "AWS_ENDPOINT",
	"auth.jwt_secret":       "JWT_SECRET",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.base_path", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("store.driver", "dynamodb")
	v.SetDefault("store.table", "todos")
	v.SetDefault("aws.region", "us-east-1")
	v.SetDefault("aws.endpoint", "")
	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "")
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("identity.driver", "cognito")
	v.SetDefault("identity.client_id", "")
	v.SetDefault("identity.user_pool_id", "")
	v.SetDefault("auth.required", false)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", time.Hour)
}

// Load 讀取 ./pkg/config/config.yaml，再以環境變數覆蓋。
// 設定檔不存在時只使用預設值與環境變數（例如在 Lambda 上執行）。
func Load() (*Config, error) {
	return LoadFrom("./pkg/config")
}

func LoadFrom(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		if err := v.BindEnv(key, env); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
