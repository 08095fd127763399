package storage

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"
)

// LoadAWSConfig 載入預設憑證鏈，endpoint 不為空時覆寫基底端點（localstack）
func LoadAWSConfig(ctx context.Context, region, endpoint string) (aws.Config, error) {
	opts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(region),
	}
	if endpoint != "" {
		opts = append(opts, awscfg.WithBaseEndpoint(endpoint))
	}

	cfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load aws config: %w", err)
	}
	return cfg, nil
}

// NewDynamoDB 建立 DynamoDB client，整個行程共用一個
func NewDynamoDB(cfg aws.Config, logger *zap.Logger) *dynamodb.Client {
	db := dynamodb.NewFromConfig(cfg)

	logger.Info("DynamoDB client initialized", zap.String("region", cfg.Region))

	return db
}
