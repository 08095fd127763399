// lambda 入口：把 API Gateway proxy 事件轉交給同一個 gin router。
package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"go.uber.org/zap"

	"todo_api/internal/app"
	"todo_api/internal/logger"
	"todo_api/pkg/config"
)

var adapter *ginadapter.GinLambda

func HandleRequest(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return adapter.ProxyWithContext(ctx, req)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger := logger.New(cfg.Log.Level)
	defer func() { _ = zapLogger.Sync() }()

	// 冷啟動時建立一次，之後的呼叫共用 client
	a, err := app.New(context.Background(), cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer a.Close()

	adapter = ginadapter.New(a.Router)
	lambda.Start(HandleRequest)
}
