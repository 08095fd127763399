package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"todo_api/internal/api/handlers"
	"todo_api/internal/middleware"
	"todo_api/internal/service"
)

type Options struct {
	BasePath     string
	RequireAuth  bool     // 開啟後 /todos 需要 Bearer token
	AllowOrigins []string // 空的時候不處理 CORS，"*" 代表全部允許
}

// NewRouter 建立帶有 zap 請求日誌與 panic recovery 的 gin engine
func NewRouter(services *service.Services, opts Options, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	r.Use(ginzap.RecoveryWithZap(logger, true))
	if len(opts.AllowOrigins) > 0 {
		r.Use(corsMiddleware(opts.AllowOrigins))
	}

	SetupRoutes(r, services, opts, logger)
	return r
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	config := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 1 && origins[0] == "*" {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
	}
	return cors.New(config)
}

func SetupRoutes(r *gin.Engine, services *service.Services, opts Options, logger *zap.Logger) {
	// 初始化 handlers
	todoHandler := handlers.NewTodoHandler(services.Todo, logger)
	authHandler := handlers.NewAuthHandler(services.Auth, logger)
	eventsHandler := handlers.NewEventsHandler(services.Events, opts.AllowOrigins, logger)

	api := r.Group(opts.BasePath)

	// 處理 404 錯誤
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Route not found",
		})
	})

	// 公開路由
	{
		api.POST("/login", authHandler.Login)

		// 基本的健康檢查
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status": "ok",
			})
		})
	}

	todos := api.Group("/todos")
	if opts.RequireAuth {
		todos.Use(middleware.AuthMiddleware(services.Auth))
	}
	{
		todos.POST("", todoHandler.CreateTodo)
		todos.GET("", todoHandler.ListTodos)
		todos.PUT("/:id", todoHandler.UpdateTodo)
		todos.DELETE("/:id", todoHandler.DeleteTodo)

		// 變更推送
		todos.GET("/ws", eventsHandler.Subscribe)
	}
}
