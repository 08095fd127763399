package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"todo_api/internal/models"
	"todo_api/internal/service"
)

// TodoHandler 處理與 todo 相關的請求
type TodoHandler struct {
	todoService *service.TodoService
	logger      *zap.Logger
}

// NewTodoHandler 創建一個新的 TodoHandler 實例
func NewTodoHandler(todoService *service.TodoService, logger *zap.Logger) *TodoHandler {
	return &TodoHandler{todoService: todoService, logger: logger}
}

// CreateTodoInput 定義建立 todo 的請求結構
type CreateTodoInput struct {
	TaskName string `json:"taskName" binding:"required"`
	Status   string `json:"status" binding:"required"`
}

// UpdateTodoInput 定義更新 todo 的請求結構，空字串視為未提供
type UpdateTodoInput struct {
	TaskName string `json:"taskName"`
	Status   string `json:"status"`
}

func (in UpdateTodoInput) patch() models.TodoPatch {
	var patch models.TodoPatch
	if in.TaskName != "" {
		patch.TaskName = &in.TaskName
	}
	if in.Status != "" {
		patch.Status = &in.Status
	}
	return patch
}

const invalidUpdateMessage = "Invalid input: Provide taskName or status to update."

// CreateTodo 處理建立 todo 的請求
func (h *TodoHandler) CreateTodo(c *gin.Context) {
	var input CreateTodoInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	todo, err := h.todoService.CreateTodo(c.Request.Context(), input.TaskName, input.Status)
	if err != nil {
		kind := service.KindOf(err)
		if kind == service.KindInvalidInput {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
			return
		}
		h.logger.Error("could not create todo", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Could not create todo",
			"error":   kind.String(),
		})
		return
	}

	c.JSON(http.StatusCreated, todo)
}

// ListTodos 回傳目前所有的 todo
func (h *TodoHandler) ListTodos(c *gin.Context) {
	todos, err := h.todoService.ListTodos(c.Request.Context())
	if err != nil {
		h.logger.Error("error fetching todos", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch todos"})
		return
	}

	c.JSON(http.StatusOK, todos)
}

// UpdateTodo 只更新請求中提供的欄位
func (h *TodoHandler) UpdateTodo(c *gin.Context) {
	var input UpdateTodoInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": invalidUpdateMessage})
		return
	}

	todo, err := h.todoService.UpdateTodo(c.Request.Context(), c.Param("id"), input.patch())
	if err != nil {
		switch service.KindOf(err) {
		case service.KindInvalidInput:
			c.JSON(http.StatusBadRequest, gin.H{"error": invalidUpdateMessage})
		case service.KindNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "Todo not found"})
		default:
			h.logger.Error("could not update todo", zap.String("id", c.Param("id")), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update todo"})
		}
		return
	}

	c.JSON(http.StatusOK, todo)
}

// DeleteTodo 刪除 todo，id 不存在也回傳成功
func (h *TodoHandler) DeleteTodo(c *gin.Context) {
	if err := h.todoService.DeleteTodo(c.Request.Context(), c.Param("id")); err != nil {
		h.logger.Error("could not delete todo", zap.String("id", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not delete todo"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Todo deleted"})
}
