package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"todo_api/internal/service"
)

// EventsHandler 把 todo 變更推送給 WebSocket 訂閱者
type EventsHandler struct {
	hub      *service.EventHub
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewEventsHandler 建立 handler，allowOrigins 與 CORS 設定相同，
// 為空時只接受同源或沒有 Origin 標頭的連線
func NewEventsHandler(hub *service.EventHub, allowOrigins []string, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowOrigins),
		},
		logger: logger,
	}
}

func originChecker(allowOrigins []string) func(r *http.Request) bool {
	allowed := make(map[string]bool, len(allowOrigins))
	for _, origin := range allowOrigins {
		allowed[origin] = true
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || allowed["*"] || allowed[origin] {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return strings.EqualFold(u.Host, r.Host)
	}
}

// Subscribe 升級連線並阻塞直到訂閱者離開
func (h *EventsHandler) Subscribe(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade 已經寫回錯誤回應
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	h.hub.HandleConnection(conn)
}
