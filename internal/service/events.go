package service

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"todo_api/internal/models"
)

type EventType string

const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
	EventDeleted EventType = "deleted"
)

// TodoEvent 是推送給訂閱者的變更通知
type TodoEvent struct {
	Type EventType   `json:"type"`
	Todo models.Todo `json:"todo"`
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 512
	sendBufferSize = 256
)

// Client 代表一個訂閱變更的 WebSocket 連接
type Client struct {
	Conn     *websocket.Conn
	SendChan chan *TodoEvent // 消息發送通道，用於異步傳送消息
}

// EventHub 管理所有訂閱者並廣播 todo 變更
type EventHub struct {
	clients    map[*Client]bool
	clientsMux sync.RWMutex
	logger     *zap.Logger
}

func NewEventHub(logger *zap.Logger) *EventHub {
	return &EventHub{
		clients: make(map[*Client]bool),
		logger:  logger,
	}
}

// HandleConnection 註冊連接並阻塞到連接關閉
func (h *EventHub) HandleConnection(conn *websocket.Conn) {
	client := &Client{
		Conn:     conn,
		SendChan: make(chan *TodoEvent, sendBufferSize),
	}

	h.addClient(client)

	// 先從 hub 移除再關閉通道，Publish 就不會寫入已關閉的通道
	defer func() {
		h.removeClient(client)
		conn.Close()
		close(client.SendChan)
	}()

	go h.writePump(client)
	h.readPump(client)
}

// readPump 只處理 pong 與關閉，訂閱者送來的內容一律忽略
func (h *EventHub) readPump(client *Client) {
	client.Conn.SetReadLimit(maxMessageSize)
	client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn("websocket unexpected close", zap.Error(err))
			}
			return
		}
	}
}

func (h *EventHub) writePump(client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-client.SendChan:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			payload, err := json.Marshal(event)
			if err != nil {
				h.logger.Error("event encoding failed", zap.Error(err))
				continue
			}
			if err := client.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Publish 廣播事件，不會阻塞；緩衝已滿的訂閱者會被斷線
func (h *EventHub) Publish(event *TodoEvent) {
	var slow []*Client

	h.clientsMux.RLock()
	for client := range h.clients {
		select {
		case client.SendChan <- event:
		default:
			slow = append(slow, client)
		}
	}
	h.clientsMux.RUnlock()

	for _, client := range slow {
		h.logger.Warn("dropping slow event subscriber")
		h.removeClient(client)
		client.Conn.Close()
	}
}

// ClientCount 回傳目前的訂閱者數量
func (h *EventHub) ClientCount() int {
	h.clientsMux.RLock()
	defer h.clientsMux.RUnlock()

	return len(h.clients)
}

func (h *EventHub) addClient(client *Client) {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()

	h.clients[client] = true
}

func (h *EventHub) removeClient(client *Client) {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()

	delete(h.clients, client)
}
