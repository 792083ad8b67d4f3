// Package realtime 维护直播间的 WebSocket 连接，并把新消息推送给在线观众。
package realtime

import (
	"liveroom-go/internal/model"
	"liveroom-go/pkg/log"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	// 单个连接的发送缓冲，写满后丢弃该连接
	sendBuffer = 64
)

// Event 是推送给客户端的消息格式。
type Event struct {
	Type      string          `json:"type"`
	Data      model.WsMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// Client 是一个直播间内的 WebSocket 连接。
type Client struct {
	hub    *Hub
	roomID uint
	conn   *websocket.Conn
	send   chan []byte
}

// Hub 按直播间分组管理连接。
type Hub struct {
	mu    sync.RWMutex
	rooms map[uint]map[*Client]struct{}
}

// NewHub 创建一个空的 Hub。
func NewHub() *Hub {
	return &Hub{rooms: make(map[uint]map[*Client]struct{})}
}

// Join 将连接加入直播间并启动读写协程，连接关闭后自动离开。
func (h *Hub) Join(roomID uint, conn *websocket.Conn) *Client {
	c := &Client{hub: h, roomID: roomID, conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Client]struct{})
	}
	h.rooms[roomID][c] = struct{}{}
	h.mu.Unlock()

	log.Infof("[Realtime] 直播间 %d 新连接，当前在线 %d", roomID, h.Online(roomID))
	go c.writePump()
	go c.readPump()
	return c
}

func (h *Hub) leave(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients, ok := h.rooms[c.roomID]
	if !ok {
		return
	}
	if _, ok := clients[c]; !ok {
		return
	}
	delete(clients, c)
	close(c.send)
	if len(clients) == 0 {
		delete(h.rooms, c.roomID)
	}
}

// Online 返回直播间当前的连接数。
func (h *Hub) Online(roomID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// Publish 将新消息广播给直播间内的所有连接，慢连接会被断开而不是阻塞调用方。
func (h *Hub) Publish(roomID uint, msg model.WsMessage) {
	payload, err := sonic.Marshal(Event{Type: "message", Data: msg, Timestamp: time.Now().UnixMilli()})
	if err != nil {
		log.Error("[Realtime] 序列化消息失败", err)
		return
	}

	h.mu.RLock()
	var slow []*Client
	for c := range h.rooms[roomID] {
		select {
		case c.send <- payload:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		log.Warnf("[Realtime] 直播间 %d 的连接发送缓冲已满，断开连接", roomID)
		h.leave(c)
	}
}

// Close 断开所有连接，用于服务退出。
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for roomID, clients := range h.rooms {
		for c := range clients {
			close(c.send)
		}
		delete(h.rooms, roomID)
	}
}

// readPump 只负责处理 pong 和检测断开，客户端发来的内容被忽略。
func (c *Client) readPump() {
	defer func() {
		c.hub.leave(c)
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warnf("[Realtime] 从 WebSocket 读取消息失败: %v", err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
