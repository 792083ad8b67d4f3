package handler

import (
	"liveroom-go/internal/realtime"
	"liveroom-go/pkg/log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许所有来源
	},
}

// LiveRoomHandler 负责直播间的 WebSocket 连接。
type LiveRoomHandler struct {
	hub *realtime.Hub
}

// NewLiveRoomHandler 创建一个新的 LiveRoomHandler。
func NewLiveRoomHandler(hub *realtime.Hub) *LiveRoomHandler {
	return &LiveRoomHandler{hub: hub}
}

// Connect 将请求升级为 WebSocket 并加入直播间，之后该连接只接收新消息推送。
func (h *LiveRoomHandler) Connect(c *gin.Context) {
	roomID, ok := paramID(c)
	if !ok {
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket 升级失败", err)
		return
	}
	h.hub.Join(roomID, conn)
}
