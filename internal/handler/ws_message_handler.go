package handler

import (
	"liveroom-go/internal/model"
	"liveroom-go/internal/service"
	"time"

	"github.com/gin-gonic/gin"
)

// WsMessageHandler 负责处理直播间聊天消息相关的 API 请求。
type WsMessageHandler struct {
	messageService service.WsMessageService
}

// NewWsMessageHandler 创建一个新的 WsMessageHandler 实例。
func NewWsMessageHandler(messageService service.WsMessageService) *WsMessageHandler {
	return &WsMessageHandler{messageService: messageService}
}

// List 处理消息分页列表请求。
func (h *WsMessageHandler) List(c *gin.Context) {
	var q model.WsMessageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "无效的查询参数")
		return
	}
	res, err := h.messageService.GetList(c.Request.Context(), q)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, res)
}

func (h *WsMessageHandler) Find(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	msg, err := h.messageService.Find(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, msg)
}

// Create 创建一条消息，未传 ip、user_agent、send_msg_time 时从请求中补全。
func (h *WsMessageHandler) Create(c *gin.Context) {
	var msg model.WsMessage
	if err := c.ShouldBindJSON(&msg); err != nil {
		badRequest(c, "无效的请求负载")
		return
	}
	msg.ID = 0
	if msg.IP == "" {
		msg.IP = c.ClientIP()
	}
	if msg.UserAgent == "" {
		msg.UserAgent = c.Request.UserAgent()
	}
	if msg.SendMsgTime == 0 {
		msg.SendMsgTime = time.Now().UnixMilli()
	}
	if err := h.messageService.Create(c.Request.Context(), &msg); err != nil {
		fail(c, err)
		return
	}
	success(c, msg)
}

func (h *WsMessageHandler) Update(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var patch model.WsMessagePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "无效的请求负载")
		return
	}
	if err := h.messageService.Update(c.Request.Context(), id, patch); err != nil {
		fail(c, err)
		return
	}
	success(c, nil)
}

// UpdateIsShowRequest 定义了修改消息显示状态的请求体。
type UpdateIsShowRequest struct {
	IsShow *int `json:"is_show" binding:"required,oneof=0 1"`
}

func (h *WsMessageHandler) UpdateIsShow(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req UpdateIsShowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "is_show 只能是 0 或 1")
		return
	}
	if err := h.messageService.UpdateIsShow(c.Request.Context(), id, *req.IsShow); err != nil {
		fail(c, err)
		return
	}
	success(c, nil)
}

func (h *WsMessageHandler) Delete(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.messageService.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	success(c, nil)
}
