package handler

import (
	"liveroom-go/internal/model"
	"liveroom-go/internal/service"

	"github.com/gin-gonic/gin"
)

// FileRecordHandler 负责处理文件元数据相关的 API 请求。
type FileRecordHandler struct {
	fileService service.FileRecordService
}

// NewFileRecordHandler 创建一个新的 FileRecordHandler 实例。
func NewFileRecordHandler(fileService service.FileRecordService) *FileRecordHandler {
	return &FileRecordHandler{fileService: fileService}
}

func (h *FileRecordHandler) List(c *gin.Context) {
	var q model.FileRecordQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, "无效的查询参数")
		return
	}
	res, err := h.fileService.GetList(c.Request.Context(), q)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, res)
}

func (h *FileRecordHandler) Find(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	record, err := h.fileService.Find(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, record)
}

// FindByKey 按 object_key 查询参数查找文件记录。
func (h *FileRecordHandler) FindByKey(c *gin.Context) {
	record, err := h.fileService.FindByObjectKey(c.Request.Context(), c.Query("object_key"))
	if err != nil {
		fail(c, err)
		return
	}
	success(c, record)
}

// Prefix 返回某个目录前缀下的全部文件，响应格式为 {rows, count}。
func (h *FileRecordHandler) Prefix(c *gin.Context) {
	rows, count, err := h.fileService.ListByPrefix(c.Request.Context(), c.Query("prefix"))
	if err != nil {
		fail(c, err)
		return
	}
	success(c, gin.H{"rows": rows, "count": count})
}

func (h *FileRecordHandler) Create(c *gin.Context) {
	var record model.FileRecord
	if err := c.ShouldBindJSON(&record); err != nil {
		badRequest(c, "无效的请求负载")
		return
	}
	record.ID = 0
	if err := h.fileService.Create(c.Request.Context(), &record); err != nil {
		fail(c, err)
		return
	}
	success(c, record)
}

func (h *FileRecordHandler) Update(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var patch model.FileRecordPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "无效的请求负载")
		return
	}
	if err := h.fileService.Update(c.Request.Context(), id, patch); err != nil {
		fail(c, err)
		return
	}
	success(c, nil)
}

func (h *FileRecordHandler) Delete(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.fileService.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	success(c, nil)
}

// BatchDeleteRequest 定义了按目录批量删除的请求体。
type BatchDeleteRequest struct {
	Prefix string `json:"prefix" binding:"required"`
}

func (h *FileRecordHandler) BatchDelete(c *gin.Context) {
	var req BatchDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "prefix不能为空！")
		return
	}
	n, err := h.fileService.BatchDeleteByPrefix(c.Request.Context(), req.Prefix)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, gin.H{"deleted": n})
}

// URL 返回文件的临时下载地址。
func (h *FileRecordHandler) URL(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	url, err := h.fileService.PresignURL(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	success(c, gin.H{"url": url})
}
