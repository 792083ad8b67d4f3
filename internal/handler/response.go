// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"liveroom-go/internal/apperr"
	"liveroom-go/pkg/log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": data})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"code": apperr.CodeParamsError, "message": message, "data": nil})
}

// fail 将业务层错误翻译为统一的响应结构。
func fail(c *gin.Context, err error) {
	if e, ok := apperr.As(err); ok {
		if e.Kind == apperr.KindQuery {
			log.Error(e.Message, e.Err)
		}
		c.JSON(e.HTTPStatus, gin.H{"code": e.Code, "message": e.Message, "data": nil})
		return
	}
	log.Error("未处理的错误", err)
	c.JSON(http.StatusInternalServerError, gin.H{"code": apperr.CodeServerError, "message": "服务器内部错误", "data": nil})
}

// paramID 解析路径参数 :id，失败时已写入响应。
func paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "无效的 id")
		return 0, false
	}
	return uint(id), true
}
