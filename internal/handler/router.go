package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes 注册全部业务路由以及 /healthz、/metrics。
func RegisterRoutes(r *gin.Engine, messages *WsMessageHandler, files *FileRecordHandler, rooms *LiveRoomHandler) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiV1 := r.Group("/api/v1")
	{
		msg := apiV1.Group("/ws_message")
		{
			msg.GET("/list", messages.List)
			msg.GET("/find/:id", messages.Find)
			msg.POST("/create", messages.Create)
			msg.PUT("/update/:id", messages.Update)
			msg.PUT("/update_is_show/:id", messages.UpdateIsShow)
			msg.DELETE("/delete/:id", messages.Delete)
		}

		file := apiV1.Group("/file_record")
		{
			file.GET("/list", files.List)
			file.GET("/find/:id", files.Find)
			file.GET("/find_by_key", files.FindByKey)
			file.GET("/prefix", files.Prefix)
			file.POST("/create", files.Create)
			file.PUT("/update/:id", files.Update)
			file.DELETE("/delete/:id", files.Delete)
			file.DELETE("/batch_delete", files.BatchDelete)
			file.GET("/url/:id", files.URL)
		}

		// 直播间 WebSocket
		apiV1.GET("/live_room/:id/ws", rooms.Connect)
	}
}
