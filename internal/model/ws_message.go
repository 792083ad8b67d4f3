// Package model 定义了与数据库表对应的 Go 结构体。
package model

import "time"

// WsMessage 定义了 ws_messages 表的 ORM 模型，即直播间内的一条聊天消息。
type WsMessage struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	MsgType        int       `gorm:"not null;default:0" json:"msg_type"`
	LiveRoomID     uint      `gorm:"index;not null" json:"live_room_id"`
	UserID         uint      `gorm:"index" json:"user_id"`
	IP             string    `gorm:"type:varchar(100)" json:"ip"`
	ContentType    int       `gorm:"not null;default:0" json:"content_type"`
	Content        string    `gorm:"type:text" json:"content"`
	OriginContent  string    `gorm:"type:text" json:"origin_content"`
	Username       string    `gorm:"type:varchar(100)" json:"username"`
	OriginUsername string    `gorm:"type:varchar(100)" json:"origin_username"`
	UserAgent      string    `gorm:"type:varchar(500)" json:"user_agent"`
	SendMsgTime    int64     `gorm:"index" json:"send_msg_time"` // unix 毫秒
	RedbagSendID   uint      `json:"redbag_send_id"`
	IsShow         int       `gorm:"not null;default:1" json:"is_show"`
	IsVerify       int       `gorm:"not null;default:1" json:"is_verify"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (WsMessage) TableName() string {
	return "ws_messages"
}

// WsMessagePatch 描述一次部分更新，nil 字段不参与更新。
type WsMessagePatch struct {
	MsgType        *int    `json:"msg_type"`
	LiveRoomID     *uint   `json:"live_room_id"`
	UserID         *uint   `json:"user_id"`
	IP             *string `json:"ip"`
	ContentType    *int    `json:"content_type"`
	Content        *string `json:"content"`
	OriginContent  *string `json:"origin_content"`
	Username       *string `json:"username"`
	OriginUsername *string `json:"origin_username"`
	UserAgent      *string `json:"user_agent"`
	SendMsgTime    *int64  `json:"send_msg_time"`
	RedbagSendID   *uint   `json:"redbag_send_id"`
	IsShow         *int    `json:"is_show"`
	IsVerify       *int    `json:"is_verify"`
}

// Columns 将非 nil 字段转换为列名到值的映射，供 gorm Updates 使用。
func (p WsMessagePatch) Columns() map[string]any {
	cols := make(map[string]any)
	putInt(cols, "msg_type", p.MsgType)
	putUint(cols, "live_room_id", p.LiveRoomID)
	putUint(cols, "user_id", p.UserID)
	putString(cols, "ip", p.IP)
	putInt(cols, "content_type", p.ContentType)
	putString(cols, "content", p.Content)
	putString(cols, "origin_content", p.OriginContent)
	putString(cols, "username", p.Username)
	putString(cols, "origin_username", p.OriginUsername)
	putString(cols, "user_agent", p.UserAgent)
	if p.SendMsgTime != nil {
		cols["send_msg_time"] = *p.SendMsgTime
	}
	putUint(cols, "redbag_send_id", p.RedbagSendID)
	putInt(cols, "is_show", p.IsShow)
	putInt(cols, "is_verify", p.IsVerify)
	return cols
}

// WsMessageQuery 是消息列表接口的查询参数。
type WsMessageQuery struct {
	ListParams
	MsgType      *int    `form:"msg_type"`
	RedbagSendID *uint   `form:"redbag_send_id"`
	LiveRoomID   *uint   `form:"live_room_id"`
	UserID       *uint   `form:"user_id"`
	IP           *string `form:"ip"`
	IsShow       *int    `form:"is_show"`
	IsVerify     *int    `form:"is_verify"`
}

func putInt(cols map[string]any, name string, v *int) {
	if v != nil {
		cols[name] = *v
	}
}

func putUint(cols map[string]any, name string, v *uint) {
	if v != nil {
		cols[name] = *v
	}
}

func putString(cols map[string]any, name string, v *string) {
	if v != nil {
		cols[name] = *v
	}
}
