package model

import "time"

// FileRecord 定义了 file_records 表的 ORM 模型。
// 它记录了对象存储中一个文件的元数据。
type FileRecord struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint   `gorm:"index" json:"user_id"`
	Prefix    string `gorm:"type:varchar(255);index" json:"prefix"`
	Bucket    string `gorm:"type:varchar(100);not null" json:"bucket" validate:"required"`
	ObjectKey string `gorm:"type:varchar(500);not null;index" json:"object_key" validate:"required"`
	// Fsize 以文本存储，但语义上是字节数
	Fsize string `gorm:"type:varchar(50)" json:"fsize"`
	Hash  string `gorm:"type:varchar(100)" json:"hash"`
	MD5   string `gorm:"column:md5;type:varchar(32)" json:"md5"`
	// MimeType 文件类型
	MimeType string `gorm:"type:varchar(100)" json:"mime_type"`
	// PutTime 以文本存储的上传时间戳（100 纳秒单位）
	PutTime     string    `gorm:"type:varchar(50)" json:"put_time"`
	Status      int       `gorm:"not null;default:0" json:"status"`
	StorageType int       `gorm:"not null;default:0" json:"storage_type"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (FileRecord) TableName() string {
	return "file_records"
}

// FileRecordPatch 描述对文件记录的部分更新。
type FileRecordPatch struct {
	UserID      *uint   `json:"user_id"`
	Prefix      *string `json:"prefix"`
	Bucket      *string `json:"bucket"`
	ObjectKey   *string `json:"object_key"`
	Fsize       *string `json:"fsize"`
	Hash        *string `json:"hash"`
	MD5         *string `json:"md5"`
	MimeType    *string `json:"mime_type"`
	PutTime     *string `json:"put_time"`
	Status      *int    `json:"status"`
	StorageType *int    `json:"storage_type"`
}

// Columns 将非 nil 字段转换为列名到值的映射。
func (p FileRecordPatch) Columns() map[string]any {
	cols := make(map[string]any)
	putUint(cols, "user_id", p.UserID)
	putString(cols, "prefix", p.Prefix)
	putString(cols, "bucket", p.Bucket)
	putString(cols, "object_key", p.ObjectKey)
	putString(cols, "fsize", p.Fsize)
	putString(cols, "hash", p.Hash)
	putString(cols, "md5", p.MD5)
	putString(cols, "mime_type", p.MimeType)
	putString(cols, "put_time", p.PutTime)
	putInt(cols, "status", p.Status)
	putInt(cols, "storage_type", p.StorageType)
	return cols
}

// FileRecordQuery 是文件列表接口的查询参数。
type FileRecordQuery struct {
	ListParams
	ID     *uint   `form:"id"`
	UserID *uint   `form:"user_id"`
	Prefix *string `form:"prefix"`
}
