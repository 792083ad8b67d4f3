// Package repository 定义了与数据库进行数据交换的接口和实现。
package repository

import (
	"context"
	"errors"
	"liveroom-go/internal/model"
	"liveroom-go/internal/query"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WsMessageRepository 接口定义了直播间聊天消息的数据持久化操作。
type WsMessageRepository interface {
	// Count 返回 ids 中实际存在的记录数。
	Count(ctx context.Context, ids []uint) (int64, error)
	// FindOne 按主键查找，记录不存在时返回 nil, nil。
	FindOne(ctx context.Context, id uint) (*model.WsMessage, error)
	FindAndCountAll(ctx context.Context, pred query.Predicate, order clause.OrderBy, page query.Page) ([]model.WsMessage, int64, error)
	Create(ctx context.Context, msg *model.WsMessage) error
	Update(ctx context.Context, id uint, columns map[string]any) error
	Destroy(ctx context.Context, id uint) error
}

type wsMessageRepository struct {
	db *gorm.DB
}

// NewWsMessageRepository 创建一个新的 WsMessageRepository 实例。
func NewWsMessageRepository(db *gorm.DB) WsMessageRepository {
	return &wsMessageRepository{db: db}
}

func (r *wsMessageRepository) Count(ctx context.Context, ids []uint) (int64, error) {
	return countByIDs(r.db.WithContext(ctx).Model(&model.WsMessage{}), ids)
}

func (r *wsMessageRepository) FindOne(ctx context.Context, id uint) (*model.WsMessage, error) {
	var msg model.WsMessage
	err := r.db.WithContext(ctx).First(&msg, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// FindAndCountAll 返回当前页的数据以及满足条件的总数。
func (r *wsMessageRepository) FindAndCountAll(ctx context.Context, pred query.Predicate, order clause.OrderBy, page query.Page) ([]model.WsMessage, int64, error) {
	var rows []model.WsMessage
	total, err := findAndCount(r.db.WithContext(ctx), &model.WsMessage{}, &rows, pred, order, page)
	return rows, total, err
}

func (r *wsMessageRepository) Create(ctx context.Context, msg *model.WsMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

// Update 只更新 columns 中出现的列，WHERE 条件为主键，因此最多影响一行。
func (r *wsMessageRepository) Update(ctx context.Context, id uint, columns map[string]any) error {
	if len(columns) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.WsMessage{}).Where("id = ?", id).Updates(columns).Error
}

func (r *wsMessageRepository) Destroy(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.WsMessage{}, id).Error
}
