package repository

import (
	"context"
	"errors"
	"liveroom-go/internal/model"
	"liveroom-go/internal/query"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FileRecordRepository 接口定义了文件元数据的数据持久化操作。
type FileRecordRepository interface {
	Count(ctx context.Context, ids []uint) (int64, error)
	FindOne(ctx context.Context, id uint) (*model.FileRecord, error)
	FindAndCountAll(ctx context.Context, pred query.Predicate, order clause.OrderBy, page query.Page) ([]model.FileRecord, int64, error)
	Create(ctx context.Context, record *model.FileRecord) error
	Update(ctx context.Context, id uint, columns map[string]any) error
	Destroy(ctx context.Context, id uint) error

	// FindByObjectKey 按对象键查找，不存在时返回 nil, nil。
	FindByObjectKey(ctx context.Context, objectKey string) (*model.FileRecord, error)
	// FindByPrefix 返回某个目录前缀下的全部记录。
	FindByPrefix(ctx context.Context, prefix string) ([]model.FileRecord, int64, error)
	// DestroyByPrefix 删除某个目录前缀下的全部记录，返回删除的行数。
	DestroyByPrefix(ctx context.Context, prefix string) (int64, error)
}

type fileRecordRepository struct {
	db *gorm.DB
}

// NewFileRecordRepository 创建一个新的 FileRecordRepository 实例。
func NewFileRecordRepository(db *gorm.DB) FileRecordRepository {
	return &fileRecordRepository{db: db}
}

func (r *fileRecordRepository) Count(ctx context.Context, ids []uint) (int64, error) {
	return countByIDs(r.db.WithContext(ctx).Model(&model.FileRecord{}), ids)
}

func (r *fileRecordRepository) FindOne(ctx context.Context, id uint) (*model.FileRecord, error) {
	var record model.FileRecord
	err := r.db.WithContext(ctx).First(&record, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *fileRecordRepository) FindAndCountAll(ctx context.Context, pred query.Predicate, order clause.OrderBy, page query.Page) ([]model.FileRecord, int64, error) {
	var rows []model.FileRecord
	total, err := findAndCount(r.db.WithContext(ctx), &model.FileRecord{}, &rows, pred, order, page)
	return rows, total, err
}

func (r *fileRecordRepository) Create(ctx context.Context, record *model.FileRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *fileRecordRepository) Update(ctx context.Context, id uint, columns map[string]any) error {
	if len(columns) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.FileRecord{}).Where("id = ?", id).Updates(columns).Error
}

func (r *fileRecordRepository) Destroy(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.FileRecord{}, id).Error
}

func (r *fileRecordRepository) FindByObjectKey(ctx context.Context, objectKey string) (*model.FileRecord, error) {
	var record model.FileRecord
	err := r.db.WithContext(ctx).Where("object_key = ?", objectKey).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *fileRecordRepository) FindByPrefix(ctx context.Context, prefix string) ([]model.FileRecord, int64, error) {
	var rows []model.FileRecord
	err := r.db.WithContext(ctx).Where("prefix = ?", prefix).Order("id").Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, int64(len(rows)), nil
}

func (r *fileRecordRepository) DestroyByPrefix(ctx context.Context, prefix string) (int64, error) {
	res := r.db.WithContext(ctx).Where("prefix = ?", prefix).Delete(&model.FileRecord{})
	return res.RowsAffected, res.Error
}
