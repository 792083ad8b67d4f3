package service

import (
	"context"
	"liveroom-go/internal/apperr"
	"liveroom-go/internal/cache"
	"liveroom-go/internal/model"
	"liveroom-go/internal/query"
	"liveroom-go/internal/repository"
	"liveroom-go/pkg/log"
	"strings"
	"time"
)

// fsize 与 put_time 以文本存储，排序时按数字比较
var fileRecordColumns = query.Columns{
	"id":           query.Lexical,
	"user_id":      query.Lexical,
	"prefix":       query.Lexical,
	"object_key":   query.Lexical,
	"fsize":        query.Numeric,
	"put_time":     query.Numeric,
	"status":       query.Lexical,
	"storage_type": query.Lexical,
	"created_at":   query.Lexical,
	"updated_at":   query.Lexical,
}

var fileRecordKeywordColumns = []string{"object_key"}

// URLSigner 为对象存储中的文件生成临时下载地址。
type URLSigner interface {
	PresignedGetURL(ctx context.Context, bucket, objectKey string, expiry time.Duration) (string, error)
}

// FileRecordService 接口定义了文件元数据相关的业务操作。
type FileRecordService interface {
	IsExist(ctx context.Context, ids []uint) (bool, error)
	Create(ctx context.Context, record *model.FileRecord) error
	Find(ctx context.Context, id uint) (*model.FileRecord, error)
	FindByObjectKey(ctx context.Context, objectKey string) (*model.FileRecord, error)
	Update(ctx context.Context, id uint, patch model.FileRecordPatch) error
	Delete(ctx context.Context, id uint) error
	ListByPrefix(ctx context.Context, prefix string) ([]model.FileRecord, int64, error)
	BatchDeleteByPrefix(ctx context.Context, prefix string) (int64, error)
	PresignURL(ctx context.Context, id uint) (string, error)
	GetList(ctx context.Context, q model.FileRecordQuery) (model.PageResult[model.FileRecord], error)
}

type fileRecordService struct {
	repo          repository.FileRecordRepository
	listCache     *cache.ListCache[model.PageResult[model.FileRecord]]
	invalidator   cache.Invalidator
	signer        URLSigner
	presignExpiry time.Duration
}

// NewFileRecordService 创建一个新的 FileRecordService 实例。signer 为 nil 时不支持生成下载地址。
func NewFileRecordService(
	repo repository.FileRecordRepository,
	listCache *cache.ListCache[model.PageResult[model.FileRecord]],
	invalidator cache.Invalidator,
	signer URLSigner,
	presignExpiry time.Duration,
) FileRecordService {
	if invalidator == nil {
		invalidator = cache.NopInvalidator()
	}
	return &fileRecordService{
		repo:          repo,
		listCache:     listCache,
		invalidator:   invalidator,
		signer:        signer,
		presignExpiry: presignExpiry,
	}
}

func (s *fileRecordService) IsExist(ctx context.Context, ids []uint) (bool, error) {
	n, err := s.repo.Count(ctx, ids)
	if err != nil {
		return false, apperr.Query(err, "查询文件是否存在失败")
	}
	return n == int64(len(ids)), nil
}

func (s *fileRecordService) Create(ctx context.Context, record *model.FileRecord) error {
	if err := validate.Struct(record); err != nil {
		return validationError(err)
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return apperr.Query(err, "创建文件记录失败")
	}
	s.invalidator.Invalidate(ctx, FileListNamespace, scopeString(record.UserID))
	return nil
}

func (s *fileRecordService) Find(ctx context.Context, id uint) (*model.FileRecord, error) {
	record, err := s.repo.FindOne(ctx, id)
	if err != nil {
		return nil, apperr.Query(err, "查询文件记录失败")
	}
	return record, nil
}

// FindByObjectKey 按对象键查找文件记录，不存在时返回 nil, nil。
func (s *fileRecordService) FindByObjectKey(ctx context.Context, objectKey string) (*model.FileRecord, error) {
	if objectKey == "" {
		return nil, apperr.Validation("object_key不能为空！")
	}
	record, err := s.repo.FindByObjectKey(ctx, objectKey)
	if err != nil {
		return nil, apperr.Query(err, "查询文件记录失败")
	}
	return record, nil
}

func (s *fileRecordService) Update(ctx context.Context, id uint, patch model.FileRecordPatch) error {
	existing, err := s.repo.FindOne(ctx, id)
	if err != nil {
		return apperr.Query(err, "查询文件记录失败")
	}
	if existing == nil {
		return apperr.NotFound("不存在id为%d的文件！", id)
	}
	if patch.Bucket != nil && *patch.Bucket == "" {
		return apperr.Validation("bucket不能为空！")
	}
	if patch.ObjectKey != nil && *patch.ObjectKey == "" {
		return apperr.Validation("object_key不能为空！")
	}

	cols := patch.Columns()
	if len(cols) == 0 {
		return nil
	}
	if err := s.repo.Update(ctx, id, cols); err != nil {
		return apperr.Query(err, "更新文件记录失败")
	}

	s.invalidator.Invalidate(ctx, FileListNamespace, scopeString(existing.UserID))
	if patch.UserID != nil && *patch.UserID != existing.UserID {
		s.invalidator.Invalidate(ctx, FileListNamespace, scopeString(*patch.UserID))
	}
	return nil
}

func (s *fileRecordService) Delete(ctx context.Context, id uint) error {
	ok, err := s.IsExist(ctx, []uint{id})
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("不存在id为%d的文件！", id)
	}

	var owner *uint
	if s.invalidator.Active() {
		if record, err := s.repo.FindOne(ctx, id); err == nil && record != nil {
			owner = &record.UserID
		}
	}
	if err := s.repo.Destroy(ctx, id); err != nil {
		return apperr.Query(err, "删除文件记录失败")
	}
	if owner != nil {
		s.invalidator.Invalidate(ctx, FileListNamespace, scopeString(*owner))
	}
	return nil
}

// ListByPrefix 返回某个目录前缀下的全部文件记录。
func (s *fileRecordService) ListByPrefix(ctx context.Context, prefix string) ([]model.FileRecord, int64, error) {
	rows, total, err := s.repo.FindByPrefix(ctx, prefix)
	if err != nil {
		return nil, 0, apperr.Query(err, "查询目录失败")
	}
	if rows == nil {
		rows = make([]model.FileRecord, 0)
	}
	return rows, total, nil
}

// BatchDeleteByPrefix 删除某个目录前缀下的全部文件记录，返回删除条数。
func (s *fileRecordService) BatchDeleteByPrefix(ctx context.Context, prefix string) (int64, error) {
	if strings.TrimSpace(prefix) == "" {
		return 0, apperr.Validation("prefix不能为空！")
	}

	owners := make(map[uint]struct{})
	if s.invalidator.Active() {
		rows, _, err := s.repo.FindByPrefix(ctx, prefix)
		if err != nil {
			return 0, apperr.Query(err, "查询目录失败")
		}
		for _, r := range rows {
			owners[r.UserID] = struct{}{}
		}
	}

	n, err := s.repo.DestroyByPrefix(ctx, prefix)
	if err != nil {
		return 0, apperr.Query(err, "批量删除文件记录失败")
	}
	log.Infof("[FileRecord] 已按前缀 %q 删除 %d 条记录", prefix, n)

	for uid := range owners {
		s.invalidator.Invalidate(ctx, FileListNamespace, scopeString(uid))
	}
	return n, nil
}

// PresignURL 为文件记录指向的对象生成临时下载地址。
func (s *fileRecordService) PresignURL(ctx context.Context, id uint) (string, error) {
	if s.signer == nil {
		return "", apperr.Validation("未启用对象存储，无法生成下载地址！")
	}
	record, err := s.Find(ctx, id)
	if err != nil {
		return "", err
	}
	if record == nil {
		return "", apperr.NotFound("不存在id为%d的文件！", id)
	}
	url, err := s.signer.PresignedGetURL(ctx, record.Bucket, record.ObjectKey, s.presignExpiry)
	if err != nil {
		return "", apperr.Query(err, "生成下载地址失败")
	}
	return url, nil
}

// GetList 返回分页的文件列表。带 user_id 的请求按用户缓存。
func (s *fileRecordService) GetList(ctx context.Context, q model.FileRecordQuery) (model.PageResult[model.FileRecord], error) {
	spec, err := listSpec(q.ListParams, fileRecordKeywordColumns)
	if err != nil {
		return model.PageResult[model.FileRecord]{}, err
	}
	spec.Equals = map[string]any{
		"id":      q.ID,
		"user_id": q.UserID,
		"prefix":  q.Prefix,
	}

	return cachedList(ctx, s.listCache, FileListNamespace, q.UserID, spec, func() (model.PageResult[model.FileRecord], error) {
		rows, total, err := s.repo.FindAndCountAll(ctx,
			query.Compile(spec),
			fileRecordColumns.Resolve(spec.OrderName, spec.Direction),
			spec.Page,
		)
		if err != nil {
			return model.PageResult[model.FileRecord]{}, apperr.Query(err, "查询文件列表失败")
		}
		return query.Wrap(rows, total, spec.Page), nil
	})
}
