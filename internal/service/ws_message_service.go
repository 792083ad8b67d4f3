// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"fmt"
	"liveroom-go/internal/apperr"
	"liveroom-go/internal/cache"
	"liveroom-go/internal/model"
	"liveroom-go/internal/query"
	"liveroom-go/internal/repository"
	"liveroom-go/pkg/log"
	"unicode/utf8"
)

// wsMessageColumns 消息表可排序的列，全部按原始类型比较。
var wsMessageColumns = query.Columns{
	"id":             query.Lexical,
	"msg_type":       query.Lexical,
	"live_room_id":   query.Lexical,
	"user_id":        query.Lexical,
	"send_msg_time":  query.Lexical,
	"redbag_send_id": query.Lexical,
	"is_show":        query.Lexical,
	"is_verify":      query.Lexical,
	"created_at":     query.Lexical,
	"updated_at":     query.Lexical,
}

var wsMessageKeywordColumns = []string{"content", "username"}

// MessageNotifier 在消息创建后推送给直播间内的在线连接。
type MessageNotifier interface {
	Publish(roomID uint, msg model.WsMessage)
}

// WsMessageService 接口定义了直播间聊天消息相关的业务操作。
type WsMessageService interface {
	IsExist(ctx context.Context, ids []uint) (bool, error)
	Create(ctx context.Context, msg *model.WsMessage) error
	Find(ctx context.Context, id uint) (*model.WsMessage, error)
	Update(ctx context.Context, id uint, patch model.WsMessagePatch) error
	UpdateIsShow(ctx context.Context, id uint, isShow int) error
	Delete(ctx context.Context, id uint) error
	GetList(ctx context.Context, q model.WsMessageQuery) (model.PageResult[model.WsMessage], error)
}

type wsMessageService struct {
	repo        repository.WsMessageRepository
	listCache   *cache.ListCache[model.PageResult[model.WsMessage]]
	invalidator cache.Invalidator
	notifier    MessageNotifier
	maxLength   int
}

// NewWsMessageService 创建一个新的 WsMessageService 实例。notifier 可以为 nil。
func NewWsMessageService(
	repo repository.WsMessageRepository,
	listCache *cache.ListCache[model.PageResult[model.WsMessage]],
	invalidator cache.Invalidator,
	notifier MessageNotifier,
	maxLength int,
) WsMessageService {
	if invalidator == nil {
		invalidator = cache.NopInvalidator()
	}
	return &wsMessageService{
		repo:        repo,
		listCache:   listCache,
		invalidator: invalidator,
		notifier:    notifier,
		maxLength:   maxLength,
	}
}

// IsExist 判断 ids 对应的消息是否全部存在。
func (s *wsMessageService) IsExist(ctx context.Context, ids []uint) (bool, error) {
	n, err := s.repo.Count(ctx, ids)
	if err != nil {
		return false, apperr.Query(err, "查询消息是否存在失败")
	}
	return n == int64(len(ids)), nil
}

func (s *wsMessageService) validateContent(content string) error {
	if err := validate.Var(content, fmt.Sprintf("max=%d", s.maxLength)); err != nil {
		return apperr.Validation("消息长度最大%d！（当前%d）", s.maxLength, utf8.RuneCountInString(content))
	}
	return nil
}

// Create 校验消息长度后写入数据库，随后推送给直播间并失效该直播间的列表缓存。
func (s *wsMessageService) Create(ctx context.Context, msg *model.WsMessage) error {
	if err := s.validateContent(msg.Content); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		return apperr.Query(err, "创建消息失败")
	}
	log.Debugw("[WsMessage] 消息已创建", "id", msg.ID, "live_room_id", msg.LiveRoomID)

	if s.notifier != nil {
		s.notifier.Publish(msg.LiveRoomID, *msg)
	}
	s.invalidator.Invalidate(ctx, MessageListNamespace, scopeString(msg.LiveRoomID))
	return nil
}

// Find 查找消息，不存在时返回 nil, nil。
func (s *wsMessageService) Find(ctx context.Context, id uint) (*model.WsMessage, error) {
	msg, err := s.repo.FindOne(ctx, id)
	if err != nil {
		return nil, apperr.Query(err, "查询消息失败")
	}
	return msg, nil
}

// Update 只校验并更新 patch 中出现的字段。
func (s *wsMessageService) Update(ctx context.Context, id uint, patch model.WsMessagePatch) error {
	existing, err := s.repo.FindOne(ctx, id)
	if err != nil {
		return apperr.Query(err, "查询消息失败")
	}
	if existing == nil {
		return apperr.NotFound("不存在id为%d的消息！", id)
	}
	if patch.Content != nil {
		if err := s.validateContent(*patch.Content); err != nil {
			return err
		}
	}

	cols := patch.Columns()
	if len(cols) == 0 {
		return nil
	}
	if err := s.repo.Update(ctx, id, cols); err != nil {
		return apperr.Query(err, "更新消息失败")
	}

	s.invalidator.Invalidate(ctx, MessageListNamespace, scopeString(existing.LiveRoomID))
	if patch.LiveRoomID != nil && *patch.LiveRoomID != existing.LiveRoomID {
		s.invalidator.Invalidate(ctx, MessageListNamespace, scopeString(*patch.LiveRoomID))
	}
	return nil
}

// UpdateIsShow 修改消息的显示状态。
func (s *wsMessageService) UpdateIsShow(ctx context.Context, id uint, isShow int) error {
	return s.Update(ctx, id, model.WsMessagePatch{IsShow: &isShow})
}

// Delete 先检查消息存在再删除，不存在时不做任何修改。
func (s *wsMessageService) Delete(ctx context.Context, id uint) error {
	ok, err := s.IsExist(ctx, []uint{id})
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("不存在id为%d的消息！", id)
	}

	var room *uint
	if s.invalidator.Active() {
		if msg, err := s.repo.FindOne(ctx, id); err == nil && msg != nil {
			room = &msg.LiveRoomID
		}
	}
	if err := s.repo.Destroy(ctx, id); err != nil {
		return apperr.Query(err, "删除消息失败")
	}
	if room != nil {
		s.invalidator.Invalidate(ctx, MessageListNamespace, scopeString(*room))
	}
	return nil
}

// GetList 返回分页的消息列表。带 live_room_id 的请求按直播间缓存。
func (s *wsMessageService) GetList(ctx context.Context, q model.WsMessageQuery) (model.PageResult[model.WsMessage], error) {
	spec, err := listSpec(q.ListParams, wsMessageKeywordColumns, "send_msg_time")
	if err != nil {
		return model.PageResult[model.WsMessage]{}, err
	}
	spec.Equals = map[string]any{
		"msg_type":       q.MsgType,
		"redbag_send_id": q.RedbagSendID,
		"live_room_id":   q.LiveRoomID,
		"user_id":        q.UserID,
		"ip":             q.IP,
		"is_show":        q.IsShow,
		"is_verify":      q.IsVerify,
	}

	return cachedList(ctx, s.listCache, MessageListNamespace, q.LiveRoomID, spec, func() (model.PageResult[model.WsMessage], error) {
		rows, total, err := s.repo.FindAndCountAll(ctx,
			query.Compile(spec),
			wsMessageColumns.Resolve(spec.OrderName, spec.Direction),
			spec.Page,
		)
		if err != nil {
			return model.PageResult[model.WsMessage]{}, apperr.Query(err, "查询消息列表失败")
		}
		return query.Wrap(rows, total, spec.Page), nil
	})
}
