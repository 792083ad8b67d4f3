package service

import (
	"context"
	"errors"
	"liveroom-go/internal/apperr"
	"liveroom-go/internal/cache"
	"liveroom-go/internal/model"
	"liveroom-go/internal/query"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// 列表缓存的命名空间
const (
	MessageListNamespace = "db_live_room_history_msg_list"
	FileListNamespace    = "db_file_record_list"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// 错误信息中使用 json 字段名
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationError 将 validator 的错误转换为面向用户的 ValidationError。
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.Validation("参数校验失败: %v", err)
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return apperr.Validation("%s不能为空！", fe.Field())
	case "max":
		return apperr.Validation("%s长度最大%s！", fe.Field(), fe.Param())
	default:
		return apperr.Validation("%s校验失败: %s", fe.Field(), fe.Tag())
	}
}

// timeRange 将毫秒时间戳参数转换为 TimeRange，milliColumns 中的列以毫秒时间戳存储。
func timeRange(p model.ListParams, milliColumns ...string) query.TimeRange {
	r := query.TimeRange{Column: p.RangTimeType}
	if r.Column == "" {
		return r
	}
	if p.RangTimeStart != nil {
		t := time.UnixMilli(*p.RangTimeStart)
		r.Start = &t
	}
	if p.RangTimeEnd != nil {
		t := time.UnixMilli(*p.RangTimeEnd)
		r.End = &t
	}
	for _, c := range milliColumns {
		if c == r.Column {
			r.UnixMilli = true
		}
	}
	return r
}

// listSpec 构造除精确匹配字段之外的公共部分，排序方向非法时返回 ValidationError。
func listSpec(p model.ListParams, keywordColumns []string, milliColumns ...string) (query.Spec, error) {
	dir, err := query.ParseDirection(p.OrderBy)
	if err != nil {
		return query.Spec{}, apperr.Validation("orderBy 只能是 asc 或 desc！")
	}
	return query.Spec{
		Keyword:        strings.TrimSpace(p.KeyWord),
		KeywordColumns: keywordColumns,
		Range:          timeRange(p, milliColumns...),
		OrderName:      p.OrderName,
		Direction:      dir,
		Page:           query.NewPage(p.NowPage, p.PageSize),
	}, nil
}

// cachedList 先读缓存，未命中时调用 load 并回填。scope 为 nil 时不走缓存。
func cachedList[T any](
	ctx context.Context,
	lc *cache.ListCache[model.PageResult[T]],
	namespace string,
	scope *uint,
	spec query.Spec,
	load func() (model.PageResult[T], error),
) (model.PageResult[T], error) {
	if scope == nil {
		return load()
	}
	key := cache.Key{
		Namespace: namespace,
		Scope:     scopeString(*scope),
		Variant:   spec.Fingerprint(),
	}
	if v, ok := lc.Read(ctx, key); ok {
		return v, nil
	}
	res, err := load()
	if err != nil {
		return res, err
	}
	lc.Write(ctx, key, res)
	return res, nil
}

func scopeString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
