// Package query 把列表接口的稀疏查询参数编译成 gorm 可用的过滤、排序与分页子句。
package query

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Direction 排序方向
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection 解析排序方向，空串视为升序。
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(Asc):
		return Asc, nil
	case string(Desc):
		return Desc, nil
	default:
		return "", fmt.Errorf("invalid order direction %q", s)
	}
}

// TimeRange 描述对某一列的时间范围过滤，Column 为空时不生效。
type TimeRange struct {
	Column string
	Start  *time.Time
	End    *time.Time
	// UnixMilli 为 true 时，列中存储的是毫秒时间戳而不是 datetime
	UnixMilli bool
}

// Spec 是一次列表请求的完整查询描述。
type Spec struct {
	// Equals 精确匹配的列，nil 指针与空字符串会被忽略
	Equals         map[string]any
	Keyword        string
	KeywordColumns []string
	Range          TimeRange
	OrderName      string
	Direction      Direction
	Page           Page
}

// Fingerprint 返回查询形状的稳定哈希，编译结果相同的两个 Spec 得到相同的值。
func (s Spec) Fingerprint() uint64 {
	d := xxhash.New()
	write := func(parts ...string) {
		for _, p := range parts {
			_, _ = d.WriteString(p)
			_, _ = d.WriteString("\x1f")
		}
	}

	for _, name := range sortedKeys(s.Equals) {
		if v, ok := presentValue(s.Equals[name]); ok {
			write("eq", name, fmt.Sprint(v))
		}
	}
	if s.Keyword != "" {
		write("kw", s.Keyword)
		write(s.KeywordColumns...)
	}
	if s.Range.Column != "" {
		write("range", s.Range.Column, timeKey(s.Range.Start), timeKey(s.Range.End))
	}
	dir := s.Direction
	if dir == "" {
		dir = Asc
	}
	orderName := s.OrderName
	if orderName == "" {
		orderName = DefaultColumn
	}
	write("order", orderName, string(dir))
	write("page", strconv.Itoa(s.Page.Number), strconv.Itoa(s.Page.Size))
	return d.Sum64()
}

func timeKey(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return strconv.FormatInt(t.UnixNano(), 10)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// presentValue 解引用指针，并判断该值是否应参与过滤。
func presentValue(v any) (any, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.String && rv.Len() == 0 {
		return nil, false
	}
	return rv.Interface(), true
}
