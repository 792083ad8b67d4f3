package query

import (
	"liveroom-go/internal/model"
	"math"
)

const (
	DefaultPageNumber = 1
	DefaultPageSize   = 10
	MaxPageSize       = 100
)

// MaxPageNumber 保证 (Number-1)*Size 在 32 位 int 下也不会溢出。
const MaxPageNumber = math.MaxInt32/MaxPageSize + 1

// Page 是规范化之后的页码与页大小。
type Page struct {
	Number int
	Size   int
}

// NewPage 对页码和页大小应用默认值与上限。
func NewPage(number, size int) Page {
	if number < 1 {
		number = DefaultPageNumber
	}
	if number > MaxPageNumber {
		number = MaxPageNumber
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{Number: number, Size: size}
}

// Offset 返回 (Number-1)*Size。
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Limit 返回 Size。
func (p Page) Limit() int {
	return p.Size
}

// TotalPages 向上取整计算总页数。
func TotalPages(total int64, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}

// Wrap 将查询结果包装为分页结构，rows 为 nil 时返回空切片以便 JSON 输出 []。
func Wrap[T any](rows []T, total int64, p Page) model.PageResult[T] {
	if rows == nil {
		rows = make([]T, 0)
	}
	return model.PageResult[T]{
		Items:       rows,
		TotalItems:  total,
		CurrentPage: p.Number,
		PageSize:    p.Size,
		TotalPages:  TotalPages(total, p.Size),
	}
}
