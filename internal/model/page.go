package model

// ListParams 是所有列表接口共用的排序、分页、关键字与时间范围参数。
type ListParams struct {
	OrderBy   string `form:"orderBy"`
	OrderName string `form:"orderName"`
	NowPage   int    `form:"nowPage"`
	PageSize  int    `form:"pageSize"`
	KeyWord   string `form:"keyWord"`
	// RangTimeType 是时间范围过滤所作用的列名，例如 created_at
	RangTimeType string `form:"rangTimeType"`
	// RangTimeStart / RangTimeEnd 为 unix 毫秒时间戳
	RangTimeStart *int64 `form:"rangTimeStart"`
	RangTimeEnd   *int64 `form:"rangTimeEnd"`
}

// PageResult 是分页列表的统一返回结构。
type PageResult[T any] struct {
	Items       []T   `json:"items"`
	TotalItems  int64 `json:"totalItems"`
	CurrentPage int   `json:"currentPage"`
	PageSize    int   `json:"pageSize"`
	TotalPages  int   `json:"totalPages"`
}
