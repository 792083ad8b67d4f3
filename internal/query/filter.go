package query

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Predicate 是编译后的 WHERE 条件，各组之间为 AND 关系。
type Predicate struct {
	exprs []clause.Expression
}

// Compile 将 Spec 中的精确匹配、关键字与时间范围编译为 Predicate。
// 缺失的输入不会产生任何条件，Compile 本身不会失败。
func Compile(s Spec) Predicate {
	var exprs []clause.Expression

	for _, name := range sortedKeys(s.Equals) {
		v, ok := presentValue(s.Equals[name])
		if !ok {
			continue
		}
		exprs = append(exprs, clause.Eq{Column: clause.Column{Name: name}, Value: v})
	}

	if kw := compileKeyword(s.Keyword, s.KeywordColumns); kw != nil {
		exprs = append(exprs, kw)
	}

	exprs = append(exprs, compileRange(s.Range)...)
	return Predicate{exprs: exprs}
}

func compileKeyword(keyword string, columns []string) clause.Expression {
	if keyword == "" || len(columns) == 0 {
		return nil
	}
	pattern := "%" + keyword + "%"
	likes := make([]clause.Expression, 0, len(columns))
	for _, col := range columns {
		likes = append(likes, clause.Like{Column: clause.Column{Name: col}, Value: pattern})
	}
	// 单个 OrConditions 会被 gorm 以 OR 拼接到前一个条件上，只有一列时直接返回
	if len(likes) == 1 {
		return likes[0]
	}
	return clause.Or(likes...)
}

func compileRange(r TimeRange) []clause.Expression {
	if r.Column == "" {
		return nil
	}
	col := clause.Column{Name: r.Column}
	value := func(t time.Time) any {
		if r.UnixMilli {
			return t.UnixMilli()
		}
		return t
	}

	var exprs []clause.Expression
	if r.Start != nil {
		exprs = append(exprs, clause.Gte{Column: col, Value: value(*r.Start)})
	}
	if r.End != nil {
		exprs = append(exprs, clause.Lte{Column: col, Value: value(*r.End)})
	}
	return exprs
}

// Empty 报告 Predicate 是否不包含任何条件。
func (p Predicate) Empty() bool {
	return len(p.exprs) == 0
}

// Exprs 返回条件表达式的副本。
func (p Predicate) Exprs() []clause.Expression {
	return append([]clause.Expression(nil), p.exprs...)
}

// Apply 将条件附加到 gorm 查询上，可直接用作 Scopes 参数。
func (p Predicate) Apply(db *gorm.DB) *gorm.DB {
	if p.Empty() {
		return db
	}
	return db.Clauses(clause.Where{Exprs: p.Exprs()})
}
