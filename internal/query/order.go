package query

import (
	"fmt"
	"strings"

	"gorm.io/gorm/clause"
)

// ColumnKind 决定排序时列值的比较方式。
type ColumnKind int

const (
	// Lexical 按列的原始类型排序
	Lexical ColumnKind = iota
	// Numeric 列以文本存储但语义上是数字，排序前转换为整数
	Numeric
)

// DefaultColumn 未指定排序列时使用主键。
const DefaultColumn = "id"

// Columns 声明了某个资源可排序的列以及各自的比较方式。
type Columns map[string]ColumnKind

// Resolve 生成 ORDER BY 子句，并追加同方向的主键排序以保证分页稳定。
// 未声明的列按原样（加引号）透传，由数据库判断其是否存在。
func (c Columns) Resolve(name string, dir Direction) clause.OrderBy {
	if name == "" {
		name = DefaultColumn
	}
	desc := dir == Desc
	col := clause.Column{Name: name}
	tie := clause.Column{Name: DefaultColumn}

	if c[name] == Numeric {
		d := strings.ToUpper(string(Asc))
		if desc {
			d = strings.ToUpper(string(Desc))
		}
		return clause.OrderBy{Expression: clause.Expr{
			SQL:                fmt.Sprintf("CAST(? AS SIGNED) %s, ? %s", d, d),
			Vars:               []any{col, tie},
			WithoutParentheses: true,
		}}
	}

	cols := []clause.OrderByColumn{{Column: col, Desc: desc}}
	if name != DefaultColumn {
		cols = append(cols, clause.OrderByColumn{Column: tie, Desc: desc})
	}
	return clause.OrderBy{Columns: cols}
}
