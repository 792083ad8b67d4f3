package repository

import (
	"liveroom-go/internal/query"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func countByIDs(db *gorm.DB, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var n int64
	err := db.Where("id IN ?", ids).Count(&n).Error
	return n, err
}

// findAndCount 先统计总数再查询当前页，两条语句使用同一组过滤条件。
// 总数为 0 时仍然执行分页查询，排序列不存在等错误必须由数据库报出来。
func findAndCount(db *gorm.DB, modelPtr any, dest any, pred query.Predicate, order clause.OrderBy, page query.Page) (int64, error) {
	var total int64
	if err := db.Model(modelPtr).Scopes(pred.Apply).Count(&total).Error; err != nil {
		return 0, err
	}
	err := db.Model(modelPtr).
		Scopes(pred.Apply).
		Order(order).
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(dest).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}
