package query

import (
	"liveroom-go/internal/model"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// dryRun 返回一个只生成 SQL 不执行的 gorm 实例。
func dryRun(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{DryRun: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	return db
}

// buildSelect 生成 ws_messages 上的 SELECT 语句及其参数。
func buildSelect(t *testing.T, scope func(*gorm.DB) *gorm.DB) (string, []any) {
	t.Helper()
	var rows []model.WsMessage
	stmt := dryRun(t).Model(&model.WsMessage{}).Scopes(scope).Find(&rows).Statement
	return stmt.SQL.String(), stmt.Vars
}
