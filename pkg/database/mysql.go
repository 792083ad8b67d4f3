package database

import (
	"liveroom-go/internal/config"
	"liveroom-go/internal/model"
	"liveroom-go/pkg/log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// InitMySQL 打开 MySQL 连接池，auto_migrate 打开时同步 ws_message 和 file_record 两张表。
func InitMySQL(cfg config.MySQLConfig) {
	var err error
	DB, err = gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		// 只记录慢查询和错误
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatal("failed to connect database", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		log.Fatal("failed to get sql.DB", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if cfg.AutoMigrate {
		if err := AutoMigrate(DB); err != nil {
			log.Fatal("failed to migrate database", err)
		}
	}

	log.Infow("MySQL database connected",
		"max_open_conns", cfg.MaxOpenConns,
		"auto_migrate", cfg.AutoMigrate,
	)
}

// AutoMigrate 创建或更新业务表。
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&model.WsMessage{}, &model.FileRecord{})
}
