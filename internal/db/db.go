package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB 是一个全局的数据库连接实例
var DB *gorm.DB

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Init 打开数据库连接、执行自动迁移并设置全局 DB。
// sqlite 驱动下 dsn 为空时回退到默认文件 inkwell.db。
func Init(driver, dsn string) error {
	gdb, err := Open(driver, dsn, logger.Warn)
	if err != nil {
		return err
	}
	if err := Migrate(gdb); err != nil {
		return err
	}
	DB = gdb
	return nil
}

// Open 根据驱动名称选择 gorm 方言并建立连接。
func Open(driver, dsn string, level logger.LogLevel) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverPostgres:
		if strings.TrimSpace(dsn) == "" {
			return nil, errors.New("postgres driver requires a DSN")
		}
		dialector = postgres.Open(dsn)
	case "", DriverSQLite:
		path := strings.TrimSpace(dsn)
		if path == "" {
			path = "inkwell.db"
		}
		if !strings.HasPrefix(path, "file:") {
			if err := ensureParentDir(path); err != nil {
				return nil, err
			}
		}
		dialector = sqlite.Open(path)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	return gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
}

// Migrate 为核心模型建表；post_tags 使用显式的关联模型，便于按 post_id 批量删除。
func Migrate(gdb *gorm.DB) error {
	if err := gdb.SetupJoinTable(&Post{}, "Tags", &PostTag{}); err != nil {
		return err
	}
	return gdb.AutoMigrate(
		&User{},
		&UserRole{},
		&Category{},
		&Tag{},
		&Post{},
		&PostTag{},
	)
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
