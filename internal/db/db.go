package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/inkwell/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
)

// Option tweaks the gorm configuration used by Open.
type Option func(*gorm.Config)

// WithLogger replaces gorm's default logger.
func WithLogger(l logger.Interface) Option {
	return func(c *gorm.Config) { c.Logger = l }
}

// Open 根据配置选择驱动并建立连接；配置了只读副本时注册 dbresolver。
func Open(cfg config.DatabaseConfig, opts ...Option) (*gorm.DB, error) {
	gormConfig := &gorm.Config{TranslateError: true}
	for _, opt := range opts {
		opt(gormConfig)
	}

	primary, err := dialector(cfg.Driver, cfg.Path, cfg.DSN)
	if err != nil {
		return nil, err
	}

	gdb, err := gorm.Open(primary, gormConfig)
	if err != nil {
		return nil, err
	}

	if len(cfg.Replicas) > 0 {
		replicas := make([]gorm.Dialector, 0, len(cfg.Replicas))
		for _, dsn := range cfg.Replicas {
			d, err := dialector(cfg.Driver, dsn, dsn)
			if err != nil {
				return nil, err
			}
			replicas = append(replicas, d)
		}
		if err := gdb.Use(dbresolver.Register(dbresolver.Config{
			Replicas: replicas,
			Policy:   dbresolver.RandomPolicy{},
		})); err != nil {
			return nil, fmt.Errorf("register read replicas: %w", err)
		}
	}

	return gdb, nil
}

// Init opens the database and migrates the schema.
func Init(cfg config.DatabaseConfig, opts ...Option) (*gorm.DB, error) {
	gdb, err := Open(cfg, opts...)
	if err != nil {
		return nil, err
	}
	if err := Migrate(gdb); err != nil {
		return nil, err
	}
	return gdb, nil
}

// Migrate 自动迁移核心模型。
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&User{},
		&Post{},
		&Comment{},
		&Rating{},
		&PostView{},
	)
}

func dialector(driver, path, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "", "sqlite":
		target := strings.TrimSpace(path)
		if target == "" {
			target = "inkwell.db"
		}
		if err := ensureParentDir(target); err != nil {
			return nil, err
		}
		return sqlite.Open(withSQLitePragmas(target)), nil
	case "postgres":
		return postgres.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// withSQLitePragmas enables a busy timeout so concurrent writers wait instead of failing.
func withSQLitePragmas(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?_busy_timeout=5000&_journal_mode=WAL"
}

func ensureParentDir(path string) error {
	if strings.HasPrefix(path, "file:") || strings.Contains(path, ":memory:") {
		return nil
	}
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
