// Package iodb implements database operations with GORM.
// This is an impure I/O package that implements contracts
// defined in pkg/.
package iodb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"github.com/gnames/gnbundle/pkg/config"
	"github.com/gnames/gnbundle/pkg/db"
	"github.com/gnames/gnsys"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// operator implements db.Operator for SQLite and PostgreSQL.
type operator struct {
	driver string
	gormDB *gorm.DB
	sqlDB  *sql.DB
	pool   *pgxpool.Pool
}

// NewOperator creates a new database operator
// (without connecting).
func NewOperator() db.Operator {
	return &operator{}
}

// Connect opens the store database.
func (o *operator) Connect(ctx context.Context, cfg *config.Config) error {
	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	var err error
	switch cfg.Store.Driver {
	case "postgres":
		err = o.connectPostgres(ctx, &cfg.Store, gormCfg)
	default:
		err = o.connectSQLite(cfg.SQLitePath(), gormCfg)
	}
	if err != nil {
		return err
	}

	o.sqlDB, err = o.gormDB.DB()
	if err != nil {
		o.Close()
		return GORMError(err)
	}
	if err = o.sqlDB.PingContext(ctx); err != nil {
		o.Close()
		return GORMError(err)
	}
	slog.Info("Connected to store", "driver", o.driver)
	return nil
}

func (o *operator) connectSQLite(path string, gormCfg *gorm.Config) error {
	if err := gnsys.MakeDir(filepath.Dir(path)); err != nil {
		return SQLiteOpenError(path, err)
	}
	// SQLite allows one writer, busy timeout avoids spurious
	// "database is locked" errors from history writes.
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	gormDB, err := gorm.Open(sqlite.Open(dsn), gormCfg)
	if err != nil {
		return SQLiteOpenError(path, err)
	}
	o.driver = "sqlite"
	o.gormDB = gormDB
	return nil
}

func (o *operator) connectPostgres(
	ctx context.Context,
	cfg *config.StoreConfig,
	gormCfg *gorm.Config,
) error {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
		cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return ConnectionError(cfg, err)
	}
	// The pipeline is sequential, a small pool is enough.
	poolConfig.MaxConns = 4
	poolConfig.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return ConnectionError(cfg, err)
	}
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return ConnectionError(cfg, err)
	}

	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{Conn: stdlib.OpenDBFromPool(pool)}),
		gormCfg,
	)
	if err != nil {
		pool.Close()
		return GORMError(err)
	}
	o.driver = "postgres"
	o.pool = pool
	o.gormDB = gormDB
	return nil
}

// Close releases database connections.
func (o *operator) Close() error {
	var err error
	if o.sqlDB != nil {
		err = o.sqlDB.Close()
	}
	if o.pool != nil {
		o.pool.Close()
	}
	o.gormDB, o.sqlDB, o.pool = nil, nil, nil
	return err
}

// DB returns the GORM handle.
func (o *operator) DB() *gorm.DB {
	return o.gormDB
}

// Driver returns the name of the connected driver.
func (o *operator) Driver() string {
	return o.driver
}
