package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/repairshop/erp/internal/infrastructure/config"
	"github.com/repairshop/erp/internal/infrastructure/logger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Database is the shared gorm handle of the service
type Database struct {
	DB *gorm.DB
}

// NewDatabase opens the PostgreSQL pool, applies the pool limits and pings
// once so a bad DSN fails at startup.
func NewDatabase(cfg *config.DatabaseConfig, log *zap.Logger) (*Database, error) {
	db, err := open(postgres.Open(cfg.DSN()), cfg, log)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func open(dialector gorm.Dialector, cfg *config.DatabaseConfig, log *zap.Logger) (*Database, error) {
	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.LogLevel),
			logger.WithSlowThreshold(cfg.SlowThreshold)),
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
		TranslateError:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	return &Database{DB: gdb}, nil
}

func (d *Database) sqlDB() (*sql.DB, error) {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB, nil
}

// Close closes the pool
func (d *Database) Close() error {
	sqlDB, err := d.sqlDB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks that a connection can be obtained
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.sqlDB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// PoolStats returns the connection pool counters
func (d *Database) PoolStats() sql.DBStats {
	sqlDB, err := d.sqlDB()
	if err != nil {
		return sql.DBStats{}
	}
	return sqlDB.Stats()
}

// Transactor returns a GormTransactor bound to this pool
func (d *Database) Transactor() *GormTransactor {
	return NewGormTransactor(d.DB)
}
