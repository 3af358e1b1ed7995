package db

import (
	"context"
	"fmt"
	"time"

	"github.com/ikkim/storefront-backend/config"
	appLogger "github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

type poolConfig struct {
	maxIdleConns    int
	maxOpenConns    int
	connMaxLifetime time.Duration
}

var postgresPool = poolConfig{
	maxIdleConns:    10,
	maxOpenConns:    100,
	connMaxLifetime: 30 * time.Minute,
}

const pingTimeout = 5 * time.Second

// open connects through dialector and applies the pool settings.
func open(dialector gorm.Dialector, pool poolConfig) (*gorm.DB, error) {
	gormDB, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	if pool.maxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(pool.maxIdleConns)
	}
	sqlDB.SetMaxOpenConns(pool.maxOpenConns)
	if pool.connMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(pool.connMaxLifetime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("database did not answer ping: %w", err)
	}
	return gormDB, nil
}

// Initialize opens the postgres connection pool.
func Initialize(cfg *config.DatabaseConfig) error {
	appLogger.Info("Connecting to database", map[string]interface{}{
		"host":     cfg.Host,
		"port":     cfg.Port,
		"database": cfg.DBName,
		"user":     cfg.User,
	})

	gormDB, err := open(postgres.Open(cfg.DSN()), postgresPool)
	if err != nil {
		return err
	}
	DB = gormDB

	appLogger.Info("Database connection established", map[string]interface{}{
		"max_idle_conns":    postgresPool.maxIdleConns,
		"max_open_conns":    postgresPool.maxOpenConns,
		"conn_max_lifetime": postgresPool.connMaxLifetime.String(),
	})
	return nil
}

func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func GetDB() *gorm.DB {
	return DB
}
