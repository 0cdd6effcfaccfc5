package database

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"todo-manager/backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type PoolConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	LogLevel        logger.LogLevel
}

type DatabasePool struct {
	DB     *gorm.DB
	config *PoolConfig
}

func DefaultPoolConfig() *PoolConfig {
	return &PoolConfig{
		Driver:          DriverPostgres,
		MaxOpenConns:    25,
		MaxIdleConns:    10,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: time.Minute * 30,
		LogLevel:        logger.Info,
	}
}

func NewDatabasePool(config *PoolConfig) (*DatabasePool, error) {
	if config == nil {
		config = DefaultPoolConfig()
	}

	if config.DSN == "" {
		return nil, errors.New("database DSN is required")
	}

	if config.MaxOpenConns < 0 || config.MaxIdleConns < 0 || config.ConnMaxLifetime < 0 || config.ConnMaxIdleTime < 0 {
		return nil, errors.New("database pool limits must not be negative")
	}

	dialector, err := openDialector(config)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(config.LogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if isInMemory(config) {
		// every connection to :memory: is a separate database
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
		sqlDB.SetConnMaxIdleTime(0)
	} else {
		sqlDB.SetMaxOpenConns(config.MaxOpenConns)
		sqlDB.SetMaxIdleConns(config.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(config.ConnMaxLifetime)
		sqlDB.SetConnMaxIdleTime(config.ConnMaxIdleTime)
	}

	return &DatabasePool{DB: db, config: config}, nil
}

// OpenInMemory returns a migrated private SQLite database.
func OpenInMemory() (*DatabasePool, error) {
	pool, err := NewDatabasePool(&PoolConfig{
		Driver:   DriverSQLite,
		DSN:      ":memory:",
		LogLevel: logger.Silent,
	})
	if err != nil {
		return nil, err
	}

	if err := pool.Migrate(); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

func openDialector(config *PoolConfig) (gorm.Dialector, error) {
	switch config.Driver {
	case "", DriverPostgres:
		return postgres.Open(config.DSN), nil
	case DriverSQLite:
		return sqlite.Open(config.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", config.Driver)
	}
}

func isInMemory(config *PoolConfig) bool {
	return config.Driver == DriverSQLite && strings.Contains(config.DSN, ":memory:")
}

func (p *DatabasePool) Migrate() error {
	if p.DB == nil {
		return errors.New("database not initialized")
	}

	if err := p.DB.AutoMigrate(models.AllModels()...); err != nil {
		return fmt.Errorf("failed to auto migrate: %w", err)
	}

	return p.backfillLabelNameKeys()
}

// backfillLabelNameKeys fills name_key for labels created before the column
// existed.
func (p *DatabasePool) backfillLabelNameKeys() error {
	var labels []models.Label
	if err := p.DB.Where("name_key IS NULL OR name_key = ''").Find(&labels).Error; err != nil {
		return fmt.Errorf("failed to load labels for backfill: %w", err)
	}
	for _, label := range labels {
		err := p.DB.Model(&models.Label{}).
			Where("id = ?", label.ID).
			Update("name_key", models.LabelNameKey(label.Name)).Error
		if err != nil {
			return fmt.Errorf("failed to backfill label %s: %w", label.ID, err)
		}
	}
	return nil
}

func (p *DatabasePool) Health() error {
	if p.DB == nil {
		return errors.New("database not initialized")
	}

	sqlDB, err := p.DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Ping()
}

func (p *DatabasePool) Stats() map[string]interface{} {
	if p.DB == nil {
		return map[string]interface{}{"error": "database not initialized"}
	}

	sqlDB, err := p.DB.DB()
	if err != nil {
		return map[string]interface{}{"error": err.Error()}
	}

	stats := sqlDB.Stats()

	return map[string]interface{}{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration":        stats.WaitDuration.String(),
		"max_idle_closed":      stats.MaxIdleClosed,
		"max_lifetime_closed":  stats.MaxLifetimeClosed,
	}
}

func (p *DatabasePool) Close() error {
	if p.DB == nil {
		return nil
	}

	sqlDB, err := p.DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}
