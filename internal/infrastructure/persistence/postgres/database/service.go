// internal/infrastructure/persistence/postgres/database/service.go
package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"trading-signals-bot/internal/infrastructure/config"
	"trading-signals-bot/pkg/logger"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// DatabaseService сервис для работы с базой данных
type DatabaseService struct {
	config *config.DatabaseConfig
	db     *sqlx.DB
	mu     sync.RWMutex
	state  ServiceState
}

// ServiceState состояние сервиса
type ServiceState string

const (
	StateStopped  ServiceState = "stopped"
	StateStarting ServiceState = "starting"
	StateRunning  ServiceState = "running"
	StateStopping ServiceState = "stopping"
	StateError    ServiceState = "error"
)

// NewDatabaseService создает новый сервис базы данных
func NewDatabaseService(cfg *config.DatabaseConfig) *DatabaseService {
	return &DatabaseService{
		config: cfg,
		state:  StateStopped,
	}
}

// Start запускает сервис базы данных
func (ds *DatabaseService) Start() error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if ds.state == StateRunning {
		return fmt.Errorf("database service already running")
	}

	logger.Info("🔄 Starting database service...")
	ds.state = StateStarting

	logger.Info("📡 Connecting to PostgreSQL: %s:%d/%s",
		ds.config.Host, ds.config.Port, ds.config.Name)

	db, err := sqlx.Open("postgres", ds.config.DSN())
	if err != nil {
		ds.state = StateError
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	// Настраиваем пул соединений
	db.SetMaxOpenConns(ds.config.MaxOpenConns)
	db.SetMaxIdleConns(ds.config.MaxIdleConns)
	db.SetConnMaxLifetime(ds.config.MaxConnLifetime)
	db.SetConnMaxIdleTime(ds.config.MaxConnIdleTime)

	// Проверяем подключение с таймаутом
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		ds.state = StateError
		return fmt.Errorf("failed to ping database: %w", err)
	}

	ds.db = db
	ds.state = StateRunning

	logger.Info("✅ Successfully connected to PostgreSQL")
	logger.Info("   • Host: %s:%d", ds.config.Host, ds.config.Port)
	logger.Info("   • Database: %s", ds.config.Name)
	logger.Info("   • Pool: %d/%d connections",
		ds.config.MaxIdleConns, ds.config.MaxOpenConns)

	return nil
}

// Stop останавливает сервис базы данных
func (ds *DatabaseService) Stop() error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if ds.state != StateRunning {
		return fmt.Errorf("database service is not running")
	}

	logger.Info("🛑 Stopping database service...")
	ds.state = StateStopping

	if ds.db != nil {
		if err := ds.db.Close(); err != nil {
			ds.state = StateError
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	ds.db = nil
	ds.state = StateStopped
	logger.Info("✅ Database service stopped")

	return nil
}

// DB возвращает подключение к базе данных
func (ds *DatabaseService) DB() *sqlx.DB {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.db
}

// State возвращает текущее состояние сервиса
func (ds *DatabaseService) State() ServiceState {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	return ds.state
}
