// internal/infrastructure/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ============================================
// КОНФИГУРАЦИЯ БАЗЫ ДАННЫХ
// ============================================

// DatabaseConfig - конфигурация базы данных
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string

	// Выключенная БД заменяется хранилищем в памяти
	Enabled bool

	// Настройки пула соединений
	MaxOpenConns    int
	MaxIdleConns    int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig - конфигурация Redis
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int

	// Выключенный Redis заменяется хранилищем в памяти
	Enabled bool
}

// ============================================
// ОСНОВНАЯ КОНФИГУРАЦИЯ ПРИЛОЖЕНИЯ
// ============================================

// Config - основная структура конфигурации
type Config struct {
	Environment string

	// ======================
	// TELEGRAM
	// ======================
	Telegram struct {
		BotToken       string
		APIBaseURL     string
		PollingTimeout int // таймаут long poll в секундах
	}

	// ======================
	// ДОСТУП И ЛИМИТЫ
	// ======================
	Access struct {
		Code        string
		MaxAttempts int
		BanDuration time.Duration
	}

	Cooldown struct {
		Duration time.Duration
	}

	// ======================
	// РАССЫЛКА
	// ======================
	Broadcast struct {
		Enabled   bool
		UTCOffset int // фиксированное смещение часового пояса расписания
	}

	// ======================
	// ХРАНИЛИЩА
	// ======================
	Database DatabaseConfig
	Redis    RedisConfig

	// ======================
	// ЛОГИРОВАНИЕ И HTTP
	// ======================
	Logging struct {
		Level     string
		File      string
		DebugMode bool
	}

	HTTP struct {
		Port int
	}
}

// ============================================
// ЗАГРУЗКА КОНФИГУРАЦИИ
// ============================================

// LoadConfig загружает конфигурацию из .env файла
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(path); err != nil {
		fmt.Printf("⚠️  Config file not found, using environment variables\n")
	}

	cfg := &Config{}

	// ======================
	// ОСНОВНЫЕ НАСТРОЙКИ
	// ======================
	cfg.Environment = getEnv("ENVIRONMENT", "production")

	// ======================
	// TELEGRAM
	// ======================
	cfg.Telegram.BotToken = getEnv("TG_API_KEY", "")
	cfg.Telegram.APIBaseURL = getEnv("TG_API_BASE_URL", "https://api.telegram.org")
	cfg.Telegram.PollingTimeout = getEnvInt("POLLING_TIMEOUT", 30)

	// ======================
	// ДОСТУП И ЛИМИТЫ
	// ======================
	cfg.Access.Code = getEnv("ACCESS_CODE", "")
	cfg.Access.MaxAttempts = getEnvInt("ACCESS_MAX_ATTEMPTS", 3)
	cfg.Access.BanDuration = getEnvDuration("ACCESS_BAN_DURATION", 5*time.Minute)
	cfg.Cooldown.Duration = getEnvDuration("SIGNAL_COOLDOWN", 5*time.Minute)

	// ======================
	// РАССЫЛКА
	// ======================
	cfg.Broadcast.Enabled = getEnvBool("BROADCAST_ENABLED", true)
	cfg.Broadcast.UTCOffset = getEnvInt("BROADCAST_UTC_OFFSET", 3)

	// ======================
	// БАЗА ДАННЫХ
	// ======================
	cfg.Database = DatabaseConfig{
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            getEnvInt("DB_PORT", 5432),
		User:            getEnv("DB_USER", "postgres"),
		Password:        getEnv("DB_PASSWORD", ""),
		Name:            getEnv("DB_NAME", "signalbot"),
		SSLMode:         getEnv("DB_SSLMODE", "disable"),
		Enabled:         getEnvBool("DB_ENABLED", false),
		MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
		MaxConnLifetime: getEnvDuration("DB_MAX_CONN_LIFETIME", time.Hour),
		MaxConnIdleTime: getEnvDuration("DB_MAX_CONN_IDLE_TIME", 30*time.Minute),
	}

	// ======================
	// REDIS
	// ======================
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnvInt("REDIS_PORT", 6379),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
		Enabled:  getEnvBool("REDIS_ENABLED", false),
	}

	// ======================
	// ЛОГИРОВАНИЕ И HTTP
	// ======================
	cfg.Logging.Level = getEnv("LOG_LEVEL", "INFO")
	cfg.Logging.File = getEnv("LOG_FILE", "logs/bot.log")
	cfg.Logging.DebugMode = getEnvBool("DEBUG_MODE", false)
	cfg.HTTP.Port = getEnvInt("PORT", 8080)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет обязательные поля конфигурации
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("TG_API_KEY is required")
	}
	if c.Access.Code == "" {
		return fmt.Errorf("ACCESS_CODE is required")
	}
	if c.Access.MaxAttempts <= 0 {
		return fmt.Errorf("ACCESS_MAX_ATTEMPTS must be positive")
	}
	return nil
}

// Addr возвращает адрес Redis в формате host:port
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DSN возвращает строку подключения к PostgreSQL
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// ============================================
// ВСПОМОГАТЕЛЬНЫЕ ФУНКЦИИ
// ============================================

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
