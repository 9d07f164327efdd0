package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

// DBConfig holds connection settings for a single PostgreSQL database.
type DBConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnectTimeout  time.Duration
	LogLevel        logger.LogLevel
}

// GetDSN returns the PostgreSQL connection string
func (c *DBConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// TenantDBConfig holds the settings shared by every tenant database. Each
// tenant gets its own logical database on the same cluster, named from the
// tenant ID.
type TenantDBConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	SSLMode         string
	NamePrefix      string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnectTimeout  time.Duration
	LogLevel        logger.LogLevel
}

// DatabaseName returns the logical database name for a tenant.
func (c *TenantDBConfig) DatabaseName(tenantID string) string {
	return c.NamePrefix + tenantID
}

// DSNFor returns the connection string for a tenant's database.
func (c *TenantDBConfig) DSNFor(tenantID string) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DatabaseName(tenantID), c.SSLMode)
}

// RegistryConfig holds tuning knobs for the tenant connection registry.
type RegistryConfig struct {
	MaxConns           int
	IdleTTL            time.Duration
	SweepInterval      time.Duration
	DirectoryCacheSize int
	DirectoryCacheTTL  time.Duration
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	SigningKey      string
	ExpirationHours int
}

// OTPConfig holds one-time-passcode settings.
type OTPConfig struct {
	TTL         time.Duration
	MaxAttempts int
	CodeLength  int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Prefix string
}

// Config holds all configuration
type Config struct {
	ServiceName string
	GlobalDB    DBConfig
	TenantDB    TenantDBConfig
	Registry    RegistryConfig
	Server      ServerConfig
	JWT         JWTConfig
	OTP         OTPConfig
	Log         LogConfig
	Metrics     MetricsConfig
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Not returning error as .env file is optional
		fmt.Printf("Warning: .env file not found, using environment variables\n")
	}

	config := &Config{
		ServiceName: serviceName,
		GlobalDB: DBConfig{
			Host:            getEnv("GLOBAL_DB_HOST", "localhost"),
			Port:            getEnv("GLOBAL_DB_PORT", "5432"),
			User:            getEnv("GLOBAL_DB_USER", "postgres"),
			Password:        getEnv("GLOBAL_DB_PASSWORD", "password"),
			DBName:          getEnv("GLOBAL_DB_NAME", "storefront_global"),
			SSLMode:         getEnv("GLOBAL_DB_SSL_MODE", "disable"),
			MaxIdleConns:    getEnvAsInt("GLOBAL_DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("GLOBAL_DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getEnvAsDuration("GLOBAL_DB_CONN_MAX_LIFETIME", 1*time.Hour),
			ConnectTimeout:  getEnvAsDuration("GLOBAL_DB_CONNECT_TIMEOUT", 10*time.Second),
			LogLevel:        getEnvAsLogLevel("DB_LOG_LEVEL", logger.Warn),
		},
		TenantDB: TenantDBConfig{
			Host:            getEnv("TENANT_DB_HOST", "localhost"),
			Port:            getEnv("TENANT_DB_PORT", "5432"),
			User:            getEnv("TENANT_DB_USER", "postgres"),
			Password:        getEnv("TENANT_DB_PASSWORD", "password"),
			SSLMode:         getEnv("TENANT_DB_SSL_MODE", "disable"),
			NamePrefix:      getEnv("TENANT_DB_NAME_PREFIX", "tenant_"),
			MaxIdleConns:    getEnvAsInt("TENANT_DB_MAX_IDLE_CONNS", 2),
			MaxOpenConns:    getEnvAsInt("TENANT_DB_MAX_OPEN_CONNS", 10),
			ConnMaxLifetime: getEnvAsDuration("TENANT_DB_CONN_MAX_LIFETIME", 1*time.Hour),
			ConnectTimeout:  getEnvAsDuration("TENANT_DB_CONNECT_TIMEOUT", 10*time.Second),
			LogLevel:        getEnvAsLogLevel("DB_LOG_LEVEL", logger.Warn),
		},
		Registry: RegistryConfig{
			MaxConns:           getEnvAsInt("TENANT_REGISTRY_MAX_CONNS", 500),
			IdleTTL:            getEnvAsDuration("TENANT_CONN_IDLE_TTL", 30*time.Minute),
			SweepInterval:      getEnvAsDuration("TENANT_CONN_SWEEP_INTERVAL", 5*time.Minute),
			DirectoryCacheSize: getEnvAsInt("STORE_DIRECTORY_CACHE_SIZE", 1024),
			DirectoryCacheTTL:  getEnvAsDuration("STORE_DIRECTORY_CACHE_TTL", 1*time.Minute),
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("APP_ENV", "development"),
		},
		JWT: JWTConfig{
			SigningKey:      getEnv("JWT_SIGNING_KEY", "defaultsecretkey"),
			ExpirationHours: getEnvAsInt("JWT_EXPIRATION_HOURS", 24),
		},
		OTP: OTPConfig{
			TTL:         getEnvAsDuration("OTP_TTL", 5*time.Minute),
			MaxAttempts: getEnvAsInt("OTP_MAX_ATTEMPTS", 5),
			CodeLength:  getEnvAsInt("OTP_CODE_LENGTH", 6),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Metrics: MetricsConfig{
			Prefix: getEnv("METRICS_PREFIX", serviceName),
		},
	}

	return config, nil
}

// LogConfig returns the configuration as a zap logger-friendly format
func (c *Config) LogConfig() []zap.Field {
	return []zap.Field{
		zap.String("service", c.ServiceName),
		zap.String("environment", c.Server.Env),
		zap.String("global_db_host", c.GlobalDB.Host),
		zap.String("global_db_name", c.GlobalDB.DBName),
		zap.String("tenant_db_host", c.TenantDB.Host),
		zap.String("tenant_db_prefix", c.TenantDB.NamePrefix),
		zap.String("server_port", c.Server.Port),
	}
}

// Helper function to get environment variables with defaults
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as integers
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as durations
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as log levels
func getEnvAsLogLevel(key string, defaultValue logger.LogLevel) logger.LogLevel {
	valueStr := getEnv(key, "")
	switch valueStr {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	case "info":
		return logger.Info
	default:
		return defaultValue
	}
}
