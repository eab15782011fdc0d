package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env  string
	Port int

	Database  DatabaseConfig
	Redis     RedisConfig
	Log       LogConfig
	Bootstrap BootstrapConfig
	Seed      SeedConfig
	Identity  IdentityConfig
	Reports   ReportsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int

	// ConnectAttempts bounds the startup ping retries; ConnectBackoff is the pause between them.
	ConnectAttempts int
	ConnectBackoff  time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type LogConfig struct {
	Level  string
	Format string
}

// BootstrapConfig controls the one-shot schema/seed/identity routine.
type BootstrapConfig struct {
	RunOnStart bool
	LockKey    string
	LockTTL    time.Duration
	LockWait   time.Duration
}

// SeedConfig toggles demo data insertion.
type SeedConfig struct {
	Enabled bool
	// Strict turns seed verifier warnings into failures.
	Strict bool
}

// IdentityConfig lists the roles and accounts the identity bootstrap reconciles.
type IdentityConfig struct {
	Roles       []string
	DefaultRole string
	Accounts    []BootstrapAccount
}

// BootstrapAccount is a login provisioned at startup with a fixed role.
type BootstrapAccount struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
	Role     string `validate:"required"`
}

// ReportsConfig configures where exported reports are written.
type ReportsConfig struct {
	StorageDir string
	// CSVBOM prefixes CSV exports with a UTF-8 byte order mark.
	CSVBOM bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),

		ConnectAttempts: v.GetInt("DB_CONNECT_ATTEMPTS"),
		ConnectBackoff:  parseDuration(v.GetString("DB_CONNECT_BACKOFF"), 2*time.Second),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Bootstrap = BootstrapConfig{
		RunOnStart: v.GetBool("BOOTSTRAP_ON_START"),
		LockKey:    v.GetString("BOOTSTRAP_LOCK_KEY"),
		LockTTL:    parseDuration(v.GetString("BOOTSTRAP_LOCK_TTL"), 2*time.Minute),
		LockWait:   parseDuration(v.GetString("BOOTSTRAP_LOCK_WAIT"), 30*time.Second),
	}

	cfg.Seed = SeedConfig{
		Enabled: v.GetBool("SEED_ENABLED"),
		Strict:  v.GetBool("SEED_STRICT"),
	}

	cfg.Identity = IdentityConfig{
		Roles:       splitAndTrim(v.GetString("IDENTITY_ROLES")),
		DefaultRole: v.GetString("IDENTITY_DEFAULT_ROLE"),
		Accounts: []BootstrapAccount{
			{
				Email:    v.GetString("BOOTSTRAP_ADMIN_EMAIL"),
				Password: v.GetString("BOOTSTRAP_ADMIN_PASSWORD"),
				Role:     v.GetString("BOOTSTRAP_ADMIN_ROLE"),
			},
			{
				Email:    v.GetString("BOOTSTRAP_MANAGER_EMAIL"),
				Password: v.GetString("BOOTSTRAP_MANAGER_PASSWORD"),
				Role:     v.GetString("BOOTSTRAP_MANAGER_ROLE"),
			},
			{
				Email:    v.GetString("BOOTSTRAP_LEADER_EMAIL"),
				Password: v.GetString("BOOTSTRAP_LEADER_PASSWORD"),
				Role:     v.GetString("BOOTSTRAP_LEADER_ROLE"),
			},
		},
	}

	cfg.Reports = ReportsConfig{
		StorageDir: v.GetString("REPORTS_STORAGE_DIR"),
		CSVBOM:     v.GetBool("REPORTS_CSV_BOM"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate reports settings the service cannot start without.
func (c *Config) Validate() error {
	if c.Database.Host == "" || c.Database.Name == "" {
		return fmt.Errorf("database host and name are required")
	}
	if c.Redis.Enabled && c.Redis.Host == "" {
		return fmt.Errorf("redis host is required when redis is enabled")
	}
	for i, account := range c.Identity.Accounts {
		if strings.TrimSpace(account.Email) == "" {
			return fmt.Errorf("bootstrap account %d has no email", i)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "business_school")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONNECT_ATTEMPTS", 5)
	v.SetDefault("DB_CONNECT_BACKOFF", "2s")

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("BOOTSTRAP_ON_START", true)
	v.SetDefault("BOOTSTRAP_LOCK_KEY", "business-school:bootstrap")
	v.SetDefault("BOOTSTRAP_LOCK_TTL", "2m")
	v.SetDefault("BOOTSTRAP_LOCK_WAIT", "30s")

	v.SetDefault("SEED_ENABLED", true)
	v.SetDefault("SEED_STRICT", false)

	v.SetDefault("IDENTITY_ROLES", "Admin,DepartmentManager,ClubLeader,Student,User")
	v.SetDefault("IDENTITY_DEFAULT_ROLE", "User")
	v.SetDefault("BOOTSTRAP_ADMIN_EMAIL", "admin@businessschool.com")
	v.SetDefault("BOOTSTRAP_ADMIN_PASSWORD", "Admin123!")
	v.SetDefault("BOOTSTRAP_ADMIN_ROLE", "Admin")
	v.SetDefault("BOOTSTRAP_MANAGER_EMAIL", "manager.finance@businessschool.com")
	v.SetDefault("BOOTSTRAP_MANAGER_PASSWORD", "Manager123!")
	v.SetDefault("BOOTSTRAP_MANAGER_ROLE", "DepartmentManager")
	v.SetDefault("BOOTSTRAP_LEADER_EMAIL", "leader.marketing@businessschool.com")
	v.SetDefault("BOOTSTRAP_LEADER_PASSWORD", "Leader123!")
	v.SetDefault("BOOTSTRAP_LEADER_ROLE", "ClubLeader")

	v.SetDefault("REPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("REPORTS_CSV_BOM", false)
}

// viper surfaces a missing explicit config file as a *fs.PathError rather
// than ConfigFileNotFoundError.
func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
