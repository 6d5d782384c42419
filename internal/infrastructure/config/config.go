package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

var (
	config     *Config
	configOnce sync.Once
)

// Config stores all configuration of the application
type Config struct {
	// Environment type
	EnvType string

	// Database
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	// Server
	ServerPort string

	// JWT Authentication
	JWTSecretKey string
	JWTExpiresIn int // 令牌有效期（小时）

	// 文件存储目录
	UploadDir string
	BackupDir string

	// 备份调度
	BackupSchedule      string // cron表达式，默认每天凌晨2点
	BackupRetentionDays int    // 备份保留天数

	// SMTP兜底配置（数据库中无激活配置时使用）
	SMTPHost      string
	SMTPPort      int
	SMTPSecure    bool
	SMTPUser      string
	SMTPPassword  string
	EmailFrom     string
	EmailFromName string
	AppURL        string

	// Admin
	DefaultAdminPassword string
}

// LoadConfig loads config from environment variables based on ENV_TYPE
func LoadConfig() *Config {
	// Get environment type (default to LOCAL if not set)
	envType := getEnv("ENV_TYPE", "LOCAL")
	prefix := ""

	// Set prefix based on environment type
	if strings.ToUpper(envType) == "LOCAL" {
		prefix = "LOCAL_"
	} else if strings.ToUpper(envType) == "SERVER" {
		prefix = "SERVER_"
	} else {
		fmt.Printf("Warning: Unknown ENV_TYPE '%s', defaulting to LOCAL environment\n", envType)
		prefix = "LOCAL_"
		envType = "LOCAL"
	}

	fmt.Printf("Loading configuration for environment: %s\n", envType)

	return &Config{
		// Environment type
		EnvType: envType,

		// Database config - use environment-specific variables if available
		DBHost:     getEnvRequired(prefix + "DB_HOST"),
		DBUser:     getEnvRequired(prefix + "DB_USER"),
		DBPassword: getEnvRequired(prefix + "DB_PASSWORD"),
		DBName:     getEnv(prefix+"DB_NAME", "substation_logbook"),
		DBPort:     getEnv(prefix+"DB_PORT", "3306"),

		// Server config
		ServerPort: getEnv(prefix+"SERVER_PORT", getEnv("SERVER_PORT", "8080")),

		// JWT Config
		JWTSecretKey: getEnv("JWT_SECRET_KEY", "logbook-secret-key-change-in-production"),
		JWTExpiresIn: getEnvAsInt("JWT_EXPIRES_IN_HOURS", 24),

		// 文件存储目录
		UploadDir: getEnv("UPLOAD_DIR", "uploads"),
		BackupDir: getEnv("BACKUP_DIR", "backups"),

		// 备份调度
		BackupSchedule:      getEnv("BACKUP_SCHEDULE", "0 2 * * *"),
		BackupRetentionDays: getEnvAsInt("BACKUP_RETENTION_DAYS", 90),

		// SMTP兜底配置
		SMTPHost:      getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:      getEnvAsInt("SMTP_PORT", 587),
		SMTPSecure:    getEnvAsBool("SMTP_SECURE", false),
		SMTPUser:      getEnv("SMTP_USER", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		EmailFrom:     getEnv("EMAIL_FROM", ""),
		EmailFromName: getEnv("EMAIL_FROM_NAME", "Substation Logbook"),
		AppURL:        getEnv("APP_URL", "http://localhost:8080"),

		// Admin Config
		DefaultAdminPassword: getEnvRequired("DEFAULT_ADMIN_PASSWORD"),
	}
}

// GetConfig returns the application configuration as a singleton
func GetConfig() *Config {
	configOnce.Do(func() {
		config = LoadConfig()
	})
	return config
}

// GetDSN returns the database connection string
func (c *Config) GetDSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?charset=utf8mb4&parseTime=True&loc=Local&allowNativePasswords=true&multiStatements=true"
}

// Helper function to get environment variable with default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// Helper function to get environment variable as integer with default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variable as boolean with default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// 要求必须提供环境变量的辅助函数
func getEnvRequired(key string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	panic(fmt.Sprintf("Required environment variable %s is not set", key))
}
