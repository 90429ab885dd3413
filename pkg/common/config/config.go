package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

type ServerConfig struct {
	Address string `json:"address"`
}

type LogConfig struct {
	Level string `json:"level"` // trace/debug/info/notice/warn/error/fatal
}

type SecurityConfig struct {
	MaxBodySize    int64    `json:"maxBodySize"` // 单位：字节
	AllowedMethods []string `json:"allowedMethods"`
}

type TimeoutConfig struct {
	RequestTimeout int `json:"requestTimeout"` // 单位：秒
}

type CORSConfig struct {
	AllowOrigins     []string      `json:"allowOrigins"`
	AllowMethods     []string      `json:"allowMethods"`
	AllowHeaders     []string      `json:"allowHeaders"`
	ExposeHeaders    []string      `json:"exposeHeaders"`
	AllowCredentials bool          `json:"allowCredentials"`
	MaxAge           time.Duration `json:"maxAge"`
}

// SessionConfig 登录会话（JWT 存放在 cookie 中）
type SessionConfig struct {
	Secret         string        `json:"secret"`
	ExpireDuration time.Duration `json:"expireDuration"`
	CookieName     string        `json:"cookieName"`
	Realm          string        `json:"realm"`
	SecureCookie   bool          `json:"secureCookie"`
}

type RateLimitConfig struct {
	Rate     int           `json:"rate"`  // 每个 Interval 允许的请求数
	Burst    int           `json:"burst"` // 0 表示与 Rate 相同
	Interval time.Duration `json:"interval"`
}

type MiddlewareConfig struct {
	Security  SecurityConfig  `json:"security"`
	Session   SessionConfig   `json:"session"`
	Timeout   TimeoutConfig   `json:"timeout"`
	CORS      CORSConfig      `json:"cors"`
	RateLimit RateLimitConfig `json:"rateLimit"`
}

type DatabaseConfig struct {
	Driver      string `json:"driver"`      // mysql 或 memory
	Host        string `json:"host"`        // 数据库主机地址
	Port        int    `json:"port"`        // 数据库端口
	Username    string `json:"username"`    // 数据库用户名
	Password    string `json:"password"`    // 数据库密码
	DBName      string `json:"dbname"`      // 数据库名称
	UseUnixSock bool   `json:"useUnixSock"` // 是否使用Unix套接字连接
	MinPoolSize int    `json:"minPoolSize"` // 连接池最小连接数
	MaxPoolSize int    `json:"maxPoolSize"` // 连接池最大连接数
	LogLevel    string `json:"logLevel"`    // GORM日志级别
	AutoMigrate bool   `json:"autoMigrate"`
}

type PasswordConfig struct {
	Algorithm  string `json:"algorithm"` // bcrypt 或 argon2id
	BcryptCost int    `json:"bcryptCost"`
}

type FlashConfig struct {
	CookieName string        `json:"cookieName"`
	TTL        time.Duration `json:"ttl"`
}

type ContactsConfig struct {
	PageSize int `json:"pageSize"`
}

type Config struct {
	Server     ServerConfig     `json:"server"`
	Log        LogConfig        `json:"log"`
	Database   DatabaseConfig   `json:"database"`
	Middleware MiddlewareConfig `json:"middleware"`
	Password   PasswordConfig   `json:"password"`
	Flash      FlashConfig      `json:"flash"`
	Contacts   ContactsConfig   `json:"contacts"`
	Env        string           `json:"env"` // 环境标识
}

// Default 返回默认配置的副本
func Default() Config {
	return Config{
		Server: ServerConfig{
			Address: ":8080",
		},
		Log: LogConfig{
			Level: "info",
		},
		Database: DatabaseConfig{
			Driver:      DriverMySQL,
			Host:        "localhost",
			Port:        3306,
			Username:    "root",
			Password:    "root",
			DBName:      "contacts",
			MinPoolSize: 5,
			MaxPoolSize: 50,
			LogLevel:    "warn",
			AutoMigrate: true,
		},
		Middleware: MiddlewareConfig{
			Security: SecurityConfig{
				MaxBodySize:    1 << 20, // 1MB
				AllowedMethods: []string{"GET", "HEAD", "POST", "DELETE", "OPTIONS"},
			},
			Session: SessionConfig{
				Secret:         "dev-secret-change-me-in-production", // 开发环境默认密钥
				ExpireDuration: 24 * time.Hour,
				CookieName:     "session",
				Realm:          "contact-book",
			},
			Timeout: TimeoutConfig{
				RequestTimeout: 15,
			},
			CORS: CORSConfig{
				AllowOrigins:     []string{"http://localhost:8080"},
				AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
				AllowHeaders:     []string{"Content-Type", "HX-Request", "HX-Target", "HX-Trigger", "HX-Current-URL"},
				ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
				AllowCredentials: true,
				MaxAge:           12 * time.Hour,
			},
			RateLimit: RateLimitConfig{
				Rate:     10,
				Burst:    20,
				Interval: time.Second,
			},
		},
		Password: PasswordConfig{
			Algorithm: "bcrypt",
		},
		Flash: FlashConfig{
			CookieName: "flash",
			TTL:        5 * time.Minute,
		},
		Contacts: ContactsConfig{
			PageSize: 10,
		},
		Env: "development",
	}
}

// IsProd 判断当前是否生产环境
func (c *Config) IsProd() bool {
	return c.Env == "production"
}

// Load 加载配置（优先级：环境变量 > 配置文件 > 默认值）
func Load() *Config {
	// .env 不覆盖已存在的环境变量
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		hlog.Warnf("Failed to load .env: %v", err)
	}

	config := Default()

	// 1. 尝试从配置文件加载
	if configPath := getConfigPath(); configPath != "" {
		if err := loadFromFile(&config, configPath); err != nil {
			hlog.Warnf("Failed to load config file: %v", err)
		}
	}

	// 2. 从环境变量覆盖
	loadFromEnv(&config)

	if config.IsProd() && config.Middleware.Session.Secret == Default().Middleware.Session.Secret {
		hlog.Warn("SESSION_SECRET is the development default in production")
	}

	return &config
}

// getConfigPath 获取配置文件路径
func getConfigPath() string {
	// 优先使用环境变量指定的配置文件路径
	if path := os.Getenv("APP_CONFIG"); path != "" {
		return path
	}

	searchPaths := []string{
		"./config.json",
		"../config.json",
		"/etc/contact-book/config.json",
	}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

func loadFromFile(config *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, config)
}

// loadFromEnv 从环境变量加载配置
func loadFromEnv(config *Config) {
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		config.Server.Address = v
	}

	if v := os.Getenv("APP_ENV"); v != "" {
		config.Env = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		config.Log.Level = strings.ToLower(v)
	}

	// 中间件配置
	if v := os.Getenv("MAX_BODY_SIZE"); v != "" {
		if size, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Middleware.Security.MaxBodySize = size
		}
	}

	if v := os.Getenv("ALLOWED_METHODS"); v != "" {
		config.Middleware.Security.AllowedMethods = splitEnvList(v)
	}

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		config.Middleware.CORS.AllowOrigins = splitEnvList(v)
	}

	if v := os.Getenv("REQUEST_TIMEOUT"); v != "" {
		if timeout, err := strconv.Atoi(v); err == nil {
			config.Middleware.Timeout.RequestTimeout = timeout
		}
	}

	if v := os.Getenv("RATE_LIMIT"); v != "" {
		if rate, err := strconv.Atoi(v); err == nil {
			config.Middleware.RateLimit.Rate = rate
		}
	}

	if v := os.Getenv("RATE_BURST"); v != "" {
		if burst, err := strconv.Atoi(v); err == nil {
			config.Middleware.RateLimit.Burst = burst
		}
	}

	/****** 会话配置 ******/
	if v := os.Getenv("SESSION_SECRET"); v != "" {
		config.Middleware.Session.Secret = v
	}

	if v := os.Getenv("SESSION_EXPIRATION"); v != "" {
		if duration, err := time.ParseDuration(v); err == nil {
			config.Middleware.Session.ExpireDuration = duration
		} else {
			hlog.Warnf("Invalid SESSION_EXPIRATION format: %v", err)
		}
	}

	if v := os.Getenv("SESSION_SECURE_COOKIE"); v != "" {
		config.Middleware.Session.SecureCookie = parseBool(v)
	}

	// 密码哈希
	if v := os.Getenv("PASSWORD_ALGORITHM"); v != "" {
		config.Password.Algorithm = strings.ToLower(strings.TrimSpace(v))
	}

	if v := os.Getenv("BCRYPT_COST"); v != "" {
		if cost, err := strconv.Atoi(v); err == nil {
			config.Password.BcryptCost = cost
		}
	}

	if v := os.Getenv("CONTACTS_PAGE_SIZE"); v != "" {
		if size, err := strconv.Atoi(v); err == nil && size > 0 {
			config.Contacts.PageSize = size
		}
	}

	// 数据库配置
	if v := os.Getenv("DB_DRIVER"); v != "" {
		config.Database.Driver = strings.ToLower(v)
	}

	if v := os.Getenv("DB_HOST"); v != "" {
		config.Database.Host = v
	}

	if v := os.Getenv("DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Database.Port = port
		}
	}

	if v := os.Getenv("DB_USER"); v != "" {
		config.Database.Username = v
	}

	if v := os.Getenv("DB_PASSWORD"); v != "" {
		config.Database.Password = v
	}

	if v := os.Getenv("DB_NAME"); v != "" {
		config.Database.DBName = v
	}

	if v := os.Getenv("DB_SOCKET"); v != "" {
		config.Database.UseUnixSock = parseBool(v)
	}

	if v := os.Getenv("DB_MIN_POOL"); v != "" {
		if size, err := strconv.Atoi(v); err == nil {
			config.Database.MinPoolSize = size
		}
	}

	if v := os.Getenv("DB_MAX_POOL"); v != "" {
		if size, err := strconv.Atoi(v); err == nil {
			config.Database.MaxPoolSize = size
		}
	}

	if v := os.Getenv("DB_LOG_LEVEL"); v != "" {
		config.Database.LogLevel = strings.ToLower(v)
	}

	if v := os.Getenv("DB_AUTO_MIGRATE"); v != "" {
		config.Database.AutoMigrate = parseBool(v)
	}
}

// 分割环境变量列表（支持逗号分隔的字符串）
func splitEnvList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// 转换字符串为布尔值
func parseBool(value string) bool {
	value = strings.ToLower(value)
	return value == "true" || value == "1" || value == "yes"
}

// HlogLevel 将配置的日志级别转换为 hlog.Level，无法识别时为 info
func (c *Config) HlogLevel() hlog.Level {
	switch c.Log.Level {
	case "trace":
		return hlog.LevelTrace
	case "debug":
		return hlog.LevelDebug
	case "notice":
		return hlog.LevelNotice
	case "warn", "warning":
		return hlog.LevelWarn
	case "error":
		return hlog.LevelError
	case "fatal":
		return hlog.LevelFatal
	}
	return hlog.LevelInfo
}

// DSN 按连接方式拼接 MySQL 连接串
func (c *Config) DSN() string {
	charsetParam := "charset=utf8mb4&parseTime=True&loc=Local"

	if c.Database.UseUnixSock {
		// 这里host存储的是socket路径
		return fmt.Sprintf("%s:%s@unix(%s)/%s?%s",
			c.Database.Username,
			c.Database.Password,
			c.Database.Host,
			c.Database.DBName,
			charsetParam)
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		c.Database.Username,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		charsetParam)
}

func (c *Config) gormLogger() logger.Interface {
	switch c.Database.LogLevel {
	case "silent":
		return logger.Default.LogMode(logger.Silent)
	case "error":
		return logger.Default.LogMode(logger.Error)
	case "info":
		return logger.Default.LogMode(logger.Info)
	}
	return logger.Default.LogMode(logger.Warn)
}

func (c *Config) InitDB() (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(c.DSN()), &gorm.Config{Logger: c.gormLogger()})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// 设置连接池
	sqlDB.SetMaxIdleConns(c.Database.MinPoolSize)
	sqlDB.SetMaxOpenConns(c.Database.MaxPoolSize)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}
