package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

var Cfg Config

type Config struct {
	// 服务配置
	ServerPort     string `env:"SERVER_PORT" envDefault:"8888"`
	ServerHost     string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Environment    string `env:"ENVIRONMENT" envDefault:"development"` // development, staging, production
	ServiceName    string `env:"SERVICE_NAME" envDefault:"fintrack"`
	ServiceVersion string `env:"SERVICE_VERSION" envDefault:"0.1.0"`

	// PostgreSQL 配置
	PostgreSQLHost     string   `env:"POSTGRESQL_HOST" envDefault:"localhost"`
	PostgreSQLPort     string   `env:"POSTGRESQL_PORT" envDefault:"5432"`
	PostgreSQLUser     string   `env:"POSTGRESQL_USER" envDefault:"postgres"`
	PostgreSQLPassword string   `env:"POSTGRESQL_PASSWORD" envDefault:"postgres"`
	PostgreSQLDatabase string   `env:"POSTGRESQL_DATABASE" envDefault:"fintrack"`
	PostgreSQLSchema   string   `env:"POSTGRESQL_SCHEMA" envDefault:"public"`
	PostgreSQLSSLMode  string   `env:"POSTGRESQL_SSLMODE" envDefault:"disable"`
	PostgreSQLMaxIdle  int      `env:"POSTGRESQL_MAX_IDLE" envDefault:"30"`
	PostgreSQLMaxOpen  int      `env:"POSTGRESQL_MAX_OPEN" envDefault:"200"`
	PostgreSQLReplicas []string `env:"POSTGRESQL_REPLICAS" envSeparator:","` // 只读副本 DSN，逗号分隔

	// Redis 配置
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"REDIS_PREFIX" envDefault:"fint"`

	// RabbitMQ 配置
	RabbitMQAddr     string `env:"RABBITMQ_ADDR" envDefault:"localhost"`
	RabbitMQPort     string `env:"RABBITMQ_PORT" envDefault:"5672"`
	RabbitMQUsername string `env:"RABBITMQ_USERNAME" envDefault:"guest"`
	RabbitMQPassword string `env:"RABBITMQ_PASSWORD" envDefault:"guest"`
	RabbitMQVhost    string `env:"RABBITMQ_VHOST" envDefault:"/"`

	// JWT 配置
	JWTSecret        string `env:"JWT_SECRET"` // 必填，用于签名 JWT
	JWTExpireMinutes int    `env:"JWT_EXPIRE_MINUTES" envDefault:"30"`
	JWTRefreshDays   int    `env:"JWT_REFRESH_DAYS" envDefault:"7"`

	// 阿里云凭证，SDK 也会从同名环境变量读取
	AliCloudAccessKeyID     string `env:"ALIBABA_CLOUD_ACCESS_KEY_ID"`
	AliCloudAccessKeySecret string `env:"ALIBABA_CLOUD_ACCESS_KEY_SECRET"`

	// 短信服务配置
	SMSProvider            string `env:"SMS_PROVIDER" envDefault:"aliyun"` // aliyun, mock
	SMSSignName            string `env:"SMS_SIGN_NAME"`
	SMSTemplateCode        string `env:"SMS_TEMPLATE_CODE"`         // 验证码模板
	SMSWelcomeTemplateCode string `env:"SMS_WELCOME_TEMPLATE_CODE"` // 引导完成欢迎短信模板

	// 加密配置
	EncryptionKey string `env:"ENCRYPTION_KEY"` // 用于加密手机号等敏感数据，32字节 AES-256
	PhoneHashSalt string `env:"PHONEHASH_SALT"`

	// Snowflake ID 生成器配置
	SnowflakeMachineID  int64 `env:"SNOWFLAKE_MACHINE_ID" envDefault:"1"`
	SnowflakeDataCenter int64 `env:"SNOWFLAKE_DATACENTER_ID" envDefault:"1"`

	// 日志配置
	LoggerLevel      string `env:"LOGGER_LEVEL" envDefault:"INFO"`
	LoggerFormat     string `env:"LOGGER_FORMAT" envDefault:"text"` // json, text
	LoggerOutputPath string `env:"LOGGER_OUTPUT_PATH" envDefault:"stdout"`

	// 链路追踪与指标
	OTelEnabled     bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTelEndpoint    string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4317"`
	OTelSampleRatio float64 `env:"OTEL_SAMPLE_RATIO" envDefault:"0.1"`

	// 速率限制配置, 配置在中间件内
	RateLimitEnabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitRPS     int  `env:"RATE_LIMIT_RPS" envDefault:"100"` // 每秒请求数

	// CORS，为空时回显任意 Origin
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	// CSRF，仅对基于 cookie 的浏览器客户端启用
	CSRFEnabled   bool   `env:"CSRF_ENABLED" envDefault:"false"`
	CSRFSecret    string `env:"CSRF_SECRET"`
	SessionSecret string `env:"SESSION_SECRET"`

	// 验证码配置
	CaptchaExpireSeconds   int    `env:"CAPTCHA_EXPIRE_SECONDS" envDefault:"120"`
	CaptchaMaxDaily        int    `env:"CAPTCHA_MAX_DAILY" envDefault:"10"`
	CaptchaSliderThreshold int    `env:"CAPTCHA_SLIDER_THRESHOLD" envDefault:"2"` // 超过此次数需要滑块验证
	CaptchaProvider        string `env:"CAPTCHA_PROVIDER" envDefault:"aliyun"`    // 滑块验证提供商：aliyun, none
	CaptchaSceneID         string `env:"CAPTCHA_SCENE_ID"`
	CaptchaEndpoint        string `env:"CAPTCHA_ENDPOINT" envDefault:"captcha.cn-shanghai.aliyuncs.com"`

	// 引导流程配置
	OnboardingSection        string `env:"ONBOARDING_SECTION" envDefault:"/onboarding"`
	OnboardingProfilePath    string `env:"ONBOARDING_PROFILE_PATH" envDefault:"/onboarding/profile"`
	OnboardingAddressPath    string `env:"ONBOARDING_ADDRESS_PATH" envDefault:"/onboarding/address"`
	OnboardingContactPath    string `env:"ONBOARDING_CONTACT_PATH" envDefault:"/onboarding/contact"`
	OnboardingSettingsPath   string `env:"ONBOARDING_SETTINGS_PATH" envDefault:"/onboarding/settings"`
	MainLandingPath          string `env:"MAIN_LANDING_PATH" envDefault:"/main/dashboard"`
	OnboardingStrictOrder    bool   `env:"ONBOARDING_STRICT_ORDER" envDefault:"false"`
	ContactVerifyPhone       bool   `env:"CONTACT_VERIFY_PHONE" envDefault:"true"`
	StatusCacheTTLSeconds    int    `env:"STATUS_CACHE_TTL_SECONDS" envDefault:"60"`
	StatusFetchMaxAttempts   uint   `env:"STATUS_FETCH_MAX_ATTEMPTS" envDefault:"3"`
	StatusFetchInitialMillis int    `env:"STATUS_FETCH_INITIAL_INTERVAL_MS" envDefault:"200"`
	StatusFetchMaxMillis     int    `env:"STATUS_FETCH_MAX_INTERVAL_MS" envDefault:"2000"`

	// 客户端配置
	APIBaseURL     string `env:"API_BASE_URL" envDefault:"http://localhost:8888"`
	APITimeoutMS   int    `env:"API_TIMEOUT_MS" envDefault:"10000"` // 生产环境建议 15000
	APIAccessToken string `env:"API_ACCESS_TOKEN"`
}

func init() {
	if err := Load(); err != nil {
		log.Fatalf("Failed to parse environment variables: %v", err)
	}
}

// Load 读取 .env 与环境变量
func Load() error {
	if err := godotenv.Load(); err != nil {
		log.Printf("WARN: Cannot load .env file: %v, using environment variables", err)
	}

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return err
	}
	Cfg = cfg
	return nil
}

// Validate 校验服务端进程必需的配置
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}

	if len(c.EncryptionKey) != 32 {
		return errors.New("ENCRYPTION_KEY must be exactly 32 bytes for AES-256")
	}

	if c.CSRFEnabled && (c.CSRFSecret == "" || c.SessionSecret == "") {
		return errors.New("CSRF_SECRET and SESSION_SECRET are required when CSRF_ENABLED=true")
	}

	if c.StatusFetchMaxAttempts == 0 {
		return fmt.Errorf("STATUS_FETCH_MAX_ATTEMPTS must be positive")
	}

	if c.SMSSignName == "" {
		log.Printf("WARN: SMS_SIGN_NAME is not set, SMS service may not work properly")
	}
	if c.SMSTemplateCode == "" {
		log.Printf("WARN: SMS_TEMPLATE_CODE is not set, contact verification codes cannot be sent")
	}

	return nil
}

func (c *Config) GetDSN() string {
	return "host=" + c.PostgreSQLHost +
		" port=" + c.PostgreSQLPort +
		" user=" + c.PostgreSQLUser +
		" password=" + c.PostgreSQLPassword +
		" dbname=" + c.PostgreSQLDatabase +
		" sslmode=" + c.PostgreSQLSSLMode +
		" search_path=" + c.PostgreSQLSchema
}

func (c *Config) GetRabbitMQURL() string {
	return "amqp://" + c.RabbitMQUsername + ":" + c.RabbitMQPassword + "@" + c.RabbitMQAddr + ":" + c.RabbitMQPort + c.RabbitMQVhost
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// StatusCacheTTL 注册状态缓存时间
func (c *Config) StatusCacheTTL() time.Duration {
	return time.Duration(c.StatusCacheTTLSeconds) * time.Second
}

// APITimeout 客户端请求超时
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.APITimeoutMS) * time.Millisecond
}

// StatusFetchInitial 状态查询首次重试间隔
func (c *Config) StatusFetchInitial() time.Duration {
	return time.Duration(c.StatusFetchInitialMillis) * time.Millisecond
}

// StatusFetchMax 状态查询重试间隔上限
func (c *Config) StatusFetchMax() time.Duration {
	return time.Duration(c.StatusFetchMaxMillis) * time.Millisecond
}
