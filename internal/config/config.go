package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type PostgresConfig struct {
	DSN             string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type StorageConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	BucketResumes string
	UseSSL        bool
	Region        string
}

type GoogleConfig struct {
	UserInfoURL string
	Timeout     time.Duration
}

type SecurityConfig struct {
	JWTSecret         string
	SessionTTL        time.Duration
	CookieName        string
	CookieDomain      string
	CrossOrigin       bool
	MinPasswordLength int
	IssueCooldown     time.Duration
}

type FrontendConfig struct {
	BaseURL string
}

type AppConfig struct {
	Environment      string
	HTTP             HTTPConfig
	Postgres         PostgresConfig
	Redis            RedisConfig
	SMTP             SMTPConfig
	Storage          StorageConfig
	Google           GoogleConfig
	Security         SecurityConfig
	Frontend         FrontendConfig
	AllowCORSOrigins []string
}

func (c *AppConfig) Production() bool {
	return c.Environment == "production"
}

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix("HIRELANE")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "15s")
	v.SetDefault("http.idletimeout", "60s")

	v.SetDefault("postgres.maxopen", 30)
	v.SetDefault("postgres.maxidle", 10)
	v.SetDefault("postgres.connmaxlifetime", "30m")

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.from", "no-reply@hirelane.io")

	v.SetDefault("storage.bucketresumes", "hirelane-resumes")
	v.SetDefault("storage.usessl", false)
	v.SetDefault("storage.region", "us-east-1")

	v.SetDefault("google.userinfourl", "https://www.googleapis.com/oauth2/v3/userinfo")
	v.SetDefault("google.timeout", "10s")

	v.SetDefault("security.sessionttl", "168h") // 7 days
	v.SetDefault("security.cookiename", "session")
	v.SetDefault("security.crossorigin", false)
	v.SetDefault("security.minpasswordlength", 8)
	v.SetDefault("security.issuecooldown", "60s")

	v.SetDefault("frontend.baseurl", "http://localhost:3000")
}
