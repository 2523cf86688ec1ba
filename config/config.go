package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Email    EmailConfig    `mapstructure:"email"`
	Mail     MailConfig     `mapstructure:"mail"`
	Quota    QuotaConfig    `mapstructure:"quota"`
	OSS      OSSConfig      `mapstructure:"oss"`
	OAuth    OAuthConfig    `mapstructure:"oauth"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Links    LinksConfig    `mapstructure:"links"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type JWTConfig struct {
	Secret              string `mapstructure:"secret"`
	AccessExpireMinutes int    `mapstructure:"access_expire_minutes"`
	RefreshExpireHours  int    `mapstructure:"refresh_expire_hours"`
	VerifyExpireMinutes int    `mapstructure:"verify_expire_minutes"`
	ResetExpireMinutes  int    `mapstructure:"reset_expire_minutes"`
}

type EmailConfig struct {
	SMTPHost string `mapstructure:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type MailConfig struct {
	QueueName string `mapstructure:"queue_name"`
}

type QuotaConfig struct {
	DailyLimit   int `mapstructure:"daily_limit"`   // 每日配额上限（quack 和 hate 各自独立）
	PopularTopN  int `mapstructure:"popular_top_n"` // 人气榜长度
	ResetHourUTC int `mapstructure:"reset_hour_utc"`
}

type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	BucketName      string `mapstructure:"bucket_name"`
	CDNDomain       string `mapstructure:"cdn_domain"`
}

type OAuthConfig struct {
	Github GithubOAuthConfig `mapstructure:"github"`
}

type GithubOAuthConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURI  string `mapstructure:"redirect_uri"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

// LinksConfig 邮件中使用的前端链接
type LinksConfig struct {
	VerifyAccountURL string `mapstructure:"verify_account_url"`
	ResetPasswordURL string `mapstructure:"reset_password_url"`
}

func Load(configPath string) (*Config, error) {
	// 优先尝试读取 config.local.yaml（包含真实密钥，不提交到git）
	dir := filepath.Dir(configPath)
	localConfigPath := filepath.Join(dir, "config.local.yaml")

	// 检查 config.local.yaml 是否存在
	if _, err := os.Stat(localConfigPath); err == nil {
		configPath = localConfigPath
	}

	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	// 环境变量覆盖
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.JWT.AccessExpireMinutes <= 0 {
		cfg.JWT.AccessExpireMinutes = 30
	}
	if cfg.JWT.RefreshExpireHours <= 0 {
		cfg.JWT.RefreshExpireHours = 24 * 7
	}
	if cfg.JWT.VerifyExpireMinutes <= 0 {
		cfg.JWT.VerifyExpireMinutes = 60
	}
	if cfg.JWT.ResetExpireMinutes <= 0 {
		cfg.JWT.ResetExpireMinutes = 30
	}
	if cfg.Quota.DailyLimit <= 0 {
		cfg.Quota.DailyLimit = 500
	}
	if cfg.Quota.PopularTopN <= 0 {
		cfg.Quota.PopularTopN = 3
	}
	if cfg.Mail.QueueName == "" {
		cfg.Mail.QueueName = "mail_queue"
	}
}
