package config

import (
	"errors"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type AppCfg struct {
	Env          string `mapstructure:"env"`
	Port         int    `mapstructure:"port"`
	ClientOrigin string `mapstructure:"client_origin"`
}

type MongoCfg struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type RedisCfg struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTCfg struct {
	Secret   string `mapstructure:"secret"`
	TTLHours int    `mapstructure:"ttl_hours"`
}

type BrevoCfg struct {
	APIKey    string `mapstructure:"api_key"`
	FromEmail string `mapstructure:"from_email"`
	FromName  string `mapstructure:"from_name"`
}

type S3Cfg struct {
	Region string `mapstructure:"region"`
	Bucket string `mapstructure:"bucket"`
}

type SecurityCfg struct {
	OTPTTLMinutes         int `mapstructure:"otp_ttl_minutes"`
	OTPRateLimitPerHour   int `mapstructure:"otp_rate_limit_per_hour"`
	AuthRequestsPerMinute int `mapstructure:"auth_requests_per_minute"`
	PasswordHashCost      int `mapstructure:"password_hash_cost"`
}

type Config struct {
	App      AppCfg      `mapstructure:"app"`
	Mongo    MongoCfg    `mapstructure:"mongo"`
	Redis    RedisCfg    `mapstructure:"redis"`
	JWT      JWTCfg      `mapstructure:"jwt"`
	Brevo    BrevoCfg    `mapstructure:"brevo"`
	S3       S3Cfg       `mapstructure:"s3"`
	Security SecurityCfg `mapstructure:"security"`

	// derived
	TokenTTL time.Duration
	OTPTTL   time.Duration
}

// Load reads config.yaml (path may be empty to skip the file) and applies
// environment overrides. A .env file is folded into the environment first so
// local development matches deployment.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	bind := func(key, env string) { _ = v.BindEnv(key, env) }
	bind("app.env", "APP_ENV")
	bind("app.port", "PORT")
	bind("app.client_origin", "CLIENT_ORIGIN")
	bind("mongo.uri", "MONGO_URI")
	bind("mongo.database", "MONGO_DB")
	bind("redis.addr", "REDIS_ADDR")
	bind("redis.password", "REDIS_PASSWORD")
	bind("redis.db", "REDIS_DB")
	bind("jwt.secret", "JWT_SECRET")
	bind("jwt.ttl_hours", "JWT_TTL_HOURS")
	bind("brevo.api_key", "BREVO_API_KEY")
	bind("brevo.from_email", "BREVO_FROM_EMAIL")
	bind("brevo.from_name", "BREVO_FROM_NAME")
	bind("s3.region", "S3_REGION")
	bind("s3.bucket", "S3_BUCKET")
	bind("security.otp_ttl_minutes", "OTP_TTL_MINUTES")
	bind("security.otp_rate_limit_per_hour", "OTP_RATE_LIMIT_PER_HOUR")
	bind("security.auth_requests_per_minute", "AUTH_REQUESTS_PER_MINUTE")
	bind("security.password_hash_cost", "PASSWORD_HASH_COST")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			// config file is optional, env alone must be able to boot the server
			var nf viper.ConfigFileNotFoundError
			if !errors.As(err, &nf) && !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	applyDefaults(cfg)
	if err := validate(cfg); err != nil {
		return nil, err
	}

	cfg.TokenTTL = time.Duration(cfg.JWT.TTLHours) * time.Hour
	cfg.OTPTTL = time.Duration(cfg.Security.OTPTTLMinutes) * time.Minute
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.Env == "" {
		cfg.App.Env = "production"
	}
	if cfg.App.Port == 0 {
		cfg.App.Port = 5000
	}
	if cfg.Mongo.Database == "" {
		cfg.Mongo.Database = "social"
	}
	if cfg.JWT.TTLHours == 0 {
		cfg.JWT.TTLHours = 24
	}
	if cfg.Security.OTPTTLMinutes == 0 {
		cfg.Security.OTPTTLMinutes = 10
	}
	if cfg.Security.OTPRateLimitPerHour == 0 {
		cfg.Security.OTPRateLimitPerHour = 5
	}
	if cfg.Security.AuthRequestsPerMinute == 0 {
		cfg.Security.AuthRequestsPerMinute = 30
	}
	if cfg.Security.PasswordHashCost == 0 {
		cfg.Security.PasswordHashCost = 10
	}
}

func validate(cfg *Config) error {
	if cfg.Mongo.URI == "" {
		return errors.New("MONGO_URI is required")
	}
	if cfg.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if cfg.Brevo.APIKey == "" || cfg.Brevo.FromEmail == "" {
		return errors.New("BREVO_API_KEY and BREVO_FROM_EMAIL are required")
	}
	if cfg.S3.Region == "" || cfg.S3.Bucket == "" {
		return errors.New("S3_REGION and S3_BUCKET are required")
	}
	if cfg.Redis.Addr == "" {
		return errors.New("REDIS_ADDR is required")
	}
	return nil
}
