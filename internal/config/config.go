package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"user_service/internal/lib/verification"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	MailTransportQueue = "queue"
	MailTransportSMTP  = "smtp"
)

type Config struct {
	Env          string `yaml:"env" env:"ENV" env-default:"local"`
	HTTPServer   `yaml:"http_server"`
	Postgres     `yaml:"postgres"`
	Redis        `yaml:"redis"`
	RabbitMQ     `yaml:"rabbitmq"`
	Tokens       `yaml:"tokens"`
	Verification `yaml:"verification"`
	Mail         `yaml:"mail"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8080"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

type Postgres struct {
	Host     string `yaml:"host" env:"POSTGRES_HOST" env-default:"postgres"`
	Port     int    `yaml:"port" env:"POSTGRES_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"POSTGRES_USER" env-required:"true"`
	Password string `yaml:"password" env:"POSTGRES_PASSWORD" env-required:"true"`
	DBName   string `yaml:"dbname" env:"POSTGRES_DB" env-required:"true"`
	SSLMode  string `yaml:"sslmode" env-default:"disable"`
}

type Redis struct {
	Address  string `yaml:"address" env:"REDIS_ADDR" env-default:"redis:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type RabbitMQ struct {
	URL       string `yaml:"url" env:"RABBITMQ_URL" env-required:"true"`
	QueueName string `yaml:"queue_name" env-default:"mail.verification"`
}

type Tokens struct {
	Secret          string        `yaml:"secret" env:"JWT_SECRET" env-required:"true"`
	Issuer          string        `yaml:"issuer" env-default:"user-service"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl" env-default:"30m"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl" env-default:"336h"`
}

type Verification struct {
	CodeLength    int           `yaml:"code_length" env-default:"6"`
	CodeTTL       time.Duration `yaml:"code_ttl" env-default:"5m"`
	CompletionTTL time.Duration `yaml:"completion_ttl" env-default:"1h"`
	Subject       string        `yaml:"subject" env-default:"[Wander] Your verification code has arrived"`
}

type Mail struct {
	Transport string `yaml:"transport" env:"MAIL_TRANSPORT" env-default:"queue"`
	SMTP      `yaml:"smtp"`
}

type SMTP struct {
	Host     string `yaml:"host" env:"SMTP_HOST"`
	Port     int    `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	Username string `yaml:"username" env:"SMTP_USERNAME"`
	Password string `yaml:"password" env:"SMTP_PASSWORD"`
	From     string `yaml:"from" env:"SMTP_FROM"`
}

// MailSenderConfig configures the queue consumer in cmd/mail_sender.
type MailSenderConfig struct {
	Env      string `yaml:"env" env:"ENV" env-default:"local"`
	Prefetch int    `yaml:"prefetch" env-default:"10"`
	RabbitMQ `yaml:"rabbitmq"`
	SMTP     `yaml:"smtp"`
}

func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(err.Error())
	}

	return cfg
}

func Load(configPath string) (*Config, error) {
	const op = "config.Load"

	path, err := resolvePath(configPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("%s: failed to read config: %w", op, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &cfg, nil
}

func MustLoadMailSender(configPath string) *MailSenderConfig {
	cfg, err := LoadMailSender(configPath)
	if err != nil {
		panic(err.Error())
	}

	return cfg
}

func LoadMailSender(configPath string) (*MailSenderConfig, error) {
	const op = "config.LoadMailSender"

	path, err := resolvePath(configPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var cfg MailSenderConfig

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("%s: failed to read config: %w", op, err)
	}

	if cfg.SMTP.Host == "" {
		return nil, fmt.Errorf("%s: smtp host is required", op)
	}

	return &cfg, nil
}

// resolvePath loads an optional .env file, then prefers CONFIG_PATH over the
// given default.
func resolvePath(configPath string) (string, error) {
	_ = godotenv.Load()

	if p := os.Getenv("CONFIG_PATH"); p != "" {
		configPath = p
	}

	if configPath == "" {
		return "", errors.New("config path is not set")
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return "", fmt.Errorf("config file does not exist: %s", configPath)
	}

	return configPath, nil
}

func (c *Config) validate() error {
	switch c.Mail.Transport {
	case MailTransportQueue:
	case MailTransportSMTP:
		if c.Mail.SMTP.Host == "" {
			return errors.New("mail.smtp.host is required for smtp transport")
		}
	default:
		return fmt.Errorf("unknown mail transport %q", c.Mail.Transport)
	}

	if len(c.Tokens.Secret) < 32 {
		return errors.New("tokens.secret must be at least 32 bytes")
	}

	if c.Verification.CodeLength < verification.MinCodeLength || c.Verification.CodeLength > verification.MaxCodeLength {
		return fmt.Errorf("verification.code_length must be between %d and %d, got %d",
			verification.MinCodeLength, verification.MaxCodeLength, c.Verification.CodeLength)
	}

	if c.Verification.CodeTTL <= 0 || c.Verification.CompletionTTL <= 0 {
		return errors.New("verification ttl must be positive")
	}

	return nil
}
