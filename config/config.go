package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	AppName      string `env:"AUTH_APP_NAME" envDefault:"auth-api"`
	AppEnv       string `env:"AUTH_APP_ENV" envDefault:"local"`
	HTTPHost     string `env:"AUTH_HTTP_HOST" envDefault:"0.0.0.0"`
	HTTPPort     string `env:"AUTH_HTTP_PORT" envDefault:"3001"`
	HTTPBasePath string `env:"AUTH_HTTP_BASE_PATH" envDefault:"/api"`

	DBHost     string `env:"AUTH_DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"AUTH_DB_PORT" envDefault:"5432"`
	DBUser     string `env:"AUTH_DB_USER" envDefault:"app"`
	DBPassword string `env:"AUTH_DB_PASSWORD" envDefault:"app_password"`
	DBName     string `env:"AUTH_DB_NAME" envDefault:"userdb"`
	DBSSLMode  string `env:"AUTH_DB_SSLMODE" envDefault:"disable"`

	AccessPrivateKey string        `env:"AUTH_ACCESS_TOKEN_PRIVATE_KEY"`
	AccessPublicKey  string        `env:"AUTH_ACCESS_TOKEN_PUBLIC_KEY"`
	AccessTTL        time.Duration `env:"AUTH_ACCESS_TOKEN_TTL" envDefault:"30m"`
	RefreshSecret    string        `env:"AUTH_REFRESH_TOKEN_SECRET"`
	RefreshTTL       time.Duration `env:"AUTH_REFRESH_TOKEN_TTL" envDefault:"24h"`
	JWTAudience      string        `env:"AUTH_JWT_AUDIENCE" envDefault:"frontend"`
	JWTIssuer        string        `env:"AUTH_JWT_ISSUER" envDefault:"auth-api"`

	OTPTTL time.Duration `env:"AUTH_OTP_TTL" envDefault:"15m"`

	SMTPHost     string `env:"AUTH_SMTP_HOST" envDefault:"localhost"`
	SMTPPort     int    `env:"AUTH_SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"AUTH_SMTP_USERNAME"`
	SMTPPassword string `env:"AUTH_SMTP_PASSWORD"`
	MailFrom     string `env:"AUTH_MAIL_FROM" envDefault:"no-reply@auth-api.local"`

	GoogleClientID     string `env:"AUTH_GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"AUTH_GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `env:"AUTH_GOOGLE_REDIRECT_URL" envDefault:"http://localhost:3001/api/auth/redirect"`

	NATSURL                string `env:"NATS_URL" envDefault:"nats://localhost:4222"`
	NATSVerifySubject      string `env:"NATS_SUBJECT_VERIFY_JWT" envDefault:"auth.verifyJWT"`
	NATSUserCreatedSubject string `env:"NATS_SUBJECT_USER_CREATED" envDefault:"user.create-user"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}
