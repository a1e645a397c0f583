package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort string
	AppEnv  string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBURL      string

	PublicBaseURL string
	CORSOrigins   []string

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string

	SMTPHost    string
	SMTPPort    int
	GmailUser   string
	GmailPass   string
	NotifyEmail string

	KafkaBrokers    []string
	KafkaOrderTopic string

	JWTSecret         string
	AdminPasswordHash string

	NotifyQueueSize int
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		AppPort: getEnv("APP_PORT", "8080"),
		AppEnv:  getEnv("APP_ENV", "development"),

		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBURL:      os.Getenv("DB_URL"),

		PublicBaseURL: strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/"),
		CORSOrigins:   splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),

		CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),
		CloudinaryFolder:    getEnv("CLOUDINARY_FOLDER", "productImages"),

		SMTPHost:    getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:    getEnvInt("SMTP_PORT", 587),
		GmailUser:   os.Getenv("GMAIL_USER"),
		GmailPass:   os.Getenv("GMAIL_PASS"),
		NotifyEmail: os.Getenv("NOTIFY_EMAIL"),

		KafkaBrokers:    splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaOrderTopic: getEnv("KAFKA_ORDER_TOPIC", "storefront.order-created"),

		JWTSecret:         os.Getenv("JWT_SECRET"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),

		NotifyQueueSize: getEnvInt("NOTIFY_QUEUE_SIZE", 100),
	}
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.DBURL == "" && c.DBHost == "" {
		return errors.New("database not configured: set DB_URL or DB_HOST")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) MailEnabled() bool {
	return c.GmailUser != "" && c.GmailPass != "" && c.NotifyEmail != ""
}

func (c *Config) CloudinaryEnabled() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func splitList(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
