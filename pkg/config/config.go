package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Column insert positions accepted by COLUMN_INSERT_POSITION
const (
	ColumnInsertEnd   = "end"
	ColumnInsertFront = "front"
)

type Config struct {
	Port               string
	AppURL             string
	AllowedOrigins     []string
	DBDriver           string
	DatabaseURL        string
	SQLitePath         string
	JWTSecret          string
	JWTAccessExpiry    time.Duration
	JWTRefreshExpiry   time.Duration
	GoogleClientID     string
	GoogleClientSecret string

	// Mail
	MailTransport     string // "smtp", "gmail" or "log"
	MailFrom          string
	MailFromName      string
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string
	GmailRefreshToken string

	// Notifications
	FirebaseCredentials string
	NotifyWorkers       int
	NotifyQueueSize     int
	ReminderInterval    time.Duration
	ReminderLeadTime    time.Duration

	// Join rate limiting
	RedisAddr       string
	RedisPassword   string
	JoinRateLimit   int
	JoinRateWindow  time.Duration

	// Attachments
	StorageDriver  string // "local" or "minio"
	StoragePath    string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	MaxUploadBytes int64

	// Ordering
	ColumnInsertPosition string
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	insertPos := strings.ToLower(getEnv("COLUMN_INSERT_POSITION", ColumnInsertEnd))
	if insertPos != ColumnInsertFront {
		insertPos = ColumnInsertEnd
	}

	return &Config{
		Port:               getEnv("PORT", "8080"),
		AppURL:             strings.TrimRight(getEnv("APP_URL", "http://localhost:8080"), "/"),
		AllowedOrigins:     splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		DBDriver:           getEnv("DB_DRIVER", "postgres"),
		DatabaseURL:        getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=taskup port=5432 sslmode=disable"),
		SQLitePath:         getEnv("SQLITE_PATH", "taskup.db"),
		JWTSecret:          getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTAccessExpiry:    getDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
		JWTRefreshExpiry:   getDuration("JWT_REFRESH_EXPIRY", 168*time.Hour), // 7 days
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),

		MailTransport:     getEnv("MAIL_TRANSPORT", "log"),
		MailFrom:          getEnv("MAIL_FROM", "no-reply@taskup.local"),
		MailFromName:      getEnv("MAIL_FROM_NAME", "TaskUp"),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getInt("SMTP_PORT", 587),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),
		GmailRefreshToken: getEnv("GMAIL_REFRESH_TOKEN", ""),

		FirebaseCredentials: getEnv("FIREBASE_CREDENTIALS", ""),
		NotifyWorkers:       getInt("NOTIFY_WORKERS", 3),
		NotifyQueueSize:     getInt("NOTIFY_QUEUE_SIZE", 500),
		ReminderInterval:    getDuration("REMINDER_INTERVAL", time.Minute),
		ReminderLeadTime:    getDuration("REMINDER_LEAD_TIME", 24*time.Hour),

		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		JoinRateLimit:  getInt("JOIN_RATE_LIMIT", 10),
		JoinRateWindow: getDuration("JOIN_RATE_WINDOW", time.Minute),

		StorageDriver:  getEnv("STORAGE_DRIVER", "local"),
		StoragePath:    getEnv("STORAGE_PATH", "uploads"),
		MinioEndpoint:  getEnv("MINIO_ENDPOINT", ""),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getEnv("MINIO_BUCKET", "taskup-attachments"),
		MinioUseSSL:    getBool("MINIO_USE_SSL", false),
		MaxUploadBytes: int64(getInt("MAX_UPLOAD_BYTES", 10<<20)),

		ColumnInsertPosition: insertPos,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
