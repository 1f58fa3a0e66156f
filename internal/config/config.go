package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"strings" // For splitting list values
	"time"    // For durations

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort     string        // Application port
	DBUser      string        // Database user
	DBPassword  string        // Database password
	DBHost      string        // Database host
	DBPort      string        // Database port
	DBName      string        // Database name
	DBTLS       string        // go-sql-driver tls mode ("", "true", "skip-verify")
	JWTSecret   string        // JWT secret key
	JWTTTL      time.Duration // JWT lifetime
	RedisAddr   string        // Redis server address
	RedisPass   string        // Redis password
	RedisDB     int           // Redis database number
	IsProd      bool          // Is production environment
	LogLevel    string        // logrus level name
	CORSOrigins []string      // Allowed browser origins
	FrontendURL string        // Base URL used in password reset links
	SMTPHost    string        // SMTP server host
	SMTPPort    string        // SMTP server port
	EmailUser   string        // SMTP user, also the From address
	EmailPass   string        // SMTP password
	UploadDir   string        // Directory for uploaded QR images
	BillingCron string        // Cron spec for monthly bill generation, empty disables
	AdminEmail  string        // First admin seeded by cmd/migrate
	AdminPass   string        // First admin password
}

const defaultOrigin = "http://localhost:5173" // Vite dev server

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	jwtTTL, err := time.ParseDuration(os.Getenv("JWT_TTL"))
	if err != nil || jwtTTL <= 0 {
		jwtTTL = time.Hour
	}
	billingCron, ok := os.LookupEnv("BILLING_CRON")
	if !ok {
		billingCron = "0 6 1 * *" // 06:00 on the 1st of every month
	}
	return &Config{
		AppPort:     getenv("APP_PORT", "5000"),                       // Application port
		DBUser:      os.Getenv("DB_USER"),                             // Database user
		DBPassword:  os.Getenv("DB_PASSWORD"),                         // Database password
		DBHost:      getenv("DB_HOST", "127.0.0.1"),                   // Database host
		DBPort:      getenv("DB_PORT", "3306"),                        // Database port
		DBName:      os.Getenv("DB_NAME"),                             // Database name
		DBTLS:       os.Getenv("DB_TLS"),                              // TLS mode
		JWTSecret:   os.Getenv("JWT_SECRET"),                          // JWT secret key
		JWTTTL:      jwtTTL,                                           // JWT lifetime
		RedisAddr:   getenv("REDIS_ADDR", "127.0.0.1:6379"),           // Redis server address
		RedisPass:   os.Getenv("REDIS_PASS"),                          // Redis password
		RedisDB:     redisDB,                                          // Redis database number
		IsProd:      os.Getenv("IS_PROD") == "true",                   // Is production environment
		LogLevel:    getenv("LOG_LEVEL", "info"),                      // Log level
		CORSOrigins: splitList(getenv("CORS_ORIGINS", defaultOrigin)), // Allowed origins
		FrontendURL: getenv("FRONTEND_URL", defaultOrigin),            // Reset link base
		SMTPHost:    os.Getenv("SMTP_HOST"),                           // SMTP host
		SMTPPort:    getenv("SMTP_PORT", "587"),                       // SMTP port
		EmailUser:   os.Getenv("EMAIL_USER"),                          // SMTP user
		EmailPass:   os.Getenv("EMAIL_PASS"),                          // SMTP password
		UploadDir:   getenv("UPLOAD_DIR", "uploads"),                  // Upload directory
		BillingCron: billingCron,                                      // Bill generation schedule
		AdminEmail:  os.Getenv("ADMIN_EMAIL"),                         // Seed admin email
		AdminPass:   os.Getenv("ADMIN_PASSWORD"),                      // Seed admin password
	}
}

// DSN builds the MySQL Data Source Name
func (c *Config) DSN() string {
	dsn := c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true&charset=utf8mb4&loc=Local"
	if c.DBTLS != "" {
		dsn += "&tls=" + c.DBTLS
	}
	return dsn
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
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
