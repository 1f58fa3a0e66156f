package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"APP_PORT", "JWT_TTL", "CORS_ORIGINS", "UPLOAD_DIR", "DB_TLS"} {
		t.Setenv(k, "")
	}
	cfg := LoadConfig()
	assert.Equal(t, "5000", cfg.AppPort)
	assert.Equal(t, time.Hour, cfg.JWTTTL)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
	assert.Equal(t, "uploads", cfg.UploadDir)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("JWT_TTL", "30m")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("BILLING_CRON", "")
	t.Setenv("REDIS_DB", "2")
	cfg := LoadConfig()
	assert.Equal(t, 30*time.Minute, cfg.JWTTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Empty(t, cfg.BillingCron, "an explicit empty schedule disables the job")
	assert.Equal(t, 2, cfg.RedisDB)
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBUser: "u", DBPassword: "p", DBHost: "db", DBPort: "3306", DBName: "society"}
	assert.Equal(t, "u:p@tcp(db:3306)/society?parseTime=true&charset=utf8mb4&loc=Local", cfg.DSN())
	cfg.DBTLS = "true"
	assert.Equal(t, "u:p@tcp(db:3306)/society?parseTime=true&charset=utf8mb4&loc=Local&tls=true", cfg.DSN())
}
