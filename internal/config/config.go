package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	Port        string
	APIURL      string
	DBURL       string
	LogLevel    string
	FrontendURL string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	CodeforcesAPIBase    string
	CFMaxAttempts        int
	CFRetryBaseDelay     time.Duration
	CFRequestTimeout     time.Duration
	CFMinRequestInterval time.Duration
	CFBreakerFailures    int
	CFBreakerCooldown    time.Duration
	SubmissionFetchCount int
	FleetPacing          time.Duration
	ReminderPacing       time.Duration
	InactivityDays       int
	DefaultProblemRating int32
	SyncSchedule         string
	SyncTimezone         string
	BackgroundQueueSize  int
	SyncResultCacheSize  int

	SMTPHost            string
	SMTPPort            int
	SenderEmail         string
	SenderEmailPassword string
	EmailWorkers        int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Info("no .env file found, relying on environment variables")
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		APIURL:      getEnv("API_URL", ""),
		DBURL:       getEnv("DB_URL", ""),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),

		RateLimitRequests: getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(getEnvAsInt("RATE_LIMIT_WINDOW_MINUTES", 15)) * time.Minute,

		CodeforcesAPIBase:    getEnv("CODEFORCES_API_BASE", "https://codeforces.com/api"),
		CFMaxAttempts:        getEnvAsInt("CF_MAX_ATTEMPTS", 3),
		CFRetryBaseDelay:     getEnvAsMillis("CF_RETRY_BASE_DELAY_MS", 1000),
		CFRequestTimeout:     getEnvAsMillis("CF_REQUEST_TIMEOUT_MS", 10000),
		CFMinRequestInterval: getEnvAsMillis("CF_MIN_REQUEST_INTERVAL_MS", 250),
		CFBreakerFailures:    getEnvAsInt("CF_BREAKER_FAILURES", 5),
		CFBreakerCooldown:    time.Duration(getEnvAsInt("CF_BREAKER_COOLDOWN_SECONDS", 60)) * time.Second,
		SubmissionFetchCount: getEnvAsInt("SUBMISSION_FETCH_COUNT", 10000),
		FleetPacing:          getEnvAsMillis("FLEET_PACING_MS", 1000),
		ReminderPacing:       getEnvAsMillis("REMINDER_PACING_MS", 500),
		InactivityDays:       getEnvAsInt("INACTIVITY_DAYS", 7),
		DefaultProblemRating: int32(getEnvAsInt("DEFAULT_PROBLEM_RATING", 800)),
		SyncSchedule:         getEnv("SYNC_SCHEDULE", "0 2 * * *"),
		SyncTimezone:         getEnv("SYNC_TIMEZONE", "UTC"),
		BackgroundQueueSize:  getEnvAsInt("BACKGROUND_QUEUE_SIZE", 100),
		SyncResultCacheSize:  getEnvAsInt("SYNC_RESULT_CACHE_SIZE", 512),

		SMTPHost:            getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:            getEnvAsInt("SMTP_PORT", 587),
		SenderEmail:         getEnv("SENDER_EMAIL", ""),
		SenderEmailPassword: getEnv("SENDER_EMAIL_PASSWORD", ""),
		EmailWorkers:        getEnvAsInt("EMAIL_WORKERS", 1),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Warnf("invalid integer %q for %s, using default %d", valueStr, key, fallback)
		return fallback
	}
	return value
}

func getEnvAsMillis(key string, fallback int) time.Duration {
	return time.Duration(getEnvAsInt(key, fallback)) * time.Millisecond
}
