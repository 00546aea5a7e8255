package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort  string `mapstructure:"APP_PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Dialogue engine.
	TriggerPhrase         string  `mapstructure:"TRIGGER_PHRASE"`
	TriggerMatchThreshold float64 `mapstructure:"TRIGGER_MATCH_THRESHOLD"`
	SilenceWindowMS       int     `mapstructure:"SILENCE_WINDOW_MS"`
	SessionIdleTimeoutSec int     `mapstructure:"SESSION_IDLE_TIMEOUT_SEC"`
	SessionSweepSec       int     `mapstructure:"SESSION_SWEEP_SEC"`
	SessionStore          string  `mapstructure:"SESSION_STORE"` // "memory" or "redis"

	// Scheduling.
	WorkHoursStartMin      int `mapstructure:"WORK_HOURS_START_MIN"` // minutes from midnight
	WorkHoursEndMin        int `mapstructure:"WORK_HOURS_END_MIN"`
	SlotStepMinutes        int `mapstructure:"SLOT_STEP_MINUTES"`
	SearchDays             int `mapstructure:"SEARCH_DAYS"`
	MaxAlternatives        int `mapstructure:"MAX_ALTERNATIVES"`
	DefaultDurationMinutes int `mapstructure:"DEFAULT_DURATION_MINUTES"`

	// Rate limiting.
	RateLimitMax       int `mapstructure:"RATE_LIMIT_MAX"`
	RateLimitWindowSec int `mapstructure:"RATE_LIMIT_WINDOW_SEC"`
	MaxRequestsPerMin  int `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr            string `mapstructure:"REDIS_ADDR"`
	RedisPassword        string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB       int    `mapstructure:"REDIS_SESSION_DB"`
	RedisRateDB          int    `mapstructure:"REDIS_RATE_DB"`
	RedisReminderQueueDB int    `mapstructure:"REDIS_REMINDER_QUEUE_DB"`

	// Reminders.
	RemindersEnabled    bool `mapstructure:"REMINDERS_ENABLED"`
	ReminderLeadMinutes int  `mapstructure:"REMINDER_LEAD_MINUTES"`

	// Google integration (calendar + speech-to-text).
	GoogleServiceAccountFile string `mapstructure:"GOOGLE_SERVICE_ACCOUNT_FILE"`
	GoogleCalendarID         string `mapstructure:"GOOGLE_CALENDAR_ID"`
	CalendarBackend          string `mapstructure:"CALENDAR_BACKEND"` // "memory" or "google"
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")

	viper.SetDefault("TRIGGER_PHRASE", "EL25")
	// Threshold and silence window are empirically tuned; keep them configurable.
	viper.SetDefault("TRIGGER_MATCH_THRESHOLD", 0.75)
	viper.SetDefault("SILENCE_WINDOW_MS", 2000)
	viper.SetDefault("SESSION_IDLE_TIMEOUT_SEC", 120)
	viper.SetDefault("SESSION_SWEEP_SEC", 30)
	viper.SetDefault("SESSION_STORE", "memory")

	viper.SetDefault("WORK_HOURS_START_MIN", 9*60)
	viper.SetDefault("WORK_HOURS_END_MIN", 17*60)
	viper.SetDefault("SLOT_STEP_MINUTES", 30)
	viper.SetDefault("SEARCH_DAYS", 7)
	viper.SetDefault("MAX_ALTERNATIVES", 3)
	viper.SetDefault("DEFAULT_DURATION_MINUTES", 30)

	viper.SetDefault("RATE_LIMIT_MAX", 60)
	viper.SetDefault("RATE_LIMIT_WINDOW_SEC", 60)
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 200)

	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_SESSION_DB", 0)
	viper.SetDefault("REDIS_RATE_DB", 1)
	viper.SetDefault("REDIS_REMINDER_QUEUE_DB", 2)

	viper.SetDefault("REMINDERS_ENABLED", false)
	viper.SetDefault("REMINDER_LEAD_MINUTES", 15)

	viper.SetDefault("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	viper.SetDefault("GOOGLE_CALENDAR_ID", "primary")
	viper.SetDefault("CALENDAR_BACKEND", "memory")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
