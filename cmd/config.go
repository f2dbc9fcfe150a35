package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Logistics LogisticsConfig `yaml:"logistics"`
	Lifecycle LifecycleConfig `yaml:"lifecycle"`
	Jobs      JobsConfig      `yaml:"jobs"`
	LogLevel  string          `yaml:"log_level"`
}

type HTTPConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN builds the connection string for gorm's postgres driver.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// RedisConfig with an empty Address keeps the provider token in memory.
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	TokenKey string `yaml:"token_key"`
}

// KafkaConfig with no brokers logs shipment events instead of publishing them.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type LogisticsConfig struct {
	BaseURL  string        `yaml:"base_url"`
	Email    string        `yaml:"email"`
	Password string        `yaml:"password"`
	Timeout  time.Duration `yaml:"timeout"`
	TokenTTL time.Duration `yaml:"token_ttl"`
	Attempts int           `yaml:"attempts"`
	// TimeZone is the zone of the provider's naive timestamps.
	TimeZone string `yaml:"time_zone"`
}

type LifecycleConfig struct {
	LockWait          time.Duration `yaml:"lock_wait"`
	AutoSelectCourier bool          `yaml:"auto_select_courier"`
	BulkMaxBatch      int           `yaml:"bulk_max_batch"`
	BulkWorkers       int           `yaml:"bulk_workers"`
	WalletTTL         time.Duration `yaml:"wallet_ttl"`
}

type JobsConfig struct {
	TrackingPollInterval  time.Duration `yaml:"tracking_poll_interval"`
	TrackingPollWorkers   int           `yaml:"tracking_poll_workers"`
	TrackingPollBatch     int           `yaml:"tracking_poll_batch"`
	WalletRefreshInterval time.Duration `yaml:"wallet_refresh_interval"`
}

func Defaults() *Config {
	return &Config{
		HTTP: HTTPConfig{Host: "0.0.0.0", Port: "8080"},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    "5432",
			User:    "shipping",
			Name:    "shipping",
			SSLMode: "disable",
		},
		Redis: RedisConfig{TokenKey: "shipping:logistics:token"},
		Kafka: KafkaConfig{Topic: "shipping.shipment-events"},
		Logistics: LogisticsConfig{
			Timeout:  15 * time.Second,
			TokenTTL: 24 * time.Hour,
			Attempts: 3,
			TimeZone: "UTC",
		},
		Lifecycle: LifecycleConfig{
			LockWait:          5 * time.Second,
			AutoSelectCourier: true,
			BulkMaxBatch:      10,
			BulkWorkers:       4,
			WalletTTL:         5 * time.Minute,
		},
		Jobs: JobsConfig{
			TrackingPollInterval:  30 * time.Second,
			TrackingPollWorkers:   4,
			TrackingPollBatch:     100,
			WalletRefreshInterval: 5 * time.Minute,
		},
		LogLevel: "info",
	}
}

// Load reads the YAML file at path over the defaults. A missing file is not
// an error.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides the config with the environment variables lookup
// reports as set. Malformed values are errors.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	var errList []string
	integer := func(key string, dst *int) {
		if v, ok := lookup(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errList = append(errList, key+": "+err.Error())
				return
			}
			*dst = n
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errList = append(errList, key+": "+err.Error())
				return
			}
			*dst = d
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errList = append(errList, key+": "+err.Error())
				return
			}
			*dst = b
		}
	}

	str("HTTP_HOST", &c.HTTP.Host)
	str("HTTP_PORT", &c.HTTP.Port)
	str("DB_HOST", &c.Database.Host)
	str("DB_PORT", &c.Database.Port)
	str("DB_USER", &c.Database.User)
	str("DB_PASSWORD", &c.Database.Password)
	str("DB_NAME", &c.Database.Name)
	str("DB_SSLMODE", &c.Database.SSLMode)
	str("REDIS_ADDR", &c.Redis.Address)
	str("REDIS_PASSWORD", &c.Redis.Password)
	integer("REDIS_DB", &c.Redis.DB)
	if v, ok := lookup("KAFKA_BROKERS"); ok {
		c.Kafka.Brokers = splitList(v)
	}
	str("KAFKA_TOPIC", &c.Kafka.Topic)
	str("LOGISTICS_BASE_URL", &c.Logistics.BaseURL)
	str("LOGISTICS_EMAIL", &c.Logistics.Email)
	str("LOGISTICS_PASSWORD", &c.Logistics.Password)
	duration("LOGISTICS_TIMEOUT", &c.Logistics.Timeout)
	integer("LOGISTICS_ATTEMPTS", &c.Logistics.Attempts)
	str("LOGISTICS_TIME_ZONE", &c.Logistics.TimeZone)
	duration("LOCK_WAIT", &c.Lifecycle.LockWait)
	boolean("AUTO_SELECT_COURIER", &c.Lifecycle.AutoSelectCourier)
	integer("BULK_MAX_BATCH", &c.Lifecycle.BulkMaxBatch)
	integer("BULK_WORKERS", &c.Lifecycle.BulkWorkers)
	duration("WALLET_TTL", &c.Lifecycle.WalletTTL)
	duration("TRACKING_POLL_INTERVAL", &c.Jobs.TrackingPollInterval)
	integer("TRACKING_POLL_WORKERS", &c.Jobs.TrackingPollWorkers)
	duration("WALLET_REFRESH_INTERVAL", &c.Jobs.WalletRefreshInterval)
	str("LOG_LEVEL", &c.LogLevel)

	if len(errList) > 0 {
		return fmt.Errorf("invalid environment: %s", strings.Join(errList, "; "))
	}
	return nil
}

// Validate reports settings the service cannot start without.
func (c *Config) Validate() error {
	var missing []string
	if c.Logistics.BaseURL == "" {
		missing = append(missing, "logistics.base_url")
	}
	if c.Logistics.Email == "" {
		missing = append(missing, "logistics.email")
	}
	if c.Logistics.Password == "" {
		missing = append(missing, "logistics.password")
	}
	if c.Database.Host == "" {
		missing = append(missing, "database.host")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing configuration: %s", strings.Join(missing, ", "))
	}
	return nil
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
