// FilePath: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the relay
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Sensor     SensorConfig
	Refresher  RefresherConfig
	Scheduler  SchedulerConfig
	Redis      RedisConfig
	Monitoring MonitoringConfig
	Mirror     MirrorConfig
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	// StrictListing makes GET / answer 503 when the query fails instead of 204.
	StrictListing bool `mapstructure:"strict_listing"`
}

type DatabaseConfig struct {
	Driver       string        `mapstructure:"driver"`
	DSN          string        `mapstructure:"dsn"`
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	User         string        `mapstructure:"user"`
	Password     string        `mapstructure:"password"`
	DBName       string        `mapstructure:"dbname"`
	SSLMode      string        `mapstructure:"sslmode"`
	MaxOpenConns int           `mapstructure:"max_open_conns"`
	CreateTable  bool          `mapstructure:"create_table"`
	Table        string        `mapstructure:"table"`
	Columns      ColumnsConfig `mapstructure:"columns"`
}

// ColumnsConfig names the reading columns inside database.table
type ColumnsConfig struct {
	Temperature string `mapstructure:"temperature"`
	Latitude    string `mapstructure:"latitude"`
	Longitude   string `mapstructure:"longitude"`
	ReceivedAt  string `mapstructure:"received_at"`
}

type SensorConfig struct {
	URL            string        `mapstructure:"url"`
	PollIntervalMs int           `mapstructure:"poll_interval_ms"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// PollInterval returns the configured poll interval as a duration
func (s SensorConfig) PollInterval() time.Duration {
	return time.Duration(s.PollIntervalMs) * time.Millisecond
}

type RefresherConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
}

type SchedulerConfig struct {
	SkipIfBusy bool `mapstructure:"skip_if_busy"`
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	LockTTL  time.Duration `mapstructure:"lock_ttl"`
}

type MonitoringConfig struct {
	Namespace string `mapstructure:"namespace"`
}

type MirrorConfig struct {
	Influx InfluxConfig `mapstructure:"influx"`
}

type InfluxConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
	Token   string `mapstructure:"token"`
	Org     string `mapstructure:"org"`
	Bucket  string `mapstructure:"bucket"`
}

// Load initializes configuration from a .env file, environment variables and
// an optional config.yaml found in the given directories (./config by default)
func Load(paths ...string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("COLDRELAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	v.AutomaticEnv()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{"./config"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.strict_listing", false)

	// Database defaults mirror the constants the device firmware was deployed with
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.user", "root")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "vacinas_db")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.create_table", false)
	v.SetDefault("database.table", "readings")
	v.SetDefault("database.columns.temperature", "temperature")
	v.SetDefault("database.columns.latitude", "latitude")
	v.SetDefault("database.columns.longitude", "longitude")
	v.SetDefault("database.columns.received_at", "received_at")

	// Sensor defaults
	v.SetDefault("sensor.url", "http://coldremote.local/dados")
	v.SetDefault("sensor.poll_interval_ms", 5000)
	v.SetDefault("sensor.timeout", "3s")

	v.SetDefault("refresher.enabled", true)
	v.SetDefault("refresher.interval", "5s")

	v.SetDefault("scheduler.skip_if_busy", false)

	// Redis defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.lock_ttl", "4s")

	v.SetDefault("monitoring.namespace", "coldrelay")

	v.SetDefault("mirror.influx.enabled", false)
	v.SetDefault("mirror.influx.bucket", "coldchain")
}

func validateConfig(config *Config) error {
	switch config.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", config.Database.Driver)
	}
	if config.Database.DSN == "" && config.Database.Driver != "sqlite" && config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if config.Database.Driver == "sqlite" && config.Database.DSN == "" && config.Database.DBName == "" {
		return fmt.Errorf("sqlite requires a dsn or dbname")
	}
	if config.Sensor.URL == "" {
		return fmt.Errorf("sensor url is required")
	}
	if config.Sensor.PollIntervalMs <= 0 {
		return fmt.Errorf("sensor poll interval must be positive")
	}
	if config.Sensor.Timeout <= 0 {
		return fmt.Errorf("sensor timeout must be positive")
	}
	if config.Refresher.Enabled && config.Refresher.Interval <= 0 {
		return fmt.Errorf("refresher interval must be positive")
	}
	if config.Mirror.Influx.Enabled && (config.Mirror.Influx.URL == "" || config.Mirror.Influx.Org == "") {
		return fmt.Errorf("influx mirror requires url and org")
	}
	return nil
}
