package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// FileName is the config file looked up in the config directory.
const FileName = "impact_tracker.cfg.json"

// TrackerSettings are the two tunables of the impact tracker.
type TrackerSettings struct {
	Enabled    bool    `json:"enabled" mapstructure:"enabled"`
	MaxSeconds float64 `json:"maxSeconds" mapstructure:"maxSeconds"`
}

// MemoryConfig holds in-memory/JSON telemetry backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SQLiteConfig holds sqlite telemetry backend settings
type SQLiteConfig struct {
	Path         string        `json:"path" mapstructure:"path"`
	DumpInterval time.Duration `json:"dumpInterval" mapstructure:"dumpInterval"`
}

// DatabaseConfig holds postgres connection settings
type DatabaseConfig struct {
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`
}

// TelemetryConfig selects and configures the prediction recorder backend.
type TelemetryConfig struct {
	Enabled       bool
	Type          string
	FlushInterval time.Duration
	Memory        MemoryConfig
	SQLite        SQLiteConfig
	DB            DatabaseConfig
}

// InfluxConfig holds InfluxDB time series settings
type InfluxConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Protocol string
	Token    string
	Org      string
	Bucket   string
}

// URL returns the server address built from protocol, host and port.
func (c InfluxConfig) URL() string {
	return fmt.Sprintf("%s://%s:%s", c.Protocol, c.Host, c.Port)
}

// OTelConfig holds OpenTelemetry log export settings
type OTelConfig struct {
	Enabled      bool
	ServiceName  string
	BatchTimeout time.Duration
	Endpoint     string
	Insecure     bool
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	setDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./impactlogs")

	viper.SetDefault("tracker.enabled", true)
	viper.SetDefault("tracker.maxSeconds", 300)

	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.type", "memory")
	viper.SetDefault("telemetry.flushInterval", "5s")
	viper.SetDefault("telemetry.memory.outputDir", "./impact_recordings")
	viper.SetDefault("telemetry.memory.compressOutput", true)
	viper.SetDefault("telemetry.sqlite.path", "./impact_tracker.db")
	viper.SetDefault("telemetry.sqlite.dumpInterval", "3m")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "impact")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "impact-metrics")
	viper.SetDefault("influx.bucket", "predictions")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "impact-tracker")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetTrackerSettings returns the tracker tunables. A non-positive horizon
// falls back to the default.
func GetTrackerSettings() TrackerSettings {
	s := TrackerSettings{
		Enabled:    viper.GetBool("tracker.enabled"),
		MaxSeconds: viper.GetFloat64("tracker.maxSeconds"),
	}
	if s.MaxSeconds <= 0 {
		s.MaxSeconds = 300
	}
	return s
}

// GetTelemetryConfig returns the prediction recorder configuration.
func GetTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:       viper.GetBool("telemetry.enabled"),
		Type:          viper.GetString("telemetry.type"),
		FlushInterval: viper.GetDuration("telemetry.flushInterval"),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("telemetry.memory.outputDir"),
			CompressOutput: viper.GetBool("telemetry.memory.compressOutput"),
		},
		SQLite: SQLiteConfig{
			Path:         viper.GetString("telemetry.sqlite.path"),
			DumpInterval: viper.GetDuration("telemetry.sqlite.dumpInterval"),
		},
		DB: DatabaseConfig{
			Host:     viper.GetString("db.host"),
			Port:     viper.GetString("db.port"),
			Username: viper.GetString("db.username"),
			Password: viper.GetString("db.password"),
			Database: viper.GetString("db.database"),
		},
	}
}

// GetInfluxConfig returns the InfluxDB configuration.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:  viper.GetBool("influx.enabled"),
		Host:     viper.GetString("influx.host"),
		Port:     viper.GetString("influx.port"),
		Protocol: viper.GetString("influx.protocol"),
		Token:    viper.GetString("influx.token"),
		Org:      viper.GetString("influx.org"),
		Bucket:   viper.GetString("influx.bucket"),
	}
}

// GetOTelConfig returns the OpenTelemetry configuration.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}
