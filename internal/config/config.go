package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/skytrace/missionmap/internal/database"
	"github.com/skytrace/missionmap/internal/viewport"
	"github.com/skytrace/missionmap/pkg/streaming"
)

// FileName is the config file looked up in the config directory.
const FileName = "missionmap.cfg.json"

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file. Defaults stay in
// effect when the file is missing, but the error is still returned.
func Load(configDir string) error {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./logs")

	viper.SetDefault("decoder.command", "")
	viper.SetDefault("decoder.args", []string{})
	viper.SetDefault("decoder.positionTypes", streaming.DefaultPositionTypes)
	viper.SetDefault("decoder.terminalType", streaming.TypeDoneLoading)
	viper.SetDefault("decoder.maxConcurrent", 0)

	viper.SetDefault("geocoder.enabled", true)
	viper.SetDefault("geocoder.url", "https://nominatim.openstreetmap.org")
	viper.SetDefault("geocoder.language", "es")
	viper.SetDefault("geocoder.userAgent", "missionmap/0.1")
	viper.SetDefault("geocoder.timeout", "10s")
	viper.SetDefault("geocoder.cacheSize", 256)
	viper.SetDefault("geocoder.store.type", database.TypeNone)
	viper.SetDefault("geocoder.store.path", "./places.db")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "missionmap")

	def := viewport.DefaultConfig()
	viper.SetDefault("viewport.closeZoom", def.CloseZoom)
	viper.SetDefault("viewport.degenerateThreshold", def.DegenerateThreshold)
	viper.SetDefault("viewport.paddingRatio", def.PaddingRatio)
	viper.SetDefault("viewport.maxZoom", def.MaxZoom)
	viper.SetDefault("viewport.width", def.Width)
	viper.SetDefault("viewport.height", def.Height)

	viper.SetDefault("server.enabled", false)
	viper.SetDefault("server.address", ":8080")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "missionmap")
	viper.SetDefault("influx.bucket", "ingest")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "missionmap")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetDefault("monitor.statusFile", "")
	viper.SetDefault("monitor.interval", "1s")

	viper.SetDefault("export.outputDir", "")
	viper.SetDefault("export.compressOutput", true)

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
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

// DecoderConfig holds decoder job settings
type DecoderConfig struct {
	Command       string
	Args          []string
	PositionTypes []string
	TerminalType  string
	MaxConcurrent int64
}

// GetDecoderConfig returns the decoder settings.
func GetDecoderConfig() DecoderConfig {
	return DecoderConfig{
		Command:       viper.GetString("decoder.command"),
		Args:          viper.GetStringSlice("decoder.args"),
		PositionTypes: viper.GetStringSlice("decoder.positionTypes"),
		TerminalType:  viper.GetString("decoder.terminalType"),
		MaxConcurrent: viper.GetInt64("decoder.maxConcurrent"),
	}
}

// GeocoderConfig holds reverse geocoding settings
type GeocoderConfig struct {
	Enabled   bool
	URL       string
	Language  string
	UserAgent string
	Timeout   time.Duration
	CacheSize int
}

// GetGeocoderConfig returns the geocoder settings.
func GetGeocoderConfig() GeocoderConfig {
	return GeocoderConfig{
		Enabled:   viper.GetBool("geocoder.enabled"),
		URL:       viper.GetString("geocoder.url"),
		Language:  viper.GetString("geocoder.language"),
		UserAgent: viper.GetString("geocoder.userAgent"),
		Timeout:   viper.GetDuration("geocoder.timeout"),
		CacheSize: viper.GetInt("geocoder.cacheSize"),
	}
}

// GetStoreConfig returns the place label store settings.
func GetStoreConfig() database.Config {
	return database.Config{
		Type:     viper.GetString("geocoder.store.type"),
		Path:     viper.GetString("geocoder.store.path"),
		Host:     viper.GetString("db.host"),
		Port:     viper.GetString("db.port"),
		Username: viper.GetString("db.username"),
		Password: viper.GetString("db.password"),
		Database: viper.GetString("db.database"),
	}
}

// GetViewportConfig returns the map framing settings.
func GetViewportConfig() viewport.Config {
	cfg := viewport.DefaultConfig()
	cfg.CloseZoom = viper.GetFloat64("viewport.closeZoom")
	cfg.DegenerateThreshold = viper.GetFloat64("viewport.degenerateThreshold")
	cfg.PaddingRatio = viper.GetFloat64("viewport.paddingRatio")
	cfg.MaxZoom = viper.GetFloat64("viewport.maxZoom")
	cfg.Width = viper.GetInt("viewport.width")
	cfg.Height = viper.GetInt("viewport.height")
	return cfg
}

// ServerConfig holds HTTP API settings
type ServerConfig struct {
	Enabled bool
	Address string
}

// GetServerConfig returns the HTTP API settings.
func GetServerConfig() ServerConfig {
	return ServerConfig{
		Enabled: viper.GetBool("server.enabled"),
		Address: viper.GetString("server.address"),
	}
}

// InfluxConfig holds InfluxDB settings
type InfluxConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Protocol string
	Token    string
	Org      string
	Bucket   string
}

// GetInfluxConfig returns the InfluxDB settings.
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

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled      bool
	ServiceName  string
	BatchTimeout time.Duration
	Endpoint     string
	Insecure     bool
}

// GetOTelConfig returns the OpenTelemetry settings.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// MonitorConfig holds status monitor settings
type MonitorConfig struct {
	StatusFile string
	Interval   time.Duration
}

// GetMonitorConfig returns the status monitor settings.
func GetMonitorConfig() MonitorConfig {
	return MonitorConfig{
		StatusFile: viper.GetString("monitor.statusFile"),
		Interval:   viper.GetDuration("monitor.interval"),
	}
}

// ExportConfig holds session export settings
type ExportConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// GetExportConfig returns the session export settings.
func GetExportConfig() ExportConfig {
	return ExportConfig{
		OutputDir:      viper.GetString("export.outputDir"),
		CompressOutput: viper.GetBool("export.compressOutput"),
	}
}
