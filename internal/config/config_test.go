package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(body), 0644))
	return dir
}

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"logLevel": "debug",
		"db": { "host": "10.0.0.1", "port": "5433" }
	}`)

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", viper.GetString("logLevel"))
	assert.Equal(t, "10.0.0.1", viper.GetString("db.host"))
	assert.Equal(t, "5433", viper.GetString("db.port"))
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{}`)))

	assert.Equal(t, "info", viper.GetString("logLevel"))
	assert.Equal(t, "./logs", viper.GetString("logsDir"))
	assert.Equal(t, "localhost", viper.GetString("db.host"))
	assert.Equal(t, "5432", viper.GetString("db.port"))
	assert.Equal(t, "missionmap", viper.GetString("db.database"))
	assert.Equal(t, false, viper.GetBool("server.enabled"))
	assert.Equal(t, ":8080", viper.GetString("server.address"))
	assert.Equal(t, false, viper.GetBool("influx.enabled"))
	assert.Equal(t, "ingest", viper.GetString("influx.bucket"))
	assert.Equal(t, true, viper.GetBool("export.compressOutput"))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load("/nonexistent/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")

	// defaults are still usable
	assert.Equal(t, "info", viper.GetString("logLevel"))
	assert.Equal(t, "messagesDoneLoading", GetDecoderConfig().TerminalType)
}

func TestGetString(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testKey", "testValue")
	assert.Equal(t, "testValue", GetString("testKey"))
}

func TestGetInt(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testInt", 42)
	assert.Equal(t, 42, GetInt("testInt"))
}

func TestGetBool(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testBool", true)
	assert.Equal(t, true, GetBool("testBool"))
}

func TestGetDecoderConfig(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{}`)))
	dc := GetDecoderConfig()
	assert.Equal(t, []string{"GPS[0]", "GPS"}, dc.PositionTypes)
	assert.Equal(t, "messagesDoneLoading", dc.TerminalType)
	assert.Equal(t, int64(0), dc.MaxConcurrent)
	assert.Empty(t, dc.Command)

	viper.Reset()
	require.NoError(t, Load(writeConfig(t, `{
		"decoder": {
			"command": "/usr/bin/logparse",
			"args": ["--json"],
			"positionTypes": ["POS"],
			"maxConcurrent": 4
		}
	}`)))
	dc = GetDecoderConfig()
	assert.Equal(t, "/usr/bin/logparse", dc.Command)
	assert.Equal(t, []string{"--json"}, dc.Args)
	assert.Equal(t, []string{"POS"}, dc.PositionTypes)
	assert.Equal(t, int64(4), dc.MaxConcurrent)
}

func TestGetGeocoderConfig(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{"geocoder": {"language": "en", "timeout": "2s"}}`)))
	gc := GetGeocoderConfig()

	assert.True(t, gc.Enabled)
	assert.Equal(t, "https://nominatim.openstreetmap.org", gc.URL)
	assert.Equal(t, "en", gc.Language)
	assert.Equal(t, 2*time.Second, gc.Timeout)
	assert.Equal(t, 256, gc.CacheSize)
}

func TestGetStoreConfig(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{"geocoder": {"store": {"type": "sqlite", "path": "/tmp/p.db"}}}`)))
	sc := GetStoreConfig()

	assert.Equal(t, "sqlite", sc.Type)
	assert.Equal(t, "/tmp/p.db", sc.Path)
	assert.Equal(t, "postgres", sc.Username)
}

func TestGetViewportConfig(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{"viewport": {"closeZoom": 14, "width": 800}}`)))
	vc := GetViewportConfig()

	assert.Equal(t, 14.0, vc.CloseZoom)
	assert.Equal(t, 0.01, vc.DegenerateThreshold)
	assert.Equal(t, 0.1, vc.PaddingRatio)
	assert.Equal(t, 800, vc.Width)
	assert.Equal(t, 768, vc.Height)
	assert.Equal(t, 256, vc.TileSize)
}

func TestGetOTelConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{}`)))

	cfg := GetOTelConfig()
	assert.Equal(t, false, cfg.Enabled)
	assert.Equal(t, "missionmap", cfg.ServiceName)
	assert.Equal(t, 5*time.Second, cfg.BatchTimeout)
	assert.Equal(t, "", cfg.Endpoint)
	assert.Equal(t, true, cfg.Insecure)
}

func TestGetOTelConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{
		"otel": {
			"enabled": true,
			"serviceName": "my-service",
			"batchTimeout": "30s",
			"endpoint": "localhost:4318",
			"insecure": false
		}
	}`)))

	oc := GetOTelConfig()
	assert.Equal(t, true, oc.Enabled)
	assert.Equal(t, "my-service", oc.ServiceName)
	assert.Equal(t, 30*time.Second, oc.BatchTimeout)
	assert.Equal(t, "localhost:4318", oc.Endpoint)
	assert.Equal(t, false, oc.Insecure)
}

func TestGetInfluxAndServerAndExport(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{
		"influx": {"enabled": true, "token": "t"},
		"server": {"enabled": true, "address": "127.0.0.1:9000"},
		"export": {"outputDir": "/tmp/out", "compressOutput": false}
	}`)))

	ic := GetInfluxConfig()
	assert.True(t, ic.Enabled)
	assert.Equal(t, "t", ic.Token)
	assert.Equal(t, "missionmap", ic.Org)

	sc := GetServerConfig()
	assert.True(t, sc.Enabled)
	assert.Equal(t, "127.0.0.1:9000", sc.Address)

	ec := GetExportConfig()
	assert.Equal(t, "/tmp/out", ec.OutputDir)
	assert.False(t, ec.CompressOutput)
}

func TestLoad_MissingFileIsNotFoundError(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load(t.TempDir())
	var notFound viper.ConfigFileNotFoundError
	assert.ErrorAs(t, err, &notFound)
	// defaults are still in place
	assert.Equal(t, "info", viper.GetString("logLevel"))
}

func TestGetMonitorConfig(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{"monitor": {"statusFile": "/tmp/status.json"}}`)))

	cfg := GetMonitorConfig()
	assert.Equal(t, "/tmp/status.json", cfg.StatusFile)
	assert.Equal(t, time.Second, cfg.Interval)
}
