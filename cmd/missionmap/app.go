package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/skytrace/missionmap/internal/assembler"
	"github.com/skytrace/missionmap/internal/config"
	"github.com/skytrace/missionmap/internal/database"
	"github.com/skytrace/missionmap/internal/decoder"
	"github.com/skytrace/missionmap/internal/geocode"
	"github.com/skytrace/missionmap/internal/influx"
	"github.com/skytrace/missionmap/internal/jobs"
	"github.com/skytrace/missionmap/internal/logging"
	"github.com/skytrace/missionmap/internal/monitor"
	intOtel "github.com/skytrace/missionmap/internal/otel"
	"github.com/skytrace/missionmap/internal/registry"
	"github.com/skytrace/missionmap/internal/viewport"
)

const appName = "missionmap"

// app holds the wired pipeline.
type app struct {
	logger    *slog.Logger
	zlog      zerolog.Logger
	logs      *logging.SlogManager
	otel      *intOtel.Provider
	closers   []io.Closer
	registry  *registry.Registry
	fitter    *viewport.Fitter
	jobs      *jobs.Client
	monitor   *monitor.Service
	influx    *influx.Manager
	db        *database.Manager
	exportCfg config.ExportConfig
}

func newApp(sessionStart time.Time) (*app, error) {
	a := &app{exportCfg: config.GetExportConfig()}
	logsDir := viper.GetString("logsDir")
	level := viper.GetString("logLevel")

	logFile := logging.OpenLogFile(logging.LogFilePath(logsDir, appName, sessionStart))
	a.closers = append(a.closers, logFile)

	otelCfg := config.GetOTelConfig()
	var otelWriter io.Writer
	if otelCfg.Enabled {
		w := logging.OpenLogFile(logging.LogFilePath(logsDir, appName+".otel", sessionStart))
		a.closers = append(a.closers, w)
		otelWriter = w
	}
	provider, err := intOtel.New(intOtel.Config{
		Enabled:      otelCfg.Enabled,
		ServiceName:  otelCfg.ServiceName,
		BatchTimeout: otelCfg.BatchTimeout,
		LogWriter:    otelWriter,
		Endpoint:     otelCfg.Endpoint,
		Insecure:     otelCfg.Insecure,
	})
	if err != nil {
		a.close()
		return nil, err
	}
	a.otel = provider

	// the monitor exists only after the logger, so the context provider
	// reads it through a pointer
	var mon atomic.Pointer[monitor.Service]
	a.logs = logging.NewSlogManager()
	a.logs.Setup(logging.Options{
		Console:  os.Stdout,
		File:     logFile,
		Level:    level,
		Provider: provider.LoggerProvider(),
		Name:     appName,
		Context: func() []slog.Attr {
			if m := mon.Load(); m != nil {
				return m.LogAttrs()
			}
			return nil
		},
	})
	a.logger = a.logs.Logger()

	zlevel, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		zlevel = zerolog.InfoLevel
	}
	a.zlog = zerolog.New(zerolog.MultiLevelWriter(
		zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339},
		logFile,
	)).Level(zlevel).With().Timestamp().Logger()

	a.registry = registry.New()
	a.fitter = viewport.New(config.GetViewportConfig())

	cached := a.newGeocoder()
	var lookup geocode.Lookup
	if cached != nil {
		lookup = cached
	}

	var recorder assembler.Recorder
	if m := a.newInflux(logsDir, sessionStart); m != nil {
		a.influx = m
		recorder = m
	}

	geoCfg := config.GetGeocoderConfig()
	asm, err := assembler.New(assembler.Dependencies{
		Registry: a.registry,
		Lookup:   lookup,
		Recorder: recorder,
		Logger:   a.logger.With("component", "assembler"),
		Timeout:  geoCfg.Timeout,
	})
	if err != nil {
		a.close()
		return nil, err
	}

	decCfg := config.GetDecoderConfig()
	spawner := decoder.Limit(&decoder.ExecSpawner{
		Command: decCfg.Command,
		Args:    decCfg.Args,
		Logger:  a.logger.With("component", "decoder"),
	}, decCfg.MaxConcurrent)

	a.jobs, err = jobs.NewClient(jobs.Dependencies{
		Registry:         a.registry,
		Spawner:          spawner,
		Assembler:        asm,
		Palette:          registry.NewPalette(),
		Logger:           a.logger.With("component", "jobs"),
		DispatcherLogger: logging.NewDispatcherLogger(a.zlog.With().Str("component", "dispatcher").Logger()),
	}, jobs.Config{
		PositionTypes: decCfg.PositionTypes,
		TerminalType:  decCfg.TerminalType,
	})
	if err != nil {
		a.close()
		return nil, err
	}

	monCfg := config.GetMonitorConfig()
	var labels monitor.CacheStats
	if cached != nil {
		labels = cached
	}
	a.monitor = monitor.NewService(monitor.Dependencies{
		Registry:   a.registry,
		Jobs:       a.jobs,
		Labels:     labels,
		Logger:     a.logger.With("component", "monitor"),
		StatusFile: monCfg.StatusFile,
		Interval:   monCfg.Interval,
	})
	mon.Store(a.monitor)

	return a, nil
}

// newGeocoder returns nil when enrichment is disabled. A store that cannot
// be opened is logged and skipped.
func (a *app) newGeocoder() *geocode.Cached {
	cfg := config.GetGeocoderConfig()
	if !cfg.Enabled {
		a.logger.Info("Reverse geocoding disabled, missions get coordinate labels")
		return nil
	}
	nominatim := geocode.NewNominatim(cfg.URL, cfg.Language, cfg.UserAgent, cfg.Timeout)

	var store *geocode.Store
	storeCfg := config.GetStoreConfig()
	if storeCfg.Type != database.TypeNone {
		db := database.NewManager(storeCfg, a.zlog.With().Str("component", "database").Logger())
		if err := db.Connect(); err != nil {
			a.logger.Warn("Place label store unavailable", "error", err)
		} else if s, err := geocode.NewStore(db.DB); err != nil {
			a.logger.Warn("Place label store migration failed", "error", err)
			_ = db.Close()
		} else {
			a.db = db
			store = s
		}
	}

	cached, err := geocode.NewCached(nominatim, cfg.CacheSize, store, a.logger.With("component", "geocode"))
	if err != nil {
		a.logger.Warn("Label cache unavailable, geocoding uncached", "error", err)
		return nil
	}
	return cached
}

// newInflux returns nil when influx is disabled or cannot be set up.
func (a *app) newInflux(logsDir string, sessionStart time.Time) *influx.Manager {
	backup := filepath.Join(logsDir, appName+"."+sessionStart.Format("20060102_150405")+".ingest.lp.gz")
	m := influx.NewManager(config.GetInfluxConfig(), a.zlog.With().Str("component", "influx").Logger(), backup)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := m.Connect(ctx); err != nil {
		if !errors.Is(err, influx.ErrDisabled) {
			a.logger.Warn("Ingest metrics unavailable", "error", err)
		}
		return nil
	}
	return m
}

// close releases everything newApp opened. Safe on a partial app.
func (a *app) close() {
	if a.jobs != nil {
		a.jobs.Wait()
	}
	if a.influx != nil {
		if err := a.influx.Close(); err != nil && a.logger != nil {
			a.logger.Warn("Error closing influx", "error", err)
		}
	}
	if a.db != nil {
		_ = a.db.Close()
	}
	if a.otel != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if a.logs != nil {
			_ = a.logs.Flush(ctx)
		}
		_ = a.otel.Shutdown(ctx)
		cancel()
	}
	for _, c := range a.closers {
		_ = c.Close()
	}
}
