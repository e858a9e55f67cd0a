// Command missionmap ingests flight logs through an external decoder, labels
// every mission with its place name and optionally serves the map API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/skytrace/missionmap/internal/api"
	"github.com/skytrace/missionmap/internal/config"
	"github.com/skytrace/missionmap/internal/decoder"
	"github.com/skytrace/missionmap/internal/export"
	"github.com/skytrace/missionmap/internal/mission"
	"github.com/skytrace/missionmap/internal/monitor"
	"github.com/skytrace/missionmap/pkg/core"
)

// BuildDate can be set at build time via ldflags
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
)

const shutdownTimeout = 5 * time.Second

var errUsage = errors.New("no files to ingest and nothing to serve")

type options struct {
	configDir string
	serve     bool
	export    bool
	files     []string
}

func main() {
	var opts options
	flag.StringVar(&opts.configDir, "config", ".", "directory holding "+config.FileName)
	flag.BoolVar(&opts.serve, "serve", false, "serve the map API until interrupted")
	flag.BoolVar(&opts.export, "export", false, "write a snapshot of the ready missions after ingestion")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-config dir] [-serve] [-export] file...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	opts.files = flag.Args()

	if err := run(opts); err != nil {
		if errors.Is(err, errUsage) {
			flag.Usage()
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "missionmap:", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	configErr := config.Load(opts.configDir)
	var notFound viper.ConfigFileNotFoundError
	if configErr != nil && !errors.As(configErr, &notFound) {
		return configErr
	}
	opts.serve = opts.serve || config.GetServerConfig().Enabled
	if len(opts.files) == 0 && !opts.serve {
		return errUsage
	}

	app, err := newApp(time.Now())
	if err != nil {
		return err
	}
	defer app.close()

	logger := app.logger
	logger.Info("missionmap starting", "version", Version, "buildDate", BuildDate)
	if configErr != nil {
		logger.Warn("No config file found, using defaults", "dir", opts.configDir)
	}

	signalCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(signalCtx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return app.monitor.Run(gctx) })

	if opts.serve {
		if err := app.serve(gctx, g); err != nil {
			return err
		}
	}

	g.Go(func() error {
		app.ingest(gctx, opts.files)
		if opts.export {
			app.exportSnapshot()
		}
		if !opts.serve {
			cancel()
		}
		return nil
	})

	err = g.Wait()

	if opts.serve && app.exportCfg.OutputDir != "" && !opts.export {
		app.exportSnapshot()
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// serve starts the websocket hub and the HTTP server on g.
func (a *app) serve(ctx context.Context, g *errgroup.Group) error {
	srvCfg := config.GetServerConfig()
	session := mission.NewSession(a.registry)
	hub := api.NewHub(a.registry, a.fitter, a.logger)

	srv, err := api.NewServer(api.Dependencies{
		Registry: a.registry,
		Session:  session,
		Fitter:   a.fitter,
		Hub:      hub,
		Status:   a.monitor,
		Logger:   a.logger,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              srvCfg.Address,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error { return hub.Run(ctx) })
	g.Go(func() error {
		a.logger.Info("Starting HTTP server", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("Shutting down HTTP server")
		return httpServer.Shutdown(shutdownCtx)
	})
	return nil
}

// ingest submits every file and blocks until each mission has settled.
func (a *app) ingest(ctx context.Context, files []string) {
	if len(files) == 0 {
		return
	}

	sources := make([]decoder.Source, 0, len(files))
	for _, f := range files {
		sources = append(sources, decoder.Source{Name: filepath.Base(f), Path: f})
	}

	start := time.Now()
	if _, err := a.jobs.SubmitAll(ctx, sources); err != nil {
		a.logger.Warn("Some decoder jobs failed to start", "error", err)
	}
	a.jobs.Wait()

	st := a.monitor.Status()
	a.logger.Info("Ingestion finished",
		"files", len(files),
		"ready", st.Ready,
		"failed", st.Failed,
		"duration", time.Since(start).Round(time.Millisecond))

	for _, m := range a.registry.List() {
		logMission(a.logger, m)
	}
}

func logMission(logger *slog.Logger, m core.Mission) {
	switch m.State {
	case core.StateReady:
		logger.Info("Mission ready", "mission", m.ID, "file", m.FileName, "label", m.Label, "samples", m.Track.Len())
	case core.StateFailed:
		logger.Warn("Mission failed", "mission", m.ID, "file", m.FileName, "reason", m.FailureReason)
	default:
		logger.Debug("Mission still loading", "mission", m.ID, "file", m.FileName)
	}
}

func (a *app) exportSnapshot() {
	snapshot := export.Build(a.registry.List(), a.fitter, time.Now())
	path, err := export.Write(a.exportCfg, snapshot)
	if err != nil {
		a.logger.Error("Failed to export session", "error", err)
		return
	}
	a.logger.Info("Session exported", "path", path, "missions", len(snapshot.Missions))
}

var _ api.StatusReporter = (*monitor.Service)(nil)
