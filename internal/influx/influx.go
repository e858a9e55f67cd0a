// Package influx records ingestion stats as InfluxDB points, falling back to
// a gzip line-protocol file when the server is unreachable.
package influx

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/influxdata/influxdb-client-go/v2/domain"
	"github.com/rs/zerolog"

	"github.com/skytrace/missionmap/internal/assembler"
	"github.com/skytrace/missionmap/internal/config"
)

// MeasurementIngest is the measurement name of ingestion points.
const MeasurementIngest = "mission_ingest"

// ErrDisabled is returned by Connect when influx.enabled is false.
var ErrDisabled = errors.New("influx disabled")

// Manager handles the InfluxDB connection and writes. It implements
// assembler.Recorder.
type Manager struct {
	Client  influxdb2.Client
	Writer  influxdb2_api.WriteAPI
	IsValid bool
	Logger  zerolog.Logger

	cfg        config.InfluxConfig
	backupPath string

	mu           sync.Mutex
	backupFile   *os.File
	BackupWriter *gzip.Writer
}

var _ assembler.Recorder = (*Manager)(nil)

// NewManager creates a new InfluxDB manager. backupPath receives points
// while the server is unreachable.
func NewManager(cfg config.InfluxConfig, log zerolog.Logger, backupPath string) *Manager {
	return &Manager{
		Logger:     log,
		cfg:        cfg,
		backupPath: backupPath,
	}
}

// Connect establishes a connection to InfluxDB. When the server does not
// answer a ping the manager switches to the backup writer and returns nil.
func (m *Manager) Connect(ctx context.Context) error {
	if !m.cfg.Enabled {
		return ErrDisabled
	}

	m.Client = influxdb2.NewClientWithOptions(
		fmt.Sprintf("%s://%s:%s", m.cfg.Protocol, m.cfg.Host, m.cfg.Port),
		m.cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(500).
			SetFlushInterval(1000),
	)

	// validate client connection health
	running, err := m.Client.Ping(ctx)
	if err != nil || !running {
		m.IsValid = false
		m.Logger.Warn().Err(err).Str("backupPath", m.backupPath).
			Msg("InfluxDB unreachable, writing to backup file")
		return m.openBackup()
	}

	if err := m.setupOrganizationAndBucket(ctx); err != nil {
		return err
	}
	m.createWriter()
	m.IsValid = true
	m.Logger.Info().Str("bucket", m.cfg.Bucket).Msg("InfluxDB client initialized")
	return nil
}

func (m *Manager) openBackup() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.BackupWriter != nil {
		return nil
	}
	file, err := os.OpenFile(m.backupPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("error creating backup file: %w", err)
	}
	m.backupFile = file
	m.BackupWriter = gzip.NewWriter(file)
	return nil
}

func (m *Manager) setupOrganizationAndBucket(ctx context.Context) error {
	orgs := m.Client.OrganizationsAPI()

	org, err := orgs.FindOrganizationByName(ctx, m.cfg.Org)
	if err != nil {
		m.Logger.Info().Str("org", m.cfg.Org).Msg("Organization not found, creating")
		org, err = orgs.CreateOrganizationWithName(ctx, m.cfg.Org)
		if err != nil {
			m.Logger.Error().Err(err).Str("org", m.cfg.Org).Msg("Error creating organization")
			return err
		}
	}

	if _, err := m.Client.BucketsAPI().FindBucketByName(ctx, m.cfg.Bucket); err == nil {
		return nil
	}
	m.Logger.Info().Str("bucket", m.cfg.Bucket).Msg("Bucket not found, creating")

	rule := domain.RetentionRuleTypeExpire
	_, err = m.Client.BucketsAPI().CreateBucketWithName(ctx, org, m.cfg.Bucket, domain.RetentionRule{
		Type:         &rule,
		EverySeconds: 60 * 60 * 24 * 90, // 90 days
	})
	if err != nil {
		m.Logger.Error().Err(err).Str("bucket", m.cfg.Bucket).Msg("Error creating bucket")
		return err
	}
	return nil
}

func (m *Manager) createWriter() {
	m.Writer = m.Client.WriteAPI(m.cfg.Org, m.cfg.Bucket)

	go func(errorsCh <-chan error) {
		for writeErr := range errorsCh {
			m.Logger.Error().Err(writeErr).Str("bucket", m.cfg.Bucket).
				Msg("Error sending data to InfluxDB")
		}
	}(m.Writer.Errors())
}

// IngestPoint converts stats to a point of MeasurementIngest.
func IngestPoint(stats assembler.IngestStats) *influxdb2_write.Point {
	ts := stats.CompletedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	return influxdb2.NewPoint(
		MeasurementIngest,
		map[string]string{"outcome": string(stats.Outcome)},
		map[string]any{
			"mission":       stats.MissionID,
			"samples":       stats.Samples,
			"issues":        int(stats.Issues),
			"enrichment_ms": stats.Enrichment.Milliseconds(),
		},
		ts,
	)
}

// RecordIngest writes one ingestion point. Errors are logged.
func (m *Manager) RecordIngest(stats assembler.IngestStats) {
	if err := m.WritePoint(IngestPoint(stats)); err != nil {
		m.Logger.Error().Err(err).Str("mission", stats.MissionID).Msg("Failed to record ingest")
	}
}

// WritePoint writes a point to InfluxDB or the backup file.
func (m *Manager) WritePoint(point *influxdb2_write.Point) error {
	if m.IsValid {
		m.Writer.WritePoint(point)
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.BackupWriter == nil {
		return errors.New("influxDB client not initialized and backup writer not available")
	}

	lineProtocol := influxdb2_write.PointToLineProtocol(point, time.Nanosecond)
	if _, err := m.BackupWriter.Write([]byte(lineProtocol + "\n")); err != nil {
		return fmt.Errorf("error writing to InfluxDB backup file: %w", err)
	}
	return nil
}

// Close flushes pending writes and releases the client and backup file.
func (m *Manager) Close() error {
	if m.Writer != nil {
		m.Writer.Flush()
		m.Writer = nil
	}
	if m.Client != nil {
		m.Client.Close()
		m.Client = nil
	}
	m.IsValid = false

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.BackupWriter == nil {
		return nil
	}
	err := errors.Join(m.BackupWriter.Close(), m.backupFile.Close())
	m.BackupWriter, m.backupFile = nil, nil
	return err
}
