package influx

import (
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skytrace/missionmap/internal/assembler"
	"github.com/skytrace/missionmap/internal/config"
)

func unreachable() config.InfluxConfig {
	return config.InfluxConfig{
		Enabled:  true,
		Host:     "127.0.0.1",
		Port:     "1",
		Protocol: "http",
		Org:      "missionmap",
		Bucket:   "ingest",
	}
}

func readBackup(t *testing.T, path string) string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	data, err := io.ReadAll(gz)
	require.NoError(t, err)
	return string(data)
}

func TestConnect_Disabled(t *testing.T) {
	m := NewManager(config.InfluxConfig{}, zerolog.Nop(), filepath.Join(t.TempDir(), "b.gz"))
	assert.ErrorIs(t, m.Connect(context.Background()), ErrDisabled)
	assert.False(t, m.IsValid)
}

func TestConnect_FallsBackToBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.lp.gz")
	m := NewManager(unreachable(), zerolog.Nop(), path)

	require.NoError(t, m.Connect(context.Background()))
	assert.False(t, m.IsValid)
	assert.NotNil(t, m.BackupWriter)

	m.RecordIngest(assembler.IngestStats{
		MissionID:   "m1",
		Samples:     42,
		Outcome:     assembler.OutcomeReady,
		Enrichment:  1500 * time.Millisecond,
		CompletedAt: time.Unix(1700000000, 0),
	})
	require.NoError(t, m.Close())

	out := readBackup(t, path)
	assert.Contains(t, out, "mission_ingest,outcome=ready")
	assert.Contains(t, out, "samples=42i")
	assert.Contains(t, out, "enrichment_ms=1500i")
	assert.Contains(t, out, `mission="m1"`)
	assert.Contains(t, out, "1700000000000000000")
}

func TestWritePoint_NoBackend(t *testing.T) {
	m := NewManager(unreachable(), zerolog.Nop(), "")
	assert.Error(t, m.WritePoint(IngestPoint(assembler.IngestStats{MissionID: "x"})))
}

func TestIngestPoint(t *testing.T) {
	p := IngestPoint(assembler.IngestStats{MissionID: "m2", Outcome: assembler.OutcomeFallback})

	assert.Equal(t, MeasurementIngest, p.Name())
	require.Len(t, p.TagList(), 1)
	assert.Equal(t, "fallback", p.TagList()[0].Value)
	assert.False(t, p.Time().IsZero())
}

func TestClose_Idempotent(t *testing.T) {
	m := NewManager(unreachable(), zerolog.Nop(), filepath.Join(t.TempDir(), "b.gz"))
	require.NoError(t, m.Connect(context.Background()))
	require.NoError(t, m.Close())
	assert.NoError(t, m.Close())
}
