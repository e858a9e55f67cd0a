// Package export writes a one-way JSON snapshot of the ready missions.
package export

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/skytrace/missionmap/internal/config"
	"github.com/skytrace/missionmap/internal/render"
	"github.com/skytrace/missionmap/internal/viewport"
	"github.com/skytrace/missionmap/pkg/core"
)

// Snapshot is the root JSON structure.
type Snapshot struct {
	ExportedAt time.Time      `json:"exportedAt"`
	Framing    core.Framing   `json:"framing"`
	Markers    []core.Marker  `json:"markers"`
	Missions   []MissionTrack `json:"missions"`
	Summary    render.Summary `json:"summary"`
}

// MissionTrack is the polyline of one ready mission.
type MissionTrack struct {
	ID       string               `json:"id"`
	FileName string               `json:"fileName"`
	Label    string               `json:"label"`
	Color    string               `json:"color"`
	Polyline []core.PolylinePoint `json:"polyline"`
}

// Build assembles a snapshot of missions. Only ready missions contribute
// markers, tracks and framing; the summary covers all of them.
func Build(missions []core.Mission, fitter *viewport.Fitter, now time.Time) Snapshot {
	s := Snapshot{
		ExportedAt: now.UTC(),
		Framing:    fitter.FitMissions(missions),
		Markers:    render.Markers(missions),
		Missions:   make([]MissionTrack, 0, len(missions)),
		Summary:    render.SummarizeAll(missions),
	}
	for _, m := range missions {
		if m.State != core.StateReady {
			continue
		}
		s.Missions = append(s.Missions, MissionTrack{
			ID:       m.ID,
			FileName: m.FileName,
			Label:    m.Label,
			Color:    m.Color,
			Polyline: render.Polyline(m.Track),
		})
	}
	return s
}

// Write stores the snapshot under cfg.OutputDir and returns the file path.
func Write(cfg config.ExportConfig, s Snapshot) (string, error) {
	name := "missionmap_" + s.ExportedAt.Format("20060102_150405") + ".json"
	if cfg.CompressOutput {
		name += ".gz"
	}
	outputPath := filepath.Join(cfg.OutputDir, name)

	if cfg.OutputDir != "" {
		if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
			return "", fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if cfg.CompressOutput {
		return outputPath, writeGzipJSON(outputPath, s)
	}
	return outputPath, writeJSON(outputPath, s)
}

func writeJSON(path string, data Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(data); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return f.Close()
}

func writeGzipJSON(path string, data Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gzWriter := gzip.NewWriter(f)
	if err := json.NewEncoder(gzWriter).Encode(data); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := gzWriter.Close(); err != nil {
		return fmt.Errorf("failed to finish gzip stream: %w", err)
	}
	return f.Close()
}
