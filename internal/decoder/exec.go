package decoder

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/skytrace/missionmap/internal/channel"
	"github.com/skytrace/missionmap/pkg/streaming"
)

// ErrNoCommand is returned when no decoder command is configured.
var ErrNoCommand = errors.New("no decoder command configured")

// maxLineSize caps a single envelope line; position batches of long flights
// are large.
const maxLineSize = 64 << 20

// ExecSpawner runs an external decoder per file. The file path is appended
// to Args and the process writes one JSON envelope per stdout line.
type ExecSpawner struct {
	Command string
	Args    []string
	Logger  *slog.Logger
	// MaxLineSize overrides the per-line cap; zero uses the default.
	MaxLineSize int
}

// Spawn implements Spawner.
func (e *ExecSpawner) Spawn(ctx context.Context, src Source) (channel.Receiver[streaming.Envelope], error) {
	if e.Command == "" {
		return nil, ErrNoCommand
	}
	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}

	args := append(append([]string{}, e.Args...), src.Path)
	cmd := exec.CommandContext(ctx, e.Command, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", e.Command, err)
	}

	limit := e.MaxLineSize
	if limit <= 0 {
		limit = maxLineSize
	}

	ch := channel.NewUnbounded[streaming.Envelope]()
	go func() {
		defer ch.Close()

		scanner := bufio.NewScanner(stdout)
		scanner.Buffer(make([]byte, 0, min(64*1024, limit)), limit)
		line := 0
		for scanner.Scan() {
			line++
			raw := scanner.Bytes()
			if len(raw) == 0 {
				continue
			}
			var env streaming.Envelope
			if err := json.Unmarshal(raw, &env); err != nil {
				logger.Warn("skipping malformed decoder line", "file", src.Name, "line", line, "error", err)
				continue
			}
			ch.Send(env)
		}
		if err := scanner.Err(); err != nil {
			logger.Error("reading decoder output", "file", src.Name, "error", err)
			// nobody reads stdout any more, so the child would block on a
			// full pipe and Wait would never return
			if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
				logger.Warn("killing decoder", "file", src.Name, "error", err)
			}
		}

		if err := cmd.Wait(); err != nil {
			logger.Warn("decoder exited with error", "file", src.Name, "error", err)
		} else {
			logger.Debug("decoder exited", "file", src.Name, "lines", line)
		}
	}()
	return ch, nil
}
