// Package decoder starts decoder jobs and exposes their output as ordered
// envelope streams.
package decoder

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"

	"github.com/skytrace/missionmap/internal/channel"
	"github.com/skytrace/missionmap/pkg/streaming"
)

// Source is one flight-log file to decode.
type Source struct {
	Name string
	Path string
}

// Spawner starts exactly one decoder job per call. The returned stream is
// closed when the job ends, whether or not it emitted a terminal event.
type Spawner interface {
	Spawn(ctx context.Context, src Source) (channel.Receiver[streaming.Envelope], error)
}

// FuncSpawner runs an in-process decoder. The function emits envelopes to
// out; the stream is closed when it returns.
type FuncSpawner func(ctx context.Context, src Source, out channel.Sender[streaming.Envelope]) error

// Spawn implements Spawner.
func (f FuncSpawner) Spawn(ctx context.Context, src Source) (channel.Receiver[streaming.Envelope], error) {
	ch := channel.NewUnbounded[streaming.Envelope]()
	go func() {
		defer ch.Close()
		_ = f(ctx, src, ch)
	}()
	return ch, nil
}

type limited struct {
	next Spawner
	sem  *semaphore.Weighted
}

// Limit bounds the number of jobs running at once. A job holds its slot
// until its stream is closed. n <= 0 returns s unchanged.
func Limit(s Spawner, n int64) Spawner {
	if n <= 0 {
		return s
	}
	return &limited{next: s, sem: semaphore.NewWeighted(n)}
}

func (l *limited) Spawn(ctx context.Context, src Source) (channel.Receiver[streaming.Envelope], error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("waiting for decoder slot: %w", err)
	}

	in, err := l.next.Spawn(ctx, src)
	if err != nil {
		l.sem.Release(1)
		return nil, err
	}

	out := channel.NewUnbounded[streaming.Envelope]()
	go func() {
		defer l.sem.Release(1)
		defer out.Close()
		for env := range in.Receive() {
			out.Send(env)
		}
	}()
	return out, nil
}
