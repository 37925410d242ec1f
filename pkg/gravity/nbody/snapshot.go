package nbody

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// SnapshotSink receives simulation state as a run progresses.
type SnapshotSink interface {
	OnStart(totalSteps int, snapEvery int) error
	OnSnapshot(t float64, bodies []Body) error
	OnEnd(finalT float64) error
	Close() error
}

// Snapshot is one emitted simulation state.
type Snapshot struct {
	Time   float64 `json:"time"`
	Bodies []Body  `json:"bodies"`
}

// JSONLSnapshotWriter streams snapshots to disk as JSON lines.
type JSONLSnapshotWriter struct {
	f  *os.File
	bw *bufio.Writer
}

func NewJSONLSnapshotWriter(path string) (*JSONLSnapshotWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create snapshot file: %w", err)
	}
	return &JSONLSnapshotWriter{f: f, bw: bufio.NewWriter(f)}, nil
}

func (w *JSONLSnapshotWriter) OnStart(totalSteps int, snapEvery int) error { return nil }

func (w *JSONLSnapshotWriter) OnSnapshot(t float64, bodies []Body) error {
	rec := Snapshot{Time: t, Bodies: bodies}
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if _, err := w.bw.Write(b); err != nil {
		return err
	}
	return w.bw.WriteByte('\n')
}

func (w *JSONLSnapshotWriter) OnEnd(finalT float64) error { return w.bw.Flush() }

func (w *JSONLSnapshotWriter) Close() error {
	if w.bw != nil {
		_ = w.bw.Flush()
	}
	if w.f != nil {
		return w.f.Close()
	}
	return nil
}

// ConsoleSummaryWriter prints a per-snapshot summary of every body's
// position and velocity.
type ConsoleSummaryWriter struct {
	Out io.Writer
}

func NewConsoleSummaryWriter(out io.Writer) *ConsoleSummaryWriter {
	return &ConsoleSummaryWriter{Out: out}
}

func (w *ConsoleSummaryWriter) OnStart(totalSteps int, snapEvery int) error {
	_, err := fmt.Fprintf(w.Out, "Running %d steps (snapshot every %d)\n", totalSteps, snapEvery)
	return err
}

func (w *ConsoleSummaryWriter) OnSnapshot(t float64, bodies []Body) error {
	if _, err := fmt.Fprintf(w.Out, "t=%.2fs\n", t); err != nil {
		return err
	}
	for i, b := range bodies {
		_, err := fmt.Fprintf(w.Out, "Body %d: Position (%.2f, %.2f), Velocity (%.2f, %.2f)\n",
			i, b.Position.X, b.Position.Y, b.Velocity.X, b.Velocity.Y)
		if err != nil {
			return err
		}
	}
	return nil
}

func (w *ConsoleSummaryWriter) OnEnd(finalT float64) error {
	_, err := fmt.Fprintf(w.Out, "Finished at t=%.2fs\n", finalT)
	return err
}

func (w *ConsoleSummaryWriter) Close() error { return nil }

// MultiSink fans snapshots out to several sinks.
type MultiSink []SnapshotSink

func (m MultiSink) OnStart(totalSteps int, snapEvery int) error {
	for _, s := range m {
		if err := s.OnStart(totalSteps, snapEvery); err != nil {
			return err
		}
	}
	return nil
}

func (m MultiSink) OnSnapshot(t float64, bodies []Body) error {
	for _, s := range m {
		if err := s.OnSnapshot(t, bodies); err != nil {
			return err
		}
	}
	return nil
}

func (m MultiSink) OnEnd(finalT float64) error {
	for _, s := range m {
		if err := s.OnEnd(finalT); err != nil {
			return err
		}
	}
	return nil
}

func (m MultiSink) Close() error {
	var firstErr error
	for _, s := range m {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
