package log

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"voxelcraft.ai/pathsim/internal/sim/simulation"
)

// TraceFileName is the per-run trace file inside a trace directory.
func TraceFileName(runID string) string {
	return fmt.Sprintf("trace-%s.jsonl.zst", runID)
}

// TraceLogger writes one compressed JSONL entry per simulated tick.
type TraceLogger struct{ w *JSONLZstdWriter }

func NewTraceLogger(dir, runID string) *TraceLogger {
	return &TraceLogger{w: NewJSONLZstdWriter(filepath.Join(dir, TraceFileName(runID)))}
}

func (l *TraceLogger) WriteTrace(e simulation.TraceEntry) error { return l.w.Write(e) }
func (l *TraceLogger) Path() string                             { return l.w.Path() }
func (l *TraceLogger) Close() error                             { return l.w.Close() }

// ReadTrace loads a trace file written by TraceLogger.
func ReadTrace(path string) ([]simulation.TraceEntry, error) {
	var out []simulation.TraceEntry
	err := ReadJSONL(path, func(line []byte) error {
		var e simulation.TraceEntry
		if err := json.Unmarshal(line, &e); err != nil {
			return err
		}
		out = append(out, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
