// Command replay re-runs a recorded scenario and verifies that every tick of
// the recorded trace is reproduced exactly.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"

	persistlog "voxelcraft.ai/pathsim/internal/persistence/log"
	"voxelcraft.ai/pathsim/internal/scenario"
	"voxelcraft.ai/pathsim/internal/sim/simulation"
)

func main() {
	var (
		tracePath    = flag.String("trace", "", "path to trace-*.jsonl.zst")
		scenarioPath = flag.String("scenario", "", "scenario the trace was recorded from")
		terrainPath  = flag.String("terrain", "", "terrain file (default: flat stone floor)")
		configDir    = flag.String("configs", "", "catalog directory (default: embedded catalogs)")
		tuningPath   = flag.String("tuning", "", "tuning.yaml (default: built-in tuning)")
		fromTick     = flag.Uint64("from_tick", 0, "start verifying from tick (inclusive, optional)")
		toTick       = flag.Uint64("to_tick", 0, "stop at tick (inclusive, optional)")
	)
	flag.Parse()

	if *tracePath == "" || *scenarioPath == "" {
		fmt.Fprintln(os.Stderr, "missing -trace or -scenario")
		os.Exit(2)
	}

	want, err := persistlog.ReadTrace(*tracePath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read trace:", err)
		os.Exit(1)
	}
	if len(want) == 0 {
		fmt.Fprintln(os.Stderr, "empty trace:", *tracePath)
		os.Exit(1)
	}
	runID, err := uuid.Parse(want[0].RunID)
	if err != nil {
		fmt.Fprintln(os.Stderr, "trace run id:", err)
		os.Exit(1)
	}

	in, err := scenario.LoadInputs(*scenarioPath, *terrainPath, *configDir, *tuningPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load inputs:", err)
		os.Exit(1)
	}

	var got simulation.TraceRecorder
	env, err := simulation.New(in.Terrain, in.Scenario.Template(in.Catalogs.Items.MaxStack),
		simulation.WithRunID(runID),
		simulation.WithTuning(in.Tuning),
		simulation.WithCatalogs(in.Catalogs),
		simulation.WithTraceSink(&got))
	if err != nil {
		fmt.Fprintln(os.Stderr, "simulation:", err)
		os.Exit(1)
	}
	defer env.Close()
	if _, err := scenario.Play(env, in.Scenario); err != nil {
		fmt.Fprintln(os.Stderr, "replay:", err)
		os.Exit(1)
	}

	checked, err := compare(want, got.Entries, *fromTick, *toTick)
	if err != nil {
		fmt.Fprintln(os.Stderr, "replay:", err)
		os.Exit(1)
	}
	fmt.Printf("replay ok: run=%s checked=%d ticks\n", runID, checked)
}

// compare checks recorded entries in [from, to] against the re-run. A zero
// to means the end of the recording.
func compare(want, got []simulation.TraceEntry, from, to uint64) (int, error) {
	byTick := make(map[uint64]simulation.TraceEntry, len(got))
	for _, e := range got {
		byTick[e.Tick] = e
	}
	checked := 0
	for _, w := range want {
		if w.Tick < from {
			continue
		}
		if to != 0 && w.Tick > to {
			break
		}
		g, ok := byTick[w.Tick]
		if !ok {
			return checked, fmt.Errorf("tick %d: not reached by the re-run (%d ticks)", w.Tick, len(got))
		}
		if g != w {
			return checked, fmt.Errorf("tick %d: mismatch\n  recorded pos=%v vel=%v on_ground=%v\n  replayed pos=%v vel=%v on_ground=%v",
				w.Tick, w.Pos, w.Vel, w.OnGround, g.Pos, g.Vel, g.OnGround)
		}
		checked++
	}
	return checked, nil
}
