// Command simulate plays a scenario against a terrain snapshot and reports
// where the agent ended up.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"voxelcraft.ai/pathsim/internal/logging"
	"voxelcraft.ai/pathsim/internal/persistence/indexdb"
	persistlog "voxelcraft.ai/pathsim/internal/persistence/log"
	"voxelcraft.ai/pathsim/internal/scenario"
	"voxelcraft.ai/pathsim/internal/sim/simulation"
)

func main() {
	var (
		scenarioPath = flag.String("scenario", "", "scenario json file")
		terrainPath  = flag.String("terrain", "", "terrain file (default: flat stone floor)")
		configDir    = flag.String("configs", "", "catalog directory (default: embedded catalogs)")
		tuningPath   = flag.String("tuning", "", "tuning.yaml (default: built-in tuning)")
		traceDir     = flag.String("trace_dir", "", "write trace-<run>.jsonl.zst here (optional)")
		dbPath       = flag.String("db", "", "sqlite run index (optional)")
		runIDFlag    = flag.String("run_id", "", "run id (default: random)")
		printTrace   = flag.Bool("print", false, "print every trace entry as json")
		logLevel     = flag.String("log_level", "info", "debug|info|warn|error")
		logFormat    = flag.String("log_format", "text", "text|json")
	)
	flag.Parse()

	if *scenarioPath == "" {
		fmt.Fprintln(os.Stderr, "missing -scenario")
		os.Exit(2)
	}
	lvl, err := logging.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := logging.New(lvl, *logFormat, os.Stderr)

	runID := uuid.New()
	if s := strings.TrimSpace(*runIDFlag); s != "" {
		if runID, err = uuid.Parse(s); err != nil {
			fmt.Fprintln(os.Stderr, "bad -run_id:", err)
			os.Exit(2)
		}
	}

	in, err := scenario.LoadInputs(*scenarioPath, *terrainPath, *configDir, *tuningPath)
	if err != nil {
		logger.Error("load inputs", "error", err)
		os.Exit(1)
	}

	opts := []simulation.Option{
		simulation.WithRunID(runID),
		simulation.WithLogger(logger),
		simulation.WithTuning(in.Tuning),
		simulation.WithCatalogs(in.Catalogs),
	}

	var trace *persistlog.TraceLogger
	if *traceDir != "" {
		trace = persistlog.NewTraceLogger(*traceDir, runID.String())
		opts = append(opts, simulation.WithTraceSink(trace))
	}
	var idx *indexdb.SQLiteIndex
	if *dbPath != "" {
		if idx, err = indexdb.OpenSQLite(*dbPath); err != nil {
			logger.Error("open index", "path", *dbPath, "error", err)
			os.Exit(1)
		}
		opts = append(opts, simulation.WithTraceSink(idx))
	}
	if *printTrace {
		opts = append(opts, simulation.WithTraceSink(jsonSink{enc: json.NewEncoder(os.Stdout)}))
	}

	sc := in.Scenario
	res, runErr := run(in, opts)
	if runErr == nil {
		runErr = sc.Check(res)
	}

	if trace != nil {
		if err := trace.Close(); err != nil {
			logger.Warn("close trace", "error", err)
		} else {
			logger.Info("trace written", "path", trace.Path())
		}
	}
	indexFailed := false
	if idx != nil {
		row := indexdb.RunRow{
			RunID:         runID.String(),
			Scenario:      sc.Name,
			TerrainDigest: in.TerrainDigest,
			Seed:          in.Seed,
			Ticks:         res.Ticks,
			Final:         res.Final,
			RecordedAt:    time.Now().UTC().Format(time.RFC3339),
		}
		if runErr != nil {
			row.Failure = runErr.Error()
		}
		idx.RecordRun(row)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := idx.Flush(ctx); err != nil {
			logger.Error("flush index", "error", err)
			indexFailed = true
		}
		cancel()
		if st := idx.Stats(); st.DropTraceTotal > 0 || st.DropRunTotal > 0 {
			logger.Error("index dropped rows", "trace", st.DropTraceTotal, "runs", st.DropRunTotal)
			indexFailed = true
		}
		if err := idx.Close(); err != nil {
			logger.Warn("close index", "error", err)
		}
	}

	fmt.Printf("run=%s scenario=%s terrain=%s ticks=%d final=%s on_ground=%v\n",
		runID, sc.Name, filepath.Base(in.TerrainName), res.Ticks, res.Final, res.OnGround)
	if runErr != nil {
		logger.Error("run failed", "error", runErr)
		if errors.Is(runErr, scenario.ErrExpectation) {
			os.Exit(3)
		}
		os.Exit(1)
	}
	if indexFailed {
		os.Exit(1)
	}
}

func run(in *scenario.Inputs, opts []simulation.Option) (scenario.Result, error) {
	sc := in.Scenario
	env, err := simulation.New(in.Terrain, sc.Template(in.Catalogs.Items.MaxStack), opts...)
	if err != nil {
		return scenario.Result{}, err
	}
	defer env.Close()
	return scenario.Play(env, sc)
}

type jsonSink struct{ enc *json.Encoder }

func (s jsonSink) WriteTrace(e simulation.TraceEntry) error { return s.enc.Encode(e) }
