// Command terrain generates and inspects terrain snapshot files.
//
//	terrain generate -out world.terrain.zst -seed 42 -radius 4
//	terrain inspect -in world.terrain.zst
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"voxelcraft.ai/pathsim/internal/logging"
	"voxelcraft.ai/pathsim/internal/persistence/snapshot"
	"voxelcraft.ai/pathsim/internal/sim/catalogs"
	"voxelcraft.ai/pathsim/internal/sim/world/logic/mathx"
	"voxelcraft.ai/pathsim/internal/sim/world/terrain/store"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	var err error
	switch os.Args[1] {
	case "generate":
		err = generate(os.Args[2:])
	case "inspect":
		err = inspect(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "terrain:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: terrain generate|inspect [flags]")
}

func generate(args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	var (
		out       = fs.String("out", "world.terrain.zst", "output path")
		name      = fs.String("name", "", "terrain name (default: derived from seed)")
		configDir = fs.String("configs", "", "catalog directory (default: embedded catalogs)")
		seed      = fs.Int64("seed", 1337, "generator seed")
		radius    = fs.Int("radius", 2, "chunks generated in each direction from the origin")
		minY      = fs.Int("min_y", 0, "lowest block y")
		height    = fs.Int("height", 128, "number of block layers")
		surfaceY  = fs.Int("surface_y", 64, "top block y of flat ground")
		flat      = fs.Bool("flat", false, "single stone layer at surface_y, no hills, trees or ores")
		hills     = fs.Int("hills", 300, "hill density per mille")
		trees     = fs.Int("trees", 40, "tree density per mille in forests")
		ores      = fs.Int("ores", 20, "ore density per mille below the surface")
		logLevel  = fs.String("log_level", "info", "debug|info|warn|error")
	)
	_ = fs.Parse(args)

	logger, err := newLogger(*logLevel)
	if err != nil {
		return err
	}
	cats, err := catalogs.LoadDir(*configDir)
	if err != nil {
		return fmt.Errorf("load catalogs: %w", err)
	}
	if *name == "" {
		*name = fmt.Sprintf("seed-%d", *seed)
	}

	var s *store.ChunkStore
	if *flat {
		s = store.NewChunkStore(*minY, *height)
		lo, hi := -*radius*store.ChunkSize, (*radius+1)*store.ChunkSize-1
		err = s.Fill(mathx.BlockPos{X: lo, Y: *surfaceY, Z: lo}, mathx.BlockPos{X: hi, Y: *surfaceY, Z: hi}, cats.Blocks.MustID("STONE"))
	} else {
		b := cats.Blocks.MustID
		s, err = store.Generate(store.WorldGen{
			Seed:         *seed,
			MinY:         *minY,
			Height:       *height,
			SurfaceY:     *surfaceY,
			HillPermille: *hills,
			TreePermille: *trees,
			OrePermille:  *ores,
			Air:          catalogs.AirID,
			Bedrock:      b("BEDROCK"),
			Stone:        b("STONE"),
			Dirt:         b("DIRT"),
			Grass:        b("GRASS"),
			Sand:         b("SAND"),
			Log:          b("LOG"),
			CoalOre:      b("COAL_ORE"),
			IronOre:      b("IRON_ORE"),
		}, *radius)
	}
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}
	s.Freeze()

	hdr, err := store.SaveTerrain(*out, s, cats.Blocks.Palette, *name, *seed)
	if err != nil {
		return fmt.Errorf("write %s: %w", *out, err)
	}
	logger.Info("terrain written", "path", *out, "name", hdr.Name, "chunks", hdr.Chunks, "digest", hdr.Digest)
	return nil
}

func inspect(args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	var (
		in        = fs.String("in", "", "terrain file")
		configDir = fs.String("configs", "", "catalog directory (default: embedded catalogs)")
		blocks    = fs.Bool("blocks", false, "also count blocks by kind")
	)
	_ = fs.Parse(args)
	if *in == "" {
		return fmt.Errorf("missing -in")
	}

	if !*blocks {
		hdr, err := snapshot.ReadHeader(*in)
		if err != nil {
			return err
		}
		printHeader(hdr)
		return nil
	}

	cats, err := catalogs.LoadDir(*configDir)
	if err != nil {
		return fmt.Errorf("load catalogs: %w", err)
	}
	s, hdr, err := store.LoadTerrain(*in, cats.Blocks.Index)
	if err != nil {
		return err
	}
	printHeader(hdr)

	counts := map[uint16]int{}
	for _, k := range s.LoadedChunkKeys() {
		for _, b := range s.Chunks[k].Blocks {
			counts[b]++
		}
	}
	ids := make([]int, 0, len(counts))
	for id := range counts {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)
	for _, id := range ids {
		fmt.Printf("  %-12s %d\n", cats.Blocks.Block(uint16(id)).ID, counts[uint16(id)])
	}
	return nil
}

func printHeader(h snapshot.Header) {
	fmt.Printf("terrain v%d name=%s seed=%d y=[%d,%d) chunks=%d digest=%s\n",
		h.Version, h.Name, h.Seed, h.MinY, h.MinY+h.Height, h.Chunks, h.Digest)
}

func newLogger(level string) (logging.Logger, error) {
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return logging.New(lvl, "text", os.Stderr), nil
}
