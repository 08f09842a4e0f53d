package store

import (
	"encoding/hex"
	"fmt"

	snapv1 "voxelcraft.ai/pathsim/internal/persistence/snapshot"
	"voxelcraft.ai/pathsim/internal/sim/encoding"
)

// ExportTerrain converts the store into its snapshot form. palette maps the
// store's block ids to names.
func ExportTerrain(s *ChunkStore, palette []string, name string, seed int64) snapv1.TerrainV1 {
	keys := s.LoadedChunkKeys()
	out := snapv1.TerrainV1{
		Palette: append([]string(nil), palette...),
		Chunks:  make([]snapv1.ChunkV1, 0, len(keys)),
	}
	for _, k := range keys {
		out.Chunks = append(out.Chunks, snapv1.ChunkV1{
			CX:   k.CX,
			CZ:   k.CZ,
			Runs: encoding.EncodeRuns(s.Chunks[k].Blocks),
		})
	}
	d := s.Digest()
	out.Header = snapv1.Header{
		Version: snapv1.TerrainVersion,
		Name:    name,
		Seed:    seed,
		MinY:    s.MinY,
		Height:  s.Height,
		Chunks:  len(keys),
		Digest:  hex.EncodeToString(d[:]),
	}
	return out
}

// ImportTerrain rebuilds a frozen chunk store from a snapshot, remapping the
// file's palette onto index (block name -> current palette id).
func ImportTerrain(snap snapv1.TerrainV1, index map[string]uint16) (*ChunkStore, error) {
	if snap.Header.Height <= 0 {
		return nil, fmt.Errorf("terrain height must be positive, got %d", snap.Header.Height)
	}
	remap := make([]uint16, len(snap.Palette))
	for i, name := range snap.Palette {
		id, ok := index[name]
		if !ok {
			return nil, fmt.Errorf("terrain palette: unknown block %q", name)
		}
		remap[i] = id
	}

	s := NewChunkStore(snap.Header.MinY, snap.Header.Height)
	want := ChunkSize * ChunkSize * s.Height
	for _, ch := range snap.Chunks {
		k := ChunkKey{CX: ch.CX, CZ: ch.CZ}
		if _, dup := s.Chunks[k]; dup {
			return nil, fmt.Errorf("terrain chunk %d,%d: duplicate", ch.CX, ch.CZ)
		}
		blocks, err := encoding.DecodeRuns(ch.Runs, want)
		if err != nil {
			return nil, fmt.Errorf("terrain chunk %d,%d: %w", ch.CX, ch.CZ, err)
		}
		for i, b := range blocks {
			if int(b) >= len(remap) {
				return nil, fmt.Errorf("terrain chunk %d,%d: block id %d outside palette", ch.CX, ch.CZ, b)
			}
			blocks[i] = remap[b]
		}
		s.Chunks[k] = &Chunk{CX: ch.CX, CZ: ch.CZ, Blocks: blocks, dirty: true}
	}
	if len(s.Chunks) != snap.Header.Chunks {
		return nil, fmt.Errorf("terrain header lists %d chunks, body has %d", snap.Header.Chunks, len(s.Chunks))
	}
	s.Freeze()
	return s, nil
}

// SaveTerrain exports s and writes it to path.
func SaveTerrain(path string, s *ChunkStore, palette []string, name string, seed int64) (snapv1.Header, error) {
	snap := ExportTerrain(s, palette, name, seed)
	if err := snapv1.WriteTerrain(path, snap); err != nil {
		return snapv1.Header{}, err
	}
	return snap.Header, nil
}

// LoadTerrain reads a terrain file and imports it against index.
func LoadTerrain(path string, index map[string]uint16) (*ChunkStore, snapv1.Header, error) {
	snap, err := snapv1.ReadTerrain(path)
	if err != nil {
		return nil, snapv1.Header{}, err
	}
	s, err := ImportTerrain(snap, index)
	if err != nil {
		return nil, snapv1.Header{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, snap.Header, nil
}
