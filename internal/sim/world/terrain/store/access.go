package store

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"sort"

	"voxelcraft.ai/pathsim/internal/sim/world/logic/mathx"
)

var (
	ErrFrozen    = errors.New("terrain store is frozen")
	ErrNotFrozen = errors.New("terrain store is not frozen")
)

// Freeze marks the store read-only and computes every chunk digest so that
// later reads never write to shared memory. Freezing twice is a no-op, and
// concurrent calls digest the chunks once.
func (s *ChunkStore) Freeze() {
	s.freezeMu.Lock()
	defer s.freezeMu.Unlock()
	if s.frozen.Load() {
		return
	}
	for _, k := range s.LoadedChunkKeys() {
		_ = s.Chunks[k].Digest()
	}
	s.frozen.Store(true)
}

func (s *ChunkStore) Frozen() bool { return s.frozen.Load() }

func (s *ChunkStore) InHeight(y int) bool {
	return y >= s.MinY && y < s.MinY+s.Height
}

func (s *ChunkStore) LoadedChunkKeys() []ChunkKey {
	keys := make([]ChunkKey, 0, len(s.Chunks))
	for k := range s.Chunks {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].CX != keys[j].CX {
			return keys[i].CX < keys[j].CX
		}
		return keys[i].CZ < keys[j].CZ
	})
	return keys
}

func KeyOf(x, z int) ChunkKey {
	return ChunkKey{CX: mathx.FloorDiv(x, ChunkSize), CZ: mathx.FloorDiv(z, ChunkSize)}
}

// ChunkLoaded reports whether the column containing p is part of the snapshot.
func (s *ChunkStore) ChunkLoaded(p mathx.BlockPos) bool {
	_, ok := s.Chunks[KeyOf(p.X, p.Z)]
	return ok
}

func (s *ChunkStore) index(p mathx.BlockPos) int {
	lx := mathx.Mod(p.X, ChunkSize)
	lz := mathx.Mod(p.Z, ChunkSize)
	return lx + lz*ChunkSize + (p.Y-s.MinY)*ChunkSize*ChunkSize
}

// GetBlock returns the palette id at p. Positions outside the height range or
// in absent chunks read as air (id 0).
func (s *ChunkStore) GetBlock(p mathx.BlockPos) uint16 {
	if !s.InHeight(p.Y) {
		return 0
	}
	ch, ok := s.Chunks[KeyOf(p.X, p.Z)]
	if !ok {
		return 0
	}
	return ch.Blocks[s.index(p)]
}

// SetBlock writes a block, creating the chunk column if needed.
func (s *ChunkStore) SetBlock(p mathx.BlockPos, b uint16) error {
	if s.frozen.Load() {
		return ErrFrozen
	}
	if !s.InHeight(p.Y) {
		return fmt.Errorf("y=%d outside [%d, %d)", p.Y, s.MinY, s.MinY+s.Height)
	}
	k := KeyOf(p.X, p.Z)
	ch, ok := s.Chunks[k]
	if !ok {
		ch = s.newChunk(k)
		s.Chunks[k] = ch
	}
	i := s.index(p)
	if ch.Blocks[i] == b {
		return nil
	}
	ch.Blocks[i] = b
	ch.dirty = true
	return nil
}

// EnsureChunk loads an all-air column so that it counts as loaded terrain.
func (s *ChunkStore) EnsureChunk(k ChunkKey) error {
	if s.frozen.Load() {
		return ErrFrozen
	}
	if _, ok := s.Chunks[k]; !ok {
		s.Chunks[k] = s.newChunk(k)
	}
	return nil
}

// Fill sets every block in the inclusive box [from, to].
func (s *ChunkStore) Fill(from, to mathx.BlockPos, b uint16) error {
	for y := min(from.Y, to.Y); y <= max(from.Y, to.Y); y++ {
		for z := min(from.Z, to.Z); z <= max(from.Z, to.Z); z++ {
			for x := min(from.X, to.X); x <= max(from.X, to.X); x++ {
				if err := s.SetBlock(mathx.BlockPos{X: x, Y: y, Z: z}, b); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Digest hashes the whole store in chunk key order.
func (s *ChunkStore) Digest() [32]byte {
	h := sha256.New()
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], uint64(int64(s.MinY)))
	h.Write(tmp[:])
	binary.LittleEndian.PutUint64(tmp[:], uint64(int64(s.Height)))
	h.Write(tmp[:])
	for _, k := range s.LoadedChunkKeys() {
		binary.LittleEndian.PutUint64(tmp[:], uint64(int64(k.CX)))
		h.Write(tmp[:])
		binary.LittleEndian.PutUint64(tmp[:], uint64(int64(k.CZ)))
		h.Write(tmp[:])
		d := s.Chunks[k].Digest()
		h.Write(d[:])
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
