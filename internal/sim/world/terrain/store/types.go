package store

import (
	"crypto/sha256"
	"encoding/binary"
	"sync"
	"sync/atomic"
)

// ChunkSize is the horizontal edge length of a chunk column.
const ChunkSize = 16

type ChunkKey struct {
	CX int
	CZ int
}

// Chunk is one 16x16 column covering the full store height.
type Chunk struct {
	CX, CZ int
	Blocks []uint16 // len = 16*16*height, index = x + z*16 + (y-minY)*256

	dirty bool
	hash  [32]byte
}

func (c *Chunk) Digest() [32]byte {
	if c.dirty || c.hash == ([32]byte{}) {
		h := sha256.New()
		var tmp [2]byte
		for _, v := range c.Blocks {
			binary.LittleEndian.PutUint16(tmp[:], v)
			h.Write(tmp[:])
		}
		copy(c.hash[:], h.Sum(nil))
		c.dirty = false
	}
	return c.hash
}

// ChunkStore is the terrain snapshot consumed by a simulation. It is built by a
// generator, an import or a test, then frozen; a frozen store only serves reads
// and is safe to share between simulations running on different goroutines.
type ChunkStore struct {
	MinY   int
	Height int
	Chunks map[ChunkKey]*Chunk

	freezeMu sync.Mutex
	frozen   atomic.Bool
}

func NewChunkStore(minY, height int) *ChunkStore {
	if height <= 0 {
		height = 1
	}
	return &ChunkStore{
		MinY:   minY,
		Height: height,
		Chunks: map[ChunkKey]*Chunk{},
	}
}

func (s *ChunkStore) newChunk(k ChunkKey) *Chunk {
	return &Chunk{
		CX:     k.CX,
		CZ:     k.CZ,
		Blocks: make([]uint16, ChunkSize*ChunkSize*s.Height),
		dirty:  true,
	}
}
