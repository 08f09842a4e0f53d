package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadTerrain(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "w.terrain.zst")
	in := TerrainV1{
		Header:  Header{Version: TerrainVersion, Name: "t", Seed: 9, MinY: -4, Height: 16, Chunks: 1, Digest: "abc"},
		Palette: []string{"AIR", "STONE"},
		Chunks:  []ChunkV1{{CX: -1, CZ: 2, Runs: []byte{1, 2, 0, 3}}},
	}
	require.NoError(t, WriteTerrain(p, in))

	out, err := ReadTerrain(p)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	hdr, err := ReadHeader(p)
	require.NoError(t, err)
	assert.Equal(t, in.Header, hdr)
}

func TestReadTerrainRejectsUnknownVersion(t *testing.T) {
	p := filepath.Join(t.TempDir(), "w.terrain.zst")
	require.NoError(t, WriteTerrain(p, TerrainV1{Header: Header{Version: 99}}))

	_, err := ReadTerrain(p)
	require.ErrorContains(t, err, "unsupported terrain version")
}

func TestReadTerrainRejectsGarbage(t *testing.T) {
	p := filepath.Join(t.TempDir(), "junk")
	require.NoError(t, os.WriteFile(p, []byte("not zstd"), 0o644))

	_, err := ReadTerrain(p)
	require.Error(t, err)
}
