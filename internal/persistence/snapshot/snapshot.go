package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

const TerrainVersion = 1

// Header is written as a plain JSON line ahead of the gob body so tools can
// identify a file without decoding the chunks.
type Header struct {
	Version int    `json:"version"`
	Name    string `json:"name"`
	Seed    int64  `json:"seed"`
	MinY    int    `json:"min_y"`
	Height  int    `json:"height"`
	Chunks  int    `json:"chunks"`
	Digest  string `json:"digest"`
}

// TerrainV1 is the on-disk form of a terrain snapshot.
type TerrainV1 struct {
	Header Header `json:"header"`

	// Palette maps the palette ids used in Chunks to block names, so a file
	// stays readable after the block catalog gains entries.
	Palette []string  `json:"palette"`
	Chunks  []ChunkV1 `json:"chunks"`
}

type ChunkV1 struct {
	CX   int    `json:"cx"`
	CZ   int    `json:"cz"`
	Runs []byte `json:"runs"`
}

func WriteTerrain(path string, snap TerrainV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 256*1024)

	hb, _ := json.Marshal(snap.Header)
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}
	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return f.Sync()
}

func ReadTerrain(path string) (TerrainV1, error) {
	var snap TerrainV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)

	line, err := br.ReadBytes('\n')
	if err != nil {
		return snap, fmt.Errorf("read header: %w", err)
	}
	var hdr Header
	if err := json.Unmarshal(line, &hdr); err != nil {
		return snap, fmt.Errorf("decode header: %w", err)
	}
	if hdr.Version != TerrainVersion {
		return snap, fmt.Errorf("unsupported terrain version %d", hdr.Version)
	}

	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	return snap, nil
}

// ReadHeader decodes only the header line.
func ReadHeader(path string) (Header, error) {
	var hdr Header
	f, err := os.Open(path)
	if err != nil {
		return hdr, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return hdr, err
	}
	defer dec.Close()

	line, err := bufio.NewReader(dec).ReadBytes('\n')
	if err != nil {
		return hdr, fmt.Errorf("read header: %w", err)
	}
	if err := json.Unmarshal(line, &hdr); err != nil {
		return hdr, fmt.Errorf("decode header: %w", err)
	}
	return hdr, nil
}
