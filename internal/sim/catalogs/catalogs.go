package catalogs

import (
	"bytes"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	blocksFile       = "blocks.json"
	itemsFile        = "items.json"
	blocksSchemaFile = "blocks.schema.json"
	itemsSchemaFile  = "items.schema.json"

	schemaBaseURL = "https://schemas.voxelcraft.ai/pathsim/"

	// AirID is always palette id 0.
	AirID uint16 = 0

	DefaultSlipperiness = 0.6
	DefaultMaxStack     = 64
)

//go:embed defaults/*.json
var defaultsFS embed.FS

type Catalogs struct {
	Blocks BlockCatalog
	Items  ItemCatalog
}

type BlockCatalog struct {
	Palette       []string
	Index         map[string]uint16
	Defs          map[string]BlockDef
	PaletteDigest string
	DefsDigest    string

	byID []BlockDef
}

type BlockDef struct {
	ID           string  `json:"id"`
	Solid        bool    `json:"solid"`
	Breakable    bool    `json:"breakable"`
	Hardness     float64 `json:"hardness,omitempty"`
	Slipperiness float64 `json:"slipperiness,omitempty"`
	Tool         string  `json:"tool,omitempty"`
	RequiresTool bool    `json:"requires_tool,omitempty"`
	MinTier      int     `json:"min_tier,omitempty"`
	DropsItem    string  `json:"drops_item,omitempty"`
}

type ItemCatalog struct {
	Palette       []string
	Index         map[string]uint16
	Defs          map[string]ItemDef
	PaletteDigest string
	DefsDigest    string
}

type ItemDef struct {
	ID       string `json:"id"`
	Kind     string `json:"kind"` // "BLOCK","TOOL","MATERIAL"
	PlaceAs  string `json:"place_as,omitempty"`
	Tool     string `json:"tool,omitempty"`
	Tier     int    `json:"tier,omitempty"`
	MaxStack int    `json:"max_stack,omitempty"`
}

var (
	defaultOnce sync.Once
	defaultCats *Catalogs
	defaultErr  error
)

// Default returns the embedded catalogs. The result is shared and must be
// treated as read-only.
func Default() (*Catalogs, error) {
	defaultOnce.Do(func() {
		sub, err := fs.Sub(defaultsFS, "defaults")
		if err != nil {
			defaultErr = err
			return
		}
		defaultCats, defaultErr = LoadFS(sub)
	})
	return defaultCats, defaultErr
}

// MustDefault is Default for callers that treat a broken embedded catalog as a bug.
func MustDefault() *Catalogs {
	c, err := Default()
	if err != nil {
		panic(fmt.Sprintf("embedded catalogs: %v", err))
	}
	return c
}

// Load reads blocks.json and items.json from configDir. Schemas are always the
// embedded ones so a config directory cannot loosen validation.
func Load(configDir string) (*Catalogs, error) {
	return LoadFS(os.DirFS(configDir))
}

// LoadDir is Load for a non-empty configDir and Default otherwise.
func LoadDir(configDir string) (*Catalogs, error) {
	if configDir == "" {
		return Default()
	}
	return Load(configDir)
}

func LoadFS(fsys fs.FS) (*Catalogs, error) {
	var c Catalogs
	if err := loadBlocks(fsys, &c.Blocks); err != nil {
		return nil, err
	}
	if err := loadItems(fsys, &c.Items); err != nil {
		return nil, err
	}
	if err := c.crossCheck(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Block returns the definition for a palette id. Unknown ids resolve to AIR.
func (b *BlockCatalog) Block(id uint16) BlockDef {
	if int(id) < len(b.byID) {
		return b.byID[id]
	}
	return b.byID[AirID]
}

func (b *BlockCatalog) Solid(id uint16) bool { return b.Block(id).Solid }

// Slipperiness of the block surface; blocks without an explicit value use the default.
func (b *BlockCatalog) Slipperiness(id uint16) float64 {
	if s := b.Block(id).Slipperiness; s > 0 {
		return s
	}
	return DefaultSlipperiness
}

func (b *BlockCatalog) MustID(name string) uint16 {
	id, ok := b.Index[name]
	if !ok {
		panic(fmt.Sprintf("unknown block %q", name))
	}
	return id
}

func (i *ItemCatalog) MaxStack(item string) int {
	d, ok := i.Defs[item]
	if !ok || d.MaxStack <= 0 {
		return DefaultMaxStack
	}
	return d.MaxStack
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func compileSchema(name string) (*jsonschema.Schema, error) {
	raw, err := defaultsFS.ReadFile("defaults/" + name)
	if err != nil {
		return nil, err
	}
	c := jsonschema.NewCompiler()
	url := schemaBaseURL + name
	if err := c.AddResource(url, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return c.Compile(url)
}

func validateAgainst(schemaName, file string, raw []byte) error {
	s, err := compileSchema(schemaName)
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}
	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}
	return nil
}

func loadBlocks(fsys fs.FS, out *BlockCatalog) error {
	raw, err := fs.ReadFile(fsys, blocksFile)
	if err != nil {
		return err
	}
	if err := validateAgainst(blocksSchemaFile, blocksFile, raw); err != nil {
		return err
	}
	out.DefsDigest = sha256Hex(raw)

	var defs []BlockDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("blocks.json: %w", err)
	}
	out.Defs = map[string]BlockDef{}
	for _, d := range defs {
		if _, dup := out.Defs[d.ID]; dup {
			return fmt.Errorf("blocks.json: duplicate id %s", d.ID)
		}
		out.Defs[d.ID] = d
	}

	// Ensure AIR exists and is palette id 0.
	air, ok := out.Defs["AIR"]
	if !ok {
		return fmt.Errorf("blocks.json: missing AIR")
	}
	if air.Solid {
		return fmt.Errorf("blocks.json: AIR must not be solid")
	}

	ids := make([]string, 0, len(out.Defs))
	for id := range out.Defs {
		if id != "AIR" {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	ids = append([]string{"AIR"}, ids...)

	out.Palette = ids
	out.Index = make(map[string]uint16, len(ids))
	out.byID = make([]BlockDef, len(ids))
	for i, id := range ids {
		out.Index[id] = uint16(i)
		out.byID[i] = out.Defs[id]
	}
	palJSON, _ := json.Marshal(ids)
	out.PaletteDigest = sha256Hex(palJSON)
	return nil
}

func loadItems(fsys fs.FS, out *ItemCatalog) error {
	raw, err := fs.ReadFile(fsys, itemsFile)
	if err != nil {
		return err
	}
	if err := validateAgainst(itemsSchemaFile, itemsFile, raw); err != nil {
		return err
	}
	out.DefsDigest = sha256Hex(raw)

	var defs []ItemDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("items.json: %w", err)
	}
	out.Defs = map[string]ItemDef{}
	for _, d := range defs {
		if _, dup := out.Defs[d.ID]; dup {
			return fmt.Errorf("items.json: duplicate id %s", d.ID)
		}
		out.Defs[d.ID] = d
	}

	ids := make([]string, 0, len(out.Defs))
	for id := range out.Defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out.Palette = ids
	out.Index = make(map[string]uint16, len(ids))
	for i, id := range ids {
		out.Index[id] = uint16(i)
	}
	palJSON, _ := json.Marshal(ids)
	out.PaletteDigest = sha256Hex(palJSON)
	return nil
}

// crossCheck verifies references between the two catalogs.
func (c *Catalogs) crossCheck() error {
	for _, id := range c.Blocks.Palette {
		d := c.Blocks.Defs[id]
		if d.DropsItem == "" {
			continue
		}
		if _, ok := c.Items.Defs[d.DropsItem]; !ok {
			return fmt.Errorf("blocks.json: %s drops unknown item %s", id, d.DropsItem)
		}
	}
	for _, id := range c.Items.Palette {
		d := c.Items.Defs[id]
		if d.PlaceAs == "" {
			continue
		}
		if _, ok := c.Blocks.Defs[d.PlaceAs]; !ok {
			return fmt.Errorf("items.json: %s places unknown block %s", id, d.PlaceAs)
		}
	}
	return nil
}
