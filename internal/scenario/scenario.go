// Package scenario describes a scripted simulation run: where the agent
// starts, what it is told to do on which tick, and what the outcome should be.
package scenario

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/pixil98/go-errors"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"voxelcraft.ai/pathsim/internal/sim/catalogs"
	"voxelcraft.ai/pathsim/internal/sim/world/kernel/model"
	"voxelcraft.ai/pathsim/internal/sim/world/logic/mathx"
)

const schemaURL = "https://schemas.voxelcraft.ai/pathsim/scenario.schema.json"

//go:embed schema/scenario.schema.json
var schemaFS embed.FS

type Op string

const (
	OpIntent     Op = "intent"
	OpLook       Op = "look"
	OpLookAt     Op = "look_at"
	OpJump       Op = "jump"
	OpMine       Op = "mine"
	OpStopMining Op = "stop_mining"
	OpUse        Op = "use"
	OpSelect     Op = "select"
	OpGoTo       Op = "goto"
	OpPath       Op = "path"
	OpVelocity   Op = "velocity"
	OpTeleport   Op = "teleport"
	OpGive       Op = "give"
)

type Scenario struct {
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Start       mathx.Vec3   `json:"start"`
	Ticks       int          `json:"ticks"`
	Inventory   []Stack      `json:"inventory,omitempty"`
	Steps       []Step       `json:"steps,omitempty"`
	Expect      *Expectation `json:"expect,omitempty"`
}

type Stack struct {
	Item  string `json:"item"`
	Count int    `json:"count"`
}

// Step is one instruction applied right before tick Tick+1 runs, so Tick 0
// steers the very first tick.
type Step struct {
	Tick uint64 `json:"tick"`
	Op   Op     `json:"op"`

	Forward float64 `json:"forward,omitempty"`
	Strafe  float64 `json:"strafe,omitempty"`
	Sprint  bool    `json:"sprint,omitempty"`
	Jump    bool    `json:"jump,omitempty"`

	Yaw   float64 `json:"yaw,omitempty"`
	Pitch float64 `json:"pitch,omitempty"`

	Vec   *mathx.Vec3      `json:"vec,omitempty"`
	Block *mathx.BlockPos  `json:"block,omitempty"`
	Face  *mathx.BlockPos  `json:"face,omitempty"`
	Nodes []mathx.BlockPos `json:"nodes,omitempty"`

	Slot  int    `json:"slot,omitempty"`
	Item  string `json:"item,omitempty"`
	Count int    `json:"count,omitempty"`
}

// Expectation is checked against the run's outcome. Signals counts every
// published signal of a kind over the whole run.
type Expectation struct {
	Final     *mathx.Vec3    `json:"final,omitempty"`
	Tolerance float64        `json:"tolerance,omitempty"`
	OnGround  *bool          `json:"on_ground,omitempty"`
	Signals   map[string]int `json:"signals,omitempty"`
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sc, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// Parse validates raw against the scenario schema and decodes it. Steps are
// ordered by tick; steps on the same tick keep their file order.
func Parse(raw []byte) (*Scenario, error) {
	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	if err := schema.Validate(doc); err != nil {
		return nil, err
	}

	var sc Scenario
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&sc); err != nil {
		return nil, err
	}
	sort.SliceStable(sc.Steps, func(i, j int) bool { return sc.Steps[i].Tick < sc.Steps[j].Tick })
	return &sc, nil
}

func compileSchema() (*jsonschema.Schema, error) {
	raw, err := schemaFS.ReadFile("schema/scenario.schema.json")
	if err != nil {
		return nil, err
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, bytes.NewReader(raw)); err != nil {
		return nil, err
	}
	return c.Compile(schemaURL)
}

// Validate checks what the schema cannot: fields each op needs, tick ranges
// and item names.
func (sc *Scenario) Validate(cats *catalogs.Catalogs) error {
	el := errors.NewErrorList()
	if sc.Ticks <= 0 {
		el.Add(fmt.Errorf("ticks must be > 0"))
	}
	for i, st := range sc.Inventory {
		el.Add(checkItem(cats, fmt.Sprintf("inventory[%d]", i), st.Item, st.Count))
	}
	for i, st := range sc.Steps {
		if err := st.validate(cats, sc.Ticks); err != nil {
			el.Add(fmt.Errorf("steps[%d] (%s at tick %d): %w", i, st.Op, st.Tick, err))
		}
	}
	if sc.Expect != nil {
		for kind, n := range sc.Expect.Signals {
			if n < 0 {
				el.Add(fmt.Errorf("expect.signals.%s: negative count", kind))
			}
		}
	}
	return el.Err()
}

func (st Step) validate(cats *catalogs.Catalogs, ticks int) error {
	if st.Tick >= uint64(ticks) {
		return fmt.Errorf("tick must be < %d", ticks)
	}
	switch st.Op {
	case OpIntent, OpLook, OpJump, OpStopMining:
		return nil
	case OpLookAt, OpVelocity, OpTeleport:
		if st.Vec == nil {
			return fmt.Errorf("vec is required")
		}
	case OpMine, OpGoTo:
		if st.Block == nil {
			return fmt.Errorf("block is required")
		}
	case OpUse:
		if st.Block == nil || st.Face == nil {
			return fmt.Errorf("block and face are required")
		}
	case OpSelect:
		if st.Slot < 0 || st.Slot >= model.HotbarSlots {
			return fmt.Errorf("slot %d outside hotbar", st.Slot)
		}
	case OpPath:
		if len(st.Nodes) == 0 {
			return fmt.Errorf("nodes are required")
		}
	case OpGive:
		return checkItem(cats, "item", st.Item, st.Count)
	default:
		return fmt.Errorf("unknown op")
	}
	return nil
}

func checkItem(cats *catalogs.Catalogs, where, item string, count int) error {
	if _, ok := cats.Items.Defs[item]; !ok {
		return fmt.Errorf("%s: unknown item %q", where, item)
	}
	if count <= 0 {
		return fmt.Errorf("%s: count must be > 0", where)
	}
	return nil
}
