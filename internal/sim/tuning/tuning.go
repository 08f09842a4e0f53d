package tuning

import (
	"fmt"
	"os"

	"github.com/pixil98/go-errors"
	"gopkg.in/yaml.v3"
)

// Default physics/movement constants. Rest-stability and collision behavior
// depend on these exact values, so reimplementations must not inline them.
const (
	DefaultGravity        = 0.08
	DefaultVerticalDrag   = 0.98
	DefaultAirFriction    = 0.91
	DefaultVelocityCutoff = 0.003

	// Ground acceleration is speed * factor / friction^3; with the default
	// block friction (0.6*0.91) this makes ground acceleration equal to speed.
	DefaultGroundAccelFactor     = 0.16277136
	DefaultAirAcceleration       = 0.02
	DefaultSprintAirAcceleration = 0.026
	DefaultSprintMultiplier      = 1.3
	DefaultJumpPower             = 0.42
	DefaultSprintJumpBoost       = 0.2

	DefaultReach            = 4.5
	DefaultEyeHeight        = 1.62
	DefaultHarvestDivisor   = 30
	DefaultNoHarvestDivisor = 100

	DefaultNodeTolerance = 0.25
	DefaultStuckTicks    = 40
	DefaultStuckEpsilon  = 0.01
)

type Tuning struct {
	Physics  Physics  `yaml:"physics"`
	Movement Movement `yaml:"movement"`
	Work     Work     `yaml:"work"`
	Pathing  Pathing  `yaml:"pathing"`
}

type Physics struct {
	Gravity        float64 `yaml:"gravity"`
	VerticalDrag   float64 `yaml:"vertical_drag"`
	AirFriction    float64 `yaml:"air_friction"`
	VelocityCutoff float64 `yaml:"velocity_cutoff"`
}

type Movement struct {
	GroundAccelFactor     float64 `yaml:"ground_accel_factor"`
	AirAcceleration       float64 `yaml:"air_acceleration"`
	SprintAirAcceleration float64 `yaml:"sprint_air_acceleration"`
	SprintMultiplier      float64 `yaml:"sprint_multiplier"`
	JumpPower             float64 `yaml:"jump_power"`
	SprintJumpBoost       float64 `yaml:"sprint_jump_boost"`
}

type Work struct {
	Reach            float64 `yaml:"reach"`
	EyeHeight        float64 `yaml:"eye_height"`
	HarvestDivisor   float64 `yaml:"harvest_divisor"`
	NoHarvestDivisor float64 `yaml:"no_harvest_divisor"`
}

type Pathing struct {
	NodeTolerance float64 `yaml:"node_tolerance"`
	StuckTicks    int     `yaml:"stuck_ticks"`
	StuckEpsilon  float64 `yaml:"stuck_epsilon"`
}

func Defaults() Tuning {
	return Tuning{
		Physics: Physics{
			Gravity:        DefaultGravity,
			VerticalDrag:   DefaultVerticalDrag,
			AirFriction:    DefaultAirFriction,
			VelocityCutoff: DefaultVelocityCutoff,
		},
		Movement: Movement{
			GroundAccelFactor:     DefaultGroundAccelFactor,
			AirAcceleration:       DefaultAirAcceleration,
			SprintAirAcceleration: DefaultSprintAirAcceleration,
			SprintMultiplier:      DefaultSprintMultiplier,
			JumpPower:             DefaultJumpPower,
			SprintJumpBoost:       DefaultSprintJumpBoost,
		},
		Work: Work{
			Reach:            DefaultReach,
			EyeHeight:        DefaultEyeHeight,
			HarvestDivisor:   DefaultHarvestDivisor,
			NoHarvestDivisor: DefaultNoHarvestDivisor,
		},
		Pathing: Pathing{
			NodeTolerance: DefaultNodeTolerance,
			StuckTicks:    DefaultStuckTicks,
			StuckEpsilon:  DefaultStuckEpsilon,
		},
	}
}

// Load reads a tuning file. Keys missing from the file keep their defaults.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	el := errors.NewErrorList()
	el.Add(positive("physics.gravity", t.Physics.Gravity))
	el.Add(unit("physics.vertical_drag", t.Physics.VerticalDrag))
	el.Add(unit("physics.air_friction", t.Physics.AirFriction))
	el.Add(nonNegative("physics.velocity_cutoff", t.Physics.VelocityCutoff))
	el.Add(positive("movement.ground_accel_factor", t.Movement.GroundAccelFactor))
	el.Add(nonNegative("movement.air_acceleration", t.Movement.AirAcceleration))
	el.Add(nonNegative("movement.sprint_air_acceleration", t.Movement.SprintAirAcceleration))
	el.Add(positive("movement.sprint_multiplier", t.Movement.SprintMultiplier))
	el.Add(nonNegative("movement.jump_power", t.Movement.JumpPower))
	el.Add(nonNegative("movement.sprint_jump_boost", t.Movement.SprintJumpBoost))
	el.Add(positive("work.reach", t.Work.Reach))
	el.Add(positive("work.eye_height", t.Work.EyeHeight))
	el.Add(positive("work.harvest_divisor", t.Work.HarvestDivisor))
	el.Add(positive("work.no_harvest_divisor", t.Work.NoHarvestDivisor))
	el.Add(positive("pathing.node_tolerance", t.Pathing.NodeTolerance))
	el.Add(positive("pathing.stuck_ticks", float64(t.Pathing.StuckTicks)))
	el.Add(nonNegative("pathing.stuck_epsilon", t.Pathing.StuckEpsilon))
	return el.Err()
}

func positive(name string, v float64) error {
	if v <= 0 {
		return fmt.Errorf("%s: must be > 0, got %v", name, v)
	}
	return nil
}

func nonNegative(name string, v float64) error {
	if v < 0 {
		return fmt.Errorf("%s: must be >= 0, got %v", name, v)
	}
	return nil
}

func unit(name string, v float64) error {
	if v <= 0 || v > 1 {
		return fmt.Errorf("%s: must be in (0, 1], got %v", name, v)
	}
	return nil
}
