package simulation

import (
	"github.com/google/uuid"

	"voxelcraft.ai/pathsim/internal/logging"
	"voxelcraft.ai/pathsim/internal/sim/catalogs"
	"voxelcraft.ai/pathsim/internal/sim/tuning"
	"voxelcraft.ai/pathsim/internal/sim/world"
)

// Hook is caller code run as part of the tick, after the built-in systems.
// Setup runs once during New; a Setup error fails construction.
type Hook struct {
	Name  string
	Setup func(e *Environment) error
	Run   func(e *Environment) error
}

type config struct {
	tuning   tuning.Tuning
	cats     *catalogs.Catalogs
	logger   logging.Logger
	sinks    []TraceSink
	runID    uuid.UUID
	registry *world.Registry
	hooks    []Hook
}

type Option func(*config)

func WithTuning(t tuning.Tuning) Option {
	return func(c *config) { c.tuning = t }
}

func WithCatalogs(cats *catalogs.Catalogs) Option {
	return func(c *config) { c.cats = cats }
}

func WithLogger(l logging.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTraceSink adds a sink; sinks receive entries in the order they were added.
func WithTraceSink(s TraceSink) Option {
	return func(c *config) {
		if s != nil {
			c.sinks = append(c.sinks, s)
		}
	}
}

func WithRunID(id uuid.UUID) Option {
	return func(c *config) { c.runID = id }
}

// WithRegistry registers the instance in r instead of a private registry.
func WithRegistry(r *world.Registry) Option {
	return func(c *config) { c.registry = r }
}

func WithHook(h Hook) Option {
	return func(c *config) { c.hooks = append(c.hooks, h) }
}
