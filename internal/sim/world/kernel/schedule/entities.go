package schedule

import (
	"fmt"

	"voxelcraft.ai/pathsim/internal/sim/world/kernel/model"
)

// Entities is the component table of one environment, keyed by entity id.
type Entities struct {
	agents map[model.EntityID]*model.Agent
}

func NewEntities() *Entities {
	return &Entities{agents: map[model.EntityID]*model.Agent{}}
}

// Spawn installs a fully assembled agent in one step. The id must be free.
func (e *Entities) Spawn(a *model.Agent) error {
	if a == nil {
		return fmt.Errorf("spawn: nil agent")
	}
	if _, ok := e.agents[a.ID]; ok {
		return fmt.Errorf("spawn: entity %d already exists", a.ID)
	}
	e.agents[a.ID] = a
	return nil
}

func (e *Entities) Get(id model.EntityID) (*model.Agent, bool) {
	a, ok := e.agents[id]
	return a, ok
}

func (e *Entities) Despawn(id model.EntityID) bool {
	if _, ok := e.agents[id]; !ok {
		return false
	}
	delete(e.agents, id)
	return true
}

func (e *Entities) Len() int { return len(e.agents) }
