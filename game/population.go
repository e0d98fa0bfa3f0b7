package game

import (
	"github.com/pthm-cable/psiscout/components"
	"github.com/pthm-cable/psiscout/systems"
)

// spawnPopulation creates ScoutsPerType scouts of every type, grouped by type.
func (g *Game) spawnPopulation() {
	size := g.cfg.Derived.FieldSize32
	perType := g.cfg.Derived.ScoutsPerType

	for _, t := range components.AllScoutTypes() {
		for i := 0; i < perType; i++ {
			s := systems.NewScout(t, size, size, &g.params, g.rng)
			pos, vel, mm, act := toComponents(&s)
			e := g.scoutMapper.NewEntity(&pos, &vel, &mm, &act)

			g.entities = append(g.entities, e)
			g.scouts = append(g.scouts, s)
		}
	}
}

// ResetPopulation redraws every scout's position, velocity, activation and
// energy. Type, sensitivity, threshold and age are kept; the field is left
// alone until the next frame arrives.
func (g *Game) ResetPopulation() {
	size := g.cfg.Derived.FieldSize32

	g.snapshotScouts()
	for i := range g.scouts {
		g.scouts[i].Respawn(size, size, &g.params, g.rng)
	}
	g.applyScouts()
}

// snapshotScouts copies ECS state into the flat working slice.
func (g *Game) snapshotScouts() {
	g.entities = g.entities[:0]
	g.scouts = g.scouts[:0]

	query := g.scoutFilter.Query()
	for query.Next() {
		pos, vel, mm, act := query.Get()
		g.entities = append(g.entities, query.Entity())
		g.scouts = append(g.scouts, fromComponents(pos, vel, mm, act))
	}
}

// applyScouts writes the working slice back to ECS components. Minimodel is
// never written: the per-instance constants are fixed for the run.
func (g *Game) applyScouts() {
	for i, e := range g.entities {
		pos, vel, _, act := g.scoutMapper.Get(e)
		s := &g.scouts[i]

		pos.X, pos.Y = s.X, s.Y
		vel.X, vel.Y = s.VX, s.VY
		act.Activation = s.Activation
		act.Energy = s.Energy
		act.Age = s.Age
	}
}

func fromComponents(pos *components.Position, vel *components.Velocity, mm *components.Minimodel, act *components.Activity) systems.Scout {
	return systems.Scout{
		Type:        mm.Type,
		X:           pos.X,
		Y:           pos.Y,
		VX:          vel.X,
		VY:          vel.Y,
		Activation:  act.Activation,
		Energy:      act.Energy,
		Sensitivity: mm.Sensitivity,
		Threshold:   mm.Threshold,
		Age:         act.Age,
	}
}

func toComponents(s *systems.Scout) (components.Position, components.Velocity, components.Minimodel, components.Activity) {
	return components.Position{X: s.X, Y: s.Y},
		components.Velocity{X: s.VX, Y: s.VY},
		components.Minimodel{Type: s.Type, Sensitivity: s.Sensitivity, Threshold: s.Threshold},
		components.Activity{Activation: s.Activation, Energy: s.Energy, Age: s.Age}
}
