package model

import "dungeonsim.ai/internal/sim/catalogs"

// InstanceState is the per-creature timing state of the running instance.
type InstanceState struct {
	Active             catalogs.InstanceID
	Elapsed            int
	TriggerTick        int
	CompletionTick     int
	InterruptRequested bool

	// LastUsedTick is indexed by instance id and stamped at retirement.
	LastUsedTick []uint64
}

type Creature struct {
	ID    ThingID
	Kind  int
	Owner PlayerID
	Pos   SlabPos

	Level       int
	Health      int
	MaxHealth   int
	GoldCarried int64

	// Possessed is set while a keeper controls the creature directly.
	Possessed bool

	CombatTarget ThingID
	TargetPos    SlabPos

	// DigTask indexes the owner's task list; -1 when unassigned.
	DigTask   int
	DigTarget SlabPos

	DamageWallTarget  SlabPos
	TunnelTarget      SlabPos
	ReinforceProgress int

	HungerAmount int
	HungerLevel  int

	Inst InstanceState

	// Instances holds the learned count per instance id.
	Instances []uint8
}

// NewCreature allocates a creature sized for an instance table of n entries.
func NewCreature(id ThingID, kind int, owner PlayerID, pos SlabPos, n int) *Creature {
	return &Creature{
		ID:      id,
		Kind:    kind,
		Owner:   owner,
		Pos:     pos,
		Level:   1,
		DigTask: -1,
		Inst: InstanceState{
			LastUsedTick: make([]uint64, n),
		},
		Instances: make([]uint8, n),
	}
}

func (c *Creature) Alive() bool { return c != nil && c.Health > 0 }
