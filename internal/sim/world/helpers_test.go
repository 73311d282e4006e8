package world

import (
	"testing"

	"dungeonsim.ai/internal/protocol"
	"dungeonsim.ai/internal/sim/catalogs"
)

func testConfig(seed int64) WorldConfig {
	return WorldConfig{
		RunID:        "test",
		TickRateHz:   20,
		Seed:         seed,
		Width:        48,
		Height:       48,
		Players:      2,
		StartingGold: 3000,
		StartingImps: 2,
	}
}

func newTestWorld(t *testing.T, seed int64) *World {
	t.Helper()
	cats, err := catalogs.Load("../../../configs")
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	w, err := New(testConfig(seed), cats)
	if err != nil {
		t.Fatalf("new world: %v", err)
	}
	return w
}

// step runs one tick and returns the command results in order.
func step(t *testing.T, w *World, cmds ...protocol.CommandReq) []protocol.CommandResult {
	t.Helper()
	envs := make([]CommandEnvelope, 0, len(cmds))
	for _, c := range cmds {
		envs = append(envs, CommandEnvelope{Cmd: c, Resp: make(chan protocol.CommandResult, 1)})
	}
	w.stepInternal(envs)
	out := make([]protocol.CommandResult, 0, len(envs))
	for _, env := range envs {
		select {
		case r := <-env.Resp:
			out = append(out, r)
		default:
			t.Fatalf("no result for command %s", env.Cmd.ID)
		}
	}
	return out
}

func heartOf(t *testing.T, w *World, owner PlayerID) SlabPos {
	t.Helper()
	d := w.dungeon(owner)
	if d == nil {
		t.Fatalf("no dungeon %d", owner)
	}
	r := w.rooms[d.RoomHeads[catalogs.RoomDungeonHeart]]
	if r == nil {
		t.Fatalf("player %d has no heart", owner)
	}
	return r.Central
}

func firstImp(t *testing.T, w *World, owner PlayerID) *Creature {
	t.Helper()
	for _, id := range sortedCreatureIDs(w.creatures) {
		if c := w.creatures[id]; c.Owner == owner {
			return c
		}
	}
	t.Fatalf("player %d has no creatures", owner)
	return nil
}
