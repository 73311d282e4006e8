package world

import (
	"errors"
	"fmt"

	"dungeonsim.ai/internal/protocol"
	"dungeonsim.ai/internal/sim/catalogs"
	"dungeonsim.ai/internal/sim/world/feature/economy"
	"dungeonsim.ai/internal/sim/world/feature/instances"
	"dungeonsim.ai/internal/sim/world/kernel/model"
)

// Commands returns the operator command queue.
func (w *World) Commands() chan<- CommandEnvelope { return w.commands }

type commandHandler func(w *World, cmd protocol.CommandReq) (ref int64, code string, err error)

var commandDispatch = map[string]commandHandler{
	protocol.OpSpawn:           handleSpawn,
	protocol.OpStartInstance:   handleStartInstance,
	protocol.OpInterrupt:       handleInterrupt,
	protocol.OpMarkDig:         handleMarkDig,
	protocol.OpAssignDig:       handleAssignDig,
	protocol.OpSetTarget:       handleSetTarget,
	protocol.OpSetWallTarget:   handleSetWallTarget,
	protocol.OpSetTunnelTarget: handleSetTunnelTarget,
	protocol.OpMove:            handleMove,
	protocol.OpPossess:         handlePossess,
	protocol.OpFeed:            handleFeed,
	protocol.OpAddGold:         handleAddGold,
	protocol.OpTakeGold:        handleTakeGold,
	protocol.OpPlaceTrap:       handlePlaceTrap,
	protocol.OpSellTrap:        handleSellTrap,
}

// applyCommand runs one command against the current state and returns the
// record that goes into the journal.
func (w *World) applyCommand(cmd protocol.CommandReq, nowTick uint64) (RecordedCommand, protocol.CommandResult) {
	res := protocol.CommandResult{
		Type:            protocol.TypeCommandResult,
		ProtocolVersion: protocol.Version,
		ID:              cmd.ID,
		Tick:            nowTick,
	}
	h, ok := commandDispatch[cmd.Op]
	if !ok {
		res.Code = protocol.ErrBadRequest
		res.Message = fmt.Sprintf("unknown op %q", cmd.Op)
		return RecordedCommand{Cmd: cmd, Code: res.Code}, res
	}
	ref, code, err := h(w, cmd)
	if !protocol.IsKnownCode(code) {
		code, err = protocol.ErrInternal, fmt.Errorf("handler returned unknown code %q: %v", code, err)
	}
	res.Ref = ref
	res.Code = code
	res.OK = code == ""
	if err != nil {
		res.Message = err.Error()
	}
	return RecordedCommand{Cmd: cmd, Code: code, Ref: ref}, res
}

func cmdPos(cmd protocol.CommandReq) SlabPos { return SlabPos{X: cmd.Pos[0], Y: cmd.Pos[1]} }

func (w *World) cmdCreature(cmd protocol.CommandReq) (*Creature, string, error) {
	cr := w.creatures[ThingID(cmd.Creature)]
	if cr == nil || !cr.Alive() {
		return nil, protocol.ErrNotFound, fmt.Errorf("creature %d not found", cmd.Creature)
	}
	return cr, "", nil
}

func handleSpawn(w *World, cmd protocol.CommandReq) (int64, string, error) {
	kind, ok := w.catalogs.Creatures.KindByName(cmd.Kind)
	if !ok {
		return 0, protocol.ErrBadRequest, fmt.Errorf("creature kind %q: %w", cmd.Kind, catalogs.ErrUnknownName)
	}
	owner := PlayerID(cmd.Owner)
	if w.dungeon(owner) == nil {
		return 0, protocol.ErrBadRequest, fmt.Errorf("player %d: %w", cmd.Owner, economy.ErrNoDungeon)
	}
	cr, err := w.spawnCreature(kind, owner, cmdPos(cmd))
	if err != nil {
		return 0, protocol.ErrInvalidTarget, err
	}
	return int64(cr.ID), "", nil
}

func handleStartInstance(w *World, cmd protocol.CommandReq) (int64, string, error) {
	cr, code, err := w.cmdCreature(cmd)
	if cr == nil {
		return 0, code, err
	}
	id, err := w.catalogs.Instances.ResolveInstance(cmd.Instance)
	if err != nil {
		return 0, protocol.ErrBadRequest, err
	}
	info, err := w.catalogs.Instances.Describe(id)
	if err != nil {
		return 0, protocol.ErrBadRequest, err
	}
	if !instances.InstanceAvailable(cr, info, w.tick.Load()) {
		return 0, protocol.ErrCooldown, fmt.Errorf("creature %d: %s not available", cr.ID, info.Name)
	}
	if err := instances.SetInstance(cr, info); err != nil {
		if errors.Is(err, instances.ErrInstanceBusy) {
			return 0, protocol.ErrBusy, err
		}
		return 0, protocol.ErrInternal, err
	}
	return int64(id), "", nil
}

func handleInterrupt(w *World, cmd protocol.CommandReq) (int64, string, error) {
	cr, code, err := w.cmdCreature(cmd)
	if cr == nil {
		return 0, code, err
	}
	if cr.Inst.Active == catalogs.InstNone {
		return 0, protocol.ErrInvalidTarget, fmt.Errorf("creature %d has no active instance", cr.ID)
	}
	cr.Inst.InterruptRequested = true
	return 0, "", nil
}

// handleMarkDig adds a dig task to the owner's list. Gold and gem slabs
// become mining tasks.
func handleMarkDig(w *World, cmd protocol.CommandReq) (int64, string, error) {
	d := w.dungeon(PlayerID(cmd.Owner))
	if d == nil {
		return 0, protocol.ErrBadRequest, fmt.Errorf("player %d: %w", cmd.Owner, economy.ErrNoDungeon)
	}
	pos := cmdPos(cmd)
	s, ok := w.slabs.At(pos)
	if !ok {
		return 0, protocol.ErrInvalidTarget, fmt.Errorf("slab %d,%d out of range", pos.X, pos.Y)
	}
	def := w.slabs.Def(s.Kind)
	if !def.Diggable || s.RoomID != 0 {
		return 0, protocol.ErrInvalidTarget, fmt.Errorf("slab %d,%d (%s) cannot be dug", pos.X, pos.Y, s.Kind)
	}
	if def.Category == catalogs.SlabCatFortifiedWall && s.Owner != d.Owner {
		return 0, protocol.ErrInvalidTarget, fmt.Errorf("slab %d,%d is a foreign wall", pos.X, pos.Y)
	}
	kind := model.TaskDigEarth
	if def.Category == catalogs.SlabCatGold {
		kind = model.TaskMineGold
	}
	slot, ok := d.AddTask(model.MapTask{Kind: kind, Target: pos})
	if !ok {
		return 0, protocol.ErrNoResource, fmt.Errorf("player %d task list full", d.Owner)
	}
	return int64(slot), "", nil
}

func handleAssignDig(w *World, cmd protocol.CommandReq) (int64, string, error) {
	cr, code, err := w.cmdCreature(cmd)
	if cr == nil {
		return 0, code, err
	}
	task, ok := w.dungeon(cr.Owner).Task(cmd.Slot)
	if !ok {
		return 0, protocol.ErrInvalidTarget, fmt.Errorf("player %d task %d: %w", cr.Owner, cmd.Slot, instances.ErrStaleReference)
	}
	cr.DigTask = cmd.Slot
	cr.DigTarget = task.Target
	return int64(cmd.Slot), "", nil
}

func handleSetTarget(w *World, cmd protocol.CommandReq) (int64, string, error) {
	cr, code, err := w.cmdCreature(cmd)
	if cr == nil {
		return 0, code, err
	}
	cr.CombatTarget = ThingID(cmd.Target)
	cr.TargetPos = cmdPos(cmd)
	return int64(cmd.Target), "", nil
}

func handleSetWallTarget(w *World, cmd protocol.CommandReq) (int64, string, error) {
	cr, code, err := w.cmdCreature(cmd)
	if cr == nil {
		return 0, code, err
	}
	cr.DamageWallTarget = cmdPos(cmd)
	return 0, "", nil
}

func handleSetTunnelTarget(w *World, cmd protocol.CommandReq) (int64, string, error) {
	cr, code, err := w.cmdCreature(cmd)
	if cr == nil {
		return 0, code, err
	}
	cr.TunnelTarget = cmdPos(cmd)
	return 0, "", nil
}

// handleMove places the creature directly; path finding is not simulated.
func handleMove(w *World, cmd protocol.CommandReq) (int64, string, error) {
	cr, code, err := w.cmdCreature(cmd)
	if cr == nil {
		return 0, code, err
	}
	pos := cmdPos(cmd)
	if !w.slabs.IsOpen(pos.X, pos.Y) {
		return 0, protocol.ErrInvalidTarget, fmt.Errorf("slab %d,%d is not open", pos.X, pos.Y)
	}
	cr.Pos = pos
	return 0, "", nil
}

func handlePossess(w *World, cmd protocol.CommandReq) (int64, string, error) {
	cr, code, err := w.cmdCreature(cmd)
	if cr == nil {
		return 0, code, err
	}
	cr.Possessed = cmd.Flag
	return 0, "", nil
}

// handleFeed queues Amount chickens for the creature's next meals.
func handleFeed(w *World, cmd protocol.CommandReq) (int64, string, error) {
	cr, code, err := w.cmdCreature(cmd)
	if cr == nil {
		return 0, code, err
	}
	cr.HungerAmount += int(cmd.Amount)
	return int64(cr.HungerAmount), "", nil
}

// handleAddGold fills the owner's treasuries first; the rest is held off-map.
func handleAddGold(w *World, cmd protocol.CommandReq) (int64, string, error) {
	d := w.dungeon(PlayerID(cmd.Owner))
	if d == nil {
		return 0, protocol.ErrBadRequest, fmt.Errorf("player %d: %w", cmd.Owner, economy.ErrNoDungeon)
	}
	left := cmd.Amount
	id := d.RoomHeads[catalogs.RoomTreasure]
	for k := 0; id != 0 && left > 0; k++ {
		if k > model.MaxRooms {
			break
		}
		r := w.rooms[id]
		if r == nil {
			break
		}
		left -= economy.StoreGold(w.ecoEnv, r, w.storagePerSlab(r), left)
		id = r.NextOfOwner
	}
	economy.AddOffmapGold(d, left)
	return cmd.Amount, "", nil
}

func handleTakeGold(w *World, cmd protocol.CommandReq) (int64, string, error) {
	got, err := economy.TakeMoney(w.ecoEnv, PlayerID(cmd.Owner), cmd.Amount, cmd.Flag)
	switch {
	case errors.Is(err, economy.ErrNoDungeon):
		return got, protocol.ErrBadRequest, err
	case errors.Is(err, economy.ErrNotEnoughGold):
		return got, protocol.ErrNoResource, err
	case err != nil:
		return got, protocol.ErrInternal, err
	}
	return got, "", nil
}

// handlePlaceTrap puts a trap of model Kind on the owner's claimed ground.
func handlePlaceTrap(w *World, cmd protocol.CommandReq) (int64, string, error) {
	owner := PlayerID(cmd.Owner)
	if w.dungeon(owner) == nil {
		return 0, protocol.ErrBadRequest, fmt.Errorf("player %d: %w", cmd.Owner, economy.ErrNoDungeon)
	}
	trapModel, ok := w.catalogs.Traps.IDByName(cmd.Kind)
	if !ok {
		return 0, protocol.ErrBadRequest, fmt.Errorf("trap %q: %w", cmd.Kind, catalogs.ErrUnknownName)
	}
	t, err := w.placeTrap(owner, cmdPos(cmd), trapModel)
	if err != nil {
		return 0, protocol.ErrInvalidTarget, err
	}
	return int64(t.ID), "", nil
}

// handleSellTrap sells the owner's trap on Pos; Ref is the refunded gold.
func handleSellTrap(w *World, cmd protocol.CommandReq) (int64, string, error) {
	owner := PlayerID(cmd.Owner)
	if w.dungeon(owner) == nil {
		return 0, protocol.ErrBadRequest, fmt.Errorf("player %d: %w", cmd.Owner, economy.ErrNoDungeon)
	}
	pos := cmdPos(cmd)
	t := w.trapAt(pos)
	if t == nil {
		return 0, protocol.ErrNotFound, fmt.Errorf("no trap at %d,%d", pos.X, pos.Y)
	}
	if t.Owner != owner {
		return 0, protocol.ErrInvalidTarget, fmt.Errorf("trap at %d,%d belongs to player %d", pos.X, pos.Y, t.Owner)
	}
	return w.sellTrap(owner, pos), "", nil
}
