package world

import (
	"encoding/json"

	"dungeonsim.ai/internal/observerproto"
	"dungeonsim.ai/internal/sim/catalogs"
)

type observerClient struct {
	id      string
	tickOut chan []byte
	dataOut chan []byte
	encode  func(v any) ([]byte, error)

	// owners is nil when the observer follows every keeper.
	owners map[int]bool
	noMap  bool
}

func (c *observerClient) wants(owner int) bool {
	return c.owners == nil || c.owners[owner]
}

func (c *observerClient) marshal(v any) ([]byte, error) {
	if c.encode != nil {
		return c.encode(v)
	}
	return json.Marshal(v)
}

// Bootstrap describes the static world parameters. Safe to call from other
// goroutines: it reads only config, catalogs and the atomic tick.
func (w *World) Bootstrap() observerproto.BootstrapResponse {
	palette := make([]string, catalogs.SlabKindCount)
	for k := catalogs.SlabKind(0); k < catalogs.SlabKindCount; k++ {
		palette[k] = k.String()
	}
	insts := make([]string, 0, w.catalogs.Instances.Count())
	for _, info := range w.catalogs.Instances.Infos {
		insts = append(insts, info.Name)
	}
	tick := w.tick.Load()
	if tick > 0 {
		tick--
	}
	return observerproto.BootstrapResponse{
		ProtocolVersion: observerproto.Version,
		RunID:           w.cfg.RunID,
		Tick:            tick,
		WorldParams: observerproto.WorldParams{
			TickRateHz: w.cfg.TickRateHz,
			Width:      w.cfg.Width,
			Height:     w.cfg.Height,
			Players:    w.cfg.Players,
			Seed:       w.cfg.Seed,
		},
		SlabPalette:    palette,
		Instances:      insts,
		CatalogDigests: w.catalogs.Digests(),
	}
}

func (w *World) handleObserverJoin(req ObserverJoinRequest) {
	if req.SessionID == "" || req.TickOut == nil {
		return
	}
	c := &observerClient{
		id:      req.SessionID,
		tickOut: req.TickOut,
		dataOut: req.DataOut,
		encode:  req.Encode,
		noMap:   req.NoMap,
	}
	if len(req.Owners) > 0 {
		c.owners = make(map[int]bool, len(req.Owners))
		for _, o := range req.Owners {
			c.owners[o] = true
		}
	}
	w.observers[c.id] = c
	if c.noMap || c.dataOut == nil {
		return
	}
	b, err := c.marshal(w.mapMsg())
	if err != nil {
		w.logf("observer %s: encode map: %v", c.id, err)
		return
	}
	select {
	case c.dataOut <- b:
	default:
		w.logf("observer %s: map dropped (backpressure)", c.id)
	}
}

func (w *World) handleObserverLeave(id string) {
	delete(w.observers, id)
}

func (w *World) mapMsg() observerproto.MapMsg {
	n := len(w.slabs.Slabs)
	msg := observerproto.MapMsg{
		Type:            "MAP",
		ProtocolVersion: observerproto.Version,
		Tick:            w.tick.Load(),
		Width:           w.slabs.W,
		Height:          w.slabs.H,
		Kinds:           make([]uint8, n),
		Owners:          make([]int8, n),
	}
	for i, s := range w.slabs.Slabs {
		msg.Kinds[i] = uint8(s.Kind)
		msg.Owners[i] = int8(s.Owner)
	}
	return msg
}

// stepObservers sends one TICK frame per observer. Frames for slow observers
// replace the pending one rather than queueing.
func (w *World) stepObservers(nowTick uint64, digest string, recorded []RecordedCommand) {
	if len(w.observers) == 0 {
		return
	}

	creatures := make([]observerproto.CreatureState, 0, len(w.creatures))
	for _, id := range sortedCreatureIDs(w.creatures) {
		c := w.creatures[id]
		cs := observerproto.CreatureState{
			ID:      uint32(c.ID),
			Owner:   int(c.Owner),
			Pos:     [2]int{c.Pos.X, c.Pos.Y},
			Level:   c.Level,
			Health:  c.Health,
			Gold:    c.GoldCarried,
			Elapsed: c.Inst.Elapsed,
			Possess: c.Possessed,
		}
		if def, ok := w.catalogs.Creatures.Get(c.Kind); ok {
			cs.Kind = def.Name
		}
		if c.Inst.Active != catalogs.InstNone {
			cs.Instance = w.instanceName(c.Inst.Active)
		}
		creatures = append(creatures, cs)
	}

	fired := make([]observerproto.FiredInstance, 0, len(w.tickFired))
	for _, f := range w.tickFired {
		fired = append(fired, observerproto.FiredInstance(f))
	}
	var patches []observerproto.SlabPatch
	for _, a := range w.tickAudits {
		patches = append(patches, observerproto.SlabPatch{Pos: a.Pos, Kind: a.To, Owner: int8(a.Owner)})
	}
	cmds := make([]observerproto.CommandOutcome, 0, len(recorded))
	for _, rc := range recorded {
		cmds = append(cmds, observerproto.CommandOutcome{ID: rc.Cmd.ID, Op: rc.Cmd.Op, Code: rc.Code})
	}
	stats := w.dungeonStats()

	for _, id := range sortedObserverIDs(w.observers) {
		c := w.observers[id]
		msg := observerproto.TickMsg{
			Type:            "TICK",
			ProtocolVersion: observerproto.Version,
			Tick:            nowTick,
			Digest:          digest,
			Creatures:       creatures,
			Fired:           fired,
			Commands:        cmds,
		}
		for _, d := range stats {
			if c.wants(d.Owner) {
				msg.Dungeons = append(msg.Dungeons, observerproto.DungeonState(d))
			}
		}
		for _, ev := range w.tickEvents {
			if c.wants(ev.Owner) {
				msg.Events = append(msg.Events, observerproto.EventInfo(ev))
			}
		}
		for _, ef := range w.tickEffects {
			if c.wants(ef.Owner) {
				msg.Effects = append(msg.Effects, observerproto.EffectInfo(ef))
			}
		}
		if !c.noMap {
			msg.Slabs = patches
		}
		b, err := c.marshal(msg)
		if err != nil {
			w.logf("observer %s: encode tick: %v", c.id, err)
			continue
		}
		sendLatest(c.tickOut, b)
	}
}
