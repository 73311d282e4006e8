package world

import (
	"errors"
	"fmt"
	"log"
	"os"
	"sync/atomic"

	"dungeonsim.ai/internal/persistence/snapshot"
	"dungeonsim.ai/internal/sim/catalogs"
	"dungeonsim.ai/internal/sim/world/kernel/model"
	"dungeonsim.ai/internal/sim/world/terrain/store"
)

// World is a single-threaded authoritative simulation.
// All state must be accessed only from the world loop goroutine.
type World struct {
	cfg      WorldConfig
	catalogs *catalogs.Catalogs
	logger   *log.Logger

	tick    atomic.Uint64
	metrics atomic.Value

	slabs     *store.SlabMap
	rooms     map[RoomID]*Room
	dungeons  []*Dungeon
	creatures map[ThingID]*Creature
	things    map[ThingID]*Thing
	hoards    map[SlabPos]ThingID
	explored  []*exploredMap
	events    []*model.Event

	nextThing uint32
	nextRoom  uint32
	nextEvent uint64

	commands      chan CommandEnvelope
	admin         chan adminSnapshotReq
	observerJoin  chan ObserverJoinRequest
	observerLeave chan string
	stop          chan struct{}

	observers map[string]*observerClient

	// Optional sinks (may be nil). Implemented in internal/persistence/*.
	tickLogger   TickLogger
	auditLogger  AuditLogger
	snapshotSink chan<- snapshot.SnapshotV1

	instEnv *instanceEnv
	ecoEnv  *economyEnv

	// Per-tick buffers, reset at the start of each step.
	curActor    ThingID
	tickFired   []FiredInstance
	tickEvents  []EventRecord
	tickEffects []EffectRecord
	tickAudits  []AuditEntry
	tickSounds  int
}

// New generates a fresh map for cfg. Use ImportSnapshot to resume instead.
func New(cfg WorldConfig, cats *catalogs.Catalogs) (*World, error) {
	if cats == nil {
		return nil, errors.New("nil catalogs")
	}
	cfg.applyDefaults()
	if cfg.Players > model.MaxPlayers {
		return nil, fmt.Errorf("players=%d exceeds %d", cfg.Players, model.MaxPlayers)
	}
	w := &World{
		cfg:           cfg,
		catalogs:      cats,
		logger:        log.New(os.Stderr, "[world] ", log.LstdFlags),
		commands:      make(chan CommandEnvelope, 1024),
		admin:         make(chan adminSnapshotReq, 16),
		observerJoin:  make(chan ObserverJoinRequest, 16),
		observerLeave: make(chan string, 16),
		stop:          make(chan struct{}),
		observers:     map[string]*observerClient{},
	}
	w.instEnv = &instanceEnv{w: w}
	w.ecoEnv = &economyEnv{w: w}
	w.resetState(store.NewSlabMap(cfg.Width, cfg.Height, &cats.Slabs))
	if err := w.generate(); err != nil {
		return nil, err
	}
	return w, nil
}

// resetState drops all simulation state and installs m as the terrain.
func (w *World) resetState(m *store.SlabMap) {
	w.slabs = m
	w.slabs.SetOnChange(w.auditSlabChange)
	w.rooms = map[RoomID]*Room{}
	w.dungeons = nil
	w.creatures = map[ThingID]*Creature{}
	w.things = map[ThingID]*Thing{}
	w.hoards = map[SlabPos]ThingID{}
	w.explored = nil
	w.events = nil
	w.nextThing = 0
	w.nextRoom = 0
	w.nextEvent = 0
}

func (w *World) SetLogger(l *log.Logger) {
	if l != nil {
		w.logger = l
	}
}

func (w *World) logf(format string, args ...any) {
	if w.logger != nil {
		w.logger.Printf(format, args...)
	}
}

func (w *World) Config() WorldConfig          { return w.cfg }
func (w *World) Catalogs() *catalogs.Catalogs { return w.catalogs }
func (w *World) dungeon(owner PlayerID) *Dungeon {
	if owner < 0 || int(owner) >= len(w.dungeons) {
		return nil
	}
	return w.dungeons[owner]
}

func (w *World) allocThingID() ThingID {
	w.nextThing++
	return ThingID(w.nextThing)
}
