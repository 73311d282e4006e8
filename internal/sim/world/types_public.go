package world

import (
	"dungeonsim.ai/internal/protocol"
	modelpkg "dungeonsim.ai/internal/sim/world/kernel/model"
)

type Creature = modelpkg.Creature
type Dungeon = modelpkg.Dungeon
type Room = modelpkg.Room
type Thing = modelpkg.Thing
type SlabPos = modelpkg.SlabPos
type PlayerID = modelpkg.PlayerID
type ThingID = modelpkg.ThingID
type RoomID = modelpkg.RoomID

// CommandEnvelope carries one operator command into the world loop. Resp is
// optional and must be buffered.
type CommandEnvelope struct {
	Cmd  protocol.CommandReq
	Resp chan protocol.CommandResult
}

// ObserverJoinRequest registers a read-only observer session that receives
// one tick frame per tick (TickOut) and map data (DataOut).
//
// All observer state is maintained by the world loop goroutine.
type ObserverJoinRequest struct {
	SessionID string
	TickOut   chan []byte
	DataOut   chan []byte

	// Encode turns a frame into wire bytes; the transport picks JSON or msgpack.
	Encode func(v any) ([]byte, error)

	Owners []int
	NoMap  bool
}

type TickLogger interface {
	WriteTick(entry TickLogEntry) error
}

type AuditLogger interface {
	WriteAudit(entry AuditEntry) error
}

type TickLogEntry struct {
	Tick     uint64            `json:"tick"`
	Commands []RecordedCommand `json:"commands,omitempty"`
	Fired    []FiredInstance   `json:"fired,omitempty"`
	Events   []EventRecord     `json:"events,omitempty"`
	Dungeons []DungeonStat     `json:"dungeons,omitempty"`
	Digest   string            `json:"digest"`
}

// RecordedCommand is a command as applied, with the result code it produced.
type RecordedCommand struct {
	Cmd  protocol.CommandReq `json:"cmd"`
	Code string              `json:"code,omitempty"`
	Ref  int64               `json:"ref,omitempty"`
}

type FiredInstance struct {
	Creature uint32 `json:"creature"`
	Instance string `json:"instance"`
	Outcome  string `json:"outcome"`
}

type EventRecord struct {
	ID        uint64 `json:"id"`
	Kind      string `json:"kind"`
	Owner     int    `json:"owner"`
	Pos       [2]int `json:"pos"`
	Refreshed bool   `json:"refreshed,omitempty"`
}

type EffectRecord struct {
	Kind    string `json:"kind"`
	Owner   int    `json:"owner"`
	Pos     [2]int `json:"pos"`
	HitType int    `json:"hit_type,omitempty"`
	Model   int    `json:"model,omitempty"`
}

// DungeonStat is the per-keeper summary written on area-score ticks.
type DungeonStat struct {
	Owner        int   `json:"owner"`
	Gold         int64 `json:"gold"`
	OffmapGold   int64 `json:"offmap_gold"`
	TotalArea    int   `json:"total_area"`
	RoomArea     int   `json:"room_area"`
	GoldMined    int64 `json:"gold_mined"`
	AreaClaimed  int   `json:"area_claimed"`
	RoomsLost    int   `json:"rooms_lost"`
	RoomsClaimed int   `json:"rooms_claimed"`
}

// AuditEntry records one terrain change.
type AuditEntry struct {
	Tick   uint64 `json:"tick"`
	Actor  uint32 `json:"actor"`
	Action string `json:"action"` // e.g. "SET_SLAB"
	Pos    [2]int `json:"pos"`
	From   uint8  `json:"from"`
	To     uint8  `json:"to"`
	Owner  int    `json:"owner"`
	Reason string `json:"reason,omitempty"`
}
