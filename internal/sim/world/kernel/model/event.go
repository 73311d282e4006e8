package model

type EventKind string

const (
	EventAreaDiscovered EventKind = "AREA_DISCOVERED"
	EventRoomLost       EventKind = "ROOM_LOST"
	EventRoomAttacked   EventKind = "ROOM_ATTACKED"
	EventClaimed        EventKind = "CLAIMED"
	EventGoldLow        EventKind = "GOLD_LOW"
)

// Event is a map notification for one keeper. Nearby events of the same kind
// are refreshed rather than duplicated.
type Event struct {
	ID     uint64
	Kind   EventKind
	Owner  PlayerID
	Pos    SlabPos
	Target int

	CreatedAt uint64
	UpdatedAt uint64
	ExpiresAt uint64
	Refreshes int
}

type EffectKind string

const (
	EffectDigHit    EffectKind = "DIG_HIT"
	EffectSpangle   EffectKind = "SPANGLE"
	EffectExplosion EffectKind = "EXPLOSION"
	EffectGas       EffectKind = "GAS"
	EffectWallHit   EffectKind = "WALL_HIT"
	EffectRoomHit   EffectKind = "ROOM_HIT"
	EffectShot      EffectKind = "SHOT_FIRED"
	EffectSpell     EffectKind = "SPELL_CAST"
	EffectPrice     EffectKind = "PRICE"
)
