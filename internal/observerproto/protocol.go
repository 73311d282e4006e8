package observerproto

// Version is the observer protocol version (separate from the command protocol).
const Version = "1.0"

// Frame encodings.
const (
	FormatJSON    = "json"
	FormatMsgpack = "msgpack"
)

// Client -> Server. First message on the observer WS connection, and can be re-sent to update settings.
type SubscribeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`

	// Owners filters events and effects to these keepers; empty means all.
	Owners []int `json:"owners,omitempty"`
	// NoMap suppresses the initial MAP message and slab patches.
	NoMap bool `json:"no_map,omitempty"`
}

// HTTP response for GET /v1/observer/bootstrap.
type BootstrapResponse struct {
	ProtocolVersion string            `json:"protocol_version"`
	RunID           string            `json:"run_id"`
	Tick            uint64            `json:"tick"`
	WorldParams     WorldParams       `json:"world_params"`
	SlabPalette     []string          `json:"slab_palette"`
	Instances       []string          `json:"instances"`
	CatalogDigests  map[string]string `json:"catalog_digests"`
}

type WorldParams struct {
	TickRateHz int   `json:"tick_rate_hz"`
	Width      int   `json:"width"`
	Height     int   `json:"height"`
	Players    int   `json:"players"`
	Seed       int64 `json:"seed"`
}

// Server -> Client. Full slab grid, row-major, sent once after SUBSCRIBE.
type MapMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	Tick            uint64  `json:"tick"`
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	Kinds           []uint8 `json:"kinds"`
	Owners          []int8  `json:"owners"`
}

// Server -> Client. Sent every tick.
type TickMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Tick            uint64 `json:"tick"`
	Digest          string `json:"digest"`

	Creatures []CreatureState  `json:"creatures"`
	Dungeons  []DungeonState   `json:"dungeons"`
	Fired     []FiredInstance  `json:"fired,omitempty"`
	Events    []EventInfo      `json:"events,omitempty"`
	Effects   []EffectInfo     `json:"effects,omitempty"`
	Slabs     []SlabPatch      `json:"slabs,omitempty"`
	Commands  []CommandOutcome `json:"commands,omitempty"`
}

type CreatureState struct {
	ID     uint32 `json:"id"`
	Kind   string `json:"kind"`
	Owner  int    `json:"owner"`
	Pos    [2]int `json:"pos"`
	Level  int    `json:"level"`
	Health int    `json:"health"`
	Gold   int64  `json:"gold,omitempty"`

	Instance string `json:"instance,omitempty"`
	Elapsed  int    `json:"elapsed,omitempty"`
	Possess  bool   `json:"possessed,omitempty"`
}

type DungeonState struct {
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

type FiredInstance struct {
	Creature uint32 `json:"creature"`
	Instance string `json:"instance"`
	Outcome  string `json:"outcome"`
}

type EventInfo struct {
	ID        uint64 `json:"id"`
	Kind      string `json:"kind"`
	Owner     int    `json:"owner"`
	Pos       [2]int `json:"pos"`
	Refreshed bool   `json:"refreshed,omitempty"`
}

type EffectInfo struct {
	Kind    string `json:"kind"`
	Owner   int    `json:"owner"`
	Pos     [2]int `json:"pos"`
	HitType int    `json:"hit_type,omitempty"`
	Model   int    `json:"model,omitempty"`
}

type SlabPatch struct {
	Pos   [2]int `json:"pos"`
	Kind  uint8  `json:"kind"`
	Owner int8   `json:"owner"`
}

type CommandOutcome struct {
	ID   string `json:"id"`
	Op   string `json:"op"`
	Code string `json:"code,omitempty"`
}
