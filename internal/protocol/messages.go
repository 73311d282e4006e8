package protocol

// Command operations. Commands are applied by the world loop at the start of
// the tick after they arrive, in arrival order.
const (
	OpSpawn           = "SPAWN"
	OpStartInstance   = "START_INSTANCE"
	OpInterrupt       = "INTERRUPT"
	OpMarkDig         = "MARK_DIG"
	OpAssignDig       = "ASSIGN_DIG"
	OpSetTarget       = "SET_TARGET"
	OpSetWallTarget   = "SET_WALL_TARGET"
	OpSetTunnelTarget = "SET_TUNNEL_TARGET"
	OpMove            = "MOVE"
	OpPossess         = "POSSESS"
	OpFeed            = "FEED"
	OpAddGold         = "ADD_GOLD"
	OpTakeGold        = "TAKE_GOLD"
	OpPlaceTrap       = "PLACE_TRAP"
	OpSellTrap        = "SELL_TRAP"
)

// COMMAND (operator -> server)
type CommandMsg struct {
	Type            string       `json:"type"`
	ProtocolVersion string       `json:"protocol_version"`
	Commands        []CommandReq `json:"commands"`
}

// CommandReq is one scripted world change. Fields not used by Op are ignored.
type CommandReq struct {
	ID string `json:"id"`
	Op string `json:"op"`

	Creature uint32 `json:"creature,omitempty"`
	Owner    int    `json:"owner,omitempty"`
	Kind     string `json:"kind,omitempty"`
	Instance string `json:"instance,omitempty"`
	Pos      [2]int `json:"pos,omitempty"`
	Target   uint32 `json:"target,omitempty"`
	Slot     int    `json:"slot,omitempty"`
	Amount   int64  `json:"amount,omitempty"`
	Flag     bool   `json:"flag,omitempty"`
}

// COMMAND_RESULT (server -> operator)
type CommandResult struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ID              string `json:"id"`
	OK              bool   `json:"ok"`
	Code            string `json:"code,omitempty"`
	Message         string `json:"message,omitempty"`
	Tick            uint64 `json:"tick"`

	// Ref carries the id the command produced: a creature id for SPAWN, a
	// task slot for MARK_DIG, the gold moved for gold commands.
	Ref int64 `json:"ref,omitempty"`
}
