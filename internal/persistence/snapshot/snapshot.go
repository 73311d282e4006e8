package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

const Version = 1

type Header struct {
	Version int    `json:"version"`
	RunID   string `json:"run_id"`
	Tick    uint64 `json:"tick"`
}

type SnapshotV1 struct {
	Header Header `json:"header"`

	Seed     int64 `json:"seed"`
	TickRate int   `json:"tick_rate_hz"`
	Width    int   `json:"width"`
	Height   int   `json:"height"`
	Players  int   `json:"players"`

	// CatalogDigests pins the content the snapshot was taken against.
	CatalogDigests map[string]string `json:"catalog_digests,omitempty"`

	Slabs     []SlabV1     `json:"slabs"`
	Rooms     []RoomV1     `json:"rooms"`
	Dungeons  []DungeonV1  `json:"dungeons"`
	Creatures []CreatureV1 `json:"creatures"`
	Things    []ThingV1    `json:"things,omitempty"`
	Events    []EventV1    `json:"events,omitempty"`

	// Explored holds one packed bitmap per player, row-major.
	Explored [][]uint64 `json:"explored,omitempty"`

	Counters CountersV1 `json:"counters"`
}

type CountersV1 struct {
	NextThing uint64 `json:"next_thing"`
	NextRoom  uint64 `json:"next_room"`
	NextEvent uint64 `json:"next_event"`
}

type SlabV1 struct {
	Kind       uint8  `json:"kind"`
	Health     int    `json:"health"`
	Owner      int8   `json:"owner"`
	RoomID     uint32 `json:"room_id,omitempty"`
	NextInRoom int32  `json:"next_in_room"`
}

type RoomV1 struct {
	ID              uint32 `json:"id"`
	Kind            uint8  `json:"kind"`
	Owner           int8   `json:"owner"`
	ClaimResistance int    `json:"claim_resistance"`
	FirstSlab       int    `json:"first_slab"`
	SlabCount       int    `json:"slab_count"`
	Central         [2]int `json:"central"`
	NextOfOwner     uint32 `json:"next_of_owner,omitempty"`
	StorageCapacity int64  `json:"storage_capacity"`
	StorageUsed     int64  `json:"storage_used"`
}

type DungeonV1 struct {
	Owner            int8     `json:"owner"`
	TotalMoneyOwned  int64    `json:"total_money_owned"`
	OffmapMoneyOwned int64    `json:"offmap_money_owned"`
	TotalArea        int      `json:"total_area"`
	RoomManageArea   int      `json:"room_manage_area"`
	Stats            StatsV1  `json:"stats"`
	Tasks            []TaskV1 `json:"tasks,omitempty"`
	RoomHeads        []uint32 `json:"room_heads"`
}

type StatsV1 struct {
	GoldMined          int64 `json:"gold_mined"`
	TerritoryLost      int   `json:"territory_lost"`
	TerritoryDestroyed int   `json:"territory_destroyed"`
	AreaClaimed        int   `json:"area_claimed"`
	RoomsDestroyed     int   `json:"rooms_destroyed"`
	RoomsLost          int   `json:"rooms_lost"`
	RoomsClaimed       int   `json:"rooms_claimed"`
}

// TaskV1 keeps its slot index so creature task references survive a resume.
type TaskV1 struct {
	Slot   int    `json:"slot"`
	Kind   uint8  `json:"kind"`
	Target [2]int `json:"target"`
}

type CreatureV1 struct {
	ID          uint32 `json:"id"`
	Kind        int    `json:"kind"`
	Owner       int8   `json:"owner"`
	Pos         [2]int `json:"pos"`
	Level       int    `json:"level"`
	Health      int    `json:"health"`
	MaxHealth   int    `json:"max_health"`
	GoldCarried int64  `json:"gold_carried"`
	Possessed   bool   `json:"possessed,omitempty"`

	CombatTarget      uint32 `json:"combat_target,omitempty"`
	TargetPos         [2]int `json:"target_pos"`
	DigTask           int    `json:"dig_task"`
	DigTarget         [2]int `json:"dig_target"`
	DamageWallTarget  [2]int `json:"damage_wall_target"`
	TunnelTarget      [2]int `json:"tunnel_target"`
	ReinforceProgress int    `json:"reinforce_progress,omitempty"`
	HungerAmount      int    `json:"hunger_amount,omitempty"`
	HungerLevel       int    `json:"hunger_level,omitempty"`

	Instance  InstanceStateV1 `json:"instance"`
	Instances []uint8         `json:"instances"`
}

type InstanceStateV1 struct {
	Active             int      `json:"active"`
	Elapsed            int      `json:"elapsed"`
	TriggerTick        int      `json:"trigger_tick"`
	CompletionTick     int      `json:"completion_tick"`
	InterruptRequested bool     `json:"interrupt_requested,omitempty"`
	LastUsedTick       []uint64 `json:"last_used_tick"`
}

type ThingV1 struct {
	ID          uint32 `json:"id"`
	Class       uint8  `json:"class"`
	Model       int    `json:"model"`
	Owner       int8   `json:"owner"`
	Pos         [2]int `json:"pos"`
	Gold        int64  `json:"gold,omitempty"`
	HitType     int    `json:"hit_type,omitempty"`
	TargetID    uint32 `json:"target_id,omitempty"`
	CreatedTick uint64 `json:"created_tick"`
}

type EventV1 struct {
	ID        uint64 `json:"id"`
	Kind      string `json:"kind"`
	Owner     int8   `json:"owner"`
	Pos       [2]int `json:"pos"`
	Target    int    `json:"target,omitempty"`
	CreatedAt uint64 `json:"created_at"`
	UpdatedAt uint64 `json:"updated_at"`
	ExpiresAt uint64 `json:"expires_at"`
	Refreshes int    `json:"refreshes,omitempty"`
}

func WriteSnapshot(path string, snap SnapshotV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	defer enc.Close()

	bw := bufio.NewWriterSize(enc, 256*1024)
	defer bw.Flush()

	if snap.Header.Version == 0 {
		snap.Header.Version = Version
	}
	hb, _ := json.Marshal(snap.Header)
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}

	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}
	return nil
}

// ReadHeader decodes only the leading JSON line.
func ReadHeader(path string) (Header, error) {
	var h Header
	f, err := os.Open(path)
	if err != nil {
		return h, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return h, err
	}
	defer dec.Close()

	line, err := bufio.NewReader(dec).ReadBytes('\n')
	if err != nil {
		return h, fmt.Errorf("read header: %w", err)
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return h, fmt.Errorf("decode header: %w", err)
	}
	return h, nil
}

func ReadSnapshot(path string) (SnapshotV1, error) {
	var snap SnapshotV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)

	// The gob body repeats the header.
	_, _ = br.ReadBytes('\n')

	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	if snap.Header.Version != Version {
		return snap, fmt.Errorf("snapshot version %d not supported", snap.Header.Version)
	}
	return snap, nil
}
