package catalogs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Catalogs is loaded once at process start and never mutated afterwards.
type Catalogs struct {
	Instances InstanceCatalog
	Slabs     SlabCatalog
	Rooms     RoomCatalog
	Spells    SpellCatalog
	Shots     ShotCatalog
	Traps     TrapCatalog
	Creatures CreatureCatalog
}

// SlabKind enumerates the terrain kinds the engine knows how to treat.
type SlabKind uint8

const (
	SlabRock SlabKind = iota
	SlabGold
	SlabEarth
	SlabTorchDirt
	SlabWall
	SlabDamagedWall
	SlabPath
	SlabClaimed
	SlabLava
	SlabWater
	SlabGems
	SlabEntrance
	SlabTreasure
	SlabLair
	SlabHatchery
	SlabLibrary
	SlabTraining
	SlabWorkshop
	SlabPrison
	SlabTorture
	SlabDungeonHeart
	SlabGuardPost

	SlabKindCount
)

var slabNames = [SlabKindCount]string{
	"ROCK", "GOLD", "EARTH", "TORCH_DIRT", "WALL", "DAMAGED_WALL", "PATH", "CLAIMED",
	"LAVA", "WATER", "GEMS", "ENTRANCE", "TREASURE", "LAIR", "HATCHERY", "LIBRARY",
	"TRAINING", "WORKSHOP", "PRISON", "TORTURE", "DUNGEON_HEART", "GUARD_POST",
}

func (k SlabKind) String() string {
	if k < SlabKindCount {
		return slabNames[k]
	}
	return fmt.Sprintf("SLAB_%d", int(k))
}

// SlabCategory groups slab kinds for scoring and claim rules.
type SlabCategory string

const (
	SlabCatUnclaimed     SlabCategory = "UNCLAIMED"
	SlabCatFriableDirt   SlabCategory = "FRIABLE_DIRT"
	SlabCatFortifiedWall SlabCategory = "FORTIFIED_WALL"
	SlabCatGold          SlabCategory = "GOLD"
	SlabCatClaimed       SlabCategory = "CLAIMED_GROUND"
	SlabCatRoomInterior  SlabCategory = "ROOM_INTERIOR"
	SlabCatObstacle      SlabCategory = "OBSTACLE"
)

type SlabDef struct {
	Name     string       `json:"name"`
	Health   int          `json:"health"`
	Category SlabCategory `json:"category"`
	Solid    bool         `json:"solid"`
	Diggable bool         `json:"diggable"`
}

type SlabCatalog struct {
	Defs   [SlabKindCount]SlabDef
	Digest string
}

func (c *SlabCatalog) Def(k SlabKind) SlabDef {
	if k >= SlabKindCount {
		return SlabDef{Name: k.String(), Category: SlabCatObstacle, Solid: true}
	}
	return c.Defs[k]
}

// SlabKindByName resolves a slab name from content files.
func SlabKindByName(name string) (SlabKind, bool) {
	n := strings.ToUpper(strings.TrimSpace(name))
	for i, s := range slabNames {
		if s == n {
			return SlabKind(i), true
		}
	}
	return 0, false
}

// RoomKind enumerates room functions. RoomNone marks slabs outside any room.
type RoomKind uint8

const (
	RoomNone RoomKind = iota
	RoomEntrance
	RoomTreasure
	RoomLair
	RoomHatchery
	RoomLibrary
	RoomTraining
	RoomWorkshop
	RoomPrison
	RoomTorture
	RoomDungeonHeart
	RoomGuardPost

	RoomKindCount
)

var roomNames = [RoomKindCount]string{
	"NONE", "ENTRANCE", "TREASURE", "LAIR", "HATCHERY", "LIBRARY", "TRAINING",
	"WORKSHOP", "PRISON", "TORTURE", "DUNGEON_HEART", "GUARD_POST",
}

func (k RoomKind) String() string {
	if k < RoomKindCount {
		return roomNames[k]
	}
	return fmt.Sprintf("ROOM_%d", int(k))
}

type RoomDef struct {
	Name                   string   `json:"name"`
	Slab                   string   `json:"slab"`
	SlabKind               SlabKind `json:"-"`
	ClaimResistancePerSlab int      `json:"claim_resistance_per_slab"`
	StoragePerSlab         int      `json:"storage_per_slab"`
}

type RoomCatalog struct {
	Defs   [RoomKindCount]RoomDef
	Digest string
}

func (c *RoomCatalog) Def(k RoomKind) RoomDef {
	if k >= RoomKindCount {
		return RoomDef{}
	}
	return c.Defs[k]
}

// RoomKindForSlab returns the room kind built from slab kind k, if any.
func (c *RoomCatalog) RoomKindForSlab(k SlabKind) (RoomKind, bool) {
	for i := RoomKind(1); i < RoomKindCount; i++ {
		if c.Defs[i].Name != "" && c.Defs[i].SlabKind == k {
			return i, true
		}
	}
	return RoomNone, false
}

type SpellDef struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	CastAtThing bool   `json:"cast_at_thing"`
	Shot        string `json:"shot,omitempty"`
	Duration    int    `json:"duration,omitempty"`
}

type SpellCatalog struct {
	ByID   map[int]SpellDef
	Digest string
}

func (c *SpellCatalog) Get(id int) (SpellDef, bool) {
	d, ok := c.ByID[id]
	return d, ok
}

type ShotDef struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Damage int    `json:"damage"`
	Speed  int    `json:"speed"`
	Dig    bool   `json:"dig,omitempty"`
}

type ShotCatalog struct {
	ByID   map[int]ShotDef
	byName map[string]int
	Digest string
}

func (c *ShotCatalog) Get(id int) (ShotDef, bool) {
	d, ok := c.ByID[id]
	return d, ok
}

func (c *ShotCatalog) IDByName(name string) (int, bool) {
	id, ok := c.byName[strings.ToUpper(strings.TrimSpace(name))]
	return id, ok
}

// TrapDef is a placeable trap model. SellValue is refunded off-map when the
// owner sells it.
type TrapDef struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	SellValue int64  `json:"sell_value"`
}

type TrapCatalog struct {
	ByID   map[int]TrapDef
	byName map[string]int
	Digest string
}

func (c *TrapCatalog) Get(id int) (TrapDef, bool) {
	d, ok := c.ByID[id]
	return d, ok
}

func (c *TrapCatalog) IDByName(name string) (int, bool) {
	id, ok := c.byName[strings.ToUpper(strings.TrimSpace(name))]
	return id, ok
}

type LearnedInstance struct {
	Instance string `json:"instance"`
	Level    int    `json:"level"`
}

type CreatureDef struct {
	Name     string            `json:"name"`
	Health   int               `json:"health"`
	DigSkill int               `json:"dig_skill"`
	Learned  []LearnedInstance `json:"learned,omitempty"`
}

type CreatureCatalog struct {
	Defs   []CreatureDef
	byName map[string]int
	Digest string
}

// Get returns the creature kind definition; kind indexes Defs.
func (c *CreatureCatalog) Get(kind int) (CreatureDef, bool) {
	if kind < 0 || kind >= len(c.Defs) {
		return CreatureDef{}, false
	}
	return c.Defs[kind], true
}

func (c *CreatureCatalog) KindByName(name string) (int, bool) {
	k, ok := c.byName[strings.ToUpper(strings.TrimSpace(name))]
	return k, ok
}

func Load(configDir string) (*Catalogs, error) {
	var c Catalogs

	if err := loadInstances(filepath.Join(configDir, "instances.json"), &c.Instances); err != nil {
		return nil, err
	}
	if err := loadSlabs(filepath.Join(configDir, "slabs.json"), &c.Slabs); err != nil {
		return nil, err
	}
	if err := loadRooms(filepath.Join(configDir, "rooms.json"), &c.Rooms); err != nil {
		return nil, err
	}
	if err := loadSpells(filepath.Join(configDir, "spells.json"), &c.Spells); err != nil {
		return nil, err
	}
	if err := loadShots(filepath.Join(configDir, "shots.json"), &c.Shots); err != nil {
		return nil, err
	}
	if err := loadTraps(filepath.Join(configDir, "traps.json"), &c.Traps); err != nil {
		return nil, err
	}
	if err := loadCreatures(filepath.Join(configDir, "creatures.json"), &c.Instances, &c.Creatures); err != nil {
		return nil, err
	}
	return &c, nil
}

// Digests lists the content digest of every catalog, keyed by file stem.
func (c *Catalogs) Digests() map[string]string {
	return map[string]string{
		"instances": c.Instances.Digest,
		"slabs":     c.Slabs.Digest,
		"rooms":     c.Rooms.Digest,
		"spells":    c.Spells.Digest,
		"shots":     c.Shots.Digest,
		"traps":     c.Traps.Digest,
		"creatures": c.Creatures.Digest,
	}
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func readValidated(path, schema string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := validateAgainst(schema, raw); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return raw, nil
}

func loadSlabs(path string, out *SlabCatalog) error {
	raw, err := readValidated(path, schemaSlabs)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	var defs []SlabDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("slabs.json: %w", err)
	}
	var seen [SlabKindCount]bool
	for _, d := range defs {
		k, ok := SlabKindByName(d.Name)
		if !ok {
			return fmt.Errorf("slabs.json: unknown slab %q", d.Name)
		}
		d.Name = slabNames[k]
		out.Defs[k] = d
		seen[k] = true
	}
	for k, ok := range seen {
		if !ok {
			return fmt.Errorf("slabs.json: missing slab %s", slabNames[k])
		}
	}
	return nil
}

func loadRooms(path string, out *RoomCatalog) error {
	raw, err := readValidated(path, schemaRooms)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	var defs []RoomDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("rooms.json: %w", err)
	}
	for _, d := range defs {
		n := strings.ToUpper(strings.TrimSpace(d.Name))
		kind := RoomNone
		for i, rn := range roomNames {
			if rn == n {
				kind = RoomKind(i)
			}
		}
		if kind == RoomNone {
			return fmt.Errorf("rooms.json: unknown room %q", d.Name)
		}
		sk, ok := SlabKindByName(d.Slab)
		if !ok {
			return fmt.Errorf("rooms.json: %s: unknown slab %q", n, d.Slab)
		}
		d.Name = n
		d.SlabKind = sk
		if d.ClaimResistancePerSlab <= 0 {
			d.ClaimResistancePerSlab = 1
		}
		out.Defs[kind] = d
	}
	out.Defs[RoomNone] = RoomDef{Name: "NONE"}
	return nil
}

func loadSpells(path string, out *SpellCatalog) error {
	raw, err := readValidated(path, schemaSpells)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	var defs []SpellDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("spells.json: %w", err)
	}
	out.ByID = make(map[int]SpellDef, len(defs))
	for _, d := range defs {
		if _, dup := out.ByID[d.ID]; dup {
			return fmt.Errorf("spells.json: duplicate id %d", d.ID)
		}
		out.ByID[d.ID] = d
	}
	return nil
}

func loadShots(path string, out *ShotCatalog) error {
	raw, err := readValidated(path, schemaShots)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	var defs []ShotDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("shots.json: %w", err)
	}
	out.ByID = make(map[int]ShotDef, len(defs))
	out.byName = make(map[string]int, len(defs))
	for _, d := range defs {
		if _, dup := out.ByID[d.ID]; dup {
			return fmt.Errorf("shots.json: duplicate id %d", d.ID)
		}
		d.Name = strings.ToUpper(strings.TrimSpace(d.Name))
		out.ByID[d.ID] = d
		out.byName[d.Name] = d.ID
	}
	return nil
}

func loadTraps(path string, out *TrapCatalog) error {
	raw, err := readValidated(path, schemaTraps)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	var defs []TrapDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("traps.json: %w", err)
	}
	out.ByID = make(map[int]TrapDef, len(defs))
	out.byName = make(map[string]int, len(defs))
	for _, d := range defs {
		d.Name = strings.ToUpper(strings.TrimSpace(d.Name))
		if _, dup := out.ByID[d.ID]; dup {
			return fmt.Errorf("traps.json: duplicate id %d", d.ID)
		}
		if _, dup := out.byName[d.Name]; dup {
			return fmt.Errorf("traps.json: duplicate trap %s", d.Name)
		}
		out.ByID[d.ID] = d
		out.byName[d.Name] = d.ID
	}
	return nil
}

func loadCreatures(path string, insts *InstanceCatalog, out *CreatureCatalog) error {
	raw, err := readValidated(path, schemaCreatures)
	if err != nil {
		return err
	}
	out.Digest = sha256Hex(raw)

	var defs []CreatureDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("creatures.json: %w", err)
	}
	out.Defs = make([]CreatureDef, 0, len(defs))
	out.byName = make(map[string]int, len(defs))
	for _, d := range defs {
		d.Name = strings.ToUpper(strings.TrimSpace(d.Name))
		if _, dup := out.byName[d.Name]; dup {
			return fmt.Errorf("creatures.json: duplicate creature %s", d.Name)
		}
		for _, l := range d.Learned {
			if _, err := insts.ResolveInstance(l.Instance); err != nil {
				return fmt.Errorf("creatures.json: %s: %w", d.Name, err)
			}
		}
		out.byName[d.Name] = len(out.Defs)
		out.Defs = append(out.Defs, d)
	}
	return nil
}
