package catalogs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

var (
	ErrInvalidInstance = errors.New("invalid instance")
	ErrUnknownName     = errors.New("unknown name")
)

// InstanceID indexes the instance table. Zero is the empty instance.
type InstanceID int

const InstNone InstanceID = 0

// Well-known instance ids. The table in instances.json must list entries in
// this order; ids past the last named one are content-defined.
const (
	InstSwingWeaponSword InstanceID = iota + 1
	InstSwingWeaponFist
	InstEscape
	InstFireArrow
	InstFireball
	InstFireBomb
	InstFreeze
	InstArmour
	InstLightning
	InstRebound
	InstHeal
	InstPoisonCloud
	InstInvisibility
	InstTeleport
	InstSpeed
	InstSlow
	InstDrain
	InstFear
	InstMissile
	InstNavigatingMissile
	InstFlameBreath
	InstWind
	InstLight
	InstFly
	InstSight
	InstGrenade
	InstHailstorm
	InstWordOfPower
	InstFart
	InstDig
	InstPrettyPath
	InstDestroy
	InstTunnel
	InstCelebrateShort
	InstReinforce
	InstEat
	InstAttackRoomSlab
	InstDamageWall
	InstFirstPersonDig
	InstCastSpellGroup
	InstCastSpellDisease
	InstCastSpellChicken
	InstCastSpellTimeBomb
	InstMoan
	InstTortured
)

// FuncKind selects the handler an instance runs at its trigger tick.
type FuncKind int

const (
	FuncNull FuncKind = iota
	FuncAttackRoomSlab
	FuncCastSpell
	FuncFireShot
	FuncDamageWall
	FuncDestroy
	FuncDig
	FuncEat
	FuncFart
	FuncFirstPersonDoImpTask
	FuncPrettyPath
	FuncReinforce
	FuncTortured
	FuncTunnel
	FuncNone

	FuncKindCount
)

var funcNames = []struct {
	name string
	kind FuncKind
}{
	{"attack_room_slab", FuncAttackRoomSlab},
	{"creature_cast_spell", FuncCastSpell},
	{"creature_fire_shot", FuncFireShot},
	{"creature_damage_wall", FuncDamageWall},
	{"creature_destroy", FuncDestroy},
	{"creature_dig", FuncDig},
	{"creature_eat", FuncEat},
	{"creature_fart", FuncFart},
	{"first_person_do_imp_task", FuncFirstPersonDoImpTask},
	{"creature_pretty_path", FuncPrettyPath},
	{"creature_reinforce", FuncReinforce},
	{"creature_tortured", FuncTortured},
	{"creature_tunnel", FuncTunnel},
	{"none", FuncNone},
}

// ResolveFunc maps a handler name used in content files to its kind.
// An empty name is treated as "none".
func ResolveFunc(name string) (FuncKind, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return FuncNone, nil
	}
	for _, f := range funcNames {
		if f.name == n {
			return f.kind, nil
		}
	}
	return FuncNull, fmt.Errorf("handler %q: %w", name, ErrUnknownName)
}

func (k FuncKind) String() string {
	for _, f := range funcNames {
		if f.kind == k {
			return f.name
		}
	}
	return "null"
}

// HasHandler reports whether the kind dispatches to a handler at all.
func (k FuncKind) HasHandler() bool {
	return k > FuncNull && k < FuncNone
}

// InstanceInfo is the immutable descriptor of one instance kind.
type InstanceInfo struct {
	ID   InstanceID `json:"id"`
	Name string     `json:"name"`

	// Func is the handler name in the content file; Kind is resolved at load.
	Func      string   `json:"func"`
	Kind      FuncKind `json:"-"`
	FuncParam int      `json:"func_param"`

	Time       int `json:"time"`
	ActionTime int `json:"action_time"`
	ResetTime  int `json:"reset_time"`

	FPTime       int `json:"fp_time"`
	FPActionTime int `json:"fp_action_time"`
	FPResetTime  int `json:"fp_reset_time"`

	ForceVisibility int `json:"force_visibility,omitempty"`
}

type InstanceCatalog struct {
	Infos  []InstanceInfo
	byName map[string]InstanceID
	Digest string
}

// Count is the number of declared instance kinds, NONE included.
func (c *InstanceCatalog) Count() int {
	if c == nil {
		return 0
	}
	return len(c.Infos)
}

// Describe returns the descriptor for id. Out-of-range ids fail with
// ErrInvalidInstance; callers substitute Empty().
func (c *InstanceCatalog) Describe(id InstanceID) (InstanceInfo, error) {
	if c == nil || id < 0 || int(id) >= len(c.Infos) {
		return InstanceInfo{}, fmt.Errorf("instance %d: %w", id, ErrInvalidInstance)
	}
	return c.Infos[id], nil
}

// Empty is the descriptor substituted for failed lookups.
func (c *InstanceCatalog) Empty() InstanceInfo {
	if c == nil || len(c.Infos) == 0 {
		return InstanceInfo{Name: "NONE", Kind: FuncNone}
	}
	return c.Infos[InstNone]
}

// ResolveInstance maps a symbolic instance name to its id. NONE always resolves
// to the empty instance.
func (c *InstanceCatalog) ResolveInstance(name string) (InstanceID, error) {
	n := strings.ToUpper(strings.TrimSpace(name))
	if n == "" || n == "NONE" {
		return InstNone, nil
	}
	if c != nil {
		if id, ok := c.byName[n]; ok {
			return id, nil
		}
	}
	return InstNone, fmt.Errorf("instance %q: %w", name, ErrUnknownName)
}

// IsRangedWeapon is a closed membership test; it does not consult the table.
func IsRangedWeapon(id InstanceID) bool {
	switch id {
	case InstFireArrow, InstFireball, InstFireBomb, InstLightning, InstPoisonCloud,
		InstDrain, InstMissile, InstNavigatingMissile, InstHailstorm:
		return true
	}
	return false
}

func loadInstances(path string, out *InstanceCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := validateAgainst(schemaInstances, raw); err != nil {
		return fmt.Errorf("instances.json: %w", err)
	}
	out.Digest = sha256Hex(raw)

	var defs []InstanceInfo
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("instances.json: %w", err)
	}
	return out.init(defs)
}

// NewInstanceCatalog builds a catalog from in-memory definitions. It applies the
// same structural checks as Load.
func NewInstanceCatalog(defs []InstanceInfo) (*InstanceCatalog, error) {
	c := &InstanceCatalog{}
	if err := c.init(defs); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *InstanceCatalog) init(defs []InstanceInfo) error {
	if len(defs) == 0 {
		return fmt.Errorf("instances: empty table")
	}
	c.Infos = make([]InstanceInfo, len(defs))
	c.byName = make(map[string]InstanceID, len(defs))
	for i, d := range defs {
		if int(d.ID) != i {
			return fmt.Errorf("instances: entry %d has id %d", i, d.ID)
		}
		name := strings.ToUpper(strings.TrimSpace(d.Name))
		if name == "" {
			return fmt.Errorf("instances: entry %d: empty name", i)
		}
		if _, dup := c.byName[name]; dup {
			return fmt.Errorf("instances: duplicate name %s", name)
		}
		kind, err := ResolveFunc(d.Func)
		if err != nil {
			return fmt.Errorf("instances: %s: %w", name, err)
		}
		if d.ActionTime > d.Time || d.FPActionTime > d.FPTime {
			return fmt.Errorf("instances: %s: action time after completion", name)
		}
		d.Name = name
		d.Kind = kind
		c.Infos[i] = d
		c.byName[name] = d.ID
	}
	if c.Infos[InstNone].Kind.HasHandler() {
		return fmt.Errorf("instances: entry 0 must not have a handler")
	}
	return nil
}
