package model

type ThingClass uint8

const (
	ClassNone ThingClass = iota
	ClassCreature
	ClassObject
	ClassTrap
	ClassShot
	ClassEffect
)

func (c ThingClass) String() string {
	switch c {
	case ClassCreature:
		return "CREATURE"
	case ClassObject:
		return "OBJECT"
	case ClassTrap:
		return "TRAP"
	case ClassShot:
		return "SHOT"
	case ClassEffect:
		return "EFFECT"
	default:
		return "NONE"
	}
}

// Object models.
const (
	ObjectGoldHoard  = 1
	ObjectSpecialBox = 2
)

// Shot hit types select the damage and targeting profile of a shot.
const (
	HitTypeNone               = 0
	HitTypeCrtrsNObjcts       = 1
	HitTypeCrtrsOnly          = 2
	HitTypeCrtrsNObjctsNotOwn = 3
	HitTypeCrtrsOnlyNotOwn    = 4
)

// Thing is any non-creature entity: objects, traps, shots and effects.
type Thing struct {
	ID    ThingID
	Class ThingClass
	Model int
	Owner PlayerID
	Pos   SlabPos

	Gold     int64
	HitType  int
	TargetID ThingID

	CreatedTick uint64
}
