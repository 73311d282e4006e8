package model

import "dungeonsim.ai/internal/sim/catalogs"

// MaxTasks bounds the per-dungeon dig task list.
const MaxTasks = 300

type TaskKind uint8

const (
	TaskNone TaskKind = iota
	TaskDigEarth
	TaskMineGold
)

func (k TaskKind) String() string {
	switch k {
	case TaskDigEarth:
		return "DIG_EARTH"
	case TaskMineGold:
		return "MINE_GOLD"
	default:
		return "NONE"
	}
}

type MapTask struct {
	Kind   TaskKind
	Target SlabPos
}

type LevelStats struct {
	GoldMined          int64
	TerritoryLost      int
	TerritoryDestroyed int
	AreaClaimed        int
	RoomsDestroyed     int
	RoomsLost          int
	RoomsClaimed       int
}

// Dungeon is the per-player economy record.
type Dungeon struct {
	Owner PlayerID

	TotalMoneyOwned  int64
	OffmapMoneyOwned int64

	TotalArea      int
	RoomManageArea int

	Stats LevelStats
	Tasks []MapTask

	// RoomHeads holds the first room of each kind in the owner chain.
	RoomHeads [catalogs.RoomKindCount]RoomID
}

func NewDungeon(owner PlayerID) *Dungeon {
	return &Dungeon{Owner: owner, Tasks: make([]MapTask, MaxTasks)}
}

func (d *Dungeon) Task(idx int) (MapTask, bool) {
	if d == nil || idx < 0 || idx >= len(d.Tasks) || d.Tasks[idx].Kind == TaskNone {
		return MapTask{}, false
	}
	return d.Tasks[idx], true
}

// AddTask stores a task in the first free slot and returns its index.
func (d *Dungeon) AddTask(t MapTask) (int, bool) {
	for i := range d.Tasks {
		if d.Tasks[i].Kind == TaskNone {
			d.Tasks[i] = t
			return i, true
		}
	}
	return -1, false
}

func (d *Dungeon) RemoveTask(idx int) {
	if d == nil || idx < 0 || idx >= len(d.Tasks) {
		return
	}
	d.Tasks[idx] = MapTask{}
}
