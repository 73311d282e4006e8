package economy

import (
	"errors"
	"fmt"

	"dungeonsim.ai/internal/sim/catalogs"
	"dungeonsim.ai/internal/sim/world/kernel/model"
	"dungeonsim.ai/internal/sim/world/terrain/store"
)

var (
	ErrNoDungeon     = errors.New("player has no dungeon")
	ErrNotEnoughGold = errors.New("not enough gold")
)

type Env interface {
	Slabs() *store.SlabMap
	Dungeon(owner model.PlayerID) *model.Dungeon
	Dungeons() []*model.Dungeon
	Room(id model.RoomID) *model.Room

	HoardAt(pos model.SlabPos) *model.Thing
	CreateHoard(pos model.SlabPos, owner model.PlayerID) *model.Thing
	RemoveThing(id model.ThingID)

	Event(kind model.EventKind, pos model.SlabPos, owner model.PlayerID, target int)
	GoldLowThreshold() int64
	Logf(format string, args ...any)
}

// AddOffmapGold credits gold that is not stored in any treasury.
func AddOffmapGold(d *model.Dungeon, amount int64) {
	if d == nil || amount <= 0 {
		return
	}
	d.OffmapMoneyOwned += amount
	d.TotalMoneyOwned += amount
}

// TakeMoney withdraws amount from owner: off-map gold first, then treasury
// hoards in room-chain order. When the player holds less than amount, the
// remainder is taken unless wholeSumOnly is set. Gold taken before a failure
// stays taken.
func TakeMoney(env Env, owner model.PlayerID, amount int64, wholeSumOnly bool) (int64, error) {
	d := env.Dungeon(owner)
	if d == nil {
		return -1, fmt.Errorf("take money from player %d: %w", owner, ErrNoDungeon)
	}
	if amount <= 0 {
		return 0, nil
	}
	total := d.TotalMoneyOwned
	remain := amount
	if remain > total {
		if wholeSumOnly || total == 0 {
			return -1, fmt.Errorf("player %d has %d gold, wants %d: %w", owner, total, amount, ErrNotEnoughGold)
		}
		remain = total
		amount = total
	}

	if off := d.OffmapMoneyOwned; off > 0 {
		if remain <= off {
			d.OffmapMoneyOwned -= remain
			d.TotalMoneyOwned -= remain
			goldLowCheck(env, d, total, amount)
			return amount, nil
		}
		remain -= off
		d.TotalMoneyOwned -= off
		d.OffmapMoneyOwned = 0
	}

	id := d.RoomHeads[catalogs.RoomTreasure]
	for k := 0; id != 0; k++ {
		if k > model.MaxRooms {
			env.Logf("economy: player %d treasury list: %v", owner, store.ErrSweepGuard)
			break
		}
		room := env.Room(id)
		if room == nil {
			env.Logf("economy: player %d treasury list: jump to invalid room %d", owner, id)
			break
		}
		id = room.NextOfOwner
		if room.StorageUsed <= 0 {
			continue
		}
		remain -= takeFromRoom(env, d, room, remain)
		if remain <= 0 {
			goldLowCheck(env, d, total, amount)
			return amount, nil
		}
	}
	env.Logf("economy: player %d could not give %d gold, %d missing; total was %d", owner, amount, remain, total)
	return -1, fmt.Errorf("player %d short by %d: %w", owner, remain, ErrNotEnoughGold)
}

func goldLowCheck(env Env, d *model.Dungeon, before, taken int64) {
	limit := env.GoldLowThreshold()
	if before >= limit && before-taken < limit {
		env.Event(model.EventGoldLow, heartPos(env, d), d.Owner, 0)
	}
}

func heartPos(env Env, d *model.Dungeon) model.SlabPos {
	if r := env.Room(d.RoomHeads[catalogs.RoomDungeonHeart]); r != nil {
		return r.Central
	}
	return model.SlabPos{}
}

// takeFromRoom empties hoards on the room's outer border before touching the
// inner slabs.
func takeFromRoom(env Env, d *model.Dungeon, room *model.Room, want int64) int64 {
	m := env.Slabs()
	slabs, err := m.RoomSlabs(room)
	if err != nil {
		env.Logf("economy: %v", err)
	}
	left := want
	for pass := 0; pass < 2 && left > 0; pass++ {
		for _, idx := range slabs {
			if pass == 0 && !m.IsRoomBorder(idx) {
				continue
			}
			h := env.HoardAt(m.PosOf(idx))
			if h == nil || h.Gold <= 0 {
				continue
			}
			left -= removeFromHoard(env, d, room, h, left)
			if left <= 0 {
				break
			}
		}
	}
	return want - left
}

func removeFromHoard(env Env, d *model.Dungeon, room *model.Room, h *model.Thing, want int64) int64 {
	took := want
	if took > h.Gold {
		took = h.Gold
	}
	h.Gold -= took
	room.StorageUsed -= took
	if room.StorageUsed < 0 {
		room.StorageUsed = 0
	}
	d.TotalMoneyOwned -= took
	if h.Gold == 0 {
		env.RemoveThing(h.ID)
	}
	return took
}

// StoreGold puts amount into a treasury room's hoards, filling each slab up to
// its share of the room capacity. It returns what fitted.
func StoreGold(env Env, room *model.Room, perSlab int64, amount int64) int64 {
	if room == nil || amount <= 0 || perSlab <= 0 {
		return 0
	}
	d := env.Dungeon(room.Owner)
	m := env.Slabs()
	slabs, err := m.RoomSlabs(room)
	if err != nil {
		env.Logf("economy: %v", err)
	}
	left := amount
	for _, idx := range slabs {
		if left <= 0 {
			break
		}
		pos := m.PosOf(idx)
		h := env.HoardAt(pos)
		have := int64(0)
		if h != nil {
			have = h.Gold
		}
		space := perSlab - have
		if space <= 0 {
			continue
		}
		if h == nil {
			if h = env.CreateHoard(pos, room.Owner); h == nil {
				continue
			}
		}
		put := left
		if put > space {
			put = space
		}
		h.Gold += put
		room.StorageUsed += put
		left -= put
	}
	stored := amount - left
	if d != nil {
		d.TotalMoneyOwned += stored
	}
	return stored
}
