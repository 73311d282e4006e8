package indexdb

import (
	"context"

	"dungeonsim.ai/internal/sim/world"
)

// FiredRow is one journaled instance firing.
type FiredRow struct {
	Tick     uint64
	Creature uint32
	Instance string
	Outcome  string
}

// DungeonHistory returns the periodic stats of owner in tick order.
func (s *SQLiteIndex) DungeonHistory(ctx context.Context, owner int) ([]world.DungeonStat, []uint64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT tick,gold,offmap_gold,total_area,room_area,gold_mined,area_claimed,rooms_lost,rooms_claimed
		FROM dungeon_stats WHERE owner=? ORDER BY tick`, owner)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()
	var (
		out   []world.DungeonStat
		ticks []uint64
	)
	for rows.Next() {
		d := world.DungeonStat{Owner: owner}
		var tick int64
		if err := rows.Scan(&tick, &d.Gold, &d.OffmapGold, &d.TotalArea, &d.RoomArea, &d.GoldMined,
			&d.AreaClaimed, &d.RoomsLost, &d.RoomsClaimed); err != nil {
			return nil, nil, err
		}
		out = append(out, d)
		ticks = append(ticks, uint64(tick))
	}
	return out, ticks, rows.Err()
}

// FiredByCreature lists the instances a creature fired, oldest first.
func (s *SQLiteIndex) FiredByCreature(ctx context.Context, creature uint32, limit int) ([]FiredRow, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `SELECT tick,instance,outcome FROM fired WHERE creature=? ORDER BY tick,seq LIMIT ?`,
		int64(creature), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []FiredRow
	for rows.Next() {
		r := FiredRow{Creature: creature}
		var tick int64
		if err := rows.Scan(&tick, &r.Instance, &r.Outcome); err != nil {
			return nil, err
		}
		r.Tick = uint64(tick)
		out = append(out, r)
	}
	return out, rows.Err()
}

// TickDigest returns the digest journaled for tick.
func (s *SQLiteIndex) TickDigest(ctx context.Context, tick uint64) (string, error) {
	var d string
	err := s.db.QueryRowContext(ctx, `SELECT digest FROM ticks WHERE tick=?`, int64(tick)).Scan(&d)
	return d, err
}
