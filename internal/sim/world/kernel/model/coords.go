package model

// SlabPos addresses one terrain cell.
type SlabPos struct{ X, Y int }

func (p SlabPos) Add(dx, dy int) SlabPos { return SlabPos{X: p.X + dx, Y: p.Y + dy} }

// Chebyshev distance in slabs.
func (p SlabPos) Dist(o SlabPos) int {
	dx, dy := p.X-o.X, p.Y-o.Y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}

// SmallAround lists the four orthogonal neighbour offsets.
var SmallAround = [4][2]int{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}

// PlayerID identifies a keeper. PlayerNeutral owns unclaimed terrain.
type PlayerID int8

const PlayerNeutral PlayerID = -1

const MaxPlayers = 8

// ThingID identifies creatures and other things. Zero means none.
type ThingID uint32

type RoomID uint32
