package rules

import "dungeonsim.ai/internal/sim/catalogs"

// DigParams are the tuning constants the dig formulas read.
type DigParams struct {
	LevelBonusPercent       int
	GoldPerGoldBlock        int
	GemEffectivenessPercent int
	LevelGoldBonusPercent   int

	// GoldSlabHealth is the full health of a gold slab; a whole block yields
	// GoldPerGoldBlock.
	GoldSlabHealth int
}

// DigDamage is the damage one hit does to a slab. Each level above the first
// adds LevelBonusPercent of the base skill. Never below 1.
func DigDamage(digSkill, level int, p DigParams) int {
	if level < 1 {
		level = 1
	}
	d := digSkill * (100 + (level-1)*p.LevelBonusPercent) / 100
	if d < 1 {
		d = 1
	}
	return d
}

// GoldYield is the gold dug out by removing damage health from a slab of kind k.
// Non-gold slabs yield nothing; any hit on a gold or gem slab yields at least 1.
func GoldYield(damage, level int, k catalogs.SlabKind, p DigParams) int64 {
	if damage <= 0 || (k != catalogs.SlabGold && k != catalogs.SlabGems) {
		return 0
	}
	hp := p.GoldSlabHealth
	if hp <= 0 {
		hp = 1
	}
	g := int64(damage) * int64(p.GoldPerGoldBlock) / int64(hp)
	if k == catalogs.SlabGems {
		g = g * int64(p.GemEffectivenessPercent) / 100
	}
	if level > 1 {
		g += g * int64((level-1)*p.LevelGoldBonusPercent) / 100
	}
	if g < 1 {
		g = 1
	}
	return g
}

// RoomClaimResistance is the number of claim hits a room of n slabs absorbs.
func RoomClaimResistance(perSlab, n int) int {
	if perSlab < 1 {
		perSlab = 1
	}
	r := perSlab * n
	if r < 1 {
		r = 1
	}
	return r
}
