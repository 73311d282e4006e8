package gen

import (
	opensimplex "github.com/ojrac/opensimplex-go"

	"dungeonsim.ai/internal/sim/catalogs"
	"dungeonsim.ai/internal/sim/world/kernel/model"
	"dungeonsim.ai/internal/sim/world/logic/mathx"
)

type Params struct {
	Seed int64

	GoldThresholdPermille int
	GemsThresholdPermille int
	RockThresholdPermille int
	NoiseScale            float64

	// HeartClearRadius is the open area dug around each dungeon heart.
	HeartClearRadius int
}

// Generator classifies map cells from two independent noise fields: one for
// rock outcrops and one for gold veins.
type Generator struct {
	p    Params
	rock opensimplex.Noise
	ore  opensimplex.Noise
}

func New(p Params) *Generator {
	if p.NoiseScale <= 0 {
		p.NoiseScale = 0.12
	}
	if p.HeartClearRadius <= 0 {
		p.HeartClearRadius = 2
	}
	return &Generator{
		p:    p,
		rock: opensimplex.NewNormalized(p.Seed),
		ore:  opensimplex.NewNormalized(p.Seed ^ 0x5DEECE66D),
	}
}

func (g *Generator) Params() Params { return g.p }

func permille(v float64) int {
	return ClampPermille(int(v * 1000))
}

// KindAt returns the base terrain for a cell before heart areas are carved.
func (g *Generator) KindAt(x, y, w, h int) catalogs.SlabKind {
	if x == 0 || y == 0 || x == w-1 || y == h-1 {
		return catalogs.SlabRock
	}
	fx := float64(x) * g.p.NoiseScale
	fy := float64(y) * g.p.NoiseScale
	if permille(g.rock.Eval2(fx, fy)) >= g.p.RockThresholdPermille {
		return catalogs.SlabRock
	}
	ore := permille(g.ore.Eval2(fx*1.7, fy*1.7))
	switch {
	case ore >= g.p.GemsThresholdPermille:
		return catalogs.SlabGems
	case ore >= g.p.GoldThresholdPermille:
		return catalogs.SlabGold
	}
	// Torches are sprinkled on a fixed hash so they do not cluster.
	if mathx.Hash2(g.p.Seed, x, y)%37 == 0 {
		return catalogs.SlabTorchDirt
	}
	return catalogs.SlabEarth
}

// HeartSites places one heart per player, inset from the rock border. The
// seed picks which diagonal the first two keepers share.
func (g *Generator) HeartSites(w, h, players int) []model.SlabPos {
	out := make([]model.SlabPos, 0, players)
	if players <= 0 {
		return out
	}
	inset := g.p.HeartClearRadius + 4
	// Corners first, then edge midpoints; enough for eight keepers.
	cands := []model.SlabPos{
		{X: inset, Y: inset},
		{X: w - 1 - inset, Y: h - 1 - inset},
		{X: w - 1 - inset, Y: inset},
		{X: inset, Y: h - 1 - inset},
		{X: w / 2, Y: inset},
		{X: w / 2, Y: h - 1 - inset},
		{X: inset, Y: h / 2},
		{X: w - 1 - inset, Y: h / 2},
	}
	rot := int(mathx.Hash2(g.p.Seed, w, h) % 2)
	if rot == 1 {
		cands[0], cands[2] = cands[2], cands[0]
		cands[1], cands[3] = cands[3], cands[1]
	}
	for i := 0; i < players && i < len(cands); i++ {
		out = append(out, cands[i])
	}
	return out
}

func ClampPermille(v int) int {
	if v < 0 {
		return 0
	}
	if v > 1000 {
		return 1000
	}
	return v
}
