package world

import (
	"dungeonsim.ai/internal/sim/tuning"
	"dungeonsim.ai/internal/sim/world/feature/instances"
	"dungeonsim.ai/internal/sim/world/policy/rules"
	"dungeonsim.ai/internal/sim/world/terrain/gen"
)

type WorldConfig struct {
	RunID      string
	TickRateHz int
	Seed       int64
	Width      int
	Height     int
	Players    int

	StartingGold int64
	StartingImps int

	// Operational parameters. These are included in snapshots for deterministic replay/resume.
	SnapshotEveryTicks  int
	AreaScoreEveryTicks int

	EventMergeRadius   int
	EventLifetimeTicks int
	GoldLowThreshold   int64

	Dig      rules.DigParams
	Handlers instances.Params
	Gen      gen.Params
}

// ConfigFromTuning maps tuning.yaml onto a world config.
func ConfigFromTuning(runID string, seed int64, tu tuning.Tuning) WorldConfig {
	return WorldConfig{
		RunID:               runID,
		TickRateHz:          tu.TickRateHz,
		Seed:                seed,
		Width:               tu.MapWidth,
		Height:              tu.MapHeight,
		Players:             tu.Players,
		StartingGold:        tu.StartingGold,
		StartingImps:        tu.StartingImps,
		SnapshotEveryTicks:  tu.SnapshotEveryTicks,
		AreaScoreEveryTicks: tu.AreaScoreEveryTicks,
		EventMergeRadius:    tu.Events.MergeRadius,
		EventLifetimeTicks:  tu.Events.LifetimeTicks,
		GoldLowThreshold:    tu.GoldLowThreshold,
		Dig: rules.DigParams{
			LevelBonusPercent:       tu.Dig.LevelBonusPercent,
			GoldPerGoldBlock:        tu.Dig.GoldPerGoldBlock,
			GemEffectivenessPercent: tu.Dig.GemEffectivenessPercent,
			LevelGoldBonusPercent:   tu.Dig.LevelGoldBonusPercent,
		},
		Handlers: instances.Params{
			FoodHealthGain:    tu.FoodHealthGain,
			ReinforceSteps:    tu.ReinforceSteps,
			WallHitDamage:     tu.WallHitDamage,
			RoomSlabHitDamage: tu.RoomSlabHitDamage,
		},
		Gen: gen.Params{
			Seed:                  seed,
			GoldThresholdPermille: tu.WorldGen.GoldThresholdPermille,
			GemsThresholdPermille: tu.WorldGen.GemsThresholdPermille,
			RockThresholdPermille: tu.WorldGen.RockThresholdPermille,
			NoiseScale:            tu.WorldGen.NoiseScale,
			HeartClearRadius:      tu.WorldGen.HeartClearRadius,
		},
	}
}

func (c *WorldConfig) applyDefaults() {
	d := ConfigFromTuning(c.RunID, c.Seed, tuning.Defaults())
	if c.TickRateHz <= 0 {
		c.TickRateHz = d.TickRateHz
	}
	if c.Width <= 0 {
		c.Width = d.Width
	}
	if c.Height <= 0 {
		c.Height = d.Height
	}
	if c.Players <= 0 {
		c.Players = d.Players
	}
	if c.SnapshotEveryTicks < 0 {
		c.SnapshotEveryTicks = 0
	}
	if c.AreaScoreEveryTicks <= 0 {
		c.AreaScoreEveryTicks = d.AreaScoreEveryTicks
	}
	if c.EventMergeRadius <= 0 {
		c.EventMergeRadius = d.EventMergeRadius
	}
	if c.EventLifetimeTicks <= 0 {
		c.EventLifetimeTicks = d.EventLifetimeTicks
	}
	if c.GoldLowThreshold <= 0 {
		c.GoldLowThreshold = d.GoldLowThreshold
	}
	if c.Dig == (rules.DigParams{}) {
		c.Dig = d.Dig
	}
	if c.Handlers == (instances.Params{}) {
		c.Handlers = d.Handlers
	}
	if c.Gen.GoldThresholdPermille == 0 && c.Gen.GemsThresholdPermille == 0 && c.Gen.RockThresholdPermille == 0 {
		c.Gen = d.Gen
	}
	c.Gen.Seed = c.Seed
}
