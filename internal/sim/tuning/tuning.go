package tuning

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	TickRateHz          int `yaml:"tick_rate_hz" env:"DSIM_TICK_RATE_HZ"`
	Players             int `yaml:"players" env:"DSIM_PLAYERS"`
	MapWidth            int `yaml:"map_width" env:"DSIM_MAP_WIDTH"`
	MapHeight           int `yaml:"map_height" env:"DSIM_MAP_HEIGHT"`
	SnapshotEveryTicks  int `yaml:"snapshot_every_ticks" env:"DSIM_SNAPSHOT_EVERY_TICKS"`
	AreaScoreEveryTicks int `yaml:"area_score_every_ticks"`

	Dig Dig `yaml:"dig"`

	FoodHealthGain    int   `yaml:"food_health_gain"`
	ReinforceSteps    int   `yaml:"reinforce_steps"`
	WallHitDamage     int   `yaml:"wall_hit_damage"`
	RoomSlabHitDamage int   `yaml:"room_slab_hit_damage"`
	GoldLowThreshold  int64 `yaml:"gold_low_threshold"`

	StartingGold int64 `yaml:"starting_gold" env:"DSIM_STARTING_GOLD"`
	StartingImps int   `yaml:"starting_imps"`

	Events   Events   `yaml:"events"`
	WorldGen WorldGen `yaml:"worldgen"`
}

// Dig holds the dig damage and gold yield rule constants.
type Dig struct {
	LevelBonusPercent       int `yaml:"level_bonus_percent"`
	GoldPerGoldBlock        int `yaml:"gold_per_gold_block"`
	GemEffectivenessPercent int `yaml:"gem_effectiveness_percent"`
	LevelGoldBonusPercent   int `yaml:"level_gold_bonus_percent"`
}

type Events struct {
	MergeRadius   int `yaml:"merge_radius"`
	LifetimeTicks int `yaml:"lifetime_ticks"`
}

type WorldGen struct {
	GoldThresholdPermille int     `yaml:"gold_threshold_permille"`
	GemsThresholdPermille int     `yaml:"gems_threshold_permille"`
	RockThresholdPermille int     `yaml:"rock_threshold_permille"`
	NoiseScale            float64 `yaml:"noise_scale"`
	HeartClearRadius      int     `yaml:"heart_clear_radius"`
}

func Defaults() Tuning {
	return Tuning{
		ProtocolVersion:     "1.0",
		TickRateHz:          20,
		Players:             2,
		MapWidth:            85,
		MapHeight:           85,
		SnapshotEveryTicks:  6000,
		AreaScoreEveryTicks: 100,
		Dig: Dig{
			LevelBonusPercent:       10,
			GoldPerGoldBlock:        1024,
			GemEffectivenessPercent: 17,
			LevelGoldBonusPercent:   5,
		},
		FoodHealthGain:    25,
		ReinforceSteps:    25,
		WallHitDamage:     2,
		RoomSlabHitDamage: 2,
		GoldLowThreshold:  1000,
		StartingGold:      3000,
		StartingImps:      4,
		Events:            Events{MergeRadius: 5, LifetimeTicks: 2400},
		WorldGen: WorldGen{
			GoldThresholdPermille: 700,
			GemsThresholdPermille: 960,
			RockThresholdPermille: 850,
			NoiseScale:            0.12,
			HeartClearRadius:      3,
		},
	}
}

// Load reads tuning.yaml on top of Defaults, then applies DSIM_* environment
// overrides.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := ApplyEnv(&t); err != nil {
		return t, err
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func ApplyEnv(t *Tuning) error {
	if err := env.Parse(t); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (t Tuning) Validate() error {
	if t.TickRateHz <= 0 {
		return fmt.Errorf("tick_rate_hz must be > 0")
	}
	if t.Players <= 0 || t.Players > 8 {
		return fmt.Errorf("players must be in 1..8")
	}
	if t.MapWidth < 16 || t.MapHeight < 16 {
		return fmt.Errorf("map must be at least 16x16 slabs")
	}
	if t.Dig.GoldPerGoldBlock < 0 || t.Dig.GemEffectivenessPercent < 0 {
		return fmt.Errorf("dig yields must be >= 0")
	}
	if t.StartingGold < 0 || t.StartingImps < 0 {
		return fmt.Errorf("starting gold and imps must be >= 0")
	}
	if t.ReinforceSteps < 0 {
		return fmt.Errorf("reinforce_steps must be >= 0")
	}
	return nil
}
