// Package config decodes and validates the dicesoul configuration.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Lepied/DiceSoul-sub001/internal/dice"
	"github.com/Lepied/DiceSoul-sub001/internal/engine"
)

// EnvPrefix prefixes environment overrides, e.g. DICESOUL_BASE_MAX_ROLLS.
const EnvPrefix = "DICESOUL"

type Pacing struct {
	Spin   time.Duration `mapstructure:"spin"`
	Reroll time.Duration `mapstructure:"reroll"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Player seeds a new run's ledger.
type Player struct {
	Health int `mapstructure:"health"`
	Gold   int `mapstructure:"gold"`
}

type Config struct {
	BaseMaxRolls int            `mapstructure:"base_max_rolls"`
	HandSpacing  float64        `mapstructure:"hand_spacing"`
	Pacing       Pacing         `mapstructure:"pacing"`
	Faces        map[string]int `mapstructure:"faces"`
	RelicDirs    []string       `mapstructure:"relic_dirs"`
	RunsDir      string         `mapstructure:"runs_dir"`
	Seed         uint64         `mapstructure:"seed"`
	Player       Player         `mapstructure:"player"`
	Log          Log            `mapstructure:"log"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("base_max_rolls", 3)
	v.SetDefault("hand_spacing", 1.5)
	v.SetDefault("pacing.spin", 500*time.Millisecond)
	v.SetDefault("pacing.reroll", 350*time.Millisecond)
	faces := map[string]int{}
	for t, n := range dice.DefaultFaces() {
		faces[string(t)] = n
	}
	v.SetDefault("faces", faces)
	v.SetDefault("relic_dirs", []string{"./data"})
	v.SetDefault("runs_dir", "./runs")
	v.SetDefault("seed", 0)
	v.SetDefault("player.health", 50)
	v.SetDefault("player.gold", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Load decodes v into a validated Config.
func Load(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var problems []string
	if c.BaseMaxRolls < 0 {
		problems = append(problems, fmt.Sprintf("base_max_rolls must be >= 0, got %d", c.BaseMaxRolls))
	}
	if c.HandSpacing < 0 {
		problems = append(problems, fmt.Sprintf("hand_spacing must be >= 0, got %g", c.HandSpacing))
	}
	if c.Pacing.Spin < 0 || c.Pacing.Reroll < 0 {
		problems = append(problems, "pacing durations must not be negative")
	}
	if len(c.Faces) == 0 {
		problems = append(problems, "faces must define at least one dice type")
	}
	for t, n := range c.Faces {
		if n < 1 {
			problems = append(problems, fmt.Sprintf("faces.%s must be >= 1, got %d", t, n))
		}
	}
	if c.RunsDir == "" {
		problems = append(problems, "runs_dir must not be empty")
	}
	if c.Player.Health < 1 {
		problems = append(problems, fmt.Sprintf("player.health must be >= 1, got %d", c.Player.Health))
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// FaceTable converts the faces map.
func (c *Config) FaceTable() dice.FaceTable {
	ft := make(dice.FaceTable, len(c.Faces))
	for t, n := range c.Faces {
		ft[dice.Type(strings.ToLower(t))] = n
	}
	return ft
}

// Engine returns the engine rules.
func (c *Config) Engine() engine.Config {
	return engine.Config{
		BaseMaxRolls: c.BaseMaxRolls,
		Faces:        c.FaceTable(),
		HandSpacing:  c.HandSpacing,
	}
}

// Pacer returns the presentation pacer.
func (c *Config) Pacer() engine.TimerPacer {
	return engine.TimerPacer{Spin: c.Pacing.Spin, Reroll: c.Pacing.Reroll}
}

// Roller returns a seeded roller when a seed is set, the crypto roller
// otherwise.
func (c *Config) Roller() dice.Roller {
	if c.Seed != 0 {
		return dice.NewSeededRoller(c.Seed)
	}
	return dice.DefaultRoller()
}
