package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lepied/DiceSoul-sub001/internal/dice"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	c, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 3, c.BaseMaxRolls)
	assert.Equal(t, 500*time.Millisecond, c.Pacing.Spin)
	assert.Equal(t, dice.DefaultFaces(), c.FaceTable())
	assert.Equal(t, "./runs", c.RunsDir)
	assert.Equal(t, 3, c.Engine().BaseMaxRolls)
}

func TestFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dicesoul.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
base_max_rolls: 4
pacing:
  spin: 0s
  reroll: 120ms
faces:
  d6: 6
  d3: 3
seed: 42
`), 0o644))
	t.Setenv("DICESOUL_RUNS_DIR", "/tmp/dicesoul-runs")

	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(path)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	require.NoError(t, v.ReadInConfig())

	c, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 4, c.BaseMaxRolls)
	assert.Equal(t, time.Duration(0), c.Pacer().Spin)
	assert.Equal(t, 120*time.Millisecond, c.Pacer().Reroll)
	assert.Equal(t, dice.FaceTable{"d6": 6, "d3": 3}, c.FaceTable())
	assert.Equal(t, "/tmp/dicesoul-runs", c.RunsDir)

	a, b := c.Roller(), c.Roller()
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Roll(20), b.Roll(20))
	}
}

func TestValidateCollectsProblems(t *testing.T) {
	c := &Config{
		BaseMaxRolls: -1,
		Faces:        map[string]int{"d0": 0},
		Player:       Player{Health: 0},
	}
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base_max_rolls")
	assert.Contains(t, err.Error(), "faces.d0")
	assert.Contains(t, err.Error(), "runs_dir")
	assert.Contains(t, err.Error(), "player.health")
}
