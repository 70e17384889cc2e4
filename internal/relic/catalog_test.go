package relic

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRelic(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "relics"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "relics", name), []byte(body), 0o644))
}

func TestCatalogFallback(t *testing.T) {
	user := t.TempDir()
	base := t.TempDir()

	writeRelic(t, base, "hourglass.yaml", "id: hourglass\nroll_bonus: 1\n")
	writeRelic(t, base, "coupon.yaml", "name: Coupon\neffects:\n  - on: shop_opened\n    set:\n      multiplier: \"0.5\"\n")
	writeRelic(t, user, "hourglass.yaml", "id: hourglass\nroll_bonus: 2\n")
	writeRelic(t, user, "notes.txt", "ignored")

	cat := NewCatalog([]string{user, filepath.Join(user, "missing"), base}, newEvaluator(t, nil))

	def, err := cat.Definition("Hourglass")
	require.NoError(t, err)
	assert.Equal(t, 2, def.RollBonus)

	r, err := cat.Load("coupon")
	require.NoError(t, err)
	assert.Equal(t, "coupon", r.ID())
	assert.Equal(t, "Coupon", r.Definition().Name)

	_, err = cat.Load("excalibur")
	assert.ErrorIs(t, err, ErrUnknownRelic)

	defs, err := cat.List()
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, "coupon", defs[0].ID)
	assert.Equal(t, 2, defs[1].RollBonus)
}

func TestCatalogDecodeError(t *testing.T) {
	dir := t.TempDir()
	writeRelic(t, dir, "bad.yaml", "effects: [unclosed\n")

	cat := NewCatalog([]string{dir}, newEvaluator(t, nil))
	_, err := cat.Load("bad")
	assert.ErrorContains(t, err, "failed to decode relic")
}

func TestBundledCatalogCompiles(t *testing.T) {
	cat := NewCatalog([]string{filepath.Join("..", "..", "data")}, newEvaluator(t, nil))
	defs, err := cat.List()
	require.NoError(t, err)
	require.NotEmpty(t, defs)
	for _, d := range defs {
		_, err := cat.Load(d.ID)
		assert.NoError(t, err, d.ID)
	}
}
