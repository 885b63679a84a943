package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory("type_b")
	require.NoError(t, err)
	assert.Equal(t, CategoryTypeB, c)
	assert.True(t, c.Valid())
	assert.False(t, CategoryNone.Valid())

	_, err = ParseCategory("type_z")
	assert.Error(t, err)
	assert.Equal(t, "category(9)", Category(9).String())
}

func TestParseCatalog(t *testing.T) {
	raw := []byte(`
templates:
  - name: crate
    glyph: "#"
categories:
  - category: type_a
    template: crate
    capacity: 3
`)
	c, err := ParseCatalog(raw)
	require.NoError(t, err)
	require.Equal(t, 1, c.Count())

	def, ok := c.Pool(CategoryTypeA)
	require.True(t, ok)
	assert.Equal(t, "crate", def.Template)
	assert.Equal(t, 3, def.Capacity)
	assert.Equal(t, "#", c.Template("crate").Glyph)
	assert.Nil(t, c.Template("missing"))

	_, ok = c.Pool(CategoryTypeB)
	assert.False(t, ok)
}

func TestParseCatalogRejectsUnknownCategory(t *testing.T) {
	_, err := ParseCatalog([]byte("categories:\n  - category: bogus\n    template: x\n    capacity: 1\n"))
	assert.Error(t, err)
}

func TestParseSceneValidates(t *testing.T) {
	_, err := ParseScene([]byte("generators:\n  - name: g\n    category: type_a\n"))
	assert.ErrorContains(t, err, "no generation points")

	_, err = ParseScene([]byte("recyclers:\n  - name: r\n    category: none\n"))
	assert.ErrorContains(t, err, "not recyclable")
}

func TestLoadShippedData(t *testing.T) {
	root := filepath.Join("..", "..", "data", "yaml")

	c, err := LoadCatalog(filepath.Join(root, "catalog.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 2, c.Count())
	assert.Len(t, c.Templates(), 2)

	s, err := LoadScene(filepath.Join(root, "scene.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "player", s.Carrier.Name)
	require.NotNil(t, s.Vehicle)
	assert.Len(t, s.Generators, 2)
	assert.Len(t, s.Generators[0].Points, 3)
	assert.Equal(t, CategoryTypeB, s.Recyclers[1].Category)
	assert.Equal(t, 0.6, s.Carrier.Anchor.Vec().Y)
}

func TestLoadCatalogMissingFile(t *testing.T) {
	_, err := LoadCatalog(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
