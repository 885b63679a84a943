package render

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stackyard/stackyard/internal/core/ecs"
	"github.com/stackyard/stackyard/internal/data"
	"github.com/stackyard/stackyard/internal/vmath"
	"github.com/stackyard/stackyard/internal/world"
)

func newScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(40, 20)
	t.Cleanup(screen.Fini)
	return screen
}

func cell(s tcell.Screen, x, y int) rune {
	r, _, _, _ := s.GetContent(x, y)
	return r
}

func TestLabel(t *testing.T) {
	v := NewViewer(newScreen(t), world.NewState(zap.NewNop()))
	assert.Equal(t, "Type A", v.Label("type_a"))
	assert.Equal(t, "Bin B", v.Label("bin_b"))
	assert.Equal(t, "Type B: 3", v.HeldLine(data.CategoryTypeB, 3))
}

func TestDrawPlacesGlyphsAndMarkers(t *testing.T) {
	screen := newScreen(t)
	scene := world.NewState(zap.NewNop())
	scene.RegisterTemplate(data.Template{Name: "crate", Glyph: "■", Color: "red"})

	player := scene.CreateNode("player", ecs.NoEntity, vmath.Zero, 0)
	crate, err := scene.Instantiate("crate", ecs.NoEntity)
	require.NoError(t, err)
	scene.SetWorldPosition(crate, vmath.Vec3{X: 3, Z: 2})
	scene.SetActive(crate, true)
	hidden, err := scene.Instantiate("crate", ecs.NoEntity)
	require.NoError(t, err)
	scene.SetWorldPosition(hidden, vmath.Vec3{X: -3})

	v := NewViewer(screen, scene)
	v.Mark(player, '@', tcell.StyleDefault)
	v.Draw(vmath.Zero, []string{"Score: 4"})

	assert.Equal(t, '@', cell(screen, 20, 10))
	assert.Equal(t, '■', cell(screen, 26, 8))
	assert.NotEqual(t, '■', cell(screen, 14, 10), "inactive entities are not drawn")
	assert.Equal(t, 'S', cell(screen, 0, 0))
}

func TestDrawZoneOutline(t *testing.T) {
	screen := newScreen(t)
	v := NewViewer(screen, world.NewState(zap.NewNop()))
	v.AddZone(Zone{Name: "bin_a", Min: vmath.Vec3{X: -2, Z: -2}, Max: vmath.Vec3{X: 2, Z: 2}})
	v.Draw(vmath.Zero, nil)

	x0, y0 := v.Project(vmath.Vec3{X: -2, Z: 2}, vmath.Zero)
	assert.Equal(t, '-', cell(screen, x0, y0))
	assert.Equal(t, 'B', cell(screen, x0+1, y0))
	assert.Equal(t, '|', cell(screen, x0, y0+1))
}
