// Package render draws a top-down view of the scene into a tcell screen.
package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/stackyard/stackyard/internal/core/ecs"
	"github.com/stackyard/stackyard/internal/data"
	"github.com/stackyard/stackyard/internal/vmath"
	"github.com/stackyard/stackyard/internal/world"
)

// Scene is the read side of the world the viewer needs.
type Scene interface {
	EachActive(fn func(ecs.EntityID, *world.Transform))
	WorldPosition(id ecs.EntityID) vmath.Vec3
	Template(name string) (data.Template, bool)
}

// Zone is a labelled ground rectangle.
type Zone struct {
	Name     string
	Min, Max vmath.Vec3
	Style    tcell.Style
}

type marker struct {
	glyph rune
	style tcell.Style
}

// Viewer projects world XZ onto terminal cells, +Z up the screen.
type Viewer struct {
	screen  tcell.Screen
	scene   Scene
	scaleX  float64 // cells per world unit
	scaleZ  float64
	zones   []Zone
	markers map[ecs.EntityID]marker
	title   cases.Caser
}

func NewViewer(screen tcell.Screen, scene Scene) *Viewer {
	return &Viewer{
		screen:  screen,
		scene:   scene,
		scaleX:  2,
		scaleZ:  1,
		markers: make(map[ecs.EntityID]marker),
		title:   cases.Title(language.English),
	}
}

// Label turns identifiers like "type_a" into "Type A".
func (v *Viewer) Label(s string) string {
	return v.title.String(strings.ReplaceAll(s, "_", " "))
}

func (v *Viewer) AddZone(z Zone) { v.zones = append(v.zones, z) }

// Mark draws id with glyph instead of its template glyph.
func (v *Viewer) Mark(id ecs.EntityID, glyph rune, style tcell.Style) {
	v.markers[id] = marker{glyph, style}
}

// Project maps a world position to a cell relative to center.
func (v *Viewer) Project(p, center vmath.Vec3) (int, int) {
	w, h := v.screen.Size()
	x := w/2 + int(math.Round((p.X-center.X)*v.scaleX))
	y := h/2 - int(math.Round((p.Z-center.Z)*v.scaleZ))
	return x, y
}

// Draw renders zones, entities and HUD lines, then shows the frame.
func (v *Viewer) Draw(center vmath.Vec3, hud []string) {
	v.screen.Clear()
	for _, z := range v.zones {
		v.drawZone(z, center)
	}
	v.scene.EachActive(func(id ecs.EntityID, t *world.Transform) {
		glyph, style, ok := v.glyphFor(id, t)
		if !ok {
			return
		}
		x, y := v.Project(v.scene.WorldPosition(id), center)
		v.screen.SetContent(x, y, glyph, nil, style)
	})
	for i, line := range hud {
		v.text(0, i, line, tcell.StyleDefault.Bold(true))
	}
	v.screen.Show()
}

func (v *Viewer) glyphFor(id ecs.EntityID, t *world.Transform) (rune, tcell.Style, bool) {
	if m, ok := v.markers[id]; ok {
		return m.glyph, m.style, true
	}
	if t.Template == "" {
		return 0, tcell.StyleDefault, false
	}
	tpl, ok := v.scene.Template(t.Template)
	if !ok || tpl.Glyph == "" {
		return '?', tcell.StyleDefault, true
	}
	style := tcell.StyleDefault
	if tpl.Color != "" {
		style = style.Foreground(tcell.GetColor(tpl.Color))
	}
	return []rune(tpl.Glyph)[0], style, true
}

func (v *Viewer) drawZone(z Zone, center vmath.Vec3) {
	x0, y0 := v.Project(vmath.Vec3{X: z.Min.X, Z: z.Max.Z}, center)
	x1, y1 := v.Project(vmath.Vec3{X: z.Max.X, Z: z.Min.Z}, center)
	for x := x0; x <= x1; x++ {
		v.screen.SetContent(x, y0, '-', nil, z.Style)
		v.screen.SetContent(x, y1, '-', nil, z.Style)
	}
	for y := y0 + 1; y < y1; y++ {
		v.screen.SetContent(x0, y, '|', nil, z.Style)
		v.screen.SetContent(x1, y, '|', nil, z.Style)
	}
	v.text(x0+1, y0, v.Label(z.Name), z.Style)
}

func (v *Viewer) text(x, y int, s string, style tcell.Style) {
	for _, r := range s {
		v.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

// HeldLine formats one HUD row for a held category.
func (v *Viewer) HeldLine(cat data.Category, n int) string {
	return fmt.Sprintf("%s: %d", v.Label(cat.String()), n)
}
