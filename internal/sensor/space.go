package sensor

import (
	"sort"

	"github.com/solarlune/resolv"

	"github.com/stackyard/stackyard/internal/vmath"
)

const (
	// cellSize is the edge of a space cell in world units on the XZ plane.
	cellSize = 8
	// extent is the half width of the tracked square, centered on the origin.
	extent = 512

	zoneTag  = "zone"
	actorTag = "actor"
)

// toSpace maps world XZ onto resolv coordinates, which start at zero.
func toSpace(x, z float64) (float64, float64) {
	return x + extent, z + extent
}

func newSpace() *resolv.Space {
	return resolv.NewSpace(2*extent, 2*extent, cellSize, cellSize)
}

func newZoneObject(idx int, b AABB) *resolv.Object {
	x, y := toSpace(b.Min.X, b.Min.Z)
	w, h := b.Max.X-b.Min.X, b.Max.Z-b.Min.Z
	obj := resolv.NewObject(x, y, w, h, zoneTag)
	obj.SetShape(resolv.NewRectangle(0, 0, w, h))
	obj.Data = idx
	return obj
}

func newActorObject(r float64) *resolv.Object {
	obj := resolv.NewObject(0, 0, 2*r, 2*r, actorTag)
	obj.SetShape(resolv.NewCircle(0, 0, r))
	return obj
}

// place moves an actor object so its circle is centered on p.
func place(obj *resolv.Object, p vmath.Vec3, r float64) {
	cx, cy := toSpace(p.X, p.Z)
	obj.X, obj.Y = cx-r, cy-r
	obj.Update()
	obj.Shape.SetPosition(cx, cy)
}

// touches reports whether the actor circle overlaps the zone rectangle.
// Edge crossings come from the shape intersection; a circle fully inside
// the rectangle is caught by its center.
func touches(actor *resolv.Object, r float64, zone *resolv.Object) bool {
	cx, cy := actor.X+r, actor.Y+r
	if cx >= zone.X && cx <= zone.X+zone.W && cy >= zone.Y && cy <= zone.Y+zone.H {
		return true
	}
	return actor.Shape.Intersection(0, 0, zone.Shape) != nil
}

// zoneIndices adds the index of every zone object in objs to out.
func zoneIndices(objs []*resolv.Object, out map[int]struct{}) {
	for _, o := range objs {
		if idx, ok := o.Data.(int); ok && o.HasTags(zoneTag) {
			out[idx] = struct{}{}
		}
	}
}

// sortedKeys returns the indices in out in ascending order and clears it.
func sortedKeys(out map[int]struct{}, buf []int) []int {
	buf = buf[:0]
	for idx := range out {
		buf = append(buf, idx)
		delete(out, idx)
	}
	sort.Ints(buf)
	return buf
}
