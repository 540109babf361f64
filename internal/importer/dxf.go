package importer

import (
	"fmt"
	"math"
	"sort"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/sheetnest/internal/model"
)

// joinTolerance is the largest gap (mm) between LINE endpoints that still
// counts as connected.
const joinTolerance = 0.01

type point struct{ x, y float64 }

type edge struct{ a, b point }

// bounds is an axis-aligned bounding box.
type bounds struct {
	minX, minY, maxX, maxY float64
}

func emptyBounds() bounds {
	return bounds{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}
}

func (b *bounds) add(p point) {
	b.minX = math.Min(b.minX, p.x)
	b.minY = math.Min(b.minY, p.y)
	b.maxX = math.Max(b.maxX, p.x)
	b.maxY = math.Max(b.maxY, p.y)
}

func (b bounds) size() (w, h float64) {
	return b.maxX - b.minX, b.maxY - b.minY
}

// ImportDXF reads a drawing and turns every closed outline (LWPOLYLINE,
// CIRCLE or a loop of LINE entities) into a rectangular part the size of its
// bounding box. Outlines with identical sizes are merged into one spec with
// a quantity.
func ImportDXF(path string) ImportResult {
	drawing, err := dxf.Open(path)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("cannot open DXF file: %v", err)}}
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		return ImportResult{Errors: []string{"DXF file contains no entities"}}
	}

	var result ImportResult
	var shapes []bounds
	var loose []edge

	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			if len(e.Vertices) < 3 {
				result.Warnings = append(result.Warnings, "skipped LWPOLYLINE with fewer than 3 vertices")
				continue
			}
			shapes = append(shapes, polylineBounds(e))
		case *entity.Circle:
			cx, cy, r := e.Center[0], e.Center[1], e.Radius
			shapes = append(shapes, bounds{cx - r, cy - r, cx + r, cy + r})
		case *entity.Line:
			loose = append(loose, edge{
				a: point{e.Start[0], e.Start[1]},
				b: point{e.End[0], e.End[1]},
			})
		}
	}

	loops, open := joinEdges(loose)
	shapes = append(shapes, loops...)
	if open > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("ignored %d open LINE chain(s)", open))
	}

	if len(shapes) == 0 {
		result.Errors = append(result.Errors, "no closed shapes found in DXF file")
		return result
	}

	type key struct{ w, h float64 }
	index := make(map[key]int)
	for _, b := range shapes {
		w, h := b.size()
		if w < joinTolerance || h < joinTolerance {
			result.Warnings = append(result.Warnings, fmt.Sprintf("skipped degenerate shape (%.2f x %.2f mm)", w, h))
			continue
		}
		k := key{math.Round(w*100) / 100, math.Round(h*100) / 100}
		if i, ok := index[k]; ok {
			result.Parts[i].Quantity++
			continue
		}
		index[k] = len(result.Parts)
		result.Parts = append(result.Parts,
			model.NewPartSpec(fmt.Sprintf("DXF Part %d", len(result.Parts)+1), k.w, k.h, 1))
	}
	return result
}

// polylineBounds includes the apex of bulged segments so arcs that bow out
// past their vertices are covered.
func polylineBounds(lw *entity.LwPolyline) bounds {
	b := emptyBounds()
	n := len(lw.Vertices)
	for i, v := range lw.Vertices {
		p := point{v[0], v[1]}
		b.add(p)
		if i >= len(lw.Bulges) || math.Abs(lw.Bulges[i]) < 1e-9 {
			continue
		}
		next := lw.Vertices[(i+1)%n]
		for _, q := range arcSamples(p, point{next[0], next[1]}, lw.Bulges[i], 16) {
			b.add(q)
		}
	}
	return b
}

// arcSamples returns points along the arc between p1 and p2 described by a
// DXF bulge (tan of a quarter of the included angle).
func arcSamples(p1, p2 point, bulge float64, steps int) []point {
	dx, dy := p2.x-p1.x, p2.y-p1.y
	chord := math.Hypot(dx, dy)
	if chord < 1e-9 {
		return nil
	}
	theta := 4 * math.Atan(bulge) // signed included angle, positive is CCW
	radius := chord / (2 * math.Sin(math.Abs(theta)/2))

	// Centre lies on the chord bisector.
	mx, my := (p1.x+p2.x)/2, (p1.y+p2.y)/2
	offset := radius * math.Cos(theta/2)
	nx, ny := -dy/chord, dx/chord
	if theta < 0 {
		nx, ny = -nx, -ny
	}
	cx, cy := mx+nx*offset, my+ny*offset

	start := math.Atan2(p1.y-cy, p1.x-cx)
	pts := make([]point, 0, steps+1)
	for i := 0; i <= steps; i++ {
		a := start + theta*float64(i)/float64(steps)
		pts = append(pts, point{cx + radius*math.Cos(a), cy + radius*math.Sin(a)})
	}
	return pts
}

// joinEdges chains LINE segments end to end. Chains that return to their
// start become shapes; the rest are counted as open.
func joinEdges(edges []edge) (loops []bounds, open int) {
	used := make([]bool, len(edges))
	for start := range edges {
		if used[start] {
			continue
		}
		used[start] = true
		first, tail := edges[start].a, edges[start].b
		b := emptyBounds()
		b.add(first)
		b.add(tail)

		for extended := true; extended; {
			extended = false
			for i, e := range edges {
				if used[i] {
					continue
				}
				var next point
				switch {
				case near(tail, e.a):
					next = e.b
				case near(tail, e.b):
					next = e.a
				default:
					continue
				}
				used[i] = true
				tail = next
				b.add(tail)
				extended = true
				break
			}
		}

		if near(first, tail) {
			loops = append(loops, b)
		} else {
			open++
		}
	}

	sort.SliceStable(loops, func(i, j int) bool {
		wi, hi := loops[i].size()
		wj, hj := loops[j].size()
		return wi*hi > wj*hj
	})
	return loops, open
}

func near(a, b point) bool {
	return math.Hypot(a.x-b.x, a.y-b.y) <= joinTolerance
}
