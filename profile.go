package pulley

import (
	"sort"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
)

// Profile is the solved construction geometry of one tooth profile: a
// mapping from coordinate symbol to numeric value, fully resolved (no
// placeholder, no free parameter).
type Profile struct {
	Scheme string
	Coords map[string]float64
}

// Point returns the named construction point, assembled from its X and Y
// coordinates. Names are the construction labels: transition points "A",
// "B", "C", "D" and arc centers "AB", "BC", "CD". The second return is
// false if the scheme did not solve for that point.
func (p *Profile) Point(name string) (r2.Vec, bool) {
	x, okx := p.Coords[name+"X"]
	y, oky := p.Coords[name+"Y"]
	if !okx || !oky {
		return r2.Vec{}, false
	}
	return r2.Vec{X: x, Y: y}, true
}

// Points returns every named 2D point of the solution. Scalar solution
// entries (such as the polar scheme's auxiliary radius RBXY) are not
// points and are only available through Coords.
func (p *Profile) Points() map[string]r2.Vec {
	pts := make(map[string]r2.Vec)
	for key := range p.Coords {
		base := strings.TrimSuffix(key, "X")
		if base == key {
			continue
		}
		if v, ok := p.Point(base); ok {
			pts[base] = v
		}
	}
	return pts
}

// Names returns the coordinate symbol names in sorted order.
func (p *Profile) Names() []string {
	names := make([]string, 0, len(p.Coords))
	for name := range p.Coords {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
