package universe

import (
	"fmt"
	"math/rand/v2"
)

//Grid owns a dense, row-major array of patches
//patches are created once in NewGrid and never added or removed, only their occupants change
type Grid struct {
	width   int
	height  int
	edge    EdgeRule
	hood    Neighborhood
	patches []*Patch
}

//NewGrid allocates one patch per coordinate and caches every patch's neighbors
//nil edge defaults to Bounded
func NewGrid(width, height int, edge EdgeRule, hood Neighborhood) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %d x %d", ErrInvalidDimension, width, height)
	}
	if edge == nil {
		edge = Bounded{}
	}
	g := &Grid{
		width:   width,
		height:  height,
		edge:    edge,
		hood:    hood,
		patches: make([]*Patch, width*height),
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := g.index(x, y)
			g.patches[i] = &Patch{grid: g, index: i, x: x, y: y}
		}
	}
	for _, p := range g.patches {
		p.neighbors = g.resolveNeighbors(p.x, p.y)
	}
	return g, nil
}

func (g *Grid) Width() int                 { return g.width }
func (g *Grid) Height() int                { return g.height }
func (g *Grid) Len() int                   { return len(g.patches) }
func (g *Grid) Edge() EdgeRule             { return g.edge }
func (g *Grid) Neighborhood() Neighborhood { return g.hood }

func (g *Grid) index(x, y int) int { return y*g.width + x }

func (g *Grid) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.width && y < g.height
}

//PatchAt is a hard lookup, the edge rule is not applied
func (g *Grid) PatchAt(x, y int) (*Patch, error) {
	if !g.inBounds(x, y) {
		return nil, fmt.Errorf("%w: (%d,%d) on %d x %d grid", ErrOutOfRange, x, y, g.width, g.height)
	}
	return g.patches[g.index(x, y)], nil
}

//NeighborsOf returns the cached, ordered neighbors of the patch at x,y
//the returned slice is shared and must not be modified
func (g *Grid) NeighborsOf(x, y int) ([]*Patch, error) {
	p, err := g.PatchAt(x, y)
	if err != nil {
		return nil, err
	}
	return p.neighbors, nil
}

//resolveNeighbors applies the edge rule to each offset of the neighborhood
func (g *Grid) resolveNeighbors(x, y int) []*Patch {
	offsets := g.hood.Offsets()
	n := make([]*Patch, 0, len(offsets))
	for _, o := range offsets {
		nx, ny, ok := g.edge.Resolve(x+o[0], y+o[1], g.width, g.height)
		if !ok {
			continue
		}
		n = append(n, g.patches[g.index(nx, ny)])
	}
	return n
}

//FindFreePatch picks uniformly among the unoccupied patches
func (g *Grid) FindFreePatch(rng *rand.Rand) (*Patch, error) {
	free := make([]*Patch, 0, len(g.patches))
	for _, p := range g.patches {
		if p.IsEmpty() {
			free = append(free, p)
		}
	}
	if len(free) == 0 {
		return nil, ErrNoFreePatch
	}
	return free[rng.IntN(len(free))], nil
}

//Walk calls cb for every patch in row-major order
func (g *Grid) Walk(cb func(p *Patch)) {
	for _, p := range g.patches {
		cb(p)
	}
}

//clear detaches every occupant
func (g *Grid) clear() {
	for _, p := range g.patches {
		p.DetachOccupant()
		p.resetPending()
	}
}
