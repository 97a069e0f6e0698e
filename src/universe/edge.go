package universe

import (
	"fmt"
	"sort"
)

//EdgeRule maps a requested (possibly out-of-range) coordinate to a valid one
//ok is false when the rule drops the coordinate
type EdgeRule interface {
	Name() string
	Resolve(x, y, width, height int) (rx, ry int, ok bool)
}

//Bounded drops every coordinate outside [0,width) x [0,height)
type Bounded struct{}

func (Bounded) Name() string { return "bounded" }

func (Bounded) Resolve(x, y, width, height int) (int, int, bool) {
	if x < 0 || y < 0 || x >= width || y >= height {
		return 0, 0, false
	}
	return x, y, true
}

//Toroidal wraps both axes, any offset magnitude is accepted
type Toroidal struct{}

func (Toroidal) Name() string { return "toroidal" }

func (Toroidal) Resolve(x, y, width, height int) (int, int, bool) {
	return Wrap(x, width), Wrap(y, height), true
}

//Wrap returns coord folded into [0,bound)
func Wrap(coord, bound int) int {
	return ((coord % bound) + bound) % bound
}

var edgeRules = map[string]EdgeRule{
	Bounded{}.Name():  Bounded{},
	Toroidal{}.Name(): Toroidal{},
}

//EdgeRuleByName returns the edge rule registered under name
func EdgeRuleByName(name string) (EdgeRule, error) {
	r, ok := edgeRules[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEdgeRule, name)
	}
	return r, nil
}

//EdgeRuleNames lists the known edge rules in sorted order
func EdgeRuleNames() []string {
	names := make([]string, 0, len(edgeRules))
	for k := range edgeRules {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

//Neighborhood is the ordered set of relative offsets a patch looks at
type Neighborhood int

const (
	Moore Neighborhood = iota
	VonNeumann
)

//N, S, E, W, SE, NE, SW, NW; y grows southwards
var neighborOffsets = [8][2]int{
	{0, -1}, {0, 1}, {1, 0}, {-1, 0},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

//Offsets returns the relative offsets in their fixed order
func (n Neighborhood) Offsets() [][2]int {
	if n == VonNeumann {
		return neighborOffsets[:4]
	}
	return neighborOffsets[:]
}

func (n Neighborhood) String() string {
	if n == VonNeumann {
		return "vonneumann"
	}
	return "moore"
}

//NeighborhoodByName parses "moore" or "vonneumann" (also "8" and "4")
func NeighborhoodByName(name string) (Neighborhood, error) {
	switch name {
	case "moore", "8", "":
		return Moore, nil
	case "vonneumann", "4":
		return VonNeumann, nil
	}
	return Moore, fmt.Errorf("%w: neighborhood %q", ErrInvalidParam, name)
}
