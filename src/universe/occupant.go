package universe

import (
	"fmt"
	"math/rand/v2"
	"sort"
)

//Occupant is the entity living on a patch
//Decide must only read patches, it returns the intended action for Commit to apply
type Occupant interface {
	State() int
	Position() (x, y int)
	Place(x, y int)
	Decide(current *Patch, neighbors []*Patch, rng *rand.Rand) Action
}

//Settler is implemented by occupants with internal counters
//Settle is called by Patch.Commit with the action that was actually applied
type Settler interface {
	Settle(a Action)
}

//Cell is an embeddable base holding the state code and the position
type Cell struct {
	state int
	x, y  int
}

func NewCell(state int) Cell { return Cell{state: state} }

func (c *Cell) State() int           { return c.state }
func (c *Cell) Position() (int, int) { return c.x, c.y }
func (c *Cell) Place(x, y int)       { c.x, c.y = x, y }

//ActionKind tags an Action
type ActionKind uint8

const (
	ActStay ActionKind = iota
	ActMove
	ActDie
	ActBirth
)

func (k ActionKind) String() string {
	switch k {
	case ActMove:
		return "move"
	case ActDie:
		return "die"
	case ActBirth:
		return "birth"
	}
	return "stay"
}

//Action is a pending change decided in the prepare phase
//Move puts the mover on Dest (Feed detaches Dest's occupant first) and leaves Spawn, if any, on the vacated origin
//Birth attaches Spawn to the empty patch that decided it, Die detaches the occupant
type Action struct {
	Kind  ActionKind
	Dest  *Patch
	Feed  bool
	Spawn Occupant
}

func Stay() Action                  { return Action{Kind: ActStay} }
func Die() Action                   { return Action{Kind: ActDie} }
func MoveTo(dest *Patch) Action     { return Action{Kind: ActMove, Dest: dest} }
func FeedOn(dest *Patch) Action     { return Action{Kind: ActMove, Dest: dest, Feed: true} }
func Birth(newborn Occupant) Action { return Action{Kind: ActBirth, Spawn: newborn} }

//WithSpawn leaves o on the origin once the mover is gone
func (a Action) WithSpawn(o Occupant) Action {
	a.Spawn = o
	return a
}

//claims reports whether the action competes for a patch
func (a Action) claims() bool { return a.Kind == ActMove || a.Kind == ActBirth }

//Rules is a registered cell behaviour: it builds occupants from initial state codes
type Rules interface {
	Name() string
	//States lists the non-empty state codes, in display order
	States() []int
	NewOccupant(state int) (Occupant, error)
}

//Generator is implemented by rules that can bring an empty patch to life
type Generator interface {
	Generate(p *Patch, neighbors []*Patch, rng *rand.Rand) Occupant
}

//RulesFactory builds Rules from string parameters
type RulesFactory func(params map[string]string) (Rules, error)

var rules = map[string]RulesFactory{}

//RegisterRules adds a rules factory under the provided cell type name
func RegisterRules(name string, f RulesFactory) {
	if name == "" || f == nil {
		return
	}
	rules[name] = f
}

//LookupRules resolves the cell type once, at simulation initialisation
func LookupRules(name string, params map[string]string) (Rules, error) {
	f, ok := rules[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCellType, name)
	}
	r, err := f(params)
	if err != nil {
		return nil, fmt.Errorf("cell type %q: %w", name, err)
	}
	return r, nil
}

//RuleNames lists registered cell types in sorted order
func RuleNames() []string {
	names := make([]string, 0, len(rules))
	for k := range rules {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
