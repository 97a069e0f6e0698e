package life

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"patchsim/src/universe"
)

const (
	Name       = "life"
	StateAlive = 1
	DefRule    = "B3/S23"
)

//Config holds the rule parameters
type Config struct {
	Rule string //birth/survival thresholds in B/S notation
}

//DefaultConfig returns Conway's rule
func DefaultConfig() Config {
	return Config{Rule: DefRule}
}

//FromMap populates a Config from rule parameters, "rule" is the only key
func FromMap(params map[string]string) (Config, error) {
	c := DefaultConfig()
	for k, v := range params {
		if k != "rule" {
			return c, fmt.Errorf("%w: unknown key %q", universe.ErrInvalidParam, k)
		}
		if v != "" {
			c.Rule = v
		}
	}
	return c, nil
}

//Rules is a Life-like rule set: birth and survival by live neighbor count
type Rules struct {
	rule    string
	born    [9]bool
	survive [9]bool
}

//New parses a B/S rule string such as "B3/S23" or "B36/S23"
func New(rule string) (*Rules, error) {
	r := &Rules{rule: strings.ToUpper(rule)}
	parts := strings.Split(r.rule, "/")
	if len(parts) != 2 {
		return nil, fmt.Errorf("%w: rule %q", universe.ErrInvalidParam, rule)
	}
	//exactly one birth and one survival part, in either order
	seen := map[byte]bool{}
	for _, part := range parts {
		if part == "" || seen[part[0]] {
			return nil, fmt.Errorf("%w: rule %q", universe.ErrInvalidParam, rule)
		}
		seen[part[0]] = true
		var set *[9]bool
		switch part[0] {
		case 'B':
			set = &r.born
		case 'S':
			set = &r.survive
		default:
			return nil, fmt.Errorf("%w: rule %q", universe.ErrInvalidParam, rule)
		}
		for _, d := range part[1:] {
			n, err := strconv.Atoi(string(d))
			if err != nil || n > 8 {
				return nil, fmt.Errorf("%w: rule %q", universe.ErrInvalidParam, rule)
			}
			set[n] = true
		}
	}
	return r, nil
}

func (r *Rules) Name() string  { return Name }
func (r *Rules) Rule() string  { return r.rule }
func (r *Rules) States() []int { return []int{StateAlive} }

func (r *Rules) NewOccupant(state int) (universe.Occupant, error) {
	if state != StateAlive {
		return nil, fmt.Errorf("%w: %d", universe.ErrUnknownState, state)
	}
	return &cell{Cell: universe.NewCell(StateAlive), rules: r}, nil
}

//Generate brings an empty patch to life when the birth threshold is met
func (r *Rules) Generate(_ *universe.Patch, neighbors []*universe.Patch, _ *rand.Rand) universe.Occupant {
	if !r.born[aliveAround(neighbors)] {
		return nil
	}
	return &cell{Cell: universe.NewCell(StateAlive), rules: r}
}

type cell struct {
	universe.Cell
	rules *Rules
}

func (c *cell) Decide(_ *universe.Patch, neighbors []*universe.Patch, _ *rand.Rand) universe.Action {
	if c.rules.survive[aliveAround(neighbors)] {
		return universe.Stay()
	}
	return universe.Die()
}

func aliveAround(neighbors []*universe.Patch) int {
	n := 0
	for _, p := range neighbors {
		if p.StateCode() == StateAlive {
			n++
		}
	}
	return n
}

//Templates returns the built-in seeding patterns
func Templates() []universe.Template {
	return []universe.Template{
		{
			Name:        "stable",
			Descr:       "the test sample with 3 stable patterns",
			CellType:    Name,
			State:       StateAlive,
			Coordinates: [][]int{{1, 1}, {1, 2}, {2, 1}, {2, 2}, {3, 3}, {4, 2}, {4, 3}, {5, 3}},
		},
		{
			Name:        "glider",
			Descr:       "a glider heading south-east",
			CellType:    Name,
			State:       StateAlive,
			Coordinates: [][]int{{1, 0}, {2, 1}, {0, 2}, {1, 2}, {2, 2}},
		},
		{
			Name:        "blinker",
			Descr:       "period 2 oscillator",
			CellType:    Name,
			State:       StateAlive,
			Coordinates: [][]int{{2, 1}, {2, 2}, {2, 3}},
		},
	}
}

func init() {
	universe.RegisterRules(Name, func(params map[string]string) (universe.Rules, error) {
		cfg, err := FromMap(params)
		if err != nil {
			return nil, err
		}
		return New(cfg.Rule)
	})
}
