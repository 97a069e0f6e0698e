//Package wator implements the predator/prey rule set: fish wander into empty
//water, sharks hunt neighbouring fish, both breed after a gestation period and
//sharks starve when their vitality runs out
package wator

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strconv"

	"patchsim/src/universe"
)

const (
	Name       = "wator"
	StateFish  = 1
	StateShark = 2
)

//Config holds the species parameters
type Config struct {
	SharkVitality  int //starting and newborn shark vitality
	FishVitality   int //0 means fish never starve
	FeedGain       int //vitality a shark gains per fish eaten
	SharkGestation int
	FishGestation  int
}

//DefaultConfig returns the standard parameters
func DefaultConfig() Config {
	return Config{
		SharkVitality:  5,
		FishVitality:   0,
		FeedGain:       3,
		SharkGestation: 10,
		FishGestation:  4,
	}
}

//param binds a rule parameter key to its Config field
type param struct {
	dst *int
	min int
}

//FromMap populates a Config from rule parameters, rejecting malformed values and unknown keys
func FromMap(params map[string]string) (Config, error) {
	c := DefaultConfig()
	fields := map[string]param{
		"shark_vitality":  {&c.SharkVitality, 1},
		"fish_vitality":   {&c.FishVitality, 0},
		"feed_gain":       {&c.FeedGain, 0},
		"shark_gestation": {&c.SharkGestation, 1},
		"fish_gestation":  {&c.FishGestation, 1},
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		f, ok := fields[k]
		if !ok {
			return c, fmt.Errorf("%w: unknown key %q", universe.ErrInvalidParam, k)
		}
		v := params[k]
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < f.min {
			return c, fmt.Errorf("%w: %s=%q", universe.ErrInvalidParam, k, v)
		}
		*f.dst = parsed
	}
	return c, nil
}

//Rules builds fish and sharks sharing one Config
type Rules struct {
	cfg Config
}

func New(cfg Config) *Rules { return &Rules{cfg: cfg} }

func (r *Rules) Name() string   { return Name }
func (r *Rules) States() []int  { return []int{StateFish, StateShark} }
func (r *Rules) Config() Config { return r.cfg }

//NewOccupant returns a newborn of the given species
func (r *Rules) NewOccupant(state int) (universe.Occupant, error) {
	switch state {
	case StateFish, StateShark:
		return r.newborn(state), nil
	}
	return nil, fmt.Errorf("%w: %d", universe.ErrUnknownState, state)
}

//NewCreature returns a creature with explicit counters
func (r *Rules) NewCreature(state, vitality, timeToBreed int) *Creature {
	return &Creature{
		Cell:        universe.NewCell(state),
		rules:       r,
		vitality:    vitality,
		timeToBreed: timeToBreed,
	}
}

func (r *Rules) newborn(state int) *Creature {
	return r.NewCreature(state, r.vitality(state), r.gestation(state))
}

func (r *Rules) vitality(state int) int {
	if state == StateShark {
		return r.cfg.SharkVitality
	}
	return r.cfg.FishVitality
}

func (r *Rules) gestation(state int) int {
	if state == StateShark {
		return r.cfg.SharkGestation
	}
	return r.cfg.FishGestation
}

//Creature is a fish or a shark
type Creature struct {
	universe.Cell
	rules       *Rules
	vitality    int
	timeToBreed int
	dead        bool
}

func (c *Creature) Vitality() int    { return c.vitality }
func (c *Creature) TimeToBreed() int { return c.timeToBreed }
func (c *Creature) Dead() bool       { return c.dead }

func (c *Creature) mortal() bool {
	return c.State() == StateShark || c.rules.cfg.FishVitality > 0
}

//Decide picks this generation's action from the neighbours' current occupancy
//The creature itself is left untouched, counters advance in Settle
func (c *Creature) Decide(_ *universe.Patch, neighbors []*universe.Patch, rng *rand.Rand) universe.Action {
	if c.dead || (c.mortal() && c.vitality-1 <= 0) {
		return universe.Die()
	}
	dest, feed := c.chooseMove(neighbors, rng)
	if dest == nil {
		return universe.Stay()
	}
	a := universe.MoveTo(dest)
	if feed {
		a = universe.FeedOn(dest)
	}
	if c.timeToBreed <= 1 {
		a = a.WithSpawn(c.rules.newborn(c.State()))
	}
	return a
}

//chooseMove gathers candidate destinations: sharks prefer fish, fish only see empty water
func (c *Creature) chooseMove(neighbors []*universe.Patch, rng *rand.Rand) (*universe.Patch, bool) {
	var empty, fish []*universe.Patch
	for _, p := range neighbors {
		switch p.StateCode() {
		case 0:
			empty = append(empty, p)
		case StateFish:
			fish = append(fish, p)
		}
	}
	if c.State() == StateShark && len(fish) > 0 {
		return fish[rng.IntN(len(fish))], true
	}
	if len(empty) > 0 {
		return empty[rng.IntN(len(empty))], false
	}
	return nil, false
}

//Settle advances the counters with the action that was actually applied
func (c *Creature) Settle(a universe.Action) {
	if a.Kind == universe.ActDie {
		c.dead = true
		return
	}
	if c.mortal() {
		c.vitality--
	}
	if a.Feed {
		c.vitality += c.rules.cfg.FeedGain
	}
	if c.timeToBreed > 0 {
		c.timeToBreed--
	}
	if a.Kind == universe.ActMove && c.timeToBreed == 0 {
		c.timeToBreed = c.rules.gestation(c.State())
	}
}

//Templates returns the built-in seeding patterns
func Templates() []universe.Template {
	return []universe.Template{
		{
			Name:        "school",
			Descr:       "a small school of fish",
			CellType:    Name,
			State:       StateFish,
			Coordinates: [][]int{{2, 2}, {3, 2}, {4, 2}, {2, 3}, {3, 3}, {4, 3}, {2, 4}, {3, 4}, {4, 4}},
		},
		{
			Name:        "hunters",
			Descr:       "a pair of sharks",
			CellType:    Name,
			State:       StateShark,
			Coordinates: [][]int{{6, 3}, {0, 3}},
		},
	}
}

func init() {
	universe.RegisterRules(Name, func(params map[string]string) (universe.Rules, error) {
		cfg, err := FromMap(params)
		if err != nil {
			return nil, err
		}
		return New(cfg), nil
	})
}
