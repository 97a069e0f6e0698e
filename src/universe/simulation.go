package universe

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

//Order is the patch visiting order of the prepare and commit passes
type Order int

const (
	Forward Order = iota
	Reverse
)

//Config describes a Simulation
type Config struct {
	Width        int
	Height       int
	Edge         EdgeRule
	Neighborhood Neighborhood
	Rules        Rules
	Seed         int64
	//Workers > 1 runs the prepare pass in parallel row bands
	Workers int
}

//StepReport summarises one generation
type StepReport struct {
	Generation int
	Population int
	Census     map[int]int
	Changed    bool
	Moves      int
	Births     int
	Deaths     int
	Conflicts  int
	Duration   time.Duration
}

//OccupantView is the read-only presentation record of an occupied patch
type OccupantView struct {
	X, Y  int
	State int
}

//Simulation is the stepper: it owns the grid and advances it one generation at a time
//it is not safe for concurrent use, the host serialises access
type Simulation struct {
	cfg        Config
	grid       *Grid
	rules      Rules
	rng        *rand.Rand
	generation int
	codes      []int
}

//NewSimulation builds an empty grid for the configured rules
func NewSimulation(cfg Config) (*Simulation, error) {
	if cfg.Rules == nil {
		return nil, fmt.Errorf("%w: no rules", ErrUnknownCellType)
	}
	s := &Simulation{cfg: cfg, rules: cfg.Rules}
	if err := s.Reset(cfg.Width, cfg.Height, cfg.Edge); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Simulation) Grid() *Grid     { return s.grid }
func (s *Simulation) Rules() Rules    { return s.rules }
func (s *Simulation) Generation() int { return s.generation }
func (s *Simulation) Config() Config  { return s.cfg }

//Reset rebuilds an empty grid and restarts the generation counter
func (s *Simulation) Reset(width, height int, edge EdgeRule) error {
	g, err := NewGrid(width, height, edge, s.cfg.Neighborhood)
	if err != nil {
		return err
	}
	s.grid = g
	s.cfg.Width, s.cfg.Height, s.cfg.Edge = width, height, g.Edge()
	s.generation = 0
	s.codes = make([]int, g.Len())
	s.rng = rand.New(rand.NewPCG(uint64(s.cfg.Seed), 0))
	return nil
}

//Clear removes every occupant and restarts the generation counter
func (s *Simulation) Clear() {
	s.grid.clear()
	s.generation = 0
}

//Load rebuilds the grid from an initializer board
func (s *Simulation) Load(b Board) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if b.CellType != "" && b.CellType != s.rules.Name() {
		return fmt.Errorf("%w: board is %q, simulation runs %q", ErrUnknownCellType, b.CellType, s.rules.Name())
	}
	//every code is turned into an occupant first, a rejected board leaves the grid untouched
	occupants := make([]Occupant, b.Width*b.Height)
	for y, row := range b.Rows {
		for x, code := range row {
			if code == 0 {
				continue
			}
			o, err := s.rules.NewOccupant(code)
			if err != nil {
				return fmt.Errorf("board (%d,%d): %w", x, y, err)
			}
			occupants[y*b.Width+x] = o
		}
	}
	if err := s.Reset(b.Width, b.Height, s.cfg.Edge); err != nil {
		return err
	}
	for i, o := range occupants {
		if o != nil {
			s.grid.patches[i].AttachOccupant(o)
		}
	}
	return nil
}

//Settle places occupants of the given state at in-bounds coordinates, out-of-range ones are skipped
func (s *Simulation) Settle(state int, coords [][]int) error {
	for _, c := range coords {
		if len(c) < 2 || !s.grid.inBounds(c[0], c[1]) {
			continue
		}
		o, err := s.rules.NewOccupant(state)
		if err != nil {
			return err
		}
		s.grid.patches[s.grid.index(c[0], c[1])].AttachOccupant(o)
	}
	return nil
}

//Populate drops n new occupants of state on random free patches
//a full grid is not an error: placed reports how many were actually added
func (s *Simulation) Populate(state, n int) (placed int, err error) {
	for ; placed < n; placed++ {
		p, err := s.grid.FindFreePatch(s.rng)
		if errors.Is(err, ErrNoFreePatch) {
			return placed, nil
		}
		if err != nil {
			return placed, err
		}
		o, err := s.rules.NewOccupant(state)
		if err != nil {
			return placed, err
		}
		p.AttachOccupant(o)
	}
	return placed, nil
}

//Step advances the grid by exactly one generation
func (s *Simulation) Step() StepReport {
	return s.StepWithOrder(Forward)
}

//StepWithOrder is Step with an explicit visiting order, the result does not depend on it
func (s *Simulation) StepWithOrder(order Order) StepReport {
	start := time.Now()
	s.generation++
	for i, p := range s.grid.patches {
		s.codes[i] = p.StateCode()
	}

	if s.cfg.Workers > 1 && order == Forward {
		s.prepareParallel(s.cfg.Workers)
	} else {
		s.prepare(order)
	}

	rep := StepReport{Generation: s.generation}
	rep.Conflicts = resolveClaims(s.grid)
	s.visit(order, func(p *Patch) {
		a, ok := p.Commit()
		if !ok {
			return
		}
		switch a.Kind {
		case ActMove:
			rep.Moves++
			if a.Feed {
				rep.Deaths++
			}
			if a.Spawn != nil {
				rep.Births++
			}
		case ActBirth:
			rep.Births++
		case ActDie:
			rep.Deaths++
		}
	})

	for i, p := range s.grid.patches {
		if s.codes[i] != p.StateCode() {
			rep.Changed = true
			break
		}
	}
	rep.Census = s.Census()
	for _, n := range rep.Census {
		rep.Population += n
	}
	rep.Duration = time.Since(start)
	return rep
}

func (s *Simulation) prepare(order Order) {
	r := newPatchRand()
	s.visit(order, func(p *Patch) {
		p.Prepare(s.rules, r.seed(s.cfg.Seed, s.generation, p.index))
	})
}

func (s *Simulation) visit(order Order, cb func(p *Patch)) {
	ps := s.grid.patches
	if order == Reverse {
		for i := len(ps) - 1; i >= 0; i-- {
			cb(ps[i])
		}
		return
	}
	for _, p := range ps {
		cb(p)
	}
}

//Census counts occupants per state code
func (s *Simulation) Census() map[int]int {
	c := make(map[int]int, len(s.rules.States()))
	for _, st := range s.rules.States() {
		c[st] = 0
	}
	for _, p := range s.grid.patches {
		if p.occupant != nil {
			c[p.occupant.State()]++
		}
	}
	return c
}

//Population returns the number of occupied patches
func (s *Simulation) Population() int {
	n := 0
	for _, p := range s.grid.patches {
		if p.occupant != nil {
			n++
		}
	}
	return n
}

//Occupants returns the presentation view of every occupied patch in row-major order
func (s *Simulation) Occupants() []OccupantView {
	v := make([]OccupantView, 0, s.grid.Len())
	for _, p := range s.grid.patches {
		if p.occupant == nil {
			continue
		}
		x, y := p.occupant.Position()
		v = append(v, OccupantView{X: x, Y: y, State: p.occupant.State()})
	}
	return v
}

//Codes returns the state code of every patch, row by row
func (s *Simulation) Codes() [][]int {
	rows := make([][]int, s.grid.height)
	for y := range rows {
		rows[y] = make([]int, s.grid.width)
		for x := range rows[y] {
			rows[y][x] = s.grid.patches[s.grid.index(x, y)].StateCode()
		}
	}
	return rows
}

//patchRand hands out a generator reseeded per patch, so random choices depend
//only on (seed, generation, patch) and never on visiting order or worker split
type patchRand struct {
	src *rand.PCG
	r   *rand.Rand
}

func newPatchRand() *patchRand {
	src := rand.NewPCG(0, 0)
	return &patchRand{src: src, r: rand.New(src)}
}

func (pr *patchRand) seed(seed int64, generation, index int) *rand.Rand {
	pr.src.Seed(uint64(seed)^uint64(generation)*0x9e3779b97f4a7c15, uint64(index))
	return pr.r
}
