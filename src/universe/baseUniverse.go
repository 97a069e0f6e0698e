package universe

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

//BaseUniverse is the host loop around a Simulation
//implements Universe interface
//every mutation of the simulation goes through the control goroutine or holds sim's lock
type BaseUniverse struct {
	options Options
	state   struct {
		Status
		sync.Mutex
	}
	sim struct {
		*Simulation
		sync.Mutex
	}
	stateCh   chan Status
	views     []Viewer
	templates map[string]Template
	controlCh chan func()
	closeCh   chan bool
	log       *slog.Logger
}

//NewBaseUniverse resolves the configured rules and edge, builds the simulation and starts the main loop
func NewBaseUniverse(o *Options, stateCh chan Status, log *slog.Logger) (*BaseUniverse, error) {
	if o == nil {
		def := DefaultUniverseOptions
		o = &def
	}
	if log == nil {
		log = slog.Default()
	}
	rules, err := LookupRules(o.CellType, o.Params)
	if err != nil {
		return nil, err
	}
	edge, err := EdgeRuleByName(o.Edge)
	if err != nil {
		return nil, err
	}
	hood, err := NeighborhoodByName(o.Neighborhood)
	if err != nil {
		return nil, err
	}
	sim, err := NewSimulation(Config{
		Width:        o.Width,
		Height:       o.Height,
		Edge:         edge,
		Neighborhood: hood,
		Rules:        rules,
		Seed:         o.Seed,
		Workers:      o.Workers,
	})
	if err != nil {
		return nil, err
	}

	o.Advanced = map[string]interface{}{
		"Cell type":    rules.Name(),
		"Edge":         edge.Name(),
		"Neighborhood": hood.String(),
		"Workers":      o.Workers,
	}

	u := BaseUniverse{
		options:   *o,
		controlCh: make(chan func(), 1),
		closeCh:   make(chan bool, 1),
		stateCh:   stateCh,
		templates: map[string]Template{},
		log:       log.With("cellType", rules.Name()),
	}
	u.sim.Simulation = sim
	u.state.Details = make(map[string]interface{})
	u.state.Census = sim.Census()

	go u.mainLoop()
	return &u, nil
}

//AddTemplate adds the seeding template to the internal storage
//the universe can be populated with this template by call SettleTemplate
func (u *BaseUniverse) AddTemplate(tmpl Template) {
	u.templates[tmpl.Name] = tmpl
}

//Templates lists the registered template names usable with this universe's rules
func (u *BaseUniverse) Templates() []Template {
	t := make([]Template, 0, len(u.templates))
	for _, tmpl := range u.templates {
		if tmpl.CellType == "" || tmpl.CellType == u.options.CellType {
			t = append(t, tmpl)
		}
	}
	return t
}

//SettleTemplate populates the universe with the seeding template
func (u *BaseUniverse) SettleTemplate(name string) error {
	tmpl, ok := u.templates[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}
	if tmpl.CellType != "" && tmpl.CellType != u.options.CellType {
		return fmt.Errorf("%w: template %q is for %q", ErrUnknownCellType, name, tmpl.CellType)
	}
	u.sim.Lock()
	err := u.sim.Settle(tmpl.State, tmpl.Coordinates)
	u.sim.Unlock()
	if err != nil {
		return err
	}
	u.log.Debug("template settled", "template", name)
	u.refreshCounters()
	u.refreshView()
	return nil
}

//SettleBoard replaces the grid with the initializer board
func (u *BaseUniverse) SettleBoard(b Board) error {
	u.sim.Lock()
	err := u.sim.Load(b)
	if err == nil {
		u.options.Width, u.options.Height = b.Width, b.Height
	}
	u.sim.Unlock()
	if err != nil {
		return err
	}
	u.log.Info("board loaded", "width", b.Width, "height", b.Height)
	u.state.Lock()
	u.state.IterationNum = 0
	u.state.Unlock()
	u.refreshCounters()
	u.refreshView()
	return nil
}

//SettleWithRandomData populates a quarter of the universe, shared evenly between the rules' states
func (u *BaseUniverse) SettleWithRandomData() {
	mode := u.runningMode()
	if mode != RunningStateManual && mode != RunningStateFinished {
		return
	}
	u.controlCh <- u.clear
	u.controlCh <- func() {
		u.sim.Lock()
		states := u.sim.Rules().States()
		total := u.sim.Grid().Len() / 4
		for i, st := range states {
			n := total / len(states)
			if i == 0 {
				n += total % len(states)
			}
			if _, err := u.sim.Populate(st, n); err != nil {
				u.log.Warn("random settle", "state", st, "err", err)
			}
		}
		u.sim.Unlock()
		u.refreshCounters()
		u.refreshView()
	}
}

//CycleCell moves the patch at x, y to the next state code (empty after the last one)
func (u *BaseUniverse) CycleCell(x int, y int) {
	u.sim.Lock()
	p, err := u.sim.Grid().PatchAt(x, y)
	if err != nil {
		u.sim.Unlock()
		return
	}
	next := nextState(u.sim.Rules().States(), p.StateCode())
	if next == 0 {
		p.DetachOccupant()
	} else if o, err := u.sim.Rules().NewOccupant(next); err == nil {
		p.AttachOccupant(o)
	}
	u.sim.Unlock()
	u.refreshCounters()
	u.refreshView()
}

func nextState(states []int, cur int) int {
	if cur == 0 {
		if len(states) == 0 {
			return 0
		}
		return states[0]
	}
	for i, st := range states {
		if st == cur && i+1 < len(states) {
			return states[i+1]
		}
	}
	return 0
}

//RegisterViewer registers the viewer - the universe will call the viewer when the state is changed
func (u *BaseUniverse) RegisterViewer(v Viewer) {
	u.views = append(u.views, v)
	v.Register(u)
}

//StateCh returns the channel with the universe's status updates
func (u *BaseUniverse) StateCh() chan Status {
	return u.stateCh
}

//Status returns current universe status represented by Status struct
func (u *BaseUniverse) Status() Status {
	u.state.Lock()
	defer u.state.Unlock()
	return u.state.Status
}

//Options returns current universe configuration represented by Options struct
func (u *BaseUniverse) Options() Options {
	return u.options
}

//Snapshot copies the current state codes for presentation
func (u *BaseUniverse) Snapshot() Snapshot {
	u.sim.Lock()
	defer u.sim.Unlock()
	g := u.sim.Grid()
	return Snapshot{
		Width:    g.Width(),
		Height:   g.Height(),
		CellType: u.sim.Rules().Name(),
		States:   u.sim.Rules().States(),
		Codes:    u.sim.Codes(),
	}
}

//Run starts the universe simulation, returns immediately
func (u *BaseUniverse) Run() {
	u.controlCh <- u.run
}

//Stop stops the universe simulation, returns immediately
//the Status struct will be written the stateCh on finish
func (u *BaseUniverse) Stop() {
	u.controlCh <- u.stop
}

//Step do one simulation step, returns immediately
//the Status struct will be written to the stateCh on start and on finish
func (u *BaseUniverse) Step() {
	u.controlCh <- u.step
}

//Clear clears the universe (kill all cells and reset all counters), returns immediately
//the Status struct will be written to the stateCh on finish
func (u *BaseUniverse) Clear() {
	u.controlCh <- u.clear
}

//Close stops the main loop, returns immediately
func (u *BaseUniverse) Close() {
	u.closeCh <- true
}

//mainLoop - the main cycle, should start as a goroutine
//waits for command and executes
func (u *BaseUniverse) mainLoop() {
	var c = false
	for !c {
		select {
		case cmd := <-u.controlCh:
			cmd()
		case c = <-u.closeCh:
		}
	}
	u.log.Debug("main loop closed")
}

func (u *BaseUniverse) runningMode() RunningState {
	u.state.Lock()
	defer u.state.Unlock()
	return u.state.RunningMode
}

//switchRunningState switch the state of the universe to RunningState
//also writes the new state to the stateCh to signal upper control software
func (u *BaseUniverse) switchRunningState(to RunningState) {
	u.publishState(u.setRunningState(to))
}

//setRunningState changes the mode without signalling, returns the new status
func (u *BaseUniverse) setRunningState(to RunningState) Status {
	u.state.Lock()
	defer u.state.Unlock()
	u.state.RunningMode = to
	return u.state.Status
}

//publishState writes st to the stateCh
//views are refreshed before publishing, a receiver of Finished may tear down at once
func (u *BaseUniverse) publishState(st Status) {
	if u.stateCh != nil {
		u.stateCh <- st
	}
}

//run starts the universe simulation
//simulation will stop on Stop() calling or when the boundary conditions are reached
func (u *BaseUniverse) run() {
	go func() {
		u.switchRunningState(RunningStateRun)
		u.log.Debug("run started")
		skipped := 0
		done := make(chan bool)
		for {
			mode := u.runningMode()
			if mode != RunningStateRun && mode != RunningStateStep {
				break
			}
			if skipped > u.options.MaxSkippedTicks {
				u.log.Warn("too many skipped ticks, finishing", "skipped", skipped)
				u.switchRunningState(RunningStateFinished)
				break
			}
			//skip the tick if the universe is still in the calculation mode
			if mode != RunningStateStep {
				skipped = 0
				u.controlCh <- func() {
					u.step()
					done <- true
				}
				<-done
			} else {
				skipped++
			}
			if u.options.Interval > 0 {
				time.Sleep(u.options.Interval)
			}
		}
	}()
}

//stop stops the universe running cycle
func (u *BaseUniverse) stop() {
	if u.runningMode() == RunningStateRun {
		u.switchRunningState(RunningStateManual)
	}
}

//step does one generation for entire universe
func (u *BaseUniverse) step() {
	finished := false
	rm := u.runningMode()
	maxIter := u.options.MaxSteps
	u.state.Lock()
	u.state.IterationNum++
	iter := u.state.IterationNum
	u.state.Unlock()
	defer func() {
		to := rm
		if finished {
			u.log.Info("simulation finished", "iteration", iter)
			to = RunningStateFinished
		}
		st := u.setRunningState(to)
		u.refreshView()
		u.publishState(st)
	}()

	if maxIter != 0 && iter >= maxIter {
		finished = true
		return
	}
	u.switchRunningState(RunningStateStep)
	u.sim.Lock()
	rep := u.sim.Step()
	u.sim.Unlock()

	u.state.Lock()
	u.state.LiveCells = rep.Population
	u.state.Census = rep.Census
	u.state.Moves = rep.Moves
	u.state.Births = rep.Births
	u.state.Deaths = rep.Deaths
	u.state.Conflicts = rep.Conflicts
	u.state.IterationTime = rep.Duration
	u.state.Unlock()

	if rep.Population == 0 || !rep.Changed {
		finished = true
	}
}

//clear clears the universe data, reset all counters
func (u *BaseUniverse) clear() {
	u.sim.Lock()
	u.sim.Clear()
	census := u.sim.Census()
	u.sim.Unlock()

	u.state.Lock()
	u.state.IterationNum = 0
	u.state.LiveCells = 0
	u.state.Census = census
	u.state.Moves, u.state.Births, u.state.Deaths, u.state.Conflicts = 0, 0, 0, 0
	u.state.Unlock()
	st := u.setRunningState(RunningStateManual)
	u.refreshView()
	u.publishState(st)
}

//refreshCounters recomputes population figures after an out-of-step change
func (u *BaseUniverse) refreshCounters() {
	u.sim.Lock()
	census := u.sim.Census()
	pop := u.sim.Population()
	u.sim.Unlock()
	u.state.Lock()
	u.state.Census = census
	u.state.LiveCells = pop
	u.state.Unlock()
}

//refreshView calls Refresh event for all registered views
func (u *BaseUniverse) refreshView() {
	for _, v := range u.views {
		v.Refresh()
	}
}
