package universe

import "time"

//Universe is the host around a Simulation: it serialises commands, runs the timer loop and notifies viewers
type Universe interface {
	Status() Status
	Options() Options
	Snapshot() Snapshot
	StateCh() chan Status
	AddTemplate(tmpl Template)
	SettleTemplate(name string) error
	SettleBoard(b Board) error
	SettleWithRandomData()
	CycleCell(x int, y int)
	RegisterViewer(v Viewer)
	Run()
	Stop()
	Step()
	Clear()
	Close()
}

//Options represents the Universe's configurable options
type Options struct {
	Width           int
	Height          int
	Interval        time.Duration
	MaxSteps        int
	MaxSkippedTicks int
	Edge            string            //edge rule name
	Neighborhood    string            //"moore" or "vonneumann"
	CellType        string            //registered rules name
	Params          map[string]string //rules parameters
	Seed            int64
	Workers         int
	Advanced        map[string]interface{} //advanced options (engine specific)
}

//Status represents the status of the Universe at concrete moment
type Status struct {
	IterationNum  int
	RunningMode   RunningState
	LiveCells     int
	Census        map[int]int //occupants per state code
	Moves         int
	Births        int
	Deaths        int
	Conflicts     int
	IterationTime time.Duration
	Details       map[string]interface{} //advanced details (engine specific)
}

//Snapshot is a read-only copy of the grid for presentation
type Snapshot struct {
	Width    int
	Height   int
	CellType string
	States   []int   //non-empty state codes of the rules
	Codes    [][]int //state code per patch, row by row
}

//Viewer is the interface to any Viewer - the object who can display simulation data or control the engine
type Viewer interface {
	Refresh()
	Register(u Universe)
	Start()
}

//The universe running status at the concrete moment
type RunningState int

//default options
const (
	DefSimulationInterval = time.Millisecond * 100
	DefMaxSteps           = 1000
	DefWidth              = 40
	DefHeight             = 15
	DefMaxSkippedTicks    = 5
	DefEdge               = "toroidal"
	DefCellType           = "life"
)

const (
	RunningStateManual   RunningState = 0x0
	RunningStateStep     RunningState = 0x1
	RunningStateRun      RunningState = 0x2
	RunningStateFinished RunningState = 0x3
)

func (s RunningState) String() string {
	switch s {
	case RunningStateStep:
		return "step"
	case RunningStateRun:
		return "running"
	case RunningStateFinished:
		return "finished"
	}
	return "waiting"
}

var DefaultUniverseOptions = Options{
	Width:           DefWidth,
	Height:          DefHeight,
	Interval:        DefSimulationInterval,
	MaxSteps:        DefMaxSteps,
	MaxSkippedTicks: DefMaxSkippedTicks,
	Edge:            DefEdge,
	Neighborhood:    "moore",
	CellType:        DefCellType,
	Seed:            1,
	Workers:         1,
}
