package view

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/logrusorgru/aurora"

	"patchsim/src/universe"
)

//ConsoleOut reports progress of a headless run
type ConsoleOut struct {
	u         universe.Universe
	out       io.Writer
	palette   Palette
	every     int
	startTime time.Time
}

func NewConsoleOut() *ConsoleOut {
	return &ConsoleOut{out: os.Stdout, every: 10}
}

//NewConsoleOutTo writes to w and reports every n iterations
func NewConsoleOutTo(w io.Writer, every int) *ConsoleOut {
	if every <= 0 {
		every = 1
	}
	return &ConsoleOut{out: w, every: every}
}

func (c *ConsoleOut) Refresh() {
	st := c.u.Status()
	if st.RunningMode == universe.RunningStateFinished {
		totalTime := time.Since(c.startTime).Round(time.Millisecond)
		resultData := map[string]interface{}{
			"Last iteration": st.IterationNum,
			"Total time":     totalTime,
			"Population":     st.LiveCells,
		}
		for code, n := range st.Census {
			resultData[c.palette.Name(code)] = n
		}
		fmt.Fprintln(c.out, aurora.Red("\nFinished:"))
		c.printHashData(resultData)
	} else if st.RunningMode == universe.RunningStateRun {
		if st.IterationNum%c.every == 0 {
			fmt.Fprintf(c.out, "  Iterations done: %v, %s\n", st.IterationNum, c.census(st))
		}
	}
}

func (c *ConsoleOut) Register(u universe.Universe) {
	c.u = u
	o := c.u.Options()
	snap := u.Snapshot()
	c.palette = PaletteFor(snap.CellType, snap.States)
	fmt.Fprintln(c.out, "Running configuration:")
	fmt.Fprintf(c.out, "  Dimension: %v x %v\n", o.Width, o.Height)
	fmt.Fprintf(c.out, "  Interval: %v\n", o.Interval)
	fmt.Fprintf(c.out, "  Max iterations: %v steps\n", o.MaxSteps)
	c.printHashData(o.Advanced)
}

func (c *ConsoleOut) Start() {
	c.startTime = time.Now()
	fmt.Fprintln(c.out, "\nSimulation started...")
}

func (c *ConsoleOut) census(st universe.Status) string {
	codes := make([]int, 0, len(st.Census))
	for code := range st.Census {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	s := ""
	for i, code := range codes {
		if i != 0 {
			s += ", "
		}
		s += fmt.Sprintf("%s %v", c.palette.Name(code), aurora.Bold(st.Census[code]))
	}
	return s
}

func (c *ConsoleOut) printHashData(d map[string]interface{}) {
	propNames := make([]string, 0, len(d))
	for k := range d {
		propNames = append(propNames, k)
	}
	sort.Strings(propNames)
	for _, propName := range propNames {
		fmt.Fprintf(c.out, "  %s: %v\n", propName, d[propName])
	}
}
