package main

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/integrii/flaggy"

	"patchsim/src/history"
	"patchsim/src/rules/life"
	"patchsim/src/rules/wator"
	"patchsim/src/universe"
	"patchsim/src/view"
)

type EnvOptions struct {
	interactive bool
	randomData  bool
	board       string
	template    string
	history     string
	params      []string
	verbose     bool
}

func main() {
	eo, uo := initOptions()

	level := slog.LevelWarn
	if eo.verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(eo, uo, log); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(eo *EnvOptions, uo *universe.Options, log *slog.Logger) error {
	var board *universe.Board
	if eo.board != "" {
		b, err := loadBoard(eo.board)
		if err != nil {
			return err
		}
		//the board decides the cell type and dimensions
		uo.CellType, uo.Width, uo.Height = b.CellType, b.Width, b.Height
		board = &b
	}

	var stateCh chan universe.Status
	if !eo.interactive {
		stateCh = make(chan universe.Status, 10) //the buffered channel to getting the universe status
	}

	u, err := universe.NewBaseUniverse(uo, stateCh, log)
	if err != nil {
		return err
	}
	defer u.Close()

	for _, tmpl := range append(life.Templates(), wator.Templates()...) {
		u.AddTemplate(tmpl)
	}

	var rec *history.Recorder
	if eo.history != "" {
		rec = history.NewRecorder(eo.history, log)
		u.RegisterViewer(rec)
	}

	switch {
	case board != nil:
		err = u.SettleBoard(*board)
	case eo.randomData:
		u.SettleWithRandomData()
	case eo.template != "":
		err = u.SettleTemplate(eo.template)
	default:
		err = settleDefault(u)
	}
	if err != nil {
		return err
	}

	if eo.interactive {
		names := make([]string, 0)
		for _, t := range u.Templates() {
			names = append(names, t.Name)
		}
		sort.Strings(names)
		v, err := view.NewViewTerminal(names, log)
		if err != nil {
			return err
		}
		u.RegisterViewer(v)
		v.Start()
	} else {
		out := view.NewConsoleOut()
		u.RegisterViewer(out)
		out.Start()
		u.Run()
		for st := range stateCh {
			if st.RunningMode == universe.RunningStateFinished {
				break
			}
		}
	}

	if rec != nil {
		return rec.Close()
	}
	return nil
}

//defaultTemplates are settled when neither a board nor a template is requested
var defaultTemplates = map[string][]string{
	life.Name:  {"stable"},
	wator.Name: {"school", "hunters"},
}

func settleDefault(u *universe.BaseUniverse) error {
	names, ok := defaultTemplates[u.Options().CellType]
	if !ok {
		u.SettleWithRandomData()
		return nil
	}
	for _, name := range names {
		if err := u.SettleTemplate(name); err != nil {
			return err
		}
	}
	return nil
}

func loadBoard(path string) (universe.Board, error) {
	f, err := os.Open(path)
	if err != nil {
		return universe.Board{}, err
	}
	defer f.Close()
	b, err := universe.ParseBoard(f)
	if err != nil {
		return b, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

func initOptions() (eo *EnvOptions, uo *universe.Options) {
	def := universe.DefaultUniverseOptions
	uo = &def
	eo = &EnvOptions{}

	flaggy.SetName("patchsim")
	flaggy.SetDescription("discrete-time grid simulation engine")
	flaggy.DefaultParser.ShowHelpOnUnexpected = true
	flaggy.Int(&uo.Width, "x", "width", "Width of a simulation field")
	flaggy.Int(&uo.Height, "y", "height", "Height of a simulation field")
	flaggy.Duration(&uo.Interval, "i", "interval", "Simulation speed (interval between the steps) in format the number with 'ms' suffix, for example 150ms")
	flaggy.Int(&uo.MaxSteps, "s", "maxSteps", "Limit the simulation to maxSteps")
	flaggy.String(&uo.Edge, "e", "edge", "Edge rule ["+strings.Join(universe.EdgeRuleNames(), "|")+"]")
	flaggy.String(&uo.Neighborhood, "", "hood", "Neighborhood [moore|vonneumann]")
	flaggy.String(&uo.CellType, "t", "type", "Cell type ["+strings.Join(universe.RuleNames(), "|")+"]")
	flaggy.StringSlice(&eo.params, "p", "param", "Rule parameter as key=value, repeatable")
	flaggy.Int64(&uo.Seed, "", "seed", "Random seed")
	flaggy.Int(&uo.Workers, "w", "workers", "Goroutines for the prepare pass")
	flaggy.Bool(&eo.interactive, "n", "interactive", "Start interactive mode")
	flaggy.Bool(&eo.randomData, "r", "random", "Settle with random data")
	flaggy.String(&eo.board, "b", "board", "Initial board file")
	flaggy.String(&eo.template, "", "template", "Built-in template to settle")
	flaggy.String(&eo.history, "", "history", "Write per-generation census to this parquet file")
	flaggy.Bool(&eo.verbose, "v", "verbose", "Debug logging")

	flaggy.Parse()

	params, err := parseParams(eo.params)
	if err != nil {
		flaggy.ShowHelpAndExit(err.Error())
	}
	uo.Params = params

	if _, err := universe.EdgeRuleByName(uo.Edge); err != nil {
		flaggy.ShowHelpAndExit(err.Error())
	}

	return
}

func parseParams(kv []string) (map[string]string, error) {
	params := make(map[string]string, len(kv))
	for _, p := range kv {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("%w: %q, want key=value", universe.ErrInvalidParam, p)
		}
		params[k] = v
	}
	return params, nil
}
