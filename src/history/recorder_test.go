package history

import (
	"io"
	"log/slog"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"patchsim/src/rules/life"
	"patchsim/src/universe"
)

func TestRecordDeduplicates(t *testing.T) {
	r := NewRecorder("", slog.New(slog.NewTextHandler(io.Discard, nil)))
	r.cellType = "wator"
	st := universe.Status{
		IterationNum:  3,
		LiveCells:     7,
		Census:        map[int]int{2: 2, 1: 5},
		Moves:         4,
		Births:        1,
		IterationTime: 1500 * time.Microsecond,
	}
	r.Record(st)
	r.Record(st)

	rows := r.Rows()
	if len(rows) != 1 {
		t.Fatalf("%d rows, expected 1", len(rows))
	}
	want := Row{
		CellType:       "wator",
		Generation:     3,
		Population:     7,
		States:         []int32{1, 2},
		Counts:         []int32{5, 2},
		Moves:          4,
		Births:         1,
		DurationMicros: 1500,
	}
	if !reflect.DeepEqual(rows[0], want) {
		t.Fatalf("got %+v\nexpected %+v", rows[0], want)
	}
}

func TestParquetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs", "history.parquet")
	r := NewRecorder(path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r.cellType = "life"
	for i := 0; i < 5; i++ {
		r.Record(universe.Status{IterationNum: i, LiveCells: 10 - i, Census: map[int]int{1: 10 - i}, Deaths: 1})
	}
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}

	got, err := ReadParquet(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 5 {
		t.Fatalf("read %d rows, expected 5", len(got))
	}
	for i, row := range got {
		if row.Generation != int32(i) || row.Population != int32(10-i) || row.CellType != "life" {
			t.Fatalf("row %d: %+v", i, row)
		}
		if len(row.Counts) != 1 || row.Counts[0] != int32(10-i) {
			t.Fatalf("row %d census %v", i, row.Counts)
		}
	}
}

func TestRecorderHasFinalGeneration(t *testing.T) {
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	for run := 0; run < 20; run++ {
		o := universe.DefaultUniverseOptions
		o.Width, o.Height, o.Edge, o.Interval, o.MaxSteps = 5, 5, "bounded", 0, 4
		stateCh := make(chan universe.Status, 10)
		u, err := universe.NewBaseUniverse(&o, stateCh, quiet)
		if err != nil {
			t.Fatal(err)
		}
		for _, tmpl := range life.Templates() {
			u.AddTemplate(tmpl)
		}
		r := NewRecorder(filepath.Join(t.TempDir(), "h.parquet"), quiet)
		u.RegisterViewer(r)
		if err := u.SettleTemplate("blinker"); err != nil {
			t.Fatal(err)
		}

		u.Run()
		var st universe.Status
		for st = range stateCh {
			if st.RunningMode == universe.RunningStateFinished {
				break
			}
		}
		//no waiting here: the final row must already be buffered
		rows := r.Rows()
		u.Close()
		if len(rows) == 0 || rows[len(rows)-1].Generation != int32(st.IterationNum) {
			t.Fatalf("run %d: last recorded generation %v, finished at %d", run, rows, st.IterationNum)
		}
	}
}
