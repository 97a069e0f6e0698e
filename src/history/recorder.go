//Package history records one census row per generation and writes the series
//to a parquet file
package history

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"

	"patchsim/src/universe"
)

//Row is a single generation of a run
//
//States and Counts are parallel: Counts[i] occupants carried state code States[i]
type Row struct {
	CellType       string  `parquet:"cell_type,dict"`
	Generation     int32   `parquet:"generation"`
	Population     int32   `parquet:"population"`
	States         []int32 `parquet:"states"`
	Counts         []int32 `parquet:"counts"`
	Moves          int32   `parquet:"moves"`
	Births         int32   `parquet:"births"`
	Deaths         int32   `parquet:"deaths"`
	Conflicts      int32   `parquet:"conflicts"`
	DurationMicros int64   `parquet:"duration_us"`
}

//Recorder is a universe.Viewer that buffers a Row per finished generation
type Recorder struct {
	path     string
	cellType string
	log      *slog.Logger

	mu   sync.Mutex
	u    universe.Universe
	last int
	rows []Row
}

func NewRecorder(path string, log *slog.Logger) *Recorder {
	if log == nil {
		log = slog.Default()
	}
	return &Recorder{path: path, log: log, last: -1}
}

func (r *Recorder) Register(u universe.Universe) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.u = u
	r.cellType = u.Options().CellType
}

func (r *Recorder) Start() {}

//Refresh records the universe status once per generation
func (r *Recorder) Refresh() {
	r.mu.Lock()
	u := r.u
	r.mu.Unlock()
	if u == nil {
		return
	}
	st := u.Status()
	if st.RunningMode == universe.RunningStateStep {
		return
	}
	r.Record(st)
}

//Record appends st unless its generation was already recorded
func (r *Recorder) Record(st universe.Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if st.IterationNum == r.last {
		return
	}
	r.last = st.IterationNum
	r.rows = append(r.rows, r.row(st))
}

func (r *Recorder) row(st universe.Status) Row {
	codes := make([]int, 0, len(st.Census))
	for code := range st.Census {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	row := Row{
		CellType:       r.cellType,
		Generation:     int32(st.IterationNum),
		Population:     int32(st.LiveCells),
		States:         make([]int32, len(codes)),
		Counts:         make([]int32, len(codes)),
		Moves:          int32(st.Moves),
		Births:         int32(st.Births),
		Deaths:         int32(st.Deaths),
		Conflicts:      int32(st.Conflicts),
		DurationMicros: st.IterationTime.Microseconds(),
	}
	for i, code := range codes {
		row.States[i] = int32(code)
		row.Counts[i] = int32(st.Census[code])
	}
	return row
}

//Rows returns a copy of the buffered rows
func (r *Recorder) Rows() []Row {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Row(nil), r.rows...)
}

//Close writes the buffered rows to the recorder's path
func (r *Recorder) Close() error {
	rows := r.Rows()
	if err := WriteParquet(r.path, rows); err != nil {
		return err
	}
	r.log.Info("history written", "path", r.path, "rows", len(rows))
	return nil
}

//WriteParquet writes rows to outPath through a temp file and an atomic rename
func WriteParquet(outPath string, rows []Row) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmpPath := outPath + ".tmp"
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, rows,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", "census_row_v1"),
	); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write parquet: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("rename parquet: %w", err)
	}
	return nil
}

//ReadParquet loads rows written by WriteParquet
func ReadParquet(path string) ([]Row, error) {
	rows, err := parquet.ReadFile[Row](path)
	if err != nil {
		return nil, fmt.Errorf("read parquet: %w", err)
	}
	return rows, nil
}
