package universe

import (
	"golang.org/x/sync/errgroup"
)

const (
	DefWorkers          = 10 //default workers
	DefMinRowsPerWorker = 3  //minimum rows for one worker
)

//workBand is a contiguous range of rows prepared by one worker
type workBand struct {
	y1 int
	y2 int
}

//splitRows cuts the grid into at most workers row bands of at least DefMinRowsPerWorker rows
func splitRows(height, workers int) []workBand {
	if workers < 1 {
		workers = 1
	}
	linesPerWorker := height / workers
	if linesPerWorker < DefMinRowsPerWorker {
		linesPerWorker = DefMinRowsPerWorker
	} else if linesPerWorker*workers < height {
		linesPerWorker++
	}
	bands := make([]workBand, 0, workers)
	for y1 := 0; y1 < height; y1 += linesPerWorker {
		y2 := y1 + linesPerWorker - 1
		if y2 > height-1 {
			y2 = height - 1
		}
		bands = append(bands, workBand{y1, y2})
	}
	return bands
}

//prepareParallel runs the prepare pass over row bands
//Decide only reads snapshot occupancy and each patch writes only its own pending slot
func (s *Simulation) prepareParallel(workers int) {
	var eg errgroup.Group
	eg.SetLimit(workers)
	for _, b := range splitRows(s.grid.height, workers) {
		eg.Go(func() error {
			r := newPatchRand()
			for y := b.y1; y <= b.y2; y++ {
				for x := 0; x < s.grid.width; x++ {
					p := s.grid.patches[s.grid.index(x, y)]
					p.Prepare(s.rules, r.seed(s.cfg.Seed, s.generation, p.index))
				}
			}
			return nil
		})
	}
	_ = eg.Wait()
}
