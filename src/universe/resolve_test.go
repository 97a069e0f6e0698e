package universe

import (
	"fmt"
	"math/rand/v2"
	"testing"
)

const (
	stubPrey     = 1
	stubPredator = 2
)

//stub moves into the first empty neighbor, predators feed on the first prey instead
type stub struct {
	Cell
	settled []Action
}

func (s *stub) Decide(_ *Patch, neighbors []*Patch, _ *rand.Rand) Action {
	if s.State() == stubPredator {
		for _, p := range neighbors {
			if p.StateCode() == stubPrey {
				return FeedOn(p)
			}
		}
	}
	for _, p := range neighbors {
		if p.IsEmpty() {
			return MoveTo(p)
		}
	}
	return Stay()
}

func (s *stub) Settle(a Action) { s.settled = append(s.settled, a) }

type stubRules struct{}

func (stubRules) Name() string  { return "stub" }
func (stubRules) States() []int { return []int{stubPrey, stubPredator} }
func (stubRules) NewOccupant(state int) (Occupant, error) {
	if state != stubPrey && state != stubPredator {
		return nil, fmt.Errorf("%w: %d", ErrUnknownState, state)
	}
	return &stub{Cell: NewCell(state)}, nil
}

//line builds a width x 1 bounded simulation with the given occupants (nil = empty)
func line(t *testing.T, occupants ...*stub) *Simulation {
	t.Helper()
	s, err := NewSimulation(Config{Width: len(occupants), Height: 1, Edge: Bounded{}, Rules: stubRules{}})
	if err != nil {
		t.Fatal(err)
	}
	for x, o := range occupants {
		if o != nil {
			s.Grid().patches[x].AttachOccupant(o)
		}
	}
	return s
}

func occupantAt(s *Simulation, x int) Occupant {
	return s.Grid().patches[x].Occupant()
}

func TestMoveConflictLowestOriginWins(t *testing.T) {
	for _, order := range []Order{Forward, Reverse} {
		a := &stub{Cell: NewCell(stubPrey)}
		b := &stub{Cell: NewCell(stubPrey)}
		s := line(t, a, nil, b)
		rep := s.StepWithOrder(order)

		if occupantAt(s, 1) != a {
			t.Fatalf("order %v: (1,0) should hold the mover from (0,0)", order)
		}
		if occupantAt(s, 2) != b || occupantAt(s, 0) != nil {
			t.Fatalf("order %v: loser should stay, origin of winner should be empty", order)
		}
		if rep.Conflicts != 1 || rep.Moves != 1 {
			t.Fatalf("order %v: conflicts=%d moves=%d", order, rep.Conflicts, rep.Moves)
		}
		if k := b.settled[len(b.settled)-1].Kind; k != ActStay {
			t.Fatalf("order %v: loser settled with %v", order, k)
		}
	}
}

func TestFeedConflict(t *testing.T) {
	for _, order := range []Order{Forward, Reverse} {
		a := &stub{Cell: NewCell(stubPredator)}
		prey := &stub{Cell: NewCell(stubPrey)}
		b := &stub{Cell: NewCell(stubPredator)}
		s := line(t, a, prey, b, nil)
		rep := s.StepWithOrder(order)

		if occupantAt(s, 1) != a || occupantAt(s, 2) != b {
			t.Fatalf("order %v: predator from (0,0) should have eaten", order)
		}
		if occupantAt(s, 0) != nil || occupantAt(s, 3) != nil {
			t.Fatalf("order %v: unexpected occupants at the ends", order)
		}
		if rep.Population != 2 || rep.Deaths != 1 || rep.Conflicts != 1 {
			t.Fatalf("order %v: %+v", order, rep)
		}
	}
}

func TestFeedCancelsPreyMove(t *testing.T) {
	for _, order := range []Order{Forward, Reverse} {
		pred := &stub{Cell: NewCell(stubPredator)}
		prey := &stub{Cell: NewCell(stubPrey)}
		s := line(t, pred, prey, nil)
		s.StepWithOrder(order)

		if occupantAt(s, 1) != pred {
			t.Fatalf("order %v: predator should sit on the prey's patch", order)
		}
		if occupantAt(s, 0) != nil || occupantAt(s, 2) != nil {
			t.Fatalf("order %v: the eaten prey must not have moved", order)
		}
		if len(prey.settled) != 0 {
			t.Fatalf("order %v: eaten prey was settled", order)
		}
		if x, y := pred.Position(); x != 1 || y != 0 {
			t.Fatalf("order %v: predator position (%d,%d)", order, x, y)
		}
	}
}

func TestPrepareDoesNotMutate(t *testing.T) {
	a := &stub{Cell: NewCell(stubPrey)}
	s := line(t, a, nil, nil)
	r := newPatchRand()
	s.Grid().Walk(func(p *Patch) {
		p.Prepare(s.Rules(), r.seed(1, 1, p.Index()))
	})
	if occupantAt(s, 0) != a || occupantAt(s, 1) != nil {
		t.Fatal("prepare changed occupancy")
	}
	pending, ok := s.Grid().patches[0].Pending()
	if !ok || pending.Kind != ActMove || pending.Dest != s.Grid().patches[1] {
		t.Fatalf("unexpected pending action %+v", pending)
	}
}
