package wator

import (
	"errors"
	"math/rand/v2"
	"testing"

	"patchsim/src/universe"
)

func newWator(t *testing.T, cfg Config, w, h int) (*Rules, *universe.Simulation) {
	t.Helper()
	r := New(cfg)
	s, err := universe.NewSimulation(universe.Config{Width: w, Height: h, Edge: universe.Bounded{}, Rules: r, Seed: 7})
	if err != nil {
		t.Fatal(err)
	}
	return r, s
}

func place(t *testing.T, s *universe.Simulation, x, y int, c *Creature) {
	t.Helper()
	p, err := s.Grid().PatchAt(x, y)
	if err != nil {
		t.Fatal(err)
	}
	p.AttachOccupant(c)
}

func at(s *universe.Simulation, x, y int) universe.Occupant {
	p, _ := s.Grid().PatchAt(x, y)
	return p.Occupant()
}

func TestFromMap(t *testing.T) {
	c, err := FromMap(nil)
	if err != nil || c != DefaultConfig() {
		t.Fatalf("defaults %+v, err %v", c, err)
	}
	c, err = FromMap(map[string]string{"feed_gain": "0", "fish_vitality": "3"})
	if err != nil || c.FeedGain != 0 || c.FishVitality != 3 {
		t.Fatalf("parsed %+v, err %v", c, err)
	}
	for _, bad := range []map[string]string{
		{"shark_vitality": "0"},
		{"shark_gestation": "-1"},
		{"fish_gestation": "four"},
		{"shark_vitalty": "9"},
		{"feed_gain": "2", "gestation": "3"},
	} {
		if _, err := FromMap(bad); !errors.Is(err, universe.ErrInvalidParam) {
			t.Fatalf("%v: expected ErrInvalidParam, got %v", bad, err)
		}
	}
}

func TestSharkPrefersFish(t *testing.T) {
	r, s := newWator(t, DefaultConfig(), 3, 1)
	shark := r.NewCreature(StateShark, 5, 10)
	fish := r.NewCreature(StateFish, 0, 4)
	place(t, s, 0, 0, shark)
	place(t, s, 1, 0, fish)

	rep := s.Step()
	if at(s, 1, 0) != shark || at(s, 0, 0) != nil || at(s, 2, 0) != nil {
		t.Fatal("the shark should have eaten the fish in place")
	}
	if shark.Vitality() != 7 || shark.TimeToBreed() != 9 {
		t.Fatalf("vitality %d ttb %d", shark.Vitality(), shark.TimeToBreed())
	}
	if x, y := shark.Position(); x != 1 || y != 0 {
		t.Fatalf("shark position (%d,%d)", x, y)
	}
	if rep.Population != 1 || rep.Census[StateFish] != 0 {
		t.Fatalf("unexpected report %+v", rep)
	}
}

func TestBlockedFishStays(t *testing.T) {
	r, s := newWator(t, DefaultConfig(), 2, 1)
	a := r.NewCreature(StateFish, 0, 4)
	b := r.NewCreature(StateFish, 0, 4)
	place(t, s, 0, 0, a)
	place(t, s, 1, 0, b)

	rep := s.Step()
	if at(s, 0, 0) != a || at(s, 1, 0) != b || rep.Moves != 0 || rep.Changed {
		t.Fatalf("blocked fish moved: %+v", rep)
	}
	if a.TimeToBreed() != 3 {
		t.Fatalf("ttb %d, gestation should still count down", a.TimeToBreed())
	}
}

func TestFishBreeds(t *testing.T) {
	r, s := newWator(t, DefaultConfig(), 3, 1)
	fish := r.NewCreature(StateFish, 0, 1)
	place(t, s, 0, 0, fish)

	rep := s.Step()
	if at(s, 1, 0) != fish {
		t.Fatal("the fish should have moved to (1,0)")
	}
	child, ok := at(s, 0, 0).(*Creature)
	if !ok || child.State() != StateFish || child.TimeToBreed() != DefaultConfig().FishGestation {
		t.Fatalf("expected a newborn fish at the origin, got %+v", at(s, 0, 0))
	}
	if fish.TimeToBreed() != DefaultConfig().FishGestation {
		t.Fatalf("parent gestation not reset: %d", fish.TimeToBreed())
	}
	if rep.Births != 1 || rep.Population != 2 {
		t.Fatalf("unexpected report %+v", rep)
	}
}

func TestStarvation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FishVitality = 2
	r, s := newWator(t, cfg, 1, 1)
	p, _ := s.Grid().PatchAt(0, 0)
	rng := rand.New(rand.NewPCG(1, 2))

	shark := r.NewCreature(StateShark, 2, 10)
	if a := shark.Decide(p, p.Neighbors(), rng); a.Kind != universe.ActStay {
		t.Fatalf("a shark with no way out should stay, got %v", a.Kind)
	}
	shark.Settle(universe.Stay())
	if a := shark.Decide(p, p.Neighbors(), rng); a.Kind != universe.ActDie {
		t.Fatalf("a shark at vitality %d should die, got %v", shark.Vitality(), a.Kind)
	}

	fish := r.NewCreature(StateFish, 1, 4)
	if a := fish.Decide(p, p.Neighbors(), rng); a.Kind != universe.ActDie {
		t.Fatalf("mortal fish should starve, got %v", a.Kind)
	}
	immortal := New(DefaultConfig()).NewCreature(StateFish, 0, 4)
	if a := immortal.Decide(p, p.Neighbors(), rng); a.Kind != universe.ActStay {
		t.Fatalf("fish without vitality must not starve, got %v", a.Kind)
	}
}

func TestUnknownState(t *testing.T) {
	if _, err := New(DefaultConfig()).NewOccupant(3); !errors.Is(err, universe.ErrUnknownState) {
		t.Fatalf("expected ErrUnknownState, got %v", err)
	}
}
