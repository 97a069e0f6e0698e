package universe

import "math/rand/v2"

//Patch is one cell of the lattice, holding at most one occupant
type Patch struct {
	grid      *Grid
	index     int
	x, y      int
	occupant  Occupant
	neighbors []*Patch

	//pending is bound to the occupant seen at Prepare (nil for births)
	pending    Action
	pendingFor Occupant
	hasPending bool
}

func (p *Patch) X() int             { return p.x }
func (p *Patch) Y() int             { return p.y }
func (p *Patch) Index() int         { return p.index }
func (p *Patch) Grid() *Grid        { return p.grid }
func (p *Patch) Occupant() Occupant { return p.occupant }
func (p *Patch) IsEmpty() bool      { return p.occupant == nil }

//Neighbors returns the cached neighbor patches, the slice must not be modified
func (p *Patch) Neighbors() []*Patch { return p.neighbors }

//StateCode returns the occupant's state, 0 when empty
func (p *Patch) StateCode() int {
	if p.occupant == nil {
		return 0
	}
	return p.occupant.State()
}

//AttachOccupant binds o to the patch, evicting the current occupant
func (p *Patch) AttachOccupant(o Occupant) {
	if o == nil {
		p.DetachOccupant()
		return
	}
	p.DetachOccupant()
	o.Place(p.x, p.y)
	p.occupant = o
}

//DetachOccupant clears the patch, no-op when already empty
func (p *Patch) DetachOccupant() {
	p.occupant = nil
}

//Pending returns the action decided by the last Prepare
func (p *Patch) Pending() (Action, bool) {
	return p.pending, p.hasPending
}

//Prepare records the next action without touching any occupancy
func (p *Patch) Prepare(r Rules, rng *rand.Rand) {
	p.resetPending()
	if p.occupant != nil {
		p.pending = p.occupant.Decide(p, p.neighbors, rng)
		p.pendingFor = p.occupant
		p.hasPending = true
		return
	}
	gen, ok := r.(Generator)
	if !ok {
		return
	}
	if o := gen.Generate(p, p.neighbors, rng); o != nil {
		p.pending = Birth(o)
		p.hasPending = true
	}
}

//Commit applies the prepared action, it is the only place occupancy changes during a step
//ok is false when nothing was applied
func (p *Patch) Commit() (applied Action, ok bool) {
	a, has, owner := p.pending, p.hasPending, p.pendingFor
	p.resetPending()
	if !has || p.occupant != owner {
		//the occupant was eaten, or someone moved in
		return Action{}, false
	}

	switch a.Kind {
	case ActBirth:
		p.AttachOccupant(a.Spawn)
		return a, true
	case ActDie:
		settle(owner, a)
		p.DetachOccupant()
		return a, true
	case ActMove:
		dest := a.Dest
		if dest == nil || (!a.Feed && !dest.IsEmpty()) {
			a = Stay()
			break
		}
		if a.Feed {
			dest.DetachOccupant()
		}
		p.DetachOccupant()
		dest.AttachOccupant(owner)
		if a.Spawn != nil {
			p.AttachOccupant(a.Spawn)
		}
		settle(owner, a)
		return a, true
	}
	settle(owner, a)
	return a, true
}

func (p *Patch) resetPending() {
	p.pending = Action{}
	p.pendingFor = nil
	p.hasPending = false
}

//cancel drops the pending action, used when the occupant is eaten
func (p *Patch) cancel() { p.resetPending() }

//downgrade turns a losing claim into Stay
func (p *Patch) downgrade() {
	p.pending = Stay()
}

func settle(o Occupant, a Action) {
	if s, ok := o.(Settler); ok {
		s.Settle(a)
	}
}
