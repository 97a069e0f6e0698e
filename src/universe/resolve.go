package universe

//resolveClaims settles competing Move/Birth claims between the prepare and commit passes
//
//feeding claims go first: per destination the lowest origin index wins and the prey's
//own pending action is cancelled. Claims on empty patches go next, again lowest origin
//index wins (a birth's origin is the patch itself). Losing moves become Stay, losing
//births are dropped. Nothing here depends on the order the patches are visited in.
func resolveClaims(g *Grid) (conflicts int) {
	feeds := map[int]*Patch{}
	for _, p := range g.patches {
		if !p.hasPending || p.pending.Kind != ActMove || !p.pending.Feed || p.pending.Dest == nil {
			continue
		}
		d := p.pending.Dest.index
		if w, ok := feeds[d]; ok {
			conflicts++
			if w.index < p.index {
				p.downgrade()
				continue
			}
			w.downgrade()
		}
		feeds[d] = p
	}
	for d := range feeds {
		g.patches[d].cancel()
	}

	claims := map[int]*Patch{}
	for _, p := range g.patches {
		if !p.hasPending || !p.pending.claims() || p.pending.Feed {
			continue
		}
		d := p.index
		if p.pending.Kind == ActMove {
			if p.pending.Dest == nil {
				p.downgrade()
				continue
			}
			d = p.pending.Dest.index
		}
		if w, ok := claims[d]; ok {
			conflicts++
			if w.index < p.index {
				p.lose()
				continue
			}
			w.lose()
		}
		claims[d] = p
	}
	return conflicts
}

func (p *Patch) lose() {
	if p.pending.Kind == ActBirth {
		p.cancel()
		return
	}
	p.downgrade()
}
