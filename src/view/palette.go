package view

import (
	"fmt"
	"sort"

	"github.com/logrusorgru/aurora"
)

//stateColors are handed out to the rules' states in their display order
var stateColors = []aurora.Color{
	aurora.GreenFg,
	aurora.CyanFg,
	aurora.RedFg,
	aurora.YellowFg,
	aurora.MagentaFg,
	aurora.BlueFg,
}

//stateGlyphs pair with stateColors so states stay distinguishable without colour
var stateGlyphs = []string{"█", "▓", "▒", "◆", "●", "■"}

const emptyGlyph = "░"

//Palette maps state codes to coloured terminal glyphs
type Palette struct {
	glyphs map[int]string
	names  map[int]string
}

//NewPalette assigns a glyph to every non-empty state code
func NewPalette(states []int, names map[int]string) Palette {
	p := Palette{glyphs: make(map[int]string, len(states)), names: names}
	for i, st := range states {
		c := stateColors[i%len(stateColors)]
		p.glyphs[st] = aurora.Colorize(stateGlyphs[i%len(stateGlyphs)], c).String()
	}
	return p
}

//Glyph returns the glyph of a state code, unknown codes render as '?'
func (p Palette) Glyph(code int) string {
	if code == 0 {
		return emptyGlyph
	}
	if g, ok := p.glyphs[code]; ok {
		return g
	}
	return "?"
}

//Name returns a human label for a state code
func (p Palette) Name(code int) string {
	if n, ok := p.names[code]; ok {
		return n
	}
	return fmt.Sprintf("state %d", code)
}

//Legend lists "glyph name" pairs in code order
func (p Palette) Legend() []string {
	codes := make([]int, 0, len(p.glyphs))
	for c := range p.glyphs {
		codes = append(codes, c)
	}
	sort.Ints(codes)
	l := make([]string, 0, len(codes))
	for _, c := range codes {
		l = append(l, p.glyphs[c]+" "+p.Name(c))
	}
	return l
}

//stateNames labels the state codes of the built-in rules
var stateNames = map[string]map[int]string{
	"life":  {1: "alive"},
	"wator": {1: "fish", 2: "shark"},
}

//PaletteFor builds the palette for a cell type
func PaletteFor(cellType string, states []int) Palette {
	return NewPalette(states, stateNames[cellType])
}
