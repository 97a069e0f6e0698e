package view

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"

	"patchsim/src/rules/wator"
	"patchsim/src/universe"
)

func TestPalette(t *testing.T) {
	p := PaletteFor("wator", []int{1, 2})
	if p.Glyph(0) != emptyGlyph || p.Glyph(9) != "?" {
		t.Fatal("unexpected glyph for empty or unknown codes")
	}
	if !strings.Contains(p.Glyph(1), stateGlyphs[0]) || !strings.Contains(p.Glyph(2), stateGlyphs[1]) {
		t.Fatalf("glyphs %q %q", p.Glyph(1), p.Glyph(2))
	}
	if p.Name(2) != "shark" || p.Name(5) != "state 5" {
		t.Fatalf("names %q %q", p.Name(2), p.Name(5))
	}
	l := p.Legend()
	if len(l) != 2 || !strings.HasSuffix(l[0], " fish") || !strings.HasSuffix(l[1], " shark") {
		t.Fatalf("legend %v", l)
	}
}

func TestConsoleOutRegister(t *testing.T) {
	o := universe.DefaultUniverseOptions
	o.Width, o.Height, o.CellType, o.Interval = 6, 4, wator.Name, 0
	u, err := universe.NewBaseUniverse(&o, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatal(err)
	}
	defer u.Close()

	var buf bytes.Buffer
	c := NewConsoleOutTo(&buf, 1)
	c.Register(u)
	if !strings.Contains(buf.String(), "Dimension: 6 x 4") {
		t.Fatalf("unexpected output %q", buf.String())
	}
	if c.palette.Name(wator.StateShark) != "shark" {
		t.Fatal("palette was not built from the snapshot")
	}
}
