package universe

import (
	"errors"
	"strings"
	"testing"
)

func TestParseBoard(t *testing.T) {
	src := `# two sharks and a fish
wator 3 2

1 0 2
0 0 2
`
	b, err := ParseBoard(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if b.CellType != "wator" || b.Width != 3 || b.Height != 2 {
		t.Fatalf("unexpected header %+v", b)
	}
	if b.Rows[0][2] != 2 || b.Rows[1][0] != 0 {
		t.Fatalf("unexpected rows %v", b.Rows)
	}
}

func TestParseBoardMalformed(t *testing.T) {
	cases := map[string]string{
		"missing header":   "",
		"short header":     "life 3\n",
		"bad dimension":    "life x 2\n0 0\n0 0\n",
		"column mismatch":  "life 2 2\n0 0\n0 0 1\n",
		"row mismatch":     "life 2 2\n0 0\n",
		"non-numeric code": "life 2 1\n0 a\n",
	}
	for name, src := range cases {
		if _, err := ParseBoard(strings.NewReader(src)); !errors.Is(err, ErrMalformedBoard) {
			t.Fatalf("%s: expected ErrMalformedBoard, got %v", name, err)
		}
	}
	if _, err := ParseBoard(strings.NewReader("life 0 2\n")); !errors.Is(err, ErrInvalidDimension) {
		t.Fatalf("expected ErrInvalidDimension, got %v", err)
	}
}

func TestLoadBoard(t *testing.T) {
	s, err := NewSimulation(Config{Width: 1, Height: 1, Rules: stubRules{}})
	if err != nil {
		t.Fatal(err)
	}
	b := Board{CellType: "stub", Width: 3, Height: 2, Rows: [][]int{{1, 0, 2}, {0, 0, 1}}}
	if err := s.Load(b); err != nil {
		t.Fatal(err)
	}
	if s.Grid().Width() != 3 || s.Population() != 3 {
		t.Fatalf("loaded %d x %d with %d occupants", s.Grid().Width(), s.Grid().Height(), s.Population())
	}
	views := s.Occupants()
	if views[1].X != 2 || views[1].Y != 0 || views[1].State != 2 {
		t.Fatalf("unexpected view %+v", views[1])
	}

	bad := Board{CellType: "stub", Width: 4, Height: 1, Rows: [][]int{{1, 2, 7, 1}}}
	if err := s.Load(bad); !errors.Is(err, ErrUnknownState) {
		t.Fatalf("expected ErrUnknownState, got %v", err)
	}
	//a rejected board keeps the previous grid and occupants
	if s.Grid().Width() != 3 || s.Grid().Height() != 2 || s.Population() != 3 {
		t.Fatalf("rejected board changed the grid to %d x %d with %d occupants", s.Grid().Width(), s.Grid().Height(), s.Population())
	}
	b.CellType = "life"
	if err := s.Load(b); !errors.Is(err, ErrUnknownCellType) {
		t.Fatalf("expected ErrUnknownCellType, got %v", err)
	}
}
