package universe

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

//Board is the initializer input: one state code per coordinate, row-major, 0 is empty
type Board struct {
	CellType string
	Width    int
	Height   int
	Rows     [][]int
}

//Validate checks the table shape against the declared dimensions
func (b Board) Validate() error {
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("%w: %d x %d", ErrInvalidDimension, b.Width, b.Height)
	}
	if len(b.Rows) != b.Height {
		return fmt.Errorf("%w: %d rows, want %d", ErrMalformedBoard, len(b.Rows), b.Height)
	}
	for y, r := range b.Rows {
		if len(r) != b.Width {
			return fmt.Errorf("%w: row %d has %d columns, want %d", ErrMalformedBoard, y, len(r), b.Width)
		}
	}
	return nil
}

//ParseBoard reads a board in the text form
//
//	# comment
//	<celltype> <width> <height>
//	0 1 0 ...
//
//blank lines and '#' comments are ignored
func ParseBoard(r io.Reader) (Board, error) {
	var b Board
	sc := bufio.NewScanner(r)
	line := 0
	header := false
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if !header {
			if len(fields) != 3 {
				return b, fmt.Errorf("%w: line %d: header wants <celltype> <width> <height>", ErrMalformedBoard, line)
			}
			w, errW := strconv.Atoi(fields[1])
			h, errH := strconv.Atoi(fields[2])
			if errW != nil || errH != nil {
				return b, fmt.Errorf("%w: line %d: non-numeric dimension", ErrMalformedBoard, line)
			}
			b.CellType, b.Width, b.Height = fields[0], w, h
			header = true
			continue
		}
		row := make([]int, len(fields))
		for i, f := range fields {
			v, err := strconv.Atoi(f)
			if err != nil {
				return b, fmt.Errorf("%w: line %d: token %q is not a state code", ErrMalformedBoard, line, f)
			}
			row[i] = v
		}
		b.Rows = append(b.Rows, row)
	}
	if err := sc.Err(); err != nil {
		return b, err
	}
	if !header {
		return b, fmt.Errorf("%w: missing header", ErrMalformedBoard)
	}
	return b, b.Validate()
}

//Template represent the seeding template which can be used to settle the universe with predefined data
type Template struct {
	Name        string  //template name
	Descr       string  //template descr
	CellType    string  //rules the template is meant for, empty for any
	State       int     //state code placed at every coordinate
	Coordinates [][]int //array of [x,y] coordinates
}
