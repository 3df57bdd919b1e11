package combat

// GridSize is the width and height of a formation grid.
const GridSize = 3

const (
	// RowFront is the melee row; actors here deal bonus physical damage.
	RowFront = 0
	// RowBack is the rear row; targets here take reduced physical damage.
	RowBack = 2
)

// Direction names the side of the battlefield a squad occupies.
type Direction string

const (
	DirCenter Direction = "center"
	DirFront  Direction = "front"
	DirBack   Direction = "back"
	DirLeft   Direction = "left"
	DirRight  Direction = "right"
)

// Directions lists every grid direction in iteration order.
var Directions = []Direction{DirCenter, DirFront, DirBack, DirLeft, DirRight}

// Valid reports whether d is one of the five grid directions.
func (d Direction) Valid() bool {
	switch d {
	case DirCenter, DirFront, DirBack, DirLeft, DirRight:
		return true
	}
	return false
}

// Label returns the phrase used in the battle log for an arrival from d.
func (d Direction) Label() string {
	switch d {
	case DirFront:
		return "front"
	case DirBack:
		return "rear"
	case DirLeft:
		return "left flank"
	case DirRight:
		return "right flank"
	default:
		return string(d)
	}
}

// Grid is a 3x3 formation for one squad.
//
// Invariant: each cell holds at most one combatant, and every occupant's
// Row/Col/Direction match its cell.
type Grid struct {
	Direction Direction
	// Active is true when this grid participates in the battle.
	Active bool
	// Entering is true while the squad's slide-in is in progress.
	Entering bool
	// SlideOffset runs from 1 to 0 over the entrance animation.
	SlideOffset float64

	cells [GridSize][GridSize]*Combatant
}

// NewGrid returns an empty, inactive grid for dir.
func NewGrid(dir Direction) *Grid {
	return &Grid{Direction: dir}
}

func inBounds(row, col int) bool {
	return row >= 0 && row < GridSize && col >= 0 && col < GridSize
}

// Place puts c at (row, col).
//
// Postcondition: Returns false and leaves the grid unchanged when the
// coordinates are out of bounds or the cell is occupied; otherwise records
// the location on c and returns true.
func (g *Grid) Place(c *Combatant, row, col int) bool {
	if c == nil || !inBounds(row, col) {
		return false
	}
	if g.cells[row][col] != nil {
		return false
	}
	g.cells[row][col] = c
	c.Row = row
	c.Col = col
	c.Direction = g.Direction
	return true
}

// Remove clears the first cell holding c, in row-major order.
func (g *Grid) Remove(c *Combatant) bool {
	for r := 0; r < GridSize; r++ {
		for col := 0; col < GridSize; col++ {
			if g.cells[r][col] == c {
				g.cells[r][col] = nil
				return true
			}
		}
	}
	return false
}

// At returns the occupant of (row, col), or nil.
func (g *Grid) At(row, col int) *Combatant {
	if !inBounds(row, col) {
		return nil
	}
	return g.cells[row][col]
}

// Units returns every occupant in row-major order.
func (g *Grid) Units() []*Combatant {
	var out []*Combatant
	for r := 0; r < GridSize; r++ {
		for col := 0; col < GridSize; col++ {
			if u := g.cells[r][col]; u != nil {
				out = append(out, u)
			}
		}
	}
	return out
}

// AliveUnits returns the living occupants in row-major order.
func (g *Grid) AliveUnits() []*Combatant {
	var out []*Combatant
	for _, u := range g.Units() {
		if u.Alive {
			out = append(out, u)
		}
	}
	return out
}

// RemoveDead clears every cell holding a dead combatant and returns how many were cleared.
func (g *Grid) RemoveDead() int {
	n := 0
	for r := 0; r < GridSize; r++ {
		for col := 0; col < GridSize; col++ {
			if u := g.cells[r][col]; u != nil && !u.Alive {
				g.cells[r][col] = nil
				n++
			}
		}
	}
	return n
}
