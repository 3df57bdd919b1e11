// Package overworld is the map side of a battle: a walkable tile grid, the
// enemies standing on it, and the bookkeeping that turns nearby enemies into
// battle reinforcements.
package overworld

import (
	"fmt"
	"strings"
)

const (
	tileFloor = '.'
	tileWall  = '#'
	tileWater = '~'
	tileTree  = 'T'
	tilePath  = ','
)

// TileMap is a rectangular grid of tiles addressed by (x, y) = (column, row).
//
// Invariant: every row has Width() tiles.
type TileMap struct {
	rows []string
}

// ParseTileMap builds a map from rows of tile characters.
// '.' and ',' are walkable; '#', '~' and 'T' are not.
//
// Postcondition: Returns an error for an empty map, ragged rows or unknown tiles.
func ParseTileMap(rows []string) (*TileMap, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("overworld: empty tile map")
	}
	width := len(rows[0])
	var errs []string
	for y, row := range rows {
		if len(row) != width {
			errs = append(errs, fmt.Sprintf("row %d has width %d, want %d", y, len(row), width))
			continue
		}
		for x, r := range row {
			switch r {
			case tileFloor, tileWall, tileWater, tileTree, tilePath:
			default:
				errs = append(errs, fmt.Sprintf("unknown tile %q at (%d,%d)", r, x, y))
			}
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("overworld: invalid tile map: %s", strings.Join(errs, "; "))
	}
	out := make([]string, len(rows))
	copy(out, rows)
	return &TileMap{rows: out}, nil
}

// Width returns the number of columns.
func (m *TileMap) Width() int { return len(m.rows[0]) }

// Height returns the number of rows.
func (m *TileMap) Height() int { return len(m.rows) }

// Tile returns the tile at (x, y). Out-of-bounds coordinates read as wall.
func (m *TileMap) Tile(x, y int) byte {
	if x < 0 || y < 0 || y >= len(m.rows) || x >= len(m.rows[y]) {
		return tileWall
	}
	return m.rows[y][x]
}

// IsWalkable implements combat.Walkability.
func (m *TileMap) IsWalkable(x, y int) bool {
	switch m.Tile(x, y) {
	case tileFloor, tilePath:
		return true
	}
	return false
}
