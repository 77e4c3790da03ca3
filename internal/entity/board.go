package entity

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/go-game-backend/internal/apperror"
)

// NoKo marks a board without a banned ko point.
const NoKo = -1

// Board is a square Go board stored as a flat row-major array: pos = row*size + col.
type Board struct {
	size  int
	cells []Stone
	ko    int
}

func NewBoard(size int) *Board {
	return &Board{
		size:  size,
		cells: make([]Stone, size*size),
		ko:    NoKo,
	}
}

func (that *Board) Size() int {
	return that.size
}

// Len is the number of cells on the board.
func (that *Board) Len() int {
	return len(that.cells)
}

func (that *Board) OnBoard(pos int) bool {
	return pos >= 0 && pos < len(that.cells)
}

// Stone returns the cell content, or Empty for positions off the board.
func (that *Board) Stone(pos int) Stone {
	if !that.OnBoard(pos) {
		return Empty
	}
	return that.cells[pos]
}

// Position converts a column and row to a linear index, or -1 when either is off the board.
func (that *Board) Position(col, row int) int {
	if col < 0 || col >= that.size || row < 0 || row >= that.size {
		return -1
	}
	return row*that.size + col
}

// Neighbours returns the orthogonally adjacent positions that lie on the board.
func (that *Board) Neighbours(pos int) []int {
	row, col := pos/that.size, pos%that.size
	neighbours := make([]int, 0, 4)

	if row > 0 {
		neighbours = append(neighbours, pos-that.size)
	}
	if row < that.size-1 {
		neighbours = append(neighbours, pos+that.size)
	}
	if col > 0 {
		neighbours = append(neighbours, pos-1)
	}
	if col < that.size-1 {
		neighbours = append(neighbours, pos+1)
	}

	return neighbours
}

// KoPoint returns the position banned for the next move, or NoKo.
func (that *Board) KoPoint() int {
	return that.ko
}

// ClearKo lifts the ko ban, e.g. after a pass.
func (that *Board) ClearKo() {
	that.ko = NoKo
}

// IsLegal reports whether pos is on the board, empty and not the ko point.
func (that *Board) IsLegal(pos int) bool {
	return that.OnBoard(pos) && that.cells[pos] == Empty && pos != that.ko
}

// Place puts a stone of the given colour on pos, removes every adjacent opposing
// group left without liberties and returns the captured positions.
// A rejected move leaves the board untouched and returns an error wrapping
// apperror.ErrIllegalMove.
func (that *Board) Place(pos int, color Stone) ([]int, error) {
	if err := that.checkPlacement(pos, color); err != nil {
		return nil, err
	}

	that.cells[pos] = color

	var captured []int
	for _, neighbour := range that.Neighbours(pos) {
		if that.cells[neighbour] != color.Other() {
			continue
		}

		group := FindGroup(that, neighbour, color.Other())
		if group.Liberties(that) == 0 {
			that.remove(group)
			captured = append(captured, group.Stones...)
		}
	}

	// a capture always opens a liberty, so only a non-capturing move can be suicide
	if len(captured) == 0 && FindGroup(that, pos, color).Liberties(that) == 0 {
		that.cells[pos] = Empty
		return nil, fmt.Errorf("%w: position %d is suicide", apperror.ErrIllegalMove, pos)
	}

	that.ko = NoKo
	if len(captured) == 1 {
		that.ko = captured[0]
	}

	return captured, nil
}

func (that *Board) checkPlacement(pos int, color Stone) error {
	switch {
	case color != Black && color != White:
		return fmt.Errorf("%w: %s cannot be placed", apperror.ErrIllegalMove, color)
	case !that.OnBoard(pos):
		return fmt.Errorf("%w: position %d is off the board", apperror.ErrIllegalMove, pos)
	case that.cells[pos] != Empty:
		return fmt.Errorf("%w: position %d is occupied", apperror.ErrIllegalMove, pos)
	case pos == that.ko:
		return fmt.Errorf("%w: position %d is banned by ko", apperror.ErrIllegalMove, pos)
	}

	return nil
}

func (that *Board) remove(group Group) {
	for _, pos := range group.Stones {
		that.cells[pos] = Empty
	}
}

// LegalMoves lists every position where color may play right now.
func (that *Board) LegalMoves(color Stone) []int {
	var moves []int
	for pos := range that.cells {
		if !that.IsLegal(pos) {
			continue
		}

		if _, err := that.Copy().Place(pos, color); err == nil {
			moves = append(moves, pos)
		}
	}
	return moves
}

// Score fills every empty region bordered by a single colour with that colour.
// Regions touching both colours, or no stones at all, stay empty.
func (that *Board) Score() {
	visited := make([]bool, len(that.cells))

	for pos, cell := range that.cells {
		if cell != Empty || visited[pos] {
			continue
		}

		region := FindGroup(that, pos, Empty)
		for _, p := range region.Stones {
			visited[p] = true
		}

		switch {
		case region.BorderedOnlyBy(that, Black):
			that.fill(region, Black)
		case region.BorderedOnlyBy(that, White):
			that.fill(region, White)
		}
	}
}

func (that *Board) fill(region Group, color Stone) {
	for _, pos := range region.Stones {
		that.cells[pos] = color
	}
}

// Count returns the number of cells holding the given colour.
func (that *Board) Count(color Stone) int {
	count := 0
	for _, cell := range that.cells {
		if cell == color {
			count++
		}
	}
	return count
}

func (that *Board) Copy() *Board {
	cells := make([]Stone, len(that.cells))
	copy(cells, that.cells)

	return &Board{
		size:  that.size,
		cells: cells,
		ko:    that.ko,
	}
}

// Equal compares the grids only; the ko point is not part of the position.
func (that *Board) Equal(other *Board) bool {
	if other == nil || that.size != other.size {
		return false
	}

	for i, cell := range that.cells {
		if other.cells[i] != cell {
			return false
		}
	}
	return true
}

func (that *Board) String() string {
	var b strings.Builder

	b.WriteString("   ")
	for col := 0; col < that.size; col++ {
		b.WriteString(strconv.Itoa(col % 10))
		b.WriteByte(' ')
	}

	for row := 0; row < that.size; row++ {
		b.WriteByte('\n')
		fmt.Fprintf(&b, "%2d ", row)
		for col := 0; col < that.size; col++ {
			b.WriteByte(that.cells[row*that.size+col].symbol())
			b.WriteByte(' ')
		}
	}

	return b.String()
}
