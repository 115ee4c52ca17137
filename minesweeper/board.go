package minesweeper

import (
	"golang.org/x/exp/rand"
)

// Content of a cell as seen by the agent. Numbers 0..8 are adjacency counts.
type Content int8

const (
	Unknown Content = -2
	Mine    Content = -1
)

func (c Content) Byte() byte {
	switch c {
	case Unknown:
		return '?'
	case Mine:
		return '*'
	default:
		return byte('0' + c)
	}
}

type Position struct {
	Row int
	Col int
}

// Board holds the mine layout and the visibility of every cell, row-major.
// The layout is fixed at construction, visibility only goes from hidden to revealed.
type Board struct {
	Height int
	Width  int
	Mines  int

	cells    []Content
	revealed []bool
	// safe cells revealed so far
	revealedSafe int
}

// NewBoard places the given mines and computes the adjacency numbers.
// Duplicate positions count once.
func NewBoard(height, width int, mines []Position) *Board {
	b := &Board{
		Height:   height,
		Width:    width,
		cells:    make([]Content, height*width),
		revealed: make([]bool, height*width),
	}
	for _, m := range mines {
		i := b.index(m.Row, m.Col)
		if b.cells[i] != Mine {
			b.cells[i] = Mine
			b.Mines += 1
		}
	}
	b.calculateNumbers()
	return b
}

// RandomMines picks `count` distinct cells uniformly, retrying on collision.
// count must be smaller than height*width.
func RandomMines(r *rand.Rand, height, width, count int) []Position {
	taken := make(map[Position]bool, count)
	mines := make([]Position, 0, count)
	for len(mines) < count {
		p := Position{Row: r.Intn(height), Col: r.Intn(width)}
		if taken[p] {
			continue
		}
		taken[p] = true
		mines = append(mines, p)
	}
	return mines
}

func (b *Board) index(row, col int) int {
	return row*b.Width + col
}

func (b *Board) InBounds(row, col int) bool {
	return row >= 0 && row < b.Height && col >= 0 && col < b.Width
}

// neighbours in the clipped 8-neighbourhood, row-major
func (b *Board) neighbours(row, col int) []Position {
	out := make([]Position, 0, 8)
	for r := max(0, row-1); r < min(b.Height, row+2); r++ {
		for c := max(0, col-1); c < min(b.Width, col+2); c++ {
			if r == row && c == col {
				continue
			}
			out = append(out, Position{Row: r, Col: c})
		}
	}
	return out
}

func (b *Board) calculateNumbers() {
	for row := 0; row < b.Height; row++ {
		for col := 0; col < b.Width; col++ {
			i := b.index(row, col)
			if b.cells[i] == Mine {
				continue
			}
			count := 0
			for _, n := range b.neighbours(row, col) {
				if b.cells[b.index(n.Row, n.Col)] == Mine {
					count++
				}
			}
			b.cells[i] = Content(count)
		}
	}
}

// Cell returns the true content of a cell, regardless of visibility
func (b *Board) Cell(row, col int) Content {
	return b.cells[b.index(row, col)]
}

func (b *Board) Revealed(row, col int) bool {
	return b.revealed[b.index(row, col)]
}

// SafeRemaining is the number of safe cells still hidden
func (b *Board) SafeRemaining() int {
	return b.Height*b.Width - b.Mines - b.revealedSafe
}

// Reveal uncovers the cell and returns the number of cells revealed.
// A zero cell floods over its zero region and the numbered border, using an
// explicit stack. Each cell is revealed at most once.
func (b *Board) Reveal(row, col int) int {
	start := b.index(row, col)
	if b.revealed[start] {
		return 0
	}
	b.markRevealed(start)
	if b.cells[start] != 0 {
		return 1
	}

	count := 1
	stack := []Position{{Row: row, Col: col}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, n := range b.neighbours(p.Row, p.Col) {
			i := b.index(n.Row, n.Col)
			if b.revealed[i] {
				continue
			}
			// neighbours of a zero cell are never mines
			b.markRevealed(i)
			count++
			if b.cells[i] == 0 {
				stack = append(stack, n)
			}
		}
	}
	return count
}

func (b *Board) markRevealed(i int) {
	b.revealed[i] = true
	if b.cells[i] != Mine {
		b.revealedSafe += 1
	}
}

// Observe projects the board to what the agent can see
func (b *Board) Observe() *State {
	cells := make([]Content, len(b.cells))
	for i, c := range b.cells {
		if b.revealed[i] {
			cells[i] = c
		} else {
			cells[i] = Unknown
		}
	}
	return newState(b.Height, b.Width, b.Mines, cells)
}
