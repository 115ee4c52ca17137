package minesweeper

import (
	"strconv"
	"strings"

	"github.com/zeu5/minesweeper-rl/types"
)

// State is the observable board: revealed cells show their content,
// hidden cells show Unknown. It is a snapshot, later steps do not change it.
type State struct {
	height int
	width  int
	mines  int
	cells  []Content
	hash   string
}

var _ types.State = &State{}

func newState(height, width, mines int, cells []Content) *State {
	key := make([]byte, len(cells))
	for i, c := range cells {
		key[i] = c.Byte()
	}
	return &State{
		height: height,
		width:  width,
		mines:  mines,
		cells:  cells,
		hash:   string(key),
	}
}

// ParseState reads a state back from its hash
func ParseState(height, width, mines int, hash string) (*State, bool) {
	if len(hash) != height*width {
		return nil, false
	}
	cells := make([]Content, len(hash))
	for i := 0; i < len(hash); i++ {
		switch ch := hash[i]; {
		case ch == '?':
			cells[i] = Unknown
		case ch == '*':
			cells[i] = Mine
		case ch >= '0' && ch <= '8':
			cells[i] = Content(ch - '0')
		default:
			return nil, false
		}
	}
	return newState(height, width, mines, cells), true
}

// Hash is a fixed-length row-major encoding, '?' hidden, '*' mine, '0'-'8' numbers
func (s *State) Hash() string {
	return s.hash
}

// Actions lists the hidden cells in row-major order
func (s *State) Actions() []types.Action {
	actions := make([]types.Action, 0)
	for i, c := range s.cells {
		if c == Unknown {
			actions = append(actions, &Click{Row: i / s.width, Col: i % s.width})
		}
	}
	return actions
}

func (s *State) Height() int { return s.height }
func (s *State) Width() int  { return s.width }

func (s *State) At(row, col int) Content {
	return s.cells[row*s.width+col]
}

func (s *State) Hidden() int {
	count := 0
	for _, c := range s.cells {
		if c == Unknown {
			count++
		}
	}
	return count
}

// RevealedSafe counts the revealed cells that are not mines
func (s *State) RevealedSafe() int {
	count := 0
	for _, c := range s.cells {
		if c >= 0 {
			count++
		}
	}
	return count
}

// Exploded is true once a mine has been revealed
func (s *State) Exploded() bool {
	for _, c := range s.cells {
		if c == Mine {
			return true
		}
	}
	return false
}

// Cleared is true when every safe cell is revealed and no mine is
func (s *State) Cleared() bool {
	return !s.Exploded() && s.Hidden() == s.mines
}

// String renders the board one row per line
func (s *State) String() string {
	var sb strings.Builder
	for row := 0; row < s.height; row++ {
		sb.WriteString(s.hash[row*s.width : (row+1)*s.width])
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Click probes a single cell
type Click struct {
	Row int
	Col int
}

var _ types.Action = &Click{}

func (c *Click) Hash() string {
	return strconv.Itoa(c.Row) + "," + strconv.Itoa(c.Col)
}
