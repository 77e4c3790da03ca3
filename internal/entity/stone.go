package entity

// Stone is the content of a single board cell.
type Stone uint8

const (
	Empty Stone = iota
	Black
	White
)

// Other returns the opposing colour. Empty has no opponent and is returned as is.
func (s Stone) Other() Stone {
	switch s {
	case Black:
		return White
	case White:
		return Black
	default:
		return Empty
	}
}

func (s Stone) String() string {
	switch s {
	case Black:
		return "BLACK"
	case White:
		return "WHITE"
	default:
		return "EMPTY"
	}
}

// symbol is used by Board.String.
func (s Stone) symbol() byte {
	switch s {
	case Black:
		return 'B'
	case White:
		return 'W'
	default:
		return '.'
	}
}

// ParseStone reads the colour names used on the wire.
func ParseStone(name string) (Stone, bool) {
	switch name {
	case "BLACK":
		return Black, true
	case "WHITE":
		return White, true
	default:
		return Empty, false
	}
}
