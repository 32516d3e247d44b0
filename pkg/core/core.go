package core

// Direction is the trend state of an indicator at one index
type Direction int8

const (
	Bearish Direction = -1
	Neutral Direction = 0
	Bullish Direction = 1
)

func (d Direction) String() string {
	switch d {
	case Bullish:
		return "bullish"
	case Bearish:
		return "bearish"
	default:
		return "neutral"
	}
}

// MarshalText implements encoding.TextMarshaler
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// SideType is the side of a simulated position
type SideType string

const (
	SideNone  SideType = "none"
	SideLong  SideType = "long"
	SideShort SideType = "short"
)

// Opposite returns the other directional side; none stays none
func (s SideType) Opposite() SideType {
	switch s {
	case SideLong:
		return SideShort
	case SideShort:
		return SideLong
	default:
		return SideNone
	}
}
