package geo

import "fmt"

// Side is one of the four edges of a table box.
type Side int

const (
	Left Side = iota
	Right
	Top
	Bottom
)

var sideNames = [...]string{"left", "right", "top", "bottom"}

func (s Side) String() string {
	if s < Left || s > Bottom {
		return fmt.Sprintf("Side(%d)", int(s))
	}
	return sideNames[s]
}

func ParseSide(s string) (Side, error) {
	for i, name := range sideNames {
		if name == s {
			return Side(i), nil
		}
	}
	return 0, fmt.Errorf("unknown side %q", s)
}

func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Side) UnmarshalText(b []byte) error {
	v, err := ParseSide(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// IsHorizontal reports whether the side faces along the x axis.
func (s Side) IsHorizontal() bool {
	return s == Left || s == Right
}

func (s Side) IsVertical() bool {
	return s == Top || s == Bottom
}

func (s Side) GetOpposite() Side {
	switch s {
	case Left:
		return Right
	case Right:
		return Left
	case Top:
		return Bottom
	default:
		return Top
	}
}

// Normal is the outward unit normal of the side.
func (s Side) Normal() Vector {
	switch s {
	case Left:
		return NewVector(-1, 0)
	case Right:
		return NewVector(1, 0)
	case Top:
		return NewVector(0, -1)
	default:
		return NewVector(0, 1)
	}
}

// Tangent is the unit vector along the side, used to fan out ports.
func (s Side) Tangent() Vector {
	if s.IsHorizontal() {
		return NewVector(0, 1)
	}
	return NewVector(1, 0)
}
