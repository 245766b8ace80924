package trace

import "fmt"

// Direction is one of the four axis-aligned headings of a boundary walk.
type Direction int

const (
	// AutoDirection asks the seed resolver to pick a direction.
	AutoDirection Direction = -1

	Up    Direction = 0
	Right Direction = 1
	Down  Direction = 2
	Left  Direction = 3
)

var (
	stepX = [4]int{0, 1, 0, -1}
	stepY = [4]int{-1, 0, 1, 0}

	directionNames = [4]string{"up", "right", "down", "left"}
)

// Valid reports whether d is one of the four canonical directions.
func (d Direction) Valid() bool {
	return d >= Up && d <= Left
}

// TurnLeft rotates d a quarter turn towards the traced region's exterior side.
// For counterclockwise walks "left" is mirrored.
func (d Direction) TurnLeft(clockwise bool) Direction {
	if clockwise {
		return (d + 3) & 3
	}
	return (d + 1) & 3
}

// TurnRight is the inverse of TurnLeft.
func (d Direction) TurnRight(clockwise bool) Direction {
	return d.TurnLeft(!clockwise)
}

// Reverse returns the opposite heading.
func (d Direction) Reverse() Direction {
	return (d + 2) & 3
}

// Step returns the unit vector of d in image coordinates (y grows downwards).
func (d Direction) Step() (dx, dy int) {
	return stepX[d&3], stepY[d&3]
}

func (d Direction) String() string {
	if d == AutoDirection {
		return "auto"
	}
	if !d.Valid() {
		return fmt.Sprintf("Direction(%d)", int(d))
	}
	return directionNames[d]
}

// ParseDirection accepts a direction name ("up", "right", "down", "left",
// "auto") or its number.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "", "auto", "-1":
		return AutoDirection, nil
	case "up", "0":
		return Up, nil
	case "right", "1":
		return Right, nil
	case "down", "2":
		return Down, nil
	case "left", "3":
		return Left, nil
	}
	return AutoDirection, newError("parse direction", ErrConfiguration, "unknown direction %q", s)
}

// IsForwardBorder reports whether one step from (x, y) along d leaves a
// width x height image, regardless of pixel content.
func IsForwardBorder(x, y int, d Direction, width, height int) bool {
	switch d & 3 {
	case Up:
		return y == 0
	case Right:
		return x == width-1
	case Down:
		return y == height-1
	default:
		return x == 0
	}
}

// IsLeftBorder reports whether the edge on the bordering side of (x, y, d)
// lies on the image border.
func IsLeftBorder(x, y int, d Direction, clockwise bool, width, height int) bool {
	return IsForwardBorder(x, y, d.TurnLeft(clockwise), width, height)
}
