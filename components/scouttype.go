package components

import "image/color"

// ScoutType selects the single visual feature a scout responds to.
type ScoutType uint8

const (
	EdgeVertical ScoutType = iota
	EdgeHorizontal
	EdgeDiagonal1 // top-left to bottom-right
	EdgeDiagonal2 // top-right to bottom-left
	MotionUp
	MotionDown
	MotionLeft
	MotionRight
	ColorBright
	ColorDark
	TextureHigh
	TextureLow

	NumScoutTypes = int(TextureLow) + 1
)

// Family groups scout types by the feature map whose gradient they follow.
type Family uint8

const (
	FamilyEdge Family = iota
	FamilyMotion
	FamilyColor
	FamilyTexture
)

// scoutTypeInfo is the static table behind the ScoutType accessors.
var scoutTypeInfo = [NumScoutTypes]struct {
	name    string
	family  Family
	color   color.RGBA
	visible bool
}{
	EdgeVertical:   {"edge_vertical", FamilyEdge, color.RGBA{0xff, 0x00, 0x00, 0xff}, true},
	EdgeHorizontal: {"edge_horizontal", FamilyEdge, color.RGBA{0xff, 0x44, 0x00, 0xff}, true},
	EdgeDiagonal1:  {"edge_diagonal_1", FamilyEdge, color.RGBA{0xff, 0x88, 0x00, 0xff}, false},
	EdgeDiagonal2:  {"edge_diagonal_2", FamilyEdge, color.RGBA{0xff, 0xcc, 0x00, 0xff}, false},
	MotionUp:       {"motion_up", FamilyMotion, color.RGBA{0x00, 0xff, 0x00, 0xff}, true},
	MotionDown:     {"motion_down", FamilyMotion, color.RGBA{0x00, 0xff, 0x88, 0xff}, true},
	MotionLeft:     {"motion_left", FamilyMotion, color.RGBA{0x00, 0xff, 0xff, 0xff}, true},
	MotionRight:    {"motion_right", FamilyMotion, color.RGBA{0x00, 0x88, 0xff, 0xff}, true},
	ColorBright:    {"color_bright", FamilyColor, color.RGBA{0xff, 0xff, 0xff, 0xff}, false},
	ColorDark:      {"color_dark", FamilyColor, color.RGBA{0x88, 0x88, 0x88, 0xff}, false},
	TextureHigh:    {"texture_high", FamilyTexture, color.RGBA{0xff, 0x00, 0xff, 0xff}, true},
	TextureLow:     {"texture_low", FamilyTexture, color.RGBA{0x88, 0x00, 0xff, 0xff}, false},
}

// AllScoutTypes returns every scout type in enumeration order.
func AllScoutTypes() []ScoutType {
	types := make([]ScoutType, NumScoutTypes)
	for i := range types {
		types[i] = ScoutType(i)
	}
	return types
}

// Valid reports whether t is one of the enumerated types.
func (t ScoutType) Valid() bool {
	return int(t) < NumScoutTypes
}

// String returns the snake_case name used in logs and CSV headers.
func (t ScoutType) String() string {
	if !t.Valid() {
		return "unknown"
	}
	return scoutTypeInfo[t].name
}

// Family returns the feature family of t.
func (t ScoutType) Family() Family {
	if !t.Valid() {
		return FamilyColor
	}
	return scoutTypeInfo[t].family
}

// Color returns the display colour for t.
func (t ScoutType) Color() color.RGBA {
	if !t.Valid() {
		return color.RGBA{A: 0xff}
	}
	return scoutTypeInfo[t].color
}

// DefaultVisible reports whether t is drawn when the viewer starts.
func (t ScoutType) DefaultVisible() bool {
	return t.Valid() && scoutTypeInfo[t].visible
}

// String returns the family name.
func (f Family) String() string {
	switch f {
	case FamilyEdge:
		return "edge"
	case FamilyMotion:
		return "motion"
	case FamilyColor:
		return "color"
	case FamilyTexture:
		return "texture"
	}
	return "unknown"
}
