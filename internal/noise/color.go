// Package noise synthesizes colored noise and the filter stage that shapes
// it during playback.
package noise

import "fmt"

// Color names a spectral noise profile.
type Color string

const (
	None   Color = "none"
	White  Color = "white"
	Pink   Color = "pink"
	Brown  Color = "brown"
	Blue   Color = "blue"
	Violet Color = "violet"
	Grey   Color = "grey"
	Green  Color = "green"
	Red    Color = "red"
)

// Info describes a color for selection lists.
type Info struct {
	Color       Color
	Label       string
	Description string
}

var catalogue = []Info{
	{Color: None, Label: "None", Description: "No sound"},
	{Color: White, Label: "White", Description: "Flat and even"},
	{Color: Pink, Label: "Pink", Description: "Softer and more natural"},
	{Color: Brown, Label: "Brown", Description: "Deep and relaxing"},
	{Color: Blue, Label: "Blue", Description: "Bright and energizing"},
	{Color: Violet, Label: "Violet", Description: "Very bright"},
	{Color: Grey, Label: "Grey", Description: "Tuned to human hearing"},
	{Color: Green, Label: "Green", Description: "Natural mid frequencies"},
	{Color: Red, Label: "Red", Description: "Like brown, even deeper"},
}

// Catalogue lists every color, None first.
func Catalogue() []Info {
	return append([]Info(nil), catalogue...)
}

// Valid reports whether color is a known profile.
func (color Color) Valid() bool {
	for _, info := range catalogue {
		if info.Color == color {
			return true
		}
	}
	return false
}

// Label returns the display name of color.
func (color Color) Label() string {
	for _, info := range catalogue {
		if info.Color == color {
			return info.Label
		}
	}
	return string(color)
}

// Next returns the color following color in the catalogue, wrapping around.
func (color Color) Next() Color {
	for index, info := range catalogue {
		if info.Color == color {
			return catalogue[(index+1)%len(catalogue)].Color
		}
	}
	return None
}

// ParseColor converts a stored or user-supplied name into a Color.
func ParseColor(value string) (Color, error) {
	color := Color(value)
	if !color.Valid() {
		return None, fmt.Errorf("unknown noise color %q", value)
	}
	return color, nil
}
