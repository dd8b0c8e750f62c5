package domain

import "strings"

// ColorFamily is a coarse hue or neutral bucket assigned to catalog colors.
type ColorFamily string

// The fixed set of color families, in canonical display order.
const (
	FamilyRed          ColorFamily = "Red"
	FamilyRedOrange    ColorFamily = "Red-orange"
	FamilyOrange       ColorFamily = "Orange"
	FamilyYellowOrange ColorFamily = "Yellow-orange"
	FamilyYellow       ColorFamily = "Yellow"
	FamilyYellowGreen  ColorFamily = "Yellow-green"
	FamilyGreen        ColorFamily = "Green"
	FamilyBlueGreen    ColorFamily = "Blue-green"
	FamilyBlue         ColorFamily = "Blue"
	FamilyBlueViolet   ColorFamily = "Blue-violet"
	FamilyViolet       ColorFamily = "Violet"
	FamilyRedViolet    ColorFamily = "Red-violet"
	FamilyWarmNeutral  ColorFamily = "Warm neutral"
	FamilyCoolNeutral  ColorFamily = "Cool neutral"
	FamilyGray         ColorFamily = "Gray"
)

var colorFamilies = []ColorFamily{
	FamilyRed, FamilyRedOrange, FamilyOrange, FamilyYellowOrange, FamilyYellow,
	FamilyYellowGreen, FamilyGreen, FamilyBlueGreen, FamilyBlue, FamilyBlueViolet,
	FamilyViolet, FamilyRedViolet, FamilyWarmNeutral, FamilyCoolNeutral, FamilyGray,
}

// ColorFamilies returns the 15 families in canonical order.
func ColorFamilies() []ColorFamily {
	return append([]ColorFamily(nil), colorFamilies...)
}

// ParseColorFamily resolves a family name case-insensitively.
func ParseColorFamily(name string) (ColorFamily, bool) {
	name = strings.TrimSpace(name)
	for _, f := range colorFamilies {
		if strings.EqualFold(string(f), name) {
			return f, true
		}
	}
	return "", false
}

// Valid reports whether f is one of the fixed families.
func (f ColorFamily) Valid() bool {
	_, ok := ParseColorFamily(string(f))
	return ok && string(f) != ""
}

// IsNeutral reports whether f is one of the neutral families.
func (f ColorFamily) IsNeutral() bool {
	switch f {
	case FamilyWarmNeutral, FamilyCoolNeutral, FamilyGray:
		return true
	}
	return false
}

// FamilyIndex returns the canonical position of f, or -1 if unknown.
func FamilyIndex(f ColorFamily) int {
	for i, candidate := range colorFamilies {
		if candidate == f {
			return i
		}
	}
	return -1
}
