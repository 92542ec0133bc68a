package models

import "strings"

// Theme is a presentation preference shared by every user of a store.
type Theme string

const (
	ThemeCyber  Theme = "cyber"
	ThemeOcean  Theme = "ocean"
	ThemeSunset Theme = "sunset"
	ThemeNature Theme = "nature"
	ThemeDark   Theme = "dark"
	ThemePurple Theme = "purple"

	DefaultTheme = ThemeCyber
)

// Themes lists every known theme.
var Themes = []Theme{ThemeCyber, ThemeOcean, ThemeSunset, ThemeNature, ThemeDark, ThemePurple}

// Valid reports whether t is a known theme.
func (t Theme) Valid() bool {
	for _, known := range Themes {
		if known == t {
			return true
		}
	}
	return false
}

// ParseTheme normalizes a theme name, returning false for unknown names.
func ParseTheme(name string) (Theme, bool) {
	t := Theme(strings.ToLower(strings.TrimSpace(name)))
	return t, t.Valid()
}
