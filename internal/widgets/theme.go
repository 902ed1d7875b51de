package widgets

import "strings"

// Theme is the color scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme maps unknown values to the light theme.
func ParseTheme(raw string) Theme {
	if strings.EqualFold(strings.TrimSpace(raw), string(ThemeDark)) {
		return ThemeDark
	}
	return ThemeLight
}

// Toggle returns the opposite theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// Dark reports whether t is the dark theme.
func (t Theme) Dark() bool { return t == ThemeDark }

// ThemeAssets are the theme-dependent logo and toggle icon.
type ThemeAssets struct {
	Theme     Theme
	BodyClass string
	LogoSrc   string
	LogoAlt   string
	Icon      string
}

// Assets returns the assets for t. The dark theme uses the white logo and a
// sun icon to switch back.
func (t Theme) Assets() ThemeAssets {
	if t == ThemeDark {
		return ThemeAssets{
			Theme:     ThemeDark,
			BodyClass: "dark-mode",
			LogoSrc:   "/static/img/logo-blanco.png",
			LogoAlt:   "Clinica Dental Vitaldent logo blanco",
			Icon:      "bi-sun-fill",
		}
	}
	return ThemeAssets{
		Theme:   ThemeLight,
		LogoSrc: "/static/img/logo-negro.png",
		LogoAlt: "Clinica Dental Vitaldent logo oscuro",
		Icon:    "bi-moon-fill",
	}
}
