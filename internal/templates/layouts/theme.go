package layouts

import (
	"fmt"
	"regexp"
	"strings"
)

var hexColorRegex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Theme holds the league palette exposed to the stylesheet as CSS variables.
type Theme struct {
	Primary    string
	Secondary  string
	Accent     string
	Background string
}

func DefaultTheme() Theme {
	return Theme{
		Primary:    "#e11d48",
		Secondary:  "#0f172a",
		Accent:     "#facc15",
		Background: "#f8fafc",
	}
}

func themeCSSVars(theme *Theme) string {
	def := DefaultTheme()
	primary, secondary, accent, background := def.Primary, def.Secondary, def.Accent, def.Background

	if theme != nil {
		primary = colorOrDefault(theme.Primary, primary)
		secondary = colorOrDefault(theme.Secondary, secondary)
		accent = colorOrDefault(theme.Accent, accent)
		background = colorOrDefault(theme.Background, background)
	}

	return fmt.Sprintf(
		":root{--axl-primary:%s;--axl-secondary:%s;--axl-accent:%s;--axl-background:%s;}",
		primary,
		secondary,
		accent,
		background,
	)
}

func colorOrDefault(value string, fallback string) string {
	trimmed := strings.TrimSpace(value)
	if !hexColorRegex.MatchString(trimmed) {
		return fallback
	}
	return trimmed
}
