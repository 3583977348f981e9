package chart

import "fmt"

// Theme holds the chart colors as #RRGGBB hex strings. Colors come from
// configuration and are passed through to the rendering collaborator;
// parsing here exists so configuration can be validated up front.
type Theme struct {
	Foreground string `json:"foreground"`
	Background string `json:"background"`
}

// DefaultTheme returns the built-in chart colors.
func DefaultTheme() Theme {
	return Theme{
		Foreground: "#a0c8f0",
		Background: "#1e1e1e",
	}
}

// ParseColor parses a #RRGGBB hex color into its RGB components.
func ParseColor(s string) (r, g, b uint8, err error) {
	if len(s) != 7 || s[0] != '#' {
		return 0, 0, 0, fmt.Errorf("invalid color %q: want #RRGGBB", s)
	}
	var rv, gv, bv uint8
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &rv, &gv, &bv); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return rv, gv, bv, nil
}

// Validate checks that both theme colors are well-formed.
func (t Theme) Validate() error {
	if _, _, _, err := ParseColor(t.Foreground); err != nil {
		return fmt.Errorf("foreground: %w", err)
	}
	if _, _, _, err := ParseColor(t.Background); err != nil {
		return fmt.Errorf("background: %w", err)
	}
	return nil
}
