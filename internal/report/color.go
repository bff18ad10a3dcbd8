package report

import (
	"fmt"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// hexColor converts a computed "rgb(r, g, b)" or opaque "rgba(...)" value
// to "#rrggbb". Transparent and unparsed values are not converted.
func hexColor(value string) (string, bool) {
	var (
		r, g, b int
		a       = 1.0
	)
	v := strings.ReplaceAll(strings.TrimSpace(value), " ", "")
	switch {
	case strings.HasPrefix(v, "rgba("):
		if _, err := fmt.Sscanf(v, "rgba(%d,%d,%d,%g)", &r, &g, &b, &a); err != nil {
			return "", false
		}
	case strings.HasPrefix(v, "rgb("):
		if _, err := fmt.Sscanf(v, "rgb(%d,%d,%d)", &r, &g, &b); err != nil {
			return "", false
		}
	default:
		return "", false
	}
	if a == 0 {
		return "", false
	}
	c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	return c.Clamped().Hex(), true
}
