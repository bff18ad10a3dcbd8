package dom

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Initial values of the inspected properties, serialized the way
// getComputedStyle reports them.
const (
	InitialColor           = "rgb(0, 0, 0)"
	InitialBackgroundColor = "rgba(0, 0, 0, 0)"
)

// basicColors are the CSS level 1 keywords.
var basicColors = map[string]string{
	"black":   "#000000",
	"silver":  "#c0c0c0",
	"gray":    "#808080",
	"grey":    "#808080",
	"white":   "#ffffff",
	"maroon":  "#800000",
	"red":     "#ff0000",
	"purple":  "#800080",
	"fuchsia": "#ff00ff",
	"magenta": "#ff00ff",
	"green":   "#008000",
	"lime":    "#00ff00",
	"olive":   "#808000",
	"yellow":  "#ffff00",
	"navy":    "#000080",
	"blue":    "#0000ff",
	"teal":    "#008080",
	"aqua":    "#00ffff",
	"cyan":    "#00ffff",
	"orange":  "#ffa500",
}

// NormalizeColor serializes a colour value to the rgb()/rgba() form used by
// computed styles when it can, and returns it lowercased otherwise.
func NormalizeColor(value string) string {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "transparent" {
		return InitialBackgroundColor
	}
	if hex, ok := basicColors[v]; ok {
		v = hex
	}
	if !strings.HasPrefix(v, "#") {
		return v
	}

	var alpha string
	switch len(v) {
	case 4, 7:
	case 5:
		alpha = strings.Repeat(v[4:5], 2)
		v = v[:4]
	case 9:
		alpha = v[7:9]
		v = v[:7]
	default:
		return v
	}

	c, err := colorful.Hex(v)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(value))
	}
	r, g, b := c.RGB255()
	if alpha == "" {
		return fmt.Sprintf("rgb(%d, %d, %d)", r, g, b)
	}
	a, err := strconv.ParseUint(alpha, 16, 8)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(value))
	}
	if a == 255 {
		return fmt.Sprintf("rgb(%d, %d, %d)", r, g, b)
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, formatAlpha(float64(a)/255))
}

func formatAlpha(a float64) string {
	return strconv.FormatFloat(math.Round(a*1000)/1000, 'f', -1, 64)
}
