// File: internal/styletree/paint.go
package styletree

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/xkilldash9x/framesmith/internal/scenegraph"
)

const (
	paintSolid        = "SOLID"
	effectDropShadow  = "DROP_SHADOW"
	effectInnerShadow = "INNER_SHADOW"
)

// FillColor returns the first paint that is not explicitly hidden, resolved to
// an rgba() string when it is a solid paint. The alpha channel is the paint's
// own opacity as a 0..1 fraction, 1 when the paint declares none.
func FillColor(paints []scenegraph.Paint) (string, bool) {
	for _, p := range paints {
		if !p.IsVisible() {
			continue
		}
		if p.Type != paintSolid || p.Color == nil {
			return "", false
		}
		alpha := 1.0
		if p.Opacity != nil {
			alpha = *p.Opacity
		}
		return rgba(*p.Color, alpha), true
	}
	return "", false
}

// BoxShadow renders drop and inner shadows as "x y blur color" entries joined
// by commas, in effect-list order. Hidden effects are skipped.
func BoxShadow(effects []scenegraph.Effect) (string, bool) {
	var parts []string
	for _, e := range effects {
		if e.Type != effectDropShadow && e.Type != effectInnerShadow {
			continue
		}
		if e.Visible != nil && !*e.Visible {
			continue
		}
		var x, y, blur float64
		if e.Offset != nil {
			x, y = e.Offset.X, e.Offset.Y
		}
		if e.Radius != nil {
			blur = *e.Radius
		}
		var c scenegraph.Color
		if e.Color != nil {
			c = *e.Color
		}
		parts = append(parts, fmt.Sprintf("%s %s %s %s", px(x), px(y), px(blur), rgba(c, c.A)))
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, ", "), true
}

func rgba(c scenegraph.Color, alpha float64) string {
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", channel(c.R), channel(c.G), channel(c.B), number(alpha))
}

// channel scales a 0..1 value to 0..255, rounding half away from zero.
func channel(v float64) int {
	return int(math.Round(v * 255))
}

// number formats with the shortest representation, so 14 renders as "14"
// and 0.5 as "0.5".
func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func px(v float64) string {
	return number(v) + "px"
}
