// Package ui draws the viewer's parameter panel and overlays.
package ui

import (
	"math"
	"strconv"

	"fastscape/internal/core"
)

// Adjust returns the value one click away from value in direction (+1 or
// -1). Controls step multiplicatively by their Factor; stepping up from zero
// lands on Min and stepping down below Min lands on zero. It reports false
// when the value cannot move further.
func Adjust(ctrl core.ParameterControl, value float64, direction int) (float64, bool) {
	factor := ctrl.Factor
	if factor <= 1 {
		factor = 2
	}
	var target float64
	switch {
	case direction > 0:
		if value <= 0 {
			target = ctrl.Min
		} else {
			target = value * factor
		}
		if ctrl.Max > 0 && target > ctrl.Max {
			target = ctrl.Max
		}
	case direction < 0:
		if value <= 0 {
			return 0, false
		}
		target = value / factor
		if target < ctrl.Min {
			target = 0
		}
	default:
		return value, false
	}
	if math.Abs(target-value) <= 1e-12*math.Max(math.Abs(value), 1e-300) {
		return value, false
	}
	return target, true
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', 3, 64)
}
