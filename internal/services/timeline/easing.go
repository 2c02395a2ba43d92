package timeline

import "github.com/ternarybob/scaena/internal/models"

// CubicInOut is the default easing curve applied between keyframes.
// t in [0,1] maps to eased progress in [0,1].
func CubicInOut(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	if t < 0.5 {
		return 4 * t * t * t
	}
	u := 2*t - 2
	return 1 + u*u*u/2
}

// Linear is the identity easing curve.
func Linear(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// curves maps the easing names the renderer understands to their reference
// implementations. Build falls back to cubic in-out for names outside this
// table, so a misspelled per-step override never reaches the renderer.
var curves = map[string]func(float64) float64{
	models.EasingCubicInOut: CubicInOut,
	models.EasingLinear:     Linear,
}
