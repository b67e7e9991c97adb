package flyby

import (
	"fmt"
	"sort"

	"github.com/chewxy/math32"
)

// Easing remaps linear time progress in [0,1] to motion progress in [0,1].
// Implementations must satisfy e(0)=0 and e(1)=1.
type Easing func(p float32) float32

// Linear is the identity easing.
func Linear(p float32) float32 { return p }

// Power2In accelerates from rest, quadratic.
func Power2In(p float32) float32 { return p * p }

// Power2Out decelerates to rest, quadratic.
func Power2Out(p float32) float32 {
	q := 1 - p
	return 1 - q*q
}

// Power2InOut accelerates during the first half and decelerates during the second:
//
//	2p²          p < 0.5
//	1 - 2(1-p)²  p ≥ 0.5
func Power2InOut(p float32) float32 {
	if p < 0.5 {
		return 2 * p * p
	}
	q := 1 - p
	return 1 - 2*q*q
}

// Power3In accelerates from rest, cubic.
func Power3In(p float32) float32 { return p * p * p }

// Power3Out decelerates to rest, cubic.
func Power3Out(p float32) float32 {
	q := 1 - p
	return 1 - q*q*q
}

// Power3InOut is the cubic analogue of [Power2InOut].
func Power3InOut(p float32) float32 {
	if p < 0.5 {
		return 4 * p * p * p
	}
	q := 1 - p
	return 1 - 4*q*q*q
}

// SineInOut follows half a cosine period.
func SineInOut(p float32) float32 {
	switch p {
	case 0, 1:
		return p
	}
	return (1 - math32.Cos(math32.Pi*p)) / 2
}

var easings = map[string]Easing{
	"none":         Linear,
	"linear":       Linear,
	"power2.in":    Power2In,
	"power2.out":   Power2Out,
	"power2.inOut": Power2InOut,
	"power3.in":    Power3In,
	"power3.out":   Power3Out,
	"power3.inOut": Power3InOut,
	"sine.inOut":   SineInOut,
}

// EasingByName returns a named easing curve, i.e: "power2.inOut".
func EasingByName(name string) (Easing, error) {
	e, ok := easings[name]
	if !ok {
		return nil, fmt.Errorf("unknown easing %q", name)
	}
	return e, nil
}

// EasingNames returns the sorted names accepted by [EasingByName].
func EasingNames() []string {
	names := make([]string, 0, len(easings))
	for name := range easings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
