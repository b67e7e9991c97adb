// Package tour builds ready-made camera choreographies.
package tour

import (
	"errors"
	"time"

	"github.com/soypat/flyby"
	"github.com/soypat/glgl/math/ms3"
)

// Stage names of the [Flythrough] choreography.
const (
	StageExteriorOrbit = "exterior-orbit"
	StagePullBack      = "pull-back"
	StageDescend       = "descend"
	StageInteriorOrbit = "interior-orbit"
)

// FlythroughParams defines a building flythrough: a full orbit around the
// outside, a pull-back for a wide view, a descent into the ground floor and a
// full orbit inside.
type FlythroughParams struct {
	OuterRadius float32 // exterior orbit radius
	OuterHeight float32 // exterior orbit camera height
	OuterLookAt ms3.Vec
	// PullBack Y and Z components are the pull-back target. X is not animated
	// and keeps the value the exterior orbit left.
	PullBack       ms3.Vec
	PullBackLookAt ms3.Vec
	Interior       ms3.Vec // descent target and interior orbit center height
	InteriorLookAt ms3.Vec
	InnerRadius    float32 // interior orbit radius

	ExteriorDuration time.Duration
	PullBackDuration time.Duration
	DescendDuration  time.Duration
	InteriorDuration time.Duration
	// Ease is used for every stage. nil means [flyby.Power2InOut].
	Ease flyby.Easing
}

// DefaultFlythrough returns the parameters of the reference flythrough, which
// lasts 28 seconds.
func DefaultFlythrough() FlythroughParams {
	return FlythroughParams{
		OuterRadius:      30,
		OuterHeight:      6,
		OuterLookAt:      ms3.Vec{Y: 8},
		PullBack:         ms3.Vec{Y: 15, Z: 20},
		PullBackLookAt:   ms3.Vec{Y: 5},
		Interior:         ms3.Vec{Y: 2},
		InteriorLookAt:   ms3.Vec{Y: 2},
		InnerRadius:      5,
		ExteriorDuration: 10 * time.Second,
		PullBackDuration: 3 * time.Second,
		DescendDuration:  5 * time.Second,
		InteriorDuration: 10 * time.Second,
		Ease:             flyby.Power2InOut,
	}
}

// Flythrough returns the four stage building flythrough choreography.
func Flythrough(k FlythroughParams) (flyby.Choreography, error) {
	var err error
	switch {
	case k.OuterRadius <= 0:
		err = errors.New("outer radius <= 0")
	case k.InnerRadius <= 0:
		err = errors.New("inner radius <= 0")
	case k.InnerRadius >= k.OuterRadius:
		err = errors.New("inner radius must be less than outer radius")
	case k.ExteriorDuration <= 0 || k.PullBackDuration <= 0 || k.DescendDuration <= 0 || k.InteriorDuration <= 0:
		err = errors.New("stage durations must be positive")
	}
	if err != nil {
		return nil, err
	}
	ease := k.Ease
	if ease == nil {
		ease = flyby.Power2InOut
	}
	return flyby.Choreography{
		flyby.Orbit(StageExteriorOrbit, k.ExteriorDuration, ease, flyby.OrbitParams{
			Radius: k.OuterRadius,
			Height: k.OuterHeight,
			LookAt: k.OuterLookAt,
		}),
		flyby.MoveTo(StagePullBack, k.PullBackDuration, ease, flyby.MoveParams{
			Target: k.PullBack,
			Axes:   flyby.AxisY | flyby.AxisZ,
			LookAt: k.PullBackLookAt,
		}),
		flyby.MoveTo(StageDescend, k.DescendDuration, ease, flyby.MoveParams{
			Target: k.Interior,
			LookAt: k.InteriorLookAt,
		}),
		flyby.Orbit(StageInteriorOrbit, k.InteriorDuration, ease, flyby.OrbitParams{
			Radius: k.InnerRadius,
			Height: k.Interior.Y,
			Center: ms3.Vec{X: k.Interior.X, Z: k.Interior.Z},
			LookAt: k.InteriorLookAt,
		}),
	}, nil
}
