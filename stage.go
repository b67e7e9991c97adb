package flyby

import (
	"time"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms1"
	"github.com/soypat/glgl/math/ms3"
)

// PathFunc computes the camera position and look-at target for eased progress p
// in [0,1]. from is the camera position captured when the stage started.
// PathFuncs must be pure: same inputs, same outputs.
type PathFunc func(from ms3.Vec, p float32) (pos, lookAt ms3.Vec)

// Stage is a single timed segment of camera motion.
type Stage struct {
	// Name identifies the stage in logs and overlays.
	Name string
	// Duration of the stage. A non-positive duration completes on the first tick.
	Duration time.Duration
	// Ease remaps time progress before it is handed to Path. nil means [Linear].
	Ease Easing
	// Path is evaluated on every tick while the stage is active.
	// A nil Path leaves camera state untouched for the stage's duration.
	Path PathFunc
	// Next, if set, is called once when the stage completes. The returned
	// stages run immediately after this one, before any already queued stage.
	Next func() []Stage
}

// Choreography is an ordered sequence of stages making up one camera path.
type Choreography []Stage

// Duration returns the sum of the stage durations. Stages added at runtime
// through [Stage.Next] are not accounted for.
func (c Choreography) Duration() (total time.Duration) {
	for i := range c {
		total += max(c[i].Duration, 0)
	}
	return total
}

// Axes selects vector components.
type Axes uint8

const (
	AxisX Axes = 1 << iota
	AxisY
	AxisZ
	AxesAll = AxisX | AxisY | AxisZ
)

// OrbitParams describes a circular camera path around the Y axis.
type OrbitParams struct {
	// Radius of the circle in the XZ plane, centered on Center.
	Radius float32
	// Height is the camera's constant Y coordinate.
	Height float32
	Center ms3.Vec
	LookAt ms3.Vec
	// Revolutions is the number of turns over the stage. Zero means one turn.
	Revolutions float32
}

// Orbit returns a stage that moves the camera along a circle:
//
//	angle = p·2π·revolutions
//	pos   = center + (R·cos(angle), height, R·sin(angle))
//
// Angles are wrapped to [0,2π) so that a whole number of turns ends exactly
// where it started.
func Orbit(name string, d time.Duration, ease Easing, params OrbitParams) Stage {
	revs := params.Revolutions
	if revs == 0 {
		revs = 1
	}
	return Stage{
		Name:     name,
		Duration: d,
		Ease:     ease,
		Path: func(_ ms3.Vec, p float32) (pos, lookAt ms3.Vec) {
			turns := p * revs
			turns -= math32.Floor(turns)
			s, c := math32.Sincos(turns * 2 * math32.Pi)
			pos = ms3.Vec{
				X: params.Center.X + params.Radius*c,
				Y: params.Height,
				Z: params.Center.Z + params.Radius*s,
			}
			return pos, params.LookAt
		},
	}
}

// MoveParams describes a straight line move from wherever the camera is when
// the stage starts towards an absolute target.
type MoveParams struct {
	Target ms3.Vec
	// Axes selects which components of Target are followed. Components not
	// selected keep their starting value. Zero means [AxesAll].
	Axes   Axes
	LookAt ms3.Vec
}

// MoveTo returns a stage that interpolates the camera position from its
// position at stage start to params.Target.
func MoveTo(name string, d time.Duration, ease Easing, params MoveParams) Stage {
	axes := params.Axes
	if axes == 0 {
		axes = AxesAll
	}
	return Stage{
		Name:     name,
		Duration: d,
		Ease:     ease,
		Path: func(from ms3.Vec, p float32) (pos, lookAt ms3.Vec) {
			pos = from
			if axes&AxisX != 0 {
				pos.X = lerp(from.X, params.Target.X, p)
			}
			if axes&AxisY != 0 {
				pos.Y = lerp(from.Y, params.Target.Y, p)
			}
			if axes&AxisZ != 0 {
				pos.Z = lerp(from.Z, params.Target.Z, p)
			}
			return pos, params.LookAt
		},
	}
}

// Hold returns a stage that keeps the camera at its current position while
// aiming it at lookAt.
func Hold(name string, d time.Duration, lookAt ms3.Vec) Stage {
	return Stage{
		Name:     name,
		Duration: d,
		Path: func(from ms3.Vec, _ float32) (ms3.Vec, ms3.Vec) {
			return from, lookAt
		},
	}
}

// lerp returns exactly a at t=0 and exactly b at t=1.
func lerp(a, b, t float32) float32 {
	switch t {
	case 0:
		return a
	case 1:
		return b
	}
	return ms1.Interp(a, b, t)
}
