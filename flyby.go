// Package flyby implements a camera choreographer: a player for ordered,
// timed, parametric camera motion stages driven by a per-frame tick.
//
// A [Choreography] is a list of [Stage]s. A [Choreographer] runs them one at a
// time, writing camera position and look-at target through the [Camera]
// interface every time [Choreographer.Tick] is called by the host's frame loop.
package flyby

import (
	"github.com/soypat/glgl/math/ms3"
)

// Camera is the camera state exposed by a viewer host. The choreographer is
// the only writer of camera state while a run is active.
type Camera interface {
	// Position returns the current camera position.
	Position() ms3.Vec
	// SetPosition moves the camera.
	SetPosition(ms3.Vec)
	// LookAt orients the camera so that it faces target.
	LookAt(target ms3.Vec)
}

// BasicCamera is a [Camera] that only records its state. It is used for
// headless playback where no renderer consumes the camera.
type BasicCamera struct {
	Pos    ms3.Vec
	Target ms3.Vec
}

var _ Camera = (*BasicCamera)(nil)

func (c *BasicCamera) Position() ms3.Vec { return c.Pos }
func (c *BasicCamera) SetPosition(p ms3.Vec) { c.Pos = p }
func (c *BasicCamera) LookAt(target ms3.Vec) { c.Target = target }
