// Package viewer hosts a flythrough: it owns the perspective camera, the
// scene contents and the window render loop that ticks the choreography.
package viewer

import (
	"context"
	"errors"
	"time"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/soypat/flyby"
	"github.com/soypat/flyby/assets"
	"github.com/soypat/glgl/math/ms3"
	"go.uber.org/zap"
)

// Camera is a perspective camera implementing [flyby.Camera].
type Camera struct {
	// FOV is the vertical field of view in degrees.
	FOV       float32
	Near, Far float32
	Up        ms3.Vec

	pos    ms3.Vec
	target ms3.Vec
	aspect float32
}

var _ flyby.Camera = (*Camera)(nil)

// NewCamera returns a camera at pos looking down -Z with Y up.
func NewCamera(fov, near, far float32, pos ms3.Vec) *Camera {
	return &Camera{
		FOV:    fov,
		Near:   near,
		Far:    far,
		Up:     ms3.Vec{Y: 1},
		pos:    pos,
		target: ms3.Vec{X: pos.X, Y: pos.Y, Z: pos.Z - 1},
		aspect: 1,
	}
}

func (c *Camera) Position() ms3.Vec     { return c.pos }
func (c *Camera) SetPosition(p ms3.Vec) { c.pos = p }
func (c *Camera) LookAt(target ms3.Vec) { c.target = target }
func (c *Camera) Target() ms3.Vec       { return c.target }
func (c *Camera) Aspect() float32       { return c.aspect }

// Resize recomputes the aspect ratio for a width x height viewport.
// Degenerate sizes, such as a minimized window, keep the previous aspect.
func (c *Camera) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.aspect = float32(width) / float32(height)
}

// View returns the world to camera transform. When the camera sits on its
// look-at target it faces -Z, and a view direction parallel to Up is nudged
// so the transform stays finite.
func (c *Camera) View() mgl32.Mat4 {
	eye := vec3(c.pos)
	up := vec3(c.Up)
	if up.Len() == 0 {
		up = mgl32.Vec3{0, 1, 0}
	}
	dir := vec3(c.target).Sub(eye)
	if dir.Len() < 1e-6 {
		dir = mgl32.Vec3{0, 0, -1}
	}
	if dir.Normalize().Cross(up.Normalize()).Len() < 1e-6 {
		dir[2] += 1e-4
	}
	return mgl32.LookAtV(eye, eye.Add(dir), up)
}

// Projection returns the perspective projection matrix.
func (c *Camera) Projection() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.aspect, c.Near, c.Far)
}

// Light is a white-ish light source.
type Light struct {
	Color     ms3.Vec // RGB in [0,1].
	Intensity float32
	// Position of a directional light. The light shines from Position towards
	// the origin. Ignored for ambient light.
	Position ms3.Vec
}

// Direction returns the normalized direction towards the light.
func (l Light) Direction() ms3.Vec {
	n := math32.Sqrt(l.Position.X*l.Position.X + l.Position.Y*l.Position.Y + l.Position.Z*l.Position.Z)
	if n == 0 {
		return ms3.Vec{Y: 1}
	}
	return ms3.Scale(1/n, l.Position)
}

// Node is a mesh placed in the scene.
type Node struct {
	Name   string
	Offset ms3.Vec
	// Vertices are interleaved position and normal triplets, see [MeshVertices].
	Vertices []float32

	// GPU handles, zero until uploaded by the render loop.
	vao, vbo uint32
}

// Scene holds the lights and meshes rendered each frame.
type Scene struct {
	Ambient     Light
	Directional Light
	Background  ms3.Vec

	nodes []*Node
}

// NewScene returns a scene lit by a white ambient light and a white
// directional light shining from (1,1,1).
func NewScene() *Scene {
	white := ms3.Vec{X: 1, Y: 1, Z: 1}
	return &Scene{
		Ambient:     Light{Color: white, Intensity: 1},
		Directional: Light{Color: white, Intensity: 1, Position: ms3.Vec{X: 1, Y: 1, Z: 1}},
	}
}

// AddModel places a decoded model in the scene translated by offset.
func (s *Scene) AddModel(m *assets.Model, offset ms3.Vec) *Node {
	n := &Node{
		Name:     m.Name,
		Offset:   offset,
		Vertices: MeshVertices(m.Triangles),
	}
	s.nodes = append(s.nodes, n)
	return n
}

// Nodes returns the scene's nodes.
func (s *Scene) Nodes() []*Node { return s.nodes }

// Host bundles the state a frame loop works on: camera, scene, the
// choreography driving the camera and a pending asset load.
type Host struct {
	Camera        *Camera
	Scene         *Scene
	Choreographer *flyby.Choreographer

	// ModelOffset is applied to the asset once it resolves.
	ModelOffset ms3.Vec

	log     *zap.Logger
	pending <-chan assets.Result
}

// NewHost returns a host with an empty scene whose choreographer drives camera.
// log may be nil.
func NewHost(camera *Camera, log *zap.Logger) *Host {
	if log == nil {
		log = zap.NewNop()
	}
	return &Host{
		Camera:        camera,
		Scene:         NewScene(),
		Choreographer: flyby.NewChoreographer(camera, log.Named("choreographer")),
		log:           log,
	}
}

// LoadModel starts loading the asset at path. The model is added to the scene
// on the first frame after it resolves; a failure is logged by the loader and
// the scene continues without it.
func (h *Host) LoadModel(ctx context.Context, loader *assets.Loader, path string) {
	h.pending = loader.LoadAsync(ctx, path)
}

// Frame advances the host by dt: it picks up a resolved asset and ticks the
// choreography. It must be called before the frame is drawn.
func (h *Host) Frame(dt time.Duration) {
	if h.pending != nil {
		select {
		case res, ok := <-h.pending:
			if ok && res.Err == nil && res.Model != nil {
				h.Scene.AddModel(res.Model, h.ModelOffset)
			}
			h.pending = nil
		default:
		}
	}
	h.Choreographer.Tick(dt)
}

// Resize handles a viewport size change.
func (h *Host) Resize(width, height int) {
	h.Camera.Resize(width, height)
}

// Caption returns the overlay text for the current frame.
func (h *Host) Caption() string {
	status, ok := h.Choreographer.Active()
	if !ok {
		if h.Choreographer.Done() {
			return "done"
		}
		return ""
	}
	return stageCaption(status)
}

func vec3(v ms3.Vec) mgl32.Vec3 { return mgl32.Vec3{v.X, v.Y, v.Z} }

// UIConfig configures the window opened by [Host.Run].
type UIConfig struct {
	Width, Height int
	Title         string
	// Samples is the multisample antialiasing sample count. Zero disables it.
	Samples int
	// Overlay enables the stage caption in the top left corner.
	Overlay bool
	// Context, if set, stops the render loop when done.
	Context context.Context
}

// Run opens a window and renders the host's scene until the window is closed
// or cfg.Context is done. Each frame calls [Host.Frame] before drawing.
// Run must be called from the main goroutine with the OS thread locked.
func (h *Host) Run(cfg UIConfig) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return errors.New("window size must be positive")
	}
	if cfg.Title == "" {
		cfg.Title = "flyby"
	}
	return ui(h, cfg)
}
