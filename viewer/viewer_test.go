package viewer

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/chewxy/math32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/soypat/flyby"
	"github.com/soypat/flyby/assets"
	"github.com/soypat/flyby/forge/tour"
	gms3 "github.com/soypat/geometry/ms3"
	"github.com/soypat/glgl/math/ms3"
)

func TestCameraResize(t *testing.T) {
	cam := NewCamera(75, 0.1, 1000, ms3.Vec{Y: 1, Z: 2})
	cam.Resize(1600, 800)
	if cam.Aspect() != 2 {
		t.Errorf("aspect %g, want 2", cam.Aspect())
	}
	cam.Resize(0, 0)
	if cam.Aspect() != 2 {
		t.Errorf("degenerate resize changed aspect to %g", cam.Aspect())
	}
	p := cam.Projection()
	// Horizontal scale is vertical scale divided by aspect.
	if math32.Abs(p[0]*2-p[5]) > 1e-5 {
		t.Errorf("projection ignores aspect: %v", p)
	}
}

func TestCameraViewFinite(t *testing.T) {
	cam := NewCamera(75, 0.1, 1000, ms3.Vec{})
	for _, test := range []struct {
		pos, target ms3.Vec
	}{
		{pos: ms3.Vec{X: 30, Y: 6}, target: ms3.Vec{Y: 8}},
		{pos: ms3.Vec{Y: 2}, target: ms3.Vec{Y: 2}}, // End of descent: camera on its target.
		{pos: ms3.Vec{Y: 10}, target: ms3.Vec{}},    // Looking straight down.
	} {
		cam.SetPosition(test.pos)
		cam.LookAt(test.target)
		v := cam.View()
		for i, f := range v {
			if math32.IsNaN(f) || math32.IsInf(f, 0) {
				t.Fatalf("pos=%v target=%v: view[%d]=%g", test.pos, test.target, i, f)
			}
		}
	}
}

func TestMeshVertices(t *testing.T) {
	tris := []gms3.Triangle{
		{{X: 0}, {X: 1}, {Y: 1}},
		{{X: 0}, {X: 1}, {X: 2}}, // Degenerate.
	}
	v := MeshVertices(tris)
	if len(v) != 2*3*floatsPerVertex {
		t.Fatalf("got %d floats", len(v))
	}
	for i := 0; i < 3; i++ {
		n := v[i*floatsPerVertex+3 : (i+1)*floatsPerVertex]
		if n[0] != 0 || n[1] != 0 || n[2] != 1 {
			t.Errorf("vertex %d normal %v, want +Z", i, n)
		}
	}
	for i := 3; i < 6; i++ {
		n := v[i*floatsPerVertex+3 : (i+1)*floatsPerVertex]
		if n[0] != 0 || n[1] != 0 || n[2] != 0 {
			t.Errorf("degenerate vertex %d normal %v, want zero", i, n)
		}
	}
}

func TestLightDirection(t *testing.T) {
	d := NewScene().Directional.Direction()
	want := 1 / math32.Sqrt(3)
	if math32.Abs(d.X-want) > 1e-6 || math32.Abs(d.Y-want) > 1e-6 || math32.Abs(d.Z-want) > 1e-6 {
		t.Errorf("got %v", d)
	}
}

func writeTriangle(t *testing.T) string {
	t.Helper()
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	doc.Meshes = []*gltf.Mesh{{
		Name:       "tri",
		Primitives: []*gltf.Primitive{{Attributes: map[string]int{gltf.POSITION: pos}}},
	}}
	doc.Nodes = []*gltf.Node{{Name: "tri", Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)
	path := filepath.Join(t.TempDir(), "tri.glb")
	if err := gltf.SaveBinary(doc, path); err != nil {
		t.Fatal(err)
	}
	return path
}

// frameUntilLoaded calls h.Frame(0) until the pending load resolves.
func frameUntilLoaded(t *testing.T, h *Host) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for h.pending != nil {
		if time.Now().After(deadline) {
			t.Fatal("asset load did not resolve")
		}
		h.Frame(0)
		time.Sleep(time.Millisecond)
	}
}

func TestHostLoadsModel(t *testing.T) {
	h := NewHost(NewCamera(75, 0.1, 1000, ms3.Vec{Y: 1, Z: 2}), nil)
	h.ModelOffset = ms3.Vec{Y: -2, Z: -1}
	h.LoadModel(context.Background(), assets.NewLoader(nil), writeTriangle(t))
	frameUntilLoaded(t, h)
	nodes := h.Scene.Nodes()
	if len(nodes) != 1 {
		t.Fatalf("want 1 node, got %d", len(nodes))
	}
	if nodes[0].Offset != h.ModelOffset || len(nodes[0].Vertices) != 3*floatsPerVertex {
		t.Errorf("bad node %+v", nodes[0])
	}
}

func TestHostFailedLoadKeepsFlying(t *testing.T) {
	cam := NewCamera(75, 0.1, 1000, ms3.Vec{Y: 1, Z: 2})
	h := NewHost(cam, nil)
	ch, err := tour.Flythrough(tour.DefaultFlythrough())
	if err != nil {
		t.Fatal(err)
	}
	h.LoadModel(context.Background(), assets.NewLoader(nil), filepath.Join(t.TempDir(), "missing.glb"))
	h.Choreographer.Start(ch)
	frameUntilLoaded(t, h)
	if len(h.Scene.Nodes()) != 0 {
		t.Error("failed load added a node")
	}
	for elapsed := time.Duration(0); elapsed < 28*time.Second; elapsed += 100 * time.Millisecond {
		h.Frame(100 * time.Millisecond)
	}
	if !h.Choreographer.Done() {
		t.Error("choreography should complete without a model")
	}
	if cam.Position() != (ms3.Vec{X: 5, Y: 2}) {
		t.Errorf("final position %v", cam.Position())
	}
	if h.Caption() != "done" {
		t.Errorf("caption %q, want done", h.Caption())
	}
}

func TestHostCaption(t *testing.T) {
	h := NewHost(NewCamera(75, 0.1, 1000, ms3.Vec{}), nil)
	if h.Caption() != "" {
		t.Error("idle host should have no caption")
	}
	h.Choreographer.Start(flyby.Choreography{flyby.Hold("hold", time.Second, ms3.Vec{})})
	h.Frame(250 * time.Millisecond)
	c := h.Caption()
	if !strings.Contains(c, "hold") || !strings.Contains(c, "25%") {
		t.Errorf("caption %q", c)
	}
}

func TestRunBadConfig(t *testing.T) {
	h := NewHost(NewCamera(75, 0.1, 1000, ms3.Vec{}), nil)
	if err := h.Run(UIConfig{}); err == nil {
		t.Error("expected error for zero window size")
	}
}
