package viewer

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/soypat/flyby"
	"github.com/soypat/geometry/ms3"
)

// floatsPerVertex is the stride of [MeshVertices] output: position then normal.
const floatsPerVertex = 6

// MeshVertices flattens triangles into interleaved position/normal vertices
// with one flat normal per face. Degenerate triangles get a zero normal.
func MeshVertices(tris []ms3.Triangle) []float32 {
	out := make([]float32, 0, len(tris)*3*floatsPerVertex)
	for _, t := range tris {
		n := faceNormal(t)
		for _, v := range t {
			out = append(out, v.X, v.Y, v.Z, n.X, n.Y, n.Z)
		}
	}
	return out
}

func faceNormal(t ms3.Triangle) ms3.Vec {
	e1 := ms3.Sub(t[1], t[0])
	e2 := ms3.Sub(t[2], t[0])
	n := ms3.Vec{
		X: e1.Y*e2.Z - e1.Z*e2.Y,
		Y: e1.Z*e2.X - e1.X*e2.Z,
		Z: e1.X*e2.Y - e1.Y*e2.X,
	}
	l := math32.Sqrt(n.X*n.X + n.Y*n.Y + n.Z*n.Z)
	if l == 0 {
		return ms3.Vec{}
	}
	return ms3.Vec{X: n.X / l, Y: n.Y / l, Z: n.Z / l}
}

func stageCaption(s flyby.StageStatus) string {
	return fmt.Sprintf("%d %s %3d%%", s.Index+1, s.Name, int(s.Progress*100))
}
