// Package assets resolves 3D model files into triangle meshes ready to be
// placed in a viewer scene.
package assets

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/soypat/geometry/ms3"
	"go.uber.org/zap"
)

// ErrAssetLoad matches every [*LoadError] via errors.Is.
var ErrAssetLoad = errors.New("asset load failed")

// LoadError reports an asset that could not be resolved: the path is
// unreachable or its contents are malformed.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return "loading asset " + e.Path + ": " + e.Err.Error()
}

func (e *LoadError) Unwrap() error { return e.Err }

func (e *LoadError) Is(target error) bool { return target == ErrAssetLoad }

// Model is a decoded asset flattened to world-space triangles.
type Model struct {
	Name      string
	Triangles []ms3.Triangle
}

// Bounds returns the axis aligned bounding box of the model's triangles.
// An empty model returns the zero box.
func (m *Model) Bounds() ms3.Box {
	if len(m.Triangles) == 0 {
		return ms3.Box{}
	}
	inf := math32.Inf(1)
	bb := ms3.Box{
		Min: ms3.Vec{X: inf, Y: inf, Z: inf},
		Max: ms3.Vec{X: -inf, Y: -inf, Z: -inf},
	}
	for _, tri := range m.Triangles {
		for _, v := range tri {
			bb.Min.X = math32.Min(bb.Min.X, v.X)
			bb.Min.Y = math32.Min(bb.Min.Y, v.Y)
			bb.Min.Z = math32.Min(bb.Min.Z, v.Z)
			bb.Max.X = math32.Max(bb.Max.X, v.X)
			bb.Max.Y = math32.Max(bb.Max.Y, v.Y)
			bb.Max.Z = math32.Max(bb.Max.Z, v.Z)
		}
	}
	return bb
}

// Result is the outcome of an asynchronous load.
type Result struct {
	Model *Model
	Err   error // Non-nil errors are of type *LoadError.
}

// Loader resolves asset paths into models.
type Loader struct {
	log *zap.Logger
}

// NewLoader returns a ready to use Loader. log may be nil.
func NewLoader(log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{log: log}
}

// Load reads and decodes a glTF (.gltf) or binary glTF (.glb) file.
// Returned errors are of type *LoadError.
func (l *Loader) Load(ctx context.Context, path string) (*Model, error) {
	watch := stopwatch()
	if err := ctx.Err(); err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".gltf", ".glb":
	default:
		return nil, &LoadError{Path: path, Err: fmt.Errorf("unsupported model format %q", ext)}
	}
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	model, err := Decode(doc, name)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	l.log.Info("asset loaded", zap.String("path", path), zap.Int("triangles", len(model.Triangles)), zap.Duration("took", watch()))
	return model, nil
}

// LoadAsync runs [Loader.Load] on a new goroutine. The returned channel
// receives exactly one result and is then closed. Failures are logged.
func (l *Loader) LoadAsync(ctx context.Context, path string) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		model, err := l.Load(ctx, path)
		if err != nil {
			l.log.Error("asset load failed", zap.String("path", path), zap.Error(err))
		}
		ch <- Result{Model: model, Err: err}
	}()
	return ch
}

// Decode flattens the default scene of doc into world-space triangles.
// If the document has no default scene the first scene is used; with no
// scenes at all every root mesh node is used.
func Decode(doc *gltf.Document, name string) (*Model, error) {
	if doc == nil {
		return nil, errors.New("nil glTF document")
	}
	d := decoder{doc: doc, model: &Model{Name: name}}
	var roots []int
	switch {
	case doc.Scene != nil && int(*doc.Scene) < len(doc.Scenes):
		roots = toInts(doc.Scenes[*doc.Scene].Nodes)
	case len(doc.Scenes) > 0:
		roots = toInts(doc.Scenes[0].Nodes)
	default:
		roots = d.rootNodes()
	}
	for _, idx := range roots {
		err := d.node(idx, mgl32.Ident4(), 0)
		if err != nil {
			return nil, err
		}
	}
	if len(d.model.Triangles) == 0 {
		return nil, errors.New("no triangle meshes in document")
	}
	return d.model, nil
}

const maxNodeDepth = 64

type decoder struct {
	doc   *gltf.Document
	model *Model
	pos   [][3]float32
	idx   []uint32
}

func (d *decoder) node(idx int, parent mgl32.Mat4, depth int) error {
	if idx < 0 || idx >= len(d.doc.Nodes) {
		return fmt.Errorf("node index %d out of range", idx)
	} else if depth > maxNodeDepth {
		return errors.New("node hierarchy too deep or cyclic")
	}
	n := d.doc.Nodes[idx]
	world := parent.Mul4(localTransform(n))
	if n.Mesh != nil {
		mi := int(*n.Mesh)
		if mi >= len(d.doc.Meshes) {
			return fmt.Errorf("node %d: mesh index %d out of range", idx, mi)
		}
		err := d.mesh(d.doc.Meshes[mi], world)
		if err != nil {
			return fmt.Errorf("node %d: %w", idx, err)
		}
	}
	for _, child := range n.Children {
		err := d.node(int(child), world, depth+1)
		if err != nil {
			return err
		}
	}
	return nil
}

func (d *decoder) mesh(m *gltf.Mesh, world mgl32.Mat4) (err error) {
	for pi, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			continue // Points and lines have no surface to render.
		}
		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			return fmt.Errorf("mesh %q primitive %d: missing POSITION attribute", m.Name, pi)
		}
		acr, err := d.accessor(int(posIdx))
		if err != nil {
			return err
		}
		d.pos, err = modeler.ReadPosition(d.doc, acr, d.pos[:0])
		if err != nil {
			return fmt.Errorf("mesh %q primitive %d positions: %w", m.Name, pi, err)
		}
		d.idx = d.idx[:0]
		if prim.Indices != nil {
			acr, err = d.accessor(int(*prim.Indices))
			if err != nil {
				return err
			}
			d.idx, err = modeler.ReadIndices(d.doc, acr, d.idx)
			if err != nil {
				return fmt.Errorf("mesh %q primitive %d indices: %w", m.Name, pi, err)
			}
		} else {
			for i := range d.pos {
				d.idx = append(d.idx, uint32(i))
			}
		}
		if len(d.idx)%3 != 0 {
			return fmt.Errorf("mesh %q primitive %d: %d indices not a multiple of 3", m.Name, pi, len(d.idx))
		}
		for i := 0; i < len(d.idx); i += 3 {
			var tri ms3.Triangle
			for j := range tri {
				vi := int(d.idx[i+j])
				if vi >= len(d.pos) {
					return fmt.Errorf("mesh %q primitive %d: vertex index %d out of range", m.Name, pi, vi)
				}
				p := d.pos[vi]
				v := world.Mul4x1(mgl32.Vec4{p[0], p[1], p[2], 1})
				tri[j] = ms3.Vec{X: v[0], Y: v[1], Z: v[2]}
			}
			d.model.Triangles = append(d.model.Triangles, tri)
		}
	}
	return nil
}

func (d *decoder) accessor(idx int) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(d.doc.Accessors) {
		return nil, fmt.Errorf("accessor index %d out of range", idx)
	}
	return d.doc.Accessors[idx], nil
}

// rootNodes returns nodes that are not children of any other node.
func (d *decoder) rootNodes() []int {
	isChild := make([]bool, len(d.doc.Nodes))
	for _, n := range d.doc.Nodes {
		for _, c := range n.Children {
			if int(c) < len(isChild) {
				isChild[c] = true
			}
		}
	}
	var roots []int
	for i, child := range isChild {
		if !child {
			roots = append(roots, i)
		}
	}
	return roots
}

// localTransform returns the node's matrix multiplied by its TRS
// decomposition. glTF nodes define one or the other, the unused one being identity.
func localTransform(n *gltf.Node) mgl32.Mat4 {
	var m mgl32.Mat4
	for i, v := range n.MatrixOrDefault() {
		m[i] = float32(v)
	}
	t := n.TranslationOrDefault()
	r := n.RotationOrDefault()
	s := n.ScaleOrDefault()
	rot := mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}}
	trs := mgl32.Translate3D(float32(t[0]), float32(t[1]), float32(t[2])).
		Mul4(rot.Normalize().Mat4()).
		Mul4(mgl32.Scale3D(float32(s[0]), float32(s[1]), float32(s[2])))
	return m.Mul4(trs)
}

func toInts[T ~int | ~uint32](idxs []T) []int {
	out := make([]int, len(idxs))
	for i, v := range idxs {
		out[i] = int(v)
	}
	return out
}

func stopwatch() func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		return time.Since(start)
	}
}
