//go:build !tinygo && cgo

package viewer

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/soypat/flyby/hud"
	"github.com/soypat/glgl/v4.1-core/glgl"
	"go.uber.org/zap"
)

const meshVertexShader = `#version 410
in vec3 aPos;
in vec3 aNormal;
uniform mat4 uViewProj;
uniform vec3 uOffset;
out vec3 vNormal;
void main() {
	vNormal = aNormal;
	gl_Position = uViewProj * vec4(aPos + uOffset, 1.0);
}
` + "\x00"

const meshFragmentShader = `#version 410
in vec3 vNormal;
out vec4 fragColor;
uniform vec3 uAmbient;
uniform vec3 uSunColor;
uniform vec3 uSunDir;
void main() {
	const vec3 albedo = vec3(0.8, 0.75, 0.7);
	vec3 n = normalize(vNormal);
	// Faces are lit from either side since models are not guaranteed to be closed.
	float dif = abs(dot(n, uSunDir));
	vec3 col = albedo * (0.4*uAmbient + 0.6*dif*uSunColor);
	fragColor = vec4(min(col, vec3(1.0)), 1.0);
}
` + "\x00"

const overlayVertexShader = `#version 410
in vec2 aPos;
in vec2 aUV;
out vec2 vUV;
void main() {
	vUV = aUV;
	gl_Position = vec4(aPos, 0.0, 1.0);
}
` + "\x00"

const overlayFragmentShader = `#version 410
in vec2 vUV;
out vec4 fragColor;
uniform sampler2D uTex;
void main() {
	fragColor = texture(uTex, vUV);
}
` + "\x00"

const captionWidth, captionHeight = 320, 28

func ui(h *Host, cfg UIConfig) error {
	window, term, err := startGLFW(cfg)
	if err != nil {
		return err
	}
	defer term()
	h.log.Info("window opened", zap.Int("width", cfg.Width), zap.Int("height", cfg.Height), zap.String("gl", gl.GoStr(gl.GetString(gl.VERSION))))

	meshes, err := newMeshProgram()
	if err != nil {
		return err
	}
	defer meshes.prog.Delete()
	var overlay *overlayRenderer
	if cfg.Overlay {
		overlay, err = newOverlayRenderer()
		if err != nil {
			return err
		}
		defer overlay.delete()
	}
	defer func() {
		for _, n := range h.Scene.Nodes() {
			deleteNode(n)
		}
	}()

	fbWidth, fbHeight := window.GetFramebufferSize()
	gl.Viewport(0, 0, int32(fbWidth), int32(fbHeight))
	h.Resize(fbWidth, fbHeight)
	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		gl.Viewport(0, 0, int32(width), int32(height))
		h.Resize(width, height)
		fbWidth, fbHeight = width, height
	})

	gl.Enable(gl.DEPTH_TEST)
	if cfg.Samples > 0 {
		gl.Enable(gl.MULTISAMPLE)
	}

	// Main render loop
	previousTime := glfw.GetTime()
	ctx := cfg.Context
	for !window.ShouldClose() {
		if ctx != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}
		currentTime := glfw.GetTime()
		elapsed := time.Duration((currentTime - previousTime) * float64(time.Second))
		previousTime = currentTime

		// Camera state must be final before drawing.
		h.Frame(elapsed)

		bg := h.Scene.Background
		gl.ClearColor(bg.X, bg.Y, bg.Z, 1.0)
		gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
		err = meshes.draw(h)
		if err != nil {
			return err
		}
		if overlay != nil {
			err = overlay.draw(h.Caption(), fbWidth, fbHeight)
			if err != nil {
				return err
			}
		}
		window.SwapBuffers()
		glfw.PollEvents()
	}
	return nil
}

type meshProgram struct {
	prog      glgl.Program
	posAttrib uint32
	norAttrib uint32
	viewProj  int32
	offset    int32
	ambient   int32
	sunColor  int32
	sunDir    int32
}

func newMeshProgram() (*meshProgram, error) {
	prog, err := glgl.CompileProgram(glgl.ShaderSource{
		Vertex:   meshVertexShader,
		Fragment: meshFragmentShader,
	})
	if err != nil {
		return nil, fmt.Errorf("compiling mesh shader: %w", err)
	}
	mp := &meshProgram{prog: prog}
	for _, u := range []struct {
		name string
		loc  *int32
	}{
		{"uViewProj\x00", &mp.viewProj},
		{"uOffset\x00", &mp.offset},
		{"uAmbient\x00", &mp.ambient},
		{"uSunColor\x00", &mp.sunColor},
		{"uSunDir\x00", &mp.sunDir},
	} {
		*u.loc, err = prog.UniformLocation(u.name)
		if err != nil {
			prog.Delete()
			return nil, err
		}
	}
	mp.posAttrib, err = prog.AttribLocation("aPos\x00")
	if err != nil {
		prog.Delete()
		return nil, err
	}
	mp.norAttrib, err = prog.AttribLocation("aNormal\x00")
	if err != nil {
		prog.Delete()
		return nil, err
	}
	return mp, nil
}

func (mp *meshProgram) draw(h *Host) error {
	nodes := h.Scene.Nodes()
	if len(nodes) == 0 {
		return nil
	}
	mp.prog.Bind()
	defer mp.prog.Unbind()
	vp := h.Camera.Projection().Mul4(h.Camera.View())
	gl.UniformMatrix4fv(mp.viewProj, 1, false, &vp[0])
	amb := h.Scene.Ambient
	sun := h.Scene.Directional
	sunDir := sun.Direction()
	gl.Uniform3f(mp.ambient, amb.Color.X*amb.Intensity, amb.Color.Y*amb.Intensity, amb.Color.Z*amb.Intensity)
	gl.Uniform3f(mp.sunColor, sun.Color.X*sun.Intensity, sun.Color.Y*sun.Intensity, sun.Color.Z*sun.Intensity)
	gl.Uniform3f(mp.sunDir, sunDir.X, sunDir.Y, sunDir.Z)
	for _, n := range nodes {
		if n.vao == 0 {
			err := mp.upload(n)
			if err != nil {
				return err
			}
		}
		gl.Uniform3f(mp.offset, n.Offset.X, n.Offset.Y, n.Offset.Z)
		gl.BindVertexArray(n.vao)
		gl.DrawArrays(gl.TRIANGLES, 0, int32(len(n.Vertices)/floatsPerVertex))
	}
	gl.BindVertexArray(0)
	return glgl.Err()
}

func (mp *meshProgram) upload(n *Node) error {
	if len(n.Vertices) == 0 {
		return errors.New("node " + n.Name + " has no vertices")
	}
	gl.GenVertexArrays(1, &n.vao)
	gl.BindVertexArray(n.vao)
	gl.GenBuffers(1, &n.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, n.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, 4*len(n.Vertices), gl.Ptr(n.Vertices), gl.STATIC_DRAW)
	const stride = 4 * floatsPerVertex
	gl.EnableVertexAttribArray(mp.posAttrib)
	gl.VertexAttribPointer(mp.posAttrib, 3, gl.FLOAT, false, stride, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(mp.norAttrib)
	gl.VertexAttribPointer(mp.norAttrib, 3, gl.FLOAT, false, stride, gl.PtrOffset(3*4))
	if n.vao == 0 || n.vbo == 0 {
		return glErrOrMessage("uploading mesh " + n.Name + " got zero id")
	}
	return glgl.Err()
}

func deleteNode(n *Node) {
	if n.vbo != 0 {
		gl.DeleteBuffers(1, &n.vbo)
		n.vbo = 0
	}
	if n.vao != 0 {
		gl.DeleteVertexArrays(1, &n.vao)
		n.vao = 0
	}
}

type overlayRenderer struct {
	prog    glgl.Program
	caption *hud.Caption
	vao     uint32
	vbo     uint32
	tex     uint32
	texUni  int32
	quad    [16]float32
}

func newOverlayRenderer() (*overlayRenderer, error) {
	caption, err := hud.NewCaption(hud.CaptionConfig{Width: captionWidth, Height: captionHeight})
	if err != nil {
		return nil, err
	}
	prog, err := glgl.CompileProgram(glgl.ShaderSource{
		Vertex:   overlayVertexShader,
		Fragment: overlayFragmentShader,
	})
	if err != nil {
		return nil, fmt.Errorf("compiling overlay shader: %w", err)
	}
	ov := &overlayRenderer{prog: prog, caption: caption}
	ov.texUni, err = prog.UniformLocation("uTex\x00")
	if err != nil {
		prog.Delete()
		return nil, err
	}
	posAttrib, err := prog.AttribLocation("aPos\x00")
	if err != nil {
		prog.Delete()
		return nil, err
	}
	uvAttrib, err := prog.AttribLocation("aUV\x00")
	if err != nil {
		prog.Delete()
		return nil, err
	}
	gl.GenVertexArrays(1, &ov.vao)
	gl.BindVertexArray(ov.vao)
	gl.GenBuffers(1, &ov.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, ov.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, 4*len(ov.quad), nil, gl.DYNAMIC_DRAW)
	gl.EnableVertexAttribArray(posAttrib)
	gl.VertexAttribPointer(posAttrib, 2, gl.FLOAT, false, 4*4, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(uvAttrib)
	gl.VertexAttribPointer(uvAttrib, 2, gl.FLOAT, false, 4*4, gl.PtrOffset(2*4))
	gl.BindVertexArray(0)

	img := caption.Image()
	gl.GenTextures(1, &ov.tex)
	gl.BindTexture(gl.TEXTURE_2D, ov.tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(img.Rect.Dx()), int32(img.Rect.Dy()), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	if ov.vao == 0 || ov.vbo == 0 || ov.tex == 0 {
		ov.delete()
		return nil, glErrOrMessage("creating overlay got zero id")
	}
	return ov, nil
}

func (ov *overlayRenderer) draw(text string, fbWidth, fbHeight int) error {
	if text == "" || fbWidth <= 0 || fbHeight <= 0 {
		return nil
	}
	img, changed, err := ov.caption.Render(text)
	if err != nil {
		return err
	}
	gl.BindTexture(gl.TEXTURE_2D, ov.tex)
	if changed {
		uploadSubImage(img)
	}
	// Caption quad pinned to the top left corner, one texel per pixel.
	x1 := -1 + 2*float32(img.Rect.Dx())/float32(fbWidth)
	y0 := 1 - 2*float32(img.Rect.Dy())/float32(fbHeight)
	ov.quad = [16]float32{
		-1, y0, 0, 1,
		x1, y0, 1, 1,
		-1, 1, 0, 0,
		x1, 1, 1, 0,
	}
	ov.prog.Bind()
	defer ov.prog.Unbind()
	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.Uniform1i(ov.texUni, 0)
	gl.BindVertexArray(ov.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, ov.vbo)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, 4*len(ov.quad), gl.Ptr(&ov.quad[0]))
	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
	gl.BindVertexArray(0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.Disable(gl.BLEND)
	gl.Enable(gl.DEPTH_TEST)
	return glgl.Err()
}

func uploadSubImage(img *image.RGBA) {
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(img.Rect.Dx()), int32(img.Rect.Dy()), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
}

func (ov *overlayRenderer) delete() {
	if ov.tex != 0 {
		gl.DeleteTextures(1, &ov.tex)
	}
	if ov.vbo != 0 {
		gl.DeleteBuffers(1, &ov.vbo)
	}
	if ov.vao != 0 {
		gl.DeleteVertexArrays(1, &ov.vao)
	}
	ov.prog.Delete()
}

func startGLFW(cfg UIConfig) (window *glfw.Window, term func(), err error) {
	if err := glfw.Init(); err != nil {
		return nil, nil, fmt.Errorf("initializing GLFW: %w", err)
	}
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	if cfg.Samples > 0 {
		glfw.WindowHint(glfw.Samples, cfg.Samples)
	}

	window, err = glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, nil, fmt.Errorf("creating GLFW window: %w", err)
	}
	window.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		glfw.Terminate()
		return nil, nil, fmt.Errorf("initializing OpenGL: %w", err)
	}
	// Frames are paced by the display refresh.
	glfw.SwapInterval(1)
	return window, glfw.Terminate, nil
}

func glErrOrMessage(defaultMsg string) (err error) {
	err = glgl.Err()
	if err == nil {
		err = errors.New(defaultMsg)
	} else {
		err = fmt.Errorf("%s: %w", defaultMsg, err)
	}
	return err
}
