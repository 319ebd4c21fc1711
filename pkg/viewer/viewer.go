// Package viewer owns one interactive rendering session: the camera, the
// model spin, the scene and the output buffer, advanced one frame at a
// time by whichever front end drives it.
package viewer

import (
	"context"
	"fmt"
	"image/color"
	"math/rand/v2"
	"time"

	"github.com/taigrr/scanline/pkg/control"
	"github.com/taigrr/scanline/pkg/render"
)

// modelExtent is the size the largest model dimension is scaled to. It
// keeps a spinning model inside the default view so whole-face culling
// does not bite.
const modelExtent = 3

// Options configures a session.
type Options struct {
	ModelPath   string
	TexturePath string
	Pattern     Pattern
	Shading     render.Shading
	Handedness  render.Handedness
	Cull        bool
	Background  color.RGBA
	Width       int
	Height      int
	FPS         int
}

// DefaultOptions returns a flat-shaded 160x96 session at 30 FPS.
func DefaultOptions() Options {
	return Options{
		Shading:    render.ShadingFlat,
		Pattern:    PatternChecker,
		Handedness: render.RightHanded,
		Background: render.RGB(30, 30, 40),
		Width:      160,
		Height:     96,
		FPS:        30,
	}
}

// Viewer renders a scene frame by frame. It is not safe for concurrent
// use; input must be delivered on the goroutine that calls Frame.
type Viewer struct {
	Camera   *render.Camera
	Renderer *render.Renderer
	Scene    render.Scene
	Spin     *control.Spin
	Buffer   *render.OutputBuffer

	opts    Options
	texture *render.Texture
	total   render.FrameStats
	frames  int
}

// New loads the scene and builds a session for opts.
func New(opts Options) (*Viewer, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid size %dx%d", opts.Width, opts.Height)
	}

	mesh, embedded, err := LoadMesh(opts.ModelPath)
	if err != nil {
		return nil, err
	}
	// normalize once so the per-frame model is only the spin
	mesh.Transform(mesh.FitTransform(modelExtent))

	camCfg := render.DefaultCameraConfig()
	camCfg.Handedness = opts.Handedness
	camCfg.Ratio = float32(opts.Width) / float32(opts.Height)
	cam := render.NewCamera(camCfg)

	cfg := render.DefaultConfig()
	cfg.Shading = opts.Shading
	cfg.CullBackfaces = opts.Cull
	cfg.Clear = opts.Background

	v := &Viewer{
		Camera:   cam,
		Renderer: render.NewRenderer(cam, cfg),
		Spin:     control.NewSpin(opts.FPS),
		Buffer:   render.NewOutputBuffer(opts.Width, opts.Height),
		opts:     opts,
		texture:  ResolveTexture(opts.TexturePath, embedded, opts.Pattern),
	}
	v.Scene = render.Scene{Faces: render.FacesFromMesh(mesh), Texture: v.texture}

	render.Logger().Info("scene loaded",
		"model", mesh.Name,
		"vertices", mesh.VertexCount(),
		"triangles", mesh.TriangleCount(),
		"shading", opts.Shading,
		"handedness", opts.Handedness,
	)
	return v, nil
}

// Resize replaces the output buffer and updates the camera aspect ratio.
// Non-positive sizes are ignored.
func (v *Viewer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if width == v.Buffer.Width && height == v.Buffer.Height {
		return
	}
	v.Buffer = render.NewOutputBuffer(width, height)
	v.Camera.UpdateProjection(width, height)
}

// Frame advances the spin and renders into Buffer.
func (v *Viewer) Frame() (render.FrameStats, error) {
	v.Spin.Update()
	v.Camera.SetModel(v.Spin.Transform())

	v.Renderer.Clear(v.Buffer)
	stats, err := v.Renderer.Render(v.Buffer, v.Scene)
	if err != nil {
		return stats, fmt.Errorf("render frame %d: %w", v.frames, err)
	}
	v.frames++
	v.total.Add(stats)
	return stats, nil
}

// Frames returns how many frames rendered successfully.
func (v *Viewer) Frames() int {
	return v.frames
}

// Totals returns statistics accumulated over all frames.
func (v *Viewer) Totals() render.FrameStats {
	return v.total
}

// HandleKey applies a key press. Movement keys go to the camera; r resets
// the view, t toggles texturing and space spins the model. It reports
// whether the key was bound.
func (v *Viewer) HandleKey(key string) bool {
	if control.Drive(v.Camera, key) {
		return true
	}
	switch key {
	case "r":
		v.Spin.Reset()
		cfg := render.DefaultCameraConfig()
		v.Camera.SetPosition(cfg.Eye)
		v.Camera.SetOrientation(cfg.Forward, cfg.Up)
	case "t":
		if v.Renderer.Config().Shading == render.ShadingTextured {
			v.Renderer.SetShading(render.ShadingFlat)
		} else {
			v.Renderer.SetShading(render.ShadingTextured)
		}
	case "space":
		v.Spin.ApplyImpulse(
			(rand.Float64()-0.5)*0.3,
			(rand.Float64()-0.5)*0.3,
			(rand.Float64()-0.5)*0.3,
		)
	default:
		return false
	}
	return true
}

// Tick returns the frame period for the configured FPS.
func (v *Viewer) Tick() time.Duration {
	if v.opts.FPS <= 0 {
		return time.Second / 30
	}
	return time.Second / time.Duration(v.opts.FPS)
}

// RunHeadless renders frames frames without a display, paced by Tick
// when pace is set, and writes the last one to snapshot when non-empty.
// Snapshot failures are logged and do not fail the run.
func (v *Viewer) RunHeadless(ctx context.Context, frames int, pace bool, snapshot string, scale int) error {
	var ticker *time.Ticker
	if pace {
		ticker = time.NewTicker(v.Tick())
		defer ticker.Stop()
	}

	for i := range frames {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := v.Frame(); err != nil {
			return err
		}
		if ticker != nil && i+1 < frames {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		}
	}

	t := v.Totals()
	render.Logger().Info("headless run finished",
		"frames", v.frames,
		"triangles", t.Triangles,
		"culled", t.Culled,
		"degenerate", t.Degenerate,
		"pixels", t.Pixels,
	)

	if snapshot != "" {
		if err := v.Buffer.SavePNG(snapshot, scale); err != nil {
			render.Logger().Error("snapshot failed", "path", snapshot, "err", err)
		}
	}
	return nil
}
