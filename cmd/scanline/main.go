// scanline - software rasterizer demo
// Renders an OBJ or GLB model (or a built-in cube) in the terminal, in a
// desktop window, or headless to a PNG snapshot.
//
// Controls:
//
//	W/S    - Move forward/back
//	Q/E    - Strafe left/right
//	A/D    - Turn left/right
//	Space  - Spin the model
//	R      - Reset view
//	T      - Toggle texture
//	Esc    - Quit
package main

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/taigrr/scanline/pkg/present"
	"github.com/taigrr/scanline/pkg/render"
	"github.com/taigrr/scanline/pkg/viewer"
)

type options struct {
	texture    string
	pattern    string
	fps        int
	shading    string
	leftHanded bool
	cull       bool
	window     bool
	glyphs     bool
	frames     int
	snapshot   string
	width      int
	height     int
	scale      int
	logPath    string
	verbose    bool
	bg         string
}

func main() {
	var opts options

	cmd := &cobra.Command{
		Use:   "scanline [model.obj|model.glb]",
		Short: "Software rasterizer for the terminal",
		Long: "scanline draws a 3D model with a CPU scanline rasterizer and shows\n" +
			"it in the terminal, in a window, or writes a PNG snapshot.\n" +
			"Without a model it draws a cube.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model := ""
			if len(args) == 1 {
				model = args[0]
			}
			return run(cmd.Context(), model, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.texture, "texture", "", "path to texture image (PNG/JPG/BMP/TIFF/WebP)")
	f.StringVar(&opts.pattern, "pattern", "checker", "generated texture when none is loaded: checker or noise")
	f.IntVar(&opts.fps, "fps", 30, "target frames per second")
	f.StringVar(&opts.shading, "shading", "flat", "shading mode: flat or textured")
	f.BoolVar(&opts.leftHanded, "left-handed", false, "use the left-handed projection")
	f.BoolVar(&opts.cull, "cull", false, "drop back-facing triangles")
	f.BoolVar(&opts.window, "window", false, "show a desktop window instead of the terminal")
	f.BoolVar(&opts.glyphs, "glyphs", false, "draw one '*' per pixel instead of half blocks")
	f.IntVar(&opts.frames, "frames", 0, "render this many frames headless and exit")
	f.StringVar(&opts.snapshot, "snapshot", "", "write the last headless frame to this PNG")
	f.IntVar(&opts.width, "width", 320, "buffer width for window and headless modes")
	f.IntVar(&opts.height, "height", 200, "buffer height for window and headless modes")
	f.IntVar(&opts.scale, "scale", 2, "pixel scale for the window and snapshot")
	f.StringVar(&opts.logPath, "log", "scanline.log", "log file (empty disables logging)")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log per-frame debug output")
	f.StringVar(&opts.bg, "bg", "30,30,40", "background color (R,G,B)")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := fang.Execute(ctx, cmd); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, model string, opts options) error {
	closeLog, err := setupLogging(opts.logPath, opts.verbose)
	if err != nil {
		return err
	}
	defer closeLog()

	shading, err := render.ParseShading(opts.shading)
	if err != nil {
		return err
	}
	pattern, err := viewer.ParsePattern(opts.pattern)
	if err != nil {
		return err
	}
	bg, err := parseColor(opts.bg)
	if err != nil {
		return err
	}

	vopts := viewer.Options{
		ModelPath:   model,
		TexturePath: opts.texture,
		Pattern:     pattern,
		Shading:     shading,
		Handedness:  render.RightHanded,
		Cull:        opts.cull,
		Background:  bg,
		Width:       opts.width,
		Height:      opts.height,
		FPS:         opts.fps,
	}
	if opts.leftHanded {
		vopts.Handedness = render.LeftHanded
	}

	switch {
	case opts.frames > 0:
		v, err := viewer.New(vopts)
		if err != nil {
			return err
		}
		return v.RunHeadless(ctx, opts.frames, false, opts.snapshot, opts.scale)
	case opts.window:
		v, err := viewer.New(vopts)
		if err != nil {
			return err
		}
		w := present.NewWindow(v.Buffer, func() error {
			_, err := v.Frame()
			return err
		}, func(key string) { v.HandleKey(key) })
		return present.Run(w, "scanline", opts.scale, opts.fps)
	default:
		return runTerminal(ctx, vopts, opts.glyphs)
	}
}

// setupLogging sends render logs to path so they do not corrupt the
// terminal UI.
func setupLogging(path string, verbose bool) (func(), error) {
	if path == "" {
		return func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	render.SetLogger(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})))
	return func() {
		render.SetLogger(nil)
		f.Close()
	}, nil
}

func parseColor(s string) (color.RGBA, error) {
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "%d,%d,%d", &r, &g, &b); err != nil {
		return color.RGBA{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	return render.RGB(r, g, b), nil
}
