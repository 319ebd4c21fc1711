package main

import (
	"context"
	"fmt"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/taigrr/scanline/pkg/render"
	"github.com/taigrr/scanline/pkg/viewer"
)

// terminalKeys are the key names forwarded to the viewer.
var terminalKeys = []string{"q", "e", "w", "s", "a", "d", "r", "t", "space"}

// bufferSize returns the pixel size for a terminal of cols x rows. Half
// blocks pack two pixel rows into each cell.
func bufferSize(cols, rows int, glyphs bool) (int, int) {
	if glyphs {
		return cols, rows
	}
	return cols, rows * 2
}

var blank = &uv.Cell{Content: " ", Width: 1}

func runTerminal(ctx context.Context, opts viewer.Options, glyphs bool) error {
	term := uv.DefaultTerminal()

	cols, rows, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	opts.Width, opts.Height = bufferSize(cols, rows, glyphs)

	v, err := viewer.New(opts)
	if err != nil {
		return err
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(cols, rows)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cleanup := func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}
	defer cleanup()

	// The reader goroutine only forwards events; the camera and buffer
	// are touched by the frame loop alone.
	events := make(chan uv.Event, 16)
	go func() {
		defer close(events)
		for ev := range term.Events() {
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(v.Tick())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				cols, rows = ev.Width, ev.Height
				term.Erase()
				term.Resize(cols, rows)
				v.Resize(bufferSize(cols, rows, glyphs))
			case uv.KeyPressEvent:
				if ev.MatchString("escape", "ctrl+c") {
					return nil
				}
				for _, k := range terminalKeys {
					if ev.MatchString(k) {
						v.HandleKey(k)
						break
					}
				}
			}
		case <-ticker.C:
			stats, err := v.Frame()
			if err != nil {
				return err
			}
			area := term.Bounds()
			if glyphs {
				for y := area.Min.Y; y < area.Max.Y; y++ {
					for x := area.Min.X; x < area.Max.X; x++ {
						term.SetCell(x, y, blank)
					}
				}
				v.Buffer.DrawGlyphs(term, area)
			} else {
				v.Buffer.Draw(term, area)
			}
			if err := term.Display(); err != nil {
				return fmt.Errorf("display: %w", err)
			}
			render.Logger().Debug("frame displayed", "pixels", stats.Pixels, "culled", stats.Culled)
		}
	}
}
