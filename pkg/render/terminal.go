package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// Draw renders the buffer as half-block cells: each terminal row shows two
// pixel rows, the top as the foreground of ▀ and the bottom as background.
// The buffer height should be twice the area height.
func (b *OutputBuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := (row - area.Min.Y) * 2
		botY := topY + 1
		if topY >= b.Height {
			break
		}

		for col := area.Min.X; col < area.Max.X; col++ {
			x := col - area.Min.X
			if x >= b.Width {
				break
			}
			top := b.Pixel(x, topY)
			var bot color.RGBA
			if botY < b.Height {
				bot = b.Pixel(x, botY)
			}

			scr.SetCell(col, row, &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: rgbaToColor(top),
					Bg: rgbaToColor(bot),
				},
			})
		}
	}
}

// GlyphCell is one '*' cell produced by Glyphs.
type GlyphCell struct {
	X, Y  int
	Color color.RGBA
}

// Glyphs lists one cell per pixel with non-zero alpha, in row-major order.
func (b *OutputBuffer) Glyphs() []GlyphCell {
	var cells []GlyphCell
	for y := range b.Height {
		for x := range b.Width {
			c := b.Pixel(x, y)
			if c.A == 0 {
				continue
			}
			cells = append(cells, GlyphCell{X: x, Y: y, Color: c})
		}
	}
	return cells
}

// DrawGlyphs renders one '*' per opaque pixel, colored with the pixel's
// RGB. Transparent pixels leave the screen untouched.
func (b *OutputBuffer) DrawGlyphs(scr uv.Screen, area uv.Rectangle) {
	for _, g := range b.Glyphs() {
		col, row := area.Min.X+g.X, area.Min.Y+g.Y
		if col >= area.Max.X || row >= area.Max.Y {
			continue
		}
		scr.SetCell(col, row, &uv.Cell{
			Content: "*",
			Width:   1,
			Style:   uv.Style{Fg: RGB(g.Color.R, g.Color.G, g.Color.B)},
		})
	}
}

// rgbaToColor returns nil for fully transparent pixels so the terminal
// default shows through.
func rgbaToColor(c color.RGBA) color.Color {
	if c.A == 0 {
		return nil
	}
	return c
}

// Color is an alias for color.RGBA for convenience.
type Color = color.RGBA

var (
	ColorBlack   = color.RGBA{0, 0, 0, 255}
	ColorWhite   = color.RGBA{255, 255, 255, 255}
	ColorGray    = color.RGBA{128, 128, 128, 255}
	ColorMagenta = color.RGBA{255, 0, 255, 255}
)

// RGB creates an opaque color.
func RGB(r, g, b uint8) color.RGBA {
	return color.RGBA{r, g, b, 255}
}

// RGBA creates a color from RGBA values.
func RGBA(r, g, b, a uint8) color.RGBA {
	return color.RGBA{r, g, b, a}
}
