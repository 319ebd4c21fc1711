package render

import (
	"fmt"
	"image/color"
	"strings"
)

// Handedness selects the coordinate convention of the projection.
type Handedness int

const (
	// RightHanded looks down -Z. The default.
	RightHanded Handedness = iota
	// LeftHanded looks down +Z.
	LeftHanded
)

func (h Handedness) String() string {
	switch h {
	case RightHanded:
		return "right"
	case LeftHanded:
		return "left"
	default:
		return fmt.Sprintf("Handedness(%d)", int(h))
	}
}

// Shading selects how covered pixels are colored.
type Shading int

const (
	// ShadingFlat writes a grayscale intensity derived from depth.
	ShadingFlat Shading = iota
	// ShadingTextured samples the scene texture at interpolated UVs.
	ShadingTextured
)

func (s Shading) String() string {
	switch s {
	case ShadingFlat:
		return "flat"
	case ShadingTextured:
		return "textured"
	default:
		return fmt.Sprintf("Shading(%d)", int(s))
	}
}

// ParseShading parses "flat" or "textured".
func ParseShading(s string) (Shading, error) {
	switch strings.ToLower(s) {
	case "flat", "":
		return ShadingFlat, nil
	case "textured", "texture":
		return ShadingTextured, nil
	}
	return 0, fmt.Errorf("unknown shading %q", s)
}

// Config holds renderer settings. It is passed explicitly to NewRenderer;
// nothing is read from globals.
type Config struct {
	Shading Shading

	// CullBackfaces drops faces whose projected vertices turn clockwise.
	CullBackfaces bool

	// Clear is written to every pixel by Renderer.Clear.
	Clear color.RGBA

	// Fallback is used in textured mode when the scene has no texture and
	// the face carries no material color.
	Fallback color.RGBA
}

// DefaultConfig returns flat shading over a transparent background.
func DefaultConfig() Config {
	return Config{
		Shading:  ShadingFlat,
		Fallback: ColorMagenta,
	}
}
