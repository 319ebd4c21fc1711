package control

import "github.com/taigrr/scanline/pkg/render"

// Keys maps single-key names to camera movements.
var Keys = map[string]render.Direction{
	"q": render.StrafeLeft,
	"e": render.StrafeRight,
	"w": render.MoveForward,
	"s": render.MoveBack,
	"a": render.RotateLeft,
	"d": render.RotateRight,
}

// DirectionForKey returns the movement bound to key. Upper-case letters
// match their lower-case binding.
func DirectionForKey(key string) (render.Direction, bool) {
	if len(key) == 1 && key[0] >= 'A' && key[0] <= 'Z' {
		key = string(key[0] + 'a' - 'A')
	}
	d, ok := Keys[key]
	return d, ok
}

// Drive applies the movement bound to key, if any, to p and reports
// whether the camera moved.
func Drive(p render.Projector, key string) bool {
	d, ok := DirectionForKey(key)
	if !ok {
		return false
	}
	p.UpdateCamera(d)
	return true
}
