// Package control turns user input into camera movement and model
// rotation for the frame loop.
package control

import (
	"math"

	"github.com/charmbracelet/harmonica"
	"github.com/taigrr/scanline/pkg/math3d"
)

// restVelocity is the speed below which an axis counts as stopped.
const restVelocity = 1e-4

// Axis tracks angle and angular velocity for one rotation axis. The
// velocity decays toward zero through a critically damped spring.
type Axis struct {
	Position float64 // radians
	Velocity float64 // radians per frame

	spring harmonica.Spring
	accel  float64 // spring velocity used to animate Velocity toward 0
}

// NewAxis creates an axis whose spring is tuned for fps updates per second.
func NewAxis(fps int) Axis {
	return Axis{
		// frequency 4 decelerates over roughly a second without overshoot
		spring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

// Update advances the angle by one frame and decays the velocity.
func (a *Axis) Update() {
	a.Position += a.Velocity
	a.Velocity, a.accel = a.spring.Update(a.Velocity, a.accel, 0)
	if math.Abs(a.Velocity) < restVelocity && math.Abs(a.accel) < restVelocity {
		a.Velocity, a.accel = 0, 0
	}
}

// Spin is the model rotation driven by impulses.
type Spin struct {
	Pitch, Yaw, Roll Axis
	fps              int
}

// NewSpin creates a resting spin updated fps times per second.
func NewSpin(fps int) *Spin {
	if fps <= 0 {
		fps = 60
	}
	s := &Spin{fps: fps}
	s.Reset()
	return s
}

// Update advances all three axes by one frame.
func (s *Spin) Update() {
	s.Pitch.Update()
	s.Yaw.Update()
	s.Roll.Update()
}

// ApplyImpulse adds angular velocity in radians per frame.
func (s *Spin) ApplyImpulse(pitch, yaw, roll float64) {
	s.Pitch.Velocity += pitch
	s.Yaw.Velocity += yaw
	s.Roll.Velocity += roll
}

// Reset returns every axis to zero angle and velocity.
func (s *Spin) Reset() {
	s.Pitch = NewAxis(s.fps)
	s.Yaw = NewAxis(s.fps)
	s.Roll = NewAxis(s.fps)
}

// Moving reports whether any axis still has velocity.
func (s *Spin) Moving() bool {
	return s.Pitch.Velocity != 0 || s.Yaw.Velocity != 0 || s.Roll.Velocity != 0
}

// Transform returns the model rotation: pitch about X, then yaw about Y,
// then roll about Z.
func (s *Spin) Transform() math3d.HomoTransform {
	return math3d.RotationAround(math3d.V3(1, 0, 0), float32(s.Pitch.Position)).
		Then(math3d.RotationAround(math3d.V3(0, 1, 0), float32(s.Yaw.Position))).
		Then(math3d.RotationAround(math3d.V3(0, 0, 1), float32(s.Roll.Position)))
}
