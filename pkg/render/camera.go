package render

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/taigrr/scanline/pkg/math3d"
)

// Direction is a discrete camera movement command.
type Direction int

const (
	StrafeLeft Direction = iota
	StrafeRight
	MoveForward
	MoveBack
	RotateLeft
	RotateRight
)

func (d Direction) String() string {
	switch d {
	case StrafeLeft:
		return "strafe-left"
	case StrafeRight:
		return "strafe-right"
	case MoveForward:
		return "forward"
	case MoveBack:
		return "back"
	case RotateLeft:
		return "rotate-left"
	case RotateRight:
		return "rotate-right"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Projector supplies the transforms the render pipeline needs. Camera is
// the production implementation; tests substitute fixed projections.
type Projector interface {
	// UpdateCamera applies one movement step.
	UpdateCamera(d Direction)
	// ViewPosition returns the eye position in world space.
	ViewPosition() math3d.Point3
	// Model returns the object-to-world transform.
	Model() math3d.HomoTransform
	// ViewProjection returns View · Projection.
	ViewProjection() math3d.HomoTransform
	// UpdateProjection recomputes the projection for a new output size.
	UpdateProjection(width, height int)
	// Handedness reports the projection's coordinate convention.
	Handedness() Handedness
}

// CameraConfig describes the initial camera state.
type CameraConfig struct {
	FovY  float32 // vertical field of view, degrees
	Ratio float32 // width / height
	Near  float32
	Far   float32

	Eye     math3d.Point3
	Forward math3d.Vec3
	Up      math3d.Vec3

	Handedness Handedness

	// YawStep is the rotation per RotateLeft/RotateRight step, in degrees.
	YawStep float32
}

// DefaultCameraConfig returns a camera ten units back on +Z looking down -Z.
// Near and far are the z values of the clip planes in view space, so they
// are negative for a right-handed camera.
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		FovY:    45,
		Ratio:   1,
		Near:    -5,
		Far:     -50,
		Eye:     math3d.P3(0, 0, 10),
		Forward: math3d.Forward(),
		Up:      math3d.Up(),
		YawStep: 1,
	}
}

// Camera is a perspective camera with an eye position, forward and up
// directions, and a model transform for the scene it looks at.
//
// The projection matrix is recomputed eagerly whenever fov, ratio, near or
// far change.
type Camera struct {
	fovY, ratio, near, far float32

	eye     math3d.Point3
	forward math3d.Vec3
	up      math3d.Vec3
	model   math3d.HomoTransform

	handedness Handedness
	yawStep    float32

	projection math3d.HomoTransform
}

var _ Projector = (*Camera)(nil)

// NewCamera creates a camera from cfg.
func NewCamera(cfg CameraConfig) *Camera {
	if cfg.Ratio == 0 {
		cfg.Ratio = 1
	}
	c := &Camera{
		fovY:       cfg.FovY,
		ratio:      cfg.Ratio,
		near:       cfg.Near,
		far:        cfg.Far,
		eye:        cfg.Eye,
		forward:    cfg.Forward.Normalize(),
		up:         cfg.Up.Normalize(),
		model:      math3d.IdentityTransform(),
		handedness: cfg.Handedness,
		yawStep:    cfg.YawStep,
	}
	c.updateProjection()
	return c
}

func (c *Camera) updateProjection() {
	c.projection = Projection(c.handedness, c.fovY, c.ratio, c.near, c.far)
}

// SetFOV sets the vertical field of view in degrees.
func (c *Camera) SetFOV(deg float32) {
	c.fovY = deg
	c.updateProjection()
}

// SetAspectRatio sets width / height.
func (c *Camera) SetAspectRatio(ratio float32) {
	c.ratio = ratio
	c.updateProjection()
}

// SetClipPlanes sets the near and far plane z values.
func (c *Camera) SetClipPlanes(near, far float32) {
	c.near = near
	c.far = far
	c.updateProjection()
}

// SetPosition moves the eye.
func (c *Camera) SetPosition(p math3d.Point3) {
	c.eye = p
}

// SetOrientation points the camera along forward with the given up vector.
func (c *Camera) SetOrientation(forward, up math3d.Vec3) {
	c.forward = forward.Normalize()
	c.up = up.Normalize()
}

// SetModel replaces the model transform.
func (c *Camera) SetModel(m math3d.HomoTransform) {
	c.model = m
}

// FOV returns the vertical field of view in degrees.
func (c *Camera) FOV() float32 { return c.fovY }

// AspectRatio returns width / height.
func (c *Camera) AspectRatio() float32 { return c.ratio }

// Forward returns the unit view direction.
func (c *Camera) Forward() math3d.Vec3 { return c.forward }

// Up returns the unit up direction.
func (c *Camera) Up() math3d.Vec3 { return c.up }

// Projection returns the cached projection matrix.
func (c *Camera) Projection() math3d.HomoTransform { return c.projection }

// Handedness implements Projector.
func (c *Camera) Handedness() Handedness { return c.handedness }

// Model implements Projector.
func (c *Camera) Model() math3d.HomoTransform { return c.model }

// ViewPosition implements Projector.
func (c *Camera) ViewPosition() math3d.Point3 { return c.eye }

// ViewMatrix returns translate(-eye) · rotateToNegZ(forward, up). A
// left-handed camera additionally mirrors z so that view space looks down +Z.
func (c *Camera) ViewMatrix() math3d.HomoTransform {
	view := math3d.Translation(c.eye.Vec().Negate()).
		Mul(math3d.RotateToNegativeZ(c.forward, c.up))
	if c.handedness == LeftHanded {
		view = view.Mul(math3d.NegateZ())
	}
	return view
}

// ViewProjection implements Projector.
func (c *Camera) ViewProjection() math3d.HomoTransform {
	return c.ViewMatrix().Mul(c.projection)
}

// UpdateProjection implements Projector. Zero sizes are ignored.
func (c *Camera) UpdateProjection(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.ratio = float32(width) / float32(height)
	c.updateProjection()
}

// UpdateCamera implements Projector. Strafing moves along forward × up,
// translation steps are one unit, and rotation yaws forward about up by
// the configured step.
func (c *Camera) UpdateCamera(d Direction) {
	switch d {
	case StrafeLeft:
		c.eye = c.eye.Add(c.up.Cross(c.forward))
	case StrafeRight:
		c.eye = c.eye.Add(c.forward.Cross(c.up))
	case MoveForward:
		c.eye = c.eye.Add(c.forward)
	case MoveBack:
		c.eye = c.eye.Add(c.forward.Negate())
	case RotateLeft:
		c.forward = c.forward.RotateAround(c.up, math3d.Radians(c.yawStep)).Normalize()
	case RotateRight:
		c.forward = c.forward.RotateAround(c.up, -math3d.Radians(c.yawStep)).Normalize()
	}
}

// Frustum returns the near-plane extents for a vertical field of view
// (degrees), aspect ratio and near plane z.
func Frustum(fovY, ratio, near float32) (l, r, t, b float32) {
	y := math32.Abs(near*math32.Tan(math3d.Radians(fovY/2))) * 2
	x := y * ratio
	return -x / 2, x / 2, y / 2, -y / 2
}

// Projection builds the perspective projection for the given handedness.
// Points inside the frustum map to the [-1, 1] cube. For a right-handed
// projection the near plane maps to z = +1 and the far plane to z = -1; a
// left-handed projection mirrors z first, so near maps to -1.
func Projection(h Handedness, fovY, ratio, near, far float32) math3d.HomoTransform {
	l, r, t, b := Frustum(fovY, ratio, near)
	n, f := near, far

	persp := math3d.TransformFromRows([16]float32{
		n, 0, 0, 0,
		0, n, 0, 0,
		0, 0, n + f, 1,
		0, 0, -n * f, 0,
	})
	translate := math3d.Translation(math3d.V3(-(r+l)/2, -(t+b)/2, -(n+f)/2))

	sz := 2 / (n - f)
	if h == LeftHanded {
		sz = 2 / (f - n)
	}
	scale := math3d.ScaleTransform(2/(r-l), 2/(t-b), sz)

	ortho := persp.Mul(translate).Mul(scale)
	if h == LeftHanded {
		return math3d.NegateZ().Mul(ortho)
	}
	return ortho
}
