package lightlab

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

type CameraComponent struct {
	Fov    float32 // vertical, degrees
	Aspect float32
	Near   float32
	Far    float32
	Target mgl32.Vec3
	Up     mgl32.Vec3
}

func (c CameraComponent) View(position mgl32.Vec3) mgl32.Mat4 {
	up := c.Up
	if up.Len() == 0 {
		up = mgl32.Vec3{0, 1, 0}
	}
	return mgl32.LookAtV(position, c.Target, up)
}

func (c CameraComponent) Projection() mgl32.Mat4 {
	aspect := c.Aspect
	if aspect <= 0 {
		aspect = 16.0 / 9.0
	}
	return mgl32.Perspective(mgl32.DegToRad(c.Fov), aspect, c.Near, c.Far)
}

// OrbitControlsComponent rotates the camera around its target with damped inertia.
// Zoom is applied immediately.
type OrbitControlsComponent struct {
	Damping     float32
	RotateSpeed float32
	ZoomSpeed   float32
	MinDistance float32
	MaxDistance float32

	thetaDelta float32
	phiDelta   float32
}

type CameraModule struct {
	Position mgl32.Vec3
	Target   mgl32.Vec3
	Fov      float32
	Near     float32
	Far      float32
	Damping  float32
}

// DefaultCameraModule matches the sandbox framing: 75° fov looking at the origin from (0,5,10).
func DefaultCameraModule() CameraModule {
	return CameraModule{
		Position: mgl32.Vec3{0, 5, 10},
		Fov:      75,
		Near:     0.1,
		Far:      1000,
		Damping:  0.05,
	}
}

func (mod CameraModule) Install(app *App, cmd *Commands) {
	cmd.AddEntity(
		&TransformComponent{Position: mod.Position, Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}},
		&CameraComponent{
			Fov:    mod.Fov,
			Near:   mod.Near,
			Far:    mod.Far,
			Target: mod.Target,
			Up:     mgl32.Vec3{0, 1, 0},
		},
		&OrbitControlsComponent{
			Damping:     mod.Damping,
			RotateSpeed: 1,
			ZoomSpeed:   1,
			MinDistance: 1,
			MaxDistance: 200,
		},
	)

	if Resource[Input](app) != nil {
		app.UseSystem(System(orbitControlsSystem).InStage(Update).RunAlways())
	}
}

func orbitControlsSystem(cmd *Commands, input *Input) {
	MakeQuery3[TransformComponent, CameraComponent, OrbitControlsComponent](cmd).Map(
		func(eid EntityId, tr *TransformComponent, cam *CameraComponent, ctl *OrbitControlsComponent) bool {
			if input.WindowWidth > 0 && input.WindowHeight > 0 {
				cam.Aspect = float32(input.WindowWidth) / float32(input.WindowHeight)
			}
			dragging := input.Pressed[MouseButtonLeft]
			tr.Position = ctl.Update(tr.Position, cam.Target, input.MouseDeltaX, input.MouseDeltaY, input.ScrollY, dragging, input.WindowHeight)
			return true
		})
}

// Update feeds one frame of pointer input and returns the new camera position.
func (ctl *OrbitControlsComponent) Update(position, target mgl32.Vec3, dx, dy, scroll float64, dragging bool, viewportHeight int) mgl32.Vec3 {
	if dragging && viewportHeight > 0 {
		h := float32(viewportHeight)
		ctl.thetaDelta -= twoPi * float32(dx) / h * ctl.RotateSpeed
		ctl.phiDelta -= twoPi * float32(dy) / h * ctl.RotateSpeed
	}

	offset := position.Sub(target)
	radius := offset.Len()
	if radius < 1e-6 {
		return position
	}
	theta := math32.Atan2(offset.X(), offset.Z())
	phi := math32.Acos(mgl32.Clamp(offset.Y()/radius, -1, 1))

	damping := ctl.Damping
	if damping <= 0 || damping > 1 {
		damping = 1
	}
	theta += ctl.thetaDelta * damping
	phi += ctl.phiDelta * damping
	ctl.thetaDelta *= 1 - damping
	ctl.phiDelta *= 1 - damping

	const eps = 1e-4
	phi = mgl32.Clamp(phi, eps, math32.Pi-eps)

	if scroll != 0 {
		radius *= math32.Pow(0.95, float32(scroll)*ctl.ZoomSpeed)
	}
	if ctl.MaxDistance > 0 {
		radius = mgl32.Clamp(radius, ctl.MinDistance, ctl.MaxDistance)
	}

	sinPhi := math32.Sin(phi)
	return target.Add(mgl32.Vec3{
		radius * sinPhi * math32.Sin(theta),
		radius * math32.Cos(phi),
		radius * sinPhi * math32.Cos(theta),
	})
}
