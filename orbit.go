package lightlab

import (
	"time"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const twoPi = 2 * math32.Pi

// OrbitDirection is the sign applied to the angular speed.
type OrbitDirection int

const (
	Clockwise        OrbitDirection = 1
	CounterClockwise OrbitDirection = -1
)

func (d OrbitDirection) sign() float32 {
	if d < 0 {
		return -1
	}
	return 1
}

func (d OrbitDirection) String() string {
	if d < 0 {
		return "counter-clockwise"
	}
	return "clockwise"
}

// OrbitComponent moves an entity on a horizontal circle around Center.
// Angle is kept in [0, 2π).
type OrbitComponent struct {
	Enabled    bool
	Speed      float32 // radians per second
	Direction  OrbitDirection
	Radius     float32
	Height     float32
	Center     mgl32.Vec3
	Angle      float32
	LastUpdate time.Time
}

// NormalizeAngle wraps a into [0, 2π).
func NormalizeAngle(a float32) float32 {
	a = math32.Mod(a, twoPi)
	if a < 0 {
		a += twoPi
	}
	if a >= twoPi {
		a = 0
	}
	return a
}

// AngleFromPosition returns the orbit angle that places the light at p.
func AngleFromPosition(p, center mgl32.Vec3) float32 {
	return NormalizeAngle(math32.Atan2(p.Z()-center.Z(), p.X()-center.X()))
}

// SetEnabled starts or stops the animation. Starting resets the clock so the
// first advance does not include the time spent paused.
func (o *OrbitComponent) SetEnabled(enabled bool, now time.Time) {
	o.Enabled = enabled
	if enabled {
		o.LastUpdate = now
	}
}

// Advance accumulates Speed·Δt onto the angle. It reports whether the angle moved.
func (o *OrbitComponent) Advance(now time.Time) bool {
	if !o.Enabled {
		return false
	}
	dt := now.Sub(o.LastUpdate).Seconds()
	if dt < 0 {
		dt = 0
	}
	o.Angle = NormalizeAngle(o.Angle + o.Direction.sign()*o.Speed*float32(dt))
	o.LastUpdate = now
	return true
}

// Position is the point on the circle for the current angle, at Height.
func (o OrbitComponent) Position() mgl32.Vec3 {
	return mgl32.Vec3{
		o.Center.X() + o.Radius*math32.Cos(o.Angle),
		o.Height,
		o.Center.Z() + o.Radius*math32.Sin(o.Angle),
	}
}

// AimPoint is where the light looks while orbiting: the center projected to the ground.
func (o OrbitComponent) AimPoint() mgl32.Vec3 {
	return mgl32.Vec3{o.Center.X(), 0, o.Center.Z()}
}

func cos32(a float32) float32 { return math32.Cos(a) }

func abs32(a float32) float32 { return math32.Abs(a) }
