package lightlab

import (
	"time"
)

// Clock supplies wall-clock time to the frame loop. Tests substitute a manual clock.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// ManualClock only moves when told to.
type ManualClock struct {
	T time.Time
}

func (c *ManualClock) Now() time.Time { return c.T }

func (c *ManualClock) Advance(d time.Duration) {
	c.T = c.T.Add(d)
}

type Time struct {
	Time  time.Time
	Dt    time.Duration
	clock Clock
}

// Now reads the clock directly, independent of the frame stamp.
func (t *Time) Now() time.Time {
	return t.clock.Now()
}

// DtSeconds is the frame delta in seconds.
func (t *Time) DtSeconds() float32 {
	return float32(t.Dt.Seconds())
}

type TimeModule struct {
	Clock Clock
}

func (mod TimeModule) Install(app *App, cmd *Commands) {
	clock := mod.Clock
	if clock == nil {
		clock = systemClock{}
	}
	cmd.AddResources(&Time{
		Time:  clock.Now(),
		Dt:    0,
		clock: clock,
	})
	app.UseSystem(System(timeSystem).InStage(Prelude).RunAlways())
}

func timeSystem(timeResource *Time) {
	now := timeResource.clock.Now()

	timeResource.Dt = now.Sub(timeResource.Time)
	timeResource.Time = now
}
