package lightlab

const (
	KeyA int = iota
	KeyD
	KeyL
	KeyQ
	KeyR
	KeyS
	KeyW
	KeySpace
	KeyEnter
	KeyEscape
	KeyTab
	KeyRight
	KeyLeft
	KeyDown
	KeyUp
	KeyShift
	KeyControl
	MouseButtonLeft
	MouseButtonRight
	MouseButtonMiddle
	keyCount
)

// InputSource fills the Input resource once per frame. The platform package
// provides the GLFW implementation.
type InputSource interface {
	Poll(input *Input)
}

type InputModule struct {
	Source InputSource
}

type Input struct {
	Pressed [keyCount]bool

	JustPressed  [keyCount]bool
	JustReleased [keyCount]bool

	MouseX, MouseY           float64
	MouseDeltaX, MouseDeltaY float64
	ScrollY                  float64

	WindowWidth, WindowHeight int
	CloseRequested            bool

	mouseSeen bool
}

type inputSource struct {
	source InputSource
}

func (mod InputModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Input{}, &inputSource{source: mod.Source})
	app.UseSystem(
		System(inputSystem).
			InStage(PreUpdate).
			RunAlways(),
	)
}

func inputSystem(src *inputSource, input *Input, cmd *Commands) {
	input.BeginFrame()
	if src.source != nil {
		src.source.Poll(input)
	}
	if input.CloseRequested {
		cmd.Quit()
	}
}

// BeginFrame clears per-frame edges and deltas.
func (input *Input) BeginFrame() {
	input.JustPressed = [keyCount]bool{}
	input.JustReleased = [keyCount]bool{}
	input.MouseDeltaX, input.MouseDeltaY = 0, 0
	input.ScrollY = 0
}

// SetKey records the current key state and derives the edge flags.
func (input *Input) SetKey(key int, down bool) {
	if key < 0 || key >= keyCount {
		return
	}
	if down && !input.Pressed[key] {
		input.JustPressed[key] = true
	}
	if !down && input.Pressed[key] {
		input.JustReleased[key] = true
	}
	input.Pressed[key] = down
}

// SetMouse moves the cursor and accumulates the delta since the last frame.
func (input *Input) SetMouse(x, y float64) {
	if !input.mouseSeen {
		input.mouseSeen = true
		input.MouseX, input.MouseY = x, y
	}
	input.MouseDeltaX += x - input.MouseX
	input.MouseDeltaY += y - input.MouseY
	input.MouseX, input.MouseY = x, y
}
