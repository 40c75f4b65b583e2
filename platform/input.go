package platform

import (
	"github.com/gekko3d/lightlab"
	"github.com/go-gl/glfw/v3.3/glfw"
)

var keyToGlfw = map[int]glfw.Key{
	lightlab.KeyA:      glfw.KeyA,
	lightlab.KeyD:      glfw.KeyD,
	lightlab.KeyL:      glfw.KeyL,
	lightlab.KeyQ:      glfw.KeyQ,
	lightlab.KeyR:      glfw.KeyR,
	lightlab.KeyS:      glfw.KeyS,
	lightlab.KeyW:      glfw.KeyW,
	lightlab.KeySpace:  glfw.KeySpace,
	lightlab.KeyEnter:  glfw.KeyEnter,
	lightlab.KeyEscape: glfw.KeyEscape,
	lightlab.KeyTab:    glfw.KeyTab,
	lightlab.KeyRight:  glfw.KeyRight,
	lightlab.KeyLeft:   glfw.KeyLeft,
	lightlab.KeyDown:   glfw.KeyDown,
	lightlab.KeyUp:     glfw.KeyUp,
}

var mouseToGlfw = map[int]glfw.MouseButton{
	lightlab.MouseButtonLeft:   glfw.MouseButtonLeft,
	lightlab.MouseButtonRight:  glfw.MouseButtonRight,
	lightlab.MouseButtonMiddle: glfw.MouseButtonMiddle,
}

// GLFWInput polls the window once per frame into lightlab.Input.
type GLFWInput struct {
	window *Window
	scroll float64
}

func NewGLFWInput(w *Window) *GLFWInput {
	in := &GLFWInput{window: w}
	w.glfw.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		in.scroll += yoff
	})
	return in
}

func (in *GLFWInput) Poll(input *lightlab.Input) {
	glfw.PollEvents()
	win := in.window.glfw

	for key, glfwKey := range keyToGlfw {
		input.SetKey(key, win.GetKey(glfwKey) == glfw.Press)
	}
	input.SetKey(lightlab.KeyShift, win.GetKey(glfw.KeyLeftShift) == glfw.Press || win.GetKey(glfw.KeyRightShift) == glfw.Press)
	input.SetKey(lightlab.KeyControl, win.GetKey(glfw.KeyLeftControl) == glfw.Press || win.GetKey(glfw.KeyRightControl) == glfw.Press)
	for btn, glfwBtn := range mouseToGlfw {
		input.SetKey(btn, win.GetMouseButton(glfwBtn) == glfw.Press)
	}

	input.SetMouse(win.GetCursorPos())
	input.ScrollY, in.scroll = in.scroll, 0
	input.WindowWidth, input.WindowHeight = win.GetSize()
	input.CloseRequested = win.ShouldClose()
}
