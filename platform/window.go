// Package platform binds the sandbox to a desktop window: GLFW for the
// window and input, wgpu for rendering.
package platform

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// Window is the single GLFW window the renderer presents into.
// GLFW requires every call on the main thread, so NewWindow locks it.
type Window struct {
	glfw   *glfw.Window
	width  int
	height int
	title  string
}

func NewWindow(width, height int, title string) (*Window, error) {
	if width <= 0 {
		width = 1280
	}
	if height <= 0 {
		height = 720
	}
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw init: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // wgpu owns the surface
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create window: %w", err)
	}
	return &Window{glfw: win, width: width, height: height, title: title}, nil
}

// FramebufferSize is the drawable size in pixels.
func (w *Window) FramebufferSize() (int, int) {
	return w.glfw.GetFramebufferSize()
}

func (w *Window) ShouldClose() bool {
	return w.glfw.ShouldClose()
}

func (w *Window) Destroy() {
	w.glfw.Destroy()
	glfw.Terminate()
}
