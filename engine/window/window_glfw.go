package window

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

var errWindowClosed = errors.New("window: not open")

// glfwWindow is the GLFW handle behind an engineWindow.
type glfwWindow struct {
	handle *glfw.Window
	open   bool
}

// newPlatformWindow opens a GLFW window without a client API and hooks its input and framebuffer callbacks
// into w. GLFW must be driven from the thread that called Init, so the calling goroutine is locked to its thread.
//
// See https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw
func newPlatformWindow(w *engineWindow) error {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("window: glfw init: %w", err)
	}

	// The surface is driven by WebGPU, not an OpenGL context.
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	handle, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("window: create %q: %w", w.title, err)
	}
	gw := &glfwWindow{handle: handle, open: true}
	w.internalWindow = gw

	handle.SetSizeLimits(w.minWidth, w.minHeight, w.maxWidth, w.maxHeight)

	handle.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		if key == glfw.KeyEscape {
			gw.open = false
			handle.SetShouldClose(true)
			return
		}
		if w.onKeyDown != nil {
			w.onKeyDown(uint32(key))
		}
	})

	// Framebuffer pixels, not screen coordinates; they differ on high-DPI displays.
	handle.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.width, w.height = width, height
		if w.onResize != nil {
			w.onResize(width, height)
		}
	})
	w.width, w.height = handle.GetFramebufferSize()

	return nil
}

func platformGetSurfaceDescriptor(w *engineWindow) *wgpu.SurfaceDescriptor {
	gw, ok := w.internalWindow.(*glfwWindow)
	if !ok {
		return nil
	}
	return wgpuglfw.GetSurfaceDescriptor(gw.handle)
}

// platformIsRunningCheck reports false once the window was closed, Escape was pressed, or GLFW flagged it
// for closing.
func platformIsRunningCheck(w *engineWindow) bool {
	gw, ok := w.internalWindow.(*glfwWindow)
	if !ok {
		return false
	}
	return gw.open && !gw.handle.ShouldClose()
}

// platformCloseWindow destroys the window and terminates GLFW. Closing twice returns an error.
func platformCloseWindow(w *engineWindow) error {
	gw, ok := w.internalWindow.(*glfwWindow)
	if !ok {
		return errWindowClosed
	}
	gw.open = false
	gw.handle.Destroy()
	glfw.Terminate()
	w.internalWindow = nil
	return nil
}

func platformProcessMessages(w *engineWindow) bool {
	glfw.PollEvents()
	return platformIsRunningCheck(w)
}
