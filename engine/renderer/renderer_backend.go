package renderer

import (
	"context"

	"github.com/Carmen-Shannon/pristine-go/common"
	"github.com/Carmen-Shannon/pristine-go/engine/renderer/buffer"
	"github.com/Carmen-Shannon/pristine-go/engine/renderer/material"
	"github.com/Carmen-Shannon/pristine-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/pristine-go/engine/renderer/shader"
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// Only specific power-of-two values are valid for GPU hardware. WebGPU guarantees support for
// 1 (off) and 4; higher values (8, 16) are adapter-dependent and may not be available.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4x multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4

	// MSAA8x enables 8x multisample anti-aliasing. Adapter-dependent; not all hardware supports this.
	MSAA8x MSAASampleCount = 8

	// MSAA16x enables 16x multisample anti-aliasing. Adapter-dependent; not all hardware supports this.
	MSAA16x MSAASampleCount = 16
)

// Bind group indices shared by every pipeline drawn through the Renderer.
const (
	// BindGroupBasic holds the per-pipeline uniform block: model, view and projection matrices plus elapsed time.
	BindGroupBasic = 0
	// BindGroupMaterial holds the material sampler and textures.
	BindGroupMaterial = 1
	// BindGroupInstanced holds the instance record storage buffer.
	BindGroupInstanced = 2
)

// Surface is the drawable a Renderer presents to, usually a window.
type Surface interface {
	// Size returns the drawable size in pixels.
	Size() (width, height int)
}

// RendererBackend is the seam between the backend-neutral Renderer and a GPU API. Native objects cross it as
// opaque values that only the backend that produced them may interpret.
//
// Every method other than Initialize requires a successful Initialize first. Drawing methods require an open frame.
type RendererBackend interface {
	buffer.Device

	// Initialize acquires an adapter and device compatible with the surface. It is attempted once.
	//
	// Parameters:
	//   - ctx: cancels device acquisition
	//   - surface: the surface to render to
	//   - config: the backend configuration collected from builder options
	//
	// Returns:
	//   - error: an error wrapping ErrNoCompatibleDevice if no adapter or device is available
	Initialize(ctx context.Context, surface Surface, config BackendConfig) error

	// ConfigureSurface is a wrapper for boilerplate logic required when calling ConfigureSurface on a surface.
	// This is required when the surface size changes, such as when the window is resized.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	//
	// Returns:
	//   - error: an error if the size-dependent render targets could not be created
	ConfigureSurface(width, height int) error

	// SurfaceSize returns the size the surface was last configured with.
	//
	// Returns:
	//   - int: the width in pixels
	//   - int: the height in pixels
	SurfaceSize() (int, int)

	// SetPresentMode sets the surface present mode. It takes effect on the next ConfigureSurface.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// MaxInstanceBufferSize returns the largest buffer in bytes that can be bound as instance storage, or 0 for
	// no limit.
	//
	// Returns:
	//   - uint64: the size limit in bytes
	MaxInstanceBufferSize() uint64

	// CompileShader compiles the shader source into a backend module and stores it on the shader.
	//
	// Parameters:
	//   - s: the shader to compile
	//
	// Returns:
	//   - error: a compilation error
	CompileShader(s shader.Shader) error

	// RegisterRenderPipeline creates the backend render pipeline for p and stores it on p.
	//
	// Parameters:
	//   - p: the pipeline whose shaders have already been compiled
	//
	// Returns:
	//   - error: an error if the pipeline could not be created
	RegisterRenderPipeline(p pipeline.Pipeline) error

	// InitTexture creates and uploads the backend texture for t and stores it on t.
	//
	// Parameters:
	//   - t: the texture to upload
	//
	// Returns:
	//   - error: an error if the texture could not be created
	InitTexture(t material.Texture) error

	// InitMaterial creates the material binding object against its pipeline's material group and stores it on m.
	//
	// Parameters:
	//   - m: the material whose textures have already been initialized
	//
	// Returns:
	//   - error: material.ErrUniformsUnsupported, or an error if the binding could not be created
	InitMaterial(m material.Material) error

	// CreateBinding creates a binding object linking b to binding 0 of the given group of p.
	//
	// Parameters:
	//   - p: the pipeline whose group layout the binding must match
	//   - group: the bind group index
	//   - b: the buffer to bind
	//
	// Returns:
	//   - any: the binding object
	//   - error: an error if the binding could not be created
	CreateBinding(p pipeline.Pipeline, group int, b buffer.Buffer) (any, error)

	// ReleaseBinding releases a binding object returned by CreateBinding.
	//
	// Parameters:
	//   - binding: the binding object
	ReleaseBinding(binding any)

	// BeginFrame acquires the next surface texture, creates a command encoder, and begins the main render pass
	// cleared to the given color.
	//
	// Parameters:
	//   - clear: the clear color
	//
	// Returns:
	//   - error: an error if the surface texture could not be acquired
	BeginFrame(clear common.Color) error

	// SetPipeline makes p the active pipeline of the open render pass.
	SetPipeline(p pipeline.Pipeline)

	// SetBindGroup binds a binding object at the given group index of the open render pass.
	SetBindGroup(group int, binding any)

	// SetVertexBuffer binds b as vertex buffer slot 0.
	SetVertexBuffer(b buffer.Buffer)

	// SetIndexBuffer binds b as a uint16 index buffer.
	SetIndexBuffer(b buffer.Buffer)

	// Draw encodes a non-indexed instanced draw.
	Draw(vertexCount, instanceCount uint32)

	// DrawIndexed encodes an indexed instanced draw.
	DrawIndexed(indexCount, instanceCount uint32)

	// EndFrame ends the render pass, submits the command buffer and presents the surface.
	//
	// Returns:
	//   - error: an error if the command buffer could not be finished
	EndFrame() error

	// Release frees every backend object still held by the backend.
	Release()
}

// BackendConfig is the device configuration a backend is initialized with.
type BackendConfig struct {
	ForceFallbackAdapter bool
	SampleCount          MSAASampleCount
	PresentMode          PresentMode
}
