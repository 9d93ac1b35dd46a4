package renderer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Carmen-Shannon/pristine-go/common"
	"github.com/Carmen-Shannon/pristine-go/engine/model"
	"github.com/Carmen-Shannon/pristine-go/engine/renderer/buffer"
	"github.com/Carmen-Shannon/pristine-go/engine/renderer/instance"
	"github.com/Carmen-Shannon/pristine-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/pristine-go/engine/renderer/resource_cache"
)

var (
	// ErrNotInitialized is returned by operations that need a device before Initialize has succeeded.
	ErrNotInitialized = errors.New("renderer: not initialized")

	// ErrAlreadyInitialized is returned by a second call to Initialize.
	ErrAlreadyInitialized = errors.New("renderer: already initialized")

	// ErrFrameAlreadyBegun is returned by Begin while a frame is open.
	ErrFrameAlreadyBegun = errors.New("renderer: frame already begun")

	// ErrNoActiveFrame is returned by draw calls and End outside of a frame.
	ErrNoActiveFrame = errors.New("renderer: no active frame")

	// ErrNoPipelineBound is returned by draw calls before SetPipeline.
	ErrNoPipelineBound = errors.New("renderer: no pipeline bound")

	// ErrInvalidInstanceCount is returned by RenderModel for a negative instance count.
	ErrInvalidInstanceCount = errors.New("renderer: invalid instance count")

	// ErrContractMismatch is returned in debug mode when a model's vertices do not match the bound pipeline.
	ErrContractMismatch = errors.New("renderer: vertex contract mismatch")

	// ErrFactoryMismatch is returned when an object created by one GraphicsFactory is used with another.
	ErrFactoryMismatch = errors.New("renderer: graphics object created by a different factory")

	// ErrNoCompatibleDevice is returned by Initialize when no adapter or device can drive the surface.
	ErrNoCompatibleDevice = errors.New("renderer: no compatible device")
)

// State is the frame state of a Renderer.
type State int

const (
	// StateUninitialized is the state before Initialize succeeds.
	StateUninitialized State = iota
	// StateInitialized is the state after Initialize and before the first Begin.
	StateInitialized
	// StateFrameBegun is the state between Begin and End.
	StateFrameBegun
	// StateEnded is the state after End.
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitialized:
		return "initialized"
	case StateFrameBegun:
		return "frame begun"
	case StateEnded:
		return "ended"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// UniformScalars is the number of float32 values in the per-pipeline uniform block: model, view and projection
// matrices, elapsed seconds, and three floats of padding.
const UniformScalars = 52

// uniformTimeIndex is the float index of the elapsed seconds in the uniform block.
const uniformTimeIndex = 48

// pipelineUniforms is the uniform buffer and group 0 binding owned for one pipeline.
type pipelineUniforms struct {
	buffer  buffer.Buffer
	binding any
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	backend RendererBackend
	config  BackendConfig
	factory *graphicsFactory

	state      State
	clearColor common.Color
	debug      bool
	clock      func() time.Time
	start      time.Time

	pipeline         pipeline.Pipeline
	uniforms         map[uint64]*pipelineUniforms
	instanceBindings resource_cache.Cache[any]
	uniformScratch   [UniformScalars]float32
}

// Renderer drives a single render pass per frame over one surface.
//
// A frame is opened with Begin and closed with End. Between the two, RenderModel and RenderInstances encode draws
// with the pipeline most recently passed to SetPipeline. Every pipeline gets its own uniform block at group 0;
// materials bind at group 1, and instance record buffers bind at group 2.
//
// A Renderer is not safe for concurrent use. Drive it, and the graphics objects its factory creates, from one
// goroutine.
type Renderer interface {
	// Initialize acquires a device for the surface and configures it to the surface size. It is attempted once.
	//
	// Parameters:
	//   - ctx: cancels device acquisition
	//   - surface: the surface to render to
	//
	// Returns:
	//   - error: ErrAlreadyInitialized, or an error wrapping ErrNoCompatibleDevice
	Initialize(ctx context.Context, surface Surface) error

	// Begin opens a frame. The render pass is cleared to the clear color.
	//
	// Returns:
	//   - error: ErrNotInitialized, ErrFrameAlreadyBegun, or a backend error
	Begin() error

	// SetPipeline binds the pipeline used by subsequent draws. It may be called outside a frame. The pipeline's
	// uniform block is created the first time it is bound. A nil pipeline unbinds, and draws then fail with
	// ErrNoPipelineBound.
	//
	// Parameters:
	//   - p: the pipeline to bind, or nil
	//
	// Returns:
	//   - error: ErrNotInitialized, ErrFactoryMismatch, or a buffer error
	SetPipeline(p pipeline.Pipeline) error

	// Pipeline returns the bound pipeline, or nil.
	//
	// Returns:
	//   - pipeline.Pipeline: the bound pipeline
	Pipeline() pipeline.Pipeline

	// RenderModel draws m instanceCount times with the bound pipeline. A zero count is validated like any other
	// draw but encodes nothing.
	//
	// Parameters:
	//   - m: the model to draw
	//   - instanceCount: the number of instances to draw
	//
	// Returns:
	//   - error: ErrNoActiveFrame, ErrNoPipelineBound, ErrContractMismatch in debug mode, ErrFactoryMismatch,
	//     ErrInvalidInstanceCount, or a buffer error
	RenderModel(m model.Model, instanceCount int) error

	// RenderInstances draws the manager's model once per record, binding the manager's record buffer at group 2.
	// A manager without records draws nothing. A nil manager is treated as a missing model.
	//
	// Parameters:
	//   - im: the instance manager to draw
	//
	// Returns:
	//   - error: the errors of RenderModel, instance.ErrMissingModel, or a backend binding error
	RenderInstances(im instance.Manager) error

	// End closes the frame, submits it, and presents the surface.
	//
	// Returns:
	//   - error: ErrNoActiveFrame, or a backend error
	End() error

	// Resize reconfigures the surface to a new size.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	//
	// Returns:
	//   - error: ErrNotInitialized, or a backend error
	Resize(width, height int) error

	// Factory returns the GraphicsFactory bound to this renderer.
	//
	// Returns:
	//   - GraphicsFactory: the factory
	Factory() GraphicsFactory

	// State returns the current frame state.
	//
	// Returns:
	//   - State: the state
	State() State

	// ClearColor returns the color frames are cleared to.
	//
	// Returns:
	//   - common.Color: the clear color
	ClearColor() common.Color

	// Debug reports whether debug validation is enabled.
	//
	// Returns:
	//   - bool: true in debug mode
	Debug() bool

	// ReleasePipeline frees the uniform block and every cached binding of p. Unbinds p if it is bound.
	//
	// Parameters:
	//   - p: the pipeline to release
	ReleasePipeline(p pipeline.Pipeline)

	// Release frees every resource held by the renderer and its backend.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer. Without WithBackend the WebGPU backend is used.
//
// Parameters:
//   - opts: a variadic list of RendererBuilderOption functions
//
// Returns:
//   - Renderer: the new, uninitialized renderer
func NewRenderer(opts ...RendererBuilderOption) Renderer {
	r := &renderer{
		config: BackendConfig{
			SampleCount: MSAA4x,
			PresentMode: PresentModeVSync,
		},
		clearColor: common.ColorBlack,
		clock:      time.Now,
		uniforms:   make(map[uint64]*pipelineUniforms),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.backend == nil {
		r.backend = newWGPURendererBackend()
	}
	r.instanceBindings = resource_cache.New(resource_cache.WithReleaseFunc(func(_ resource_cache.Key, binding any) {
		r.backend.ReleaseBinding(binding)
	}))
	r.factory = &graphicsFactory{id: common.NextID(), r: r}
	return r
}

func (r *renderer) Initialize(ctx context.Context, surface Surface) error {
	if r.state != StateUninitialized {
		return ErrAlreadyInitialized
	}
	if err := r.backend.Initialize(ctx, surface, r.config); err != nil {
		return err
	}
	r.backend.SetPresentMode(r.config.PresentMode)
	width, height := surface.Size()
	if err := r.backend.ConfigureSurface(width, height); err != nil {
		return fmt.Errorf("renderer: failed to configure surface: %w", err)
	}
	r.start = r.clock()
	r.state = StateInitialized
	return nil
}

func (r *renderer) Begin() error {
	switch r.state {
	case StateUninitialized:
		return ErrNotInitialized
	case StateFrameBegun:
		return ErrFrameAlreadyBegun
	}
	if err := r.backend.BeginFrame(r.clearColor); err != nil {
		return fmt.Errorf("renderer: failed to begin frame: %w", err)
	}
	r.state = StateFrameBegun
	return nil
}

func (r *renderer) SetPipeline(p pipeline.Pipeline) error {
	if r.state == StateUninitialized {
		return ErrNotInitialized
	}
	if p == nil {
		r.pipeline = nil
		return nil
	}
	if err := r.factory.owns(p.Handle(), "pipeline"); err != nil {
		return err
	}
	if _, ok := r.uniforms[p.Handle().ID]; !ok {
		u, err := r.createUniforms(p)
		if err != nil {
			return err
		}
		r.uniforms[p.Handle().ID] = u
	}
	r.pipeline = p
	return nil
}

func (r *renderer) createUniforms(p pipeline.Pipeline) (*pipelineUniforms, error) {
	buf, err := r.factory.CreateBuffer(buffer.Options{
		Label:  p.Label() + " uniforms",
		Usages: []buffer.Usage{buffer.UsageUniform, buffer.UsageCopyDestination},
		Size:   UniformScalars * 4,
	})
	if err != nil {
		return nil, fmt.Errorf("renderer: uniform buffer: %w", err)
	}
	binding, err := r.backend.CreateBinding(p, BindGroupBasic, buf)
	if err != nil {
		buf.Destroy()
		return nil, fmt.Errorf("renderer: uniform binding: %w", err)
	}
	return &pipelineUniforms{buffer: buf, binding: binding}, nil
}

func (r *renderer) Pipeline() pipeline.Pipeline {
	return r.pipeline
}

// validate checks that m can be drawn right now with the bound pipeline.
func (r *renderer) validate(m model.Model) error {
	if r.state != StateFrameBegun {
		return ErrNoActiveFrame
	}
	if r.pipeline == nil {
		return ErrNoPipelineBound
	}
	if m == nil {
		return instance.ErrMissingModel
	}
	if r.debug && !m.Mesh().AdheresTo(r.pipeline.Contract()) {
		return fmt.Errorf("%w: model vertices do not adhere to pipeline %q", ErrContractMismatch, r.pipeline.Label())
	}
	return r.factory.owns(m.Material().Handle(), "material")
}

func (r *renderer) RenderModel(m model.Model, instanceCount int) error {
	if err := r.validate(m); err != nil {
		return err
	}
	if instanceCount < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidInstanceCount, instanceCount)
	}
	if instanceCount == 0 {
		return nil
	}
	return r.draw(m, instanceCount, nil)
}

func (r *renderer) RenderInstances(im instance.Manager) error {
	if im == nil {
		return r.validate(nil)
	}
	if im.Len() == 0 {
		return nil
	}
	if err := r.validate(im.Model()); err != nil {
		return err
	}
	key := resource_cache.Key{Pipeline: r.pipeline.Handle().ID, Buffer: im.Buffer().Handle().ID}
	binding, err := r.instanceBindings.GetOrCreate(key, func() (any, error) {
		return r.backend.CreateBinding(r.pipeline, BindGroupInstanced, im.Buffer())
	})
	if err != nil {
		return fmt.Errorf("renderer: instance binding: %w", err)
	}
	return r.draw(im.Model(), im.Len(), binding)
}

// draw writes the uniform block, binds every group, and encodes the draw. instanceBinding is nil for draws
// without an instance buffer.
func (r *renderer) draw(m model.Model, instanceCount int, instanceBinding any) error {
	p := r.pipeline
	u := r.uniforms[p.Handle().ID]

	width, height := r.backend.SurfaceSize()
	projection := common.Orthographic(0, float32(width), 0, float32(height), -1, 1)
	data := r.uniformScratch[:]
	clear(data)
	copy(data[0:16], m.Transform().Transpose().Data())
	copy(data[16:32], common.Identity4().Data())
	copy(data[32:48], projection.Transpose().Data())
	data[uniformTimeIndex] = float32(r.clock().Sub(r.start).Seconds())
	if err := buffer.WriteAllElements(u.buffer, data); err != nil {
		return fmt.Errorf("renderer: uniform write: %w", err)
	}

	r.backend.SetPipeline(p)
	r.backend.SetBindGroup(BindGroupBasic, u.binding)
	if b := m.Material().Binding(); b != nil {
		r.backend.SetBindGroup(BindGroupMaterial, b)
	}
	if instanceBinding != nil {
		r.backend.SetBindGroup(BindGroupInstanced, instanceBinding)
	}
	r.backend.SetVertexBuffer(m.VertexBuffer())

	mesh := m.Mesh()
	if mesh.Indexed() {
		r.backend.SetIndexBuffer(m.IndexBuffer())
		r.backend.DrawIndexed(uint32(mesh.IndexCount()), uint32(instanceCount))
	} else {
		r.backend.Draw(uint32(mesh.VertexCount()), uint32(instanceCount))
	}
	return nil
}

func (r *renderer) End() error {
	if r.state != StateFrameBegun {
		return ErrNoActiveFrame
	}
	r.state = StateEnded
	if err := r.backend.EndFrame(); err != nil {
		return fmt.Errorf("renderer: failed to end frame: %w", err)
	}
	return nil
}

func (r *renderer) Resize(width, height int) error {
	if r.state == StateUninitialized {
		return ErrNotInitialized
	}
	return r.backend.ConfigureSurface(width, height)
}

func (r *renderer) Factory() GraphicsFactory {
	return r.factory
}

func (r *renderer) State() State {
	return r.state
}

func (r *renderer) ClearColor() common.Color {
	return r.clearColor
}

func (r *renderer) Debug() bool {
	return r.debug
}

func (r *renderer) ReleasePipeline(p pipeline.Pipeline) {
	id := p.Handle().ID
	r.instanceBindings.EvictPipeline(id)
	if u, ok := r.uniforms[id]; ok {
		r.backend.ReleaseBinding(u.binding)
		u.buffer.Destroy()
		delete(r.uniforms, id)
	}
	if r.pipeline != nil && r.pipeline.Handle().ID == id {
		r.pipeline = nil
	}
}

func (r *renderer) Release() {
	r.instanceBindings.Clear()
	for id, u := range r.uniforms {
		r.backend.ReleaseBinding(u.binding)
		u.buffer.Destroy()
		delete(r.uniforms, id)
	}
	r.pipeline = nil
	r.backend.Release()
	r.state = StateUninitialized
}
