package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/pristine-go/common"
	"github.com/Carmen-Shannon/pristine-go/engine/renderer/buffer"
	"github.com/Carmen-Shannon/pristine-go/engine/renderer/instance"
	"github.com/Carmen-Shannon/pristine-go/engine/renderer/material"
	"github.com/Carmen-Shannon/pristine-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/pristine-go/engine/renderer/shader"
)

// graphicsFactory is the implementation of the GraphicsFactory interface.
type graphicsFactory struct {
	id uint64
	r  *renderer
}

// GraphicsFactory creates the graphics objects a Renderer can draw. Every object it creates carries the factory's
// id in its Handle, and objects from another factory are rejected with ErrFactoryMismatch.
//
// Shaders, pipelines, textures and materials are handed to the backend on creation, so the renderer must be
// initialized first. Buffers only need the backend's device seam.
type GraphicsFactory interface {
	buffer.Allocator

	// ID returns the identity stamped into the Handle of every object this factory creates.
	//
	// Returns:
	//   - uint64: the factory id
	ID() uint64

	// CreateShader creates and compiles a shader.
	//
	// Parameters:
	//   - options: the shader description
	//
	// Returns:
	//   - shader.Shader: the compiled shader
	//   - error: ErrNotInitialized, a shader error, or a compilation error
	CreateShader(options shader.Options) (shader.Shader, error)

	// CreatePipeline creates a pipeline and registers it with the backend.
	//
	// Parameters:
	//   - options: the shaders and vertex contract
	//   - opts: a variadic list of pipeline.PipelineBuilderOption functions
	//
	// Returns:
	//   - pipeline.Pipeline: the registered pipeline
	//   - error: ErrNotInitialized, ErrFactoryMismatch, a pipeline error, or a backend error
	CreatePipeline(options pipeline.Options, opts ...pipeline.PipelineBuilderOption) (pipeline.Pipeline, error)

	// CreateTexture creates a texture and uploads it.
	//
	// Parameters:
	//   - options: the texture description
	//
	// Returns:
	//   - material.Texture: the uploaded texture
	//   - error: ErrNotInitialized, a texture error, or a backend error
	CreateTexture(options material.TextureOptions) (material.Texture, error)

	// CreateMaterial creates a material and its backend binding.
	//
	// Parameters:
	//   - options: the pipeline, textures and uniforms
	//
	// Returns:
	//   - material.Material: the material
	//   - error: ErrNotInitialized, ErrFactoryMismatch, material.ErrUniformsUnsupported, or a backend error
	CreateMaterial(options material.Options) (material.Material, error)

	// CreateInstanceManager creates an instance manager whose buffer is capped by the backend's storage binding
	// limit and whose growth invalidates the renderer's instance bindings.
	//
	// Parameters:
	//   - options: the model, pipeline and initial records
	//
	// Returns:
	//   - instance.Manager: the manager
	//   - error: ErrFactoryMismatch, or an instance error
	CreateInstanceManager(options instance.Options) (instance.Manager, error)
}

var _ GraphicsFactory = &graphicsFactory{}

func (f *graphicsFactory) ID() uint64 {
	return f.id
}

// handle returns a new Handle stamped with this factory's id.
func (f *graphicsFactory) handle() common.Handle {
	return common.Handle{ID: common.NextID(), Factory: f.id}
}

// owns returns ErrFactoryMismatch unless h was stamped by this factory.
func (f *graphicsFactory) owns(h common.Handle, kind string) error {
	if h.Factory == f.id {
		return nil
	}
	return fmt.Errorf("%w: %s %d belongs to factory %d, not %d. Ensure all graphics objects are created using the same GraphicsFactory instance",
		ErrFactoryMismatch, kind, h.ID, h.Factory, f.id)
}

func (f *graphicsFactory) initialized() error {
	if f.r.state == StateUninitialized {
		return ErrNotInitialized
	}
	return nil
}

func (f *graphicsFactory) CreateBuffer(options buffer.Options) (buffer.Buffer, error) {
	return buffer.NewBuffer(f.handle(), f.r.backend, options, buffer.WithDebug(f.r.debug))
}

func (f *graphicsFactory) CreateShader(options shader.Options) (shader.Shader, error) {
	if err := f.initialized(); err != nil {
		return nil, err
	}
	s, err := shader.NewShader(f.handle(), options)
	if err != nil {
		return nil, err
	}
	if err := f.r.backend.CompileShader(s); err != nil {
		return nil, fmt.Errorf("renderer: failed to compile %s shader: %w", s.Type(), err)
	}
	return s, nil
}

func (f *graphicsFactory) CreatePipeline(options pipeline.Options, opts ...pipeline.PipelineBuilderOption) (pipeline.Pipeline, error) {
	if err := f.initialized(); err != nil {
		return nil, err
	}
	for _, s := range options.Shaders {
		if s == nil {
			continue
		}
		if err := f.owns(s.Handle(), "shader"); err != nil {
			return nil, err
		}
	}
	p, err := pipeline.NewPipeline(f.handle(), options, opts...)
	if err != nil {
		return nil, err
	}
	if err := f.r.backend.RegisterRenderPipeline(p); err != nil {
		return nil, fmt.Errorf("renderer: failed to register pipeline %q: %w", p.Label(), err)
	}
	return p, nil
}

func (f *graphicsFactory) CreateTexture(options material.TextureOptions) (material.Texture, error) {
	if err := f.initialized(); err != nil {
		return nil, err
	}
	t, err := material.NewTexture(f.handle(), options)
	if err != nil {
		return nil, err
	}
	if err := f.r.backend.InitTexture(t); err != nil {
		return nil, fmt.Errorf("renderer: failed to upload texture %q: %w", t.Label(), err)
	}
	return t, nil
}

func (f *graphicsFactory) CreateMaterial(options material.Options) (material.Material, error) {
	if err := f.initialized(); err != nil {
		return nil, err
	}
	if options.Pipeline != nil {
		if err := f.owns(options.Pipeline.Handle(), "pipeline"); err != nil {
			return nil, err
		}
	}
	for _, t := range options.Textures {
		if t == nil {
			continue
		}
		if err := f.owns(t.Handle(), "texture"); err != nil {
			return nil, err
		}
	}
	m, err := material.NewMaterial(f.handle(), options)
	if err != nil {
		return nil, err
	}
	if err := f.r.backend.InitMaterial(m); err != nil {
		return nil, fmt.Errorf("renderer: failed to initialize material: %w", err)
	}
	return m, nil
}

func (f *graphicsFactory) CreateInstanceManager(options instance.Options) (instance.Manager, error) {
	if options.Pipeline != nil {
		if err := f.owns(options.Pipeline.Handle(), "pipeline"); err != nil {
			return nil, err
		}
	}
	if options.Model != nil {
		if err := f.owns(options.Model.Material().Handle(), "material"); err != nil {
			return nil, err
		}
	}
	return instance.NewManager(f, options,
		instance.WithMaxBufferSize(f.r.backend.MaxInstanceBufferSize()),
		instance.WithInvalidator(f.r.instanceBindings),
	)
}
