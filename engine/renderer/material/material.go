package material

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/pristine-go/common"
	"github.com/Carmen-Shannon/pristine-go/engine/renderer/pipeline"
)

var (
	// ErrMissingPipeline is returned when a material is created without a pipeline.
	ErrMissingPipeline = errors.New("material: missing pipeline")

	// ErrUniformsUnsupported is returned by backends that cannot bind material uniforms.
	ErrUniformsUnsupported = errors.New("material: uniforms are not supported by this backend")
)

// Uniform is a named block of bytes a material exposes to its shaders.
type Uniform struct {
	Name  string
	Value []byte
}

// Options describes a material to create.
type Options struct {
	Pipeline pipeline.Pipeline
	Textures []Texture
	Uniforms []Uniform
}

// material is the implementation of the Material interface.
type material struct {
	handle   common.Handle
	pipeline pipeline.Pipeline
	textures []Texture
	uniforms map[string]Uniform
	names    []string
	binding  any
}

// Material defines the interface for the per-draw surface resources of a model: the pipeline it was built for, the
// textures sampled by that pipeline's fragment stage, and any named uniforms.
//
// Surface resources are fixed at construction. The backend binding object is mutable so it can be attached after
// construction by the factory that created the material.
type Material interface {
	// Handle returns the identity of this material.
	//
	// Returns:
	//   - common.Handle: the material's handle
	Handle() common.Handle

	// Pipeline retrieves the pipeline this material binds against.
	//
	// Returns:
	//   - pipeline.Pipeline: the pipeline
	Pipeline() pipeline.Pipeline

	// Textures retrieves the material textures in binding order.
	//
	// Returns:
	//   - []Texture: the textures
	Textures() []Texture

	// Uniform retrieves a uniform by name.
	//
	// Parameters:
	//   - name: the uniform name
	//
	// Returns:
	//   - Uniform: the uniform
	//   - bool: true if the uniform exists
	Uniform(name string) (Uniform, bool)

	// Uniforms retrieves all uniforms in the order they were first declared.
	//
	// Returns:
	//   - []Uniform: the uniforms
	Uniforms() []Uniform

	// Binding retrieves the backend binding object for this material, or nil if not yet initialized.
	// Note: The caller is responsible for type asserting the returned value.
	//
	// Returns:
	//   - any: the binding object
	Binding() any

	// SetBinding sets the backend binding object for this material.
	//
	// Parameters:
	//   - binding: the backend binding object
	SetBinding(binding any)
}

var _ Material = &material{}

// NewMaterial creates a new Material. Uniforms are keyed by name; a later uniform replaces an earlier one with the
// same name.
//
// Parameters:
//   - handle: the identity to assign to the material
//   - options: the pipeline, textures and uniforms of the material
//
// Returns:
//   - Material: a new Material instance
//   - error: ErrMissingPipeline if options.Pipeline is nil
func NewMaterial(handle common.Handle, options Options) (Material, error) {
	if options.Pipeline == nil {
		return nil, ErrMissingPipeline
	}
	m := &material{
		handle:   handle,
		pipeline: options.Pipeline,
		textures: slices.Clone(options.Textures),
		uniforms: make(map[string]Uniform, len(options.Uniforms)),
	}
	for _, u := range options.Uniforms {
		if _, ok := m.uniforms[u.Name]; !ok {
			m.names = append(m.names, u.Name)
		}
		m.uniforms[u.Name] = Uniform{Name: u.Name, Value: slices.Clone(u.Value)}
	}
	for i, t := range m.textures {
		if t == nil {
			return nil, fmt.Errorf("material: texture %d is nil", i)
		}
	}
	return m, nil
}

func (m *material) Handle() common.Handle {
	return m.handle
}

func (m *material) Pipeline() pipeline.Pipeline {
	return m.pipeline
}

func (m *material) Textures() []Texture {
	return slices.Clone(m.textures)
}

func (m *material) Uniform(name string) (Uniform, bool) {
	u, ok := m.uniforms[name]
	return u, ok
}

func (m *material) Uniforms() []Uniform {
	out := make([]Uniform, 0, len(m.names))
	for _, n := range m.names {
		out = append(out, m.uniforms[n])
	}
	return out
}

func (m *material) Binding() any {
	return m.binding
}

func (m *material) SetBinding(binding any) {
	m.binding = binding
}
