package shader

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/pristine-go/common"
)

// ErrMissingEntryPoint is returned when a shader is created without an entry point.
var ErrMissingEntryPoint = errors.New("shader: missing entry point")

// ShaderType identifies the pipeline stage a shader runs in.
type ShaderType int

const (
	// ShaderTypeVertex is the vertex shader type, used for vertex processing in render pipelines.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is the fragment shader type, used for fragment processing in pair with a vertex shader.
	ShaderTypeFragment

	// ShaderTypeCompute indicates a shader containing a compute entry point.
	ShaderTypeCompute
)

func (t ShaderType) String() string {
	switch t {
	case ShaderTypeVertex:
		return "vertex"
	case ShaderTypeFragment:
		return "fragment"
	case ShaderTypeCompute:
		return "compute"
	default:
		return fmt.Sprintf("ShaderType(%d)", int(t))
	}
}

// Options describes a shader to create. Source is handed to the backend verbatim.
type Options struct {
	Type       ShaderType
	EntryPoint string
	Source     string
}

// shader is the implementation of the Shader interface.
type shader struct {
	handle     common.Handle
	shaderType ShaderType
	entryPoint string
	source     string
	module     any
}

// Shader defines the interface for one stage of a pipeline: its stage type, entry point and source, plus the
// backend module compiled from it.
type Shader interface {
	// Handle returns the identity of this shader.
	//
	// Returns:
	//   - common.Handle: the shader's handle
	Handle() common.Handle

	// Type returns the pipeline stage of this shader.
	//
	// Returns:
	//   - ShaderType: the shader stage
	Type() ShaderType

	// EntryPoint returns the entry point name for this shader.
	//
	// Returns:
	//   - string: the entry point name (e.g. "vs_main")
	EntryPoint() string

	// Source retrieves the shader source code.
	//
	// Returns:
	//   - string: the source code of the shader
	Source() string

	// Module returns the backend shader module, or nil before compilation.
	// Note: The caller is responsible for type asserting the returned value.
	//
	// Returns:
	//   - any: the compiled module
	Module() any

	// SetModule stores the compiled backend module.
	//
	// Parameters:
	//   - module: the compiled module
	SetModule(module any)
}

var _ Shader = &shader{}

// NewShader is the entry point to create a new Shader.
//
// Parameters:
//   - handle: the identity to assign to the shader
//   - options: the shader description
//
// Returns:
//   - Shader: the new shader
//   - error: ErrMissingEntryPoint if options.EntryPoint is empty
func NewShader(handle common.Handle, options Options) (Shader, error) {
	if options.EntryPoint == "" {
		return nil, fmt.Errorf("%w: %s shader", ErrMissingEntryPoint, options.Type)
	}
	return &shader{
		handle:     handle,
		shaderType: options.Type,
		entryPoint: options.EntryPoint,
		source:     options.Source,
	}, nil
}

func (s *shader) Handle() common.Handle {
	return s.handle
}

func (s *shader) Type() ShaderType {
	return s.shaderType
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) Module() any {
	return s.module
}

func (s *shader) SetModule(module any) {
	s.module = module
}
