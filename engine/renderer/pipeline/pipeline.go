package pipeline

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/pristine-go/common"
	"github.com/Carmen-Shannon/pristine-go/engine/renderer/shader"
	"github.com/Carmen-Shannon/pristine-go/engine/renderer/vertex"
)

// ErrMissingVertexShader is returned when a pipeline is created without a vertex stage.
var ErrMissingVertexShader = errors.New("pipeline: missing vertex shader")

// Topology is the primitive assembly mode of a pipeline.
type Topology int

const (
	// TopologyTriangleList draws every three vertices as an independent triangle.
	TopologyTriangleList Topology = iota
	// TopologyTriangleStrip draws a connected strip of triangles.
	TopologyTriangleStrip
	// TopologyLineList draws every two vertices as an independent line.
	TopologyLineList
	// TopologyPointList draws every vertex as a point.
	TopologyPointList
)

// CullMode selects which triangle faces are discarded.
type CullMode int

const (
	CullModeNone CullMode = iota
	CullModeFront
	CullModeBack
)

// Options describes a pipeline to create.
type Options struct {
	Label    string
	Shaders  []shader.Shader
	Contract vertex.Contract
}

// pipeline is the implementation of the Pipeline interface.
type pipeline struct {
	handle   common.Handle
	label    string
	contract vertex.Contract
	stride   int
	shaders  map[shader.ShaderType]shader.Shader
	order    []shader.Shader

	blendEnabled bool
	cullMode     CullMode
	topology     Topology

	// native is the backend pipeline object, set once the backend has compiled it
	native any
}

// Pipeline defines the interface for a render pipeline: the shaders it runs, the vertex contract its vertex
// stage consumes, and the fixed-function state it was configured with.
type Pipeline interface {
	// Handle returns the identity of this pipeline.
	//
	// Returns:
	//   - common.Handle: the pipeline's handle
	Handle() common.Handle

	// Label returns the debug label of this pipeline.
	//
	// Returns:
	//   - string: the label
	Label() string

	// Contract returns a copy of the vertex contract this pipeline consumes.
	//
	// Returns:
	//   - vertex.Contract: the ordered attribute descriptors
	Contract() vertex.Contract

	// Stride returns the byte length of one vertex of the contract.
	//
	// Returns:
	//   - int: the stride in bytes
	Stride() int

	// Shaders returns the shaders of this pipeline in the order they were provided.
	//
	// Returns:
	//   - []shader.Shader: the shaders
	Shaders() []shader.Shader

	// Shader retrieves the shader associated with the specified type if it exists, nil otherwise.
	//
	// Parameters:
	//   - shaderType: the type of shader to retrieve (vertex, fragment, or compute)
	//
	// Returns:
	//   - shader.Shader: the shader associated with the specified type, or nil if not set
	Shader(shaderType shader.ShaderType) shader.Shader

	// BlendEnabled returns whether alpha blending is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if blending is enabled, false otherwise
	BlendEnabled() bool

	// CullMode returns the cull mode configured for this pipeline.
	//
	// Returns:
	//   - CullMode: the cull mode
	CullMode() CullMode

	// Topology returns the primitive topology configured for this pipeline.
	//
	// Returns:
	//   - Topology: the primitive topology
	Topology() Topology

	// Native returns the underlying backend pipeline object.
	// Note: The caller is responsible for type asserting the returned value.
	//
	// Returns:
	//   - any: the backend pipeline, or nil before registration
	Native() any

	// SetNative stores the backend pipeline object.
	//
	// Parameters:
	//   - native: the backend pipeline
	SetNative(native any)
}

var _ Pipeline = &pipeline{}

// NewPipeline is the entry point to create a new Pipeline. A vertex shader is required; when several shaders share
// a stage the last one wins.
//
// Parameters:
//   - handle: the identity to assign to the pipeline
//   - options: the shaders and vertex contract of the pipeline
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: a new Pipeline
//   - error: ErrMissingVertexShader, or a vertex error if the contract is invalid
func NewPipeline(handle common.Handle, options Options, opts ...PipelineBuilderOption) (Pipeline, error) {
	stride, err := vertex.Stride(options.Contract)
	if err != nil {
		return nil, fmt.Errorf("pipeline %q: %w", options.Label, err)
	}

	p := &pipeline{
		handle:       handle,
		label:        options.Label,
		contract:     append(vertex.Contract(nil), options.Contract...),
		stride:       stride,
		shaders:      make(map[shader.ShaderType]shader.Shader, len(options.Shaders)),
		blendEnabled: true,
		cullMode:     CullModeNone,
		topology:     TopologyTriangleList,
	}
	for _, s := range options.Shaders {
		if s == nil {
			continue
		}
		p.shaders[s.Type()] = s
		p.order = append(p.order, s)
	}
	if p.shaders[shader.ShaderTypeVertex] == nil {
		return nil, fmt.Errorf("%w: pipeline %q", ErrMissingVertexShader, options.Label)
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *pipeline) Handle() common.Handle {
	return p.handle
}

func (p *pipeline) Label() string {
	return p.label
}

func (p *pipeline) Contract() vertex.Contract {
	return append(vertex.Contract(nil), p.contract...)
}

func (p *pipeline) Stride() int {
	return p.stride
}

func (p *pipeline) Shaders() []shader.Shader {
	return append([]shader.Shader(nil), p.order...)
}

func (p *pipeline) Shader(shaderType shader.ShaderType) shader.Shader {
	return p.shaders[shaderType]
}

func (p *pipeline) BlendEnabled() bool {
	return p.blendEnabled
}

func (p *pipeline) CullMode() CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() Topology {
	return p.topology
}

func (p *pipeline) Native() any {
	return p.native
}

func (p *pipeline) SetNative(native any) {
	p.native = native
}
