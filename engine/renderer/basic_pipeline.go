package renderer

import (
	_ "embed"

	"github.com/Carmen-Shannon/pristine-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/pristine-go/engine/renderer/shader"
	"github.com/Carmen-Shannon/pristine-go/engine/renderer/vertex"
)

//go:embed shaders/basic.wgsl
var basicShaderSource string

const (
	basicVertexEntryPoint   = "vertex_main"
	basicFragmentEntryPoint = "fragment_main"
)

// BasicContract is the vertex contract of the basic pipeline.
var BasicContract = vertex.Contract{
	{Name: "position", ScalarType: vertex.ScalarFloat32, VectorSize: 3},
	{Name: "normal", ScalarType: vertex.ScalarFloat32, VectorSize: 3},
	{Name: "uv", ScalarType: vertex.ScalarFloat32, VectorSize: 2},
	{Name: "color", ScalarType: vertex.ScalarFloat32, VectorSize: 4},
}

// NewBasicPipeline creates the built-in textured, alpha blended, instanced pipeline on r's factory. Models drawn
// with it must adhere to BasicContract, use a material with one texture, and be drawn through RenderInstances.
//
// Parameters:
//   - r: an initialized renderer
//
// Returns:
//   - pipeline.Pipeline: the registered pipeline
//   - error: ErrNotInitialized, or a shader or backend error
func NewBasicPipeline(r Renderer) (pipeline.Pipeline, error) {
	f := r.Factory()
	vs, err := f.CreateShader(shader.Options{
		Type:       shader.ShaderTypeVertex,
		EntryPoint: basicVertexEntryPoint,
		Source:     basicShaderSource,
	})
	if err != nil {
		return nil, err
	}
	fs, err := f.CreateShader(shader.Options{
		Type:       shader.ShaderTypeFragment,
		EntryPoint: basicFragmentEntryPoint,
		Source:     basicShaderSource,
	})
	if err != nil {
		return nil, err
	}
	return f.CreatePipeline(pipeline.Options{
		Label:    "basic",
		Shaders:  []shader.Shader{vs, fs},
		Contract: BasicContract,
	}, pipeline.WithTopology(pipeline.TopologyTriangleList))
}
