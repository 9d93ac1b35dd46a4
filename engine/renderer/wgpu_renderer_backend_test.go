package renderer

import (
	"testing"

	"github.com/Carmen-Shannon/pristine-go/common"
	"github.com/Carmen-Shannon/pristine-go/engine/renderer/buffer"
	"github.com/Carmen-Shannon/pristine-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/pristine-go/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateBufferUsages(t *testing.T) {
	tests := []struct {
		name   string
		usages []buffer.Usage
		want   wgpu.BufferUsage
	}{
		{"none", nil, 0},
		{"vertex", []buffer.Usage{buffer.UsageVertex, buffer.UsageCopyDestination}, wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst},
		{"index", []buffer.Usage{buffer.UsageIndex, buffer.UsageCopyDestination}, wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst},
		{"uniform", []buffer.Usage{buffer.UsageUniform, buffer.UsageCopyDestination}, wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst},
		{"storage", []buffer.Usage{buffer.UsageStorage, buffer.UsageCopySource}, wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := translateBufferUsages(tt.usages)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := translateBufferUsages([]buffer.Usage{buffer.Usage(99)})
	assert.ErrorIs(t, err, buffer.ErrInvalidUsage)
}

func TestTranslateVertexAttributes(t *testing.T) {
	vs, err := shader.NewShader(common.Handle{ID: common.NextID()}, shader.Options{Type: shader.ShaderTypeVertex, EntryPoint: "vertex_main"})
	require.NoError(t, err)
	p, err := pipeline.NewPipeline(common.Handle{ID: common.NextID()}, pipeline.Options{Shaders: []shader.Shader{vs}, Contract: BasicContract})
	require.NoError(t, err)

	layout, err := translateVertexAttributes(p)
	require.NoError(t, err)
	assert.Equal(t, uint64(48), layout.ArrayStride)
	assert.Equal(t, wgpu.VertexStepModeVertex, layout.StepMode)
	assert.Equal(t, []wgpu.VertexAttribute{
		{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
		{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
		{Format: wgpu.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2},
		{Format: wgpu.VertexFormatFloat32x4, Offset: 32, ShaderLocation: 3},
	}, layout.Attributes)
}

func TestWGPUFixedFunctionTables(t *testing.T) {
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, wgpuTopologies[pipeline.TopologyTriangleList])
	assert.Equal(t, wgpu.CullModeBack, wgpuCullModes[pipeline.CullModeBack])
	assert.Equal(t, wgpu.BlendFactorSrcAlpha, wgpuAlphaBlend.Color.SrcFactor)
	assert.Equal(t, wgpu.BlendFactorOneMinusSrcAlpha, wgpuAlphaBlend.Color.DstFactor)
	assert.Equal(t, wgpu.BlendFactorOne, wgpuAlphaBlend.Alpha.SrcFactor)
	assert.Equal(t, wgpu.BlendFactorZero, wgpuAlphaBlend.Alpha.DstFactor)
}

func TestWGPUBackendRequiresDescriptorSurface(t *testing.T) {
	b := newWGPURendererBackend()
	err := b.Initialize(t.Context(), sizeOnlySurface{}, BackendConfig{})
	assert.ErrorIs(t, err, ErrNoCompatibleDevice)
	assert.Zero(t, b.MaxInstanceBufferSize())
}

type sizeOnlySurface struct{}

func (sizeOnlySurface) Size() (int, int) { return 1, 1 }

func TestBasicShaderEntryPoints(t *testing.T) {
	assert.Contains(t, basicShaderSource, "fn "+basicVertexEntryPoint+"(")
	assert.Contains(t, basicShaderSource, "fn "+basicFragmentEntryPoint+"(")
	assert.Contains(t, basicShaderSource, "@group(2) @binding(0)")
}

func compiledShader(t *testing.T, shaderType shader.ShaderType, entryPoint string) shader.Shader {
	t.Helper()
	s, err := shader.NewShader(common.Handle{ID: common.NextID()}, shader.Options{Type: shaderType, EntryPoint: entryPoint})
	require.NoError(t, err)
	s.SetModule(&wgpu.ShaderModule{})
	return s
}

func TestRegisterRenderPipelineShaderStages(t *testing.T) {
	newPipeline := func(shaders ...shader.Shader) pipeline.Pipeline {
		p, err := pipeline.NewPipeline(common.Handle{ID: common.NextID()}, pipeline.Options{Label: "stages", Shaders: shaders, Contract: BasicContract})
		require.NoError(t, err)
		return p
	}

	t.Run("vertex only reaches the device", func(t *testing.T) {
		p := newPipeline(compiledShader(t, shader.ShaderTypeVertex, "vertex_main"))
		err := newWGPURendererBackend().RegisterRenderPipeline(p)
		assert.ErrorIs(t, err, ErrNotInitialized)
	})

	t.Run("vertex and fragment reach the device", func(t *testing.T) {
		p := newPipeline(
			compiledShader(t, shader.ShaderTypeVertex, "vertex_main"),
			compiledShader(t, shader.ShaderTypeFragment, "fragment_main"),
		)
		err := newWGPURendererBackend().RegisterRenderPipeline(p)
		assert.ErrorIs(t, err, ErrNotInitialized)
	})

	t.Run("uncompiled fragment", func(t *testing.T) {
		fs, err := shader.NewShader(common.Handle{ID: common.NextID()}, shader.Options{Type: shader.ShaderTypeFragment, EntryPoint: "fragment_main"})
		require.NoError(t, err)
		p := newPipeline(compiledShader(t, shader.ShaderTypeVertex, "vertex_main"), fs)
		err = newWGPURendererBackend().RegisterRenderPipeline(p)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotInitialized)
		assert.Contains(t, err.Error(), "has not been compiled")
	})
}

func TestPreferredCapability(t *testing.T) {
	format, err := preferredCapability("formats", []wgpu.TextureFormat{wgpu.TextureFormatRGBA8UnormSrgb, wgpu.TextureFormatRGBA8Unorm})
	require.NoError(t, err)
	assert.Equal(t, wgpu.TextureFormatRGBA8UnormSrgb, format)

	_, err = preferredCapability[wgpu.TextureFormat]("formats", nil)
	assert.ErrorIs(t, err, ErrNoCompatibleDevice)

	_, err = preferredCapability("alpha modes", []int{})
	assert.ErrorIs(t, err, ErrNoCompatibleDevice)
	assert.Contains(t, err.Error(), "alpha modes")
}
