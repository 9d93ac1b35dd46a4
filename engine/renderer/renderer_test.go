package renderer_test

import (
	"context"
	"encoding/binary"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/Carmen-Shannon/pristine-go/common"
	"github.com/Carmen-Shannon/pristine-go/engine/model"
	"github.com/Carmen-Shannon/pristine-go/engine/renderer"
	"github.com/Carmen-Shannon/pristine-go/engine/renderer/buffer"
	"github.com/Carmen-Shannon/pristine-go/engine/renderer/buffer/buffertest"
	"github.com/Carmen-Shannon/pristine-go/engine/renderer/instance"
	"github.com/Carmen-Shannon/pristine-go/engine/renderer/material"
	"github.com/Carmen-Shannon/pristine-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/pristine-go/engine/renderer/shader"
	"github.com/Carmen-Shannon/pristine-go/engine/renderer/vertex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBinding struct {
	group  int
	buffer uint64
}

type drawCall struct {
	indexed   bool
	count     uint32
	instances uint32
}

// fakeBackend records every call the renderer makes.
type fakeBackend struct {
	buffertest.Device

	initErr  error
	config   renderer.BackendConfig
	width    int
	height   int
	maxBytes uint64

	calls     []string
	bindings  []*fakeBinding
	released  []any
	bound     map[int]any
	draws     []drawCall
	lastClear common.Color
}

var _ renderer.RendererBackend = &fakeBackend{}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{bound: make(map[int]any)}
}

func (b *fakeBackend) record(name string) {
	b.calls = append(b.calls, name)
}

func (b *fakeBackend) Initialize(_ context.Context, _ renderer.Surface, config renderer.BackendConfig) error {
	b.record("Initialize")
	b.config = config
	return b.initErr
}

func (b *fakeBackend) ConfigureSurface(width, height int) error {
	b.record("ConfigureSurface")
	b.width, b.height = width, height
	return nil
}

func (b *fakeBackend) SurfaceSize() (int, int) {
	return b.width, b.height
}

func (b *fakeBackend) SetPresentMode(renderer.PresentMode) {
	b.record("SetPresentMode")
}

func (b *fakeBackend) MaxInstanceBufferSize() uint64 {
	return b.maxBytes
}

func (b *fakeBackend) CompileShader(s shader.Shader) error {
	s.SetModule(s.EntryPoint())
	return nil
}

func (b *fakeBackend) RegisterRenderPipeline(p pipeline.Pipeline) error {
	p.SetNative(p.Label())
	return nil
}

func (b *fakeBackend) InitTexture(t material.Texture) error {
	t.SetNative(t.Label())
	return nil
}

func (b *fakeBackend) InitMaterial(m material.Material) error {
	if len(m.Uniforms()) > 0 {
		return material.ErrUniformsUnsupported
	}
	m.SetBinding(&fakeBinding{group: renderer.BindGroupMaterial})
	return nil
}

func (b *fakeBackend) CreateBinding(_ pipeline.Pipeline, group int, buf buffer.Buffer) (any, error) {
	binding := &fakeBinding{group: group, buffer: buf.Handle().ID}
	b.bindings = append(b.bindings, binding)
	return binding, nil
}

func (b *fakeBackend) ReleaseBinding(binding any) {
	b.released = append(b.released, binding)
}

func (b *fakeBackend) BeginFrame(clear common.Color) error {
	b.record("BeginFrame")
	b.lastClear = clear
	return nil
}

func (b *fakeBackend) SetPipeline(pipeline.Pipeline) {
	b.record("SetPipeline")
}

func (b *fakeBackend) SetBindGroup(group int, binding any) {
	b.record("SetBindGroup")
	b.bound[group] = binding
}

func (b *fakeBackend) SetVertexBuffer(buffer.Buffer) {
	b.record("SetVertexBuffer")
}

func (b *fakeBackend) SetIndexBuffer(buffer.Buffer) {
	b.record("SetIndexBuffer")
}

func (b *fakeBackend) Draw(vertexCount, instanceCount uint32) {
	b.record("Draw")
	b.draws = append(b.draws, drawCall{count: vertexCount, instances: instanceCount})
}

func (b *fakeBackend) DrawIndexed(indexCount, instanceCount uint32) {
	b.record("DrawIndexed")
	b.draws = append(b.draws, drawCall{indexed: true, count: indexCount, instances: instanceCount})
}

func (b *fakeBackend) EndFrame() error {
	b.record("EndFrame")
	return nil
}

func (b *fakeBackend) Release() {
	b.record("Release")
}

func (b *fakeBackend) groupBindings(group int) []*fakeBinding {
	var out []*fakeBinding
	for _, binding := range b.bindings {
		if binding.group == group {
			out = append(out, binding)
		}
	}
	return out
}

type fakeSurface struct {
	width, height int
}

func (s fakeSurface) Size() (int, int) {
	return s.width, s.height
}

func newTestRenderer(t *testing.T, opts ...renderer.RendererBuilderOption) (renderer.Renderer, *fakeBackend) {
	t.Helper()
	backend := newFakeBackend()
	r := renderer.NewRenderer(append([]renderer.RendererBuilderOption{renderer.WithBackend(backend)}, opts...)...)
	require.NoError(t, r.Initialize(context.Background(), fakeSurface{width: 800, height: 600}))
	return r, backend
}

func quadVertices() []vertex.Vertex {
	corner := func(x, y float64) vertex.Vertex {
		return vertex.NewVertex(
			vertex.NewAttribute("position", x, y, 0),
			vertex.NewAttribute("normal", 0, 0, 1),
			vertex.NewAttribute("uv", x, y),
			vertex.NewAttribute("color", 1, 1, 1, 1),
		)
	}
	return []vertex.Vertex{corner(0, 0), corner(1, 0), corner(1, 1), corner(0, 1)}
}

func newQuad(t *testing.T, r renderer.Renderer, p pipeline.Pipeline) model.Model {
	t.Helper()
	f := r.Factory()
	tex, err := f.CreateTexture(material.TextureOptions{Label: "white", Width: 1, Height: 1})
	require.NoError(t, err)
	mat, err := f.CreateMaterial(material.Options{Pipeline: p, Textures: []material.Texture{tex}})
	require.NoError(t, err)
	mesh := model.NewMesh(quadVertices(), model.WithIndices([]uint16{0, 1, 2, 0, 2, 3}))
	m, err := model.NewModel(f, mesh, mat, renderer.BasicContract)
	require.NoError(t, err)
	return m
}

func newBasic(t *testing.T, r renderer.Renderer) pipeline.Pipeline {
	t.Helper()
	p, err := renderer.NewBasicPipeline(r)
	require.NoError(t, err)
	return p
}

func translations(n int) []*instance.Record {
	out := make([]*instance.Record, n)
	for i := range out {
		out[i] = instance.NewRecord(common.Translation(float32(i), 0, 0))
	}
	return out
}

func readFloats(data []byte) []float32 {
	out := make([]float32, len(data)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return out
}

func TestNewRendererDefaults(t *testing.T) {
	r := renderer.NewRenderer(renderer.WithBackend(newFakeBackend()))
	assert.Equal(t, renderer.StateUninitialized, r.State())
	assert.Equal(t, common.ColorBlack, r.ClearColor())
	assert.False(t, r.Debug())
	assert.Nil(t, r.Pipeline())
	assert.NotZero(t, r.Factory().ID())
}

func TestInitialize(t *testing.T) {
	r, backend := newTestRenderer(t)
	assert.Equal(t, renderer.StateInitialized, r.State())
	assert.Equal(t, []string{"Initialize", "SetPresentMode", "ConfigureSurface"}, backend.calls)
	assert.Equal(t, 800, backend.width)
	assert.Equal(t, renderer.MSAA4x, backend.config.SampleCount)
	assert.False(t, backend.config.ForceFallbackAdapter)

	err := r.Initialize(context.Background(), fakeSurface{width: 1, height: 1})
	assert.ErrorIs(t, err, renderer.ErrAlreadyInitialized)
}

func TestInitializeNoDevice(t *testing.T) {
	backend := newFakeBackend()
	backend.initErr = renderer.ErrNoCompatibleDevice
	r := renderer.NewRenderer(renderer.WithBackend(backend))

	err := r.Initialize(context.Background(), fakeSurface{width: 1, height: 1})
	assert.ErrorIs(t, err, renderer.ErrNoCompatibleDevice)
	assert.Equal(t, renderer.StateUninitialized, r.State())
}

func TestUninitializedOperations(t *testing.T) {
	r := renderer.NewRenderer(renderer.WithBackend(newFakeBackend()))

	assert.ErrorIs(t, r.Begin(), renderer.ErrNotInitialized)
	assert.ErrorIs(t, r.Resize(10, 10), renderer.ErrNotInitialized)
	_, err := r.Factory().CreateShader(shader.Options{Type: shader.ShaderTypeVertex, EntryPoint: "vs"})
	assert.ErrorIs(t, err, renderer.ErrNotInitialized)
	_, err = r.Factory().CreateTexture(material.TextureOptions{Width: 1, Height: 1})
	assert.ErrorIs(t, err, renderer.ErrNotInitialized)
}

func TestFrameStateMachine(t *testing.T) {
	r, backend := newTestRenderer(t, renderer.WithClearColor(common.Color{R: 0.5, A: 1}))

	assert.ErrorIs(t, r.End(), renderer.ErrNoActiveFrame)

	require.NoError(t, r.Begin())
	assert.Equal(t, renderer.StateFrameBegun, r.State())
	assert.Equal(t, common.Color{R: 0.5, A: 1}, backend.lastClear)
	assert.ErrorIs(t, r.Begin(), renderer.ErrFrameAlreadyBegun)

	require.NoError(t, r.End())
	assert.Equal(t, renderer.StateEnded, r.State())
	assert.ErrorIs(t, r.End(), renderer.ErrNoActiveFrame)

	require.NoError(t, r.Begin())
	require.NoError(t, r.End())
}

func TestRenderModelValidationOrder(t *testing.T) {
	r, _ := newTestRenderer(t)
	p := newBasic(t, r)
	m := newQuad(t, r, p)

	assert.ErrorIs(t, r.RenderModel(m, 1), renderer.ErrNoActiveFrame)

	require.NoError(t, r.Begin())
	assert.ErrorIs(t, r.RenderModel(m, 1), renderer.ErrNoPipelineBound)

	require.NoError(t, r.SetPipeline(p))
	assert.NoError(t, r.RenderModel(m, 1))
}

func TestRenderModelInstanceCount(t *testing.T) {
	r, backend := newTestRenderer(t)
	p := newBasic(t, r)
	m := newQuad(t, r, p)
	require.NoError(t, r.SetPipeline(p))
	require.NoError(t, r.Begin())

	assert.ErrorIs(t, r.RenderModel(m, -1), renderer.ErrInvalidInstanceCount)
	assert.NoError(t, r.RenderModel(m, 0))
	assert.Empty(t, backend.draws)
	assert.NotContains(t, backend.calls, "SetPipeline")

	require.NoError(t, r.RenderModel(m, 1))
	assert.Equal(t, []drawCall{{indexed: true, count: 6, instances: 1}}, backend.draws)
}

func TestSetPipelineNilUnbinds(t *testing.T) {
	r, backend := newTestRenderer(t)
	p := newBasic(t, r)
	m := newQuad(t, r, p)
	require.NoError(t, r.SetPipeline(p))
	require.NoError(t, r.Begin())

	require.NoError(t, r.SetPipeline(nil))
	assert.Nil(t, r.Pipeline())
	assert.ErrorIs(t, r.RenderModel(m, 1), renderer.ErrNoPipelineBound)
	assert.Empty(t, backend.draws)

	require.NoError(t, r.SetPipeline(p))
	assert.NoError(t, r.RenderModel(m, 1))
}

func TestRenderInstancesNilManager(t *testing.T) {
	r, _ := newTestRenderer(t)
	p := newBasic(t, r)

	assert.ErrorIs(t, r.RenderInstances(nil), renderer.ErrNoActiveFrame)
	require.NoError(t, r.Begin())
	assert.ErrorIs(t, r.RenderInstances(nil), renderer.ErrNoPipelineBound)
	require.NoError(t, r.SetPipeline(p))
	assert.ErrorIs(t, r.RenderInstances(nil), instance.ErrMissingModel)
}

func TestRenderModelIndexedDraw(t *testing.T) {
	r, backend := newTestRenderer(t)
	p := newBasic(t, r)
	m := newQuad(t, r, p)

	require.NoError(t, r.SetPipeline(p))
	require.NoError(t, r.Begin())
	require.NoError(t, r.RenderModel(m, 4))

	require.Len(t, backend.draws, 1)
	assert.Equal(t, drawCall{indexed: true, count: 6, instances: 4}, backend.draws[0])
	assert.Equal(t, m.Material().Binding(), backend.bound[renderer.BindGroupMaterial])
	assert.Contains(t, backend.calls, "SetIndexBuffer")
}

func TestRenderModelNonIndexedDraw(t *testing.T) {
	r, backend := newTestRenderer(t)
	p := newBasic(t, r)
	quad := newQuad(t, r, p)
	m, err := model.NewModel(r.Factory(), model.NewMesh(quadVertices()[:3]), quad.Material(), renderer.BasicContract)
	require.NoError(t, err)

	require.NoError(t, r.SetPipeline(p))
	require.NoError(t, r.Begin())
	require.NoError(t, r.RenderModel(m, 2))

	require.Len(t, backend.draws, 1)
	assert.Equal(t, drawCall{count: 3, instances: 2}, backend.draws[0])
	assert.NotContains(t, backend.calls, "SetIndexBuffer")
}

func TestSetPipelineCreatesUniformsOnce(t *testing.T) {
	r, backend := newTestRenderer(t)
	p := newBasic(t, r)

	require.NoError(t, r.SetPipeline(p))
	require.NoError(t, r.SetPipeline(p))
	assert.Equal(t, p, r.Pipeline())

	uniforms := backend.groupBindings(renderer.BindGroupBasic)
	require.Len(t, uniforms, 1)

	var found bool
	for _, mem := range backend.Created {
		if mem.Label == "basic uniforms" {
			found = true
			assert.Len(t, mem.Bytes, renderer.UniformScalars*4)
			assert.Equal(t, []buffer.Usage{buffer.UsageUniform, buffer.UsageCopyDestination}, mem.Usages)
		}
	}
	assert.True(t, found)
}

func TestUniformBlockLayout(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := start
	r, backend := newTestRenderer(t, renderer.WithClock(func() time.Time { return now }))
	p := newBasic(t, r)
	m := newQuad(t, r, p)
	m.SetTransform(common.Translation(10, 20, 0))

	require.NoError(t, r.SetPipeline(p))
	require.NoError(t, r.Begin())
	now = start.Add(1500 * time.Millisecond)
	require.NoError(t, r.RenderModel(m, 1))

	var data []float32
	for _, mem := range backend.Created {
		if mem.Label == "basic uniforms" {
			data = readFloats(mem.Bytes)
		}
	}
	require.Len(t, data, renderer.UniformScalars)

	assert.Equal(t, common.Translation(10, 20, 0).Transpose().Data(), data[0:16])
	assert.Equal(t, common.Identity4().Data(), data[16:32])
	assert.Equal(t, common.Orthographic(0, 800, 0, 600, -1, 1).Transpose().Data(), data[32:48])
	assert.InDelta(t, 1.5, data[48], 1e-6)
	assert.Equal(t, []float32{0, 0, 0}, data[49:52])
}

func TestDebugContractMismatch(t *testing.T) {
	mismatched := []vertex.Vertex{
		vertex.NewVertex(vertex.NewAttribute("position", 0, 0, 0)),
		vertex.NewVertex(vertex.NewAttribute("position", 1, 0, 0)),
		vertex.NewVertex(vertex.NewAttribute("position", 0, 1, 0)),
	}
	// Flattening needs every attribute, so the mismatched mesh is swapped onto a model built from valid vertices.
	build := func(t *testing.T, r renderer.Renderer) (pipeline.Pipeline, model.Model) {
		p := newBasic(t, r)
		valid := newQuad(t, r, p)
		return p, &meshOverride{Model: valid, mesh: model.NewMesh(mismatched)}
	}

	t.Run("debug", func(t *testing.T) {
		r, _ := newTestRenderer(t, renderer.WithDebug(true))
		p, m := build(t, r)
		require.NoError(t, r.SetPipeline(p))
		require.NoError(t, r.Begin())
		assert.ErrorIs(t, r.RenderModel(m, 1), renderer.ErrContractMismatch)
	})

	t.Run("release", func(t *testing.T) {
		r, _ := newTestRenderer(t)
		p, m := build(t, r)
		require.NoError(t, r.SetPipeline(p))
		require.NoError(t, r.Begin())
		assert.NoError(t, r.RenderModel(m, 1))
	})
}

type meshOverride struct {
	model.Model
	mesh *model.Mesh
}

func (m *meshOverride) Mesh() *model.Mesh {
	return m.mesh
}

func TestRenderInstancesEmptyDrawsNothing(t *testing.T) {
	r, backend := newTestRenderer(t)
	p := newBasic(t, r)
	m := newQuad(t, r, p)
	im, err := r.Factory().CreateInstanceManager(instance.Options{Model: m, Pipeline: p})
	require.NoError(t, err)

	calls := len(backend.calls)
	assert.NoError(t, r.RenderInstances(im))
	assert.Len(t, backend.calls, calls)
	assert.Empty(t, backend.groupBindings(renderer.BindGroupInstanced))
}

func TestRenderInstancesCachesBinding(t *testing.T) {
	r, backend := newTestRenderer(t)
	p := newBasic(t, r)
	m := newQuad(t, r, p)
	im, err := r.Factory().CreateInstanceManager(instance.Options{Model: m, Pipeline: p, Records: translations(3)})
	require.NoError(t, err)
	require.NoError(t, r.SetPipeline(p))

	for range 3 {
		require.NoError(t, r.Begin())
		require.NoError(t, r.RenderInstances(im))
		require.NoError(t, r.End())
	}

	instanced := backend.groupBindings(renderer.BindGroupInstanced)
	require.Len(t, instanced, 1)
	assert.Equal(t, im.Buffer().Handle().ID, instanced[0].buffer)
	assert.Equal(t, instanced[0], backend.bound[renderer.BindGroupInstanced])
	for _, d := range backend.draws {
		assert.Equal(t, drawCall{indexed: true, count: 6, instances: 3}, d)
	}
}

func TestInstanceGrowthInvalidatesBinding(t *testing.T) {
	r, backend := newTestRenderer(t)
	p := newBasic(t, r)
	m := newQuad(t, r, p)
	im, err := r.Factory().CreateInstanceManager(instance.Options{Model: m, Pipeline: p, Records: translations(3)})
	require.NoError(t, err)
	require.NoError(t, r.SetPipeline(p))

	require.NoError(t, r.Begin())
	require.NoError(t, r.RenderInstances(im))
	require.NoError(t, r.End())
	first := backend.groupBindings(renderer.BindGroupInstanced)[0]

	require.NoError(t, im.Replace(translations(60)))
	assert.Contains(t, backend.released, any(first))

	require.NoError(t, r.Begin())
	require.NoError(t, r.RenderInstances(im))
	require.NoError(t, r.End())

	instanced := backend.groupBindings(renderer.BindGroupInstanced)
	require.Len(t, instanced, 2)
	assert.Equal(t, im.Buffer().Handle().ID, instanced[1].buffer)
	assert.NotEqual(t, first.buffer, instanced[1].buffer)
	assert.Equal(t, uint32(60), backend.draws[len(backend.draws)-1].instances)
}

func TestInstanceManagerUsesBackendLimit(t *testing.T) {
	r, backend := newTestRenderer(t)
	backend.maxBytes = 10 * instance.RecordSize
	p := newBasic(t, r)
	m := newQuad(t, r, p)

	_, err := r.Factory().CreateInstanceManager(instance.Options{Model: m, Pipeline: p, Records: translations(11)})
	assert.ErrorIs(t, err, instance.ErrCapacityExceeded)
}

func TestFactoryMismatch(t *testing.T) {
	r1, _ := newTestRenderer(t)
	r2, _ := newTestRenderer(t)
	p1 := newBasic(t, r1)
	p2 := newBasic(t, r2)
	m2 := newQuad(t, r2, p2)

	assert.ErrorIs(t, r1.SetPipeline(p2), renderer.ErrFactoryMismatch)

	require.NoError(t, r1.SetPipeline(p1))
	require.NoError(t, r1.Begin())
	assert.ErrorIs(t, r1.RenderModel(m2, 1), renderer.ErrFactoryMismatch)

	_, err := r1.Factory().CreateMaterial(material.Options{Pipeline: p2})
	assert.ErrorIs(t, err, renderer.ErrFactoryMismatch)

	_, err = r1.Factory().CreateInstanceManager(instance.Options{Model: m2, Pipeline: p1})
	assert.ErrorIs(t, err, renderer.ErrFactoryMismatch)

	vs := p2.Shader(shader.ShaderTypeVertex)
	_, err = r1.Factory().CreatePipeline(pipeline.Options{Shaders: []shader.Shader{vs}, Contract: renderer.BasicContract})
	assert.ErrorIs(t, err, renderer.ErrFactoryMismatch)
}

func TestCreateMaterialRejectsUniforms(t *testing.T) {
	r, _ := newTestRenderer(t)
	p := newBasic(t, r)

	_, err := r.Factory().CreateMaterial(material.Options{
		Pipeline: p,
		Uniforms: []material.Uniform{{Name: "tint", Value: []byte{1, 2, 3, 4}}},
	})
	assert.ErrorIs(t, err, material.ErrUniformsUnsupported)
}

func TestFactoryBuffersCarryFactoryID(t *testing.T) {
	r, _ := newTestRenderer(t, renderer.WithDebug(true))
	b, err := r.Factory().CreateBuffer(buffer.Options{Usages: []buffer.Usage{buffer.UsageVertex}, Size: 16})
	require.NoError(t, err)
	assert.Equal(t, r.Factory().ID(), b.Handle().Factory)

	b.Destroy()
	err = b.WriteBytes(make([]byte, 4), 0, 0, -1)
	assert.True(t, errors.Is(err, buffer.ErrDestroyed))
}

func TestReleasePipeline(t *testing.T) {
	r, backend := newTestRenderer(t)
	p := newBasic(t, r)
	m := newQuad(t, r, p)
	im, err := r.Factory().CreateInstanceManager(instance.Options{Model: m, Pipeline: p, Records: translations(2)})
	require.NoError(t, err)

	require.NoError(t, r.SetPipeline(p))
	require.NoError(t, r.Begin())
	require.NoError(t, r.RenderInstances(im))
	require.NoError(t, r.End())

	r.ReleasePipeline(p)
	assert.Nil(t, r.Pipeline())
	// the instance binding and the uniform binding
	assert.Len(t, backend.released, 2)

	require.NoError(t, r.SetPipeline(p))
	assert.Len(t, backend.groupBindings(renderer.BindGroupBasic), 2)
}

func TestResizeUpdatesProjection(t *testing.T) {
	r, backend := newTestRenderer(t)
	require.NoError(t, r.Resize(1024, 768))
	w, h := backend.SurfaceSize()
	assert.Equal(t, 1024, w)
	assert.Equal(t, 768, h)
}

func TestRelease(t *testing.T) {
	r, backend := newTestRenderer(t)
	p := newBasic(t, r)
	require.NoError(t, r.SetPipeline(p))

	r.Release()
	assert.Equal(t, renderer.StateUninitialized, r.State())
	assert.Equal(t, "Release", backend.calls[len(backend.calls)-1])
	assert.Len(t, backend.released, 1)
}
