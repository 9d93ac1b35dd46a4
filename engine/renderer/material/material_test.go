package material_test

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/pristine-go/common"
	"github.com/Carmen-Shannon/pristine-go/engine/renderer/material"
	"github.com/Carmen-Shannon/pristine-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/pristine-go/engine/renderer/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPipeline(t *testing.T) pipeline.Pipeline {
	t.Helper()
	vs, err := shader.NewShader(common.Handle{ID: common.NextID()}, shader.Options{Type: shader.ShaderTypeVertex, EntryPoint: "vs_main"})
	require.NoError(t, err)
	p, err := pipeline.NewPipeline(common.Handle{ID: common.NextID()}, pipeline.Options{Shaders: []shader.Shader{vs}})
	require.NoError(t, err)
	return p
}

// twoRowImage is 1x2: red on top, blue below.
func twoRowImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 1, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	img.Set(0, 1, color.RGBA{B: 255, A: 255})
	return img
}

func TestNewMaterial(t *testing.T) {
	p := newPipeline(t)
	tex, err := material.NewTexture(common.Handle{ID: common.NextID()}, material.TextureOptions{Width: 4, Height: 4})
	require.NoError(t, err)

	m, err := material.NewMaterial(common.Handle{ID: 1}, material.Options{
		Pipeline: p,
		Textures: []material.Texture{tex},
		Uniforms: []material.Uniform{
			{Name: "tint", Value: []byte{1}},
			{Name: "gain", Value: []byte{2}},
			{Name: "tint", Value: []byte{3}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, p, m.Pipeline())
	assert.Equal(t, []material.Texture{tex}, m.Textures())

	u, ok := m.Uniform("tint")
	require.True(t, ok)
	assert.Equal(t, []byte{3}, u.Value)
	uniforms := m.Uniforms()
	require.Len(t, uniforms, 2)
	assert.Equal(t, "tint", uniforms[0].Name)
	assert.Equal(t, "gain", uniforms[1].Name)

	assert.Nil(t, m.Binding())
	m.SetBinding("bind group")
	assert.Equal(t, "bind group", m.Binding())
}

func TestNewMaterial_MissingPipeline(t *testing.T) {
	_, err := material.NewMaterial(common.Handle{ID: 1}, material.Options{})
	assert.ErrorIs(t, err, material.ErrMissingPipeline)
}

func TestNewTexture_FromImageFlipsRows(t *testing.T) {
	tex, err := material.NewTexture(common.Handle{ID: 1}, material.TextureOptions{Image: twoRowImage(), Width: 99})
	require.NoError(t, err)
	assert.Equal(t, uint32(1), tex.Width())
	assert.Equal(t, uint32(2), tex.Height())
	assert.Equal(t, []byte{0, 0, 255, 255, 255, 0, 0, 255}, tex.Pixels())
}

func TestNewTexture_Empty(t *testing.T) {
	_, err := material.NewTexture(common.Handle{ID: 1}, material.TextureOptions{Width: 4})
	assert.ErrorIs(t, err, material.ErrEmptyTexture)
}

func TestLoadImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tex.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, twoRowImage()))
	require.NoError(t, f.Close())

	img, format, err := material.LoadImage(path)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, image.Rect(0, 0, 1, 2), img.Bounds())

	_, _, err = material.LoadImage(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}
