package shader_test

import (
	"testing"

	"github.com/Carmen-Shannon/pristine-go/common"
	"github.com/Carmen-Shannon/pristine-go/engine/renderer/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewShader(t *testing.T) {
	src := "@vertex fn vs_main() -> @builtin(position) vec4<f32> { return vec4<f32>(); }"
	s, err := shader.NewShader(common.Handle{ID: 3}, shader.Options{
		Type:       shader.ShaderTypeVertex,
		EntryPoint: "vs_main",
		Source:     src,
	})
	require.NoError(t, err)
	assert.Equal(t, src, s.Source())
	assert.Equal(t, "vs_main", s.EntryPoint())
	assert.Equal(t, shader.ShaderTypeVertex, s.Type())
	assert.Nil(t, s.Module())

	s.SetModule("compiled")
	assert.Equal(t, "compiled", s.Module())
}

func TestNewShader_MissingEntryPoint(t *testing.T) {
	_, err := shader.NewShader(common.Handle{ID: 1}, shader.Options{Type: shader.ShaderTypeFragment})
	assert.ErrorIs(t, err, shader.ErrMissingEntryPoint)
}
