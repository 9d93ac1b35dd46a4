package model

import "github.com/Carmen-Shannon/pristine-go/common"

// ModelBuilderOption is a functional option for configuring a Model via NewModel.
type ModelBuilderOption func(*model)

// WithTransform is an option builder that sets the initial row-major transform of the Model. The default is the
// identity.
//
// Parameters:
//   - t: the initial transform
//
// Returns:
//   - ModelBuilderOption: a function that applies the transform option to a model
func WithTransform(t common.Matrix4) ModelBuilderOption {
	return func(m *model) {
		m.transform = t
	}
}
