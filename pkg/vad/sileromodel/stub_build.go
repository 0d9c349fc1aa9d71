//go:build !silero

package sileromodel

import "errors"

// ErrUnavailable indicates the package was built without the "silero"
// build tag, so ONNX Runtime was never linked in.
var ErrUnavailable = errors.New("sileromodel: built without -tags silero")

// New returns ErrUnavailable when built without the silero tag. Callers
// should fall back to vad.NewRMSProber.
func New(modelPath, libPath string) (*Model, error) {
	return nil, ErrUnavailable
}

// Model is an opaque placeholder satisfying callers' type references when
// built without the silero tag.
type Model struct{}

func (*Model) Probability(samples []float32) (float64, error) { return 0, ErrUnavailable }
func (*Model) Reset()                                         {}
func (*Model) Close() error                                   { return nil }
