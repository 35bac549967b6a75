package nn

import (
	"fmt"

	"github.com/smallnet-ml/smallnet/tensor"
)

// Flatten reshapes a batched tensor into 2D, collapsing all dimensions
// after the batch dimension.
//
// Input shape:  [batch, d1, d2, ..., dn]
// Output shape: [batch, d1*d2*...*dn]
//
// Typical use is bridging convolutional feature maps to fully connected
// layers:
//
//	flatten := nn.NewFlatten[*cpu.CPUBackend]()
//	// [32, 16, 5, 5] -> [32, 400]
//	flat := flatten.Forward(features)
type Flatten[B tensor.Backend] struct{}

// NewFlatten creates a new Flatten module.
func NewFlatten[B tensor.Backend]() *Flatten[B] {
	return &Flatten[B]{}
}

// Forward collapses all non-batch dimensions into one.
func (f *Flatten[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := input.Shape()
	if len(shape) < 2 {
		panic(fmt.Sprintf("flatten: expected at least 2D input, got shape %v", shape))
	}

	batch := shape[0]
	features := 1
	for _, dim := range shape[1:] {
		features *= dim
	}

	return input.Reshape(batch, features)
}

// Parameters returns an empty slice (Flatten has no trainable parameters).
func (f *Flatten[B]) Parameters() []*Parameter[B] {
	return nil
}

// String returns a string representation of the module.
func (f *Flatten[B]) String() string {
	return "Flatten()"
}

// StateDict returns an empty map (Flatten has no parameters).
func (f *Flatten[B]) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{}
}

// LoadStateDict is a no-op (Flatten has no parameters).
func (f *Flatten[B]) LoadStateDict(_ map[string]*tensor.RawTensor) error {
	return nil
}
