package nn

import (
	"fmt"

	"github.com/smallnet-ml/smallnet/tensor"
)

// Softmax normalizes values along a dimension into a probability
// distribution.
//
// softmax(x)_i = exp(x_i) / sum_j exp(x_j)
//
// Each slice along the given dimension sums to 1. For classifier outputs
// with shape [batch, classes], use dim=1 so each row is a distribution
// over classes.
//
// Example:
//
//	softmax := nn.NewSoftmax[*cpu.CPUBackend](1)
//	probs := softmax.Forward(logits) // each row sums to 1
type Softmax[B tensor.Backend] struct {
	dim int
}

// NewSoftmax creates a new Softmax module operating along dim.
//
// Negative dims count from the end (-1 is the last dimension).
func NewSoftmax[B tensor.Backend](dim int) *Softmax[B] {
	return &Softmax[B]{dim: dim}
}

// Forward applies softmax along the configured dimension.
func (s *Softmax[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return input.Softmax(s.dim)
}

// Parameters returns an empty slice (Softmax has no trainable parameters).
func (s *Softmax[B]) Parameters() []*Parameter[B] {
	return nil
}

// Dim returns the dimension softmax is applied along.
func (s *Softmax[B]) Dim() int {
	return s.dim
}

// String returns a string representation of the module.
func (s *Softmax[B]) String() string {
	return fmt.Sprintf("Softmax(dim=%d)", s.dim)
}

// StateDict returns an empty map (Softmax has no parameters).
func (s *Softmax[B]) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{}
}

// LoadStateDict is a no-op (Softmax has no parameters).
func (s *Softmax[B]) LoadStateDict(_ map[string]*tensor.RawTensor) error {
	return nil
}
