package nn

import (
	"github.com/smallnet-ml/smallnet/tensor"
)

// ReLU is a Rectified Linear Unit activation module.
//
// Applies the element-wise function: f(x) = max(0, x)
//
// ReLU is the most commonly used activation function in deep learning.
// It helps with the vanishing gradient problem and is computationally efficient.
//
// Example:
//
//	relu := nn.NewReLU[*cpu.CPUBackend]()
//	output := relu.Forward(input)  // All negative values become 0
type ReLU[B tensor.Backend] struct{}

// NewReLU creates a new ReLU activation module.
func NewReLU[B tensor.Backend]() *ReLU[B] {
	return &ReLU[B]{}
}

// Forward applies ReLU activation: f(x) = max(0, x).
func (r *ReLU[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	backend := input.Backend()
	return tensor.New[float32, B](backend.ReLU(input.Raw()), backend)
}

// Parameters returns an empty slice (ReLU has no trainable parameters).
func (r *ReLU[B]) Parameters() []*Parameter[B] {
	return nil
}

// String returns a string representation of the module.
func (r *ReLU[B]) String() string {
	return "ReLU()"
}

// StateDict returns an empty map (ReLU has no parameters).
func (r *ReLU[B]) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{}
}

// LoadStateDict is a no-op (ReLU has no parameters).
func (r *ReLU[B]) LoadStateDict(_ map[string]*tensor.RawTensor) error {
	return nil
}

// Sigmoid is a sigmoid activation module.
//
// Applies the element-wise function: σ(x) = 1 / (1 + exp(-x))
//
// Sigmoid squashes values to the range (0, 1), making it useful for
// binary classification and gating mechanisms.
type Sigmoid[B tensor.Backend] struct{}

// NewSigmoid creates a new Sigmoid activation module.
func NewSigmoid[B tensor.Backend]() *Sigmoid[B] {
	return &Sigmoid[B]{}
}

// Forward applies Sigmoid activation: σ(x) = 1 / (1 + exp(-x)).
func (s *Sigmoid[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	backend := input.Backend()
	return tensor.New[float32, B](backend.Sigmoid(input.Raw()), backend)
}

// Parameters returns an empty slice (Sigmoid has no trainable parameters).
func (s *Sigmoid[B]) Parameters() []*Parameter[B] {
	return nil
}

// String returns a string representation of the module.
func (s *Sigmoid[B]) String() string {
	return "Sigmoid()"
}

// StateDict returns an empty map (Sigmoid has no parameters).
func (s *Sigmoid[B]) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{}
}

// LoadStateDict is a no-op (Sigmoid has no parameters).
func (s *Sigmoid[B]) LoadStateDict(_ map[string]*tensor.RawTensor) error {
	return nil
}

// Tanh is a hyperbolic tangent activation module.
//
// Applies the element-wise function: tanh(x) = (exp(x) - exp(-x)) / (exp(x) + exp(-x))
//
// Tanh squashes values to the range (-1, 1). It is zero-centered, which can
// help with training, and is the classic activation in LeNet-style networks.
type Tanh[B tensor.Backend] struct{}

// NewTanh creates a new Tanh activation module.
func NewTanh[B tensor.Backend]() *Tanh[B] {
	return &Tanh[B]{}
}

// Forward applies Tanh activation.
func (t *Tanh[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	backend := input.Backend()
	return tensor.New[float32, B](backend.Tanh(input.Raw()), backend)
}

// Parameters returns an empty slice (Tanh has no trainable parameters).
func (t *Tanh[B]) Parameters() []*Parameter[B] {
	return nil
}

// String returns a string representation of the module.
func (t *Tanh[B]) String() string {
	return "Tanh()"
}

// StateDict returns an empty map (Tanh has no parameters).
func (t *Tanh[B]) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{}
}

// LoadStateDict is a no-op (Tanh has no parameters).
func (t *Tanh[B]) LoadStateDict(_ map[string]*tensor.RawTensor) error {
	return nil
}
