package nn

import (
	"fmt"

	"github.com/smallnet-ml/smallnet/tensor"
)

// MaxPool2D is a 2D max pooling layer.
//
// Max pooling reduces spatial dimensions by taking the maximum value
// in each window. Unlike Conv2D, MaxPool2D has no learnable parameters.
//
// Input shape:  [batch, channels, height, width]
// Output shape: [batch, channels, out_height, out_width]
//
// Where:
//
//	out_height = (height - kernelSize) / stride + 1
//	out_width = (width - kernelSize) / stride + 1
//
// Common configurations:
//   - 2x2 pool, stride=2: Reduces spatial dimensions by half (most common)
//   - 3x3 pool, stride=2: Aggressive downsampling
//
// Example:
//
//	// Create 2x2 max pooling with stride 2
//	pool := nn.NewMaxPool2D(2, 2, backend)
//
//	input := tensor.Randn[float32](tensor.Shape{32, 64, 28, 28}, backend)
//	output := pool.Forward(input) // [32, 64, 14, 14]
type MaxPool2D[B tensor.Backend] struct {
	kernelSize int
	stride     int
	backend    B
}

// NewMaxPool2D creates a new 2D max pooling layer.
//
// Parameters:
//   - kernelSize: Size of pooling window (square)
//   - stride: Stride for pooling (typically same as kernelSize for non-overlapping)
//   - backend: Backend for computation
func NewMaxPool2D[B tensor.Backend](kernelSize, stride int, backend B) *MaxPool2D[B] {
	if kernelSize <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid kernel size %d", kernelSize))
	}
	if stride <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid stride %d", stride))
	}

	return &MaxPool2D[B]{
		kernelSize: kernelSize,
		stride:     stride,
		backend:    backend,
	}
}

// Forward performs the forward pass.
//
// Input: [batch, channels, height, width]
// Output: [batch, channels, out_h, out_w].
func (m *MaxPool2D[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	inputShape := input.Shape()
	if len(inputShape) != 4 {
		panic(fmt.Sprintf("maxpool2d: expected 4D input [N,C,H,W], got %dD", len(inputShape)))
	}

	outputRaw := m.backend.MaxPool2D(input.Raw(), m.kernelSize, m.stride)
	return tensor.New[float32, B](outputRaw, m.backend)
}

// Parameters returns an empty slice (pooling has no trainable parameters).
func (m *MaxPool2D[B]) Parameters() []*Parameter[B] {
	return nil
}

// KernelSize returns the pooling window size.
func (m *MaxPool2D[B]) KernelSize() int {
	return m.kernelSize
}

// Stride returns the stride.
func (m *MaxPool2D[B]) Stride() int {
	return m.stride
}

// String returns a string representation of the layer.
func (m *MaxPool2D[B]) String() string {
	return fmt.Sprintf("MaxPool2D(kernel_size=%d, stride=%d)", m.kernelSize, m.stride)
}

// StateDict returns an empty map (pooling has no parameters).
func (m *MaxPool2D[B]) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{}
}

// LoadStateDict is a no-op (pooling has no parameters).
func (m *MaxPool2D[B]) LoadStateDict(_ map[string]*tensor.RawTensor) error {
	return nil
}

// AvgPool2D is a 2D average pooling layer.
//
// Average pooling reduces spatial dimensions by taking the mean value in
// each window. Classic LeNet-style architectures use it for subsampling.
//
// Input shape:  [batch, channels, height, width]
// Output shape: [batch, channels, out_height, out_width]
//
// Example:
//
//	pool := nn.NewAvgPool2D(2, 2, backend)
//
//	input := tensor.Randn[float32](tensor.Shape{32, 6, 28, 28}, backend)
//	output := pool.Forward(input) // [32, 6, 14, 14]
type AvgPool2D[B tensor.Backend] struct {
	kernelSize int
	stride     int
	backend    B
}

// NewAvgPool2D creates a new 2D average pooling layer.
//
// Parameters:
//   - kernelSize: Size of pooling window (square)
//   - stride: Stride for pooling
//   - backend: Backend for computation
func NewAvgPool2D[B tensor.Backend](kernelSize, stride int, backend B) *AvgPool2D[B] {
	if kernelSize <= 0 {
		panic(fmt.Sprintf("avgpool2d: invalid kernel size %d", kernelSize))
	}
	if stride <= 0 {
		panic(fmt.Sprintf("avgpool2d: invalid stride %d", stride))
	}

	return &AvgPool2D[B]{
		kernelSize: kernelSize,
		stride:     stride,
		backend:    backend,
	}
}

// Forward performs the forward pass.
//
// Input: [batch, channels, height, width]
// Output: [batch, channels, out_h, out_w].
func (a *AvgPool2D[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	inputShape := input.Shape()
	if len(inputShape) != 4 {
		panic(fmt.Sprintf("avgpool2d: expected 4D input [N,C,H,W], got %dD", len(inputShape)))
	}

	outputRaw := a.backend.AvgPool2D(input.Raw(), a.kernelSize, a.stride)
	return tensor.New[float32, B](outputRaw, a.backend)
}

// Parameters returns an empty slice (pooling has no trainable parameters).
func (a *AvgPool2D[B]) Parameters() []*Parameter[B] {
	return nil
}

// KernelSize returns the pooling window size.
func (a *AvgPool2D[B]) KernelSize() int {
	return a.kernelSize
}

// Stride returns the stride.
func (a *AvgPool2D[B]) Stride() int {
	return a.stride
}

// String returns a string representation of the layer.
func (a *AvgPool2D[B]) String() string {
	return fmt.Sprintf("AvgPool2D(kernel_size=%d, stride=%d)", a.kernelSize, a.stride)
}

// StateDict returns an empty map (pooling has no parameters).
func (a *AvgPool2D[B]) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{}
}

// LoadStateDict is a no-op (pooling has no parameters).
func (a *AvgPool2D[B]) LoadStateDict(_ map[string]*tensor.RawTensor) error {
	return nil
}
