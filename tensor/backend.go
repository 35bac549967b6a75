package tensor

// Backend defines the interface that all compute backends must implement.
// Backends handle the actual computation for tensor operations.
//
// Implementations:
//   - CPU: Pure Go reference kernels (backend/cpu)
//
// The Device enum reserves ids for GPU backends; a GPU implementation would
// satisfy this same interface.
type Backend interface {
	// Element-wise binary operations with NumPy-style broadcasting
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// Matrix operations
	MatMul(a, b *RawTensor) *RawTensor

	// Convolutional operations
	Conv2D(input, kernel *RawTensor, stride, padding int) *RawTensor
	MaxPool2D(input *RawTensor, kernelSize, stride int) *RawTensor
	AvgPool2D(input *RawTensor, kernelSize, stride int) *RawTensor

	// Shape operations
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	Transpose(t *RawTensor, axes ...int) *RawTensor

	// Math operations (element-wise)
	Exp(x *RawTensor) *RawTensor // exponential
	Log(x *RawTensor) *RawTensor // natural logarithm

	// Activation functions
	ReLU(x *RawTensor) *RawTensor
	Tanh(x *RawTensor) *RawTensor
	Sigmoid(x *RawTensor) *RawTensor
	Softmax(x *RawTensor, dim int) *RawTensor // softmax along dimension

	// Metadata
	Name() string
	Device() Device
}
