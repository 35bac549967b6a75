// Package nn implements neural network modules for the smallnet library.
//
// This package provides building blocks for constructing classifiers:
//   - Module interface: Base interface for all NN components
//   - Parameter: Trainable parameters with gradient storage
//   - Linear, Conv2D: Layers with learnable weights
//   - MaxPool2D, AvgPool2D, Flatten: Shape-transforming layers
//   - ReLU, Sigmoid, Tanh, Softmax: Activations
//   - Dropout, Dropout2D: Stochastic regularization
//   - Sequential: Container for stacking layers
//
// Design inspired by PyTorch's nn.Module but adapted for Go generics.
package nn

import (
	"github.com/smallnet-ml/smallnet/tensor"
)

// Module is the base interface for all neural network components.
//
// Modules can be composed to build complex architectures:
//
//	model := nn.NewSequential(
//	    nn.NewLinear(784, 128, backend),
//	    nn.NewReLU[*cpu.CPUBackend](),
//	    nn.NewLinear(128, 10, backend),
//	)
//
// Type parameter B must satisfy the tensor.Backend interface.
type Module[B tensor.Backend] interface {
	// Forward computes the output of the module given an input tensor.
	//
	// The input tensor should have the appropriate shape for this module.
	// For example, Linear expects [batch_size, in_features].
	//
	// Returns the output tensor with shape determined by the module type.
	Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

	// Parameters returns all trainable parameters of this module.
	//
	// This includes weights, biases, and any nested module parameters.
	// Returns an empty slice for modules without trainable parameters
	// (e.g., activation functions).
	Parameters() []*Parameter[B]

	// StateDict returns a map of parameter names to raw tensors.
	//
	// Modules without parameters return an empty map.
	StateDict() map[string]*tensor.RawTensor

	// LoadStateDict loads parameters from a state dictionary.
	//
	// Shapes and dtypes must match the module's parameters exactly.
	LoadStateDict(stateDict map[string]*tensor.RawTensor) error
}

// ModeSetter is implemented by modules whose forward pass differs between
// training and evaluation (e.g., Dropout).
//
// Containers propagate the mode to all children that implement this
// interface. Modules that behave identically in both modes do not need it.
type ModeSetter interface {
	SetTraining(training bool)
}
