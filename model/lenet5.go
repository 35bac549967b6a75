package model

import (
	"fmt"

	"github.com/smallnet-ml/smallnet/nn"
	"github.com/smallnet-ml/smallnet/tensor"
)

// LeNet5 is the classic LeNet-5 convolutional network (LeCun et al., 1998)
// adapted for 28x28 single-channel images.
//
// Architecture:
//
//	Input: [batch, 1, 28, 28]
//	C1: Conv 1 → 6 channels, 5x5 kernel, padding=2 -> [batch, 6, 28, 28]
//	Tanh
//	S2: AvgPool 2x2 -> [batch, 6, 14, 14]
//	C3: Conv 6 → 16 channels, 5x5 kernel -> [batch, 16, 10, 10]
//	Tanh
//	S4: AvgPool 2x2 -> [batch, 16, 5, 5]
//	Flatten -> [batch, 400]
//	C5: Linear 400 → 120
//	Tanh
//	F6: Linear 120 → 84
//	Tanh
//	Output: Linear 84 → 10
//	Softmax(dim=1)
//
// Total parameters: 61,706
// (156 + 2,416 + 48,120 + 10,164 + 850)
//
// The network has no stochastic layers, so Train and Eval do not change its
// behavior. They are provided for interface parity with the regularized
// variants.
type LeNet5[B tensor.Backend] struct {
	conv1   *nn.Conv2D[B]    // C1: 1 -> 6, 5x5, padding 2
	tanh1   *nn.Tanh[B]      //
	pool1   *nn.AvgPool2D[B] // S2: 2x2 subsampling
	conv2   *nn.Conv2D[B]    // C3: 6 -> 16, 5x5
	tanh2   *nn.Tanh[B]      //
	pool2   *nn.AvgPool2D[B] // S4: 2x2 subsampling
	flatten *nn.Flatten[B]   // [batch, 16, 5, 5] -> [batch, 400]
	fc1     *nn.Linear[B]    // C5: 400 -> 120
	tanh3   *nn.Tanh[B]      //
	fc2     *nn.Linear[B]    // F6: 120 -> 84
	tanh4   *nn.Tanh[B]      //
	fc3     *nn.Linear[B]    // Output: 84 -> 10
	softmax *nn.Softmax[B]   // Class probabilities
}

// NewLeNet5 creates a new LeNet-5 network with Xavier-initialized weights.
func NewLeNet5[B tensor.Backend](backend B) *LeNet5[B] {
	return &LeNet5[B]{
		conv1:   nn.NewConv2D(1, 6, 5, 5, 1, 2, true, backend),
		tanh1:   nn.NewTanh[B](),
		pool1:   nn.NewAvgPool2D(2, 2, backend),
		conv2:   nn.NewConv2D(6, 16, 5, 5, 1, 0, true, backend),
		tanh2:   nn.NewTanh[B](),
		pool2:   nn.NewAvgPool2D(2, 2, backend),
		flatten: nn.NewFlatten[B](),
		fc1:     nn.NewLinear(16*5*5, 120, backend),
		tanh3:   nn.NewTanh[B](),
		fc2:     nn.NewLinear(120, 84, backend),
		tanh4:   nn.NewTanh[B](),
		fc3:     nn.NewLinear(84, 10, backend),
		softmax: nn.NewSoftmax[B](1),
	}
}

// Forward computes class probabilities for a batch of images.
//
// Parameters:
//   - input: Batch of images with shape [batch_size, 1, 28, 28]
//
// Returns probabilities with shape [batch_size, 10]; each row sums to 1.
func (m *LeNet5[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	inputShape := input.Shape()
	if len(inputShape) != 4 {
		panic(fmt.Sprintf("LeNet5.Forward: expected 4D input [batch, 1, 28, 28], got %dD", len(inputShape)))
	}

	x := m.conv1.Forward(input) // [batch, 6, 28, 28]
	x = m.tanh1.Forward(x)
	x = m.pool1.Forward(x) // [batch, 6, 14, 14]

	x = m.conv2.Forward(x) // [batch, 16, 10, 10]
	x = m.tanh2.Forward(x)
	x = m.pool2.Forward(x) // [batch, 16, 5, 5]

	x = m.flatten.Forward(x) // [batch, 400]

	x = m.fc1.Forward(x) // [batch, 120]
	x = m.tanh3.Forward(x)
	x = m.fc2.Forward(x) // [batch, 84]
	x = m.tanh4.Forward(x)
	x = m.fc3.Forward(x) // [batch, 10]

	return m.softmax.Forward(x)
}

// Parameters returns all trainable parameters.
func (m *LeNet5[B]) Parameters() []*nn.Parameter[B] {
	// 5 layers × 2 params (weight + bias) = 10 params.
	params := make([]*nn.Parameter[B], 0, 10)
	params = append(params, m.conv1.Parameters()...)
	params = append(params, m.conv2.Parameters()...)
	params = append(params, m.fc1.Parameters()...)
	params = append(params, m.fc2.Parameters()...)
	params = append(params, m.fc3.Parameters()...)
	return params
}

// NumParameters returns the total number of trainable scalar values.
func (m *LeNet5[B]) NumParameters() int {
	return countParameters(m.Parameters())
}

// Train puts the model in training mode. LeNet5 has no stochastic layers,
// so this is a no-op kept for interface parity.
func (m *LeNet5[B]) Train() {}

// Eval puts the model in evaluation mode. LeNet5 has no stochastic layers,
// so this is a no-op kept for interface parity.
func (m *LeNet5[B]) Eval() {}

// String returns a string representation of the model architecture.
func (m *LeNet5[B]) String() string {
	return fmt.Sprintf(`LeNet5(
  %s
  Tanh()
  %s
  %s
  Tanh()
  %s
  Flatten()
  %s
  Tanh()
  %s
  Tanh()
  %s
  Softmax(dim=1)
)`,
		m.conv1.String(),
		m.pool1.String(),
		m.conv2.String(),
		m.pool2.String(),
		m.fc1.String(),
		m.fc2.String(),
		m.fc3.String(),
	)
}

// StateDict returns all parameters keyed by layer-qualified names
// (e.g., "conv1.weight", "fc3.bias").
func (m *LeNet5[B]) StateDict() map[string]*tensor.RawTensor {
	return mergeStateDicts(map[string]nn.Module[B]{
		"conv1": m.conv1,
		"conv2": m.conv2,
		"fc1":   m.fc1,
		"fc2":   m.fc2,
		"fc3":   m.fc3,
	})
}

// LoadStateDict loads parameters from a state dictionary produced by
// StateDict.
func (m *LeNet5[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	return loadStateDicts(stateDict, map[string]nn.Module[B]{
		"conv1": m.conv1,
		"conv2": m.conv2,
		"fc1":   m.fc1,
		"fc2":   m.fc2,
		"fc3":   m.fc3,
	})
}
