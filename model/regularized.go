package model

import (
	"fmt"

	"github.com/smallnet-ml/smallnet/nn"
	"github.com/smallnet-ml/smallnet/tensor"
)

// RegularizedLeNet5 is the LeNet-5 topology with modern regularization:
// ReLU activations, max pooling, and dropout after every activation.
//
// Architecture:
//
//	Input: [batch, 1, 28, 28]
//	C1: Conv 1 → 6 channels, 5x5 kernel, padding=2 -> [batch, 6, 28, 28]
//	ReLU, Dropout2D(0.5)
//	S2: MaxPool 2x2 -> [batch, 6, 14, 14]
//	C3: Conv 6 → 16 channels, 5x5 kernel -> [batch, 16, 10, 10]
//	ReLU, Dropout2D(0.5)
//	S4: MaxPool 2x2 -> [batch, 16, 5, 5]
//	Flatten -> [batch, 400]
//	C5: Linear 400 → 120
//	ReLU, Dropout(0.5)
//	F6: Linear 120 → 84
//	ReLU, Dropout(0.5)
//	Output: Linear 84 → 10
//	Softmax(dim=1)
//
// Total parameters: 61,706, identical to LeNet5 since dropout adds none.
//
// Convolutional blocks use Dropout2D, which zeroes whole feature maps.
// Fully connected blocks use element-wise Dropout. Dropout is active only
// in training mode.
type RegularizedLeNet5[B tensor.Backend] struct {
	conv1   *nn.Conv2D[B]    // C1: 1 -> 6, 5x5, padding 2
	relu1   *nn.ReLU[B]      //
	drop1   *nn.Dropout2D[B] // Channel dropout after C1
	pool1   *nn.MaxPool2D[B] // S2: 2x2 subsampling
	conv2   *nn.Conv2D[B]    // C3: 6 -> 16, 5x5
	relu2   *nn.ReLU[B]      //
	drop2   *nn.Dropout2D[B] // Channel dropout after C3
	pool2   *nn.MaxPool2D[B] // S4: 2x2 subsampling
	flatten *nn.Flatten[B]   // [batch, 16, 5, 5] -> [batch, 400]
	fc1     *nn.Linear[B]    // C5: 400 -> 120
	relu3   *nn.ReLU[B]      //
	drop3   *nn.Dropout[B]   // Element dropout after C5
	fc2     *nn.Linear[B]    // F6: 120 -> 84
	relu4   *nn.ReLU[B]      //
	drop4   *nn.Dropout[B]   // Element dropout after F6
	fc3     *nn.Linear[B]    // Output: 84 -> 10
	softmax *nn.Softmax[B]   // Class probabilities
}

// NewRegularizedLeNet5 creates a new regularized LeNet-5 with
// Xavier-initialized weights.
//
// The model starts in evaluation mode; call Train before a training step.
func NewRegularizedLeNet5[B tensor.Backend](backend B) *RegularizedLeNet5[B] {
	return &RegularizedLeNet5[B]{
		conv1:   nn.NewConv2D(1, 6, 5, 5, 1, 2, true, backend),
		relu1:   nn.NewReLU[B](),
		drop1:   nn.NewDropout2D(0.5, backend),
		pool1:   nn.NewMaxPool2D(2, 2, backend),
		conv2:   nn.NewConv2D(6, 16, 5, 5, 1, 0, true, backend),
		relu2:   nn.NewReLU[B](),
		drop2:   nn.NewDropout2D(0.5, backend),
		pool2:   nn.NewMaxPool2D(2, 2, backend),
		flatten: nn.NewFlatten[B](),
		fc1:     nn.NewLinear(16*5*5, 120, backend),
		relu3:   nn.NewReLU[B](),
		drop3:   nn.NewDropout(0.5, backend),
		fc2:     nn.NewLinear(120, 84, backend),
		relu4:   nn.NewReLU[B](),
		drop4:   nn.NewDropout(0.5, backend),
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
func (m *RegularizedLeNet5[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	inputShape := input.Shape()
	if len(inputShape) != 4 {
		panic(fmt.Sprintf("RegularizedLeNet5.Forward: expected 4D input [batch, 1, 28, 28], got %dD", len(inputShape)))
	}

	x := m.conv1.Forward(input) // [batch, 6, 28, 28]
	x = m.relu1.Forward(x)
	x = m.drop1.Forward(x)
	x = m.pool1.Forward(x) // [batch, 6, 14, 14]

	x = m.conv2.Forward(x) // [batch, 16, 10, 10]
	x = m.relu2.Forward(x)
	x = m.drop2.Forward(x)
	x = m.pool2.Forward(x) // [batch, 16, 5, 5]

	x = m.flatten.Forward(x) // [batch, 400]

	x = m.fc1.Forward(x) // [batch, 120]
	x = m.relu3.Forward(x)
	x = m.drop3.Forward(x)
	x = m.fc2.Forward(x) // [batch, 84]
	x = m.relu4.Forward(x)
	x = m.drop4.Forward(x)
	x = m.fc3.Forward(x) // [batch, 10]

	return m.softmax.Forward(x)
}

// Parameters returns all trainable parameters.
func (m *RegularizedLeNet5[B]) Parameters() []*nn.Parameter[B] {
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
func (m *RegularizedLeNet5[B]) NumParameters() int {
	return countParameters(m.Parameters())
}

// Train puts the model in training mode, activating dropout.
func (m *RegularizedLeNet5[B]) Train() {
	m.setTraining(true)
}

// Eval puts the model in evaluation mode, disabling dropout.
func (m *RegularizedLeNet5[B]) Eval() {
	m.setTraining(false)
}

func (m *RegularizedLeNet5[B]) setTraining(training bool) {
	m.drop1.SetTraining(training)
	m.drop2.SetTraining(training)
	m.drop3.SetTraining(training)
	m.drop4.SetTraining(training)
}

// SeedDropout reseeds all dropout mask generators for reproducible runs.
func (m *RegularizedLeNet5[B]) SeedDropout(seed int64) {
	m.drop1.Seed(seed)
	m.drop2.Seed(seed + 1)
	m.drop3.Seed(seed + 2)
	m.drop4.Seed(seed + 3)
}

// String returns a string representation of the model architecture.
func (m *RegularizedLeNet5[B]) String() string {
	return fmt.Sprintf(`RegularizedLeNet5(
  %s
  ReLU()
  Dropout2D(p=0.5)
  %s
  %s
  ReLU()
  Dropout2D(p=0.5)
  %s
  Flatten()
  %s
  ReLU()
  Dropout(p=0.5)
  %s
  ReLU()
  Dropout(p=0.5)
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
func (m *RegularizedLeNet5[B]) StateDict() map[string]*tensor.RawTensor {
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
func (m *RegularizedLeNet5[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	return loadStateDicts(stateDict, map[string]nn.Module[B]{
		"conv1": m.conv1,
		"conv2": m.conv2,
		"fc1":   m.fc1,
		"fc2":   m.fc2,
		"fc3":   m.fc3,
	})
}
