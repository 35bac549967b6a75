package model

import (
	"fmt"

	"github.com/smallnet-ml/smallnet/nn"
	"github.com/smallnet-ml/smallnet/tensor"
)

// CustomMLP is a deep fully connected classifier sized to match LeNet-5's
// parameter count.
//
// Architecture:
//
//	Input: [batch, 1, 28, 28], flattened to [batch, 784]
//	L1: Linear 784 → 64, Dropout(0.5), ReLU
//	L2: Linear 64 → 64,  Dropout(0.5), ReLU
//	L3: Linear 64 → 64,  Dropout(0.5), ReLU
//	L4: Linear 64 → 32,  Dropout(0.5), ReLU
//	L5: Linear 32 → 16,  Dropout(0.5), ReLU
//	L6: Linear 16 → 16,  Dropout(0.5), ReLU
//	L7: Linear 16 → 10,  Dropout(0.5), ReLU
//	L8: Linear 10 → 10
//	Softmax(dim=1)
//
// Total parameters: 61,720
// (50,240 + 4,160 + 4,160 + 2,080 + 528 + 272 + 170 + 110)
//
// Dropout is active only in training mode; in evaluation mode the forward
// pass is deterministic.
type CustomMLP[B tensor.Backend] struct {
	flatten  *nn.Flatten[B]
	layers   *nn.Sequential[B] // L1..L8 plus softmax
	linears  []*nn.Linear[B]   // parameter-carrying layers in order
	dropouts []*nn.Dropout[B]  // stochastic layers in order
}

// NewCustomMLP creates a new CustomMLP with Xavier-initialized weights.
//
// The model starts in evaluation mode; call Train before a training step.
func NewCustomMLP[B tensor.Backend](backend B) *CustomMLP[B] {
	sizes := [][2]int{
		{28 * 28, 64}, // L1
		{64, 64},      // L2
		{64, 64},      // L3
		{64, 32},      // L4
		{32, 16},      // L5
		{16, 16},      // L6
		{16, 10},      // L7
	}

	seq := nn.NewSequential[B]()
	linears := make([]*nn.Linear[B], 0, 8)
	dropouts := make([]*nn.Dropout[B], 0, 7)

	for _, s := range sizes {
		linear := nn.NewLinear(s[0], s[1], backend)
		linears = append(linears, linear)
		dropout := nn.NewDropout(0.5, backend)
		dropouts = append(dropouts, dropout)

		seq.Add(linear)
		seq.Add(dropout)
		seq.Add(nn.NewReLU[B]())
	}

	// L8: output projection with softmax, no dropout
	out := nn.NewLinear(10, 10, backend)
	linears = append(linears, out)
	seq.Add(out)
	seq.Add(nn.NewSoftmax[B](1))

	return &CustomMLP[B]{
		flatten:  nn.NewFlatten[B](),
		layers:   seq,
		linears:  linears,
		dropouts: dropouts,
	}
}

// Forward computes class probabilities for a batch of images.
//
// Parameters:
//   - input: Batch of images with shape [batch_size, 1, 28, 28]
//
// Returns probabilities with shape [batch_size, 10]; each row sums to 1.
func (m *CustomMLP[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	inputShape := input.Shape()
	if len(inputShape) != 4 {
		panic(fmt.Sprintf("CustomMLP.Forward: expected 4D input [batch, 1, 28, 28], got %dD", len(inputShape)))
	}

	x := m.flatten.Forward(input) // [batch, 784]
	return m.layers.Forward(x)    // [batch, 10]
}

// Parameters returns all trainable parameters.
func (m *CustomMLP[B]) Parameters() []*nn.Parameter[B] {
	return m.layers.Parameters()
}

// NumParameters returns the total number of trainable scalar values.
func (m *CustomMLP[B]) NumParameters() int {
	return countParameters(m.Parameters())
}

// Train puts the model in training mode, activating dropout.
func (m *CustomMLP[B]) Train() {
	m.layers.SetTraining(true)
}

// Eval puts the model in evaluation mode, disabling dropout.
func (m *CustomMLP[B]) Eval() {
	m.layers.SetTraining(false)
}

// SeedDropout reseeds all dropout mask generators for reproducible runs.
func (m *CustomMLP[B]) SeedDropout(seed int64) {
	for i, dropout := range m.dropouts {
		dropout.Seed(seed + int64(i))
	}
}

// String returns a string representation of the model architecture.
func (m *CustomMLP[B]) String() string {
	s := "CustomMLP(\n  Flatten()\n"
	for i, linear := range m.linears {
		s += "  " + linear.String() + "\n"
		if i < len(m.linears)-1 {
			s += "  Dropout(p=0.5)\n  ReLU()\n"
		}
	}
	s += "  Softmax(dim=1)\n)"
	return s
}

// StateDict returns all parameters keyed by sequential position
// (e.g., "0.weight" for L1, "21.weight" for L8).
func (m *CustomMLP[B]) StateDict() map[string]*tensor.RawTensor {
	return m.layers.StateDict()
}

// LoadStateDict loads parameters from a state dictionary produced by
// StateDict.
func (m *CustomMLP[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	return m.layers.LoadStateDict(stateDict)
}
