package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnet-ml/smallnet/backend/cpu"
	"github.com/smallnet-ml/smallnet/model"
	"github.com/smallnet-ml/smallnet/tensor"
)

// Backend is the backend type used throughout the tests.
type Backend = *cpu.CPUBackend

// newModels builds one instance of each architecture.
func newModels(backend Backend) map[string]model.Model[Backend] {
	return map[string]model.Model[Backend]{
		"LeNet5":            model.NewLeNet5(backend),
		"CustomMLP":         model.NewCustomMLP(backend),
		"RegularizedLeNet5": model.NewRegularizedLeNet5(backend),
	}
}

func TestParameterCounts(t *testing.T) {
	backend := cpu.New()

	// All three architectures are sized to roughly 61,700 parameters so
	// their capacity is directly comparable.
	tests := []struct {
		name string
		net  model.Model[Backend]
		want int
	}{
		{"LeNet5", model.NewLeNet5(backend), 61706},
		{"CustomMLP", model.NewCustomMLP(backend), 61720},
		{"RegularizedLeNet5", model.NewRegularizedLeNet5(backend), 61706},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.net.NumParameters())
		})
	}
}

func TestLeNet5LayerParameterBreakdown(t *testing.T) {
	backend := cpu.New()
	net := model.NewLeNet5(backend)

	// C1: (5*5*1+1)*6, C3: (5*5*6+1)*16, C5: (400+1)*120,
	// F6: (120+1)*84, OUTPUT: (84+1)*10
	want := []int{150, 6, 2400, 16, 48000, 120, 10080, 84, 840, 10}

	params := net.Parameters()
	require.Len(t, params, len(want))
	for i, p := range params {
		assert.Equal(t, want[i], p.NumElements(), "parameter %d (%s)", i, p.Name())
	}
}

func TestForwardOutputShape(t *testing.T) {
	backend := cpu.New()

	input := tensor.Randn[float32](tensor.Shape{3, 1, 28, 28}, backend)

	for name, net := range newModels(backend) {
		t.Run(name, func(t *testing.T) {
			net.Eval()
			output := net.Forward(input)
			assert.True(t, output.Shape().Equal(tensor.Shape{3, 10}),
				"output shape = %v", output.Shape())
		})
	}
}

func TestOutputRowsSumToOne(t *testing.T) {
	backend := cpu.New()

	input := tensor.Randn[float32](tensor.Shape{4, 1, 28, 28}, backend)

	for name, net := range newModels(backend) {
		t.Run(name+"/eval", func(t *testing.T) {
			net.Eval()
			assertRowsSumToOne(t, net.Forward(input))
		})

		t.Run(name+"/train", func(t *testing.T) {
			net.Train()
			assertRowsSumToOne(t, net.Forward(input))
			net.Eval()
		})
	}
}

func assertRowsSumToOne(t *testing.T, output *tensor.Tensor[float32, Backend]) {
	t.Helper()

	shape := output.Shape()
	data := output.Data()

	for row := 0; row < shape[0]; row++ {
		sum := float64(0)
		for col := 0; col < shape[1]; col++ {
			v := data[row*shape[1]+col]
			assert.GreaterOrEqual(t, v, float32(0), "row %d col %d", row, col)
			assert.LessOrEqual(t, v, float32(1), "row %d col %d", row, col)
			sum += float64(v)
		}
		assert.InDelta(t, 1.0, sum, 1e-4, "row %d", row)
	}
}

func TestEvalForwardIsDeterministic(t *testing.T) {
	backend := cpu.New()

	input := tensor.Randn[float32](tensor.Shape{2, 1, 28, 28}, backend)

	for name, net := range newModels(backend) {
		t.Run(name, func(t *testing.T) {
			net.Eval()
			first := net.Forward(input).Data()
			second := net.Forward(input).Data()
			assert.Equal(t, first, second)
		})
	}
}

func TestTrainForwardIsStochastic(t *testing.T) {
	backend := cpu.New()

	input := tensor.Randn[float32](tensor.Shape{2, 1, 28, 28}, backend)

	// Only the dropout-carrying architectures are stochastic in training
	// mode; LeNet5 stays deterministic.
	stochastic := map[string]model.Model[Backend]{
		"CustomMLP":         model.NewCustomMLP(backend),
		"RegularizedLeNet5": model.NewRegularizedLeNet5(backend),
	}

	for name, net := range stochastic {
		t.Run(name, func(t *testing.T) {
			net.Train()
			first := net.Forward(input).Data()
			second := net.Forward(input).Data()
			assert.NotEqual(t, first, second, "two training forwards should use different dropout masks")
		})
	}

	t.Run("LeNet5", func(t *testing.T) {
		net := model.NewLeNet5(backend)
		net.Train()
		first := net.Forward(input).Data()
		second := net.Forward(input).Data()
		assert.Equal(t, first, second)
	})
}

func TestZeroInputGivesUniformProbabilities(t *testing.T) {
	backend := cpu.New()

	// With zero input and zero-initialized biases every logit is zero,
	// so softmax yields the uniform distribution.
	input := tensor.Zeros[float32](tensor.Shape{4, 1, 28, 28}, backend)

	for name, net := range newModels(backend) {
		t.Run(name, func(t *testing.T) {
			net.Eval()
			output := net.Forward(input)

			for i, v := range output.Data() {
				assert.InDelta(t, 0.1, v, 1e-5, "element %d", i)
			}
		})
	}
}

func TestStateDictRoundTrip(t *testing.T) {
	backend := cpu.New()

	input := tensor.Randn[float32](tensor.Shape{2, 1, 28, 28}, backend)

	tests := []struct {
		name string
		src  model.Model[Backend]
		dst  model.Model[Backend]
	}{
		{"LeNet5", model.NewLeNet5(backend), model.NewLeNet5(backend)},
		{"CustomMLP", model.NewCustomMLP(backend), model.NewCustomMLP(backend)},
		{"RegularizedLeNet5", model.NewRegularizedLeNet5(backend), model.NewRegularizedLeNet5(backend)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.src.Eval()
			tt.dst.Eval()

			// Fresh models have different random weights
			srcOut := tt.src.Forward(input).Data()
			dstOut := tt.dst.Forward(input).Data()
			assert.NotEqual(t, srcOut, dstOut)

			require.NoError(t, tt.dst.LoadStateDict(tt.src.StateDict()))

			assert.Equal(t, tt.src.Forward(input).Data(), tt.dst.Forward(input).Data())
		})
	}
}

func TestLoadStateDictRejectsMissingKeys(t *testing.T) {
	backend := cpu.New()

	net := model.NewLeNet5(backend)
	err := net.LoadStateDict(map[string]*tensor.RawTensor{})
	assert.Error(t, err)
}

func TestModelString(t *testing.T) {
	backend := cpu.New()

	for name, net := range newModels(backend) {
		t.Run(name, func(t *testing.T) {
			s, ok := net.(interface{ String() string })
			require.True(t, ok)
			assert.Contains(t, s.String(), "Softmax(dim=1)")
		})
	}
}
