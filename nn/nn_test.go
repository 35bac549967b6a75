package nn_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnet-ml/smallnet/backend/cpu"
	"github.com/smallnet-ml/smallnet/nn"
	"github.com/smallnet-ml/smallnet/tensor"
)

// Backend is the backend type used throughout the tests.
type Backend = *cpu.CPUBackend

func TestParameter(t *testing.T) {
	backend := cpu.New()

	data, err := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{3}, backend)
	require.NoError(t, err)
	param := nn.NewParameter("test_param", data)

	assert.Equal(t, "test_param", param.Name())
	assert.Equal(t, data, param.Tensor())
	assert.Equal(t, 3, param.NumElements())
	assert.Nil(t, param.Grad())

	grad, err := tensor.FromSlice([]float32{0.1, 0.2, 0.3}, tensor.Shape{3}, backend)
	require.NoError(t, err)
	param.SetGrad(grad)
	assert.Equal(t, grad, param.Grad())

	param.ZeroGrad()
	assert.Nil(t, param.Grad())
}

func TestLinearCreation(t *testing.T) {
	backend := cpu.New()

	layer := nn.NewLinear(10, 5, backend)

	assert.Equal(t, 10, layer.InFeatures())
	assert.Equal(t, 5, layer.OutFeatures())
	assert.True(t, layer.Weight().Tensor().Shape().Equal(tensor.Shape{5, 10}))
	assert.True(t, layer.Bias().Tensor().Shape().Equal(tensor.Shape{5}))

	// Bias starts at zero
	for _, v := range layer.Bias().Tensor().Data() {
		assert.Zero(t, v)
	}

	assert.Len(t, layer.Parameters(), 2)
}

func TestLinearForwardKnownValues(t *testing.T) {
	backend := cpu.New()

	layer := nn.NewLinear(2, 2, backend)

	// W = [[1, 2], [3, 4]], b = [10, 20]
	copy(layer.Weight().Tensor().Data(), []float32{1, 2, 3, 4})
	copy(layer.Bias().Tensor().Data(), []float32{10, 20})

	input, err := tensor.FromSlice([]float32{1, 1, 2, 3}, tensor.Shape{2, 2}, backend)
	require.NoError(t, err)

	output := layer.Forward(input)
	require.True(t, output.Shape().Equal(tensor.Shape{2, 2}))

	// y = x @ W.T + b
	// row 0: [1*1+1*2+10, 1*3+1*4+20] = [13, 27]
	// row 1: [2*1+3*2+10, 2*3+3*4+20] = [18, 38]
	want := []float32{13, 27, 18, 38}
	assert.Equal(t, want, output.Data())
}

func TestLinearStateDictRoundTrip(t *testing.T) {
	backend := cpu.New()

	src := nn.NewLinear(4, 3, backend)
	dst := nn.NewLinear(4, 3, backend)

	require.NoError(t, dst.LoadStateDict(src.StateDict()))

	assert.Equal(t, src.Weight().Tensor().Data(), dst.Weight().Tensor().Data())
	assert.Equal(t, src.Bias().Tensor().Data(), dst.Bias().Tensor().Data())
}

func TestLinearLoadStateDictShapeMismatch(t *testing.T) {
	backend := cpu.New()

	layer := nn.NewLinear(4, 3, backend)
	wrong, err := tensor.NewRaw(tensor.Shape{3, 5}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)

	err = layer.LoadStateDict(map[string]*tensor.RawTensor{"weight": wrong})
	assert.Error(t, err)
}

func TestConv2DForwardShape(t *testing.T) {
	backend := cpu.New()

	conv := nn.NewConv2D(1, 6, 5, 5, 1, 2, true, backend)

	input := tensor.Zeros[float32](tensor.Shape{2, 1, 28, 28}, backend)
	output := conv.Forward(input)

	assert.True(t, output.Shape().Equal(tensor.Shape{2, 6, 28, 28}),
		"output shape = %v", output.Shape())

	size := conv.ComputeOutputSize(28, 28)
	assert.Equal(t, [2]int{28, 28}, size)
}

func TestConv2DParameterShapes(t *testing.T) {
	backend := cpu.New()

	conv := nn.NewConv2D(6, 16, 5, 5, 1, 0, true, backend)

	assert.True(t, conv.Weight().Tensor().Shape().Equal(tensor.Shape{16, 6, 5, 5}))
	assert.True(t, conv.Bias().Tensor().Shape().Equal(tensor.Shape{16}))
	assert.Len(t, conv.Parameters(), 2)
}

func TestPoolingLayers(t *testing.T) {
	backend := cpu.New()

	input, err := tensor.FromSlice([]float32{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
		13, 14, 15, 16,
	}, tensor.Shape{1, 1, 4, 4}, backend)
	require.NoError(t, err)

	maxPool := nn.NewMaxPool2D(2, 2, backend)
	maxOut := maxPool.Forward(input)
	assert.Equal(t, []float32{6, 8, 14, 16}, maxOut.Data())
	assert.Empty(t, maxPool.Parameters())

	avgPool := nn.NewAvgPool2D(2, 2, backend)
	avgOut := avgPool.Forward(input)
	assert.Equal(t, []float32{3.5, 5.5, 11.5, 13.5}, avgOut.Data())
	assert.Empty(t, avgPool.Parameters())
}

func TestFlatten(t *testing.T) {
	backend := cpu.New()

	input := tensor.Zeros[float32](tensor.Shape{2, 16, 5, 5}, backend)
	flatten := nn.NewFlatten[Backend]()

	output := flatten.Forward(input)
	assert.True(t, output.Shape().Equal(tensor.Shape{2, 400}),
		"output shape = %v", output.Shape())
}

func TestActivations(t *testing.T) {
	backend := cpu.New()

	input, err := tensor.FromSlice([]float32{-1, 0, 1}, tensor.Shape{3}, backend)
	require.NoError(t, err)

	relu := nn.NewReLU[Backend]()
	assert.Equal(t, []float32{0, 0, 1}, relu.Forward(input).Data())

	tanh := nn.NewTanh[Backend]()
	tanhOut := tanh.Forward(input).Data()
	assert.InDelta(t, -0.7616, tanhOut[0], 1e-4)
	assert.InDelta(t, 0.0, tanhOut[1], 1e-6)

	sigmoid := nn.NewSigmoid[Backend]()
	sigOut := sigmoid.Forward(input).Data()
	assert.InDelta(t, 0.5, sigOut[1], 1e-6)
}

func TestSoftmaxModule(t *testing.T) {
	backend := cpu.New()

	input, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, backend)
	require.NoError(t, err)

	softmax := nn.NewSoftmax[Backend](1)
	output := softmax.Forward(input)

	data := output.Data()
	for row := 0; row < 2; row++ {
		sum := float32(0)
		for col := 0; col < 3; col++ {
			sum += data[row*3+col]
		}
		assert.InDelta(t, 1.0, sum, 1e-5, "row %d", row)
	}
}

func TestDropoutEvalIsIdentity(t *testing.T) {
	backend := cpu.New()

	dropout := nn.NewDropout(0.5, backend)
	input := tensor.Randn[float32](tensor.Shape{10, 10}, backend)

	// Starts in eval mode
	output := dropout.Forward(input)
	assert.Equal(t, input.Data(), output.Data())
}

func TestDropoutTrainingMask(t *testing.T) {
	backend := cpu.New()

	dropout := nn.NewDropout(0.5, backend)
	dropout.Seed(42)
	dropout.SetTraining(true)

	input := tensor.Ones[float32](tensor.Shape{100, 100}, backend)
	output := dropout.Forward(input)

	zeros := 0
	for _, v := range output.Data() {
		switch v {
		case 0:
			zeros++
		case 2:
			// Survivors are scaled by 1/(1-p) = 2
		default:
			t.Fatalf("unexpected dropout output value %f", v)
		}
	}

	// With p=0.5 over 10,000 elements the zero count concentrates
	// tightly around 5,000.
	assert.Greater(t, zeros, 4500)
	assert.Less(t, zeros, 5500)
}

func TestDropout2DMasksWholeChannels(t *testing.T) {
	backend := cpu.New()

	dropout := nn.NewDropout2D(0.5, backend)
	dropout.Seed(7)
	dropout.SetTraining(true)

	input := tensor.Ones[float32](tensor.Shape{4, 8, 3, 3}, backend)
	output := dropout.Forward(input)

	data := output.Data()
	dropped := 0
	for nc := 0; nc < 4*8; nc++ {
		channel := data[nc*9 : (nc+1)*9]

		// Every element of a channel shares the same fate.
		first := channel[0]
		for _, v := range channel {
			assert.Equal(t, first, v, "channel %d not uniformly masked", nc)
		}
		if first == 0 {
			dropped++
		} else {
			assert.Equal(t, float32(2), first)
		}
	}

	assert.Greater(t, dropped, 0, "expected at least one dropped channel")
	assert.Less(t, dropped, 32, "expected at least one surviving channel")
}

func TestSequentialForward(t *testing.T) {
	backend := cpu.New()

	seq := nn.NewSequential[Backend](
		nn.NewLinear(4, 3, backend),
		nn.NewReLU[Backend](),
		nn.NewLinear(3, 2, backend),
	)

	assert.Equal(t, 3, seq.Len())
	assert.Len(t, seq.Parameters(), 4)

	input := tensor.Randn[float32](tensor.Shape{5, 4}, backend)
	output := seq.Forward(input)
	assert.True(t, output.Shape().Equal(tensor.Shape{5, 2}),
		"output shape = %v", output.Shape())
}

func TestSequentialSetTrainingPropagates(t *testing.T) {
	backend := cpu.New()

	dropout := nn.NewDropout(0.5, backend)
	seq := nn.NewSequential[Backend](
		nn.NewLinear(4, 4, backend),
		dropout,
	)

	seq.SetTraining(true)
	assert.True(t, dropout.Training())

	seq.SetTraining(false)
	assert.False(t, dropout.Training())
}

func TestSequentialStateDictRoundTrip(t *testing.T) {
	backend := cpu.New()

	src := nn.NewSequential[Backend](
		nn.NewLinear(4, 3, backend),
		nn.NewReLU[Backend](),
		nn.NewLinear(3, 2, backend),
	)
	dst := nn.NewSequential[Backend](
		nn.NewLinear(4, 3, backend),
		nn.NewReLU[Backend](),
		nn.NewLinear(3, 2, backend),
	)

	stateDict := src.StateDict()
	assert.Len(t, stateDict, 4) // two linear layers, weight + bias each

	require.NoError(t, dst.LoadStateDict(stateDict))

	input := tensor.Randn[float32](tensor.Shape{2, 4}, backend)
	assert.Equal(t, src.Forward(input).Data(), dst.Forward(input).Data())
}

func TestXavierBounds(t *testing.T) {
	backend := cpu.New()

	fanIn, fanOut := 100, 50
	weights := nn.Xavier(fanIn, fanOut, tensor.Shape{50, 100}, backend)

	// bound = sqrt(6 / 150) ≈ 0.2
	bound := float32(0.2)
	for _, v := range weights.Data() {
		assert.LessOrEqual(t, v, bound+1e-4)
		assert.GreaterOrEqual(t, v, -bound-1e-4)
	}
}

func TestNLLLoss(t *testing.T) {
	backend := cpu.New()

	// Perfect predictions give near-zero loss
	probs, err := tensor.FromSlice([]float32{
		1, 0, 0,
		0, 0, 1,
	}, tensor.Shape{2, 3}, backend)
	require.NoError(t, err)

	targets, err := tensor.FromSlice([]int32{0, 2}, tensor.Shape{2}, backend)
	require.NoError(t, err)

	criterion := nn.NewNLLLoss(backend)
	loss := criterion.Forward(probs, targets)
	assert.InDelta(t, 0.0, loss.Item(), 1e-5)

	// Uniform predictions give -log(1/3)
	uniform, err := tensor.FromSlice([]float32{
		1.0 / 3, 1.0 / 3, 1.0 / 3,
		1.0 / 3, 1.0 / 3, 1.0 / 3,
	}, tensor.Shape{2, 3}, backend)
	require.NoError(t, err)

	loss = criterion.Forward(uniform, targets)
	assert.InDelta(t, 1.0986, loss.Item(), 1e-4)
}

func TestAccuracy(t *testing.T) {
	backend := cpu.New()

	probs, err := tensor.FromSlice([]float32{
		0.8, 0.1, 0.1, // predicts 0
		0.2, 0.7, 0.1, // predicts 1
		0.1, 0.2, 0.7, // predicts 2
		0.5, 0.3, 0.2, // predicts 0
	}, tensor.Shape{4, 3}, backend)
	require.NoError(t, err)

	targets, err := tensor.FromSlice([]int32{0, 1, 2, 1}, tensor.Shape{4}, backend)
	require.NoError(t, err)

	acc := nn.Accuracy(probs, targets)
	assert.InDelta(t, 0.75, acc, 1e-9)
}
