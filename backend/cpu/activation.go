package cpu

import (
	"fmt"
	"math"

	"github.com/smallnet-ml/smallnet/tensor"
)

// Exp computes element-wise exponential: exp(x).
func (cpu *CPUBackend) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.elementwiseUnary("exp", x,
		func(v float32) float32 { return float32(math.Exp(float64(v))) },
		math.Exp)
}

// Log computes element-wise natural logarithm: ln(x).
func (cpu *CPUBackend) Log(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.elementwiseUnary("log", x,
		func(v float32) float32 { return float32(math.Log(float64(v))) },
		math.Log)
}

// ReLU computes element-wise rectified linear unit: max(0, x).
func (cpu *CPUBackend) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.elementwiseUnary("relu", x,
		func(v float32) float32 {
			if v > 0 {
				return v
			}
			return 0
		},
		func(v float64) float64 {
			if v > 0 {
				return v
			}
			return 0
		})
}

// Tanh computes element-wise hyperbolic tangent.
func (cpu *CPUBackend) Tanh(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.elementwiseUnary("tanh", x,
		func(v float32) float32 { return float32(math.Tanh(float64(v))) },
		math.Tanh)
}

// Sigmoid computes element-wise logistic sigmoid: 1 / (1 + exp(-x)).
func (cpu *CPUBackend) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.elementwiseUnary("sigmoid", x,
		func(v float32) float32 { return float32(1.0 / (1.0 + math.Exp(float64(-v)))) },
		func(v float64) float64 { return 1.0 / (1.0 + math.Exp(-v)) })
}

// elementwiseUnary applies a scalar function to every element of x and
// returns a new tensor with the same shape.
func (cpu *CPUBackend) elementwiseUnary(op string, x *tensor.RawTensor, f32 func(float32) float32, f64 func(float64) float64) *tensor.RawTensor {
	result, err := tensor.NewRaw(x.Shape(), x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("%s: failed to create result tensor: %v", op, err))
	}

	switch x.DType() {
	case tensor.Float32:
		src := x.AsFloat32()
		dst := result.AsFloat32()
		for i, v := range src {
			dst[i] = f32(v)
		}
	case tensor.Float64:
		src := x.AsFloat64()
		dst := result.AsFloat64()
		for i, v := range src {
			dst[i] = f64(v)
		}
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", op, x.DType()))
	}

	return result
}

// Softmax computes the softmax along the given dimension.
//
// softmax(x)_i = exp(x_i - max(x)) / sum_j exp(x_j - max(x))
//
// Subtracting the per-slice maximum before exponentiation keeps the
// intermediate values in a safe range for large logits.
func (cpu *CPUBackend) Softmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	ndim := len(shape)

	if dim < 0 {
		dim += ndim
	}
	if dim < 0 || dim >= ndim {
		panic(fmt.Sprintf("softmax: dimension %d out of range for %dD tensor", dim, ndim))
	}

	result, err := tensor.NewRaw(shape, x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("softmax: failed to create result tensor: %v", err))
	}

	// Iterate over all slices along dim. outerSize counts the slices before
	// dim, innerSize the stride within one step along dim.
	dimSize := shape[dim]
	outerSize := 1
	for i := 0; i < dim; i++ {
		outerSize *= shape[i]
	}
	innerSize := 1
	for i := dim + 1; i < ndim; i++ {
		innerSize *= shape[i]
	}

	switch x.DType() {
	case tensor.Float32:
		softmaxFloat32(result.AsFloat32(), x.AsFloat32(), outerSize, dimSize, innerSize)
	case tensor.Float64:
		softmaxFloat64(result.AsFloat64(), x.AsFloat64(), outerSize, dimSize, innerSize)
	default:
		panic(fmt.Sprintf("softmax: unsupported dtype %s", x.DType()))
	}

	return result
}

func softmaxFloat32(dst, src []float32, outerSize, dimSize, innerSize int) {
	for outer := 0; outer < outerSize; outer++ {
		for inner := 0; inner < innerSize; inner++ {
			base := outer*dimSize*innerSize + inner

			maxVal := float32(math.Inf(-1))
			for d := 0; d < dimSize; d++ {
				v := src[base+d*innerSize]
				if v > maxVal {
					maxVal = v
				}
			}

			sum := float32(0)
			for d := 0; d < dimSize; d++ {
				e := float32(math.Exp(float64(src[base+d*innerSize] - maxVal)))
				dst[base+d*innerSize] = e
				sum += e
			}

			for d := 0; d < dimSize; d++ {
				dst[base+d*innerSize] /= sum
			}
		}
	}
}

func softmaxFloat64(dst, src []float64, outerSize, dimSize, innerSize int) {
	for outer := 0; outer < outerSize; outer++ {
		for inner := 0; inner < innerSize; inner++ {
			base := outer*dimSize*innerSize + inner

			maxVal := math.Inf(-1)
			for d := 0; d < dimSize; d++ {
				v := src[base+d*innerSize]
				if v > maxVal {
					maxVal = v
				}
			}

			sum := float64(0)
			for d := 0; d < dimSize; d++ {
				e := math.Exp(src[base+d*innerSize] - maxVal)
				dst[base+d*innerSize] = e
				sum += e
			}

			for d := 0; d < dimSize; d++ {
				dst[base+d*innerSize] /= sum
			}
		}
	}
}
