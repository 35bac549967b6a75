package cpu

import (
	"fmt"
	"math"

	"github.com/smallnet-ml/smallnet/tensor"
)

// MaxPool2D performs 2D max pooling.
//
// Input shape: [batch, channels, height, width]
// Output shape: [batch, channels, out_h, out_w]
//
// For each window, takes the maximum value. Windows never cross the input
// boundary (no padding).
func (cpu *CPUBackend) MaxPool2D(input *tensor.RawTensor, kernelSize, stride int) *tensor.RawTensor {
	output := cpu.newPoolOutput("maxpool2d", input, kernelSize, stride)

	switch input.DType() {
	case tensor.Float32:
		maxPool2DFloat32(output, input, kernelSize, stride)
	case tensor.Float64:
		maxPool2DFloat64(output, input, kernelSize, stride)
	default:
		panic(fmt.Sprintf("maxpool2d: unsupported dtype %s", input.DType()))
	}

	return output
}

// AvgPool2D performs 2D average pooling.
//
// Input shape: [batch, channels, height, width]
// Output shape: [batch, channels, out_h, out_w]
//
// For each window, takes the mean value. Windows never cross the input
// boundary (no padding), so the divisor is always kernelSize*kernelSize.
func (cpu *CPUBackend) AvgPool2D(input *tensor.RawTensor, kernelSize, stride int) *tensor.RawTensor {
	output := cpu.newPoolOutput("avgpool2d", input, kernelSize, stride)

	switch input.DType() {
	case tensor.Float32:
		avgPool2DFloat32(output, input, kernelSize, stride)
	case tensor.Float64:
		avgPool2DFloat64(output, input, kernelSize, stride)
	default:
		panic(fmt.Sprintf("avgpool2d: unsupported dtype %s", input.DType()))
	}

	return output
}

// newPoolOutput validates pooling arguments and allocates the output tensor.
func (cpu *CPUBackend) newPoolOutput(op string, input *tensor.RawTensor, kernelSize, stride int) *tensor.RawTensor {
	inputShape := input.Shape()

	if len(inputShape) != 4 {
		panic(fmt.Sprintf("%s: input must be 4D [N,C,H,W], got %dD", op, len(inputShape)))
	}
	if kernelSize <= 0 {
		panic(fmt.Sprintf("%s: kernel size must be positive, got %d", op, kernelSize))
	}
	if stride <= 0 {
		panic(fmt.Sprintf("%s: stride must be positive, got %d", op, stride))
	}

	N := inputShape[0]
	C := inputShape[1]
	H := inputShape[2]
	W := inputShape[3]

	// out_h = (H - kernelSize) / stride + 1
	// out_w = (W - kernelSize) / stride + 1
	HOut := (H-kernelSize)/stride + 1
	WOut := (W-kernelSize)/stride + 1

	if HOut <= 0 || WOut <= 0 {
		panic(fmt.Sprintf("%s: invalid output dimensions: out_h=%d, out_w=%d (kernel %d larger than input %dx%d?)",
			op, HOut, WOut, kernelSize, H, W))
	}

	output, err := tensor.NewRaw(tensor.Shape{N, C, HOut, WOut}, input.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("%s: failed to create output tensor: %v", op, err))
	}

	return output
}

func maxPool2DFloat32(output, input *tensor.RawTensor, kernelSize, stride int) {
	inputData := input.AsFloat32()
	outputData := output.AsFloat32()

	inputShape := input.Shape()
	outputShape := output.Shape()

	N := inputShape[0]
	C := inputShape[1]
	H := inputShape[2]
	W := inputShape[3]
	HOut := outputShape[2]
	WOut := outputShape[3]

	for n := 0; n < N; n++ {
		for c := 0; c < C; c++ {
			for outH := 0; outH < HOut; outH++ {
				for outW := 0; outW < WOut; outW++ {
					hStart := outH * stride
					wStart := outW * stride

					maxVal := float32(math.Inf(-1))
					for kh := 0; kh < kernelSize; kh++ {
						for kw := 0; kw < kernelSize; kw++ {
							h := hStart + kh
							w := wStart + kw
							val := inputData[n*C*H*W+c*H*W+h*W+w]
							if val > maxVal {
								maxVal = val
							}
						}
					}

					outputData[n*C*HOut*WOut+c*HOut*WOut+outH*WOut+outW] = maxVal
				}
			}
		}
	}
}

func maxPool2DFloat64(output, input *tensor.RawTensor, kernelSize, stride int) {
	inputData := input.AsFloat64()
	outputData := output.AsFloat64()

	inputShape := input.Shape()
	outputShape := output.Shape()

	N := inputShape[0]
	C := inputShape[1]
	H := inputShape[2]
	W := inputShape[3]
	HOut := outputShape[2]
	WOut := outputShape[3]

	for n := 0; n < N; n++ {
		for c := 0; c < C; c++ {
			for outH := 0; outH < HOut; outH++ {
				for outW := 0; outW < WOut; outW++ {
					hStart := outH * stride
					wStart := outW * stride

					maxVal := math.Inf(-1)
					for kh := 0; kh < kernelSize; kh++ {
						for kw := 0; kw < kernelSize; kw++ {
							h := hStart + kh
							w := wStart + kw
							val := inputData[n*C*H*W+c*H*W+h*W+w]
							if val > maxVal {
								maxVal = val
							}
						}
					}

					outputData[n*C*HOut*WOut+c*HOut*WOut+outH*WOut+outW] = maxVal
				}
			}
		}
	}
}

func avgPool2DFloat32(output, input *tensor.RawTensor, kernelSize, stride int) {
	inputData := input.AsFloat32()
	outputData := output.AsFloat32()

	inputShape := input.Shape()
	outputShape := output.Shape()

	N := inputShape[0]
	C := inputShape[1]
	H := inputShape[2]
	W := inputShape[3]
	HOut := outputShape[2]
	WOut := outputShape[3]

	windowSize := float32(kernelSize * kernelSize)

	for n := 0; n < N; n++ {
		for c := 0; c < C; c++ {
			for outH := 0; outH < HOut; outH++ {
				for outW := 0; outW < WOut; outW++ {
					hStart := outH * stride
					wStart := outW * stride

					sum := float32(0)
					for kh := 0; kh < kernelSize; kh++ {
						for kw := 0; kw < kernelSize; kw++ {
							h := hStart + kh
							w := wStart + kw
							sum += inputData[n*C*H*W+c*H*W+h*W+w]
						}
					}

					outputData[n*C*HOut*WOut+c*HOut*WOut+outH*WOut+outW] = sum / windowSize
				}
			}
		}
	}
}

func avgPool2DFloat64(output, input *tensor.RawTensor, kernelSize, stride int) {
	inputData := input.AsFloat64()
	outputData := output.AsFloat64()

	inputShape := input.Shape()
	outputShape := output.Shape()

	N := inputShape[0]
	C := inputShape[1]
	H := inputShape[2]
	W := inputShape[3]
	HOut := outputShape[2]
	WOut := outputShape[3]

	windowSize := float64(kernelSize * kernelSize)

	for n := 0; n < N; n++ {
		for c := 0; c < C; c++ {
			for outH := 0; outH < HOut; outH++ {
				for outW := 0; outW < WOut; outW++ {
					hStart := outH * stride
					wStart := outW * stride

					sum := float64(0)
					for kh := 0; kh < kernelSize; kh++ {
						for kw := 0; kw < kernelSize; kw++ {
							h := hStart + kh
							w := wStart + kw
							sum += inputData[n*C*H*W+c*H*W+h*W+w]
						}
					}

					outputData[n*C*HOut*WOut+c*HOut*WOut+outH*WOut+outW] = sum / windowSize
				}
			}
		}
	}
}
