package cpu

import (
	"github.com/smallnet-ml/smallnet/tensor"
)

// floatType covers the element types the binary kernels are instantiated
// with. Integer dtypes never reach these kernels; ops.go rejects them.
type floatType interface {
	~float32 | ~float64
}

// Inplace kernels (a op= b). Requires len(a) == len(b).

func addInplaceKernel[F floatType](a, b []F) {
	for i := range a {
		a[i] += b[i]
	}
}

func subInplaceKernel[F floatType](a, b []F) {
	for i := range a {
		a[i] -= b[i]
	}
}

func mulInplaceKernel[F floatType](a, b []F) {
	for i := range a {
		a[i] *= b[i]
	}
}

func divInplaceKernel[F floatType](a, b []F) {
	for i := range a {
		a[i] /= b[i]
	}
}

// Same-shape kernels (dst = a op b). Requires equal lengths.

func addKernel[F floatType](dst, a, b []F) {
	for i := range a {
		dst[i] = a[i] + b[i]
	}
}

func subKernel[F floatType](dst, a, b []F) {
	for i := range a {
		dst[i] = a[i] - b[i]
	}
}

func mulKernel[F floatType](dst, a, b []F) {
	for i := range a {
		dst[i] = a[i] * b[i]
	}
}

func divKernel[F floatType](dst, a, b []F) {
	for i := range a {
		dst[i] = a[i] / b[i]
	}
}

// computeBroadcastStridesForShape builds a stride table that views inShape
// through outShape. Dimensions of size 1 and left-padded dimensions get
// stride 0 so every output index maps back into the smaller input.
func computeBroadcastStridesForShape(inShape, outShape tensor.Shape) []int {
	outDim := len(outShape)
	strides := make([]int, outDim)

	offset := outDim - len(inShape)
	origStrides := inShape.ComputeStrides()

	for i := range strides {
		inIdx := i - offset
		if inIdx < 0 || inShape[inIdx] == 1 {
			continue // stays 0
		}
		strides[i] = origStrides[inIdx]
	}

	return strides
}

// computeFlatIndex decomposes a flat output index along outStrides and
// recombines the coordinates with the broadcast-adjusted input strides.
func computeFlatIndex(outIdx int, outStrides, inStrides []int) int {
	flatIdx := 0
	for i := range outStrides {
		coord := outIdx / outStrides[i]
		outIdx %= outStrides[i]
		flatIdx += coord * inStrides[i]
	}
	return flatIdx
}

// broadcastPlan holds the stride tables a broadcast kernel walks: output
// strides to decompose the flat output index, and zero-stride views of the
// two inputs.
type broadcastPlan struct {
	n          int
	outStrides []int
	aStrides   []int
	bStrides   []int
}

func newBroadcastPlan(aShape, bShape, outShape tensor.Shape) broadcastPlan {
	return broadcastPlan{
		n:          outShape.NumElements(),
		outStrides: outShape.ComputeStrides(),
		aStrides:   computeBroadcastStridesForShape(aShape, outShape),
		bStrides:   computeBroadcastStridesForShape(bShape, outShape),
	}
}

// Broadcasting kernels (dst = a op b with NumPy-style broadcasting).

func addBroadcastKernel[F floatType](dst, a, b []F, plan broadcastPlan) {
	for i := 0; i < plan.n; i++ {
		dst[i] = a[computeFlatIndex(i, plan.outStrides, plan.aStrides)] +
			b[computeFlatIndex(i, plan.outStrides, plan.bStrides)]
	}
}

func subBroadcastKernel[F floatType](dst, a, b []F, plan broadcastPlan) {
	for i := 0; i < plan.n; i++ {
		dst[i] = a[computeFlatIndex(i, plan.outStrides, plan.aStrides)] -
			b[computeFlatIndex(i, plan.outStrides, plan.bStrides)]
	}
}

func mulBroadcastKernel[F floatType](dst, a, b []F, plan broadcastPlan) {
	for i := 0; i < plan.n; i++ {
		dst[i] = a[computeFlatIndex(i, plan.outStrides, plan.aStrides)] *
			b[computeFlatIndex(i, plan.outStrides, plan.bStrides)]
	}
}

func divBroadcastKernel[F floatType](dst, a, b []F, plan broadcastPlan) {
	for i := 0; i < plan.n; i++ {
		dst[i] = a[computeFlatIndex(i, plan.outStrides, plan.aStrides)] /
			b[computeFlatIndex(i, plan.outStrides, plan.bStrides)]
	}
}

// transposeKernel permutes src's dimensions according to axes and writes the
// result into dst. dst must already have room for all elements.
func transposeKernel[F floatType](dst, src []F, shape tensor.Shape, axes []int) {
	ndim := len(shape)
	srcStrides := shape.ComputeStrides()

	dstShape := make(tensor.Shape, ndim)
	for i, ax := range axes {
		dstShape[i] = shape[ax]
	}
	dstStrides := dstShape.ComputeStrides()

	coords := make([]int, ndim)
	n := shape.NumElements()
	for i := 0; i < n; i++ {
		idx := i
		for dim := 0; dim < ndim; dim++ {
			coords[dim] = idx / srcStrides[dim]
			idx %= srcStrides[dim]
		}

		dstIdx := 0
		for dstDim, srcDim := range axes {
			dstIdx += coords[srcDim] * dstStrides[dstDim]
		}

		dst[dstIdx] = src[i]
	}
}
