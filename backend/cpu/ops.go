package cpu

import (
	"github.com/smallnet-ml/smallnet/tensor"
)

// The binary-op kernels only cover float dtypes: every model tensor is
// float32, and float64 is kept for parity with the math helpers.

// addInplace performs inplace addition (a += b).
// Requires: a.Shape().Equal(b.Shape()) && a.IsUnique().
func addInplace(a, b *tensor.RawTensor) {
	switch a.DType() {
	case tensor.Float32:
		addInplaceKernel(a.AsFloat32(), b.AsFloat32())
	case tensor.Float64:
		addInplaceKernel(a.AsFloat64(), b.AsFloat64())
	default:
		panic("addInplace: unsupported dtype")
	}
}

func subInplace(a, b *tensor.RawTensor) {
	switch a.DType() {
	case tensor.Float32:
		subInplaceKernel(a.AsFloat32(), b.AsFloat32())
	case tensor.Float64:
		subInplaceKernel(a.AsFloat64(), b.AsFloat64())
	default:
		panic("subInplace: unsupported dtype")
	}
}

func mulInplace(a, b *tensor.RawTensor) {
	switch a.DType() {
	case tensor.Float32:
		mulInplaceKernel(a.AsFloat32(), b.AsFloat32())
	case tensor.Float64:
		mulInplaceKernel(a.AsFloat64(), b.AsFloat64())
	default:
		panic("mulInplace: unsupported dtype")
	}
}

func divInplace(a, b *tensor.RawTensor) {
	switch a.DType() {
	case tensor.Float32:
		divInplaceKernel(a.AsFloat32(), b.AsFloat32())
	case tensor.Float64:
		divInplaceKernel(a.AsFloat64(), b.AsFloat64())
	default:
		panic("divInplace: unsupported dtype")
	}
}

// addVectorized performs same-shape addition: result = a + b.
// Requires: a.Shape().Equal(b.Shape()).
func addVectorized(result, a, b *tensor.RawTensor) {
	switch a.DType() {
	case tensor.Float32:
		addKernel(result.AsFloat32(), a.AsFloat32(), b.AsFloat32())
	case tensor.Float64:
		addKernel(result.AsFloat64(), a.AsFloat64(), b.AsFloat64())
	default:
		panic("addVectorized: unsupported dtype")
	}
}

func subVectorized(result, a, b *tensor.RawTensor) {
	switch a.DType() {
	case tensor.Float32:
		subKernel(result.AsFloat32(), a.AsFloat32(), b.AsFloat32())
	case tensor.Float64:
		subKernel(result.AsFloat64(), a.AsFloat64(), b.AsFloat64())
	default:
		panic("subVectorized: unsupported dtype")
	}
}

func mulVectorized(result, a, b *tensor.RawTensor) {
	switch a.DType() {
	case tensor.Float32:
		mulKernel(result.AsFloat32(), a.AsFloat32(), b.AsFloat32())
	case tensor.Float64:
		mulKernel(result.AsFloat64(), a.AsFloat64(), b.AsFloat64())
	default:
		panic("mulVectorized: unsupported dtype")
	}
}

func divVectorized(result, a, b *tensor.RawTensor) {
	switch a.DType() {
	case tensor.Float32:
		divKernel(result.AsFloat32(), a.AsFloat32(), b.AsFloat32())
	case tensor.Float64:
		divKernel(result.AsFloat64(), a.AsFloat64(), b.AsFloat64())
	default:
		panic("divVectorized: unsupported dtype")
	}
}

// addWithBroadcast performs addition with broadcasting.
func addWithBroadcast(result, a, b *tensor.RawTensor, outShape tensor.Shape) {
	plan := newBroadcastPlan(a.Shape(), b.Shape(), outShape)
	switch a.DType() {
	case tensor.Float32:
		addBroadcastKernel(result.AsFloat32(), a.AsFloat32(), b.AsFloat32(), plan)
	case tensor.Float64:
		addBroadcastKernel(result.AsFloat64(), a.AsFloat64(), b.AsFloat64(), plan)
	default:
		panic("addWithBroadcast: unsupported dtype")
	}
}

func subWithBroadcast(result, a, b *tensor.RawTensor, outShape tensor.Shape) {
	plan := newBroadcastPlan(a.Shape(), b.Shape(), outShape)
	switch a.DType() {
	case tensor.Float32:
		subBroadcastKernel(result.AsFloat32(), a.AsFloat32(), b.AsFloat32(), plan)
	case tensor.Float64:
		subBroadcastKernel(result.AsFloat64(), a.AsFloat64(), b.AsFloat64(), plan)
	default:
		panic("subWithBroadcast: unsupported dtype")
	}
}

func mulWithBroadcast(result, a, b *tensor.RawTensor, outShape tensor.Shape) {
	plan := newBroadcastPlan(a.Shape(), b.Shape(), outShape)
	switch a.DType() {
	case tensor.Float32:
		mulBroadcastKernel(result.AsFloat32(), a.AsFloat32(), b.AsFloat32(), plan)
	case tensor.Float64:
		mulBroadcastKernel(result.AsFloat64(), a.AsFloat64(), b.AsFloat64(), plan)
	default:
		panic("mulWithBroadcast: unsupported dtype")
	}
}

func divWithBroadcast(result, a, b *tensor.RawTensor, outShape tensor.Shape) {
	plan := newBroadcastPlan(a.Shape(), b.Shape(), outShape)
	switch a.DType() {
	case tensor.Float32:
		divBroadcastKernel(result.AsFloat32(), a.AsFloat32(), b.AsFloat32(), plan)
	case tensor.Float64:
		divBroadcastKernel(result.AsFloat64(), a.AsFloat64(), b.AsFloat64(), plan)
	default:
		panic("divWithBroadcast: unsupported dtype")
	}
}

func transposeData(result, src *tensor.RawTensor, axes []int) {
	switch src.DType() {
	case tensor.Float32:
		transposeKernel(result.AsFloat32(), src.AsFloat32(), src.Shape(), axes)
	case tensor.Float64:
		transposeKernel(result.AsFloat64(), src.AsFloat64(), src.Shape(), axes)
	default:
		panic("transpose: unsupported dtype")
	}
}
