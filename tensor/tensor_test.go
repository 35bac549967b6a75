package tensor_test

import (
	"testing"

	"github.com/smallnet-ml/smallnet/backend/cpu"
	"github.com/smallnet-ml/smallnet/tensor"
)

// TestBackendInterface verifies that cpu.CPUBackend implements tensor.Backend.
func TestBackendInterface(_ *testing.T) {
	var _ tensor.Backend = (*cpu.CPUBackend)(nil)
}

func TestNewRaw(t *testing.T) {
	raw, err := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32, tensor.CPU)
	if err != nil {
		t.Fatalf("NewRaw failed: %v", err)
	}

	if !raw.Shape().Equal(tensor.Shape{2, 3}) {
		t.Errorf("Shape() = %v, want [2 3]", raw.Shape())
	}
	if raw.DType() != tensor.Float32 {
		t.Errorf("DType() = %v, want Float32", raw.DType())
	}
	if raw.Device() != tensor.CPU {
		t.Errorf("Device() = %v, want CPU", raw.Device())
	}
	if raw.NumElements() != 6 {
		t.Errorf("NumElements() = %d, want 6", raw.NumElements())
	}
	if raw.ByteSize() != 6*4 {
		t.Errorf("ByteSize() = %d, want 24", raw.ByteSize())
	}
}

func TestNewRawInvalidShape(t *testing.T) {
	_, err := tensor.NewRaw(tensor.Shape{2, 0}, tensor.Float32, tensor.CPU)
	if err == nil {
		t.Error("NewRaw with zero dimension should return error")
	}
}

func TestRawTensorRefCount(t *testing.T) {
	raw, err := tensor.NewRaw(tensor.Shape{4}, tensor.Float32, tensor.CPU)
	if err != nil {
		t.Fatalf("NewRaw failed: %v", err)
	}

	if !raw.IsUnique() {
		t.Error("fresh tensor should be unique")
	}

	clone := raw.Clone()
	if raw.IsUnique() {
		t.Error("tensor with live clone should not be unique")
	}

	// Clone shares the underlying buffer
	raw.AsFloat32()[0] = 42
	if clone.AsFloat32()[0] != 42 {
		t.Error("clone should share the underlying buffer")
	}

	clone.Release()
	if !raw.IsUnique() {
		t.Error("tensor should be unique again after clone release")
	}
}

func TestFromSlice(t *testing.T) {
	backend := cpu.New()

	data := []float32{1, 2, 3, 4, 5, 6}
	tr, err := tensor.FromSlice(data, tensor.Shape{2, 3}, backend)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}

	if !tr.Shape().Equal(tensor.Shape{2, 3}) {
		t.Errorf("Shape() = %v, want [2 3]", tr.Shape())
	}
	if got := tr.At(1, 2); got != 6 {
		t.Errorf("At(1, 2) = %f, want 6", got)
	}

	// Element count mismatch
	_, err = tensor.FromSlice(data, tensor.Shape{2, 4}, backend)
	if err == nil {
		t.Error("FromSlice with mismatched shape should return error")
	}
}

func TestTensorAddBroadcast(t *testing.T) {
	backend := cpu.New()

	a, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, backend)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}
	b, err := tensor.FromSlice([]float32{10, 20, 30}, tensor.Shape{1, 3}, backend)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}

	c := a.Add(b)

	want := []float32{11, 22, 33, 14, 25, 36}
	got := c.Data()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Add result[%d] = %f, want %f", i, got[i], want[i])
		}
	}
}

func TestTensorReshape(t *testing.T) {
	backend := cpu.New()

	tr, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{6}, backend)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}

	reshaped := tr.Reshape(2, 3)
	if !reshaped.Shape().Equal(tensor.Shape{2, 3}) {
		t.Errorf("Reshape shape = %v, want [2 3]", reshaped.Shape())
	}
	if got := reshaped.At(1, 0); got != 4 {
		t.Errorf("At(1, 0) = %f, want 4", got)
	}
}

func TestTensorTranspose(t *testing.T) {
	backend := cpu.New()

	// [[1 2 3], [4 5 6]]
	tr, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, backend)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}

	transposed := tr.T()
	if !transposed.Shape().Equal(tensor.Shape{3, 2}) {
		t.Fatalf("T() shape = %v, want [3 2]", transposed.Shape())
	}

	// [[1 4], [2 5], [3 6]]
	want := []float32{1, 4, 2, 5, 3, 6}
	got := transposed.Data()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("T() result[%d] = %f, want %f", i, got[i], want[i])
		}
	}
}

func TestZerosOnesFull(t *testing.T) {
	backend := cpu.New()

	zeros := tensor.Zeros[float32](tensor.Shape{3}, backend)
	for i, v := range zeros.Data() {
		if v != 0 {
			t.Errorf("Zeros[%d] = %f, want 0", i, v)
		}
	}

	ones := tensor.Ones[float32](tensor.Shape{3}, backend)
	for i, v := range ones.Data() {
		if v != 1 {
			t.Errorf("Ones[%d] = %f, want 1", i, v)
		}
	}

	full := tensor.Full[float32](tensor.Shape{3}, 2.5, backend)
	for i, v := range full.Data() {
		if v != 2.5 {
			t.Errorf("Full[%d] = %f, want 2.5", i, v)
		}
	}
}
