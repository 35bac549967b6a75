package cpu

import (
	"testing"

	"github.com/smallnet-ml/smallnet/tensor"
)

func TestMaxPool2D(t *testing.T) {
	backend := New()

	// Input: [1, 1, 4, 4]
	// 1  2  3  4
	// 5  6  7  8
	// 9  10 11 12
	// 13 14 15 16
	input := newFloat32(t, []float32{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
		13, 14, 15, 16,
	}, tensor.Shape{1, 1, 4, 4})

	output := backend.MaxPool2D(input, 2, 2)

	expectedShape := tensor.Shape{1, 1, 2, 2}
	if !output.Shape().Equal(expectedShape) {
		t.Fatalf("MaxPool2D shape = %v, want %v", output.Shape(), expectedShape)
	}

	// Max of each 2x2 window
	want := []float32{6, 8, 14, 16}
	got := output.AsFloat32()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("MaxPool2D[%d] = %f, want %f", i, got[i], want[i])
		}
	}
}

func TestMaxPool2DNegativeValues(t *testing.T) {
	backend := New()

	input := newFloat32(t, []float32{-1, -2, -3, -4}, tensor.Shape{1, 1, 2, 2})
	output := backend.MaxPool2D(input, 2, 2)

	if got := output.AsFloat32()[0]; got != -1 {
		t.Errorf("MaxPool2D output = %f, want -1", got)
	}
}

func TestAvgPool2D(t *testing.T) {
	backend := New()

	input := newFloat32(t, []float32{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
		13, 14, 15, 16,
	}, tensor.Shape{1, 1, 4, 4})

	output := backend.AvgPool2D(input, 2, 2)

	expectedShape := tensor.Shape{1, 1, 2, 2}
	if !output.Shape().Equal(expectedShape) {
		t.Fatalf("AvgPool2D shape = %v, want %v", output.Shape(), expectedShape)
	}

	// Mean of each 2x2 window
	want := []float32{3.5, 5.5, 11.5, 13.5}
	got := output.AsFloat32()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("AvgPool2D[%d] = %f, want %f", i, got[i], want[i])
		}
	}
}

func TestPool2DMultiChannel(t *testing.T) {
	backend := New()

	// [1, 2, 2, 2]: channel 0 = 1..4, channel 1 = 10..40
	input := newFloat32(t, []float32{1, 2, 3, 4, 10, 20, 30, 40}, tensor.Shape{1, 2, 2, 2})

	maxOut := backend.MaxPool2D(input, 2, 2)
	avgOut := backend.AvgPool2D(input, 2, 2)

	if !maxOut.Shape().Equal(tensor.Shape{1, 2, 1, 1}) {
		t.Fatalf("MaxPool2D shape = %v, want [1 2 1 1]", maxOut.Shape())
	}

	maxData := maxOut.AsFloat32()
	if maxData[0] != 4 || maxData[1] != 40 {
		t.Errorf("MaxPool2D = %v, want [4 40]", maxData)
	}

	avgData := avgOut.AsFloat32()
	if avgData[0] != 2.5 || avgData[1] != 25 {
		t.Errorf("AvgPool2D = %v, want [2.5 25]", avgData)
	}
}

func TestPool2DKernelTooLarge(t *testing.T) {
	backend := New()

	input := newFloat32(t, make([]float32, 4), tensor.Shape{1, 1, 2, 2})

	defer func() {
		if r := recover(); r == nil {
			t.Error("MaxPool2D with kernel larger than input should panic")
		}
	}()

	backend.MaxPool2D(input, 3, 1)
}
