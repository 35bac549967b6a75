package cpu

import (
	"testing"

	"github.com/smallnet-ml/smallnet/tensor"
)

func TestConv2DBasicForward(t *testing.T) {
	backend := New()

	// Input: [1, 1, 3, 3]
	// 1 2 3
	// 4 5 6
	// 7 8 9
	input := newFloat32(t, []float32{1, 2, 3, 4, 5, 6, 7, 8, 9}, tensor.Shape{1, 1, 3, 3})

	// Kernel: [1, 1, 2, 2], diagonal
	// 1 0
	// 0 1
	kernel := newFloat32(t, []float32{1, 0, 0, 1}, tensor.Shape{1, 1, 2, 2})

	output := backend.Conv2D(input, kernel, 1, 0)

	// out_h = (3 + 2*0 - 2) / 1 + 1 = 2
	expectedShape := tensor.Shape{1, 1, 2, 2}
	if !output.Shape().Equal(expectedShape) {
		t.Fatalf("Conv2D shape = %v, want %v", output.Shape(), expectedShape)
	}

	// Diagonal sums of each 2x2 patch:
	// [1,5]=6  [2,6]=8
	// [4,8]=12 [5,9]=14
	want := []float32{6, 8, 12, 14}
	got := output.AsFloat32()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Conv2D[%d] = %f, want %f", i, got[i], want[i])
		}
	}
}

func TestConv2DWithPadding(t *testing.T) {
	backend := New()

	// All-ones 3x3 input with all-ones 3x3 sum kernel and padding 1.
	input := newFloat32(t, []float32{1, 1, 1, 1, 1, 1, 1, 1, 1}, tensor.Shape{1, 1, 3, 3})
	kernel := newFloat32(t, []float32{1, 1, 1, 1, 1, 1, 1, 1, 1}, tensor.Shape{1, 1, 3, 3})

	output := backend.Conv2D(input, kernel, 1, 1)

	// out_h = (3 + 2*1 - 3) / 1 + 1 = 3
	expectedShape := tensor.Shape{1, 1, 3, 3}
	if !output.Shape().Equal(expectedShape) {
		t.Fatalf("Conv2D shape = %v, want %v", output.Shape(), expectedShape)
	}

	// Corners see a 2x2 window, edges 2x3, center 3x3.
	want := []float32{4, 6, 4, 6, 9, 6, 4, 6, 4}
	got := output.AsFloat32()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Conv2D[%d] = %f, want %f", i, got[i], want[i])
		}
	}
}

func TestConv2DMultiChannel(t *testing.T) {
	backend := New()

	// Input: [1, 2, 2, 2], channel 0 all ones, channel 1 all twos
	input := newFloat32(t, []float32{1, 1, 1, 1, 2, 2, 2, 2}, tensor.Shape{1, 2, 2, 2})

	// Kernel: [1, 2, 2, 2], all ones: output = sum over both channels
	kernel := newFloat32(t, []float32{1, 1, 1, 1, 1, 1, 1, 1}, tensor.Shape{1, 2, 2, 2})

	output := backend.Conv2D(input, kernel, 1, 0)

	if !output.Shape().Equal(tensor.Shape{1, 1, 1, 1}) {
		t.Fatalf("Conv2D shape = %v, want [1 1 1 1]", output.Shape())
	}

	// 4*1 + 4*2 = 12
	if got := output.AsFloat32()[0]; got != 12 {
		t.Errorf("Conv2D output = %f, want 12", got)
	}
}

func TestConv2DOutputShape28x28(t *testing.T) {
	backend := New()

	// LeNet-5 first layer: 28x28 input, 5x5 kernel, padding 2 keeps size
	input := newFloat32(t, make([]float32, 2*1*28*28), tensor.Shape{2, 1, 28, 28})
	kernel := newFloat32(t, make([]float32, 6*1*5*5), tensor.Shape{6, 1, 5, 5})

	output := backend.Conv2D(input, kernel, 1, 2)

	expectedShape := tensor.Shape{2, 6, 28, 28}
	if !output.Shape().Equal(expectedShape) {
		t.Errorf("Conv2D shape = %v, want %v", output.Shape(), expectedShape)
	}
}

func TestConv2DChannelMismatch(t *testing.T) {
	backend := New()

	input := newFloat32(t, make([]float32, 9), tensor.Shape{1, 1, 3, 3})
	kernel := newFloat32(t, make([]float32, 8), tensor.Shape{1, 2, 2, 2})

	defer func() {
		if r := recover(); r == nil {
			t.Error("Conv2D with mismatched channels should panic")
		}
	}()

	backend.Conv2D(input, kernel, 1, 0)
}
