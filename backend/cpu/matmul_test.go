package cpu

import (
	"testing"

	"github.com/smallnet-ml/smallnet/tensor"
)

func TestMatMul(t *testing.T) {
	backend := New()

	// A: [2, 3]
	// 1 2 3
	// 4 5 6
	a := newFloat32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	// B: [3, 2]
	// 7  8
	// 9  10
	// 11 12
	b := newFloat32(t, []float32{7, 8, 9, 10, 11, 12}, tensor.Shape{3, 2})

	result := backend.MatMul(a, b)

	if !result.Shape().Equal(tensor.Shape{2, 2}) {
		t.Fatalf("MatMul shape = %v, want [2 2]", result.Shape())
	}

	// C[0,0] = 1*7 + 2*9 + 3*11 = 58
	// C[0,1] = 1*8 + 2*10 + 3*12 = 64
	// C[1,0] = 4*7 + 5*9 + 6*11 = 139
	// C[1,1] = 4*8 + 5*10 + 6*12 = 154
	want := []float32{58, 64, 139, 154}
	got := result.AsFloat32()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("MatMul[%d] = %f, want %f", i, got[i], want[i])
		}
	}
}

func TestMatMulIdentity(t *testing.T) {
	backend := New()

	a := newFloat32(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	identity := newFloat32(t, []float32{1, 0, 0, 1}, tensor.Shape{2, 2})

	result := backend.MatMul(a, identity)

	got := result.AsFloat32()
	for i, want := range []float32{1, 2, 3, 4} {
		if got[i] != want {
			t.Errorf("MatMul[%d] = %f, want %f", i, got[i], want)
		}
	}
}

func TestMatMulShapeMismatch(t *testing.T) {
	backend := New()

	a := newFloat32(t, make([]float32, 6), tensor.Shape{2, 3})
	b := newFloat32(t, make([]float32, 8), tensor.Shape{4, 2})

	defer func() {
		if r := recover(); r == nil {
			t.Error("MatMul with incompatible shapes should panic")
		}
	}()

	backend.MatMul(a, b)
}
