package nn

import (
	"fmt"
	"math/rand"

	"github.com/smallnet-ml/smallnet/tensor"
)

// Dropout randomly zeroes elements of the input during training.
//
// Each element is zeroed independently with probability p. Surviving
// elements are scaled by 1/(1-p) (inverted dropout), so the expected value
// of each element is unchanged and no rescaling is needed at inference.
//
// In evaluation mode, Forward is the identity.
//
// Example:
//
//	drop := nn.NewDropout[*cpu.CPUBackend](0.5, backend)
//	drop.SetTraining(true)
//	noisy := drop.Forward(input)   // ~half the elements zeroed, rest doubled
//	drop.SetTraining(false)
//	same := drop.Forward(input)    // identity
type Dropout[B tensor.Backend] struct {
	p        float64
	training bool
	rng      *rand.Rand
	backend  B
}

// NewDropout creates a new Dropout module with drop probability p.
//
// p must be in [0, 1). The module starts in evaluation mode.
func NewDropout[B tensor.Backend](p float64, backend B) *Dropout[B] {
	if p < 0 || p >= 1 {
		panic(fmt.Sprintf("dropout: probability must be in [0, 1), got %v", p))
	}

	return &Dropout[B]{
		p: p,
		//nolint:gosec // Using math/rand for dropout masks (not security-critical)
		rng:     rand.New(rand.NewSource(rand.Int63())),
		backend: backend,
	}
}

// Seed reseeds the mask generator for reproducible runs.
func (d *Dropout[B]) Seed(seed int64) {
	//nolint:gosec // Using math/rand for dropout masks (not security-critical)
	d.rng = rand.New(rand.NewSource(seed))
}

// SetTraining switches between training and evaluation behavior.
func (d *Dropout[B]) SetTraining(training bool) {
	d.training = training
}

// Training reports whether the module is in training mode.
func (d *Dropout[B]) Training() bool {
	return d.training
}

// P returns the drop probability.
func (d *Dropout[B]) P() float64 {
	return d.p
}

// Forward applies dropout in training mode, identity in evaluation mode.
func (d *Dropout[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if !d.training || d.p == 0 {
		return input
	}

	mask := d.sampleMask(input.Shape())
	return input.Mul(mask)
}

// sampleMask draws a fresh mask tensor with values 0 or 1/(1-p).
func (d *Dropout[B]) sampleMask(shape tensor.Shape) *tensor.Tensor[float32, B] {
	raw, err := tensor.NewRaw(shape, tensor.Float32, d.backend.Device())
	if err != nil {
		panic(fmt.Sprintf("dropout: failed to create mask tensor: %v", err))
	}

	scale := float32(1.0 / (1.0 - d.p))
	data := raw.AsFloat32()
	for i := range data {
		if d.rng.Float64() >= d.p {
			data[i] = scale
		}
	}

	return tensor.New[float32, B](raw, d.backend)
}

// Parameters returns an empty slice (Dropout has no trainable parameters).
func (d *Dropout[B]) Parameters() []*Parameter[B] {
	return nil
}

// String returns a string representation of the module.
func (d *Dropout[B]) String() string {
	return fmt.Sprintf("Dropout(p=%v)", d.p)
}

// StateDict returns an empty map (Dropout has no parameters).
func (d *Dropout[B]) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{}
}

// LoadStateDict is a no-op (Dropout has no parameters).
func (d *Dropout[B]) LoadStateDict(_ map[string]*tensor.RawTensor) error {
	return nil
}

// Dropout2D randomly zeroes whole channels of a 4D input during training.
//
// For input [batch, channels, height, width], each (sample, channel) pair is
// zeroed independently with probability p, and surviving channels are scaled
// by 1/(1-p). Zeroing entire feature maps regularizes convolutional layers
// more effectively than element-wise dropout, which is ineffective when
// neighboring pixels are strongly correlated.
//
// In evaluation mode, Forward is the identity.
type Dropout2D[B tensor.Backend] struct {
	p        float64
	training bool
	rng      *rand.Rand
	backend  B
}

// NewDropout2D creates a new Dropout2D module with drop probability p.
//
// p must be in [0, 1). The module starts in evaluation mode.
func NewDropout2D[B tensor.Backend](p float64, backend B) *Dropout2D[B] {
	if p < 0 || p >= 1 {
		panic(fmt.Sprintf("dropout2d: probability must be in [0, 1), got %v", p))
	}

	return &Dropout2D[B]{
		p: p,
		//nolint:gosec // Using math/rand for dropout masks (not security-critical)
		rng:     rand.New(rand.NewSource(rand.Int63())),
		backend: backend,
	}
}

// Seed reseeds the mask generator for reproducible runs.
func (d *Dropout2D[B]) Seed(seed int64) {
	//nolint:gosec // Using math/rand for dropout masks (not security-critical)
	d.rng = rand.New(rand.NewSource(seed))
}

// SetTraining switches between training and evaluation behavior.
func (d *Dropout2D[B]) SetTraining(training bool) {
	d.training = training
}

// Training reports whether the module is in training mode.
func (d *Dropout2D[B]) Training() bool {
	return d.training
}

// P returns the drop probability.
func (d *Dropout2D[B]) P() float64 {
	return d.p
}

// Forward applies channel dropout in training mode, identity in evaluation
// mode.
//
// Input must be 4D [batch, channels, height, width].
func (d *Dropout2D[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if !d.training || d.p == 0 {
		return input
	}

	shape := input.Shape()
	if len(shape) != 4 {
		panic(fmt.Sprintf("dropout2d: expected 4D input [N,C,H,W], got shape %v", shape))
	}

	// Per-channel mask [N, C, 1, 1], broadcast over the spatial dims
	maskShape := tensor.Shape{shape[0], shape[1], 1, 1}
	raw, err := tensor.NewRaw(maskShape, tensor.Float32, d.backend.Device())
	if err != nil {
		panic(fmt.Sprintf("dropout2d: failed to create mask tensor: %v", err))
	}

	scale := float32(1.0 / (1.0 - d.p))
	data := raw.AsFloat32()
	for i := range data {
		if d.rng.Float64() >= d.p {
			data[i] = scale
		}
	}

	mask := tensor.New[float32, B](raw, d.backend)
	return input.Mul(mask)
}

// Parameters returns an empty slice (Dropout2D has no trainable parameters).
func (d *Dropout2D[B]) Parameters() []*Parameter[B] {
	return nil
}

// String returns a string representation of the module.
func (d *Dropout2D[B]) String() string {
	return fmt.Sprintf("Dropout2D(p=%v)", d.p)
}

// StateDict returns an empty map (Dropout2D has no parameters).
func (d *Dropout2D[B]) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{}
}

// LoadStateDict is a no-op (Dropout2D has no parameters).
func (d *Dropout2D[B]) LoadStateDict(_ map[string]*tensor.RawTensor) error {
	return nil
}
