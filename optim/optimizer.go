// Package optim implements optimization algorithms for training neural networks.
//
// This package provides:
//   - Optimizer interface: Base interface for all optimizers
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation
//
// Design inspired by PyTorch's torch.optim but adapted for Go with type safety.
//
// Optimizers read gradients from each Parameter's Grad tensor, which the
// training harness sets before calling Step:
//
//	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{
//	    LR:       0.01,
//	    Momentum: 0.9,
//	}, backend)
//
//	for epoch := range epochs {
//	    setGradients(model, batch) // harness computes and sets param grads
//	    optimizer.Step()
//	    optimizer.ZeroGrad()
//	}
package optim

import (
	"fmt"

	"github.com/smallnet-ml/smallnet/nn"
	"github.com/smallnet-ml/smallnet/tensor"
)

// Optimizer is the base interface for all optimization algorithms.
//
// Optimizers update model parameters based on computed gradients to
// minimize the loss function during training.
type Optimizer interface {
	// Step applies gradient updates to all parameters.
	//
	// Parameters whose Grad is nil are skipped.
	Step()

	// ZeroGrad clears all parameter gradients.
	//
	// This should be called after each Step to prevent reusing stale
	// gradients in the next iteration.
	ZeroGrad()

	// GetLR returns the current learning rate.
	//
	// Useful for monitoring and learning rate scheduling.
	GetLR() float32
}

// gradData returns the gradient values for a parameter, or nil if no
// gradient has been set.
//
// Panics if the gradient shape does not match the parameter shape.
func gradData[B tensor.Backend](param *nn.Parameter[B]) []float32 {
	grad := param.Grad()
	if grad == nil {
		return nil
	}

	if !grad.Shape().Equal(param.Tensor().Shape()) {
		panic(fmt.Sprintf("optim: gradient shape %v does not match parameter %q shape %v",
			grad.Shape(), param.Name(), param.Tensor().Shape()))
	}

	return grad.Raw().AsFloat32()
}
