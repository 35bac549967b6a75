package nn

import (
	"fmt"
	"math"

	"github.com/smallnet-ml/smallnet/tensor"
)

// NLLLoss computes negative log-likelihood loss over class probabilities.
//
// Loss = -mean(log(probs[target]))
//
// Unlike a logits-based cross-entropy, this loss expects probabilities that
// already sum to 1 per row, which pairs with classifiers that apply Softmax
// as their final layer.
//
// Example:
//
//	criterion := nn.NewNLLLoss[*cpu.CPUBackend](backend)
//	probs := model.Forward(input)  // [batch_size, num_classes], rows sum to 1
//	loss := criterion.Forward(probs, targets)  // targets: [batch_size] class indices
type NLLLoss[B tensor.Backend] struct {
	backend B
}

// NewNLLLoss creates a new negative log-likelihood loss function.
func NewNLLLoss[B tensor.Backend](backend B) *NLLLoss[B] {
	return &NLLLoss[B]{
		backend: backend,
	}
}

// Forward computes the loss.
//
// Parameters:
//   - probs: Class probabilities with shape [batch_size, num_classes]
//   - targets: Ground truth class indices with shape [batch_size]
//
// Returns a scalar loss tensor with shape [1] (mean over batch).
func (n *NLLLoss[B]) Forward(
	probs *tensor.Tensor[float32, B],
	targets *tensor.Tensor[int32, B],
) *tensor.Tensor[float32, B] {
	shape := probs.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("NLLLoss: probs must be 2D [batch_size, num_classes], got shape %v", shape))
	}

	batchSize := shape[0]
	numClasses := shape[1]

	targetsData := targets.Raw().AsInt32()
	if len(targetsData) != batchSize {
		panic(fmt.Sprintf("NLLLoss: targets must have shape [%d], got %d elements", batchSize, len(targetsData)))
	}

	probsData := probs.Raw().AsFloat32()

	// Clamp probabilities away from zero so log stays finite
	const eps = 1e-12

	totalLoss := 0.0
	for b := 0; b < batchSize; b++ {
		target := int(targetsData[b])
		if target < 0 || target >= numClasses {
			panic(fmt.Sprintf("NLLLoss: target index %d out of bounds [0, %d)", target, numClasses))
		}

		p := float64(probsData[b*numClasses+target])
		if p < eps {
			p = eps
		}
		totalLoss += -math.Log(p)
	}

	mean := float32(totalLoss / float64(batchSize))

	lossRaw, err := tensor.NewRaw(tensor.Shape{1}, tensor.Float32, n.backend.Device())
	if err != nil {
		panic(fmt.Sprintf("NLLLoss: failed to create loss tensor: %v", err))
	}
	lossRaw.AsFloat32()[0] = mean

	return tensor.New[float32, B](lossRaw, n.backend)
}

// Accuracy computes the fraction of rows whose argmax matches the target.
//
// Parameters:
//   - probs: Class probabilities or scores with shape [batch_size, num_classes]
//   - targets: Ground truth class indices with shape [batch_size]
//
// Returns the accuracy in [0, 1].
func Accuracy[B tensor.Backend](
	probs *tensor.Tensor[float32, B],
	targets *tensor.Tensor[int32, B],
) float64 {
	shape := probs.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("Accuracy: probs must be 2D [batch_size, num_classes], got shape %v", shape))
	}

	batchSize := shape[0]
	numClasses := shape[1]

	targetsData := targets.Raw().AsInt32()
	if len(targetsData) != batchSize {
		panic(fmt.Sprintf("Accuracy: targets must have shape [%d], got %d elements", batchSize, len(targetsData)))
	}

	probsData := probs.Raw().AsFloat32()

	correct := 0
	for b := 0; b < batchSize; b++ {
		row := probsData[b*numClasses : (b+1)*numClasses]

		argmax := 0
		for i := 1; i < numClasses; i++ {
			if row[i] > row[argmax] {
				argmax = i
			}
		}

		if int32(argmax) == targetsData[b] {
			correct++
		}
	}

	return float64(correct) / float64(batchSize)
}
