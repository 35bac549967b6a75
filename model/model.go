package model

import (
	"fmt"
	"sort"

	"github.com/smallnet-ml/smallnet/nn"
	"github.com/smallnet-ml/smallnet/tensor"
)

// Model is the interface implemented by all classifiers in this package.
//
// Forward maps a batch of images [batch, 1, 28, 28] to class probabilities
// [batch, 10]. Train and Eval switch the behavior of stochastic layers such
// as dropout; models without stochastic layers treat them as no-ops.
type Model[B tensor.Backend] interface {
	Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]
	Parameters() []*nn.Parameter[B]
	NumParameters() int
	Train()
	Eval()
	StateDict() map[string]*tensor.RawTensor
	LoadStateDict(stateDict map[string]*tensor.RawTensor) error
}

// countParameters sums the element counts of all parameters.
func countParameters[B tensor.Backend](params []*nn.Parameter[B]) int {
	total := 0
	for _, p := range params {
		total += p.NumElements()
	}
	return total
}

// mergeStateDicts collects state dicts from named layers, prefixing each
// parameter key with the layer name (e.g., "conv1.weight").
func mergeStateDicts[B tensor.Backend](layers map[string]nn.Module[B]) map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor)
	for name, layer := range layers {
		for key, raw := range layer.StateDict() {
			stateDict[name+"."+key] = raw
		}
	}
	return stateDict
}

// loadStateDicts distributes a prefixed state dict to named layers.
//
// Every layer must find all of its parameters in the dict. Layers are
// processed in sorted name order so error messages are deterministic.
func loadStateDicts[B tensor.Backend](stateDict map[string]*tensor.RawTensor, layers map[string]nn.Module[B]) error {
	names := make([]string, 0, len(layers))
	for name := range layers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		prefix := name + "."
		layerStateDict := make(map[string]*tensor.RawTensor)

		for key, raw := range stateDict {
			if len(key) > len(prefix) && key[:len(prefix)] == prefix {
				layerStateDict[key[len(prefix):]] = raw
			}
		}

		if err := layers[name].LoadStateDict(layerStateDict); err != nil {
			return fmt.Errorf("failed to load layer %s: %w", name, err)
		}
	}

	return nil
}
