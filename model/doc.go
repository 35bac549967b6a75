// Package model provides ready-made classifier architectures for 28x28
// single-channel images with 10 output classes.
//
// Three architectures are included, all with roughly 61,700 trainable
// parameters so their capacity is directly comparable:
//
//   - LeNet5: the classic convolutional network (LeCun et al., 1998) with
//     tanh activations and average pooling (61,706 parameters)
//   - CustomMLP: a deep fully connected network with dropout between layers
//     (61,720 parameters)
//   - RegularizedLeNet5: the LeNet-5 topology with ReLU, max pooling, and
//     dropout regularization (61,706 parameters)
//
// Every model outputs class probabilities (softmax applied internally), so
// each output row sums to 1. Pair them with nn.NLLLoss for training.
//
// Models are generic over the tensor backend:
//
//	backend := cpu.New()
//	net := model.NewLeNet5(backend)
//	net.Eval()
//	probs := net.Forward(images) // [batch, 10]
package model
