// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn_test

import (
	"errors"
	"fmt"

	"github.com/born-ml/layergraph/nn"
)

// ExampleSequential stacks a multilayer perceptron for 28x28 digit images.
func ExampleSequential() {
	hidden, _ := nn.NewDense(32, nn.WithInputShape(784), nn.WithName("hidden"))
	relu, _ := nn.NewActivation("relu", nn.WithName("relu"))
	logits, _ := nn.NewDense(10, nn.WithName("logits"))
	softmax, _ := nn.NewActivation("softmax", nn.WithName("softmax"))

	model, err := nn.Sequential([]*nn.Layer{hidden, relu, logits, softmax})
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println(model.Len(), "layers")
	fmt.Println("in:", model.Inputs()[0].Shape())
	fmt.Println("out:", model.Outputs()[0].Shape())
	fmt.Println("params:", model.CountParams().Total)
	// Output:
	// 4 layers
	// in: (784,)
	// out: (10,)
	// params: 25450
}

// ExampleFunctional shares one LSTM between two sequence inputs.
func ExampleFunctional() {
	b := nn.NewBuilder()
	left, _ := b.Input(nn.Shape{140, 256}, nn.WithInputName("left"))
	right, _ := b.Input(nn.Shape{140, 256}, nn.WithInputName("right"))

	lstm, _ := nn.NewLSTM(64, false, nn.WithName("encoder"))
	encLeft, _ := b.ApplyOne(lstm, left)
	encRight, _ := b.ApplyOne(lstm, right)

	concat, _ := nn.NewConcatenate(-1)
	merged, _ := b.ApplyOne(concat, encLeft, encRight)

	score, _ := nn.NewLayer(nn.DenseConfig{Units: 1, Activation: "sigmoid"})
	out, _ := b.ApplyOne(score, merged)

	model, err := nn.Functional(b, []*nn.Tensor{left, right}, []*nn.Tensor{out})
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println(len(model.Nodes()), "applications of", len(model.Layers()), "layers")
	fmt.Println("encoder calls:", lstm.CallCount())
	fmt.Println("out:", model.Outputs()[0].Shape())
	// Output:
	// 4 applications of 3 layers
	// encoder calls: 2
	// out: (1,)
}

// ExampleShapeError shows a shape mismatch caught when a layer is applied.
func ExampleShapeError() {
	b := nn.NewBuilder()
	x, _ := b.Input(nn.Shape{32})
	lstm, _ := nn.NewLSTM(8, false, nn.WithName("rnn"))

	_, err := b.ApplyOne(lstm, x)

	var shapeErr *nn.ShapeError
	fmt.Println(errors.Is(err, nn.ErrShape), errors.As(err, &shapeErr), shapeErr.Layer)
	fmt.Println("recorded nodes:", b.NumNodes())
	// Output:
	// true true rnn
	// recorded nodes: 0
}
