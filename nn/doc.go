// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn builds neural network layer graphs and resolves them into models.
//
// # Overview
//
// This package contains:
//   - Layers: Dense, Activation, Dropout, Flatten, Reshape, Conv2D,
//     MaxPooling2D, LSTM, GRU, Embedding, BatchNormalization
//   - Merge layers: Concatenate, Add, Multiply, Average
//   - Graph building: Builder, Tensor, Node
//   - Models: Sequential, Functional, compile state, descriptions, summaries
//
// No numbers are computed here. Tensors are symbolic: they carry a shape
// without the batch axis, and any dimension may be Unknown. Shapes are checked
// as layers are applied, so an invalid graph is rejected at construction time.
//
// # Sequential Models
//
// A linear stack of layers, the first of which declares its input shape:
//
//	hidden, _ := nn.NewDense(32, nn.WithInputShape(784))
//	relu, _ := nn.NewActivation("relu")
//	logits, _ := nn.NewDense(10, nn.WithName("logits"))
//
//	model, err := nn.Sequential([]*nn.Layer{hidden, relu, logits})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(model.Summary())
//
// # Functional Models
//
// Arbitrary DAGs are recorded with a Builder and resolved from explicit inputs
// and outputs. Applying one layer twice shares it:
//
//	b := nn.NewBuilder()
//	left, _ := b.Input(nn.Shape{140, 256})
//	right, _ := b.Input(nn.Shape{140, 256})
//
//	lstm, _ := nn.NewLSTM(64, false)
//	encLeft, _ := b.ApplyOne(lstm, left)
//	encRight, _ := b.ApplyOne(lstm, right)
//
//	concat, _ := nn.NewConcatenate(-1)
//	merged, _ := b.ApplyOne(concat, encLeft, encRight)
//
//	model, err := nn.Functional(b, []*nn.Tensor{left, right}, []*nn.Tensor{merged})
//
// # Axes
//
// Axis arguments follow Keras: 0 is the batch axis and means the last axis,
// positive axes count non-batch dimensions from 1, negative axes count from
// the end.
//
// # Errors
//
// Failures are typed. Use errors.Is with the sentinel values (ErrShape,
// ErrArity, ErrDanglingInput, ...) or errors.As with the error structs
// (*ShapeError, *DanglingInputError, ...) to inspect them.
//
// # Descriptions
//
// Model.Describe returns a Description with json and yaml tags.
// FromDescription rebuilds an equivalent model in a fresh graph session.
// Topology and configuration round-trip; weights are not part of it.
package nn
