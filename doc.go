// Copyright (c) 2026, The SNN Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package snn is the overall repository for a small discrete-time spiking
neural network (SNN) implemented in the Go language (golang), for running
inference with fixed, pre-trained weights.

This top-level of the repository has no functional code -- everything is
organized into the following sub-repositories:

* snn: the core implementation: spiking neurons, layers with
leaky-integrate-and-fire (LIF) dynamics, fully connected pathways holding
fixed weight matrices, the network container with its fixed-step cycle, and
the spike-count output decoder.

* lif: the leaky-integrate-and-fire dynamics parameters and equations, as a
standalone package so the same update rules can be used outside the full
network machinery.

* examples: these compile into runnable programs.  examples/mnist runs a
pre-trained three-layer spiking classifier over the MNIST test set and
reports accuracy.
*/
package snn
