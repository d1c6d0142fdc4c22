// Copyright (c) 2026, The SNN Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package snn

// Decoder produces a class prediction from output-layer spiking by
// counting spikes per unit over a presentation window and taking the
// argmax.  It also records predictions and targets across trials so
// overall accuracy can be computed at the end of a run.
type Decoder struct {
	Counts []float32 `desc:"per-unit spike counts accumulated over the current window"`
	Preds  []int     `desc:"predicted class per trial, in presentation order"`
	Targs  []int     `desc:"target class per trial, in presentation order"`
}

// Init initializes the decoder for an output layer with n units,
// clearing any prior trial history
func (dc *Decoder) Init(n int) {
	dc.Counts = make([]float32, n)
	dc.Preds = dc.Preds[:0]
	dc.Targs = dc.Targs[:0]
}

// AccumSpikes adds the current step's spikes from the given layer into
// the per-unit counts -- call once per step during the window
func (dc *Decoder) AccumSpikes(ly *Layer) {
	for ni := range ly.Neurons {
		dc.Counts[ni] += ly.Neurons[ni].Spike
	}
}

// Decode returns the argmax of the accumulated counts as the predicted
// class for the current window, records it along with the given target,
// and resets the counts for the next window.  Ties go to the lowest
// index.
func (dc *Decoder) Decode(targ int) int {
	pred := 0
	mx := dc.Counts[0]
	for i, ct := range dc.Counts {
		if ct > mx {
			mx = ct
			pred = i
		}
		dc.Counts[i] = 0
	}
	dc.Preds = append(dc.Preds, pred)
	dc.Targs = append(dc.Targs, targ)
	return pred
}

// Accuracy returns the fraction of recorded trials where the prediction
// matched the target -- 0 if no trials have been recorded
func (dc *Decoder) Accuracy() float64 {
	if len(dc.Preds) == 0 {
		return 0
	}
	cor := 0
	for i, p := range dc.Preds {
		if p == dc.Targs[i] {
			cor++
		}
	}
	return float64(cor) / float64(len(dc.Preds))
}
