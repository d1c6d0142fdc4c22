// Copyright (c) 2026, The SNN Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package lif provides the discrete-time leaky-integrate-and-fire (LIF)
neuron equations and parameters.

Each simulation step, the synaptic current integrates the new weighted
input subject to a fixed current decay, the membrane potential integrates
the current subject to a fixed voltage decay, and the neuron fires a binary
spike when the potential exceeds threshold, resetting the potential to zero
(reset-on-fire).

The default configuration is the one used by the pre-trained feed-forward
classifiers this repository targets: zero voltage decay (the potential is a
pure integrator) and maximal current decay (the current state is consumed
every step, so each step sees only its fresh input).  These are
configuration constants of the pre-trained weights, not derived quantities:
networks trained under a different decay configuration require matching
values here.
*/
package lif

// Params are the discrete-time LIF dynamics parameters for one layer of
// neurons.  All equations operate on scalars so they can be applied to any
// representation of neuron state.
type Params struct {
	Thr      float32 `def:"1" desc:"firing threshold on the membrane potential -- a spike is emitted whenever Vm exceeds this value, and Vm is then reset to 0"`
	CurDecay float32 `def:"1" min:"0" max:"1" desc:"proportion of the integrated synaptic current that decays away each step -- 1 means the current state is consumed every step so each step integrates only its fresh weighted input"`
	VmDecay  float32 `def:"0" min:"0" max:"1" desc:"proportion of the membrane potential that leaks away each step -- 0 means the potential is a pure integrator"`

	CurDt float32 `view:"-" json:"-" xml:"-" desc:"current retention factor = 1 - CurDecay"`
	VmDt  float32 `view:"-" json:"-" xml:"-" desc:"potential retention factor = 1 - VmDecay"`
}

func (lp *Params) Defaults() {
	lp.Thr = 1
	lp.CurDecay = 1
	lp.VmDecay = 0
	lp.Update()
}

// Update must be called after any changes to parameters
func (lp *Params) Update() {
	lp.CurDt = 1 - lp.CurDecay
	lp.VmDt = 1 - lp.VmDecay
}

// CurFromGe integrates the synaptic current for one step from the
// raw weighted input ge (weighted spike sum plus any bias).
func (lp *Params) CurFromGe(cur, ge float32) float32 {
	return lp.CurDt*cur + ge
}

// VmFromCur integrates the membrane potential for one step from the
// integrated current.
func (lp *Params) VmFromCur(vm, cur float32) float32 {
	return lp.VmDt*vm + cur
}

// Spiked returns true if the given membrane potential exceeds threshold.
// The caller is responsible for resetting the potential to 0 on firing.
func (lp *Params) Spiked(vm float32) bool {
	return vm > lp.Thr
}
