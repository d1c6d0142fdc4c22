// Copyright (c) 2026, The SNN Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package snn

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/goki/mat32"
)

// snn.Neuron holds all of the neuron (unit) level state variables.
// This is a minimal spiking neuron: binary spike output with discrete-time
// LIF membrane dynamics, and no learning variables.
// All variables must be float32, in contiguous order, so they can be
// accessed generically via the NeuronVars index.
type Neuron struct {

	// external input: drives the input (encoder) layer from outside the
	// network, e.g., a pixel intensity -- ignored by non-input layers
	Ext float32 `desc:"external input: drives the input (encoder) layer from outside the network, e.g., a pixel intensity -- ignored by non-input layers"`

	// raw weighted input received this step: sum over sending pathways of
	// weights from neurons that spiked last phase, plus the fixed bias
	Ge float32 `desc:"raw weighted input received this step: sum over sending pathways of weights from neurons that spiked last phase, plus the fixed bias"`

	// integrated synaptic current -- updated from Ge each step subject to
	// the current decay factor
	Cur float32 `desc:"integrated synaptic current -- updated from Ge each step subject to the current decay factor"`

	// membrane potential -- integrates Cur over time subject to the voltage
	// decay factor, reset to 0 when the neuron spikes and at image boundaries
	Vm float32 `desc:"membrane potential -- integrates Cur over time subject to the voltage decay factor, reset to 0 when the neuron spikes and at image boundaries"`

	// whether the neuron spiked this step (0 or 1)
	Spike float32 `desc:"whether the neuron spiked this step (0 or 1)"`

	// number of spikes emitted within the current per-image time window --
	// reset to 0 at image boundaries
	SpikeSum float32 `desc:"number of spikes emitted within the current per-image time window -- reset to 0 at image boundaries"`
}

// NeuronVarStart is the byte offset of fields in the Neuron structure
// where the float32 named variables start -- all fields are float32 here.
const NeuronVarStart = 0

var NeuronVars = []string{}

var NeuronVarsMap map[string]int

var NeuronVarProps = map[string]string{
	"Spike":    `min:"0" max:"1"`,
	"SpikeSum": `auto-scale:"+"`,
}

func init() {
	typ := reflect.TypeOf((*Neuron)(nil)).Elem()
	nf := typ.NumField()
	NeuronVarsMap = make(map[string]int, nf)
	for i := 0; i < nf; i++ {
		fs := typ.FieldByIndex([]int{i})
		v := fs.Name
		NeuronVars = append(NeuronVars, v)
		NeuronVarsMap[v] = i
		pstr := NeuronVarProps[v]
		if desc, ok := fs.Tag.Lookup("desc"); ok {
			pstr += ` desc:"` + desc + `"`
			NeuronVarProps[v] = pstr
		}
	}
}

func (nrn *Neuron) VarNames() []string {
	return NeuronVars
}

// NeuronVarIdxByName returns the index of the variable in the Neuron, or error
func NeuronVarIdxByName(varNm string) (int, error) {
	i, ok := NeuronVarsMap[varNm]
	if !ok {
		return -1, fmt.Errorf("Neuron VarByName: variable name: %v not valid", varNm)
	}
	return i, nil
}

// VarByIndex returns variable using index (0 = first variable in NeuronVars list)
func (nrn *Neuron) VarByIndex(idx int) float32 {
	fv := (*float32)(unsafe.Pointer(uintptr(unsafe.Pointer(nrn)) + uintptr(NeuronVarStart+4*idx)))
	return *fv
}

// VarByName returns variable by name, or error
func (nrn *Neuron) VarByName(varNm string) (float32, error) {
	i, err := NeuronVarIdxByName(varNm)
	if err != nil {
		return mat32.NaN(), err
	}
	return nrn.VarByIndex(i), nil
}
