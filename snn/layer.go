// Copyright (c) 2026, The SNN Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package snn

import (
	"fmt"
	"io"
	"strconv"

	"github.com/emer/emergent/emer"
	"github.com/emer/emergent/weights"
	"github.com/emer/etable/etensor"
	"github.com/emer/etable/minmax"
	"github.com/goki/ki/indent"
	"github.com/goki/mat32"
	"github.com/moraguma/snn/lif"
)

// ClampParams determine how external inputs drive the input (encoder) layer.
// Each step the encoder accumulator integrates Gain * Ext + Off, so Off
// provides the bias correction on raw pixel intensities.
type ClampParams struct {
	Gain float32 `def:"1" min:"0" desc:"multiplier on the external input value driving the encoder accumulator each step"`
	Off  float32 `def:"0" desc:"bias correction added to the external input drive each step -- negative values suppress low-intensity background pixels"`
}

func (cp *ClampParams) Defaults() {
	cp.Gain = 1
	cp.Off = 0
}

func (cp *ClampParams) Update() {
}

// snn.Layer is a layer of spiking neurons with shared LIF dynamics
// parameters and a fixed per-neuron bias loaded from the weights artifact.
// The input layer integrates external inputs instead of pathway input,
// implementing the spike encoder: same integrate-and-fire rule, driven by
// the clamped pixel intensity each step.
type Layer struct {
	Nm        string         `desc:"name of the layer -- must be unique within the network"`
	Off       bool           `desc:"inactivate this layer -- skipped in all computation"`
	Shp       etensor.Shape  `desc:"shape of the layer -- 1D for simple vectors, 2D for images"`
	Typ       emer.LayerType `desc:"type of layer: Input (spike encoder), Hidden, or Target (output, read by the decoder)"`
	Idx       int            `view:"-" inactive:"-" desc:"index of this layer in the network"`
	Act       lif.Params     `view:"inline" desc:"LIF dynamics parameters: decay factors and firing threshold"`
	Clamp     ClampParams    `view:"inline" desc:"how external inputs drive the encoder accumulator -- input layers only"`
	Bias      []float32      `desc:"fixed per-neuron bias added into the current each step, from the pre-trained artifact -- nil for the input layer"`
	Neurons   []Neuron       `desc:"slice of neurons for this layer -- flat list of neuron state, in 1D index order of the shape"`
	RecvPaths []*Path        `desc:"pathways into this layer from sending layers"`
	SendPaths []*Path        `desc:"pathways from this layer to receiving layers"`
}

func (ly *Layer) Name() string { return ly.Nm }

// IsInput returns true if this is the input (spike encoder) layer
func (ly *Layer) IsInput() bool { return ly.Typ == emer.Input }

// IsOutput returns true if this is the output layer read by the decoder
func (ly *Layer) IsOutput() bool { return ly.Typ == emer.Target }

func (ly *Layer) Defaults() {
	ly.Act.Defaults()
	ly.Clamp.Defaults()
}

// UpdateParams updates all params given any changes that might have been
// made to individual values
func (ly *Layer) UpdateParams() {
	ly.Act.Update()
	ly.Clamp.Update()
}

// Build constructs the layer state, allocating neurons according to the
// layer shape, and the bias vector for non-input layers.
func (ly *Layer) Build() error {
	nu := ly.Shp.Len()
	if nu == 0 {
		return fmt.Errorf("Build Layer %v: no units specified in Shape", ly.Nm)
	}
	ly.Neurons = make([]Neuron, nu)
	if !ly.IsInput() {
		ly.Bias = make([]float32, nu)
	}
	return nil
}

// SetShape sets the layer shape -- 1D, or 2D row-major (Y, X)
func (ly *Layer) SetShape(shape []int) {
	var dnms []string
	if len(shape) == 2 {
		dnms = []string{"Y", "X"}
	}
	ly.Shp.SetShape(shape, nil, dnms)
}

//////////////////////////////////////////////////////////////////////////////////////
//  Init methods

// InitActs fully initializes the per-image activation state: current,
// membrane potential, spikes, spike counts, external inputs, and any
// pending pathway input.  It is idempotent, and is called by the control
// loop at every image boundary: the pre-trained parameters assume zero
// initial state per inference.
func (ly *Layer) InitActs() {
	for ni := range ly.Neurons {
		nrn := &ly.Neurons[ni]
		nrn.Ext = 0
		nrn.Ge = 0
		nrn.Cur = 0
		nrn.Vm = 0
		nrn.Spike = 0
		nrn.SpikeSum = 0
	}
	ly.InitGInc()
}

// InitExt initializes external input state, for the next input pattern
func (ly *Layer) InitExt() {
	for ni := range ly.Neurons {
		ly.Neurons[ni].Ext = 0
	}
}

// InitGInc initializes the pathway-level input accumulators for all
// pathways into this layer
func (ly *Layer) InitGInc() {
	for _, pt := range ly.RecvPaths {
		if pt.Off {
			continue
		}
		pt.InitGInc()
	}
}

// ApplyExt applies external input in the form of an etensor.Tensor
// to the Ext values of this layer's neurons, up to the number of neurons.
func (ly *Layer) ApplyExt(ext etensor.Tensor) {
	mx := len(ly.Neurons)
	if ext.Len() < mx {
		mx = ext.Len()
	}
	for ni := 0; ni < mx; ni++ {
		ly.Neurons[ni].Ext = float32(ext.FloatVal1D(ni))
	}
}

// ApplyExt1D32 applies external input from a 1D slice of float32 values
func (ly *Layer) ApplyExt1D32(ext []float32) {
	mx := len(ly.Neurons)
	if len(ext) < mx {
		mx = len(ext)
	}
	for ni := 0; ni < mx; ni++ {
		ly.Neurons[ni].Ext = ext[ni]
	}
}

//////////////////////////////////////////////////////////////////////////////////////
//  Cycle

// GFromInc computes the raw input Ge for this step.  For the input layer
// this is the clamped external drive; for all other layers it is the fixed
// bias plus the pathway input accumulated from spikes sent last phase.
// Pathway accumulators are consumed (zeroed) here.
func (ly *Layer) GFromInc() {
	if ly.IsInput() {
		for ni := range ly.Neurons {
			nrn := &ly.Neurons[ni]
			nrn.Ge = ly.Clamp.Gain*nrn.Ext + ly.Clamp.Off
		}
		return
	}
	for ni := range ly.Neurons {
		ly.Neurons[ni].Ge = ly.Bias[ni]
	}
	for _, pt := range ly.RecvPaths {
		if pt.Off {
			continue
		}
		pt.RecvGInc()
	}
}

// CycleNeuron runs one step of LIF dynamics on every neuron: integrate the
// current from Ge, integrate the membrane potential from the current, and
// fire wherever the potential exceeds threshold, resetting it to zero.
func (ly *Layer) CycleNeuron() {
	for ni := range ly.Neurons {
		nrn := &ly.Neurons[ni]
		nrn.Cur = ly.Act.CurFromGe(nrn.Cur, nrn.Ge)
		nrn.Vm = ly.Act.VmFromCur(nrn.Vm, nrn.Cur)
		if ly.Act.Spiked(nrn.Vm) {
			nrn.Spike = 1
			nrn.Vm = 0
			nrn.SpikeSum++
		} else {
			nrn.Spike = 0
		}
	}
}

// SendSpike sends this step's spikes to all receiving layers, accumulating
// the corresponding weight column into each pathway's input accumulator.
func (ly *Layer) SendSpike() {
	for ni := range ly.Neurons {
		if ly.Neurons[ni].Spike == 0 {
			continue
		}
		for _, pt := range ly.SendPaths {
			if pt.Off {
				continue
			}
			pt.SendSpike(ni)
		}
	}
}

//////////////////////////////////////////////////////////////////////////////////////
//  Stats and access

// SpikeAvgMax returns the average and max SpikeSum across layer neurons,
// for monitoring firing levels within the current image window.
func (ly *Layer) SpikeAvgMax() minmax.AvgMax32 {
	var am minmax.AvgMax32
	am.Init()
	for ni := range ly.Neurons {
		am.UpdateVal(ly.Neurons[ni].SpikeSum, ni)
	}
	am.CalcAvg()
	return am
}

// UnitVals fills in values of given variable name on unit,
// for each unit in the layer, into given float32 slice (only resized if not
// big enough).  Returns error on invalid var name.
func (ly *Layer) UnitVals(vals *[]float32, varNm string) error {
	nn := len(ly.Neurons)
	if *vals == nil || cap(*vals) < nn {
		*vals = make([]float32, nn)
	} else if len(*vals) < nn {
		*vals = (*vals)[0:nn]
	}
	vidx, err := NeuronVarIdxByName(varNm)
	if err != nil {
		nan := mat32.NaN()
		for ni := range ly.Neurons {
			(*vals)[ni] = nan
		}
		return err
	}
	for ni := range ly.Neurons {
		(*vals)[ni] = ly.Neurons[ni].VarByIndex(vidx)
	}
	return nil
}

// RecvPathBySendName returns the receiving pathway from the layer of the
// given name, or error if not found
func (ly *Layer) RecvPathBySendName(sender string) (*Path, error) {
	for _, pt := range ly.RecvPaths {
		if pt.Send.Nm == sender {
			return pt, nil
		}
	}
	return nil, fmt.Errorf("sending layer: %v not found in list of receiving pathways of layer %v", sender, ly.Nm)
}

//////////////////////////////////////////////////////////////////////////////////////
//  Weights File

// WriteWtsJSON writes the weights from this layer from the receiver-side
// perspective in a JSON text format.  We build in the indentation logic to
// make it much faster and more efficient.
func (ly *Layer) WriteWtsJSON(w io.Writer, depth int) {
	w.Write(indent.TabBytes(depth))
	w.Write([]byte("{\n"))
	depth++
	w.Write(indent.TabBytes(depth))
	w.Write([]byte(fmt.Sprintf("\"Layer\": %q,\n", ly.Nm)))
	w.Write(indent.TabBytes(depth))
	w.Write([]byte("\"MetaData\": {\n"))
	depth++
	w.Write(indent.TabBytes(depth))
	w.Write([]byte(fmt.Sprintf("\"Thr\": \"%g\"\n", ly.Act.Thr)))
	depth--
	w.Write(indent.TabBytes(depth))
	w.Write([]byte("},\n"))
	if ly.Bias != nil {
		w.Write(indent.TabBytes(depth))
		w.Write([]byte("\"Units\": {\n"))
		depth++
		w.Write(indent.TabBytes(depth))
		w.Write([]byte("\"Bias\": [ "))
		nn := len(ly.Bias)
		for ni := 0; ni < nn; ni++ {
			w.Write([]byte(strconv.FormatFloat(float64(ly.Bias[ni]), 'g', weights.Prec, 32)))
			if ni == nn-1 {
				w.Write([]byte(" "))
			} else {
				w.Write([]byte(", "))
			}
		}
		w.Write([]byte("]\n"))
		depth--
		w.Write(indent.TabBytes(depth))
		w.Write([]byte("},\n"))
	}
	w.Write(indent.TabBytes(depth))
	onps := make([]*Path, 0, len(ly.RecvPaths))
	for _, pt := range ly.RecvPaths {
		if !pt.Off {
			onps = append(onps, pt)
		}
	}
	np := len(onps)
	if np == 0 {
		w.Write([]byte("\"Prjns\": null\n"))
	} else {
		w.Write([]byte("\"Prjns\": [\n"))
		depth++
		for pi, pt := range onps {
			pt.WriteWtsJSON(w, depth) // this leaves path unterminated
			if pi == np-1 {
				w.Write([]byte("\n"))
			} else {
				w.Write([]byte(",\n"))
			}
		}
		depth--
		w.Write(indent.TabBytes(depth))
		w.Write([]byte("]\n"))
	}
	depth--
	w.Write(indent.TabBytes(depth))
	w.Write([]byte("}")) // note: leave unterminated as outer loop needs to add , or just \n depending
}

// SetWts sets the weights for this layer from weights.Layer decoded values:
// the per-neuron Bias under Units, the firing threshold under MetaData, and
// the weight matrices of the receiving pathways.
func (ly *Layer) SetWts(lw *weights.Layer) error {
	if ly.Off {
		return nil
	}
	if lw.MetaData != nil {
		if th, ok := lw.MetaData["Thr"]; ok {
			pv, _ := strconv.ParseFloat(th, 32)
			ly.Act.Thr = float32(pv)
			ly.Act.Update()
		}
	}
	if lw.Units != nil {
		if bs, ok := lw.Units["Bias"]; ok {
			if ly.Bias == nil {
				return fmt.Errorf("SetWts Layer %v: bias values in weights file but layer has no bias (input layer?)", ly.Nm)
			}
			mx := len(ly.Bias)
			if len(bs) < mx {
				mx = len(bs)
			}
			for ni := 0; ni < mx; ni++ {
				ly.Bias[ni] = bs[ni]
			}
		}
	}
	var err error
	for pi := range lw.Prjns {
		pw := &lw.Prjns[pi]
		pt, er := ly.RecvPathBySendName(pw.From)
		if er != nil {
			err = er
			continue
		}
		er = pt.SetWts(pw)
		if er != nil {
			err = er
		}
	}
	return err
}
