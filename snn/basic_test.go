// Copyright (c) 2026, The SNN Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package snn

import (
	"bytes"
	"testing"

	"github.com/emer/emergent/emer"
	"github.com/goki/mat32"

	"github.com/moraguma/snn/lif"
)

// tolerance for comparing floats
const difTol = float32(1.0e-6)

func CmprFloats(out, cor []float32, msg string, t *testing.T) {
	for i := range out {
		dif := mat32.Abs(out[i] - cor[i])
		if dif > difTol {
			t.Errorf("%v err: out: %v, cor: %v, dif: %v\n", msg, out[i], cor[i], dif)
		}
	}
}

// newTestNet builds a 4 -> 4 -> 2 network with identity-ish weights
// suitable for hand-computing spike timing
func newTestNet() *Network {
	nt := NewNetwork("TestNet")
	inLay := nt.AddLayer("Input", []int{4}, emer.Input)
	hidLay := nt.AddLayer("Hidden", []int{4}, emer.Hidden)
	outLay := nt.AddLayer("Output", []int{2}, emer.Target)
	nt.ConnectLayers(inLay, hidLay)
	nt.ConnectLayers(hidLay, outLay)
	nt.Defaults()
	if err := nt.Build(); err != nil {
		panic(err)
	}
	hidPt := hidLay.RecvPaths[0]
	for i := 0; i < 4; i++ {
		hidPt.SetSynVal(i, i, 1.5)
	}
	outPt := outLay.RecvPaths[0]
	for si := 0; si < 4; si++ {
		outPt.SetSynVal(si, si%2, 1.5)
	}
	nt.InitActs()
	return nt
}

func TestLIFParams(t *testing.T) {
	lp := lif.Params{}
	lp.Defaults()
	if lp.Thr != 1 || lp.CurDecay != 1 || lp.VmDecay != 0 {
		t.Errorf("defaults wrong: %+v\n", lp)
	}
	// full current decay: cur tracks ge exactly
	cur := lp.CurFromGe(0.7, 0.3)
	if mat32.Abs(cur-0.3) > difTol {
		t.Errorf("CurFromGe with full decay = %v, want 0.3\n", cur)
	}
	// zero vm decay: pure accumulation
	vm := lp.VmFromCur(0.9, 0.3)
	if mat32.Abs(vm-1.2) > difTol {
		t.Errorf("VmFromCur with zero decay = %v, want 1.2\n", vm)
	}
	if lp.Spiked(1.0) {
		t.Errorf("threshold is strict: vm == Thr must not spike\n")
	}
	if !lp.Spiked(1.0 + 1.0e-4) {
		t.Errorf("vm just above Thr must spike\n")
	}
}

func TestEncoderZeroInput(t *testing.T) {
	nt := newTestNet()
	tm := NewTime()
	inLay := nt.LayerByName("Input")
	nt.InitExt()
	nt.InitActs()
	for stp := 0; stp < 50; stp++ {
		nt.Cycle(tm)
		tm.StepInc()
	}
	for ni := range inLay.Neurons {
		nrn := &inLay.Neurons[ni]
		if nrn.Spike != 0 || nrn.SpikeSum != 0 || nrn.Vm != 0 {
			t.Errorf("zero input produced activity: ni %v, %+v\n", ni, nrn)
		}
	}
}

func TestEncoderSpikeTiming(t *testing.T) {
	nt := newTestNet()
	tm := NewTime()
	inLay := nt.LayerByName("Input")
	nt.InitActs()
	inLay.ApplyExt1D32([]float32{0.3, 0, 0, 0})

	// vm accumulates 0.3 per step, crosses Thr=1 on step 4, 8, 12 (1-based)
	spkSteps := []int{}
	for stp := 1; stp <= 12; stp++ {
		nt.Cycle(tm)
		tm.StepInc()
		if inLay.Neurons[0].Spike > 0 {
			spkSteps = append(spkSteps, stp)
			if inLay.Neurons[0].Vm != 0 {
				t.Errorf("vm not reset on spike at step %v: %v\n", stp, inLay.Neurons[0].Vm)
			}
		}
	}
	want := []int{4, 8, 12}
	if len(spkSteps) != len(want) {
		t.Fatalf("spike steps %v, want %v\n", spkSteps, want)
	}
	for i := range want {
		if spkSteps[i] != want[i] {
			t.Errorf("spike steps %v, want %v\n", spkSteps, want)
			break
		}
	}
	if inLay.Neurons[0].SpikeSum != 3 {
		t.Errorf("SpikeSum = %v, want 3\n", inLay.Neurons[0].SpikeSum)
	}
}

func TestSameStepPropagation(t *testing.T) {
	nt := newTestNet()
	tm := NewTime()
	inLay := nt.LayerByName("Input")
	hidLay := nt.LayerByName("Hidden")
	outLay := nt.LayerByName("Output")
	nt.InitActs()
	inLay.ApplyExt1D32([]float32{0.5, 0, 0, 0})

	// vm goes 0.5, 1.0, 1.5: strictly exceeds Thr=1 on step 3, driving
	// hidden with w=1.5 the same step, which drives output the same step
	for stp := 1; stp <= 3; stp++ {
		nt.Cycle(tm)
		tm.StepInc()
	}
	if inLay.Neurons[0].Spike != 1 {
		t.Fatalf("input should spike on step 3, vm: %v\n", inLay.Neurons[0].Vm)
	}
	if hidLay.Neurons[0].Spike != 1 {
		t.Errorf("hidden should spike same step: %+v\n", hidLay.Neurons[0])
	}
	if outLay.Neurons[0].Spike != 1 {
		t.Errorf("output should spike same step: %+v\n", outLay.Neurons[0])
	}
	if outLay.Neurons[1].Spike != 0 {
		t.Errorf("unconnected output unit should stay silent\n")
	}
}

func TestInitActsFullReset(t *testing.T) {
	nt := newTestNet()
	tm := NewTime()
	inLay := nt.LayerByName("Input")
	nt.InitActs()
	inLay.ApplyExt1D32([]float32{0.9, 0.9, 0.9, 0.9})
	for stp := 0; stp < 10; stp++ {
		nt.Cycle(tm)
		tm.StepInc()
	}
	nt.InitExt()
	nt.InitActs()
	for _, ly := range nt.Layers {
		for ni := range ly.Neurons {
			nrn := &ly.Neurons[ni]
			if nrn.Ext != 0 || nrn.Ge != 0 || nrn.Cur != 0 || nrn.Vm != 0 || nrn.Spike != 0 || nrn.SpikeSum != 0 {
				t.Errorf("layer %v ni %v not reset: %+v\n", ly.Nm, ni, nrn)
			}
		}
		for _, pt := range ly.RecvPaths {
			for ri := range pt.GInc {
				if pt.GInc[ri] != 0 {
					t.Errorf("path %v GInc not reset at %v\n", pt.Nm, ri)
				}
			}
		}
	}
	// identical state means identical trajectory
	inLay.ApplyExt1D32([]float32{0.3, 0, 0, 0})
	sums := make([]float32, 2)
	for run := 0; run < 2; run++ {
		nt.InitActs()
		inLay.ApplyExt1D32([]float32{0.3, 0, 0, 0})
		for stp := 0; stp < 25; stp++ {
			nt.Cycle(tm)
			tm.StepInc()
		}
		sums[run] = inLay.Neurons[0].SpikeSum
	}
	if sums[0] != sums[1] {
		t.Errorf("repeated runs differ: %v vs %v\n", sums[0], sums[1])
	}
}

func TestDecoder(t *testing.T) {
	dc := &Decoder{}
	dc.Init(4)

	dc.Counts = []float32{2, 5, 5, 1}
	pred := dc.Decode(1)
	if pred != 1 {
		t.Errorf("tie must go to lowest index: got %v\n", pred)
	}
	for i, ct := range dc.Counts {
		if ct != 0 {
			t.Errorf("counts not reset at %v: %v\n", i, ct)
		}
	}
	dc.Counts = []float32{0, 0, 0, 3}
	dc.Decode(2)
	if acc := dc.Accuracy(); mat32.Abs(float32(acc)-0.5) > difTol {
		t.Errorf("accuracy = %v, want 0.5\n", acc)
	}
}

func TestDecoderAccumSpikes(t *testing.T) {
	nt := newTestNet()
	tm := NewTime()
	inLay := nt.LayerByName("Input")
	outLay := nt.LayerByName("Output")
	dc := &Decoder{}
	dc.Init(len(outLay.Neurons))
	nt.InitActs()
	inLay.ApplyExt1D32([]float32{0.5, 0, 0, 0})
	for stp := 0; stp < 20; stp++ {
		nt.Cycle(tm)
		tm.StepInc()
		dc.AccumSpikes(outLay)
	}
	if dc.Counts[0] != outLay.Neurons[0].SpikeSum {
		t.Errorf("decoder count %v != layer SpikeSum %v\n", dc.Counts[0], outLay.Neurons[0].SpikeSum)
	}
	if dc.Counts[0] == 0 {
		t.Errorf("expected output spikes over window\n")
	}
	pred := dc.Decode(0)
	if pred != 0 {
		t.Errorf("pred = %v, want 0\n", pred)
	}
}

func TestWtsJSONRoundTrip(t *testing.T) {
	nt := newTestNet()
	hidLay := nt.LayerByName("Hidden")
	outLay := nt.LayerByName("Output")
	for i := range hidLay.Bias {
		hidLay.Bias[i] = 0.1 * float32(i+1)
	}
	for i := range outLay.Bias {
		outLay.Bias[i] = -0.05 * float32(i+1)
	}

	var buf bytes.Buffer
	if err := nt.WriteWtsJSON(&buf); err != nil {
		t.Fatalf("write err: %v\n", err)
	}

	nt2 := newTestNet()
	hid2 := nt2.LayerByName("Hidden")
	out2 := nt2.LayerByName("Output")
	// clobber so the read has to restore everything
	hidPt2 := hid2.RecvPaths[0]
	for ri := 0; ri < 4; ri++ {
		for si := 0; si < 4; si++ {
			hidPt2.SetSynVal(si, ri, 0)
		}
	}
	if err := nt2.ReadWtsJSON(&buf); err != nil {
		t.Fatalf("read err: %v\n", err)
	}
	for i := 0; i < 4; i++ {
		wt := hidPt2.SynVal(i, i)
		if mat32.Abs(wt-1.5) > difTol {
			t.Errorf("wt[%v,%v] = %v, want 1.5\n", i, i, wt)
		}
	}
	CmprFloats(hid2.Bias, hidLay.Bias, "hidden bias", t)
	CmprFloats(out2.Bias, outLay.Bias, "output bias", t)
}

func TestUnitVals(t *testing.T) {
	nt := newTestNet()
	tm := NewTime()
	inLay := nt.LayerByName("Input")
	nt.InitActs()
	inLay.ApplyExt1D32([]float32{0.3, 0.6, 0, 0})
	nt.Cycle(tm)
	tm.StepInc()
	var vals []float32
	if err := inLay.UnitVals(&vals, "Vm"); err != nil {
		t.Fatalf("UnitVals err: %v\n", err)
	}
	CmprFloats(vals, []float32{0.3, 0.6, 0, 0}, "vm after 1 step", t)
	if err := inLay.UnitVals(&vals, "Bogus"); err == nil {
		t.Errorf("expected error for unknown var\n")
	}
}
