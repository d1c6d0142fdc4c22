// Copyright (c) 2026, The SNN Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package snn

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"

	"github.com/emer/emergent/weights"
	"github.com/emer/etable/etensor"
	"github.com/goki/ki/indent"
	"github.com/goki/mat32"
)

// snn.Path is a fully connected pathway between two layers, holding the
// fixed weight matrix of a dense layer.  It is stateless across steps
// except for the per-receiver input accumulator that carries spikes from
// the send phase into the next integration phase.  Weights are loaded once
// from the pre-trained artifact and never change.
type Path struct {
	Off  bool            `desc:"inactivate this pathway -- skipped in all computation"`
	Nm   string          `desc:"name of the pathway: SendToRecv"`
	Send *Layer          `desc:"sending layer for this pathway"`
	Recv *Layer          `desc:"receiving layer for this pathway"`
	Wts  *etensor.Float32 `view:"-" desc:"fixed weight matrix, [recv, send] row-major: Wts[ri, si] is the weight from sending unit si to receiving unit ri"`
	GInc []float32       `view:"-" desc:"per-receiving-unit accumulator for weighted spike input sent this phase -- consumed by the receiving layer at the next integration phase"`
}

func (pt *Path) Name() string { return pt.Nm }

// Connect sets the connectivity between two layers
func (pt *Path) Connect(slay, rlay *Layer) {
	pt.Send = slay
	pt.Recv = rlay
	pt.Nm = slay.Nm + "To" + rlay.Nm
}

// Validate tests for non-nil settings for the pathway -- returns error
// message or nil if no problems (and logs them if logmsg = true)
func (pt *Path) Validate(logmsg bool) error {
	emsg := ""
	if pt.Recv == nil {
		emsg += "Recv is nil; "
	}
	if pt.Send == nil {
		emsg += "Send is nil; "
	}
	if emsg != "" {
		err := errors.New(emsg)
		if logmsg {
			log.Println(emsg)
		}
		return err
	}
	return nil
}

// Build constructs the full connectivity state: the zero-initialized weight
// matrix sized [recv, send] and the per-receiver accumulator.  Weights are
// expected to be filled in subsequently from the pre-trained artifact.
func (pt *Path) Build() error {
	if pt.Off {
		return nil
	}
	if err := pt.Validate(true); err != nil {
		return err
	}
	ns := len(pt.Send.Neurons)
	nr := len(pt.Recv.Neurons)
	if ns == 0 || nr == 0 {
		return fmt.Errorf("Build Path %v: send or recv layer not built yet", pt.Nm)
	}
	pt.Wts = etensor.NewFloat32([]int{nr, ns}, nil, []string{"Recv", "Send"})
	pt.GInc = make([]float32, nr)
	return nil
}

// InitGInc zeroes the input accumulator
func (pt *Path) InitGInc() {
	for ri := range pt.GInc {
		pt.GInc[ri] = 0
	}
}

// SendSpike adds the weight column of sending unit si into the input
// accumulator, for a binary spike from that unit this step.
func (pt *Path) SendSpike(si int) {
	ns := pt.Wts.Dim(1)
	wts := pt.Wts.Values
	for ri := range pt.GInc {
		pt.GInc[ri] += wts[ri*ns+si]
	}
}

// RecvGInc adds the accumulated input into the receiving layer's Ge values
// and zeroes the accumulator for the next phase.
func (pt *Path) RecvGInc() {
	rlay := pt.Recv
	for ri := range pt.GInc {
		rlay.Neurons[ri].Ge += pt.GInc[ri]
		pt.GInc[ri] = 0
	}
}

// SynVal returns the weight between given send, recv unit indexes
// (1D, flat indexes).  Returns mat32.NaN() for access errors.
func (pt *Path) SynVal(si, ri int) float32 {
	ns := pt.Wts.Dim(1)
	nr := pt.Wts.Dim(0)
	if si < 0 || si >= ns || ri < 0 || ri >= nr {
		return mat32.NaN()
	}
	return pt.Wts.Values[ri*ns+si]
}

// SetSynVal sets the weight between given send, recv unit indexes
// (1D, flat indexes).  Returns error for access errors.
func (pt *Path) SetSynVal(si, ri int, val float32) error {
	ns := pt.Wts.Dim(1)
	nr := pt.Wts.Dim(0)
	if si < 0 || si >= ns || ri < 0 || ri >= nr {
		return fmt.Errorf("Path.SetSynVal: index out of range: send %v of %v, recv %v of %v", si, ns, ri, nr)
	}
	pt.Wts.Values[ri*ns+si] = val
	return nil
}

///////////////////////////////////////////////////////////////////////
//  Weights File

// WriteWtsJSON writes the weights from this pathway from the receiver-side
// perspective in a JSON text format.  We build in the indentation logic to
// make it much faster and more efficient.
func (pt *Path) WriteWtsJSON(w io.Writer, depth int) {
	ns := len(pt.Send.Neurons)
	nr := len(pt.Recv.Neurons)
	w.Write(indent.TabBytes(depth))
	w.Write([]byte("{\n"))
	depth++
	w.Write(indent.TabBytes(depth))
	w.Write([]byte(fmt.Sprintf("\"From\": %q,\n", pt.Send.Nm)))
	w.Write(indent.TabBytes(depth))
	w.Write([]byte("\"Rs\": [\n"))
	depth++
	for ri := 0; ri < nr; ri++ {
		w.Write(indent.TabBytes(depth))
		w.Write([]byte("{\n"))
		depth++
		w.Write(indent.TabBytes(depth))
		w.Write([]byte(fmt.Sprintf("\"Ri\": %v,\n", ri)))
		w.Write(indent.TabBytes(depth))
		w.Write([]byte(fmt.Sprintf("\"N\": %v,\n", ns)))
		w.Write(indent.TabBytes(depth))
		w.Write([]byte("\"Si\": [ "))
		for si := 0; si < ns; si++ {
			w.Write([]byte(fmt.Sprintf("%v", si)))
			if si == ns-1 {
				w.Write([]byte(" "))
			} else {
				w.Write([]byte(", "))
			}
		}
		w.Write([]byte("],\n"))
		w.Write(indent.TabBytes(depth))
		w.Write([]byte("\"Wt\": [ "))
		for si := 0; si < ns; si++ {
			w.Write([]byte(strconv.FormatFloat(float64(pt.Wts.Values[ri*ns+si]), 'g', weights.Prec, 32)))
			if si == ns-1 {
				w.Write([]byte(" "))
			} else {
				w.Write([]byte(", "))
			}
		}
		w.Write([]byte("]\n"))
		depth--
		w.Write(indent.TabBytes(depth))
		if ri == nr-1 {
			w.Write([]byte("}\n"))
		} else {
			w.Write([]byte("},\n"))
		}
	}
	depth--
	w.Write(indent.TabBytes(depth))
	w.Write([]byte("]\n"))
	depth--
	w.Write(indent.TabBytes(depth))
	w.Write([]byte("}")) // note: leave unterminated as outer loop needs to add , or just \n depending
}

// SetWts sets the weights for this pathway from weights.Prjn decoded
// values
func (pt *Path) SetWts(pw *weights.Prjn) error {
	var err error
	for i := range pw.Rs {
		pr := &pw.Rs[i]
		for si := range pr.Si {
			er := pt.SetSynVal(pr.Si[si], pr.Ri, pr.Wt[si])
			if er != nil {
				err = er
			}
		}
	}
	return err
}
