// Copyright (c) 2026, The SNN Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package snn

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"unsafe"

	"github.com/c2h5oh/datasize"
	"github.com/emer/emergent/emer"
	"github.com/emer/emergent/weights"
	"github.com/goki/ki/indent"
)

// snn.Network is a feed-forward network of spiking layers connected by
// fully connected pathways with fixed weights.  Layers are stepped in the
// order they were added, so a spike propagates through the entire network
// within a single step: input generation, then layer-by-layer propagation.
type Network struct {
	Nm     string            `desc:"name of the network"`
	Layers []*Layer          `desc:"list of layers, in feed-forward stepping order"`
	LayMap map[string]*Layer `view:"-" desc:"map of name to layer -- built in Build"`
}

// NewNetwork returns a new network with the given name
func NewNetwork(name string) *Network {
	nt := &Network{Nm: name}
	nt.LayMap = make(map[string]*Layer)
	return nt
}

func (nt *Network) Name() string { return nt.Nm }

// NLayers returns the number of layers in the network
func (nt *Network) NLayers() int { return len(nt.Layers) }

// AddLayer adds a new layer with given name, shape and type to the network.
// Layers must be added in feed-forward order: each step processes layers in
// this order, so senders must come before receivers.
func (nt *Network) AddLayer(name string, shape []int, typ emer.LayerType) *Layer {
	ly := &Layer{Nm: name, Typ: typ}
	ly.SetShape(shape)
	ly.Idx = len(nt.Layers)
	nt.Layers = append(nt.Layers, ly)
	if nt.LayMap == nil {
		nt.LayMap = make(map[string]*Layer)
	}
	nt.LayMap[name] = ly
	return ly
}

// LayerByName returns a layer by looking it up by name -- nil if not found
func (nt *Network) LayerByName(name string) *Layer {
	return nt.LayMap[name]
}

// LayerByNameTry returns a layer by looking it up by name,
// with an error if the layer is not found
func (nt *Network) LayerByNameTry(name string) (*Layer, error) {
	ly, ok := nt.LayMap[name]
	if !ok {
		return nil, fmt.Errorf("layer named: %v not found in Network: %v", name, nt.Nm)
	}
	return ly, nil
}

// ConnectLayers establishes a fully connected pathway between two layers
func (nt *Network) ConnectLayers(send, recv *Layer) *Path {
	pt := &Path{}
	pt.Connect(send, recv)
	recv.RecvPaths = append(recv.RecvPaths, pt)
	send.SendPaths = append(send.SendPaths, pt)
	return pt
}

// Defaults sets all the default parameters for all layers and pathways
func (nt *Network) Defaults() {
	for li, ly := range nt.Layers {
		ly.Defaults()
		ly.Idx = li
	}
}

// UpdateParams updates all the derived parameters if any have changed,
// for all layers and pathways
func (nt *Network) UpdateParams() {
	for _, ly := range nt.Layers {
		ly.UpdateParams()
	}
}

// Build constructs the layer and pathway state based on the layer shapes
// and patterns of interconnectivity
func (nt *Network) Build() error {
	nt.LayMap = make(map[string]*Layer, len(nt.Layers))
	var err error
	for li, ly := range nt.Layers {
		ly.Idx = li
		nt.LayMap[ly.Nm] = ly
		if ly.Off {
			continue
		}
		er := ly.Build()
		if er != nil {
			err = er
		}
	}
	if err != nil {
		return err
	}
	for _, ly := range nt.Layers {
		if ly.Off {
			continue
		}
		for _, pt := range ly.RecvPaths {
			er := pt.Build()
			if er != nil {
				err = er
			}
		}
	}
	return err
}

// SizeReport returns a string reporting the size of each layer and pathway
// in the network, and total memory footprint
func (nt *Network) SizeReport() string {
	var b strings.Builder
	neur := 0
	neurMem := 0
	wts := 0
	wtsMem := 0
	for _, ly := range nt.Layers {
		nn := len(ly.Neurons)
		nmem := nn * int(unsafe.Sizeof(Neuron{}))
		neur += nn
		neurMem += nmem
		fmt.Fprintf(&b, "%14s:\t Neurons: %d\t NeurMem: %v \t Sends To:\n", ly.Nm, nn, (datasize.ByteSize)(nmem).HumanReadable())
		for _, pt := range ly.SendPaths {
			nw := pt.Wts.Len()
			pmem := nw*4 + len(pt.GInc)*4
			wts += nw
			wtsMem += pmem
			fmt.Fprintf(&b, "\t%14s:\t Wts: %d\t WtsMem: %v\n", pt.Recv.Nm, nw, (datasize.ByteSize)(pmem).HumanReadable())
		}
	}
	fmt.Fprintf(&b, "\n\n%14s:\t Neurons: %d\t NeurMem: %v \t Wts: %d \t WtsMem: %v\n", nt.Nm, neur, (datasize.ByteSize)(neurMem).HumanReadable(), wts, (datasize.ByteSize)(wtsMem).HumanReadable())
	return b.String()
}

//////////////////////////////////////////////////////////////////////////////////////
//  Init methods

// InitActs fully initializes activation state in all layers, including any
// pending pathway input -- called by the control loop at every image
// boundary, before applying the next input.
func (nt *Network) InitActs() {
	for _, ly := range nt.Layers {
		if ly.Off {
			continue
		}
		ly.InitActs()
	}
}

// InitExt initializes external input state -- call prior to applying
// external inputs to layers
func (nt *Network) InitExt() {
	for _, ly := range nt.Layers {
		if ly.Off {
			continue
		}
		ly.InitExt()
	}
}

//////////////////////////////////////////////////////////////////////////////////////
//  Cycle

// Cycle runs one simulation step of spiking updating over the whole
// network, processing layers in their feed-forward order with a fixed
// phase order per layer:
//   - GFromInc: collect the raw input (external drive for the encoder,
//     bias + accumulated spike input for other layers)
//   - CycleNeuron: integrate current and membrane potential, fire and
//     reset above threshold
//   - SendSpike: deliver this step's spikes to receiving pathways
//
// Because senders precede receivers in layer order, spikes emitted by the
// encoder reach the output layer within the same step.
func (nt *Network) Cycle(tm *Time) {
	for _, ly := range nt.Layers {
		if ly.Off {
			continue
		}
		ly.GFromInc()
		ly.CycleNeuron()
		ly.SendSpike()
	}
}

//////////////////////////////////////////////////////////////////////////////////////
//  Weights File

// SaveWtsJSON saves network weights and biases to a JSON-formatted file.
// If filename has .gz extension, then file is gzip compressed.
func (nt *Network) SaveWtsJSON(filename string) error {
	fp, err := os.Create(filename)
	defer fp.Close()
	if err != nil {
		log.Println(err)
		return err
	}
	ext := filepath.Ext(filename)
	if ext == ".gz" {
		gzr := gzip.NewWriter(fp)
		err = nt.WriteWtsJSON(gzr)
		gzr.Close()
	} else {
		bw := bufio.NewWriter(fp)
		err = nt.WriteWtsJSON(bw)
		bw.Flush()
	}
	return err
}

// OpenWtsJSON opens network weights and biases from a JSON-formatted file.
// If filename has .gz extension, then file is gzip uncompressed.
func (nt *Network) OpenWtsJSON(filename string) error {
	fp, err := os.Open(filename)
	defer fp.Close()
	if err != nil {
		log.Println(err)
		return err
	}
	ext := filepath.Ext(filename)
	if ext == ".gz" {
		gzr, err := gzip.NewReader(fp)
		if err != nil {
			log.Println(err)
			return err
		}
		defer gzr.Close()
		return nt.ReadWtsJSON(gzr)
	}
	return nt.ReadWtsJSON(bufio.NewReader(fp))
}

// WriteWtsJSON writes the weights from this network from the receiver-side
// perspective in a JSON text format.  We build in the indentation logic to
// make it much faster and more efficient.
func (nt *Network) WriteWtsJSON(w io.Writer) error {
	depth := 0
	w.Write(indent.TabBytes(depth))
	w.Write([]byte("{\n"))
	depth++
	w.Write(indent.TabBytes(depth))
	w.Write([]byte(fmt.Sprintf("\"Network\": %q,\n", nt.Nm))) // note: can't use \n in `` so need "
	w.Write(indent.TabBytes(depth))
	onls := make([]*Layer, 0, len(nt.Layers))
	for _, ly := range nt.Layers {
		if !ly.Off {
			onls = append(onls, ly)
		}
	}
	nl := len(onls)
	if nl == 0 {
		w.Write([]byte("\"Layers\": null\n"))
	} else {
		w.Write([]byte("\"Layers\": [\n"))
		depth++
		for li, ly := range onls {
			ly.WriteWtsJSON(w, depth)
			if li == nl-1 {
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
	_, err := w.Write([]byte("}\n"))
	return err
}

// ReadWtsJSON reads network weights from the receiver-side perspective in a
// JSON text format.  Reads entire file into a temporary weights.Weights
// structure that is then passed to Layers etc using SetWts method.
func (nt *Network) ReadWtsJSON(r io.Reader) error {
	nw, err := weights.NetReadJSON(r)
	if err != nil {
		return err // note: already logged
	}
	err = nt.SetWts(nw)
	if err != nil {
		log.Println(err)
	}
	return err
}

// SetWts sets the weights for this network from weights.Network decoded
// values
func (nt *Network) SetWts(nw *weights.Network) error {
	var err error
	if nw.Network != "" {
		nt.Nm = nw.Network
	}
	for li := range nw.Layers {
		lw := &nw.Layers[li]
		ly, er := nt.LayerByNameTry(lw.Layer)
		if er != nil {
			err = er
			continue
		}
		er = ly.SetWts(lw)
		if er != nil {
			err = er
		}
	}
	return err
}
