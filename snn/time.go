// Copyright (c) 2026, The SNN Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package snn

// Time manages the discrete step counters for simulation run time.
// Each input image is presented for a fixed window of StepsPerImg steps,
// with Step counting within the current window and StepTot across the
// whole run.
type Time struct {
	Step        int `desc:"step counter within the current image window, reset at each window start"`
	StepTot     int `desc:"total step count since last Reset, never reset during a run"`
	StepsPerImg int `def:"128" desc:"number of steps each image is presented for"`
}

// NewTime returns a new Time struct with default parameters
func NewTime() *Time {
	tm := &Time{}
	tm.Defaults()
	return tm
}

// Defaults sets default parameters
func (tm *Time) Defaults() {
	tm.StepsPerImg = 128
}

// Reset resets the counters all back to zero
func (tm *Time) Reset() {
	tm.Step = 0
	tm.StepTot = 0
}

// WindowStart starts a new presentation window: resets the within-window
// step counter
func (tm *Time) WindowStart() {
	tm.Step = 0
}

// StepInc increments at the step level
func (tm *Time) StepInc() {
	tm.Step++
	tm.StepTot++
}
