// Copyright © 2022 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package coalescent

import (
	"fmt"
	"math"
)

// A ModelKind selects the shape of a [PopulationModel] epoch.
type ModelKind int

const (
	// Constant holds the effective population size fixed at Param
	// individuals from StartTime forward.
	Constant ModelKind = iota
	// Exponential grows (or shrinks) the effective population size as
	// N(t) = N(StartTime)·exp(−Param·(t−StartTime)), where N(StartTime)
	// is inherited by continuity from the preceding epoch.
	Exponential
)

// A PopulationModel describes one epoch of the population's demographic
// history, starting at StartTime (in the simulator's time units, 0 being
// the present). Models are supplied sorted by StartTime; see
// [ValidatePopulationModels].
type PopulationModel struct {
	StartTime float64
	Kind      ModelKind
	Param     float64
}

// ValidatePopulationModels returns [ErrUnsortedPopModels] if models is not
// sorted by non-decreasing StartTime, and [ErrBadPopModel] if any model has
// a negative StartTime, a non-positive size (Constant), or an undefined Kind.
func ValidatePopulationModels(models []PopulationModel) error {
	last := math.Inf(-1)
	for i, m := range models {
		if m.StartTime < 0 {
			return fmt.Errorf("%w: model %d: negative start time %g", ErrBadPopModel, i, m.StartTime)
		}
		if m.StartTime < last {
			return fmt.Errorf("%w: model %d starts at %g, after model %d at %g", ErrUnsortedPopModels, i, m.StartTime, i-1, last)
		}
		switch m.Kind {
		case Constant:
			if m.Param <= 0 {
				return fmt.Errorf("%w: model %d: non-positive population size %g", ErrBadPopModel, i, m.Param)
			}
		case Exponential:
			// Param is a growth rate; any finite value is admissible.
		default:
			return fmt.Errorf("%w: model %d: unknown kind %d", ErrBadPopModel, i, m.Kind)
		}
		last = m.StartTime
	}
	return nil
}

// an epoch is a population model with its reference size resolved: for a
// Constant epoch this is just Param; for an Exponential epoch it is the
// size the preceding epoch reaches at this epoch's StartTime, so that the
// size trajectory is continuous across epoch boundaries.
type epoch struct {
	startTime   float64
	kind        ModelKind
	param       float64
	refSize     float64 // resolved size at startTime
	hasBoundary bool    // true if this is not the last epoch
	boundary    float64 // startTime of the following epoch, if hasBoundary
}

// buildEpochs resolves models (already validated) into a chain of epochs,
// prepending an implicit constant(1) epoch at time 0 when models does not
// already start there, per the spec's default.
func buildEpochs(models []PopulationModel) []epoch {
	var src []PopulationModel
	if len(models) == 0 || models[0].StartTime > 0 {
		src = append([]PopulationModel{{StartTime: 0, Kind: Constant, Param: 1}}, models...)
	} else {
		src = models
	}

	epochs := make([]epoch, len(src))
	for i, m := range src {
		e := epoch{startTime: m.StartTime, kind: m.Kind, param: m.Param}
		switch m.Kind {
		case Constant:
			e.refSize = m.Param
		case Exponential:
			if i == 0 {
				e.refSize = 1
			} else {
				e.refSize = epochs[i-1].sizeAt(m.StartTime)
			}
		}
		if i+1 < len(src) {
			e.hasBoundary = true
			e.boundary = src[i+1].StartTime
		}
		epochs[i] = e
	}
	return epochs
}

// sizeAt returns the effective population size under this epoch at time t.
func (e epoch) sizeAt(t float64) float64 {
	switch e.kind {
	case Exponential:
		return e.refSize * math.Exp(-e.param*(t-e.startTime))
	default:
		return e.param
	}
}

// coalescenceWaitingTime draws, under this epoch's demographic trajectory,
// the elapsed real time from t until the integrated pairwise-coalescence
// hazard for k lineages reaches a unit-exponential threshold e. It returns
// +Inf if the epoch's trajectory never accumulates enough hazard (e.g. a
// population growing fast enough, backward in time, to outrun the
// coalescence rate); the caller then advances to the next epoch.
func (e epoch) coalescenceWaitingTime(t float64, k int, unitExp float64) float64 {
	if k < 2 {
		return math.Inf(1)
	}
	rate := float64(k) * float64(k-1)

	if e.kind == Constant || e.param == 0 {
		return unitExp * 2 * e.refSize / rate
	}

	alpha := e.param
	a := rate / (2 * e.refSize * alpha)
	x := math.Exp(alpha * (t - e.startTime))
	inner := x + unitExp/a
	if inner <= 0 {
		return math.Inf(1)
	}
	T := math.Log(inner)/alpha - (t - e.startTime)
	if T < 0 {
		// Guards against floating point round-off sending T marginally
		// negative when unitExp is tiny.
		T = 0
	}
	return T
}
