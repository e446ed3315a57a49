package theanets

import (
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anydiff/anyseq"
)

// A Regressor is trained to produce a target output at
// every timestep.
type Regressor struct {
	// Weighted enables a weights input with the same shape
	// as the targets.
	Weighted bool
}

// Vars returns x and targets, followed by weights if the
// network is weighted.
func (r *Regressor) Vars() []Var {
	return weightedVars(r.Weighted, Tensor3,
		Var{Name: VarX, Kind: Tensor3},
		Var{Name: VarTargets, Kind: Tensor3})
}

// Error computes the mean squared difference between the
// output and the targets.
func (r *Regressor) Error(in *Inputs, out anyseq.Seq) anydiff.Res {
	requireInput(in.Targets, VarTargets)
	n := Frames(out)
	actual := Flatten(out, 0, n)
	desired := constant(in.Targets, 0, Frames(in.Targets))
	checkSameLen(desired, actual, "targets")

	var weights anydiff.Res
	if r.Weighted {
		requireInput(in.Weights, VarWeights)
		weights = constant(in.Weights, 0, n)
	}
	return meanSquared(anydiff.Sub(actual, desired), weights)
}
