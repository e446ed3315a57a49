package theanets

import (
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anydiff/anyseq"
)

// An Autoencoder is trained to reproduce its input at
// every timestep.
type Autoencoder struct {
	// Weighted enables a weights input with the same shape
	// as the output, scaling each entry of the error.
	Weighted bool
}

// Vars returns x, followed by weights if the network is
// weighted.
func (a *Autoencoder) Vars() []Var {
	return weightedVars(a.Weighted, Tensor3, Var{Name: VarX, Kind: Tensor3})
}

// Error computes the mean squared difference between the
// output and the input.
func (a *Autoencoder) Error(in *Inputs, out anyseq.Seq) anydiff.Res {
	requireInput(in.X, VarX)
	n := Frames(out)
	actual := Flatten(out, 0, n)
	desired := constant(in.X, 0, Frames(in.X))
	checkSameLen(desired, actual, "inputs")
	return meanSquared(anydiff.Sub(actual, desired), a.weights(in, 0, n))
}

func (a *Autoencoder) weights(in *Inputs, start, end int) anydiff.Res {
	if !a.Weighted {
		return nil
	}
	requireInput(in.Weights, VarWeights)
	return constant(in.Weights, start, end)
}

// A Predictor is trained to produce the input for the
// next timestep.
//
// The output at time t is compared to the input at time
// t+1; the last output and the first input are unused.
type Predictor struct {
	Autoencoder

	// Prediction maps the raw outputs to predicted inputs.
	// If nil, the outputs are used as-is.
	Prediction func(out anyseq.Seq) anyseq.Seq
}

// Error computes the mean squared difference between each
// prediction and the following input.
func (p *Predictor) Error(in *Inputs, out anyseq.Seq) anydiff.Res {
	requireInput(in.X, VarX)
	pred := out
	if p.Prediction != nil {
		pred = p.Prediction(out)
	}
	n := Frames(in.X)
	if n == 0 || Frames(pred) == 0 {
		panic("cannot predict over an empty sequence")
	}
	actual := Flatten(pred, 0, Frames(pred)-1)
	desired := constant(in.X, 1, n)
	checkSameLen(desired, actual, "inputs")
	return meanSquared(anydiff.Sub(desired, actual), p.weights(in, 1, n))
}
