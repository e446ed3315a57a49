package theanets

import (
	"fmt"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anydiff/anyseq"
)

// Probability bounds applied before the logarithm in
// Classifier.Error.
const (
	MinClassProb = 1e-5
	MaxClassProb = 1
)

// A Classifier is trained to assign high probability to
// the correct class at every timestep.
//
// The network output at each timestep holds one
// probability distribution per lane.
// Labels hold one class index per lane.
type Classifier struct {
	// Weighted enables a weights input with one entry per
	// lane per timestep.
	Weighted bool
}

// Vars returns x and labels, followed by weights if the
// network is weighted.
func (c *Classifier) Vars() []Var {
	return weightedVars(c.Weighted, Matrix,
		Var{Name: VarX, Kind: Tensor3},
		Var{Name: VarLabels, Kind: IntMatrix})
}

// Error computes the mean negative log-probability of the
// correct classes.
func (c *Classifier) Error(in *Inputs, out anyseq.Seq) anydiff.Res {
	requireInput(in.Labels, VarLabels)
	n := Frames(out)
	if Frames(in.Labels) != n {
		panic(fmt.Sprintf("labels have %d timesteps but output has %d",
			Frames(in.Labels), n))
	}
	labels := Flatten(in.Labels, 0, n).Output()
	probs := Flatten(out, 0, n)
	rows := numPresent(out)
	if labels.Len() != rows {
		panic(fmt.Sprintf("labels have %d components but output has %d rows",
			labels.Len(), rows))
	}
	if rows > 0 && probs.Output().Len()%rows != 0 {
		panic(fmt.Sprintf("output has %d components for %d rows",
			probs.Output().Len(), rows))
	}
	nlp := NegLogProb(probs, classIndices(labels), MinClassProb, MaxClassProb)

	var weights anydiff.Res
	if c.Weighted {
		requireInput(in.Weights, VarWeights)
		weights = constant(in.Weights, 0, n)
	}
	return mean(nlp, weights)
}

// numPresent counts the lanes present across every
// timestep of seq.
func numPresent(seq anyseq.Seq) int {
	var res int
	for _, batch := range seq.Output() {
		res += batch.NumPresent()
	}
	return res
}
