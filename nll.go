package theanets

import (
	"fmt"
	"math"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyvec"
)

type negLogProbRes struct {
	In      anydiff.Res
	Indices []int
	Picked  []float64
	Min     float64
	Max     float64
	Out     anyvec.Vector
}

// NegLogProb treats probs as a matrix with one row per
// entry of classes, and computes -log(p) for the entry of
// each row selected by classes.
//
// Probabilities are clipped to [min, max] before taking
// the logarithm.
// Clipped entries receive no gradient.
func NegLogProb(probs anydiff.Res, classes []int, min, max float64) anydiff.Res {
	vals := vecFloats(probs.Output())
	if len(classes) == 0 {
		if len(vals) != 0 {
			panic("probabilities given for zero rows")
		}
	} else if len(vals)%len(classes) != 0 {
		panic(fmt.Sprintf("%d probabilities cannot be split into %d rows",
			len(vals), len(classes)))
	}
	var cols int
	if len(classes) > 0 {
		cols = len(vals) / len(classes)
	}

	res := &negLogProbRes{
		In:      probs,
		Indices: make([]int, len(classes)),
		Picked:  make([]float64, len(classes)),
		Min:     min,
		Max:     max,
	}
	outVals := make([]float64, len(classes))
	for row, class := range classes {
		if class < 0 || class >= cols {
			panic(fmt.Sprintf("class %d out of range for %d columns", class, cols))
		}
		idx := row*cols + class
		p := vals[idx]
		res.Indices[row] = idx
		res.Picked[row] = p
		outVals[row] = -math.Log(math.Max(min, math.Min(max, p)))
	}
	c := probs.Output().Creator()
	res.Out = c.MakeVectorData(c.MakeNumericList(outVals))
	return res
}

func (n *negLogProbRes) Output() anyvec.Vector {
	return n.Out
}

func (n *negLogProbRes) Vars() anydiff.VarSet {
	return n.In.Vars()
}

func (n *negLogProbRes) Propagate(u anyvec.Vector, g anydiff.Grad) {
	upVals := vecFloats(u)
	down := make([]float64, n.In.Output().Len())
	for row, idx := range n.Indices {
		p := n.Picked[row]
		if p >= n.Min && p <= n.Max {
			down[idx] -= upVals[row] / p
		}
	}
	c := n.Out.Creator()
	n.In.Propagate(c.MakeVectorData(c.MakeNumericList(down)), g)
}

// classIndices rounds label components to integers.
func classIndices(labels anyvec.Vector) []int {
	vals := vecFloats(labels)
	res := make([]int, len(vals))
	for i, x := range vals {
		res[i] = int(math.Round(x))
	}
	return res
}
