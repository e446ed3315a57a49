package theanets

import (
	"fmt"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anydiff/anyseq"
)

// constant flattens an input sequence into a vector which
// receives no gradient.
func constant(seq anyseq.Seq, start, end int) anydiff.Res {
	return anydiff.NewConst(Flatten(seq, start, end).Output())
}

// meanSquared reduces an error vector to the mean of its
// squares, or to a weighted mean if weights is non-nil.
func meanSquared(err, weights anydiff.Res) anydiff.Res {
	return mean(anydiff.Mul(err, err), weights)
}

// mean averages the components of v.
//
// If weights is non-nil, the result is sum(w*v)/sum(w).
func mean(v, weights anydiff.Res) anydiff.Res {
	c := v.Output().Creator()
	if weights == nil {
		n := v.Output().Len()
		return anydiff.Scale(anydiff.Sum(v), c.MakeNumeric(1/float64(n)))
	}
	checkSameLen(weights, v, "weights")
	total := vecSum(weights.Output())
	return anydiff.Scale(anydiff.Sum(anydiff.Mul(weights, v)), c.MakeNumeric(1/total))
}

func checkSameLen(actual, expected anydiff.Res, what string) {
	if actual.Output().Len() != expected.Output().Len() {
		panic(fmt.Sprintf("%s have %d components but output has %d", what,
			actual.Output().Len(), expected.Output().Len()))
	}
}

func requireInput(seq anyseq.Seq, name string) {
	if seq == nil {
		panic("missing input: " + name)
	}
}
