package theanets

import (
	"math"
	"math/rand"
	"testing"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anydiff/anyseq"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvec64"
)

// testVarSeq generates a sequence of numLanes lanes, each
// numSteps timesteps long.
//
// Every timestep depends on its own variable, so the
// resulting sequence is not constant.
func testVarSeq(c anyvec.Creator, inSize, numLanes, numSteps int) (anyseq.Seq,
	[]*anydiff.Var) {
	var vars []*anydiff.Var
	var resBatches []*anyseq.ResBatch
	for i := 0; i < numSteps; i++ {
		vec := c.MakeVector(inSize * numLanes)
		anyvec.Rand(vec, anyvec.Normal, nil)
		v := anydiff.NewVar(vec)
		vars = append(vars, v)
		resBatches = append(resBatches, &anyseq.ResBatch{
			Packed:  v,
			Present: allPresent(numLanes),
		})
	}
	return anyseq.ResSeq(c, resBatches), vars
}

// constSeq creates a sequence from per-lane frames.
// The slice is indexed as lanes[lane][time][component].
func constSeq(c anyvec.Creator, lanes [][][]float64) anyseq.Seq {
	list := make([][]anyvec.Vector, len(lanes))
	for i, lane := range lanes {
		for _, frame := range lane {
			list[i] = append(list[i], c.MakeVectorData(c.MakeNumericList(frame)))
		}
	}
	return anyseq.ConstSeqList(c, list)
}

// varSeq is like constSeq, but every timestep is backed
// by a variable.
func varSeq(c anyvec.Creator, lanes [][][]float64) (anyseq.Seq, []*anydiff.Var) {
	var vars []*anydiff.Var
	var resBatches []*anyseq.ResBatch
	for _, batch := range constSeq(c, lanes).Output() {
		v := anydiff.NewVar(batch.Packed)
		vars = append(vars, v)
		resBatches = append(resBatches, &anyseq.ResBatch{
			Packed:  v,
			Present: batch.Present,
		})
	}
	return anyseq.ResSeq(c, resBatches), vars
}

func allPresent(n int) []bool {
	res := make([]bool, n)
	for i := range res {
		res[i] = true
	}
	return res
}

// laneFrame reads one frame of one lane from a packed
// timestep.
func laneFrame(batch *anyseq.Batch, lane int) []float64 {
	data := vecFloats(batch.Packed)
	size := len(data) / batch.NumPresent()
	return data[lane*size : (lane+1)*size]
}

// testEquivalentRes ensures that two ways of producing an
// anydiff.Res agree in output and in gradient.
func testEquivalentRes(t *testing.T, vars []*anydiff.Var, actual,
	expected func() anydiff.Res) {
	t.Run("Out", func(t *testing.T) {
		act := vecFloats(actual().Output())
		exp := vecFloats(expected().Output())
		if len(act) != len(exp) {
			t.Fatalf("output length: expected %d got %d", len(exp), len(act))
		}
		for i, x := range exp {
			if math.Abs(x-act[i]) > 1e-4 {
				t.Fatalf("output mismatch: expected %v got %v", exp, act)
			}
		}
	})
	t.Run("Grad", func(t *testing.T) {
		actGrad := computeGradient(actual(), vars)
		expGrad := computeGradient(expected(), vars)
		gradientsEquivalent(t, actGrad, expGrad)
	})
}

func computeGradient(res anydiff.Res, vars []*anydiff.Var) anydiff.Grad {
	grad := anydiff.NewGrad(vars...)

	upstreamGen := rand.New(rand.NewSource(1337))
	data := make([]float64, res.Output().Len())
	for i := range data {
		data[i] = upstreamGen.NormFloat64()
	}
	c := res.Output().Creator()
	res.Propagate(c.MakeVectorData(c.MakeNumericList(data)), grad)
	return grad
}

func gradientsEquivalent(t *testing.T, actGrad, expGrad anydiff.Grad) {
	for variable, vec := range actGrad {
		expVec := expGrad[variable]
		if expVec == nil {
			t.Error("excess variable")
			continue
		}
		act := vecFloats(vec)
		exp := vecFloats(expVec)
		for i, x := range exp {
			if math.Abs(x-act[i]) > 1e-4 {
				t.Errorf("gradient mismatch: expected %v got %v", exp, act)
				return
			}
		}
	}
}

// checkGradient compares the gradient of a scalar Res
// against finite differences.
func checkGradient(t *testing.T, vars []*anydiff.Var, f func() anydiff.Res) {
	const epsilon = 1e-6

	grad := anydiff.NewGrad(vars...)
	res := f()
	c := res.Output().Creator()
	if res.Output().Len() != 1 {
		t.Fatalf("expected scalar output but got %d components", res.Output().Len())
	}
	res.Propagate(c.MakeVectorData(c.MakeNumericList([]float64{1})), grad)

	for varIdx, v := range vars {
		analytic := vecFloats(grad[v])
		orig := append([]float64{}, vecFloats(v.Vector)...)
		for i := range orig {
			perturbed := append([]float64{}, orig...)
			perturbed[i] += epsilon
			v.Vector.SetData(c.MakeNumericList(perturbed))
			plus := vecSum(f().Output())
			perturbed[i] -= 2 * epsilon
			v.Vector.SetData(c.MakeNumericList(perturbed))
			minus := vecSum(f().Output())
			v.Vector.SetData(c.MakeNumericList(orig))

			numeric := (plus - minus) / (2 * epsilon)
			if math.Abs(numeric-analytic[i]) > 1e-4 {
				t.Errorf("var %d component %d: expected gradient %f got %f",
					varIdx, i, numeric, analytic[i])
			}
		}
	}
}

func testCreator() anyvec.Creator {
	return anyvec64.DefaultCreator{}
}
