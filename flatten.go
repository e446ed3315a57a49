package theanets

import (
	"fmt"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anydiff/anyseq"
	"github.com/unixpickle/anyvec"
)

type flattenRes struct {
	In    anyseq.Seq
	Start int
	End   int
	Out   anyvec.Vector
}

// Flatten concatenates the packed vectors of timesteps
// start through end-1 into a single vector.
//
// For a sequence of fixed-size batches, the result is the
// (time, batch, component) tensor in row-major order.
func Flatten(seq anyseq.Seq, start, end int) anydiff.Res {
	outs := seq.Output()
	if start < 0 || end > len(outs) || start > end {
		panic(fmt.Sprintf("timestep range [%d, %d) out of bounds for %d timesteps",
			start, end, len(outs)))
	}
	vecs := make([]anyvec.Vector, 0, end-start)
	for _, batch := range outs[start:end] {
		vecs = append(vecs, batch.Packed)
	}
	return &flattenRes{
		In:    seq,
		Start: start,
		End:   end,
		Out:   seq.Creator().Concat(vecs...),
	}
}

// FlattenAll is Flatten over every timestep.
func FlattenAll(seq anyseq.Seq) anydiff.Res {
	return Flatten(seq, 0, Frames(seq))
}

// Frames returns the number of timesteps in seq.
func Frames(seq anyseq.Seq) int {
	return len(seq.Output())
}

func (f *flattenRes) Output() anyvec.Vector {
	return f.Out
}

func (f *flattenRes) Vars() anydiff.VarSet {
	return f.In.Vars()
}

func (f *flattenRes) Propagate(u anyvec.Vector, g anydiff.Grad) {
	outs := f.In.Output()
	upstream := make([]*anyseq.Batch, len(outs))
	var offset int
	for i, batch := range outs {
		size := batch.Packed.Len()
		var packed anyvec.Vector
		if i >= f.Start && i < f.End {
			packed = u.Slice(offset, offset+size)
			offset += size
		} else {
			packed = batch.Packed.Creator().MakeVector(size)
		}
		upstream[i] = &anyseq.Batch{Packed: packed, Present: batch.Present}
	}
	f.In.Propagate(upstream, g)
}

// vecFloats reads the components of a vector.
//
// The Creator should use []float32 or []float64 as its
// numeric type.
func vecFloats(v anyvec.Vector) []float64 {
	switch data := v.Data().(type) {
	case []float64:
		return data
	case []float32:
		res := make([]float64, len(data))
		for i, x := range data {
			res[i] = float64(x)
		}
		return res
	default:
		panic(fmt.Sprintf("unsupported anyvec.NumericList: %T", data))
	}
}

// vecSum adds up the components of a vector.
func vecSum(v anyvec.Vector) float64 {
	var sum float64
	for _, x := range vecFloats(v) {
		sum += x
	}
	return sum
}
