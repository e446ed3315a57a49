// Package theanets provides recurrent network variants
// and the training plumbing that goes with them.
//
// Each variant declares the inputs it needs from a batch
// and builds a differentiable loss from a network's
// output sequence.
// Differentiation itself is left to anydiff.
//
// Batches are laid out the way anyseq lays out sequences:
// one anyseq.Batch per timestep, with one lane per window
// in the minibatch.
package theanets

import (
	"github.com/pkg/errors"
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anydiff/anyseq"
)

var (
	// ErrInvalidWindow indicates a window length or batch
	// size which cannot be sampled from a dataset.
	ErrInvalidWindow = errors.New("invalid window")

	// ErrShapeMismatch indicates inputs whose dimensions do
	// not line up.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrMissingInput indicates that a variable a network
	// requires was not bound.
	ErrMissingInput = errors.New("missing input")
)

// VarKind describes the layout of an input variable.
type VarKind int

const (
	// Tensor3 is indexed by (time, batch, component).
	Tensor3 VarKind = iota

	// Matrix is indexed by (time, batch).
	Matrix

	// IntMatrix is a Matrix whose entries are integers.
	IntMatrix
)

// String returns a short name for the kind.
func (v VarKind) String() string {
	switch v {
	case Tensor3:
		return "tensor3"
	case Matrix:
		return "matrix"
	case IntMatrix:
		return "imatrix"
	default:
		return "unknown"
	}
}

// Names of the input variables used by the networks in
// this package.
const (
	VarX       = "x"
	VarTargets = "targets"
	VarLabels  = "labels"
	VarWeights = "weights"
)

// A Var declares one input that a Network needs for each
// batch.
type Var struct {
	Name string
	Kind VarKind
}

// A Network is a recurrent network variant.
//
// It declares the inputs it consumes and computes its
// training loss given the output of the recurrent block.
type Network interface {
	// Vars returns the inputs this network requires, in the
	// order a batch should supply them.
	Vars() []Var

	// Error builds the loss for a batch.
	// The result has exactly one component.
	Error(in *Inputs, out anyseq.Seq) anydiff.Res
}

// Inputs stores the bound input sequences for one batch.
//
// Fields which a Network does not declare are nil.
type Inputs struct {
	X       anyseq.Seq
	Targets anyseq.Seq
	Labels  anyseq.Seq
	Weights anyseq.Seq
}

// Bind assigns values to the variables in order.
//
// It fails if the number of values differs from the
// number of variables or if a variable name is unknown.
func Bind(vars []Var, values []anyseq.Seq) (*Inputs, error) {
	if len(vars) != len(values) {
		return nil, errors.Wrapf(ErrShapeMismatch, "bind: %d variables but %d values",
			len(vars), len(values))
	}
	res := &Inputs{}
	for i, v := range vars {
		if values[i] == nil {
			return nil, errors.Wrapf(ErrMissingInput, "bind: %s", v.Name)
		}
		switch v.Name {
		case VarX:
			res.X = values[i]
		case VarTargets:
			res.Targets = values[i]
		case VarLabels:
			res.Labels = values[i]
		case VarWeights:
			res.Weights = values[i]
		default:
			return nil, errors.Wrapf(ErrShapeMismatch, "bind: unknown variable %q", v.Name)
		}
	}
	if res.X == nil {
		return nil, errors.Wrapf(ErrMissingInput, "bind: %s", VarX)
	}
	return res, nil
}

// weightedVars appends the weights variable when needed.
func weightedVars(weighted bool, kind VarKind, vars ...Var) []Var {
	if weighted {
		return append(vars, Var{Name: VarWeights, Kind: kind})
	}
	return vars
}
