package theanets

import (
	"github.com/pkg/errors"
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anydiff/anyseq"
	"github.com/unixpickle/anynet/anyrnn"
	"github.com/unixpickle/anynet/anysgd"
	"github.com/unixpickle/anyvec"
)

// A Trainer fits a recurrent block with plain or
// transformed gradient descent, drawing one minibatch per
// step.
type Trainer struct {
	Block   anyrnn.Block
	Net     Network
	Batches BatchFunc

	// Params are the variables to update.
	// If nil, the block's Parameters() are used.
	Params []*anydiff.Var

	// Transformer, if non-nil, is applied to every
	// gradient before the update (e.g. Adam).
	Transformer anysgd.Transformer

	Rate float64

	// StatusFunc, if non-nil, is called after every step.
	StatusFunc func(iter int, cost float64)

	iter int
}

// Parameters returns the variables the Trainer updates.
func (t *Trainer) Parameters() []*anydiff.Var {
	if t.Params != nil {
		return t.Params
	}
	if p, ok := t.Block.(interface {
		Parameters() []*anydiff.Var
	}); ok {
		return p.Parameters()
	}
	return nil
}

// Cost evaluates the loss on a batch without updating
// anything.
func (t *Trainer) Cost(batch []anyseq.Seq) (float64, error) {
	cost, err := t.cost(batch)
	if err != nil {
		return 0, err
	}
	return vecSum(cost.Output()), nil
}

// Step draws a batch and performs one update.
// It returns the cost before the update.
func (t *Trainer) Step() (float64, error) {
	cost, err := t.cost(t.Batches())
	if err != nil {
		return 0, err
	}

	value := vecSum(cost.Output())
	c := cost.Output().Creator()
	grad := anydiff.NewGrad(t.Parameters()...)
	cost.Propagate(c.MakeVectorData(c.MakeNumericList([]float64{1})), grad)

	if t.Transformer != nil {
		grad = t.Transformer.Transform(grad)
	}
	applyGrad(c, grad, t.Rate)

	t.iter++
	if t.StatusFunc != nil {
		t.StatusFunc(t.iter, value)
	}
	return value, nil
}

// Run calls Step until iters steps have been taken or
// stop is closed.
// If iters is 0, only stop ends training.
func (t *Trainer) Run(stop <-chan struct{}, iters int) error {
	for i := 0; iters == 0 || i < iters; i++ {
		select {
		case <-stop:
			return nil
		default:
		}
		if _, err := t.Step(); err != nil {
			return errors.Wrapf(err, "step %d", t.iter+1)
		}
	}
	return nil
}

func (t *Trainer) cost(batch []anyseq.Seq) (anydiff.Res, error) {
	in, err := Bind(t.Net.Vars(), batch)
	if err != nil {
		return nil, err
	}
	out := anyrnn.Map(in.X, t.Block)
	return t.Net.Error(in, out), nil
}

func applyGrad(c anyvec.Creator, g anydiff.Grad, rate float64) {
	scale := c.MakeNumeric(-rate)
	for v, vec := range g {
		vec.Scale(scale)
		v.Vector.Add(vec)
	}
}
