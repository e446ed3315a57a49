package main

import (
	"math"
	"testing"

	"github.com/amp-at-clover/theanets"
	"github.com/unixpickle/anydiff/anyseq"
	"github.com/unixpickle/anynet/anyrnn"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvec64"
)

func TestBuildNetwork(t *testing.T) {
	labels := [][]float64{{1, 2, 3}}
	cases := []struct {
		variant string
		outSize int
	}{
		{"autoencoder", 4},
		{"predictor", 4},
		{"regressor", 3},
		{"classifier", 5},
	}
	for _, c := range cases {
		cfg := DefaultConfig()
		cfg.Variant = c.variant
		cfg.Classes = 5
		net, outSize := buildNetwork(cfg, 4, labels)
		if outSize != c.outSize {
			t.Errorf("%s: expected output size %d but got %d", c.variant, c.outSize, outSize)
		}
		switch net.(type) {
		case *theanets.Autoencoder:
			if c.variant != "autoencoder" {
				t.Errorf("%s: got an autoencoder", c.variant)
			}
		case *theanets.Predictor:
			if c.variant != "predictor" {
				t.Errorf("%s: got a predictor", c.variant)
			}
		case *theanets.Regressor:
			if c.variant != "regressor" {
				t.Errorf("%s: got a regressor", c.variant)
			}
		case *theanets.Classifier:
			if c.variant != "classifier" {
				t.Errorf("%s: got a classifier", c.variant)
			}
		}
	}
}

func TestBuildBlockSoftmax(t *testing.T) {
	c := anyvec64.DefaultCreator{}
	cfg := DefaultConfig()
	cfg.Variant = "classifier"
	cfg.Classes = 3
	cfg.Hidden = 4
	block, params := buildBlock(c, cfg, 2, cfg.Classes)
	if len(params) == 0 {
		t.Fatal("expected parameters")
	}

	lanes := [][]anyvec.Vector{
		{c.MakeVectorData([]float64{1, -1}), c.MakeVectorData([]float64{0.5, 2})},
		{c.MakeVectorData([]float64{-3, 0}), c.MakeVectorData([]float64{0, 1})},
	}
	out := anyrnn.Map(anyseq.ConstSeqList(c, lanes), block).Output()
	if len(out) != 2 {
		t.Fatalf("expected 2 timesteps but got %d", len(out))
	}
	for step, batch := range out {
		probs := batch.Packed.Data().([]float64)
		if len(probs) != 2*cfg.Classes {
			t.Fatalf("step %d: expected %d components but got %d", step,
				2*cfg.Classes, len(probs))
		}
		for lane := 0; lane < 2; lane++ {
			var sum float64
			for _, p := range probs[lane*cfg.Classes : (lane+1)*cfg.Classes] {
				if p <= 0 {
					t.Errorf("step %d lane %d: non-positive probability %f", step, lane, p)
				}
				sum += p
			}
			if math.Abs(sum-1) > 1e-6 {
				t.Errorf("step %d lane %d: probabilities sum to %f", step, lane, sum)
			}
		}
	}
}
