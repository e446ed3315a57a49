// Command rnntrain trains a recurrent network on windows
// drawn from a time series.
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/amp-at-clover/theanets"
	"github.com/klauspost/cpuid/v2"
	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anynet"
	"github.com/unixpickle/anynet/anyrnn"
	"github.com/unixpickle/anynet/anysgd"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvec32"
	"github.com/unixpickle/essentials"
)

func main() {
	var cfgPath string
	var savePath string
	var o Overrides

	flag.StringVar(&cfgPath, "config", "", "YAML config file")
	flag.StringVar(&savePath, "save-series", "", "write the loaded data as a "+seriesExt+" file")
	flag.StringVar(&o.Data, "data", "", "data file (CSV or "+seriesExt+")")
	flag.StringVar(&o.Labels, "labels", "", "label file (CSV or "+seriesExt+")")
	flag.StringVar(&o.Variant, "variant", "", "autoencoder, predictor, regressor, or classifier")
	flag.IntVar(&o.Classes, "classes", 0, "number of classes for a classifier")
	flag.IntVar(&o.Steps, "steps", 0, "window length")
	flag.IntVar(&o.BatchSize, "batch", 0, "windows per batch")
	flag.IntVar(&o.Hidden, "hidden", 0, "LSTM hidden size")
	flag.Float64Var(&o.Rate, "rate", 0, "learning rate")
	flag.IntVar(&o.Iters, "iters", 0, "training iterations (0 runs until interrupted)")
	flag.Int64Var(&o.Seed, "seed", 0, "window sampling seed")
	flag.BoolVar(&o.Adam, "adam", false, "use Adam")
	flag.IntVar(&o.LogEvery, "log-every", 0, "log the cost every N iterations")
	flag.Parse()

	cfg := DefaultConfig()
	if cfgPath != "" {
		var err error
		cfg, err = LoadConfig(cfgPath)
		if err != nil {
			essentials.Die(err)
		}
	}
	cfg.ApplyOverrides(o)
	if err := cfg.Validate(); err != nil {
		essentials.Die("invalid config:", err)
	}

	log.Printf("cpu=%q cores=%d", cpuid.CPU.BrandName, cpuid.CPU.PhysicalCores)

	samples, err := loadSeries(cfg.Data)
	if err != nil {
		essentials.Die(err)
	}
	log.Printf("loaded %d frames from %s", len(samples), cfg.Data)
	if savePath != "" {
		if err := saveSeries(savePath, samples); err != nil {
			essentials.Die(err)
		}
		log.Printf("saved series to %s", savePath)
	}

	var labels [][]float64
	if cfg.Variant == "regressor" || cfg.Variant == "classifier" {
		labels, err = loadSeries(cfg.Labels)
		if err != nil {
			essentials.Die(err)
		}
	}

	c := anyvec32.CurrentCreator()
	sampler, err := theanets.NewSampler(c, samples, labels, theanets.SamplerConfig{
		Steps:     cfg.Steps,
		BatchSize: cfg.BatchSize,
		Seed:      cfg.Seed,
	})
	if err != nil {
		essentials.Die(err)
	}

	inSize := len(samples[0])
	net, outSize := buildNetwork(cfg, inSize, labels)
	block, params := buildBlock(c, cfg, inSize, outSize)

	trainer := &theanets.Trainer{
		Block:   block,
		Net:     net,
		Batches: sampler.BatchFunc(),
		Params:  params,
		Rate:    cfg.Rate,
		StatusFunc: func(iter int, cost float64) {
			if iter%cfg.LogEvery == 0 {
				log.Printf("iter %d: cost=%f", iter, cost)
			}
		},
	}
	if cfg.Adam {
		trainer.Transformer = &anysgd.Adam{}
	}

	stop := make(chan struct{})
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		log.Println("stopping after the current step")
		close(stop)
	}()

	log.Printf("training %s: steps=%d batch=%d hidden=%d", cfg.Variant, cfg.Steps,
		cfg.BatchSize, cfg.Hidden)
	if err := trainer.Run(stop, cfg.Iters); err != nil {
		essentials.Die("training failed:", err)
	}
}

func buildNetwork(cfg *Config, inSize int, labels [][]float64) (theanets.Network, int) {
	switch cfg.Variant {
	case "autoencoder":
		return &theanets.Autoencoder{}, inSize
	case "predictor":
		return &theanets.Predictor{}, inSize
	case "regressor":
		return &theanets.Regressor{}, len(labels[0])
	case "classifier":
		return &theanets.Classifier{}, cfg.Classes
	default:
		panic("unknown variant: " + cfg.Variant)
	}
}

// buildBlock creates an LSTM followed by a dense output
// layer, which is a softmax for classifiers.
func buildBlock(c anyvec.Creator, cfg *Config, inSize, outSize int) (anyrnn.Block,
	[]*anydiff.Var) {
	lstm := anyrnn.NewLSTM(c, inSize, cfg.Hidden)
	fc := anynet.NewFC(c, cfg.Hidden, outSize)
	var outLayer anynet.Layer = fc
	if cfg.Variant == "classifier" {
		outLayer = anynet.Net{fc, anynet.LogSoftmax, anynet.Exp}
	}
	block := anyrnn.Stack{lstm, &anyrnn.LayerBlock{Layer: outLayer}}
	return block, append(lstm.Parameters(), fc.Parameters()...)
}
