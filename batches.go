package theanets

import (
	"math/rand"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/unixpickle/anydiff/anyseq"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvec32"
)

// Default window parameters for Batches.
const (
	DefaultSteps     = 100
	DefaultBatchSize = 64
)

// A BatchFunc produces a freshly sampled minibatch each
// time it is called.
//
// The first sequence holds the data windows.
// If the sampler has labels, a second sequence holds the
// label windows.
type BatchFunc func() []anyseq.Seq

// A Window is one sampled minibatch.
type Window struct {
	// Inputs has Steps timesteps, each with BatchSize
	// lanes of data frames.
	Inputs anyseq.Seq

	// Labels is parallel to Inputs, or nil if the sampler
	// has no labels.
	Labels anyseq.Seq

	// Starts stores the first frame index of each lane.
	Starts []int
}

// Seqs returns the sequences in the order a BatchFunc
// returns them.
func (w *Window) Seqs() []anyseq.Seq {
	if w.Labels == nil {
		return []anyseq.Seq{w.Inputs}
	}
	return []anyseq.Seq{w.Inputs, w.Labels}
}

// SamplerConfig configures a Sampler.
type SamplerConfig struct {
	// Steps is the window length.
	// If 0, DefaultSteps is used.
	Steps int

	// BatchSize is the number of windows per batch.
	// If 0, DefaultBatchSize is used.
	BatchSize int

	// Rand is the source for window offsets.
	// If nil, a source is seeded with Seed, or with the
	// current time if Seed is 0.
	Rand *rand.Rand
	Seed int64
}

// A Sampler draws windows of consecutive frames from a
// time series.
//
// The dataset is never modified, and a Sampler may be
// used from multiple Goroutines at once.
type Sampler struct {
	creator   anyvec.Creator
	steps     int
	batchSize int

	samples [][]anyvec.Vector
	numRows int

	randLock sync.Mutex
	rand     *rand.Rand
}

// NewSampler creates a Sampler for the samples and
// optional labels.
//
// Rows of samples are frames; rows of labels are the
// targets for the frame at the same index.
// If c is nil, anyvec32.DefaultCreator is used.
func NewSampler(c anyvec.Creator, samples, labels [][]float64,
	cfg SamplerConfig) (*Sampler, error) {
	if c == nil {
		c = anyvec32.DefaultCreator{}
	}
	if cfg.Steps == 0 {
		cfg.Steps = DefaultSteps
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if err := checkWindow(len(samples), cfg.Steps, cfg.BatchSize); err != nil {
		return nil, err
	}

	series := [][][]float64{samples}
	if labels != nil {
		if len(labels) != len(samples) {
			return nil, errors.Wrapf(ErrShapeMismatch, "sampler: %d labels for %d samples",
				len(labels), len(samples))
		}
		series = append(series, labels)
	}

	res := &Sampler{
		creator:   c,
		steps:     cfg.Steps,
		batchSize: cfg.BatchSize,
		numRows:   len(samples),
		rand:      cfg.Rand,
	}
	for i, rows := range series {
		frames, err := makeFrames(c, rows)
		if err != nil {
			return nil, errors.Wrapf(err, "sampler: series %d", i)
		}
		res.samples = append(res.samples, frames)
	}
	if res.rand == nil {
		seed := cfg.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		res.rand = rand.New(rand.NewSource(seed))
	}
	return res, nil
}

// Batches creates a BatchFunc which samples batchSize
// windows of steps frames at a time.
//
// It is a shorthand for NewSampler with a time-seeded
// random source.
func Batches(c anyvec.Creator, samples, labels [][]float64, steps,
	batchSize int) (BatchFunc, error) {
	if steps <= 0 || batchSize <= 0 {
		return nil, errors.Wrapf(ErrInvalidWindow, "batches: steps=%d batch_size=%d",
			steps, batchSize)
	}
	s, err := NewSampler(c, samples, labels, SamplerConfig{
		Steps:     steps,
		BatchSize: batchSize,
	})
	if err != nil {
		return nil, err
	}
	return s.BatchFunc(), nil
}

// Creator returns the creator used for batch vectors.
func (s *Sampler) Creator() anyvec.Creator {
	return s.creator
}

// Steps returns the number of timesteps per window.
func (s *Sampler) Steps() int {
	return s.steps
}

// BatchSize returns the number of windows per batch.
func (s *Sampler) BatchSize() int {
	return s.batchSize
}

// Labeled reports whether the sampler produces labels.
func (s *Sampler) Labeled() bool {
	return len(s.samples) > 1
}

// Sample draws a new minibatch.
func (s *Sampler) Sample() *Window {
	starts := make([]int, s.batchSize)
	s.randLock.Lock()
	for i := range starts {
		starts[i] = s.rand.Intn(s.numRows - s.steps)
	}
	s.randLock.Unlock()

	res := &Window{
		Inputs: s.windowSeq(s.samples[0], starts),
		Starts: starts,
	}
	if s.Labeled() {
		res.Labels = s.windowSeq(s.samples[1], starts)
	}
	return res
}

// BatchFunc wraps Sample as a BatchFunc.
func (s *Sampler) BatchFunc() BatchFunc {
	return func() []anyseq.Seq {
		return s.Sample().Seqs()
	}
}

func (s *Sampler) windowSeq(frames []anyvec.Vector, starts []int) anyseq.Seq {
	lanes := make([][]anyvec.Vector, len(starts))
	for i, start := range starts {
		lane := make([]anyvec.Vector, s.steps)
		for t := range lane {
			lane[t] = frames[start+t].Copy()
		}
		lanes[i] = lane
	}
	return anyseq.ConstSeqList(s.creator, lanes)
}

func checkWindow(numRows, steps, batchSize int) error {
	if steps <= 0 || batchSize <= 0 {
		return errors.Wrapf(ErrInvalidWindow, "steps=%d batch_size=%d", steps, batchSize)
	}
	if steps >= numRows {
		return errors.Wrapf(ErrInvalidWindow, "steps=%d needs more than %d frames",
			steps, numRows)
	}
	return nil
}

func makeFrames(c anyvec.Creator, rows [][]float64) ([]anyvec.Vector, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	width := len(rows[0])
	if width == 0 {
		return nil, errors.Wrap(ErrShapeMismatch, "empty frames")
	}
	res := make([]anyvec.Vector, len(rows))
	for i, row := range rows {
		if len(row) != width {
			return nil, errors.Wrapf(ErrShapeMismatch, "row %d has %d components (expected %d)",
				i, len(row), width)
		}
		res[i] = c.MakeVectorData(c.MakeNumericList(row))
	}
	return res, nil
}
