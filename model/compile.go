package model

import (
	"fmt"
	"sort"

	"github.com/sugarme/gotch/ts"

	"github.com/sugarme/volseg/metric"
	"github.com/sugarme/volseg/optim"
)

// LossFunc computes a differentiable scalar loss.
type LossFunc func(yTrue, yPred *ts.Tensor) *ts.Tensor

// MetricFunc computes a metric value.
type MetricFunc func(yTrue, yPred *ts.Tensor) float64

var losses = map[string]LossFunc{
	"dice": metric.DiceLoss,
	"mse":  metric.MeanSquaredError,
}

var metrics = map[string]MetricFunc{
	"dice": func(yTrue, yPred *ts.Tensor) float64 {
		d := metric.DiceCoefficient(yTrue, yPred)
		v := d.Float64Values()[0]
		d.MustDrop()
		return v
	},
	"accuracy": metric.BinaryAccuracy,
}

// CompileOptions names the optimizer, loss and metrics of a compiled network.
type CompileOptions struct {
	Optimizer string   `yaml:"optimizer"`
	LR        float64  `yaml:"lr"`
	Loss      string   `yaml:"loss"`
	Metrics   []string `yaml:"metrics"`
}

// SegmentDefaults: adadelta, dice loss, dice metric.
func SegmentDefaults() CompileOptions {
	return CompileOptions{Optimizer: optim.AdadeltaName, Loss: "dice", Metrics: []string{"dice"}}
}

// GANDefaults: adadelta, mse loss, accuracy metric.
func GANDefaults() CompileOptions {
	return CompileOptions{Optimizer: optim.AdadeltaName, Loss: "mse", Metrics: []string{"accuracy"}}
}

// DiscriminatorDefaults: adadelta, mse loss.
func DiscriminatorDefaults() CompileOptions {
	return CompileOptions{Optimizer: optim.AdadeltaName, Loss: "mse"}
}

// DefaultCompileOptions returns the compile options matching an
// architecture kind.
func DefaultCompileOptions(kind Kind) CompileOptions {
	switch kind {
	case KindGAN:
		return GANDefaults()
	case KindDiscriminator:
		return DiscriminatorDefaults()
	default:
		return SegmentDefaults()
	}
}

// Compiled is a network bound to an optimizer, a loss and metrics.
type Compiled struct {
	Net       *Network
	Optimizer optim.Optimizer
	loss      LossFunc
	metrics   map[string]MetricFunc
}

// Result holds loss and metric values of one batch.
type Result struct {
	Loss    float64
	Metrics map[string]float64
}

func (r Result) String() string {
	names := make([]string, 0, len(r.Metrics))
	for n := range r.Metrics {
		names = append(names, n)
	}
	sort.Strings(names)

	s := fmt.Sprintf("loss: %.4f", r.Loss)
	for _, n := range names {
		s += fmt.Sprintf(" - %s: %.4f", n, r.Metrics[n])
	}
	return s
}

// Compile binds optimizer, loss and metrics to net.
func Compile(net *Network, opts CompileOptions) (*Compiled, error) {
	lossFn, ok := losses[opts.Loss]
	if !ok {
		return nil, fmt.Errorf("model: unknown loss %q", opts.Loss)
	}
	ms := make(map[string]MetricFunc, len(opts.Metrics))
	for _, name := range opts.Metrics {
		m, ok := metrics[name]
		if !ok {
			return nil, fmt.Errorf("model: unknown metric %q", name)
		}
		ms[name] = m
	}
	opt, err := optim.New(opts.Optimizer, net.VS, opts.LR)
	if err != nil {
		return nil, fmt.Errorf("model: compile: %w", err)
	}

	return &Compiled{
		Net:       net,
		Optimizer: opt,
		loss:      lossFn,
		metrics:   ms,
	}, nil
}

// TrainOnBatch runs one optimizer step on a single batch and returns loss and
// metrics computed on the predictions before the step.
func (c *Compiled) TrainOnBatch(x, y *ts.Tensor) (Result, error) {
	pred := c.Net.ForwardT(x, true)
	loss := c.loss(y, pred)

	res := Result{Loss: loss.Float64Values()[0]}
	ts.NoGrad(func() {
		res.Metrics = c.measure(y, pred)
	})

	err := c.Optimizer.BackwardStep(loss)
	loss.MustDrop()
	pred.MustDrop()
	if err != nil {
		return Result{}, fmt.Errorf("model: train on batch: %w", err)
	}

	return res, nil
}

// Evaluate computes loss and metrics without gradient tracking.
func (c *Compiled) Evaluate(x, y *ts.Tensor) Result {
	var res Result
	ts.NoGrad(func() {
		pred := c.Net.ForwardT(x, false)
		loss := c.loss(y, pred)
		res.Loss = loss.Float64Values()[0]
		res.Metrics = c.measure(y, pred)
		loss.MustDrop()
		pred.MustDrop()
	})

	return res
}

func (c *Compiled) measure(y, pred *ts.Tensor) map[string]float64 {
	vals := make(map[string]float64, len(c.metrics))
	for name, m := range c.metrics {
		vals[name] = m(y, pred)
	}
	return vals
}
