package gan

import (
	"fmt"

	"github.com/sugarme/gotch/nn"
	"github.com/sugarme/gotch/ts"

	"github.com/sugarme/volseg/base"
)

// DiscriminatorConfig holds Discriminator hyper parameters.
type DiscriminatorConfig struct {
	// Number of summary features per input. Input size is 2*NumSummary.
	NumSummary int64   `yaml:"numSummary"`
	Hidden     []int64 `yaml:"hidden"`
	Dropout    float64 `yaml:"dropout"`
}

// DefaultDiscriminatorConfig creates DiscriminatorConfig with 3 hidden
// layers (512, 256, 64) and dropout 0.2.
func DefaultDiscriminatorConfig(numSummary int64) DiscriminatorConfig {
	return DiscriminatorConfig{
		NumSummary: numSummary,
		Hidden:     []int64{512, 256, 64},
		Dropout:    0.2,
	}
}

// Validate checks sizes and dropout rate.
func (c DiscriminatorConfig) Validate() error {
	if c.NumSummary <= 0 {
		return fmt.Errorf("gan: num summary must be positive, got %d", c.NumSummary)
	}
	for _, h := range c.Hidden {
		if h <= 0 {
			return fmt.Errorf("gan: hidden sizes must be positive, got %v", c.Hidden)
		}
	}
	if c.Dropout < 0 || c.Dropout >= 1 {
		return fmt.Errorf("gan: dropout must be in [0, 1), got %v", c.Dropout)
	}
	return nil
}

// Discriminator scores a summary pair: [B 2*NumSummary] => [B 1] in (0, 1).
type Discriminator struct {
	config DiscriminatorConfig
	seq    *nn.SequentialT
}

// ForwardT implements ts.ModuleT for Discriminator.
func (d *Discriminator) ForwardT(x *ts.Tensor, train bool) *ts.Tensor {
	return d.seq.ForwardT(x, train)
}

// InputSize returns number of input features.
func (d *Discriminator) InputSize() int64 {
	return 2 * d.config.NumSummary
}

// Config returns the discriminator configuration.
func (d *Discriminator) Config() DiscriminatorConfig {
	return d.config
}

// NewDiscriminator creates Discriminator.
// [linear => relu => dropout] x len(Hidden) => linear => sigmoid
func NewDiscriminator(p *nn.Path, cfg DiscriminatorConfig) (*Discriminator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	seq := nn.SeqT()
	in := 2 * cfg.NumSummary
	for i, h := range cfg.Hidden {
		seq.Add(nn.NewLinear(p.Sub(fmt.Sprintf("fc%d", i+1)), in, h, nn.DefaultLinearConfig()))
		seq.AddFn(base.Relu())
		seq.Add(dropout(cfg.Dropout))
		in = h
	}
	seq.Add(nn.NewLinear(p.Sub(fmt.Sprintf("fc%d", len(cfg.Hidden)+1)), in, 1, nn.DefaultLinearConfig()))
	seq.AddFn(base.Sigmoid())

	return &Discriminator{
		config: cfg,
		seq:    seq,
	}, nil
}

// dropout is only active in training mode.
func dropout(rate float64) ts.ModuleT {
	if rate == 0 {
		return base.NewIdentity()
	}
	return nn.NewFuncT(func(xs *ts.Tensor, train bool) *ts.Tensor {
		return ts.MustDropout(xs, rate, train)
	})
}
