package optim

import (
	"fmt"
	"strings"

	"github.com/sugarme/gotch/nn"
	"github.com/sugarme/gotch/ts"
)

// Optimizer updates trainable variables of a VarStore from their gradients.
type Optimizer interface {
	ZeroGrad() error
	Step() error
	// BackwardStep zeroes gradients, back-propagates loss and applies a step.
	BackwardStep(loss *ts.Tensor) error
}

// Supported optimizer names.
const (
	AdadeltaName = "adadelta"
	AdamName     = "adam"
	SGDName      = "sgd"
)

// New creates an optimizer by name. lr <= 0 picks the optimizer default.
func New(name string, vs *nn.VarStore, lr float64) (Optimizer, error) {
	switch strings.ToLower(name) {
	case AdadeltaName:
		cfg := DefaultAdadeltaConfig()
		if lr > 0 {
			cfg.LR = lr
		}
		return NewAdadelta(vs, cfg), nil
	case AdamName:
		if lr <= 0 {
			lr = 0.001
		}
		opt, err := nn.DefaultAdamConfig().Build(vs, lr)
		if err != nil {
			return nil, fmt.Errorf("optim: build adam: %w", err)
		}
		return &wrapped{opt}, nil
	case SGDName:
		if lr <= 0 {
			lr = 0.01
		}
		opt, err := nn.DefaultSGDConfig().Build(vs, lr)
		if err != nil {
			return nil, fmt.Errorf("optim: build sgd: %w", err)
		}
		return &wrapped{opt}, nil
	default:
		return nil, fmt.Errorf("optim: invalid optimizer option. Expected %q, %q or %q. Got %q", AdadeltaName, AdamName, SGDName, name)
	}
}

// wrapped adapts gotch built-in optimizers to Optimizer.
type wrapped struct {
	opt *nn.Optimizer
}

func (w *wrapped) ZeroGrad() error {
	return w.opt.ZeroGrad()
}

func (w *wrapped) Step() error {
	return w.opt.Step()
}

func (w *wrapped) BackwardStep(loss *ts.Tensor) error {
	return w.opt.BackwardStep(loss)
}
